package notify

import (
	"time"

	"github.com/compresr/pool-watcher/internal/alerts"
	"github.com/compresr/pool-watcher/internal/monitoring"
)

// AlertRecord is the journal line written for each fired alert.
type AlertRecord struct {
	ID           string    `json:"id"`
	Rule         string    `json:"rule"`
	Key          string    `json:"key"`
	FiredAt      time.Time `json:"fired_at"`
	FromPool     string    `json:"from_pool,omitempty"`
	ToPool       string    `json:"to_pool,omitempty"`
	ActivePool   string    `json:"active_pool,omitempty"`
	ErrorRate    float64   `json:"error_rate"`
	WindowLen    int       `json:"window_len"`
	Release      string    `json:"release,omitempty"`
	UpstreamAddr string    `json:"upstream_addr,omitempty"`
	Message      string    `json:"message"`
}

// NewAlertRecord converts a fired alert into its journal form.
func NewAlertRecord(a alerts.Alert) AlertRecord {
	return AlertRecord{
		ID:           a.ID,
		Rule:         a.Rule,
		Key:          a.Key,
		FiredAt:      a.FiredAt.UTC(),
		FromPool:     a.FromPool,
		ToPool:       a.ToPool,
		ActivePool:   a.ActivePool,
		ErrorRate:    a.ErrorRate,
		WindowLen:    a.WindowLen,
		Release:      a.Release,
		UpstreamAddr: a.UpstreamAddr,
		Message:      a.Message,
	}
}

type journaled struct {
	next    alerts.Notifier
	journal *monitoring.Journal
}

// WithJournal records every alert in j before handing it to next. A nil
// journal returns next unchanged.
func WithJournal(next alerts.Notifier, j *monitoring.Journal) alerts.Notifier {
	if j == nil {
		return next
	}
	return &journaled{next: next, journal: j}
}

func (n *journaled) Notify(a alerts.Alert) {
	n.journal.Record(NewAlertRecord(a))
	n.next.Notify(a)
}
