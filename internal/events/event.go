// Package events - event.go turns raw access-log lines into typed events.
//
// DESIGN: One JSON object per line, every field optional:
//   - Absent or null keys stay nil; nothing is defaulted
//   - A present key that cannot be coerced drops the whole record
//   - Booleans coerce like numbers: true is 1, false is 0
//   - Parse never returns an error; the second result reports acceptance
package events

import (
	"math"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// Record keys understood by Parse.
const (
	KeyPool                 = "pool"
	KeyRelease              = "release"
	KeyStatus               = "status"
	KeyUpstreamStatus       = "upstream_status"
	KeyUpstreamAddr         = "upstream_addr"
	KeyRequestTime          = "request_time"
	KeyUpstreamResponseTime = "upstream_response_time"
	KeyTime                 = "time"
)

// Event is one parsed access-log record.
type Event struct {
	Pool                 *string  // origin pool, e.g. "blue" / "green"
	Release              *string  // deployed release tag
	Status               *int     // status sent to the client
	UpstreamStatus       *string  // comma-separated, one entry per upstream attempt
	UpstreamAddr         *string  // diagnostic only
	RequestTime          *float64 // diagnostic only
	UpstreamResponseTime *string  // diagnostic only, kept as raw text
	Time                 *string  // log timestamp, diagnostic only
}

// Parse decodes a single log line. Empty lines, invalid JSON, non-object
// documents and fields of the wrong shape all yield ok=false.
func Parse(line string) (evt Event, ok bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return Event{}, false
	}
	if !gjson.Valid(line) {
		return Event{}, false
	}
	if !gjson.Parse(line).IsObject() {
		return Event{}, false
	}

	fields := gjson.GetMany(line,
		KeyPool, KeyRelease, KeyStatus, KeyUpstreamStatus,
		KeyUpstreamAddr, KeyRequestTime, KeyUpstreamResponseTime, KeyTime,
	)

	if evt.Pool, ok = text(fields[0]); !ok {
		return Event{}, false
	}
	if evt.Release, ok = text(fields[1]); !ok {
		return Event{}, false
	}
	if evt.Status, ok = integer(fields[2]); !ok {
		return Event{}, false
	}
	if evt.UpstreamStatus, ok = statusList(fields[3]); !ok {
		return Event{}, false
	}
	if evt.UpstreamAddr, ok = text(fields[4]); !ok {
		return Event{}, false
	}
	if evt.RequestTime, ok = number(fields[5]); !ok {
		return Event{}, false
	}
	if evt.UpstreamResponseTime, ok = raw(fields[6]); !ok {
		return Event{}, false
	}
	if evt.Time, ok = text(fields[7]); !ok {
		return Event{}, false
	}
	return evt, true
}

// Errored reports whether the event counts against the upstream error rate:
// any upstream attempt starting with "5", or else a 5xx response status.
func (e Event) Errored() bool {
	if e.UpstreamStatus != nil {
		for _, part := range strings.Split(*e.UpstreamStatus, ",") {
			if strings.HasPrefix(part, "5") {
				return true
			}
		}
	}
	return e.Status != nil && *e.Status >= 500 && *e.Status <= 599
}

// PoolName returns the pool or "" when absent.
func (e Event) PoolName() string { return deref(e.Pool) }

// ReleaseName returns the release or "" when absent.
func (e Event) ReleaseName() string { return deref(e.Release) }

// Upstream returns the upstream address or "" when absent.
func (e Event) Upstream() string { return deref(e.UpstreamAddr) }

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func absent(r gjson.Result) bool {
	return !r.Exists() || r.Type == gjson.Null
}

// text accepts strings verbatim and scalars as their literal JSON text.
func text(r gjson.Result) (*string, bool) {
	if absent(r) {
		return nil, true
	}
	switch r.Type {
	case gjson.String:
		s := r.Str
		return &s, true
	case gjson.Number, gjson.True, gjson.False:
		s := r.Raw
		return &s, true
	}
	return nil, false
}

func integer(r gjson.Result) (*int, bool) {
	if absent(r) {
		return nil, true
	}
	switch r.Type {
	case gjson.Number:
		if math.IsNaN(r.Num) || math.IsInf(r.Num, 0) {
			return nil, false
		}
		n := int(math.Trunc(r.Num))
		return &n, true
	case gjson.True, gjson.False:
		n := 0
		if r.Bool() {
			n = 1
		}
		return &n, true
	case gjson.String:
		n, err := strconv.Atoi(strings.TrimSpace(r.Str))
		if err != nil {
			return nil, false
		}
		return &n, true
	}
	return nil, false
}

func number(r gjson.Result) (*float64, bool) {
	if absent(r) {
		return nil, true
	}
	switch r.Type {
	case gjson.Number:
		f := r.Num
		return &f, true
	case gjson.True, gjson.False:
		f := 0.0
		if r.Bool() {
			f = 1
		}
		return &f, true
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(r.Str), 64)
		if err != nil {
			return nil, false
		}
		return &f, true
	}
	return nil, false
}

// statusList accepts a scalar or an array of scalars joined with ",".
// Numbers and booleans keep their JSON text.
func statusList(r gjson.Result) (*string, bool) {
	if absent(r) {
		return nil, true
	}
	switch r.Type {
	case gjson.String:
		s := r.Str
		return &s, true
	case gjson.Number, gjson.True, gjson.False:
		s := r.Raw
		return &s, true
	case gjson.JSON:
		if !r.IsArray() {
			return nil, false
		}
		items := r.Array()
		parts := make([]string, 0, len(items))
		for _, item := range items {
			switch item.Type {
			case gjson.String:
				parts = append(parts, item.Str)
			case gjson.Number, gjson.True, gjson.False:
				parts = append(parts, item.Raw)
			default:
				return nil, false
			}
		}
		s := strings.Join(parts, ",")
		return &s, true
	}
	return nil, false
}

// raw keeps any scalar as text; objects and arrays are kept as their JSON.
func raw(r gjson.Result) (*string, bool) {
	if absent(r) {
		return nil, true
	}
	s := r.Raw
	if r.Type == gjson.String {
		s = r.Str
	}
	return &s, true
}
