// Package monitoring - journal.go records fired alerts to a JSONL file.
//
// DESIGN: Journal appends one JSON object per line, immediately after each
// alert, so the file can be tailed or shipped as it grows. It is write-only:
// nothing reads it back on startup.
package monitoring

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

// Journal handles alert record writing.
type Journal struct {
	path  string
	count int
	mu    sync.Mutex
}

// NewJournal creates the journal file and its directory if needed.
func NewJournal(path string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, err
	}
	_ = f.Close()
	return &Journal{path: path}, nil
}

// appendJSONL appends a single JSON object as a line to the file.
func appendJSONL(path string, event any) error {
	data, err := json.Marshal(event)
	if err != nil {
		return err
	}
	data = append(data, '\n')

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = f.Write(data)
	return err
}

// Path returns the journal file path.
func (j *Journal) Path() string { return j.path }

// Record appends event. Failures are logged, never returned.
func (j *Journal) Record(event any) {
	j.mu.Lock()
	defer j.mu.Unlock()

	if err := appendJSONL(j.path, event); err != nil {
		log.Error().Err(err).Str("path", j.path).Msg("journal: failed to write record")
		return
	}
	j.count++
}

// Count returns the number of records written by this process.
func (j *Journal) Count() int {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.count
}

// Close logs a summary. Records are written with short-lived handles so
// there is nothing to release.
func (j *Journal) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if j.count > 0 {
		log.Info().
			Str("path", j.path).
			Int("records", j.count).
			Msg("journal: session complete")
	}
	return nil
}
