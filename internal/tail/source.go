// Package tail feeds raw log lines to the watcher.
//
// DESIGN: Every feed implements Source so the pipeline never touches files
// directly:
//   - Follower:    tails a file that may not exist yet (wait, seek to end, poll)
//   - Follower with FromStart and no Follow: replays a file and stops at EOF
//   - SliceSource: fixed lines for tests
//
// Log rotation is not detected; a rotated file keeps being read from the old
// handle.
package tail

import (
	"context"
	"io"
	"time"
)

// Defaults applied when the corresponding field is zero.
const (
	DefaultLogPath      = "/var/log/nginx/access.json"
	DefaultPollInterval = 200 * time.Millisecond
	DefaultWaitInterval = 500 * time.Millisecond
)

// Source yields raw log lines one at a time.
//
// Next blocks until a line is available. Finite sources return io.EOF when
// exhausted; cancelling ctx returns ctx.Err().
type Source interface {
	Next(ctx context.Context) (string, error)
}

// Config contains source settings.
type Config struct {
	LogPath      string        `yaml:"log_path"`      // access log to follow
	PollInterval time.Duration `yaml:"poll_interval"` // delay between reads when no new data
	WaitInterval time.Duration `yaml:"wait_interval"` // delay between checks for a missing file
}

func (c Config) pollInterval() time.Duration {
	if c.PollInterval <= 0 {
		return DefaultPollInterval
	}
	return c.PollInterval
}

func (c Config) waitInterval() time.Duration {
	if c.WaitInterval <= 0 {
		return DefaultWaitInterval
	}
	return c.WaitInterval
}

// SliceSource returns pre-recorded lines in order, then io.EOF.
type SliceSource struct {
	lines []string
	pos   int
}

// NewSliceSource creates a source over lines.
func NewSliceSource(lines ...string) *SliceSource {
	return &SliceSource{lines: lines}
}

// Next returns the next line.
func (s *SliceSource) Next(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if s.pos >= len(s.lines) {
		return "", io.EOF
	}
	line := s.lines[s.pos]
	s.pos++
	return line, nil
}

// sleep waits for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
