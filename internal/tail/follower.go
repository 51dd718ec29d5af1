package tail

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// Option configures a Follower.
type Option func(*Follower)

// FromStart reads the file from its beginning instead of its end.
func FromStart() Option {
	return func(f *Follower) { f.fromStart = true }
}

// NoFollow stops at end of file with io.EOF instead of waiting for more
// data. A missing file is an error rather than something to wait for.
func NoFollow() Option {
	return func(f *Follower) { f.follow = false }
}

// Follower tails a single file.
type Follower struct {
	cfg       Config
	fromStart bool
	follow    bool

	file    *os.File
	reader  *bufio.Reader
	partial strings.Builder
}

// NewFollower creates a follower for cfg.LogPath. The file is opened lazily
// by Open or the first Next.
func NewFollower(cfg Config, opts ...Option) *Follower {
	if cfg.LogPath == "" {
		cfg.LogPath = DefaultLogPath
	}
	f := &Follower{cfg: cfg, follow: true}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Path returns the followed file path.
func (f *Follower) Path() string { return f.cfg.LogPath }

// Open waits for the file to exist and positions the reader. Lines written
// before Open returns are skipped unless FromStart was given.
func (f *Follower) Open(ctx context.Context) error {
	if f.reader != nil {
		return nil
	}

	announced := false
	for {
		file, err := os.Open(f.cfg.LogPath)
		if err == nil {
			f.file = file
			break
		}
		if !errors.Is(err, os.ErrNotExist) || !f.follow {
			return fmt.Errorf("open log file: %w", err)
		}
		if !announced {
			log.Info().Str("path", f.cfg.LogPath).Msg("waiting for log file")
			announced = true
		}
		if err := sleep(ctx, f.cfg.waitInterval()); err != nil {
			return err
		}
	}

	if !f.fromStart {
		if _, err := f.file.Seek(0, io.SeekEnd); err != nil {
			_ = f.file.Close()
			f.file = nil
			return fmt.Errorf("seek log file: %w", err)
		}
	}
	f.reader = bufio.NewReader(f.file)

	log.Info().
		Str("path", f.cfg.LogPath).
		Bool("from_start", f.fromStart).
		Bool("follow", f.follow).
		Msg("tailing log file")
	return nil
}

// Next returns the next complete line without its line terminator. A line
// still being written is buffered until its newline arrives.
func (f *Follower) Next(ctx context.Context) (string, error) {
	if err := f.Open(ctx); err != nil {
		return "", err
	}

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		chunk, err := f.reader.ReadString('\n')
		f.partial.WriteString(chunk)

		if err == nil {
			return f.takeLine(), nil
		}
		if !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("read log file: %w", err)
		}

		if !f.follow {
			if f.partial.Len() > 0 {
				return f.takeLine(), nil
			}
			return "", io.EOF
		}
		if err := sleep(ctx, f.cfg.pollInterval()); err != nil {
			return "", err
		}
	}
}

// Close releases the file handle.
func (f *Follower) Close() error {
	if f.file == nil {
		return nil
	}
	err := f.file.Close()
	f.file = nil
	f.reader = nil
	return err
}

func (f *Follower) takeLine() string {
	line := strings.TrimRight(f.partial.String(), "\r\n")
	f.partial.Reset()
	return line
}
