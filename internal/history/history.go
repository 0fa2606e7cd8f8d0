// Package history optionally journals every completed check.
//
// The journal is an observability aid: failures to record are logged by the
// caller and never affect cycle correctness. Driver "none" (or empty)
// disables it with a no-op implementation.
package history

import (
	"context"
	"fmt"
	"strings"
	"time"

	"stockwatch/pkg/logx"
)

type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// Entry is one completed check attempt.
type Entry struct {
	At       time.Time
	TargetID string
	State    string
	Marker   string
	Duration time.Duration
	Error    string
}

type Journal interface {
	Append(ctx context.Context, e Entry) error
	Close() error
}

// Open selects a journal backend from config.
func Open(cfg Config, log logx.Logger) (Journal, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case "", "none":
		return nopJournal{}, nil
	case "sqlite":
		return openSQLite(cfg, log)
	default:
		return nil, fmt.Errorf("unknown history driver %q", cfg.Driver)
	}
}

type nopJournal struct{}

func (nopJournal) Append(context.Context, Entry) error { return nil }
func (nopJournal) Close() error                        { return nil }

// Enabled reports whether a journal actually records anything.
func Enabled(j Journal) bool {
	_, nop := j.(nopJournal)
	return j != nil && !nop
}
