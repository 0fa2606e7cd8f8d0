// Package state persists the per-target check history across runs.
//
// The on-disk form is a single JSON document. Loading fails soft: a missing
// or unreadable file yields a fresh empty state, trading lost history for
// availability. Saving goes through a temporary file in the same directory
// followed by a rename, so a reader never observes a partial write.
package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"stockwatch/internal/model"
	"stockwatch/pkg/logx"
)

type Store struct {
	path string
	log  logx.Logger
}

func NewStore(path string, log logx.Logger) *Store {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Store{path: path, log: log}
}

func (s *Store) Path() string { return s.path }

// Load reads the persisted state. Missing or malformed files are not errors:
// the monitor recreates its history rather than refusing to run.
func (s *Store) Load() *model.MonitorState {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("state unreadable, starting fresh", logx.String("path", s.path), logx.Err(err))
		}
		return model.NewMonitorState()
	}

	var st model.MonitorState
	if err := json.Unmarshal(b, &st); err != nil {
		s.log.Warn("state malformed, starting fresh", logx.String("path", s.path), logx.Err(err))
		return model.NewMonitorState()
	}
	if st.Targets == nil {
		st.Targets = map[string]*model.TargetState{}
	}
	return &st
}

// Save writes the state atomically: marshal, write to <path>.tmp in the same
// directory, then rename over the target. Map keys marshal in sorted order,
// so successive files diff cleanly.
func (s *Store) Save(st *model.MonitorState) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("state dir: %w", err)
	}

	b, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	b = append(b, '\n')

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

// Stamp returns now truncated to seconds, the precision kept on disk.
func Stamp(now time.Time) time.Time { return now.Truncate(time.Second) }
