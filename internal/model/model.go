// Package model holds the domain types shared across stockwatch.
package model

import (
	"time"

	"stockwatch/internal/schedule"
)

// StockState is the classification of a target page.
type StockState string

const (
	StateInStock    StockState = "in_stock"
	StateOutOfStock StockState = "out_of_stock"
	StateUnknown    StockState = "unknown"
)

// Label returns the human-facing state label used in notifications.
func (s StockState) Label() string {
	switch s {
	case StateInStock:
		return "EN STOCK"
	case StateOutOfStock:
		return "HORS STOCK"
	default:
		return "INCONNU"
	}
}

// Target is one monitored URL. Immutable for the duration of a cycle;
// produced by config validation.
type Target struct {
	ID   string
	Name string
	URL  string

	// OutOfStockTerms is tried in order; the first listed term found anywhere
	// in the page decides the result.
	OutOfStockTerms []string

	Schedule schedule.Schedule

	EmailsOnOutOfStock []string
	EmailsOnInStock    []string

	TelegramChatsOnOutOfStock []int64
	TelegramChatsOnInStock    []int64

	// NotifyOnSameState sends a notification on every successful check, not
	// just on transitions.
	NotifyOnSameState bool
}

// TargetState is the persisted per-target history.
type TargetState struct {
	LastState   StockState `json:"last_state,omitempty"`
	LastMarker  string     `json:"last_marker,omitempty"`
	LastCheckAt *time.Time `json:"last_check_at,omitempty"`
}

// MonitorState is the full persisted state, keyed by target ID.
type MonitorState struct {
	Targets   map[string]*TargetState `json:"targets"`
	UpdatedAt *time.Time              `json:"updated_at,omitempty"`
}

// NewMonitorState returns an empty state ready for use.
func NewMonitorState() *MonitorState {
	return &MonitorState{Targets: map[string]*TargetState{}}
}

// Target returns the state for id, creating it in place when absent.
func (m *MonitorState) Target(id string) *TargetState {
	if m.Targets == nil {
		m.Targets = map[string]*TargetState{}
	}
	ts, ok := m.Targets[id]
	if !ok {
		ts = &TargetState{}
		m.Targets[id] = ts
	}
	return ts
}
