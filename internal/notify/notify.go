// Package notify turns check results into outbound notifications.
//
// The transition policy (ShouldNotify) is pure. Delivery goes through
// channels: each channel resolves its own recipients for the target and
// state, an empty set suppresses that channel only, and delivery failures
// are logged, never propagated into the cycle.
package notify

import (
	"context"
	"fmt"
	"time"

	"stockwatch/internal/model"
	"stockwatch/pkg/logx"
)

// Event is one notifiable check result.
type Event struct {
	Target model.Target
	State  model.StockState
	Marker string
	At     time.Time
}

// A Channel delivers an event to its own kind of recipients.
type Channel interface {
	Name() string
	// Recipients returns the configured recipients for the state, rendered
	// for logging; empty means the channel has nothing to do.
	Recipients(t model.Target, st model.StockState) []string
	Send(ctx context.Context, ev Event, recipients []string) error
}

type Service struct {
	channels []Channel
	log      logx.Logger
}

func NewService(log logx.Logger, channels ...Channel) *Service {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Service{channels: channels, log: log}
}

// Dispatch fans the event out to every channel. It never returns an error:
// delivery problems must not disturb the check cycle.
func (s *Service) Dispatch(ctx context.Context, ev Event) {
	for _, ch := range s.channels {
		recipients := ch.Recipients(ev.Target, ev.State)
		if len(recipients) == 0 {
			s.log.Debug("no recipients configured, notification suppressed",
				logx.String("channel", ch.Name()),
				logx.String("target", ev.Target.ID),
				logx.String("state", string(ev.State)))
			continue
		}
		if err := ch.Send(ctx, ev, recipients); err != nil {
			s.log.Warn("notification send failed",
				logx.String("channel", ch.Name()),
				logx.String("target", ev.Target.ID),
				logx.Err(err))
			continue
		}
		s.log.Info("notification sent",
			logx.String("channel", ch.Name()),
			logx.String("target", ev.Target.ID),
			logx.String("state", string(ev.State)),
			logx.Int("recipients", len(recipients)))
	}
}

// Subject renders the notification subject line.
func Subject(ev Event) string {
	return fmt.Sprintf("[Stock Monitor] %s - %s", ev.State.Label(), ev.Target.Name)
}

// Body renders the notification body.
func Body(ev Event) string {
	marker := ev.Marker
	if marker == "" {
		marker = "aucun"
	}
	return fmt.Sprintf(
		"Cible: %s\nURL: %s\nEtat: %s\nTerme detecte: %s\nDate: %s\n",
		ev.Target.Name, ev.Target.URL, ev.State.Label(), marker,
		ev.At.Format("2006-01-02T15:04:05"),
	)
}
