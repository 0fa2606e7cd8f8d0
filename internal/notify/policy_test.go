package notify

import (
	"context"
	"strings"
	"testing"
	"time"

	"stockwatch/internal/model"
	"stockwatch/pkg/logx"
)

func TestShouldNotify(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		prev model.StockState
		cur  model.StockState
		same bool
		want bool
	}{
		{name: "transition, same-state off", prev: model.StateInStock, cur: model.StateOutOfStock, same: false, want: true},
		{name: "transition, same-state on", prev: model.StateInStock, cur: model.StateOutOfStock, same: true, want: true},
		{name: "no transition, same-state off", prev: model.StateOutOfStock, cur: model.StateOutOfStock, same: false, want: false},
		{name: "no transition, same-state on", prev: model.StateOutOfStock, cur: model.StateOutOfStock, same: true, want: true},
		{name: "first observation", prev: "", cur: model.StateInStock, same: false, want: true},
		{name: "recovery from unknown", prev: model.StateUnknown, cur: model.StateInStock, same: false, want: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if got := ShouldNotify(tt.prev, tt.cur, tt.same); got != tt.want {
				t.Fatalf("ShouldNotify = %v, want %v", got, tt.want)
			}
		})
	}
}

type recordChannel struct {
	name       string
	recipients []string
	sent       []Event
	sendErr    error
}

func (c *recordChannel) Name() string { return c.name }
func (c *recordChannel) Recipients(model.Target, model.StockState) []string {
	return c.recipients
}
func (c *recordChannel) Send(_ context.Context, ev Event, _ []string) error {
	c.sent = append(c.sent, ev)
	return c.sendErr
}

func TestDispatchSuppressesEmptyRecipients(t *testing.T) {
	t.Parallel()
	with := &recordChannel{name: "with", recipients: []string{"a@example.com"}}
	without := &recordChannel{name: "without"}
	svc := NewService(logx.Nop(), with, without)

	svc.Dispatch(context.Background(), Event{State: model.StateOutOfStock})

	if len(with.sent) != 1 {
		t.Fatalf("channel with recipients got %d sends, want 1", len(with.sent))
	}
	if len(without.sent) != 0 {
		t.Fatalf("channel without recipients got %d sends, want 0", len(without.sent))
	}
}

func TestDispatchSwallowsSendErrors(t *testing.T) {
	t.Parallel()
	failing := &recordChannel{name: "a", recipients: []string{"x"}, sendErr: context.DeadlineExceeded}
	after := &recordChannel{name: "b", recipients: []string{"y"}}
	svc := NewService(logx.Nop(), failing, after)

	// Must not panic or stop at the failing channel.
	svc.Dispatch(context.Background(), Event{State: model.StateInStock})
	if len(after.sent) != 1 {
		t.Fatal("later channel should still be attempted after a failure")
	}
}

func TestSubjectAndBody(t *testing.T) {
	t.Parallel()
	ev := Event{
		Target: model.Target{Name: "RTX 4090", URL: "https://shop.example.com/rtx"},
		State:  model.StateOutOfStock,
		Marker: "rupture de stock",
		At:     time.Date(2025, 3, 10, 9, 5, 0, 0, time.UTC),
	}
	if got := Subject(ev); got != "[Stock Monitor] HORS STOCK - RTX 4090" {
		t.Fatalf("Subject = %q", got)
	}
	body := Body(ev)
	for _, want := range []string{
		"Cible: RTX 4090",
		"URL: https://shop.example.com/rtx",
		"Etat: HORS STOCK",
		"Terme detecte: rupture de stock",
		"Date: 2025-03-10T09:05:00",
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("body missing %q:\n%s", want, body)
		}
	}

	ev.State = model.StateInStock
	ev.Marker = ""
	if !strings.Contains(Body(ev), "Terme detecte: aucun") {
		t.Fatal("empty marker should render as aucun")
	}
}
