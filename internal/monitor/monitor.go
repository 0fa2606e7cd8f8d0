// Package monitor runs check cycles over the configured targets.
//
// One cycle walks the targets in configured order, strictly sequentially:
// gate on the schedule, fetch, classify, decide on notification, update the
// in-memory state. The state file is written once, after the loop; a crash
// mid-cycle reverts to the previous cycle's state wholesale.
package monitor

import (
	"context"
	"time"

	"stockwatch/internal/classify"
	"stockwatch/internal/history"
	"stockwatch/internal/model"
	"stockwatch/internal/notify"
	"stockwatch/internal/schedule"
	"stockwatch/internal/state"
	"stockwatch/pkg/logx"
)

// Fetcher is the external page-fetch collaborator.
type Fetcher interface {
	Fetch(ctx context.Context, url string) (string, error)
}

// Dispatcher is the external notification collaborator.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev notify.Event)
}

type Runner struct {
	targets  []model.Target
	store    *state.Store
	fetcher  Fetcher
	notifier Dispatcher
	journal  history.Journal
	log      logx.Logger

	// now is the cycle clock, injectable for tests.
	now func() time.Time
}

func NewRunner(targets []model.Target, store *state.Store, fetcher Fetcher, notifier Dispatcher, journal history.Journal, log logx.Logger) *Runner {
	if log.IsZero() {
		log = logx.Nop()
	}
	if journal == nil {
		journal, _ = history.Open(history.Config{}, log)
	}
	return &Runner{
		targets:  targets,
		store:    store,
		fetcher:  fetcher,
		notifier: notifier,
		journal:  journal,
		log:      log,
		now:      time.Now,
	}
}

// SetTargets swaps the target list; used by watch mode after a config reload.
func (r *Runner) SetTargets(targets []model.Target) { r.targets = targets }

// RunCycle executes one full cycle. force bypasses schedule gating. The only
// error it returns is a failure to persist the state; everything that happens
// per target is isolated, logged and carried in the state instead.
func (r *Runner) RunCycle(ctx context.Context, force bool) error {
	st := r.store.Load()
	now := state.Stamp(r.now())

	checked := 0
	for _, target := range r.targets {
		ts := st.Target(target.ID)
		if !force && !schedule.IsDue(target.Schedule, ts.LastCheckAt, now) {
			continue
		}
		checked++
		r.checkTarget(ctx, target, ts, now)
	}

	st.UpdatedAt = &now
	if err := r.store.Save(st); err != nil {
		return err
	}

	if checked > 0 {
		r.log.Info("cycle complete", logx.Int("checked", checked), logx.Int("targets", len(r.targets)))
	} else {
		r.log.Debug("cycle complete, nothing due", logx.Int("targets", len(r.targets)))
	}
	return nil
}

func (r *Runner) checkTarget(ctx context.Context, target model.Target, ts *model.TargetState, now time.Time) {
	log := r.log.With(logx.String("target", target.ID))
	log.Info("checking", logx.String("url", target.URL))

	started := time.Now()
	content, err := r.fetcher.Fetch(ctx, target.URL)
	if err != nil {
		// Fetch failure: record unknown, stamp the attempt, no notification.
		log.Error("fetch failed", logx.Err(err))
		ts.LastState = model.StateUnknown
		ts.LastCheckAt = &now
		r.record(ctx, history.Entry{
			At: now, TargetID: target.ID, State: string(model.StateUnknown),
			Duration: time.Since(started), Error: err.Error(),
		})
		return
	}

	current, marker := classify.Classify(content, target.OutOfStockTerms)
	if current == model.StateOutOfStock {
		log.Info("out of stock", logx.String("marker", marker))
	} else {
		log.Info("in stock")
	}

	prev := ts.LastState
	if notify.ShouldNotify(prev, current, target.NotifyOnSameState) {
		r.notifier.Dispatch(ctx, notify.Event{
			Target: target,
			State:  current,
			Marker: marker,
			At:     now,
		})
	} else {
		log.Info("state unchanged, no notification", logx.String("state", string(current)))
	}

	ts.LastState = current
	ts.LastMarker = marker
	ts.LastCheckAt = &now

	r.record(ctx, history.Entry{
		At: now, TargetID: target.ID, State: string(current),
		Marker: marker, Duration: time.Since(started),
	})
}

func (r *Runner) record(ctx context.Context, e history.Entry) {
	if err := r.journal.Append(ctx, e); err != nil {
		r.log.Warn("history append failed", logx.String("target", e.TargetID), logx.Err(err))
	}
}
