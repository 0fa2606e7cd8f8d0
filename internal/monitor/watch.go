package monitor

import (
	"context"
	"path/filepath"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/fsnotify/fsnotify"

	"stockwatch/internal/config"
	"stockwatch/pkg/logx"
)

// Watch runs cycles every interval until the context is cancelled. The config
// file is watched; an edit triggers a reload, and a reload that fails to
// parse or validate keeps the previous target list. Under systemd the loop
// sends READY once and pets the watchdog after every cycle; elsewhere these
// calls are no-ops.
func (r *Runner) Watch(ctx context.Context, cfgPath string, interval time.Duration) error {
	if interval <= 0 {
		interval = time.Minute
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer func() {
		_ = watcher.Close()
	}()
	// Watch the directory: editors replace files, which drops a watch placed
	// on the file itself.
	if err := watcher.Add(filepath.Dir(cfgPath)); err != nil {
		return err
	}

	_, _ = daemon.SdNotify(false, daemon.SdNotifyReady)
	r.log.Info("watch mode started", logx.Duration("interval", interval), logx.String("config", cfgPath))

	runOnce := func() {
		if err := r.RunCycle(ctx, false); err != nil {
			r.log.Error("cycle failed", logx.Err(err))
		}
		_, _ = daemon.SdNotify(false, daemon.SdNotifyWatchdog)
	}
	runOnce()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.log.Info("watch mode stopped")
			return nil

		case <-ticker.C:
			runOnce()

		case ev, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != filepath.Clean(cfgPath) {
				continue
			}
			if !ev.Op.Has(fsnotify.Write) && !ev.Op.Has(fsnotify.Create) {
				continue
			}
			r.reload(cfgPath)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			r.log.Warn("config watcher error", logx.Err(err))
		}
	}
}

func (r *Runner) reload(cfgPath string) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		r.log.Warn("config reload failed, keeping previous targets", logx.Err(err))
		return
	}
	targets, err := cfg.Validate()
	if err != nil {
		r.log.Warn("config reload invalid, keeping previous targets", logx.Err(err))
		return
	}
	r.SetTargets(targets)
	r.log.Info("config reloaded", logx.Int("targets", len(targets)))
}
