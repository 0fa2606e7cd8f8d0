package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"stockwatch/internal/config"
	"stockwatch/internal/fetch"
	"stockwatch/internal/history"
	"stockwatch/internal/mailer"
	"stockwatch/internal/monitor"
	"stockwatch/internal/notify"
	"stockwatch/internal/state"
	"stockwatch/pkg/logx"
)

const (
	exitOK          = 0
	exitStartupFail = 1
	exitConfigFail  = 2
)

func main() {
	os.Exit(run())
}

func run() int {
	var (
		cfgPath   string
		statePath string
		envPath   string
		force     bool
		watch     bool
		interval  time.Duration
	)
	flag.StringVar(&cfgPath, "config", "monitor_targets.json", "path to targets config (json or yaml)")
	flag.StringVar(&statePath, "state", "monitor_state.json", "path to the persisted state file")
	flag.StringVar(&envPath, "env", "", "optional .env file with SMTP/Telegram secrets")
	flag.BoolVar(&force, "once", false, "check every target now, ignoring schedules")
	flag.BoolVar(&force, "force", false, "alias for -once")
	flag.BoolVar(&watch, "watch", false, "keep running, one cycle per -interval")
	flag.DurationVar(&interval, "interval", time.Minute, "cycle interval in watch mode")
	flag.Parse()

	// Secrets come from the environment; an explicit .env is loaded first,
	// otherwise a ./env file is picked up when present.
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil {
			fmt.Fprintln(os.Stderr, "fatal:", err)
			return exitStartupFail
		}
	} else {
		_ = godotenv.Load()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	bootLog := logx.NewConsole("INFO")

	cfg, err := config.Load(cfgPath)
	if err != nil {
		bootLog.Error("config load failed", logx.String("path", cfgPath), logx.Err(err))
		return exitConfigFail
	}
	targets, err := cfg.Validate()
	if err != nil {
		bootLog.Error("config invalid", logx.String("path", cfgPath), logx.Err(err))
		return exitConfigFail
	}

	log, err := logx.New(logx.Config{
		Level:   cfg.Logging.Level,
		Console: cfg.Logging.ConsoleEnabled(),
		File: logx.FileConfig{
			Enabled: cfg.Logging.File.Enabled,
			Path:    cfg.Logging.File.Path,
		},
	})
	if err != nil {
		bootLog.Error("logger setup failed", logx.Err(err))
		return exitStartupFail
	}
	defer func() {
		_ = log.Close()
	}()

	minGap, err := cfg.FetchMinGap()
	if err != nil {
		log.Error("config invalid", logx.Err(err))
		return exitConfigFail
	}
	fetcher := fetch.New(fetch.Config{
		Timeout: time.Duration(cfg.Fetch.TimeoutSeconds) * time.Second,
		MinGap:  minGap,
	})

	channels := []notify.Channel{
		notify.NewEmailChannel(mailer.New(cfg.SMTPFromEnv())),
	}
	if token := cfg.TelegramToken(); token != "" {
		tg, err := notify.NewTelegramChannel(token)
		if err != nil {
			log.Error("telegram channel setup failed", logx.Err(err))
			return exitStartupFail
		}
		channels = append(channels, tg)
	}
	notifier := notify.NewService(log.With(logx.String("comp", "notify")), channels...)

	busyTimeout, err := cfg.HistoryBusyTimeout()
	if err != nil {
		log.Error("config invalid", logx.Err(err))
		return exitConfigFail
	}
	journal, err := history.Open(history.Config{
		Driver:      cfg.History.Driver,
		Path:        cfg.History.Path,
		BusyTimeout: busyTimeout,
	}, log.With(logx.String("comp", "history")))
	if err != nil {
		log.Error("history setup failed", logx.Err(err))
		return exitStartupFail
	}
	defer func() {
		_ = journal.Close()
	}()

	store := state.NewStore(statePath, log.With(logx.String("comp", "state")))
	runner := monitor.NewRunner(targets, store, fetcher, notifier, journal,
		log.With(logx.String("comp", "monitor")))

	if watch {
		if err := runner.Watch(ctx, cfgPath, interval); err != nil {
			log.Error("watch mode failed", logx.Err(err))
			return exitStartupFail
		}
		return exitOK
	}

	if err := runner.RunCycle(ctx, force); err != nil {
		log.Error("cycle failed", logx.Err(err))
		return exitStartupFail
	}
	return exitOK
}
