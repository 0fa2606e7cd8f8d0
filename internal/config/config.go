// Package config loads and validates the stockwatch configuration.
//
// The file may be JSON or YAML (YAML is coerced to JSON and decoded with the
// same strict decoder). Validation happens once at load time and produces
// fully-typed model.Target values; nothing downstream re-validates.
package config

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"stockwatch/internal/model"
	"stockwatch/internal/schedule"
)

// Config is the decoded configuration file.
type Config struct {
	Targets []TargetConfig `json:"targets"`

	Logging  LoggingConfig  `json:"logging,omitempty"`
	Fetch    FetchConfig    `json:"fetch,omitempty"`
	SMTP     SMTPConfig     `json:"smtp,omitempty"`
	Telegram TelegramConfig `json:"telegram,omitempty"`
	History  HistoryConfig  `json:"history,omitempty"`
}

type LoggingConfig struct {
	Level   string `json:"level,omitempty"`
	Console *bool  `json:"console,omitempty"` // default true
	File    struct {
		Enabled bool   `json:"enabled,omitempty"`
		Path    string `json:"path,omitempty"`
	} `json:"file,omitempty"`
}

func (l LoggingConfig) ConsoleEnabled() bool {
	return l.Console == nil || *l.Console
}

type FetchConfig struct {
	// TimeoutSeconds bounds one page fetch. Default 30.
	TimeoutSeconds int `json:"timeout_seconds,omitempty"`
	// MinGap is a Go duration string spacing consecutive fetches ("2s").
	// Empty disables the limiter.
	MinGap string `json:"min_gap,omitempty"`
}

// SMTPConfig mirrors the transport settings. Environment variables
// (SMTP_HOST, SMTP_PORT, SMTP_USER, SMTP_PASS, EMAIL_FROM, SMTP_USE_TLS)
// override file values so secrets can stay out of the config file.
type SMTPConfig struct {
	Host     string `json:"host,omitempty"`
	Port     int    `json:"port,omitempty"`
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
	From     string `json:"from,omitempty"`
	UseTLS   *bool  `json:"use_tls,omitempty"` // default true
}

type TelegramConfig struct {
	Token string `json:"token,omitempty"` // env TELEGRAM_TOKEN overrides
}

type HistoryConfig struct {
	// Driver is "none" (default) or "sqlite".
	Driver      string `json:"driver,omitempty"`
	Path        string `json:"path,omitempty"`
	BusyTimeout string `json:"busy_timeout,omitempty"` // Go duration string
}

// TargetConfig is the raw, loosely-typed form of one target.
type TargetConfig struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
	URL  string `json:"url"`

	OutOfStockTerms StringList `json:"out_of_stock_terms"`

	Schedule *ScheduleConfig `json:"schedule,omitempty"`

	EmailsOnOutOfStock StringList `json:"emails_on_out_of_stock,omitempty"`
	EmailsOnInStock    StringList `json:"emails_on_in_stock,omitempty"`

	TelegramChatsOnOutOfStock Int64List `json:"telegram_chats_on_out_of_stock,omitempty"`
	TelegramChatsOnInStock    Int64List `json:"telegram_chats_on_in_stock,omitempty"`

	NotifyOnSameState bool `json:"notify_on_same_state,omitempty"`
}

// ScheduleConfig is the raw schedule block. Mode defaults to "hourly".
type ScheduleConfig struct {
	Mode            string `json:"mode,omitempty"`
	IntervalSeconds int    `json:"interval_seconds,omitempty"`
	Time            string `json:"time,omitempty"` // daily, "HH:MM"
	Expr            string `json:"expr,omitempty"` // cron
}

// StringList accepts either a JSON array of strings or one comma-separated
// string. Entries are trimmed and empties dropped.
type StringList []string

func (l *StringList) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*l = splitTrim(s)
		return nil
	}
	var raw []string
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("expected a string or a list of strings")
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	*l = out
	return nil
}

// Int64List accepts a JSON array of integers, an array of numeric strings,
// or one comma-separated string.
type Int64List []int64

func (l *Int64List) UnmarshalJSON(b []byte) error {
	var nums []int64
	if err := json.Unmarshal(b, &nums); err == nil {
		*l = nums
		return nil
	}

	var parts []string
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		parts = splitTrim(s)
	} else if err := json.Unmarshal(b, &parts); err != nil {
		return fmt.Errorf("expected integers or a comma-separated string")
	}

	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		n, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid chat id %q", p)
		}
		out = append(out, n)
	}
	*l = out
	return nil
}

func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// Validate checks the whole config and returns the typed target list, in
// configured order. All problems are configuration errors: the caller treats
// them as fatal before any state is touched.
func (c *Config) Validate() ([]model.Target, error) {
	if len(c.Targets) == 0 {
		return nil, fmt.Errorf("config must contain at least one target")
	}

	targets := make([]model.Target, 0, len(c.Targets))
	seen := map[string]bool{}
	for i, tc := range c.Targets {
		name := strings.TrimSpace(tc.Name)
		if name == "" {
			name = fmt.Sprintf("target_%d", i+1)
		}
		id := strings.TrimSpace(tc.ID)
		if id == "" {
			id = fmt.Sprintf("target_%d", i+1)
		}
		if seen[id] {
			return nil, fmt.Errorf("target %q: duplicate id", id)
		}
		seen[id] = true

		url := strings.TrimSpace(tc.URL)
		if url == "" {
			return nil, fmt.Errorf("target %q: url is required", name)
		}
		if len(tc.OutOfStockTerms) == 0 {
			return nil, fmt.Errorf("target %q: out_of_stock_terms must contain at least one value", name)
		}

		sched, err := buildSchedule(tc.Schedule)
		if err != nil {
			return nil, fmt.Errorf("target %q: %w", name, err)
		}

		targets = append(targets, model.Target{
			ID:                        id,
			Name:                      name,
			URL:                       url,
			OutOfStockTerms:           tc.OutOfStockTerms,
			Schedule:                  sched,
			EmailsOnOutOfStock:        tc.EmailsOnOutOfStock,
			EmailsOnInStock:           tc.EmailsOnInStock,
			TelegramChatsOnOutOfStock: tc.TelegramChatsOnOutOfStock,
			TelegramChatsOnInStock:    tc.TelegramChatsOnInStock,
			NotifyOnSameState:         tc.NotifyOnSameState,
		})
	}
	return targets, nil
}

func buildSchedule(sc *ScheduleConfig) (schedule.Schedule, error) {
	if sc == nil {
		return schedule.NewHourly(time.Hour)
	}
	mode := strings.ToLower(strings.TrimSpace(sc.Mode))
	switch mode {
	case "", "hourly":
		interval := sc.IntervalSeconds
		if interval == 0 {
			interval = 3600
		}
		if interval <= 0 {
			return schedule.Schedule{}, fmt.Errorf("interval_seconds must be > 0")
		}
		return schedule.NewHourly(time.Duration(interval) * time.Second)
	case "daily":
		return schedule.ParseDaily(sc.Time)
	case "cron":
		return schedule.NewCron(sc.Expr)
	default:
		return schedule.Schedule{}, fmt.Errorf("unknown schedule mode %q, expected hourly, daily or cron", mode)
	}
}

// FetchMinGap parses the fetch spacing, empty meaning disabled.
func (c *Config) FetchMinGap() (time.Duration, error) {
	s := strings.TrimSpace(c.Fetch.MinGap)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("fetch.min_gap: invalid duration %q: %w", s, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("fetch.min_gap: duration must be >= 0")
	}
	return d, nil
}

// HistoryBusyTimeout parses the sqlite busy timeout, empty meaning default.
func (c *Config) HistoryBusyTimeout() (time.Duration, error) {
	s := strings.TrimSpace(c.History.BusyTimeout)
	if s == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("history.busy_timeout: invalid duration %q: %w", s, err)
	}
	return d, nil
}
