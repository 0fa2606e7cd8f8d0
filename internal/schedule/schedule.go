package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

type Kind int

const (
	KindHourly Kind = iota
	KindDaily
	KindCron
)

func (k Kind) String() string {
	switch k {
	case KindHourly:
		return "hourly"
	case KindDaily:
		return "daily"
	case KindCron:
		return "cron"
	default:
		return "unknown"
	}
}

// Schedule is a validated check schedule. Construct through NewHourly,
// NewDaily, ParseDaily or NewCron; the zero value is not meaningful.
type Schedule struct {
	Kind Kind

	// Interval is the minimum gap between checks (hourly mode).
	Interval time.Duration

	// MinuteOfDay is the earliest minute a daily check may run, in [0,1439].
	MinuteOfDay int

	// Expr is the original cron expression, Spec its parsed form (cron mode).
	Expr string
	Spec cron.Schedule
}

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

func NewHourly(interval time.Duration) (Schedule, error) {
	if interval <= 0 {
		return Schedule{}, fmt.Errorf("hourly interval must be > 0, got %v", interval)
	}
	return Schedule{Kind: KindHourly, Interval: interval}, nil
}

func NewDaily(minuteOfDay int) (Schedule, error) {
	if minuteOfDay < 0 || minuteOfDay > 1439 {
		return Schedule{}, fmt.Errorf("daily minute-of-day must be in [0,1439], got %d", minuteOfDay)
	}
	return Schedule{Kind: KindDaily, MinuteOfDay: minuteOfDay}, nil
}

// ParseDaily parses a "HH:MM" wall-clock time into a daily schedule.
func ParseDaily(hhmm string) (Schedule, error) {
	h, m, err := parseHHMM(hhmm)
	if err != nil {
		return Schedule{}, err
	}
	return NewDaily(h*60 + m)
}

func NewCron(expr string) (Schedule, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Schedule{}, fmt.Errorf("cron expression is empty")
	}
	spec, err := cronParser.Parse(expr)
	if err != nil {
		return Schedule{}, fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return Schedule{Kind: KindCron, Expr: expr, Spec: spec}, nil
}

// IsDue reports whether a check should run at now, given the time of the last
// completed check attempt (nil means no check has happened yet).
//
// Hourly: due once at least Interval has elapsed; the boundary is inclusive.
// Daily: never before the threshold minute; after it, due if no check has yet
// completed on now's calendar date.
// Cron: due if an activation strictly after lastCheckAt has already passed.
func IsDue(s Schedule, lastCheckAt *time.Time, now time.Time) bool {
	switch s.Kind {
	case KindHourly:
		if lastCheckAt == nil {
			return true
		}
		return now.Sub(*lastCheckAt) >= s.Interval

	case KindDaily:
		minuteOfDay := now.Hour()*60 + now.Minute()
		if minuteOfDay < s.MinuteOfDay {
			return false
		}
		if lastCheckAt == nil {
			return true
		}
		ly, lm, ld := lastCheckAt.Date()
		ny, nm, nd := now.Date()
		last := time.Date(ly, lm, ld, 0, 0, 0, 0, time.UTC)
		cur := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
		return last.Before(cur)

	case KindCron:
		if s.Spec == nil {
			return false
		}
		if lastCheckAt == nil {
			return true
		}
		next := s.Spec.Next(*lastCheckAt)
		return !next.After(now)

	default:
		return false
	}
}

func parseHHMM(s string) (hour, minute int, err error) {
	s = strings.TrimSpace(s)
	if len(s) != 5 || s[2] != ':' {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	hour, err = strconv.Atoi(s[:2])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	minute, err = strconv.Atoi(s[3:])
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time %q, expected HH:MM", s)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("time %q out of range, expected HH:MM", s)
	}
	return hour, minute, nil
}
