// Package schedule decides when a monitored target is due for a check.
//
// A Schedule is a validated sum over three modes:
//   - hourly: a fixed interval since the last check
//   - daily: once per calendar date, at or after a minute-of-day threshold
//   - cron: a standard 5-field cron expression
//
// Evaluation is pure: IsDue only looks at the schedule, the last check time
// and the supplied clock instant.
package schedule
