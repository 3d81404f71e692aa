// Package schedule provides persistent storage and execution for scheduled
// agent jobs. Jobs carry a task text that is routed back into the owning
// agent's message path when they fire, on either a fixed interval or a
// restricted cron rule.
package schedule

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"
)

// Kind is the recurrence kind of a job.
type Kind string

const (
	// KindInterval fires every fixed number of minutes.
	KindInterval Kind = "interval"
	// KindCron fires at a minute/hour of day. Only the first two cron
	// fields are honored; day-of-month, month and weekday are ignored.
	KindCron Kind = "cron"
)

// defaultIntervalMinutes is the fallback period for a job that carries
// neither an interval nor a cron expression.
const defaultIntervalMinutes = 5

// Job represents one scheduled job owned by an agent.
// Exactly one of IntervalMinutes/Cron is populated, matching Kind.
type Job struct {
	ID              string    `json:"id"`
	AgentName       string    `json:"agent_name"`
	Task            string    `json:"task"`
	Kind            Kind      `json:"kind"`
	IntervalMinutes int       `json:"interval_minutes,omitempty"`
	Cron            string    `json:"cron,omitempty"`
	ChannelID       string    `json:"channel_id,omitempty"`
	NextRun         time.Time `json:"next_run"`
}

// FiringID returns the deduplication id for one specific occurrence of the
// job. It is derived from the job id and the next-run being fired, so a
// runner restart between firing and persisting the recomputed next-run
// cannot double-deliver the same occurrence.
func (j Job) FiringID() string {
	return j.ID + ":" + j.NextRun.UTC().Format(time.RFC3339)
}

// NextRunAfter computes the following run time for the job as of now.
func (j Job) NextRunAfter(now time.Time) time.Time {
	return ComputeNextRun(j.Kind, j.IntervalMinutes, j.Cron, now)
}

// ComputeNextRun computes a job's next run time.
// Interval jobs run at now plus the interval. Cron jobs honor only the
// minute and hour fields: the candidate is today at hour:minute with
// seconds zeroed, rolled forward one day when not strictly in the future.
// A job missing both parameters falls back to a fixed 5-minute interval.
func ComputeNextRun(kind Kind, intervalMinutes int, cronExpr string, now time.Time) time.Time {
	if kind == KindInterval && intervalMinutes > 0 {
		return now.Add(time.Duration(intervalMinutes) * time.Minute)
	}
	if kind == KindCron && cronExpr != "" {
		minute, hour := parseCronFields(cronExpr)
		candidate := time.Date(now.Year(), now.Month(), now.Day(), hour, minute, 0, 0, now.Location())
		if !candidate.After(now) {
			candidate = candidate.AddDate(0, 0, 1)
		}
		return candidate
	}
	return now.Add(defaultIntervalMinutes * time.Minute)
}

// ValidateCron checks a cron expression at job-add time. The expression may
// carry two fields (minute hour) or a full five-field rule; it is normalized
// to five fields and run through the standard cron parser so malformed
// expressions are rejected before a job is stored. The trailing three fields
// are still ignored when the next run is computed.
func ValidateCron(expr string) error {
	fields := strings.Fields(expr)
	switch len(fields) {
	case 2:
		fields = append(fields, "*", "*", "*")
	case 5:
	default:
		return fmt.Errorf("cron expression must have 2 or 5 fields, got %d", len(fields))
	}

	if _, err := cron.ParseStandard(strings.Join(fields, " ")); err != nil {
		return fmt.Errorf("invalid cron expression %q: %w", expr, err)
	}
	return nil
}

// parseCronFields extracts the minute and hour fields of a cron expression.
// Unparsable fields default to zero, matching the store's tolerance for
// records written by older versions.
func parseCronFields(expr string) (minute, hour int) {
	fields := strings.Fields(expr)
	if len(fields) < 2 {
		return 0, 0
	}
	minute, _ = strconv.Atoi(fields[0])
	hour, _ = strconv.Atoi(fields[1])
	if minute < 0 || minute > 59 {
		minute = 0
	}
	if hour < 0 || hour > 23 {
		hour = 0
	}
	return minute, hour
}
