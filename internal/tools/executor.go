package tools

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/aatumaykin/hive/internal/logger"
	"github.com/aatumaykin/hive/internal/metrics"
	"github.com/aatumaykin/hive/internal/schedule"
)

// ScheduleToolName is the pseudo-tool for schedule management. It is always
// authorized regardless of an agent's declared tool list: it manipulates the
// agent's own scheduler entries, not an external system.
const ScheduleToolName = "schedule"

// Executor orchestrates tool calls: registry authorization, bridge dispatch
// and local handling of the schedule pseudo-tool.
type Executor struct {
	registry *Registry
	bridge   *Bridge
	store    *schedule.Store
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

// NewExecutor creates an Executor over the given registry, bridge and
// schedule store.
func NewExecutor(registry *Registry, bridge *Bridge, store *schedule.Store, m *metrics.Metrics, log *logger.Logger) *Executor {
	return &Executor{
		registry: registry,
		bridge:   bridge,
		store:    store,
		metrics:  m,
		logger:   log,
	}
}

// Run executes one parsed tool call on behalf of an agent.
// A nil Result means the call produced nothing the agent should surface:
// unauthorized, unconnected, or failed. Unauthorized calls are logged for
// audit and counted, but from the user's perspective simply vanish.
func (e *Executor) Run(ctx context.Context, agentName string, agentTools []Descriptor, call Call) (Result, error) {
	if call.Tool == ScheduleToolName {
		e.metrics.ToolCalls.WithLabelValues(call.Tool, call.Action).Inc()
		return e.runSchedule(agentName, call)
	}

	if !e.registry.Authorize(agentTools, call.Tool, call.Action) {
		e.metrics.ToolDenials.WithLabelValues(call.Tool, call.Action).Inc()
		e.logger.Warn("tool call denied",
			logger.Field{Key: "agent", Value: agentName},
			logger.Field{Key: "tool", Value: call.Tool},
			logger.Field{Key: "action", Value: call.Action})
		return nil, nil
	}

	e.metrics.ToolCalls.WithLabelValues(call.Tool, call.Action).Inc()
	return e.bridge.Execute(ctx, call.Tool, call.Action, call.Params)
}

// runSchedule handles the schedule pseudo-tool locally.
// Actions: list, delete, and write (the default for anything else).
func (e *Executor) runSchedule(agentName string, call Call) (Result, error) {
	switch call.Action {
	case "list":
		return e.scheduleList(agentName)
	case "delete":
		return e.scheduleDelete(agentName, call.Params["job_id"])
	default:
		return e.scheduleWrite(agentName, call.Params)
	}
}

func (e *Executor) scheduleWrite(agentName string, params map[string]string) (Result, error) {
	p := schedule.AddParams{
		AgentName: agentName,
		Task:      params["task"],
		Kind:      schedule.Kind(params["type"]),
		Cron:      params["cron"],
		ChannelID: params["channel_id"],
	}
	if raw, ok := params["interval_minutes"]; ok {
		minutes, err := strconv.Atoi(raw)
		if err != nil {
			e.logger.Warn("invalid interval_minutes in schedule call",
				logger.Field{Key: "agent", Value: agentName},
				logger.Field{Key: "value", Value: raw})
			return nil, nil
		}
		p.IntervalMinutes = minutes
	}

	job, err := e.store.Add(p)
	if err != nil {
		e.logger.Warn("schedule write rejected",
			logger.Field{Key: "agent", Value: agentName},
			logger.Field{Key: "error", Value: err})
		return nil, nil
	}

	return Result{
		"status":   "scheduled",
		"job_id":   job.ID,
		"next_run": job.NextRun.Format(time.RFC3339),
	}, nil
}

func (e *Executor) scheduleList(agentName string) (Result, error) {
	jobs, err := e.store.List(agentName)
	if err != nil {
		return nil, err
	}

	entries := make([]map[string]any, 0, len(jobs))
	for _, job := range jobs {
		entries = append(entries, map[string]any{
			"job_id":        job.ID,
			"schedule_type": string(job.Kind),
			"next_run":      job.NextRun.Format(time.RFC3339),
			"task":          job.Task,
		})
	}
	return Result{"status": "ok", "jobs": entries}, nil
}

func (e *Executor) scheduleDelete(agentName, jobID string) (Result, error) {
	if jobID == "" {
		e.logger.Warn("schedule delete without job_id",
			logger.Field{Key: "agent", Value: agentName})
		return nil, nil
	}

	err := e.store.Remove(jobID, agentName)
	if errors.Is(err, schedule.ErrJobNotFound) {
		return Result{"status": "not_found", "job_id": jobID}, nil
	}
	if err != nil {
		return nil, err
	}
	return Result{"status": "ok", "job_id": jobID}, nil
}
