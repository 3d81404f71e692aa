package tools

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatumaykin/hive/internal/logger"
	"github.com/aatumaykin/hive/internal/metrics"
	"github.com/aatumaykin/hive/internal/schedule"
)

func testExecutor(t *testing.T) (*Executor, *Bridge, *schedule.Store) {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "text", Output: "stderr"})
	require.NoError(t, err)

	store := schedule.NewStore(filepath.Join(t.TempDir(), "schedules.jsonl"), log)
	registry := NewRegistry()
	registry.Register(Descriptor{Name: "gmail", Enabled: true, Permissions: []string{"send"}})
	bridge := NewBridge(log)

	return NewExecutor(registry, bridge, store, metrics.New(), log), bridge, store
}

func TestExecutor_AuthorizedCallDispatchesToBridge(t *testing.T) {
	executor, bridge, _ := testExecutor(t)
	bridge.Connect("gmail", "http://localhost:9000")

	agentTools := []Descriptor{{Name: "gmail", Enabled: true, Permissions: []string{"send"}}}
	result, err := executor.Run(context.Background(), "scout", agentTools, Call{
		Tool:   "gmail",
		Action: "send",
		Params: map[string]string{"to": "a@b.com"},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "gmail", result["tool"])
	assert.Equal(t, "send", result["action"])
}

func TestExecutor_UnauthorizedCallIsDropped(t *testing.T) {
	executor, bridge, _ := testExecutor(t)
	bridge.Connect("gmail", "http://localhost:9000")

	tests := []struct {
		name       string
		agentTools []Descriptor
		call       Call
	}{
		{
			name:       "tool not in agent list",
			agentTools: nil,
			call:       Call{Tool: "gmail", Action: "send"},
		},
		{
			name:       "tool disabled",
			agentTools: []Descriptor{{Name: "gmail", Enabled: false, Permissions: []string{"send"}}},
			call:       Call{Tool: "gmail", Action: "send"},
		},
		{
			name:       "action outside permissions",
			agentTools: []Descriptor{{Name: "gmail", Enabled: true, Permissions: []string{"read"}}},
			call:       Call{Tool: "gmail", Action: "send"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := executor.Run(context.Background(), "scout", tt.agentTools, tt.call)
			require.NoError(t, err)
			assert.Nil(t, result)
		})
	}
}

func TestExecutor_UnconnectedToolYieldsNoResult(t *testing.T) {
	executor, _, _ := testExecutor(t)

	agentTools := []Descriptor{{Name: "gmail", Enabled: true, Permissions: []string{"send"}}}
	result, err := executor.Run(context.Background(), "scout", agentTools, Call{
		Tool: "gmail", Action: "send", Params: map[string]string{},
	})
	require.NoError(t, err)
	assert.Nil(t, result)
}

func TestExecutor_ScheduleAlwaysAuthorized(t *testing.T) {
	executor, _, _ := testExecutor(t)

	// No agent tool list at all; the schedule pseudo-tool still works.
	result, err := executor.Run(context.Background(), "scout", nil, Call{
		Tool:   ScheduleToolName,
		Action: "write",
		Params: map[string]string{
			"type":             "interval",
			"interval_minutes": "10",
			"task":             "check the feeds",
		},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, "scheduled", result["status"])
	assert.NotEmpty(t, result["job_id"])
	assert.NotEmpty(t, result["next_run"])
}

func TestExecutor_ScheduleListAndDelete(t *testing.T) {
	executor, _, store := testExecutor(t)

	job, err := store.Add(schedule.AddParams{
		AgentName: "scout", Task: "ping", Kind: schedule.KindInterval, IntervalMinutes: 5,
	})
	require.NoError(t, err)

	result, err := executor.Run(context.Background(), "scout", nil, Call{
		Tool: ScheduleToolName, Action: "list", Params: map[string]string{},
	})
	require.NoError(t, err)
	require.NotNil(t, result)
	jobs, ok := result["jobs"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, jobs, 1)
	assert.Equal(t, job.ID, jobs[0]["job_id"])
	assert.Equal(t, "interval", jobs[0]["schedule_type"])

	// Another agent cannot delete someone else's job.
	result, err = executor.Run(context.Background(), "archivist", nil, Call{
		Tool: ScheduleToolName, Action: "delete", Params: map[string]string{"job_id": job.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "not_found", result["status"])

	result, err = executor.Run(context.Background(), "scout", nil, Call{
		Tool: ScheduleToolName, Action: "delete", Params: map[string]string{"job_id": job.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, "ok", result["status"])
	assert.Equal(t, job.ID, result["job_id"])
}

func TestExecutor_ScheduleWriteRejectsBadParams(t *testing.T) {
	executor, _, store := testExecutor(t)

	tests := []struct {
		name   string
		params map[string]string
	}{
		{"missing task", map[string]string{"type": "interval", "interval_minutes": "5"}},
		{"bad interval", map[string]string{"type": "interval", "interval_minutes": "soon", "task": "t"}},
		{"unknown type", map[string]string{"type": "weekly", "task": "t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := executor.Run(context.Background(), "scout", nil, Call{
				Tool: ScheduleToolName, Action: "write", Params: tt.params,
			})
			require.NoError(t, err)
			assert.Nil(t, result)
		})
	}

	jobs, err := store.List("")
	require.NoError(t, err)
	assert.Empty(t, jobs)
}

func TestFormatScheduleResult(t *testing.T) {
	tests := []struct {
		name   string
		result Result
		want   string
	}{
		{
			name:   "scheduled",
			result: Result{"status": "scheduled", "job_id": "j1", "next_run": "2026-03-10T14:30:00Z"},
			want:   "Scheduled. Job id: j1. Next run: 2026-03-10T14:30:00Z.",
		},
		{
			name:   "empty list",
			result: Result{"status": "ok", "jobs": []map[string]any{}},
			want:   "No schedules found.",
		},
		{
			name: "list",
			result: Result{"status": "ok", "jobs": []map[string]any{
				{"job_id": "j1", "schedule_type": "cron", "next_run": "2026-03-10T14:30:00Z", "task": "digest"},
			}},
			want: "Schedules:\n- j1 | cron | next: 2026-03-10T14:30:00Z | digest",
		},
		{
			name:   "removed",
			result: Result{"status": "ok", "job_id": "j1"},
			want:   "Removed schedule j1.",
		},
		{
			name:   "not found",
			result: Result{"status": "not_found", "job_id": "j1"},
			want:   "Schedule not found: j1.",
		},
		{
			name:   "fallback",
			result: Result{"status": "weird"},
			want:   "Schedule updated.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatScheduleResult(tt.result))
		})
	}
}

func TestResult_StringIsStable(t *testing.T) {
	result := Result{"tool": "gmail", "action": "send"}
	assert.Equal(t, "action: send; tool: gmail", result.String())
}
