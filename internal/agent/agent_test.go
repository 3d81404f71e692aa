package agent

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatumaykin/hive/internal/config"
	"github.com/aatumaykin/hive/internal/llm"
	"github.com/aatumaykin/hive/internal/logger"
	"github.com/aatumaykin/hive/internal/metrics"
	"github.com/aatumaykin/hive/internal/retry"
	"github.com/aatumaykin/hive/internal/schedule"
	"github.com/aatumaykin/hive/internal/tools"
)

type testEnv struct {
	shared   *Context
	executor *tools.Executor
	bridge   *tools.Bridge
	store    *schedule.Store
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	log, err := logger.New(logger.Config{Level: "error", Format: "text", Output: "stderr"})
	require.NoError(t, err)

	store := schedule.NewStore(filepath.Join(t.TempDir(), "schedules.jsonl"), log)
	registry := tools.NewRegistry()
	registry.Register(tools.Descriptor{Name: "gmail", Enabled: true, Permissions: []string{"send"}})
	bridge := tools.NewBridge(log)
	m := metrics.New()

	return &testEnv{
		shared:   NewContext(),
		executor: tools.NewExecutor(registry, bridge, store, m, log),
		bridge:   bridge,
		store:    store,
		metrics:  m,
		logger:   log,
	}
}

func (e *testEnv) newAgent(t *testing.T, cfg config.AgentConfig, provider llm.Provider) *Agent {
	t.Helper()
	if cfg.SoulText == "" {
		cfg.SoulText = "You are " + cfg.Name + ", a helpful teammate."
	}
	retryCfg := retry.Config{MaxAttempts: 1, InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond}
	return New(cfg, []config.AgentConfig{cfg}, e.shared, provider, e.executor, retryCfg, e.metrics, e.logger)
}

func boolPtr(v bool) *bool { return &v }

func TestAgent_SelfFilter(t *testing.T) {
	env := newTestEnv(t)
	ag := env.newAgent(t, config.AgentConfig{Name: "scout"}, llm.NewFixedProvider("should never be called"))

	reply := ag.OnMessage(context.Background(), MessageRequest{
		Content:        "a note from myself",
		Sender:         "scout",
		RecordIncoming: true,
		MessageID:      "msg-1",
	})

	assert.Nil(t, reply)
	// The message was still recorded.
	assert.Equal(t, 1, env.shared.Len())
}

func TestAgent_OverridePriority(t *testing.T) {
	env := newTestEnv(t)

	// The classification would say NO, but the override forces a respond.
	provider := llm.NewFixedProvider("Taking care of it.")
	ag := env.newAgent(t, config.AgentConfig{Name: "scout"}, provider)

	reply := ag.OnMessage(context.Background(), MessageRequest{
		Content:         "routine status line",
		Sender:          "alice",
		RespondOverride: boolPtr(true),
		RecordIncoming:  true,
		MessageID:       "msg-1",
	})

	require.NotNil(t, reply)
	assert.Equal(t, ReplyKindText, reply.Kind)
	assert.Equal(t, "Taking care of it.", reply.Text)

	// Exactly one completion call: the override skipped the classification.
	assert.Equal(t, 1, provider.CallCount())
}

func TestAgent_OverrideFalseSkipsJudgment(t *testing.T) {
	env := newTestEnv(t)

	// First call would be the reaction decision; NONE means silence.
	provider := llm.NewFixedProvider("NONE")
	ag := env.newAgent(t, config.AgentConfig{Name: "scout"}, provider)

	reply := ag.OnMessage(context.Background(), MessageRequest{
		Content:         "@scout are you there?",
		Sender:          "alice",
		RespondOverride: boolPtr(false),
		RecordIncoming:  true,
	})

	assert.Nil(t, reply)
}

func TestAgent_MentionForcesRespond(t *testing.T) {
	env := newTestEnv(t)
	provider := llm.NewFixedProvider("Here!")
	ag := env.newAgent(t, config.AgentConfig{Name: "scout"}, provider)

	reply := ag.OnMessage(context.Background(), MessageRequest{
		Content:        "@scout can you check the feeds?",
		Sender:         "alice",
		RecordIncoming: true,
		MessageID:      "msg-1",
	})

	require.NotNil(t, reply)
	assert.Equal(t, "Here!", reply.Text)
	assert.Equal(t, 1, provider.CallCount())
}

func TestAgent_RespondJudgment(t *testing.T) {
	env := newTestEnv(t)

	// Classification says YES, then the completion produces the reply.
	provider := llm.NewFixturesProvider([]string{"YES", "I can help with that."})
	ag := env.newAgent(t, config.AgentConfig{Name: "scout"}, provider)

	reply := ag.OnMessage(context.Background(), MessageRequest{
		Content:        "anyone good with feeds?",
		Sender:         "alice",
		RecordIncoming: true,
		MessageID:      "msg-1",
	})

	require.NotNil(t, reply)
	assert.Equal(t, "I can help with that.", reply.Text)
}

func TestAgent_ReactionFallback(t *testing.T) {
	env := newTestEnv(t)

	// Classification says no, reaction decision yields an emoji.
	provider := llm.NewFixturesProvider([]string{"NO", "🔥 love this"})
	ag := env.newAgent(t, config.AgentConfig{Name: "scout"}, provider)

	reply := ag.OnMessage(context.Background(), MessageRequest{
		Content:        "shipped the release!",
		Sender:         "alice",
		RecordIncoming: true,
		MessageID:      "msg-1",
	})

	require.NotNil(t, reply)
	assert.Equal(t, ReplyKindReaction, reply.Kind)
	assert.Equal(t, "🔥", reply.Emoji)
	// A reaction is not committed to the shared history.
	assert.Equal(t, 1, env.shared.Len())
}

func TestAgent_ReactionDeclined(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		decision string
	}{
		{"NONE upper", "NONE"},
		{"none lower", "none, nothing fits"},
		{"empty", "   "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider := llm.NewFixturesProvider([]string{"NO", tt.decision})
			ag := env.newAgent(t, config.AgentConfig{Name: "scout"}, provider)

			reply := ag.OnMessage(context.Background(), MessageRequest{
				Content: "just chatting",
				Sender:  "alice",
			})
			assert.Nil(t, reply)
		})
	}
}

func TestAgent_CompletionFailureMeansSilence(t *testing.T) {
	env := newTestEnv(t)
	ag := env.newAgent(t, config.AgentConfig{Name: "scout"}, llm.NewErrorProvider())

	reply := ag.OnMessage(context.Background(), MessageRequest{
		Content:         "hello",
		Sender:          "alice",
		RespondOverride: boolPtr(true),
		RecordIncoming:  true,
		MessageID:       "msg-1",
	})

	assert.Nil(t, reply)
	// The inbound message is still recorded; no reply was committed.
	assert.Equal(t, 1, env.shared.Len())
}

func TestAgent_ToolCallRewritesReply(t *testing.T) {
	env := newTestEnv(t)
	env.bridge.Connect("gmail", "http://localhost:9000")

	provider := llm.NewFixturesProvider([]string{
		"On it. [TOOL: gmail | action: send | params: to=a@b.com, subject=Hi]",
		"Email sent to a@b.com.",
	})
	cfg := config.AgentConfig{
		Name:  "scout",
		Tools: []config.ToolConfig{{Name: "gmail", Enabled: true, Permissions: []string{"send"}}},
	}
	ag := env.newAgent(t, cfg, provider)

	reply := ag.OnMessage(context.Background(), MessageRequest{
		Content:         "@scout send the update",
		Sender:          "alice",
		RespondOverride: boolPtr(true),
		RecordIncoming:  true,
		MessageID:       "msg-1",
	})

	require.NotNil(t, reply)
	assert.Equal(t, "Email sent to a@b.com.", reply.Text)
	// One call for the reply, one for the result rewrite.
	assert.Equal(t, 2, provider.CallCount())
}

func TestAgent_UnauthorizedToolCallKeepsReply(t *testing.T) {
	env := newTestEnv(t)
	env.bridge.Connect("gmail", "http://localhost:9000")

	raw := "Trying. [TOOL: gmail | action: send | params: to=a@b.com]"
	provider := llm.NewFixedProvider(raw)
	// No gmail in the agent's tool list.
	ag := env.newAgent(t, config.AgentConfig{Name: "scout"}, provider)

	reply := ag.OnMessage(context.Background(), MessageRequest{
		Content:         "@scout send the update",
		Sender:          "alice",
		RespondOverride: boolPtr(true),
	})

	require.NotNil(t, reply)
	// The denied call vanishes: only the LLM text remains, unmodified.
	assert.Equal(t, raw, reply.Text)
	assert.Equal(t, 1, provider.CallCount())
}

func TestAgent_ScheduleToolAlwaysAvailable(t *testing.T) {
	env := newTestEnv(t)

	provider := llm.NewFixedProvider(
		"[TOOL: schedule | action: write | params: type=interval, interval_minutes=2, task=Check the feeds]")
	ag := env.newAgent(t, config.AgentConfig{Name: "scout"}, provider)

	reply := ag.OnMessage(context.Background(), MessageRequest{
		Content:         "@scout remind me every 2 minutes",
		Sender:          "alice",
		RespondOverride: boolPtr(true),
		ChannelID:       "chan-42",
	})

	require.NotNil(t, reply)
	assert.True(t, strings.HasPrefix(reply.Text, "Scheduled. Job id: "), reply.Text)

	jobs, err := env.store.List("scout")
	require.NoError(t, err)
	require.Len(t, jobs, 1)
	assert.Equal(t, "Check the feeds", jobs[0].Task)
	assert.Equal(t, schedule.KindInterval, jobs[0].Kind)
	// channel_id was injected from the inbound event.
	assert.Equal(t, "chan-42", jobs[0].ChannelID)
}

func TestAgent_HandleReaction(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name      string
		response  string
		wantReply string
		wantEmoji string
	}{
		{
			name:      "reply and react",
			response:  "REPLY: Thanks!\nREACT: ❤️",
			wantReply: "Thanks!",
			wantEmoji: "❤️",
		},
		{
			name:      "reply only",
			response:  "REPLY: Glad you liked it\nREACT: NONE",
			wantReply: "Glad you liked it",
		},
		{
			name:      "react only case-insensitive",
			response:  "reply: none\nreact: 👍",
			wantEmoji: "👍",
		},
		{
			name:     "nothing",
			response: "REPLY: NONE\nREACT: NONE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ag := env.newAgent(t, config.AgentConfig{Name: "scout"}, llm.NewFixedProvider(tt.response))

			reply, emoji := ag.HandleReaction(context.Background(), "🔥", "my prior message", "alice")
			assert.Equal(t, tt.wantReply, reply)
			assert.Equal(t, tt.wantEmoji, emoji)
		})
	}
}

func TestAgent_HandleReactionFailure(t *testing.T) {
	env := newTestEnv(t)
	ag := env.newAgent(t, config.AgentConfig{Name: "scout"}, llm.NewErrorProvider())

	reply, emoji := ag.HandleReaction(context.Background(), "🔥", "msg", "alice")
	assert.Empty(t, reply)
	assert.Empty(t, emoji)
}

func TestAgent_ShouldRespond(t *testing.T) {
	env := newTestEnv(t)

	tests := []struct {
		name     string
		response string
		want     bool
	}{
		{"yes", "YES", true},
		{"yes lowercase in sentence", "well, yes I should", true},
		{"no", "NO", false},
		{"unrelated", "maybe later", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ag := env.newAgent(t, config.AgentConfig{Name: "scout"}, llm.NewFixedProvider(tt.response))
			assert.Equal(t, tt.want, ag.ShouldRespond(context.Background(), "anyone around?"))
		})
	}

	t.Run("failure means no", func(t *testing.T) {
		ag := env.newAgent(t, config.AgentConfig{Name: "scout"}, llm.NewErrorProvider())
		assert.False(t, ag.ShouldRespond(context.Background(), "anyone around?"))
	})
}
