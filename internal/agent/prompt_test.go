package agent

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aatumaykin/hive/internal/config"
	"github.com/aatumaykin/hive/internal/llm"
)

func TestPromptBuilder_SystemPrompt(t *testing.T) {
	scout := config.AgentConfig{
		Name:     "scout",
		SoulText: "You are scout, the team's researcher.\nYou love feeds.",
		Skills:   []string{"research"},
		Tools: []config.ToolConfig{
			{Name: "gmail", Enabled: true, Permissions: []string{"send", "read"}},
			{Name: "notion", Enabled: false, Permissions: []string{"read"}},
		},
	}
	archivist := config.AgentConfig{
		Name:   "archivist",
		Skills: []string{"archiving", "summaries"},
		Tools:  []config.ToolConfig{{Name: "notion", Enabled: true, Permissions: []string{"read"}}},
	}

	builder := NewPromptBuilder(scout, []config.AgentConfig{scout, archivist})
	prompt := builder.BuildSystemPrompt()

	assert.True(t, strings.HasPrefix(prompt, "You are scout, the team's researcher."))
	assert.Contains(t, prompt, "- archivist: skills=[archiving, summaries], tools=[notion]")
	assert.NotContains(t, prompt, "- scout:")
	assert.Contains(t, prompt, "[TOOL: tool_name | action: read/write/send | params: key=value, key=value]")
	assert.Contains(t, prompt, "Your tools: gmail(send, read)")
	// Disabled tools are not advertised.
	assert.NotContains(t, prompt, "notion(read)")
	assert.Contains(t, prompt, "type=interval with interval_minutes")
}

func TestPromptBuilder_NoTeammates(t *testing.T) {
	solo := config.AgentConfig{Name: "scout", SoulText: "You are scout."}
	builder := NewPromptBuilder(solo, []config.AgentConfig{solo})

	prompt := builder.BuildSystemPrompt()
	assert.Contains(t, prompt, "- (none)")
	assert.Contains(t, prompt, "Your tools: (none)")
}

func TestPromptBuilder_BuildMessages(t *testing.T) {
	scout := config.AgentConfig{Name: "scout", SoulText: "You are scout."}
	builder := NewPromptBuilder(scout, []config.AgentConfig{scout})

	history := []llm.Message{
		{Role: llm.RoleUser, Content: "[alice]: hi"},
		{Role: llm.RoleAssistant, Content: "[scout]: hello"},
	}
	messages := builder.BuildMessages(history, "what's new?")

	require.Len(t, messages, 4)
	assert.Equal(t, llm.RoleSystem, messages[0].Role)
	assert.Equal(t, history[0], messages[1])
	assert.Equal(t, history[1], messages[2])
	assert.Equal(t, llm.Message{Role: llm.RoleUser, Content: "what's new?"}, messages[3])
}
