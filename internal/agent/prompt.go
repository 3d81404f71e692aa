package agent

import (
	"fmt"
	"strings"

	"github.com/aatumaykin/hive/internal/config"
	"github.com/aatumaykin/hive/internal/llm"
)

// PromptBuilder assembles the system prompt and completion messages for one
// agent: its soul text, the teammate roster, the behavioral rules and the
// tool-call protocol description.
type PromptBuilder struct {
	agent     config.AgentConfig
	allAgents []config.AgentConfig
}

// NewPromptBuilder creates a PromptBuilder for the agent within its team.
func NewPromptBuilder(agent config.AgentConfig, allAgents []config.AgentConfig) *PromptBuilder {
	return &PromptBuilder{agent: agent, allAgents: allAgents}
}

const rulesText = `Rules:
- Be collaborative, mention teammates if task needs their skill
- Respond clearly and concisely
- Only use tools you have permission for
- Summarize what you did when done
- If you cannot do something, say who can
- If the user uses @everyone or @here, respond directly and do not delegate`

const toolUsageText = `To use a tool, include this in your response:
[TOOL: tool_name | action: read/write/send | params: key=value, key=value]
Example:
[TOOL: gmail | action: send | params: to=user@email.com, subject=Hello, body=Hi there]
You can only use tools you have permission for.

Scheduling:
If the user asks to schedule a task, use the schedule tool.
Params for schedule:
- type=interval with interval_minutes
- type=cron with cron (minute hour * * *)
- task=<what to do>
- action=list to list schedules
- action=delete with job_id to remove a schedule
Example:
[TOOL: schedule | action: write | params: type=interval, interval_minutes=2, task=Check if the user is awake]`

// BuildSystemPrompt renders the full system prompt for this agent.
func (b *PromptBuilder) BuildSystemPrompt() string {
	var teammateLines []string
	for _, other := range b.allAgents {
		if other.Name == b.agent.Name {
			continue
		}
		toolNames := make([]string, 0, len(other.Tools))
		for _, tool := range other.Tools {
			toolNames = append(toolNames, tool.Name)
		}
		teammateLines = append(teammateLines, fmt.Sprintf("- %s: skills=[%s], tools=[%s]",
			other.Name,
			strings.Join(other.Skills, ", "),
			strings.Join(toolNames, ", ")))
	}
	teammates := "- (none)"
	if len(teammateLines) > 0 {
		teammates = strings.Join(teammateLines, "\n")
	}

	var toolParts []string
	for _, tool := range b.agent.Tools {
		if !tool.Enabled {
			continue
		}
		toolParts = append(toolParts, fmt.Sprintf("%s(%s)", tool.Name, strings.Join(tool.Permissions, ", ")))
	}
	myTools := "Your tools: (none)"
	if len(toolParts) > 0 {
		myTools = "Your tools: " + strings.Join(toolParts, ", ")
	}

	parts := []string{
		strings.TrimSpace(b.agent.SoulText),
		"You are part of a team called Hive. Teammates:",
		teammates,
		rulesText,
		toolUsageText,
		myTools,
	}
	return strings.TrimSpace(strings.Join(parts, "\n\n"))
}

// BuildMessages assembles the completion request: system prompt, projected
// history, then the new message.
func (b *PromptBuilder) BuildMessages(history []llm.Message, newMessage string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: b.BuildSystemPrompt()})
	messages = append(messages, history...)
	messages = append(messages, llm.Message{Role: llm.RoleUser, Content: newMessage})
	return messages
}
