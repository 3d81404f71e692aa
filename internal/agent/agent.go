package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/aatumaykin/hive/internal/config"
	"github.com/aatumaykin/hive/internal/llm"
	"github.com/aatumaykin/hive/internal/logger"
	"github.com/aatumaykin/hive/internal/metrics"
	"github.com/aatumaykin/hive/internal/retry"
	"github.com/aatumaykin/hive/internal/tools"
)

// ReplyKind distinguishes a text reply from an emoji reaction, so the
// delivery layer can choose send-message vs add-reaction semantics.
type ReplyKind string

const (
	ReplyKindText     ReplyKind = "text"
	ReplyKindReaction ReplyKind = "reaction"
)

// Reply is the outcome of one agent's arbitration for one inbound message.
type Reply struct {
	Kind  ReplyKind
	Text  string
	Emoji string
}

// MessageRequest carries one inbound message into an agent's arbitration.
type MessageRequest struct {
	Content string
	Sender  string

	// RespondOverride forces the respond decision when non-nil: direct
	// mentions, broadcast addressing and scheduler firings always respond.
	RespondOverride *bool

	// RecordIncoming appends the message to the shared context before
	// arbitration. Deduplicated by MessageID.
	RecordIncoming bool

	MessageID string
	ChannelID string
}

// Agent owns one persona's response-arbitration state machine.
type Agent struct {
	cfg      config.AgentConfig
	name     string
	provider llm.Provider
	prompts  *PromptBuilder
	shared   *Context
	executor *tools.Executor
	toolList []tools.Descriptor
	retryCfg retry.Config
	metrics  *metrics.Metrics
	logger   *logger.Logger
}

// New creates an Agent over the shared context and tool executor.
func New(cfg config.AgentConfig, allAgents []config.AgentConfig, shared *Context, provider llm.Provider, executor *tools.Executor, retryCfg retry.Config, m *metrics.Metrics, log *logger.Logger) *Agent {
	return &Agent{
		cfg:      cfg,
		name:     cfg.Name,
		provider: provider,
		prompts:  NewPromptBuilder(cfg, allAgents),
		shared:   shared,
		executor: executor,
		toolList: toolDescriptors(cfg.Tools),
		retryCfg: retryCfg,
		metrics:  m,
		logger:   log.With(logger.Field{Key: "agent", Value: cfg.Name}),
	}
}

// toolDescriptors converts the configured tool list to the executor's shape.
func toolDescriptors(configured []config.ToolConfig) []tools.Descriptor {
	out := make([]tools.Descriptor, 0, len(configured))
	for _, tool := range configured {
		out = append(out, tools.Descriptor{
			Name:        tool.Name,
			Enabled:     tool.Enabled,
			Permissions: tool.Permissions,
			Endpoint:    tool.Endpoint,
		})
	}
	return out
}

// Name returns the agent's name.
func (a *Agent) Name() string {
	return a.name
}

// Tools returns the agent's configured tool descriptors.
func (a *Agent) Tools() []tools.Descriptor {
	return a.toolList
}

// OnMessage runs the arbitration state machine for one inbound message.
// A nil return means silence. Completion-service failures degrade to
// silence; they are logged and counted but never propagated.
func (a *Agent) OnMessage(ctx context.Context, req MessageRequest) *Reply {
	if req.RecordIncoming {
		a.shared.Append(llm.RoleUser, req.Content, req.Sender, req.MessageID)
	}

	if req.Sender == a.name {
		return nil
	}

	shouldRespond := false
	switch {
	case req.RespondOverride != nil:
		shouldRespond = *req.RespondOverride
	case strings.Contains(req.Content, "@"+a.name):
		shouldRespond = true
	default:
		shouldRespond = a.ShouldRespond(ctx, req.Content)
	}

	if !shouldRespond {
		if emoji := a.decideReaction(ctx, req.Content, req.Sender); emoji != "" {
			a.metrics.Reactions.Inc()
			return &Reply{Kind: ReplyKindReaction, Emoji: emoji}
		}
		return nil
	}

	messages := a.prompts.BuildMessages(a.shared.HistoryForCompletion(), req.Content)
	response, ok := a.chat(ctx, messages)
	if !ok {
		return nil
	}

	if call, found := tools.ParseCall(response); found {
		response = a.runToolCall(ctx, req, call, response)
	}

	a.shared.Append(llm.RoleAssistant, response, a.name, "")
	a.metrics.Replies.Inc()
	return &Reply{Kind: ReplyKindText, Text: response}
}

// runToolCall executes one parsed tool call and folds its result into the
// reply text. A call that yields no result leaves the reply unchanged.
func (a *Agent) runToolCall(ctx context.Context, req MessageRequest, call tools.Call, response string) string {
	if req.ChannelID != "" {
		if _, present := call.Params["channel_id"]; !present {
			call.Params["channel_id"] = req.ChannelID
		}
	}

	result, err := a.executor.Run(ctx, a.name, a.toolList, call)
	if err != nil {
		a.logger.Error("tool execution failed", err,
			logger.Field{Key: "tool", Value: call.Tool},
			logger.Field{Key: "action", Value: call.Action})
		return response
	}
	if result == nil {
		return response
	}

	if formatted := a.formatToolResult(ctx, response, call.Tool, result); formatted != "" {
		return formatted
	}
	return fmt.Sprintf("%s\n\n[Tool Result: %s]\n%s", response, call.Tool, result)
}

// formatToolResult renders a tool result as user-facing text. Schedule
// results use a deterministic formatter; everything else is rewritten by
// one extra completion call. An empty return means "use the generic block".
func (a *Agent) formatToolResult(ctx context.Context, original, toolName string, result tools.Result) string {
	if toolName == tools.ScheduleToolName {
		return tools.FormatScheduleResult(result)
	}

	prompt := fmt.Sprintf(
		"You just executed a tool and got a raw result.\n"+
			"Tool: %s\n"+
			"Raw result: %s\n\n"+
			"Rewrite your response to be clear and user-friendly. "+
			"Keep it concise and include only the useful outcome. "+
			"Do NOT include the raw result.",
		toolName, result)

	formatted, ok := a.chat(ctx, []llm.Message{
		{Role: llm.RoleSystem, Content: "You format tool results for users."},
		{Role: llm.RoleAssistant, Content: original},
		{Role: llm.RoleUser, Content: prompt},
	})
	if !ok {
		return ""
	}
	return strings.TrimSpace(formatted)
}

// ShouldRespond asks the completion service for a one-shot yes/no judgment
// on whether this agent should reply. Any failure means "no".
func (a *Agent) ShouldRespond(ctx context.Context, message string) bool {
	prompt := fmt.Sprintf(
		"Given this message: '%s'\n"+
			"And your role: %s\n"+
			"Should you respond? Answer only: YES or NO",
		message, a.cfg.SoulSummary())

	response, ok := a.chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}})
	if !ok {
		return false
	}
	return strings.Contains(strings.ToUpper(response), "YES")
}

// decideReaction asks whether a single-emoji reaction is warranted instead
// of a reply. An empty return means no reaction.
func (a *Agent) decideReaction(ctx context.Context, message, sender string) string {
	prompt := fmt.Sprintf(
		"Decide if you should react (emoji only) to this message instead of replying.\n"+
			"User: %s\n"+
			"Message: %s\n\n"+
			"If a reaction is appropriate, respond with a single emoji only.\n"+
			"If no reaction, respond with NONE.",
		sender, message)

	response, ok := a.chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}})
	if !ok {
		return ""
	}

	cleaned := strings.TrimSpace(response)
	if cleaned == "" || strings.HasPrefix(strings.ToUpper(cleaned), "NONE") {
		return ""
	}
	firstLine := strings.TrimSpace(strings.SplitN(cleaned, "\n", 2)[0])
	return strings.TrimSpace(strings.SplitN(firstLine, " ", 2)[0])
}

// HandleReaction handles a user reacting to one of this agent's own prior
// messages. It returns an optional short reply and an optional
// counter-reaction emoji; empty strings mean absent.
func (a *Agent) HandleReaction(ctx context.Context, emoji, messageText, reactor string) (string, string) {
	prompt := fmt.Sprintf(
		"A user reacted to your message.\n"+
			"Reaction: %s\n"+
			"User: %s\n"+
			"Message: %s\n\n"+
			"Decide if you should reply or react back.\n"+
			"Reply should be short if provided.\n"+
			"Return two lines exactly:\n"+
			"REPLY: <text or NONE>\n"+
			"REACT: <emoji or NONE>",
		emoji, reactor, messageText)

	response, ok := a.chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: prompt}})
	if !ok {
		return "", ""
	}

	var replyText, reactEmoji string
	for _, line := range strings.Split(response, "\n") {
		upper := strings.ToUpper(line)
		if strings.HasPrefix(upper, "REPLY:") {
			value := strings.TrimSpace(line[len("REPLY:"):])
			if value != "" && !strings.EqualFold(value, "NONE") {
				replyText = value
			}
		}
		if strings.HasPrefix(upper, "REACT:") {
			value := strings.TrimSpace(line[len("REACT:"):])
			if value != "" && !strings.EqualFold(value, "NONE") {
				reactEmoji = value
			}
		}
	}
	return replyText, reactEmoji
}

// chat performs one completion call with retry. The second return value is
// false when the call ultimately failed or returned empty content.
func (a *Agent) chat(ctx context.Context, messages []llm.Message) (string, bool) {
	content, err := retry.DoWithRetry(ctx, func() (string, error) {
		resp, err := a.provider.Chat(ctx, llm.ChatRequest{
			Messages: messages,
			Model:    a.cfg.Model,
		})
		if err != nil {
			return "", err
		}
		return resp.Content, nil
	}, a.retryCfg)
	if err != nil {
		a.metrics.CompletionErrors.Inc()
		a.logger.Warn("completion call failed",
			logger.Field{Key: "error", Value: err})
		return "", false
	}
	if content == "" {
		return "", false
	}
	return content, true
}
