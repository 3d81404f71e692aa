// Package telegram provides the Telegram gateway using the Telego library.
// It long-polls for updates, publishes inbound messages and reaction events
// onto the message bus, and consumes outbound actions (send-text,
// add-reaction) from it.
package telegram

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/mymmrac/telego"
	telegoapi "github.com/mymmrac/telego/telegoapi"

	"github.com/aatumaykin/hive/internal/bus"
	"github.com/aatumaykin/hive/internal/channels"
	"github.com/aatumaykin/hive/internal/config"
	"github.com/aatumaykin/hive/internal/logger"
)

const defaultSendTimeout = 30 * time.Second

var _ channels.Gateway = (*Connector)(nil)

// Connector is the Telegram gateway.
type Connector struct {
	cfg        config.TelegramConfig
	agentNames []string
	logger     *logger.Logger
	bus        *bus.MessageBus
	sent       *channels.SentLog

	mu        sync.Mutex
	bot       BotInterface
	ctx       context.Context
	cancel    context.CancelFunc
	connected bool
}

// New creates a Telegram connector. agentNames is the team roster used for
// mention detection in inbound text.
func New(cfg config.TelegramConfig, agentNames []string, msgBus *bus.MessageBus, sent *channels.SentLog, log *logger.Logger) *Connector {
	return &Connector{
		cfg:        cfg,
		agentNames: agentNames,
		logger:     log,
		bus:        msgBus,
		sent:       sent,
	}
}

// Name identifies the gateway.
func (c *Connector) Name() string {
	return "telegram"
}

// Start initializes the Telegram bot and begins long polling.
func (c *Connector) Start(ctx context.Context) error {
	c.logger.Info("starting telegram connector",
		logger.Field{Key: "enabled", Value: c.cfg.Enabled})

	if !c.cfg.Enabled {
		c.logger.Info("telegram connector disabled in config")
		return nil
	}
	if c.cfg.Token == "" {
		return fmt.Errorf("telegram token is required")
	}

	bot, err := telego.NewBot(c.cfg.Token)
	if err != nil {
		return fmt.Errorf("failed to initialize telegram bot: %w", err)
	}

	c.mu.Lock()
	c.bot = NewBotAdapter(bot)
	c.ctx, c.cancel = context.WithCancel(ctx)
	c.connected = true
	c.mu.Unlock()

	botUser, err := c.bot.GetMe(c.ctx)
	if err != nil {
		return fmt.Errorf("failed to get bot info: %w", err)
	}

	c.logger.Info("telegram bot initialized",
		logger.Field{Key: "bot_id", Value: botUser.ID},
		logger.Field{Key: "username", Value: botUser.Username})

	outboundCh := c.bus.SubscribeOutbound(c.ctx)
	go c.handleOutbound(outboundCh)

	go c.longPoll()

	return nil
}

// Stop gracefully stops the connector.
func (c *Connector) Stop() error {
	c.logger.Info("stopping telegram connector")

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.cancel != nil {
		c.cancel()
	}
	c.bot = nil
	c.connected = false

	c.logger.Info("telegram connector stopped gracefully")
	return nil
}

// IsConnected reports whether the connector is running.
func (c *Connector) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// longPoll runs the update loop until the context is cancelled.
func (c *Connector) longPoll() {
	c.logger.Info("starting long polling for telegram updates")

	updates, err := c.bot.UpdatesViaLongPolling(c.ctx, &telego.GetUpdatesParams{
		Timeout:        30,
		AllowedUpdates: []string{"message", "message_reaction"},
	})
	if err != nil {
		c.logger.ErrorCtx(c.ctx, "failed to start long polling", err)
		return
	}

	for {
		select {
		case <-c.ctx.Done():
			c.logger.Info("long polling stopped")
			return
		case update, ok := <-updates:
			if !ok {
				c.logger.Info("updates channel closed")
				return
			}
			c.handleUpdate(update)
		}
	}
}

// handleUpdate publishes one Telegram update onto the message bus.
func (c *Connector) handleUpdate(update telego.Update) {
	switch {
	case update.Message != nil:
		c.handleMessage(update.Message)
	case update.MessageReaction != nil:
		c.handleReaction(update.MessageReaction)
	}
}

// handleMessage publishes an inbound chat message with addressing metadata.
func (c *Connector) handleMessage(msg *telego.Message) {
	if msg.Text == "" {
		// Skip non-text messages (photos, stickers, etc.)
		return
	}

	chatID := strconv.FormatInt(msg.Chat.ID, 10)
	if !c.isAllowedChat(chatID) {
		c.logger.WarnCtx(c.ctx, "message blocked - chat not in whitelist",
			logger.Field{Key: "chat_id", Value: chatID})
		return
	}

	sender := "user"
	if msg.From != nil && msg.From.Username != "" {
		sender = msg.From.Username
	}

	inbound := bus.NewInboundMessage(
		chatID,
		strconv.Itoa(msg.MessageID),
		sender,
		msg.Text,
		isBroadcast(msg.Text),
		detectMentions(msg.Text, c.agentNames),
	)

	if err := c.bus.PublishInbound(*inbound); err != nil {
		c.logger.ErrorCtx(c.ctx, "failed to publish inbound message", err,
			logger.Field{Key: "chat_id", Value: chatID})
	}
}

// handleReaction publishes a reaction event for a message one of the agents
// sent, at most once per message.
func (c *Connector) handleReaction(reaction *telego.MessageReactionUpdated) {
	messageID := strconv.Itoa(reaction.MessageID)

	sentMsg, owned := c.sent.Lookup(messageID)
	if !owned || c.sent.HasReacted(messageID) {
		return
	}

	emoji := firstEmoji(reaction.NewReaction)
	if emoji == "" {
		return
	}

	reactor := "user"
	if reaction.User != nil && reaction.User.Username != "" {
		reactor = reaction.User.Username
	}

	event := bus.NewInboundReaction(
		strconv.FormatInt(reaction.Chat.ID, 10),
		messageID,
		reactor,
		emoji,
		sentMsg.AgentName,
		sentMsg.Text,
	)

	if err := c.bus.PublishInbound(*event); err != nil {
		c.logger.ErrorCtx(c.ctx, "failed to publish reaction event", err,
			logger.Field{Key: "message_id", Value: messageID})
	}
}

// handleOutbound consumes outbound actions and delivers them to Telegram.
// Delivery failures are logged and swallowed.
func (c *Connector) handleOutbound(outboundCh <-chan bus.OutboundAction) {
	for {
		select {
		case <-c.ctx.Done():
			return
		case action, ok := <-outboundCh:
			if !ok {
				return
			}
			switch action.Kind {
			case bus.ActionKindSend:
				c.sendText(action)
			case bus.ActionKindReact:
				c.addReaction(action)
			}
		}
	}
}

// sendText delivers a send-text action and records the sent message so
// later reactions can be attributed to the owning agent.
func (c *Connector) sendText(action bus.OutboundAction) {
	chatID, err := strconv.ParseInt(action.ChannelID, 10, 64)
	if err != nil {
		c.logger.ErrorCtx(c.ctx, "invalid chat id in outbound action", err,
			logger.Field{Key: "channel_id", Value: action.ChannelID})
		return
	}

	sendCtx, cancel := c.sendTimeout()
	defer cancel()

	sent, err := c.bot.SendMessage(sendCtx, &telego.SendMessageParams{
		ChatID: telego.ChatID{ID: chatID},
		Text:   action.Text,
	})
	if err != nil {
		c.logSendFailure(err, action)
		return
	}

	c.sent.Record(channels.SentMessage{
		MessageID: strconv.Itoa(sent.MessageID),
		ChannelID: action.ChannelID,
		AgentName: action.AgentName,
		Text:      action.Text,
	})
}

// addReaction delivers an add-reaction action.
func (c *Connector) addReaction(action bus.OutboundAction) {
	chatID, err := strconv.ParseInt(action.ChannelID, 10, 64)
	if err != nil {
		c.logger.ErrorCtx(c.ctx, "invalid chat id in outbound action", err,
			logger.Field{Key: "channel_id", Value: action.ChannelID})
		return
	}
	messageID, err := strconv.Atoi(action.MessageID)
	if err != nil {
		c.logger.ErrorCtx(c.ctx, "invalid message id in outbound action", err,
			logger.Field{Key: "message_id", Value: action.MessageID})
		return
	}

	sendCtx, cancel := c.sendTimeout()
	defer cancel()

	err = c.bot.SetMessageReaction(sendCtx, &telego.SetMessageReactionParams{
		ChatID:    telego.ChatID{ID: chatID},
		MessageID: messageID,
		Reaction: []telego.ReactionType{
			&telego.ReactionTypeEmoji{Type: telego.ReactionEmoji, Emoji: action.Emoji},
		},
	})
	if err != nil {
		c.logSendFailure(err, action)
	}
}

// logSendFailure logs a delivery failure with structured Telegram error
// details when available.
func (c *Connector) logSendFailure(err error, action bus.OutboundAction) {
	details := telegramErrorDetails(err, action.ChannelID)
	fields := append(details.LogFields(),
		logger.Field{Key: "kind", Value: string(action.Kind)},
		logger.Field{Key: "agent", Value: action.AgentName},
		logger.Field{Key: "correlation_id", Value: action.CorrelationID})
	c.logger.ErrorCtx(c.ctx, "telegram delivery failed", err, fields...)
}

// telegramErrorDetails extracts structured details from a telego API error.
func telegramErrorDetails(err error, chatID string) channels.ErrorDetails {
	details := &channels.TelegramErrorDetails{
		Description: err.Error(),
		ChatID:      chatID,
		Timestamp:   time.Now(),
	}

	var apiErr *telegoapi.Error
	if errors.As(err, &apiErr) {
		details.ErrorCode = apiErr.ErrorCode
		details.Description = apiErr.Description
		if apiErr.Parameters != nil {
			details.RetryAfterSec = apiErr.Parameters.RetryAfter
		}
	}
	return details
}

// sendTimeout returns a context bounded by the configured send timeout.
func (c *Connector) sendTimeout() (context.Context, context.CancelFunc) {
	timeout := defaultSendTimeout
	if c.cfg.SendTimeoutSeconds > 0 {
		timeout = time.Duration(c.cfg.SendTimeoutSeconds) * time.Second
	}
	return context.WithTimeout(c.ctx, timeout)
}

// isAllowedChat checks the chat whitelist. An empty whitelist allows all.
func (c *Connector) isAllowedChat(chatID string) bool {
	if len(c.cfg.AllowedChats) == 0 {
		return true
	}
	return slices.Contains(c.cfg.AllowedChats, chatID)
}

// firstEmoji returns the first plain-emoji reaction in the list.
func firstEmoji(reactions []telego.ReactionType) string {
	for _, reaction := range reactions {
		if emojiReaction, ok := reaction.(*telego.ReactionTypeEmoji); ok {
			return emojiReaction.Emoji
		}
	}
	return ""
}
