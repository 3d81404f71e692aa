package app

import (
	"context"

	"github.com/aatumaykin/hive/internal/agent"
	"github.com/aatumaykin/hive/internal/bus"
	"github.com/aatumaykin/hive/internal/logger"
	"github.com/aatumaykin/hive/internal/messages"
)

// StartMessageProcessing starts the event processing loop. It subscribes to
// inbound bus events and processes them in a goroutine.
func (a *App) StartMessageProcessing(ctx context.Context) error {
	inboundCh := a.messageBus.SubscribeInbound(ctx)
	if inboundCh == nil {
		a.logger.ErrorCtx(ctx, "Failed to subscribe to inbound events: channel is nil", nil)
		return nil
	}

	go func() {
		a.logger.Info("Event processing started")
		for {
			select {
			case <-ctx.Done():
				a.logger.Info("Event processing stopped")
				return
			case msg, ok := <-inboundCh:
				if !ok {
					a.logger.Info("Inbound channel closed")
					return
				}
				a.processEvent(ctx, msg)
			}
		}
	}()

	return nil
}

// processEvent handles a single inbound bus event.
func (a *App) processEvent(ctx context.Context, msg bus.InboundMessage) {
	switch msg.Kind {
	case bus.InboundKindReaction:
		a.processReaction(ctx, msg)
	default:
		a.processMessage(ctx, msg)
	}
}

// processMessage routes a chat message through the agent team and delivers
// the collected replies back through the bus.
func (a *App) processMessage(ctx context.Context, msg bus.InboundMessage) {
	a.logger.InfoCtx(ctx, "Processing message",
		logger.Field{Key: "channel_id", Value: msg.ChannelID},
		logger.Field{Key: "sender", Value: msg.Sender})

	replies := a.manager.Route(ctx, agent.Inbound{
		Content:   msg.Content,
		Sender:    msg.Sender,
		MessageID: msg.MessageID,
		ChannelID: msg.ChannelID,
		Broadcast: msg.Broadcast,
		Mentions:  msg.Mentions,
	})

	for _, reply := range replies {
		a.deliverReply(ctx, msg, reply)
	}
}

// deliverReply converts one agent reply into an outbound action.
func (a *App) deliverReply(ctx context.Context, msg bus.InboundMessage, reply agent.AgentReply) {
	var action *bus.OutboundAction
	switch reply.Reply.Kind {
	case agent.ReplyKindReaction:
		if reply.Reply.Emoji == "" {
			return
		}
		action = bus.NewReactAction(msg.ChannelID, msg.MessageID, reply.AgentName, reply.Reply.Emoji, msg.MessageID)
	default:
		text := messages.CleanContent(reply.Reply.Text)
		if text == "" {
			return
		}
		action = bus.NewSendAction(msg.ChannelID, reply.AgentName, text, msg.MessageID)
	}

	if err := a.messageBus.PublishOutbound(*action); err != nil {
		a.logger.ErrorCtx(ctx, "Failed to publish outbound action", err,
			logger.Field{Key: "agent", Value: reply.AgentName},
			logger.Field{Key: "channel_id", Value: msg.ChannelID})
	}
}

// processReaction lets the agent that authored the reacted-to message answer
// an emoji reaction. A message gets at most one reaction-triggered response;
// the sent log is marked once the agent produces any output.
func (a *App) processReaction(ctx context.Context, msg bus.InboundMessage) {
	ag, ok := a.manager.Get(msg.AgentName)
	if !ok {
		a.logger.WarnCtx(ctx, "Reaction targets an unknown agent",
			logger.Field{Key: "agent", Value: msg.AgentName})
		return
	}

	replyText, emoji := ag.HandleReaction(ctx, msg.Emoji, msg.Content, msg.Sender)

	responded := false
	if replyText != "" {
		action := bus.NewSendAction(msg.ChannelID, ag.Name(), messages.CleanContent(replyText), msg.MessageID)
		if err := a.messageBus.PublishOutbound(*action); err != nil {
			a.logger.ErrorCtx(ctx, "Failed to publish reaction reply", err,
				logger.Field{Key: "agent", Value: ag.Name()})
		} else {
			responded = true
		}
	}
	if emoji != "" {
		action := bus.NewReactAction(msg.ChannelID, msg.MessageID, ag.Name(), emoji, msg.MessageID)
		if err := a.messageBus.PublishOutbound(*action); err != nil {
			a.logger.ErrorCtx(ctx, "Failed to publish counter-reaction", err,
				logger.Field{Key: "agent", Value: ag.Name()})
		} else {
			responded = true
		}
	}

	if responded {
		a.sent.MarkReacted(msg.MessageID)
	}
}
