// Package bus provides the asynchronous queue between the chat gateway and
// the agent router. Inbound events flow from the gateway to the router;
// outbound actions flow back to the gateway for delivery.
package bus

import (
	"encoding/json"
	"time"
)

// InboundKind distinguishes regular messages from reaction events.
type InboundKind string

const (
	InboundKindMessage  InboundKind = "message"
	InboundKindReaction InboundKind = "reaction"
)

// InboundMessage represents one event received from the chat gateway.
//
// For reaction events (Kind == InboundKindReaction) MessageID identifies the
// reacted-to message, Emoji carries the reaction glyph, AgentName names the
// agent that authored the reacted-to message and Content carries that
// message's original text.
type InboundMessage struct {
	Kind      InboundKind `json:"kind"`
	ChannelID string      `json:"channel_id"`
	MessageID string      `json:"message_id"`
	Sender    string      `json:"sender"`
	Content   string      `json:"content"`
	Broadcast bool        `json:"broadcast,omitempty"`
	Mentions  []string    `json:"mentions,omitempty"`
	AgentName string      `json:"agent_name,omitempty"`
	Emoji     string      `json:"emoji,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// ActionKind is the type of outbound delivery.
type ActionKind string

const (
	ActionKindSend  ActionKind = "send"
	ActionKindReact ActionKind = "react"
)

// OutboundAction represents one delivery request to the chat gateway:
// either send-text to a channel or add-reaction to a message.
type OutboundAction struct {
	Kind          ActionKind `json:"kind"`
	ChannelID     string     `json:"channel_id"`
	MessageID     string     `json:"message_id,omitempty"`
	AgentName     string     `json:"agent_name"`
	Text          string     `json:"text,omitempty"`
	Emoji         string     `json:"emoji,omitempty"`
	CorrelationID string     `json:"correlation_id,omitempty"`
	Timestamp     time.Time  `json:"timestamp"`
}

// ToJSON serializes the InboundMessage to JSON bytes.
func (m *InboundMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON deserializes the InboundMessage from JSON bytes.
func (m *InboundMessage) FromJSON(data []byte) error {
	return json.Unmarshal(data, m)
}

// ToJSON serializes the OutboundAction to JSON bytes.
func (a *OutboundAction) ToJSON() ([]byte, error) {
	return json.Marshal(a)
}

// FromJSON deserializes the OutboundAction from JSON bytes.
func (a *OutboundAction) FromJSON(data []byte) error {
	return json.Unmarshal(data, a)
}

// NewInboundMessage creates an inbound chat message with the current
// timestamp.
func NewInboundMessage(channelID, messageID, sender, content string, broadcast bool, mentions []string) *InboundMessage {
	return &InboundMessage{
		Kind:      InboundKindMessage,
		ChannelID: channelID,
		MessageID: messageID,
		Sender:    sender,
		Content:   content,
		Broadcast: broadcast,
		Mentions:  mentions,
		Timestamp: time.Now(),
	}
}

// NewInboundReaction creates a reaction event with the current timestamp.
func NewInboundReaction(channelID, messageID, reactor, emoji, agentName, messageText string) *InboundMessage {
	return &InboundMessage{
		Kind:      InboundKindReaction,
		ChannelID: channelID,
		MessageID: messageID,
		Sender:    reactor,
		Content:   messageText,
		AgentName: agentName,
		Emoji:     emoji,
		Timestamp: time.Now(),
	}
}

// NewSendAction creates a send-text outbound action.
func NewSendAction(channelID, agentName, text, correlationID string) *OutboundAction {
	return &OutboundAction{
		Kind:          ActionKindSend,
		ChannelID:     channelID,
		AgentName:     agentName,
		Text:          text,
		CorrelationID: correlationID,
		Timestamp:     time.Now(),
	}
}

// NewReactAction creates an add-reaction outbound action.
func NewReactAction(channelID, messageID, agentName, emoji, correlationID string) *OutboundAction {
	return &OutboundAction{
		Kind:          ActionKindReact,
		ChannelID:     channelID,
		MessageID:     messageID,
		AgentName:     agentName,
		Emoji:         emoji,
		CorrelationID: correlationID,
		Timestamp:     time.Now(),
	}
}
