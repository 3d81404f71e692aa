package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aatumaykin/hive/internal/bus"
)

// startedTestApp initializes an app over the mock provider and starts the
// event processing loop.
func startedTestApp(t *testing.T) *App {
	t.Helper()

	cfg := createTestConfig(t)
	log := createTestLogger(t)

	a := New(cfg, log)
	if err := a.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}
	t.Cleanup(func() { a.Shutdown() })

	if err := a.StartMessageProcessing(a.ctx); err != nil {
		t.Fatalf("StartMessageProcessing failed: %v", err)
	}
	return a
}

func waitOutbound(t *testing.T, ch <-chan bus.OutboundAction) bus.OutboundAction {
	t.Helper()

	select {
	case action := <-ch:
		return action
	case <-time.After(3 * time.Second):
		t.Fatal("Timed out waiting for outbound action")
		return bus.OutboundAction{}
	}
}

func TestApp_BroadcastMessageGetsReply(t *testing.T) {
	a := startedTestApp(t)
	outboundCh := a.messageBus.SubscribeOutbound(a.ctx)

	msg := bus.NewInboundMessage("chan-1", "msg-1", "alice", "@everyone deploy status?", true, nil)
	if err := a.messageBus.PublishInbound(*msg); err != nil {
		t.Fatalf("PublishInbound failed: %v", err)
	}

	action := waitOutbound(t, outboundCh)
	if action.Kind != bus.ActionKindSend {
		t.Errorf("Kind = %q, want send", action.Kind)
	}
	if action.ChannelID != "chan-1" {
		t.Errorf("ChannelID = %q, want chan-1", action.ChannelID)
	}
	if action.AgentName != "scout" {
		t.Errorf("AgentName = %q, want scout", action.AgentName)
	}
	if !strings.Contains(action.Text, "deploy status?") {
		t.Errorf("Reply should carry the echoed content, got %q", action.Text)
	}
}

func TestApp_MentionOfOtherAgentIsSilent(t *testing.T) {
	a := startedTestApp(t)
	outboundCh := a.messageBus.SubscribeOutbound(a.ctx)

	// Mentions name a different agent, so scout is not dispatched at all.
	msg := bus.NewInboundMessage("chan-1", "msg-2", "alice", "@archivist file this", false, []string{"archivist"})
	if err := a.messageBus.PublishInbound(*msg); err != nil {
		t.Fatalf("PublishInbound failed: %v", err)
	}

	select {
	case action := <-outboundCh:
		t.Fatalf("Unexpected outbound action: %+v", action)
	case <-time.After(300 * time.Millisecond):
	}
}

func TestApp_ReactionEventAnswered(t *testing.T) {
	a := startedTestApp(t)
	outboundCh := a.messageBus.SubscribeOutbound(a.ctx)

	// The echo provider returns the prompt, whose trailing lines parse as
	// both a reply and a counter-reaction.
	reaction := bus.NewInboundReaction("chan-1", "msg-3", "alice", "🔥", "scout", "Deploy finished.")
	if err := a.messageBus.PublishInbound(*reaction); err != nil {
		t.Fatalf("PublishInbound failed: %v", err)
	}

	first := waitOutbound(t, outboundCh)
	second := waitOutbound(t, outboundCh)

	var send, react *bus.OutboundAction
	for _, action := range []*bus.OutboundAction{&first, &second} {
		switch action.Kind {
		case bus.ActionKindSend:
			send = action
		case bus.ActionKindReact:
			react = action
		}
	}
	if send == nil || react == nil {
		t.Fatalf("Expected one send and one react action, got %+v and %+v", first, second)
	}
	if react.MessageID != "msg-3" {
		t.Errorf("React MessageID = %q, want msg-3", react.MessageID)
	}

	deadline := time.Now().Add(time.Second)
	for !a.sent.HasReacted("msg-3") {
		if time.Now().After(deadline) {
			t.Fatal("Message should be marked as answered in the sent log")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestApp_ReactionForUnknownAgentIgnored(t *testing.T) {
	a := startedTestApp(t)
	outboundCh := a.messageBus.SubscribeOutbound(a.ctx)

	reaction := bus.NewInboundReaction("chan-1", "msg-4", "alice", "👍", "ghost", "old text")
	if err := a.messageBus.PublishInbound(*reaction); err != nil {
		t.Fatalf("PublishInbound failed: %v", err)
	}

	select {
	case action := <-outboundCh:
		t.Fatalf("Unexpected outbound action: %+v", action)
	case <-time.After(300 * time.Millisecond):
	}
}
