package bus

import (
	"context"
	"testing"
	"time"

	"github.com/aatumaykin/hive/internal/logger"
)

func createTestLogger(t *testing.T) *logger.Logger {
	cfg := logger.Config{
		Level:  "info",
		Format: "text",
		Output: "stdout",
	}
	log, err := logger.New(cfg)
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return log
}

func TestNew(t *testing.T) {
	log := createTestLogger(t)

	mb := New(100, log)

	if mb == nil {
		t.Fatal("New() returned nil")
	}

	if mb.IsStarted() {
		t.Error("New() returned a started bus")
	}
}

func TestMessageBus_Start(t *testing.T) {
	log := createTestLogger(t)
	mb := New(10, log)

	ctx := context.Background()
	if err := mb.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	if !mb.IsStarted() {
		t.Error("Start() did not set started flag")
	}

	if err := mb.Start(ctx); err != ErrAlreadyStarted {
		t.Errorf("Expected ErrAlreadyStarted, got %v", err)
	}

	if err := mb.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}
}

func TestMessageBus_PublishBeforeStart(t *testing.T) {
	log := createTestLogger(t)
	mb := New(10, log)

	msg := NewInboundMessage("chan-1", "msg-1", "user", "hello", false, nil)
	if err := mb.PublishInbound(*msg); err != ErrNotStarted {
		t.Errorf("Expected ErrNotStarted, got %v", err)
	}

	action := NewSendAction("chan-1", "scout", "hi", "")
	if err := mb.PublishOutbound(*action); err != ErrNotStarted {
		t.Errorf("Expected ErrNotStarted, got %v", err)
	}
}

func TestMessageBus_InboundRoundTrip(t *testing.T) {
	log := createTestLogger(t)
	mb := New(10, log)
	ctx := context.Background()

	if ch := mb.SubscribeInbound(ctx); ch != nil {
		t.Error("SubscribeInbound() should return nil when not started")
	}

	if err := mb.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	ch := mb.SubscribeInbound(ctx)
	if ch == nil {
		t.Fatal("SubscribeInbound() returned nil")
	}

	msg := NewInboundMessage("chan-1", "msg-1", "user", "hello team", true, []string{"scout"})
	if err := mb.PublishInbound(*msg); err != nil {
		t.Fatalf("PublishInbound() failed: %v", err)
	}

	select {
	case received := <-ch:
		if received.Kind != InboundKindMessage {
			t.Errorf("Expected kind %s, got %s", InboundKindMessage, received.Kind)
		}
		if received.ChannelID != msg.ChannelID {
			t.Errorf("Expected ChannelID %s, got %s", msg.ChannelID, received.ChannelID)
		}
		if received.Content != msg.Content {
			t.Errorf("Expected Content %s, got %s", msg.Content, received.Content)
		}
		if !received.Broadcast {
			t.Error("Expected Broadcast to be true")
		}
	case <-time.After(1 * time.Second):
		t.Error("Timeout waiting for inbound event")
	}
}

func TestMessageBus_OutboundRoundTrip(t *testing.T) {
	log := createTestLogger(t)
	mb := New(10, log)
	ctx := context.Background()

	if err := mb.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	ch := mb.SubscribeOutbound(ctx)
	if ch == nil {
		t.Fatal("SubscribeOutbound() returned nil")
	}

	action := NewReactAction("chan-1", "msg-1", "scout", "👍", "corr-1")
	if err := mb.PublishOutbound(*action); err != nil {
		t.Fatalf("PublishOutbound() failed: %v", err)
	}

	select {
	case received := <-ch:
		if received.Kind != ActionKindReact {
			t.Errorf("Expected kind %s, got %s", ActionKindReact, received.Kind)
		}
		if received.Emoji != "👍" {
			t.Errorf("Expected emoji 👍, got %s", received.Emoji)
		}
		if received.CorrelationID != "corr-1" {
			t.Errorf("Expected CorrelationID corr-1, got %s", received.CorrelationID)
		}
	case <-time.After(1 * time.Second):
		t.Error("Timeout waiting for outbound action")
	}
}

func TestMessageBus_QueueFull(t *testing.T) {
	log := createTestLogger(t)
	mb := New(1, log)
	ctx := context.Background()

	if err := mb.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	// No subscriber draining: second publish overflows the capacity-1 queue.
	msg1 := NewInboundMessage("chan-1", "msg-1", "user", "one", false, nil)
	msg2 := NewInboundMessage("chan-1", "msg-2", "user", "two", false, nil)

	if err := mb.PublishInbound(*msg1); err != nil {
		t.Fatalf("PublishInbound() failed for first event: %v", err)
	}

	if err := mb.PublishInbound(*msg2); err != ErrQueueFull {
		t.Errorf("Expected ErrQueueFull, got %v", err)
	}
}

func TestMessageBus_StopClosesSubscribers(t *testing.T) {
	log := createTestLogger(t)
	mb := New(10, log)
	ctx := context.Background()

	if err := mb.Start(ctx); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	ch := mb.SubscribeInbound(ctx)

	if err := mb.Stop(); err != nil {
		t.Fatalf("Stop() failed: %v", err)
	}

	select {
	case _, ok := <-ch:
		if ok {
			t.Error("Subscriber channel should be closed")
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("Subscriber channel was not closed")
	}

	if err := mb.Stop(); err != ErrNotStarted {
		t.Errorf("Expected ErrNotStarted, got %v", err)
	}
}

func TestInboundMessage_JSONRoundTrip(t *testing.T) {
	msg := NewInboundReaction("chan-1", "msg-9", "alice", "🔥", "scout", "original text")

	data, err := msg.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON() failed: %v", err)
	}

	var decoded InboundMessage
	if err := decoded.FromJSON(data); err != nil {
		t.Fatalf("FromJSON() failed: %v", err)
	}

	if decoded.Kind != InboundKindReaction {
		t.Errorf("Expected kind %s, got %s", InboundKindReaction, decoded.Kind)
	}
	if decoded.Emoji != "🔥" {
		t.Errorf("Expected emoji 🔥, got %s", decoded.Emoji)
	}
	if decoded.AgentName != "scout" {
		t.Errorf("Expected agent scout, got %s", decoded.AgentName)
	}
}
