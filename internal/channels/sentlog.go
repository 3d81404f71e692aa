package channels

import "sync"

// SentMessage records one message an agent sent through a gateway, so a
// later user reaction can be routed back to the owning agent with the
// original text.
type SentMessage struct {
	MessageID string
	ChannelID string
	AgentName string
	Text      string
}

// SentLog tracks agent-sent messages and which of them already triggered a
// reaction-handling response. The same source message must never be
// eligible for a second reaction-triggered response.
type SentLog struct {
	mu      sync.Mutex
	byID    map[string]SentMessage
	reacted map[string]struct{}
}

// NewSentLog creates an empty SentLog.
func NewSentLog() *SentLog {
	return &SentLog{
		byID:    make(map[string]SentMessage),
		reacted: make(map[string]struct{}),
	}
}

// Record remembers a sent message.
func (s *SentLog) Record(msg SentMessage) {
	if msg.MessageID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byID[msg.MessageID] = msg
}

// Lookup returns the sent message with the given id.
func (s *SentLog) Lookup(messageID string) (SentMessage, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	msg, ok := s.byID[messageID]
	return msg, ok
}

// MarkReacted records that the message already produced a
// reaction-triggered response.
func (s *SentLog) MarkReacted(messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reacted[messageID] = struct{}{}
}

// HasReacted reports whether the message already produced a
// reaction-triggered response.
func (s *SentLog) HasReacted(messageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.reacted[messageID]
	return ok
}
