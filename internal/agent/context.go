// Package agent implements the agent personas sharing one conversation:
// the shared message history, the per-agent response-arbitration state
// machine and the router fanning inbound messages out to the team.
package agent

import (
	"fmt"
	"sync"
	"time"

	"github.com/aatumaykin/hive/internal/llm"
)

// Message is one entry in the shared conversation history. Immutable once
// appended.
type Message struct {
	Role      llm.Role
	Content   string
	Author    string
	Timestamp time.Time
	DedupID   string
}

// Context is the append-only message log shared by every agent on a team.
// A message carrying an already-seen dedup id is silently dropped, so
// redelivery of the same inbound event never duplicates history. Agents
// commit concurrently, hence the mutex around the check-then-append.
type Context struct {
	mu       sync.Mutex
	messages []Message
	seen     map[string]struct{}
}

// NewContext creates an empty shared context.
func NewContext() *Context {
	return &Context{seen: make(map[string]struct{})}
}

// Append adds a message to the history. When dedupID is non-empty and was
// seen before, the call is a no-op.
func (c *Context) Append(role llm.Role, content, author, dedupID string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if dedupID != "" {
		if _, dup := c.seen[dedupID]; dup {
			return
		}
		c.seen[dedupID] = struct{}{}
	}

	c.messages = append(c.messages, Message{
		Role:      role,
		Content:   content,
		Author:    author,
		Timestamp: time.Now(),
		DedupID:   dedupID,
	})
}

// History returns a snapshot of the full ordered history.
func (c *Context) History() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Message, len(c.messages))
	copy(out, c.messages)
	return out
}

// HistoryForCompletion projects the history into the role/content shape
// handed to the completion service, with each content prefixed by its
// author name.
func (c *Context) HistoryForCompletion() []llm.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]llm.Message, 0, len(c.messages))
	for _, msg := range c.messages {
		out = append(out, llm.Message{
			Role:    msg.Role,
			Content: fmt.Sprintf("[%s]: %s", msg.Author, msg.Content),
		})
	}
	return out
}

// Tail returns the last n messages.
func (c *Context) Tail(n int) []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	if n <= 0 {
		return nil
	}
	start := len(c.messages) - n
	if start < 0 {
		start = 0
	}
	out := make([]Message, len(c.messages)-start)
	copy(out, c.messages[start:])
	return out
}

// Len returns the number of messages in the history.
func (c *Context) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.messages)
}
