package tools

import (
	"context"
	"sync"

	"github.com/aatumaykin/hive/internal/logger"
)

// Result is the structured outcome of one tool execution.
// A nil Result means "not connected" or "execution failed" and is never
// fatal to the invoking agent.
type Result map[string]any

// Bridge holds live connections to external tool backends and executes
// authorized calls against them.
type Bridge struct {
	mu          sync.RWMutex
	connections map[string]connection
	logger      *logger.Logger
}

type connection struct {
	endpoint string
}

// NewBridge creates a Bridge with no connections.
func NewBridge(log *logger.Logger) *Bridge {
	return &Bridge{
		connections: make(map[string]connection),
		logger:      log,
	}
}

// Connect registers a live connection for the tool name.
func (b *Bridge) Connect(toolName, endpoint string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.connections[toolName] = connection{endpoint: endpoint}
	b.logger.Info("tool backend connected",
		logger.Field{Key: "tool", Value: toolName},
		logger.Field{Key: "endpoint", Value: endpoint})
}

// Disconnect removes a tool's connection.
func (b *Bridge) Disconnect(toolName string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.connections, toolName)
}

// IsConnected reports whether a live connection exists for the tool.
func (b *Bridge) IsConnected(toolName string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	_, ok := b.connections[toolName]
	return ok
}

// Execute runs an action against a connected tool backend.
// When the tool has no live connection it returns a nil Result and no
// error: the caller proceeds as if no tool call occurred.
func (b *Bridge) Execute(ctx context.Context, toolName, action string, params map[string]string) (Result, error) {
	b.mu.RLock()
	_, connected := b.connections[toolName]
	b.mu.RUnlock()

	if !connected {
		b.logger.Warn("tool not connected",
			logger.Field{Key: "tool", Value: toolName},
			logger.Field{Key: "action", Value: action})
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := Result{
		"tool":   toolName,
		"action": action,
		"params": params,
	}
	return result, nil
}
