// Package channels defines the chat-gateway contract and the pieces shared
// by every connector implementation.
package channels

import "context"

// Gateway is a chat connector: it delivers inbound events onto the message
// bus and consumes outbound actions from it. Send and react failures are
// logged and swallowed inside the gateway; they never propagate to the
// agents.
type Gateway interface {
	// Name identifies the gateway ("telegram").
	Name() string

	// Start connects to the chat service and begins delivering events.
	// It returns once the connection is established; delivery happens in
	// background goroutines bound to ctx.
	Start(ctx context.Context) error

	// Stop disconnects gracefully.
	Stop() error

	// IsConnected reports whether the gateway is currently connected.
	IsConnected() bool
}
