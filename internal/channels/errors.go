package channels

import (
	"time"

	"github.com/aatumaykin/hive/internal/logger"
)

// ErrorDetails describes a delivery failure in a channel-agnostic way, so
// senders can decide whether and when to retry.
type ErrorDetails interface {
	// Error returns the failure description.
	Error() string

	// IsRetryable reports whether the delivery may be retried.
	IsRetryable() bool

	// RetryAfter returns the delay before a retry attempt.
	RetryAfter() time.Duration

	// LogFields returns fields for structured logging.
	LogFields() []logger.Field
}

// TelegramErrorDetails carries a Telegram API delivery failure.
type TelegramErrorDetails struct {
	ErrorCode     int
	Description   string
	RetryAfterSec int
	ChatID        string
	Timestamp     time.Time
}

// Error returns the failure description.
func (d *TelegramErrorDetails) Error() string {
	return d.Description
}

// IsRetryable reports whether the delivery may be retried.
// Rate limiting (429) and server-side errors are retryable.
func (d *TelegramErrorDetails) IsRetryable() bool {
	return d.ErrorCode == 429 || (d.ErrorCode >= 500 && d.ErrorCode < 600)
}

// RetryAfter returns the delay before a retry attempt.
func (d *TelegramErrorDetails) RetryAfter() time.Duration {
	if d.RetryAfterSec > 0 {
		return time.Duration(d.RetryAfterSec) * time.Second
	}
	if d.ErrorCode >= 500 && d.ErrorCode < 600 {
		return 5 * time.Second
	}
	return 0
}

// LogFields returns fields for structured logging.
func (d *TelegramErrorDetails) LogFields() []logger.Field {
	return []logger.Field{
		{Key: "error_code", Value: d.ErrorCode},
		{Key: "error_description", Value: d.Description},
		{Key: "retry_after", Value: d.RetryAfterSec},
		{Key: "chat_id", Value: d.ChatID},
	}
}
