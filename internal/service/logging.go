package service

import (
	"context"

	"smsbridge/internal/models"
	"smsbridge/internal/privacy"

	"github.com/sirupsen/logrus"
)

// Standard field names for structured log entries
const (
	// Channel identifiers
	LogFieldChannel   = "channel"
	LogFieldMethod    = "method"
	LogFieldRequestID = "request_id"
	LogFieldTraceID   = "trace_id"
	LogFieldCallID    = "call_id"

	// Service and operation fields
	LogFieldService   = "service"
	LogFieldOperation = "operation"
	LogFieldComponent = "component"
	LogFieldOutcome   = "outcome"

	// Message fields
	LogFieldSender = "sender"
	LogFieldBody   = "body"
	LogFieldDate   = "date"

	// Performance
	LogFieldDuration = "duration_ms"
	LogFieldCount    = "count"
	LogFieldSize     = "size_bytes"

	// Network
	LogFieldURL        = "url"
	LogFieldStatusCode = "status_code"
	LogFieldRemoteIP   = "remote_ip"
	LogFieldUserAgent  = "user_agent"

	// Errors
	LogFieldErrorCode = "error_code"
	LogFieldAttempt   = "attempt"
)

// ContextKey is a package-local type to prevent context key collisions
type ContextKey string

// VerboseContextKey is the context key for the verbose logging flag
const VerboseContextKey ContextKey = "verbose"

// WithVerboseLogging marks the context so message contents may be logged
func WithVerboseLogging(ctx context.Context, verbose bool) context.Context {
	return context.WithValue(ctx, VerboseContextKey, verbose)
}

// IsVerboseLogging checks if verbose logging is enabled from context
func IsVerboseLogging(ctx context.Context) bool {
	if verbose, ok := ctx.Value(VerboseContextKey).(bool); ok {
		return verbose
	}
	return false
}

// LogInboxMessages logs a completed inbox read. Senders and bodies are only
// written in clear when the context asks for verbose logging.
func LogInboxMessages(ctx context.Context, logger *logrus.Logger, messages models.MessageList) {
	if len(messages) == 0 {
		logger.Debug("No inbox messages found")
		return
	}

	logger.WithField(LogFieldCount, len(messages)).Debug("Read inbox messages")

	if !logger.IsLevelEnabled(logrus.TraceLevel) {
		return
	}

	verbose := IsVerboseLogging(ctx)
	for _, msg := range messages {
		fields := logrus.Fields{
			LogFieldSender: privacy.MaskSender(msg.Sender),
			LogFieldBody:   privacy.MaskBody(msg.Body),
			LogFieldDate:   msg.Date,
		}
		if verbose {
			fields[LogFieldSender] = msg.Sender
			fields[LogFieldBody] = msg.Body
		}
		logger.WithFields(fields).Trace("Inbox message")
	}
}
