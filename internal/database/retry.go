package database

import (
	"context"
	"errors"
	"strings"
)

// IsRetryableError determines if a store error is worth retrying. It is used
// while opening the store; queries themselves are never retried.
func IsRetryableError(err error) bool {
	if err == nil {
		return false
	}

	// Context timeout/cancellation are not retryable by us
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}

	errStr := err.Error()

	// The telephony provider may hold a write lock while delivering a message
	if strings.Contains(errStr, "database is locked") || strings.Contains(errStr, "database is busy") {
		return true
	}

	// Disk I/O errors might be transient
	if strings.Contains(errStr, "disk I/O error") {
		return true
	}

	// Schema errors are not retryable
	if strings.Contains(errStr, "no such table") || strings.Contains(errStr, "no such column") {
		return false
	}

	// Missing files and permission problems need an operator, not a retry
	return false
}
