package tracing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type requestKey struct{}

// RequestInfo is the per-request record carried on the context. It is copied
// on every update so contexts handed out earlier never change.
type RequestInfo struct {
	RequestID string    `json:"request_id"`
	TraceID   string    `json:"trace_id"`
	SpanID    string    `json:"span_id"`
	StartTime time.Time `json:"start_time"`
}

func newRequestID() string {
	return "req_" + uuid.NewString()
}

// WithRequestTracing starts a request record. An empty requestID is replaced
// with a generated one.
func WithRequestTracing(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		requestID = newRequestID()
	}
	return context.WithValue(ctx, requestKey{}, RequestInfo{
		RequestID: requestID,
		StartTime: time.Now(),
	})
}

func withSpanIDs(ctx context.Context, traceID, spanID string) context.Context {
	info := requestInfo(ctx)
	info.TraceID = traceID
	info.SpanID = spanID
	return context.WithValue(ctx, requestKey{}, info)
}

func requestInfo(ctx context.Context) RequestInfo {
	info, _ := ctx.Value(requestKey{}).(RequestInfo)
	return info
}

// GetRequestInfo returns a copy of the request record; fields are empty on a
// context that never passed through WithRequestTracing.
func GetRequestInfo(ctx context.Context) *RequestInfo {
	info := requestInfo(ctx)
	return &info
}

func GetRequestID(ctx context.Context) string {
	return requestInfo(ctx).RequestID
}

// Duration is the time elapsed since WithRequestTracing, or 0 without one.
func Duration(ctx context.Context) time.Duration {
	start := requestInfo(ctx).StartTime
	if start.IsZero() {
		return 0
	}
	return time.Since(start)
}
