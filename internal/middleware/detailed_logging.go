package middleware

import (
	"bytes"
	"net/http"
	"strings"

	"smsbridge/internal/constants"
	"smsbridge/internal/privacy"
	"smsbridge/internal/service"
	"smsbridge/internal/tracing"

	"github.com/sirupsen/logrus"
)

// DetailedLoggingConfig controls what gets logged
type DetailedLoggingConfig struct {
	LogRequestHeaders bool     `json:"log_request_headers"`
	LogResponseBody   bool     `json:"log_response_body"`
	MaxBodySize       int      `json:"max_body_size"`
	SensitiveHeaders  []string `json:"sensitive_headers"`
	SkipEndpoints     []string `json:"skip_endpoints"`
}

// DefaultDetailedLoggingConfig returns sensible defaults
func DefaultDetailedLoggingConfig() DetailedLoggingConfig {
	return DetailedLoggingConfig{
		LogRequestHeaders: true,
		LogResponseBody:   false,
		MaxBodySize:       1024,
		SensitiveHeaders: []string{
			"authorization", "cookie", "set-cookie",
			strings.ToLower(constants.SignatureHeader),
		},
		SkipEndpoints: []string{"/metrics", "/health"},
	}
}

// DetailedLoggingMiddleware logs request headers and, optionally, a masked
// view of the response body at debug level.
func DetailedLoggingMiddleware(logger *logrus.Logger, config DetailedLoggingConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !logger.IsLevelEnabled(logrus.DebugLevel) || skipEndpoint(r.URL.Path, config.SkipEndpoints) {
				next.ServeHTTP(w, r)
				return
			}

			requestInfo := tracing.GetRequestInfo(r.Context())
			logRequestDetails(logger, r, requestInfo, config)

			if !config.LogResponseBody {
				next.ServeHTTP(w, r)
				return
			}

			capture := &responseCaptureWrapper{
				responseWrapper: responseWrapper{ResponseWriter: w, statusCode: http.StatusOK},
				limit:           config.MaxBodySize,
			}
			next.ServeHTTP(capture, r)
			logResponseDetails(logger, capture, requestInfo)
		})
	}
}

func logRequestDetails(logger *logrus.Logger, r *http.Request, requestInfo *tracing.RequestInfo, config DetailedLoggingConfig) {
	fields := logrus.Fields{
		service.LogFieldRequestID: requestInfo.RequestID,
		service.LogFieldTraceID:   requestInfo.TraceID,
		service.LogFieldMethod:    r.Method,
		service.LogFieldURL:       r.URL.String(),
		service.LogFieldRemoteIP:  GetClientIP(r),
		"content_length":          r.ContentLength,
		"protocol":                r.Proto,
	}

	if config.LogRequestHeaders {
		headers := make(map[string]string, len(r.Header))
		for name, values := range r.Header {
			if isSensitiveHeader(name, config.SensitiveHeaders) {
				headers[name] = "***MASKED***"
			} else {
				headers[name] = strings.Join(values, ", ")
			}
		}
		fields["request_headers"] = headers
	}

	logger.WithFields(fields).Debug("Detailed request logging")
}

// logResponseDetails never writes message content; the body is masked and
// only its size is visible.
func logResponseDetails(logger *logrus.Logger, capture *responseCaptureWrapper, requestInfo *tracing.RequestInfo) {
	masked := privacy.MaskSensitiveFields(map[string]interface{}{
		"body": capture.body.String(),
	})

	logger.WithFields(logrus.Fields{
		service.LogFieldRequestID:  requestInfo.RequestID,
		service.LogFieldTraceID:    requestInfo.TraceID,
		service.LogFieldStatusCode: capture.statusCode,
		service.LogFieldSize:       capture.responseSize,
		"response_body":            masked["body"],
		"response_truncated":       capture.truncated,
	}).Debug("Detailed response logging")
}

// responseCaptureWrapper keeps the first limit bytes of the response
type responseCaptureWrapper struct {
	responseWrapper
	body      bytes.Buffer
	limit     int
	truncated bool
}

func (rc *responseCaptureWrapper) Write(data []byte) (int, error) {
	n, err := rc.responseWrapper.Write(data)
	if room := rc.limit - rc.body.Len(); room > 0 {
		if n > room {
			rc.body.Write(data[:room])
			rc.truncated = true
		} else {
			rc.body.Write(data[:n])
		}
	} else if n > 0 {
		rc.truncated = true
	}
	return n, err
}

func isSensitiveHeader(headerName string, sensitiveHeaders []string) bool {
	for _, sensitive := range sensitiveHeaders {
		if strings.EqualFold(sensitive, headerName) {
			return true
		}
	}
	return false
}

func skipEndpoint(path string, skip []string) bool {
	for _, prefix := range skip {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
