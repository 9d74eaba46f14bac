package errors

import (
	"bytes"
	"errors"
	"fmt"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func bufferedLogger() (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(&buf)
	return WrapLogger(logger), &buf
}

func TestWrapLogger_Nil(t *testing.T) {
	logger := WrapLogger(nil)

	assert.NotNil(t, logger.Logger)
	_, ok := logger.Formatter.(*logrus.JSONFormatter)
	assert.True(t, ok, "Fallback logger should use JSON formatter")
}

func TestFields(t *testing.T) {
	assert.Empty(t, Fields(errors.New("plain")))
	assert.Empty(t, Fields(nil))

	fields := Fields(fmt.Errorf("outer: %w", NewStoreQueryFault("scan", errors.New("bad row"))))
	assert.Equal(t, ErrCodeStoreQuery, fields["error_code"])
	assert.Equal(t, false, fields["retryable"])
	assert.Equal(t, "scan", fields["operation"])
}

func TestLogger_LogError(t *testing.T) {
	logger, buf := bufferedLogger()

	err := NewStoreQueryFault("read_row", errors.New("missing column date"))
	logger.LogError(err, "Inbox query failed", logrus.Fields{"channel": "sms_reader"})

	output := buf.String()
	assert.Contains(t, output, `"level":"error"`)
	assert.Contains(t, output, `"error_code":"STORE_QUERY"`)
	assert.Contains(t, output, `"operation":"read_row"`)
	assert.Contains(t, output, `"channel":"sms_reader"`)
	assert.Contains(t, output, `"msg":"Inbox query failed"`)
}

func TestLogger_LogWarn(t *testing.T) {
	logger, buf := bufferedLogger()

	logger.LogWarn(NewDatabaseError("open", errors.New("database is locked"), true), "open failed")

	output := buf.String()
	assert.Contains(t, output, `"level":"warning"`)
	assert.Contains(t, output, `"retryable":true`)
	assert.Contains(t, output, `"error":"DATABASE_CONNECTION: message store open failed: database is locked"`)
}

func TestLogger_PlainError(t *testing.T) {
	logger, buf := bufferedLogger()

	logger.LogError(errors.New("boom"), "failed")

	assert.Contains(t, buf.String(), `"error":"boom"`)
	assert.NotContains(t, buf.String(), "error_code")
}
