package errors

import (
	"github.com/sirupsen/logrus"
)

// Logger writes errors with their AppError code and context attached.
type Logger struct {
	*logrus.Logger
}

// WrapLogger adapts logger. A nil logger gets a fresh JSON logger.
func WrapLogger(logger *logrus.Logger) *Logger {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
	}
	return &Logger{Logger: logger}
}

// Fields returns the log fields describing err: its code, whether it is
// retryable and its context. Plain errors have no fields.
func Fields(err error) logrus.Fields {
	appErr, ok := asAppError(err)
	if !ok {
		return logrus.Fields{}
	}

	fields := logrus.Fields{
		"error_code": appErr.Code,
		"retryable":  appErr.Retryable,
	}
	for k, v := range appErr.Context {
		fields[k] = v
	}
	return fields
}

func (l *Logger) LogError(err error, message string, extra ...logrus.Fields) {
	l.entry(err, extra).Error(message)
}

func (l *Logger) LogWarn(err error, message string, extra ...logrus.Fields) {
	l.entry(err, extra).Warn(message)
}

func (l *Logger) entry(err error, extra []logrus.Fields) *logrus.Entry {
	entry := l.Logger.WithError(err).WithFields(Fields(err))
	for _, fields := range extra {
		entry = entry.WithFields(fields)
	}
	return entry
}
