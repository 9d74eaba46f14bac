package service

import (
	"context"
	"fmt"

	"smsbridge/internal/constants"
	apperrors "smsbridge/internal/errors"
	"smsbridge/internal/metrics"
	"smsbridge/internal/models"
	"smsbridge/internal/tracing"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	SpanChannelInvoke = "channel.invoke"

	MetricChannelCalls = "channel_calls_total"
)

// ReaderFactory builds the MessageReader used for one getSmsMessages call.
type ReaderFactory func() (MessageReader, error)

// StoreReaderFactory returns a factory producing SmsReaders over store.
func StoreReaderFactory(store models.MessageStore, logger *logrus.Logger) ReaderFactory {
	return func() (MessageReader, error) {
		return NewSmsReader(store, logger)
	}
}

// SmsChannel dispatches named commands received on the sms_reader channel.
type SmsChannel struct {
	name      string
	newReader ReaderFactory
	logger    *logrus.Logger
	errLogger *apperrors.Logger
}

// NewSmsChannel creates a channel endpoint. An empty name uses the default
// channel name.
func NewSmsChannel(name string, factory ReaderFactory, logger *logrus.Logger) *SmsChannel {
	if name == "" {
		name = constants.DefaultChannelName
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &SmsChannel{
		name:      name,
		newReader: factory,
		logger:    logger,
		errLogger: apperrors.WrapLogger(logger),
	}
}

// Name returns the channel name callers address.
func (c *SmsChannel) Name() string {
	return c.name
}

// Methods lists the commands the channel implements.
func (c *SmsChannel) Methods() []string {
	return []string{constants.MethodGetSmsMessages}
}

// Handle answers one command. It always produces exactly one response and
// never returns a Go error: faults become Failure responses.
func (c *SmsChannel) Handle(ctx context.Context, method string) models.CommandResponse {
	ctx, span := tracing.StartSpan(ctx, SpanChannelInvoke,
		attribute.String("channel.name", c.name),
		attribute.String("channel.method", method),
	)
	defer span.End()

	var resp models.CommandResponse
	methodLabel := method
	switch method {
	case constants.MethodGetSmsMessages:
		resp = c.getSmsMessages(ctx)
	default:
		methodLabel = "unknown"
		c.logger.WithFields(logrus.Fields{
			LogFieldChannel: c.name,
			LogFieldMethod:  method,
		}).Debug("Unknown channel method")
		resp = models.NotImplemented()
	}

	metrics.IncrementCounter(MetricChannelCalls, map[string]string{
		"method":  methodLabel,
		"outcome": string(resp.Kind),
	}, "Channel invocations by method and outcome")
	tracing.AddSpanAttributes(ctx, attribute.String("channel.outcome", string(resp.Kind)))

	return resp
}

func (c *SmsChannel) getSmsMessages(ctx context.Context) (resp models.CommandResponse) {
	defer func() {
		if rec := recover(); rec != nil {
			resp = c.bridgeFailure(ctx, fmt.Errorf("%v", rec))
		}
	}()

	if c.newReader == nil {
		return c.bridgeFailure(ctx, fmt.Errorf("no message reader configured"))
	}

	reader, err := c.newReader()
	if err != nil {
		return c.bridgeFailure(ctx, err)
	}
	if reader == nil {
		return c.bridgeFailure(ctx, fmt.Errorf("message reader unavailable"))
	}

	messages, err := reader.FetchRecentMessages(ctx)
	if err != nil {
		if apperrors.IsStoreQueryFault(err) {
			return models.Success(models.MessageList{})
		}
		return c.bridgeFailure(ctx, err)
	}

	return models.Success(messages)
}

// bridgeFailure reports cause to the caller as SMS_ERROR.
func (c *SmsChannel) bridgeFailure(ctx context.Context, cause error) models.CommandResponse {
	fault := apperrors.NewBridgeFault(cause).WithContext(LogFieldChannel, c.name)
	tracing.RecordError(ctx, fault)
	c.errLogger.LogError(fault, "Failed to read SMS", logrus.Fields{
		LogFieldMethod:    constants.MethodGetSmsMessages,
		LogFieldRequestID: tracing.GetRequestID(ctx),
	})
	return models.Failure(constants.SmsErrorCode, constants.SmsErrorPrefix+cause.Error())
}
