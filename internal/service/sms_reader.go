package service

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"smsbridge/internal/constants"
	apperrors "smsbridge/internal/errors"
	"smsbridge/internal/metrics"
	"smsbridge/internal/models"
	"smsbridge/internal/tracing"

	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

const (
	SpanInboxQuery = "sms.inbox.query"

	MetricInboxQueryDuration = "sms_inbox_query_duration"
	MetricInboxRows          = "sms_inbox_rows"
)

// MessageReader returns the most recent inbound messages.
type MessageReader interface {
	FetchRecentMessages(ctx context.Context) (models.MessageList, error)
}

// SmsReader reads the newest inbox rows from a MessageStore and maps them to
// MessageRecords. Store faults never escape as partial results: the reader
// returns an empty list together with a store query fault.
type SmsReader struct {
	store     models.MessageStore
	logger    *logrus.Logger
	errLogger *apperrors.Logger
}

// NewSmsReader creates a reader over store.
func NewSmsReader(store models.MessageStore, logger *logrus.Logger) (*SmsReader, error) {
	if store == nil {
		return nil, apperrors.New(apperrors.ErrCodeInvalidConfig, "message store is required")
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &SmsReader{
		store:     store,
		logger:    logger,
		errLogger: apperrors.WrapLogger(logger),
	}, nil
}

// InboxQuery is the single read the reader issues: newest first, capped.
func InboxQuery() models.InboxQuery {
	projection := make([]string, len(constants.InboxProjection))
	copy(projection, constants.InboxProjection)
	return models.InboxQuery{
		Collection: constants.InboxCollection,
		Projection: projection,
		SortOrder:  constants.InboxSortOrder,
		Limit:      constants.InboxLimit,
	}
}

// FetchRecentMessages returns up to InboxLimit inbox messages, newest first.
// On any store fault the list is empty and the error is a store query fault.
func (r *SmsReader) FetchRecentMessages(ctx context.Context) (models.MessageList, error) {
	ctx, span := tracing.StartSpan(ctx, SpanInboxQuery,
		attribute.String("sms.collection", constants.InboxCollection),
		attribute.Int("sms.limit", constants.InboxLimit),
	)
	defer span.End()

	start := time.Now()
	messages, err := r.collect(ctx)
	metrics.RecordTimer(MetricInboxQueryDuration, time.Since(start), nil, "Inbox query latency")

	if err != nil {
		tracing.RecordError(ctx, err)
		r.errLogger.LogWarn(err, "Failed to read inbox, returning no messages", logrus.Fields{
			LogFieldComponent: "sms_reader",
		})
		return models.MessageList{}, err
	}

	metrics.SetGauge(MetricInboxRows, float64(len(messages)), nil, "Rows returned by the last inbox query")
	tracing.AddSpanAttributes(ctx, attribute.Int("sms.rows", len(messages)))
	LogInboxMessages(ctx, r.logger, messages)

	return messages, nil
}

// collect runs the query and maps every row. Any fault, including a panic
// inside the store, discards rows already mapped.
func (r *SmsReader) collect(ctx context.Context) (messages models.MessageList, err error) {
	defer func() {
		if rec := recover(); rec != nil {
			messages = nil
			err = apperrors.NewStoreQueryFault("read", fmt.Errorf("store panicked: %v", rec))
		}
	}()

	cursor, err := r.store.QueryInbox(ctx, InboxQuery())
	if err != nil {
		return nil, apperrors.NewStoreQueryFault("query", err)
	}
	if cursor == nil {
		return models.MessageList{}, nil
	}
	defer func() {
		if closeErr := cursor.Close(); closeErr != nil && err == nil {
			messages = nil
			err = apperrors.NewStoreQueryFault("close", closeErr)
		}
	}()

	messages = models.MessageList{}
	for cursor.Next() {
		row, rowErr := cursor.Row()
		if rowErr != nil {
			return nil, apperrors.NewStoreQueryFault("scan", rowErr)
		}

		record, mapErr := mapRow(row)
		if mapErr != nil {
			return nil, apperrors.NewStoreQueryFault("map", mapErr)
		}
		messages = append(messages, record)
	}

	if iterErr := cursor.Err(); iterErr != nil {
		return nil, apperrors.NewStoreQueryFault("iterate", iterErr)
	}

	return messages, nil
}

func mapRow(row models.RawRow) (models.MessageRecord, error) {
	sender, err := textColumn(row, constants.ColumnAddress)
	if err != nil {
		return models.MessageRecord{}, err
	}

	body, err := textColumn(row, constants.ColumnBody)
	if err != nil {
		return models.MessageRecord{}, err
	}

	date, err := dateColumn(row, constants.ColumnDate)
	if err != nil {
		return models.MessageRecord{}, err
	}

	return models.MessageRecord{Sender: sender, Body: body, Date: date}, nil
}

// textColumn reads a nullable text column. NULL maps to "".
func textColumn(row models.RawRow, column string) (string, error) {
	value, ok := row[column]
	if !ok {
		return "", fmt.Errorf("column %q not present in row", column)
	}

	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return v, nil
	case []byte:
		return string(v), nil
	default:
		return fmt.Sprint(v), nil
	}
}

// dateColumn reads an epoch-millisecond column and renders it in base 10.
// NULL, non-numeric text and non-finite or out-of-range REALs read as 0.
func dateColumn(row models.RawRow, column string) (string, error) {
	value, ok := row[column]
	if !ok {
		return "", fmt.Errorf("column %q not present in row", column)
	}

	var millis int64
	switch v := value.(type) {
	case nil:
	case int64:
		millis = v
	case int:
		millis = int64(v)
	case int32:
		millis = int64(v)
	case float64:
		millis = floatMillis(v)
	case time.Time:
		millis = v.UnixMilli()
	case string:
		millis = parseMillis(v)
	case []byte:
		millis = parseMillis(string(v))
	default:
		return "", fmt.Errorf("column %q has unsupported type %T", column, value)
	}

	return strconv.FormatInt(millis, 10), nil
}

func floatMillis(v float64) int64 {
	if math.IsNaN(v) || v >= math.MaxInt64 || v < math.MinInt64 {
		return 0
	}
	return int64(v)
}

func parseMillis(s string) int64 {
	millis, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0
	}
	return millis
}
