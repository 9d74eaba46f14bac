package service

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/mock"

	"smsbridge/internal/models"
)

// fakeStore records every query it receives and replays canned rows.
type fakeStore struct {
	mu      sync.Mutex
	queries []models.InboxQuery

	rows       []models.RawRow
	queryErr   error
	rowErrAt   int // 1-based row index whose Row() fails; 0 disables
	iterErr    error
	closeErr   error
	panicOnRow int // 1-based row index whose Row() panics; 0 disables
	nilCursor  bool

	cursor *fakeCursor
}

func (s *fakeStore) QueryInbox(ctx context.Context, query models.InboxQuery) (models.InboxCursor, error) {
	s.mu.Lock()
	s.queries = append(s.queries, query)
	s.mu.Unlock()

	if s.queryErr != nil {
		return nil, s.queryErr
	}
	if s.nilCursor {
		return nil, nil
	}

	s.cursor = &fakeCursor{store: s}
	return s.cursor, nil
}

func (s *fakeStore) lastQuery() models.InboxQuery {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queries[len(s.queries)-1]
}

type fakeCursor struct {
	store  *fakeStore
	pos    int
	closed bool
}

func (c *fakeCursor) Next() bool {
	if c.pos >= len(c.store.rows) {
		return false
	}
	c.pos++
	return true
}

func (c *fakeCursor) Row() (models.RawRow, error) {
	if c.pos == c.store.panicOnRow {
		panic("cursor window full")
	}
	if c.pos == c.store.rowErrAt {
		return nil, errors.New("row unreadable")
	}
	return c.store.rows[c.pos-1], nil
}

func (c *fakeCursor) Err() error {
	return c.store.iterErr
}

func (c *fakeCursor) Close() error {
	c.closed = true
	return c.store.closeErr
}

// panickingStore panics before producing a cursor.
type panickingStore struct{}

func (panickingStore) QueryInbox(ctx context.Context, query models.InboxQuery) (models.InboxCursor, error) {
	panic("content provider died")
}

type mockReader struct {
	mock.Mock
}

func (m *mockReader) FetchRecentMessages(ctx context.Context) (models.MessageList, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).(models.MessageList)
	return list, args.Error(1)
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func row(address, body, date any) models.RawRow {
	return models.RawRow{"address": address, "body": body, "date": date}
}
