package models

import "context"

// InboxCursor is a forward-only view over the rows of one inbox query.
// Callers must Close it on every exit path.
type InboxCursor interface {
	Next() bool
	Row() (RawRow, error)
	Err() error
	Close() error
}

// MessageStore is the read-only platform message store.
type MessageStore interface {
	QueryInbox(ctx context.Context, query InboxQuery) (InboxCursor, error)
}
