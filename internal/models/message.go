package models

// MessageRecord is one inbound text message as surfaced to the caller.
// All three fields are always present; missing data is the empty string.
type MessageRecord struct {
	Sender string `json:"sender"`
	Body   string `json:"body"`
	// Date is the decimal text of the epoch-millisecond timestamp.
	Date string `json:"date"`
}

// MessageList is ordered newest first, exactly as the store returned it.
type MessageList []MessageRecord

// RawRow holds the driver values of a single store row keyed by column name.
type RawRow map[string]any

// InboxQuery is the read issued against the message store.
type InboxQuery struct {
	Collection string
	Projection []string
	SortOrder  string
	Limit      int
}
