package database

import (
	"fmt"
	"regexp"
	"strings"

	"smsbridge/internal/constants"
	"smsbridge/internal/models"
)

// Android telephony sms table and the message types behind each collection.
const smsTable = "sms"

var collectionFilters = map[string]string{
	constants.InboxCollection: fmt.Sprintf("type = %d", constants.SmsTypeInbox),
	"sent":                    fmt.Sprintf("type = %d", constants.SmsTypeSent),
}

const selectCollectionQuery = `SELECT %s FROM ` + smsTable + ` WHERE %s ORDER BY %s LIMIT ?`

var identifierPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// InsertSmsQuery is used by fixtures to populate a store.
const InsertSmsQuery = `
	INSERT INTO sms (thread_id, address, date, date_sent, read, type, body, seen)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

// buildInboxQuery renders a collection query. Identifiers are validated
// because they cannot be bound as parameters.
func buildInboxQuery(query models.InboxQuery) (string, []any, error) {
	filter, ok := collectionFilters[query.Collection]
	if !ok {
		return "", nil, fmt.Errorf("unknown collection: %q", query.Collection)
	}

	if len(query.Projection) == 0 {
		return "", nil, fmt.Errorf("projection must name at least one column")
	}
	for _, column := range query.Projection {
		if !identifierPattern.MatchString(column) {
			return "", nil, fmt.Errorf("invalid column name: %q", column)
		}
	}

	orderBy, err := parseSortOrder(query.SortOrder)
	if err != nil {
		return "", nil, err
	}

	if query.Limit <= 0 {
		return "", nil, fmt.Errorf("limit must be positive, got %d", query.Limit)
	}

	statement := fmt.Sprintf(selectCollectionQuery, strings.Join(query.Projection, ", "), filter, orderBy)
	return statement, []any{query.Limit}, nil
}

// parseSortOrder accepts "<column> [ASC|DESC]".
func parseSortOrder(sortOrder string) (string, error) {
	fields := strings.Fields(sortOrder)
	if len(fields) == 0 || len(fields) > 2 {
		return "", fmt.Errorf("invalid sort order: %q", sortOrder)
	}

	if !identifierPattern.MatchString(fields[0]) {
		return "", fmt.Errorf("invalid sort column: %q", fields[0])
	}

	direction := "ASC"
	if len(fields) == 2 {
		direction = strings.ToUpper(fields[1])
		if direction != "ASC" && direction != "DESC" {
			return "", fmt.Errorf("invalid sort direction: %q", fields[1])
		}
	}

	return fields[0] + " " + direction, nil
}
