package database

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"strconv"

	"smsbridge/internal/constants"
	apperrors "smsbridge/internal/errors"
	"smsbridge/internal/models"
	"smsbridge/internal/security"

	_ "github.com/mattn/go-sqlite3"
)

// Database is a read-only handle on an Android telephony database (mmssms.db).
type Database struct {
	db   *sql.DB
	path string
}

// New opens the store at dbPath in read-only, query-only mode. The file must
// already exist; the bridge never creates or migrates the platform store.
func New(dbPath string, cfg *models.StoreConfig) (*Database, error) {
	if len(dbPath) == 0 || dbPath[0] == '\x00' {
		return nil, fmt.Errorf("invalid database path")
	}

	if err := security.ValidateFilePath(dbPath); err != nil {
		return nil, fmt.Errorf("invalid database path: %w", err)
	}

	if _, err := os.Stat(dbPath); err != nil {
		return nil, apperrors.NewDatabaseError("stat", err, false).WithContext("path", dbPath)
	}

	busyTimeoutMs := constants.DefaultStoreBusyTimeoutMs
	if cfg != nil && cfg.BusyTimeoutMs > 0 {
		busyTimeoutMs = cfg.BusyTimeoutMs
	}

	db, err := sql.Open("sqlite3", readOnlyDSN(dbPath, busyTimeoutMs))
	if err != nil {
		return nil, apperrors.NewDatabaseError("open", err, false)
	}

	if err := db.Ping(); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			return nil, fmt.Errorf("failed to ping database: %w (close error: %v)", err, closeErr)
		}
		return nil, apperrors.NewDatabaseError("ping", err, IsRetryableError(err))
	}

	return &Database{db: db, path: dbPath}, nil
}

// readOnlyDSN builds a sqlite URI that refuses writes at both the open-mode
// and the connection level.
func readOnlyDSN(path string, busyTimeoutMs int) string {
	params := url.Values{}
	params.Set("mode", "ro")
	params.Set("_query_only", "true")
	params.Set("_busy_timeout", strconv.Itoa(busyTimeoutMs))
	return "file:" + path + "?" + params.Encode()
}

func (d *Database) Close() error {
	return d.db.Close()
}

// Path returns the file the store was opened from.
func (d *Database) Path() string {
	return d.path
}

// Ping checks that the store is still reachable.
func (d *Database) Ping(ctx context.Context) error {
	return d.db.PingContext(ctx)
}

// QueryInbox runs one read against the requested collection. The returned
// cursor holds a connection until it is closed.
func (d *Database) QueryInbox(ctx context.Context, query models.InboxQuery) (models.InboxCursor, error) {
	statement, args, err := buildInboxQuery(query)
	if err != nil {
		return nil, err
	}

	rows, err := d.db.QueryContext(ctx, statement, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query %s: %w", query.Collection, err)
	}

	return &inboxRows{rows: rows}, nil
}

// inboxRows adapts *sql.Rows to models.InboxCursor.
type inboxRows struct {
	rows    *sql.Rows
	columns []string
}

func (r *inboxRows) Next() bool {
	return r.rows.Next()
}

func (r *inboxRows) Row() (models.RawRow, error) {
	if r.columns == nil {
		columns, err := r.rows.Columns()
		if err != nil {
			return nil, fmt.Errorf("failed to read columns: %w", err)
		}
		r.columns = columns
	}

	values := make([]any, len(r.columns))
	targets := make([]any, len(r.columns))
	for i := range values {
		targets[i] = &values[i]
	}

	if err := r.rows.Scan(targets...); err != nil {
		return nil, fmt.Errorf("failed to scan row: %w", err)
	}

	row := make(models.RawRow, len(r.columns))
	for i, column := range r.columns {
		row[column] = values[i]
	}
	return row, nil
}

func (r *inboxRows) Err() error {
	return r.rows.Err()
}

func (r *inboxRows) Close() error {
	return r.rows.Close()
}
