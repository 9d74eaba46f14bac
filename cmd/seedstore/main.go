package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"time"

	"smsbridge/internal/constants"
	"smsbridge/internal/database"
	"smsbridge/internal/migrations"

	_ "github.com/mattn/go-sqlite3"
	"github.com/sirupsen/logrus"
)

var senders = []string{"+15550100", "+15550101", "+447700900123", "ACME-BANK", "+15550102"}

var bodies = []string{
	"Your verification code is 482913",
	"Running late, be there in 10",
	"Parcel out for delivery today",
	"Don't forget the meeting at 3pm",
	"",
}

func main() {
	dbPath := flag.String("db", "./mmssms.db", "Path to the store file to create or extend")
	count := flag.Int("count", 25, "Number of inbox messages to insert")
	sent := flag.Int("sent", 3, "Number of sent messages to insert")
	flag.Parse()

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if err := seedStore(context.Background(), *dbPath, *count, *sent, time.Now()); err != nil {
		logger.WithError(err).Fatal("Failed to seed store")
	}

	logger.WithFields(logrus.Fields{
		"path":  *dbPath,
		"inbox": *count,
		"sent":  *sent,
	}).Info("Store seeded")
}

// seedStore applies the Android sms schema to path and inserts inbox and sent
// rows spaced one minute apart, newest at now. Every fifth inbox row has a
// NULL body.
func seedStore(ctx context.Context, path string, inbox, sent int, now time.Time) error {
	if inbox < 0 || sent < 0 {
		return fmt.Errorf("message counts cannot be negative")
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	schema, err := migrations.GetInboxSchema()
	if err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to apply schema: %w", err)
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, database.InsertSmsQuery)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i := 0; i < inbox+sent; i++ {
		smsType := constants.SmsTypeInbox
		if i >= inbox {
			smsType = constants.SmsTypeSent
		}

		sender := senders[i%len(senders)]
		var body interface{} = bodies[i%len(bodies)]
		if smsType == constants.SmsTypeInbox && i%5 == 4 {
			body = nil
		}

		date := now.Add(-time.Duration(i) * time.Minute).UnixMilli()
		threadID := i%len(senders) + 1

		if _, err := stmt.ExecContext(ctx, threadID, sender, date, date, 0, smsType, body, 0); err != nil {
			return fmt.Errorf("failed to insert message %d: %w", i+1, err)
		}
	}

	return tx.Commit()
}
