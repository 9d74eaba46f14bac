package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"smsbridge/internal/config"
	"smsbridge/internal/constants"
	"smsbridge/internal/database"
	"smsbridge/internal/models"
	"smsbridge/internal/service"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
)

// ErrNotImplemented is returned when the channel has no handler for the method.
var ErrNotImplemented = errors.New("method not implemented")

const messagePreviewLength = 50

// ReadCommand calls the sms_reader channel in-process against a local store.
type ReadCommand struct {
	DBPath  string
	JSON    bool
	Method  string
	Verbose bool

	out io.Writer
	now func() time.Time
}

// ParseArgs parses command-line arguments
func ParseArgs(args []string) (*ReadCommand, error) {
	cmd := &ReadCommand{out: os.Stdout, now: time.Now}

	fs := flag.NewFlagSet("smsread", flag.ContinueOnError)
	fs.StringVar(&cmd.DBPath, "db", os.Getenv(config.EnvStorePath), "Path to the Android mmssms.db file")
	fs.BoolVar(&cmd.JSON, "json", false, "Print the response envelope as JSON")
	fs.StringVar(&cmd.Method, "method", constants.MethodGetSmsMessages, "Channel method to invoke")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Log store access at debug level")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("unexpected arguments: %v", fs.Args())
	}
	if cmd.DBPath == "" {
		return nil, fmt.Errorf("usage: smsread --db=PATH [--json] [--method=%s]", constants.MethodGetSmsMessages)
	}

	return cmd, nil
}

// Run invokes the channel once and prints the outcome. Failure and
// not-implemented outcomes are returned as errors after printing.
func (c *ReadCommand) Run(ctx context.Context) error {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.WarnLevel)
	if c.Verbose {
		logger.SetLevel(logrus.DebugLevel)
	}

	var opened *database.Database
	defer func() {
		if opened != nil {
			opened.Close()
		}
	}()

	factory := func() (service.MessageReader, error) {
		db, err := database.New(c.DBPath, nil)
		if err != nil {
			return nil, err
		}
		opened = db
		return service.NewSmsReader(db, logger)
	}

	channel := service.NewSmsChannel("", factory, logger)
	resp := channel.Handle(service.WithVerboseLogging(ctx, c.Verbose), c.Method)

	if c.JSON {
		if err := c.outputJSON(resp.Envelope()); err != nil {
			return err
		}
	} else if resp.Kind == models.ResponseSuccess {
		c.outputTable(resp.Messages)
	}

	switch resp.Kind {
	case models.ResponseNotImplemented:
		return fmt.Errorf("%w: %s", ErrNotImplemented, c.Method)
	case models.ResponseError:
		return fmt.Errorf("%s: %s", resp.Code, resp.Message)
	}
	return nil
}

// outputTable formats messages as a markdown table
func (c *ReadCommand) outputTable(messages models.MessageList) {
	table := tablewriter.NewWriter(c.out)
	table.SetAutoFormatHeaders(false)
	table.SetHeader([]string{"#", "Sender", "Message", "Date/Age"})

	for i, msg := range messages {
		table.Append([]string{
			strconv.Itoa(i + 1),
			msg.Sender,
			truncate(msg.Body, messagePreviewLength),
			c.formatDate(msg.Date),
		})
	}

	table.Render()
}

// outputJSON prints the wire envelope as indented JSON
func (c *ReadCommand) outputJSON(envelope models.ChannelEnvelope) error {
	data, err := json.MarshalIndent(envelope, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Fprintln(c.out, string(data))
	return nil
}

// truncate shortens s to max runes
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) > max {
		return string(runes[:max]) + "..."
	}
	return s
}

// formatDate renders an epoch-millisecond string as a relative age, or as an
// exact date when it lies in the future. Zero and unparseable dates render empty.
func (c *ReadCommand) formatDate(date string) string {
	millis, err := strconv.ParseInt(date, 10, 64)
	if err != nil || millis <= 0 {
		return ""
	}

	t := time.UnixMilli(millis)
	diff := c.now().Sub(t)

	if diff < 0 {
		return t.Format("02.01.2006 15:04")
	}

	hours := int(diff.Hours())
	days := hours / 24

	if days > 0 {
		return fmt.Sprintf("%d days ago", days)
	}
	if hours > 0 {
		return fmt.Sprintf("%d hours ago", hours)
	}

	minutes := int(diff.Minutes())
	if minutes > 0 {
		return fmt.Sprintf("%d minutes ago", minutes)
	}

	return "just now"
}
