package migrations

import (
	"embed"
	"fmt"
	"os"
	"path/filepath"
)

const inboxSchemaFile = "001_android_sms.sql"

//go:embed sql/*.sql
var embedded embed.FS

var (
	// MigrationsDir can be overridden in tests or by the application
	MigrationsDir = "scripts/migrations"
)

// GetInboxSchema returns the DDL for the Android sms table. A file under
// MigrationsDir takes precedence over the copy compiled into the binary.
func GetInboxSchema() (string, error) {
	searchPaths := []string{
		filepath.Join(MigrationsDir, inboxSchemaFile),
		filepath.Join("..", "..", MigrationsDir, inboxSchemaFile),
		filepath.Join("..", MigrationsDir, inboxSchemaFile),
	}

	for _, path := range searchPaths {
		schemaContent, err := os.ReadFile(path) // #nosec G304 - fixed file name under a configured directory
		if err == nil {
			return string(schemaContent), nil
		}
	}

	schemaContent, err := embedded.ReadFile("sql/" + inboxSchemaFile)
	if err != nil {
		return "", fmt.Errorf("could not find schema file in any location: %w", err)
	}
	return string(schemaContent), nil
}
