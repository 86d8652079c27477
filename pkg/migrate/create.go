package migrate

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const sqlTemplate = `-- +goose Up
-- +goose StatementBegin
SELECT 'up SQL query';
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
SELECT 'down SQL query';
-- +goose StatementEnd
`

// CreateSQLMigration writes a timestamped empty SQL migration into dir.
func CreateSQLMigration(dir, name string) (string, error) {
	if dir == "" {
		return "", fmt.Errorf("dir is required")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return "", fmt.Errorf("name is required")
	}
	name = strings.ReplaceAll(strings.ToLower(name), " ", "_")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating migrations dir: %w", err)
	}

	version := time.Now().UTC().Format("20060102150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.sql", version, name))

	if err := os.WriteFile(path, []byte(sqlTemplate), 0o644); err != nil {
		return "", fmt.Errorf("writing migration: %w", err)
	}
	return path, nil
}
