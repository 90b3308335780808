package migrate

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/patelpulse/pulse-backend/pkg/slug"
)

const versionLayout = "20060102150405"

const sqlTemplate = `-- +goose Up
-- +goose StatementBegin
-- %[1]s
-- +goose StatementEnd

-- +goose Down
-- +goose StatementBegin
-- revert %[1]s
-- +goose StatementEnd
`

// CreateSQLMigration writes <dir>/<version>_<name>.sql into an existing
// migrations directory. The version is the UTC timestamp of now, bumped past
// the newest migration already in dir so goose ordering stays strict.
func CreateSQLMigration(dir, name string, now time.Time) (string, error) {
	if dir == "" {
		return "", errors.New("dir is required")
	}
	info, err := os.Stat(dir)
	if err != nil {
		return "", fmt.Errorf("migrations dir %q: %w", dir, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("migrations dir %q is not a directory", dir)
	}

	base := fileName(name)
	if base == "" {
		return "", fmt.Errorf("migration name %q has no usable characters", name)
	}

	latest, err := latestVersion(dir)
	if err != nil {
		return "", err
	}
	version, err := strconv.ParseInt(now.UTC().Format(versionLayout), 10, 64)
	if err != nil {
		return "", fmt.Errorf("format version: %w", err)
	}
	if version <= latest {
		version = latest + 1
	}

	path := filepath.Join(dir, fmt.Sprintf("%014d_%s.sql", version, base))
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", fmt.Errorf("create migration %q: %w", path, err)
	}
	defer f.Close()
	if _, err := fmt.Fprintf(f, sqlTemplate, base); err != nil {
		return "", fmt.Errorf("write migration %q: %w", path, err)
	}
	return path, nil
}

// fileName folds a free-form name into the snake_case form ValidateDir accepts.
func fileName(name string) string {
	return strings.ReplaceAll(slug.Make(name), "-", "_")
}

func latestVersion(dir string) (int64, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return 0, fmt.Errorf("read dir %q: %w", dir, err)
	}
	var latest int64
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		m := sqlFileRe.FindStringSubmatch(e.Name())
		if m == nil {
			continue
		}
		v, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return 0, fmt.Errorf("parse version of %q: %w", e.Name(), err)
		}
		if v > latest {
			latest = v
		}
	}
	return latest, nil
}
