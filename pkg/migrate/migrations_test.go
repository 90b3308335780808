package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/patelpulse/pulse-backend/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	require.NoError(t, err)
	require.Len(t, matches, 1, "expected one %s migration", suffix)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestMigrationsDirIsValid(t *testing.T) {
	require.NoError(t, migrate.ValidateDir("migrations"))
}

func TestEnumMigrationMatchesDomainValues(t *testing.T) {
	content := readMigration(t, "create_enums")

	for _, sub := range []string{
		"CREATE TYPE payment_status AS ENUM ('pending', 'success', 'failed', 'cancelled')",
		"CREATE TYPE order_status AS ENUM ('created', 'processing', 'completed', 'failed', 'refunded')",
		"CREATE TYPE review_status AS ENUM ('pending', 'approved', 'rejected')",
		"CREATE TYPE admin_role AS ENUM ('admin', 'editor')",
		"'rating_recompute_requested'",
	} {
		assert.Contains(t, content, sub)
	}
}

func TestCatalogMigrationContainsConstraints(t *testing.T) {
	content := readMigration(t, "create_catalog")

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS products",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_products_slug",
		"FOREIGN KEY (product_id) REFERENCES products(id) ON DELETE CASCADE",
		"CHECK (rating BETWEEN 1 AND 5)",
		"CREATE INDEX IF NOT EXISTS idx_reviews_product_status",
		"DROP TABLE IF EXISTS reviews",
	} {
		assert.Contains(t, content, sub)
	}
}

func TestSalesMigrationContainsLookupIndexes(t *testing.T) {
	content := readMigration(t, "create_sales")

	for _, sub := range []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_sales_order_id",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_sales_gateway_order_id",
		"payment_status payment_status NOT NULL DEFAULT 'pending'",
		"order_status order_status NOT NULL DEFAULT 'created'",
		"CREATE TABLE IF NOT EXISTS payment_webhook_events",
	} {
		assert.Contains(t, content, sub)
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC)

	path, err := migrate.CreateSQLMigration(dir, "Add Coupon Codes!", now)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "20260402093000_add_coupon_codes.sql"), path)
	require.NoError(t, migrate.ValidateDir(dir))

	_, err = migrate.CreateSQLMigration(dir, "!!!", now)
	assert.Error(t, err)
}

func TestCreateSQLMigrationFoldsAccents(t *testing.T) {
	path, err := migrate.CreateSQLMigration(t.TempDir(), "Café Menü", time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_cafe_menu.sql"), path)
}

func TestCreateSQLMigrationOrdersAfterLatest(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260501000000_future.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	path, err := migrate.CreateSQLMigration(dir, "late clock", time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "20260501000001_late_clock.sql", filepath.Base(path))

	again, err := migrate.CreateSQLMigration(dir, "late clock", time.Date(2026, 4, 2, 9, 30, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "20260501000002_late_clock.sql", filepath.Base(again))
	require.NoError(t, migrate.ValidateDir(dir))
}

func TestCreateSQLMigrationRequiresExistingDir(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	_, err := migrate.CreateSQLMigration(missing, "add things", time.Now())
	require.Error(t, err)
	_, statErr := os.Stat(missing)
	assert.True(t, os.IsNotExist(statErr))
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "1_bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	assert.Error(t, migrate.ValidateDir(dir))

	assert.Error(t, migrate.ValidateDir(t.TempDir()))
}
