package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/merthanaya/pos-backend/pkg/migrate"
)

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no migration matching %s", pattern)
	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	return string(data)
}

func TestMigrationsContainExpectedSchema(t *testing.T) {
	tests := []struct {
		pattern string
		checks  []string
	}{
		{
			pattern: "*_create_products_table.sql",
			checks: []string{
				"CREATE TABLE IF NOT EXISTS products",
				"CHECK (price >= 0)",
				"CHECK (stock >= 0)",
				"CHECK (unit_type IN ('item', 'weight'))",
				"CREATE UNIQUE INDEX IF NOT EXISTS idx_products_barcode ON products (barcode) WHERE barcode IS NOT NULL",
				"CREATE INDEX IF NOT EXISTS idx_products_owner_id",
				"DROP TABLE IF EXISTS products",
			},
		},
		{
			pattern: "*_create_orders_tables.sql",
			checks: []string{
				"CREATE TABLE IF NOT EXISTS daily_counters",
				"date date PRIMARY KEY",
				"CHECK (status IN ('PENDING', 'PAID', 'CANCELLED'))",
				"FOREIGN KEY (order_id) REFERENCES orders(id) ON DELETE CASCADE",
				"CHECK (quantity > 0)",
				"idx_orders_status_created_at",
				"idx_orders_status_updated_at",
				"idx_orders_runner_id",
				"DROP TABLE IF EXISTS daily_counters",
			},
		},
		{
			pattern: "*_create_stock_history_table.sql",
			checks:  []string{"CREATE TABLE IF NOT EXISTS stock_history", "(product_id, created_at DESC)"},
		},
		{
			pattern: "*_create_stores_table.sql",
			checks:  []string{"CREATE TABLE IF NOT EXISTS stores", "CREATE UNIQUE INDEX IF NOT EXISTS idx_stores_owner_id"},
		},
		{
			pattern: "*_create_users_table.sql",
			checks:  []string{"CREATE TABLE IF NOT EXISTS users", "CHECK (role IN ('admin', 'staff'))", "idx_users_email"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.pattern, func(t *testing.T) {
			content := readMigration(t, tt.pattern)
			for _, sub := range tt.checks {
				if !strings.Contains(content, sub) {
					t.Errorf("missing expected statement %q", sub)
				}
			}
		})
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	require.NoError(t, migrate.ValidateDir("migrations"))
}

func TestValidateDirRejectsBadFilenames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "create_things.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	require.Error(t, migrate.ValidateDir(dir))
}

func TestCreateSQLMigrationSanitizesName(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Receipt Footer!")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_receipt_footer.sql"), path)
	require.NoError(t, migrate.ValidateDir(dir))
}

func TestAutoMigrateModelsBuildsSQLiteSchema(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, migrate.AutoMigrateModels(conn))

	for _, table := range []string{"users", "products", "orders", "order_items", "daily_counters", "stock_history", "stores"} {
		require.True(t, conn.Migrator().HasTable(table), "missing table %s", table)
	}
}
