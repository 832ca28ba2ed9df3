package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/eliteacai/pdv-backend/pkg/migrate"
)

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestStoreTableSetsMigrationCoversBothStores(t *testing.T) {
	content := readMigration(t, "*_create_store_table_sets.sql")

	for _, prefix := range []string{"store1_", "store2_"} {
		checks := []string{
			"CREATE TABLE IF NOT EXISTS " + prefix + "tables",
			"CREATE TABLE IF NOT EXISTS " + prefix + "table_sales",
			"CREATE TABLE IF NOT EXISTS " + prefix + "table_sale_items",
			"CREATE UNIQUE INDEX IF NOT EXISTS " + prefix + "table_sales_one_open_per_table",
			"FOREIGN KEY (sale_id) REFERENCES " + prefix + "table_sales(id) ON DELETE CASCADE",
			"DROP TABLE IF EXISTS " + prefix + "tables",
		}
		for _, sub := range checks {
			if !strings.Contains(content, sub) {
				t.Errorf("missing expected statement %q", sub)
			}
		}
	}
}

func TestCashRegisterMigrationAllowsOneOpenRegister(t *testing.T) {
	content := readMigration(t, "*_create_cash_registers.sql")

	checks := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS cash_registers_one_open_per_store",
		"WHERE status = 'open'",
		"CHECK (type IN ('income', 'expense', 'withdrawal', 'deposit'))",
		"DROP TABLE IF EXISTS cash_entries",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func readMigration(t *testing.T, pattern string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", pattern))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no migration file matches %s", pattern)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
