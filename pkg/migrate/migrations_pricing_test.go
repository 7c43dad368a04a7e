package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lucaramirezo/products-ga/pkg/migrate"
)

func TestMigrationDirValidates(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("migration dir invalid: %v", err)
	}
}

func TestCatalogMigrationSeedsDefaults(t *testing.T) {
	content := readMigration(t, "*_create_pricing_catalog.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS tiers",
		"CREATE TABLE IF NOT EXISTS category_rules",
		"CREATE TABLE IF NOT EXISTS price_params",
		"INSERT INTO tiers",
		"INSERT INTO price_params",
		"(5, 10.0, 5)",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPriceEntriesMigrationEnforcesSinglePin(t *testing.T) {
	content := readMigration(t, "*_create_price_entries.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS price_entries",
		"idx_price_entries_single_pin",
		"WHERE pinned AND status = 'active'",
		"idx_price_entries_resolve",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestPurchasesMigrationCreatesBothTables(t *testing.T) {
	content := readMigration(t, "*_create_purchases.sql")

	checks := []string{
		"CREATE TABLE IF NOT EXISTS purchases",
		"CREATE TABLE IF NOT EXISTS purchase_items",
		"ON DELETE CASCADE",
		"idx_purchases_cursor",
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
		t.Fatalf("no migration matching %q found", pattern)
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}
