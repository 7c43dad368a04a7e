package importer

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lucaramirezo/products-ga/internal/pricebook"
	"github.com/lucaramirezo/products-ga/internal/purchases"
	"github.com/lucaramirezo/products-ga/internal/suppliers"
	"github.com/lucaramirezo/products-ga/pkg/db/models"
	"github.com/lucaramirezo/products-ga/pkg/enums"
	"github.com/lucaramirezo/products-ga/pkg/metrics"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupImporterTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:importer_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS suppliers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  contact_email TEXT,
  contact_phone TEXT,
  address TEXT,
  notes TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  deleted_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS products (
  sku TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  supplier_id TEXT,
  cost_per_area REAL NOT NULL,
  area REAL NOT NULL DEFAULT 1,
  active_tier INTEGER NOT NULL,
  override_multiplier REAL,
  override_layer_count INTEGER,
  ink_enabled INTEGER NOT NULL DEFAULT 1,
  lam_enabled INTEGER NOT NULL DEFAULT 0,
  cut_enabled INTEGER NOT NULL DEFAULT 0,
  sell_mode TEXT NOT NULL DEFAULT 'AREA',
  sheets_count INTEGER,
  status TEXT NOT NULL DEFAULT 'active',
  deleted_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS purchases (
  id TEXT PRIMARY KEY,
  invoice_no TEXT NOT NULL,
  supplier_id TEXT NOT NULL,
  date DATETIME NOT NULL,
  currency TEXT NOT NULL,
  subtotal REAL NOT NULL DEFAULT 0,
  tax REAL NOT NULL DEFAULT 0,
  shipping REAL NOT NULL DEFAULT 0,
  notes TEXT,
  attachments TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  deleted_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS purchase_items (
  id TEXT PRIMARY KEY,
  purchase_id TEXT NOT NULL,
  product_sku TEXT,
  description TEXT NOT NULL,
  unit_type TEXT NOT NULL,
  units REAL NOT NULL,
  width REAL,
  height REAL,
  uom TEXT NOT NULL DEFAULT 'ft',
  unit_cost REAL NOT NULL,
  area_per_unit REAL,
  area_total REAL,
  total_cost REAL,
  cost_per_area REAL,
  generate_price INTEGER NOT NULL DEFAULT 0,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`, `
CREATE TABLE IF NOT EXISTS price_entries (
  id TEXT PRIMARY KEY,
  product_sku TEXT NOT NULL,
  supplier_id TEXT,
  source_item_id TEXT,
  effective_date DATETIME NOT NULL,
  cost_per_area REAL NOT NULL,
  currency TEXT NOT NULL,
  pinned INTEGER NOT NULL DEFAULT 0,
  notes TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  deleted_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newImporterService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	supplierSvc, err := suppliers.NewService(suppliers.NewRepository(db))
	require.NoError(t, err)
	purchaseSvc, err := purchases.NewService(purchases.NewRepository(db), pricebook.NewRepository(db), testTxRunner{db: db})
	require.NoError(t, err)
	svc, err := NewService(supplierSvc, purchaseSvc, nil)
	require.NoError(t, err)
	return svc
}

func seedImportSupplier(t *testing.T, db *gorm.DB, name string) uuid.UUID {
	t.Helper()
	supplier := &models.Supplier{
		ID:     uuid.New(),
		Name:   name,
		Status: enums.LifecycleActive,
	}
	require.NoError(t, db.Create(supplier).Error)
	return supplier.ID
}

func seedImportProduct(t *testing.T, db *gorm.DB, sku string) {
	t.Helper()
	product := &models.Product{
		SKU:         sku,
		Name:        "Import Target " + sku,
		Category:    "vinyl",
		CostPerArea: 2.0,
		Area:        1,
		ActiveTier:  2,
		InkEnabled:  true,
		SellMode:    enums.SellModeArea,
		Status:      enums.LifecycleActive,
	}
	require.NoError(t, db.Create(product).Error)
}

func strPtr(s string) *string { return &s }

func fPtr(f float64) *float64 { return &f }

func sheetRow(n int, supplier, invoice string) Row {
	return Row{
		RowNumber:     n,
		SupplierName:  supplier,
		InvoiceNo:     invoice,
		Date:          "2026-08-01",
		Currency:      "EUR",
		SKU:           strPtr("IMP-001"),
		Description:   "Adhesive vinyl 24x36",
		UnitType:      "sheet",
		Units:         10,
		Width:         fPtr(24),
		Height:        fPtr(36),
		UOM:           "in",
		UnitCost:      5.50,
		GeneratePrice: true,
	}
}

func TestImportDryRunCountsWithoutWriting(t *testing.T) {
	db := setupImporterTestDB(t)
	seedImportSupplier(t, db, "Vinyl Depot")
	seedImportProduct(t, db, "IMP-001")
	svc := newImporterService(t, db)

	rows := []Row{
		sheetRow(1, "Vinyl Depot", "INV-100"),
		{
			RowNumber:    2,
			SupplierName: "Vinyl Depot",
			InvoiceNo:    "INV-100",
			Date:         "2026-08-01",
			Currency:     "EUR",
			Description:  "Banner roll 54in",
			UnitType:     "roll",
			Units:        2,
			UnitCost:     80,
		},
	}

	result, err := svc.Import(context.Background(), rows, false)
	require.NoError(t, err)

	assert.True(t, result.DryRun)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.Purchases)
	assert.Equal(t, 2, result.Items)
	assert.Equal(t, 1, result.Entries)

	var count int64
	require.NoError(t, db.Model(&models.Purchase{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestImportCommitGroupsBySupplierAndInvoice(t *testing.T) {
	db := setupImporterTestDB(t)
	seedImportSupplier(t, db, "Vinyl Depot")
	seedImportSupplier(t, db, "Ink Works")
	seedImportProduct(t, db, "IMP-001")
	svc := newImporterService(t, db)

	rows := []Row{
		sheetRow(1, "Vinyl Depot", "INV-100"),
		sheetRow(2, "Vinyl Depot", "INV-100"),
		{
			RowNumber:    3,
			SupplierName: "Ink Works",
			InvoiceNo:    "INV-7",
			Date:         "2026-08-02",
			Currency:     "EUR",
			Description:  "Solvent ink",
			UnitType:     "flat_area",
			Units:        4,
			UnitCost:     12,
		},
	}

	result, err := svc.Import(context.Background(), rows, true)
	require.NoError(t, err)

	assert.False(t, result.DryRun)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 2, result.Purchases)
	assert.Equal(t, 3, result.Items)
	assert.Equal(t, 2, result.Entries)

	var headers []models.Purchase
	require.NoError(t, db.Order("invoice_no").Find(&headers).Error)
	require.Len(t, headers, 2)
	assert.Equal(t, "INV-100", headers[0].InvoiceNo)
	assert.InDelta(t, 110.0, headers[0].Subtotal, 1e-9)
	assert.Equal(t, "INV-7", headers[1].InvoiceNo)
	assert.InDelta(t, 48.0, headers[1].Subtotal, 1e-9)

	var entries int64
	require.NoError(t, db.Model(&models.PriceEntry{}).Count(&entries).Error)
	assert.EqualValues(t, 2, entries)
}

func TestImportReportsRowErrorsAndWritesNothing(t *testing.T) {
	db := setupImporterTestDB(t)
	seedImportSupplier(t, db, "Vinyl Depot")
	seedImportProduct(t, db, "IMP-001")
	svc := newImporterService(t, db)

	bad := sheetRow(2, "Vinyl Depot", "INV-100")
	bad.Width = nil
	bad.UnitType = "brick"
	rows := []Row{
		sheetRow(1, "Vinyl Depot", "INV-100"),
		bad,
		{
			RowNumber:    3,
			SupplierName: "Nobody Inc",
			InvoiceNo:    "",
			Date:         "not-a-date",
			Currency:     "EUR",
			UnitType:     "roll",
			Units:        0,
			UnitCost:     -1,
		},
	}

	result, err := svc.Import(context.Background(), rows, true)
	require.NoError(t, err)

	require.NotEmpty(t, result.Errors)
	fieldsByRow := map[int][]string{}
	for _, rowErr := range result.Errors {
		fieldsByRow[rowErr.Row] = append(fieldsByRow[rowErr.Row], rowErr.Field)
	}
	assert.NotContains(t, fieldsByRow, 1)
	assert.Contains(t, fieldsByRow[2], "unit_type")
	assert.Contains(t, fieldsByRow[3], "supplier_name")
	assert.Contains(t, fieldsByRow[3], "invoice_no")
	assert.Contains(t, fieldsByRow[3], "date")
	assert.Contains(t, fieldsByRow[3], "units")
	assert.Contains(t, fieldsByRow[3], "unit_cost")

	var count int64
	require.NoError(t, db.Model(&models.Purchase{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestImportRequiresSKUForPriceRows(t *testing.T) {
	db := setupImporterTestDB(t)
	seedImportSupplier(t, db, "Vinyl Depot")
	svc := newImporterService(t, db)

	row := sheetRow(1, "Vinyl Depot", "INV-100")
	row.SKU = nil

	result, err := svc.Import(context.Background(), []Row{row}, false)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "sku", result.Errors[0].Field)
}

func TestImportEmptyInput(t *testing.T) {
	db := setupImporterTestDB(t)
	svc := newImporterService(t, db)

	result, err := svc.Import(context.Background(), nil, true)
	require.NoError(t, err)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "rows", result.Errors[0].Field)
}

func TestImportRecordsJobMetrics(t *testing.T) {
	db := setupImporterTestDB(t)
	seedImportSupplier(t, db, "Vinyl Depot")
	seedImportProduct(t, db, "IMP-001")

	supplierSvc, err := suppliers.NewService(suppliers.NewRepository(db))
	require.NoError(t, err)
	purchaseSvc, err := purchases.NewService(purchases.NewRepository(db), pricebook.NewRepository(db), testTxRunner{db: db})
	require.NoError(t, err)

	reg := prometheus.NewRegistry()
	svc, err := NewService(supplierSvc, purchaseSvc, metrics.NewJobMetrics(reg))
	require.NoError(t, err)

	_, err = svc.Import(context.Background(), []Row{sheetRow(1, "Vinyl Depot", "INV-100")}, false)
	require.NoError(t, err)
	_, err = svc.Import(context.Background(), nil, false)
	require.NoError(t, err)

	families, err := reg.Gather()
	require.NoError(t, err)

	values := map[string]float64{}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			if counter := metric.GetCounter(); counter != nil {
				values[family.GetName()] += counter.GetValue()
			}
		}
	}
	assert.InDelta(t, 1, values["job_success"], 1e-9)
	assert.InDelta(t, 1, values["job_failure"], 1e-9)
}
