package purchases

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lucaramirezo/products-ga/internal/pricebook"
	"github.com/lucaramirezo/products-ga/pkg/db/models"
	"github.com/lucaramirezo/products-ga/pkg/enums"
	pkgerrors "github.com/lucaramirezo/products-ga/pkg/errors"
	"github.com/lucaramirezo/products-ga/pkg/pagination"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupPurchasesTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:purchases_" + uuid.NewString() + "?mode=memory&cache=shared"
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

func newPurchasesService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db), pricebook.NewRepository(db), testTxRunner{db: db})
	require.NoError(t, err)
	return svc
}

func seedSupplier(t *testing.T, db *gorm.DB) uuid.UUID {
	t.Helper()
	supplier := &models.Supplier{
		ID:     uuid.New(),
		Name:   "Vinyl Depot " + uuid.NewString()[:8],
		Status: enums.LifecycleActive,
	}
	require.NoError(t, db.Create(supplier).Error)
	return supplier.ID
}

func seedLinkedProduct(t *testing.T, db *gorm.DB, sku string) {
	t.Helper()
	product := &models.Product{
		SKU:         sku,
		Name:        "Test " + sku,
		Category:    "banners",
		CostPerArea: 1,
		Area:        1,
		ActiveTier:  1,
		SellMode:    enums.SellModeArea,
		Status:      enums.LifecycleActive,
	}
	require.NoError(t, db.Create(product).Error)
}

func strPtr(v string) *string { return &v }

func TestCreate_SheetLineGeneratesPriceEntry(t *testing.T) {
	db := setupPurchasesTestDB(t)
	svc := newPurchasesService(t, db)
	ctx := context.Background()

	supplierID := seedSupplier(t, db)
	seedLinkedProduct(t, db, "BAN-001")

	date := time.Now().AddDate(0, 0, -2)
	result, err := svc.Create(ctx, CreateInput{
		InvoiceNo:  "INV-1001",
		SupplierID: supplierID,
		Date:       date,
		Currency:   "eur",
		Subtotal:   55,
		Items: []CreateItemInput{
			{
				ProductSKU:    strPtr("BAN-001"),
				Description:   "13oz banner sheets",
				UnitType:      enums.UnitTypeSheet,
				Units:         10,
				Width:         floatPtr(24),
				Height:        floatPtr(36),
				UOM:           enums.UOMInches,
				UnitCost:      5.50,
				GeneratePrice: true,
			},
		},
	})
	require.NoError(t, err)
	require.Len(t, result.Purchase.Items, 1)
	require.Len(t, result.Entries, 1)

	item := result.Purchase.Items[0]
	require.NotNil(t, item.AreaPerUnit)
	assert.InDelta(t, 6.0, *item.AreaPerUnit, 1e-9)
	assert.InDelta(t, 60.0, *item.AreaTotal, 1e-9)
	assert.InDelta(t, 55.0, *item.TotalCost, 1e-9)
	assert.InDelta(t, 55.0/60.0, *item.CostPerArea, 1e-9)

	entry := result.Entries[0]
	assert.Equal(t, "BAN-001", entry.ProductSKU)
	assert.Equal(t, "EUR", entry.Currency)
	assert.False(t, entry.Pinned)
	assert.InDelta(t, 55.0/60.0, entry.CostPerArea, 1e-9)
	require.NotNil(t, entry.SourceItemID)
	assert.Equal(t, item.ID, *entry.SourceItemID)
	assert.True(t, entry.EffectiveDate.Equal(date))
}

func TestCreate_RollLineKeepsAreaUndetermined(t *testing.T) {
	db := setupPurchasesTestDB(t)
	svc := newPurchasesService(t, db)
	ctx := context.Background()

	supplierID := seedSupplier(t, db)
	seedLinkedProduct(t, db, "VIN-002")

	result, err := svc.Create(ctx, CreateInput{
		InvoiceNo:  "INV-1002",
		SupplierID: supplierID,
		Date:       time.Now().AddDate(0, 0, -1),
		Currency:   "EUR",
		Items: []CreateItemInput{
			{
				ProductSKU:    strPtr("VIN-002"),
				Description:   "vinyl roll",
				UnitType:      enums.UnitTypeRoll,
				Units:         2,
				UOM:           enums.UOMFeet,
				UnitCost:      120,
				GeneratePrice: true,
			},
		},
	})
	require.NoError(t, err)

	item := result.Purchase.Items[0]
	assert.Nil(t, item.AreaPerUnit)
	assert.Nil(t, item.AreaTotal)
	assert.Nil(t, item.CostPerArea)
	require.NotNil(t, item.TotalCost)
	assert.InDelta(t, 240.0, *item.TotalCost, 1e-9)

	// flagged but underivable: no entry may appear
	assert.Empty(t, result.Entries)
	var count int64
	require.NoError(t, db.Model(&models.PriceEntry{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreate_UnflaggedOrUnlinkedLinesCreateNoEntries(t *testing.T) {
	db := setupPurchasesTestDB(t)
	svc := newPurchasesService(t, db)
	ctx := context.Background()

	supplierID := seedSupplier(t, db)
	seedLinkedProduct(t, db, "BAN-001")

	result, err := svc.Create(ctx, CreateInput{
		InvoiceNo:  "INV-1003",
		SupplierID: supplierID,
		Date:       time.Now().AddDate(0, 0, -1),
		Currency:   "EUR",
		Items: []CreateItemInput{
			{
				ProductSKU:  strPtr("BAN-001"),
				Description: "linked but not flagged",
				UnitType:    enums.UnitTypeFlatArea,
				Units:       25,
				UOM:         enums.UOMFeet,
				UnitCost:    2,
			},
			{
				Description:   "flagged but not linked",
				UnitType:      enums.UnitTypeFlatArea,
				Units:         10,
				UOM:           enums.UOMFeet,
				UnitCost:      1,
				GeneratePrice: true,
			},
		},
	})
	require.NoError(t, err)
	assert.Empty(t, result.Entries)
}

func TestCreate_HeaderValidation(t *testing.T) {
	db := setupPurchasesTestDB(t)
	svc := newPurchasesService(t, db)
	ctx := context.Background()
	supplierID := seedSupplier(t, db)

	valid := CreateInput{
		InvoiceNo:  "INV-1",
		SupplierID: supplierID,
		Date:       time.Now().AddDate(0, 0, -1),
		Currency:   "EUR",
		Items: []CreateItemInput{
			{Description: "area", UnitType: enums.UnitTypeFlatArea, Units: 1, UOM: enums.UOMFeet, UnitCost: 1},
		},
	}

	cases := []struct {
		name   string
		mutate func(*CreateInput)
		field  string
	}{
		{name: "missing invoice", mutate: func(in *CreateInput) { in.InvoiceNo = "  " }, field: "invoice_no"},
		{name: "future date", mutate: func(in *CreateInput) { in.Date = time.Now().AddDate(0, 0, 3) }, field: "date"},
		{name: "negative subtotal", mutate: func(in *CreateInput) { in.Subtotal = -1 }, field: "subtotal"},
		{name: "negative tax", mutate: func(in *CreateInput) { in.Tax = -0.5 }, field: "tax"},
		{name: "negative shipping", mutate: func(in *CreateInput) { in.Shipping = -2 }, field: "shipping"},
		{name: "no items", mutate: func(in *CreateInput) { in.Items = nil }, field: "items"},
		{name: "empty currency", mutate: func(in *CreateInput) { in.Currency = " " }, field: "currency"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			input := valid
			input.Items = append([]CreateItemInput(nil), valid.Items...)
			tc.mutate(&input)

			_, err := svc.Create(ctx, input)
			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
			details, ok := typed.Details().(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tc.field)
		})
	}

	var count int64
	require.NoError(t, db.Model(&models.Purchase{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestCreate_UnknownSupplierWritesNothing(t *testing.T) {
	db := setupPurchasesTestDB(t)
	svc := newPurchasesService(t, db)

	_, err := svc.Create(context.Background(), CreateInput{
		InvoiceNo:  "INV-9",
		SupplierID: uuid.New(),
		Date:       time.Now().AddDate(0, 0, -1),
		Currency:   "EUR",
		Items: []CreateItemInput{
			{Description: "area", UnitType: enums.UnitTypeFlatArea, Units: 1, UOM: enums.UOMFeet, UnitCost: 1},
		},
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestCreate_SheetWithoutDimensionsReportsItemIndex(t *testing.T) {
	db := setupPurchasesTestDB(t)
	svc := newPurchasesService(t, db)
	supplierID := seedSupplier(t, db)

	_, err := svc.Create(context.Background(), CreateInput{
		InvoiceNo:  "INV-7",
		SupplierID: supplierID,
		Date:       time.Now().AddDate(0, 0, -1),
		Currency:   "EUR",
		Items: []CreateItemInput{
			{Description: "ok", UnitType: enums.UnitTypeFlatArea, Units: 5, UOM: enums.UOMFeet, UnitCost: 1},
			{Description: "bad sheet", UnitType: enums.UnitTypeSheet, Units: 2, UOM: enums.UOMFeet, UnitCost: 3},
		},
	})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1, details["item_index"])

	var count int64
	require.NoError(t, db.Model(&models.Purchase{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestList_PaginatesWithCursor(t *testing.T) {
	db := setupPurchasesTestDB(t)
	svc := newPurchasesService(t, db)
	ctx := context.Background()
	supplierID := seedSupplier(t, db)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 5; i++ {
		purchase := &models.Purchase{
			ID:         uuid.New(),
			InvoiceNo:  "INV-SEQ",
			SupplierID: supplierID,
			Date:       time.Now().AddDate(0, 0, -1),
			Currency:   "EUR",
			Status:     enums.LifecycleActive,
			CreatedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(purchase).Error)
	}

	first, next, err := svc.List(ctx, ListFilter{SupplierID: &supplierID}, pagination.Params{Limit: 3})
	require.NoError(t, err)
	assert.Len(t, first, 3)
	require.NotEmpty(t, next)

	second, next2, err := svc.List(ctx, ListFilter{SupplierID: &supplierID}, pagination.Params{Limit: 3, Cursor: next})
	require.NoError(t, err)
	assert.Len(t, second, 2)
	assert.Empty(t, next2)
}

func TestSoftDelete_CascadesToItems(t *testing.T) {
	db := setupPurchasesTestDB(t)
	svc := newPurchasesService(t, db)
	ctx := context.Background()
	supplierID := seedSupplier(t, db)

	result, err := svc.Create(ctx, CreateInput{
		InvoiceNo:  "INV-DEL",
		SupplierID: supplierID,
		Date:       time.Now().AddDate(0, 0, -1),
		Currency:   "EUR",
		Items: []CreateItemInput{
			{Description: "area", UnitType: enums.UnitTypeFlatArea, Units: 4, UOM: enums.UOMFeet, UnitCost: 2},
		},
	})
	require.NoError(t, err)

	require.NoError(t, svc.SoftDelete(ctx, result.Purchase.ID))

	_, err = svc.Get(ctx, result.Purchase.ID)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())

	var item models.PurchaseItem
	require.NoError(t, db.First(&item, "purchase_id = ?", result.Purchase.ID).Error)
	assert.Equal(t, enums.LifecycleDeleted, item.Status)
}
