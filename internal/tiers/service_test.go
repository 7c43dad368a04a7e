package tiers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lucaramirezo/products-ga/internal/audit"
	"github.com/lucaramirezo/products-ga/pkg/db/models"
	pkgerrors "github.com/lucaramirezo/products-ga/pkg/errors"
)

type testTxRunner struct {
	db *gorm.DB
}

func (r testTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupTiersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:tiers_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	statements := []string{`
CREATE TABLE IF NOT EXISTS tiers (
  id INTEGER PRIMARY KEY,
  multiplier REAL NOT NULL,
  layer_count INTEGER NOT NULL
);`, `
CREATE TABLE IF NOT EXISTS audit_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  entity TEXT NOT NULL,
  entity_id TEXT NOT NULL,
  field TEXT NOT NULL,
  before TEXT,
  after TEXT,
  actor TEXT NOT NULL,
  at DATETIME
);`, `
INSERT INTO tiers (id, multiplier, layer_count) VALUES
  (1, 2.0, 1), (2, 3.5, 2), (3, 5.0, 3), (4, 7.0, 4), (5, 10.0, 5);`}
	for _, stmt := range statements {
		require.NoError(t, db.Exec(stmt).Error)
	}
	return db
}

func newTiersService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	auditSvc, err := audit.NewService(audit.NewRepository(db))
	require.NoError(t, err)
	svc, err := NewService(NewRepository(db), auditSvc, testTxRunner{db: db})
	require.NoError(t, err)
	return svc
}

func floatPtr(f float64) *float64 { return &f }
func intPtr(v int) *int           { return &v }

func TestListReturnsAllFiveTiers(t *testing.T) {
	svc := newTiersService(t, setupTiersTestDB(t))

	tiers, err := svc.List(context.Background())
	require.NoError(t, err)
	require.Len(t, tiers, 5)
	assert.EqualValues(t, 1, tiers[0].ID)
	assert.InDelta(t, 2.0, tiers[0].Multiplier, 1e-9)
	assert.InDelta(t, 10.0, tiers[4].Multiplier, 1e-9)
}

func TestGetUnknownTierIsNotFound(t *testing.T) {
	db := setupTiersTestDB(t)
	require.NoError(t, db.Exec("DELETE FROM tiers WHERE id = 4").Error)
	svc := newTiersService(t, db)

	_, err := svc.Get(context.Background(), 4)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}

func TestUpdateRejectsIDOutsideRange(t *testing.T) {
	svc := newTiersService(t, setupTiersTestDB(t))

	_, err := svc.Update(context.Background(), 6, UpdateInput{Multiplier: floatPtr(4.0), Actor: "admin"})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "id")
}

func TestUpdateValidatesFields(t *testing.T) {
	svc := newTiersService(t, setupTiersTestDB(t))

	_, err := svc.Update(context.Background(), 2, UpdateInput{
		Multiplier: floatPtr(0),
		LayerCount: intPtr(-1),
		Actor:      "admin",
	})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "multiplier")
	assert.Contains(t, details, "layer_count")
}

func TestUpdateRetunesTierAndAudits(t *testing.T) {
	db := setupTiersTestDB(t)
	svc := newTiersService(t, db)

	updated, err := svc.Update(context.Background(), 3, UpdateInput{
		Multiplier: floatPtr(5.5),
		Actor:      "ops",
	})
	require.NoError(t, err)
	assert.InDelta(t, 5.5, updated.Multiplier, 1e-9)

	var records []models.AuditRecord
	require.NoError(t, db.Where("entity = ? AND entity_id = ?", "tier", "3").Find(&records).Error)
	require.Len(t, records, 1)
	assert.Equal(t, "Multiplier", records[0].Field)
	assert.Equal(t, "ops", records[0].Actor)
}
