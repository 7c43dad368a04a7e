package audit

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/lucaramirezo/products-ga/pkg/db/models"
)

func setupAuditTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:audit_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.Exec(`
CREATE TABLE IF NOT EXISTS audit_log (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  entity TEXT NOT NULL,
  entity_id TEXT NOT NULL,
  field TEXT NOT NULL,
  before TEXT,
  after TEXT,
  actor TEXT NOT NULL,
  at DATETIME NOT NULL
);`).Error)
	return db
}

type tierSnapshot struct {
	ID         int16   `json:"id"`
	Multiplier float64 `json:"multiplier"`
	LayerCount int     `json:"layer_count"`
}

func TestRecordChanges_OnlyChangedFields(t *testing.T) {
	db := setupAuditTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	before := tierSnapshot{ID: 2, Multiplier: 3.5, LayerCount: 2}
	after := tierSnapshot{ID: 2, Multiplier: 4.0, LayerCount: 2}

	require.NoError(t, svc.RecordChanges(ctx, nil, "tier", "2", "ops", before, after))

	records, err := svc.ListByEntity(ctx, "tier", "2", 10)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "multiplier", records[0].Field)
	assert.Equal(t, "ops", records[0].Actor)
	assert.JSONEq(t, "3.5", string(records[0].Before))
	assert.JSONEq(t, "4", string(records[0].After))
}

func TestRecordChanges_CreationHasNoBefore(t *testing.T) {
	db := setupAuditTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	ctx := context.Background()

	after := tierSnapshot{ID: 5, Multiplier: 6.0, LayerCount: 4}
	require.NoError(t, svc.RecordChanges(ctx, nil, "tier", "5", "", nil, after))

	records, err := svc.ListByEntity(ctx, "tier", "5", 10)
	require.NoError(t, err)
	require.Len(t, records, 3)
	for _, record := range records {
		assert.Nil(t, record.Before)
		assert.NotNil(t, record.After)
		assert.Equal(t, DefaultActor, record.Actor)
	}
}

func TestRecordChanges_NoChangesWritesNothing(t *testing.T) {
	db := setupAuditTestDB(t)
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)

	snap := tierSnapshot{ID: 1, Multiplier: 2.0, LayerCount: 1}
	require.NoError(t, svc.RecordChanges(context.Background(), nil, "tier", "1", "ops", snap, snap))

	var count int64
	require.NoError(t, db.Model(&models.AuditRecord{}).Count(&count).Error)
	assert.Zero(t, count)
}
