package suppliers

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/lucaramirezo/products-ga/pkg/errors"
)

func setupSupplierTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := "file:suppliers_" + uuid.NewString() + "?mode=memory&cache=shared"
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.Exec(`
CREATE TABLE IF NOT EXISTS suppliers (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  contact_email TEXT,
  contact_phone TEXT,
  address TEXT,
  notes TEXT,
  status TEXT NOT NULL DEFAULT 'active',
  deleted_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`).Error)
	return db
}

func newSupplierService(t *testing.T, db *gorm.DB) Service {
	t.Helper()
	svc, err := NewService(NewRepository(db))
	require.NoError(t, err)
	return svc
}

func strPtr(s string) *string { return &s }

func TestCreateRequiresName(t *testing.T) {
	svc := newSupplierService(t, setupSupplierTestDB(t))

	_, err := svc.Create(context.Background(), CreateInput{Name: "   "})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Contains(t, details, "name")
}

func TestCreateRejectsDuplicateName(t *testing.T) {
	svc := newSupplierService(t, setupSupplierTestDB(t))

	_, err := svc.Create(context.Background(), CreateInput{Name: "Acme Vinyl"})
	require.NoError(t, err)

	_, err = svc.Create(context.Background(), CreateInput{Name: "Acme Vinyl"})
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeConflict, pkgerrors.As(err).Code())
}

func TestGetByNameTrimsInput(t *testing.T) {
	svc := newSupplierService(t, setupSupplierTestDB(t))

	created, err := svc.Create(context.Background(), CreateInput{
		Name:         "Acme Vinyl",
		ContactEmail: strPtr("sales@acmevinyl.test"),
	})
	require.NoError(t, err)

	found, err := svc.GetByName(context.Background(), "  Acme Vinyl  ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)
	require.NotNil(t, found.ContactEmail)
	assert.Equal(t, "sales@acmevinyl.test", *found.ContactEmail)
}

func TestUpdatePatchesOnlyProvidedFields(t *testing.T) {
	svc := newSupplierService(t, setupSupplierTestDB(t))

	created, err := svc.Create(context.Background(), CreateInput{
		Name:  "Acme Vinyl",
		Notes: strPtr("net 30"),
	})
	require.NoError(t, err)

	updated, err := svc.Update(context.Background(), created.ID, UpdateInput{
		ContactPhone: strPtr("+1 555 0100"),
	})
	require.NoError(t, err)
	assert.Equal(t, "Acme Vinyl", updated.Name)
	require.NotNil(t, updated.Notes)
	assert.Equal(t, "net 30", *updated.Notes)
	require.NotNil(t, updated.ContactPhone)
	assert.Equal(t, "+1 555 0100", *updated.ContactPhone)
}

func TestSoftDeleteHidesSupplier(t *testing.T) {
	svc := newSupplierService(t, setupSupplierTestDB(t))

	created, err := svc.Create(context.Background(), CreateInput{Name: "Acme Vinyl"})
	require.NoError(t, err)
	require.NoError(t, svc.SoftDelete(context.Background(), created.ID))

	_, err = svc.Get(context.Background(), created.ID)
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	_, err = svc.GetByName(context.Background(), "Acme Vinyl")
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())

	listed, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestGetUnknownSupplierIsNotFound(t *testing.T) {
	svc := newSupplierService(t, setupSupplierTestDB(t))

	_, err := svc.Get(context.Background(), uuid.New())
	require.Error(t, err)
	assert.Equal(t, pkgerrors.CodeNotFound, pkgerrors.As(err).Code())
}
