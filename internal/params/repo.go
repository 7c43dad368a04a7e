package params

import (
	"context"

	"gorm.io/gorm"

	"github.com/lucaramirezo/products-ga/pkg/db/models"
)

// singletonID pins every read and write to the same row.
const singletonID = int16(1)

// Repository manages the global pricing parameters row.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context) (*models.PriceParams, error)
	Save(ctx context.Context, params *models.PriceParams) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a params repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context) (*models.PriceParams, error) {
	var params models.PriceParams
	if err := r.db.WithContext(ctx).Where("id = ?", singletonID).First(&params).Error; err != nil {
		return nil, err
	}
	return &params, nil
}

func (r *repository) Save(ctx context.Context, params *models.PriceParams) error {
	params.ID = singletonID
	return r.db.WithContext(ctx).Save(params).Error
}
