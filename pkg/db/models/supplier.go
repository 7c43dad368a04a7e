package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/lucaramirezo/products-ga/pkg/enums"
)

// Supplier is a material vendor referenced by products, purchases and
// price entries.
type Supplier struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	Name         string          `gorm:"column:name;not null;uniqueIndex"`
	ContactEmail *string         `gorm:"column:contact_email"`
	ContactPhone *string         `gorm:"column:contact_phone"`
	Address      *string         `gorm:"column:address"`
	Notes        *string         `gorm:"column:notes"`
	Status       enums.Lifecycle `gorm:"column:status;not null;default:active;index"`
	DeletedAt    *time.Time      `gorm:"column:deleted_at"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
