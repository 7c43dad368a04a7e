package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/lucaramirezo/products-ga/pkg/enums"
)

// Purchase is one recorded supplier invoice with its line items.
type Purchase struct {
	ID          uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	InvoiceNo   string          `gorm:"column:invoice_no;not null;index"`
	SupplierID  uuid.UUID       `gorm:"column:supplier_id;type:uuid;not null;index"`
	Date        time.Time       `gorm:"column:date;not null;index"`
	Currency    string          `gorm:"column:currency;not null"`
	Subtotal    float64         `gorm:"column:subtotal;type:numeric(12,2);not null;default:0"`
	Tax         float64         `gorm:"column:tax;type:numeric(12,2);not null;default:0"`
	Shipping    float64         `gorm:"column:shipping;type:numeric(12,2);not null;default:0"`
	Notes       *string         `gorm:"column:notes"`
	Attachments pq.StringArray  `gorm:"column:attachments;type:text[]"`
	Items       []PurchaseItem  `gorm:"foreignKey:PurchaseID;constraint:OnDelete:CASCADE"`
	Status      enums.Lifecycle `gorm:"column:status;not null;default:active;index"`
	DeletedAt   *time.Time      `gorm:"column:deleted_at"`
	CreatedAt   time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
