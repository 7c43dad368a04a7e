package purchases

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/lucaramirezo/products-ga/internal/pricebook"
	"github.com/lucaramirezo/products-ga/pkg/db/models"
	"github.com/lucaramirezo/products-ga/pkg/enums"
	pkgerrors "github.com/lucaramirezo/products-ga/pkg/errors"
	"github.com/lucaramirezo/products-ga/pkg/pagination"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes purchase recording and retrieval.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*CreateResult, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Purchase, error)
	GetByInvoice(ctx context.Context, supplierID uuid.UUID, invoiceNo string) (*models.Purchase, error)
	List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Purchase, string, error)
	Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Purchase, error)
	SoftDelete(ctx context.Context, id uuid.UUID) error
}

type service struct {
	repo    Repository
	entries pricebook.Repository
	tx      txRunner
}

// CreateItemInput is one raw purchase line before derivation.
type CreateItemInput struct {
	ProductSKU    *string        `json:"product_sku"`
	Description   string         `json:"description"`
	UnitType      enums.UnitType `json:"unit_type"`
	Units         float64        `json:"units"`
	Width         *float64       `json:"width"`
	Height        *float64       `json:"height"`
	UOM           enums.UOM      `json:"uom"`
	UnitCost      float64        `json:"unit_cost"`
	GeneratePrice bool           `json:"generate_price"`
}

// CreateInput is a full purchase header plus its lines.
type CreateInput struct {
	InvoiceNo   string            `json:"invoice_no"`
	SupplierID  uuid.UUID         `json:"supplier_id"`
	Date        time.Time         `json:"date"`
	Currency    string            `json:"currency"`
	Subtotal    float64           `json:"subtotal"`
	Tax         float64           `json:"tax"`
	Shipping    float64           `json:"shipping"`
	Notes       *string           `json:"notes"`
	Attachments []string          `json:"attachments"`
	Items       []CreateItemInput `json:"items"`
}

// UpdateInput patches the purchase header. Nil fields are left unchanged.
type UpdateInput struct {
	InvoiceNo   *string    `json:"invoice_no"`
	Date        *time.Time `json:"date"`
	Subtotal    *float64   `json:"subtotal"`
	Tax         *float64   `json:"tax"`
	Shipping    *float64   `json:"shipping"`
	Notes       *string    `json:"notes"`
	Attachments []string   `json:"attachments"`
}

// CreateResult reports what one purchase produced, including price book
// entries generated from flagged lines.
type CreateResult struct {
	Purchase *models.Purchase    `json:"purchase"`
	Entries  []models.PriceEntry `json:"entries"`
}

// NewService wires the purchases service.
func NewService(repo Repository, entries pricebook.Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("purchases repository required")
	}
	if entries == nil {
		return nil, fmt.Errorf("pricebook repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, entries: entries, tx: tx}, nil
}

// Create validates the whole purchase, derives every line, and writes the
// header, items and any generated price entries in one transaction. A line
// produces a price entry only when it is flagged, linked to a product, and
// its cost per area could be derived; those entries are never auto-pinned.
func (s *service) Create(ctx context.Context, input CreateInput) (*CreateResult, error) {
	if err := s.validateHeader(ctx, &input); err != nil {
		return nil, err
	}

	purchase := &models.Purchase{
		ID:          uuid.New(),
		InvoiceNo:   strings.TrimSpace(input.InvoiceNo),
		SupplierID:  input.SupplierID,
		Date:        input.Date,
		Currency:    input.Currency,
		Subtotal:    input.Subtotal,
		Tax:         input.Tax,
		Shipping:    input.Shipping,
		Notes:       input.Notes,
		Attachments: pq.StringArray(input.Attachments),
		Status:      enums.LifecycleActive,
	}

	items := make([]models.PurchaseItem, 0, len(input.Items))
	for idx, line := range input.Items {
		item, err := s.buildItem(ctx, purchase.ID, line)
		if err != nil {
			return nil, itemError(idx, err)
		}
		items = append(items, *item)
	}

	var created []models.PriceEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		entryRepo := s.entries.WithTx(tx)

		if err := repo.Create(ctx, purchase); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase")
		}
		if err := repo.CreateItems(ctx, items); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create purchase items")
		}

		for i := range items {
			item := &items[i]
			if !item.GeneratePrice || item.ProductSKU == nil || item.CostPerArea == nil {
				continue
			}
			entry := models.PriceEntry{
				ID:            uuid.New(),
				ProductSKU:    *item.ProductSKU,
				SupplierID:    &purchase.SupplierID,
				SourceItemID:  &item.ID,
				EffectiveDate: purchase.Date,
				CostPerArea:   *item.CostPerArea,
				Currency:      purchase.Currency,
				Status:        enums.LifecycleActive,
			}
			if err := entryRepo.Create(ctx, &entry); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create price entry")
			}
			created = append(created, entry)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	purchase.Items = items
	return &CreateResult{Purchase: purchase, Entries: created}, nil
}

func (s *service) Get(ctx context.Context, id uuid.UUID) (*models.Purchase, error) {
	purchase, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
	}
	return purchase, nil
}

func (s *service) GetByInvoice(ctx context.Context, supplierID uuid.UUID, invoiceNo string) (*models.Purchase, error) {
	purchase, err := s.repo.GetByInvoice(ctx, supplierID, strings.TrimSpace(invoiceNo))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "purchase not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load purchase")
	}
	return purchase, nil
}

// List returns one page and the cursor for the next, empty when exhausted.
func (s *service) List(ctx context.Context, filter ListFilter, params pagination.Params) ([]models.Purchase, string, error) {
	rows, err := s.repo.List(ctx, filter, params)
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list purchases")
	}

	limit := pagination.NormalizeLimit(params.Limit)
	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}

func (s *service) Update(ctx context.Context, id uuid.UUID, input UpdateInput) (*models.Purchase, error) {
	purchase, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	details := map[string]string{}
	if input.InvoiceNo != nil {
		trimmed := strings.TrimSpace(*input.InvoiceNo)
		if trimmed == "" {
			details["invoice_no"] = "is required"
		} else {
			purchase.InvoiceNo = trimmed
		}
	}
	if input.Date != nil {
		if input.Date.After(time.Now()) {
			details["date"] = "cannot be in the future"
		} else {
			purchase.Date = *input.Date
		}
	}
	if input.Subtotal != nil {
		if *input.Subtotal < 0 {
			details["subtotal"] = "must be zero or greater"
		} else {
			purchase.Subtotal = *input.Subtotal
		}
	}
	if input.Tax != nil {
		if *input.Tax < 0 {
			details["tax"] = "must be zero or greater"
		} else {
			purchase.Tax = *input.Tax
		}
	}
	if input.Shipping != nil {
		if *input.Shipping < 0 {
			details["shipping"] = "must be zero or greater"
		} else {
			purchase.Shipping = *input.Shipping
		}
	}
	if input.Notes != nil {
		purchase.Notes = input.Notes
	}
	if input.Attachments != nil {
		purchase.Attachments = pq.StringArray(input.Attachments)
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid purchase update").WithDetails(details)
	}

	if err := s.repo.Save(ctx, purchase); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update purchase")
	}
	return purchase, nil
}

func (s *service) SoftDelete(ctx context.Context, id uuid.UUID) error {
	purchase, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).SoftDelete(ctx, purchase); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete purchase")
		}
		return nil
	})
}

func (s *service) validateHeader(ctx context.Context, input *CreateInput) error {
	details := map[string]string{}
	if strings.TrimSpace(input.InvoiceNo) == "" {
		details["invoice_no"] = "is required"
	}
	if input.SupplierID == uuid.Nil {
		details["supplier_id"] = "is required"
	}
	if input.Date.IsZero() {
		details["date"] = "is required"
	} else if input.Date.After(time.Now()) {
		details["date"] = "cannot be in the future"
	}
	if input.Subtotal < 0 {
		details["subtotal"] = "must be zero or greater"
	}
	if input.Tax < 0 {
		details["tax"] = "must be zero or greater"
	}
	if input.Shipping < 0 {
		details["shipping"] = "must be zero or greater"
	}
	if len(input.Items) == 0 {
		details["items"] = "at least one item is required"
	}

	input.Currency = strings.ToUpper(strings.TrimSpace(input.Currency))
	if input.Currency == "" {
		details["currency"] = "is required"
	}

	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid purchase").WithDetails(details)
	}

	if input.SupplierID != uuid.Nil {
		if err := s.ensureSupplier(ctx, input.SupplierID); err != nil {
			return err
		}
	}
	return nil
}

func (s *service) ensureSupplier(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetActiveSupplier(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "supplier not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load supplier")
	}
	return nil
}

// buildItem validates one line, runs derivation, and maps the result onto
// the persisted item shape. Roll lines keep their area fields nil; total
// cost is still known.
func (s *service) buildItem(ctx context.Context, purchaseID uuid.UUID, line CreateItemInput) (*models.PurchaseItem, error) {
	if !line.UnitType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown unit type").
			WithDetails(map[string]string{"unit_type": "must be sheet, roll or flat_area"})
	}
	uom := line.UOM
	if uom == "" {
		uom = enums.UOMFeet
	}
	if !uom.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown unit of measure").
			WithDetails(map[string]string{"uom": "must be ft, in, m or cm"})
	}

	if line.ProductSKU != nil {
		if err := s.ensureProduct(ctx, *line.ProductSKU); err != nil {
			return nil, err
		}
	}

	item := &models.PurchaseItem{
		ID:            uuid.New(),
		PurchaseID:    purchaseID,
		ProductSKU:    line.ProductSKU,
		Description:   strings.TrimSpace(line.Description),
		UnitType:      line.UnitType,
		Units:         line.Units,
		Width:         line.Width,
		Height:        line.Height,
		UOM:           uom,
		UnitCost:      line.UnitCost,
		GeneratePrice: line.GeneratePrice,
		Status:        enums.LifecycleActive,
	}

	derived, err := DeriveLine(item)
	if err != nil {
		if errors.Is(err, ErrAreaUndetermined) {
			totalCost := item.Units * item.UnitCost
			item.TotalCost = &totalCost
			return item, nil
		}
		return nil, err
	}

	item.AreaPerUnit = &derived.AreaPerUnit
	item.AreaTotal = &derived.AreaTotal
	item.TotalCost = &derived.TotalCost
	item.CostPerArea = &derived.CostPerArea
	return item, nil
}

func (s *service) ensureProduct(ctx context.Context, sku string) error {
	if _, err := s.repo.GetActiveProduct(ctx, sku); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return nil
}

func itemError(index int, err error) error {
	typed := pkgerrors.As(err)
	if typed == nil {
		return err
	}
	details := map[string]any{"item_index": index}
	if typed.Details() != nil {
		details["fields"] = typed.Details()
	}
	return pkgerrors.New(typed.Code(), fmt.Sprintf("item %d: %s", index, typed.Message())).
		WithDetails(details)
}
