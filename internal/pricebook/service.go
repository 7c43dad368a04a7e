package pricebook

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucaramirezo/products-ga/pkg/db/models"
	"github.com/lucaramirezo/products-ga/pkg/enums"
	pkgerrors "github.com/lucaramirezo/products-ga/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the price book operations.
type Service interface {
	ListByProduct(ctx context.Context, sku string) ([]models.PriceEntry, error)
	CreateEntry(ctx context.Context, input CreateEntryInput) (*models.PriceEntry, error)
	UpdateEntry(ctx context.Context, sku string, entryID uuid.UUID, input UpdateEntryInput) (*models.PriceEntry, error)
	Pin(ctx context.Context, sku string, entryID uuid.UUID) error
	Unpin(ctx context.Context, sku string, entryID uuid.UUID) error
	UnpinAll(ctx context.Context, sku string) error
	SoftDelete(ctx context.Context, sku string, entryID uuid.UUID) error
	ResolveCurrent(ctx context.Context, sku string) (*models.PriceEntry, error)
	ResolveCurrentCost(ctx context.Context, sku string) (*float64, error)
}

type service struct {
	repo Repository
	tx   txRunner
}

// CreateEntryInput captures a manual or purchase-sourced cost observation.
type CreateEntryInput struct {
	ProductSKU    string     `json:"product_sku"`
	SupplierID    *uuid.UUID `json:"supplier_id"`
	SourceItemID  *uuid.UUID `json:"source_item_id"`
	EffectiveDate time.Time  `json:"effective_date"`
	CostPerArea   float64    `json:"cost_per_area"`
	Currency      string     `json:"currency"`
	Pinned        bool       `json:"pinned"`
	Notes         *string    `json:"notes"`
}

// UpdateEntryInput patches an existing entry. Nil fields are left unchanged.
type UpdateEntryInput struct {
	SupplierID    *uuid.UUID `json:"supplier_id"`
	EffectiveDate *time.Time `json:"effective_date"`
	CostPerArea   *float64   `json:"cost_per_area"`
	Currency      *string    `json:"currency"`
	Notes         *string    `json:"notes"`
}

// NewService wires a price book service with the provided repository and
// transaction runner.
func NewService(repo Repository, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("pricebook repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx}, nil
}

func (s *service) ListByProduct(ctx context.Context, sku string) ([]models.PriceEntry, error) {
	return s.repo.ListByProduct(ctx, sku)
}

func (s *service) CreateEntry(ctx context.Context, input CreateEntryInput) (*models.PriceEntry, error) {
	if err := validateEntryInput(&input); err != nil {
		return nil, err
	}

	entry := &models.PriceEntry{
		ID:            uuid.New(),
		ProductSKU:    input.ProductSKU,
		SupplierID:    input.SupplierID,
		SourceItemID:  input.SourceItemID,
		EffectiveDate: input.EffectiveDate,
		CostPerArea:   input.CostPerArea,
		Currency:      input.Currency,
		Notes:         input.Notes,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.LockProduct(ctx, input.ProductSKU); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if input.Pinned {
			if err := repo.UnpinAll(ctx, input.ProductSKU); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear existing pin")
			}
			entry.Pinned = true
		}
		if err := repo.Create(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create price entry")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// UpdateEntry patches an entry's cost observation fields. The pinned flag
// is not patchable here; Pin and Unpin own it.
func (s *service) UpdateEntry(ctx context.Context, sku string, entryID uuid.UUID, input UpdateEntryInput) (*models.PriceEntry, error) {
	details := map[string]string{}
	if input.CostPerArea != nil && *input.CostPerArea < 0 {
		details["cost_per_area"] = "must be zero or greater"
	}
	if input.EffectiveDate != nil {
		if input.EffectiveDate.IsZero() {
			details["effective_date"] = "is required"
		} else if input.EffectiveDate.After(time.Now()) {
			details["effective_date"] = "cannot be in the future"
		}
	}
	var currency string
	if input.Currency != nil {
		currency = strings.ToUpper(strings.TrimSpace(*input.Currency))
		if currency == "" {
			details["currency"] = "is required"
		}
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid price entry").WithDetails(details)
	}

	var updated *models.PriceEntry
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		entry, err := s.lockAndFetch(ctx, repo, sku, entryID)
		if err != nil {
			return err
		}
		if input.SupplierID != nil {
			entry.SupplierID = input.SupplierID
		}
		if input.EffectiveDate != nil {
			entry.EffectiveDate = *input.EffectiveDate
		}
		if input.CostPerArea != nil {
			entry.CostPerArea = *input.CostPerArea
		}
		if input.Currency != nil {
			entry.Currency = currency
		}
		if input.Notes != nil {
			trimmed := strings.TrimSpace(*input.Notes)
			entry.Notes = &trimmed
		}
		if err := repo.Save(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update price entry")
		}
		updated = entry
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Pin marks one entry as the authoritative cost for its product. Clearing
// any previous pin and setting the new one commit together; no state with
// two pinned entries is ever visible.
func (s *service) Pin(ctx context.Context, sku string, entryID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		entry, err := s.lockAndFetch(ctx, repo, sku, entryID)
		if err != nil {
			return err
		}
		if err := repo.UnpinAll(ctx, sku); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear existing pin")
		}
		if err := repo.SetPinned(ctx, entry.ID, true); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "pin entry")
		}
		return nil
	})
}

// Unpin clears the pin only when the named entry is the one pinned.
func (s *service) Unpin(ctx context.Context, sku string, entryID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		entry, err := s.lockAndFetch(ctx, repo, sku, entryID)
		if err != nil {
			return err
		}
		if !entry.Pinned {
			return nil
		}
		if err := repo.SetPinned(ctx, entry.ID, false); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unpin entry")
		}
		return nil
	})
}

func (s *service) UnpinAll(ctx context.Context, sku string) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if _, err := repo.LockProduct(ctx, sku); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
		}
		if err := repo.UnpinAll(ctx, sku); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "unpin entries")
		}
		return nil
	})
}

// SoftDelete deactivates an entry. The repository clears the pinned flag
// in the same update, so deleting the pinned entry releases the pin.
func (s *service) SoftDelete(ctx context.Context, sku string, entryID uuid.UUID) error {
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		entry, err := s.lockAndFetch(ctx, repo, sku, entryID)
		if err != nil {
			return err
		}
		if err := repo.SoftDelete(ctx, entry); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete price entry")
		}
		return nil
	})
}

func (s *service) ResolveCurrent(ctx context.Context, sku string) (*models.PriceEntry, error) {
	entry, err := s.repo.ResolveCurrent(ctx, sku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "resolve current entry")
	}
	return entry, nil
}

func (s *service) ResolveCurrentCost(ctx context.Context, sku string) (*float64, error) {
	entry, err := s.ResolveCurrent(ctx, sku)
	if err != nil || entry == nil {
		return nil, err
	}
	cost := entry.CostPerArea
	return &cost, nil
}

func (s *service) lockAndFetch(ctx context.Context, repo Repository, sku string, entryID uuid.UUID) (*models.PriceEntry, error) {
	if _, err := repo.LockProduct(ctx, sku); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	entry, err := repo.Get(ctx, entryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "price entry not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load price entry")
	}
	if entry.ProductSKU != sku {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "price entry does not belong to this product").
			WithDetails(map[string]string{"entry_id": "belongs to a different product"})
	}
	if entry.Status != enums.LifecycleActive {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "price entry not found")
	}
	return entry, nil
}

func validateEntryInput(input *CreateEntryInput) error {
	details := map[string]string{}
	if strings.TrimSpace(input.ProductSKU) == "" {
		details["product_sku"] = "is required"
	}
	if input.CostPerArea < 0 {
		details["cost_per_area"] = "must be zero or greater"
	}
	if input.EffectiveDate.IsZero() {
		details["effective_date"] = "is required"
	} else if input.EffectiveDate.After(time.Now()) {
		details["effective_date"] = "cannot be in the future"
	}

	input.Currency = strings.ToUpper(strings.TrimSpace(input.Currency))
	if input.Currency == "" {
		details["currency"] = "is required"
	}

	if len(details) > 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid price entry").WithDetails(details)
	}
	return nil
}
