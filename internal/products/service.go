package products

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/lucaramirezo/products-ga/internal/audit"
	"github.com/lucaramirezo/products-ga/pkg/db"
	"github.com/lucaramirezo/products-ga/pkg/db/models"
	"github.com/lucaramirezo/products-ga/pkg/enums"
	pkgerrors "github.com/lucaramirezo/products-ga/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes catalog product management.
type Service interface {
	Create(ctx context.Context, input CreateInput) (*models.Product, error)
	Get(ctx context.Context, sku string) (*models.Product, error)
	List(ctx context.Context, filter ListFilter) ([]models.Product, error)
	Update(ctx context.Context, sku string, input UpdateInput) (*models.Product, error)
	SoftDelete(ctx context.Context, sku string, actor string) error
}

type service struct {
	repo    Repository
	auditor audit.Service
	tx      txRunner
}

// CreateInput registers a new product.
type CreateInput struct {
	SKU                string     `json:"sku"`
	Name               string     `json:"name"`
	Category           string     `json:"category"`
	SupplierID         *uuid.UUID `json:"supplier_id"`
	CostPerArea        float64    `json:"cost_per_area"`
	Area               float64    `json:"area"`
	ActiveTier         int16      `json:"active_tier"`
	OverrideMultiplier *float64   `json:"override_multiplier"`
	OverrideLayerCount *int       `json:"override_layer_count"`
	InkEnabled         bool       `json:"ink_enabled"`
	LamEnabled         bool       `json:"lam_enabled"`
	CutEnabled         bool       `json:"cut_enabled"`
	SellMode           string     `json:"sell_mode"`
	SheetsCount        *int       `json:"sheets_count"`
	Actor              string     `json:"-"`
}

// UpdateInput patches a product. Nil fields are left unchanged;
// ClearOverrides drops both per-product overrides at once.
type UpdateInput struct {
	Name               *string    `json:"name"`
	Category           *string    `json:"category"`
	SupplierID         *uuid.UUID `json:"supplier_id"`
	CostPerArea        *float64   `json:"cost_per_area"`
	Area               *float64   `json:"area"`
	ActiveTier         *int16     `json:"active_tier"`
	OverrideMultiplier *float64   `json:"override_multiplier"`
	OverrideLayerCount *int       `json:"override_layer_count"`
	ClearOverrides     bool       `json:"clear_overrides"`
	InkEnabled         *bool      `json:"ink_enabled"`
	LamEnabled         *bool      `json:"lam_enabled"`
	CutEnabled         *bool      `json:"cut_enabled"`
	SellMode           *string    `json:"sell_mode"`
	SheetsCount        *int       `json:"sheets_count"`
	Actor              string     `json:"-"`
}

// NewService wires the products service.
func NewService(repo Repository, auditor audit.Service, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("products repository required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, auditor: auditor, tx: tx}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput) (*models.Product, error) {
	details := map[string]string{}

	sku := strings.TrimSpace(input.SKU)
	if sku == "" {
		details["sku"] = "is required"
	}
	if strings.TrimSpace(input.Name) == "" {
		details["name"] = "is required"
	}
	if strings.TrimSpace(input.Category) == "" {
		details["category"] = "is required"
	}
	if input.CostPerArea < 0 {
		details["cost_per_area"] = "must be zero or greater"
	}
	if input.Area <= 0 {
		details["area"] = "must be greater than zero"
	}
	if input.OverrideMultiplier != nil && *input.OverrideMultiplier <= 0 {
		details["override_multiplier"] = "must be greater than zero"
	}
	if input.OverrideLayerCount != nil && *input.OverrideLayerCount < 0 {
		details["override_layer_count"] = "must be zero or greater"
	}
	if input.SheetsCount != nil && *input.SheetsCount <= 0 {
		details["sheets_count"] = "must be greater than zero"
	}

	sellMode := enums.SellModeArea
	if input.SellMode != "" {
		parsed, err := enums.ParseSellMode(input.SellMode)
		if err != nil {
			details["sell_mode"] = "must be AREA or SHEET"
		} else {
			sellMode = parsed
		}
	}

	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product").WithDetails(details)
	}

	if err := s.ensureTier(ctx, input.ActiveTier); err != nil {
		return nil, err
	}

	product := &models.Product{
		SKU:                sku,
		Name:               strings.TrimSpace(input.Name),
		Category:           strings.TrimSpace(input.Category),
		SupplierID:         input.SupplierID,
		CostPerArea:        input.CostPerArea,
		Area:               input.Area,
		ActiveTier:         input.ActiveTier,
		OverrideMultiplier: input.OverrideMultiplier,
		OverrideLayerCount: input.OverrideLayerCount,
		InkEnabled:         input.InkEnabled,
		LamEnabled:         input.LamEnabled,
		CutEnabled:         input.CutEnabled,
		SellMode:           sellMode,
		SheetsCount:        input.SheetsCount,
		Status:             enums.LifecycleActive,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Create(ctx, product); err != nil {
			if db.IsUniqueViolation(err) {
				return pkgerrors.New(pkgerrors.CodeConflict, "sku already exists")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create product")
		}
		return s.auditor.RecordChanges(ctx, tx, "product", product.SKU, input.Actor, nil, *product)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) Get(ctx context.Context, sku string) (*models.Product, error) {
	product, err := s.repo.Get(ctx, strings.TrimSpace(sku))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return product, nil
}

func (s *service) List(ctx context.Context, filter ListFilter) ([]models.Product, error) {
	products, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return products, nil
}

func (s *service) Update(ctx context.Context, sku string, input UpdateInput) (*models.Product, error) {
	product, err := s.Get(ctx, sku)
	if err != nil {
		return nil, err
	}
	before := *product

	details := map[string]string{}
	if input.Name != nil {
		if strings.TrimSpace(*input.Name) == "" {
			details["name"] = "is required"
		} else {
			product.Name = strings.TrimSpace(*input.Name)
		}
	}
	if input.Category != nil {
		if strings.TrimSpace(*input.Category) == "" {
			details["category"] = "is required"
		} else {
			product.Category = strings.TrimSpace(*input.Category)
		}
	}
	if input.SupplierID != nil {
		product.SupplierID = input.SupplierID
	}
	if input.CostPerArea != nil {
		if *input.CostPerArea < 0 {
			details["cost_per_area"] = "must be zero or greater"
		} else {
			product.CostPerArea = *input.CostPerArea
		}
	}
	if input.Area != nil {
		if *input.Area <= 0 {
			details["area"] = "must be greater than zero"
		} else {
			product.Area = *input.Area
		}
	}
	if input.ClearOverrides {
		product.OverrideMultiplier = nil
		product.OverrideLayerCount = nil
	}
	if input.OverrideMultiplier != nil {
		if *input.OverrideMultiplier <= 0 {
			details["override_multiplier"] = "must be greater than zero"
		} else {
			product.OverrideMultiplier = input.OverrideMultiplier
		}
	}
	if input.OverrideLayerCount != nil {
		if *input.OverrideLayerCount < 0 {
			details["override_layer_count"] = "must be zero or greater"
		} else {
			product.OverrideLayerCount = input.OverrideLayerCount
		}
	}
	if input.InkEnabled != nil {
		product.InkEnabled = *input.InkEnabled
	}
	if input.LamEnabled != nil {
		product.LamEnabled = *input.LamEnabled
	}
	if input.CutEnabled != nil {
		product.CutEnabled = *input.CutEnabled
	}
	if input.SellMode != nil {
		parsed, err := enums.ParseSellMode(*input.SellMode)
		if err != nil {
			details["sell_mode"] = "must be AREA or SHEET"
		} else {
			product.SellMode = parsed
		}
	}
	if input.SheetsCount != nil {
		if *input.SheetsCount <= 0 {
			details["sheets_count"] = "must be greater than zero"
		} else {
			product.SheetsCount = input.SheetsCount
		}
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid product update").WithDetails(details)
	}

	if input.ActiveTier != nil {
		if err := s.ensureTier(ctx, *input.ActiveTier); err != nil {
			return nil, err
		}
		product.ActiveTier = *input.ActiveTier
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Save(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update product")
		}
		return s.auditor.RecordChanges(ctx, tx, "product", product.SKU, input.Actor, before, *product)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *service) SoftDelete(ctx context.Context, sku string, actor string) error {
	product, err := s.Get(ctx, sku)
	if err != nil {
		return err
	}
	before := *product
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).SoftDelete(ctx, product); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete product")
		}
		return s.auditor.RecordChanges(ctx, tx, "product", product.SKU, actor, before, nil)
	})
}

func (s *service) ensureTier(ctx context.Context, id int16) error {
	exists, err := s.repo.TierExists(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "check tier")
	}
	if !exists {
		return pkgerrors.New(pkgerrors.CodeValidation, "active tier does not exist").
			WithDetails(map[string]string{"active_tier": "references a missing tier"})
	}
	return nil
}
