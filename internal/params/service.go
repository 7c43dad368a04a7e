package params

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/lucaramirezo/products-ga/internal/audit"
	"github.com/lucaramirezo/products-ga/internal/tiers"
	"github.com/lucaramirezo/products-ga/pkg/db/models"
	"github.com/lucaramirezo/products-ga/pkg/enums"
	pkgerrors "github.com/lucaramirezo/products-ga/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the global pricing parameters. The row is seeded by
// migrations; only reads and updates exist.
type Service interface {
	Get(ctx context.Context) (*models.PriceParams, error)
	Update(ctx context.Context, input UpdateInput) (*models.PriceParams, error)
}

type service struct {
	repo    Repository
	auditor audit.Service
	tx      txRunner
}

// UpdateInput patches the singleton. Nil fields are left unchanged.
type UpdateInput struct {
	InkPrice        *float64 `json:"ink_price"`
	LaminationPrice *float64 `json:"lamination_price"`
	CutPrice        *float64 `json:"cut_price"`
	CutFactor       *float64 `json:"cut_factor"`
	RoundingStep    *float64 `json:"rounding_step"`
	CostMethod      *string  `json:"cost_method"`
	DefaultTier     *int16   `json:"default_tier"`
	Actor           string   `json:"-"`
}

// NewService wires the params service.
func NewService(repo Repository, auditor audit.Service, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("params repository required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, auditor: auditor, tx: tx}, nil
}

func (s *service) Get(ctx context.Context) (*models.PriceParams, error) {
	params, err := s.repo.Get(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pricing parameters not seeded")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pricing parameters")
	}
	return params, nil
}

func (s *service) Update(ctx context.Context, input UpdateInput) (*models.PriceParams, error) {
	params, err := s.Get(ctx)
	if err != nil {
		return nil, err
	}
	before := *params

	details := map[string]string{}
	if input.InkPrice != nil {
		if *input.InkPrice < 0 {
			details["ink_price"] = "must be zero or greater"
		} else {
			params.InkPrice = *input.InkPrice
		}
	}
	if input.LaminationPrice != nil {
		if *input.LaminationPrice < 0 {
			details["lamination_price"] = "must be zero or greater"
		} else {
			params.LaminationPrice = *input.LaminationPrice
		}
	}
	if input.CutPrice != nil {
		if *input.CutPrice < 0 {
			details["cut_price"] = "must be zero or greater"
		} else {
			params.CutPrice = *input.CutPrice
		}
	}
	if input.CutFactor != nil {
		if *input.CutFactor < 0 {
			details["cut_factor"] = "must be zero or greater"
		} else {
			params.CutFactor = *input.CutFactor
		}
	}
	if input.RoundingStep != nil {
		if *input.RoundingStep <= 0 {
			details["rounding_step"] = "must be greater than zero"
		} else {
			params.RoundingStep = *input.RoundingStep
		}
	}
	if input.CostMethod != nil {
		method, err := enums.ParseCostMethod(*input.CostMethod)
		if err != nil {
			details["cost_method"] = "is not a known cost method"
		} else {
			params.CostMethod = method
		}
	}
	if input.DefaultTier != nil {
		if *input.DefaultTier < tiers.MinTierID || *input.DefaultTier > tiers.MaxTierID {
			details["default_tier"] = "must be between 1 and 5"
		} else {
			params.DefaultTier = *input.DefaultTier
		}
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid pricing parameters").WithDetails(details)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Save(ctx, params); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update pricing parameters")
		}
		return s.auditor.RecordChanges(ctx, tx, "price_params", "1", input.Actor, before, *params)
	})
	if err != nil {
		return nil, err
	}
	return params, nil
}
