package tiers

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/lucaramirezo/products-ga/internal/audit"
	"github.com/lucaramirezo/products-ga/pkg/db/models"
	pkgerrors "github.com/lucaramirezo/products-ga/pkg/errors"
)

// Tier ids are fixed; migrations seed the five rows and updates only
// retune their values.
const (
	MinTierID = 1
	MaxTierID = 5
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the five pricing tiers.
type Service interface {
	List(ctx context.Context) ([]models.Tier, error)
	Get(ctx context.Context, id int16) (*models.Tier, error)
	Update(ctx context.Context, id int16, input UpdateInput) (*models.Tier, error)
}

type service struct {
	repo    Repository
	auditor audit.Service
	tx      txRunner
}

// UpdateInput retunes one tier. Nil fields are left unchanged.
type UpdateInput struct {
	Multiplier *float64 `json:"multiplier"`
	LayerCount *int     `json:"layer_count"`
	Actor      string   `json:"-"`
}

// NewService wires the tiers service.
func NewService(repo Repository, auditor audit.Service, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("tiers repository required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, auditor: auditor, tx: tx}, nil
}

func (s *service) List(ctx context.Context) ([]models.Tier, error) {
	tiers, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list tiers")
	}
	return tiers, nil
}

func (s *service) Get(ctx context.Context, id int16) (*models.Tier, error) {
	tier, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tier")
	}
	return tier, nil
}

func (s *service) Update(ctx context.Context, id int16, input UpdateInput) (*models.Tier, error) {
	if id < MinTierID || id > MaxTierID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid tier id").
			WithDetails(map[string]string{"id": "must be between 1 and 5"})
	}

	tier, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	before := *tier

	details := map[string]string{}
	if input.Multiplier != nil {
		if *input.Multiplier <= 0 {
			details["multiplier"] = "must be greater than zero"
		} else {
			tier.Multiplier = *input.Multiplier
		}
	}
	if input.LayerCount != nil {
		if *input.LayerCount < 0 {
			details["layer_count"] = "must be zero or greater"
		} else {
			tier.LayerCount = *input.LayerCount
		}
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid tier update").WithDetails(details)
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Save(ctx, tier); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "update tier")
		}
		return s.auditor.RecordChanges(ctx, tx, "tier", strconv.Itoa(int(id)), input.Actor, before, *tier)
	})
	if err != nil {
		return nil, err
	}
	return tier, nil
}
