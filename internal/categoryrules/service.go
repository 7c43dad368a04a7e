package categoryrules

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/lucaramirezo/products-ga/internal/audit"
	"github.com/lucaramirezo/products-ga/pkg/db/models"
	pkgerrors "github.com/lucaramirezo/products-ga/pkg/errors"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes category override management. The category primary key
// keeps the at-most-one-rule-per-category invariant in storage; Upsert
// makes it the only write shape.
type Service interface {
	List(ctx context.Context) ([]models.CategoryRule, error)
	Get(ctx context.Context, category string) (*models.CategoryRule, error)
	Upsert(ctx context.Context, input UpsertInput) (*models.CategoryRule, error)
	Delete(ctx context.Context, category string, actor string) error
}

type service struct {
	repo    Repository
	auditor audit.Service
	tx      txRunner
}

// UpsertInput creates or replaces the rule for one category.
type UpsertInput struct {
	Category           string   `json:"category"`
	OverrideMultiplier *float64 `json:"override_multiplier"`
	OverrideLayerCount *int     `json:"override_layer_count"`
	Actor              string   `json:"-"`
}

// NewService wires the category rules service.
func NewService(repo Repository, auditor audit.Service, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("category rules repository required")
	}
	if auditor == nil {
		return nil, fmt.Errorf("audit service required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, auditor: auditor, tx: tx}, nil
}

func (s *service) List(ctx context.Context) ([]models.CategoryRule, error) {
	rules, err := s.repo.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list category rules")
	}
	return rules, nil
}

func (s *service) Get(ctx context.Context, category string) (*models.CategoryRule, error) {
	rule, err := s.repo.Get(ctx, strings.TrimSpace(category))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "category rule not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category rule")
	}
	return rule, nil
}

func (s *service) Upsert(ctx context.Context, input UpsertInput) (*models.CategoryRule, error) {
	input.Category = strings.TrimSpace(input.Category)

	details := map[string]string{}
	if input.Category == "" {
		details["category"] = "is required"
	}
	if input.OverrideMultiplier != nil && *input.OverrideMultiplier <= 0 {
		details["override_multiplier"] = "must be greater than zero"
	}
	if input.OverrideLayerCount != nil && *input.OverrideLayerCount < 0 {
		details["override_layer_count"] = "must be zero or greater"
	}
	if len(details) > 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid category rule").WithDetails(details)
	}

	var before *models.CategoryRule
	if existing, err := s.repo.Get(ctx, input.Category); err == nil {
		before = existing
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category rule")
	}

	rule := &models.CategoryRule{
		Category:           input.Category,
		OverrideMultiplier: input.OverrideMultiplier,
		OverrideLayerCount: input.OverrideLayerCount,
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Save(ctx, rule); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save category rule")
		}
		var prev any
		if before != nil {
			prev = *before
		}
		return s.auditor.RecordChanges(ctx, tx, "category_rule", input.Category, input.Actor, prev, *rule)
	})
	if err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *service) Delete(ctx context.Context, category string, actor string) error {
	rule, err := s.Get(ctx, category)
	if err != nil {
		return err
	}
	return s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		if err := s.repo.WithTx(tx).Delete(ctx, rule.Category); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete category rule")
		}
		return s.auditor.RecordChanges(ctx, tx, "category_rule", rule.Category, actor, *rule, nil)
	})
}
