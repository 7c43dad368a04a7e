package quotes

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/lucaramirezo/products-ga/internal/pricebook"
	"github.com/lucaramirezo/products-ga/internal/pricing"
	"github.com/lucaramirezo/products-ga/pkg/db/models"
	pkgerrors "github.com/lucaramirezo/products-ga/pkg/errors"
	"github.com/lucaramirezo/products-ga/pkg/logger"
)

// Service answers "what does this product cost right now".
type Service interface {
	GetPriceBySKU(ctx context.Context, sku string, opts QuoteOptions) (*pricing.Breakdown, error)
}

// QuoteOptions selects add-ons and whether the price book's current cost
// replaces the product's stored cost per area.
type QuoteOptions struct {
	Toggles     pricing.Toggles `json:"toggles"`
	UseBookCost bool            `json:"use_book_cost"`
}

type service struct {
	repo     Repository
	book     pricebook.Service
	log      *logger.Logger
	cacheTTL time.Duration
}

// NewService wires the quotes service. cacheTTL <= 0 disables the cache.
func NewService(repo Repository, book pricebook.Service, log *logger.Logger, cacheTTL time.Duration) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("quotes repository required")
	}
	if book == nil {
		return nil, fmt.Errorf("pricebook service required")
	}
	return &service{repo: repo, book: book, log: log, cacheTTL: cacheTTL}, nil
}

// cacheKeyInput is everything the computation depends on. Any change to
// any field changes the hash, which is the whole invalidation story.
type cacheKeyInput struct {
	Product  *models.Product      `json:"product"`
	Tier     *models.Tier         `json:"tier"`
	Rule     *models.CategoryRule `json:"rule"`
	Params   *models.PriceParams  `json:"params"`
	Options  QuoteOptions         `json:"options"`
	BookCost *float64             `json:"book_cost"`
}

func (s *service) GetPriceBySKU(ctx context.Context, sku string, opts QuoteOptions) (*pricing.Breakdown, error) {
	product, err := s.repo.GetProduct(ctx, sku)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}

	tier, err := s.repo.GetTier(ctx, product.ActiveTier)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "tier not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load tier")
	}

	rule, err := s.repo.GetRule(ctx, product.Category)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load category rule")
		}
		rule = nil
	}

	params, err := s.repo.GetParams(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pricing parameters not seeded")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pricing parameters")
	}

	var bookCost *float64
	if opts.UseBookCost {
		bookCost, err = s.book.ResolveCurrentCost(ctx, sku)
		if err != nil {
			return nil, err
		}
	}

	key := hashInputs(cacheKeyInput{
		Product:  product,
		Tier:     tier,
		Rule:     rule,
		Params:   params,
		Options:  opts,
		BookCost: bookCost,
	})

	if cached := s.readCache(ctx, key); cached != nil {
		return cached, nil
	}

	breakdown := pricing.Compute(pricing.Input{
		Product:      product,
		Tier:         tier,
		Rule:         rule,
		Params:       params,
		Toggles:      opts.Toggles,
		CostOverride: bookCost,
	})

	s.writeCache(ctx, key, &breakdown)
	return &breakdown, nil
}

// readCache is best effort; any failure is a miss. An empty key means the
// inputs could not be hashed and caching is off for this call.
func (s *service) readCache(ctx context.Context, key string) *pricing.Breakdown {
	if s.cacheTTL <= 0 || key == "" {
		return nil
	}
	row, err := s.repo.GetCached(ctx, key)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) && s.log != nil {
			s.log.Warn(ctx, "price cache read failed: "+err.Error())
		}
		return nil
	}
	if time.Since(row.ComputedAt) > s.cacheTTL {
		return nil
	}
	var breakdown pricing.Breakdown
	if err := json.Unmarshal(row.Breakdown, &breakdown); err != nil {
		if s.log != nil {
			s.log.Warn(ctx, "price cache row undecodable: "+err.Error())
		}
		return nil
	}
	return &breakdown
}

// writeCache is best effort; a failed write never fails the quote.
func (s *service) writeCache(ctx context.Context, key string, breakdown *pricing.Breakdown) {
	if s.cacheTTL <= 0 || key == "" {
		return
	}
	payload, err := json.Marshal(breakdown)
	if err != nil {
		return
	}
	row := &models.PriceCacheRow{
		InputsHash: key,
		SKU:        breakdown.SKU,
		Final:      breakdown.Final,
		Breakdown:  payload,
		ComputedAt: time.Now().UTC(),
	}
	if err := s.repo.PutCached(ctx, row); err != nil && s.log != nil {
		s.log.Warn(ctx, "price cache write failed: "+err.Error())
	}
}

func hashInputs(input cacheKeyInput) string {
	payload, err := json.Marshal(input)
	if err != nil {
		// Marshaling plain structs cannot fail; an empty key turns the
		// cache off for this call just in case.
		return ""
	}
	sum := sha256.Sum256(payload)
	return hex.EncodeToString(sum[:])
}
