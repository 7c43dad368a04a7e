package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/lucaramirezo/products-ga/api/responses"
	"github.com/lucaramirezo/products-ga/api/validators"
	"github.com/lucaramirezo/products-ga/internal/pricing"
	productsvc "github.com/lucaramirezo/products-ga/internal/products"
	quotesvc "github.com/lucaramirezo/products-ga/internal/quotes"
	"github.com/lucaramirezo/products-ga/pkg/logger"
)

type createProductRequest struct {
	SKU                string     `json:"sku" validate:"required"`
	Name               string     `json:"name" validate:"required"`
	Category           string     `json:"category" validate:"required"`
	SupplierID         *uuid.UUID `json:"supplier_id"`
	CostPerArea        float64    `json:"cost_per_area" validate:"gte=0"`
	Area               float64    `json:"area" validate:"gt=0"`
	ActiveTier         int16      `json:"active_tier" validate:"required"`
	OverrideMultiplier *float64   `json:"override_multiplier" validate:"omitempty,gt=0"`
	OverrideLayerCount *int       `json:"override_layer_count" validate:"omitempty,min=0"`
	InkEnabled         bool       `json:"ink_enabled"`
	LamEnabled         bool       `json:"lam_enabled"`
	CutEnabled         bool       `json:"cut_enabled"`
	SellMode           string     `json:"sell_mode"`
	SheetsCount        *int       `json:"sheets_count" validate:"omitempty,min=1"`
}

func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Create(r.Context(), productsvc.CreateInput{
			SKU:                payload.SKU,
			Name:               payload.Name,
			Category:           payload.Category,
			SupplierID:         payload.SupplierID,
			CostPerArea:        payload.CostPerArea,
			Area:               payload.Area,
			ActiveTier:         payload.ActiveTier,
			OverrideMultiplier: payload.OverrideMultiplier,
			OverrideLayerCount: payload.OverrideLayerCount,
			InkEnabled:         payload.InkEnabled,
			LamEnabled:         payload.LamEnabled,
			CutEnabled:         payload.CutEnabled,
			SellMode:           payload.SellMode,
			SheetsCount:        payload.SheetsCount,
			Actor:              actorFrom(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		filter := productsvc.ListFilter{
			Category: validators.SanitizeString(r.URL.Query().Get("category"), 120),
			Search:   validators.SanitizeString(r.URL.Query().Get("search"), 120),
		}
		products, err := svc.List(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func GetProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		product, err := svc.Get(r.Context(), chi.URLParam(r, "sku"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

type updateProductRequest struct {
	Name               *string    `json:"name"`
	Category           *string    `json:"category"`
	SupplierID         *uuid.UUID `json:"supplier_id"`
	CostPerArea        *float64   `json:"cost_per_area" validate:"omitempty,gte=0"`
	Area               *float64   `json:"area" validate:"omitempty,gt=0"`
	ActiveTier         *int16     `json:"active_tier"`
	OverrideMultiplier *float64   `json:"override_multiplier" validate:"omitempty,gt=0"`
	OverrideLayerCount *int       `json:"override_layer_count" validate:"omitempty,min=0"`
	ClearOverrides     bool       `json:"clear_overrides"`
	InkEnabled         *bool      `json:"ink_enabled"`
	LamEnabled         *bool      `json:"lam_enabled"`
	CutEnabled         *bool      `json:"cut_enabled"`
	SellMode           *string    `json:"sell_mode"`
	SheetsCount        *int       `json:"sheets_count" validate:"omitempty,min=1"`
}

func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.Update(r.Context(), chi.URLParam(r, "sku"), productsvc.UpdateInput{
			Name:               payload.Name,
			Category:           payload.Category,
			SupplierID:         payload.SupplierID,
			CostPerArea:        payload.CostPerArea,
			Area:               payload.Area,
			ActiveTier:         payload.ActiveTier,
			OverrideMultiplier: payload.OverrideMultiplier,
			OverrideLayerCount: payload.OverrideLayerCount,
			ClearOverrides:     payload.ClearOverrides,
			InkEnabled:         payload.InkEnabled,
			LamEnabled:         payload.LamEnabled,
			CutEnabled:         payload.CutEnabled,
			SellMode:           payload.SellMode,
			SheetsCount:        payload.SheetsCount,
			Actor:              actorFrom(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, product)
	}
}

func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.SoftDelete(r.Context(), chi.URLParam(r, "sku"), actorFrom(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

type quoteResponse struct {
	*pricing.Breakdown
	FinalDisplay string `json:"final_display"`
}

// ProductPrice computes the current sell price for a product. Toggles come
// in as query flags so the endpoint stays cache and curl friendly.
func ProductPrice(svc quotesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ink, err := validators.ParseQueryBool(r, "ink", true)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		lam, err := validators.ParseQueryBool(r, "lamination", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		cut, err := validators.ParseQueryBool(r, "cut", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		useBookCost, err := validators.ParseQueryBool(r, "book_cost", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		breakdown, err := svc.GetPriceBySKU(r.Context(), chi.URLParam(r, "sku"), quotesvc.QuoteOptions{
			Toggles: pricing.Toggles{
				Ink:        ink,
				Lamination: lam,
				Cut:        cut,
			},
			UseBookCost: useBookCost,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, quoteResponse{
			Breakdown:    breakdown,
			FinalDisplay: decimal.NewFromFloat(breakdown.Final).StringFixed(2),
		})
	}
}
