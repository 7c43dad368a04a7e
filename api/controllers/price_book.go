package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lucaramirezo/products-ga/api/responses"
	"github.com/lucaramirezo/products-ga/api/validators"
	booksvc "github.com/lucaramirezo/products-ga/internal/pricebook"
	pkgerrors "github.com/lucaramirezo/products-ga/pkg/errors"
	"github.com/lucaramirezo/products-ga/pkg/logger"
)

func ListPriceEntries(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entries, err := svc.ListByProduct(r.Context(), chi.URLParam(r, "sku"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entries)
	}
}

type createPriceEntryRequest struct {
	SupplierID    *uuid.UUID `json:"supplier_id"`
	EffectiveDate time.Time  `json:"effective_date" validate:"required"`
	CostPerArea   float64    `json:"cost_per_area" validate:"gte=0"`
	Currency      string     `json:"currency" validate:"required"`
	Pinned        bool       `json:"pinned"`
	Notes         *string    `json:"notes"`
}

func CreatePriceEntry(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createPriceEntryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.CreateEntry(r.Context(), booksvc.CreateEntryInput{
			ProductSKU:    chi.URLParam(r, "sku"),
			SupplierID:    payload.SupplierID,
			EffectiveDate: payload.EffectiveDate,
			CostPerArea:   payload.CostPerArea,
			Currency:      payload.Currency,
			Pinned:        payload.Pinned,
			Notes:         payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, entry)
	}
}

type updatePriceEntryRequest struct {
	SupplierID    *uuid.UUID `json:"supplier_id"`
	EffectiveDate *time.Time `json:"effective_date"`
	CostPerArea   *float64   `json:"cost_per_area" validate:"omitempty,gte=0"`
	Currency      *string    `json:"currency"`
	Notes         *string    `json:"notes"`
}

func UpdatePriceEntry(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryID, err := priceEntryIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePriceEntryRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		entry, err := svc.UpdateEntry(r.Context(), chi.URLParam(r, "sku"), entryID, booksvc.UpdateEntryInput{
			SupplierID:    payload.SupplierID,
			EffectiveDate: payload.EffectiveDate,
			CostPerArea:   payload.CostPerArea,
			Currency:      payload.Currency,
			Notes:         payload.Notes,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}

func PinPriceEntry(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryID, err := priceEntryIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Pin(r.Context(), chi.URLParam(r, "sku"), entryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "pinned"})
	}
}

func UnpinPriceEntry(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryID, err := priceEntryIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.Unpin(r.Context(), chi.URLParam(r, "sku"), entryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "unpinned"})
	}
}

func UnpinAllPriceEntries(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.UnpinAll(r.Context(), chi.URLParam(r, "sku")); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "unpinned"})
	}
}

func DeletePriceEntry(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entryID, err := priceEntryIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SoftDelete(r.Context(), chi.URLParam(r, "sku"), entryID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// CurrentPriceEntry resolves the cost entry a quote would use right now.
// A product with an empty book answers with data null rather than 404;
// the product itself exists.
func CurrentPriceEntry(svc booksvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		entry, err := svc.ResolveCurrent(r.Context(), chi.URLParam(r, "sku"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, entry)
	}
}

func priceEntryIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "entryID")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "entry id must be a uuid").WithDetails(map[string]string{"entry_id": raw})
	}
	return id, nil
}
