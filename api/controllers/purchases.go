package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/lucaramirezo/products-ga/api/responses"
	"github.com/lucaramirezo/products-ga/api/validators"
	purchasesvc "github.com/lucaramirezo/products-ga/internal/purchases"
	"github.com/lucaramirezo/products-ga/pkg/db/models"
	"github.com/lucaramirezo/products-ga/pkg/enums"
	pkgerrors "github.com/lucaramirezo/products-ga/pkg/errors"
	"github.com/lucaramirezo/products-ga/pkg/logger"
	"github.com/lucaramirezo/products-ga/pkg/pagination"
)

type createPurchaseItemRequest struct {
	ProductSKU    *string  `json:"product_sku"`
	Description   string   `json:"description"`
	UnitType      string   `json:"unit_type" validate:"required"`
	Units         float64  `json:"units" validate:"gt=0"`
	Width         *float64 `json:"width" validate:"omitempty,gt=0"`
	Height        *float64 `json:"height" validate:"omitempty,gt=0"`
	UOM           string   `json:"uom"`
	UnitCost      float64  `json:"unit_cost" validate:"gte=0"`
	GeneratePrice bool     `json:"generate_price"`
}

type createPurchaseRequest struct {
	InvoiceNo   string                      `json:"invoice_no" validate:"required"`
	SupplierID  uuid.UUID                   `json:"supplier_id" validate:"required"`
	Date        time.Time                   `json:"date" validate:"required"`
	Currency    string                      `json:"currency" validate:"required"`
	Subtotal    float64                     `json:"subtotal" validate:"gte=0"`
	Tax         float64                     `json:"tax" validate:"gte=0"`
	Shipping    float64                     `json:"shipping" validate:"gte=0"`
	Notes       *string                     `json:"notes"`
	Attachments []string                    `json:"attachments"`
	Items       []createPurchaseItemRequest `json:"items" validate:"required,min=1,dive"`
}

func CreatePurchase(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload createPurchaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		input, err := payload.toCreateInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

func (p createPurchaseRequest) toCreateInput() (purchasesvc.CreateInput, error) {
	items := make([]purchasesvc.CreateItemInput, 0, len(p.Items))
	for idx, item := range p.Items {
		converted, err := item.toItemInput()
		if err != nil {
			return purchasesvc.CreateInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid purchase item").WithDetails(map[string]any{"item_index": idx})
		}
		items = append(items, converted)
	}
	return purchasesvc.CreateInput{
		InvoiceNo:   p.InvoiceNo,
		SupplierID:  p.SupplierID,
		Date:        p.Date,
		Currency:    p.Currency,
		Subtotal:    p.Subtotal,
		Tax:         p.Tax,
		Shipping:    p.Shipping,
		Notes:       p.Notes,
		Attachments: p.Attachments,
		Items:       items,
	}, nil
}

func (p createPurchaseItemRequest) toItemInput() (purchasesvc.CreateItemInput, error) {
	unitType, err := enums.ParseUnitType(strings.TrimSpace(p.UnitType))
	if err != nil {
		return purchasesvc.CreateItemInput{}, err
	}
	uom := enums.UOMFeet
	if strings.TrimSpace(p.UOM) != "" {
		if uom, err = enums.ParseUOM(strings.TrimSpace(p.UOM)); err != nil {
			return purchasesvc.CreateItemInput{}, err
		}
	}
	return purchasesvc.CreateItemInput{
		ProductSKU:    p.ProductSKU,
		Description:   p.Description,
		UnitType:      unitType,
		Units:         p.Units,
		Width:         p.Width,
		Height:        p.Height,
		UOM:           uom,
		UnitCost:      p.UnitCost,
		GeneratePrice: p.GeneratePrice,
	}, nil
}

func GetPurchase(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := purchaseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		purchase, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, purchase)
	}
}

type purchaseListResponse struct {
	Purchases  []models.Purchase `json:"purchases"`
	NextCursor string            `json:"next_cursor,omitempty"`
}

func ListPurchases(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", pagination.DefaultLimit, 1, pagination.MaxLimit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		filter := purchasesvc.ListFilter{
			Invoice: validators.SanitizeString(r.URL.Query().Get("invoice"), 120),
		}
		if raw := validators.SanitizeString(r.URL.Query().Get("supplier_id"), 64); raw != "" {
			supplierID, parseErr := uuid.Parse(raw)
			if parseErr != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "supplier_id must be a uuid"))
				return
			}
			filter.SupplierID = &supplierID
		}
		if filter.DateFrom, err = validators.ParseQueryDate(r, "date_from"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if filter.DateTo, err = validators.ParseQueryDate(r, "date_to"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchases, nextCursor, err := svc.List(r.Context(), filter, pagination.Params{
			Limit:  limit,
			Cursor: r.URL.Query().Get("cursor"),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, purchaseListResponse{Purchases: purchases, NextCursor: nextCursor})
	}
}

type updatePurchaseRequest struct {
	InvoiceNo   *string    `json:"invoice_no"`
	Date        *time.Time `json:"date"`
	Subtotal    *float64   `json:"subtotal" validate:"omitempty,gte=0"`
	Tax         *float64   `json:"tax" validate:"omitempty,gte=0"`
	Shipping    *float64   `json:"shipping" validate:"omitempty,gte=0"`
	Notes       *string    `json:"notes"`
	Attachments []string   `json:"attachments"`
}

func UpdatePurchase(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := purchaseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updatePurchaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		purchase, err := svc.Update(r.Context(), id, purchasesvc.UpdateInput{
			InvoiceNo:   payload.InvoiceNo,
			Date:        payload.Date,
			Subtotal:    payload.Subtotal,
			Tax:         payload.Tax,
			Shipping:    payload.Shipping,
			Notes:       payload.Notes,
			Attachments: payload.Attachments,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, purchase)
	}
}

func DeletePurchase(svc purchasesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := purchaseIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if err := svc.SoftDelete(r.Context(), id); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

func purchaseIDParam(r *http.Request) (uuid.UUID, error) {
	raw := chi.URLParam(r, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeValidation, "purchase id must be a uuid").WithDetails(map[string]string{"id": raw})
	}
	return id, nil
}
