package controllers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/lucaramirezo/products-ga/api/responses"
	"github.com/lucaramirezo/products-ga/api/validators"
	tiersvc "github.com/lucaramirezo/products-ga/internal/tiers"
	pkgerrors "github.com/lucaramirezo/products-ga/pkg/errors"
	"github.com/lucaramirezo/products-ga/pkg/logger"
)

func ListTiers(svc tiersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tiers, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tiers)
	}
}

func GetTier(svc tiersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := tierIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		tier, err := svc.Get(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tier)
	}
}

type updateTierRequest struct {
	Multiplier *float64 `json:"multiplier" validate:"omitempty,gt=0"`
	LayerCount *int     `json:"layer_count" validate:"omitempty,min=0"`
}

func UpdateTier(svc tiersvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := tierIDParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateTierRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		tier, err := svc.Update(r.Context(), id, tiersvc.UpdateInput{
			Multiplier: payload.Multiplier,
			LayerCount: payload.LayerCount,
			Actor:      actorFrom(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, tier)
	}
}

func tierIDParam(r *http.Request) (int16, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.ParseInt(raw, 10, 16)
	if err != nil {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, "tier id must be numeric").WithDetails(map[string]string{"id": raw})
	}
	return int16(id), nil
}
