package controllers

import (
	"net/http"

	"github.com/lucaramirezo/products-ga/api/responses"
	"github.com/lucaramirezo/products-ga/api/validators"
	paramsvc "github.com/lucaramirezo/products-ga/internal/params"
	"github.com/lucaramirezo/products-ga/pkg/logger"
)

func GetPriceParams(svc paramsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		params, err := svc.Get(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, params)
	}
}

type updatePriceParamsRequest struct {
	InkPrice        *float64 `json:"ink_price" validate:"omitempty,gte=0"`
	LaminationPrice *float64 `json:"lamination_price" validate:"omitempty,gte=0"`
	CutPrice        *float64 `json:"cut_price" validate:"omitempty,gte=0"`
	CutFactor       *float64 `json:"cut_factor" validate:"omitempty,gte=0"`
	RoundingStep    *float64 `json:"rounding_step" validate:"omitempty,gt=0"`
	CostMethod      *string  `json:"cost_method"`
	DefaultTier     *int16   `json:"default_tier"`
}

func UpdatePriceParams(svc paramsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload updatePriceParamsRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		params, err := svc.Update(r.Context(), paramsvc.UpdateInput{
			InkPrice:        payload.InkPrice,
			LaminationPrice: payload.LaminationPrice,
			CutPrice:        payload.CutPrice,
			CutFactor:       payload.CutFactor,
			RoundingStep:    payload.RoundingStep,
			CostMethod:      payload.CostMethod,
			DefaultTier:     payload.DefaultTier,
			Actor:           actorFrom(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, params)
	}
}
