package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lucaramirezo/products-ga/api/responses"
	"github.com/lucaramirezo/products-ga/api/validators"
	rulesvc "github.com/lucaramirezo/products-ga/internal/categoryrules"
	"github.com/lucaramirezo/products-ga/pkg/logger"
)

func ListCategoryRules(svc rulesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rules, err := svc.List(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rules)
	}
}

func GetCategoryRule(svc rulesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rule, err := svc.Get(r.Context(), chi.URLParam(r, "category"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rule)
	}
}

type upsertCategoryRuleRequest struct {
	OverrideMultiplier *float64 `json:"override_multiplier" validate:"omitempty,gt=0"`
	OverrideLayerCount *int     `json:"override_layer_count" validate:"omitempty,min=0"`
}

func UpsertCategoryRule(svc rulesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload upsertCategoryRuleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rule, err := svc.Upsert(r.Context(), rulesvc.UpsertInput{
			Category:           chi.URLParam(r, "category"),
			OverrideMultiplier: payload.OverrideMultiplier,
			OverrideLayerCount: payload.OverrideLayerCount,
			Actor:              actorFrom(r),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, rule)
	}
}

func DeleteCategoryRule(svc rulesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Delete(r.Context(), chi.URLParam(r, "category"), actorFrom(r)); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusOK, map[string]string{"status": "deleted"})
	}
}
