package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lucaramirezo/products-ga/api/responses"
	"github.com/lucaramirezo/products-ga/api/validators"
	auditsvc "github.com/lucaramirezo/products-ga/internal/audit"
	"github.com/lucaramirezo/products-ga/pkg/logger"
)

// ListAuditRecords returns the change history for one entity, newest first.
func ListAuditRecords(svc auditsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit, err := validators.ParseQueryInt(r, "limit", 100, 1, 500)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		records, err := svc.ListByEntity(r.Context(), chi.URLParam(r, "entity"), chi.URLParam(r, "entityID"), limit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, records)
	}
}
