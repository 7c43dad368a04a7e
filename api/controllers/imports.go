package controllers

import (
	"net/http"

	"github.com/lucaramirezo/products-ga/api/responses"
	"github.com/lucaramirezo/products-ga/api/validators"
	importsvc "github.com/lucaramirezo/products-ga/internal/importer"
	"github.com/lucaramirezo/products-ga/pkg/logger"
)

type importRequest struct {
	Rows []importsvc.Row `json:"rows" validate:"required,min=1,dive"`
}

// ImportPurchases ingests normalized spreadsheet rows. Dry-run is the
// default; ?commit=true makes it write.
func ImportPurchases(svc importsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		commit, err := validators.ParseQueryBool(r, "commit", false)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload importRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Import(r.Context(), payload.Rows, commit)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}
