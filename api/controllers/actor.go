package controllers

import (
	"net/http"
	"strings"

	"github.com/lucaramirezo/products-ga/internal/audit"
)

const actorHeader = "X-Actor"

// actorFrom resolves who performed a mutation for the audit trail. There is
// no authentication layer in front of the admin API, so the caller names
// itself via header and everything else falls back to the shared default.
func actorFrom(r *http.Request) string {
	if actor := strings.TrimSpace(r.Header.Get(actorHeader)); actor != "" {
		return actor
	}
	return audit.DefaultActor
}
