package handler

import (
	"net/http"

	"github.com/catalina-labs/usuarios-api/internal/app/service"
	"github.com/catalina-labs/usuarios-api/internal/common"

	"github.com/go-chi/chi/v5"
)

type StatsHandler struct {
	statsService *service.StatsService
}

func NewStatsHandler(statsService *service.StatsService) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

func (h *StatsHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.stats)
}

func (h *StatsHandler) stats(w http.ResponseWriter, r *http.Request) {
	snapshot, err := h.statsService.Snapshot(r.Context())
	if err != nil {
		common.RespondWithDomainError(w, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, snapshot)
}

// AuthConfig is admin-only: it reports the effective security policy, never
// secrets.
func (h *StatsHandler) AuthConfig(w http.ResponseWriter, r *http.Request) {
	common.RespondWithJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"config":  h.statsService.AuthPolicy(),
	})
}
