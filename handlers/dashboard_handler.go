package handlers

import (
	"net/http"

	"github.com/Dosada05/chess-league/services"
)

type DashboardHandler struct {
	dashboardService services.DashboardService
}

func NewDashboardHandler(ds services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: ds}
}

// GetStats godoc
// @Summary League totals
// @Tags dashboard
// @Produce json
// @Success 200 {object} models.DashboardStats
// @Security BasicAuth
// @Security BearerAuth
// @Router /stats [get]
func (h *DashboardHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboardService.GetStats(r.Context())
	if err != nil {
		serverErrorResponse(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusOK, jsonResponse{"stats": stats}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// Ping godoc
// @Summary Liveness check
// @Tags health
// @Produce plain
// @Success 200 {string} string "pong"
// @Router /ping [get]
func Ping(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("pong"))
}
