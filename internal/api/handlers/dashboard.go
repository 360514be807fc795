package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/dom/college-tracker/internal/api/middleware"
	"github.com/dom/college-tracker/internal/service"
)

type DashboardHandler struct {
	dashboardService *service.DashboardService
}

func NewDashboardHandler(dashboardService *service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

func (h *DashboardHandler) Get(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "Authentication required")
		return
	}

	payload, err := h.dashboardService.Build(r.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrStudentNotFound) {
			middleware.RecordDashboardBuild("not_found")
			writeError(w, http.StatusNotFound, "Student not found")
			return
		}
		middleware.RecordDashboardBuild("error")
		log.Printf("ERROR [handlers.Dashboard] failed to build dashboard for %s: %v", userID, err)
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	middleware.RecordDashboardBuild("success")
	writeJSON(w, http.StatusOK, payload)
}
