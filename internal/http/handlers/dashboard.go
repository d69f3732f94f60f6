package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/accredify/accredify-backend/internal/http/response"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
	"github.com/accredify/accredify-backend/internal/services"
)

type DashboardHandler struct {
	log       *logger.Logger
	dashboard services.DashboardService
}

func NewDashboardHandler(log *logger.Logger, dashboard services.DashboardService) *DashboardHandler {
	return &DashboardHandler{
		log:       log.With("handler", "DashboardHandler"),
		dashboard: dashboard,
	}
}

// GET /api/projects/:id/summary
func (h *DashboardHandler) ProjectSummary(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	summary, err := h.dashboard.ProjectSummary(c.Request.Context(), projectID)
	if err != nil {
		h.log.Error("ProjectSummary failed", "error", err, "project_id", projectID)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, summary)
}

// GET /api/projects/:id/due-soon?days=30
func (h *DashboardHandler) DueSoon(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	entries, err := h.dashboard.DueSoon(c.Request.Context(), projectID, days)
	if err != nil {
		h.log.Error("DueSoon failed", "error", err, "project_id", projectID)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"due_soon": entries})
}
