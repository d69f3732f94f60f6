package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/accredify/accredify-backend/internal/data/repos"
	types "github.com/accredify/accredify-backend/internal/domain"
	"github.com/accredify/accredify-backend/internal/http/middleware"
	"github.com/accredify/accredify-backend/internal/http/response"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
	"github.com/accredify/accredify-backend/internal/services"
)

type ObligationHandler struct {
	log         *logger.Logger
	obligations repos.ObligationRepo
	compliance  services.ComplianceService
	coverage    services.CoverageService
}

func NewObligationHandler(
	log *logger.Logger,
	obligations repos.ObligationRepo,
	compliance services.ComplianceService,
	coverage services.CoverageService,
) *ObligationHandler {
	return &ObligationHandler{
		log:         log.With("handler", "ObligationHandler"),
		obligations: obligations,
		compliance:  compliance,
		coverage:    coverage,
	}
}

// GET /api/projects/:id/obligations
func (h *ObligationHandler) ListByProject(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	list, err := h.obligations.ListByProject(c.Request.Context(), nil, projectID)
	if err != nil {
		h.log.Error("ListByProject failed", "error", err, "project_id", projectID)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"obligations": list})
}

// GET /api/obligations/:id
func (h *ObligationHandler) GetObligation(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	ob, err := h.obligations.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		h.log.Error("GetObligation failed", "error", err, "obligation_id", id)
		respondServiceError(c, err)
		return
	}
	if ob == nil {
		response.RespondError(c, http.StatusNotFound, "obligation_not_found", nil)
		return
	}
	response.RespondOK(c, ob)
}

// GET /api/obligations/:id/status
//
// Read-side compute: derives the current compliance picture without writing.
func (h *ObligationHandler) GetStatus(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	res, err := h.compliance.Status(c.Request.Context(), id)
	if err != nil {
		h.log.Error("GetStatus failed", "error", err, "obligation_id", id)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/obligations/:id/recalculate
func (h *ObligationHandler) Recalculate(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	res, err := h.compliance.Recalculate(c.Request.Context(), id)
	if err != nil {
		h.log.Error("Recalculate failed", "error", err, "obligation_id", id)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, res)
}

type overrideStatusRequest struct {
	Status types.ComplianceStatus `json:"status" binding:"required"`
	Note   string                 `json:"note" binding:"required"`
}

// POST /api/obligations/:id/override
//
// Manual override is limited to quality admins; the audit trail records the
// acting user, never "system".
func (h *ObligationHandler) OverrideStatus(c *gin.Context) {
	caps, ok := middleware.CapabilitiesFrom(c)
	if !ok || caps.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	if !caps.QualityAdmin() {
		response.RespondError(c, http.StatusForbidden, "permission_denied", nil)
		return
	}
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req overrideStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.compliance.OverrideStatus(c.Request.Context(), caps.UserID, id, req.Status, req.Note); err != nil {
		h.log.Error("OverrideStatus failed", "error", err, "obligation_id", id)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"overridden": true})
}

// GET /api/obligations/:id/history
func (h *ObligationHandler) History(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	history, err := h.compliance.History(c.Request.Context(), id)
	if err != nil {
		h.log.Error("History failed", "error", err, "obligation_id", id)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"history": history})
}
