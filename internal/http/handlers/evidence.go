package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/accredify/accredify-backend/internal/http/middleware"
	"github.com/accredify/accredify-backend/internal/http/response"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
	"github.com/accredify/accredify-backend/internal/services"
)

type EvidenceHandler struct {
	log      *logger.Logger
	evidence services.EvidenceService
}

func NewEvidenceHandler(log *logger.Logger, evidence services.EvidenceService) *EvidenceHandler {
	return &EvidenceHandler{
		log:      log.With("handler", "EvidenceHandler"),
		evidence: evidence,
	}
}

// POST /api/obligations/:id/evidence
func (h *EvidenceHandler) Submit(c *gin.Context) {
	caps, ok := middleware.CapabilitiesFrom(c)
	if !ok || caps.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	obligationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var in services.SubmitEvidenceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	in.ObligationID = obligationID

	rec, err := h.evidence.Submit(c.Request.Context(), caps.UserID, in)
	if err != nil {
		h.log.Error("Submit failed", "error", err, "obligation_id", obligationID)
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, rec)
}

// GET /api/obligations/:id/evidence
func (h *EvidenceHandler) ListByObligation(c *gin.Context) {
	obligationID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	list, err := h.evidence.ListByObligation(c.Request.Context(), obligationID)
	if err != nil {
		h.log.Error("ListByObligation failed", "error", err, "obligation_id", obligationID)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"evidence": list})
}

// GET /api/items/:id/evidence
func (h *EvidenceHandler) ListByItem(c *gin.Context) {
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	list, err := h.evidence.ListByItem(c.Request.Context(), itemID)
	if err != nil {
		h.log.Error("ListByItem failed", "error", err, "item_id", itemID)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"evidence": list})
}

type correctEvidenceRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Note        string `json:"note"`
}

// PATCH /api/evidence/:id
func (h *EvidenceHandler) CorrectMetadata(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req correctEvidenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	if err := h.evidence.CorrectMetadata(c.Request.Context(), id, req.Title, req.Description, req.Note); err != nil {
		h.log.Error("CorrectMetadata failed", "error", err, "evidence_id", id)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"updated": true})
}
