package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	types "github.com/accredify/accredify-backend/internal/domain"
	"github.com/accredify/accredify-backend/internal/http/middleware"
	"github.com/accredify/accredify-backend/internal/http/response"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
	"github.com/accredify/accredify-backend/internal/services"
)

type AssignmentHandler struct {
	log         *logger.Logger
	assignments services.AssignmentService
	workflow    services.WorkflowService
}

func NewAssignmentHandler(
	log *logger.Logger,
	assignments services.AssignmentService,
	workflow services.WorkflowService,
) *AssignmentHandler {
	return &AssignmentHandler{
		log:         log.With("handler", "AssignmentHandler"),
		assignments: assignments,
		workflow:    workflow,
	}
}

type createAssignmentRequest struct {
	ProjectID    uuid.UUID `json:"project_id" binding:"required"`
	DepartmentID uuid.UUID `json:"department_id" binding:"required"`
	StartDate    time.Time `json:"start_date" binding:"required"`
	DueDate      time.Time `json:"due_date" binding:"required"`
}

// POST /api/assignments
func (h *AssignmentHandler) CreateAssignment(c *gin.Context) {
	var req createAssignmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	asg, items, err := h.assignments.Create(c.Request.Context(), services.CreateAssignmentInput{
		ProjectID:    req.ProjectID,
		DepartmentID: req.DepartmentID,
		StartDate:    req.StartDate,
		DueDate:      req.DueDate,
	})
	if err != nil {
		h.log.Error("CreateAssignment failed", "error", err, "project_id", req.ProjectID)
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"assignment": asg, "items": items})
}

// GET /api/assignments/:id
func (h *AssignmentHandler) GetAssignment(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	asg, items, err := h.assignments.Get(c.Request.Context(), id)
	if err != nil {
		h.log.Error("GetAssignment failed", "error", err, "assignment_id", id)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assignment": asg, "items": items})
}

// GET /api/projects/:id/assignments
func (h *AssignmentHandler) ListByProject(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	list, err := h.assignments.ListByProject(c.Request.Context(), projectID)
	if err != nil {
		h.log.Error("ListByProject failed", "error", err, "project_id", projectID)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assignments": list})
}

// GET /api/departments/:id/assignments
func (h *AssignmentHandler) ListByDepartment(c *gin.Context) {
	departmentID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	list, err := h.assignments.ListByDepartment(c.Request.Context(), departmentID)
	if err != nil {
		h.log.Error("ListByDepartment failed", "error", err, "department_id", departmentID)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"assignments": list})
}

type transitionRequest struct {
	Status types.ItemStatus `json:"status" binding:"required"`
	Note   string           `json:"note"`
}

// POST /api/items/:id/transition
func (h *AssignmentHandler) TransitionItem(c *gin.Context) {
	caps, ok := middleware.CapabilitiesFrom(c)
	if !ok || caps.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", nil)
		return
	}
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	item, err := h.workflow.Transition(c.Request.Context(), caps, itemID, req.Status, req.Note)
	if err != nil {
		h.log.Warn("TransitionItem rejected", "error", err, "item_id", itemID, "target", req.Status)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, item)
}

// GET /api/items/:id/history
func (h *AssignmentHandler) ItemHistory(c *gin.Context) {
	itemID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	history, err := h.workflow.History(c.Request.Context(), itemID)
	if err != nil {
		h.log.Error("ItemHistory failed", "error", err, "item_id", itemID)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"history": history})
}
