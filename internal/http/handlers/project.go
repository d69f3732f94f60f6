package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accredify/accredify-backend/internal/data/repos"
	types "github.com/accredify/accredify-backend/internal/domain"
	"github.com/accredify/accredify-backend/internal/http/response"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
)

type ProjectHandler struct {
	log      *logger.Logger
	projects repos.ProjectRepo
	sections repos.SectionRepo
}

func NewProjectHandler(log *logger.Logger, projects repos.ProjectRepo, sections repos.SectionRepo) *ProjectHandler {
	return &ProjectHandler{
		log:      log.With("handler", "ProjectHandler"),
		projects: projects,
		sections: sections,
	}
}

type createProjectRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
}

// POST /api/projects
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_body", err)
		return
	}
	p, err := h.projects.Create(c.Request.Context(), nil, &types.Project{
		Name:        req.Name,
		Description: req.Description,
	})
	if err != nil {
		h.log.Error("CreateProject failed", "error", err)
		respondServiceError(c, err)
		return
	}
	response.RespondCreated(c, p)
}

// GET /api/projects
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	list, err := h.projects.List(c.Request.Context(), nil)
	if err != nil {
		h.log.Error("ListProjects failed", "error", err)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"projects": list})
}

// GET /api/projects/:id
func (h *ProjectHandler) GetProject(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	p, err := h.projects.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		h.log.Error("GetProject failed", "error", err, "project_id", id)
		respondServiceError(c, err)
		return
	}
	if p == nil {
		response.RespondError(c, http.StatusNotFound, "project_not_found", nil)
		return
	}
	sections, err := h.sections.ListByProject(c.Request.Context(), nil, id)
	if err != nil {
		h.log.Error("GetProject failed (load sections)", "error", err, "project_id", id)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"project": p, "sections": sections})
}
