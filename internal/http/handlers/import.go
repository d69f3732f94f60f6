package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/accredify/accredify-backend/internal/http/response"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
	"github.com/accredify/accredify-backend/internal/services"
)

type ImportHandler struct {
	log      *logger.Logger
	importer services.ImportService
}

func NewImportHandler(log *logger.Logger, importer services.ImportService) *ImportHandler {
	return &ImportHandler{
		log:      log.With("handler", "ImportHandler"),
		importer: importer,
	}
}

// POST /api/projects/:id/import
//
// Multipart upload with the checklist CSV under the "file" field.
func (h *ImportHandler) ImportChecklist(c *gin.Context) {
	projectID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "missing_file", err)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, "unreadable_file", err)
		return
	}
	defer f.Close()

	report, err := h.importer.ImportCSV(c.Request.Context(), projectID, f)
	if err != nil {
		h.log.Error("ImportChecklist failed", "error", err, "project_id", projectID)
		respondServiceError(c, err)
		return
	}
	response.RespondOK(c, report)
}
