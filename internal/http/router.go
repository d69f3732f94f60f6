package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/accredify/accredify-backend/internal/http/handlers"
	httpMW "github.com/accredify/accredify-backend/internal/http/middleware"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	AuthMiddleware *httpMW.AuthMiddleware
	TracingEnabled bool

	HealthHandler     *httpH.HealthHandler
	ProjectHandler    *httpH.ProjectHandler
	ObligationHandler *httpH.ObligationHandler
	EvidenceHandler   *httpH.EvidenceHandler
	AssignmentHandler *httpH.AssignmentHandler
	ImportHandler     *httpH.ImportHandler
	DashboardHandler  *httpH.DashboardHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.CORS())
	if cfg.TracingEnabled {
		r.Use(otelgin.Middleware("accredify-backend"))
	}

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Projects
		if cfg.ProjectHandler != nil {
			protected.POST("/projects", cfg.ProjectHandler.CreateProject)
			protected.GET("/projects", cfg.ProjectHandler.ListProjects)
			protected.GET("/projects/:id", cfg.ProjectHandler.GetProject)
		}

		// Obligations
		if cfg.ObligationHandler != nil {
			protected.GET("/projects/:id/obligations", cfg.ObligationHandler.ListByProject)
			protected.GET("/obligations/:id", cfg.ObligationHandler.GetObligation)
			protected.GET("/obligations/:id/status", cfg.ObligationHandler.GetStatus)
			protected.POST("/obligations/:id/recalculate", cfg.ObligationHandler.Recalculate)
			protected.POST("/obligations/:id/override", cfg.ObligationHandler.OverrideStatus)
			protected.GET("/obligations/:id/history", cfg.ObligationHandler.History)
		}

		// Evidence
		if cfg.EvidenceHandler != nil {
			protected.POST("/obligations/:id/evidence", cfg.EvidenceHandler.Submit)
			protected.GET("/obligations/:id/evidence", cfg.EvidenceHandler.ListByObligation)
			protected.GET("/items/:id/evidence", cfg.EvidenceHandler.ListByItem)
			protected.PATCH("/evidence/:id", cfg.EvidenceHandler.CorrectMetadata)
		}

		// Assignments and items
		if cfg.AssignmentHandler != nil {
			protected.POST("/assignments", cfg.AssignmentHandler.CreateAssignment)
			protected.GET("/assignments/:id", cfg.AssignmentHandler.GetAssignment)
			protected.GET("/projects/:id/assignments", cfg.AssignmentHandler.ListByProject)
			protected.GET("/departments/:id/assignments", cfg.AssignmentHandler.ListByDepartment)
			protected.POST("/items/:id/transition", cfg.AssignmentHandler.TransitionItem)
			protected.GET("/items/:id/history", cfg.AssignmentHandler.ItemHistory)
		}

		// Bulk import
		if cfg.ImportHandler != nil {
			protected.POST("/projects/:id/import", cfg.ImportHandler.ImportChecklist)
		}

		// Dashboard
		if cfg.DashboardHandler != nil {
			protected.GET("/projects/:id/summary", cfg.DashboardHandler.ProjectSummary)
			protected.GET("/projects/:id/due-soon", cfg.DashboardHandler.DueSoon)
		}
	}

	return r
}
