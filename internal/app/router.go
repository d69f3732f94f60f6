package app

import (
	"github.com/gin-gonic/gin"

	internalhttp "github.com/accredify/accredify-backend/internal/http"
	"github.com/accredify/accredify-backend/internal/observability"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
)

func wireRouter(log *logger.Logger, handlerset Handlers, mw Middleware) *gin.Engine {
	return internalhttp.NewRouter(internalhttp.RouterConfig{
		Log:            log,
		AuthMiddleware: mw.Auth,
		TracingEnabled: observability.Enabled(),

		HealthHandler:     handlerset.Health,
		ProjectHandler:    handlerset.Project,
		ObligationHandler: handlerset.Obligation,
		EvidenceHandler:   handlerset.Evidence,
		AssignmentHandler: handlerset.Assignment,
		ImportHandler:     handlerset.Import,
		DashboardHandler:  handlerset.Dashboard,
	})
}
