package app

import (
	"github.com/accredify/accredify-backend/internal/http/handlers"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
)

type Handlers struct {
	Health     *handlers.HealthHandler
	Project    *handlers.ProjectHandler
	Obligation *handlers.ObligationHandler
	Evidence   *handlers.EvidenceHandler
	Assignment *handlers.AssignmentHandler
	Import     *handlers.ImportHandler
	Dashboard  *handlers.DashboardHandler
}

func wireHandlers(log *logger.Logger, reposet Repos, serviceset Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     handlers.NewHealthHandler(),
		Project:    handlers.NewProjectHandler(log, reposet.Project, reposet.Section),
		Obligation: handlers.NewObligationHandler(log, reposet.Obligation, serviceset.Compliance, serviceset.Coverage),
		Evidence:   handlers.NewEvidenceHandler(log, serviceset.Evidence),
		Assignment: handlers.NewAssignmentHandler(log, serviceset.Assignment, serviceset.Workflow),
		Import:     handlers.NewImportHandler(log, serviceset.Importer),
		Dashboard:  handlers.NewDashboardHandler(log, serviceset.Dashboard),
	}
}
