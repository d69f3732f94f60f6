package app

import (
	"strings"

	"gorm.io/gorm"

	"github.com/accredify/accredify-backend/internal/pkg/logger"
	"github.com/accredify/accredify-backend/internal/services"
	"github.com/accredify/accredify-backend/internal/utils"
)

type Services struct {
	Frequency  services.FrequencyService
	Coverage   services.CoverageService
	Compliance services.ComplianceService
	Workflow   services.WorkflowService
	Evidence   services.EvidenceService
	Assignment services.AssignmentService
	Dashboard  services.DashboardService
	Importer   services.ImportService
}

func wireServices(db *gorm.DB, log *logger.Logger, reposet Repos, clients Clients) Services {
	log.Info("Wiring services...")

	frequency := services.NewFrequencyService(log)
	coverage := services.NewCoverageService(log, frequency)
	compliance := services.NewComplianceService(
		log,
		db,
		reposet.Obligation,
		reposet.Evidence,
		reposet.Period,
		reposet.Audit,
		coverage,
		frequency,
		clients.Cache,
	)
	workflow := services.NewWorkflowService(log, db, reposet.Item, reposet.Assignment, reposet.Audit)
	evidence := services.NewEvidenceService(log, reposet.Evidence, reposet.Item, reposet.Obligation, compliance, workflow)
	assignment := services.NewAssignmentService(log, db, reposet.Assignment, reposet.Item, reposet.Obligation)
	dashboard := services.NewDashboardService(log, reposet.Project, reposet.Obligation)
	// KNOWN_ASSIGNEE_EMAILS is a comma-separated allow list. Leaving it unset
	// turns unmatched-assignee reporting off.
	var users services.UserDirectory
	if raw := utils.GetEnv("KNOWN_ASSIGNEE_EMAILS", "", log); raw != "" {
		users = services.NewStaticUserDirectory(strings.Split(raw, ","))
	}

	importer := services.NewImportService(
		log,
		db,
		reposet.Project,
		reposet.Section,
		reposet.Standard,
		reposet.Obligation,
		frequency,
		compliance,
		clients.Gemini,
		users,
	)

	return Services{
		Frequency:  frequency,
		Coverage:   coverage,
		Compliance: compliance,
		Workflow:   workflow,
		Evidence:   evidence,
		Assignment: assignment,
		Dashboard:  dashboard,
		Importer:   importer,
	}
}
