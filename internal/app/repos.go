package app

import (
	"gorm.io/gorm"

	"github.com/accredify/accredify-backend/internal/data/repos"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
)

type Repos struct {
	Project    repos.ProjectRepo
	Section    repos.SectionRepo
	Standard   repos.StandardRepo
	Obligation repos.ObligationRepo
	Evidence   repos.EvidenceRepo
	Period     repos.PeriodRepo
	Audit      repos.AuditRepo
	Assignment repos.AssignmentRepo
	Item       repos.ItemRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Project:    repos.NewProjectRepo(db, log),
		Section:    repos.NewSectionRepo(db, log),
		Standard:   repos.NewStandardRepo(db, log),
		Obligation: repos.NewObligationRepo(db, log),
		Evidence:   repos.NewEvidenceRepo(db, log),
		Period:     repos.NewPeriodRepo(db, log),
		Audit:      repos.NewAuditRepo(db, log),
		Assignment: repos.NewAssignmentRepo(db, log),
		Item:       repos.NewItemRepo(db, log),
	}
}
