package repos

import (
	"github.com/accredify/accredify-backend/internal/data/repos/assignments"
	"github.com/accredify/accredify-backend/internal/data/repos/compliance"
	"github.com/accredify/accredify-backend/internal/pkg/logger"
	"gorm.io/gorm"
)

type ProjectRepo = compliance.ProjectRepo
type SectionRepo = compliance.SectionRepo
type StandardRepo = compliance.StandardRepo
type ObligationRepo = compliance.ObligationRepo
type EvidenceRepo = compliance.EvidenceRepo
type PeriodRepo = compliance.PeriodRepo
type AuditRepo = compliance.AuditRepo

type AssignmentRepo = assignments.AssignmentRepo
type ItemRepo = assignments.ItemRepo

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return compliance.NewProjectRepo(db, baseLog)
}
func NewSectionRepo(db *gorm.DB, baseLog *logger.Logger) SectionRepo {
	return compliance.NewSectionRepo(db, baseLog)
}
func NewStandardRepo(db *gorm.DB, baseLog *logger.Logger) StandardRepo {
	return compliance.NewStandardRepo(db, baseLog)
}
func NewObligationRepo(db *gorm.DB, baseLog *logger.Logger) ObligationRepo {
	return compliance.NewObligationRepo(db, baseLog)
}
func NewEvidenceRepo(db *gorm.DB, baseLog *logger.Logger) EvidenceRepo {
	return compliance.NewEvidenceRepo(db, baseLog)
}
func NewPeriodRepo(db *gorm.DB, baseLog *logger.Logger) PeriodRepo {
	return compliance.NewPeriodRepo(db, baseLog)
}
func NewAuditRepo(db *gorm.DB, baseLog *logger.Logger) AuditRepo {
	return compliance.NewAuditRepo(db, baseLog)
}
func NewAssignmentRepo(db *gorm.DB, baseLog *logger.Logger) AssignmentRepo {
	return assignments.NewAssignmentRepo(db, baseLog)
}
func NewItemRepo(db *gorm.DB, baseLog *logger.Logger) ItemRepo {
	return assignments.NewItemRepo(db, baseLog)
}
