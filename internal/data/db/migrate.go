package db

import (
	types "github.com/accredify/accredify-backend/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(

		// Checklist hierarchy
		&types.Project{},
		&types.Section{},
		&types.Standard{},
		&types.Obligation{},

		// Evidence + derived coverage
		&types.EvidenceRecord{},
		&types.EvidencePeriod{},

		// Workflow
		&types.Assignment{},
		&types.AssignmentItem{},

		// Audit trail
		&types.StatusChangeAudit{},
	)
}
