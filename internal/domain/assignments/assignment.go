package assignments

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/accredify/accredify-backend/internal/domain/compliance"
)

type AssignmentStatus string

const (
	AssignmentNotStarted    AssignmentStatus = "NotStarted"
	AssignmentInProgress    AssignmentStatus = "InProgress"
	AssignmentPendingReview AssignmentStatus = "PendingReview"
	AssignmentVerified      AssignmentStatus = "Verified"
)

// Assignment scopes a project's checklist to one department for a date range.
// Creating one fans out an AssignmentItem per active obligation in the
// project.
type Assignment struct {
	ID           uuid.UUID           `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID    uuid.UUID           `gorm:"type:uuid;not null;index:idx_assignment_project_dept,unique,priority:1" json:"project_id"`
	Project      *compliance.Project `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"project,omitempty"`
	DepartmentID uuid.UUID           `gorm:"type:uuid;not null;index:idx_assignment_project_dept,unique,priority:2" json:"department_id"`

	StartDate time.Time        `gorm:"column:start_date;type:date;not null" json:"start_date"`
	DueDate   time.Time        `gorm:"column:due_date;type:date;not null" json:"due_date"`
	Status    AssignmentStatus `gorm:"column:status;not null;default:'NotStarted'" json:"status"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Assignment) TableName() string { return "assignment" }

func (a *Assignment) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
