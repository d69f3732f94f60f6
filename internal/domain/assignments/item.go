package assignments

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/accredify/accredify-backend/internal/domain/compliance"
)

type ItemStatus string

const (
	ItemNotStarted ItemStatus = "NotStarted"
	ItemInProgress ItemStatus = "InProgress"
	ItemSubmitted  ItemStatus = "Submitted"
	ItemVerified   ItemStatus = "Verified"
	ItemRejected   ItemStatus = "Rejected"
)

func (s ItemStatus) Valid() bool {
	switch s {
	case ItemNotStarted, ItemInProgress, ItemSubmitted, ItemVerified, ItemRejected:
		return true
	}
	return false
}

// AssignmentItem is the workflow state of one Obligation within one
// Assignment. Exactly one row per (assignment, obligation); rows are created
// in bulk when the assignment is created and only ever mutated through the
// workflow state machine.
type AssignmentItem struct {
	ID           uuid.UUID              `gorm:"type:uuid;primaryKey" json:"id"`
	AssignmentID uuid.UUID              `gorm:"type:uuid;not null;index:idx_item_assignment_obligation,unique,priority:1" json:"assignment_id"`
	Assignment   *Assignment            `gorm:"constraint:OnDelete:CASCADE;foreignKey:AssignmentID;references:ID" json:"assignment,omitempty"`
	ObligationID uuid.UUID              `gorm:"type:uuid;not null;index:idx_item_assignment_obligation,unique,priority:2" json:"obligation_id"`
	Obligation   *compliance.Obligation `gorm:"constraint:OnDelete:CASCADE;foreignKey:ObligationID;references:ID" json:"obligation,omitempty"`

	Status            ItemStatus `gorm:"column:status;not null;default:'NotStarted'" json:"status"`
	CompletionPercent int        `gorm:"column:completion_percent;not null;default:0" json:"completion_percent"`

	LastUpdatedBy *uuid.UUID `gorm:"type:uuid;column:last_updated_by" json:"last_updated_by,omitempty"`
	LastUpdatedAt time.Time  `gorm:"column:last_updated_at;not null" json:"last_updated_at"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (AssignmentItem) TableName() string { return "assignment_item" }

func (i *AssignmentItem) BeforeCreate(*gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	if i.LastUpdatedAt.IsZero() {
		i.LastUpdatedAt = time.Now()
	}
	return nil
}
