package compliance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EvidenceRecord is one submission against an Obligation. Rows are immutable
// once created apart from metadata corrections (title/description/note).
//
// PeriodStart/PeriodEnd tag the calendar window this evidence covers.
// Evidence without period bounds never counts toward recurring coverage.
type EvidenceRecord struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ObligationID uuid.UUID   `gorm:"type:uuid;not null;index" json:"obligation_id"`
	Obligation   *Obligation `gorm:"constraint:OnDelete:CASCADE;foreignKey:ObligationID;references:ID" json:"obligation,omitempty"`

	// Set when the submission arrived through a checklist assignment; the
	// workflow engine uses it for the NotStarted -> InProgress auto-advance.
	AssignmentItemID *uuid.UUID `gorm:"type:uuid;column:assignment_item_id;index" json:"assignment_item_id,omitempty"`

	Title         string       `gorm:"column:title;not null" json:"title"`
	Kind          EvidenceKind `gorm:"column:kind;not null;default:'file'" json:"kind"`
	StorageKey    string       `gorm:"column:storage_key" json:"storage_key,omitempty"`
	Description   string       `gorm:"column:description;type:text" json:"description,omitempty"`
	Note          string       `gorm:"column:note;type:text" json:"note,omitempty"`
	ReferenceCode string       `gorm:"column:reference_code" json:"reference_code,omitempty"`

	PeriodStart *time.Time `gorm:"column:period_start;type:date;index" json:"period_start,omitempty"`
	PeriodEnd   *time.Time `gorm:"column:period_end;type:date;index" json:"period_end,omitempty"`

	SubmittedBy *uuid.UUID `gorm:"type:uuid;column:submitted_by" json:"submitted_by,omitempty"`
	SubmittedAt time.Time  `gorm:"column:submitted_at;not null" json:"submitted_at"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (EvidenceRecord) TableName() string { return "evidence_record" }

func (e *EvidenceRecord) BeforeCreate(*gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.SubmittedAt.IsZero() {
		e.SubmittedAt = time.Now()
	}
	return nil
}
