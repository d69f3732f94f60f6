package compliance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Obligation is a single trackable compliance requirement ("indicator").
//
// Invariants:
//   - ScheduleKind == ScheduleRecurring with a canonical NormalizedFrequency
//     implies NextDueDate is computable; ScheduleOneTime keeps NextDueDate
//     nil or a single fixed deadline.
//   - IdentityKey is derived from (project, section name, standard name,
//     requirement) and is stable across imports; it is the upsert key.
type Obligation struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID  uuid.UUID `gorm:"type:uuid;not null;index" json:"project_id"`
	Project    *Project  `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"project,omitempty"`
	SectionID  uuid.UUID `gorm:"type:uuid;not null;index" json:"section_id"`
	Section    *Section  `gorm:"constraint:OnDelete:CASCADE;foreignKey:SectionID;references:ID" json:"section,omitempty"`
	StandardID uuid.UUID `gorm:"type:uuid;not null;index" json:"standard_id"`
	Standard   *Standard `gorm:"constraint:OnDelete:CASCADE;foreignKey:StandardID;references:ID" json:"standard,omitempty"`

	IdentityKey string `gorm:"column:identity_key;not null;uniqueIndex" json:"identity_key"`

	Requirement       string `gorm:"column:requirement;type:text;not null" json:"requirement"`
	EvidenceRequired  string `gorm:"column:evidence_required;type:text" json:"evidence_required,omitempty"`
	ResponsiblePerson string `gorm:"column:responsible_person" json:"responsible_person,omitempty"`
	AssigneeEmail     string `gorm:"column:assignee_email" json:"assignee_email,omitempty"`
	ComplianceNotes   string `gorm:"column:compliance_notes;type:text" json:"compliance_notes,omitempty"`

	// FrequencyText is the raw text as imported; NormalizedFrequency is
	// empty when no canonical frequency could be derived from it.
	FrequencyText       string       `gorm:"column:frequency_text" json:"frequency_text,omitempty"`
	NormalizedFrequency Frequency    `gorm:"column:normalized_frequency" json:"normalized_frequency,omitempty"`
	ScheduleKind        ScheduleKind `gorm:"column:schedule_kind;not null;default:'one_time'" json:"schedule_kind"`
	NextDueDate         *time.Time   `gorm:"column:next_due_date;type:date" json:"next_due_date,omitempty"`

	ComplianceStatus ComplianceStatus `gorm:"column:compliance_status;not null;default:'not_compliant'" json:"compliance_status"`
	Score            int              `gorm:"column:score;not null;default:10" json:"score"`
	Active           bool             `gorm:"column:active;not null;default:true" json:"active"`

	// Advisory classifier output, kept for traceability only.
	AnalysisData       datatypes.JSON `gorm:"column:analysis_data;type:jsonb" json:"analysis_data,omitempty"`
	AnalysisConfidence *float64       `gorm:"column:analysis_confidence" json:"analysis_confidence,omitempty"`

	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Obligation) TableName() string { return "obligation" }

func (o *Obligation) BeforeCreate(*gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}
