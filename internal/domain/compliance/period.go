package compliance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EvidencePeriod is a materialized view row: one expected calendar window for
// a recurring obligation and how much evidence actually landed in it. Never
// authoritative; any divergence is resolved by recomputation from Obligation
// plus EvidenceRecord, not by reconciling these rows.
type EvidencePeriod struct {
	ID           uuid.UUID   `gorm:"type:uuid;primaryKey" json:"id"`
	ObligationID uuid.UUID   `gorm:"type:uuid;not null;index:idx_evidence_period,unique,priority:1" json:"obligation_id"`
	Obligation   *Obligation `gorm:"constraint:OnDelete:CASCADE;foreignKey:ObligationID;references:ID" json:"obligation,omitempty"`

	PeriodStart time.Time `gorm:"column:period_start;type:date;not null;index:idx_evidence_period,unique,priority:2" json:"period_start"`
	PeriodEnd   time.Time `gorm:"column:period_end;type:date;not null;index:idx_evidence_period,unique,priority:3" json:"period_end"`

	ExpectedCount int  `gorm:"column:expected_count;not null;default:1" json:"expected_count"`
	ActualCount   int  `gorm:"column:actual_count;not null;default:0" json:"actual_count"`
	IsCompliant   bool `gorm:"column:is_compliant;not null;default:false" json:"is_compliant"`

	CreatedAt time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time `gorm:"not null" json:"updated_at"`
}

func (EvidencePeriod) TableName() string { return "evidence_period" }

func (p *EvidencePeriod) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
