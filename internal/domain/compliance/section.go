package compliance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Section groups standards within a project ("Area" in older imports).
// Name lookups are case-insensitive at the repo layer; the unique index is a
// backstop against exact duplicates.
type Section struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	ProjectID uuid.UUID      `gorm:"type:uuid;not null;index:idx_section_project_name,unique,priority:1" json:"project_id"`
	Project   *Project       `gorm:"constraint:OnDelete:CASCADE;foreignKey:ProjectID;references:ID" json:"project,omitempty"`
	Name      string         `gorm:"column:name;not null;index:idx_section_project_name,unique,priority:2" json:"name"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Section) TableName() string { return "section" }

func (s *Section) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// Standard is a named regulation/standard within a section.
type Standard struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SectionID uuid.UUID      `gorm:"type:uuid;not null;index:idx_standard_section_name,unique,priority:1" json:"section_id"`
	Section   *Section       `gorm:"constraint:OnDelete:CASCADE;foreignKey:SectionID;references:ID" json:"section,omitempty"`
	Name      string         `gorm:"column:name;not null;index:idx_standard_section_name,unique,priority:2" json:"name"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Standard) TableName() string { return "standard" }

func (s *Standard) BeforeCreate(*gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}
