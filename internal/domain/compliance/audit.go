package compliance

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatusChangeAudit is an append-only trail entry. ActorID is nil for
// system-computed changes. Rows are never mutated or deleted and are not
// used to derive current state.
type StatusChangeAudit struct {
	ID         uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	EntityType string     `gorm:"column:entity_type;not null;index:idx_audit_entity,priority:1" json:"entity_type"`
	EntityID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_audit_entity,priority:2" json:"entity_id"`
	OldStatus  string     `gorm:"column:old_status;not null" json:"old_status"`
	NewStatus  string     `gorm:"column:new_status;not null" json:"new_status"`
	ActorID    *uuid.UUID `gorm:"type:uuid;column:actor_id" json:"actor_id,omitempty"`
	Note       string     `gorm:"column:note;type:text" json:"note,omitempty"`
	CreatedAt  time.Time  `gorm:"not null" json:"created_at"`
}

func (StatusChangeAudit) TableName() string { return "status_change_audit" }

func (a *StatusChangeAudit) BeforeCreate(*gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
