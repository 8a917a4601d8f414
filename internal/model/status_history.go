package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EntityType enum constants for history and notification records
const (
	EntityOrder  = "ORDER"
	EntityRepair = "REPAIR"
	EntityReturn = "RETURN"
)

// StatusHistory is an append-only audit record of a single status transition.
// One row per transition, including the initial creation transition. Rows are
// never updated or deleted.
type StatusHistory struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	EntityType string     `gorm:"type:varchar(20);not null;index:idx_history_entity" json:"entity_type"` // ORDER, REPAIR, RETURN
	EntityID   uuid.UUID  `gorm:"type:uuid;not null;index:idx_history_entity" json:"entity_id"`
	Status     string     `gorm:"type:varchar(30);not null" json:"status"`
	Notes      string     `gorm:"type:text" json:"notes"`
	ChangedBy  *uuid.UUID `gorm:"type:uuid" json:"changed_by"`
	Actor      *User      `gorm:"foreignKey:ChangedBy" json:"actor,omitempty"`
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}

func (h *StatusHistory) BeforeCreate(tx *gorm.DB) error {
	if h.ID == uuid.Nil {
		h.ID = uuid.New()
	}
	return nil
}
