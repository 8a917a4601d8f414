package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// NotificationChannel enum constants
const (
	ChannelSMS      = "SMS"
	ChannelEmail    = "EMAIL"
	ChannelWhatsapp = "WHATSAPP"
)

// Notification type enum constants
const (
	NotifyOrderCreated  = "ORDER_CREATED"
	NotifyOrderStatus   = "ORDER_STATUS"
	NotifyRepairCreated = "REPAIR_CREATED"
	NotifyRepairStatus  = "REPAIR_STATUS"
	NotifyRepairUpdated = "REPAIR_UPDATED"
	NotifyReturnStatus  = "RETURN_STATUS"
)

// Notification dispatch status constants
const (
	NotificationPending = "PENDING"
	NotificationSent    = "SENT"
)

// Notification is the per-dispatch audit record. It is created before any
// delivery attempt so history exists even when every channel fails, and is
// never deleted. ChannelResults holds a JSON map of channel -> sent/failed.
type Notification struct {
	ID             uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	CustomerID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer       *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Type           string     `gorm:"type:varchar(30);not null" json:"type"`
	EntityType     string     `gorm:"type:varchar(20);index:idx_notification_entity" json:"entity_type"`
	EntityID       *uuid.UUID `gorm:"type:uuid;index:idx_notification_entity" json:"entity_id"`
	Channels       string     `gorm:"type:jsonb;not null;default:'[]'" json:"channels"`
	ChannelResults string     `gorm:"type:jsonb;not null;default:'{}'" json:"channel_results"`
	Payload        string     `gorm:"type:jsonb;not null;default:'{}'" json:"payload"`
	Status         string     `gorm:"type:varchar(20);not null;default:'PENDING'" json:"status"`
	SentAt         *time.Time `json:"sent_at"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

func (n *Notification) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
