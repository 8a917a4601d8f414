package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RepairType enum constants
const (
	RepairCleaning     = "CLEANING"
	RepairPolishing    = "POLISHING"
	RepairResizing     = "RESIZING"
	RepairStoneSetting = "STONE_SETTING"
	RepairEngraving    = "ENGRAVING"
	RepairOther        = "OTHER"
)

// RepairStatus is the closed set of repair ticket states
type RepairStatus string

const (
	RepairReceived       RepairStatus = "received"
	RepairAssessed       RepairStatus = "assessed"
	RepairApproved       RepairStatus = "approved"
	RepairInProgress     RepairStatus = "in_progress"
	RepairCompleted      RepairStatus = "completed"
	RepairReadyForPickup RepairStatus = "ready_for_pickup"
	RepairDelivered      RepairStatus = "delivered"
	RepairCancelled      RepairStatus = "cancelled"
)

var repairTransitions = map[RepairStatus][]RepairStatus{
	RepairReceived:       {RepairAssessed, RepairCancelled},
	RepairAssessed:       {RepairApproved, RepairCancelled},
	RepairApproved:       {RepairInProgress, RepairCancelled},
	RepairInProgress:     {RepairCompleted, RepairCancelled},
	RepairCompleted:      {RepairReadyForPickup},
	RepairReadyForPickup: {RepairDelivered},
	RepairDelivered:      {},
	RepairCancelled:      {},
}

// ActiveRepairStatuses are the states that appear on the technician work queue.
var ActiveRepairStatuses = []RepairStatus{RepairReceived, RepairAssessed, RepairApproved, RepairInProgress}

// CanTransitionTo reports whether next is a legal transition from s.
func (s RepairStatus) CanTransitionTo(next RepairStatus) bool {
	for _, allowed := range repairTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseRepairStatus validates a raw status string against the closed set.
func ParseRepairStatus(raw string) (RepairStatus, bool) {
	s := RepairStatus(raw)
	_, ok := repairTransitions[s]
	return s, ok
}

// RepairRequest is a post-sale service ticket attached to exactly one order.
// Photo sets are stored as JSON-encoded string arrays and replaced wholesale
// on upload.
type RepairRequest struct {
	ID                  uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	RepairNumber        string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"repair_number"`
	OrderID             uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	Order               *Order          `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	ItemDescription     string          `gorm:"type:text;not null" json:"item_description"`
	ProblemDescription  string          `gorm:"type:text;not null" json:"problem_description"`
	RepairType          string          `gorm:"type:varchar(30);not null" json:"repair_type"`
	Status              RepairStatus    `gorm:"type:varchar(30);not null;default:'received';index" json:"status"`
	EstimatedCost       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"estimated_cost"`
	ActualCost          decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"actual_cost"`
	EstimatedCompletion *time.Time      `json:"estimated_completion"`
	BeforePhotos        string          `gorm:"type:jsonb;default:'[]'" json:"before_photos"`
	AfterPhotos         string          `gorm:"type:jsonb;default:'[]'" json:"after_photos"`
	RequiresApproval    bool            `gorm:"default:false" json:"requires_approval"`
	CustomerApproved    bool            `gorm:"default:false" json:"customer_approved"`
	TechnicianID        *uuid.UUID      `gorm:"type:uuid;index" json:"technician_id"`
	Technician          *User           `gorm:"foreignKey:TechnicianID" json:"technician,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func (r *RepairRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
