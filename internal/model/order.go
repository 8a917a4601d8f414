package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderType enum constants
const (
	OrderTypeSale   = "SALE"
	OrderTypeRepair = "REPAIR"
	OrderTypeCustom = "CUSTOM"
)

// OrderStatus is the closed set of order states
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderConfirmed  OrderStatus = "confirmed"
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// orderTransitions encodes the status graph as data. Terminal states have no
// outgoing edges.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderPending:    {OrderConfirmed, OrderCancelled},
	OrderConfirmed:  {OrderInProgress, OrderCancelled},
	OrderInProgress: {OrderCompleted, OrderCancelled},
	OrderCompleted:  {},
	OrderCancelled:  {},
}

// CanTransitionTo reports whether next is a legal transition from s.
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, allowed := range orderTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseOrderStatus validates a raw status string against the closed set.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	s := OrderStatus(raw)
	_, ok := orderTransitions[s]
	return s, ok
}

// Order represents a commercial transaction (sale, repair intake, or custom work).
// The money breakdown is derived at creation via the pricing service and never
// hand-edited afterward: total = subtotal + making + wastage + gst.
type Order struct {
	ID                  uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderNumber         string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"order_number"`
	CustomerID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"customer_id"`
	Customer            *Customer       `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	StaffID             uuid.UUID       `gorm:"type:uuid;not null;index" json:"staff_id"`
	Staff               *User           `gorm:"foreignKey:StaffID" json:"staff,omitempty"`
	OrderType           string          `gorm:"type:varchar(20);not null" json:"order_type"` // SALE, REPAIR, CUSTOM
	Status              OrderStatus     `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Subtotal            decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"subtotal"`
	MakingCharges       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"making_charges"`
	WastageAmount       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"wastage_amount"`
	GSTAmount           decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"gst_amount"`
	TotalAmount         decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"total_amount"`
	SpecialInstructions string          `gorm:"type:text" json:"special_instructions"`
	EstimatedCompletion *time.Time      `json:"estimated_completion"`
	Items               []OrderItem     `gorm:"foreignKey:OrderID" json:"items"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	return nil
}

// OrderItem is a line item within an Order. Unit price is snapshotted from the
// catalog at creation; once the order leaves pending the rows are immutable
// apart from the customization text.
type OrderItem struct {
	ID            uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	JewelryItemID uuid.UUID       `gorm:"type:uuid;not null;index" json:"jewelry_item_id"`
	JewelryItem   *JewelryItem    `gorm:"foreignKey:JewelryItemID" json:"jewelry_item,omitempty"`
	Quantity      int             `gorm:"type:int;not null" json:"quantity"`
	UnitPrice     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	LineTotal     decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"line_total"`
	Customization string          `gorm:"type:text" json:"customization"`
	CreatedAt     time.Time       `json:"created_at"`
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
