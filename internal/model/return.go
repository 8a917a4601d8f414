package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ReturnType enum constants
const (
	ReturnTypeReturn   = "RETURN"
	ReturnTypeExchange = "EXCHANGE"
)

// RefundMethod enum constants
const (
	RefundMethodOriginal    = "ORIGINAL_PAYMENT"
	RefundMethodStoreCredit = "STORE_CREDIT"
	RefundMethodCash        = "CASH"
)

// ReturnStatus is the closed set of return request states
type ReturnStatus string

const (
	ReturnRequested ReturnStatus = "requested"
	ReturnApproved  ReturnStatus = "approved"
	ReturnRejected  ReturnStatus = "rejected"
	ReturnProcessed ReturnStatus = "processed"
	ReturnCompleted ReturnStatus = "completed"
	ReturnCancelled ReturnStatus = "cancelled"
)

// Rejected returns may be re-requested with a revised request; orders and
// repairs have no equivalent resurrection edge.
var returnTransitions = map[ReturnStatus][]ReturnStatus{
	ReturnRequested: {ReturnApproved, ReturnRejected, ReturnCancelled},
	ReturnApproved:  {ReturnProcessed, ReturnCancelled},
	ReturnRejected:  {ReturnRequested},
	ReturnProcessed: {ReturnCompleted},
	ReturnCompleted: {},
	ReturnCancelled: {},
}

// CanTransitionTo reports whether next is a legal transition from s.
func (s ReturnStatus) CanTransitionTo(next ReturnStatus) bool {
	for _, allowed := range returnTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// ParseReturnStatus validates a raw status string against the closed set.
func ParseReturnStatus(raw string) (ReturnStatus, bool) {
	s := ReturnStatus(raw)
	_, ok := returnTransitions[s]
	return s, ok
}

// ReturnWindowDays bounds return eligibility from the order creation date.
const ReturnWindowDays = 30

// ReturnRequest reverses or exchanges part of a completed order. Amounts are
// always derived server-side from the referenced order items.
type ReturnRequest struct {
	ID               uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReturnNumber     string          `gorm:"type:varchar(30);uniqueIndex;not null" json:"return_number"`
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	Order            *Order          `gorm:"foreignKey:OrderID" json:"order,omitempty"`
	ReturnType       string          `gorm:"type:varchar(20);not null" json:"return_type"` // RETURN, EXCHANGE
	Reason           string          `gorm:"type:text;not null" json:"reason"`
	Status           ReturnStatus    `gorm:"type:varchar(20);not null;default:'requested';index" json:"status"`
	ReturnAmount     decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"return_amount"`
	ExchangeAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"exchange_amount"`
	AmountDifference decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0" json:"amount_difference"` // exchange - return
	RefundMethod     string          `gorm:"type:varchar(30)" json:"refund_method"`
	RefundReference  string          `gorm:"type:varchar(100)" json:"refund_reference"`
	ProcessedByID    *uuid.UUID      `gorm:"type:uuid" json:"processed_by_id"`
	ProcessedBy      *User           `gorm:"foreignKey:ProcessedByID" json:"processed_by,omitempty"`
	Items            []ReturnItem    `gorm:"foreignKey:ReturnRequestID" json:"items"`
	ExchangeItems    []ExchangeItem  `gorm:"foreignKey:ReturnRequestID" json:"exchange_items"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

func (r *ReturnRequest) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// ReturnItem references an order item being sent back
type ReturnItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReturnRequestID uuid.UUID       `gorm:"type:uuid;not null;index" json:"return_request_id"`
	OrderItemID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_item_id"`
	OrderItem       *OrderItem      `gorm:"foreignKey:OrderItemID" json:"order_item,omitempty"`
	Quantity        int             `gorm:"type:int;not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
}

func (i *ReturnItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// ExchangeItem references a catalog item taken in exchange
type ExchangeItem struct {
	ID              uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReturnRequestID uuid.UUID       `gorm:"type:uuid;not null;index" json:"return_request_id"`
	JewelryItemID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"jewelry_item_id"`
	JewelryItem     *JewelryItem    `gorm:"foreignKey:JewelryItemID" json:"jewelry_item,omitempty"`
	Quantity        int             `gorm:"type:int;not null" json:"quantity"`
	UnitPrice       decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
}

func (i *ExchangeItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
