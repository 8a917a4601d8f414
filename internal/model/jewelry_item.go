package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// MetalType enum constants
const (
	MetalGold     = "GOLD"
	MetalSilver   = "SILVER"
	MetalPlatinum = "PLATINUM"
	MetalDiamond  = "DIAMOND"
)

// JewelryItem represents a sellable piece in the catalog. CurrentStock mirrors
// the external inventory service and is reconciled operationally; the service
// of record for stock levels is the InventoryClient.
type JewelryItem struct {
	ID           uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	SKU          string          `gorm:"type:varchar(100);uniqueIndex;not null" json:"sku"`
	Name         string          `gorm:"type:varchar(255);not null" json:"name"`
	Category     string          `gorm:"type:varchar(100);index" json:"category"`
	MetalType    string          `gorm:"type:varchar(20);not null" json:"metal_type"` // GOLD, SILVER, PLATINUM, DIAMOND
	Purity       string          `gorm:"type:varchar(20)" json:"purity"`              // e.g. 22K, 916
	GrossWeight  decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0" json:"gross_weight"` // grams
	NetWeight    decimal.Decimal `gorm:"type:decimal(10,3);not null;default:0" json:"net_weight"`
	UnitPrice    decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"unit_price"`
	CurrentStock int             `gorm:"type:int;not null;default:0" json:"current_stock"`
	Active       bool            `gorm:"default:true" json:"active"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`
	DeletedAt    gorm.DeletedAt  `gorm:"index" json:"-"`
}

func (j *JewelryItem) BeforeCreate(tx *gorm.DB) error {
	if j.ID == uuid.Nil {
		j.ID = uuid.New()
	}
	return nil
}
