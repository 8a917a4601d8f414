package database

import (
	"log"

	"jewelry-backend/internal/model"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.Customer{},
		&model.JewelryItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.RepairRequest{},
		&model.ReturnRequest{},
		&model.ReturnItem{},
		&model.ExchangeItem{},
		&model.StatusHistory{},
		&model.Notification{},
	)
	if err != nil {
		log.Println("WARNING: Failed to auto-migrate models:", err)
	}

	return db, nil
}
