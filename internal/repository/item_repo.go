package repository

import (
	"context"

	"jewelry-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type JewelryItemRepository interface {
	Create(ctx context.Context, item *model.JewelryItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.JewelryItem, error)
	List(ctx context.Context, page, limit int) ([]model.JewelryItem, int64, error)
}

type jewelryItemRepository struct {
	db *gorm.DB
}

func NewJewelryItemRepository(db *gorm.DB) JewelryItemRepository {
	return &jewelryItemRepository{db: db}
}

func (r *jewelryItemRepository) Create(ctx context.Context, item *model.JewelryItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *jewelryItemRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.JewelryItem, error) {
	var item model.JewelryItem
	if err := GetDB(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *jewelryItemRepository) List(ctx context.Context, page, limit int) ([]model.JewelryItem, int64, error) {
	var items []model.JewelryItem
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.JewelryItem{}).Where("active = ?", true).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := db.Where("active = ?", true).
		Order("name ASC").
		Offset(offset).Limit(limit).
		Find(&items).Error; err != nil {
		return nil, 0, err
	}

	return items, total, nil
}
