package repository

import (
	"context"

	"jewelry-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ReturnListFilter narrows List results
type ReturnListFilter struct {
	Status     string
	ReturnType string
	Page       int
	Limit      int
}

type ReturnRepository interface {
	Create(ctx context.Context, ret *model.ReturnRequest) error
	CreateItem(ctx context.Context, item *model.ReturnItem) error
	CreateExchangeItem(ctx context.Context, item *model.ExchangeItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.ReturnRequest, error)
	Update(ctx context.Context, ret *model.ReturnRequest) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReturnStatus) error
	List(ctx context.Context, filter ReturnListFilter) ([]model.ReturnRequest, int64, error)
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
}

type returnRepository struct {
	db *gorm.DB
}

func NewReturnRepository(db *gorm.DB) ReturnRepository {
	return &returnRepository{db: db}
}

func (r *returnRepository) Create(ctx context.Context, ret *model.ReturnRequest) error {
	return GetDB(ctx, r.db).Create(ret).Error
}

func (r *returnRepository) CreateItem(ctx context.Context, item *model.ReturnItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *returnRepository) CreateExchangeItem(ctx context.Context, item *model.ExchangeItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *returnRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.ReturnRequest, error) {
	var ret model.ReturnRequest
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Items.OrderItem").
		Preload("ExchangeItems").
		Preload("Order").
		Preload("Order.Customer").
		First(&ret, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &ret, nil
}

func (r *returnRepository) Update(ctx context.Context, ret *model.ReturnRequest) error {
	return GetDB(ctx, r.db).Save(ret).Error
}

func (r *returnRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.ReturnStatus) error {
	return GetDB(ctx, r.db).Model(&model.ReturnRequest{}).Where("id = ?", id).Update("status", status).Error
}

func (r *returnRepository) List(ctx context.Context, filter ReturnListFilter) ([]model.ReturnRequest, int64, error) {
	var returns []model.ReturnRequest
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.ReturnRequest{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.ReturnType != "" {
		query = query.Where("return_type = ?", filter.ReturnType)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	fetch := db.Preload("Items").Preload("ExchangeItems")
	if filter.Status != "" {
		fetch = fetch.Where("status = ?", filter.Status)
	}
	if filter.ReturnType != "" {
		fetch = fetch.Where("return_type = ?", filter.ReturnType)
	}
	if err := fetch.
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&returns).Error; err != nil {
		return nil, 0, err
	}

	return returns, total, nil
}

func (r *returnRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.ReturnRequest{}).
		Where("return_number LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
