package repository

import (
	"context"
	"time"

	"jewelry-backend/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderListFilter narrows List results
type OrderListFilter struct {
	Status    string
	OrderType string
	Page      int
	Limit     int
}

// OrderStatusCount is a per-status aggregate row
type OrderStatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

type OrderRepository interface {
	Create(ctx context.Context, order *model.Order) error
	CreateItem(ctx context.Context, item *model.OrderItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	FindByIDWithDetails(ctx context.Context, id uuid.UUID) (*model.Order, error)
	Update(ctx context.Context, order *model.Order) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error
	List(ctx context.Context, filter OrderListFilter) ([]model.Order, int64, error)
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
	CountByStatus(ctx context.Context, start, end *time.Time) ([]OrderStatusCount, error)
	RevenueTotals(ctx context.Context, start, end *time.Time) (total decimal.Decimal, orders int64, err error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *model.Order) error {
	return GetDB(ctx, r.db).Create(order).Error
}

func (r *orderRepository) CreateItem(ctx context.Context, item *model.OrderItem) error {
	return GetDB(ctx, r.db).Create(item).Error
}

func (r *orderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).
		Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) FindByIDWithDetails(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var order model.Order
	if err := GetDB(ctx, r.db).
		Preload("Items").
		Preload("Items.JewelryItem").
		Preload("Customer").
		Preload("Staff").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) Update(ctx context.Context, order *model.Order) error {
	return GetDB(ctx, r.db).Save(order).Error
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	return GetDB(ctx, r.db).Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *orderRepository) List(ctx context.Context, filter OrderListFilter) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.Order{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.OrderType != "" {
		query = query.Where("order_type = ?", filter.OrderType)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	fetch := db.Preload("Items").Preload("Customer")
	if filter.Status != "" {
		fetch = fetch.Where("status = ?", filter.Status)
	}
	if filter.OrderType != "" {
		fetch = fetch.Where("order_type = ?", filter.OrderType)
	}
	if err := fetch.
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func (r *orderRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.Order{}).
		Where("order_number LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *orderRepository) CountByStatus(ctx context.Context, start, end *time.Time) ([]OrderStatusCount, error) {
	var rows []OrderStatusCount
	query := GetDB(ctx, r.db).Model(&model.Order{}).
		Select("status, COUNT(*) as count").
		Group("status")
	if start != nil {
		query = query.Where("created_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("created_at <= ?", *end)
	}
	if err := query.Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *orderRepository) RevenueTotals(ctx context.Context, start, end *time.Time) (decimal.Decimal, int64, error) {
	var result struct {
		Total  decimal.Decimal
		Orders int64
	}
	query := GetDB(ctx, r.db).Model(&model.Order{}).
		Select("COALESCE(SUM(total_amount), 0) as total, COUNT(*) as orders").
		Where("status = ?", model.OrderCompleted)
	if start != nil {
		query = query.Where("created_at >= ?", *start)
	}
	if end != nil {
		query = query.Where("created_at <= ?", *end)
	}
	if err := query.Scan(&result).Error; err != nil {
		return decimal.Zero, 0, err
	}
	return result.Total, result.Orders, nil
}
