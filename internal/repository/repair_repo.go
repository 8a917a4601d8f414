package repository

import (
	"context"

	"jewelry-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// RepairListFilter narrows List results
type RepairListFilter struct {
	Status       string
	TechnicianID string
	Page         int
	Limit        int
}

type RepairRepository interface {
	Create(ctx context.Context, repair *model.RepairRequest) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.RepairRequest, error)
	Update(ctx context.Context, repair *model.RepairRequest) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.RepairStatus) error
	List(ctx context.Context, filter RepairListFilter) ([]model.RepairRequest, int64, error)
	Queue(ctx context.Context, technicianID *uuid.UUID) ([]model.RepairRequest, error)
	CountByPrefix(ctx context.Context, prefix string) (int64, error)
}

type repairRepository struct {
	db *gorm.DB
}

func NewRepairRepository(db *gorm.DB) RepairRepository {
	return &repairRepository{db: db}
}

func (r *repairRepository) Create(ctx context.Context, repair *model.RepairRequest) error {
	return GetDB(ctx, r.db).Create(repair).Error
}

func (r *repairRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.RepairRequest, error) {
	var repair model.RepairRequest
	if err := GetDB(ctx, r.db).
		Preload("Order").
		Preload("Order.Customer").
		Preload("Technician").
		First(&repair, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &repair, nil
}

func (r *repairRepository) Update(ctx context.Context, repair *model.RepairRequest) error {
	return GetDB(ctx, r.db).Save(repair).Error
}

func (r *repairRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.RepairStatus) error {
	return GetDB(ctx, r.db).Model(&model.RepairRequest{}).Where("id = ?", id).Update("status", status).Error
}

func (r *repairRepository) List(ctx context.Context, filter RepairListFilter) ([]model.RepairRequest, int64, error) {
	var repairs []model.RepairRequest
	var total int64

	db := GetDB(ctx, r.db)
	query := db.Model(&model.RepairRequest{})
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.TechnicianID != "" {
		query = query.Where("technician_id = ?", filter.TechnicianID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (filter.Page - 1) * filter.Limit
	fetch := db.Preload("Technician")
	if filter.Status != "" {
		fetch = fetch.Where("status = ?", filter.Status)
	}
	if filter.TechnicianID != "" {
		fetch = fetch.Where("technician_id = ?", filter.TechnicianID)
	}
	if err := fetch.
		Order("created_at DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&repairs).Error; err != nil {
		return nil, 0, err
	}

	return repairs, total, nil
}

// Queue returns open repairs ordered by estimated completion then intake time.
// This ordering is the technician scheduling policy.
func (r *repairRepository) Queue(ctx context.Context, technicianID *uuid.UUID) ([]model.RepairRequest, error) {
	var repairs []model.RepairRequest
	query := GetDB(ctx, r.db).
		Preload("Technician").
		Where("status IN ?", model.ActiveRepairStatuses)
	if technicianID != nil {
		query = query.Where("technician_id = ?", *technicianID)
	}
	if err := query.
		Order("estimated_completion ASC NULLS LAST").
		Order("created_at ASC").
		Find(&repairs).Error; err != nil {
		return nil, err
	}
	return repairs, nil
}

func (r *repairRepository) CountByPrefix(ctx context.Context, prefix string) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.RepairRequest{}).
		Where("repair_number LIKE ?", prefix+"%").Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
