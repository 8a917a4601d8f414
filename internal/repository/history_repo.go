package repository

import (
	"context"

	"jewelry-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HistoryRepository appends and reads the status transition ledger. Entries
// are append-only; there is deliberately no update or delete.
type HistoryRepository interface {
	Append(ctx context.Context, entry *model.StatusHistory) error
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]model.StatusHistory, error)
}

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

func (r *historyRepository) Append(ctx context.Context, entry *model.StatusHistory) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *historyRepository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]model.StatusHistory, error) {
	var entries []model.StatusHistory
	if err := GetDB(ctx, r.db).
		Preload("Actor").
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at ASC").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
