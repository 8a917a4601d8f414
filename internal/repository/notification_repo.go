package repository

import (
	"context"

	"jewelry-backend/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *model.Notification) error
	Update(ctx context.Context, notification *model.Notification) error
	ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]model.Notification, error)
}

type notificationRepository struct {
	db *gorm.DB
}

func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Create(ctx context.Context, notification *model.Notification) error {
	return GetDB(ctx, r.db).Create(notification).Error
}

func (r *notificationRepository) Update(ctx context.Context, notification *model.Notification) error {
	return GetDB(ctx, r.db).Save(notification).Error
}

func (r *notificationRepository) ListByEntity(ctx context.Context, entityType string, entityID uuid.UUID) ([]model.Notification, error) {
	var notifications []model.Notification
	if err := GetDB(ctx, r.db).
		Where("entity_type = ? AND entity_id = ?", entityType, entityID).
		Order("created_at DESC").
		Find(&notifications).Error; err != nil {
		return nil, err
	}
	return notifications, nil
}
