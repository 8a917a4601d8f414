package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"jewelry-backend/internal/apperr"
	"jewelry-backend/internal/model"
	"jewelry-backend/internal/repository"
	ws "jewelry-backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateRepairRequest struct {
	OrderID             string           `json:"order_id" binding:"required"`
	ItemDescription     string           `json:"item_description" binding:"required"`
	ProblemDescription  string           `json:"problem_description" binding:"required"`
	RepairType          string           `json:"repair_type" binding:"required,oneof=CLEANING POLISHING RESIZING STONE_SETTING ENGRAVING OTHER"`
	EstimatedCost       *decimal.Decimal `json:"estimated_cost"`
	EstimatedCompletion *time.Time       `json:"estimated_completion"`
	RequiresApproval    bool             `json:"requires_approval"`
	TechnicianID        string           `json:"technician_id"`
}

type UpdateRepairRequest struct {
	ItemDescription     *string          `json:"item_description"`
	ProblemDescription  *string          `json:"problem_description"`
	EstimatedCost       *decimal.Decimal `json:"estimated_cost"`
	ActualCost          *decimal.Decimal `json:"actual_cost"`
	EstimatedCompletion *time.Time       `json:"estimated_completion"`
	TechnicianID        *string          `json:"technician_id"`
	CustomerApproved    *bool            `json:"customer_approved"`
}

type UploadPhotosRequest struct {
	Type   string   `json:"type" binding:"required,oneof=before after"`
	Photos []string `json:"photos" binding:"required,min=1"`
}

// --- Interface ---

type RepairService interface {
	CreateRepair(ctx context.Context, userID string, req CreateRepairRequest) (*model.RepairRequest, error)
	GetRepair(ctx context.Context, id string) (*model.RepairRequest, error)
	ListRepairs(ctx context.Context, filter repository.RepairListFilter) ([]model.RepairRequest, int64, error)
	UpdateRepair(ctx context.Context, id string, req UpdateRepairRequest) (*model.RepairRequest, error)
	UpdateStatus(ctx context.Context, userID, id, newStatus, notes string) (*model.RepairRequest, error)
	UploadPhotos(ctx context.Context, id string, req UploadPhotosRequest) (*model.RepairRequest, error)
	GetQueue(ctx context.Context, technicianID string) ([]model.RepairRequest, error)
	GetHistory(ctx context.Context, id string) ([]model.StatusHistory, error)
}

type repairService struct {
	repairRepo  repository.RepairRepository
	orderRepo   repository.OrderRepository
	historyRepo repository.HistoryRepository
	txManager   repository.TransactionManager
	notifier    NotificationService
	hub         *ws.Hub
	log         *logrus.Logger
}

func NewRepairService(
	repairRepo repository.RepairRepository,
	orderRepo repository.OrderRepository,
	historyRepo repository.HistoryRepository,
	txManager repository.TransactionManager,
	notifier NotificationService,
	hub *ws.Hub,
	log *logrus.Logger,
) RepairService {
	return &repairService{
		repairRepo:  repairRepo,
		orderRepo:   orderRepo,
		historyRepo: historyRepo,
		txManager:   txManager,
		notifier:    notifier,
		hub:         hub,
		log:         log,
	}
}

// --- Implementation ---

func (s *repairService) CreateRepair(ctx context.Context, userID string, req CreateRepairRequest) (*model.RepairRequest, error) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, apperr.Validation("invalid order_id")
	}
	actorID, _ := uuid.Parse(userID)

	var technicianID *uuid.UUID
	if req.TechnicianID != "" {
		techID, parseErr := uuid.Parse(req.TechnicianID)
		if parseErr != nil {
			return nil, apperr.Validation("invalid technician_id")
		}
		technicianID = &techID
	}

	var repair *model.RepairRequest
	var order *model.Order
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		order, findErr = s.orderRepo.FindByID(txCtx, orderID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("order")
			}
			return apperr.Internal("failed to load order", findErr)
		}

		repairNumber, numErr := s.generateRepairNumber(txCtx)
		if numErr != nil {
			return apperr.Internal("failed to generate repair number", numErr)
		}

		repair = &model.RepairRequest{
			RepairNumber:        repairNumber,
			OrderID:             orderID,
			ItemDescription:     req.ItemDescription,
			ProblemDescription:  req.ProblemDescription,
			RepairType:          req.RepairType,
			Status:              model.RepairReceived,
			EstimatedCompletion: req.EstimatedCompletion,
			BeforePhotos:        "[]",
			AfterPhotos:         "[]",
			RequiresApproval:    req.RequiresApproval,
			TechnicianID:        technicianID,
		}
		if req.EstimatedCost != nil {
			repair.EstimatedCost = req.EstimatedCost.Round(2)
		}
		if createErr := s.repairRepo.Create(txCtx, repair); createErr != nil {
			return apperr.Internal("failed to create repair", createErr)
		}

		return s.appendHistory(txCtx, repair.ID, string(model.RepairReceived), "Repair intake", actorID)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, order.CustomerID, model.NotifyRepairCreated, model.EntityRepair, repair.ID, map[string]string{
		"number": repair.RepairNumber,
	})
	s.broadcast(repair, "repair_created")

	return s.repairRepo.FindByID(ctx, repair.ID)
}

func (s *repairService) GetRepair(ctx context.Context, id string) (*model.RepairRequest, error) {
	repairID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid repair id")
	}
	repair, err := s.repairRepo.FindByID(ctx, repairID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("repair request")
		}
		return nil, apperr.Internal("failed to load repair", err)
	}
	return repair, nil
}

func (s *repairService) ListRepairs(ctx context.Context, filter repository.RepairListFilter) ([]model.RepairRequest, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	repairs, total, err := s.repairRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list repairs", err)
	}
	return repairs, total, nil
}

func (s *repairService) UpdateRepair(ctx context.Context, id string, req UpdateRepairRequest) (*model.RepairRequest, error) {
	repairID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid repair id")
	}

	var repair *model.RepairRequest
	costOrScheduleChanged := false
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		repair, findErr = s.repairRepo.FindByID(txCtx, repairID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("repair request")
			}
			return apperr.Internal("failed to load repair", findErr)
		}

		if repair.Status == model.RepairDelivered || repair.Status == model.RepairCancelled {
			return apperr.InvalidState("repair in terminal status %s cannot be edited", repair.Status)
		}

		if req.ItemDescription != nil {
			repair.ItemDescription = *req.ItemDescription
		}
		if req.ProblemDescription != nil {
			repair.ProblemDescription = *req.ProblemDescription
		}
		if req.EstimatedCost != nil {
			if !repair.EstimatedCost.Equal(req.EstimatedCost.Round(2)) {
				costOrScheduleChanged = true
			}
			repair.EstimatedCost = req.EstimatedCost.Round(2)
		}
		if req.ActualCost != nil {
			repair.ActualCost = req.ActualCost.Round(2)
		}
		if req.EstimatedCompletion != nil {
			if repair.EstimatedCompletion == nil || !repair.EstimatedCompletion.Equal(*req.EstimatedCompletion) {
				costOrScheduleChanged = true
			}
			repair.EstimatedCompletion = req.EstimatedCompletion
		}
		if req.TechnicianID != nil {
			if *req.TechnicianID == "" {
				repair.TechnicianID = nil
			} else {
				techID, parseErr := uuid.Parse(*req.TechnicianID)
				if parseErr != nil {
					return apperr.Validation("invalid technician_id")
				}
				repair.TechnicianID = &techID
			}
		}
		if req.CustomerApproved != nil && *req.CustomerApproved {
			// Approval is only meaningful once an assessment has produced an
			// estimate the customer can approve.
			if repair.Status != model.RepairAssessed {
				return apperr.InvalidState("customer approval can only be recorded while assessed, current status is %s", repair.Status)
			}
			repair.CustomerApproved = true
		}

		if updateErr := s.repairRepo.Update(txCtx, repair); updateErr != nil {
			return apperr.Internal("failed to update repair", updateErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if costOrScheduleChanged && repair.Order != nil {
		s.notifier.Notify(ctx, repair.Order.CustomerID, model.NotifyRepairUpdated, model.EntityRepair, repair.ID, map[string]string{
			"number":         repair.RepairNumber,
			"estimated_cost": repair.EstimatedCost.StringFixed(2),
		})
	}

	return s.repairRepo.FindByID(ctx, repairID)
}

func (s *repairService) UpdateStatus(ctx context.Context, userID, id, newStatus, notes string) (*model.RepairRequest, error) {
	repairID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid repair id")
	}
	target, ok := model.ParseRepairStatus(newStatus)
	if !ok {
		return nil, apperr.Validation("unknown repair status %s", newStatus)
	}
	actorID, _ := uuid.Parse(userID)

	var repair *model.RepairRequest
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		repair, findErr = s.repairRepo.FindByID(txCtx, repairID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("repair request")
			}
			return apperr.Internal("failed to load repair", findErr)
		}

		if !repair.Status.CanTransitionTo(target) {
			return apperr.InvalidTransition("repair", string(repair.Status), string(target))
		}
		if target == model.RepairApproved && repair.RequiresApproval && !repair.CustomerApproved {
			return apperr.InvalidState("repair requires customer approval before it can be approved")
		}

		if updateErr := s.repairRepo.UpdateStatus(txCtx, repairID, target); updateErr != nil {
			return apperr.Internal("failed to update repair status", updateErr)
		}
		repair.Status = target
		return s.appendHistory(txCtx, repairID, string(target), notes, actorID)
	})
	if err != nil {
		return nil, err
	}

	if repair.Order != nil {
		s.notifier.Notify(ctx, repair.Order.CustomerID, model.NotifyRepairStatus, model.EntityRepair, repair.ID, map[string]string{
			"number": repair.RepairNumber,
			"status": string(repair.Status),
		})
	}
	s.broadcast(repair, "repair_status_changed")

	return repair, nil
}

func (s *repairService) UploadPhotos(ctx context.Context, id string, req UploadPhotosRequest) (*model.RepairRequest, error) {
	repairID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid repair id")
	}

	photosJSON, err := json.Marshal(req.Photos)
	if err != nil {
		return nil, apperr.Validation("invalid photo list")
	}

	repair, err := s.repairRepo.FindByID(ctx, repairID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("repair request")
		}
		return nil, apperr.Internal("failed to load repair", err)
	}

	// Each upload replaces the whole set for its side.
	switch req.Type {
	case "before":
		repair.BeforePhotos = string(photosJSON)
	case "after":
		repair.AfterPhotos = string(photosJSON)
	default:
		return nil, apperr.Validation("photo type must be before or after")
	}

	if err := s.repairRepo.Update(ctx, repair); err != nil {
		return nil, apperr.Internal("failed to store photos", err)
	}
	return repair, nil
}

func (s *repairService) GetQueue(ctx context.Context, technicianID string) ([]model.RepairRequest, error) {
	var techID *uuid.UUID
	if technicianID != "" {
		parsed, err := uuid.Parse(technicianID)
		if err != nil {
			return nil, apperr.Validation("invalid technician_id")
		}
		techID = &parsed
	}
	repairs, err := s.repairRepo.Queue(ctx, techID)
	if err != nil {
		return nil, apperr.Internal("failed to load repair queue", err)
	}
	return repairs, nil
}

func (s *repairService) GetHistory(ctx context.Context, id string) ([]model.StatusHistory, error) {
	repairID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid repair id")
	}
	entries, err := s.historyRepo.ListByEntity(ctx, model.EntityRepair, repairID)
	if err != nil {
		return nil, apperr.Internal("failed to load repair history", err)
	}
	return entries, nil
}

// --- Helpers ---

func (s *repairService) generateRepairNumber(ctx context.Context) (string, error) {
	today := time.Now().UTC().Format("20060102")
	prefix := "RPR-" + today + "-"

	count, err := s.repairRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func (s *repairService) appendHistory(ctx context.Context, repairID uuid.UUID, status, notes string, actorID uuid.UUID) error {
	entry := &model.StatusHistory{
		EntityType: model.EntityRepair,
		EntityID:   repairID,
		Status:     status,
		Notes:      notes,
	}
	if actorID != uuid.Nil {
		entry.ChangedBy = &actorID
	}
	if err := s.historyRepo.Append(ctx, entry); err != nil {
		return apperr.Internal("failed to write status history", err)
	}
	return nil
}

func (s *repairService) broadcast(repair *model.RepairRequest, event string) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastStatus(ws.StatusEvent{
		Event:      event,
		EntityType: model.EntityRepair,
		EntityID:   repair.ID.String(),
		Number:     repair.RepairNumber,
		Status:     string(repair.Status),
	})
}
