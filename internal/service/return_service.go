package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"jewelry-backend/internal/apperr"
	"jewelry-backend/internal/client"
	"jewelry-backend/internal/model"
	"jewelry-backend/internal/repository"
	ws "jewelry-backend/internal/websocket"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// --- DTOs ---

type ReturnItemRequest struct {
	OrderItemID string `json:"order_item_id" binding:"required"`
	Quantity    int    `json:"quantity" binding:"required,gt=0"`
}

type ExchangeItemRequest struct {
	JewelryItemID string `json:"jewelry_item_id" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,gt=0"`
}

type CreateReturnRequest struct {
	OrderID       string                `json:"order_id" binding:"required"`
	ReturnType    string                `json:"return_type" binding:"required,oneof=RETURN EXCHANGE"`
	Reason        string                `json:"reason" binding:"required"`
	Items         []ReturnItemRequest   `json:"items" binding:"required,min=1,dive"`
	ExchangeItems []ExchangeItemRequest `json:"exchange_items" binding:"dive"`
	RefundMethod  string                `json:"refund_method"`
}

// --- Interface ---

type ReturnService interface {
	CreateReturn(ctx context.Context, userID string, req CreateReturnRequest) (*model.ReturnRequest, error)
	GetReturn(ctx context.Context, id string) (*model.ReturnRequest, error)
	ListReturns(ctx context.Context, filter repository.ReturnListFilter) ([]model.ReturnRequest, int64, error)
	ApproveReturn(ctx context.Context, userID, id, notes string) (*model.ReturnRequest, error)
	RejectReturn(ctx context.Context, userID, id, reason string) (*model.ReturnRequest, error)
	ProcessReturn(ctx context.Context, userID, id, refundMethod string) (*model.ReturnRequest, error)
	UpdateStatus(ctx context.Context, userID, id, newStatus, notes string) (*model.ReturnRequest, error)
	GetHistory(ctx context.Context, id string) ([]model.StatusHistory, error)
}

type returnService struct {
	returnRepo  repository.ReturnRepository
	orderRepo   repository.OrderRepository
	itemRepo    repository.JewelryItemRepository
	historyRepo repository.HistoryRepository
	txManager   repository.TransactionManager
	payment     client.PaymentClient
	inventory   client.InventoryClient
	notifier    NotificationService
	hub         *ws.Hub
	log         *logrus.Logger
}

func NewReturnService(
	returnRepo repository.ReturnRepository,
	orderRepo repository.OrderRepository,
	itemRepo repository.JewelryItemRepository,
	historyRepo repository.HistoryRepository,
	txManager repository.TransactionManager,
	payment client.PaymentClient,
	inventory client.InventoryClient,
	notifier NotificationService,
	hub *ws.Hub,
	log *logrus.Logger,
) ReturnService {
	return &returnService{
		returnRepo:  returnRepo,
		orderRepo:   orderRepo,
		itemRepo:    itemRepo,
		historyRepo: historyRepo,
		txManager:   txManager,
		payment:     payment,
		inventory:   inventory,
		notifier:    notifier,
		hub:         hub,
		log:         log,
	}
}

// --- Implementation ---

func (s *returnService) CreateReturn(ctx context.Context, userID string, req CreateReturnRequest) (*model.ReturnRequest, error) {
	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		return nil, apperr.Validation("invalid order_id")
	}
	actorID, _ := uuid.Parse(userID)

	if req.ReturnType == model.ReturnTypeReturn {
		switch req.RefundMethod {
		case model.RefundMethodOriginal, model.RefundMethodStoreCredit, model.RefundMethodCash:
		default:
			return nil, apperr.Validation("refund_method must be ORIGINAL_PAYMENT, STORE_CREDIT or CASH")
		}
	}
	if req.ReturnType == model.ReturnTypeExchange && len(req.ExchangeItems) == 0 {
		return nil, apperr.Validation("exchange requires at least one exchange item")
	}

	var ret *model.ReturnRequest
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

		if order.Status != model.OrderCompleted {
			return apperr.InvalidState("order must be completed or delivered before a return, current status is %s", order.Status)
		}
		if time.Since(order.CreatedAt) > model.ReturnWindowDays*24*time.Hour {
			return apperr.Validation("return window of %d days has expired", model.ReturnWindowDays)
		}

		orderItems := make(map[uuid.UUID]*model.OrderItem, len(order.Items))
		for i := range order.Items {
			orderItems[order.Items[i].ID] = &order.Items[i]
		}

		// Return value is derived from the order's own snapshots; quantities
		// are clamped to what was actually purchased.
		returnAmount := decimal.Zero
		type resolvedReturn struct {
			orderItem *model.OrderItem
			quantity  int
		}
		resolved := make([]resolvedReturn, 0, len(req.Items))
		for _, item := range req.Items {
			orderItemID, parseErr := uuid.Parse(item.OrderItemID)
			if parseErr != nil {
				return apperr.Validation("invalid order_item_id %s", item.OrderItemID)
			}
			orderItem, ok := orderItems[orderItemID]
			if !ok {
				return apperr.Validation("order item %s does not belong to order", item.OrderItemID)
			}
			quantity := item.Quantity
			if quantity > orderItem.Quantity {
				quantity = orderItem.Quantity
			}
			returnAmount = returnAmount.Add(orderItem.UnitPrice.Mul(decimal.NewFromInt(int64(quantity))))
			resolved = append(resolved, resolvedReturn{orderItem: orderItem, quantity: quantity})
		}
		returnAmount = returnAmount.Round(2)

		exchangeAmount := decimal.Zero
		type resolvedExchange struct {
			itemID    uuid.UUID
			quantity  int
			unitPrice decimal.Decimal
		}
		exchanges := make([]resolvedExchange, 0, len(req.ExchangeItems))
		if req.ReturnType == model.ReturnTypeExchange {
			for _, item := range req.ExchangeItems {
				itemID, parseErr := uuid.Parse(item.JewelryItemID)
				if parseErr != nil {
					return apperr.Validation("invalid jewelry_item_id %s", item.JewelryItemID)
				}
				catalogItem, catErr := s.itemRepo.FindByID(txCtx, itemID)
				if catErr != nil {
					if errors.Is(catErr, gorm.ErrRecordNotFound) {
						return apperr.NotFound("jewelry item")
					}
					return apperr.Internal("failed to load jewelry item", catErr)
				}
				exchangeAmount = exchangeAmount.Add(catalogItem.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
				exchanges = append(exchanges, resolvedExchange{
					itemID:    itemID,
					quantity:  item.Quantity,
					unitPrice: catalogItem.UnitPrice,
				})
			}
			exchangeAmount = exchangeAmount.Round(2)
		}

		returnNumber, numErr := s.generateReturnNumber(txCtx)
		if numErr != nil {
			return apperr.Internal("failed to generate return number", numErr)
		}

		ret = &model.ReturnRequest{
			ReturnNumber:     returnNumber,
			OrderID:          orderID,
			ReturnType:       req.ReturnType,
			Reason:           req.Reason,
			Status:           model.ReturnRequested,
			ReturnAmount:     returnAmount,
			ExchangeAmount:   exchangeAmount,
			AmountDifference: exchangeAmount.Sub(returnAmount),
			RefundMethod:     req.RefundMethod,
		}
		if createErr := s.returnRepo.Create(txCtx, ret); createErr != nil {
			return apperr.Internal("failed to create return request", createErr)
		}

		for _, r := range resolved {
			returnItem := &model.ReturnItem{
				ReturnRequestID: ret.ID,
				OrderItemID:     r.orderItem.ID,
				Quantity:        r.quantity,
				UnitPrice:       r.orderItem.UnitPrice,
			}
			if itemErr := s.returnRepo.CreateItem(txCtx, returnItem); itemErr != nil {
				return apperr.Internal("failed to create return item", itemErr)
			}
		}
		for _, e := range exchanges {
			exchangeItem := &model.ExchangeItem{
				ReturnRequestID: ret.ID,
				JewelryItemID:   e.itemID,
				Quantity:        e.quantity,
				UnitPrice:       e.unitPrice,
			}
			if itemErr := s.returnRepo.CreateExchangeItem(txCtx, exchangeItem); itemErr != nil {
				return apperr.Internal("failed to create exchange item", itemErr)
			}
		}

		return s.appendHistory(txCtx, ret.ID, string(model.ReturnRequested), "Return requested", actorID)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, order.CustomerID, model.NotifyReturnStatus, model.EntityReturn, ret.ID, map[string]string{
		"number": ret.ReturnNumber,
		"status": string(model.ReturnRequested),
	})
	s.broadcast(ret, "return_created")

	return s.returnRepo.FindByID(ctx, ret.ID)
}

func (s *returnService) GetReturn(ctx context.Context, id string) (*model.ReturnRequest, error) {
	returnID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid return id")
	}
	ret, err := s.returnRepo.FindByID(ctx, returnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("return request")
		}
		return nil, apperr.Internal("failed to load return request", err)
	}
	return ret, nil
}

func (s *returnService) ListReturns(ctx context.Context, filter repository.ReturnListFilter) ([]model.ReturnRequest, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	returns, total, err := s.returnRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list return requests", err)
	}
	return returns, total, nil
}

func (s *returnService) ApproveReturn(ctx context.Context, userID, id, notes string) (*model.ReturnRequest, error) {
	if notes == "" {
		notes = "Return approved"
	}
	return s.transition(ctx, userID, id, model.ReturnApproved, notes)
}

func (s *returnService) RejectReturn(ctx context.Context, userID, id, reason string) (*model.ReturnRequest, error) {
	if reason == "" {
		return nil, apperr.Validation("rejection requires a reason")
	}
	return s.transition(ctx, userID, id, model.ReturnRejected, "Rejected: "+reason)
}

// ProcessReturn executes the refund and moves the request to processed. The
// refund call happens before the transaction; a provider failure never leaves
// the request half-processed, it gets a manual reference for back-office
// reconciliation instead.
func (s *returnService) ProcessReturn(ctx context.Context, userID, id, refundMethod string) (*model.ReturnRequest, error) {
	returnID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid return id")
	}
	actorID, _ := uuid.Parse(userID)

	if refundMethod != "" {
		switch refundMethod {
		case model.RefundMethodOriginal, model.RefundMethodStoreCredit, model.RefundMethodCash:
		default:
			return nil, apperr.Validation("refund_method must be ORIGINAL_PAYMENT, STORE_CREDIT or CASH")
		}
	}

	ret, err := s.returnRepo.FindByID(ctx, returnID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("return request")
		}
		return nil, apperr.Internal("failed to load return request", err)
	}
	if ret.Status == model.ReturnProcessed || ret.Status == model.ReturnCompleted {
		return nil, apperr.InvalidState("return has already been processed")
	}
	if ret.Status != model.ReturnApproved {
		return nil, apperr.InvalidTransition("return", string(ret.Status), string(model.ReturnProcessed))
	}

	// A method supplied at processing time overrides the one chosen at intake.
	if refundMethod == "" {
		refundMethod = ret.RefundMethod
	}

	refundReference := ""
	refundDue := refundAmount(ret)
	if refundDue.IsPositive() {
		result, refundErr := s.payment.Refund(ctx, ret.OrderID.String(), refundDue, refundMethod, ret.Reason)
		if refundErr != nil {
			refundReference = "MANUAL-" + uuid.New().String()[:8]
			s.log.WithFields(logrus.Fields{
				"return_id": ret.ID,
				"amount":    refundDue,
				"reference": refundReference,
				"error":     refundErr,
			}).Error("refund failed, flagged for manual settlement")
		} else {
			refundReference = result.RefundReference
		}
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		current, findErr := s.returnRepo.FindByID(txCtx, returnID)
		if findErr != nil {
			return apperr.Internal("failed to reload return request", findErr)
		}
		// Re-check under the transaction; a concurrent process call loses here.
		if current.Status != model.ReturnApproved {
			return apperr.InvalidState("return has already been processed")
		}

		current.Status = model.ReturnProcessed
		current.RefundMethod = refundMethod
		current.RefundReference = refundReference
		current.ProcessedByID = &actorID
		if updateErr := s.returnRepo.Update(txCtx, current); updateErr != nil {
			return apperr.Internal("failed to update return request", updateErr)
		}
		ret = current
		return s.appendHistory(txCtx, returnID, string(model.ReturnProcessed), "Refund reference: "+refundReference, actorID)
	})
	if err != nil {
		return nil, err
	}

	// Stock movements after commit: returned goods come back in, exchange
	// goods go out. Each adjustment is guarded.
	for _, item := range ret.Items {
		if item.OrderItem == nil {
			continue
		}
		if invErr := s.inventory.AdjustStock(ctx, item.OrderItem.JewelryItemID.String(), item.Quantity); invErr != nil {
			s.log.WithFields(logrus.Fields{
				"return_id": ret.ID,
				"item_id":   item.OrderItem.JewelryItemID,
				"delta":     item.Quantity,
				"error":     invErr,
			}).Error("inventory restore failed, manual reconciliation required")
		}
	}
	for _, item := range ret.ExchangeItems {
		if invErr := s.inventory.AdjustStock(ctx, item.JewelryItemID.String(), -item.Quantity); invErr != nil {
			s.log.WithFields(logrus.Fields{
				"return_id": ret.ID,
				"item_id":   item.JewelryItemID,
				"delta":     -item.Quantity,
				"error":     invErr,
			}).Error("inventory debit failed, manual reconciliation required")
		}
	}
	if ret.Order != nil {
		s.notifier.Notify(ctx, ret.Order.CustomerID, model.NotifyReturnStatus, model.EntityReturn, ret.ID, map[string]string{
			"number": ret.ReturnNumber,
			"status": string(model.ReturnProcessed),
		})
	}
	s.broadcast(ret, "return_status_changed")

	return ret, nil
}

func (s *returnService) UpdateStatus(ctx context.Context, userID, id, newStatus, notes string) (*model.ReturnRequest, error) {
	target, ok := model.ParseReturnStatus(newStatus)
	if !ok {
		return nil, apperr.Validation("unknown return status %s", newStatus)
	}
	if target == model.ReturnProcessed {
		// Processing has side effects and goes through its own endpoint.
		return nil, apperr.Validation("use the process endpoint to move a return to processed")
	}
	return s.transition(ctx, userID, id, target, notes)
}

func (s *returnService) GetHistory(ctx context.Context, id string) ([]model.StatusHistory, error) {
	returnID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid return id")
	}
	entries, err := s.historyRepo.ListByEntity(ctx, model.EntityReturn, returnID)
	if err != nil {
		return nil, apperr.Internal("failed to load return history", err)
	}
	return entries, nil
}

// --- Helpers ---

func (s *returnService) transition(ctx context.Context, userID, id string, target model.ReturnStatus, notes string) (*model.ReturnRequest, error) {
	returnID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid return id")
	}
	actorID, _ := uuid.Parse(userID)

	var ret *model.ReturnRequest
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var findErr error
		ret, findErr = s.returnRepo.FindByID(txCtx, returnID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("return request")
			}
			return apperr.Internal("failed to load return request", findErr)
		}

		if !ret.Status.CanTransitionTo(target) {
			return apperr.InvalidTransition("return", string(ret.Status), string(target))
		}

		if updateErr := s.returnRepo.UpdateStatus(txCtx, returnID, target); updateErr != nil {
			return apperr.Internal("failed to update return status", updateErr)
		}
		ret.Status = target
		return s.appendHistory(txCtx, returnID, string(target), notes, actorID)
	})
	if err != nil {
		return nil, err
	}

	if ret.Order != nil {
		s.notifier.Notify(ctx, ret.Order.CustomerID, model.NotifyReturnStatus, model.EntityReturn, ret.ID, map[string]string{
			"number": ret.ReturnNumber,
			"status": string(ret.Status),
		})
	}
	s.broadcast(ret, "return_status_changed")

	return ret, nil
}

// refundAmount is what the customer is owed: the full return value for plain
// returns, and the shortfall when an exchange is cheaper than what came back.
func refundAmount(ret *model.ReturnRequest) decimal.Decimal {
	if ret.ReturnType == model.ReturnTypeExchange {
		if ret.AmountDifference.IsNegative() {
			return ret.AmountDifference.Neg()
		}
		return decimal.Zero
	}
	return ret.ReturnAmount
}

func (s *returnService) generateReturnNumber(ctx context.Context) (string, error) {
	today := time.Now().UTC().Format("20060102")
	prefix := "RET-" + today + "-"

	count, err := s.returnRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func (s *returnService) appendHistory(ctx context.Context, returnID uuid.UUID, status, notes string, actorID uuid.UUID) error {
	entry := &model.StatusHistory{
		EntityType: model.EntityReturn,
		EntityID:   returnID,
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

func (s *returnService) broadcast(ret *model.ReturnRequest, event string) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastStatus(ws.StatusEvent{
		Event:      event,
		EntityType: model.EntityReturn,
		EntityID:   ret.ID.String(),
		Number:     ret.ReturnNumber,
		Status:     string(ret.Status),
	})
}
