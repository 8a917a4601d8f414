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

type OrderItemRequest struct {
	JewelryItemID string `json:"jewelry_item_id" binding:"required"`
	Quantity      int    `json:"quantity" binding:"required,gt=0"`
	Customization string `json:"customization"`
}

type CreateOrderRequest struct {
	CustomerID          string             `json:"customer_id" binding:"required"`
	OrderType           string             `json:"order_type" binding:"required,oneof=SALE REPAIR CUSTOM"`
	Items               []OrderItemRequest `json:"items" binding:"required,min=1,dive"`
	SpecialInstructions string             `json:"special_instructions"`
	EstimatedCompletion *time.Time         `json:"estimated_completion"`
}

type UpdateOrderRequest struct {
	SpecialInstructions *string    `json:"special_instructions"`
	EstimatedCompletion *time.Time `json:"estimated_completion"`
}

type OrderStats struct {
	StatusCounts      []repository.OrderStatusCount `json:"status_counts"`
	TotalRevenue      string                        `json:"total_revenue"`
	CompletedOrders   int64                         `json:"completed_orders"`
	AverageOrderValue string                        `json:"average_order_value"`
	StartDate         *time.Time                    `json:"start_date,omitempty"`
	EndDate           *time.Time                    `json:"end_date,omitempty"`
}

// Fallback pricing percentages, applied when the pricing service is down so
// order creation is never blocked by a dependency outage.
var (
	fallbackMakingRate  = decimal.NewFromFloat(0.10)
	fallbackWastageRate = decimal.NewFromFloat(0.02)
	fallbackGSTRate     = decimal.NewFromFloat(0.03)
)

// --- Interface ---

type OrderService interface {
	CreateOrder(ctx context.Context, userID string, req CreateOrderRequest) (*model.Order, error)
	GetOrder(ctx context.Context, id string) (*model.Order, error)
	ListOrders(ctx context.Context, filter repository.OrderListFilter) ([]model.Order, int64, error)
	UpdateOrder(ctx context.Context, id string, req UpdateOrderRequest) (*model.Order, error)
	UpdateStatus(ctx context.Context, userID, id, newStatus, notes string) (*model.Order, error)
	CancelOrder(ctx context.Context, userID, id, reason string) (*model.Order, error)
	GetStats(ctx context.Context, start, end *time.Time) (OrderStats, error)
	GetHistory(ctx context.Context, id string) ([]model.StatusHistory, error)
}

type orderService struct {
	orderRepo    repository.OrderRepository
	itemRepo     repository.JewelryItemRepository
	customerRepo repository.CustomerRepository
	historyRepo  repository.HistoryRepository
	txManager    repository.TransactionManager
	pricing      client.PricingClient
	inventory    client.InventoryClient
	notifier     NotificationService
	hub          *ws.Hub
	log          *logrus.Logger
}

func NewOrderService(
	orderRepo repository.OrderRepository,
	itemRepo repository.JewelryItemRepository,
	customerRepo repository.CustomerRepository,
	historyRepo repository.HistoryRepository,
	txManager repository.TransactionManager,
	pricing client.PricingClient,
	inventory client.InventoryClient,
	notifier NotificationService,
	hub *ws.Hub,
	log *logrus.Logger,
) OrderService {
	return &orderService{
		orderRepo:    orderRepo,
		itemRepo:     itemRepo,
		customerRepo: customerRepo,
		historyRepo:  historyRepo,
		txManager:    txManager,
		pricing:      pricing,
		inventory:    inventory,
		notifier:     notifier,
		hub:          hub,
		log:          log,
	}
}

// --- Implementation ---

func (s *orderService) CreateOrder(ctx context.Context, userID string, req CreateOrderRequest) (*model.Order, error) {
	if len(req.Items) == 0 {
		return nil, apperr.Validation("order requires at least one item")
	}
	for _, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, apperr.Validation("item quantity must be positive")
		}
	}

	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, apperr.Validation("invalid customer_id")
	}
	staffID, err := uuid.Parse(userID)
	if err != nil {
		return nil, apperr.Validation("invalid staff id")
	}

	// Snapshot catalog prices server-side; line totals never trust the request.
	type pricedItem struct {
		itemID    uuid.UUID
		quantity  int
		unitPrice decimal.Decimal
		lineTotal decimal.Decimal
		custom    string
	}
	priced := make([]pricedItem, 0, len(req.Items))
	priceLines := make([]client.PriceLineItem, 0, len(req.Items))
	for _, item := range req.Items {
		itemID, parseErr := uuid.Parse(item.JewelryItemID)
		if parseErr != nil {
			return nil, apperr.Validation("invalid jewelry_item_id %s", item.JewelryItemID)
		}
		catalogItem, findErr := s.itemRepo.FindByID(ctx, itemID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return nil, apperr.NotFound("jewelry item")
			}
			return nil, apperr.Internal("failed to load jewelry item", findErr)
		}
		lineTotal := catalogItem.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))).Round(2)
		priced = append(priced, pricedItem{
			itemID:    itemID,
			quantity:  item.Quantity,
			unitPrice: catalogItem.UnitPrice,
			lineTotal: lineTotal,
			custom:    item.Customization,
		})
		priceLines = append(priceLines, client.PriceLineItem{
			JewelryItemID: itemID.String(),
			Quantity:      item.Quantity,
			UnitPrice:     catalogItem.UnitPrice,
		})
	}

	// Totals come from the pricing service before the transaction opens; the
	// result is persisted, not recomputed later. An outage degrades to the
	// local approximation instead of blocking creation.
	totals, err := s.pricing.CalculateOrderTotal(ctx, priceLines)
	if err != nil {
		s.log.WithFields(logrus.Fields{
			"customer_id": customerID,
			"error":       err,
		}).Warn("pricing service unavailable, using fallback formula")
		totals = fallbackTotals(priceLines)
	}

	var order *model.Order
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, findErr := s.customerRepo.FindByID(txCtx, customerID); findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("customer")
			}
			return apperr.Internal("failed to load customer", findErr)
		}

		orderNumber, numErr := s.generateOrderNumber(txCtx)
		if numErr != nil {
			return apperr.Internal("failed to generate order number", numErr)
		}

		order = &model.Order{
			OrderNumber:         orderNumber,
			CustomerID:          customerID,
			StaffID:             staffID,
			OrderType:           req.OrderType,
			Status:              model.OrderPending,
			Subtotal:            totals.Subtotal.Round(2),
			MakingCharges:       totals.MakingCharges.Round(2),
			WastageAmount:       totals.WastageAmount.Round(2),
			GSTAmount:           totals.GSTAmount.Round(2),
			TotalAmount:         totals.TotalAmount.Round(2),
			SpecialInstructions: req.SpecialInstructions,
			EstimatedCompletion: req.EstimatedCompletion,
		}
		if createErr := s.orderRepo.Create(txCtx, order); createErr != nil {
			return apperr.Internal("failed to create order", createErr)
		}

		for _, p := range priced {
			orderItem := &model.OrderItem{
				OrderID:       order.ID,
				JewelryItemID: p.itemID,
				Quantity:      p.quantity,
				UnitPrice:     p.unitPrice,
				LineTotal:     p.lineTotal,
				Customization: p.custom,
			}
			if itemErr := s.orderRepo.CreateItem(txCtx, orderItem); itemErr != nil {
				return apperr.Internal("failed to create order item", itemErr)
			}
		}

		return s.appendHistory(txCtx, order.ID, string(model.OrderPending), "Order created", staffID)
	})
	if err != nil {
		return nil, err
	}

	// Post-commit effects, each guarded so one failure cannot affect another
	// or the committed order.
	for _, p := range priced {
		if invErr := s.inventory.AdjustStock(ctx, p.itemID.String(), -p.quantity); invErr != nil {
			s.log.WithFields(logrus.Fields{
				"order_id": order.ID,
				"item_id":  p.itemID,
				"delta":    -p.quantity,
				"error":    invErr,
			}).Error("inventory debit failed, manual reconciliation required")
		}
	}
	s.notifier.Notify(ctx, customerID, model.NotifyOrderCreated, model.EntityOrder, order.ID, map[string]string{
		"number": order.OrderNumber,
		"total":  order.TotalAmount.StringFixed(2),
	})
	s.broadcast(order, "order_created")

	return s.orderRepo.FindByIDWithDetails(ctx, order.ID)
}

func (s *orderService) GetOrder(ctx context.Context, id string) (*model.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid order id")
	}
	order, err := s.orderRepo.FindByIDWithDetails(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("order")
		}
		return nil, apperr.Internal("failed to load order", err)
	}
	return order, nil
}

func (s *orderService) ListOrders(ctx context.Context, filter repository.OrderListFilter) ([]model.Order, int64, error) {
	if filter.Page <= 0 {
		filter.Page = 1
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list orders", err)
	}
	return orders, total, nil
}

func (s *orderService) UpdateOrder(ctx context.Context, id string, req UpdateOrderRequest) (*model.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid order id")
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, findErr := s.orderRepo.FindByID(txCtx, orderID)
		if findErr != nil {
			if errors.Is(findErr, gorm.ErrRecordNotFound) {
				return apperr.NotFound("order")
			}
			return apperr.Internal("failed to load order", findErr)
		}

		if order.Status != model.OrderPending && order.Status != model.OrderConfirmed {
			return apperr.InvalidState("order can only be edited while pending or confirmed, current status is %s", order.Status)
		}

		if req.SpecialInstructions != nil {
			order.SpecialInstructions = *req.SpecialInstructions
		}
		if req.EstimatedCompletion != nil {
			order.EstimatedCompletion = req.EstimatedCompletion
		}
		if updateErr := s.orderRepo.Update(txCtx, order); updateErr != nil {
			return apperr.Internal("failed to update order", updateErr)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.orderRepo.FindByIDWithDetails(ctx, orderID)
}

func (s *orderService) UpdateStatus(ctx context.Context, userID, id, newStatus, notes string) (*model.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid order id")
	}
	target, ok := model.ParseOrderStatus(newStatus)
	if !ok {
		return nil, apperr.Validation("unknown order status %s", newStatus)
	}
	actorID, _ := uuid.Parse(userID)

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

		if !order.Status.CanTransitionTo(target) {
			return apperr.InvalidTransition("order", string(order.Status), string(target))
		}

		if updateErr := s.orderRepo.UpdateStatus(txCtx, orderID, target); updateErr != nil {
			return apperr.Internal("failed to update order status", updateErr)
		}
		order.Status = target
		return s.appendHistory(txCtx, orderID, string(target), notes, actorID)
	})
	if err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, order.CustomerID, model.NotifyOrderStatus, model.EntityOrder, order.ID, map[string]string{
		"number": order.OrderNumber,
		"status": string(order.Status),
	})
	s.broadcast(order, "order_status_changed")

	return order, nil
}

func (s *orderService) CancelOrder(ctx context.Context, userID, id, reason string) (*model.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid order id")
	}
	actorID, _ := uuid.Parse(userID)

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

		if order.Status != model.OrderPending && order.Status != model.OrderConfirmed {
			return apperr.InvalidState("order can only be cancelled while pending or confirmed, current status is %s", order.Status)
		}

		if updateErr := s.orderRepo.UpdateStatus(txCtx, orderID, model.OrderCancelled); updateErr != nil {
			return apperr.Internal("failed to cancel order", updateErr)
		}
		order.Status = model.OrderCancelled
		return s.appendHistory(txCtx, orderID, string(model.OrderCancelled), "Cancelled: "+reason, actorID)
	})
	if err != nil {
		return nil, err
	}

	// Restore the stock debited at creation, best-effort per item.
	for _, item := range order.Items {
		if invErr := s.inventory.AdjustStock(ctx, item.JewelryItemID.String(), item.Quantity); invErr != nil {
			s.log.WithFields(logrus.Fields{
				"order_id": order.ID,
				"item_id":  item.JewelryItemID,
				"delta":    item.Quantity,
				"error":    invErr,
			}).Error("inventory restore failed, manual reconciliation required")
		}
	}
	s.notifier.Notify(ctx, order.CustomerID, model.NotifyOrderStatus, model.EntityOrder, order.ID, map[string]string{
		"number": order.OrderNumber,
		"status": string(model.OrderCancelled),
	})
	s.broadcast(order, "order_status_changed")

	return order, nil
}

func (s *orderService) GetStats(ctx context.Context, start, end *time.Time) (OrderStats, error) {
	counts, err := s.orderRepo.CountByStatus(ctx, start, end)
	if err != nil {
		return OrderStats{}, apperr.Internal("failed to aggregate order counts", err)
	}
	revenue, completed, err := s.orderRepo.RevenueTotals(ctx, start, end)
	if err != nil {
		return OrderStats{}, apperr.Internal("failed to aggregate revenue", err)
	}

	stats := OrderStats{
		StatusCounts:      counts,
		TotalRevenue:      revenue.StringFixed(2),
		CompletedOrders:   completed,
		AverageOrderValue: "0.00",
		StartDate:         start,
		EndDate:           end,
	}
	if completed > 0 {
		stats.AverageOrderValue = revenue.
			Div(decimal.NewFromInt(completed)).Round(2).StringFixed(2)
	}
	return stats, nil
}

func (s *orderService) GetHistory(ctx context.Context, id string) ([]model.StatusHistory, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid order id")
	}
	entries, err := s.historyRepo.ListByEntity(ctx, model.EntityOrder, orderID)
	if err != nil {
		return nil, apperr.Internal("failed to load order history", err)
	}
	return entries, nil
}

// --- Helpers ---

func (s *orderService) generateOrderNumber(ctx context.Context) (string, error) {
	today := time.Now().UTC().Format("20060102")
	prefix := "ORD-" + today + "-"

	count, err := s.orderRepo.CountByPrefix(ctx, prefix)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%05d", prefix, count+1), nil
}

func (s *orderService) appendHistory(ctx context.Context, orderID uuid.UUID, status, notes string, actorID uuid.UUID) error {
	entry := &model.StatusHistory{
		EntityType: model.EntityOrder,
		EntityID:   orderID,
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

func (s *orderService) broadcast(order *model.Order, event string) {
	if s.hub == nil {
		return
	}
	s.hub.BroadcastStatus(ws.StatusEvent{
		Event:      event,
		EntityType: model.EntityOrder,
		EntityID:   order.ID.String(),
		Number:     order.OrderNumber,
		Status:     string(order.Status),
	})
}

// fallbackTotals approximates the pricing service's breakdown: 10% making
// charge, 2% wastage, 3% GST on the sum of the three.
func fallbackTotals(items []client.PriceLineItem) client.OrderTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	subtotal = subtotal.Round(2)
	making := subtotal.Mul(fallbackMakingRate).Round(2)
	wastage := subtotal.Mul(fallbackWastageRate).Round(2)
	gst := subtotal.Add(making).Add(wastage).Mul(fallbackGSTRate).Round(2)
	return client.OrderTotals{
		Subtotal:      subtotal,
		MakingCharges: making,
		WastageAmount: wastage,
		GSTAmount:     gst,
		TotalAmount:   subtotal.Add(making).Add(wastage).Add(gst),
	}
}
