package service

import (
	"context"
	"errors"

	"jewelry-backend/internal/apperr"
	"jewelry-backend/internal/invoice"
	"jewelry-backend/internal/model"
	"jewelry-backend/internal/repository"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// InvoiceService renders tax invoices from committed order state. Rendering
// never mutates the order.
type InvoiceService interface {
	RenderOrderInvoice(ctx context.Context, orderID string) (pdf []byte, invoiceNumber string, err error)
}

type invoiceService struct {
	orderRepo repository.OrderRepository
	generator *invoice.Generator
}

func NewInvoiceService(orderRepo repository.OrderRepository, generator *invoice.Generator) InvoiceService {
	return &invoiceService{orderRepo: orderRepo, generator: generator}
}

func (s *invoiceService) RenderOrderInvoice(ctx context.Context, orderID string) ([]byte, string, error) {
	id, err := uuid.Parse(orderID)
	if err != nil {
		return nil, "", apperr.Validation("invalid order id")
	}

	order, err := s.orderRepo.FindByIDWithDetails(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", apperr.NotFound("order")
		}
		return nil, "", apperr.Internal("failed to load order", err)
	}

	if order.Status == model.OrderCancelled {
		return nil, "", apperr.InvalidState("cancelled orders have no invoice")
	}

	pdf, err := s.generator.Render(order)
	if err != nil {
		return nil, "", apperr.Internal("failed to render invoice", err)
	}
	return pdf, invoice.InvoiceNumber(order.OrderNumber), nil
}
