package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"text/template"
	"time"

	"jewelry-backend/internal/apperr"
	"jewelry-backend/internal/client"
	"jewelry-backend/internal/model"
	"jewelry-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// --- DTOs ---

type SendNotificationRequest struct {
	CustomerID   string            `json:"customer_id" binding:"required"`
	Type         string            `json:"type" binding:"required"`
	Channels     []string          `json:"channels"`
	TemplateData map[string]string `json:"template_data"`
	EntityType   string            `json:"entity_type"`
	EntityID     string            `json:"entity_id"`
}

// --- Templates ---

// Message templates keyed by notification type. Channels share the body; SMS
// and WHATSAPP get the short form where one exists.
var messageTemplates = map[string]string{
	model.NotifyOrderCreated:  "Dear {{.customer_name}}, your order {{.number}} for {{.total}} has been placed. Thank you for shopping with us.",
	model.NotifyOrderStatus:   "Dear {{.customer_name}}, your order {{.number}} is now {{.status}}.",
	model.NotifyRepairCreated: "Dear {{.customer_name}}, we have received your item for repair. Ticket {{.number}}.",
	model.NotifyRepairStatus:  "Dear {{.customer_name}}, repair {{.number}} is now {{.status}}.",
	model.NotifyRepairUpdated: "Dear {{.customer_name}}, repair {{.number}} has been updated. Estimated cost: {{.estimated_cost}}.",
	model.NotifyReturnStatus:  "Dear {{.customer_name}}, return request {{.number}} is now {{.status}}.",
}

// --- Interface ---

// NotificationService persists a dispatch record, then attempts delivery per
// channel independently. Notify never propagates failures to the caller;
// Send surfaces only validation and persistence errors.
type NotificationService interface {
	Send(ctx context.Context, req SendNotificationRequest) (*model.Notification, error)
	Notify(ctx context.Context, customerID uuid.UUID, notifType, entityType string, entityID uuid.UUID, data map[string]string)
	History(ctx context.Context, entityType string, entityID uuid.UUID) ([]model.Notification, error)
}

type notificationService struct {
	notificationRepo repository.NotificationRepository
	customerRepo     repository.CustomerRepository
	gateway          client.ChannelGateway
	log              *logrus.Logger
}

func NewNotificationService(
	notificationRepo repository.NotificationRepository,
	customerRepo repository.CustomerRepository,
	gateway client.ChannelGateway,
	log *logrus.Logger,
) NotificationService {
	return &notificationService{
		notificationRepo: notificationRepo,
		customerRepo:     customerRepo,
		gateway:          gateway,
		log:              log,
	}
}

// --- Implementation ---

func (s *notificationService) Send(ctx context.Context, req SendNotificationRequest) (*model.Notification, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, apperr.Validation("invalid customer_id")
	}
	if _, ok := messageTemplates[req.Type]; !ok {
		return nil, apperr.Validation("unknown notification type %s", req.Type)
	}

	var entityID uuid.UUID
	if req.EntityID != "" {
		entityID, err = uuid.Parse(req.EntityID)
		if err != nil {
			return nil, apperr.Validation("invalid entity_id")
		}
	}

	return s.dispatch(ctx, customerID, req.Type, req.EntityType, entityID, req.Channels, req.TemplateData)
}

func (s *notificationService) Notify(ctx context.Context, customerID uuid.UUID, notifType, entityType string, entityID uuid.UUID, data map[string]string) {
	if _, err := s.dispatch(ctx, customerID, notifType, entityType, entityID, nil, data); err != nil {
		s.log.WithFields(logrus.Fields{
			"customer_id": customerID,
			"type":        notifType,
			"entity_type": entityType,
			"entity_id":   entityID,
			"error":       err,
		}).Warn("notification dispatch failed")
	}
}

func (s *notificationService) History(ctx context.Context, entityType string, entityID uuid.UUID) ([]model.Notification, error) {
	notifications, err := s.notificationRepo.ListByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, apperr.Internal("failed to list notifications", err)
	}
	return notifications, nil
}

func (s *notificationService) dispatch(ctx context.Context, customerID uuid.UUID, notifType, entityType string, entityID uuid.UUID, channels []string, data map[string]string) (*model.Notification, error) {
	customer, err := s.customerRepo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperr.NotFound("customer")
		}
		return nil, apperr.Internal("failed to load customer", err)
	}

	if data == nil {
		data = map[string]string{}
	}
	if _, ok := data["customer_name"]; !ok {
		data["customer_name"] = customer.Name
	}

	if len(channels) == 0 {
		channels = defaultChannels(customer)
	}

	message, err := renderTemplate(notifType, data)
	if err != nil {
		return nil, apperr.Internal("failed to render notification template", err)
	}

	channelsJSON, _ := json.Marshal(channels)
	payloadJSON, _ := json.Marshal(data)

	// Persist the record before any delivery attempt so history exists even
	// when every channel fails.
	notification := &model.Notification{
		CustomerID:     customerID,
		Type:           notifType,
		EntityType:     entityType,
		Channels:       string(channelsJSON),
		ChannelResults: "{}",
		Payload:        string(payloadJSON),
		Status:         model.NotificationPending,
	}
	if entityID != uuid.Nil {
		notification.EntityID = &entityID
	}
	if err := s.notificationRepo.Create(ctx, notification); err != nil {
		return nil, apperr.Internal("failed to persist notification", err)
	}

	// One channel failing must not affect the others.
	results := make(map[string]string, len(channels))
	for _, channel := range channels {
		recipient := recipientFor(customer, channel)
		if recipient == "" {
			results[channel] = "failed: no recipient address"
			continue
		}
		if err := s.gateway.Deliver(ctx, customerID.String(), channel, recipient, message); err != nil {
			results[channel] = "failed: " + err.Error()
			s.log.WithFields(logrus.Fields{
				"notification_id": notification.ID,
				"channel":         channel,
				"error":           err,
			}).Warn("channel delivery failed")
			continue
		}
		results[channel] = "sent"
	}

	resultsJSON, _ := json.Marshal(results)
	now := time.Now().UTC()
	notification.ChannelResults = string(resultsJSON)
	notification.Status = model.NotificationSent
	notification.SentAt = &now
	if err := s.notificationRepo.Update(ctx, notification); err != nil {
		return nil, apperr.Internal("failed to record delivery outcome", err)
	}

	return notification, nil
}

// --- Helpers ---

func defaultChannels(customer *model.Customer) []string {
	var channels []string
	if customer.Phone != "" {
		channels = append(channels, model.ChannelSMS)
	}
	if customer.Email != "" {
		channels = append(channels, model.ChannelEmail)
	}
	if customer.WhatsappOptIn && customer.Phone != "" {
		channels = append(channels, model.ChannelWhatsapp)
	}
	return channels
}

func recipientFor(customer *model.Customer, channel string) string {
	switch channel {
	case model.ChannelSMS, model.ChannelWhatsapp:
		return customer.Phone
	case model.ChannelEmail:
		return customer.Email
	default:
		return ""
	}
}

func renderTemplate(notifType string, data map[string]string) (string, error) {
	raw, ok := messageTemplates[notifType]
	if !ok {
		raw = "Dear {{.customer_name}}, there is an update on your account."
	}
	tmpl, err := template.New(notifType).Parse(raw)
	if err != nil {
		return "", err
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
