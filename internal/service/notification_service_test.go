package service

import (
	"context"
	"encoding/json"
	"testing"

	"jewelry-backend/internal/apperr"
	"jewelry-backend/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendUsesDefaultChannelsFromProfile(t *testing.T) {
	env := newTestEnv(t)
	customer := seedCustomer(t, env.db) // phone + email + whatsapp opt-in

	notification, err := env.notifications.Send(context.Background(), SendNotificationRequest{
		CustomerID:   customer.ID.String(),
		Type:         model.NotifyOrderStatus,
		TemplateData: map[string]string{"number": "ORD-20260831-00001", "status": "confirmed"},
	})
	require.NoError(t, err)

	var channels []string
	require.NoError(t, json.Unmarshal([]byte(notification.Channels), &channels))
	assert.ElementsMatch(t, []string{model.ChannelSMS, model.ChannelEmail, model.ChannelWhatsapp}, channels)

	require.Len(t, env.gateway.deliveries, 3)
	assert.Contains(t, env.gateway.deliveries[0].Message, "ORD-20260831-00001")
	assert.Contains(t, env.gateway.deliveries[0].Message, customer.Name)
}

func TestSendChannelFailureIsIsolated(t *testing.T) {
	env := newTestEnv(t)
	customer := seedCustomer(t, env.db)
	env.gateway.failChannels = map[string]bool{model.ChannelSMS: true}

	notification, err := env.notifications.Send(context.Background(), SendNotificationRequest{
		CustomerID:   customer.ID.String(),
		Type:         model.NotifyOrderStatus,
		TemplateData: map[string]string{"number": "ORD-X", "status": "completed"},
	})
	require.NoError(t, err)

	// SMS failed but EMAIL and WHATSAPP still went out.
	require.Len(t, env.gateway.deliveries, 2)

	var results map[string]string
	require.NoError(t, json.Unmarshal([]byte(notification.ChannelResults), &results))
	assert.Contains(t, results[model.ChannelSMS], "failed")
	assert.Equal(t, "sent", results[model.ChannelEmail])
	assert.Equal(t, "sent", results[model.ChannelWhatsapp])

	assert.Equal(t, model.NotificationSent, notification.Status)
	assert.NotNil(t, notification.SentAt)
}

func TestSendRecordSurvivesTotalDeliveryFailure(t *testing.T) {
	env := newTestEnv(t)
	customer := seedCustomer(t, env.db)
	env.gateway.failChannels = map[string]bool{
		model.ChannelSMS:      true,
		model.ChannelEmail:    true,
		model.ChannelWhatsapp: true,
	}

	notification, err := env.notifications.Send(context.Background(), SendNotificationRequest{
		CustomerID:   customer.ID.String(),
		Type:         model.NotifyReturnStatus,
		TemplateData: map[string]string{"number": "RET-X", "status": "approved"},
	})
	require.NoError(t, err)
	assert.Empty(t, env.gateway.deliveries)

	var stored model.Notification
	require.NoError(t, env.db.First(&stored, "id = ?", notification.ID).Error)
	var results map[string]string
	require.NoError(t, json.Unmarshal([]byte(stored.ChannelResults), &results))
	for _, outcome := range results {
		assert.Contains(t, outcome, "failed")
	}
}

func TestSendValidation(t *testing.T) {
	env := newTestEnv(t)
	customer := seedCustomer(t, env.db)

	_, err := env.notifications.Send(context.Background(), SendNotificationRequest{
		CustomerID: customer.ID.String(),
		Type:       "NO_SUCH_TYPE",
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	_, err = env.notifications.Send(context.Background(), SendNotificationRequest{
		CustomerID: uuid.NewString(),
		Type:       model.NotifyOrderStatus,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestNotifySwallowsErrors(t *testing.T) {
	env := newTestEnv(t)

	// Unknown customer: dispatch fails internally, caller is unaffected.
	env.notifications.Notify(context.Background(), uuid.New(), model.NotifyOrderCreated, model.EntityOrder, uuid.New(), nil)

	var count int64
	require.NoError(t, env.db.Model(&model.Notification{}).Count(&count).Error)
	assert.Equal(t, int64(0), count)
}

func TestEntityNotificationHistory(t *testing.T) {
	env := newTestEnv(t)
	customer := seedCustomer(t, env.db)
	entityID := uuid.New()

	env.notifications.Notify(context.Background(), customer.ID, model.NotifyRepairStatus, model.EntityRepair, entityID, map[string]string{
		"number": "RPR-1", "status": "assessed",
	})
	env.notifications.Notify(context.Background(), customer.ID, model.NotifyRepairStatus, model.EntityRepair, entityID, map[string]string{
		"number": "RPR-1", "status": "approved",
	})

	history, err := env.notifications.History(context.Background(), model.EntityRepair, entityID)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
