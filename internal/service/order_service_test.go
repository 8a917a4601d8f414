package service

import (
	"context"
	"strings"
	"testing"

	"jewelry-backend/internal/apperr"
	"jewelry-backend/internal/client"
	"jewelry-backend/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestOrder(t *testing.T, env *testEnv, customerID, staffID string, items []OrderItemRequest) *model.Order {
	t.Helper()
	order, err := env.orders.CreateOrder(context.Background(), staffID, CreateOrderRequest{
		CustomerID: customerID,
		OrderType:  model.OrderTypeSale,
		Items:      items,
	})
	require.NoError(t, err)
	return order
}

func TestCreateOrderFallbackPricing(t *testing.T) {
	env := newTestEnv(t)
	customer := seedCustomer(t, env.db)
	staff := seedStaff(t, env.db, "staff")
	item := seedItem(t, env.db, "RING-001", 15000)

	env.pricing.err = apperr.Dependency("pricing", assert.AnError)

	order := createTestOrder(t, env, customer.ID.String(), staff.ID.String(), []OrderItemRequest{
		{JewelryItemID: item.ID.String(), Quantity: 1},
	})

	assert.Equal(t, "15000.00", order.Subtotal.StringFixed(2))
	assert.Equal(t, "1500.00", order.MakingCharges.StringFixed(2))
	assert.Equal(t, "300.00", order.WastageAmount.StringFixed(2))
	assert.Equal(t, "504.00", order.GSTAmount.StringFixed(2))
	assert.Equal(t, "17304.00", order.TotalAmount.StringFixed(2))
	assert.Equal(t, model.OrderPending, order.Status)
	assert.True(t, strings.HasPrefix(order.OrderNumber, "ORD-"))
}

func TestCreateOrderSnapshotsCatalogPrice(t *testing.T) {
	env := newTestEnv(t)
	customer := seedCustomer(t, env.db)
	staff := seedStaff(t, env.db, "staff")
	item := seedItem(t, env.db, "RING-002", 8000)

	env.pricing.totals = client.OrderTotals{
		Subtotal:      decimal.NewFromInt(16000),
		MakingCharges: decimal.NewFromInt(1600),
		WastageAmount: decimal.NewFromInt(320),
		GSTAmount:     decimal.RequireFromString("537.60"),
		TotalAmount:   decimal.RequireFromString("18457.60"),
	}

	order := createTestOrder(t, env, customer.ID.String(), staff.ID.String(), []OrderItemRequest{
		{JewelryItemID: item.ID.String(), Quantity: 2},
	})

	require.Len(t, order.Items, 1)
	assert.Equal(t, "8000.00", order.Items[0].UnitPrice.StringFixed(2))
	assert.Equal(t, "16000.00", order.Items[0].LineTotal.StringFixed(2))
	assert.Equal(t, "18457.60", order.TotalAmount.StringFixed(2))
	assert.Equal(t, 1, env.pricing.calls)

	// Stock debited once per line after commit.
	require.Len(t, env.inventory.adjustments, 1)
	assert.Equal(t, item.ID.String(), env.inventory.adjustments[0].ItemID)
	assert.Equal(t, -2, env.inventory.adjustments[0].Delta)
}

func TestCreateOrderValidation(t *testing.T) {
	env := newTestEnv(t)
	customer := seedCustomer(t, env.db)
	staff := seedStaff(t, env.db, "staff")

	_, err := env.orders.CreateOrder(context.Background(), staff.ID.String(), CreateOrderRequest{
		CustomerID: customer.ID.String(),
		OrderType:  model.OrderTypeSale,
		Items:      nil,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))

	item := seedItem(t, env.db, "RING-003", 5000)
	_, err = env.orders.CreateOrder(context.Background(), staff.ID.String(), CreateOrderRequest{
		CustomerID: customer.ID.String(),
		OrderType:  model.OrderTypeSale,
		Items:      []OrderItemRequest{{JewelryItemID: item.ID.String(), Quantity: -1}},
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindValidation))
}

func TestOrderStatusTransitionsAndHistory(t *testing.T) {
	env := newTestEnv(t)
	customer := seedCustomer(t, env.db)
	staff := seedStaff(t, env.db, "staff")
	item := seedItem(t, env.db, "RING-004", 5000)
	order := createTestOrder(t, env, customer.ID.String(), staff.ID.String(), []OrderItemRequest{
		{JewelryItemID: item.ID.String(), Quantity: 1},
	})

	// Skipping states is rejected without touching the row.
	_, err := env.orders.UpdateStatus(context.Background(), staff.ID.String(), order.ID.String(), "completed", "")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidTransition))

	updated, err := env.orders.UpdateStatus(context.Background(), staff.ID.String(), order.ID.String(), "confirmed", "customer paid advance")
	require.NoError(t, err)
	assert.Equal(t, model.OrderConfirmed, updated.Status)

	history, err := env.orders.GetHistory(context.Background(), order.ID.String())
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, string(model.OrderPending), history[0].Status)
	assert.Equal(t, string(model.OrderConfirmed), history[1].Status)
	assert.Equal(t, "customer paid advance", history[1].Notes)
	require.NotNil(t, history[1].ChangedBy)
	assert.Equal(t, staff.ID, *history[1].ChangedBy)
}

func TestCancelOrderRestoresInventory(t *testing.T) {
	env := newTestEnv(t)
	customer := seedCustomer(t, env.db)
	staff := seedStaff(t, env.db, "manager")
	item := seedItem(t, env.db, "RING-005", 5000)
	order := createTestOrder(t, env, customer.ID.String(), staff.ID.String(), []OrderItemRequest{
		{JewelryItemID: item.ID.String(), Quantity: 3},
	})
	env.inventory.adjustments = nil

	cancelled, err := env.orders.CancelOrder(context.Background(), staff.ID.String(), order.ID.String(), "customer changed mind")
	require.NoError(t, err)
	assert.Equal(t, model.OrderCancelled, cancelled.Status)

	require.Len(t, env.inventory.adjustments, 1)
	assert.Equal(t, 3, env.inventory.adjustments[0].Delta)

	// Terminal, cannot cancel twice.
	_, err = env.orders.CancelOrder(context.Background(), staff.ID.String(), order.ID.String(), "again")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestUpdateOrderOnlyBeforeProduction(t *testing.T) {
	env := newTestEnv(t)
	customer := seedCustomer(t, env.db)
	staff := seedStaff(t, env.db, "staff")
	item := seedItem(t, env.db, "RING-006", 5000)
	order := createTestOrder(t, env, customer.ID.String(), staff.ID.String(), []OrderItemRequest{
		{JewelryItemID: item.ID.String(), Quantity: 1},
	})

	notes := "engrave initials"
	updated, err := env.orders.UpdateOrder(context.Background(), order.ID.String(), UpdateOrderRequest{
		SpecialInstructions: &notes,
	})
	require.NoError(t, err)
	assert.Equal(t, notes, updated.SpecialInstructions)

	_, err = env.orders.UpdateStatus(context.Background(), staff.ID.String(), order.ID.String(), "confirmed", "")
	require.NoError(t, err)
	_, err = env.orders.UpdateStatus(context.Background(), staff.ID.String(), order.ID.String(), "in_progress", "")
	require.NoError(t, err)

	_, err = env.orders.UpdateOrder(context.Background(), order.ID.String(), UpdateOrderRequest{
		SpecialInstructions: &notes,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))
}

func TestOrderStats(t *testing.T) {
	env := newTestEnv(t)
	customer := seedCustomer(t, env.db)
	staff := seedStaff(t, env.db, "staff")
	item := seedItem(t, env.db, "RING-007", 10000)

	env.pricing.totals = client.OrderTotals{
		Subtotal:      decimal.NewFromInt(10000),
		MakingCharges: decimal.NewFromInt(1000),
		WastageAmount: decimal.NewFromInt(200),
		GSTAmount:     decimal.NewFromInt(336),
		TotalAmount:   decimal.NewFromInt(11536),
	}

	order := createTestOrder(t, env, customer.ID.String(), staff.ID.String(), []OrderItemRequest{
		{JewelryItemID: item.ID.String(), Quantity: 1},
	})
	for _, status := range []string{"confirmed", "in_progress", "completed"} {
		_, err := env.orders.UpdateStatus(context.Background(), staff.ID.String(), order.ID.String(), status, "")
		require.NoError(t, err)
	}
	createTestOrder(t, env, customer.ID.String(), staff.ID.String(), []OrderItemRequest{
		{JewelryItemID: item.ID.String(), Quantity: 1},
	})

	stats, err := env.orders.GetStats(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.CompletedOrders)
	assert.Equal(t, "11536.00", stats.TotalRevenue)
	assert.Equal(t, "11536.00", stats.AverageOrderValue)

	counts := map[string]int64{}
	for _, row := range stats.StatusCounts {
		counts[row.Status] = row.Count
	}
	assert.Equal(t, int64(1), counts["completed"])
	assert.Equal(t, int64(1), counts["pending"])
}

func TestOrderStatsKeepsPaiseExact(t *testing.T) {
	env := newTestEnv(t)
	customer := seedCustomer(t, env.db)
	staff := seedStaff(t, env.db, "staff")
	item := seedItem(t, env.db, "RING-008", 9705)

	env.pricing.totals = client.OrderTotals{
		Subtotal:      decimal.RequireFromString("9705.15"),
		MakingCharges: decimal.RequireFromString("970.52"),
		WastageAmount: decimal.RequireFromString("194.10"),
		GSTAmount:     decimal.RequireFromString("326.10"),
		TotalAmount:   decimal.RequireFromString("11195.87"),
	}

	for i := 0; i < 2; i++ {
		order := createTestOrder(t, env, customer.ID.String(), staff.ID.String(), []OrderItemRequest{
			{JewelryItemID: item.ID.String(), Quantity: 1},
		})
		for _, status := range []string{"confirmed", "in_progress", "completed"} {
			_, err := env.orders.UpdateStatus(context.Background(), staff.ID.String(), order.ID.String(), status, "")
			require.NoError(t, err)
		}
	}

	stats, err := env.orders.GetStats(context.Background(), nil, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.CompletedOrders)
	assert.Equal(t, "22391.74", stats.TotalRevenue)
	assert.Equal(t, "11195.87", stats.AverageOrderValue)
}
