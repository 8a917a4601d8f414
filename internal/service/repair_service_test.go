package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"jewelry-backend/internal/apperr"
	"jewelry-backend/internal/model"
	"jewelry-backend/internal/repository"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestRepair(t *testing.T, env *testEnv, staffID string, req CreateRepairRequest) *model.RepairRequest {
	t.Helper()
	repair, err := env.repairs.CreateRepair(context.Background(), staffID, req)
	require.NoError(t, err)
	return repair
}

func repairFixture(t *testing.T, env *testEnv) (*model.Order, *model.User) {
	t.Helper()
	customer := seedCustomer(t, env.db)
	staff := seedStaff(t, env.db, "staff")
	item := seedItem(t, env.db, "CHAIN-001", 20000)
	order := createTestOrder(t, env, customer.ID.String(), staff.ID.String(), []OrderItemRequest{
		{JewelryItemID: item.ID.String(), Quantity: 1},
	})
	return order, staff
}

func TestCreateRepair(t *testing.T) {
	env := newTestEnv(t)
	order, staff := repairFixture(t, env)

	repair := createTestRepair(t, env, staff.ID.String(), CreateRepairRequest{
		OrderID:            order.ID.String(),
		ItemDescription:    "22K gold chain, 24 inch",
		ProblemDescription: "broken clasp",
		RepairType:         model.RepairOther,
	})

	assert.True(t, strings.HasPrefix(repair.RepairNumber, "RPR-"))
	assert.Equal(t, model.RepairReceived, repair.Status)

	history, err := env.repairs.GetHistory(context.Background(), repair.ID.String())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, string(model.RepairReceived), history[0].Status)

	// Missing order is rejected before anything persists.
	_, err = env.repairs.CreateRepair(context.Background(), staff.ID.String(), CreateRepairRequest{
		OrderID:            "4fa4f327-27b0-4b05-8f0c-2ba0b6b76d1e",
		ItemDescription:    "ring",
		ProblemDescription: "loose stone",
		RepairType:         model.RepairStoneSetting,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
}

func TestRepairStatusGraph(t *testing.T) {
	env := newTestEnv(t)
	order, staff := repairFixture(t, env)
	repair := createTestRepair(t, env, staff.ID.String(), CreateRepairRequest{
		OrderID:            order.ID.String(),
		ItemDescription:    "bangle",
		ProblemDescription: "dent",
		RepairType:         model.RepairPolishing,
	})

	// received cannot jump straight to delivered.
	_, err := env.repairs.UpdateStatus(context.Background(), staff.ID.String(), repair.ID.String(), "delivered", "")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidTransition))

	for _, status := range []string{"assessed", "approved", "in_progress", "completed", "ready_for_pickup", "delivered"} {
		updated, stepErr := env.repairs.UpdateStatus(context.Background(), staff.ID.String(), repair.ID.String(), status, "")
		require.NoError(t, stepErr, "transition to %s", status)
		assert.Equal(t, model.RepairStatus(status), updated.Status)
	}

	history, err := env.repairs.GetHistory(context.Background(), repair.ID.String())
	require.NoError(t, err)
	assert.Len(t, history, 7)
}

func TestRepairApprovalGate(t *testing.T) {
	env := newTestEnv(t)
	order, staff := repairFixture(t, env)
	repair := createTestRepair(t, env, staff.ID.String(), CreateRepairRequest{
		OrderID:            order.ID.String(),
		ItemDescription:    "necklace",
		ProblemDescription: "resize",
		RepairType:         model.RepairResizing,
		RequiresApproval:   true,
	})

	approved := true
	// Approval before assessment is premature.
	_, err := env.repairs.UpdateRepair(context.Background(), repair.ID.String(), UpdateRepairRequest{
		CustomerApproved: &approved,
	})
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))

	_, err = env.repairs.UpdateStatus(context.Background(), staff.ID.String(), repair.ID.String(), "assessed", "")
	require.NoError(t, err)

	// Cannot move to approved until the customer signs off.
	_, err = env.repairs.UpdateStatus(context.Background(), staff.ID.String(), repair.ID.String(), "approved", "")
	require.Error(t, err)
	assert.True(t, apperr.IsKind(err, apperr.KindInvalidState))

	_, err = env.repairs.UpdateRepair(context.Background(), repair.ID.String(), UpdateRepairRequest{
		CustomerApproved: &approved,
	})
	require.NoError(t, err)

	updated, err := env.repairs.UpdateStatus(context.Background(), staff.ID.String(), repair.ID.String(), "approved", "")
	require.NoError(t, err)
	assert.Equal(t, model.RepairApproved, updated.Status)
}

func TestRepairCostUpdateNotifiesCustomer(t *testing.T) {
	env := newTestEnv(t)
	order, staff := repairFixture(t, env)
	repair := createTestRepair(t, env, staff.ID.String(), CreateRepairRequest{
		OrderID:            order.ID.String(),
		ItemDescription:    "earrings",
		ProblemDescription: "missing stone",
		RepairType:         model.RepairStoneSetting,
	})
	before := len(env.gateway.deliveries)

	cost := decimal.NewFromInt(2500)
	updated, err := env.repairs.UpdateRepair(context.Background(), repair.ID.String(), UpdateRepairRequest{
		EstimatedCost: &cost,
	})
	require.NoError(t, err)
	assert.Equal(t, "2500.00", updated.EstimatedCost.StringFixed(2))
	assert.Greater(t, len(env.gateway.deliveries), before)
}

func TestRepairQueueOrdering(t *testing.T) {
	env := newTestEnv(t)
	order, staff := repairFixture(t, env)
	technician := seedStaff(t, env.db, "staff2")

	soon := time.Now().UTC().Add(24 * time.Hour)
	later := time.Now().UTC().Add(72 * time.Hour)

	noDeadline := createTestRepair(t, env, staff.ID.String(), CreateRepairRequest{
		OrderID: order.ID.String(), ItemDescription: "a", ProblemDescription: "x", RepairType: model.RepairCleaning,
	})
	dueLater := createTestRepair(t, env, staff.ID.String(), CreateRepairRequest{
		OrderID: order.ID.String(), ItemDescription: "b", ProblemDescription: "y", RepairType: model.RepairCleaning,
		EstimatedCompletion: &later,
	})
	dueSoon := createTestRepair(t, env, staff.ID.String(), CreateRepairRequest{
		OrderID: order.ID.String(), ItemDescription: "c", ProblemDescription: "z", RepairType: model.RepairCleaning,
		EstimatedCompletion: &soon, TechnicianID: technician.ID.String(),
	})
	// Delivered work drops off the queue.
	done := createTestRepair(t, env, staff.ID.String(), CreateRepairRequest{
		OrderID: order.ID.String(), ItemDescription: "d", ProblemDescription: "w", RepairType: model.RepairCleaning,
	})
	for _, status := range []string{"assessed", "approved", "in_progress", "completed"} {
		_, err := env.repairs.UpdateStatus(context.Background(), staff.ID.String(), done.ID.String(), status, "")
		require.NoError(t, err)
	}

	queue, err := env.repairs.GetQueue(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, queue, 3)
	assert.Equal(t, dueSoon.ID, queue[0].ID)
	assert.Equal(t, dueLater.ID, queue[1].ID)
	assert.Equal(t, noDeadline.ID, queue[2].ID)

	mine, err := env.repairs.GetQueue(context.Background(), technician.ID.String())
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, dueSoon.ID, mine[0].ID)
}

func TestRepairPhotoUploadReplacesSet(t *testing.T) {
	env := newTestEnv(t)
	order, staff := repairFixture(t, env)
	repair := createTestRepair(t, env, staff.ID.String(), CreateRepairRequest{
		OrderID: order.ID.String(), ItemDescription: "ring", ProblemDescription: "scratch", RepairType: model.RepairPolishing,
	})

	updated, err := env.repairs.UploadPhotos(context.Background(), repair.ID.String(), UploadPhotosRequest{
		Type:   "before",
		Photos: []string{"https://cdn.example/p1.jpg", "https://cdn.example/p2.jpg"},
	})
	require.NoError(t, err)
	assert.Contains(t, updated.BeforePhotos, "p1.jpg")

	updated, err = env.repairs.UploadPhotos(context.Background(), repair.ID.String(), UploadPhotosRequest{
		Type:   "before",
		Photos: []string{"https://cdn.example/p3.jpg"},
	})
	require.NoError(t, err)
	assert.NotContains(t, updated.BeforePhotos, "p1.jpg")
	assert.Contains(t, updated.BeforePhotos, "p3.jpg")
	assert.Equal(t, "[]", updated.AfterPhotos)
}

func TestRepairListFilter(t *testing.T) {
	env := newTestEnv(t)
	order, staff := repairFixture(t, env)
	repair := createTestRepair(t, env, staff.ID.String(), CreateRepairRequest{
		OrderID: order.ID.String(), ItemDescription: "ring", ProblemDescription: "scratch", RepairType: model.RepairPolishing,
	})
	_, err := env.repairs.UpdateStatus(context.Background(), staff.ID.String(), repair.ID.String(), "assessed", "")
	require.NoError(t, err)

	assessed, total, err := env.repairs.ListRepairs(context.Background(), repository.RepairListFilter{Status: "assessed"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, assessed, 1)
	assert.Equal(t, repair.ID, assessed[0].ID)

	none, total, err := env.repairs.ListRepairs(context.Background(), repository.RepairListFilter{Status: "delivered"})
	require.NoError(t, err)
	assert.Equal(t, int64(0), total)
	assert.Empty(t, none)
}
