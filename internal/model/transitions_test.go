package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOrderTransitions(t *testing.T) {
	cases := []struct {
		from    OrderStatus
		to      OrderStatus
		allowed bool
	}{
		{OrderPending, OrderConfirmed, true},
		{OrderPending, OrderCancelled, true},
		{OrderConfirmed, OrderInProgress, true},
		{OrderConfirmed, OrderCancelled, true},
		{OrderInProgress, OrderCompleted, true},
		{OrderInProgress, OrderCancelled, true},
		{OrderPending, OrderCompleted, false},
		{OrderPending, OrderInProgress, false},
		{OrderCompleted, OrderCancelled, false},
		{OrderCancelled, OrderPending, false},
		{OrderCompleted, OrderPending, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestRepairTransitions(t *testing.T) {
	cases := []struct {
		from    RepairStatus
		to      RepairStatus
		allowed bool
	}{
		{RepairReceived, RepairAssessed, true},
		{RepairAssessed, RepairApproved, true},
		{RepairApproved, RepairInProgress, true},
		{RepairInProgress, RepairCompleted, true},
		{RepairCompleted, RepairReadyForPickup, true},
		{RepairReadyForPickup, RepairDelivered, true},
		{RepairReceived, RepairCancelled, true},
		{RepairAssessed, RepairCancelled, true},
		{RepairApproved, RepairCancelled, true},
		{RepairInProgress, RepairCancelled, true},
		{RepairReceived, RepairDelivered, false},
		{RepairCompleted, RepairCancelled, false},
		{RepairReadyForPickup, RepairCancelled, false},
		{RepairDelivered, RepairReceived, false},
		{RepairCancelled, RepairReceived, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestReturnTransitions(t *testing.T) {
	cases := []struct {
		from    ReturnStatus
		to      ReturnStatus
		allowed bool
	}{
		{ReturnRequested, ReturnApproved, true},
		{ReturnRequested, ReturnRejected, true},
		{ReturnRequested, ReturnCancelled, true},
		{ReturnApproved, ReturnProcessed, true},
		{ReturnApproved, ReturnCancelled, true},
		// Rejected returns can be re-requested with more evidence.
		{ReturnRejected, ReturnRequested, true},
		{ReturnProcessed, ReturnCompleted, true},
		{ReturnRequested, ReturnProcessed, false},
		{ReturnRejected, ReturnApproved, false},
		{ReturnProcessed, ReturnApproved, false},
		{ReturnCompleted, ReturnRequested, false},
		{ReturnCancelled, ReturnRequested, false},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.allowed, tc.from.CanTransitionTo(tc.to), "%s -> %s", tc.from, tc.to)
	}
}

func TestParseStatus(t *testing.T) {
	if _, ok := ParseOrderStatus("confirmed"); !ok {
		t.Error("confirmed should parse")
	}
	if _, ok := ParseOrderStatus("shipped"); ok {
		t.Error("shipped is not an order status")
	}
	if _, ok := ParseRepairStatus("ready_for_pickup"); !ok {
		t.Error("ready_for_pickup should parse")
	}
	if _, ok := ParseReturnStatus("requested"); !ok {
		t.Error("requested should parse")
	}
	if _, ok := ParseReturnStatus("REQUESTED"); ok {
		t.Error("statuses are lowercase")
	}
}
