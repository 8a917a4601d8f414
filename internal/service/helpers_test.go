package service

import (
	"context"
	"fmt"
	"io"
	"testing"

	"jewelry-backend/internal/client"
	"jewelry-backend/internal/model"
	"jewelry-backend/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Customer{},
		&model.JewelryItem{},
		&model.Order{},
		&model.OrderItem{},
		&model.RepairRequest{},
		&model.ReturnRequest{},
		&model.ReturnItem{},
		&model.ExchangeItem{},
		&model.StatusHistory{},
		&model.Notification{},
	))
	return db
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func seedCustomer(t *testing.T, db *gorm.DB) *model.Customer {
	t.Helper()
	customer := &model.Customer{
		Name:          "Priya Sharma",
		Email:         "priya@example.com",
		Phone:         "+919900112233",
		WhatsappOptIn: true,
	}
	require.NoError(t, db.Create(customer).Error)
	return customer
}

func seedStaff(t *testing.T, db *gorm.DB, role string) *model.User {
	t.Helper()
	suffix := uuid.NewString()[:8]
	staff := &model.User{
		Username: fmt.Sprintf("%s-%s", role, suffix),
		Email:    fmt.Sprintf("%s-%s@store.example", role, suffix),
		Role:     role,
	}
	require.NoError(t, db.Create(staff).Error)
	return staff
}

func seedItem(t *testing.T, db *gorm.DB, sku string, price int64) *model.JewelryItem {
	t.Helper()
	item := &model.JewelryItem{
		SKU:          sku + "-" + uuid.NewString()[:8],
		Name:         "Gold Ring " + sku,
		MetalType:    model.MetalGold,
		Purity:       "22K",
		UnitPrice:    decimal.NewFromInt(price),
		CurrentStock: 10,
		Active:       true,
	}
	require.NoError(t, db.Create(item).Error)
	return item
}

// --- fakes for the external collaborators ---

type fakePricing struct {
	totals client.OrderTotals
	err    error
	calls  int
}

func (f *fakePricing) CalculateOrderTotal(_ context.Context, _ []client.PriceLineItem) (client.OrderTotals, error) {
	f.calls++
	return f.totals, f.err
}

type stockAdjustment struct {
	ItemID string
	Delta  int
}

type fakeInventory struct {
	adjustments []stockAdjustment
	err         error
}

func (f *fakeInventory) AdjustStock(_ context.Context, itemID string, quantityDelta int) error {
	f.adjustments = append(f.adjustments, stockAdjustment{ItemID: itemID, Delta: quantityDelta})
	return f.err
}

type fakePayment struct {
	result client.RefundResult
	err    error
	calls  int
	amount decimal.Decimal
}

func (f *fakePayment) Refund(_ context.Context, _ string, amount decimal.Decimal, _, _ string) (client.RefundResult, error) {
	f.calls++
	f.amount = amount
	return f.result, f.err
}

type delivery struct {
	Channel   string
	Recipient string
	Message   string
}

type fakeGateway struct {
	deliveries   []delivery
	failChannels map[string]bool
}

func (f *fakeGateway) Deliver(_ context.Context, _, channel, recipient, message string) error {
	if f.failChannels[channel] {
		return fmt.Errorf("gateway rejected %s", channel)
	}
	f.deliveries = append(f.deliveries, delivery{Channel: channel, Recipient: recipient, Message: message})
	return nil
}

// --- wiring bundle ---

type testEnv struct {
	db        *gorm.DB
	pricing   *fakePricing
	inventory *fakeInventory
	payment   *fakePayment
	gateway   *fakeGateway

	orders        OrderService
	repairs       RepairService
	returns       ReturnService
	notifications NotificationService

	orderRepo        repository.OrderRepository
	historyRepo      repository.HistoryRepository
	notificationRepo repository.NotificationRepository
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := setupDB(t)
	logger := testLogger()

	env := &testEnv{
		db:        db,
		pricing:   &fakePricing{},
		inventory: &fakeInventory{},
		payment:   &fakePayment{result: client.RefundResult{RefundReference: "REF-TEST-1"}},
		gateway:   &fakeGateway{},
	}

	txManager := repository.NewTransactionManager(db)
	env.orderRepo = repository.NewOrderRepository(db)
	repairRepo := repository.NewRepairRepository(db)
	returnRepo := repository.NewReturnRepository(db)
	itemRepo := repository.NewJewelryItemRepository(db)
	customerRepo := repository.NewCustomerRepository(db)
	env.historyRepo = repository.NewHistoryRepository(db)
	env.notificationRepo = repository.NewNotificationRepository(db)

	env.notifications = NewNotificationService(env.notificationRepo, customerRepo, env.gateway, logger)
	env.orders = NewOrderService(env.orderRepo, itemRepo, customerRepo, env.historyRepo, txManager,
		env.pricing, env.inventory, env.notifications, nil, logger)
	env.repairs = NewRepairService(repairRepo, env.orderRepo, env.historyRepo, txManager,
		env.notifications, nil, logger)
	env.returns = NewReturnService(returnRepo, env.orderRepo, itemRepo, env.historyRepo, txManager,
		env.payment, env.inventory, env.notifications, nil, logger)

	return env
}
