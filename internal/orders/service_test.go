package orders

import (
	"context"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	"github.com/andresvelarde/skyfare-backend/pkg/enums"
	pkgerrors "github.com/andresvelarde/skyfare-backend/pkg/errors"
	"github.com/andresvelarde/skyfare-backend/pkg/logger"
	"github.com/andresvelarde/skyfare-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testRunner struct {
	db *gorm.DB
}

func (r testRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}

func setupOrderTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS orders (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  order_date DATETIME NOT NULL,
  total_price NUMERIC NOT NULL,
  currency TEXT NOT NULL DEFAULT 'USD',
  status TEXT NOT NULL DEFAULT 'pending_payment',
  billing_name TEXT NOT NULL,
  billing_email TEXT NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS order_items (
  id TEXT PRIMARY KEY,
  order_id TEXT NOT NULL,
  flight_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  price_per_item NUMERIC NOT NULL,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newOrderService(t *testing.T, db *gorm.DB) (Service, *Repository) {
	t.Helper()

	repo := NewRepository(db)
	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	svc, err := NewService(testRunner{db: db}, repo, logg)
	require.NoError(t, err)
	return svc, repo
}

func seedOrder(t *testing.T, repo *Repository, userID uuid.UUID, status enums.OrderStatus) *models.Order {
	t.Helper()

	order := &models.Order{
		UserID:       userID,
		OrderDate:    time.Now().UTC(),
		TotalPrice:   decimal.RequireFromString("200.00"),
		Currency:     enums.CurrencyUSD,
		Status:       status,
		BillingName:  "Ada Lovelace",
		BillingEmail: "ada@example.com",
		Items: []models.OrderItem{
			{FlightID: uuid.New(), Quantity: 2, PricePerItem: decimal.RequireFromString("100.00")},
		},
	}
	require.NoError(t, repo.Create(context.Background(), order))
	return order
}

func TestGetOrder(t *testing.T) {
	db := setupOrderTestDB(t)
	svc, repo := newOrderService(t, db)
	userID := uuid.New()
	order := seedOrder(t, repo, userID, enums.OrderStatusPendingPayment)

	got, err := svc.Get(context.Background(), userID, order.ID)
	require.NoError(t, err)
	assert.Equal(t, order.ID, got.ID)
	require.Len(t, got.Items, 1)
	assert.Equal(t, "100.00", got.Items[0].PricePerItem.StringFixed(2))
}

func TestGetForeignOrderLooksMissing(t *testing.T) {
	db := setupOrderTestDB(t)
	svc, repo := newOrderService(t, db)
	order := seedOrder(t, repo, uuid.New(), enums.OrderStatusPendingPayment)

	_, err := svc.Get(context.Background(), uuid.New(), order.ID)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestResolvePaymentSucceeded(t *testing.T) {
	db := setupOrderTestDB(t)
	svc, repo := newOrderService(t, db)
	order := seedOrder(t, repo, uuid.New(), enums.OrderStatusPendingPayment)

	resolved, err := svc.ResolvePayment(context.Background(), order.ID, true)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCompleted, resolved.Status)

	stored, err := repo.FindByID(context.Background(), order.ID)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusCompleted, stored.Status)
}

func TestResolvePaymentFailed(t *testing.T) {
	db := setupOrderTestDB(t)
	svc, repo := newOrderService(t, db)
	order := seedOrder(t, repo, uuid.New(), enums.OrderStatusPendingPayment)

	resolved, err := svc.ResolvePayment(context.Background(), order.ID, false)
	require.NoError(t, err)
	assert.Equal(t, enums.OrderStatusPaymentFailed, resolved.Status)
}

func TestResolvePaymentTerminalOrder(t *testing.T) {
	db := setupOrderTestDB(t)
	svc, repo := newOrderService(t, db)

	for _, status := range []enums.OrderStatus{enums.OrderStatusCompleted, enums.OrderStatusPaymentFailed} {
		order := seedOrder(t, repo, uuid.New(), status)

		_, err := svc.ResolvePayment(context.Background(), order.ID, true)
		require.Error(t, err)

		typed := pkgerrors.As(err)
		require.NotNil(t, typed)
		assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
	}
}

func TestResolvePaymentUnknownOrder(t *testing.T) {
	db := setupOrderTestDB(t)
	svc, _ := newOrderService(t, db)

	_, err := svc.ResolvePayment(context.Background(), uuid.New(), true)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestListOrdersPaginates(t *testing.T) {
	db := setupOrderTestDB(t)
	svc, repo := newOrderService(t, db)
	userID := uuid.New()

	for i := 0; i < 3; i++ {
		order := seedOrder(t, repo, userID, enums.OrderStatusCompleted)
		// Distinct created_at values keep the cursor ordering deterministic.
		require.NoError(t, db.Model(&models.Order{}).
			Where("id = ?", order.ID).
			Update("created_at", time.Now().Add(time.Duration(i)*time.Minute).UTC()).Error)
	}

	first, err := svc.List(context.Background(), userID, pagination.Params{Limit: 2})
	require.NoError(t, err)
	require.Len(t, first.Orders, 2)
	require.NotEmpty(t, first.NextCursor)

	second, err := svc.List(context.Background(), userID, pagination.Params{Limit: 2, Cursor: first.NextCursor})
	require.NoError(t, err)
	require.Len(t, second.Orders, 1)
	assert.Empty(t, second.NextCursor)
}
