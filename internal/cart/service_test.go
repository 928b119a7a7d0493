package cart

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/andresvelarde/skyfare-backend/internal/flights"
	"github.com/andresvelarde/skyfare-backend/internal/pricing"
	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	"github.com/andresvelarde/skyfare-backend/pkg/enums"
	pkgerrors "github.com/andresvelarde/skyfare-backend/pkg/errors"
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

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS flights (
  id TEXT PRIMARY KEY,
  flight_number TEXT NOT NULL UNIQUE,
  airline TEXT NOT NULL,
  origin TEXT NOT NULL,
  destination TEXT NOT NULL,
  departure_time DATETIME NOT NULL,
  arrival_time DATETIME NOT NULL,
  price NUMERIC,
  currency TEXT NOT NULL DEFAULT 'USD',
  seat_rows INTEGER NOT NULL DEFAULT 30,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  flight_id TEXT NOT NULL,
  quantity INTEGER NOT NULL DEFAULT 1,
  seat_preference TEXT NOT NULL DEFAULT 'deferred',
  seat_number TEXT,
  seat_class TEXT,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (cart_id, flight_id)
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newCartService(t *testing.T, db *gorm.DB) Service {
	t.Helper()

	flightRepo := flights.NewRepository(db)
	priceResolver, err := pricing.NewResolver(flightRepo)
	require.NoError(t, err)

	svc, err := NewService(testRunner{db: db}, NewRepository(db), flightRepo, priceResolver)
	require.NoError(t, err)
	return svc
}

func seedFlight(t *testing.T, db *gorm.DB, number, amount string) *models.Flight {
	t.Helper()

	price := decimal.RequireFromString(amount)
	flight := &models.Flight{
		ID:            uuid.New(),
		FlightNumber:  number,
		Airline:       "SkyFare Air",
		Origin:        "SFO",
		Destination:   "JFK",
		DepartureTime: time.Now().Add(48 * time.Hour).UTC(),
		ArrivalTime:   time.Now().Add(54 * time.Hour).UTC(),
		Price:         &price,
		Currency:      enums.CurrencyUSD,
		SeatRows:      30,
	}
	require.NoError(t, db.Create(flight).Error)
	return flight
}

func TestGetCartCreatesEmptyCart(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	userID := uuid.New()

	summary, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, summary.CartID)
	assert.Empty(t, summary.Items)
	assert.Equal(t, 0, summary.TotalQuantity)
	assert.True(t, summary.TotalPrice.IsZero())

	again, err := svc.GetCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Equal(t, summary.CartID, again.CartID)
}

func TestAddItemIncrementsQuantity(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	flight := seedFlight(t, db, "SF100", "120.50")
	userID := uuid.New()

	input := AddItemInput{FlightID: flight.ID, SeatPreference: enums.SeatPreferenceDeferred}
	summary, err := svc.AddItem(context.Background(), userID, input)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 1, summary.Items[0].Quantity)

	summary, err = svc.AddItem(context.Background(), userID, input)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 2, summary.Items[0].Quantity)
	assert.Equal(t, 2, summary.TotalQuantity)
	assert.Equal(t, "241.00", summary.TotalPrice.StringFixed(2))
}

func TestAddItemLastSeatSelectionWins(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	flight := seedFlight(t, db, "SF101", "99.00")
	userID := uuid.New()

	_, err := svc.AddItem(context.Background(), userID, AddItemInput{
		FlightID:       flight.ID,
		SeatPreference: enums.SeatPreferenceDeferred,
	})
	require.NoError(t, err)

	seat := "12A"
	class := enums.SeatClassEconomy
	summary, err := svc.AddItem(context.Background(), userID, AddItemInput{
		FlightID:       flight.ID,
		SeatPreference: enums.SeatPreferenceExplicit,
		SeatNumber:     &seat,
		SeatClass:      &class,
	})
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 2, summary.Items[0].Quantity)
	assert.Equal(t, enums.SeatPreferenceExplicit, summary.Items[0].SeatPreference)
	require.NotNil(t, summary.Items[0].SeatNumber)
	assert.Equal(t, "12A", *summary.Items[0].SeatNumber)
}

func TestAddItemRandomAllocationIsFree(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	flight := seedFlight(t, db, "SF102", "250.00")
	userID := uuid.New()

	summary, err := svc.AddItem(context.Background(), userID, AddItemInput{
		FlightID:       flight.ID,
		SeatPreference: enums.SeatPreferenceRandom,
	})
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.True(t, summary.Items[0].UnitPrice.IsZero())
	assert.True(t, summary.TotalPrice.IsZero())
}

func TestAddItemUnknownFlight(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{
		FlightID:       uuid.New(),
		SeatPreference: enums.SeatPreferenceDeferred,
	})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestAddItemSeatSelectionValidation(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	flight := seedFlight(t, db, "SF103", "80.00")
	seat := "4C"

	cases := []struct {
		name  string
		input AddItemInput
	}{
		{
			name:  "explicit without seat",
			input: AddItemInput{FlightID: flight.ID, SeatPreference: enums.SeatPreferenceExplicit},
		},
		{
			name:  "deferred with seat",
			input: AddItemInput{FlightID: flight.ID, SeatPreference: enums.SeatPreferenceDeferred, SeatNumber: &seat},
		},
		{
			name:  "unknown preference",
			input: AddItemInput{FlightID: flight.ID, SeatPreference: enums.SeatPreference("aisle")},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.AddItem(context.Background(), uuid.New(), tc.input)
			require.Error(t, err)

			typed := pkgerrors.As(err)
			require.NotNil(t, typed)
			assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
		})
	}
}

func TestAddItemSeatBeyondCabin(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	flight := seedFlight(t, db, "SF104", "80.00")
	seat := "31A"
	class := enums.SeatClassEconomy

	_, err := svc.AddItem(context.Background(), uuid.New(), AddItemInput{
		FlightID:       flight.ID,
		SeatPreference: enums.SeatPreferenceExplicit,
		SeatNumber:     &seat,
		SeatClass:      &class,
	})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestDecreaseItemRemovesAtZero(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	flight := seedFlight(t, db, "SF105", "60.00")
	userID := uuid.New()

	input := AddItemInput{FlightID: flight.ID, SeatPreference: enums.SeatPreferenceDeferred}
	_, err := svc.AddItem(context.Background(), userID, input)
	require.NoError(t, err)
	_, err = svc.AddItem(context.Background(), userID, input)
	require.NoError(t, err)

	summary, err := svc.DecreaseItem(context.Background(), userID, flight.ID)
	require.NoError(t, err)
	require.Len(t, summary.Items, 1)
	assert.Equal(t, 1, summary.Items[0].Quantity)

	summary, err = svc.DecreaseItem(context.Background(), userID, flight.ID)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
}

func TestDecreaseItemNotInCart(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	flight := seedFlight(t, db, "SF106", "60.00")

	_, err := svc.DecreaseItem(context.Background(), uuid.New(), flight.ID)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestRemoveItemDropsWholeLine(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	flight := seedFlight(t, db, "SF107", "60.00")
	userID := uuid.New()

	input := AddItemInput{FlightID: flight.ID, SeatPreference: enums.SeatPreferenceDeferred}
	for i := 0; i < 3; i++ {
		_, err := svc.AddItem(context.Background(), userID, input)
		require.NoError(t, err)
	}

	summary, err := svc.RemoveItem(context.Background(), userID, flight.ID)
	require.NoError(t, err)
	assert.Empty(t, summary.Items)
}

func TestClearCartKeepsCartRow(t *testing.T) {
	db := setupCartTestDB(t)
	svc := newCartService(t, db)
	first := seedFlight(t, db, "SF108", "60.00")
	second := seedFlight(t, db, "SF109", "75.00")
	userID := uuid.New()

	_, err := svc.AddItem(context.Background(), userID, AddItemInput{FlightID: first.ID, SeatPreference: enums.SeatPreferenceDeferred})
	require.NoError(t, err)
	before, err := svc.AddItem(context.Background(), userID, AddItemInput{FlightID: second.ID, SeatPreference: enums.SeatPreferenceDeferred})
	require.NoError(t, err)
	require.Len(t, before.Items, 2)

	after, err := svc.ClearCart(context.Background(), userID)
	require.NoError(t, err)
	assert.Empty(t, after.Items)
	assert.Equal(t, before.CartID, after.CartID)
}
