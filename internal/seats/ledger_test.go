package seats

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

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

func setupLedgerTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS tickets (
  id TEXT PRIMARY KEY,
  order_item_id TEXT NOT NULL,
  user_id TEXT NOT NULL,
  flight_id TEXT NOT NULL,
  price NUMERIC NOT NULL,
  purchase_time DATETIME NOT NULL,
  status TEXT NOT NULL DEFAULT 'confirmed',
  seat_selection_deferred INTEGER NOT NULL DEFAULT 0,
  random_seat_allocation INTEGER NOT NULL DEFAULT 0,
  seat_number TEXT,
  seat_class TEXT,
  checked_in_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);
CREATE UNIQUE INDEX IF NOT EXISTS tickets_flight_seat_active
  ON tickets (flight_id, seat_number)
  WHERE seat_number IS NOT NULL AND status <> 'cancelled';`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func newSeatedTicket(flightID uuid.UUID, seat string, status enums.TicketStatus) *models.Ticket {
	class := enums.SeatClassEconomy
	return &models.Ticket{
		ID:           uuid.New(),
		OrderItemID:  uuid.New(),
		UserID:       uuid.New(),
		FlightID:     flightID,
		Price:        decimal.RequireFromString("100.00"),
		PurchaseTime: time.Now().UTC(),
		Status:       status,
		SeatNumber:   &seat,
		SeatClass:    &class,
	}
}

func TestReserveForNewTicketConflict(t *testing.T) {
	db := setupLedgerTestDB(t)
	ledger := NewLedger(db)
	flightID := uuid.New()

	first := newSeatedTicket(flightID, "12A", enums.TicketStatusConfirmed)
	require.NoError(t, ledger.ReserveForNewTicket(context.Background(), first))

	second := newSeatedTicket(flightID, "12A", enums.TicketStatusConfirmed)
	err := ledger.ReserveForNewTicket(context.Background(), second)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestReserveAfterCancellationSucceeds(t *testing.T) {
	db := setupLedgerTestDB(t)
	ledger := NewLedger(db)
	flightID := uuid.New()

	cancelled := newSeatedTicket(flightID, "3C", enums.TicketStatusCancelled)
	require.NoError(t, db.Create(cancelled).Error)

	fresh := newSeatedTicket(flightID, "3C", enums.TicketStatusConfirmed)
	require.NoError(t, ledger.ReserveForNewTicket(context.Background(), fresh))

	occupied, err := ledger.IsOccupied(context.Background(), flightID, "3C")
	require.NoError(t, err)
	assert.True(t, occupied)
}

func TestSameSeatOnDifferentFlights(t *testing.T) {
	db := setupLedgerTestDB(t)
	ledger := NewLedger(db)

	require.NoError(t, ledger.ReserveForNewTicket(context.Background(), newSeatedTicket(uuid.New(), "1A", enums.TicketStatusConfirmed)))
	require.NoError(t, ledger.ReserveForNewTicket(context.Background(), newSeatedTicket(uuid.New(), "1A", enums.TicketStatusConfirmed)))
}

func TestBookedSeatsSorted(t *testing.T) {
	db := setupLedgerTestDB(t)
	ledger := NewLedger(db)
	flightID := uuid.New()

	for _, seat := range []string{"2B", "1A", "2A"} {
		require.NoError(t, ledger.ReserveForNewTicket(context.Background(), newSeatedTicket(flightID, seat, enums.TicketStatusConfirmed)))
	}
	// Cancelled tickets fall out of the ledger.
	require.NoError(t, db.Create(newSeatedTicket(flightID, "9F", enums.TicketStatusCancelled)).Error)

	seats, err := ledger.BookedSeats(context.Background(), flightID)
	require.NoError(t, err)
	assert.Equal(t, []string{"1A", "2A", "2B"}, seats)
}

func TestHolderReturnsNilWhenFree(t *testing.T) {
	db := setupLedgerTestDB(t)
	ledger := NewLedger(db)

	holder, err := ledger.Holder(context.Background(), uuid.New(), "4D")
	require.NoError(t, err)
	assert.Nil(t, holder)
}

func TestAssignToTicketConflict(t *testing.T) {
	db := setupLedgerTestDB(t)
	ledger := NewLedger(db)
	flightID := uuid.New()

	holder := newSeatedTicket(flightID, "7C", enums.TicketStatusConfirmed)
	require.NoError(t, ledger.ReserveForNewTicket(context.Background(), holder))

	unseated := newSeatedTicket(flightID, "ignored", enums.TicketStatusConfirmed)
	unseated.SeatNumber = nil
	unseated.SeatClass = nil
	require.NoError(t, db.Create(unseated).Error)

	err := ledger.AssignToTicket(context.Background(), unseated.ID, "7C", enums.SeatClassEconomy, time.Now().UTC())
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestAssignToTicketChecksIn(t *testing.T) {
	db := setupLedgerTestDB(t)
	ledger := NewLedger(db)
	flightID := uuid.New()

	unseated := newSeatedTicket(flightID, "ignored", enums.TicketStatusConfirmed)
	unseated.SeatNumber = nil
	unseated.SeatClass = nil
	require.NoError(t, db.Create(unseated).Error)

	at := time.Now().UTC()
	require.NoError(t, ledger.AssignToTicket(context.Background(), unseated.ID, "8D", enums.SeatClassBusiness, at))

	var got models.Ticket
	require.NoError(t, db.Where("id = ?", unseated.ID).First(&got).Error)
	require.NotNil(t, got.SeatNumber)
	assert.Equal(t, "8D", *got.SeatNumber)
	assert.Equal(t, enums.TicketStatusCheckedIn, got.Status)
	require.NotNil(t, got.CheckedInAt)
}

func TestAssignToTicketNotFound(t *testing.T) {
	db := setupLedgerTestDB(t)
	ledger := NewLedger(db)

	err := ledger.AssignToTicket(context.Background(), uuid.New(), "5E", enums.SeatClassEconomy, time.Now().UTC())
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
