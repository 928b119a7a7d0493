package seats

import (
	"context"
	"fmt"
	"time"

	"github.com/andresvelarde/skyfare-backend/pkg/db"
	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	"github.com/andresvelarde/skyfare-backend/pkg/enums"
	pkgerrors "github.com/andresvelarde/skyfare-backend/pkg/errors"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// seatIndex is the partial unique index guarding (flight_id, seat_number)
// across non-cancelled tickets.
const seatIndex = "tickets_flight_seat_active"

// Ledger owns seat occupancy per flight. Every seat-binding write in the
// system goes through it so the unique index is the single source of truth;
// the advisory reads exist only to produce friendly errors ahead of the
// constraint.
type Ledger struct {
	db *gorm.DB
}

// NewLedger constructs a seat ledger bound to the provided DB.
func NewLedger(db *gorm.DB) *Ledger {
	return &Ledger{db: db}
}

// WithTx binds the ledger to a transaction.
func (l *Ledger) WithTx(tx *gorm.DB) *Ledger {
	if tx == nil {
		return l
	}
	return &Ledger{db: tx}
}

// IsOccupied reports whether an active ticket already holds the seat.
func (l *Ledger) IsOccupied(ctx context.Context, flightID uuid.UUID, seatNumber string) (bool, error) {
	holder, err := l.Holder(ctx, flightID, seatNumber)
	if err != nil {
		return false, err
	}
	return holder != nil, nil
}

// Holder returns the active ticket occupying the seat, or nil when free.
func (l *Ledger) Holder(ctx context.Context, flightID uuid.UUID, seatNumber string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := l.db.WithContext(ctx).
		Where("flight_id = ? AND seat_number = ? AND status IN ?", flightID, seatNumber, enums.ActiveTicketStatuses).
		First(&ticket).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, fmt.Errorf("querying seat holder: %w", err)
	}
	return &ticket, nil
}

// BookedSeats returns the seat numbers currently held by active tickets on
// the flight, sorted for stable seat-map rendering.
func (l *Ledger) BookedSeats(ctx context.Context, flightID uuid.UUID) ([]string, error) {
	var seatNumbers []string
	err := l.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("flight_id = ? AND seat_number IS NOT NULL AND status IN ?", flightID, enums.ActiveTicketStatuses).
		Order("seat_number ASC").
		Pluck("seat_number", &seatNumbers).Error
	if err != nil {
		return nil, fmt.Errorf("querying booked seats: %w", err)
	}
	return seatNumbers, nil
}

// ReserveForNewTicket inserts a ticket that carries a seat binding. A unique
// violation on the seat index surfaces as a conflict so callers can degrade
// instead of aborting.
func (l *Ledger) ReserveForNewTicket(ctx context.Context, ticket *models.Ticket) error {
	if ticket == nil {
		return fmt.Errorf("ticket is required")
	}
	if ticket.SeatNumber == nil {
		return fmt.Errorf("ticket has no seat to reserve")
	}
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	if err := l.db.WithContext(ctx).Create(ticket).Error; err != nil {
		if db.IsUniqueViolation(err, seatIndex) {
			return seatTakenError(ticket.FlightID, *ticket.SeatNumber)
		}
		return fmt.Errorf("creating seated ticket: %w", err)
	}
	return nil
}

// AssignToTicket binds a seat to an existing ticket and stamps it checked in.
// The unique index still arbitrates races between concurrent check-ins.
func (l *Ledger) AssignToTicket(ctx context.Context, ticketID uuid.UUID, seatNumber string, seatClass enums.SeatClass, at time.Time) error {
	updates := map[string]any{
		"seat_number":             seatNumber,
		"seat_class":              seatClass,
		"status":                  enums.TicketStatusCheckedIn,
		"seat_selection_deferred": false,
		"checked_in_at":           at,
	}
	result := l.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("id = ?", ticketID).
		Updates(updates)
	if result.Error != nil {
		if db.IsUniqueViolation(result.Error, seatIndex) {
			var flightID uuid.UUID
			// Best effort flight lookup for the conflict payload.
			l.db.WithContext(ctx).
				Model(&models.Ticket{}).
				Where("id = ?", ticketID).
				Pluck("flight_id", &flightID)
			return seatTakenError(flightID, seatNumber)
		}
		return fmt.Errorf("assigning seat to ticket: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
	}
	return nil
}

func seatTakenError(flightID uuid.UUID, seatNumber string) error {
	return pkgerrors.New(pkgerrors.CodeConflict, "seat already taken").
		WithDetails(map[string]any{
			"flightId":   flightID.String(),
			"seatNumber": seatNumber,
		})
}
