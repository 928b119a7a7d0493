package checkin

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresvelarde/skyfare-backend/internal/flights"
	"github.com/andresvelarde/skyfare-backend/internal/seats"
	"github.com/andresvelarde/skyfare-backend/internal/tickets"
	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	"github.com/andresvelarde/skyfare-backend/pkg/enums"
	pkgerrors "github.com/andresvelarde/skyfare-backend/pkg/errors"
	"github.com/andresvelarde/skyfare-backend/pkg/logger"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service moves tickets into checked_in. Check-in is a one-way gate: once a
// ticket is checked in or cancelled no further transition is possible.
type Service interface {
	CheckInWithSeat(ctx context.Context, userID, ticketID uuid.UUID, seatNumber string, seatClass enums.SeatClass) (*Result, error)
	CheckInWithoutSeat(ctx context.Context, userID, ticketID uuid.UUID) (*Result, error)
}

// Result reports the post-check-in ticket state.
type Result struct {
	TicketID    uuid.UUID
	Status      enums.TicketStatus
	SeatNumber  *string
	SeatClass   *enums.SeatClass
	CheckedInAt time.Time
}

type service struct {
	runner  txRunner
	tickets *tickets.Repository
	ledger  *seats.Ledger
	flights *flights.Repository
	logg    *logger.Logger
}

// NewService wires the check-in service.
func NewService(runner txRunner, ticketRepo *tickets.Repository, ledger *seats.Ledger, flightRepo *flights.Repository, logg *logger.Logger) (Service, error) {
	if runner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if ticketRepo == nil {
		return nil, fmt.Errorf("ticket repository is required")
	}
	if ledger == nil {
		return nil, fmt.Errorf("seat ledger is required")
	}
	if flightRepo == nil {
		return nil, fmt.Errorf("flight repository is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{runner: runner, tickets: ticketRepo, ledger: ledger, flights: flightRepo, logg: logg}, nil
}

func (s *service) CheckInWithSeat(ctx context.Context, userID, ticketID uuid.UUID, seatNumber string, seatClass enums.SeatClass) (*Result, error) {
	if !seatClass.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid seat class")
	}

	var result *Result
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		ticketRepo := s.tickets.WithTx(tx)
		ledger := s.ledger.WithTx(tx)

		ticket, guardErr := s.loadCheckable(ctx, ticketRepo, userID, ticketID)
		if guardErr != nil {
			return guardErr
		}

		flight, lookupErr := s.flights.WithTx(tx).FindByID(ctx, ticket.FlightID)
		if lookupErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, lookupErr, "loading flight")
		}
		if seatErr := seats.ValidateSeatNumber(seatNumber, flight.SeatRows); seatErr != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, seatErr.Error())
		}

		holder, holderErr := ledger.Holder(ctx, ticket.FlightID, seatNumber)
		if holderErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, holderErr, "checking seat occupancy")
		}
		if holder != nil && holder.ID != ticket.ID {
			return pkgerrors.New(pkgerrors.CodeConflict, "seat already taken").
				WithDetails(map[string]any{
					"flightId":   ticket.FlightID.String(),
					"seatNumber": seatNumber,
				})
		}

		now := time.Now().UTC()
		if assignErr := ledger.AssignToTicket(ctx, ticket.ID, seatNumber, seatClass, now); assignErr != nil {
			return assignErr
		}

		result = &Result{
			TicketID:    ticket.ID,
			Status:      enums.TicketStatusCheckedIn,
			SeatNumber:  &seatNumber,
			SeatClass:   &seatClass,
			CheckedInAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithUserID(ctx, userID.String()), "ticket checked in with seat")
	return result, nil
}

func (s *service) CheckInWithoutSeat(ctx context.Context, userID, ticketID uuid.UUID) (*Result, error) {
	var result *Result
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		ticketRepo := s.tickets.WithTx(tx)

		ticket, guardErr := s.loadCheckable(ctx, ticketRepo, userID, ticketID)
		if guardErr != nil {
			return guardErr
		}

		now := time.Now().UTC()
		if markErr := ticketRepo.MarkCheckedIn(ctx, ticket.ID, now); markErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, markErr, "marking ticket checked in")
		}

		result = &Result{
			TicketID:    ticket.ID,
			Status:      enums.TicketStatusCheckedIn,
			SeatNumber:  ticket.SeatNumber,
			SeatClass:   ticket.SeatClass,
			CheckedInAt: now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithUserID(ctx, userID.String()), "ticket checked in")
	return result, nil
}

// loadCheckable fetches the ticket and applies the ownership and state guards
// shared by both check-in variants.
func (s *service) loadCheckable(ctx context.Context, repo *tickets.Repository, userID, ticketID uuid.UUID) (*models.Ticket, error) {
	ticket, err := repo.FindByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading ticket")
	}
	if ticket.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
	}
	if ticket.Status.CanCheckIn() {
		return ticket, nil
	}

	message := "ticket cannot be checked in"
	switch ticket.Status {
	case enums.TicketStatusCheckedIn:
		message = "ticket is already checked in"
	case enums.TicketStatusCancelled:
		message = "ticket is cancelled"
	}
	return nil, pkgerrors.New(pkgerrors.CodeStateConflict, message).
		WithDetails(map[string]any{
			"ticketId": ticket.ID.String(),
			"status":   ticket.Status.String(),
		})
}
