package tickets

import (
	"context"
	"errors"
	"fmt"

	"github.com/andresvelarde/skyfare-backend/internal/seats"
	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	pkgerrors "github.com/andresvelarde/skyfare-backend/pkg/errors"
	"github.com/andresvelarde/skyfare-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ticketStore interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error)
	ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Ticket, string, error)
}

type flightLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Flight, error)
}

type seatReader interface {
	BookedSeats(ctx context.Context, flightID uuid.UUID) ([]string, error)
}

// Service is the passenger-facing read surface over tickets and seat maps.
type Service interface {
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ListResult, error)
	Get(ctx context.Context, userID, ticketID uuid.UUID) (*models.Ticket, error)
	SeatMap(ctx context.Context, flightID uuid.UUID) (*SeatMap, error)
}

// ListResult is one page of a user's tickets.
type ListResult struct {
	Tickets    []models.Ticket
	NextCursor string
}

// SeatMap describes flight capacity and current occupancy.
type SeatMap struct {
	FlightID    uuid.UUID
	SeatRows    int
	SeatLetters []string
	BookedSeats []string
}

type service struct {
	tickets ticketStore
	flights flightLoader
	seats   seatReader
}

// NewService wires the ticket read service.
func NewService(tickets ticketStore, flights flightLoader, seats seatReader) (Service, error) {
	if tickets == nil {
		return nil, fmt.Errorf("ticket repository is required")
	}
	if flights == nil {
		return nil, fmt.Errorf("flight repository is required")
	}
	if seats == nil {
		return nil, fmt.Errorf("seat ledger is required")
	}
	return &service{tickets: tickets, flights: flights, seats: seats}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ListResult, error) {
	rows, next, err := s.tickets.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing tickets")
	}
	return &ListResult{Tickets: rows, NextCursor: next}, nil
}

func (s *service) Get(ctx context.Context, userID, ticketID uuid.UUID) (*models.Ticket, error) {
	ticket, err := s.tickets.FindByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading ticket")
	}
	// Ownership checks return not-found so ticket IDs cannot be probed.
	if ticket.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "ticket not found")
	}
	return ticket, nil
}

func (s *service) SeatMap(ctx context.Context, flightID uuid.UUID) (*SeatMap, error) {
	flight, err := s.flights.FindByID(ctx, flightID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "flight not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading flight")
	}
	booked, err := s.seats.BookedSeats(ctx, flightID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading booked seats")
	}
	return &SeatMap{
		FlightID:    flight.ID,
		SeatRows:    flight.SeatRows,
		SeatLetters: seats.Letters,
		BookedSeats: booked,
	}, nil
}
