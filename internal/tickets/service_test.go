package tickets

import (
	"context"
	"testing"

	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	pkgerrors "github.com/andresvelarde/skyfare-backend/pkg/errors"
	"github.com/andresvelarde/skyfare-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubTicketStore struct {
	tickets map[uuid.UUID]*models.Ticket
}

func (s *stubTicketStore) FindByID(_ context.Context, id uuid.UUID) (*models.Ticket, error) {
	ticket, ok := s.tickets[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return ticket, nil
}

func (s *stubTicketStore) ListByUser(_ context.Context, userID uuid.UUID, _ pagination.Params) ([]models.Ticket, string, error) {
	var rows []models.Ticket
	for _, ticket := range s.tickets {
		if ticket.UserID == userID {
			rows = append(rows, *ticket)
		}
	}
	return rows, "", nil
}

type stubFlightLoader struct {
	flights map[uuid.UUID]*models.Flight
}

func (s *stubFlightLoader) FindByID(_ context.Context, id uuid.UUID) (*models.Flight, error) {
	flight, ok := s.flights[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return flight, nil
}

type stubSeatReader struct {
	booked []string
}

func (s *stubSeatReader) BookedSeats(_ context.Context, _ uuid.UUID) ([]string, error) {
	return s.booked, nil
}

func TestGetEnforcesOwnership(t *testing.T) {
	t.Parallel()

	owner := uuid.New()
	ticket := &models.Ticket{ID: uuid.New(), UserID: owner}
	svc, err := NewService(
		&stubTicketStore{tickets: map[uuid.UUID]*models.Ticket{ticket.ID: ticket}},
		&stubFlightLoader{},
		&stubSeatReader{},
	)
	require.NoError(t, err)

	got, err := svc.Get(context.Background(), owner, ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, ticket.ID, got.ID)

	_, err = svc.Get(context.Background(), uuid.New(), ticket.ID)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestGetUnknownTicket(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubTicketStore{tickets: map[uuid.UUID]*models.Ticket{}}, &stubFlightLoader{}, &stubSeatReader{})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), uuid.New(), uuid.New())
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestSeatMap(t *testing.T) {
	t.Parallel()

	flight := &models.Flight{ID: uuid.New(), SeatRows: 24}
	svc, err := NewService(
		&stubTicketStore{tickets: map[uuid.UUID]*models.Ticket{}},
		&stubFlightLoader{flights: map[uuid.UUID]*models.Flight{flight.ID: flight}},
		&stubSeatReader{booked: []string{"1A", "2C"}},
	)
	require.NoError(t, err)

	seatMap, err := svc.SeatMap(context.Background(), flight.ID)
	require.NoError(t, err)
	assert.Equal(t, 24, seatMap.SeatRows)
	assert.Equal(t, []string{"A", "B", "C", "D", "E", "F"}, seatMap.SeatLetters)
	assert.Equal(t, []string{"1A", "2C"}, seatMap.BookedSeats)
}

func TestSeatMapUnknownFlight(t *testing.T) {
	t.Parallel()

	svc, err := NewService(&stubTicketStore{tickets: map[uuid.UUID]*models.Ticket{}}, &stubFlightLoader{}, &stubSeatReader{})
	require.NoError(t, err)

	_, err = svc.SeatMap(context.Background(), uuid.New())
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
