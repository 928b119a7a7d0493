package pricing

import (
	"context"
	"testing"

	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	pkgerrors "github.com/andresvelarde/skyfare-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type stubCatalog struct {
	flights map[uuid.UUID]*models.Flight
}

func (s *stubCatalog) FindByID(_ context.Context, id uuid.UUID) (*models.Flight, error) {
	flight, ok := s.flights[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return flight, nil
}

func pricedFlight(amount string) *models.Flight {
	price := decimal.RequireFromString(amount)
	return &models.Flight{ID: uuid.New(), Price: &price, SeatRows: 30}
}

func TestUnitFare(t *testing.T) {
	t.Parallel()

	flight := pricedFlight("149.99")
	res, err := NewResolver(&stubCatalog{flights: map[uuid.UUID]*models.Flight{flight.ID: flight}})
	require.NoError(t, err)

	fare, err := res.UnitFare(context.Background(), flight.ID)
	require.NoError(t, err)
	assert.True(t, fare.Equal(decimal.RequireFromString("149.99")))
}

func TestUnitFareUnknownFlight(t *testing.T) {
	t.Parallel()

	res, err := NewResolver(&stubCatalog{flights: map[uuid.UUID]*models.Flight{}})
	require.NoError(t, err)

	_, err = res.UnitFare(context.Background(), uuid.New())
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}

func TestPriceForMultipliesByQuantity(t *testing.T) {
	t.Parallel()

	flight := pricedFlight("100.00")
	res, err := NewResolver(&stubCatalog{flights: map[uuid.UUID]*models.Flight{flight.ID: flight}})
	require.NoError(t, err)

	total, err := res.PriceFor(context.Background(), flight.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, "300.00", total.StringFixed(2))
}

func TestPriceForRejectsZeroQuantity(t *testing.T) {
	t.Parallel()

	flight := pricedFlight("100.00")
	res, err := NewResolver(&stubCatalog{flights: map[uuid.UUID]*models.Flight{flight.ID: flight}})
	require.NoError(t, err)

	_, err = res.PriceFor(context.Background(), flight.ID, 0)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestFareOfMissingPrice(t *testing.T) {
	t.Parallel()

	res, err := NewResolver(&stubCatalog{flights: map[uuid.UUID]*models.Flight{}})
	require.NoError(t, err)

	_, err = res.FareOf(&models.Flight{ID: uuid.New()})
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeStateConflict, typed.Code())
}

func TestNewResolverRequiresCatalog(t *testing.T) {
	t.Parallel()

	_, err := NewResolver(nil)
	require.Error(t, err)
}
