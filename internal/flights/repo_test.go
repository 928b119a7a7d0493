package flights

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	"github.com/andresvelarde/skyfare-backend/pkg/enums"
	"github.com/andresvelarde/skyfare-backend/pkg/pagination"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupFlightTestDB(t *testing.T) *gorm.DB {
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
);`
	require.NoError(t, db.Exec(schema).Error)
	return db
}

func seedFlightAt(t *testing.T, db *gorm.DB, number, origin, destination string, departure, createdAt time.Time) *models.Flight {
	t.Helper()

	price := decimal.RequireFromString("100.00")
	flight := &models.Flight{
		ID:            uuid.New(),
		FlightNumber:  number,
		Airline:       "SkyFare Air",
		Origin:        origin,
		Destination:   destination,
		DepartureTime: departure,
		ArrivalTime:   departure.Add(6 * time.Hour),
		Price:         &price,
		Currency:      enums.CurrencyUSD,
		SeatRows:      30,
	}
	require.NoError(t, db.Create(flight).Error)
	require.NoError(t, db.Model(&models.Flight{}).
		Where("id = ?", flight.ID).
		Update("created_at", createdAt).Error)
	return flight
}

func TestListFiltersByRoute(t *testing.T) {
	db := setupFlightTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()
	departure := now.Add(72 * time.Hour)

	match := seedFlightAt(t, db, "SF400", "SFO", "JFK", departure, now)
	seedFlightAt(t, db, "SF401", "SFO", "LAX", departure, now.Add(time.Minute))
	seedFlightAt(t, db, "SF402", "SEA", "JFK", departure, now.Add(2*time.Minute))

	rows, next, err := repo.List(context.Background(), pagination.Params{}, SearchFilters{Origin: "SFO", Destination: "JFK"})
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, match.ID, rows[0].ID)
	assert.Empty(t, next)
}

func TestListFiltersByDepartureDate(t *testing.T) {
	db := setupFlightTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()
	day := time.Date(2026, 10, 12, 0, 0, 0, 0, time.UTC)

	morning := seedFlightAt(t, db, "SF403", "SFO", "JFK", day.Add(8*time.Hour), now)
	evening := seedFlightAt(t, db, "SF404", "SFO", "JFK", day.Add(22*time.Hour), now.Add(time.Minute))
	seedFlightAt(t, db, "SF405", "SFO", "JFK", day.Add(26*time.Hour), now.Add(2*time.Minute))

	rows, _, err := repo.List(context.Background(), pagination.Params{}, SearchFilters{DepartureDate: &day})
	require.NoError(t, err)
	require.Len(t, rows, 2)

	var ids []uuid.UUID
	for _, row := range rows {
		ids = append(ids, row.ID)
	}
	assert.ElementsMatch(t, []uuid.UUID{morning.ID, evening.ID}, ids)
}

func TestListPaginatesNewestFirst(t *testing.T) {
	db := setupFlightTestDB(t)
	repo := NewRepository(db)
	now := time.Now().UTC()
	departure := now.Add(72 * time.Hour)

	oldest := seedFlightAt(t, db, "SF406", "SFO", "JFK", departure, now)
	middle := seedFlightAt(t, db, "SF407", "SFO", "JFK", departure, now.Add(time.Minute))
	newest := seedFlightAt(t, db, "SF408", "SFO", "JFK", departure, now.Add(2*time.Minute))

	first, next, err := repo.List(context.Background(), pagination.Params{Limit: 2}, SearchFilters{})
	require.NoError(t, err)
	require.Len(t, first, 2)
	require.NotEmpty(t, next)
	assert.Equal(t, newest.ID, first[0].ID)
	assert.Equal(t, middle.ID, first[1].ID)

	second, next, err := repo.List(context.Background(), pagination.Params{Limit: 2, Cursor: next}, SearchFilters{})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, oldest.ID, second[0].ID)
	assert.Empty(t, next)
}

func TestFindByIDMissing(t *testing.T) {
	db := setupFlightTestDB(t)
	repo := NewRepository(db)

	_, err := repo.FindByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}
