package models

import (
	"time"

	"github.com/andresvelarde/skyfare-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Flight is the catalog entity. The booking core only ever reads it; fares and
// schedules are maintained by the (out-of-scope) catalog administration tools.
type Flight struct {
	ID            uuid.UUID        `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	FlightNumber  string           `gorm:"column:flight_number;type:text;not null;uniqueIndex"`
	Airline       string           `gorm:"column:airline;not null"`
	Origin        string           `gorm:"column:origin;type:text;not null;index"`
	Destination   string           `gorm:"column:destination;type:text;not null;index"`
	DepartureTime time.Time        `gorm:"column:departure_time;not null"`
	ArrivalTime   time.Time        `gorm:"column:arrival_time;not null"`
	// Price is nullable on purpose: a missing fare is a data-integrity fault
	// that must abort checkout rather than default to zero.
	Price     *decimal.Decimal `gorm:"column:price;type:numeric(12,2)"`
	Currency  enums.Currency   `gorm:"column:currency;type:text;not null;default:'USD'"`
	SeatRows  int              `gorm:"column:seat_rows;not null;default:30"`
	CreatedAt time.Time        `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time        `gorm:"column:updated_at;autoUpdateTime"`
}
