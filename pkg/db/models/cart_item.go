package models

import (
	"time"

	"github.com/andresvelarde/skyfare-backend/pkg/enums"
	"github.com/google/uuid"
)

// CartItem is one line per distinct flight in a cart. Adding the same flight
// again increments Quantity; the (cart_id, flight_id) pair is unique.
type CartItem struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CartID         uuid.UUID            `gorm:"column:cart_id;type:uuid;not null;uniqueIndex:cart_items_cart_flight"`
	FlightID       uuid.UUID            `gorm:"column:flight_id;type:uuid;not null;uniqueIndex:cart_items_cart_flight"`
	Quantity       int                  `gorm:"column:quantity;not null;default:1"`
	SeatPreference enums.SeatPreference `gorm:"column:seat_preference;type:text;not null;default:'deferred'"`
	SeatNumber     *string              `gorm:"column:seat_number"`
	SeatClass      *enums.SeatClass     `gorm:"column:seat_class;type:text"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt      time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}
