package models

import (
	"time"

	"github.com/andresvelarde/skyfare-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Ticket is one seat-unit of a purchased OrderItem. The partial unique index
// tickets_flight_seat_active (flight_id, seat_number among non-cancelled rows)
// is the storage-level enforcement of the seat ledger invariant.
type Ticket struct {
	ID                    uuid.UUID          `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderItemID           uuid.UUID          `gorm:"column:order_item_id;type:uuid;not null;index"`
	UserID                uuid.UUID          `gorm:"column:user_id;type:uuid;not null;index"`
	FlightID              uuid.UUID          `gorm:"column:flight_id;type:uuid;not null;index"`
	Price                 decimal.Decimal    `gorm:"column:price;type:numeric(12,2);not null"`
	PurchaseTime          time.Time          `gorm:"column:purchase_time;not null"`
	Status                enums.TicketStatus `gorm:"column:status;type:text;not null;default:'confirmed'"`
	SeatSelectionDeferred bool               `gorm:"column:seat_selection_deferred;not null;default:false"`
	RandomSeatAllocation  bool               `gorm:"column:random_seat_allocation;not null;default:false"`
	SeatNumber            *string            `gorm:"column:seat_number"`
	SeatClass             *enums.SeatClass   `gorm:"column:seat_class;type:text"`
	CheckedInAt           *time.Time         `gorm:"column:checked_in_at"`
	CreatedAt             time.Time          `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt             time.Time          `gorm:"column:updated_at;autoUpdateTime"`
}
