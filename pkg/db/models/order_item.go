package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderItem captures one distinct flight within an order. PricePerItem is the
// catalog fare at purchase time; later catalog changes must never touch it.
type OrderItem struct {
	ID           uuid.UUID       `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	OrderID      uuid.UUID       `gorm:"column:order_id;type:uuid;not null;index"`
	FlightID     uuid.UUID       `gorm:"column:flight_id;type:uuid;not null"`
	Quantity     int             `gorm:"column:quantity;not null"`
	PricePerItem decimal.Decimal `gorm:"column:price_per_item;type:numeric(12,2);not null"`
	CreatedAt    time.Time       `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}
