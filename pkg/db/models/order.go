package models

import (
	"time"

	"github.com/andresvelarde/skyfare-backend/pkg/enums"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Order is the immutable purchase snapshot produced by checkout. TotalPrice
// is frozen at purchase time and never recomputed from the catalog.
type Order struct {
	ID           uuid.UUID         `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	UserID       uuid.UUID         `gorm:"column:user_id;type:uuid;not null;index"`
	OrderDate    time.Time         `gorm:"column:order_date;not null"`
	TotalPrice   decimal.Decimal   `gorm:"column:total_price;type:numeric(12,2);not null"`
	Currency     enums.Currency    `gorm:"column:currency;type:text;not null;default:'USD'"`
	Status       enums.OrderStatus `gorm:"column:status;type:text;not null;default:'pending_payment'"`
	BillingName  string            `gorm:"column:billing_name;not null"`
	BillingEmail string            `gorm:"column:billing_email;not null"`
	Items        []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	CreatedAt    time.Time         `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt    time.Time         `gorm:"column:updated_at;autoUpdateTime"`
}
