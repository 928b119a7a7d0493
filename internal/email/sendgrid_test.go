package email

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/andresvelarde/skyfare-backend/pkg/config"
	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	"github.com/andresvelarde/skyfare-backend/pkg/enums"
	"github.com/andresvelarde/skyfare-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func confirmationOrder() *models.Order {
	return &models.Order{
		ID:           uuid.MustParse("a1b2c3d4-0000-0000-0000-000000000000"),
		OrderDate:    time.Now().UTC(),
		TotalPrice:   decimal.RequireFromString("200.00"),
		Currency:     enums.CurrencyUSD,
		Status:       enums.OrderStatusPendingPayment,
		BillingName:  "Ada Lovelace",
		BillingEmail: "ada@example.com",
		Items: []models.OrderItem{
			{FlightID: uuid.New(), Quantity: 2, PricePerItem: decimal.RequireFromString("100.00")},
		},
	}
}

func TestSendWithoutAPIKeyIsNoop(t *testing.T) {
	t.Parallel()

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	sender, err := NewSendgridSender(config.SendgridConfig{}, logg)
	require.NoError(t, err)

	assert.NoError(t, sender.SendPurchaseConfirmation(context.Background(), confirmationOrder(), "ada@example.com", "$"))
}

func TestSendRequiresOrder(t *testing.T) {
	t.Parallel()

	logg := logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
	sender, err := NewSendgridSender(config.SendgridConfig{}, logg)
	require.NoError(t, err)

	assert.Error(t, sender.SendPurchaseConfirmation(context.Background(), nil, "ada@example.com", "$"))
}

func TestPurchaseConfirmationBody(t *testing.T) {
	t.Parallel()

	order := confirmationOrder()
	body := purchaseConfirmationBody(order, "$")

	assert.Contains(t, body, "Hi Ada Lovelace,")
	assert.Contains(t, body, "2 x flight")
	assert.Contains(t, body, "$100.00 each")
	assert.Contains(t, body, "Total: $200.00")
}

func TestShortOrderRef(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "A1B2C3D4", shortOrderRef(confirmationOrder()))
}
