package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/andresvelarde/skyfare-backend/pkg/config"
	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	"github.com/andresvelarde/skyfare-backend/pkg/logger"
)

const sendgridEndpoint = "https://api.sendgrid.com/v3/mail/send"

// Sender delivers transactional email. Delivery failures never fail the
// business operation that triggered them; callers log and move on.
type Sender interface {
	SendPurchaseConfirmation(ctx context.Context, order *models.Order, recipient string, currencySymbol string) error
}

// SendgridSender sends mail through the SendGrid v3 API. With no API key
// configured it degrades to logging only, which keeps dev environments quiet.
type SendgridSender struct {
	cfg    config.SendgridConfig
	client *http.Client
	logg   *logger.Logger
}

// NewSendgridSender wires the SendGrid mail sender.
func NewSendgridSender(cfg config.SendgridConfig, logg *logger.Logger) (*SendgridSender, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &SendgridSender{
		cfg:    cfg,
		client: &http.Client{Timeout: 10 * time.Second},
		logg:   logg,
	}, nil
}

type sendgridPayload struct {
	Personalizations []sendgridPersonalization `json:"personalizations"`
	From             sendgridAddress           `json:"from"`
	Subject          string                    `json:"subject"`
	Content          []sendgridContent         `json:"content"`
}

type sendgridPersonalization struct {
	To []sendgridAddress `json:"to"`
}

type sendgridAddress struct {
	Email string `json:"email"`
}

type sendgridContent struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

func (s *SendgridSender) SendPurchaseConfirmation(ctx context.Context, order *models.Order, recipient string, currencySymbol string) error {
	if order == nil {
		return fmt.Errorf("order is required")
	}
	subject := fmt.Sprintf("Your SkyFare booking %s is confirmed", shortOrderRef(order))
	body := purchaseConfirmationBody(order, currencySymbol)

	if s.cfg.APIKey == "" {
		s.logg.Info(s.logg.WithOrderID(ctx, order.ID.String()), "sendgrid disabled, skipping confirmation email")
		return nil
	}

	payload := sendgridPayload{
		Personalizations: []sendgridPersonalization{{To: []sendgridAddress{{Email: recipient}}}},
		From:             sendgridAddress{Email: s.cfg.DefaultFrom},
		Subject:          subject,
		Content:          []sendgridContent{{Type: "text/plain", Value: body}},
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshaling sendgrid payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sendgridEndpoint, bytes.NewReader(raw))
	if err != nil {
		return fmt.Errorf("building sendgrid request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("calling sendgrid: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		return fmt.Errorf("sendgrid responded %d", resp.StatusCode)
	}
	return nil
}

func purchaseConfirmationBody(order *models.Order, currencySymbol string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Hi %s,\n\n", order.BillingName)
	fmt.Fprintf(&b, "Thanks for booking with SkyFare. Your order %s is confirmed.\n\n", shortOrderRef(order))
	for _, item := range order.Items {
		fmt.Fprintf(&b, "  %d x flight %s at %s%s each\n",
			item.Quantity, item.FlightID, currencySymbol, item.PricePerItem.StringFixed(2))
	}
	fmt.Fprintf(&b, "\nTotal: %s%s\n", currencySymbol, order.TotalPrice.StringFixed(2))
	b.WriteString("\nSafe travels,\nThe SkyFare team\n")
	return b.String()
}

func shortOrderRef(order *models.Order) string {
	id := order.ID.String()
	if len(id) >= 8 {
		return strings.ToUpper(id[:8])
	}
	return strings.ToUpper(id)
}
