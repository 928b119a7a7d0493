package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresvelarde/skyfare-backend/internal/cart"
	"github.com/andresvelarde/skyfare-backend/internal/email"
	"github.com/andresvelarde/skyfare-backend/internal/flights"
	"github.com/andresvelarde/skyfare-backend/internal/orders"
	"github.com/andresvelarde/skyfare-backend/internal/pricing"
	"github.com/andresvelarde/skyfare-backend/internal/seats"
	"github.com/andresvelarde/skyfare-backend/internal/tickets"
	"github.com/andresvelarde/skyfare-backend/internal/users"
	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	"github.com/andresvelarde/skyfare-backend/pkg/enums"
	pkgerrors "github.com/andresvelarde/skyfare-backend/pkg/errors"
	"github.com/andresvelarde/skyfare-backend/pkg/logger"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service turns a cart into an order plus tickets in one transaction. Prices
// are resolved from the catalog at this moment and frozen into the order;
// whatever total the client computed is advisory only.
type Service interface {
	Checkout(ctx context.Context, userID uuid.UUID, input Input) (*Result, error)
}

// Input carries the checkout request.
type Input struct {
	BillingName  string
	BillingEmail string
	// ClientTotal is the total the client displayed. It is compared against
	// the server total for drift logging and never used for pricing.
	ClientTotal *decimal.Decimal
}

// Result reports the purchase outcome.
type Result struct {
	Order         *models.Order
	Tickets       []models.Ticket
	SeatFallbacks []SeatFallback
}

// SeatFallback records an explicit seat request that lost its seat between
// cart and purchase and degraded to deferred selection.
type SeatFallback struct {
	FlightID   uuid.UUID
	SeatNumber string
}

type service struct {
	runner      txRunner
	carts       *cart.Repository
	flights     *flights.Repository
	orders      *orders.Repository
	tickets     *tickets.Repository
	ledger      *seats.Ledger
	pricing     pricing.Resolver
	users       *users.Repository
	mailer      email.Sender
	logg        *logger.Logger
	currencySym string
}

// Deps bundles the collaborators of the checkout service.
type Deps struct {
	Runner         txRunner
	Carts          *cart.Repository
	Flights        *flights.Repository
	Orders         *orders.Repository
	Tickets        *tickets.Repository
	Ledger         *seats.Ledger
	Pricing        pricing.Resolver
	Users          *users.Repository
	Mailer         email.Sender
	Logger         *logger.Logger
	CurrencySymbol string
}

// NewService wires the checkout orchestrator.
func NewService(deps Deps) (Service, error) {
	switch {
	case deps.Runner == nil:
		return nil, fmt.Errorf("transaction runner is required")
	case deps.Carts == nil:
		return nil, fmt.Errorf("cart repository is required")
	case deps.Flights == nil:
		return nil, fmt.Errorf("flight repository is required")
	case deps.Orders == nil:
		return nil, fmt.Errorf("order repository is required")
	case deps.Tickets == nil:
		return nil, fmt.Errorf("ticket repository is required")
	case deps.Ledger == nil:
		return nil, fmt.Errorf("seat ledger is required")
	case deps.Pricing == nil:
		return nil, fmt.Errorf("pricing resolver is required")
	case deps.Users == nil:
		return nil, fmt.Errorf("user repository is required")
	case deps.Logger == nil:
		return nil, fmt.Errorf("logger is required")
	}
	sym := deps.CurrencySymbol
	if sym == "" {
		sym = "$"
	}
	return &service{
		runner:      deps.Runner,
		carts:       deps.Carts,
		flights:     deps.Flights,
		orders:      deps.Orders,
		tickets:     deps.Tickets,
		ledger:      deps.Ledger,
		pricing:     deps.Pricing,
		users:       deps.Users,
		mailer:      deps.Mailer,
		logg:        deps.Logger,
		currencySym: sym,
	}, nil
}

func (s *service) Checkout(ctx context.Context, userID uuid.UUID, input Input) (*Result, error) {
	result := &Result{}
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		return s.checkoutTx(ctx, tx, userID, input, result)
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithOrderID(ctx, result.Order.ID.String()), "checkout completed")
	s.sendConfirmation(ctx, result.Order)
	return result, nil
}

func (s *service) checkoutTx(ctx context.Context, tx *gorm.DB, userID uuid.UUID, input Input, result *Result) error {
	cartRepo := s.carts.WithTx(tx)
	flightRepo := s.flights.WithTx(tx)
	orderRepo := s.orders.WithTx(tx)
	ticketRepo := s.tickets.WithTx(tx)
	ledger := s.ledger.WithTx(tx)

	userCart, err := cartRepo.GetOrCreate(ctx, userID)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	if len(userCart.Items) == 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart contains no items")
	}

	user, err := s.users.WithTx(tx).FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "user not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading user")
	}

	now := time.Now().UTC()
	total := decimal.Zero
	currency := enums.CurrencyUSD
	orderItems := make([]models.OrderItem, 0, len(userCart.Items))
	flightsByID := make(map[uuid.UUID]*models.Flight, len(userCart.Items))

	for _, item := range userCart.Items {
		flight, lookupErr := flightRepo.FindByID(ctx, item.FlightID)
		if lookupErr != nil {
			if errors.Is(lookupErr, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "flight not found").
					WithDetails(map[string]any{"flightId": item.FlightID.String()})
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, lookupErr, "loading flight")
		}
		flightsByID[flight.ID] = flight
		currency = flight.Currency

		unit, fareErr := s.unitFare(flight, item.SeatPreference)
		if fareErr != nil {
			return fareErr
		}
		orderItems = append(orderItems, models.OrderItem{
			FlightID:     flight.ID,
			Quantity:     item.Quantity,
			PricePerItem: unit,
		})
		total = total.Add(unit.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	if input.ClientTotal != nil && !input.ClientTotal.Equal(total) {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"clientTotal": input.ClientTotal.StringFixed(2),
			"serverTotal": total.StringFixed(2),
		}), "client total disagrees with catalog pricing, using server total")
	}

	billingName := input.BillingName
	if billingName == "" {
		billingName = user.FirstName + " " + user.LastName
	}
	billingEmail := input.BillingEmail
	if billingEmail == "" {
		billingEmail = user.Email
	}

	order := &models.Order{
		UserID:       userID,
		OrderDate:    now,
		TotalPrice:   total,
		Currency:     currency,
		Status:       enums.OrderStatusPendingPayment,
		BillingName:  billingName,
		BillingEmail: billingEmail,
		Items:        orderItems,
	}
	if err := orderRepo.Create(ctx, order); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating order")
	}

	var fallbackLog error
	for _, orderItem := range order.Items {
		cartItem := cartItemFor(userCart.Items, orderItem.FlightID)
		if cartItem == nil {
			return pkgerrors.New(pkgerrors.CodeInternal, "order item without matching cart line")
		}
		flight := flightsByID[orderItem.FlightID]

		issued, issueErr := s.issueTickets(ctx, ledger, ticketRepo, user.ID, orderItem, cartItem, flight, now, result)
		if issueErr != nil {
			return issueErr
		}
		result.Tickets = append(result.Tickets, issued...)
	}
	for _, fb := range result.SeatFallbacks {
		fallbackLog = multierr.Append(fallbackLog, fmt.Errorf("seat %s on flight %s taken", fb.SeatNumber, fb.FlightID))
	}
	if fallbackLog != nil {
		s.logg.Warn(ctx, fmt.Sprintf("checkout degraded seat requests to deferred: %v", fallbackLog))
	}

	if err := cartRepo.ClearItems(ctx, userCart.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clearing cart")
	}

	result.Order = order
	return nil
}

// issueTickets creates Quantity tickets for one order item. Explicit seat
// requests walk forward from the requested seat; any unit that cannot get its
// seat degrades to deferred selection instead of failing the purchase.
func (s *service) issueTickets(
	ctx context.Context,
	ledger *seats.Ledger,
	ticketRepo *tickets.Repository,
	userID uuid.UUID,
	orderItem models.OrderItem,
	cartItem *models.CartItem,
	flight *models.Flight,
	now time.Time,
	result *Result,
) ([]models.Ticket, error) {
	issued := make([]models.Ticket, 0, orderItem.Quantity)

	seatCursor := ""
	if cartItem.SeatPreference == enums.SeatPreferenceExplicit && cartItem.SeatNumber != nil {
		seatCursor = *cartItem.SeatNumber
	}

	for unit := 0; unit < orderItem.Quantity; unit++ {
		ticket := models.Ticket{
			OrderItemID:  orderItem.ID,
			UserID:       userID,
			FlightID:     orderItem.FlightID,
			Price:        orderItem.PricePerItem,
			PurchaseTime: now,
			Status:       enums.TicketStatusConfirmed,
		}

		switch cartItem.SeatPreference {
		case enums.SeatPreferenceExplicit:
			seat, nextCursor := s.nextExplicitSeat(seatCursor, flight)
			seatCursor = nextCursor
			if seat == "" {
				ticket.SeatSelectionDeferred = true
				break
			}
			bound, bindErr := s.bindSeat(ctx, ledger, &ticket, seat, cartItem.SeatClass, result)
			if bindErr != nil {
				return nil, bindErr
			}
			if bound {
				issued = append(issued, ticket)
				continue
			}
			ticket.SeatSelectionDeferred = true
		case enums.SeatPreferenceRandom:
			ticket.RandomSeatAllocation = true
		default:
			ticket.SeatSelectionDeferred = true
		}

		if err := ticketRepo.Create(ctx, &ticket); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "creating ticket")
		}
		issued = append(issued, ticket)
	}
	return issued, nil
}

// bindSeat tries the atomic check-and-reserve for one explicit seat. It
// returns bound=false when the seat is taken, either by the advisory check or
// by the unique index when a concurrent purchase got there first.
func (s *service) bindSeat(
	ctx context.Context,
	ledger *seats.Ledger,
	ticket *models.Ticket,
	seat string,
	class *enums.SeatClass,
	result *Result,
) (bool, error) {
	occupied, err := ledger.IsOccupied(ctx, ticket.FlightID, seat)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "checking seat occupancy")
	}
	if occupied {
		result.SeatFallbacks = append(result.SeatFallbacks, SeatFallback{FlightID: ticket.FlightID, SeatNumber: seat})
		return false, nil
	}

	ticket.SeatNumber = &seat
	ticket.SeatClass = class
	if err := ledger.ReserveForNewTicket(ctx, ticket); err != nil {
		ticket.SeatNumber = nil
		ticket.SeatClass = nil
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeConflict {
			result.SeatFallbacks = append(result.SeatFallbacks, SeatFallback{FlightID: ticket.FlightID, SeatNumber: seat})
			return false, nil
		}
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "reserving seat")
	}
	return true, nil
}

// nextExplicitSeat returns the seat to try for the current unit and the
// cursor for the next one. An empty seat means the cabin walk ran out.
func (s *service) nextExplicitSeat(cursor string, flight *models.Flight) (string, string) {
	if cursor == "" {
		return "", ""
	}
	if err := seats.ValidateSeatNumber(cursor, flight.SeatRows); err != nil {
		return "", ""
	}
	next, err := seats.NextSeat(cursor)
	if err != nil {
		return cursor, ""
	}
	return cursor, next
}

func (s *service) unitFare(flight *models.Flight, preference enums.SeatPreference) (decimal.Decimal, error) {
	if preference == enums.SeatPreferenceRandom {
		return decimal.Zero, nil
	}
	return s.pricing.FareOf(flight)
}

func (s *service) sendConfirmation(ctx context.Context, order *models.Order) {
	if s.mailer == nil {
		return
	}
	// Detached from the request lifecycle; a slow or failing mail provider
	// must not delay or fail the purchase response.
	go func() {
		sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 15*time.Second)
		defer cancel()
		if err := s.mailer.SendPurchaseConfirmation(sendCtx, order, order.BillingEmail, s.currencySym); err != nil {
			s.logg.Error(s.logg.WithOrderID(sendCtx, order.ID.String()), "sending purchase confirmation", err)
		}
	}()
}

func cartItemFor(items []models.CartItem, flightID uuid.UUID) *models.CartItem {
	for i := range items {
		if items[i].FlightID == flightID {
			return &items[i]
		}
	}
	return nil
}
