package cart

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresvelarde/skyfare-backend/internal/seats"
	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	"github.com/andresvelarde/skyfare-backend/pkg/enums"
	pkgerrors "github.com/andresvelarde/skyfare-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type flightCatalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Flight, error)
}

type fareResolver interface {
	FareOf(flight *models.Flight) (decimal.Decimal, error)
}

// Service manages the per-user cart. Every operation returns the refreshed
// cart summary so clients never need a second round trip.
type Service interface {
	GetCart(ctx context.Context, userID uuid.UUID) (*Summary, error)
	AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*Summary, error)
	DecreaseItem(ctx context.Context, userID, flightID uuid.UUID) (*Summary, error)
	RemoveItem(ctx context.Context, userID, flightID uuid.UUID) (*Summary, error)
	ClearCart(ctx context.Context, userID uuid.UUID) (*Summary, error)
}

// AddItemInput carries one add-to-cart request.
type AddItemInput struct {
	FlightID       uuid.UUID
	SeatPreference enums.SeatPreference
	SeatNumber     *string
	SeatClass      *enums.SeatClass
}

// Summary is the priced view of a cart, computed from the current catalog on
// every read. Prices here are quotes; they only freeze at checkout.
type Summary struct {
	CartID        uuid.UUID
	Items         []SummaryItem
	TotalQuantity int
	TotalPrice    decimal.Decimal
	Currency      enums.Currency
}

// SummaryItem is one priced cart line.
type SummaryItem struct {
	FlightID       uuid.UUID
	FlightNumber   string
	Airline        string
	Origin         string
	Destination    string
	DepartureTime  time.Time
	Quantity       int
	SeatPreference enums.SeatPreference
	SeatNumber     *string
	SeatClass      *enums.SeatClass
	UnitPrice      decimal.Decimal
	LinePrice      decimal.Decimal
}

type service struct {
	runner  txRunner
	repo    *Repository
	flights flightCatalog
	pricing fareResolver
}

// NewService wires the cart service with its collaborators.
func NewService(runner txRunner, repo *Repository, flights flightCatalog, pricing fareResolver) (Service, error) {
	if runner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("cart repository is required")
	}
	if flights == nil {
		return nil, fmt.Errorf("flight catalog is required")
	}
	if pricing == nil {
		return nil, fmt.Errorf("pricing resolver is required")
	}
	return &service{runner: runner, repo: repo, flights: flights, pricing: pricing}, nil
}

func (s *service) GetCart(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	cart, err := s.repo.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading cart")
	}
	return s.buildSummary(ctx, cart)
}

func (s *service) AddItem(ctx context.Context, userID uuid.UUID, input AddItemInput) (*Summary, error) {
	if err := validateSeatSelection(input); err != nil {
		return nil, err
	}

	flight, err := s.flights.FindByID(ctx, input.FlightID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "flight not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading flight")
	}
	if input.SeatNumber != nil {
		if seatErr := seats.ValidateSeatNumber(*input.SeatNumber, flight.SeatRows); seatErr != nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, seatErr.Error())
		}
	}

	err = s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, txErr := repo.GetOrCreate(ctx, userID)
		if txErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "loading cart")
		}

		item, txErr := repo.FindItem(ctx, cart.ID, input.FlightID)
		if txErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "loading cart item")
		}
		if item == nil {
			item = &models.CartItem{
				CartID:   cart.ID,
				FlightID: input.FlightID,
				Quantity: 1,
			}
		} else {
			item.Quantity++
		}
		// Last write wins on the seat preference for the whole line.
		item.SeatPreference = input.SeatPreference
		item.SeatNumber = input.SeatNumber
		item.SeatClass = input.SeatClass

		if txErr := repo.SaveItem(ctx, item); txErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "saving cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *service) DecreaseItem(ctx context.Context, userID, flightID uuid.UUID) (*Summary, error) {
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, txErr := repo.GetOrCreate(ctx, userID)
		if txErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "loading cart")
		}

		item, txErr := repo.FindItem(ctx, cart.ID, flightID)
		if txErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "loading cart item")
		}
		if item == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "flight is not in the cart")
		}

		if item.Quantity <= 1 {
			if txErr := repo.DeleteItem(ctx, item.ID); txErr != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "removing cart item")
			}
			return nil
		}
		item.Quantity--
		if txErr := repo.SaveItem(ctx, item); txErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "saving cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *service) RemoveItem(ctx context.Context, userID, flightID uuid.UUID) (*Summary, error) {
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, txErr := repo.GetOrCreate(ctx, userID)
		if txErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "loading cart")
		}

		item, txErr := repo.FindItem(ctx, cart.ID, flightID)
		if txErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "loading cart item")
		}
		if item == nil {
			return pkgerrors.New(pkgerrors.CodeNotFound, "flight is not in the cart")
		}
		if txErr := repo.DeleteItem(ctx, item.ID); txErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "removing cart item")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *service) ClearCart(ctx context.Context, userID uuid.UUID) (*Summary, error) {
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, txErr := repo.GetOrCreate(ctx, userID)
		if txErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "loading cart")
		}
		if txErr := repo.ClearItems(ctx, cart.ID); txErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "clearing cart")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetCart(ctx, userID)
}

func (s *service) buildSummary(ctx context.Context, cart *models.Cart) (*Summary, error) {
	summary := &Summary{
		CartID:     cart.ID,
		Items:      make([]SummaryItem, 0, len(cart.Items)),
		TotalPrice: decimal.Zero,
		Currency:   enums.CurrencyUSD,
	}

	for _, item := range cart.Items {
		flight, err := s.flights.FindByID(ctx, item.FlightID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "cart references an unknown flight").
					WithDetails(map[string]any{"flightId": item.FlightID.String()})
			}
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading flight")
		}

		unit, err := unitPrice(s.pricing, flight, item.SeatPreference)
		if err != nil {
			return nil, err
		}
		line := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))

		summary.Items = append(summary.Items, SummaryItem{
			FlightID:       flight.ID,
			FlightNumber:   flight.FlightNumber,
			Airline:        flight.Airline,
			Origin:         flight.Origin,
			Destination:    flight.Destination,
			DepartureTime:  flight.DepartureTime,
			Quantity:       item.Quantity,
			SeatPreference: item.SeatPreference,
			SeatNumber:     item.SeatNumber,
			SeatClass:      item.SeatClass,
			UnitPrice:      unit,
			LinePrice:      line,
		})
		summary.TotalQuantity += item.Quantity
		summary.TotalPrice = summary.TotalPrice.Add(line)
		summary.Currency = flight.Currency
	}
	return summary, nil
}

// unitPrice applies the random-allocation pricing rule on top of the catalog
// fare: lines that surrender seat choice to the system fly free.
func unitPrice(pricing fareResolver, flight *models.Flight, preference enums.SeatPreference) (decimal.Decimal, error) {
	if preference == enums.SeatPreferenceRandom {
		return decimal.Zero, nil
	}
	return pricing.FareOf(flight)
}

func validateSeatSelection(input AddItemInput) error {
	if !input.SeatPreference.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid seat preference")
	}
	switch input.SeatPreference {
	case enums.SeatPreferenceExplicit:
		if input.SeatNumber == nil || *input.SeatNumber == "" {
			return pkgerrors.New(pkgerrors.CodeValidation, "explicit seat preference requires a seat number")
		}
		if input.SeatClass == nil || !input.SeatClass.IsValid() {
			return pkgerrors.New(pkgerrors.CodeValidation, "explicit seat preference requires a valid seat class")
		}
	default:
		if input.SeatNumber != nil || input.SeatClass != nil {
			return pkgerrors.New(pkgerrors.CodeValidation, "seat number and class are only valid with an explicit preference")
		}
	}
	return nil
}
