package pricing

import (
	"context"
	"errors"
	"fmt"

	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	pkgerrors "github.com/andresvelarde/skyfare-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// catalog is the flight lookup surface the resolver consumes.
type catalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Flight, error)
}

// Resolver computes authoritative prices from the current catalog. Client
// supplied totals are never trusted; every quote goes through here.
type Resolver interface {
	// UnitFare returns the current catalog fare for one seat on the flight.
	UnitFare(ctx context.Context, flightID uuid.UUID) (decimal.Decimal, error)
	// PriceFor returns UnitFare multiplied by quantity.
	PriceFor(ctx context.Context, flightID uuid.UUID, quantity int) (decimal.Decimal, error)
	// FareOf extracts the fare from an already-loaded flight row.
	FareOf(flight *models.Flight) (decimal.Decimal, error)
}

type resolver struct {
	catalog catalog
}

// NewResolver wires the pricing resolver with its catalog lookup.
func NewResolver(cat catalog) (Resolver, error) {
	if cat == nil {
		return nil, fmt.Errorf("flight catalog is required")
	}
	return &resolver{catalog: cat}, nil
}

func (r *resolver) UnitFare(ctx context.Context, flightID uuid.UUID) (decimal.Decimal, error) {
	flight, err := r.catalog.FindByID(ctx, flightID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "flight not found")
		}
		return decimal.Zero, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading flight fare")
	}
	return r.FareOf(flight)
}

func (r *resolver) PriceFor(ctx context.Context, flightID uuid.UUID, quantity int) (decimal.Decimal, error) {
	if quantity < 1 {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least 1")
	}
	unit, err := r.UnitFare(ctx, flightID)
	if err != nil {
		return decimal.Zero, err
	}
	return unit.Mul(decimal.NewFromInt(int64(quantity))), nil
}

func (r *resolver) FareOf(flight *models.Flight) (decimal.Decimal, error) {
	if flight == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeNotFound, "flight not found")
	}
	// A catalog row without a fare is a data fault, not a free flight.
	if flight.Price == nil {
		return decimal.Zero, pkgerrors.New(pkgerrors.CodeStateConflict, "flight has no fare configured").
			WithDetails(map[string]any{"flightId": flight.ID.String()})
	}
	return *flight.Price, nil
}
