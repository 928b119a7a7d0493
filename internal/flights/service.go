package flights

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	pkgerrors "github.com/andresvelarde/skyfare-backend/pkg/errors"
	"github.com/andresvelarde/skyfare-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// catalog is the repository surface the service consumes.
type catalog interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Flight, error)
	List(ctx context.Context, params pagination.Params, filters SearchFilters) ([]models.Flight, string, error)
}

// Service exposes the read surface over the flight catalog.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*models.Flight, error)
	Search(ctx context.Context, input SearchInput) (*SearchResult, error)
}

// SearchInput carries catalog search parameters from the API layer.
type SearchInput struct {
	Origin        string
	Destination   string
	DepartureDate *time.Time
	Limit         int
	Cursor        string
}

// SearchResult is one page of catalog flights.
type SearchResult struct {
	Flights    []models.Flight
	NextCursor string
}

type service struct {
	repo catalog
}

// NewService wires the flight service with its repository.
func NewService(repo catalog) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("flight repository is required")
	}
	return &service{repo: repo}, nil
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*models.Flight, error) {
	flight, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "flight not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading flight")
	}
	return flight, nil
}

func (s *service) Search(ctx context.Context, input SearchInput) (*SearchResult, error) {
	rows, next, err := s.repo.List(ctx, pagination.Params{Limit: input.Limit, Cursor: input.Cursor}, SearchFilters{
		Origin:        input.Origin,
		Destination:   input.Destination,
		DepartureDate: input.DepartureDate,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "searching flights")
	}
	return &SearchResult{Flights: rows, NextCursor: next}, nil
}
