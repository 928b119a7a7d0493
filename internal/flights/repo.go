package flights

import (
	"context"
	"time"

	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	"github.com/andresvelarde/skyfare-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository exposes read operations over the flight catalog. The booking core
// never mutates flights; fare and schedule changes arrive through back-office
// channels outside this service.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a flight repository bound to the provided DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

// FindByID loads a single flight.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Flight, error) {
	var flight models.Flight
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&flight).Error
	if err != nil {
		return nil, err
	}
	return &flight, nil
}

// SearchFilters narrows the catalog listing.
type SearchFilters struct {
	Origin        string
	Destination   string
	DepartureDate *time.Time
}

// List returns catalog flights matching the filters, newest first, using
// cursor pagination.
func (r *Repository) List(ctx context.Context, params pagination.Params, filters SearchFilters) ([]models.Flight, string, error) {
	query := r.db.WithContext(ctx).Model(&models.Flight{})

	if filters.Origin != "" {
		query = query.Where("origin = ?", filters.Origin)
	}
	if filters.Destination != "" {
		query = query.Where("destination = ?", filters.Destination)
	}
	if filters.DepartureDate != nil {
		dayStart := filters.DepartureDate.UTC().Truncate(24 * time.Hour)
		query = query.Where("departure_time >= ? AND departure_time < ?", dayStart, dayStart.Add(24*time.Hour))
	}

	cursor, err := pagination.ParseCursor(params.Cursor)
	if err != nil {
		return nil, "", err
	}
	if cursor != nil {
		query = query.Where(
			"(created_at < ?) OR (created_at = ? AND id < ?)",
			cursor.CreatedAt, cursor.CreatedAt, cursor.ID,
		)
	}

	limit := pagination.NormalizeLimit(params.Limit)
	var rows []models.Flight
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(pagination.LimitWithBuffer(params.Limit)).
		Find(&rows).Error; err != nil {
		return nil, "", err
	}

	next := ""
	if len(rows) > limit {
		rows = rows[:limit]
		last := rows[len(rows)-1]
		next = pagination.EncodeCursor(pagination.Cursor{CreatedAt: last.CreatedAt, ID: last.ID})
	}
	return rows, next, nil
}
