package tickets

import (
	"context"
	"time"

	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	"github.com/andresvelarde/skyfare-backend/pkg/enums"
	"github.com/andresvelarde/skyfare-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists tickets. Seat-binding writes do not live here; they go
// through the seat ledger so occupancy stays single-writer.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a ticket repository bound to the provided DB.
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

// Create inserts a ticket without a seat binding.
func (r *Repository) Create(ctx context.Context, ticket *models.Ticket) error {
	if ticket.ID == uuid.Nil {
		ticket.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Create(ticket).Error
}

// FindByID loads a single ticket.
func (r *Repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Ticket, error) {
	var ticket models.Ticket
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&ticket).Error
	if err != nil {
		return nil, err
	}
	return &ticket, nil
}

// ListByUser returns the user's tickets, newest first, using cursor pagination.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, params pagination.Params) ([]models.Ticket, string, error) {
	query := r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("user_id = ?", userID)

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
	var rows []models.Ticket
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

// ListByOrderItem returns all tickets issued for an order item.
func (r *Repository) ListByOrderItem(ctx context.Context, orderItemID uuid.UUID) ([]models.Ticket, error) {
	var rows []models.Ticket
	err := r.db.WithContext(ctx).
		Where("order_item_id = ?", orderItemID).
		Order("created_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// MarkCheckedIn transitions a ticket to checked_in without touching its seat.
func (r *Repository) MarkCheckedIn(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":        enums.TicketStatusCheckedIn,
			"checked_in_at": at,
		}).Error
}

// UpdateStatus sets the ticket status.
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status enums.TicketStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Ticket{}).
		Where("id = ?", id).
		Update("status", status).Error
}
