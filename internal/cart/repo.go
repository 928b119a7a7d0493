package cart

import (
	"context"
	"errors"

	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository persists carts and their line items.
type Repository struct {
	db *gorm.DB
}

// NewRepository constructs a cart repository bound to the provided DB.
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

// GetOrCreate returns the user's cart with items loaded, creating the row on
// first access. The unique index on user_id keeps the cart one-per-user even
// under concurrent first requests.
func (r *Repository) GetOrCreate(ctx context.Context, userID uuid.UUID) (*models.Cart, error) {
	var cart models.Cart
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("user_id = ?", userID).
		First(&cart).Error
	if err == nil {
		return &cart, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	cart = models.Cart{ID: uuid.New(), UserID: userID}
	if createErr := r.db.WithContext(ctx).Create(&cart).Error; createErr != nil {
		// Lost the race: another request created the cart first.
		var existing models.Cart
		if findErr := r.db.WithContext(ctx).
			Preload("Items").
			Where("user_id = ?", userID).
			First(&existing).Error; findErr == nil {
			return &existing, nil
		}
		return nil, createErr
	}
	cart.Items = []models.CartItem{}
	return &cart, nil
}

// FindItem loads the line item for a flight within a cart, or nil when absent.
func (r *Repository) FindItem(ctx context.Context, cartID, flightID uuid.UUID) (*models.CartItem, error) {
	var item models.CartItem
	err := r.db.WithContext(ctx).
		Where("cart_id = ? AND flight_id = ?", cartID, flightID).
		First(&item).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &item, nil
}

// SaveItem inserts or updates a line item.
func (r *Repository) SaveItem(ctx context.Context, item *models.CartItem) error {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	return r.db.WithContext(ctx).Save(item).Error
}

// DeleteItem removes a single line item.
func (r *Repository) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("id = ?", itemID).
		Delete(&models.CartItem{}).Error
}

// ClearItems removes every line item from a cart. The cart row itself stays.
func (r *Repository) ClearItems(ctx context.Context, cartID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Where("cart_id = ?", cartID).
		Delete(&models.CartItem{}).Error
}
