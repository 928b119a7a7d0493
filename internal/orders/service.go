package orders

import (
	"context"
	"errors"
	"fmt"

	"github.com/andresvelarde/skyfare-backend/pkg/db/models"
	"github.com/andresvelarde/skyfare-backend/pkg/enums"
	pkgerrors "github.com/andresvelarde/skyfare-backend/pkg/errors"
	"github.com/andresvelarde/skyfare-backend/pkg/logger"
	"github.com/andresvelarde/skyfare-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service is the read surface over purchase history plus the payment
// settlement entry point used by the payment webhook.
type Service interface {
	List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ListResult, error)
	Get(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error)
	ResolvePayment(ctx context.Context, orderID uuid.UUID, succeeded bool) (*models.Order, error)
}

// ListResult is one page of a user's orders.
type ListResult struct {
	Orders     []models.Order
	NextCursor string
}

type service struct {
	runner txRunner
	repo   *Repository
	logg   *logger.Logger
}

// NewService wires the order service with its collaborators.
func NewService(runner txRunner, repo *Repository, logg *logger.Logger) (Service, error) {
	if runner == nil {
		return nil, fmt.Errorf("transaction runner is required")
	}
	if repo == nil {
		return nil, fmt.Errorf("order repository is required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger is required")
	}
	return &service{runner: runner, repo: repo, logg: logg}, nil
}

func (s *service) List(ctx context.Context, userID uuid.UUID, params pagination.Params) (*ListResult, error) {
	rows, next, err := s.repo.ListByUser(ctx, userID, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "listing orders")
	}
	return &ListResult{Orders: rows, NextCursor: next}, nil
}

func (s *service) Get(ctx context.Context, userID, orderID uuid.UUID) (*models.Order, error) {
	order, err := s.repo.FindByID(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "loading order")
	}
	// Ownership checks return not-found so order IDs cannot be probed.
	if order.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
	}
	return order, nil
}

func (s *service) ResolvePayment(ctx context.Context, orderID uuid.UUID, succeeded bool) (*models.Order, error) {
	var resolved *models.Order
	err := s.runner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		order, txErr := repo.FindByID(ctx, orderID)
		if txErr != nil {
			if errors.Is(txErr, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "order not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "loading order")
		}
		if order.Status.IsTerminal() {
			return pkgerrors.New(pkgerrors.CodeStateConflict, "order payment already settled").
				WithDetails(map[string]any{"orderId": order.ID.String(), "status": order.Status.String()})
		}

		status := enums.OrderStatusCompleted
		if !succeeded {
			status = enums.OrderStatusPaymentFailed
		}
		if txErr := repo.UpdateStatus(ctx, order.ID, status); txErr != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, txErr, "updating order status")
		}
		order.Status = status
		resolved = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logg.Info(s.logg.WithOrderID(ctx, resolved.ID.String()), "order payment resolved")
	return resolved, nil
}
