package order

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orderdesk/backend/internal/domain/order"
)

// Service handles order-related business operations
type Service struct {
	orders order.Repository
	source order.Source
	logger *zap.Logger
}

// NewService creates a new order Service
func NewService(orders order.Repository, source order.Source, logger *zap.Logger) *Service {
	return &Service{
		orders: orders,
		source: source,
		logger: logger,
	}
}

// ListByAccount lists order summaries for an account
func (s *Service) ListByAccount(ctx context.Context, accountID uuid.UUID) ([]order.Summary, error) {
	return s.orders.FindByAccount(ctx, accountID)
}

// Get returns an order by ID, scoped to the requesting account
func (s *Service) Get(ctx context.Context, accountID, orderID uuid.UUID) (*order.Order, error) {
	o, err := s.orders.FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if o.AccountID != accountID {
		// Orders from other accounts are invisible, not forbidden
		return nil, order.ErrOrderNotFound
	}
	return o, nil
}

// UpdateStatus moves an order to a new status, enforcing legal transitions
func (s *Service) UpdateStatus(ctx context.Context, accountID, orderID uuid.UUID, target order.Status) (*order.Order, error) {
	o, err := s.Get(ctx, accountID, orderID)
	if err != nil {
		return nil, err
	}

	if err := o.UpdateStatus(target); err != nil {
		return nil, err
	}

	if err := s.orders.UpdateStatus(ctx, o.ID, o.Status); err != nil {
		return nil, err
	}

	s.logger.Info("order status updated",
		zap.String("order_id", o.ID.String()),
		zap.String("name", o.Name),
		zap.String("status", o.Status.String()))

	return o, nil
}

// Ingest fetches an order from the marketplace and persists it. Re-ingesting
// an already known order refreshes the stored record.
func (s *Service) Ingest(ctx context.Context, remoteID string) (*order.Order, error) {
	fetched, err := s.source.FetchOrder(ctx, remoteID)
	if err != nil {
		return nil, err
	}

	existing, err := s.orders.FindByName(ctx, fetched.AccountID, fetched.Name)
	switch {
	case err == nil:
		// Keep the original identity and lifecycle across refreshes
		fetched.ID = existing.ID
		fetched.Status = existing.Status
		fetched.CreatedAt = existing.CreatedAt
	case !errors.Is(err, order.ErrOrderNotFound):
		return nil, fmt.Errorf("looking up order %s: %w", fetched.Name, err)
	}

	if err := s.orders.Save(ctx, fetched); err != nil {
		return nil, fmt.Errorf("saving order %s: %w", fetched.Name, err)
	}

	s.logger.Info("order ingested",
		zap.String("remote_id", remoteID),
		zap.String("name", fetched.Name),
		zap.String("account_id", fetched.AccountID.String()))

	return fetched, nil
}
