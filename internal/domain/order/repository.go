package order

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for persisting orders.
// Implementations must be safe for concurrent use; the sync orchestrator
// issues lookups from multiple in-flight tasks.
type Repository interface {
	// Save creates or updates an order
	Save(ctx context.Context, o *Order) error

	// FindByID finds an order by its ID.
	// Returns ErrOrderNotFound if it does not exist.
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindByName finds an order by its marketplace-assigned name within
	// an account. Returns ErrOrderNotFound if it does not exist.
	FindByName(ctx context.Context, accountID uuid.UUID, name string) (*Order, error)

	// FindByAccount lists order summaries for an account
	FindByAccount(ctx context.Context, accountID uuid.UUID) ([]Summary, error)

	// UpdateStatus persists a status change
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
}

// Source is the port for the external marketplace the orders originate
// from. The adapter lives in the infrastructure layer.
type Source interface {
	// FetchOrder retrieves an order from the marketplace by its remote ID.
	// Returns ErrOrderNotFound if the marketplace does not know the order.
	FetchOrder(ctx context.Context, remoteID string) (*Order, error)
}
