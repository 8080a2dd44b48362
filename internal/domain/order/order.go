package order

import (
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/orderdesk/backend/internal/domain/account"
	"github.com/orderdesk/backend/internal/domain/shared/valueobject"
)

var (
	// ErrOrderNotFound indicates the order does not exist
	ErrOrderNotFound = errors.New("order: order not found")
	// ErrInvalidStatusTransition indicates an illegal status change
	ErrInvalidStatusTransition = errors.New("order: invalid status transition")
	// ErrInvalidOrder indicates the order fails validation
	ErrInvalidOrder = errors.New("order: invalid order")
)

// Status represents the lifecycle status of an order
type Status string

const (
	// StatusAccepted indicates the order was accepted from the marketplace
	StatusAccepted Status = "ACCEPTED"
	// StatusCancelled indicates the order was cancelled
	StatusCancelled Status = "CANCELLED"
	// StatusArchived indicates the order was archived. Orders are never
	// deleted, only archived.
	StatusArchived Status = "ARCHIVED"
)

// IsValid returns true if the status is valid
func (s Status) IsValid() bool {
	switch s {
	case StatusAccepted, StatusCancelled, StatusArchived:
		return true
	default:
		return false
	}
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// canTransitionTo reports whether a status change is legal.
// Archived is terminal; cancelled orders may still be archived.
func (s Status) canTransitionTo(target Status) bool {
	switch s {
	case StatusAccepted:
		return target == StatusCancelled || target == StatusArchived
	case StatusCancelled:
		return target == StatusArchived
	default:
		return false
	}
}

// Item is a line item on an order. Amount is the line total in USD.
type Item struct {
	ProductID string
	Amount    valueobject.Money
}

// Order is a marketplace order record
type Order struct {
	// ID is the unique identifier of the order
	ID uuid.UUID
	// AccountID is the owning account
	AccountID uuid.UUID
	// AccountRef is the owning account's reference code
	AccountRef account.Ref
	// CatererID identifies the fulfilling caterer
	CatererID string
	// Name is the human-facing order name assigned by the marketplace
	Name string
	// Status is the current lifecycle status
	Status Status
	// Subtotal is the recorded order subtotal, before fees
	Subtotal valueobject.Money
	// Total is the recorded order total
	Total valueobject.Money
	// Items are the order line items as reported by the marketplace
	Items []Item
	// EventAt is when the catering event takes place
	EventAt time.Time
	// CreatedAt is when the order record was created
	CreatedAt time.Time
	// UpdatedAt is when the order record was last updated
	UpdatedAt time.Time
}

// NewOrder creates an accepted order record
func NewOrder(accountID uuid.UUID, ref account.Ref, catererID, name string, subtotal, total valueobject.Money, items []Item) (*Order, error) {
	if err := validate(accountID, ref, name, items); err != nil {
		return nil, err
	}
	now := time.Now()
	return &Order{
		ID:         uuid.New(),
		AccountID:  accountID,
		AccountRef: ref,
		CatererID:  catererID,
		Name:       name,
		Status:     StatusAccepted,
		Subtotal:   subtotal,
		Total:      total,
		Items:      items,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func validate(accountID uuid.UUID, ref account.Ref, name string, items []Item) error {
	if accountID == uuid.Nil {
		return errors.New("order: account ID is required")
	}
	if !ref.IsValid() {
		return account.ErrUnknownAccount
	}
	if name == "" {
		return errors.New("order: name is required")
	}
	for _, item := range items {
		if item.Amount.IsNegative() {
			return errors.New("order: line item amount cannot be negative")
		}
	}
	return nil
}

// UpdateStatus moves the order to a new status, enforcing legal transitions
func (o *Order) UpdateStatus(target Status) error {
	if !target.IsValid() {
		return ErrInvalidStatusTransition
	}
	if !o.Status.canTransitionTo(target) {
		return ErrInvalidStatusTransition
	}
	o.Status = target
	o.UpdatedAt = time.Now()
	return nil
}

// Cancel cancels the order
func (o *Order) Cancel() error {
	return o.UpdateStatus(StatusCancelled)
}

// Archive archives the order
func (o *Order) Archive() error {
	return o.UpdateStatus(StatusArchived)
}

// Summary is a compact projection used by account-scoped listings
type Summary struct {
	ID        uuid.UUID
	Name      string
	Status    Status
	CatererID string
}
