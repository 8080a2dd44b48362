package crm

import (
	"errors"

	"github.com/orderdesk/backend/internal/domain/shared/valueobject"
)

var (
	// ErrProvider indicates the CRM provider call failed
	ErrProvider = errors.New("crm: provider request failed")
	// ErrInvalidResponse indicates the provider returned an unusable shape
	ErrInvalidResponse = errors.New("crm: invalid provider response")
	// ErrLeadNotFound indicates the lead does not exist on the provider
	ErrLeadNotFound = errors.New("crm: lead not found")
	// ErrUnsupportedEntity indicates an entity kind the generator cannot handle
	ErrUnsupportedEntity = errors.New("crm: unsupported entity kind")
	// ErrInvalidCandidate indicates a candidate that fails validation
	ErrInvalidCandidate = errors.New("crm: invalid lead candidate")
)

// EntityKind discriminates the CRM-entity kinds the system can generate.
// Lead is the only kind today; contacts or accounts would be added here
// with their own candidate types implementing Entity.
type EntityKind string

const (
	// EntityKindLead is an order-derived sales lead
	EntityKindLead EntityKind = "LEAD"
)

// IsValid returns true if the kind is valid
func (k EntityKind) IsValid() bool {
	switch k {
	case EntityKindLead:
		return true
	default:
		return false
	}
}

// String returns the string representation of EntityKind
func (k EntityKind) String() string {
	return string(k)
}

// Entity is the closed union of CRM-entity payloads. Every candidate type
// reports its kind so generators can dispatch without open typing.
type Entity interface {
	Kind() EntityKind
}

// LeadProduct is one priced line on a lead candidate
type LeadProduct struct {
	// ProductID is the marketplace product identifier
	ProductID string
	// AmountInUsd is the line total
	AmountInUsd valueobject.Money
}

// LeadCandidate is a transient, order-derived lead payload. It exists only
// for the duration of one synchronization attempt and is never persisted.
type LeadCandidate struct {
	// ID is the candidate identifier, usually the order name
	ID string
	// Description is an optional lead description
	Description string
	// Products are the priced lines to report to the CRM
	Products []LeadProduct
	// RecordedSubtotal is the order's internally recorded subtotal the
	// product sum is reconciled against
	RecordedSubtotal valueobject.Money
	// Tags are optional CRM tags
	Tags []string
}

// Kind implements Entity
func (c *LeadCandidate) Kind() EntityKind {
	return EntityKindLead
}

// Validate checks the candidate invariants
func (c *LeadCandidate) Validate() error {
	if c.ID == "" {
		return ErrInvalidCandidate
	}
	for _, p := range c.Products {
		if p.ProductID == "" || p.AmountInUsd.IsNegative() {
			return ErrInvalidCandidate
		}
	}
	return nil
}

// GenerationResult is the output of generating a CRM entity. Ephemeral;
// returned to the orchestrator and optionally logged.
type GenerationResult struct {
	// CrmID is the provider-assigned identifier
	CrmID string
	// Description echoes the candidate description
	Description string
	// IsSubtotalMatch reports whether the non-excluded product sum equals
	// the recorded subtotal. Computed, never client-supplied.
	IsSubtotalMatch bool
}

// Task is a follow-up item attached to a CRM entity
type Task struct {
	Title       string
	Description string
}

// LeadRef identifies a created lead on the provider
type LeadRef struct {
	ID string
}
