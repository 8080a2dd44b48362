package crm

import "context"

// EntityType names the provider-side entity classes tasks can attach to
type EntityType string

const (
	// EntityTypeLead is the provider's lead entity class
	EntityTypeLead EntityType = "Lead"
)

// IsValid returns true if the entity type is valid
func (t EntityType) IsValid() bool {
	return t == EntityTypeLead
}

// String returns the string representation of EntityType
func (t EntityType) String() string {
	return string(t)
}

// Client defines the port interface for the external CRM provider.
// Implementations must be safe for concurrent use by multiple in-flight
// sync tasks and must honor context cancellation on every call.
type Client interface {
	// CreateLead creates a lead from a candidate and returns the
	// provider-assigned reference. Provider failures wrap ErrProvider.
	CreateLead(ctx context.Context, candidate *LeadCandidate) (*LeadRef, error)

	// DeleteLead deletes a lead by provider id. Returns true if the
	// provider confirmed the deletion.
	DeleteLead(ctx context.Context, id string) (bool, error)

	// AttachTask attaches a follow-up task to a provider entity
	AttachTask(ctx context.Context, entityType EntityType, entityID string, task Task) error
}
