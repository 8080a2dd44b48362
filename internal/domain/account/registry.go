package account

import "errors"

// ErrUnknownAccount indicates the account ref is not in the registry
var ErrUnknownAccount = errors.New("account: unknown account reference")

// CommissionProductID is the marketplace commission line item. It appears
// on inbound orders but is not part of the food subtotal, so partner
// accounts exclude it from reconciliation.
const CommissionProductID = "EZCater/EZOrder Commission"

// ExclusionSet holds product identifiers excluded from subtotal
// reconciliation for one account
type ExclusionSet map[string]struct{}

// NewExclusionSet builds an ExclusionSet from product identifiers
func NewExclusionSet(productIDs ...string) ExclusionSet {
	set := make(ExclusionSet, len(productIDs))
	for _, id := range productIDs {
		set[id] = struct{}{}
	}
	return set
}

// Contains returns true if the product is excluded
func (s ExclusionSet) Contains(productID string) bool {
	_, ok := s[productID]
	return ok
}

// Registry provides read-only access to per-account business rules.
// Implementations must be safe for concurrent use.
type Registry interface {
	// Exclusions returns the product exclusion set for an account.
	// Fails with ErrUnknownAccount if the ref is not registered.
	Exclusions(ref Ref) (ExclusionSet, error)

	// Known returns true if the ref is registered
	Known(ref Ref) bool
}

// StaticRegistry is a Registry backed by an immutable table built at
// process start. It is safe for concurrent use without locking because it
// is never mutated after construction.
type StaticRegistry struct {
	exclusions map[Ref]ExclusionSet
}

// NewStaticRegistry builds a registry from a fixed table. The table is
// copied so later mutation of the argument cannot leak into the registry.
func NewStaticRegistry(table map[Ref]ExclusionSet) *StaticRegistry {
	exclusions := make(map[Ref]ExclusionSet, len(table))
	for ref, set := range table {
		copied := make(ExclusionSet, len(set))
		for id := range set {
			copied[id] = struct{}{}
		}
		exclusions[ref] = copied
	}
	return &StaticRegistry{exclusions: exclusions}
}

// DefaultRegistry returns the registry for the current tenant set.
// RefInvalid is deliberately absent so the unknown-account path stays
// reachable.
func DefaultRegistry() *StaticRegistry {
	return NewStaticRegistry(map[Ref]ExclusionSet{
		RefAdmin: NewExclusionSet(),
		RefH4H:   NewExclusionSet(CommissionProductID),
	})
}

// Exclusions returns the product exclusion set for an account
func (r *StaticRegistry) Exclusions(ref Ref) (ExclusionSet, error) {
	set, ok := r.exclusions[ref]
	if !ok {
		return nil, ErrUnknownAccount
	}
	return set, nil
}

// Known returns true if the ref is registered
func (r *StaticRegistry) Known(ref Ref) bool {
	_, ok := r.exclusions[ref]
	return ok
}

// Ensure StaticRegistry implements Registry
var _ Registry = (*StaticRegistry)(nil)
