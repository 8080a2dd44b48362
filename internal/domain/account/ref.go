package account

// Ref represents an account reference code
type Ref string

const (
	// RefAdmin represents the administrative house account
	RefAdmin Ref = "ADMIN"
	// RefH4H represents the Hungry4Halal partner account
	RefH4H Ref = "H4H"
	// RefInvalid is reserved so callers can exercise the unknown-account
	// path deterministically. It is a member of the enumeration but is
	// never present in the registry.
	RefInvalid Ref = "INVALID"
)

// IsValid returns true if the ref is a member of the closed enumeration
func (r Ref) IsValid() bool {
	switch r {
	case RefAdmin, RefH4H, RefInvalid:
		return true
	default:
		return false
	}
}

// String returns the string representation of Ref
func (r Ref) String() string {
	return string(r)
}
