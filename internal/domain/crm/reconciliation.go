package crm

// Classification is the reconciliation outcome for one order
type Classification string

const (
	// ClassificationMatched indicates the non-excluded product sum equals
	// the recorded subtotal
	ClassificationMatched Classification = "MATCHED"
	// ClassificationMismatched indicates the sums differ. Mismatches are
	// reported for manual review, never corrected automatically.
	ClassificationMismatched Classification = "MISMATCHED"
	// ClassificationUnresolvable indicates the CRM call failed before a
	// comparison could be made
	ClassificationUnresolvable Classification = "UNRESOLVABLE"
)

// IsValid returns true if the classification is valid
func (c Classification) IsValid() bool {
	switch c {
	case ClassificationMatched, ClassificationMismatched, ClassificationUnresolvable:
		return true
	default:
		return false
	}
}

// String returns the string representation of Classification
func (c Classification) String() string {
	return string(c)
}
