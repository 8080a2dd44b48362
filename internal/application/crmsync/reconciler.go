package crmsync

import (
	"github.com/orderdesk/backend/internal/domain/crm"
	"github.com/orderdesk/backend/internal/domain/order"
)

// Pair couples an order with the result of its CRM entity generation.
// Err is set when generation failed before a comparison could be made.
type Pair struct {
	Order  *order.Order
	Result *crm.GenerationResult
	Err    error
}

// ReconciliationItem is the classified outcome for one pair
type ReconciliationItem struct {
	// OrderName identifies the order
	OrderName string
	// Classification is the reconciliation outcome
	Classification crm.Classification
	// Detail carries the recorded subtotal on mismatches and the error
	// text on unresolvable items, for manual review
	Detail string
}

// Reconciler classifies (order, generation result) pairs. It reports
// only; mismatched financial totals are surfaced for manual review, never
// corrected, because automatic correction would mask real discrepancies.
type Reconciler struct{}

// NewReconciler creates a Reconciler
func NewReconciler() *Reconciler {
	return &Reconciler{}
}

// Classify classifies every pair in input order
func (r *Reconciler) Classify(pairs []Pair) []ReconciliationItem {
	items := make([]ReconciliationItem, len(pairs))
	for i, pair := range pairs {
		items[i] = classify(pair)
	}
	return items
}

func classify(pair Pair) ReconciliationItem {
	name := ""
	if pair.Order != nil {
		name = pair.Order.Name
	}

	if pair.Err != nil || pair.Result == nil {
		item := ReconciliationItem{
			OrderName:      name,
			Classification: crm.ClassificationUnresolvable,
		}
		if pair.Err != nil {
			item.Detail = pair.Err.Error()
		}
		return item
	}

	if pair.Result.IsSubtotalMatch {
		return ReconciliationItem{
			OrderName:      name,
			Classification: crm.ClassificationMatched,
		}
	}

	item := ReconciliationItem{
		OrderName:      name,
		Classification: crm.ClassificationMismatched,
	}
	if pair.Order != nil {
		item.Detail = "recorded subtotal " + pair.Order.Subtotal.String()
	}
	return item
}
