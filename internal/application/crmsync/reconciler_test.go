package crmsync

import (
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/backend/internal/domain/account"
	"github.com/orderdesk/backend/internal/domain/crm"
	"github.com/orderdesk/backend/internal/domain/order"
	"github.com/orderdesk/backend/internal/domain/shared/valueobject"
)

func reconcilerOrder(t *testing.T, name string) *order.Order {
	t.Helper()
	o, err := order.NewOrder(uuid.New(), account.RefH4H, "caterer-17", name,
		valueobject.NewUSD(4500), valueobject.NewUSD(5000), nil)
	require.NoError(t, err)
	return o
}

func TestReconcilerClassify(t *testing.T) {
	r := NewReconciler()

	matched := reconcilerOrder(t, "ORD-1")
	mismatched := reconcilerOrder(t, "ORD-2")
	failed := reconcilerOrder(t, "ORD-3")

	items := r.Classify([]Pair{
		{Order: matched, Result: &crm.GenerationResult{CrmID: "l1", IsSubtotalMatch: true}},
		{Order: mismatched, Result: &crm.GenerationResult{CrmID: "l2", IsSubtotalMatch: false}},
		{Order: failed, Err: errors.New("provider timeout")},
	})

	require.Len(t, items, 3)

	assert.Equal(t, "ORD-1", items[0].OrderName)
	assert.Equal(t, crm.ClassificationMatched, items[0].Classification)

	assert.Equal(t, crm.ClassificationMismatched, items[1].Classification)
	assert.Contains(t, items[1].Detail, "45.00 USD")

	assert.Equal(t, crm.ClassificationUnresolvable, items[2].Classification)
	assert.Contains(t, items[2].Detail, "provider timeout")
}

func TestReconcilerClassifyEmpty(t *testing.T) {
	assert.Empty(t, NewReconciler().Classify(nil))
}

func TestReconcilerClassifyMissingResult(t *testing.T) {
	items := NewReconciler().Classify([]Pair{{Order: reconcilerOrder(t, "ORD-4")}})
	require.Len(t, items, 1)
	assert.Equal(t, crm.ClassificationUnresolvable, items[0].Classification)
}
