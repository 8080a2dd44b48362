package crmsync

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/orderdesk/backend/internal/domain/account"
	"github.com/orderdesk/backend/internal/domain/crm"
	"github.com/orderdesk/backend/internal/domain/shared/valueobject"
)

// MockCrmClient is a mock implementation of crm.Client
type MockCrmClient struct {
	mock.Mock
}

func (m *MockCrmClient) CreateLead(ctx context.Context, candidate *crm.LeadCandidate) (*crm.LeadRef, error) {
	args := m.Called(ctx, candidate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*crm.LeadRef), args.Error(1)
}

func (m *MockCrmClient) DeleteLead(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockCrmClient) AttachTask(ctx context.Context, entityType crm.EntityType, entityID string, task crm.Task) error {
	args := m.Called(ctx, entityType, entityID, task)
	return args.Error(0)
}

// Ensure mock implements interface
var _ crm.Client = (*MockCrmClient)(nil)

// h4hCandidate is an order-derived candidate where the commission line
// must be excluded for the sums to reconcile: 500 + 4500 lines against a
// 5000 recorded subtotal.
func h4hCandidate() *crm.LeadCandidate {
	return &crm.LeadCandidate{
		ID:          "ORD-1001",
		Description: "Order ORD-1001 (caterer caterer-17)",
		Products: []crm.LeadProduct{
			{ProductID: account.CommissionProductID, AmountInUsd: valueobject.NewUSD(500)},
			{ProductID: "Falafel Platter", AmountInUsd: valueobject.NewUSD(4500)},
		},
		RecordedSubtotal: valueobject.NewUSD(5000),
	}
}

type unknownEntity struct{}

func (unknownEntity) Kind() crm.EntityKind { return crm.EntityKind("CONTACT") }

func TestGeneratorGenerate(t *testing.T) {
	registry := account.DefaultRegistry()

	t.Run("H4H commission exclusion applied before comparison", func(t *testing.T) {
		// The recorded subtotal is food-only (4500); the lead carries the
		// commission line the marketplace adds. Only the exclusion makes
		// the sums reconcile: 5000 total lines minus the 500 commission
		// equals the recorded 4500.
		candidate := h4hCandidate()
		candidate.RecordedSubtotal = valueobject.NewUSD(4500)

		client := new(MockCrmClient)
		client.On("CreateLead", mock.Anything, candidate).Return(&crm.LeadRef{ID: "lead-78"}, nil)
		g := NewGenerator(registry, client, nil)

		result, err := g.Generate(context.Background(), account.RefH4H, candidate)
		require.NoError(t, err)
		assert.Equal(t, "lead-78", result.CrmID)
		assert.True(t, result.IsSubtotalMatch)
		client.AssertExpectations(t)

		// Without the exclusion (ADMIN excludes nothing) the same
		// candidate compares 5000 against 4500 and must not match.
		adminResult, err := NewGenerator(registry, client, nil).Generate(context.Background(), account.RefAdmin, candidate)
		require.NoError(t, err)
		assert.False(t, adminResult.IsSubtotalMatch)
	})

	t.Run("one subunit difference yields mismatch", func(t *testing.T) {
		candidate := h4hCandidate()
		candidate.RecordedSubtotal = valueobject.NewUSD(4501)

		client := new(MockCrmClient)
		client.On("CreateLead", mock.Anything, mock.Anything).Return(&crm.LeadRef{ID: "lead-79"}, nil)
		g := NewGenerator(registry, client, nil)

		result, err := g.Generate(context.Background(), account.RefH4H, candidate)
		require.NoError(t, err)
		assert.False(t, result.IsSubtotalMatch)
	})

	t.Run("comparison is deterministic across repeated generation", func(t *testing.T) {
		candidate := h4hCandidate()
		candidate.RecordedSubtotal = valueobject.NewUSD(4500)

		client := new(MockCrmClient)
		// Idempotent stub: same lead ref every call.
		client.On("CreateLead", mock.Anything, mock.Anything).Return(&crm.LeadRef{ID: "lead-80"}, nil)
		g := NewGenerator(registry, client, nil)

		first, err := g.Generate(context.Background(), account.RefH4H, candidate)
		require.NoError(t, err)
		second, err := g.Generate(context.Background(), account.RefH4H, candidate)
		require.NoError(t, err)
		assert.Equal(t, first.IsSubtotalMatch, second.IsSubtotalMatch)
		assert.Equal(t, first.CrmID, second.CrmID)
	})

	t.Run("unknown account fails before the provider is called", func(t *testing.T) {
		client := new(MockCrmClient)
		g := NewGenerator(registry, client, nil)

		_, err := g.Generate(context.Background(), account.RefInvalid, h4hCandidate())
		assert.ErrorIs(t, err, account.ErrUnknownAccount)
		client.AssertNotCalled(t, "CreateLead", mock.Anything, mock.Anything)
	})

	t.Run("provider failure wraps ErrProvider", func(t *testing.T) {
		client := new(MockCrmClient)
		client.On("CreateLead", mock.Anything, mock.Anything).Return(nil, errors.New("upstream 502"))
		g := NewGenerator(registry, client, nil)

		_, err := g.Generate(context.Background(), account.RefH4H, h4hCandidate())
		assert.ErrorIs(t, err, crm.ErrProvider)
	})

	t.Run("unsupported entity kind rejected", func(t *testing.T) {
		client := new(MockCrmClient)
		g := NewGenerator(registry, client, nil)

		_, err := g.Generate(context.Background(), account.RefH4H, unknownEntity{})
		assert.ErrorIs(t, err, crm.ErrUnsupportedEntity)
	})

	t.Run("invalid candidate rejected", func(t *testing.T) {
		client := new(MockCrmClient)
		g := NewGenerator(registry, client, nil)

		_, err := g.Generate(context.Background(), account.RefH4H, &crm.LeadCandidate{})
		assert.ErrorIs(t, err, crm.ErrInvalidCandidate)
	})
}
