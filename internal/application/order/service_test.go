package order

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/orderdesk/backend/internal/domain/account"
	"github.com/orderdesk/backend/internal/domain/order"
	"github.com/orderdesk/backend/internal/domain/shared/valueobject"
)

// MockRepository is a mock implementation of order.Repository
type MockRepository struct {
	mock.Mock
}

var _ order.Repository = (*MockRepository)(nil)

func (m *MockRepository) Save(ctx context.Context, o *order.Order) error {
	args := m.Called(ctx, o)
	return args.Error(0)
}

func (m *MockRepository) FindByID(ctx context.Context, id uuid.UUID) (*order.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockRepository) FindByName(ctx context.Context, accountID uuid.UUID, name string) (*order.Order, error) {
	args := m.Called(ctx, accountID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func (m *MockRepository) FindByAccount(ctx context.Context, accountID uuid.UUID) ([]order.Summary, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]order.Summary), args.Error(1)
}

func (m *MockRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status order.Status) error {
	args := m.Called(ctx, id, status)
	return args.Error(0)
}

// MockSource is a mock implementation of order.Source
type MockSource struct {
	mock.Mock
}

var _ order.Source = (*MockSource)(nil)

func (m *MockSource) FetchOrder(ctx context.Context, remoteID string) (*order.Order, error) {
	args := m.Called(ctx, remoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*order.Order), args.Error(1)
}

func newAcceptedOrder(t *testing.T, accountID uuid.UUID, name string) *order.Order {
	t.Helper()
	o, err := order.NewOrder(accountID, account.RefH4H, "cat-1", name,
		valueobject.NewUSD(4500), valueobject.NewUSD(5000),
		[]order.Item{{ProductID: "Falafel Platter", Amount: valueobject.NewUSD(4500)}})
	require.NoError(t, err)
	return o
}

func TestService_Get(t *testing.T) {
	t.Run("returns order owned by account", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil, zap.NewNop())

		accountID := uuid.New()
		o := newAcceptedOrder(t, accountID, "A")
		repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		got, err := svc.Get(context.Background(), accountID, o.ID)
		require.NoError(t, err)
		assert.Equal(t, o.ID, got.ID)
	})

	t.Run("hides orders of other accounts", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil, zap.NewNop())

		o := newAcceptedOrder(t, uuid.New(), "A")
		repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := svc.Get(context.Background(), uuid.New(), o.ID)
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
	})
}

func TestService_UpdateStatus(t *testing.T) {
	t.Run("cancels accepted order", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil, zap.NewNop())

		accountID := uuid.New()
		o := newAcceptedOrder(t, accountID, "A")
		repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		repo.On("UpdateStatus", mock.Anything, o.ID, order.StatusCancelled).Return(nil)

		got, err := svc.UpdateStatus(context.Background(), accountID, o.ID, order.StatusCancelled)
		require.NoError(t, err)
		assert.Equal(t, order.StatusCancelled, got.Status)
		repo.AssertExpectations(t)
	})

	t.Run("rejects illegal transition without persisting", func(t *testing.T) {
		repo := new(MockRepository)
		svc := NewService(repo, nil, zap.NewNop())

		accountID := uuid.New()
		o := newAcceptedOrder(t, accountID, "A")
		require.NoError(t, o.Archive())
		repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		_, err := svc.UpdateStatus(context.Background(), accountID, o.ID, order.StatusCancelled)
		assert.ErrorIs(t, err, order.ErrInvalidStatusTransition)
		repo.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestService_ListByAccount(t *testing.T) {
	repo := new(MockRepository)
	svc := NewService(repo, nil, zap.NewNop())

	accountID := uuid.New()
	summaries := []order.Summary{{ID: uuid.New(), Name: "A", Status: order.StatusAccepted}}
	repo.On("FindByAccount", mock.Anything, accountID).Return(summaries, nil)

	got, err := svc.ListByAccount(context.Background(), accountID)
	require.NoError(t, err)
	assert.Equal(t, summaries, got)
}

func TestService_Ingest(t *testing.T) {
	t.Run("saves newly fetched order", func(t *testing.T) {
		repo := new(MockRepository)
		source := new(MockSource)
		svc := NewService(repo, source, zap.NewNop())

		accountID := uuid.New()
		fetched := newAcceptedOrder(t, accountID, "CHHF3M")
		source.On("FetchOrder", mock.Anything, "remote-1").Return(fetched, nil)
		repo.On("FindByName", mock.Anything, accountID, "CHHF3M").Return(nil, order.ErrOrderNotFound)
		repo.On("Save", mock.Anything, fetched).Return(nil)

		got, err := svc.Ingest(context.Background(), "remote-1")
		require.NoError(t, err)
		assert.Equal(t, "CHHF3M", got.Name)
		repo.AssertExpectations(t)
	})

	t.Run("refresh keeps identity and lifecycle of known order", func(t *testing.T) {
		repo := new(MockRepository)
		source := new(MockSource)
		svc := NewService(repo, source, zap.NewNop())

		accountID := uuid.New()
		existing := newAcceptedOrder(t, accountID, "CHHF3M")
		require.NoError(t, existing.Cancel())

		fetched := newAcceptedOrder(t, accountID, "CHHF3M")
		source.On("FetchOrder", mock.Anything, "remote-1").Return(fetched, nil)
		repo.On("FindByName", mock.Anything, accountID, "CHHF3M").Return(existing, nil)
		repo.On("Save", mock.Anything, fetched).Return(nil)

		got, err := svc.Ingest(context.Background(), "remote-1")
		require.NoError(t, err)
		assert.Equal(t, existing.ID, got.ID)
		assert.Equal(t, order.StatusCancelled, got.Status)
	})

	t.Run("propagates marketplace not found", func(t *testing.T) {
		repo := new(MockRepository)
		source := new(MockSource)
		svc := NewService(repo, source, zap.NewNop())

		source.On("FetchOrder", mock.Anything, "missing").Return(nil, order.ErrOrderNotFound)

		_, err := svc.Ingest(context.Background(), "missing")
		assert.ErrorIs(t, err, order.ErrOrderNotFound)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}
