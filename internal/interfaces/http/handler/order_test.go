package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	orderapp "github.com/orderdesk/backend/internal/application/order"
	"github.com/orderdesk/backend/internal/domain/order"
	"github.com/orderdesk/backend/internal/interfaces/http/dto"
	"github.com/orderdesk/backend/internal/interfaces/http/middleware"
)

// MockSource implements order.Source for ingest tests
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

func newOrderTestRouter(t *testing.T, repo order.Repository, accountID uuid.UUID) *gin.Engine {
	t.Helper()
	return newIngestTestRouter(t, repo, nil, accountID)
}

func newIngestTestRouter(t *testing.T, repo order.Repository, source order.Source, accountID uuid.UUID) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	service := orderapp.NewService(repo, source, zap.NewNop())

	engine := gin.New()
	engine.Use(func(c *gin.Context) {
		c.Set(middleware.JWTAccountIDKey, accountID.String())
	})

	handler := NewOrderHandler(service)
	api := engine.Group("/api/v1")
	handler.RegisterRoutes(api)
	return engine
}

func TestOrderHandler_List(t *testing.T) {
	accountID := uuid.New()
	repo := new(MockOrderRepository)
	engine := newOrderTestRouter(t, repo, accountID)

	repo.On("FindByAccount", mock.Anything, accountID).Return([]order.Summary{
		{ID: uuid.New(), Name: "A", Status: order.StatusAccepted, CatererID: "cat-1"},
		{ID: uuid.New(), Name: "B", Status: order.StatusCancelled, CatererID: "cat-2"},
	}, nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []OrderSummaryResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, "A", resp.Data[0].Name)
	assert.Equal(t, "CANCELLED", resp.Data[1].Status)
}

func TestOrderHandler_Get(t *testing.T) {
	t.Run("returns order with money formatted as decimal strings", func(t *testing.T) {
		accountID := uuid.New()
		repo := new(MockOrderRepository)
		engine := newOrderTestRouter(t, repo, accountID)

		o := matchedTestOrder(t, accountID, "CHHF3M")
		repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+o.ID.String(), nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data OrderResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "CHHF3M", resp.Data.Name)
		assert.Equal(t, "45.00 USD", resp.Data.Subtotal)
		require.Len(t, resp.Data.Items, 2)
		assert.Equal(t, "5.00 USD", resp.Data.Items[0].Amount)
	})

	t.Run("hides orders of other accounts", func(t *testing.T) {
		accountID := uuid.New()
		repo := new(MockOrderRepository)
		engine := newOrderTestRouter(t, repo, accountID)

		other := matchedTestOrder(t, uuid.New(), "X")
		repo.On("FindByID", mock.Anything, other.ID).Return(other, nil)

		req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/"+other.ID.String(), nil)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestOrderHandler_UpdateStatus(t *testing.T) {
	t.Run("cancels an accepted order", func(t *testing.T) {
		accountID := uuid.New()
		repo := new(MockOrderRepository)
		engine := newOrderTestRouter(t, repo, accountID)

		o := matchedTestOrder(t, accountID, "A")
		repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)
		repo.On("UpdateStatus", mock.Anything, o.ID, order.StatusCancelled).Return(nil)

		w := postPatch(t, engine, "/api/v1/orders/"+o.ID.String()+"/status",
			UpdateOrderStatusRequest{Status: "CANCELLED"})

		require.Equal(t, http.StatusOK, w.Code)

		var resp struct {
			Data OrderResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "CANCELLED", resp.Data.Status)
	})

	t.Run("rejects illegal transition with invalid state code", func(t *testing.T) {
		accountID := uuid.New()
		repo := new(MockOrderRepository)
		engine := newOrderTestRouter(t, repo, accountID)

		o := matchedTestOrder(t, accountID, "A")
		require.NoError(t, o.Archive())
		repo.On("FindByID", mock.Anything, o.ID).Return(o, nil)

		w := postPatch(t, engine, "/api/v1/orders/"+o.ID.String()+"/status",
			UpdateOrderStatusRequest{Status: "CANCELLED"})

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

		var resp dto.Response
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, dto.ErrCodeInvalidState, resp.Error.Code)
	})

	t.Run("rejects unknown status value", func(t *testing.T) {
		accountID := uuid.New()
		engine := newOrderTestRouter(t, new(MockOrderRepository), accountID)

		w := postPatch(t, engine, "/api/v1/orders/"+uuid.New().String()+"/status",
			map[string]string{"status": "EXPLODED"})

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestOrderHandler_Ingest(t *testing.T) {
	t.Run("persists a fetched order", func(t *testing.T) {
		accountID := uuid.New()
		repo := new(MockOrderRepository)
		source := new(MockSource)
		engine := newIngestTestRouter(t, repo, source, accountID)

		fetched := matchedTestOrder(t, accountID, "CHHF3M")
		source.On("FetchOrder", mock.Anything, "abc-123").Return(fetched, nil)
		repo.On("FindByName", mock.Anything, accountID, "CHHF3M").Return(nil, order.ErrOrderNotFound)
		repo.On("Save", mock.Anything, fetched).Return(nil)

		w := postJSON(t, engine, "/api/v1/orders/ingest", IngestOrderRequest{RemoteID: "abc-123"})

		require.Equal(t, http.StatusCreated, w.Code)

		var resp struct {
			Data OrderResponse `json:"data"`
		}
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
		assert.Equal(t, "CHHF3M", resp.Data.Name)
		repo.AssertExpectations(t)
	})

	t.Run("maps unknown remote order to 404", func(t *testing.T) {
		accountID := uuid.New()
		repo := new(MockOrderRepository)
		source := new(MockSource)
		engine := newIngestTestRouter(t, repo, source, accountID)

		source.On("FetchOrder", mock.Anything, "missing").
			Return(nil, order.ErrOrderNotFound)

		w := postJSON(t, engine, "/api/v1/orders/ingest", IngestOrderRequest{RemoteID: "missing"})

		assert.Equal(t, http.StatusNotFound, w.Code)
		repo.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
	})
}

func postPatch(t *testing.T, engine *gin.Engine, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPatch, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}
