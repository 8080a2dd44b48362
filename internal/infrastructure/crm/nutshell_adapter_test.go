package crm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	domaincrm "github.com/orderdesk/backend/internal/domain/crm"
	"github.com/orderdesk/backend/internal/domain/shared/valueobject"
)

func newTestAdapter(t *testing.T, handler http.HandlerFunc) (*NutshellAdapter, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		handler(w, r)
	}))
	t.Cleanup(server.Close)

	adapter, err := NewNutshellAdapter(&NutshellConfig{
		BaseURL:  server.URL,
		Username: "api@example.com",
		APIKey:   "secret",
	}, zap.NewNop())
	require.NoError(t, err)

	return adapter, server
}

func TestNewNutshellAdapter_InvalidConfig(t *testing.T) {
	_, err := NewNutshellAdapter(&NutshellConfig{Username: "u", APIKey: "k"}, zap.NewNop())
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "base URL")
}

func TestNutshellAdapter_CreateLead(t *testing.T) {
	var captured rpcRequest
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		user, key, ok := r.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "api@example.com", user)
		assert.Equal(t, "secret", key)
		assert.Equal(t, rpcEndpoint, r.URL.Path)

		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_ = json.NewEncoder(w).Encode(map[string]any{
			"result": map[string]any{"id": 1042, "description": "Order CHHF3M"},
			"id":     captured.ID,
		})
	})

	candidate := &domaincrm.LeadCandidate{
		ID:          "CHHF3M",
		Description: "Order CHHF3M (caterer falafel-inc)",
		Products: []domaincrm.LeadProduct{
			{ProductID: "Falafel Platter", AmountInUsd: valueobject.NewUSD(4500)},
		},
		RecordedSubtotal: valueobject.NewUSD(4500),
		Tags:             []string{"H4H"},
	}

	ref, err := adapter.CreateLead(context.Background(), candidate)
	require.NoError(t, err)
	assert.Equal(t, "1042", ref.ID)

	assert.Equal(t, "newLead", captured.Method)

	// amounts cross the wire as exact decimal strings
	params, err := json.Marshal(captured.Params)
	require.NoError(t, err)
	var decoded newLeadParams
	require.NoError(t, json.Unmarshal(params, &decoded))
	require.Len(t, decoded.Lead.Products, 1)
	assert.Equal(t, "45.00", decoded.Lead.Products[0].Price.Amount)
	assert.Equal(t, "USD", decoded.Lead.Products[0].Price.CurrencyShortname)
}

func TestNutshellAdapter_CreateLead_ProviderError(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 500, "message": "internal error"},
		})
	})

	_, err := adapter.CreateLead(context.Background(), &domaincrm.LeadCandidate{ID: "A"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domaincrm.ErrProvider)
	assert.Contains(t, err.Error(), "internal error")
}

func TestNutshellAdapter_CreateLead_HTTPFailure(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := adapter.CreateLead(context.Background(), &domaincrm.LeadCandidate{ID: "A"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domaincrm.ErrProvider)
}

func TestNutshellAdapter_CreateLead_ContextCancelled(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"id": 1}})
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := adapter.CreateLead(ctx, &domaincrm.LeadCandidate{ID: "A"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domaincrm.ErrProvider)
}

func TestNutshellAdapter_DeleteLead(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		var req rpcRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "deleteLead", req.Method)

		_ = json.NewEncoder(w).Encode(map[string]any{"result": true, "id": req.ID})
	})

	deleted, err := adapter.DeleteLead(context.Background(), "1042")
	require.NoError(t, err)
	assert.True(t, deleted)
}

func TestNutshellAdapter_DeleteLead_NotFound(t *testing.T) {
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 404, "message": "no such lead"},
		})
	})

	_, err := adapter.DeleteLead(context.Background(), "9999")
	require.Error(t, err)
	assert.ErrorIs(t, err, domaincrm.ErrLeadNotFound)
}

func TestNutshellAdapter_AttachTask(t *testing.T) {
	var captured rpcRequest
	adapter, _ := newTestAdapter(t, func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		_ = json.NewEncoder(w).Encode(map[string]any{"result": map[string]any{"id": 7}, "id": captured.ID})
	})

	err := adapter.AttachTask(context.Background(), domaincrm.EntityTypeLead, "1042", domaincrm.Task{
		Title:       "Subtotal mismatch review",
		Description: "Recorded subtotal does not match product sum",
	})
	require.NoError(t, err)
	assert.Equal(t, "newTask", captured.Method)

	params, err := json.Marshal(captured.Params)
	require.NoError(t, err)
	var decoded newTaskParams
	require.NoError(t, json.Unmarshal(params, &decoded))
	assert.Equal(t, "Subtotal mismatch review", decoded.Task.Title)
	assert.Equal(t, "Lead", decoded.Task.Entity.EntityType)
	assert.Equal(t, "1042", decoded.Task.Entity.ID)
}
