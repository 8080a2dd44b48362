package crm

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	domaincrm "github.com/orderdesk/backend/internal/domain/crm"
)

// providerCodeNotFound is the Nutshell error code for a missing entity
const providerCodeNotFound = 404

// NutshellAdapter implements the CRM client port against the Nutshell
// JSON-RPC API. Safe for concurrent use; resty clients are goroutine safe.
type NutshellAdapter struct {
	config *NutshellConfig
	client *resty.Client
	logger *zap.Logger
}

var _ domaincrm.Client = (*NutshellAdapter)(nil)

// NewNutshellAdapter creates a new Nutshell adapter
func NewNutshellAdapter(config *NutshellConfig, logger *zap.Logger) (*NutshellAdapter, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid nutshell config: %w", err)
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(config.BaseURL, "/")).
		SetBasicAuth(config.Username, config.APIKey).
		SetTimeout(time.Duration(config.TimeoutSeconds) * time.Second).
		SetHeader("Content-Type", "application/json")

	return &NutshellAdapter{
		config: config,
		client: client,
		logger: logger,
	}, nil
}

// CreateLead creates a lead on Nutshell and returns its provider id
func (a *NutshellAdapter) CreateLead(ctx context.Context, candidate *domaincrm.LeadCandidate) (*domaincrm.LeadRef, error) {
	params := newLeadParams{Lead: leadPayloadFromCandidate(candidate)}

	raw, err := a.call(ctx, "newLead", params)
	if err != nil {
		return nil, err
	}

	var result leadResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("%w: decoding newLead result: %v", domaincrm.ErrInvalidResponse, err)
	}
	if result.ID.String() == "" {
		return nil, fmt.Errorf("%w: newLead result missing id", domaincrm.ErrInvalidResponse)
	}

	a.logger.Debug("nutshell lead created",
		zap.String("candidate_id", candidate.ID),
		zap.String("lead_id", result.ID.String()))

	return &domaincrm.LeadRef{ID: result.ID.String()}, nil
}

// DeleteLead deletes a lead by provider id
func (a *NutshellAdapter) DeleteLead(ctx context.Context, id string) (bool, error) {
	raw, err := a.call(ctx, "deleteLead", deleteLeadParams{LeadID: id})
	if err != nil {
		return false, err
	}

	var deleted bool
	if err := json.Unmarshal(raw, &deleted); err != nil {
		return false, fmt.Errorf("%w: decoding deleteLead result: %v", domaincrm.ErrInvalidResponse, err)
	}
	return deleted, nil
}

// AttachTask attaches a follow-up task to a provider entity
func (a *NutshellAdapter) AttachTask(ctx context.Context, entityType domaincrm.EntityType, entityID string, task domaincrm.Task) error {
	if !entityType.IsValid() {
		return fmt.Errorf("%w: entity type %q", domaincrm.ErrInvalidResponse, entityType)
	}

	params := newTaskParams{
		Task: taskPayload{
			Title:       task.Title,
			Description: task.Description,
			Entity: entityPayload{
				EntityType: entityType.String(),
				ID:         entityID,
			},
		},
	}

	_, err := a.call(ctx, "newTask", params)
	return err
}

// call performs one JSON-RPC round trip and returns the raw result.
// Transport failures and provider error envelopes wrap ErrProvider, except
// the provider's not-found code which maps to ErrLeadNotFound.
func (a *NutshellAdapter) call(ctx context.Context, method string, params any) (json.RawMessage, error) {
	req := rpcRequest{
		Method: method,
		Params: params,
		ID:     uuid.New().String(),
	}

	var envelope rpcResponse
	resp, err := a.client.R().
		SetContext(ctx).
		SetBody(req).
		SetResult(&envelope).
		Post(rpcEndpoint)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domaincrm.ErrProvider, method, err)
	}

	if resp.IsError() {
		return nil, fmt.Errorf("%w: %s: status %d", domaincrm.ErrProvider, method, resp.StatusCode())
	}
	if envelope.Error != nil {
		if envelope.Error.Code == providerCodeNotFound {
			return nil, fmt.Errorf("%w: %s", domaincrm.ErrLeadNotFound, envelope.Error.Message)
		}
		return nil, fmt.Errorf("%w: %s: [%d] %s", domaincrm.ErrProvider, method, envelope.Error.Code, envelope.Error.Message)
	}
	if envelope.Result == nil {
		return nil, fmt.Errorf("%w: %s: empty result", domaincrm.ErrInvalidResponse, method)
	}

	return envelope.Result, nil
}

// leadPayloadFromCandidate maps a domain candidate onto the wire shape.
// Amounts go out as exact decimal strings, never floats.
func leadPayloadFromCandidate(c *domaincrm.LeadCandidate) leadPayload {
	products := make([]productPayload, 0, len(c.Products))
	for _, p := range c.Products {
		products = append(products, productPayload{
			RelationshipName: p.ProductID,
			Price: pricePayload{
				CurrencyShortname: p.AmountInUsd.Currency().String(),
				Amount:            p.AmountInUsd.Decimal().StringFixed(p.AmountInUsd.Currency().Exponent()),
			},
		})
	}

	return leadPayload{
		Description: c.Description,
		Products:    products,
		Tags:        c.Tags,
	}
}
