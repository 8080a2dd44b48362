package marketplace

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/orderdesk/backend/internal/domain/order"
	"github.com/orderdesk/backend/internal/domain/shared/valueobject"
)

// ErrMarketplace indicates the marketplace request failed
var ErrMarketplace = errors.New("ezmanage: marketplace request failed")

// EZManageClient implements the order source port against the EZManage
// catering marketplace API.
type EZManageClient struct {
	config *EZManageConfig
	client *resty.Client
	logger *zap.Logger
}

var _ order.Source = (*EZManageClient)(nil)

// NewEZManageClient creates a new EZManage client
func NewEZManageClient(config *EZManageConfig, logger *zap.Logger) (*EZManageClient, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid ezmanage config: %w", err)
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(config.BaseURL, "/")).
		SetAuthToken(config.Token).
		SetTimeout(time.Duration(config.TimeoutSeconds) * time.Second).
		SetHeader("Accept", "application/json")

	return &EZManageClient{
		config: config,
		client: client,
		logger: logger,
	}, nil
}

// FetchOrder retrieves an order from the marketplace by its remote ID and
// maps it onto the domain model under the configured account.
func (c *EZManageClient) FetchOrder(ctx context.Context, remoteID string) (*order.Order, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/orders/" + remoteID)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching order %s: %v", ErrMarketplace, remoteID, err)
	}

	if resp.StatusCode() == http.StatusNotFound {
		return nil, fmt.Errorf("%w: remote %s", order.ErrOrderNotFound, remoteID)
	}
	if resp.IsError() {
		var body errorResponse
		_ = json.Unmarshal(resp.Body(), &body)
		return nil, fmt.Errorf("%w: status %d: %s", ErrMarketplace, resp.StatusCode(), body.Error)
	}

	payload, err := decodeOrder(resp.Body())
	if err != nil {
		return nil, err
	}

	o, err := c.toDomain(payload)
	if err != nil {
		return nil, err
	}

	c.logger.Debug("fetched marketplace order",
		zap.String("remote_id", remoteID),
		zap.String("name", o.Name))

	return o, nil
}

// decodeOrder decodes a marketplace order payload strictly. Unknown fields
// mean the schema drifted and the data cannot be trusted.
func decodeOrder(body []byte) (*orderResponse, error) {
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields()

	var payload orderResponse
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: decoding order payload: %v", ErrMarketplace, err)
	}
	if payload.OrderNumber == "" {
		return nil, fmt.Errorf("%w: order payload missing order number", ErrMarketplace)
	}
	return &payload, nil
}

// toDomain maps a marketplace payload onto a domain order
func (c *EZManageClient) toDomain(payload *orderResponse) (*order.Order, error) {
	subtotal, err := toMoney(payload.Totals.SubTotal)
	if err != nil {
		return nil, err
	}
	total, err := toMoney(payload.Totals.TotalDue)
	if err != nil {
		return nil, err
	}

	items := make([]order.Item, 0, len(payload.LineItems))
	for _, line := range payload.LineItems {
		amount, err := toMoney(line.TotalInUsd)
		if err != nil {
			return nil, err
		}
		items = append(items, order.Item{
			ProductID: line.Name,
			Amount:    amount,
		})
	}

	o, err := order.NewOrder(c.config.AccountID, c.config.AccountRef, payload.Caterer.UUID, payload.OrderNumber, subtotal, total, items)
	if err != nil {
		return nil, err
	}

	if payload.Event.Timestamp != "" {
		eventAt, err := time.Parse(time.RFC3339, payload.Event.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("%w: parsing event timestamp: %v", ErrMarketplace, err)
		}
		o.EventAt = eventAt
	}

	return o, nil
}

// toMoney converts a marketplace amount into the domain money value. The
// marketplace reports subunits directly, so no decimal conversion happens.
func toMoney(a amountInfo) (valueobject.Money, error) {
	currency := valueobject.Currency(a.Currency)
	if a.Currency == "" {
		currency = valueobject.DefaultCurrency
	}
	m, err := valueobject.NewMoneyFromSubunits(a.Subunits, currency)
	if err != nil {
		return valueobject.Money{}, fmt.Errorf("%w: invalid amount: %v", ErrMarketplace, err)
	}
	return m, nil
}
