package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	orderapp "github.com/orderdesk/backend/internal/application/order"
	"github.com/orderdesk/backend/internal/domain/order"
	"github.com/orderdesk/backend/internal/interfaces/http/middleware"
)

// OrderResponse is the API shape of one order
type OrderResponse struct {
	ID         string              `json:"id"`
	AccountRef string              `json:"account_ref"`
	CatererID  string              `json:"caterer_id"`
	Name       string              `json:"name"`
	Status     string              `json:"status"`
	Subtotal   string              `json:"subtotal"`
	Total      string              `json:"total"`
	Items      []OrderItemResponse `json:"items"`
	EventAt    time.Time           `json:"event_at"`
	CreatedAt  time.Time           `json:"created_at"`
	UpdatedAt  time.Time           `json:"updated_at"`
}

// OrderItemResponse is the API shape of one order line item
type OrderItemResponse struct {
	ProductID string `json:"product_id"`
	Amount    string `json:"amount"`
}

// OrderSummaryResponse is the API shape of one order listing entry
type OrderSummaryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	CatererID string `json:"caterer_id"`
}

// UpdateOrderStatusRequest is the payload for an order status change
type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=ACCEPTED CANCELLED ARCHIVED"`
}

// IngestOrderRequest is the payload for pulling an order in from the
// marketplace
type IngestOrderRequest struct {
	RemoteID string `json:"remote_id" binding:"required"`
}

// OrderHandler handles order management requests
type OrderHandler struct {
	BaseHandler
	service *orderapp.Service
}

// NewOrderHandler creates a new OrderHandler
func NewOrderHandler(service *orderapp.Service) *OrderHandler {
	return &OrderHandler{service: service}
}

// RegisterRoutes registers order routes
func (h *OrderHandler) RegisterRoutes(rg *gin.RouterGroup) {
	orders := rg.Group("/orders")
	{
		orders.GET("", h.List)
		orders.GET("/:id", h.Get)
		orders.PATCH("/:id/status", h.UpdateStatus)
		orders.POST("/ingest", h.Ingest)
	}
}

// List lists order summaries for the authenticated account
// GET /api/v1/orders
func (h *OrderHandler) List(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid account identity")
		return
	}

	summaries, err := h.service.ListByAccount(c.Request.Context(), accountID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	resp := make([]OrderSummaryResponse, len(summaries))
	for i, s := range summaries {
		resp[i] = OrderSummaryResponse{
			ID:        s.ID.String(),
			Name:      s.Name,
			Status:    s.Status.String(),
			CatererID: s.CatererID,
		}
	}
	h.Success(c, resp)
}

// Get returns one order
// GET /api/v1/orders/:id
func (h *OrderHandler) Get(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid account identity")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	o, err := h.service.Get(c.Request.Context(), accountID, orderID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toOrderResponse(o))
}

// UpdateStatus moves an order to a new lifecycle status
// PATCH /api/v1/orders/:id/status
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid account identity")
		return
	}

	orderID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}

	var req UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	o, err := h.service.UpdateStatus(c.Request.Context(), accountID, orderID, order.Status(req.Status))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Success(c, toOrderResponse(o))
}

// Ingest pulls an order record in from the marketplace
// POST /api/v1/orders/ingest
func (h *OrderHandler) Ingest(c *gin.Context) {
	var req IngestOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	o, err := h.service.Ingest(c.Request.Context(), req.RemoteID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}
	h.Created(c, toOrderResponse(o))
}

func toOrderResponse(o *order.Order) OrderResponse {
	items := make([]OrderItemResponse, len(o.Items))
	for i, item := range o.Items {
		items[i] = OrderItemResponse{
			ProductID: item.ProductID,
			Amount:    item.Amount.String(),
		}
	}
	return OrderResponse{
		ID:         o.ID.String(),
		AccountRef: o.AccountRef.String(),
		CatererID:  o.CatererID,
		Name:       o.Name,
		Status:     o.Status.String(),
		Subtotal:   o.Subtotal.String(),
		Total:      o.Total.String(),
		Items:      items,
		EventAt:    o.EventAt,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}
