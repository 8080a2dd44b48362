package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/orderdesk/backend/internal/application/crmsync"
	"github.com/orderdesk/backend/internal/domain/account"
	"github.com/orderdesk/backend/internal/interfaces/http/middleware"
)

// BulkSyncRequest is the payload for sending a batch of orders to the CRM
type BulkSyncRequest struct {
	// Ref is the account reference code the orders belong to
	Ref string `json:"ref" binding:"required"`
	// OrderNames are the marketplace order names to send. Duplicates are
	// processed independently.
	OrderNames []string `json:"order_names" binding:"required,min=1,dive,required"`
}

// BulkSyncResponse carries one outcome per requested order name, in
// request order
type BulkSyncResponse struct {
	Outcomes []crmsync.Outcome `json:"outcomes"`
}

// CrmSyncHandler handles CRM synchronization requests
type CrmSyncHandler struct {
	BaseHandler
	orchestrator *crmsync.Orchestrator
	logger       *zap.Logger
}

// NewCrmSyncHandler creates a new CrmSyncHandler
func NewCrmSyncHandler(orchestrator *crmsync.Orchestrator, logger *zap.Logger) *CrmSyncHandler {
	return &CrmSyncHandler{
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// RegisterRoutes registers CRM sync routes
func (h *CrmSyncHandler) RegisterRoutes(rg *gin.RouterGroup) {
	crm := rg.Group("/crm")
	{
		crm.POST("/sync", h.BulkSync)
		crm.POST("/sync/:id", h.SyncOne)
	}
}

// BulkSync sends a batch of orders to the CRM
// POST /api/v1/crm/sync
func (h *CrmSyncHandler) BulkSync(c *gin.Context) {
	accountID, err := getAccountID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid account identity")
		return
	}

	var req BulkSyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	outcomes, err := h.orchestrator.SyncOrders(c.Request.Context(), accountID, account.Ref(req.Ref), req.OrderNames)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.logger.Debug("bulk sync handled",
		zap.String("request_id", middleware.GetRequestID(c)),
		zap.Int("orders", len(req.OrderNames)))

	h.Success(c, BulkSyncResponse{Outcomes: outcomes})
}

// SyncOneRequest is the payload for sending a single order to the CRM
type SyncOneRequest struct {
	Ref string `json:"ref" binding:"required"`
}

// SyncOne sends a single order, addressed by ID, to the CRM
// POST /api/v1/crm/sync/:id
func (h *CrmSyncHandler) SyncOne(c *gin.Context) {
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

	var req SyncOneRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.HandleValidationError(c, err)
		return
	}

	outcome, err := h.orchestrator.SyncOrder(c.Request.Context(), accountID, orderID, account.Ref(req.Ref))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, outcome)
}
