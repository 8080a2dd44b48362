package crmsync

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/orderdesk/backend/internal/domain/account"
	"github.com/orderdesk/backend/internal/domain/crm"
	"github.com/orderdesk/backend/internal/domain/order"
	"github.com/orderdesk/backend/internal/domain/shared"
)

// OutcomeStatus is the terminal state of one order within a batch
type OutcomeStatus string

const (
	// OutcomeSent indicates the lead was created on the CRM
	OutcomeSent OutcomeStatus = "SENT"
	// OutcomeFailed indicates the order could not be sent
	OutcomeFailed OutcomeStatus = "FAILED"
	// OutcomeAlreadySent indicates a previous batch already sent this
	// order and the idempotency window has not elapsed
	OutcomeAlreadySent OutcomeStatus = "ALREADY_SENT"
	// OutcomeSkipped indicates the batch was cancelled before this order
	// was processed. Skipped items are incomplete, not failures.
	OutcomeSkipped OutcomeStatus = "SKIPPED"
)

// FailureKind names the per-order failure classes
type FailureKind string

const (
	// FailureOrderNotFound indicates the order name resolved to nothing
	FailureOrderNotFound FailureKind = "ORDER_NOT_FOUND"
	// FailureCrmProvider indicates the CRM provider call failed
	FailureCrmProvider FailureKind = "CRM_PROVIDER"
	// FailureOrderStore indicates the order store lookup failed
	FailureOrderStore FailureKind = "ORDER_STORE"
)

// Outcome is the per-order result of a sync batch
type Outcome struct {
	// OrderName is the requested order name, mirrored from the input
	OrderName string `json:"order_name"`
	// Status is the terminal state for this order
	Status OutcomeStatus `json:"status"`
	// CrmID is the provider-assigned lead id on success
	CrmID string `json:"crm_id,omitempty"`
	// IsSubtotalMatch is the computed reconciliation flag on success
	IsSubtotalMatch *bool `json:"is_subtotal_match,omitempty"`
	// FailureKind classifies the failure when Status is FAILED
	FailureKind FailureKind `json:"failure_kind,omitempty"`
	// Message carries detail for manual review
	Message string `json:"message,omitempty"`
}

// Options configures the orchestrator
type Options struct {
	// Concurrency bounds how many orders are in flight at once.
	// Values below 1 mean sequential processing.
	Concurrency int
	// PerOrderTimeout bounds the two external calls made for one order
	PerOrderTimeout time.Duration
	// Idempotency controls duplicate-send suppression across batches
	Idempotency shared.IdempotencyConfig
}

// DefaultOptions returns the default orchestrator options
func DefaultOptions() Options {
	return Options{
		Concurrency:     4,
		PerOrderTimeout: 15 * time.Second,
		Idempotency:     shared.DefaultIdempotencyConfig(),
	}
}

// Orchestrator sequences order lookup, CRM entity generation, and outcome
// recording for admin-initiated sync requests. Orders within a batch are
// independent: one order's failure never aborts the rest, and the result
// slice mirrors the input order. Duplicate names are processed
// independently; deduplication is the caller's concern.
//
// There is no retry inside one invocation. Callers re-issue batches, and
// the idempotency store keeps re-issue from double-creating leads.
type Orchestrator struct {
	orders     order.Repository
	registry   account.Registry
	generator  *Generator
	reconciler *Reconciler
	client     crm.Client
	idem       shared.IdempotencyStore
	opts       Options
	logger     *zap.Logger
}

// NewOrchestrator creates an Orchestrator. idem may be nil to disable
// duplicate-send suppression.
func NewOrchestrator(
	orders order.Repository,
	registry account.Registry,
	generator *Generator,
	client crm.Client,
	idem shared.IdempotencyStore,
	opts Options,
	logger *zap.Logger,
) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.PerOrderTimeout <= 0 {
		opts.PerOrderTimeout = DefaultOptions().PerOrderTimeout
	}
	return &Orchestrator{
		orders:     orders,
		registry:   registry,
		generator:  generator,
		reconciler: NewReconciler(),
		client:     client,
		idem:       idem,
		opts:       opts,
		logger:     logger,
	}
}

// SyncOrders sends every named order to the CRM and returns one outcome
// per input name, in input order.
//
// An unknown account ref invalidates the whole request and is returned as
// an error before any order is touched. All per-order failures are
// converted into typed outcomes instead.
func (s *Orchestrator) SyncOrders(ctx context.Context, accountID uuid.UUID, ref account.Ref, orderNames []string) ([]Outcome, error) {
	if !s.registry.Known(ref) {
		return nil, fmt.Errorf("%w: %s", account.ErrUnknownAccount, ref)
	}

	outcomes := make([]Outcome, len(orderNames))

	g := &errgroup.Group{}
	g.SetLimit(s.opts.Concurrency)
	for i, name := range orderNames {
		g.Go(func() error {
			outcomes[i] = s.syncOne(ctx, accountID, ref, name)
			return nil
		})
	}
	// Tasks never return errors; failures live in the outcome slots.
	_ = g.Wait()

	s.logger.Info("CRM sync batch finished",
		zap.String("account_ref", ref.String()),
		zap.Int("total", len(orderNames)),
		zap.Int("sent", countStatus(outcomes, OutcomeSent)),
		zap.Int("failed", countStatus(outcomes, OutcomeFailed)),
		zap.Int("skipped", countStatus(outcomes, OutcomeSkipped)),
	)

	return outcomes, nil
}

// SyncOrder sends a single order, addressed by id, to the CRM
func (s *Orchestrator) SyncOrder(ctx context.Context, accountID, orderID uuid.UUID, ref account.Ref) (Outcome, error) {
	if !s.registry.Known(ref) {
		return Outcome{}, fmt.Errorf("%w: %s", account.ErrUnknownAccount, ref)
	}

	opCtx, cancel := context.WithTimeout(ctx, s.opts.PerOrderTimeout)
	defer cancel()

	o, err := s.orders.FindByID(opCtx, orderID)
	if err != nil {
		return s.lookupFailure(ctx, orderID.String(), err), nil
	}
	if o.AccountID != accountID {
		return failedOutcome(orderID.String(), FailureOrderNotFound, "order does not belong to account"), nil
	}
	return s.send(ctx, opCtx, ref, o), nil
}

// syncOne processes a single order name. Every path returns a terminal
// outcome; nothing escapes past the batch boundary.
func (s *Orchestrator) syncOne(ctx context.Context, accountID uuid.UUID, ref account.Ref, name string) Outcome {
	if ctx.Err() != nil {
		return skippedOutcome(name)
	}

	opCtx, cancel := context.WithTimeout(ctx, s.opts.PerOrderTimeout)
	defer cancel()

	o, err := s.orders.FindByName(opCtx, accountID, name)
	if err != nil {
		return s.lookupFailure(ctx, name, err)
	}

	return s.send(ctx, opCtx, ref, o)
}

// send runs the idempotency check, generation, and mismatch task
// attachment for one already-loaded order. ctx is the batch context (for
// distinguishing cancellation), opCtx the per-order timeout context.
func (s *Orchestrator) send(ctx, opCtx context.Context, ref account.Ref, o *order.Order) Outcome {
	key := sendKey(o.AccountID, o.Name)
	if s.idem != nil && s.opts.Idempotency.Enabled {
		processed, err := s.idem.IsProcessed(opCtx, key)
		if err != nil {
			s.logger.Warn("idempotency check failed, proceeding with send",
				zap.String("order_name", o.Name), zap.Error(err))
		} else if processed {
			return Outcome{OrderName: o.Name, Status: OutcomeAlreadySent}
		}
	}

	result, err := s.generator.Generate(opCtx, ref, CandidateFromOrder(o))
	if err != nil {
		if ctx.Err() != nil {
			return skippedOutcome(o.Name)
		}
		return failedOutcome(o.Name, FailureCrmProvider, err.Error())
	}

	if s.idem != nil && s.opts.Idempotency.Enabled {
		if _, err := s.idem.MarkProcessed(opCtx, key, s.opts.Idempotency.TTL); err != nil {
			s.logger.Warn("failed to record sent order for idempotency",
				zap.String("order_name", o.Name), zap.Error(err))
		}
	}

	outcome := Outcome{
		OrderName:       o.Name,
		Status:          OutcomeSent,
		CrmID:           result.CrmID,
		IsSubtotalMatch: &result.IsSubtotalMatch,
	}

	item := s.reconciler.Classify([]Pair{{Order: o, Result: result}})[0]
	if item.Classification == crm.ClassificationMismatched {
		// The lead exists either way; a failed task attachment is noted
		// on the outcome but does not fail the item.
		task := crm.Task{
			Title:       "Subtotal mismatch review",
			Description: fmt.Sprintf("Order %s: line item sum does not equal %s", o.Name, item.Detail),
		}
		if err := s.client.AttachTask(opCtx, crm.EntityTypeLead, result.CrmID, task); err != nil {
			s.logger.Warn("failed to attach mismatch review task",
				zap.String("order_name", o.Name),
				zap.String("crm_id", result.CrmID),
				zap.Error(err))
			outcome.Message = "subtotal mismatch; review task could not be attached"
		} else {
			outcome.Message = "subtotal mismatch; review task attached"
		}
	}

	return outcome
}

// lookupFailure converts an order store error into a typed outcome,
// distinguishing not-found, batch cancellation, and store failures.
func (s *Orchestrator) lookupFailure(ctx context.Context, name string, err error) Outcome {
	switch {
	case errors.Is(err, order.ErrOrderNotFound):
		return failedOutcome(name, FailureOrderNotFound, "order not found")
	case ctx.Err() != nil:
		return skippedOutcome(name)
	default:
		return failedOutcome(name, FailureOrderStore, err.Error())
	}
}

// CandidateFromOrder builds the transient lead candidate for one sync
// attempt from an order record
func CandidateFromOrder(o *order.Order) *crm.LeadCandidate {
	products := make([]crm.LeadProduct, len(o.Items))
	for i, item := range o.Items {
		products[i] = crm.LeadProduct{
			ProductID:   item.ProductID,
			AmountInUsd: item.Amount,
		}
	}
	return &crm.LeadCandidate{
		ID:               o.Name,
		Description:      fmt.Sprintf("Order %s (caterer %s)", o.Name, o.CatererID),
		Products:         products,
		RecordedSubtotal: o.Subtotal,
		Tags:             []string{o.AccountRef.String()},
	}
}

func sendKey(accountID uuid.UUID, orderName string) string {
	return accountID.String() + ":" + orderName
}

func failedOutcome(name string, kind FailureKind, message string) Outcome {
	return Outcome{
		OrderName:   name,
		Status:      OutcomeFailed,
		FailureKind: kind,
		Message:     message,
	}
}

func skippedOutcome(name string) Outcome {
	return Outcome{
		OrderName: name,
		Status:    OutcomeSkipped,
		Message:   "batch cancelled before this order completed",
	}
}

func countStatus(outcomes []Outcome, status OutcomeStatus) int {
	n := 0
	for _, o := range outcomes {
		if o.Status == status {
			n++
		}
	}
	return n
}
