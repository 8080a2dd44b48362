package crmsync

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/orderdesk/backend/internal/domain/account"
	"github.com/orderdesk/backend/internal/domain/crm"
	"github.com/orderdesk/backend/internal/domain/shared/valueobject"
)

// Generator produces CRM-ready entities from order-derived candidates,
// applying per-account reconciliation rules before delegating creation to
// the CRM client.
type Generator struct {
	registry account.Registry
	client   crm.Client
	logger   *zap.Logger
}

// NewGenerator creates a Generator
func NewGenerator(registry account.Registry, client crm.Client, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		registry: registry,
		client:   client,
		logger:   logger,
	}
}

// Generate resolves the account's exclusions, computes the subtotal-match
// flag on exact subunits, and creates the entity on the CRM provider.
//
// Error conditions: account.ErrUnknownAccount when the ref is not
// registered, crm.ErrUnsupportedEntity for entity kinds other than lead,
// and crm.ErrProvider (wrapped) when the CRM call fails. The caller decides
// whether to retry or surface; Generate itself never retries.
func (g *Generator) Generate(ctx context.Context, ref account.Ref, entity crm.Entity) (*crm.GenerationResult, error) {
	lead, ok := entity.(*crm.LeadCandidate)
	if !ok {
		return nil, fmt.Errorf("%w: %s", crm.ErrUnsupportedEntity, entity.Kind())
	}
	if err := lead.Validate(); err != nil {
		return nil, err
	}

	exclusions, err := g.registry.Exclusions(ref)
	if err != nil {
		return nil, err
	}

	isSubtotalMatch, err := subtotalMatches(lead, exclusions)
	if err != nil {
		return nil, err
	}

	created, err := g.client.CreateLead(ctx, lead)
	if err != nil {
		if !errors.Is(err, crm.ErrProvider) {
			err = fmt.Errorf("%w: %v", crm.ErrProvider, err)
		}
		return nil, err
	}

	g.logger.Debug("generated CRM lead",
		zap.String("account_ref", ref.String()),
		zap.String("candidate_id", lead.ID),
		zap.String("crm_id", created.ID),
		zap.Bool("is_subtotal_match", isSubtotalMatch),
	)

	return &crm.GenerationResult{
		CrmID:           created.ID,
		Description:     lead.Description,
		IsSubtotalMatch: isSubtotalMatch,
	}, nil
}

// subtotalMatches sums the non-excluded product lines and compares the sum
// to the recorded subtotal on exact subunits. Money is never compared
// through floating point.
func subtotalMatches(lead *crm.LeadCandidate, exclusions account.ExclusionSet) (bool, error) {
	sum := valueobject.Zero(lead.RecordedSubtotal.Currency())
	for _, product := range lead.Products {
		if exclusions.Contains(product.ProductID) {
			continue
		}
		next, err := sum.Add(product.AmountInUsd)
		if err != nil {
			return false, err
		}
		sum = next
	}
	return sum.Equals(lead.RecordedSubtotal), nil
}
