// Package crm contains the CRM bounded context.
// This context models what the system pushes to the external CRM provider
// and the rules for reconciling CRM line items against order totals.
//
// Key concepts:
//   - Entity: discriminated union of CRM-entity kinds the system can
//     generate (today: lead)
//   - LeadCandidate: transient order-derived payload for one sync attempt
//   - GenerationResult: CRM-assigned id plus the computed subtotal-match flag
//   - Client: port interface for the CRM provider
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - The provider adapter (Nutshell) is in the infrastructure layer
package crm
