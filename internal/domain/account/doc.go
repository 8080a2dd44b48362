// Package account contains the Account bounded context.
// An account is a tenant using the system, identified by a fixed reference
// code from a closed enumeration.
//
// Key concepts:
//   - Ref: closed set of account reference codes
//   - ExclusionSet: product identifiers excluded from subtotal reconciliation
//   - Registry: read-only lookup of per-account business rules
//
// The registry is immutable configuration loaded once at process start and
// passed explicitly into the components that need it; there is no ambient
// global table. Adding a tenant means extending both the Ref enumeration and
// the registry table.
package account
