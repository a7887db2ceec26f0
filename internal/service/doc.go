// Package service implements the quote engine's use cases: the quote
// lifecycle, payment orchestration, review gating, accounts and business
// statistics.
//
// Every operation receives the authenticated domain.Actor and performs its
// own authorization checks. Multi-entity mutations run inside a single
// store.Transactor unit of work, and lifecycle events are published only
// after that unit commits.
//
// Errors returned by this package are *ServiceError values that wrap
// exactly one domain error kind, so callers classify a failure with
// errors.Is(err, domain.ErrX) or domain.KindOf(err).
package service
