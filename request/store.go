/*
store.go - Persistence and query interface for requests

PURPOSE:
  Pure persistence layer, no business rules. The service layer composes these
  queries with hierarchy lookups to implement the manager-scoped operations.

CONCURRENCY CONTRACT:
  Update takes the status the caller believes the request is in and must
  apply the write atomically only if that status still holds (compare-and-
  swap). When the expectation fails, implementations return
  ErrAlreadyProcessed. This is what makes two concurrent approvals resolve
  to exactly one winner.

SEE ALSO:
  - store/sqlite: Production implementation (CAS via conditional UPDATE)
  - store/memory: In-memory implementation for tests
*/
package request

import (
	"context"

	"github.com/warp/attendance-engine/dates"
)

// Filter narrows request queries. Zero values mean "no constraint".
type Filter struct {
	Type      Type
	Status    Status
	DateRange *dates.Range
	Limit     int
}

// StatusCounts is the raw aggregation the statistics layer builds on.
type StatusCounts struct {
	Total     int
	Pending   int
	Approved  int
	Rejected  int
	Cancelled int
}

// Store persists polymorphic request records.
type Store interface {
	// Create persists a new request (normally PENDING).
	Create(ctx context.Context, req *Request) error

	// Get returns a request by ID, or ErrNotFound.
	Get(ctx context.Context, id ID) (*Request, error)

	// Update rewrites the request's mutable fields if and only if its stored
	// status equals expect. Returns ErrAlreadyProcessed otherwise.
	Update(ctx context.Context, req *Request, expect Status) error

	// FindByUser returns the user's requests, newest first.
	FindByUser(ctx context.Context, userID string, f Filter) ([]*Request, error)

	// FindByType returns requests of a type across all users, newest first.
	FindByType(ctx context.Context, f Filter) ([]*Request, error)

	// FindByUsers returns requests whose submitter is in userIDs, newest
	// first. An empty set yields no results.
	FindByUsers(ctx context.Context, userIDs []string, f Filter) ([]*Request, error)

	// HasRequestForDate reports whether the user already has a request of
	// the given type targeting the day, using type-aware date matching:
	// leave matches any day in its span, the single-day types match exactly.
	// A zero status matches any status.
	HasRequestForDate(ctx context.Context, userID string, t Type, day dates.Date, status Status) (bool, error)

	// FindOverlappingLeave returns PENDING or APPROVED leave requests whose
	// span intersects [start, end], excluding excludeID if non-empty.
	FindOverlappingLeave(ctx context.Context, userID string, start, end dates.Date, excludeID ID) ([]*Request, error)

	// CountByStatus aggregates requests submitted within the range. A nil
	// userIDs scopes to all users; an empty slice yields zero counts. A zero
	// type matches all types.
	CountByStatus(ctx context.Context, rng dates.Range, userIDs []string, t Type) (StatusCounts, error)
}
