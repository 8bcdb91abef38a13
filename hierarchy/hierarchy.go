/*
Package hierarchy manages the time-bound reporting graph.

PURPOSE:
  Persists "employee reports to manager" edges with validity intervals and
  answers the authority questions the approval engine depends on:
  - Who is this employee's manager right now?
  - Who reports to this manager, directly and transitively?
  - Does this exact manager/employee pair exist today? (the approval check)

KEY CONCEPTS IN THIS FILE:
  - Edge:    A reporting relationship valid over [StartDate, EndDate]
  - Store:   Persistence interface (no business rules)
  - Errors:  Graph-integrity failures (self-report, cycles, duplicates)

INTEGRITY MODEL:
  The graph does NOT guarantee acyclicity at the storage layer. Edge creation
  rejects a direct reverse edge (A->B when B->A is active), but a cycle three
  hops deep is not caught. Traversals therefore always carry a visited set and
  a depth cap. Making the cycle check transitive would change authorization
  semantics, so the direct-only check is kept deliberately.

SEE ALSO:
  - service.go: Business rules and graph traversals
  - store/sqlite: Production Store implementation
*/
package hierarchy

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/warp/attendance-engine/dates"
)

// =============================================================================
// EDGE - A time-bound reporting relationship
// =============================================================================

// EdgeID identifies a reporting edge.
type EdgeID string

// Edge records that EmployeeID reports to ManagerID over a validity interval.
// EndDate nil means the relationship is open-ended.
type Edge struct {
	ID         EdgeID
	EmployeeID string
	ManagerID  string
	StartDate  dates.Date
	EndDate    *dates.Date
	AssignedBy string
	CreatedAt  time.Time
}

// ActiveAt reports whether the edge is active at the given day.
func (e *Edge) ActiveAt(day dates.Date) bool {
	if day.Before(e.StartDate) {
		return false
	}
	return e.EndDate == nil || day.BeforeOrEqual(*e.EndDate)
}

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrSelfReport is returned when an employee would report to themselves.
	ErrSelfReport = errors.New("employee cannot report to themselves")

	// ErrCircularHierarchy is returned when the new edge's manager already
	// reports (directly) to the employee.
	ErrCircularHierarchy = errors.New("circular reporting relationship")

	// ErrDuplicateActiveEdge is returned when an active edge for the exact
	// employee/manager pair already exists.
	ErrDuplicateActiveEdge = errors.New("active reporting edge already exists")

	// ErrEdgeNotFound is returned for unknown edge IDs.
	ErrEdgeNotFound = errors.New("reporting edge not found")

	// ErrInvalidInterval is returned when an end date does not follow the
	// start date.
	ErrInvalidInterval = errors.New("end date must be after start date")
)

// CircularHierarchyError carries the offending pair.
type CircularHierarchyError struct {
	EmployeeID string
	ManagerID  string
}

func (e *CircularHierarchyError) Error() string {
	return fmt.Sprintf("circular hierarchy: %s already manages %s", e.EmployeeID, e.ManagerID)
}

func (e *CircularHierarchyError) Unwrap() error { return ErrCircularHierarchy }

// =============================================================================
// STORE - Persistence interface (no business rules)
// =============================================================================

// Store persists reporting edges. Implementations must order ActiveEdgeFor
// results by most recent StartDate so the service can resolve integrity
// violations deterministically.
type Store interface {
	// Insert persists a new edge.
	Insert(ctx context.Context, edge Edge) error

	// Update rewrites an existing edge (manager or dates).
	Update(ctx context.Context, edge Edge) error

	// Get returns an edge by ID, or ErrEdgeNotFound.
	Get(ctx context.Context, id EdgeID) (*Edge, error)

	// ActiveEdgesFor returns all edges for the employee active at the given
	// day, most recently started first.
	ActiveEdgesFor(ctx context.Context, employeeID string, asOf dates.Date) ([]Edge, error)

	// ActiveEdgesUnder returns all edges active at the given day whose
	// manager matches.
	ActiveEdgesUnder(ctx context.Context, managerID string, asOf dates.Date) ([]Edge, error)

	// ActivePair returns the active edge for the exact employee/manager pair
	// at the given day, or nil.
	ActivePair(ctx context.Context, employeeID, managerID string, asOf dates.Date) (*Edge, error)

	// EdgesFor returns the employee's full edge history, active or not,
	// most recently started first.
	EdgesFor(ctx context.Context, employeeID string) ([]Edge, error)
}
