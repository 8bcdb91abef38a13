/*
service.go - Reporting-graph business rules and traversals

PURPOSE:
  Enforces the graph invariants on edge creation and mutation, and implements
  the bounded traversals used by the approval engine:

  CreateEdge/UpdateEdge/EndEdge:
    - No self-reporting
    - No direct reverse edge (A->B rejected while B->A is active)
    - At most one active edge per employee/manager pair

  CurrentManagerOf/CurrentTeamOf/ExistsRelationship:
    - Point-in-time lookups over active edges

  ReportingChain/AllSubordinates:
    - Bounded traversals with visited sets. The underlying data does not
      guarantee acyclicity (the creation check is direct-edge only), so
      every walk terminates on revisit or at MaxTraversalDepth.

AUTHORITY MODEL:
  ExistsRelationship is the sole authority check used for approvals and is
  deliberately NOT transitive: a skip-level manager has no approval authority.

SEE ALSO:
  - hierarchy.go: Edge type, Store interface, errors
  - request/service.go: Consumer of ExistsRelationship and AllSubordinates
*/
package hierarchy

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/warp/attendance-engine/dates"
)

// MaxTraversalDepth bounds upward and downward graph walks.
const MaxTraversalDepth = 10

// Service enforces graph invariants over a Store.
type Service struct {
	store Store
}

// NewService creates a hierarchy service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// =============================================================================
// EDGE LIFECYCLE
// =============================================================================

// CreateEdge validates and persists a new reporting edge.
func (s *Service) CreateEdge(ctx context.Context, employeeID, managerID string, start dates.Date, end *dates.Date, assignedBy string) (*Edge, error) {
	if employeeID == managerID {
		return nil, ErrSelfReport
	}
	if end != nil && !end.After(start) {
		return nil, ErrInvalidInterval
	}

	if err := s.checkDirectCycle(ctx, employeeID, managerID, start); err != nil {
		return nil, err
	}

	existing, err := s.store.ActivePair(ctx, employeeID, managerID, start)
	if err != nil {
		return nil, fmt.Errorf("checking existing edge: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateActiveEdge
	}

	edge := Edge{
		ID:         EdgeID(uuid.NewString()),
		EmployeeID: employeeID,
		ManagerID:  managerID,
		StartDate:  start,
		EndDate:    end,
		AssignedBy: assignedBy,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.store.Insert(ctx, edge); err != nil {
		return nil, fmt.Errorf("persisting edge: %w", err)
	}
	return &edge, nil
}

// UpdateEdge changes an edge's manager and/or dates. Changing the manager
// re-runs the direct cycle check against the new manager.
func (s *Service) UpdateEdge(ctx context.Context, id EdgeID, managerID *string, start, end *dates.Date) (*Edge, error) {
	edge, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if managerID != nil && *managerID != edge.ManagerID {
		if edge.EmployeeID == *managerID {
			return nil, ErrSelfReport
		}
		asOf := edge.StartDate
		if start != nil {
			asOf = *start
		}
		if err := s.checkDirectCycle(ctx, edge.EmployeeID, *managerID, asOf); err != nil {
			return nil, err
		}
		edge.ManagerID = *managerID
	}
	if start != nil {
		edge.StartDate = *start
	}
	if end != nil {
		edge.EndDate = end
	}
	// Re-validate the whole interval: moving the start alone can push it past
	// an existing end date.
	if edge.EndDate != nil && !edge.EndDate.After(edge.StartDate) {
		return nil, ErrInvalidInterval
	}

	if err := s.store.Update(ctx, *edge); err != nil {
		return nil, fmt.Errorf("updating edge: %w", err)
	}
	return edge, nil
}

// EndEdge closes an edge by setting its end date.
func (s *Service) EndEdge(ctx context.Context, id EdgeID, end dates.Date) (*Edge, error) {
	edge, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !end.After(edge.StartDate) {
		return nil, ErrInvalidInterval
	}
	edge.EndDate = &end
	if err := s.store.Update(ctx, *edge); err != nil {
		return nil, fmt.Errorf("ending edge: %w", err)
	}
	return edge, nil
}

// checkDirectCycle rejects the edge if the prospective manager already
// reports directly to the employee as of the given day. Deeper cycles are
// not detected here; traversals guard against them instead.
func (s *Service) checkDirectCycle(ctx context.Context, employeeID, managerID string, asOf dates.Date) error {
	reverse, err := s.store.ActivePair(ctx, managerID, employeeID, asOf)
	if err != nil {
		return fmt.Errorf("checking reverse edge: %w", err)
	}
	if reverse != nil {
		return &CircularHierarchyError{EmployeeID: employeeID, ManagerID: managerID}
	}
	return nil
}

// =============================================================================
// POINT-IN-TIME LOOKUPS
// =============================================================================

// CurrentManagerOf returns the employee's active edge as of the given day,
// or nil if they have no manager. If the "at most one active edge" invariant
// has been violated, the most recently started edge wins.
func (s *Service) CurrentManagerOf(ctx context.Context, employeeID string, asOf dates.Date) (*Edge, error) {
	edges, err := s.store.ActiveEdgesFor(ctx, employeeID, asOf)
	if err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return nil, nil
	}
	return &edges[0], nil
}

// EdgeHistoryOf returns the employee's full edge history, most recently
// started first.
func (s *Service) EdgeHistoryOf(ctx context.Context, employeeID string) ([]Edge, error) {
	return s.store.EdgesFor(ctx, employeeID)
}

// CurrentTeamOf returns all active edges reporting to the manager.
func (s *Service) CurrentTeamOf(ctx context.Context, managerID string, asOf dates.Date) ([]Edge, error) {
	return s.store.ActiveEdgesUnder(ctx, managerID, asOf)
}

// ExistsRelationship reports whether the exact direct pair is active. This is
// the sole authority check for approvals; it is not transitive.
func (s *Service) ExistsRelationship(ctx context.Context, employeeID, managerID string, asOf dates.Date) (bool, error) {
	edge, err := s.store.ActivePair(ctx, employeeID, managerID, asOf)
	if err != nil {
		return false, err
	}
	return edge != nil, nil
}

// =============================================================================
// BOUNDED TRAVERSALS
// =============================================================================

// ReportingChain walks upward from the employee and returns manager IDs in
// order. The walk stops at the first employee with no manager, at maxDepth,
// or when a manager already appears in the accumulated chain.
func (s *Service) ReportingChain(ctx context.Context, employeeID string, maxDepth int) ([]string, error) {
	if maxDepth <= 0 || maxDepth > MaxTraversalDepth {
		maxDepth = MaxTraversalDepth
	}

	var chain []string
	seen := map[string]bool{employeeID: true}
	current := employeeID
	asOf := dates.Today()

	for depth := 0; depth < maxDepth; depth++ {
		edge, err := s.CurrentManagerOf(ctx, current, asOf)
		if err != nil {
			return nil, err
		}
		if edge == nil {
			break
		}
		if seen[edge.ManagerID] {
			break // cycle in stored data
		}
		seen[edge.ManagerID] = true
		chain = append(chain, edge.ManagerID)
		current = edge.ManagerID
	}
	return chain, nil
}

// AllSubordinates returns the flat set of employee IDs reachable from the
// manager via active edges, breadth-first, up to maxDepth levels.
func (s *Service) AllSubordinates(ctx context.Context, managerID string, maxDepth int) (map[string]bool, error) {
	if maxDepth <= 0 || maxDepth > MaxTraversalDepth {
		maxDepth = MaxTraversalDepth
	}

	subordinates := make(map[string]bool)
	visited := map[string]bool{managerID: true}
	frontier := []string{managerID}
	asOf := dates.Today()

	for depth := 0; depth < maxDepth && len(frontier) > 0; depth++ {
		var next []string
		for _, id := range frontier {
			team, err := s.CurrentTeamOf(ctx, id, asOf)
			if err != nil {
				return nil, err
			}
			for _, edge := range team {
				if visited[edge.EmployeeID] {
					continue
				}
				visited[edge.EmployeeID] = true
				subordinates[edge.EmployeeID] = true
				next = append(next, edge.EmployeeID)
			}
		}
		frontier = next
	}
	return subordinates, nil
}
