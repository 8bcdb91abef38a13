/*
stats.go - Statistics aggregation over a date range

PURPOSE:
  Counts requests by status over a submission-date range, optionally scoped
  to a manager's transitive team, and derives the approval rate.

APPROVAL RATE:
  round(approved / (approved + rejected) * 100). Defined as 0 when nothing
  has been decided yet; "all pending" is not treated specially.

SEE ALSO:
  - store.go: CountByStatus does the raw aggregation
  - hierarchy/service.go: Team resolution
*/
package request

import (
	"context"
	"fmt"
	"math"

	"github.com/warp/attendance-engine/dates"
	"github.com/warp/attendance-engine/hierarchy"
)

// Stats is the aggregated view over a date range.
type Stats struct {
	Range        dates.Range
	Total        int
	Pending      int
	Approved     int
	Rejected     int
	Cancelled    int
	ApprovalRate int // percentage, 0-100
}

// Statistics aggregates counts over the range. A non-empty managerID scopes
// the counts to the manager's transitive team; an empty team yields zeros.
// A zero type matches all types.
func (s *Service) Statistics(ctx context.Context, rng dates.Range, managerID string, t Type) (*Stats, error) {
	var userIDs []string
	if managerID != "" {
		team, err := s.hierarchy.AllSubordinates(ctx, managerID, hierarchy.MaxTraversalDepth)
		if err != nil {
			return nil, fmt.Errorf("resolving team: %w", err)
		}
		if len(team) == 0 {
			return &Stats{Range: rng}, nil
		}
		userIDs = make([]string, 0, len(team))
		for id := range team {
			userIDs = append(userIDs, id)
		}
	}

	counts, err := s.store.CountByStatus(ctx, rng, userIDs, t)
	if err != nil {
		return nil, fmt.Errorf("counting requests: %w", err)
	}

	return &Stats{
		Range:        rng,
		Total:        counts.Total,
		Pending:      counts.Pending,
		Approved:     counts.Approved,
		Rejected:     counts.Rejected,
		Cancelled:    counts.Cancelled,
		ApprovalRate: approvalRate(counts.Approved, counts.Rejected),
	}, nil
}

func approvalRate(approved, rejected int) int {
	decided := approved + rejected
	if decided == 0 {
		return 0
	}
	return int(math.Round(float64(approved) / float64(decided) * 100))
}
