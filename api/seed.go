/*
seed.go - Demo data loader for testing and demonstrations

PURPOSE:
  Populates the stores with a small realistic org and a handful of requests
  so the API can be explored immediately after startup. Loaded on demand via
  POST /api/demo/load, never automatically.

DEMO ORG:
  dana (director)
  └── morgan (manager)
      ├── alice
      └── bob

  alice submits an annual leave request (pending), bob submits a remote-work
  request (pending) and a sick leave (auto-approved).

SEE ALSO:
  - handlers.go: LoadDemo endpoint
*/
package api

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/dates"
	"github.com/warp/attendance-engine/hierarchy"
	"github.com/warp/attendance-engine/request"
)

// Seeder loads demo data through the regular service paths, so everything it
// creates went through validation.
type Seeder struct {
	hierarchy *hierarchy.Service
	requests  *request.Service
}

// NewSeeder creates a demo data loader.
func NewSeeder(h *hierarchy.Service, r *request.Service) *Seeder {
	return &Seeder{hierarchy: h, requests: r}
}

// SeedSummary reports what the loader created.
type SeedSummary struct {
	Edges    []string `json:"edges"`
	Requests []string `json:"requests"`
}

// Load creates the demo org and sample requests. Calling it twice fails on
// the duplicate-edge check, which is fine for a dev convenience.
func (s *Seeder) Load(ctx context.Context) (*SeedSummary, error) {
	summary := &SeedSummary{}
	today := dates.Today()
	start := today.AddDays(-90)

	pairs := []struct{ employee, manager string }{
		{"morgan", "dana"},
		{"alice", "morgan"},
		{"bob", "morgan"},
	}
	for _, p := range pairs {
		edge, err := s.hierarchy.CreateEdge(ctx, p.employee, p.manager, start, nil, "demo")
		if err != nil {
			return nil, fmt.Errorf("seeding edge %s->%s: %w", p.employee, p.manager, err)
		}
		summary.Edges = append(summary.Edges, string(edge.ID))
	}

	fullBalance := request.BalanceInfo{
		AllocatedDays: decimal.NewFromInt(21),
		UsedDays:      decimal.Zero,
		RemainingDays: decimal.NewFromInt(21),
	}

	samples := []*request.Request{
		request.NewLeave("alice", request.LeaveData{
			LeaveType:     request.LeaveAnnual,
			StartDate:     today.AddDays(14),
			EndDate:       today.AddDays(18),
			DaysRequested: 5,
			Reason:        "family trip",
			Balance:       fullBalance,
		}, ""),
		request.NewRemoteWork("bob", request.RemoteWorkData{
			RequestedDate:  today.AddDays(7),
			Reason:         "plumber visit",
			RemoteLocation: "home",
		}, ""),
		request.NewLeave("bob", request.LeaveData{
			LeaveType:     request.LeaveSick,
			StartDate:     today,
			EndDate:       today,
			DaysRequested: 1,
			Reason:        "flu",
			Balance: request.BalanceInfo{
				AllocatedDays: decimal.NewFromInt(10),
				UsedDays:      decimal.Zero,
				RemainingDays: decimal.NewFromInt(10),
			},
		}, ""),
	}
	for _, sample := range samples {
		created, err := s.requests.Create(ctx, sample)
		if err != nil {
			return nil, fmt.Errorf("seeding %s request for %s: %w", sample.Type, sample.UserID, err)
		}
		summary.Requests = append(summary.Requests, string(created.ID))
	}
	return summary, nil
}
