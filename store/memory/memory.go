/*
Package memory provides in-memory implementations of the storage interfaces
for tests and development.

Each store is self-contained and safe for concurrent use. The request store
reproduces the compare-and-swap Update contract of the SQLite store, and the
attendance sink enforces (user, date) uniqueness, so race-sensitive engine
behavior can be exercised without a database.
*/
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/dates"
	"github.com/warp/attendance-engine/hierarchy"
	"github.com/warp/attendance-engine/request"
)

// =============================================================================
// EDGE STORE
// =============================================================================

// EdgeStore is an in-memory hierarchy.Store.
type EdgeStore struct {
	mu    sync.RWMutex
	edges map[hierarchy.EdgeID]hierarchy.Edge
}

var _ hierarchy.Store = (*EdgeStore)(nil)

// NewEdgeStore creates an empty edge store.
func NewEdgeStore() *EdgeStore {
	return &EdgeStore{edges: make(map[hierarchy.EdgeID]hierarchy.Edge)}
}

func (m *EdgeStore) Insert(_ context.Context, edge hierarchy.Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.edges[edge.ID] = edge
	return nil
}

func (m *EdgeStore) Update(_ context.Context, edge hierarchy.Edge) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.edges[edge.ID]; !ok {
		return hierarchy.ErrEdgeNotFound
	}
	m.edges[edge.ID] = edge
	return nil
}

func (m *EdgeStore) Get(_ context.Context, id hierarchy.EdgeID) (*hierarchy.Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	edge, ok := m.edges[id]
	if !ok {
		return nil, hierarchy.ErrEdgeNotFound
	}
	return &edge, nil
}

func (m *EdgeStore) ActiveEdgesFor(_ context.Context, employeeID string, asOf dates.Date) ([]hierarchy.Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []hierarchy.Edge
	for _, edge := range m.edges {
		if edge.EmployeeID == employeeID && edge.ActiveAt(asOf) {
			result = append(result, edge)
		}
	}
	// Most recently started first, matching the SQLite ordering contract.
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartDate.After(result[j].StartDate)
	})
	return result, nil
}

func (m *EdgeStore) EdgesFor(_ context.Context, employeeID string) ([]hierarchy.Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []hierarchy.Edge
	for _, edge := range m.edges {
		if edge.EmployeeID == employeeID {
			result = append(result, edge)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].StartDate.After(result[j].StartDate)
	})
	return result, nil
}

func (m *EdgeStore) ActiveEdgesUnder(_ context.Context, managerID string, asOf dates.Date) ([]hierarchy.Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []hierarchy.Edge
	for _, edge := range m.edges {
		if edge.ManagerID == managerID && edge.ActiveAt(asOf) {
			result = append(result, edge)
		}
	}
	return result, nil
}

func (m *EdgeStore) ActivePair(_ context.Context, employeeID, managerID string, asOf dates.Date) (*hierarchy.Edge, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var best *hierarchy.Edge
	for _, edge := range m.edges {
		if edge.EmployeeID != employeeID || edge.ManagerID != managerID || !edge.ActiveAt(asOf) {
			continue
		}
		e := edge
		if best == nil || e.StartDate.After(best.StartDate) {
			best = &e
		}
	}
	return best, nil
}

// =============================================================================
// REQUEST STORE
// =============================================================================

// RequestStore is an in-memory request.Store with CAS Update semantics.
type RequestStore struct {
	mu       sync.RWMutex
	requests map[request.ID]*request.Request
	order    []request.ID // insertion order, newest last
}

var _ request.Store = (*RequestStore)(nil)

// NewRequestStore creates an empty request store.
func NewRequestStore() *RequestStore {
	return &RequestStore{requests: make(map[request.ID]*request.Request)}
}

// clone round-trips the payload so callers cannot mutate stored state.
func clone(req *request.Request) *request.Request {
	c := *req
	if payload, err := req.MarshalPayload(); err == nil {
		c.Leave, c.RemoteWork, c.Correction = nil, nil, nil
		c.UnmarshalPayload(payload)
	}
	return &c
}

func (m *RequestStore) Create(_ context.Context, req *request.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = clone(req)
	m.order = append(m.order, req.ID)
	return nil
}

func (m *RequestStore) Get(_ context.Context, id request.ID) (*request.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, request.ErrNotFound
	}
	return clone(req), nil
}

func (m *RequestStore) Update(_ context.Context, req *request.Request, expect request.Status) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	stored, ok := m.requests[req.ID]
	if !ok {
		return request.ErrNotFound
	}
	if stored.Status != expect {
		return request.ErrAlreadyProcessed
	}
	m.requests[req.ID] = clone(req)
	return nil
}

func (m *RequestStore) FindByUser(_ context.Context, userID string, f request.Filter) ([]*request.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(r *request.Request) bool { return r.UserID == userID }, f), nil
}

func (m *RequestStore) FindByType(_ context.Context, f request.Filter) ([]*request.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(*request.Request) bool { return true }, f), nil
}

func (m *RequestStore) FindByUsers(_ context.Context, userIDs []string, f request.Filter) ([]*request.Request, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}
	set := make(map[string]bool, len(userIDs))
	for _, id := range userIDs {
		set[id] = true
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.collect(func(r *request.Request) bool { return set[r.UserID] }, f), nil
}

func (m *RequestStore) collect(match func(*request.Request) bool, f request.Filter) []*request.Request {
	var result []*request.Request
	// Newest first.
	for i := len(m.order) - 1; i >= 0; i-- {
		r := m.requests[m.order[i]]
		if !match(r) {
			continue
		}
		if f.Type != "" && r.Type != f.Type {
			continue
		}
		if f.Status != "" && r.Status != f.Status {
			continue
		}
		if f.DateRange != nil && !overlapsRange(r, *f.DateRange) {
			continue
		}
		result = append(result, clone(r))
		if f.Limit > 0 && len(result) >= f.Limit {
			break
		}
	}
	return result
}

func overlapsRange(r *request.Request, rng dates.Range) bool {
	if r.Type == request.TypeLeave {
		return rng.Overlaps(dates.Range{Start: r.Leave.StartDate, End: r.Leave.EndDate})
	}
	return rng.Contains(r.EffectiveDate())
}

func (m *RequestStore) HasRequestForDate(_ context.Context, userID string, t request.Type, day dates.Date, status request.Status) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.requests {
		if r.UserID != userID || r.Type != t {
			continue
		}
		if status != "" && r.Status != status {
			continue
		}
		if r.CoversDate(day) {
			return true, nil
		}
	}
	return false, nil
}

func (m *RequestStore) FindOverlappingLeave(_ context.Context, userID string, start, end dates.Date, excludeID request.ID) ([]*request.Request, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	span := dates.Range{Start: start, End: end}
	var result []*request.Request
	for _, r := range m.requests {
		if r.UserID != userID || r.Type != request.TypeLeave || r.ID == excludeID {
			continue
		}
		if r.Status != request.StatusPending && r.Status != request.StatusApproved {
			continue
		}
		if span.Overlaps(dates.Range{Start: r.Leave.StartDate, End: r.Leave.EndDate}) {
			result = append(result, clone(r))
		}
	}
	return result, nil
}

func (m *RequestStore) CountByStatus(_ context.Context, rng dates.Range, userIDs []string, t request.Type) (request.StatusCounts, error) {
	var counts request.StatusCounts
	if userIDs != nil && len(userIDs) == 0 {
		return counts, nil
	}
	var set map[string]bool
	if userIDs != nil {
		set = make(map[string]bool, len(userIDs))
		for _, id := range userIDs {
			set[id] = true
		}
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, r := range m.requests {
		if set != nil && !set[r.UserID] {
			continue
		}
		if t != "" && r.Type != t {
			continue
		}
		if !rng.Contains(dates.FromTime(r.RequestedAt)) {
			continue
		}
		counts.Total++
		switch r.Status {
		case request.StatusPending:
			counts.Pending++
		case request.StatusApproved:
			counts.Approved++
		case request.StatusRejected:
			counts.Rejected++
		case request.StatusCancelled:
			counts.Cancelled++
		}
	}
	return counts, nil
}

// =============================================================================
// ATTENDANCE SINK
// =============================================================================

// AttendanceSink is an in-memory attendance.Sink enforcing (user, date)
// uniqueness.
type AttendanceSink struct {
	mu      sync.RWMutex
	records map[string]attendance.Record // by ID
	byDay   map[string]string            // userID+date -> ID
}

var _ attendance.Sink = (*AttendanceSink)(nil)

// NewAttendanceSink creates an empty sink.
func NewAttendanceSink() *AttendanceSink {
	return &AttendanceSink{
		records: make(map[string]attendance.Record),
		byDay:   make(map[string]string),
	}
}

func dayKey(userID string, day dates.Date) string { return userID + "|" + day.String() }

func (m *AttendanceSink) ExistsForDate(_ context.Context, userID string, day dates.Date) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.byDay[dayKey(userID, day)]
	return ok, nil
}

func (m *AttendanceSink) Create(_ context.Context, record attendance.Record) (*attendance.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	k := dayKey(record.UserID, record.Date)
	if _, ok := m.byDay[k]; ok {
		return nil, attendance.ErrDuplicateDate
	}
	m.records[record.ID] = record
	m.byDay[k] = record.ID
	return &record, nil
}

func (m *AttendanceSink) Get(_ context.Context, id string) (*attendance.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	record, ok := m.records[id]
	if !ok {
		return nil, attendance.ErrRecordNotFound
	}
	return &record, nil
}
