/*
Package sqlite provides the SQLite-backed implementation of the storage
interfaces.

PURPOSE:
  Implements hierarchy.Store, request.Store and attendance.Sink over a
  single SQLite database. The same patterns apply to PostgreSQL; only minor
  SQL dialect differences.

VIEWS:
  The three storage interfaces overlap in method names, so the Store exposes
  one view per interface over the shared connection:
    store.Edges()      -> hierarchy.Store
    store.Requests()   -> request.Store
    store.Attendance() -> attendance.Sink

KEY TABLES:
  reporting_edges:    Time-bound manager/employee edges
  requests:           Polymorphic request records (type tag + payload JSON)
  attendance_records: Daily attendance rows created by approved corrections

UNIQUENESS BACKSTOPS:
  The in-memory exists-then-act checks in the engine are fast paths; these
  constraints are the actual correctness mechanism under concurrency:
  - idx_attendance_user_date: one attendance record per (user_id, date)
  - Conditional UPDATE on requests(status) implements compare-and-swap for
    status transitions; a raced second writer affects zero rows.

DENORMALIZED DATE COLUMNS:
  requests carries effective_start/effective_end derived from the payload
  (the leave span, or the single requested date twice). Date matching and
  overlap queries then work uniformly across request types in SQL.

CONCURRENCY:
  sync.RWMutex serializes writes (this also serializes edge creation,
  upholding the one-active-manager invariant). WAL mode keeps readers from
  blocking.

USAGE:
  store, err := sqlite.New("./data/attendance.db")
  defer store.Close()
  svc := request.NewService(store.Requests(), hier, store.Attendance(), nil, request.Options{})

SEE ALSO:
  - hierarchy/hierarchy.go, request/store.go, attendance/attendance.go:
    the interfaces implemented here
  - store/memory: in-memory implementation for tests
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/dates"
	"github.com/warp/attendance-engine/hierarchy"
	"github.com/warp/attendance-engine/request"
)

// Store owns the database connection. Use the view accessors to obtain the
// storage interfaces.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// EdgeStore is the hierarchy.Store view.
type EdgeStore struct{ s *Store }

// RequestStore is the request.Store view.
type RequestStore struct{ s *Store }

// AttendanceStore is the attendance.Sink view.
type AttendanceStore struct{ s *Store }

// Interface conformance.
var (
	_ hierarchy.Store = (*EdgeStore)(nil)
	_ request.Store   = (*RequestStore)(nil)
	_ attendance.Sink = (*AttendanceStore)(nil)
)

// Edges returns the hierarchy.Store view.
func (s *Store) Edges() *EdgeStore { return &EdgeStore{s} }

// Requests returns the request.Store view.
func (s *Store) Requests() *RequestStore { return &RequestStore{s} }

// Attendance returns the attendance.Sink view.
func (s *Store) Attendance() *AttendanceStore { return &AttendanceStore{s} }

// New opens (or creates) the database. Use ":memory:" for tests.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	-- Reporting edges (time-bound manager/employee relationships)
	CREATE TABLE IF NOT EXISTS reporting_edges (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		manager_id TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT,
		assigned_by TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_edges_employee
		ON reporting_edges(employee_id, start_date DESC);
	CREATE INDEX IF NOT EXISTS idx_edges_manager
		ON reporting_edges(manager_id);
	CREATE INDEX IF NOT EXISTS idx_edges_pair
		ON reporting_edges(employee_id, manager_id);

	-- Requests (one row per workflow item, payload keyed by type tag)
	CREATE TABLE IF NOT EXISTS requests (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		type TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'pending',
		payload_json TEXT NOT NULL,
		effective_start TEXT NOT NULL,
		effective_end TEXT NOT NULL,
		approved_by TEXT,
		auto_approved BOOLEAN NOT NULL DEFAULT FALSE,
		approved_at TEXT,
		approval_notes TEXT,
		rejection_reason TEXT,
		created_attendance_id TEXT,
		notes TEXT,
		requested_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_requests_user
		ON requests(user_id, requested_at DESC);
	CREATE INDEX IF NOT EXISTS idx_requests_type_status
		ON requests(type, status);
	CREATE INDEX IF NOT EXISTS idx_requests_effective
		ON requests(user_id, type, effective_start, effective_end);

	-- Attendance records (only the slice the engine touches)
	CREATE TABLE IF NOT EXISTS attendance_records (
		id TEXT PRIMARY KEY,
		user_id TEXT NOT NULL,
		date TEXT NOT NULL,
		status TEXT NOT NULL,
		total_hours REAL NOT NULL,
		is_flagged BOOLEAN NOT NULL DEFAULT FALSE,
		flag_reason TEXT,
		work_location TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	-- CRITICAL: one attendance record per user per day. This is the backstop
	-- for the exists-then-create race during correction approval.
	CREATE UNIQUE INDEX IF NOT EXISTS idx_attendance_user_date
		ON attendance_records(user_id, date);
	`

	_, err := s.db.Exec(schema)
	return err
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// =============================================================================
// HIERARCHY STORE (hierarchy.Store interface)
// =============================================================================

// Insert persists a new reporting edge.
func (es *EdgeStore) Insert(ctx context.Context, edge hierarchy.Edge) error {
	es.s.mu.Lock()
	defer es.s.mu.Unlock()

	_, err := es.s.db.ExecContext(ctx, `
		INSERT INTO reporting_edges
		(id, employee_id, manager_id, start_date, end_date, assigned_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		edge.ID, edge.EmployeeID, edge.ManagerID,
		edge.StartDate.String(), nullDate(edge.EndDate), edge.AssignedBy,
		edge.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert edge: %w", err)
	}
	return nil
}

// Update rewrites an existing edge.
func (es *EdgeStore) Update(ctx context.Context, edge hierarchy.Edge) error {
	es.s.mu.Lock()
	defer es.s.mu.Unlock()

	res, err := es.s.db.ExecContext(ctx, `
		UPDATE reporting_edges
		SET manager_id = ?, start_date = ?, end_date = ?
		WHERE id = ?`,
		edge.ManagerID, edge.StartDate.String(), nullDate(edge.EndDate), edge.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update edge: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return hierarchy.ErrEdgeNotFound
	}
	return nil
}

// Get returns an edge by ID.
func (es *EdgeStore) Get(ctx context.Context, id hierarchy.EdgeID) (*hierarchy.Edge, error) {
	es.s.mu.RLock()
	defer es.s.mu.RUnlock()

	row := es.s.db.QueryRowContext(ctx, `
		SELECT id, employee_id, manager_id, start_date, end_date, assigned_by, created_at
		FROM reporting_edges WHERE id = ?`, id)

	edge, err := scanEdge(row)
	if err == sql.ErrNoRows {
		return nil, hierarchy.ErrEdgeNotFound
	}
	if err != nil {
		return nil, err
	}
	return edge, nil
}

// ActiveEdgesFor returns the employee's active edges, most recently started first.
func (es *EdgeStore) ActiveEdgesFor(ctx context.Context, employeeID string, asOf dates.Date) ([]hierarchy.Edge, error) {
	es.s.mu.RLock()
	defer es.s.mu.RUnlock()

	return es.s.queryEdges(ctx, `
		SELECT id, employee_id, manager_id, start_date, end_date, assigned_by, created_at
		FROM reporting_edges
		WHERE employee_id = ? AND start_date <= ? AND (end_date IS NULL OR end_date >= ?)
		ORDER BY start_date DESC, created_at DESC`,
		employeeID, asOf.String(), asOf.String())
}

// ActiveEdgesUnder returns active edges whose manager matches.
func (es *EdgeStore) ActiveEdgesUnder(ctx context.Context, managerID string, asOf dates.Date) ([]hierarchy.Edge, error) {
	es.s.mu.RLock()
	defer es.s.mu.RUnlock()

	return es.s.queryEdges(ctx, `
		SELECT id, employee_id, manager_id, start_date, end_date, assigned_by, created_at
		FROM reporting_edges
		WHERE manager_id = ? AND start_date <= ? AND (end_date IS NULL OR end_date >= ?)
		ORDER BY start_date DESC`,
		managerID, asOf.String(), asOf.String())
}

// ActivePair returns the active edge for the exact pair, or nil.
func (es *EdgeStore) ActivePair(ctx context.Context, employeeID, managerID string, asOf dates.Date) (*hierarchy.Edge, error) {
	es.s.mu.RLock()
	defer es.s.mu.RUnlock()

	edges, err := es.s.queryEdges(ctx, `
		SELECT id, employee_id, manager_id, start_date, end_date, assigned_by, created_at
		FROM reporting_edges
		WHERE employee_id = ? AND manager_id = ?
		  AND start_date <= ? AND (end_date IS NULL OR end_date >= ?)
		ORDER BY start_date DESC LIMIT 1`,
		employeeID, managerID, asOf.String(), asOf.String())
	if err != nil {
		return nil, err
	}
	if len(edges) == 0 {
		return nil, nil
	}
	return &edges[0], nil
}

// EdgesFor returns the employee's full edge history, most recently started first.
func (es *EdgeStore) EdgesFor(ctx context.Context, employeeID string) ([]hierarchy.Edge, error) {
	es.s.mu.RLock()
	defer es.s.mu.RUnlock()

	return es.s.queryEdges(ctx, `
		SELECT id, employee_id, manager_id, start_date, end_date, assigned_by, created_at
		FROM reporting_edges
		WHERE employee_id = ?
		ORDER BY start_date DESC, created_at DESC`,
		employeeID)
}

func (s *Store) queryEdges(ctx context.Context, query string, args ...any) ([]hierarchy.Edge, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	var edges []hierarchy.Edge
	for rows.Next() {
		edge, err := scanEdge(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, *edge)
	}
	return edges, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEdge(row rowScanner) (*hierarchy.Edge, error) {
	var (
		edge       hierarchy.Edge
		startDate  string
		endDate    sql.NullString
		assignedBy sql.NullString
		createdAt  string
	)
	if err := row.Scan(&edge.ID, &edge.EmployeeID, &edge.ManagerID,
		&startDate, &endDate, &assignedBy, &createdAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan edge: %w", err)
	}

	edge.StartDate, _ = dates.Parse(startDate)
	if endDate.Valid {
		d, _ := dates.Parse(endDate.String)
		edge.EndDate = &d
	}
	edge.AssignedBy = assignedBy.String
	edge.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &edge, nil
}

// =============================================================================
// REQUEST STORE (request.Store interface)
// =============================================================================

// Create persists a new request.
func (rs *RequestStore) Create(ctx context.Context, req *request.Request) error {
	rs.s.mu.Lock()
	defer rs.s.mu.Unlock()

	payload, err := req.MarshalPayload()
	if err != nil {
		return err
	}
	start, end := effectiveSpan(req)

	_, err = rs.s.db.ExecContext(ctx, `
		INSERT INTO requests
		(id, user_id, type, status, payload_json, effective_start, effective_end,
		 approved_by, auto_approved, approved_at, approval_notes, rejection_reason,
		 created_attendance_id, notes, requested_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.UserID, req.Type, req.Status, string(payload),
		start.String(), end.String(),
		nullStrPtr(req.ApprovedBy), req.AutoApproved, nullTime(req.ApprovedAt),
		req.ApprovalNotes, req.RejectionReason, req.CreatedAttendanceID, req.Notes,
		req.RequestedAt.UTC().Format(time.RFC3339),
		req.UpdatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("failed to insert request: %w", err)
	}
	return nil
}

// Get returns a request by ID.
func (rs *RequestStore) Get(ctx context.Context, id request.ID) (*request.Request, error) {
	rs.s.mu.RLock()
	defer rs.s.mu.RUnlock()

	reqs, err := rs.s.queryRequests(ctx, selectRequests+` WHERE id = ?`, id)
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, request.ErrNotFound
	}
	return reqs[0], nil
}

// Update rewrites the request's mutable fields if and only if the stored
// status still equals expect (compare-and-swap). This single conditional
// UPDATE is what makes concurrent decisions resolve to exactly one winner.
func (rs *RequestStore) Update(ctx context.Context, req *request.Request, expect request.Status) error {
	rs.s.mu.Lock()
	defer rs.s.mu.Unlock()

	payload, err := req.MarshalPayload()
	if err != nil {
		return err
	}

	res, err := rs.s.db.ExecContext(ctx, `
		UPDATE requests SET
			status = ?, payload_json = ?, approved_by = ?, auto_approved = ?,
			approved_at = ?, approval_notes = ?, rejection_reason = ?,
			created_attendance_id = ?, updated_at = ?
		WHERE id = ? AND status = ?`,
		req.Status, string(payload),
		nullStrPtr(req.ApprovedBy), req.AutoApproved, nullTime(req.ApprovedAt),
		req.ApprovalNotes, req.RejectionReason, req.CreatedAttendanceID,
		req.UpdatedAt.UTC().Format(time.RFC3339),
		req.ID, expect,
	)
	if err != nil {
		return fmt.Errorf("failed to update request: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		var count int
		if err := rs.s.db.QueryRowContext(ctx,
			"SELECT COUNT(*) FROM requests WHERE id = ?", req.ID).Scan(&count); err != nil {
			return err
		}
		if count == 0 {
			return request.ErrNotFound
		}
		return request.ErrAlreadyProcessed
	}
	return nil
}

// FindByUser returns the user's requests, newest first.
func (rs *RequestStore) FindByUser(ctx context.Context, userID string, f request.Filter) ([]*request.Request, error) {
	rs.s.mu.RLock()
	defer rs.s.mu.RUnlock()

	query, args := buildFilter(selectRequests+` WHERE user_id = ?`, []any{userID}, f)
	return rs.s.queryRequests(ctx, query, args...)
}

// FindByType returns requests of a type across all users, newest first.
func (rs *RequestStore) FindByType(ctx context.Context, f request.Filter) ([]*request.Request, error) {
	rs.s.mu.RLock()
	defer rs.s.mu.RUnlock()

	query, args := buildFilter(selectRequests+` WHERE 1=1`, nil, f)
	return rs.s.queryRequests(ctx, query, args...)
}

// FindByUsers returns requests whose submitter is in userIDs.
func (rs *RequestStore) FindByUsers(ctx context.Context, userIDs []string, f request.Filter) ([]*request.Request, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	rs.s.mu.RLock()
	defer rs.s.mu.RUnlock()

	placeholders := strings.Repeat("?,", len(userIDs))
	placeholders = placeholders[:len(placeholders)-1]
	args := make([]any, len(userIDs))
	for i, id := range userIDs {
		args[i] = id
	}

	query, args := buildFilter(
		selectRequests+` WHERE user_id IN (`+placeholders+`)`, args, f)
	return rs.s.queryRequests(ctx, query, args...)
}

// HasRequestForDate reports whether the user has a request of the type
// targeting the day. The denormalized effective span makes the matching
// type-aware: leave spans contain the day, single-day types match exactly.
func (rs *RequestStore) HasRequestForDate(ctx context.Context, userID string, t request.Type, day dates.Date, status request.Status) (bool, error) {
	rs.s.mu.RLock()
	defer rs.s.mu.RUnlock()

	query := `
		SELECT COUNT(*) FROM requests
		WHERE user_id = ? AND type = ? AND effective_start <= ? AND effective_end >= ?`
	args := []any{userID, t, day.String(), day.String()}
	if status != "" {
		query += ` AND status = ?`
		args = append(args, status)
	}

	var count int
	if err := rs.s.db.QueryRowContext(ctx, query, args...).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check request for date: %w", err)
	}
	return count > 0, nil
}

// FindOverlappingLeave returns PENDING/APPROVED leave intersecting [start, end].
func (rs *RequestStore) FindOverlappingLeave(ctx context.Context, userID string, start, end dates.Date, excludeID request.ID) ([]*request.Request, error) {
	rs.s.mu.RLock()
	defer rs.s.mu.RUnlock()

	query := selectRequests + `
		WHERE user_id = ? AND type = ? AND status IN (?, ?)
		  AND effective_start <= ? AND effective_end >= ?`
	args := []any{userID, request.TypeLeave, request.StatusPending, request.StatusApproved,
		end.String(), start.String()}
	if excludeID != "" {
		query += ` AND id != ?`
		args = append(args, excludeID)
	}
	query += ` ORDER BY requested_at DESC`

	return rs.s.queryRequests(ctx, query, args...)
}

// CountByStatus aggregates requests submitted within the range.
func (rs *RequestStore) CountByStatus(ctx context.Context, rng dates.Range, userIDs []string, t request.Type) (request.StatusCounts, error) {
	rs.s.mu.RLock()
	defer rs.s.mu.RUnlock()

	var counts request.StatusCounts
	if userIDs != nil && len(userIDs) == 0 {
		return counts, nil
	}

	query := `
		SELECT status, COUNT(*) FROM requests
		WHERE requested_at >= ? AND requested_at < ?`
	args := []any{
		rng.Start.Time().UTC().Format(time.RFC3339),
		rng.End.AddDays(1).Time().UTC().Format(time.RFC3339),
	}
	if t != "" {
		query += ` AND type = ?`
		args = append(args, t)
	}
	if userIDs != nil {
		placeholders := strings.Repeat("?,", len(userIDs))
		query += ` AND user_id IN (` + placeholders[:len(placeholders)-1] + `)`
		for _, id := range userIDs {
			args = append(args, id)
		}
	}
	query += ` GROUP BY status`

	rows, err := rs.s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return counts, fmt.Errorf("failed to count requests: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var status request.Status
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return counts, err
		}
		counts.Total += n
		switch status {
		case request.StatusPending:
			counts.Pending = n
		case request.StatusApproved:
			counts.Approved = n
		case request.StatusRejected:
			counts.Rejected = n
		case request.StatusCancelled:
			counts.Cancelled = n
		}
	}
	return counts, rows.Err()
}

const selectRequests = `
	SELECT id, user_id, type, status, payload_json,
	       approved_by, auto_approved, approved_at, approval_notes,
	       rejection_reason, created_attendance_id, notes, requested_at, updated_at
	FROM requests`

func buildFilter(query string, args []any, f request.Filter) (string, []any) {
	if f.Type != "" {
		query += ` AND type = ?`
		args = append(args, f.Type)
	}
	if f.Status != "" {
		query += ` AND status = ?`
		args = append(args, f.Status)
	}
	if f.DateRange != nil {
		query += ` AND effective_start <= ? AND effective_end >= ?`
		args = append(args, f.DateRange.End.String(), f.DateRange.Start.String())
	}
	query += ` ORDER BY requested_at DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	return query, args
}

func (s *Store) queryRequests(ctx context.Context, query string, args ...any) ([]*request.Request, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query requests: %w", err)
	}
	defer rows.Close()

	var requests []*request.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	return requests, rows.Err()
}

func scanRequest(rows *sql.Rows) (*request.Request, error) {
	var (
		req                 request.Request
		payloadJSON         string
		approvedBy          sql.NullString
		approvedAt          sql.NullString
		approvalNotes       sql.NullString
		rejectionReason     sql.NullString
		createdAttendanceID sql.NullString
		notes               sql.NullString
		requestedAt         string
		updatedAt           string
	)

	if err := rows.Scan(&req.ID, &req.UserID, &req.Type, &req.Status, &payloadJSON,
		&approvedBy, &req.AutoApproved, &approvedAt, &approvalNotes,
		&rejectionReason, &createdAttendanceID, &notes, &requestedAt, &updatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan request: %w", err)
	}

	if err := req.UnmarshalPayload([]byte(payloadJSON)); err != nil {
		return nil, fmt.Errorf("failed to decode payload for %s: %w", req.ID, err)
	}

	if approvedBy.Valid {
		v := approvedBy.String
		req.ApprovedBy = &v
	}
	if approvedAt.Valid {
		t, _ := time.Parse(time.RFC3339, approvedAt.String)
		req.ApprovedAt = &t
	}
	req.ApprovalNotes = approvalNotes.String
	req.RejectionReason = rejectionReason.String
	req.CreatedAttendanceID = createdAttendanceID.String
	req.Notes = notes.String
	req.RequestedAt, _ = time.Parse(time.RFC3339, requestedAt)
	req.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return &req, nil
}

// effectiveSpan derives the denormalized date columns from the payload.
func effectiveSpan(req *request.Request) (dates.Date, dates.Date) {
	if req.Type == request.TypeLeave {
		return req.Leave.StartDate, req.Leave.EndDate
	}
	d := req.EffectiveDate()
	return d, d
}

// =============================================================================
// ATTENDANCE SINK (attendance.Sink interface)
// =============================================================================

// ExistsForDate reports whether a record exists for the user on the day.
func (as *AttendanceStore) ExistsForDate(ctx context.Context, userID string, day dates.Date) (bool, error) {
	as.s.mu.RLock()
	defer as.s.mu.RUnlock()

	var count int
	err := as.s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM attendance_records WHERE user_id = ? AND date = ?",
		userID, day.String(),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check attendance record: %w", err)
	}
	return count > 0, nil
}

// Create persists an attendance record. The unique (user_id, date) index
// converts a lost race into attendance.ErrDuplicateDate.
func (as *AttendanceStore) Create(ctx context.Context, record attendance.Record) (*attendance.Record, error) {
	as.s.mu.Lock()
	defer as.s.mu.Unlock()

	_, err := as.s.db.ExecContext(ctx, `
		INSERT INTO attendance_records
		(id, user_id, date, status, total_hours, is_flagged, flag_reason, work_location, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID, record.UserID, record.Date.String(), record.Status,
		record.TotalHours, record.IsFlagged, record.FlagReason, record.WorkLocation,
		record.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return nil, attendance.ErrDuplicateDate
		}
		return nil, fmt.Errorf("failed to insert attendance record: %w", err)
	}
	return &record, nil
}

// Get returns an attendance record by ID.
func (as *AttendanceStore) Get(ctx context.Context, id string) (*attendance.Record, error) {
	as.s.mu.RLock()
	defer as.s.mu.RUnlock()

	var (
		record     attendance.Record
		day        string
		flagReason sql.NullString
		createdAt  string
	)
	err := as.s.db.QueryRowContext(ctx, `
		SELECT id, user_id, date, status, total_hours, is_flagged, flag_reason, work_location, created_at
		FROM attendance_records WHERE id = ?`, id,
	).Scan(&record.ID, &record.UserID, &day, &record.Status, &record.TotalHours,
		&record.IsFlagged, &flagReason, &record.WorkLocation, &createdAt)
	if err == sql.ErrNoRows {
		return nil, attendance.ErrRecordNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get attendance record: %w", err)
	}

	record.Date, _ = dates.Parse(day)
	record.FlagReason = flagReason.String
	record.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return &record, nil
}

// =============================================================================
// NULLABLE HELPERS
// =============================================================================

func nullDate(d *dates.Date) any {
	if d == nil {
		return nil
	}
	return d.String()
}

func nullStrPtr(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.UTC().Format(time.RFC3339)
}
