/*
service.go - The approval state machine

PURPOSE:
  Orchestrates the full request lifecycle:

  Create:  validate (per-type rules) -> reserve leave balance -> persist
           PENDING -> auto-approve or notify the resolved manager
  Approve: authority check -> type-specific effect -> CAS status write
  Reject:  authority check -> reverse the reservation -> CAS status write
  Cancel:  submitter-only -> reverse usage if needed -> CAS status write

STATE MACHINE:
  PENDING -> APPROVED | REJECTED | CANCELLED
  APPROVED -> CANCELLED (reversal)
  All other transitions are forbidden; a decided request is never re-opened.

CONCURRENCY:
  Every terminal write goes through Store.Update with the expected prior
  status (compare-and-swap). When two approvers race, exactly one write
  lands; the loser gets ErrAlreadyProcessed. The attendance-record creation
  during correction approval is additionally guarded by the sink's
  (user, date) uniqueness constraint.

SIDE-EFFECT ORDERING:
  Effects run before the status write. If an effect fails (for example the
  attendance-record race), the approval aborts and the request stays
  PENDING. Notification runs after the write, is fire-and-forget, and never
  changes the outcome.

SEE ALSO:
  - rules.go:  Validation invoked during Create
  - stats.go:  Statistics aggregation
  - hierarchy/service.go: Authority and team resolution
*/
package request

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/dates"
	"github.com/warp/attendance-engine/hierarchy"
)

// autoApprovalNote is recorded on system-approved requests.
const autoApprovalNote = "auto-approved: approval not required for this request type"

// Options tunes policy knobs. Zero values fall back to package defaults.
type Options struct {
	RemoteWeeklyCap      int
	RemoteMinNotice      time.Duration
	CorrectionWindowDays int
	CorrectionDeadline   time.Duration
	WorkHours            float64

	// Now overrides the clock, for tests.
	Now func() time.Time
}

func (o Options) withDefaults() Options {
	if o.RemoteWeeklyCap == 0 {
		o.RemoteWeeklyCap = DefaultRemoteWeeklyCap
	}
	if o.RemoteMinNotice == 0 {
		o.RemoteMinNotice = DefaultRemoteMinNotice
	}
	if o.CorrectionWindowDays == 0 {
		o.CorrectionWindowDays = DefaultCorrectionWindowDays
	}
	if o.CorrectionDeadline == 0 {
		o.CorrectionDeadline = DefaultCorrectionDeadline
	}
	if o.WorkHours == 0 {
		o.WorkHours = DefaultWorkHours
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	return o
}

// Service drives the request lifecycle.
type Service struct {
	store     Store
	hierarchy *hierarchy.Service
	sink      attendance.Sink
	notifier  Notifier
	opts      Options
	validate  *validator
}

// NewService wires the engine together.
func NewService(store Store, h *hierarchy.Service, sink attendance.Sink, notifier Notifier, opts Options) *Service {
	opts = opts.withDefaults()
	if notifier == nil {
		notifier = NopNotifier{}
	}
	return &Service{
		store:     store,
		hierarchy: h,
		sink:      sink,
		notifier:  notifier,
		opts:      opts,
		validate: &validator{
			store:                store,
			sink:                 sink,
			now:                  opts.Now,
			remoteWeeklyCap:      opts.RemoteWeeklyCap,
			remoteMinNotice:      opts.RemoteMinNotice,
			correctionWindowDays: opts.CorrectionWindowDays,
		},
	}
}

// =============================================================================
// SUBMISSION CONSTRUCTORS
// =============================================================================

// NewLeave builds an unsubmitted leave request.
func NewLeave(userID string, data LeaveData, notes string) *Request {
	return &Request{UserID: userID, Type: TypeLeave, Leave: &data, Notes: notes}
}

// NewRemoteWork builds an unsubmitted remote-work request.
func NewRemoteWork(userID string, data RemoteWorkData, notes string) *Request {
	return &Request{UserID: userID, Type: TypeRemoteWork, RemoteWork: &data, Notes: notes}
}

// NewCorrection builds an unsubmitted attendance-correction request.
func NewCorrection(userID string, data CorrectionData, notes string) *Request {
	return &Request{UserID: userID, Type: TypeCorrection, Correction: &data, Notes: notes}
}

// =============================================================================
// CREATE
// =============================================================================

// Create validates and persists a new request. Auto-approvable types are
// approved immediately by the system; everything else notifies the
// submitter's current manager.
func (s *Service) Create(ctx context.Context, req *Request) (*Request, error) {
	if err := checkShape(req); err != nil {
		return nil, err
	}
	if err := s.validate.validate(ctx, req); err != nil {
		return nil, err
	}

	now := s.opts.Now()
	req.ID = ID(uuid.NewString())
	req.Status = StatusPending
	req.RequestedAt = now
	req.UpdatedAt = now

	switch req.Type {
	case TypeLeave:
		// Reserve the balance at submission so concurrent requests cannot
		// overdraw; rejection and cancellation release it.
		requested := decimal.NewFromInt(int64(req.Leave.DaysRequested))
		req.Leave.Balance.RemainingDays = req.Leave.Balance.RemainingDays.Sub(requested)
	case TypeCorrection:
		deadline := now.Add(s.opts.CorrectionDeadline)
		req.Correction.RequestDeadline = &deadline
	}

	if err := s.store.Create(ctx, req); err != nil {
		return nil, fmt.Errorf("persisting request: %w", err)
	}

	if !req.RequiresApproval() {
		return s.decide(ctx, req, SystemApprover(), autoApprovalNote)
	}

	s.notifyManager(ctx, req)
	return req, nil
}

func checkShape(req *Request) error {
	if req.UserID == "" {
		return validationf("user_id", "required")
	}
	if !req.Type.Valid() {
		return validationf("type", "unknown request type %q", req.Type)
	}
	set := 0
	if req.Leave != nil {
		set++
	}
	if req.RemoteWork != nil {
		set++
	}
	if req.Correction != nil {
		set++
	}
	if set != 1 {
		return validationf("request_data", "exactly one payload must be set")
	}
	switch {
	case req.Type == TypeLeave && req.Leave == nil,
		req.Type == TypeRemoteWork && req.RemoteWork == nil,
		req.Type == TypeCorrection && req.Correction == nil:
		return validationf("request_data", "payload does not match request type %q", req.Type)
	}
	return nil
}

// notifyManager resolves the submitter's manager and fires a notification.
// Failures are logged by the notifier and never affect the request.
func (s *Service) notifyManager(ctx context.Context, req *Request) {
	edge, err := s.hierarchy.CurrentManagerOf(ctx, req.UserID, dates.FromTime(s.opts.Now()))
	if err != nil || edge == nil {
		return
	}
	s.notifier.Notify(ctx, Notification{
		Request:     req,
		RecipientID: edge.ManagerID,
		Event:       EventSubmitted,
	})
}

// =============================================================================
// APPROVE / REJECT
// =============================================================================

// Approve transitions a PENDING request to APPROVED, applying the
// type-specific effect first. Human approvers must have an active direct
// reporting relationship with the submitter.
func (s *Service) Approve(ctx context.Context, id ID, approver Approver, notes string) (*Request, error) {
	req, err := s.loadPending(ctx, id, approver)
	if err != nil {
		return nil, err
	}
	return s.decide(ctx, req, approver, notes)
}

// decide applies approval effects and commits the APPROVED status.
func (s *Service) decide(ctx context.Context, req *Request, approver Approver, notes string) (*Request, error) {
	switch req.Type {
	case TypeLeave:
		requested := decimal.NewFromInt(int64(req.Leave.DaysRequested))
		req.Leave.Balance.UsedDays = req.Leave.Balance.UsedDays.Add(requested)

	case TypeRemoteWork:
		// No side effect.

	case TypeCorrection:
		record, err := s.createAttendanceRecord(ctx, req)
		if err != nil {
			return nil, err
		}
		req.CreatedAttendanceID = record.ID
	}

	now := s.opts.Now()
	req.Status = StatusApproved
	req.AutoApproved = approver.System
	if !approver.System {
		approverID := approver.ID
		req.ApprovedBy = &approverID
	}
	req.ApprovedAt = &now
	req.ApprovalNotes = notes
	req.UpdatedAt = now

	if err := s.store.Update(ctx, req, StatusPending); err != nil {
		return nil, err
	}

	if !approver.System {
		s.notifier.Notify(ctx, Notification{Request: req, RecipientID: req.UserID, Event: EventApproved})
	}
	return req, nil
}

// createAttendanceRecord re-checks for an existing record right before the
// write (the check at submission time may be stale) and creates the flagged
// record the approved correction stands for.
func (s *Service) createAttendanceRecord(ctx context.Context, req *Request) (*attendance.Record, error) {
	day := req.Correction.RequestedDate

	exists, err := s.sink.ExistsForDate(ctx, req.UserID, day)
	if err != nil {
		return nil, fmt.Errorf("checking attendance record: %w", err)
	}
	if exists {
		return nil, &ConflictError{Message: fmt.Sprintf("attendance record already exists for %s", day)}
	}

	record, err := s.sink.Create(ctx, attendance.Record{
		ID:           uuid.NewString(),
		UserID:       req.UserID,
		Date:         day,
		Status:       attendance.StatusPresent,
		TotalHours:   s.opts.WorkHours,
		IsFlagged:    true,
		FlagReason:   "manual request – requires verification",
		WorkLocation: attendance.LocationOffice,
		CreatedAt:    s.opts.Now(),
	})
	if errors.Is(err, attendance.ErrDuplicateDate) {
		// Lost the race to a concurrent approval or clock-in.
		return nil, &ConflictError{Message: fmt.Sprintf("attendance record already exists for %s", day)}
	}
	if err != nil {
		return nil, fmt.Errorf("creating attendance record: %w", err)
	}
	return record, nil
}

// Reject transitions a PENDING request to REJECTED and releases the leave
// reservation taken at submission time.
func (s *Service) Reject(ctx context.Context, id ID, approver Approver, reason string) (*Request, error) {
	req, err := s.loadPending(ctx, id, approver)
	if err != nil {
		return nil, err
	}

	if req.Type == TypeLeave {
		requested := decimal.NewFromInt(int64(req.Leave.DaysRequested))
		req.Leave.Balance.RemainingDays = req.Leave.Balance.RemainingDays.Add(requested)
	}

	now := s.opts.Now()
	req.Status = StatusRejected
	if !approver.System {
		approverID := approver.ID
		req.ApprovedBy = &approverID
	}
	req.RejectionReason = reason
	req.UpdatedAt = now

	if err := s.store.Update(ctx, req, StatusPending); err != nil {
		return nil, err
	}

	s.notifier.Notify(ctx, Notification{Request: req, RecipientID: req.UserID, Event: EventRejected})
	return req, nil
}

// loadPending fetches the request and runs the shared existence, state and
// authority checks for approval/rejection.
func (s *Service) loadPending(ctx context.Context, id ID, approver Approver) (*Request, error) {
	req, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.Status != StatusPending {
		return nil, fmt.Errorf("%w: status is %s", ErrAlreadyProcessed, req.Status)
	}
	if !approver.System {
		ok, err := s.hierarchy.ExistsRelationship(ctx, req.UserID, approver.ID, dates.FromTime(s.opts.Now()))
		if err != nil {
			return nil, fmt.Errorf("checking authority: %w", err)
		}
		if !ok {
			return nil, ErrNoPermission
		}
	}
	return req, nil
}

// =============================================================================
// CANCEL
// =============================================================================

// Cancel lets the original submitter withdraw a PENDING or APPROVED request.
// Cancelling approved leave reverses the recorded usage. An attendance record
// created by an approved correction is left untouched; from this point on it
// is a separate artifact.
func (s *Service) Cancel(ctx context.Context, id ID, userID string) (*Request, error) {
	req, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.UserID != userID {
		return nil, ErrNotSubmitter
	}
	if req.Status != StatusPending && req.Status != StatusApproved {
		return nil, fmt.Errorf("%w: status is %s", ErrAlreadyProcessed, req.Status)
	}

	prior := req.Status
	if req.Type == TypeLeave {
		requested := decimal.NewFromInt(int64(req.Leave.DaysRequested))
		if prior == StatusApproved {
			req.Leave.Balance.UsedDays = req.Leave.Balance.UsedDays.Sub(requested)
		}
		req.Leave.Balance.RemainingDays = req.Leave.Balance.RemainingDays.Add(requested)
	}

	now := s.opts.Now()
	req.Status = StatusCancelled
	req.UpdatedAt = now

	if err := s.store.Update(ctx, req, prior); err != nil {
		return nil, err
	}
	return req, nil
}

// =============================================================================
// READS
// =============================================================================

// Get returns a request if the caller is the submitter or the submitter's
// current direct manager.
func (s *Service) Get(ctx context.Context, id ID, callerID string) (*Request, error) {
	req, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if callerID == req.UserID {
		return req, nil
	}
	ok, err := s.hierarchy.ExistsRelationship(ctx, req.UserID, callerID, dates.FromTime(s.opts.Now()))
	if err != nil {
		return nil, fmt.Errorf("checking access: %w", err)
	}
	if !ok {
		return nil, ErrForbidden
	}
	return req, nil
}

// List returns the user's own requests.
func (s *Service) List(ctx context.Context, userID string, f Filter) ([]*Request, error) {
	return s.store.FindByUser(ctx, userID, f)
}

// PendingForManager returns PENDING requests submitted by anyone in the
// manager's transitive team.
func (s *Service) PendingForManager(ctx context.Context, managerID string, t Type) ([]*Request, error) {
	f := Filter{Status: StatusPending, Type: t}
	return s.teamRequests(ctx, managerID, f)
}

// TeamRequests returns the team's requests of any status, optionally
// filtered by type and date range.
func (s *Service) TeamRequests(ctx context.Context, managerID string, t Type, rng *dates.Range) ([]*Request, error) {
	f := Filter{Type: t, DateRange: rng}
	return s.teamRequests(ctx, managerID, f)
}

func (s *Service) teamRequests(ctx context.Context, managerID string, f Filter) ([]*Request, error) {
	team, err := s.hierarchy.AllSubordinates(ctx, managerID, hierarchy.MaxTraversalDepth)
	if err != nil {
		return nil, fmt.Errorf("resolving team: %w", err)
	}
	if len(team) == 0 {
		return nil, nil
	}
	ids := make([]string, 0, len(team))
	for id := range team {
		ids = append(ids, id)
	}
	return s.store.FindByUsers(ctx, ids, f)
}
