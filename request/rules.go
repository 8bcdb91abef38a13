/*
rules.go - Per-type validation rules, applied before a request is created

PURPOSE:
  One pure rule family per request type. Every rule runs before anything is
  persisted: a validation failure means no partial writes.

RULE SUMMARY:
  Leave:
    - start <= end
    - no overlap with PENDING/APPROVED leave
    - advance notice per leave type (annual 7d, personal 3d, sick/emergency 0)
      unless flagged as emergency
    - emergency flag requires a justification
    - remaining balance covers the requested days

  Remote work:
    - requested date at least 24 hours out
    - no existing request (any status) for that exact date
    - weekly cap: at most 2 PENDING/APPROVED remote days in the same
      Sunday-to-Saturday week

  Attendance correction:
    - requested date within [today-window, today]
    - no attendance record already exists for that date
    - no existing request (any status) for that date

SEE ALSO:
  - service.go: Invokes these during Create
  - store.go:   Conflict queries the rules depend on
*/
package request

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/dates"
)

// Policy knobs with their defaults. Overridable via service Options.
const (
	DefaultRemoteWeeklyCap      = 2
	DefaultRemoteMinNotice      = 24 * time.Hour
	DefaultCorrectionWindowDays = 30
	DefaultCorrectionDeadline   = 7 * 24 * time.Hour
	DefaultWorkHours            = 8.0
)

type validator struct {
	store Store
	sink  attendance.Sink
	now   func() time.Time

	remoteWeeklyCap      int
	remoteMinNotice      time.Duration
	correctionWindowDays int
}

// validate dispatches to the rule family for the request's type.
func (v *validator) validate(ctx context.Context, req *Request) error {
	switch req.Type {
	case TypeLeave:
		return v.validateLeave(ctx, req.UserID, req.Leave)
	case TypeRemoteWork:
		return v.validateRemoteWork(ctx, req.UserID, req.RemoteWork)
	case TypeCorrection:
		return v.validateCorrection(ctx, req.UserID, req.Correction)
	}
	return validationf("type", "unknown request type %q", req.Type)
}

// =============================================================================
// LEAVE
// =============================================================================

func (v *validator) validateLeave(ctx context.Context, userID string, d *LeaveData) error {
	cfg, ok := ConfigFor(d.LeaveType)
	if !ok {
		return validationf("leave_type", "unknown leave type %q", d.LeaveType)
	}
	if d.EndDate.Before(d.StartDate) {
		return validationf("end_date", "end date %s before start date %s", d.EndDate, d.StartDate)
	}
	if d.DaysRequested <= 0 {
		return validationf("days_requested", "must be a positive number of days")
	}

	if d.IsEmergency && d.EmergencyJustification == "" {
		return validationf("emergency_justification", "required for emergency leave")
	}

	if !d.IsEmergency && cfg.MinAdvanceNoticeDays > 0 {
		notice := dates.DaysBetween(dates.FromTime(v.now()), d.StartDate)
		if notice < cfg.MinAdvanceNoticeDays {
			return validationf("start_date", "%s leave requires %d days advance notice, got %d",
				d.LeaveType, cfg.MinAdvanceNoticeDays, notice)
		}
	}

	overlapping, err := v.store.FindOverlappingLeave(ctx, userID, d.StartDate, d.EndDate, "")
	if err != nil {
		return fmt.Errorf("checking overlapping leave: %w", err)
	}
	if len(overlapping) > 0 {
		return &ConflictError{
			Message:    fmt.Sprintf("leave overlaps an existing request for %s..%s", d.StartDate, d.EndDate),
			ExistingID: overlapping[0].ID,
		}
	}

	requested := decimal.NewFromInt(int64(d.DaysRequested))
	if d.Balance.RemainingDays.LessThan(requested) {
		return &InsufficientBalanceError{
			Requested: d.DaysRequested,
			Remaining: d.Balance.RemainingDays.String(),
		}
	}
	return nil
}

// =============================================================================
// REMOTE WORK
// =============================================================================

func (v *validator) validateRemoteWork(ctx context.Context, userID string, d *RemoteWorkData) error {
	if d.RequestedDate.IsZero() {
		return validationf("requested_date", "required")
	}

	if d.RequestedDate.Time().Sub(v.now()) < v.remoteMinNotice {
		return validationf("requested_date", "remote work must be requested at least 24 hours in advance")
	}

	exists, err := v.store.HasRequestForDate(ctx, userID, TypeRemoteWork, d.RequestedDate, "")
	if err != nil {
		return fmt.Errorf("checking existing remote request: %w", err)
	}
	if exists {
		return &ConflictError{Message: fmt.Sprintf("a remote work request already exists for %s", d.RequestedDate)}
	}

	week := dates.WeekOf(d.RequestedDate)
	sameWeek, err := v.store.FindByUser(ctx, userID, Filter{Type: TypeRemoteWork, DateRange: &week})
	if err != nil {
		return fmt.Errorf("checking weekly cap: %w", err)
	}
	active := 0
	for _, r := range sameWeek {
		if r.Status == StatusPending || r.Status == StatusApproved {
			active++
		}
	}
	if active+1 > v.remoteWeeklyCap {
		return validationf("requested_date", "weekly remote work cap of %d days would be exceeded", v.remoteWeeklyCap)
	}
	return nil
}

// =============================================================================
// ATTENDANCE CORRECTION
// =============================================================================

func (v *validator) validateCorrection(ctx context.Context, userID string, d *CorrectionData) error {
	if d.RequestedDate.IsZero() {
		return validationf("requested_date", "required")
	}

	today := dates.FromTime(v.now())
	if d.RequestedDate.After(today) {
		return validationf("requested_date", "cannot correct attendance for a future date")
	}
	if d.RequestedDate.Before(today.AddDays(-v.correctionWindowDays)) {
		return validationf("requested_date", "corrections are limited to the past %d days", v.correctionWindowDays)
	}

	recorded, err := v.sink.ExistsForDate(ctx, userID, d.RequestedDate)
	if err != nil {
		return fmt.Errorf("checking attendance record: %w", err)
	}
	if recorded {
		return &ConflictError{Message: fmt.Sprintf("an attendance record already exists for %s", d.RequestedDate)}
	}

	exists, err := v.store.HasRequestForDate(ctx, userID, TypeCorrection, d.RequestedDate, "")
	if err != nil {
		return fmt.Errorf("checking existing correction request: %w", err)
	}
	if exists {
		return &ConflictError{Message: fmt.Sprintf("a correction request already exists for %s", d.RequestedDate)}
	}
	return nil
}
