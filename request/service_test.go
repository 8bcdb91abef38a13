package request_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/dates"
	"github.com/warp/attendance-engine/hierarchy"
	"github.com/warp/attendance-engine/request"
	"github.com/warp/attendance-engine/store/memory"
)

// =============================================================================
// TEST SETUP
// =============================================================================

// testNow is a Monday. The week containing it runs 2026-03-01 (Sunday)
// through 2026-03-07; the following week starts 2026-03-08.
var testNow = time.Date(2026, time.March, 2, 9, 0, 0, 0, time.UTC)

type engine struct {
	svc       *request.Service
	hierarchy *hierarchy.Service
	sink      *memory.AttendanceSink
}

func newTestEngine(t *testing.T) *engine {
	t.Helper()
	edges := memory.NewEdgeStore()
	h := hierarchy.NewService(edges)
	sink := memory.NewAttendanceSink()

	svc := request.NewService(memory.NewRequestStore(), h, sink, request.NopNotifier{}, request.Options{
		Now: func() time.Time { return testNow },
	})

	// alice reports to morgan, morgan to dana.
	ctx := context.Background()
	start := dates.FromTime(testNow).AddDays(-90)
	_, err := h.CreateEdge(ctx, "alice", "morgan", start, nil, "test")
	require.NoError(t, err)
	_, err = h.CreateEdge(ctx, "morgan", "dana", start, nil, "test")
	require.NoError(t, err)

	return &engine{svc: svc, hierarchy: h, sink: sink}
}

func fullBalance(allocated int64) request.BalanceInfo {
	return request.BalanceInfo{
		AllocatedDays: decimal.NewFromInt(allocated),
		UsedDays:      decimal.Zero,
		RemainingDays: decimal.NewFromInt(allocated),
	}
}

func annualLeave(user string, start, end dates.Date, days int) *request.Request {
	return request.NewLeave(user, request.LeaveData{
		LeaveType:     request.LeaveAnnual,
		StartDate:     start,
		EndDate:       end,
		DaysRequested: days,
		Reason:        "vacation",
		Balance:       fullBalance(21),
	}, "")
}

func d(s string) dates.Date { return dates.MustParse(s) }

// =============================================================================
// LEAVE SUBMISSION
// =============================================================================

func TestCreateLeave_ReservesBalance(t *testing.T) {
	// GIVEN: alice has 21 remaining days
	// WHEN: She submits a 5-day annual leave
	// THEN: The request is PENDING and 5 days are reserved immediately

	e := newTestEngine(t)
	created, err := e.svc.Create(context.Background(), annualLeave("alice", d("2026-03-16"), d("2026-03-20"), 5))
	require.NoError(t, err)

	assert.Equal(t, request.StatusPending, created.Status)
	assert.True(t, created.Leave.Balance.RemainingDays.Equal(decimal.NewFromInt(16)),
		"remaining should drop to 16, got %s", created.Leave.Balance.RemainingDays)
	assert.True(t, created.Leave.Balance.UsedDays.IsZero(), "used does not move until approval")
}

func TestCreateLeave_InsufficientBalance_Rejected(t *testing.T) {
	e := newTestEngine(t)
	req := annualLeave("alice", d("2026-03-16"), d("2026-03-20"), 5)
	req.Leave.Balance.RemainingDays = decimal.NewFromInt(3)

	_, err := e.svc.Create(context.Background(), req)
	var balErr *request.InsufficientBalanceError
	require.ErrorAs(t, err, &balErr)
	assert.Equal(t, 5, balErr.Requested)
	assert.ErrorIs(t, err, request.ErrValidation)
}

func TestCreateLeave_OverlappingLeave_Conflict(t *testing.T) {
	// GIVEN: alice has pending leave 03-16..03-20
	// WHEN: She submits leave 03-19..03-23
	// THEN: The overlap is rejected with the existing request's ID

	e := newTestEngine(t)
	ctx := context.Background()
	first, err := e.svc.Create(ctx, annualLeave("alice", d("2026-03-16"), d("2026-03-20"), 5))
	require.NoError(t, err)

	_, err = e.svc.Create(ctx, annualLeave("alice", d("2026-03-19"), d("2026-03-23"), 5))
	var conflict *request.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, first.ID, conflict.ExistingID)
}

func TestCreateLeave_RejectedLeaveDoesNotBlockResubmission(t *testing.T) {
	// GIVEN: alice's leave for a span was rejected
	// WHEN: She resubmits the same span
	// THEN: Rejected requests do not count as overlapping

	e := newTestEngine(t)
	ctx := context.Background()
	first, err := e.svc.Create(ctx, annualLeave("alice", d("2026-03-16"), d("2026-03-20"), 5))
	require.NoError(t, err)
	_, err = e.svc.Reject(ctx, first.ID, request.Approver{ID: "morgan"}, "coverage gap")
	require.NoError(t, err)

	_, err = e.svc.Create(ctx, annualLeave("alice", d("2026-03-16"), d("2026-03-20"), 5))
	assert.NoError(t, err)
}

func TestCreateLeave_AdvanceNotice_Enforced(t *testing.T) {
	// GIVEN: Annual leave requires 7 days notice; today is 2026-03-02
	// WHEN: alice requests annual leave starting 2026-03-05
	// THEN: The request fails validation

	e := newTestEngine(t)
	_, err := e.svc.Create(context.Background(), annualLeave("alice", d("2026-03-05"), d("2026-03-06"), 2))
	assert.ErrorIs(t, err, request.ErrValidation)
}

func TestCreateLeave_EmergencyBypassesNotice_ButNeedsJustification(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	short := annualLeave("alice", d("2026-03-03"), d("2026-03-04"), 2)
	short.Leave.IsEmergency = true
	_, err := e.svc.Create(ctx, short)
	assert.ErrorIs(t, err, request.ErrValidation, "emergency flag without justification")

	short = annualLeave("alice", d("2026-03-03"), d("2026-03-04"), 2)
	short.Leave.IsEmergency = true
	short.Leave.EmergencyJustification = "family emergency"
	created, err := e.svc.Create(ctx, short)
	require.NoError(t, err)
	assert.Equal(t, request.StatusPending, created.Status)
}

func TestCreateLeave_SickLeave_AutoApproved(t *testing.T) {
	// GIVEN: Sick leave does not require approval
	// WHEN: alice submits a sick day
	// THEN: It is approved immediately by the system, not by any user

	e := newTestEngine(t)
	req := request.NewLeave("alice", request.LeaveData{
		LeaveType:     request.LeaveSick,
		StartDate:     d("2026-03-02"),
		EndDate:       d("2026-03-02"),
		DaysRequested: 1,
		Reason:        "flu",
		Balance:       fullBalance(10),
	}, "")

	created, err := e.svc.Create(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, request.StatusApproved, created.Status)
	assert.True(t, created.AutoApproved)
	assert.Nil(t, created.ApprovedBy)
	assert.Contains(t, created.ApprovalNotes, "auto-approved")
	assert.True(t, created.Leave.Balance.UsedDays.Equal(decimal.NewFromInt(1)))
}

func TestCreate_PayloadMustMatchType(t *testing.T) {
	e := newTestEngine(t)
	req := &request.Request{
		UserID: "alice",
		Type:   request.TypeRemoteWork,
		Leave:  &request.LeaveData{LeaveType: request.LeaveAnnual},
	}
	_, err := e.svc.Create(context.Background(), req)
	assert.ErrorIs(t, err, request.ErrValidation)
}

// =============================================================================
// REMOTE WORK SUBMISSION
// =============================================================================

func remoteWork(user string, day dates.Date) *request.Request {
	return request.NewRemoteWork(user, request.RemoteWorkData{
		RequestedDate:  day,
		Reason:         "focus day",
		RemoteLocation: "home",
	}, "")
}

func TestCreateRemoteWork_TooSoon_Rejected(t *testing.T) {
	// GIVEN: It is 09:00 on 2026-03-02
	// WHEN: alice requests remote work for tomorrow (15 hours out)
	// THEN: The 24-hour notice rule rejects it

	e := newTestEngine(t)
	_, err := e.svc.Create(context.Background(), remoteWork("alice", d("2026-03-03")))
	assert.ErrorIs(t, err, request.ErrValidation)
}

func TestCreateRemoteWork_DuplicateDate_Conflict(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	_, err := e.svc.Create(ctx, remoteWork("alice", d("2026-03-10")))
	require.NoError(t, err)

	_, err = e.svc.Create(ctx, remoteWork("alice", d("2026-03-10")))
	assert.ErrorIs(t, err, request.ErrConflict)
}

func TestCreateRemoteWork_WeeklyCap_Enforced(t *testing.T) {
	// GIVEN: alice already has two remote days in the week of 2026-03-08
	// WHEN: She requests a third in the same week
	// THEN: The weekly cap of 2 rejects it; the next week is unaffected

	e := newTestEngine(t)
	ctx := context.Background()
	_, err := e.svc.Create(ctx, remoteWork("alice", d("2026-03-10")))
	require.NoError(t, err)
	_, err = e.svc.Create(ctx, remoteWork("alice", d("2026-03-11")))
	require.NoError(t, err)

	_, err = e.svc.Create(ctx, remoteWork("alice", d("2026-03-12")))
	assert.ErrorIs(t, err, request.ErrValidation)

	_, err = e.svc.Create(ctx, remoteWork("alice", d("2026-03-16")))
	assert.NoError(t, err, "following week has its own cap")
}

func TestCreateRemoteWork_CancelledDoesNotCountTowardCap(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	first, err := e.svc.Create(ctx, remoteWork("alice", d("2026-03-10")))
	require.NoError(t, err)
	_, err = e.svc.Create(ctx, remoteWork("alice", d("2026-03-11")))
	require.NoError(t, err)

	_, err = e.svc.Cancel(ctx, first.ID, "alice")
	require.NoError(t, err)

	_, err = e.svc.Create(ctx, remoteWork("alice", d("2026-03-12")))
	assert.NoError(t, err, "cancelled request frees a slot")
}

// =============================================================================
// ATTENDANCE CORRECTION SUBMISSION
// =============================================================================

func correction(user string, day dates.Date) *request.Request {
	return request.NewCorrection(user, request.CorrectionData{
		RequestedDate: day,
		Reason:        "forgot to clock in",
	}, "")
}

func TestCreateCorrection_WindowEnforced(t *testing.T) {
	// GIVEN: Today is 2026-03-02 with a 30-day window
	// WHEN: alice submits corrections for tomorrow and for 41 days ago
	// THEN: Both fall outside the window

	e := newTestEngine(t)
	ctx := context.Background()

	_, err := e.svc.Create(ctx, correction("alice", d("2026-03-03")))
	assert.ErrorIs(t, err, request.ErrValidation, "future date")

	_, err = e.svc.Create(ctx, correction("alice", d("2026-01-20")))
	assert.ErrorIs(t, err, request.ErrValidation, "older than the window")

	created, err := e.svc.Create(ctx, correction("alice", d("2026-02-20")))
	require.NoError(t, err)
	require.NotNil(t, created.Correction.RequestDeadline)
	assert.Equal(t, testNow.Add(7*24*time.Hour), *created.Correction.RequestDeadline)
}

func TestCreateCorrection_ExistingRecord_Conflict(t *testing.T) {
	// GIVEN: An attendance record already exists for the day
	// WHEN: alice submits a correction for it
	// THEN: The submission conflicts

	e := newTestEngine(t)
	ctx := context.Background()
	_, err := e.sink.Create(ctx, attendance.Record{
		ID: "rec-1", UserID: "alice", Date: d("2026-02-20"),
		Status: attendance.StatusPresent, WorkLocation: attendance.LocationOffice,
	})
	require.NoError(t, err)

	_, err = e.svc.Create(ctx, correction("alice", d("2026-02-20")))
	assert.ErrorIs(t, err, request.ErrConflict)
}

func TestCreateCorrection_DuplicateRequest_Conflict(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	_, err := e.svc.Create(ctx, correction("alice", d("2026-02-20")))
	require.NoError(t, err)

	_, err = e.svc.Create(ctx, correction("alice", d("2026-02-20")))
	assert.ErrorIs(t, err, request.ErrConflict)
}

// =============================================================================
// APPROVAL
// =============================================================================

func TestApprove_ByDirectManager_MovesBalance(t *testing.T) {
	// GIVEN: alice's pending 5-day leave, 5 days already reserved
	// WHEN: morgan approves it
	// THEN: Used grows by 5; Remaining stays at the reserved level

	e := newTestEngine(t)
	ctx := context.Background()
	created, err := e.svc.Create(ctx, annualLeave("alice", d("2026-03-16"), d("2026-03-20"), 5))
	require.NoError(t, err)

	approved, err := e.svc.Approve(ctx, created.ID, request.Approver{ID: "morgan"}, "enjoy")
	require.NoError(t, err)

	assert.Equal(t, request.StatusApproved, approved.Status)
	require.NotNil(t, approved.ApprovedBy)
	assert.Equal(t, "morgan", *approved.ApprovedBy)
	assert.False(t, approved.AutoApproved)
	assert.True(t, approved.Leave.Balance.UsedDays.Equal(decimal.NewFromInt(5)))
	assert.True(t, approved.Leave.Balance.RemainingDays.Equal(decimal.NewFromInt(16)))
}

func TestApprove_BySkipLevelManager_NoPermission(t *testing.T) {
	// GIVEN: dana manages morgan, who manages alice
	// WHEN: dana approves alice's request directly
	// THEN: Authority is direct-only, so permission is denied

	e := newTestEngine(t)
	ctx := context.Background()
	created, err := e.svc.Create(ctx, annualLeave("alice", d("2026-03-16"), d("2026-03-20"), 5))
	require.NoError(t, err)

	_, err = e.svc.Approve(ctx, created.ID, request.Approver{ID: "dana"}, "")
	assert.ErrorIs(t, err, request.ErrNoPermission)
}

func TestApprove_AlreadyApproved_Fails(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	created, err := e.svc.Create(ctx, annualLeave("alice", d("2026-03-16"), d("2026-03-20"), 5))
	require.NoError(t, err)

	_, err = e.svc.Approve(ctx, created.ID, request.Approver{ID: "morgan"}, "")
	require.NoError(t, err)

	_, err = e.svc.Approve(ctx, created.ID, request.Approver{ID: "morgan"}, "")
	assert.ErrorIs(t, err, request.ErrAlreadyProcessed)
}

func TestApprove_Concurrent_ExactlyOneWins(t *testing.T) {
	// GIVEN: A pending request and two approvers racing
	// WHEN: Both call Approve concurrently
	// THEN: Exactly one succeeds; the other sees ErrAlreadyProcessed

	e := newTestEngine(t)
	ctx := context.Background()
	created, err := e.svc.Create(ctx, annualLeave("alice", d("2026-03-16"), d("2026-03-20"), 5))
	require.NoError(t, err)

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = e.svc.Approve(ctx, created.ID, request.Approver{ID: "morgan"}, "")
		}(i)
	}
	wg.Wait()

	wins, losses := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			wins++
		case assert.ErrorIs(t, err, request.ErrAlreadyProcessed):
			losses++
		}
	}
	assert.Equal(t, 1, wins)
	assert.Equal(t, 1, losses)
}

func TestApproveCorrection_CreatesFlaggedRecord(t *testing.T) {
	// GIVEN: alice's pending correction for 2026-02-20
	// WHEN: morgan approves it
	// THEN: A flagged full-day office record exists and is linked to the request

	e := newTestEngine(t)
	ctx := context.Background()
	created, err := e.svc.Create(ctx, correction("alice", d("2026-02-20")))
	require.NoError(t, err)

	approved, err := e.svc.Approve(ctx, created.ID, request.Approver{ID: "morgan"}, "")
	require.NoError(t, err)
	require.NotEmpty(t, approved.CreatedAttendanceID)

	record, err := e.sink.Get(ctx, approved.CreatedAttendanceID)
	require.NoError(t, err)
	assert.Equal(t, "alice", record.UserID)
	assert.True(t, record.Date.Equal(d("2026-02-20")))
	assert.Equal(t, attendance.StatusPresent, record.Status)
	assert.Equal(t, 8.0, record.TotalHours)
	assert.True(t, record.IsFlagged)
	assert.NotEmpty(t, record.FlagReason)
	assert.Equal(t, attendance.LocationOffice, record.WorkLocation)
}

func TestApproveCorrection_RecordAppearedMeanwhile_StaysPending(t *testing.T) {
	// GIVEN: A record for the day was created after submission
	// WHEN: morgan approves the correction
	// THEN: The approval conflicts and the request stays PENDING

	e := newTestEngine(t)
	ctx := context.Background()
	created, err := e.svc.Create(ctx, correction("alice", d("2026-02-20")))
	require.NoError(t, err)

	_, err = e.sink.Create(ctx, attendance.Record{
		ID: "rec-race", UserID: "alice", Date: d("2026-02-20"),
		Status: attendance.StatusPresent, WorkLocation: attendance.LocationOffice,
	})
	require.NoError(t, err)

	_, err = e.svc.Approve(ctx, created.ID, request.Approver{ID: "morgan"}, "")
	assert.ErrorIs(t, err, request.ErrConflict)

	current, err := e.svc.Get(ctx, created.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, request.StatusPending, current.Status)
	assert.Empty(t, current.CreatedAttendanceID)
}

// =============================================================================
// REJECTION
// =============================================================================

func TestReject_ReleasesReservation(t *testing.T) {
	// GIVEN: alice's pending 5-day leave (16 remaining after reservation)
	// WHEN: morgan rejects it
	// THEN: The reservation is released back to 21

	e := newTestEngine(t)
	ctx := context.Background()
	created, err := e.svc.Create(ctx, annualLeave("alice", d("2026-03-16"), d("2026-03-20"), 5))
	require.NoError(t, err)

	rejected, err := e.svc.Reject(ctx, created.ID, request.Approver{ID: "morgan"}, "coverage gap")
	require.NoError(t, err)

	assert.Equal(t, request.StatusRejected, rejected.Status)
	assert.Equal(t, "coverage gap", rejected.RejectionReason)
	assert.True(t, rejected.Leave.Balance.RemainingDays.Equal(decimal.NewFromInt(21)))
	assert.True(t, rejected.Leave.Balance.UsedDays.IsZero())
}

// =============================================================================
// CANCELLATION
// =============================================================================

func TestCancel_PendingLeave_ReleasesReservation(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	created, err := e.svc.Create(ctx, annualLeave("alice", d("2026-03-16"), d("2026-03-20"), 5))
	require.NoError(t, err)

	cancelled, err := e.svc.Cancel(ctx, created.ID, "alice")
	require.NoError(t, err)
	assert.Equal(t, request.StatusCancelled, cancelled.Status)
	assert.True(t, cancelled.Leave.Balance.RemainingDays.Equal(decimal.NewFromInt(21)))
}

func TestCancel_ApprovedLeave_ReversesUsage(t *testing.T) {
	// GIVEN: alice's approved 5-day leave (used 5, remaining 16)
	// WHEN: She cancels it
	// THEN: Usage is reversed and the reservation released

	e := newTestEngine(t)
	ctx := context.Background()
	created, err := e.svc.Create(ctx, annualLeave("alice", d("2026-03-16"), d("2026-03-20"), 5))
	require.NoError(t, err)
	_, err = e.svc.Approve(ctx, created.ID, request.Approver{ID: "morgan"}, "")
	require.NoError(t, err)

	cancelled, err := e.svc.Cancel(ctx, created.ID, "alice")
	require.NoError(t, err)
	assert.True(t, cancelled.Leave.Balance.UsedDays.IsZero())
	assert.True(t, cancelled.Leave.Balance.RemainingDays.Equal(decimal.NewFromInt(21)))
}

func TestCancel_ByNonSubmitter_Rejected(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	created, err := e.svc.Create(ctx, annualLeave("alice", d("2026-03-16"), d("2026-03-20"), 5))
	require.NoError(t, err)

	_, err = e.svc.Cancel(ctx, created.ID, "morgan")
	assert.ErrorIs(t, err, request.ErrNotSubmitter)
}

func TestCancel_ApprovedCorrection_LeavesRecordIntact(t *testing.T) {
	// GIVEN: An approved correction created an attendance record
	// WHEN: alice cancels the request
	// THEN: The record survives; it is a separate artifact from here on

	e := newTestEngine(t)
	ctx := context.Background()
	created, err := e.svc.Create(ctx, correction("alice", d("2026-02-20")))
	require.NoError(t, err)
	approved, err := e.svc.Approve(ctx, created.ID, request.Approver{ID: "morgan"}, "")
	require.NoError(t, err)

	_, err = e.svc.Cancel(ctx, created.ID, "alice")
	require.NoError(t, err)

	record, err := e.sink.Get(ctx, approved.CreatedAttendanceID)
	require.NoError(t, err)
	assert.True(t, record.IsFlagged)
}

func TestCancel_RejectedRequest_Fails(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()
	created, err := e.svc.Create(ctx, annualLeave("alice", d("2026-03-16"), d("2026-03-20"), 5))
	require.NoError(t, err)
	_, err = e.svc.Reject(ctx, created.ID, request.Approver{ID: "morgan"}, "no")
	require.NoError(t, err)

	_, err = e.svc.Cancel(ctx, created.ID, "alice")
	assert.ErrorIs(t, err, request.ErrAlreadyProcessed)
}

// =============================================================================
// READS AND TEAM VIEWS
// =============================================================================

func TestGet_AccessControl(t *testing.T) {
	// GIVEN: alice's request
	// WHEN: alice, morgan (direct manager) and dana (skip-level) read it
	// THEN: alice and morgan succeed; dana is forbidden

	e := newTestEngine(t)
	ctx := context.Background()
	created, err := e.svc.Create(ctx, annualLeave("alice", d("2026-03-16"), d("2026-03-20"), 5))
	require.NoError(t, err)

	_, err = e.svc.Get(ctx, created.ID, "alice")
	assert.NoError(t, err)
	_, err = e.svc.Get(ctx, created.ID, "morgan")
	assert.NoError(t, err)
	_, err = e.svc.Get(ctx, created.ID, "dana")
	assert.ErrorIs(t, err, request.ErrForbidden)
}

func TestPendingForManager_TransitiveTeam(t *testing.T) {
	// GIVEN: alice (under morgan) and morgan (under dana) each have a pending
	//        request
	// WHEN: dana lists pending requests
	// THEN: Both appear; dana's transitive team spans both levels

	e := newTestEngine(t)
	ctx := context.Background()
	_, err := e.svc.Create(ctx, annualLeave("alice", d("2026-03-16"), d("2026-03-20"), 5))
	require.NoError(t, err)
	_, err = e.svc.Create(ctx, annualLeave("morgan", d("2026-03-16"), d("2026-03-18"), 3))
	require.NoError(t, err)

	pending, err := e.svc.PendingForManager(ctx, "dana", "")
	require.NoError(t, err)
	assert.Len(t, pending, 2)

	direct, err := e.svc.PendingForManager(ctx, "morgan", "")
	require.NoError(t, err)
	require.Len(t, direct, 1)
	assert.Equal(t, "alice", direct[0].UserID)
}

func TestPendingForManager_EmptyTeam(t *testing.T) {
	e := newTestEngine(t)
	pending, err := e.svc.PendingForManager(context.Background(), "alice", "")
	require.NoError(t, err)
	assert.Empty(t, pending)
}

// =============================================================================
// STATISTICS
// =============================================================================

func statsRange() dates.Range {
	return dates.Range{Start: d("2026-03-01"), End: d("2026-03-31")}
}

func TestStatistics_AllPending_RateIsZero(t *testing.T) {
	// GIVEN: Five pending requests and no decisions
	// WHEN: Computing statistics
	// THEN: The approval rate is 0, not an error

	e := newTestEngine(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		_, err := e.svc.Create(ctx, remoteWork("alice", d("2026-03-09").AddDays(i*7)))
		require.NoError(t, err)
	}

	stats, err := e.svc.Statistics(ctx, statsRange(), "", "")
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 5, stats.Pending)
	assert.Equal(t, 0, stats.ApprovalRate)
}

func TestStatistics_RateRounded(t *testing.T) {
	// GIVEN: 2 approved and 1 rejected request
	// WHEN: Computing statistics
	// THEN: Rate is round(2/3*100) = 67; pending does not dilute it

	e := newTestEngine(t)
	ctx := context.Background()

	days := []dates.Date{d("2026-03-09"), d("2026-03-16"), d("2026-03-23"), d("2026-03-30")}
	var ids []request.ID
	for _, day := range days {
		created, err := e.svc.Create(ctx, remoteWork("alice", day))
		require.NoError(t, err)
		ids = append(ids, created.ID)
	}
	morgan := request.Approver{ID: "morgan"}
	_, err := e.svc.Approve(ctx, ids[0], morgan, "")
	require.NoError(t, err)
	_, err = e.svc.Approve(ctx, ids[1], morgan, "")
	require.NoError(t, err)
	_, err = e.svc.Reject(ctx, ids[2], morgan, "office day")
	require.NoError(t, err)

	stats, err := e.svc.Statistics(ctx, statsRange(), "", "")
	require.NoError(t, err)
	assert.Equal(t, 4, stats.Total)
	assert.Equal(t, 67, stats.ApprovalRate)
}

func TestStatistics_ManagerScope(t *testing.T) {
	// GIVEN: alice (morgan's team) and dana (nobody's subordinate) each
	//        submitted a request
	// WHEN: Computing morgan-scoped statistics
	// THEN: Only alice's request counts; an unknown manager yields zeros

	e := newTestEngine(t)
	ctx := context.Background()
	_, err := e.svc.Create(ctx, remoteWork("alice", d("2026-03-10")))
	require.NoError(t, err)
	_, err = e.svc.Create(ctx, remoteWork("dana", d("2026-03-10")))
	require.NoError(t, err)

	scoped, err := e.svc.Statistics(ctx, statsRange(), "morgan", "")
	require.NoError(t, err)
	assert.Equal(t, 1, scoped.Total)

	empty, err := e.svc.Statistics(ctx, statsRange(), "nobody", "")
	require.NoError(t, err)
	assert.Equal(t, 0, empty.Total)
	assert.Equal(t, 0, empty.ApprovalRate)
}
