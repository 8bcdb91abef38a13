/*
Package request implements the unified request/approval engine.

PURPOSE:
  One engine handles every workflow item an employee can submit: leave,
  remote work, and attendance corrections. A single record type carries a
  type tag and a per-type payload; all business rules dispatch on the tag
  through closed, exhaustive switches.

KEY CONCEPTS IN THIS FILE (types.go):
  - Request:        The polymorphic record (tagged union of payloads)
  - LeaveData:      Leave span + balance snapshot mutated by the state machine
  - RemoteWorkData: Single remote day
  - CorrectionData: Attendance correction with a submission deadline
  - LeaveTypeConfig: Static per-leave-type policy table
  - Approver:       Explicit human-or-system approver (no magic sentinel IDs)

DESIGN PRINCIPLES:
  1. Tagged union, not "any": exactly one payload pointer is non-nil,
     matching the Type tag. The dispatcher switches on Type and the compiler
     keeps the variant set closed.
  2. Precision: balance day counts use decimal.Decimal, never float.
  3. Immutability after decision: a decided request is history; only the
     cancellation path touches it again.

SEE ALSO:
  - rules.go:   Per-type validation before creation
  - service.go: The approval state machine
  - store.go:   Persistence and query interface
*/
package request

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/dates"
)

// =============================================================================
// TYPE AND STATUS TAGS
// =============================================================================

// Type discriminates the request payload.
type Type string

const (
	TypeLeave      Type = "leave"
	TypeRemoteWork Type = "remote_work"
	TypeCorrection Type = "attendance_correction"
)

// Valid reports whether the tag names a known request type.
func (t Type) Valid() bool {
	switch t {
	case TypeLeave, TypeRemoteWork, TypeCorrection:
		return true
	}
	return false
}

// Status of a request in the approval state machine.
type Status string

const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

// =============================================================================
// PAYLOAD VARIANTS
// =============================================================================

// LeaveType categorizes leave requests.
type LeaveType string

const (
	LeaveAnnual    LeaveType = "annual"
	LeaveSick      LeaveType = "sick"
	LeavePersonal  LeaveType = "personal"
	LeaveEmergency LeaveType = "emergency"
)

// BalanceInfo is a snapshot of a leave balance embedded at submission time.
// Remaining is reduced on submission (the reservation), Used grows on
// approval; rejection and cancellation reverse those mutations.
type BalanceInfo struct {
	AllocatedDays decimal.Decimal `json:"allocated_days"`
	UsedDays      decimal.Decimal `json:"used_days"`
	RemainingDays decimal.Decimal `json:"remaining_days"`
}

// LeaveData is the payload for leave requests.
type LeaveData struct {
	LeaveType              LeaveType   `json:"leave_type"`
	StartDate              dates.Date  `json:"start_date"`
	EndDate                dates.Date  `json:"end_date"`
	DaysRequested          int         `json:"days_requested"`
	Reason                 string      `json:"reason"`
	IsEmergency            bool        `json:"is_emergency"`
	EmergencyJustification string      `json:"emergency_justification,omitempty"`
	Balance                BalanceInfo `json:"balance_info"`
}

// RemoteWorkData is the payload for remote-work requests.
type RemoteWorkData struct {
	RequestedDate  dates.Date `json:"requested_date"`
	Reason         string     `json:"reason"`
	RemoteLocation string     `json:"remote_location"`
	Notes          string     `json:"notes,omitempty"`
}

// CorrectionData is the payload for attendance-correction requests.
// RequestDeadline is fixed at creation time plus the correction window.
type CorrectionData struct {
	RequestedDate   dates.Date `json:"requested_date"`
	Reason          string     `json:"reason"`
	RequestDeadline *time.Time `json:"request_deadline,omitempty"`
}

// =============================================================================
// REQUEST - The polymorphic record
// =============================================================================

// ID identifies a request.
type ID string

// Request is one submitted workflow item. Exactly one payload pointer is
// non-nil, matching Type.
type Request struct {
	ID     ID
	UserID string
	Type   Type
	Status Status

	Leave      *LeaveData
	RemoteWork *RemoteWorkData
	Correction *CorrectionData

	ApprovedBy      *string
	AutoApproved    bool
	ApprovedAt      *time.Time
	ApprovalNotes   string
	RejectionReason string

	// Set if and only if an attendance-correction request reached approval.
	CreatedAttendanceID string

	Notes       string
	RequestedAt time.Time
	UpdatedAt   time.Time
}

// EffectiveDate returns the single date a request targets, or the start of
// the span for leave. Used for type-aware date matching.
func (r *Request) EffectiveDate() dates.Date {
	switch r.Type {
	case TypeLeave:
		return r.Leave.StartDate
	case TypeRemoteWork:
		return r.RemoteWork.RequestedDate
	case TypeCorrection:
		return r.Correction.RequestedDate
	}
	return dates.Date{}
}

// CoversDate reports whether the request targets the given day. Leave matches
// any day in its span; the single-day types match exactly.
func (r *Request) CoversDate(day dates.Date) bool {
	switch r.Type {
	case TypeLeave:
		return dates.Range{Start: r.Leave.StartDate, End: r.Leave.EndDate}.Contains(day)
	case TypeRemoteWork:
		return r.RemoteWork.RequestedDate.Equal(day)
	case TypeCorrection:
		return r.Correction.RequestedDate.Equal(day)
	}
	return false
}

// MarshalPayload encodes the active payload variant as JSON for storage.
func (r *Request) MarshalPayload() ([]byte, error) {
	switch r.Type {
	case TypeLeave:
		return json.Marshal(r.Leave)
	case TypeRemoteWork:
		return json.Marshal(r.RemoteWork)
	case TypeCorrection:
		return json.Marshal(r.Correction)
	}
	return nil, fmt.Errorf("unknown request type %q", r.Type)
}

// UnmarshalPayload decodes stored payload JSON into the variant matching Type.
func (r *Request) UnmarshalPayload(data []byte) error {
	switch r.Type {
	case TypeLeave:
		r.Leave = &LeaveData{}
		return json.Unmarshal(data, r.Leave)
	case TypeRemoteWork:
		r.RemoteWork = &RemoteWorkData{}
		return json.Unmarshal(data, r.RemoteWork)
	case TypeCorrection:
		r.Correction = &CorrectionData{}
		return json.Unmarshal(data, r.Correction)
	}
	return fmt.Errorf("unknown request type %q", r.Type)
}

// =============================================================================
// APPROVER - Human or system
// =============================================================================

// Approver identifies who decided a request. System approvers are used for
// auto-approved types; they bypass the authority check and are recorded as
// auto-approved rather than under a reserved user ID.
type Approver struct {
	ID     string
	System bool
}

// SystemApprover returns the auto-approval actor.
func SystemApprover() Approver { return Approver{System: true} }

// =============================================================================
// LEAVE TYPE CONFIGURATION - Static policy table
// =============================================================================

// LeaveTypeConfig is the static policy attached to each leave type.
type LeaveTypeConfig struct {
	MaxDaysPerYear       int
	RequiresApproval     bool
	CanCarryForward      bool
	MaxCarryForwardDays  int
	MinAdvanceNoticeDays int
}

var leaveTypeConfigs = map[LeaveType]LeaveTypeConfig{
	LeaveAnnual:    {MaxDaysPerYear: 21, RequiresApproval: true, CanCarryForward: true, MaxCarryForwardDays: 5, MinAdvanceNoticeDays: 7},
	LeaveSick:      {MaxDaysPerYear: 10, RequiresApproval: false, CanCarryForward: false, MinAdvanceNoticeDays: 0},
	LeavePersonal:  {MaxDaysPerYear: 5, RequiresApproval: true, CanCarryForward: false, MinAdvanceNoticeDays: 3},
	LeaveEmergency: {MaxDaysPerYear: 3, RequiresApproval: true, CanCarryForward: false, MinAdvanceNoticeDays: 0},
}

// ConfigFor returns the static configuration for a leave type.
func ConfigFor(lt LeaveType) (LeaveTypeConfig, bool) {
	cfg, ok := leaveTypeConfigs[lt]
	return cfg, ok
}

// RequiresApproval reports whether a request of the given shape needs a human
// decision. Only sick leave auto-approves; every other type and shape does not.
func (r *Request) RequiresApproval() bool {
	if r.Type == TypeLeave {
		if cfg, ok := ConfigFor(r.Leave.LeaveType); ok {
			return cfg.RequiresApproval
		}
	}
	return true
}
