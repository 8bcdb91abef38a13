/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication, decoupling the internal
  domain model from the external contract. Dates travel as ISO strings,
  balance day counts as floats (decimal internally).

NAMING CONVENTION:
  - *DTO:     Response types returned to clients
  - *Request: Request body types from clients

VALIDATION:
  Validation is done in handlers and the engine, not in DTOs. DTOs are pure
  data carriers.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/hierarchy"
	"github.com/warp/attendance-engine/request"
)

// =============================================================================
// HIERARCHY TYPES
// =============================================================================

// EdgeDTO represents a reporting edge in API responses.
type EdgeDTO struct {
	ID         string  `json:"id"`
	EmployeeID string  `json:"employee_id"`
	ManagerID  string  `json:"manager_id"`
	StartDate  string  `json:"start_date"`
	EndDate    *string `json:"end_date,omitempty"`
	AssignedBy string  `json:"assigned_by,omitempty"`
	CreatedAt  string  `json:"created_at,omitempty"`
}

// CreateEdgeRequest is the request to create a reporting edge.
type CreateEdgeRequest struct {
	EmployeeID string  `json:"employee_id"`
	ManagerID  string  `json:"manager_id"`
	StartDate  string  `json:"start_date"`
	EndDate    *string `json:"end_date,omitempty"`
	AssignedBy string  `json:"assigned_by,omitempty"`
}

// UpdateEdgeRequest is the request to mutate an edge.
type UpdateEdgeRequest struct {
	ManagerID *string `json:"manager_id,omitempty"`
	StartDate *string `json:"start_date,omitempty"`
	EndDate   *string `json:"end_date,omitempty"`
}

// EndEdgeRequest closes an edge.
type EndEdgeRequest struct {
	EndDate string `json:"end_date"`
}

// ChainDTO is a reporting chain response.
type ChainDTO struct {
	EmployeeID string   `json:"employee_id"`
	Chain      []string `json:"chain"`
}

// SubordinatesDTO is a transitive-team response.
type SubordinatesDTO struct {
	ManagerID    string   `json:"manager_id"`
	Subordinates []string `json:"subordinates"`
}

// =============================================================================
// REQUEST TYPES
// =============================================================================

// BalanceDTO mirrors the leave balance snapshot.
type BalanceDTO struct {
	AllocatedDays float64 `json:"allocated_days"`
	UsedDays      float64 `json:"used_days"`
	RemainingDays float64 `json:"remaining_days"`
}

// LeaveDataDTO is the leave payload on the wire.
type LeaveDataDTO struct {
	LeaveType              string     `json:"leave_type"`
	StartDate              string     `json:"start_date"`
	EndDate                string     `json:"end_date"`
	DaysRequested          int        `json:"days_requested"`
	Reason                 string     `json:"reason"`
	IsEmergency            bool       `json:"is_emergency"`
	EmergencyJustification string     `json:"emergency_justification,omitempty"`
	Balance                BalanceDTO `json:"balance_info"`
}

// RemoteWorkDataDTO is the remote-work payload on the wire.
type RemoteWorkDataDTO struct {
	RequestedDate  string `json:"requested_date"`
	Reason         string `json:"reason"`
	RemoteLocation string `json:"remote_location"`
	Notes          string `json:"notes,omitempty"`
}

// CorrectionDataDTO is the attendance-correction payload on the wire.
type CorrectionDataDTO struct {
	RequestedDate   string  `json:"requested_date"`
	Reason          string  `json:"reason"`
	RequestDeadline *string `json:"request_deadline,omitempty"`
}

// CreateRequestRequest submits a new request. Exactly one payload must be
// present, matching Type.
type CreateRequestRequest struct {
	Type       string             `json:"type"`
	Notes      string             `json:"notes,omitempty"`
	Leave      *LeaveDataDTO      `json:"leave,omitempty"`
	RemoteWork *RemoteWorkDataDTO `json:"remote_work,omitempty"`
	Correction *CorrectionDataDTO `json:"attendance_correction,omitempty"`
}

// DecisionRequest carries approval notes or a rejection reason.
type DecisionRequest struct {
	Notes  string `json:"notes,omitempty"`
	Reason string `json:"reason,omitempty"`
}

// RequestDTO represents a request in API responses.
type RequestDTO struct {
	ID                  string             `json:"id"`
	UserID              string             `json:"user_id"`
	Type                string             `json:"type"`
	Status              string             `json:"status"`
	Leave               *LeaveDataDTO      `json:"leave,omitempty"`
	RemoteWork          *RemoteWorkDataDTO `json:"remote_work,omitempty"`
	Correction          *CorrectionDataDTO `json:"attendance_correction,omitempty"`
	ApprovedBy          *string            `json:"approved_by,omitempty"`
	AutoApproved        bool               `json:"auto_approved,omitempty"`
	ApprovedAt          *string            `json:"approved_at,omitempty"`
	ApprovalNotes       string             `json:"approval_notes,omitempty"`
	RejectionReason     string             `json:"rejection_reason,omitempty"`
	CreatedAttendanceID string             `json:"created_attendance_id,omitempty"`
	Notes               string             `json:"notes,omitempty"`
	RequestedAt         string             `json:"requested_at"`
}

// StatsDTO is the statistics response.
type StatsDTO struct {
	From         string `json:"from"`
	To           string `json:"to"`
	Total        int    `json:"total"`
	Pending      int    `json:"pending"`
	Approved     int    `json:"approved"`
	Rejected     int    `json:"rejected"`
	Cancelled    int    `json:"cancelled"`
	ApprovalRate int    `json:"approval_rate"`
}

// AttendanceRecordDTO represents a daily attendance row.
type AttendanceRecordDTO struct {
	ID           string  `json:"id"`
	UserID       string  `json:"user_id"`
	Date         string  `json:"date"`
	Status       string  `json:"status"`
	TotalHours   float64 `json:"total_hours"`
	IsFlagged    bool    `json:"is_flagged"`
	FlagReason   string  `json:"flag_reason,omitempty"`
	WorkLocation string  `json:"work_location"`
}

// ErrorResponse is the standard error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// =============================================================================
// CONVERSION HELPERS
// =============================================================================

func toEdgeDTO(edge *hierarchy.Edge) EdgeDTO {
	dto := EdgeDTO{
		ID:         string(edge.ID),
		EmployeeID: edge.EmployeeID,
		ManagerID:  edge.ManagerID,
		StartDate:  edge.StartDate.String(),
		AssignedBy: edge.AssignedBy,
		CreatedAt:  edge.CreatedAt.Format(time.RFC3339),
	}
	if edge.EndDate != nil {
		s := edge.EndDate.String()
		dto.EndDate = &s
	}
	return dto
}

func toRequestDTO(req *request.Request) RequestDTO {
	dto := RequestDTO{
		ID:                  string(req.ID),
		UserID:              req.UserID,
		Type:                string(req.Type),
		Status:              string(req.Status),
		ApprovedBy:          req.ApprovedBy,
		AutoApproved:        req.AutoApproved,
		ApprovalNotes:       req.ApprovalNotes,
		RejectionReason:     req.RejectionReason,
		CreatedAttendanceID: req.CreatedAttendanceID,
		Notes:               req.Notes,
		RequestedAt:         req.RequestedAt.Format(time.RFC3339),
	}
	if req.ApprovedAt != nil {
		s := req.ApprovedAt.Format(time.RFC3339)
		dto.ApprovedAt = &s
	}

	switch req.Type {
	case request.TypeLeave:
		dto.Leave = &LeaveDataDTO{
			LeaveType:              string(req.Leave.LeaveType),
			StartDate:              req.Leave.StartDate.String(),
			EndDate:                req.Leave.EndDate.String(),
			DaysRequested:          req.Leave.DaysRequested,
			Reason:                 req.Leave.Reason,
			IsEmergency:            req.Leave.IsEmergency,
			EmergencyJustification: req.Leave.EmergencyJustification,
			Balance: BalanceDTO{
				AllocatedDays: req.Leave.Balance.AllocatedDays.InexactFloat64(),
				UsedDays:      req.Leave.Balance.UsedDays.InexactFloat64(),
				RemainingDays: req.Leave.Balance.RemainingDays.InexactFloat64(),
			},
		}
	case request.TypeRemoteWork:
		dto.RemoteWork = &RemoteWorkDataDTO{
			RequestedDate:  req.RemoteWork.RequestedDate.String(),
			Reason:         req.RemoteWork.Reason,
			RemoteLocation: req.RemoteWork.RemoteLocation,
			Notes:          req.RemoteWork.Notes,
		}
	case request.TypeCorrection:
		c := &CorrectionDataDTO{
			RequestedDate: req.Correction.RequestedDate.String(),
			Reason:        req.Correction.Reason,
		}
		if req.Correction.RequestDeadline != nil {
			s := req.Correction.RequestDeadline.Format(time.RFC3339)
			c.RequestDeadline = &s
		}
		dto.Correction = c
	}
	return dto
}

func toRequestDTOs(reqs []*request.Request) []RequestDTO {
	dtos := make([]RequestDTO, len(reqs))
	for i, req := range reqs {
		dtos[i] = toRequestDTO(req)
	}
	return dtos
}

func toRecordDTO(record *attendance.Record) AttendanceRecordDTO {
	return AttendanceRecordDTO{
		ID:           record.ID,
		UserID:       record.UserID,
		Date:         record.Date.String(),
		Status:       string(record.Status),
		TotalHours:   record.TotalHours,
		IsFlagged:    record.IsFlagged,
		FlagReason:   record.FlagReason,
		WorkLocation: string(record.WorkLocation),
	}
}

func toBalance(dto BalanceDTO) request.BalanceInfo {
	return request.BalanceInfo{
		AllocatedDays: decimal.NewFromFloat(dto.AllocatedDays),
		UsedDays:      decimal.NewFromFloat(dto.UsedDays),
		RemainingDays: decimal.NewFromFloat(dto.RemainingDays),
	}
}
