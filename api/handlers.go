/*
handlers.go - HTTP API handlers for the attendance request engine

PURPOSE:
  Exposes the hierarchy graph and request engine via REST. Handles HTTP
  request/response, JSON serialization, and delegates everything else to the
  domain services.

CALLER IDENTITY:
  Authentication is out of scope for this module; an upstream gateway is
  expected to authenticate and set X-User-ID. Handlers read that header for
  submitter/approver identity and reject requests without it.

ERROR HANDLING:
  Engine errors are classified and mapped to HTTP statuses:
  - 400: validation failures
  - 403: missing authority / not the submitter
  - 404: unknown request or edge
  - 409: conflicts, duplicate dates, already-processed transitions
  - 500: everything else

SEE ALSO:
  - dto.go:    Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/warp/attendance-engine/attendance"
	"github.com/warp/attendance-engine/dates"
	"github.com/warp/attendance-engine/hierarchy"
	"github.com/warp/attendance-engine/request"
)

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Hierarchy *hierarchy.Service
	Requests  *request.Service
	Sink      attendance.Sink
	Seeder    *Seeder
}

// NewHandler creates a handler over the domain services.
func NewHandler(h *hierarchy.Service, r *request.Service, sink attendance.Sink, seeder *Seeder) *Handler {
	return &Handler{Hierarchy: h, Requests: r, Sink: sink, Seeder: seeder}
}

// callerID extracts the authenticated user from the gateway header.
func callerID(r *http.Request) string {
	return r.Header.Get("X-User-ID")
}

// =============================================================================
// HIERARCHY HANDLERS
// =============================================================================

func (h *Handler) CreateEdge(w http.ResponseWriter, r *http.Request) {
	var body CreateEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	start, err := dates.Parse(body.StartDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid start_date", err)
		return
	}
	var end *dates.Date
	if body.EndDate != nil {
		d, err := dates.Parse(*body.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_date", err)
			return
		}
		end = &d
	}

	edge, err := h.Hierarchy.CreateEdge(r.Context(), body.EmployeeID, body.ManagerID, start, end, body.AssignedBy)
	if err != nil {
		writeHierarchyError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toEdgeDTO(edge))
}

func (h *Handler) UpdateEdge(w http.ResponseWriter, r *http.Request) {
	id := hierarchy.EdgeID(chi.URLParam(r, "id"))

	var body UpdateEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	var start, end *dates.Date
	if body.StartDate != nil {
		d, err := dates.Parse(*body.StartDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid start_date", err)
			return
		}
		start = &d
	}
	if body.EndDate != nil {
		d, err := dates.Parse(*body.EndDate)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid end_date", err)
			return
		}
		end = &d
	}

	edge, err := h.Hierarchy.UpdateEdge(r.Context(), id, body.ManagerID, start, end)
	if err != nil {
		writeHierarchyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEdgeDTO(edge))
}

func (h *Handler) EndEdge(w http.ResponseWriter, r *http.Request) {
	id := hierarchy.EdgeID(chi.URLParam(r, "id"))

	var body EndEdgeRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	end, err := dates.Parse(body.EndDate)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid end_date", err)
		return
	}

	edge, err := h.Hierarchy.EndEdge(r.Context(), id, end)
	if err != nil {
		writeHierarchyError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toEdgeDTO(edge))
}

func (h *Handler) GetManager(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	edge, err := h.Hierarchy.CurrentManagerOf(r.Context(), employeeID, dates.Today())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve manager", err)
		return
	}
	if edge == nil {
		writeError(w, http.StatusNotFound, "Employee has no current manager", nil)
		return
	}
	writeJSON(w, http.StatusOK, toEdgeDTO(edge))
}

func (h *Handler) GetTeam(w http.ResponseWriter, r *http.Request) {
	managerID := chi.URLParam(r, "id")

	edges, err := h.Hierarchy.CurrentTeamOf(r.Context(), managerID, dates.Today())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve team", err)
		return
	}
	dtos := make([]EdgeDTO, len(edges))
	for i := range edges {
		dtos[i] = toEdgeDTO(&edges[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetEdgeHistory(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")

	edges, err := h.Hierarchy.EdgeHistoryOf(r.Context(), employeeID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load edge history", err)
		return
	}
	dtos := make([]EdgeDTO, len(edges))
	for i := range edges {
		dtos[i] = toEdgeDTO(&edges[i])
	}
	writeJSON(w, http.StatusOK, dtos)
}

func (h *Handler) GetChain(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	depth := queryInt(r, "depth", hierarchy.MaxTraversalDepth)

	chain, err := h.Hierarchy.ReportingChain(r.Context(), employeeID, depth)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to walk reporting chain", err)
		return
	}
	writeJSON(w, http.StatusOK, ChainDTO{EmployeeID: employeeID, Chain: chain})
}

func (h *Handler) GetSubordinates(w http.ResponseWriter, r *http.Request) {
	managerID := chi.URLParam(r, "id")
	depth := queryInt(r, "depth", hierarchy.MaxTraversalDepth)

	set, err := h.Hierarchy.AllSubordinates(r.Context(), managerID, depth)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to resolve subordinates", err)
		return
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	writeJSON(w, http.StatusOK, SubordinatesDTO{ManagerID: managerID, Subordinates: ids})
}

// =============================================================================
// REQUEST HANDLERS
// =============================================================================

func (h *Handler) CreateRequest(w http.ResponseWriter, r *http.Request) {
	userID := callerID(r)
	if userID == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-ID header", nil)
		return
	}

	var body CreateRequestRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	req, err := buildRequest(userID, body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	created, err := h.Requests.Create(r.Context(), req)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toRequestDTO(created))
}

// buildRequest converts the wire payload into an unsubmitted Request.
func buildRequest(userID string, body CreateRequestRequest) (*request.Request, error) {
	switch request.Type(body.Type) {
	case request.TypeLeave:
		if body.Leave == nil {
			return nil, errors.New("leave payload required")
		}
		start, err := dates.Parse(body.Leave.StartDate)
		if err != nil {
			return nil, err
		}
		end, err := dates.Parse(body.Leave.EndDate)
		if err != nil {
			return nil, err
		}
		return request.NewLeave(userID, request.LeaveData{
			LeaveType:              request.LeaveType(body.Leave.LeaveType),
			StartDate:              start,
			EndDate:                end,
			DaysRequested:          body.Leave.DaysRequested,
			Reason:                 body.Leave.Reason,
			IsEmergency:            body.Leave.IsEmergency,
			EmergencyJustification: body.Leave.EmergencyJustification,
			Balance:                toBalance(body.Leave.Balance),
		}, body.Notes), nil

	case request.TypeRemoteWork:
		if body.RemoteWork == nil {
			return nil, errors.New("remote_work payload required")
		}
		day, err := dates.Parse(body.RemoteWork.RequestedDate)
		if err != nil {
			return nil, err
		}
		return request.NewRemoteWork(userID, request.RemoteWorkData{
			RequestedDate:  day,
			Reason:         body.RemoteWork.Reason,
			RemoteLocation: body.RemoteWork.RemoteLocation,
			Notes:          body.RemoteWork.Notes,
		}, body.Notes), nil

	case request.TypeCorrection:
		if body.Correction == nil {
			return nil, errors.New("attendance_correction payload required")
		}
		day, err := dates.Parse(body.Correction.RequestedDate)
		if err != nil {
			return nil, err
		}
		return request.NewCorrection(userID, request.CorrectionData{
			RequestedDate: day,
			Reason:        body.Correction.Reason,
		}, body.Notes), nil
	}
	return nil, errors.New("unknown request type")
}

func (h *Handler) GetRequest(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-ID header", nil)
		return
	}

	req, err := h.Requests.Get(r.Context(), request.ID(chi.URLParam(r, "id")), caller)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

func (h *Handler) ListRequests(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-ID header", nil)
		return
	}

	f, err := parseFilter(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	reqs, err := h.Requests.List(r.Context(), caller, f)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(reqs))
}

func (h *Handler) ApproveRequest(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-ID header", nil)
		return
	}

	var body DecisionRequest
	if r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}

	req, err := h.Requests.Approve(r.Context(), request.ID(chi.URLParam(r, "id")),
		request.Approver{ID: caller}, body.Notes)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

func (h *Handler) RejectRequest(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-ID header", nil)
		return
	}

	var body DecisionRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if body.Reason == "" {
		writeError(w, http.StatusBadRequest, "Rejection reason is required", nil)
		return
	}

	req, err := h.Requests.Reject(r.Context(), request.ID(chi.URLParam(r, "id")),
		request.Approver{ID: caller}, body.Reason)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

func (h *Handler) CancelRequest(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-ID header", nil)
		return
	}

	req, err := h.Requests.Cancel(r.Context(), request.ID(chi.URLParam(r, "id")), caller)
	if err != nil {
		writeRequestError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTO(req))
}

func (h *Handler) ListPendingForManager(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-ID header", nil)
		return
	}

	reqs, err := h.Requests.PendingForManager(r.Context(), caller, request.Type(r.URL.Query().Get("type")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list pending requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(reqs))
}

func (h *Handler) ListTeamRequests(w http.ResponseWriter, r *http.Request) {
	caller := callerID(r)
	if caller == "" {
		writeError(w, http.StatusUnauthorized, "Missing X-User-ID header", nil)
		return
	}

	rng, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}

	reqs, err := h.Requests.TeamRequests(r.Context(), caller, request.Type(r.URL.Query().Get("type")), rng)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list team requests", err)
		return
	}
	writeJSON(w, http.StatusOK, toRequestDTOs(reqs))
}

func (h *Handler) GetStatistics(w http.ResponseWriter, r *http.Request) {
	rng, err := parseRange(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error(), nil)
		return
	}
	if rng == nil {
		writeError(w, http.StatusBadRequest, "from and to query parameters are required", nil)
		return
	}

	stats, err := h.Requests.Statistics(r.Context(), *rng,
		r.URL.Query().Get("manager"), request.Type(r.URL.Query().Get("type")))
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to compute statistics", err)
		return
	}
	writeJSON(w, http.StatusOK, StatsDTO{
		From:         stats.Range.Start.String(),
		To:           stats.Range.End.String(),
		Total:        stats.Total,
		Pending:      stats.Pending,
		Approved:     stats.Approved,
		Rejected:     stats.Rejected,
		Cancelled:    stats.Cancelled,
		ApprovalRate: stats.ApprovalRate,
	})
}

// =============================================================================
// ATTENDANCE HANDLERS
// =============================================================================

func (h *Handler) GetAttendanceRecord(w http.ResponseWriter, r *http.Request) {
	record, err := h.Sink.Get(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, attendance.ErrRecordNotFound) {
		writeError(w, http.StatusNotFound, "Attendance record not found", nil)
		return
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to get attendance record", err)
		return
	}
	writeJSON(w, http.StatusOK, toRecordDTO(record))
}

// =============================================================================
// DEMO SEED
// =============================================================================

func (h *Handler) LoadDemo(w http.ResponseWriter, r *http.Request) {
	if h.Seeder == nil {
		writeError(w, http.StatusNotFound, "Demo data not enabled", nil)
		return
	}
	summary, err := h.Seeder.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load demo data", err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// =============================================================================
// HELPERS
// =============================================================================

func parseFilter(r *http.Request) (request.Filter, error) {
	f := request.Filter{
		Type:   request.Type(r.URL.Query().Get("type")),
		Status: request.Status(r.URL.Query().Get("status")),
		Limit:  queryInt(r, "limit", 0),
	}
	rng, err := parseRange(r)
	if err != nil {
		return f, err
	}
	f.DateRange = rng
	return f, nil
}

func parseRange(r *http.Request) (*dates.Range, error) {
	fromStr, toStr := r.URL.Query().Get("from"), r.URL.Query().Get("to")
	if fromStr == "" && toStr == "" {
		return nil, nil
	}
	if fromStr == "" || toStr == "" {
		return nil, errors.New("both from and to are required for a date range")
	}
	from, err := dates.Parse(fromStr)
	if err != nil {
		return nil, err
	}
	to, err := dates.Parse(toStr)
	if err != nil {
		return nil, err
	}
	rng, err := dates.NewRange(from, to)
	if err != nil {
		return nil, err
	}
	return &rng, nil
}

func queryInt(r *http.Request, name string, def int) int {
	if v := r.URL.Query().Get(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	if err != nil {
		log.Printf("%s: %v", message, err)
	}
	writeJSON(w, status, ErrorResponse{Error: message})
}

// writeRequestError maps engine error classes to HTTP statuses.
func writeRequestError(w http.ResponseWriter, err error) {
	switch {
	case request.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})
	case request.IsPermission(err), errors.Is(err, request.ErrNotSubmitter):
		writeJSON(w, http.StatusForbidden, ErrorResponse{Error: err.Error(), Code: "forbidden"})
	case request.IsConflict(err):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "conflict"})
	case errors.Is(err, request.ErrValidation):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation"})
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}

func writeHierarchyError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, hierarchy.ErrEdgeNotFound):
		writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error(), Code: "not_found"})
	case errors.Is(err, hierarchy.ErrSelfReport), errors.Is(err, hierarchy.ErrInvalidInterval):
		writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error(), Code: "validation"})
	case errors.Is(err, hierarchy.ErrCircularHierarchy), errors.Is(err, hierarchy.ErrDuplicateActiveEdge):
		writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error(), Code: "conflict"})
	default:
		writeError(w, http.StatusInternalServerError, "Internal error", err)
	}
}
