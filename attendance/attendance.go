/*
Package attendance defines the boundary to the daily attendance record system.

PURPOSE:
  The request engine does not own attendance records; it only needs two
  capabilities from whoever does:
  - "does a record already exist for this user on this date?"
  - "create a record for this user on this date"

  Both are used by the attendance-correction approval path. Everything else
  about attendance (clock-in/out, geofencing, schedules) lives outside this
  module.

UNIQUENESS:
  Implementations MUST enforce one record per (user, date) at the storage
  layer. The engine's exists-then-create sequence is a fast path and a better
  error message; the unique constraint is the actual correctness mechanism
  when two approvals race.

SEE ALSO:
  - request/service.go: The only consumer (approval effects)
  - store/sqlite: Production Sink implementation
*/
package attendance

import (
	"context"
	"errors"
	"time"

	"github.com/warp/attendance-engine/dates"
)

// ErrDuplicateDate is returned when a record already exists for (user, date).
var ErrDuplicateDate = errors.New("attendance record already exists for date")

// ErrRecordNotFound is returned for unknown record IDs.
var ErrRecordNotFound = errors.New("attendance record not found")

// Status of a daily attendance record.
type Status string

const (
	StatusPresent Status = "present"
	StatusAbsent  Status = "absent"
	StatusLeave   Status = "leave"
)

// WorkLocation of a daily attendance record.
type WorkLocation string

const (
	LocationOffice WorkLocation = "office"
	LocationRemote WorkLocation = "remote"
)

// Record is a single daily attendance row.
type Record struct {
	ID           string
	UserID       string
	Date         dates.Date
	Status       Status
	TotalHours   float64
	IsFlagged    bool
	FlagReason   string
	WorkLocation WorkLocation
	CreatedAt    time.Time
}

// Sink is the engine's view of the attendance record system.
type Sink interface {
	// ExistsForDate reports whether a record exists for the user on the day.
	ExistsForDate(ctx context.Context, userID string, day dates.Date) (bool, error)

	// Create persists a record. Returns ErrDuplicateDate if one already
	// exists for (UserID, Date).
	Create(ctx context.Context, record Record) (*Record, error)

	// Get returns a record by ID, or ErrRecordNotFound.
	Get(ctx context.Context, id string) (*Record, error)
}
