package leave

import (
	"time"

	"github.com/trezcool/timeoff/core"
	"github.com/trezcool/timeoff/core/holiday"
)

// Leave types
const (
	TypeVacation = "vacation"
	TypeSick     = "sick"
	TypePersonal = "personal"
	TypeUnpaid   = "unpaid"
)

// Request statuses
const (
	StatusPending   = "pending"
	StatusApproved  = "approved"
	StatusRejected  = "rejected"
	StatusCancelled = "cancelled"
)

var (
	AllTypes = []string{TypeVacation, TypeSick, TypePersonal, TypeUnpaid}

	// statusTransitions lists the statuses a request may move to.
	// rejected and cancelled are terminal.
	statusTransitions = map[string][]string{
		StatusPending:  {StatusApproved, StatusRejected, StatusCancelled},
		StatusApproved: {StatusCancelled},
	}
)

// CanTransition reports whether a request status may move from `from` to `to`.
func CanTransition(from, to string) bool {
	for _, s := range statusTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Request is an employee's leave request.
type Request struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employee_id"`
	Type         string    `json:"type"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	StartHalfDay bool      `json:"start_half_day"`
	EndHalfDay   bool      `json:"end_half_day"`
	Reason       string    `json:"reason"`
	Status       string    `json:"status"`
	ReviewerID   string    `json:"reviewer_id,omitempty"`
	ReviewedAt   time.Time `json:"reviewed_at,omitempty"`
	ReviewNote   string    `json:"review_note,omitempty"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// Overlaps reports whether the request range intersects [from, to].
func (r Request) Overlaps(from, to time.Time) bool {
	return !r.StartDate.After(to) && !r.EndDate.Before(from)
}

// Open reports whether the request still blocks its date range
// (pending or approved).
func (r Request) Open() bool {
	return r.Status == StatusPending || r.Status == StatusApproved
}

// Days returns the number of working days the request covers, applying
// half-day adjustments on the boundary days. Weekends and the given
// holidays do not count.
func (r Request) Days(holidays []holiday.Holiday) float64 {
	days := float64(Workdays(r.StartDate, r.EndDate, holidays))
	if days == 0 {
		return 0
	}

	sameDay := r.StartDate.Equal(r.EndDate)
	if sameDay {
		if r.StartHalfDay || r.EndHalfDay {
			days -= 0.5
		}
		return days
	}
	if r.StartHalfDay && isWorkday(r.StartDate, holidays) {
		days -= 0.5
	}
	if r.EndHalfDay && isWorkday(r.EndDate, holidays) {
		days -= 0.5
	}
	return days
}

func isWorkday(day time.Time, holidays []holiday.Holiday) bool {
	switch day.Weekday() {
	case time.Saturday, time.Sunday:
		return false
	}
	return !holiday.IsHoliday(day, holidays)
}

// Workdays counts the working days in [from, to]: Monday to Friday minus holidays.
func Workdays(from, to time.Time, holidays []holiday.Holiday) int {
	if to.Before(from) {
		return 0
	}
	var count int
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if isWorkday(day, holidays) {
			count++
		}
	}
	return count
}

// NewRequest contains information needed to create a new leave Request.
type NewRequest struct {
	EmployeeID   string    `json:"employee_id"` // defaults to the requester
	Type         string    `json:"type" validate:"required,oneof=vacation sick personal unpaid"`
	StartDate    time.Time `json:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" validate:"required,dateafter=StartDate"`
	StartHalfDay bool      `json:"start_half_day"`
	EndHalfDay   bool      `json:"end_half_day"`
	Reason       string    `json:"reason"`
}

func (nr *NewRequest) Validate() error {
	nr.Reason = core.CleanString(nr.Reason)
	return core.Validate.Struct(nr)
}

// UpdateRequest defines what information may be provided to modify a pending Request.
type UpdateRequest struct {
	Type         string    `json:"type" validate:"omitempty,oneof=vacation sick personal unpaid"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date" validate:"omitempty,dateafter=StartDate"`
	StartHalfDay *bool     `json:"start_half_day"`
	EndHalfDay   *bool     `json:"end_half_day"`
	Reason       string    `json:"reason"`
}

func (ur *UpdateRequest) Validate() error {
	ur.Reason = core.CleanString(ur.Reason)
	return core.Validate.Struct(ur)
}

// ReviewRequest is a manager's decision on a pending Request.
type ReviewRequest struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
	Note   string `json:"note"`
}

func (rr *ReviewRequest) Validate() error {
	rr.Note = core.CleanString(rr.Note)
	return core.Validate.Struct(rr)
}

// Balance summarizes an employee's vacation allowance for a year.
type Balance struct {
	EmployeeID string  `json:"employee_id"`
	Year       int     `json:"year"`
	Allowance  float64 `json:"allowance"`
	Used       float64 `json:"used"`
	Remaining  float64 `json:"remaining"`
}

type QueryFilter struct {
	EmployeeID string    `query:"employee_id"`
	Status     string    `query:"status"`
	Type       string    `query:"type"`
	From       time.Time `query:"from"`
	To         time.Time `query:"to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.EmployeeID == "" && qf.Status == "" && qf.Type == "" && qf.From.IsZero() && qf.To.IsZero()
}
