package assignment

import (
	"time"

	"github.com/trezcool/timeoff/core"
)

// Assignment allocates part of an employee's week to a project over a date range.
type Assignment struct {
	ID           string    `json:"id"`
	EmployeeID   string    `json:"employee_id"`
	ProjectID    string    `json:"project_id"`
	HoursPerWeek float64   `json:"hours_per_week"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
	Note         string    `json:"note"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// Overlaps reports whether the assignment range intersects [from, to].
func (a Assignment) Overlaps(from, to time.Time) bool {
	return !a.StartDate.After(to) && !a.EndDate.Before(from)
}

// NewAssignment contains information needed to create a new Assignment.
type NewAssignment struct {
	EmployeeID   string    `json:"employee_id" validate:"required"`
	ProjectID    string    `json:"project_id" validate:"required"`
	HoursPerWeek float64   `json:"hours_per_week" validate:"required,gt=0"`
	StartDate    time.Time `json:"start_date" validate:"required"`
	EndDate      time.Time `json:"end_date" validate:"required,dateafter=StartDate"`
	Note         string    `json:"note"`
}

func (na *NewAssignment) Validate() error {
	na.Note = core.CleanString(na.Note)
	return core.Validate.Struct(na)
}

// UpdateAssignment defines what information may be provided to modify an existing Assignment.
type UpdateAssignment struct {
	HoursPerWeek float64   `json:"hours_per_week" validate:"omitempty,gt=0"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date" validate:"omitempty,dateafter=StartDate"`
	Note         string    `json:"note"`
}

func (ua *UpdateAssignment) Validate() error {
	ua.Note = core.CleanString(ua.Note)
	return core.Validate.Struct(ua)
}

type QueryFilter struct {
	EmployeeID string    `query:"employee_id"`
	ProjectID  string    `query:"project_id"`
	From       time.Time `query:"from"`
	To         time.Time `query:"to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.EmployeeID == "" && qf.ProjectID == "" && qf.From.IsZero() && qf.To.IsZero()
}
