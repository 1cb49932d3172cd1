package analytics

import (
	"time"

	"github.com/trezcool/timeoff/core"
)

// Filter selects the assignment rows a Report is computed from. All facet
// filters apply with AND; values within one facet apply with OR.
type Filter struct {
	From        time.Time `query:"from" json:"from" validate:"required"`
	To          time.Time `query:"to" json:"to" validate:"required,dateafter=From"`
	ProjectIDs  []string  `query:"project_id" json:"project_ids"`
	Clients     []string  `query:"client" json:"clients"`
	Categories  []string  `query:"category" json:"categories"`
	EmployeeIDs []string  `query:"employee_id" json:"employee_ids"`
	// DeductLeave subtracts approved leave days from the assigned hours.
	DeductLeave bool `query:"deduct_leave" json:"deduct_leave"`
}

func (f *Filter) Validate() error { return core.Validate.Struct(f) }

// Bucket is one facet value with its share of the filtered hours.
type Bucket struct {
	Key   string  `json:"key"`
	Name  string  `json:"name"`
	Hours float64 `json:"hours"`
}

// Report breaks the filtered hours down by every facet. All breakdowns are
// computed from the same row set, so each one sums up to TotalHours.
type Report struct {
	From        time.Time `json:"from"`
	To          time.Time `json:"to"`
	TotalHours  float64   `json:"total_hours"`
	ByProject   []Bucket  `json:"by_project"`
	ByClient    []Bucket  `json:"by_client"`
	ByCategory  []Bucket  `json:"by_category"`
	ByEmployee  []Bucket  `json:"by_employee"`
}

// CalendarEntry kinds
const (
	EntryHoliday = "holiday"
	EntryLeave   = "leave"
)

// CalendarEntry is one schedule item in the merged calendar view.
type CalendarEntry struct {
	Kind         string    `json:"kind"`
	Name         string    `json:"name"`
	EmployeeID   string    `json:"employee_id,omitempty"`
	EmployeeName string    `json:"employee_name,omitempty"`
	LeaveType    string    `json:"leave_type,omitempty"`
	LeaveStatus  string    `json:"leave_status,omitempty"`
	StartDate    time.Time `json:"start_date"`
	EndDate      time.Time `json:"end_date"`
}
