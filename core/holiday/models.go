package holiday

import (
	"time"

	"github.com/trezcool/timeoff/core"
)

// Holiday is a public (non-working) day. Recurring holidays repeat every
// year on the same month and day.
type Holiday struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Date      time.Time `json:"date"` // UTC midnight
	Recurring bool      `json:"recurring"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// Matches reports whether the holiday falls on the given day.
func (h Holiday) Matches(day time.Time) bool {
	if h.Recurring {
		return h.Date.Month() == day.Month() && h.Date.Day() == day.Day()
	}
	return h.Date.Year() == day.Year() && h.Date.Month() == day.Month() && h.Date.Day() == day.Day()
}

// IsHoliday reports whether day matches any of the given holidays.
func IsHoliday(day time.Time, holidays []Holiday) bool {
	for _, h := range holidays {
		if h.Matches(day) {
			return true
		}
	}
	return false
}

// NewHoliday contains information needed to create a new Holiday.
type NewHoliday struct {
	Name      string    `json:"name" validate:"required"`
	Date      time.Time `json:"date" validate:"required"`
	Recurring bool      `json:"recurring"`
}

func (nh *NewHoliday) Validate() error {
	nh.Name = core.CleanString(nh.Name)
	return core.Validate.Struct(nh)
}

// UpdateHoliday defines what information may be provided to modify an existing Holiday.
type UpdateHoliday struct {
	Name      string    `json:"name"`
	Date      time.Time `json:"date"`
	Recurring *bool     `json:"recurring"`
}

func (uh *UpdateHoliday) Validate(orig Holiday) error {
	if name := core.CleanString(uh.Name); name != "" {
		uh.Name = name
	} else {
		uh.Name = orig.Name
	}
	if uh.Date.IsZero() {
		uh.Date = orig.Date
	}
	return core.Validate.Struct(uh)
}

type QueryFilter struct {
	Year int       `query:"year"`
	From time.Time `query:"from"`
	To   time.Time `query:"to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Year == 0 && qf.From.IsZero() && qf.To.IsZero()
}
