package leave

import (
	"testing"
	"time"

	"github.com/trezcool/timeoff/core/holiday"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

func TestWorkdays(t *testing.T) {
	// 2021-06-07 is a Monday
	holidays := []holiday.Holiday{
		{Name: "Fixed", Date: date(2021, time.June, 9), Recurring: false},
		{Name: "Recurring", Date: date(2000, time.June, 30), Recurring: true},
	}

	tests := []struct {
		name     string
		from, to time.Time
		want     int
	}{
		{name: "to before from", from: date(2021, time.June, 11), to: date(2021, time.June, 7), want: 0},
		{name: "single workday", from: date(2021, time.June, 7), to: date(2021, time.June, 7), want: 1},
		{name: "weekend only", from: date(2021, time.June, 5), to: date(2021, time.June, 6), want: 0},
		{name: "full week minus holiday", from: date(2021, time.June, 7), to: date(2021, time.June, 13), want: 4},
		{name: "week without holidays", from: date(2021, time.June, 14), to: date(2021, time.June, 20), want: 5},
		{name: "recurring holiday applies every year", from: date(2022, time.June, 27), to: date(2022, time.July, 3), want: 4},
		{name: "two weeks", from: date(2021, time.June, 14), to: date(2021, time.June, 27), want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Workdays(tt.from, tt.to, holidays); got != tt.want {
				t.Errorf("Workdays() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestRequest_Days(t *testing.T) {
	holidays := []holiday.Holiday{
		{Name: "Fixed", Date: date(2021, time.June, 9), Recurring: false},
	}

	tests := []struct {
		name string
		req  Request
		want float64
	}{
		{
			name: "full week",
			req:  Request{StartDate: date(2021, time.June, 14), EndDate: date(2021, time.June, 18)},
			want: 5,
		},
		{
			name: "start half day",
			req:  Request{StartDate: date(2021, time.June, 14), EndDate: date(2021, time.June, 18), StartHalfDay: true},
			want: 4.5,
		},
		{
			name: "both half days",
			req:  Request{StartDate: date(2021, time.June, 14), EndDate: date(2021, time.June, 18), StartHalfDay: true, EndHalfDay: true},
			want: 4,
		},
		{
			name: "same day",
			req:  Request{StartDate: date(2021, time.June, 14), EndDate: date(2021, time.June, 14)},
			want: 1,
		},
		{
			name: "same half day",
			req:  Request{StartDate: date(2021, time.June, 14), EndDate: date(2021, time.June, 14), StartHalfDay: true},
			want: 0.5,
		},
		{
			name: "half day on weekend boundary ignored",
			req:  Request{StartDate: date(2021, time.June, 12), EndDate: date(2021, time.June, 18), StartHalfDay: true},
			want: 5,
		},
		{
			name: "half day on holiday boundary ignored",
			req:  Request{StartDate: date(2021, time.June, 9), EndDate: date(2021, time.June, 11), StartHalfDay: true},
			want: 2,
		},
		{
			name: "weekend only",
			req:  Request{StartDate: date(2021, time.June, 12), EndDate: date(2021, time.June, 13), StartHalfDay: true},
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.req.Days(holidays); got != tt.want {
				t.Errorf("Days() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to string
		want     bool
	}{
		{from: StatusPending, to: StatusApproved, want: true},
		{from: StatusPending, to: StatusRejected, want: true},
		{from: StatusPending, to: StatusCancelled, want: true},
		{from: StatusApproved, to: StatusCancelled, want: true},
		{from: StatusApproved, to: StatusApproved, want: false},
		{from: StatusApproved, to: StatusRejected, want: false},
		{from: StatusRejected, to: StatusCancelled, want: false},
		{from: StatusCancelled, to: StatusPending, want: false},
		{from: StatusRejected, to: StatusApproved, want: false},
	}
	for _, tt := range tests {
		t.Run(tt.from+" to "+tt.to, func(t *testing.T) {
			if got := CanTransition(tt.from, tt.to); got != tt.want {
				t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestRequest_Overlaps(t *testing.T) {
	req := Request{StartDate: date(2021, time.June, 7), EndDate: date(2021, time.June, 11)}

	tests := []struct {
		name     string
		from, to time.Time
		want     bool
	}{
		{name: "inside", from: date(2021, time.June, 8), to: date(2021, time.June, 9), want: true},
		{name: "covers", from: date(2021, time.June, 1), to: date(2021, time.June, 30), want: true},
		{name: "touches start", from: date(2021, time.June, 1), to: date(2021, time.June, 7), want: true},
		{name: "touches end", from: date(2021, time.June, 11), to: date(2021, time.June, 20), want: true},
		{name: "before", from: date(2021, time.June, 1), to: date(2021, time.June, 6), want: false},
		{name: "after", from: date(2021, time.June, 12), to: date(2021, time.June, 20), want: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := req.Overlaps(tt.from, tt.to); got != tt.want {
				t.Errorf("Overlaps() = %v, want %v", got, tt.want)
			}
		})
	}
}
