package analytics

import (
	"math"
	"testing"
	"time"

	"github.com/trezcool/timeoff/core/assignment"
	"github.com/trezcool/timeoff/core/employee"
	"github.com/trezcool/timeoff/core/holiday"
	"github.com/trezcool/timeoff/core/leave"
	"github.com/trezcool/timeoff/core/project"
)

func date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// testInput covers two weeks (2021-06-07 to 2021-06-18, 10 workdays):
//   - alice on p1 (Acme/dev) at 20h/week for both weeks        -> 40h
//   - bob on p1 (Acme/dev) at 10h/week for the first week only -> 10h
//   - bob on p2 (Globex/design) at 40h/week for both weeks     -> 80h
func testInput() reportInput {
	return reportInput{
		assignments: []assignment.Assignment{
			{ID: "a1", EmployeeID: "alice", ProjectID: "p1", HoursPerWeek: 20, StartDate: date(2021, time.June, 7), EndDate: date(2021, time.June, 18)},
			{ID: "a2", EmployeeID: "bob", ProjectID: "p1", HoursPerWeek: 10, StartDate: date(2021, time.June, 7), EndDate: date(2021, time.June, 11)},
			{ID: "a3", EmployeeID: "bob", ProjectID: "p2", HoursPerWeek: 40, StartDate: date(2021, time.June, 7), EndDate: date(2021, time.June, 18)},
		},
		projects: map[string]project.Project{
			"p1": {ID: "p1", Name: "Platform", Client: "Acme", Category: "dev"},
			"p2": {ID: "p2", Name: "Rebrand", Client: "Globex", Category: "design"},
		},
		employees: map[string]employee.Employee{
			"alice": {ID: "alice", Name: "Alice"},
			"bob":   {ID: "bob", Name: "Bob"},
		},
	}
}

func testFilter() Filter {
	return Filter{From: date(2021, time.June, 7), To: date(2021, time.June, 18)}
}

func bucketHours(t *testing.T, bks []Bucket, key string) float64 {
	t.Helper()
	for _, b := range bks {
		if b.Key == key {
			return b.Hours
		}
	}
	return 0
}

// checkReconciled asserts that every facet sums up to TotalHours.
func checkReconciled(t *testing.T, rep Report) {
	t.Helper()
	facets := map[string][]Bucket{
		"ByProject":  rep.ByProject,
		"ByClient":   rep.ByClient,
		"ByCategory": rep.ByCategory,
		"ByEmployee": rep.ByEmployee,
	}
	for name, bks := range facets {
		var sum float64
		for _, b := range bks {
			sum += b.Hours
		}
		if math.Abs(sum-rep.TotalHours) > 1e-9 {
			t.Errorf("%s sums to %v, want TotalHours %v", name, sum, rep.TotalHours)
		}
	}
}

func TestBuildReport(t *testing.T) {
	tests := []struct {
		name      string
		filter    func(f Filter) Filter
		input     func(in reportInput) reportInput
		wantTotal float64
		check     func(t *testing.T, rep Report)
	}{
		{
			name:      "no facet filters",
			wantTotal: 130,
			check: func(t *testing.T, rep Report) {
				if got := bucketHours(t, rep.ByProject, "p1"); got != 50 {
					t.Errorf("p1 hours = %v, want 50", got)
				}
				if got := bucketHours(t, rep.ByClient, "Globex"); got != 80 {
					t.Errorf("Globex hours = %v, want 80", got)
				}
				if got := bucketHours(t, rep.ByEmployee, "bob"); got != 90 {
					t.Errorf("bob hours = %v, want 90", got)
				}
			},
		},
		{
			name:      "project filter recomputes other facets",
			filter:    func(f Filter) Filter { f.ProjectIDs = []string{"p1"}; return f },
			wantTotal: 50,
			check: func(t *testing.T, rep Report) {
				if got := bucketHours(t, rep.ByEmployee, "bob"); got != 10 {
					t.Errorf("bob hours = %v, want 10", got)
				}
				if got := bucketHours(t, rep.ByClient, "Globex"); got != 0 {
					t.Errorf("Globex hours = %v, want 0", got)
				}
			},
		},
		{
			name: "facet filters combine with AND",
			filter: func(f Filter) Filter {
				f.EmployeeIDs = []string{"bob"}
				f.Clients = []string{"Acme"}
				return f
			},
			wantTotal: 10,
		},
		{
			name:      "client filter",
			filter:    func(f Filter) Filter { f.Clients = []string{"Globex"}; return f },
			wantTotal: 80,
		},
		{
			name:      "category filter",
			filter:    func(f Filter) Filter { f.Categories = []string{"dev"}; return f },
			wantTotal: 50,
		},
		{
			name:      "no matching rows",
			filter:    func(f Filter) Filter { f.ProjectIDs = []string{"nope"}; return f },
			wantTotal: 0,
			check: func(t *testing.T, rep Report) {
				if len(rep.ByProject) != 0 {
					t.Errorf("ByProject = %v, want empty", rep.ByProject)
				}
			},
		},
		{
			name:   "report range clips assignments",
			filter: func(f Filter) Filter { f.To = date(2021, time.June, 11); return f },
			// one week only: 20h + 10h + 40h
			wantTotal: 70,
		},
		{
			name: "holiday shrinks workdays",
			input: func(in reportInput) reportInput {
				in.holidays = []holiday.Holiday{{Name: "Day off", Date: date(2021, time.June, 9)}}
				return in
			},
			// alice 9/5*20=36, bob 4/5*10=8 + 9/5*40=72
			wantTotal: 116,
		},
		{
			name:   "approved leave deducted",
			filter: func(f Filter) Filter { f.DeductLeave = true; return f },
			input: func(in reportInput) reportInput {
				in.leaves = []leave.Request{{
					EmployeeID: "alice",
					Type:       leave.TypeVacation,
					Status:     leave.StatusApproved,
					StartDate:  date(2021, time.June, 7),
					EndDate:    date(2021, time.June, 9),
				}}
				return in
			},
			// alice (10-3)/5*20=28, bob untouched
			wantTotal: 118,
		},
		{
			name:   "leave clipped to report range",
			filter: func(f Filter) Filter { f.DeductLeave = true; return f },
			input: func(in reportInput) reportInput {
				in.leaves = []leave.Request{{
					EmployeeID: "alice",
					Type:       leave.TypeVacation,
					Status:     leave.StatusApproved,
					StartDate:  date(2021, time.May, 31),
					EndDate:    date(2021, time.June, 8),
				}}
				return in
			},
			// only Jun 7-8 fall inside: alice (10-2)/5*20=32
			wantTotal: 122,
		},
		{
			name:   "leave without deduct flag ignored",
			filter: func(f Filter) Filter { f.DeductLeave = false; return f },
			input: func(in reportInput) reportInput {
				in.leaves = []leave.Request{{
					EmployeeID: "alice",
					Status:     leave.StatusApproved,
					StartDate:  date(2021, time.June, 7),
					EndDate:    date(2021, time.June, 9),
				}}
				return in
			},
			wantTotal: 130,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testFilter()
			if tt.filter != nil {
				f = tt.filter(f)
			}
			in := testInput()
			if tt.input != nil {
				in = tt.input(in)
			}

			rep := buildReport(f, in)
			if math.Abs(rep.TotalHours-tt.wantTotal) > 1e-9 {
				t.Errorf("TotalHours = %v, want %v", rep.TotalHours, tt.wantTotal)
			}
			checkReconciled(t, rep)
			if tt.check != nil {
				tt.check(t, rep)
			}
		})
	}
}

func TestBuckets_sorted(t *testing.T) {
	rep := buildReport(testFilter(), testInput())

	for i := 1; i < len(rep.ByEmployee); i++ {
		prev, cur := rep.ByEmployee[i-1], rep.ByEmployee[i]
		if prev.Hours < cur.Hours {
			t.Fatalf("ByEmployee not sorted by hours desc: %v", rep.ByEmployee)
		}
		if prev.Hours == cur.Hours && prev.Key > cur.Key {
			t.Fatalf("ByEmployee ties not sorted by key: %v", rep.ByEmployee)
		}
	}
	if rep.ByEmployee[0].Name != "Bob" {
		t.Errorf("top employee = %s, want Bob", rep.ByEmployee[0].Name)
	}
}

func TestHolidayDatesIn(t *testing.T) {
	tests := []struct {
		name     string
		hol      holiday.Holiday
		from, to time.Time
		want     int
	}{
		{
			name: "fixed inside",
			hol:  holiday.Holiday{Date: date(2021, time.June, 9)},
			from: date(2021, time.June, 1), to: date(2021, time.June, 30),
			want: 1,
		},
		{
			name: "fixed outside",
			hol:  holiday.Holiday{Date: date(2021, time.July, 9)},
			from: date(2021, time.June, 1), to: date(2021, time.June, 30),
			want: 0,
		},
		{
			name: "recurring across years",
			hol:  holiday.Holiday{Date: date(2000, time.January, 1), Recurring: true},
			from: date(2021, time.January, 1), to: date(2023, time.December, 31),
			want: 3,
		},
		{
			name: "recurring outside window",
			hol:  holiday.Holiday{Date: date(2000, time.January, 1), Recurring: true},
			from: date(2021, time.February, 1), to: date(2021, time.December, 31),
			want: 0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := holidayDatesIn(tt.hol, tt.from, tt.to); len(got) != tt.want {
				t.Errorf("holidayDatesIn() = %v dates, want %d", len(got), tt.want)
			}
		})
	}
}
