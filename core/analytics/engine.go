package analytics

import (
	"sort"
	"time"

	"github.com/trezcool/timeoff/core/assignment"
	"github.com/trezcool/timeoff/core/employee"
	"github.com/trezcool/timeoff/core/holiday"
	"github.com/trezcool/timeoff/core/leave"
	"github.com/trezcool/timeoff/core/project"
)

// workweekDays converts weekly hours to daily hours.
const workweekDays = 5

// reportInput is everything buildReport needs, fetched once by the service.
type reportInput struct {
	assignments []assignment.Assignment
	projects    map[string]project.Project
	employees   map[string]employee.Employee
	leaves      []leave.Request // approved only
	holidays    []holiday.Holiday
}

func maxTime(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}

func minTime(a, b time.Time) time.Time {
	if a.Before(b) {
		return a
	}
	return b
}

func containsStr(vals []string, s string) bool {
	for _, v := range vals {
		if v == s {
			return true
		}
	}
	return false
}

// match applies the facet filters to one assignment row.
func match(f Filter, asg assignment.Assignment, prj project.Project) bool {
	if len(f.ProjectIDs) > 0 && !containsStr(f.ProjectIDs, asg.ProjectID) {
		return false
	}
	if len(f.Clients) > 0 && !containsStr(f.Clients, prj.Client) {
		return false
	}
	if len(f.Categories) > 0 && !containsStr(f.Categories, prj.Category) {
		return false
	}
	if len(f.EmployeeIDs) > 0 && !containsStr(f.EmployeeIDs, asg.EmployeeID) {
		return false
	}
	return true
}

// rowHours computes the hours one assignment contributes inside the report
// range: workdays in the clipped range converted to weeks times the weekly
// allocation, minus (optionally) the employee's approved leave days inside
// the same window.
func rowHours(f Filter, asg assignment.Assignment, in reportInput) float64 {
	from := maxTime(asg.StartDate, f.From)
	to := minTime(asg.EndDate, f.To)
	wd := leave.Workdays(from, to, in.holidays)
	if wd == 0 {
		return 0
	}

	days := float64(wd)
	if f.DeductLeave {
		var leaveDays float64
		for _, req := range in.leaves {
			if req.EmployeeID != asg.EmployeeID || !req.Overlaps(from, to) {
				continue
			}
			leaveDays += clipRequest(req, from, to).Days(in.holidays)
		}
		if leaveDays > days {
			leaveDays = days
		}
		days -= leaveDays
	}
	return days / workweekDays * asg.HoursPerWeek
}

// clipRequest restricts a leave request to [from, to], dropping half-day
// flags on boundaries that get clipped away.
func clipRequest(req leave.Request, from, to time.Time) leave.Request {
	if req.StartDate.Before(from) {
		req.StartDate = from
		req.StartHalfDay = false
	}
	if req.EndDate.After(to) {
		req.EndDate = to
		req.EndHalfDay = false
	}
	return req
}

// buildReport aggregates the filtered assignment rows into every facet at
// once. Each facet is derived from the same per-row hours, so the facet
// sums always reconcile with the total.
func buildReport(f Filter, in reportInput) Report {
	rep := Report{From: f.From, To: f.To}

	byProject := make(map[string]float64)
	byClient := make(map[string]float64)
	byCategory := make(map[string]float64)
	byEmployee := make(map[string]float64)

	for _, asg := range in.assignments {
		prj, ok := in.projects[asg.ProjectID]
		if !ok || !match(f, asg, prj) {
			continue
		}
		hours := rowHours(f, asg, in)
		if hours == 0 {
			continue
		}

		rep.TotalHours += hours
		byProject[asg.ProjectID] += hours
		byClient[prj.Client] += hours
		byCategory[prj.Category] += hours
		byEmployee[asg.EmployeeID] += hours
	}

	rep.ByProject = buckets(byProject, func(id string) string { return in.projects[id].Name })
	rep.ByClient = buckets(byClient, func(c string) string { return c })
	rep.ByCategory = buckets(byCategory, func(c string) string { return c })
	rep.ByEmployee = buckets(byEmployee, func(id string) string { return in.employees[id].Name })
	return rep
}

// buckets turns an aggregation map into a sorted Bucket slice:
// hours descending, key ascending on ties.
func buckets(agg map[string]float64, name func(key string) string) []Bucket {
	out := make([]Bucket, 0, len(agg))
	for key, hours := range agg {
		out = append(out, Bucket{Key: key, Name: name(key), Hours: hours})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Hours != out[j].Hours {
			return out[i].Hours > out[j].Hours
		}
		return out[i].Key < out[j].Key
	})
	return out
}
