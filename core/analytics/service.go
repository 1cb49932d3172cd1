package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/timeoff/core/assignment"
	"github.com/trezcool/timeoff/core/employee"
	"github.com/trezcool/timeoff/core/holiday"
	"github.com/trezcool/timeoff/core/leave"
	"github.com/trezcool/timeoff/core/project"
)

type (
	Service interface {
		// Report computes the cross-filtered hour aggregation for the
		// given filter. Team member filtering is exact here: every facet
		// is recomputed from the same filtered assignment rows.
		Report(ctx context.Context, f Filter) (Report, error)
		// Calendar returns the merged schedule view (holidays + open leave)
		// for [from, to].
		Calendar(ctx context.Context, from, to time.Time) ([]CalendarEntry, error)
	}

	service struct {
		asgSvc   assignment.Service
		prjSvc   project.Service
		empSvc   employee.Service
		leaveSvc leave.Service
		holSvc   holiday.Service
	}
)

var _ Service = (*service)(nil)

func NewService(
	asgSvc assignment.Service,
	prjSvc project.Service,
	empSvc employee.Service,
	leaveSvc leave.Service,
	holSvc holiday.Service,
) Service {
	return &service{
		asgSvc:   asgSvc,
		prjSvc:   prjSvc,
		empSvc:   empSvc,
		leaveSvc: leaveSvc,
		holSvc:   holSvc,
	}
}

func (svc *service) Report(ctx context.Context, f Filter) (Report, error) {
	in, err := svc.fetchInput(ctx, f)
	if err != nil {
		return Report{}, err
	}
	return buildReport(f, in), nil
}

func (svc *service) fetchInput(ctx context.Context, f Filter) (reportInput, error) {
	var in reportInput
	var err error

	in.assignments, err = svc.asgSvc.Query(ctx, &assignment.QueryFilter{From: f.From, To: f.To}, nil)
	if err != nil {
		return in, errors.Wrap(err, "querying assignments")
	}

	prjs, err := svc.prjSvc.Query(ctx, nil, nil)
	if err != nil {
		return in, errors.Wrap(err, "querying projects")
	}
	in.projects = make(map[string]project.Project, len(prjs))
	for _, prj := range prjs {
		in.projects[prj.ID] = prj
	}

	emps, err := svc.empSvc.Query(ctx, nil, nil)
	if err != nil {
		return in, errors.Wrap(err, "querying employees")
	}
	in.employees = make(map[string]employee.Employee, len(emps))
	for _, emp := range emps {
		in.employees[emp.ID] = emp
	}

	in.holidays, err = svc.holSvc.Query(ctx, nil, nil)
	if err != nil {
		return in, errors.Wrap(err, "querying holidays")
	}

	if f.DeductLeave {
		in.leaves, err = svc.leaveSvc.Query(ctx, &leave.QueryFilter{
			Status: leave.StatusApproved,
			From:   f.From,
			To:     f.To,
		}, nil)
		if err != nil {
			return in, errors.Wrap(err, "querying leave requests")
		}
	}
	return in, nil
}

func (svc *service) Calendar(ctx context.Context, from, to time.Time) ([]CalendarEntry, error) {
	holidays, err := svc.holSvc.Query(ctx, nil, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying holidays")
	}

	entries := make([]CalendarEntry, 0)
	for _, hol := range holidays {
		for _, date := range holidayDatesIn(hol, from, to) {
			entries = append(entries, CalendarEntry{
				Kind:      EntryHoliday,
				Name:      hol.Name,
				StartDate: date,
				EndDate:   date,
			})
		}
	}

	reqs, err := svc.leaveSvc.Query(ctx, &leave.QueryFilter{From: from, To: to}, nil)
	if err != nil {
		return nil, errors.Wrap(err, "querying leave requests")
	}
	for _, req := range reqs {
		if !req.Open() {
			continue
		}
		emp, err := svc.empSvc.GetByID(ctx, req.EmployeeID)
		if err != nil {
			return nil, errors.Wrap(err, "finding employee")
		}
		entries = append(entries, CalendarEntry{
			Kind:         EntryLeave,
			Name:         emp.Name + " - " + req.Type,
			EmployeeID:   emp.ID,
			EmployeeName: emp.Name,
			LeaveType:    req.Type,
			LeaveStatus:  req.Status,
			StartDate:    req.StartDate,
			EndDate:      req.EndDate,
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if !entries[i].StartDate.Equal(entries[j].StartDate) {
			return entries[i].StartDate.Before(entries[j].StartDate)
		}
		return entries[i].Name < entries[j].Name
	})
	return entries, nil
}

// holidayDatesIn expands a holiday into its occurrences within [from, to];
// recurring holidays occur once per covered year.
func holidayDatesIn(hol holiday.Holiday, from, to time.Time) []time.Time {
	if !hol.Recurring {
		if hol.Date.Before(from) || hol.Date.After(to) {
			return nil
		}
		return []time.Time{hol.Date}
	}

	var dates []time.Time
	for year := from.Year(); year <= to.Year(); year++ {
		date := time.Date(year, hol.Date.Month(), hol.Date.Day(), 0, 0, 0, 0, time.UTC)
		if !date.Before(from) && !date.After(to) {
			dates = append(dates, date)
		}
	}
	return dates
}
