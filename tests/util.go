package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/trezcool/timeoff/core/assignment"
	"github.com/trezcool/timeoff/core/employee"
	"github.com/trezcool/timeoff/core/holiday"
	"github.com/trezcool/timeoff/core/leave"
	"github.com/trezcool/timeoff/core/project"
)

func CreateEmployee(
	t *testing.T,
	repo employee.Repository,
	name, uname, email, pwd string,
	roles []string,
	isActive bool,
	createdAt ...time.Time,
) employee.Employee {
	t.Helper()

	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	emp := employee.Employee{
		Name:        name,
		Username:    uname,
		Email:       email,
		Roles:       roles,
		WeeklyHours: 40,
		CreatedAt:   tstamp,
		UpdatedAt:   tstamp,
	}
	emp.SetActive(isActive)
	if pwd != "" {
		if err := emp.SetPassword(pwd); err != nil {
			t.Fatalf("CreateEmployee() failed: %v", err)
		}
	}
	emp, err := repo.CreateEmployee(context.Background(), emp)
	if err != nil {
		t.Fatalf("CreateEmployee() failed: %v", err)
	}
	return emp
}

func CreateHoliday(t *testing.T, repo holiday.Repository, name string, date time.Time, recurring bool) holiday.Holiday {
	t.Helper()

	now := time.Now().UTC()
	hol, err := repo.CreateHoliday(context.Background(), holiday.Holiday{
		Name:      name,
		Date:      date,
		Recurring: recurring,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		t.Fatalf("CreateHoliday() failed: %v", err)
	}
	return hol
}

func CreateProject(t *testing.T, repo project.Repository, name, client, category string, billable bool) project.Project {
	t.Helper()

	now := time.Now().UTC()
	prj := project.Project{
		Name:      name,
		Client:    client,
		Category:  category,
		Billable:  billable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	prj.SetActive(true)
	prj, err := repo.CreateProject(context.Background(), prj)
	if err != nil {
		t.Fatalf("CreateProject() failed: %v", err)
	}
	return prj
}

func CreateAssignment(
	t *testing.T,
	repo assignment.Repository,
	empID, prjID string,
	hoursPerWeek float64,
	start, end time.Time,
) assignment.Assignment {
	t.Helper()

	now := time.Now().UTC()
	asg, err := repo.CreateAssignment(context.Background(), assignment.Assignment{
		EmployeeID:   empID,
		ProjectID:    prjID,
		HoursPerWeek: hoursPerWeek,
		StartDate:    start,
		EndDate:      end,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		t.Fatalf("CreateAssignment() failed: %v", err)
	}
	return asg
}

func CreateLeave(
	t *testing.T,
	repo leave.Repository,
	empID, typ, status string,
	start, end time.Time,
) leave.Request {
	t.Helper()

	now := time.Now().UTC()
	req, err := repo.CreateRequest(context.Background(), leave.Request{
		EmployeeID: empID,
		Type:       typ,
		StartDate:  start,
		EndDate:    end,
		Status:     status,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		t.Fatalf("CreateLeave() failed: %v", err)
	}
	return req
}

// Date returns a UTC midnight time for the given day.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
