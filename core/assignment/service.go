package assignment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/timeoff/core"
	"github.com/trezcool/timeoff/core/employee"
	"github.com/trezcool/timeoff/core/project"
)

var (
	// errors
	ErrNotFound = errors.New("assignment not found")

	errEmployeeNotFound = "employee does not exist"
	errProjectNotFound  = "project does not exist"
	errOverAllocated    = "total assigned hours exceed the employee's weekly hours"
)

type (
	Repository interface {
		CreateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		// QueryAssignments applies AND operation on available QueryFilter fields.
		// From/To select assignments whose range intersects [From, To].
		QueryAssignments(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Assignment, error)
		GetAssignmentByID(ctx context.Context, id string) (Assignment, error)
		UpdateAssignment(ctx context.Context, asg Assignment) (Assignment, error)
		DeleteAssignmentsByID(ctx context.Context, ids []string) (int, error)
	}

	Service interface {
		Create(ctx context.Context, na NewAssignment) (Assignment, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Assignment, error)
		GetByID(ctx context.Context, id string) (Assignment, error)
		Update(ctx context.Context, id string, ua UpdateAssignment) (Assignment, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo   Repository
		empSvc employee.Service
		prjSvc project.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, empSvc employee.Service, prjSvc project.Service) Service {
	return &service{
		repo:   repo,
		empSvc: empSvc,
		prjSvc: prjSvc,
	}
}

// checkAllocation enforces that the overlapping assignments of an employee
// never add up to more than their weekly hours. excludedID skips the
// assignment being updated.
func (svc *service) checkAllocation(ctx context.Context, emp employee.Employee, asg Assignment, excludedID string) error {
	others, err := svc.repo.QueryAssignments(ctx, &QueryFilter{
		EmployeeID: asg.EmployeeID,
		From:       asg.StartDate,
		To:         asg.EndDate,
	}, nil)
	if err != nil {
		return errors.Wrap(err, "querying overlapping assignments")
	}

	total := asg.HoursPerWeek
	for _, other := range others {
		if other.ID == excludedID {
			continue
		}
		total += other.HoursPerWeek
	}
	if total > emp.WeeklyHours {
		return core.NewValidationError(nil, core.FieldError{Field: "hours_per_week", Error: errOverAllocated})
	}
	return nil
}

func (svc *service) Create(ctx context.Context, na NewAssignment) (Assignment, error) {
	emp, err := svc.empSvc.GetByID(ctx, na.EmployeeID)
	if err != nil {
		if errors.Cause(err) == employee.ErrNotFound {
			return Assignment{}, core.NewValidationError(err, core.FieldError{Field: "employee_id", Error: errEmployeeNotFound})
		}
		return Assignment{}, errors.Wrap(err, "finding employee")
	}
	if _, err := svc.prjSvc.GetByID(ctx, na.ProjectID); err != nil {
		if errors.Cause(err) == project.ErrNotFound {
			return Assignment{}, core.NewValidationError(err, core.FieldError{Field: "project_id", Error: errProjectNotFound})
		}
		return Assignment{}, errors.Wrap(err, "finding project")
	}

	now := time.Now().UTC()
	asg := Assignment{
		EmployeeID:   na.EmployeeID,
		ProjectID:    na.ProjectID,
		HoursPerWeek: na.HoursPerWeek,
		StartDate:    na.StartDate,
		EndDate:      na.EndDate,
		Note:         na.Note,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := svc.checkAllocation(ctx, emp, asg, ""); err != nil {
		return Assignment{}, err
	}
	return svc.repo.CreateAssignment(ctx, asg)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Assignment, error) {
	return svc.repo.QueryAssignments(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Assignment, error) {
	return svc.repo.GetAssignmentByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, ua UpdateAssignment) (Assignment, error) {
	orig, err := svc.GetByID(ctx, id)
	if err != nil {
		return Assignment{}, err
	}

	asg := orig
	if ua.HoursPerWeek > 0 {
		asg.HoursPerWeek = ua.HoursPerWeek
	}
	if !ua.StartDate.IsZero() {
		asg.StartDate = ua.StartDate
	}
	if !ua.EndDate.IsZero() {
		asg.EndDate = ua.EndDate
	}
	if ua.Note != "" {
		asg.Note = ua.Note
	}
	if asg.EndDate.Before(asg.StartDate) {
		return Assignment{}, core.NewValidationError(nil, core.FieldError{Field: "end_date", Error: "must not be before the start date"})
	}
	asg.UpdatedAt = time.Now().UTC()

	emp, err := svc.empSvc.GetByID(ctx, asg.EmployeeID)
	if err != nil {
		return Assignment{}, errors.Wrap(err, "finding employee")
	}
	if err := svc.checkAllocation(ctx, emp, asg, asg.ID); err != nil {
		return Assignment{}, err
	}
	return svc.repo.UpdateAssignment(ctx, asg)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteAssignmentsByID(ctx, ids)
	return err
}
