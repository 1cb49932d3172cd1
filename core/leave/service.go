package leave

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/timeoff/core"
	"github.com/trezcool/timeoff/core/employee"
	"github.com/trezcool/timeoff/core/holiday"
)

var (
	// errors
	ErrNotFound   = errors.New("leave request not found")
	ErrNotPending = errors.New("leave request is no longer pending")
	ErrNotOpen    = errors.New("leave request is already closed")
	ErrSelfReview = errors.New("employees cannot review their own leave requests")

	errNoWorkdays     = "the requested period covers no working days"
	errOverlap        = "an open leave request already covers part of this period"
	errNotEnoughDays  = "not enough vacation days remaining"
	errEmployeeNosuch = "employee does not exist"
)

type (
	Repository interface {
		CreateRequest(ctx context.Context, req Request) (Request, error)
		// QueryRequests applies AND operation on available QueryFilter fields.
		// From/To select requests whose range intersects [From, To].
		QueryRequests(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Request, error)
		GetRequestByID(ctx context.Context, id string) (Request, error)
		UpdateRequest(ctx context.Context, req Request) (Request, error)
		DeleteRequestsByID(ctx context.Context, ids []string) (int, error)
	}

	Service interface {
		Create(ctx context.Context, nr NewRequest) (Request, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Request, error)
		GetByID(ctx context.Context, id string) (Request, error)
		Update(ctx context.Context, id string, ur UpdateRequest) (Request, error)
		Review(ctx context.Context, id string, reviewer employee.Employee, rr ReviewRequest) (Request, error)
		Cancel(ctx context.Context, id string) (Request, error)
		Delete(ctx context.Context, ids ...string) error
		Balance(ctx context.Context, employeeID string, year int) (Balance, error)
	}

	service struct {
		repo    Repository
		empSvc  employee.Service
		holSvc  holiday.Service
		mailSvc core.EmailService
		conf    *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, empSvc employee.Service, holSvc holiday.Service, mailSvc core.EmailService, conf *core.Config) Service {
	return &service{
		repo:    repo,
		empSvc:  empSvc,
		holSvc:  holSvc,
		mailSvc: mailSvc,
		conf:    conf,
	}
}

func (svc *service) holidays(ctx context.Context) ([]holiday.Holiday, error) {
	return svc.holSvc.Query(ctx, nil, nil)
}

// checkOverlap rejects a request whose range intersects another open
// request of the same employee. excludedID skips the request being updated.
func (svc *service) checkOverlap(ctx context.Context, req Request, excludedID string) error {
	others, err := svc.repo.QueryRequests(ctx, &QueryFilter{
		EmployeeID: req.EmployeeID,
		From:       req.StartDate,
		To:         req.EndDate,
	}, nil)
	if err != nil {
		return errors.Wrap(err, "querying overlapping requests")
	}
	for _, other := range others {
		if other.ID == excludedID || !other.Open() {
			continue
		}
		return core.NewValidationError(nil, core.FieldError{Field: "start_date", Error: errOverlap})
	}
	return nil
}

// checkBalance rejects a vacation request exceeding the employee's
// remaining allowance for the year the request starts in.
func (svc *service) checkBalance(ctx context.Context, req Request, days float64, excludedID string) error {
	if req.Type != TypeVacation {
		return nil
	}
	bal, err := svc.balance(ctx, req.EmployeeID, req.StartDate.Year(), excludedID)
	if err != nil {
		return err
	}
	if days > bal.Remaining {
		return core.NewValidationError(nil, core.FieldError{Field: "end_date", Error: errNotEnoughDays})
	}
	return nil
}

func (svc *service) validateRequest(ctx context.Context, req Request, excludedID string) error {
	holidays, err := svc.holidays(ctx)
	if err != nil {
		return errors.Wrap(err, "querying holidays")
	}
	days := req.Days(holidays)
	if days == 0 {
		return core.NewValidationError(nil, core.FieldError{Field: "start_date", Error: errNoWorkdays})
	}
	if err := svc.checkOverlap(ctx, req, excludedID); err != nil {
		return err
	}
	return svc.checkBalance(ctx, req, days, excludedID)
}

func (svc *service) Create(ctx context.Context, nr NewRequest) (Request, error) {
	emp, err := svc.empSvc.GetByID(ctx, nr.EmployeeID)
	if err != nil {
		if errors.Cause(err) == employee.ErrNotFound {
			return Request{}, core.NewValidationError(err, core.FieldError{Field: "employee_id", Error: errEmployeeNosuch})
		}
		return Request{}, errors.Wrap(err, "finding employee")
	}

	now := time.Now().UTC()
	req := Request{
		EmployeeID:   nr.EmployeeID,
		Type:         nr.Type,
		StartDate:    nr.StartDate,
		EndDate:      nr.EndDate,
		StartHalfDay: nr.StartHalfDay,
		EndHalfDay:   nr.EndHalfDay,
		Reason:       nr.Reason,
		Status:       StatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := svc.validateRequest(ctx, req, ""); err != nil {
		return Request{}, err
	}

	req, err = svc.repo.CreateRequest(ctx, req)
	if err != nil {
		return Request{}, err
	}
	svc.notifyManagers(ctx, emp, req)
	return req, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Request, error) {
	return svc.repo.QueryRequests(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Request, error) {
	return svc.repo.GetRequestByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, ur UpdateRequest) (Request, error) {
	orig, err := svc.GetByID(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if orig.Status != StatusPending {
		return Request{}, ErrNotPending
	}

	req := orig
	if ur.Type != "" {
		req.Type = ur.Type
	}
	if !ur.StartDate.IsZero() {
		req.StartDate = ur.StartDate
	}
	if !ur.EndDate.IsZero() {
		req.EndDate = ur.EndDate
	}
	if ur.StartHalfDay != nil {
		req.StartHalfDay = *ur.StartHalfDay
	}
	if ur.EndHalfDay != nil {
		req.EndHalfDay = *ur.EndHalfDay
	}
	if ur.Reason != "" {
		req.Reason = ur.Reason
	}
	if req.EndDate.Before(req.StartDate) {
		return Request{}, core.NewValidationError(nil, core.FieldError{Field: "end_date", Error: "must not be before the start date"})
	}
	if err := svc.validateRequest(ctx, req, req.ID); err != nil {
		return Request{}, err
	}
	req.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateRequest(ctx, req)
}

func (svc *service) Review(ctx context.Context, id string, reviewer employee.Employee, rr ReviewRequest) (Request, error) {
	req, err := svc.GetByID(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if req.EmployeeID == reviewer.ID {
		return Request{}, ErrSelfReview
	}
	if !CanTransition(req.Status, rr.Status) {
		return Request{}, ErrNotPending
	}

	now := time.Now().UTC()
	req.Status = rr.Status
	req.ReviewerID = reviewer.ID
	req.ReviewedAt = now
	req.ReviewNote = rr.Note
	req.UpdatedAt = now

	req, err = svc.repo.UpdateRequest(ctx, req)
	if err != nil {
		return Request{}, err
	}
	svc.notifyReviewed(ctx, req)
	return req, nil
}

func (svc *service) Cancel(ctx context.Context, id string) (Request, error) {
	req, err := svc.GetByID(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if !CanTransition(req.Status, StatusCancelled) {
		return Request{}, ErrNotOpen
	}
	req.Status = StatusCancelled
	req.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateRequest(ctx, req)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteRequestsByID(ctx, ids)
	return err
}

func (svc *service) Balance(ctx context.Context, employeeID string, year int) (Balance, error) {
	if _, err := svc.empSvc.GetByID(ctx, employeeID); err != nil {
		return Balance{}, err
	}
	return svc.balance(ctx, employeeID, year, "")
}

// balance charges approved and pending vacation requests to the year they
// start in.
func (svc *service) balance(ctx context.Context, employeeID string, year int, excludedID string) (Balance, error) {
	holidays, err := svc.holidays(ctx)
	if err != nil {
		return Balance{}, errors.Wrap(err, "querying holidays")
	}

	reqs, err := svc.repo.QueryRequests(ctx, &QueryFilter{
		EmployeeID: employeeID,
		Type:       TypeVacation,
		From:       time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC),
		To:         time.Date(year, time.December, 31, 0, 0, 0, 0, time.UTC),
	}, nil)
	if err != nil {
		return Balance{}, errors.Wrap(err, "querying requests")
	}

	var used float64
	for _, req := range reqs {
		if req.ID == excludedID || !req.Open() || req.StartDate.Year() != year {
			continue
		}
		used += req.Days(holidays)
	}

	bal := Balance{
		EmployeeID: employeeID,
		Year:       year,
		Allowance:  svc.conf.Leave.AnnualAllowanceDays,
		Used:       used,
	}
	bal.Remaining = bal.Allowance - bal.Used
	return bal, nil
}

// Notifications

func (svc *service) notifyManagers(ctx context.Context, emp employee.Employee, req Request) {
	managers, err := svc.empSvc.Query(ctx, &employee.QueryFilter{Roles: []string{employee.RoleManager, employee.RoleAdmin}}, nil)
	if err != nil || len(managers) == 0 {
		return
	}

	holidays, _ := svc.holidays(ctx)
	to := make([]mail.Address, 0, len(managers))
	for _, m := range managers {
		if m.Email != "" && m.Active() {
			to = append(to, mail.Address{Name: m.Name, Address: m.Email})
		}
	}
	svc.mailSvc.SendMessages(
		&core.EmailMessage{
			To:           to,
			Subject:      fmt.Sprintf("Leave request from %s", emp.Name),
			TemplateName: "leave-requested",
			TemplateData: struct {
				ID           string
				EmployeeName string
				Type         string
				Days         float64
				StartDate    string
				EndDate      string
			}{
				ID:           req.ID,
				EmployeeName: emp.Name,
				Type:         req.Type,
				Days:         req.Days(holidays),
				StartDate:    req.StartDate.Format("2006-01-02"),
				EndDate:      req.EndDate.Format("2006-01-02"),
			},
		},
	)
}

func (svc *service) notifyReviewed(ctx context.Context, req Request) {
	emp, err := svc.empSvc.GetByID(ctx, req.EmployeeID)
	if err != nil || emp.Email == "" {
		return
	}
	svc.mailSvc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Name: emp.Name, Address: emp.Email}},
			Subject:      fmt.Sprintf("Your leave request has been %s", req.Status),
			TemplateName: "leave-reviewed",
			TemplateData: struct {
				ID           string
				EmployeeName string
				Type         string
				Status       string
				ReviewNote   string
				StartDate    string
				EndDate      string
			}{
				ID:           req.ID,
				EmployeeName: emp.Name,
				Type:         req.Type,
				Status:       req.Status,
				ReviewNote:   req.ReviewNote,
				StartDate:    req.StartDate.Format("2006-01-02"),
				EndDate:      req.EndDate.Format("2006-01-02"),
			},
		},
	)
}
