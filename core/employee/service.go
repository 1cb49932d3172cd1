package employee

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/timeoff/core"
)

var (
	// errors
	ErrNotFound       = errors.New("employee not found")
	ErrEmailExists    = errors.New("an employee with this email already exists")
	ErrUsernameExists = errors.New("an employee with this username already exists")
)

const defaultWeeklyHours = 40

type (
	Repository interface {
		CheckUsernameUniqueness(ctx context.Context, username, email string, excluded []Employee) error
		CreateEmployee(ctx context.Context, emp Employee) (Employee, error)
		// QueryEmployees applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Name, Username or Email.
		QueryEmployees(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Employee, error)
		GetEmployee(ctx context.Context, filter GetFilter) (Employee, error)
		UpdateEmployee(ctx context.Context, emp Employee) (Employee, error)
		UpdateOrCreateEmployee(ctx context.Context, emp Employee) (Employee, error)
		DeleteEmployeesByID(ctx context.Context, ids []string) (int, error)
	}

	Service interface {
		CheckUniqueness(ctx context.Context, uname, email string, excl ...Employee) error
		Create(ctx context.Context, ne NewEmployee) (Employee, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Employee, error)
		GetByID(ctx context.Context, id string) (Employee, error)
		GetByEmail(ctx context.Context, email string) (Employee, error)
		GetByUsernameOrEmail(ctx context.Context, uname string) (Employee, error)
		Update(ctx context.Context, id string, ue UpdateEmployee) (Employee, error)
		SetLastLogin(ctx context.Context, emp Employee) (Employee, error)
		Delete(ctx context.Context, ids ...string) error
		RequestPasswordReset(ctx context.Context, email string) error
		ResetPassword(ctx context.Context, rp ResetEmployeePassword) error
	}

	service struct {
		repo    Repository
		mailSvc core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, mailSvc core.EmailService, conf *core.Config) Service {
	secretKey = conf.SecretKey
	passwordResetTimeoutDelta = conf.PasswordResetTimeoutDelta
	return &service{
		repo:    repo,
		mailSvc: mailSvc,
	}
}

func (svc *service) CheckUniqueness(ctx context.Context, uname, email string, excl ...Employee) error {
	if err := svc.repo.CheckUsernameUniqueness(ctx, uname, email, excl); err != nil {
		var field string
		switch errors.Cause(err) {
		case ErrUsernameExists:
			field = "username"
		case ErrEmailExists:
			field = "email"
		default:
			return err
		}
		return core.NewValidationError(err, core.FieldError{Field: field, Error: err.Error()})
	}
	return nil
}

func (svc *service) Create(ctx context.Context, ne NewEmployee) (Employee, error) {
	now := time.Now().UTC()
	emp := Employee{
		Name:        ne.Name,
		Username:    ne.Username,
		Email:       ne.Email,
		Team:        ne.Team,
		JobTitle:    ne.JobTitle,
		WeeklyHours: ne.WeeklyHours,
		StartDate:   ne.StartDate,
		Roles:       ne.Roles,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	emp.SetActive(true)
	if emp.WeeklyHours == 0 {
		emp.WeeklyHours = defaultWeeklyHours
	}
	if err := emp.SetPassword(ne.Password); err != nil {
		return Employee{}, errors.Wrap(err, "setting password")
	}
	return svc.repo.CreateEmployee(ctx, emp)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Employee, error) {
	return svc.repo.QueryEmployees(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Employee, error) {
	return svc.repo.GetEmployee(ctx, GetFilter{ID: id})
}

func (svc *service) GetByEmail(ctx context.Context, email string) (Employee, error) {
	return svc.repo.GetEmployee(ctx, GetFilter{Email: core.CleanString(email, true /* lower */)})
}

func (svc *service) GetByUsernameOrEmail(ctx context.Context, uname string) (Employee, error) {
	uname = core.CleanString(uname, true /* lower */)
	return svc.repo.GetEmployee(ctx, GetFilter{UsernameOrEmail: []string{uname}})
}

func (svc *service) Update(ctx context.Context, id string, ue UpdateEmployee) (Employee, error) {
	orig, err := svc.GetByID(ctx, id)
	if err != nil {
		return Employee{}, err
	}

	emp := orig
	emp.Name = ue.Name
	emp.Username = ue.Username
	emp.Email = ue.Email
	emp.Team = ue.Team
	emp.JobTitle = ue.JobTitle
	if ue.WeeklyHours > 0 {
		emp.WeeklyHours = ue.WeeklyHours
	}
	if !ue.StartDate.IsZero() {
		emp.StartDate = ue.StartDate
	}
	if ue.IsActive != nil {
		emp.IsActive = ue.IsActive
	}
	if ue.Roles != nil {
		emp.Roles = ue.Roles
	}
	emp.UpdatedAt = time.Now().UTC()
	if ue.Password != "" {
		if err := emp.SetPassword(ue.Password); err != nil {
			return Employee{}, errors.Wrap(err, "setting password")
		}
	}
	return svc.repo.UpdateEmployee(ctx, emp)
}

func (svc *service) SetLastLogin(ctx context.Context, emp Employee) (Employee, error) {
	emp.LastLogin = time.Now().UTC()
	return svc.repo.UpdateEmployee(ctx, emp)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteEmployeesByID(ctx, ids)
	return err
}

func (svc *service) RequestPasswordReset(ctx context.Context, email string) error {
	emp, err := svc.GetByEmail(ctx, email)
	if err != nil {
		return err
	}
	go svc.sendPasswordResetMail(emp)
	return nil
}

func (svc *service) sendPasswordResetMail(emp Employee) {
	svc.mailSvc.SendMessages(
		&core.EmailMessage{
			To:           []mail.Address{{Name: emp.Name, Address: emp.Email}},
			Subject:      "Password reset",
			TemplateName: "password-reset",
			TemplateData: struct {
				Name  string
				UID   string
				Token string
			}{
				Name:  emp.Name,
				UID:   EncodeUID(emp),
				Token: makeToken(emp),
			},
		},
	)
}

func (svc *service) ResetPassword(ctx context.Context, rp ResetEmployeePassword) error {
	uid, err := decodeUID(rp.UID)
	if err != nil {
		return core.NewValidationError(errInvalidToken)
	}
	emp, err := svc.GetByID(ctx, uid)
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return core.NewValidationError(errInvalidToken)
		}
		return errors.Wrap(err, fmt.Sprintf("finding employee %q", uid))
	}

	if err := verifyToken(emp, rp.Token); err != nil {
		return core.NewValidationError(err)
	}

	if err := emp.SetPassword(rp.Password); err != nil {
		return errors.Wrap(err, "setting password")
	}
	emp.UpdatedAt = time.Now().UTC()
	if _, err := svc.repo.UpdateEmployee(ctx, emp); err != nil {
		return errors.Wrap(err, "updating employee")
	}
	return nil
}
