package employee

import (
	"context"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/trezcool/timeoff/core"
)

// Roles
const (
	// Admin
	RoleAdmin      = "admin:"
	RoleAdminOwner = "admin:owner"

	// Manager
	RoleManager = "manager:"

	// Member
	RoleMember = "member:"
)

var (
	AdminRoles   = []string{RoleAdmin, RoleAdminOwner}
	ManagerRoles = []string{RoleManager}
	MemberRoles  = []string{RoleMember}
	AllRoles     = getAllRoles()

	rolePriorities = map[string]int{
		// Admins: 30 - 21
		RoleAdminOwner: 30,
		RoleAdmin:      21,

		// Managers: 20 - 11
		RoleManager: 11,

		// Members: 10 - 1
		RoleMember: 1,
	}

	Roles = []Role{
		{Name: "Member", Value: RoleMember},
		{Name: "Manager", Value: RoleManager},
		{Name: "Admin", Value: RoleAdmin},
		{Name: "Admin Owner", Value: RoleAdminOwner},
	}
)

func getAllRoles() []string {
	all := make([]string, 0, 4)
	all = append(all, AdminRoles...)
	all = append(all, ManagerRoles...)
	all = append(all, MemberRoles...)
	return all
}

func RolePriority(role string) int {
	return rolePriorities[role]
}

func MaxRolePriority(roles []string) int {
	var max int
	for _, role := range roles {
		if RolePriority(role) > max {
			max = RolePriority(role)
		}
	}
	return max
}

type Role struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Employee is both a login account and a schedulable team member.
type Employee struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Team         string    `json:"team"`
	JobTitle     string    `json:"job_title"`
	WeeklyHours  float64   `json:"weekly_hours"`
	StartDate    time.Time `json:"start_date"`
	IsActive     *bool     `json:"is_active"`
	Roles        []string  `json:"roles"`
	PasswordHash []byte    `json:"-"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
	LastLogin    time.Time `json:"last_login"` // UTC
}

func (e *Employee) SetPassword(pwd string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(pwd), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	e.PasswordHash = hash
	return nil
}

func (e *Employee) CheckPassword(pwd string) error {
	return bcrypt.CompareHashAndPassword(e.PasswordHash, []byte(pwd))
}

func (e *Employee) SetActive(active bool) {
	e.IsActive = &active
}

func (e *Employee) Active() bool {
	return e.IsActive != nil && *e.IsActive
}

func (e *Employee) RoleStartsWith(prefix string) bool {
	for _, role := range e.Roles {
		if strings.HasPrefix(role, prefix) {
			return true
		}
	}
	return false
}

func (e *Employee) IsAdmin() bool {
	return e.RoleStartsWith(RoleAdmin)
}

func (e *Employee) IsManager() bool {
	return e.RoleStartsWith(RoleManager)
}

func (e *Employee) IsMember() bool {
	return e.RoleStartsWith(RoleMember)
}

// NewEmployee contains information needed to create a new Employee.
type NewEmployee struct {
	Name            string    `json:"name" validate:"required"`
	Username        string    `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string    `json:"email" validate:"omitempty,email"`
	Team            string    `json:"team"`
	JobTitle        string    `json:"job_title"`
	WeeklyHours     float64   `json:"weekly_hours" validate:"omitempty,gt=0,lte=80"`
	StartDate       time.Time `json:"start_date"`
	Password        string    `json:"password" validate:"required"`
	PasswordConfirm string    `json:"password_confirm" validate:"required,eqfield=Password"`
	Roles           []string  `json:"roles" validate:"omitempty,allroles"`
}

func (ne *NewEmployee) Validate(ctx context.Context, svc Service) error {
	ne.Name = core.CleanString(ne.Name)
	ne.Username = core.CleanString(ne.Username, true /* lower */)
	ne.Email = core.CleanString(ne.Email, true /* lower */)
	ne.Team = core.CleanString(ne.Team)
	ne.JobTitle = core.CleanString(ne.JobTitle)

	if err := core.Validate.Struct(ne); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, ne.Username, ne.Email)
}

// UpdateEmployee defines what information may be provided to modify an existing Employee.
type UpdateEmployee struct {
	Name            string    `json:"name"`
	Username        string    `json:"username" validate:"omitempty,min=6,alphanum_"`
	Email           string    `json:"email" validate:"omitempty,email"`
	Team            string    `json:"team"`
	JobTitle        string    `json:"job_title"`
	WeeklyHours     float64   `json:"weekly_hours" validate:"omitempty,gt=0,lte=80"`
	StartDate       time.Time `json:"start_date"`
	IsActive        *bool     `json:"is_active"`
	Roles           []string  `json:"roles" validate:"omitempty,allroles"`
	Password        string    `json:"password" validate:"omitempty"`
	PasswordConfirm string    `json:"password_confirm" validate:"required_with=Password,eqfield=Password"`
}

func (ue *UpdateEmployee) Validate(ctx context.Context, orig Employee, svc Service) error {
	if name := core.CleanString(ue.Name); name != "" {
		ue.Name = name
	} else {
		ue.Name = orig.Name
	}

	if uname := core.CleanString(ue.Username, true /* lower */); uname != "" {
		ue.Username = uname
	} else {
		ue.Username = orig.Username
	}

	if email := core.CleanString(ue.Email, true /* lower */); email != "" {
		ue.Email = email
	} else {
		ue.Email = orig.Email
	}
	ue.Team = core.CleanString(ue.Team)
	ue.JobTitle = core.CleanString(ue.JobTitle)

	if err := core.Validate.Struct(ue); err != nil {
		return err
	}
	return svc.CheckUniqueness(ctx, ue.Username, ue.Email, orig)
}

type ResetEmployeePassword struct {
	Token           string `json:"token,omitempty" validate:"required"`
	UID             string `json:"uid,omitempty" validate:"required"`
	Password        string `json:"password,omitempty" validate:"required"`
	PasswordConfirm string `json:"password_confirm,omitempty" validate:"required,eqfield=Password"`
}

func (rp ResetEmployeePassword) Validate() error { return core.Validate.Struct(rp) }

type QueryFilter struct {
	Search      string    `query:"search"`
	Roles       []string  `query:"role"`
	Team        string    `query:"team"`
	IsActive    *bool     `query:"is_active"`
	CreatedFrom time.Time `query:"created_from"`
	CreatedTo   time.Time `query:"created_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.Search == "" && qf.Roles == nil && qf.Team == "" && qf.IsActive == nil &&
		qf.CreatedFrom.IsZero() && qf.CreatedTo.IsZero()
}

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
	qf.Team = core.CleanString(qf.Team)
}

// GetFilter selects a single Employee; the first non-empty field applies.
type GetFilter struct {
	ID              string
	Username        string
	Email           string
	UsernameOrEmail []string
}
