package project

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/timeoff/core"
)

var (
	// errors
	ErrNotFound = errors.New("project not found")
	ErrExists   = errors.New("a project with this name already exists for this client")
)

type (
	Repository interface {
		CheckUniqueness(ctx context.Context, name, client string, excluded []Project) error
		CreateProject(ctx context.Context, prj Project) (Project, error)
		// QueryProjects applies AND operation on available QueryFilter fields.
		// QueryFilter.Search does a case-insensitive match on one of Name, Client or Category.
		QueryProjects(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Project, error)
		GetProjectByID(ctx context.Context, id string) (Project, error)
		UpdateProject(ctx context.Context, prj Project) (Project, error)
		DeleteProjectsByID(ctx context.Context, ids []string) (int, error)
		// QueryClients returns the distinct Client values in use.
		QueryClients(ctx context.Context) ([]string, error)
		// QueryCategories returns the distinct non-empty Category values in use.
		QueryCategories(ctx context.Context) ([]string, error)
	}

	Service interface {
		CheckUniqueness(ctx context.Context, name, client string, excl ...Project) error
		Create(ctx context.Context, np NewProject) (Project, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Project, error)
		GetByID(ctx context.Context, id string) (Project, error)
		Update(ctx context.Context, id string, up UpdateProject) (Project, error)
		Delete(ctx context.Context, ids ...string) error
		Clients(ctx context.Context) ([]string, error)
		Categories(ctx context.Context) ([]string, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckUniqueness(ctx context.Context, name, client string, excl ...Project) error {
	if err := svc.repo.CheckUniqueness(ctx, name, client, excl); err != nil {
		if errors.Cause(err) == ErrExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, np NewProject) (Project, error) {
	now := time.Now().UTC()
	prj := Project{
		Name:      np.Name,
		Client:    np.Client,
		Category:  np.Category,
		Color:     np.Color,
		Billable:  true,
		StartDate: np.StartDate,
		EndDate:   np.EndDate,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if np.Billable != nil {
		prj.Billable = *np.Billable
	}
	prj.SetActive(true)
	return svc.repo.CreateProject(ctx, prj)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Project, error) {
	return svc.repo.QueryProjects(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Project, error) {
	return svc.repo.GetProjectByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, up UpdateProject) (Project, error) {
	orig, err := svc.GetByID(ctx, id)
	if err != nil {
		return Project{}, err
	}

	prj := orig
	prj.Name = up.Name
	prj.Client = up.Client
	if up.Category != "" {
		prj.Category = up.Category
	}
	if up.Color != "" {
		prj.Color = up.Color
	}
	if up.Billable != nil {
		prj.Billable = *up.Billable
	}
	if !up.StartDate.IsZero() {
		prj.StartDate = up.StartDate
	}
	if !up.EndDate.IsZero() {
		prj.EndDate = up.EndDate
	}
	if up.IsActive != nil {
		prj.IsActive = up.IsActive
	}
	prj.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateProject(ctx, prj)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteProjectsByID(ctx, ids)
	return err
}

func (svc *service) Clients(ctx context.Context) ([]string, error) {
	return svc.repo.QueryClients(ctx)
}

func (svc *service) Categories(ctx context.Context) ([]string, error) {
	return svc.repo.QueryCategories(ctx)
}
