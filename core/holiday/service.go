package holiday

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/trezcool/timeoff/core"
)

var (
	// errors
	ErrNotFound = errors.New("holiday not found")
	ErrExists   = errors.New("a holiday with this name and date already exists")
)

type (
	Repository interface {
		CheckUniqueness(ctx context.Context, name string, date time.Time, excluded []Holiday) error
		CreateHoliday(ctx context.Context, hol Holiday) (Holiday, error)
		// QueryHolidays applies AND operation on available QueryFilter fields.
		// Recurring holidays match QueryFilter.Year and any From/To range
		// covering their month and day.
		QueryHolidays(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Holiday, error)
		GetHolidayByID(ctx context.Context, id string) (Holiday, error)
		UpdateHoliday(ctx context.Context, hol Holiday) (Holiday, error)
		DeleteHolidaysByID(ctx context.Context, ids []string) (int, error)
	}

	Service interface {
		Create(ctx context.Context, nh NewHoliday) (Holiday, error)
		Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Holiday, error)
		GetByID(ctx context.Context, id string) (Holiday, error)
		Update(ctx context.Context, id string, uh UpdateHoliday) (Holiday, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) checkUniqueness(ctx context.Context, name string, date time.Time, excl ...Holiday) error {
	if err := svc.repo.CheckUniqueness(ctx, name, date, excl); err != nil {
		if errors.Cause(err) == ErrExists {
			return core.NewValidationError(err, core.FieldError{Field: "name", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nh NewHoliday) (Holiday, error) {
	if err := svc.checkUniqueness(ctx, nh.Name, nh.Date); err != nil {
		return Holiday{}, err
	}

	now := time.Now().UTC()
	hol := Holiday{
		Name:      nh.Name,
		Date:      nh.Date.UTC().Truncate(24 * time.Hour),
		Recurring: nh.Recurring,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateHoliday(ctx, hol)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Holiday, error) {
	return svc.repo.QueryHolidays(ctx, filter, ordering)
}

func (svc *service) GetByID(ctx context.Context, id string) (Holiday, error) {
	return svc.repo.GetHolidayByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, uh UpdateHoliday) (Holiday, error) {
	orig, err := svc.GetByID(ctx, id)
	if err != nil {
		return Holiday{}, err
	}
	if err := svc.checkUniqueness(ctx, uh.Name, uh.Date, orig); err != nil {
		return Holiday{}, err
	}

	hol := orig
	hol.Name = uh.Name
	hol.Date = uh.Date.UTC().Truncate(24 * time.Hour)
	if uh.Recurring != nil {
		hol.Recurring = *uh.Recurring
	}
	hol.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateHoliday(ctx, hol)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteHolidaysByID(ctx, ids)
	return err
}
