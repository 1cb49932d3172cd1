package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/timeoff/core"
	"github.com/trezcool/timeoff/core/employee"
)

type employeeRepository struct {
	db *employeeTable
}

var _ employee.Repository = (*employeeRepository)(nil) // interface compliance check

func NewEmployeeRepository(db *DB) employee.Repository {
	return &employeeRepository{db: db.employee}
}

func (repo *employeeRepository) query() []employee.Employee {
	emps := make([]employee.Employee, 0, len(repo.db.table))
	for _, emp := range repo.db.table {
		emps = append(emps, *emp)
	}
	sort.Slice(emps, func(i, j int) bool { return emps[i].CreatedAt.After(emps[j].CreatedAt) })
	return emps
}

func (repo *employeeRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excluded []employee.Employee) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excludedIDs := make(map[string]bool, len(excluded))
	for _, emp := range excluded {
		excludedIDs[emp.ID] = true
	}
	for _, emp := range repo.query() {
		if excludedIDs[emp.ID] {
			continue
		}
		if strings.EqualFold(emp.Username, username) {
			return employee.ErrUsernameExists
		}
		if strings.EqualFold(emp.Email, email) {
			return employee.ErrEmailExists
		}
	}
	return nil
}

func (repo *employeeRepository) CreateEmployee(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	emp.ID = uuid.New().String()
	repo.db.table[emp.ID] = &emp
	return emp, nil
}

func (repo *employeeRepository) QueryEmployees(ctx context.Context, filter *employee.QueryFilter, ordering []core.DBOrdering) ([]employee.Employee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	emps := repo.query()
	if filter == nil || filter.IsEmpty() {
		return emps, nil
	}

	filtered := make([]employee.Employee, 0, len(emps))
	for _, emp := range emps {
		if filter.Search != "" &&
			!containsFold(emp.Name, filter.Search) &&
			!containsFold(emp.Username, filter.Search) &&
			!containsFold(emp.Email, filter.Search) {
			continue
		}
		if filter.Roles != nil && !hasAnyRole(emp, filter.Roles) {
			continue
		}
		if filter.Team != "" && !strings.EqualFold(emp.Team, filter.Team) {
			continue
		}
		if filter.IsActive != nil && emp.Active() != *filter.IsActive {
			continue
		}
		if !filter.CreatedFrom.IsZero() && emp.CreatedAt.Before(filter.CreatedFrom.UTC()) {
			continue
		}
		if !filter.CreatedTo.IsZero() && emp.CreatedAt.After(filter.CreatedTo.UTC()) {
			continue
		}
		filtered = append(filtered, emp)
	}
	return filtered, nil
}

func (repo *employeeRepository) GetEmployee(ctx context.Context, filter employee.GetFilter) (employee.Employee, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if emp, ok := repo.db.table[filter.ID]; ok {
			return *emp, nil
		}
		return employee.Employee{}, employee.ErrNotFound
	}
	for _, emp := range repo.query() {
		switch {
		case filter.Username != "":
			if strings.EqualFold(emp.Username, filter.Username) {
				return emp, nil
			}
		case filter.Email != "":
			if strings.EqualFold(emp.Email, filter.Email) {
				return emp, nil
			}
		case len(filter.UsernameOrEmail) > 0:
			for _, uname := range filter.UsernameOrEmail {
				if strings.EqualFold(emp.Username, uname) || strings.EqualFold(emp.Email, uname) {
					return emp, nil
				}
			}
		}
	}
	return employee.Employee{}, employee.ErrNotFound
}

func (repo *employeeRepository) UpdateEmployee(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[emp.ID]; !ok {
		return employee.Employee{}, employee.ErrNotFound
	}
	repo.db.table[emp.ID] = &emp
	return emp, nil
}

func (repo *employeeRepository) UpdateOrCreateEmployee(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	existing, err := repo.GetEmployee(ctx, employee.GetFilter{Username: emp.Username})
	if err == nil {
		emp.ID = existing.ID
		emp.CreatedAt = existing.CreatedAt
		return repo.UpdateEmployee(ctx, emp)
	}
	return repo.CreateEmployee(ctx, emp)
}

func (repo *employeeRepository) DeleteEmployeesByID(ctx context.Context, ids []string) (int, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	var n int
	for _, id := range ids {
		if _, ok := repo.db.table[id]; ok {
			delete(repo.db.table, id)
			n++
		}
	}
	return n, nil
}

func hasAnyRole(emp employee.Employee, roles []string) bool {
	for _, role := range roles {
		if emp.RoleStartsWith(role) {
			return true
		}
	}
	return false
}
