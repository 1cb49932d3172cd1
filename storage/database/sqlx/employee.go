package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/timeoff/core"
	"github.com/trezcool/timeoff/core/employee"
)

var employeeColumns = []string{
	"id", "name", "username", "email", "team", "job_title", "weekly_hours",
	"start_date", "is_active", "roles", "password_hash", "created_at", "updated_at", "last_login",
}

type employeeRow struct {
	ID           string         `db:"id"`
	Name         null.String    `db:"name"`
	Username     null.String    `db:"username"`
	Email        null.String    `db:"email"`
	Team         null.String    `db:"team"`
	JobTitle     null.String    `db:"job_title"`
	WeeklyHours  float64        `db:"weekly_hours"`
	StartDate    null.Time      `db:"start_date"`
	IsActive     null.Bool      `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash null.Bytes     `db:"password_hash"`
	CreatedAt    null.Time      `db:"created_at"`
	UpdatedAt    null.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func (row employeeRow) toEmployee() employee.Employee {
	emp := employee.Employee{
		ID:           row.ID,
		Name:         row.Name.String,
		Username:     row.Username.String,
		Email:        row.Email.String,
		Team:         row.Team.String,
		JobTitle:     row.JobTitle.String,
		WeeklyHours:  row.WeeklyHours,
		StartDate:    row.StartDate.Time,
		Roles:        row.Roles,
		PasswordHash: row.PasswordHash.Bytes,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
		LastLogin:    row.LastLogin.Time,
	}
	if row.IsActive.Valid {
		emp.SetActive(row.IsActive.Bool)
	}
	return emp
}

func employeeValues(emp employee.Employee) []interface{} {
	return []interface{}{
		emp.ID,
		null.StringFrom(emp.Name),
		null.StringFrom(emp.Username),
		null.StringFrom(emp.Email),
		null.StringFrom(emp.Team),
		null.StringFrom(emp.JobTitle),
		emp.WeeklyHours,
		null.NewTime(emp.StartDate, !emp.StartDate.IsZero()),
		null.BoolFromPtr(emp.IsActive),
		pq.StringArray(emp.Roles),
		null.BytesFrom(emp.PasswordHash),
		null.TimeFrom(emp.CreatedAt),
		null.TimeFrom(emp.UpdatedAt),
		null.NewTime(emp.LastLogin, !emp.LastLogin.IsZero()),
	}
}

type employeeRepository struct {
	db sqlx.ExtContext
}

var _ employee.Repository = (*employeeRepository)(nil)

func NewEmployeeRepository(db sqlx.ExtContext) *employeeRepository {
	return &employeeRepository{db: db}
}

func (repo *employeeRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excluded []employee.Employee) error {
	b := psql.Select("username", "email").
		From("employee").
		Where(sq.Or{
			sq.Expr("LOWER(username) = LOWER(?)", username),
			sq.Expr("LOWER(email) = LOWER(?)", email),
		}).
		Limit(1)
	if len(excluded) > 0 {
		ids := make([]string, 0, len(excluded))
		for _, emp := range excluded {
			ids = append(ids, emp.ID)
		}
		b = b.Where(sq.NotEq{"id": ids})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}

	var row employeeRow
	if err = sqlx.GetContext(ctx, repo.db, &row, query, args...); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return nil
		}
		return errors.Wrap(err, "checking employee uniqueness")
	}
	if row.Username.Valid && core.CleanString(row.Username.String, true /* lower */) == core.CleanString(username, true /* lower */) {
		return employee.ErrUsernameExists
	}
	return employee.ErrEmailExists
}

func (repo *employeeRepository) CreateEmployee(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	emp.ID = uuid.New().String()
	query, args, err := psql.Insert("employee").
		Columns(employeeColumns...).
		Values(employeeValues(emp)...).
		ToSql()
	if err != nil {
		return employee.Employee{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return employee.Employee{}, errors.Wrap(err, "creating employee")
	}
	return emp, nil
}

func (repo *employeeRepository) QueryEmployees(ctx context.Context, filter *employee.QueryFilter, ordering []core.DBOrdering) ([]employee.Employee, error) {
	b := psql.Select(employeeColumns...).From("employee")
	if filter != nil && !filter.IsEmpty() {
		if filter.Search != "" {
			p := searchPattern(filter.Search)
			b = b.Where(sq.Or{
				sq.Expr("name ILIKE ?", p),
				sq.Expr("username ILIKE ?", p),
				sq.Expr("email ILIKE ?", p),
			})
		}
		if filter.Roles != nil {
			b = b.Where(rolePrefixFilter(filter.Roles))
		}
		if filter.Team != "" {
			b = b.Where(sq.Expr("LOWER(team) = LOWER(?)", filter.Team))
		}
		if filter.IsActive != nil {
			b = b.Where(sq.Eq{"is_active": *filter.IsActive})
		}
		if !filter.CreatedFrom.IsZero() {
			b = b.Where(sq.GtOrEq{"created_at": filter.CreatedFrom})
		}
		if !filter.CreatedTo.IsZero() {
			b = b.Where(sq.LtOrEq{"created_at": filter.CreatedTo})
		}
	}
	query, args, err := orderBy(b, ordering, "created_at DESC", employeeColumns).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []employeeRow
	if err = sqlx.SelectContext(ctx, repo.db, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying employees")
	}
	emps := make([]employee.Employee, 0, len(rows))
	for _, row := range rows {
		emps = append(emps, row.toEmployee())
	}
	return emps, nil
}

func (repo *employeeRepository) GetEmployee(ctx context.Context, filter employee.GetFilter) (employee.Employee, error) {
	b := psql.Select(employeeColumns...).From("employee").Limit(1)
	switch {
	case filter.ID != "":
		b = b.Where(sq.Eq{"id": filter.ID})
	case filter.Username != "":
		b = b.Where(sq.Expr("LOWER(username) = LOWER(?)", filter.Username))
	case filter.Email != "":
		b = b.Where(sq.Expr("LOWER(email) = LOWER(?)", filter.Email))
	case len(filter.UsernameOrEmail) > 0:
		or := make(sq.Or, 0, 2*len(filter.UsernameOrEmail))
		for _, uname := range filter.UsernameOrEmail {
			or = append(or,
				sq.Expr("LOWER(username) = LOWER(?)", uname),
				sq.Expr("LOWER(email) = LOWER(?)", uname),
			)
		}
		b = b.Where(or)
	default:
		return employee.Employee{}, employee.ErrNotFound
	}
	query, args, err := b.ToSql()
	if err != nil {
		return employee.Employee{}, errors.Wrap(err, "building query")
	}

	var row employeeRow
	if err = sqlx.GetContext(ctx, repo.db, &row, query, args...); err != nil {
		return employee.Employee{}, trapNoRowsErr(err, employee.ErrNotFound)
	}
	return row.toEmployee(), nil
}

func (repo *employeeRepository) UpdateEmployee(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	vals := employeeValues(emp)
	setMap := make(map[string]interface{}, len(employeeColumns)-1)
	for i, col := range employeeColumns[1:] {
		setMap[col] = vals[i+1]
	}
	query, args, err := psql.Update("employee").
		SetMap(setMap).
		Where(sq.Eq{"id": emp.ID}).
		ToSql()
	if err != nil {
		return employee.Employee{}, errors.Wrap(err, "building query")
	}

	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return employee.Employee{}, errors.Wrap(err, "updating employee")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return employee.Employee{}, employee.ErrNotFound
	}
	return emp, nil
}

func (repo *employeeRepository) UpdateOrCreateEmployee(ctx context.Context, emp employee.Employee) (employee.Employee, error) {
	existing, err := repo.GetEmployee(ctx, employee.GetFilter{Username: emp.Username})
	if err != nil {
		if errors.Cause(err) == employee.ErrNotFound {
			return repo.CreateEmployee(ctx, emp)
		}
		return employee.Employee{}, err
	}
	emp.ID = existing.ID
	emp.CreatedAt = existing.CreatedAt
	emp.UpdatedAt = time.Now().UTC()
	return repo.UpdateEmployee(ctx, emp)
}

func (repo *employeeRepository) DeleteEmployeesByID(ctx context.Context, ids []string) (int, error) {
	query, args, err := psql.Delete("employee").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting employees")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
