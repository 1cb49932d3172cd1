package sqlxrepos

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/timeoff/core"
	"github.com/trezcool/timeoff/core/assignment"
)

var assignmentColumns = []string{
	"id", "employee_id", "project_id", "hours_per_week",
	"start_date", "end_date", "note", "created_at", "updated_at",
}

type assignmentRow struct {
	ID           string      `db:"id"`
	EmployeeID   string      `db:"employee_id"`
	ProjectID    string      `db:"project_id"`
	HoursPerWeek float64     `db:"hours_per_week"`
	StartDate    time.Time   `db:"start_date"`
	EndDate      time.Time   `db:"end_date"`
	Note         null.String `db:"note"`
	CreatedAt    null.Time   `db:"created_at"`
	UpdatedAt    null.Time   `db:"updated_at"`
}

func (row assignmentRow) toAssignment() assignment.Assignment {
	return assignment.Assignment{
		ID:           row.ID,
		EmployeeID:   row.EmployeeID,
		ProjectID:    row.ProjectID,
		HoursPerWeek: row.HoursPerWeek,
		StartDate:    row.StartDate,
		EndDate:      row.EndDate,
		Note:         row.Note.String,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
}

func assignmentValues(asg assignment.Assignment) []interface{} {
	return []interface{}{
		asg.ID,
		asg.EmployeeID,
		asg.ProjectID,
		asg.HoursPerWeek,
		asg.StartDate,
		asg.EndDate,
		null.StringFrom(asg.Note),
		null.TimeFrom(asg.CreatedAt),
		null.TimeFrom(asg.UpdatedAt),
	}
}

type assignmentRepository struct {
	db sqlx.ExtContext
}

var _ assignment.Repository = (*assignmentRepository)(nil)

func NewAssignmentRepository(db sqlx.ExtContext) *assignmentRepository {
	return &assignmentRepository{db: db}
}

func (repo *assignmentRepository) CreateAssignment(ctx context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	asg.ID = uuid.New().String()
	query, args, err := psql.Insert("assignment").
		Columns(assignmentColumns...).
		Values(assignmentValues(asg)...).
		ToSql()
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "creating assignment")
	}
	return asg, nil
}

func (repo *assignmentRepository) QueryAssignments(ctx context.Context, filter *assignment.QueryFilter, ordering []core.DBOrdering) ([]assignment.Assignment, error) {
	b := psql.Select(assignmentColumns...).From("assignment")
	if filter != nil && !filter.IsEmpty() {
		if filter.EmployeeID != "" {
			b = b.Where(sq.Eq{"employee_id": filter.EmployeeID})
		}
		if filter.ProjectID != "" {
			b = b.Where(sq.Eq{"project_id": filter.ProjectID})
		}
		if !filter.From.IsZero() {
			b = b.Where(sq.GtOrEq{"end_date": filter.From})
		}
		if !filter.To.IsZero() {
			b = b.Where(sq.LtOrEq{"start_date": filter.To})
		}
	}
	query, args, err := orderBy(b, ordering, "start_date ASC", assignmentColumns).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []assignmentRow
	if err = sqlx.SelectContext(ctx, repo.db, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying assignments")
	}
	asgs := make([]assignment.Assignment, 0, len(rows))
	for _, row := range rows {
		asgs = append(asgs, row.toAssignment())
	}
	return asgs, nil
}

func (repo *assignmentRepository) GetAssignmentByID(ctx context.Context, id string) (assignment.Assignment, error) {
	query, args, err := psql.Select(assignmentColumns...).
		From("assignment").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "building query")
	}

	var row assignmentRow
	if err = sqlx.GetContext(ctx, repo.db, &row, query, args...); err != nil {
		return assignment.Assignment{}, trapNoRowsErr(err, assignment.ErrNotFound)
	}
	return row.toAssignment(), nil
}

func (repo *assignmentRepository) UpdateAssignment(ctx context.Context, asg assignment.Assignment) (assignment.Assignment, error) {
	vals := assignmentValues(asg)
	setMap := make(map[string]interface{}, len(assignmentColumns)-1)
	for i, col := range assignmentColumns[1:] {
		setMap[col] = vals[i+1]
	}
	query, args, err := psql.Update("assignment").
		SetMap(setMap).
		Where(sq.Eq{"id": asg.ID}).
		ToSql()
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "building query")
	}

	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return assignment.Assignment{}, errors.Wrap(err, "updating assignment")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return assignment.Assignment{}, assignment.ErrNotFound
	}
	return asg, nil
}

func (repo *assignmentRepository) DeleteAssignmentsByID(ctx context.Context, ids []string) (int, error) {
	query, args, err := psql.Delete("assignment").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting assignments")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
