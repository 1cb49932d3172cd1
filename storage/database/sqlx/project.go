package sqlxrepos

import (
	"context"
	"database/sql"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/timeoff/core"
	"github.com/trezcool/timeoff/core/project"
)

var projectColumns = []string{
	"id", "name", "client", "category", "color", "billable",
	"start_date", "end_date", "is_active", "created_at", "updated_at",
}

type projectRow struct {
	ID        string      `db:"id"`
	Name      string      `db:"name"`
	Client    string      `db:"client"`
	Category  null.String `db:"category"`
	Color     null.String `db:"color"`
	Billable  bool        `db:"billable"`
	StartDate null.Time   `db:"start_date"`
	EndDate   null.Time   `db:"end_date"`
	IsActive  null.Bool   `db:"is_active"`
	CreatedAt null.Time   `db:"created_at"`
	UpdatedAt null.Time   `db:"updated_at"`
}

func (row projectRow) toProject() project.Project {
	prj := project.Project{
		ID:        row.ID,
		Name:      row.Name,
		Client:    row.Client,
		Category:  row.Category.String,
		Color:     row.Color.String,
		Billable:  row.Billable,
		StartDate: row.StartDate.Time,
		EndDate:   row.EndDate.Time,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
	if row.IsActive.Valid {
		prj.SetActive(row.IsActive.Bool)
	}
	return prj
}

func projectValues(prj project.Project) []interface{} {
	return []interface{}{
		prj.ID,
		prj.Name,
		prj.Client,
		null.StringFrom(prj.Category),
		null.StringFrom(prj.Color),
		prj.Billable,
		null.NewTime(prj.StartDate, !prj.StartDate.IsZero()),
		null.NewTime(prj.EndDate, !prj.EndDate.IsZero()),
		null.BoolFromPtr(prj.IsActive),
		null.TimeFrom(prj.CreatedAt),
		null.TimeFrom(prj.UpdatedAt),
	}
}

type projectRepository struct {
	db sqlx.ExtContext
}

var _ project.Repository = (*projectRepository)(nil)

func NewProjectRepository(db sqlx.ExtContext) *projectRepository {
	return &projectRepository{db: db}
}

func (repo *projectRepository) CheckUniqueness(ctx context.Context, name, client string, excluded []project.Project) error {
	b := psql.Select("id").
		From("project").
		Where(sq.Expr("LOWER(name) = LOWER(?)", name)).
		Where(sq.Expr("LOWER(client) = LOWER(?)", client)).
		Limit(1)
	if len(excluded) > 0 {
		ids := make([]string, 0, len(excluded))
		for _, prj := range excluded {
			ids = append(ids, prj.ID)
		}
		b = b.Where(sq.NotEq{"id": ids})
	}
	query, args, err := b.ToSql()
	if err != nil {
		return errors.Wrap(err, "building query")
	}

	var id string
	if err = sqlx.GetContext(ctx, repo.db, &id, query, args...); err != nil {
		if errors.Cause(err) == sql.ErrNoRows {
			return nil
		}
		return errors.Wrap(err, "checking project uniqueness")
	}
	return project.ErrExists
}

func (repo *projectRepository) CreateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	prj.ID = uuid.New().String()
	query, args, err := psql.Insert("project").
		Columns(projectColumns...).
		Values(projectValues(prj)...).
		ToSql()
	if err != nil {
		return project.Project{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return project.Project{}, errors.Wrap(err, "creating project")
	}
	return prj, nil
}

func (repo *projectRepository) QueryProjects(ctx context.Context, filter *project.QueryFilter, ordering []core.DBOrdering) ([]project.Project, error) {
	b := psql.Select(projectColumns...).From("project")
	if filter != nil && !filter.IsEmpty() {
		if filter.Search != "" {
			p := searchPattern(filter.Search)
			b = b.Where(sq.Or{
				sq.Expr("name ILIKE ?", p),
				sq.Expr("client ILIKE ?", p),
				sq.Expr("category ILIKE ?", p),
			})
		}
		if filter.Client != "" {
			b = b.Where(sq.Expr("LOWER(client) = LOWER(?)", filter.Client))
		}
		if filter.Category != "" {
			b = b.Where(sq.Expr("LOWER(category) = LOWER(?)", filter.Category))
		}
		if filter.Billable != nil {
			b = b.Where(sq.Eq{"billable": *filter.Billable})
		}
		if filter.IsActive != nil {
			b = b.Where(sq.Eq{"is_active": *filter.IsActive})
		}
	}
	query, args, err := orderBy(b, ordering, "name ASC", projectColumns).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []projectRow
	if err = sqlx.SelectContext(ctx, repo.db, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying projects")
	}
	prjs := make([]project.Project, 0, len(rows))
	for _, row := range rows {
		prjs = append(prjs, row.toProject())
	}
	return prjs, nil
}

func (repo *projectRepository) GetProjectByID(ctx context.Context, id string) (project.Project, error) {
	query, args, err := psql.Select(projectColumns...).
		From("project").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return project.Project{}, errors.Wrap(err, "building query")
	}

	var row projectRow
	if err = sqlx.GetContext(ctx, repo.db, &row, query, args...); err != nil {
		return project.Project{}, trapNoRowsErr(err, project.ErrNotFound)
	}
	return row.toProject(), nil
}

func (repo *projectRepository) UpdateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	vals := projectValues(prj)
	setMap := make(map[string]interface{}, len(projectColumns)-1)
	for i, col := range projectColumns[1:] {
		setMap[col] = vals[i+1]
	}
	query, args, err := psql.Update("project").
		SetMap(setMap).
		Where(sq.Eq{"id": prj.ID}).
		ToSql()
	if err != nil {
		return project.Project{}, errors.Wrap(err, "building query")
	}

	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return project.Project{}, errors.Wrap(err, "updating project")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return project.Project{}, project.ErrNotFound
	}
	return prj, nil
}

func (repo *projectRepository) DeleteProjectsByID(ctx context.Context, ids []string) (int, error) {
	query, args, err := psql.Delete("project").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting projects")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}

func (repo *projectRepository) QueryClients(ctx context.Context) ([]string, error) {
	return repo.queryDistinct(ctx, "client")
}

func (repo *projectRepository) QueryCategories(ctx context.Context) ([]string, error) {
	return repo.queryDistinct(ctx, "category")
}

func (repo *projectRepository) queryDistinct(ctx context.Context, col string) ([]string, error) {
	query, args, err := psql.Select("DISTINCT " + col).
		From("project").
		Where(sq.NotEq{col: nil}).
		Where(sq.NotEq{col: ""}).
		OrderBy(col + " ASC").
		ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var vals []string
	if err = sqlx.SelectContext(ctx, repo.db, &vals, query, args...); err != nil {
		return nil, errors.Wrapf(err, "querying distinct %s", col)
	}
	return vals, nil
}
