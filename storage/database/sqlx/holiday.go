package sqlxrepos

import (
	"context"
	"database/sql"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/trezcool/timeoff/core"
	"github.com/trezcool/timeoff/core/holiday"
)

var holidayColumns = []string{"id", "name", "date", "recurring", "created_at", "updated_at"}

type holidayRow struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Date      time.Time `db:"date"`
	Recurring bool      `db:"recurring"`
	CreatedAt null.Time `db:"created_at"`
	UpdatedAt null.Time `db:"updated_at"`
}

func (row holidayRow) toHoliday() holiday.Holiday {
	return holiday.Holiday{
		ID:        row.ID,
		Name:      row.Name,
		Date:      row.Date,
		Recurring: row.Recurring,
		CreatedAt: row.CreatedAt.Time,
		UpdatedAt: row.UpdatedAt.Time,
	}
}

func holidayValues(hol holiday.Holiday) []interface{} {
	return []interface{}{
		hol.ID,
		hol.Name,
		hol.Date,
		hol.Recurring,
		null.TimeFrom(hol.CreatedAt),
		null.TimeFrom(hol.UpdatedAt),
	}
}

type holidayRepository struct {
	db sqlx.ExtContext
}

var _ holiday.Repository = (*holidayRepository)(nil)

func NewHolidayRepository(db sqlx.ExtContext) *holidayRepository {
	return &holidayRepository{db: db}
}

func (repo *holidayRepository) CheckUniqueness(ctx context.Context, name string, date time.Time, excluded []holiday.Holiday) error {
	b := psql.Select("id").
		From("holiday").
		Where(sq.Expr("LOWER(name) = LOWER(?)", name)).
		Where(sq.Eq{"date": date}).
		Limit(1)
	if len(excluded) > 0 {
		ids := make([]string, 0, len(excluded))
		for _, hol := range excluded {
			ids = append(ids, hol.ID)
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
		return errors.Wrap(err, "checking holiday uniqueness")
	}
	return holiday.ErrExists
}

func (repo *holidayRepository) CreateHoliday(ctx context.Context, hol holiday.Holiday) (holiday.Holiday, error) {
	hol.ID = uuid.New().String()
	query, args, err := psql.Insert("holiday").
		Columns(holidayColumns...).
		Values(holidayValues(hol)...).
		ToSql()
	if err != nil {
		return holiday.Holiday{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return holiday.Holiday{}, errors.Wrap(err, "creating holiday")
	}
	return hol, nil
}

func (repo *holidayRepository) QueryHolidays(ctx context.Context, filter *holiday.QueryFilter, ordering []core.DBOrdering) ([]holiday.Holiday, error) {
	b := psql.Select(holidayColumns...).From("holiday")

	// recurring holidays are date-filtered in Go; only fixed ones can be
	// narrowed down in SQL.
	if filter != nil && !filter.IsEmpty() {
		fixed := sq.And{sq.Eq{"recurring": false}}
		if filter.Year != 0 {
			fixed = append(fixed, sq.Expr("EXTRACT(YEAR FROM date) = ?", filter.Year))
		}
		if !filter.From.IsZero() {
			fixed = append(fixed, sq.GtOrEq{"date": filter.From})
		}
		if !filter.To.IsZero() {
			fixed = append(fixed, sq.LtOrEq{"date": filter.To})
		}
		b = b.Where(sq.Or{sq.Eq{"recurring": true}, fixed})
	}
	query, args, err := orderBy(b, ordering, "date ASC", holidayColumns).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []holidayRow
	if err = sqlx.SelectContext(ctx, repo.db, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying holidays")
	}
	hols := make([]holiday.Holiday, 0, len(rows))
	for _, row := range rows {
		hol := row.toHoliday()
		if hol.Recurring && filter != nil && !recurringInRange(hol, filter.From, filter.To) {
			continue
		}
		hols = append(hols, hol)
	}
	return hols, nil
}

// recurringInRange reports whether a recurring holiday's month and day fall
// within [from, to] in some year. Zero bounds are open-ended.
func recurringInRange(hol holiday.Holiday, from, to time.Time) bool {
	if from.IsZero() && to.IsZero() {
		return true
	}
	if from.IsZero() {
		from = to.AddDate(-1, 0, 1)
	}
	if to.IsZero() {
		to = from.AddDate(1, 0, -1)
	}
	if !to.Before(from.AddDate(1, 0, -1)) {
		return true // a full year covers every month/day pair
	}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if hol.Matches(day) {
			return true
		}
	}
	return false
}

func (repo *holidayRepository) GetHolidayByID(ctx context.Context, id string) (holiday.Holiday, error) {
	query, args, err := psql.Select(holidayColumns...).
		From("holiday").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return holiday.Holiday{}, errors.Wrap(err, "building query")
	}

	var row holidayRow
	if err = sqlx.GetContext(ctx, repo.db, &row, query, args...); err != nil {
		return holiday.Holiday{}, trapNoRowsErr(err, holiday.ErrNotFound)
	}
	return row.toHoliday(), nil
}

func (repo *holidayRepository) UpdateHoliday(ctx context.Context, hol holiday.Holiday) (holiday.Holiday, error) {
	vals := holidayValues(hol)
	setMap := make(map[string]interface{}, len(holidayColumns)-1)
	for i, col := range holidayColumns[1:] {
		setMap[col] = vals[i+1]
	}
	query, args, err := psql.Update("holiday").
		SetMap(setMap).
		Where(sq.Eq{"id": hol.ID}).
		ToSql()
	if err != nil {
		return holiday.Holiday{}, errors.Wrap(err, "building query")
	}

	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return holiday.Holiday{}, errors.Wrap(err, "updating holiday")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return holiday.Holiday{}, holiday.ErrNotFound
	}
	return hol, nil
}

func (repo *holidayRepository) DeleteHolidaysByID(ctx context.Context, ids []string) (int, error) {
	query, args, err := psql.Delete("holiday").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting holidays")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
