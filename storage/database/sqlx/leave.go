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
	"github.com/trezcool/timeoff/core/leave"
)

var leaveColumns = []string{
	"id", "employee_id", "type", "start_date", "end_date", "start_half_day", "end_half_day",
	"reason", "status", "reviewer_id", "reviewed_at", "review_note", "created_at", "updated_at",
}

type leaveRow struct {
	ID           string      `db:"id"`
	EmployeeID   string      `db:"employee_id"`
	Type         string      `db:"type"`
	StartDate    time.Time   `db:"start_date"`
	EndDate      time.Time   `db:"end_date"`
	StartHalfDay bool        `db:"start_half_day"`
	EndHalfDay   bool        `db:"end_half_day"`
	Reason       null.String `db:"reason"`
	Status       string      `db:"status"`
	ReviewerID   null.String `db:"reviewer_id"`
	ReviewedAt   null.Time   `db:"reviewed_at"`
	ReviewNote   null.String `db:"review_note"`
	CreatedAt    null.Time   `db:"created_at"`
	UpdatedAt    null.Time   `db:"updated_at"`
}

func (row leaveRow) toRequest() leave.Request {
	return leave.Request{
		ID:           row.ID,
		EmployeeID:   row.EmployeeID,
		Type:         row.Type,
		StartDate:    row.StartDate,
		EndDate:      row.EndDate,
		StartHalfDay: row.StartHalfDay,
		EndHalfDay:   row.EndHalfDay,
		Reason:       row.Reason.String,
		Status:       row.Status,
		ReviewerID:   row.ReviewerID.String,
		ReviewedAt:   row.ReviewedAt.Time,
		ReviewNote:   row.ReviewNote.String,
		CreatedAt:    row.CreatedAt.Time,
		UpdatedAt:    row.UpdatedAt.Time,
	}
}

func leaveValues(req leave.Request) []interface{} {
	return []interface{}{
		req.ID,
		req.EmployeeID,
		req.Type,
		req.StartDate,
		req.EndDate,
		req.StartHalfDay,
		req.EndHalfDay,
		null.StringFrom(req.Reason),
		req.Status,
		null.NewString(req.ReviewerID, req.ReviewerID != ""),
		null.NewTime(req.ReviewedAt, !req.ReviewedAt.IsZero()),
		null.StringFrom(req.ReviewNote),
		null.TimeFrom(req.CreatedAt),
		null.TimeFrom(req.UpdatedAt),
	}
}

type leaveRepository struct {
	db sqlx.ExtContext
}

var _ leave.Repository = (*leaveRepository)(nil)

func NewLeaveRepository(db sqlx.ExtContext) *leaveRepository {
	return &leaveRepository{db: db}
}

func (repo *leaveRepository) CreateRequest(ctx context.Context, req leave.Request) (leave.Request, error) {
	req.ID = uuid.New().String()
	query, args, err := psql.Insert("leave_request").
		Columns(leaveColumns...).
		Values(leaveValues(req)...).
		ToSql()
	if err != nil {
		return leave.Request{}, errors.Wrap(err, "building query")
	}
	if _, err = repo.db.ExecContext(ctx, query, args...); err != nil {
		return leave.Request{}, errors.Wrap(err, "creating leave request")
	}
	return req, nil
}

func (repo *leaveRepository) QueryRequests(ctx context.Context, filter *leave.QueryFilter, ordering []core.DBOrdering) ([]leave.Request, error) {
	b := psql.Select(leaveColumns...).From("leave_request")
	if filter != nil && !filter.IsEmpty() {
		if filter.EmployeeID != "" {
			b = b.Where(sq.Eq{"employee_id": filter.EmployeeID})
		}
		if filter.Status != "" {
			b = b.Where(sq.Eq{"status": filter.Status})
		}
		if filter.Type != "" {
			b = b.Where(sq.Eq{"type": filter.Type})
		}
		if !filter.From.IsZero() {
			b = b.Where(sq.GtOrEq{"end_date": filter.From})
		}
		if !filter.To.IsZero() {
			b = b.Where(sq.LtOrEq{"start_date": filter.To})
		}
	}
	query, args, err := orderBy(b, ordering, "start_date DESC", leaveColumns).ToSql()
	if err != nil {
		return nil, errors.Wrap(err, "building query")
	}

	var rows []leaveRow
	if err = sqlx.SelectContext(ctx, repo.db, &rows, query, args...); err != nil {
		return nil, errors.Wrap(err, "querying leave requests")
	}
	reqs := make([]leave.Request, 0, len(rows))
	for _, row := range rows {
		reqs = append(reqs, row.toRequest())
	}
	return reqs, nil
}

func (repo *leaveRepository) GetRequestByID(ctx context.Context, id string) (leave.Request, error) {
	query, args, err := psql.Select(leaveColumns...).
		From("leave_request").
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return leave.Request{}, errors.Wrap(err, "building query")
	}

	var row leaveRow
	if err = sqlx.GetContext(ctx, repo.db, &row, query, args...); err != nil {
		return leave.Request{}, trapNoRowsErr(err, leave.ErrNotFound)
	}
	return row.toRequest(), nil
}

func (repo *leaveRepository) UpdateRequest(ctx context.Context, req leave.Request) (leave.Request, error) {
	vals := leaveValues(req)
	setMap := make(map[string]interface{}, len(leaveColumns)-1)
	for i, col := range leaveColumns[1:] {
		setMap[col] = vals[i+1]
	}
	query, args, err := psql.Update("leave_request").
		SetMap(setMap).
		Where(sq.Eq{"id": req.ID}).
		ToSql()
	if err != nil {
		return leave.Request{}, errors.Wrap(err, "building query")
	}

	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return leave.Request{}, errors.Wrap(err, "updating leave request")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return leave.Request{}, leave.ErrNotFound
	}
	return req, nil
}

func (repo *leaveRepository) DeleteRequestsByID(ctx context.Context, ids []string) (int, error) {
	query, args, err := psql.Delete("leave_request").Where(sq.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, errors.Wrap(err, "building query")
	}
	res, err := repo.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting leave requests")
	}
	n, _ := res.RowsAffected()
	return int(n), nil
}
