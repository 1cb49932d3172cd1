package dummydb

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/trezcool/timeoff/core"
	"github.com/trezcool/timeoff/core/leave"
)

type leaveRepository struct {
	db *leaveTable
}

var _ leave.Repository = (*leaveRepository)(nil) // interface compliance check

func NewLeaveRepository(db *DB) leave.Repository {
	return &leaveRepository{db: db.leave}
}

func (repo *leaveRepository) query() []leave.Request {
	reqs := make([]leave.Request, 0, len(repo.db.table))
	for _, req := range repo.db.table {
		reqs = append(reqs, *req)
	}
	sort.Slice(reqs, func(i, j int) bool { return reqs[i].StartDate.After(reqs[j].StartDate) })
	return reqs
}

func (repo *leaveRepository) CreateRequest(ctx context.Context, req leave.Request) (leave.Request, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	req.ID = uuid.New().String()
	repo.db.table[req.ID] = &req
	return req, nil
}

func (repo *leaveRepository) QueryRequests(ctx context.Context, filter *leave.QueryFilter, ordering []core.DBOrdering) ([]leave.Request, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	reqs := repo.query()
	if filter == nil || filter.IsEmpty() {
		return reqs, nil
	}

	filtered := make([]leave.Request, 0, len(reqs))
	for _, req := range reqs {
		if filter.EmployeeID != "" && req.EmployeeID != filter.EmployeeID {
			continue
		}
		if filter.Status != "" && req.Status != filter.Status {
			continue
		}
		if filter.Type != "" && req.Type != filter.Type {
			continue
		}
		if !filter.From.IsZero() && req.EndDate.Before(filter.From) {
			continue
		}
		if !filter.To.IsZero() && req.StartDate.After(filter.To) {
			continue
		}
		filtered = append(filtered, req)
	}
	return filtered, nil
}

func (repo *leaveRepository) GetRequestByID(ctx context.Context, id string) (leave.Request, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if req, ok := repo.db.table[id]; ok {
		return *req, nil
	}
	return leave.Request{}, leave.ErrNotFound
}

func (repo *leaveRepository) UpdateRequest(ctx context.Context, req leave.Request) (leave.Request, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[req.ID]; !ok {
		return leave.Request{}, leave.ErrNotFound
	}
	repo.db.table[req.ID] = &req
	return req, nil
}

func (repo *leaveRepository) DeleteRequestsByID(ctx context.Context, ids []string) (int, error) {
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
