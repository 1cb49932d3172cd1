package dummydb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/trezcool/timeoff/core"
	"github.com/trezcool/timeoff/core/project"
)

type projectRepository struct {
	db *projectTable
}

var _ project.Repository = (*projectRepository)(nil) // interface compliance check

func NewProjectRepository(db *DB) project.Repository {
	return &projectRepository{db: db.project}
}

func (repo *projectRepository) query() []project.Project {
	prjs := make([]project.Project, 0, len(repo.db.table))
	for _, prj := range repo.db.table {
		prjs = append(prjs, *prj)
	}
	sort.Slice(prjs, func(i, j int) bool { return prjs[i].Name < prjs[j].Name })
	return prjs
}

func (repo *projectRepository) CheckUniqueness(ctx context.Context, name, client string, excluded []project.Project) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excludedIDs := make(map[string]bool, len(excluded))
	for _, prj := range excluded {
		excludedIDs[prj.ID] = true
	}
	for _, prj := range repo.query() {
		if excludedIDs[prj.ID] {
			continue
		}
		if strings.EqualFold(prj.Name, name) && strings.EqualFold(prj.Client, client) {
			return project.ErrExists
		}
	}
	return nil
}

func (repo *projectRepository) CreateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	prj.ID = uuid.New().String()
	repo.db.table[prj.ID] = &prj
	return prj, nil
}

func (repo *projectRepository) QueryProjects(ctx context.Context, filter *project.QueryFilter, ordering []core.DBOrdering) ([]project.Project, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	prjs := repo.query()
	if filter == nil || filter.IsEmpty() {
		return prjs, nil
	}

	filtered := make([]project.Project, 0, len(prjs))
	for _, prj := range prjs {
		if filter.Search != "" &&
			!containsFold(prj.Name, filter.Search) &&
			!containsFold(prj.Client, filter.Search) &&
			!containsFold(prj.Category, filter.Search) {
			continue
		}
		if filter.Client != "" && !strings.EqualFold(prj.Client, filter.Client) {
			continue
		}
		if filter.Category != "" && !strings.EqualFold(prj.Category, filter.Category) {
			continue
		}
		if filter.Billable != nil && prj.Billable != *filter.Billable {
			continue
		}
		if filter.IsActive != nil && prj.Active() != *filter.IsActive {
			continue
		}
		filtered = append(filtered, prj)
	}
	return filtered, nil
}

func (repo *projectRepository) GetProjectByID(ctx context.Context, id string) (project.Project, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if prj, ok := repo.db.table[id]; ok {
		return *prj, nil
	}
	return project.Project{}, project.ErrNotFound
}

func (repo *projectRepository) UpdateProject(ctx context.Context, prj project.Project) (project.Project, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[prj.ID]; !ok {
		return project.Project{}, project.ErrNotFound
	}
	repo.db.table[prj.ID] = &prj
	return prj, nil
}

func (repo *projectRepository) DeleteProjectsByID(ctx context.Context, ids []string) (int, error) {
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

func (repo *projectRepository) QueryClients(ctx context.Context) ([]string, error) {
	return repo.queryDistinct(func(prj project.Project) string { return prj.Client }), nil
}

func (repo *projectRepository) QueryCategories(ctx context.Context) ([]string, error) {
	return repo.queryDistinct(func(prj project.Project) string { return prj.Category }), nil
}

func (repo *projectRepository) queryDistinct(get func(project.Project) string) []string {
	repo.db.RLock()
	defer repo.db.RUnlock()

	seen := make(map[string]bool)
	vals := make([]string, 0)
	for _, prj := range repo.query() {
		val := get(prj)
		if val == "" || seen[val] {
			continue
		}
		seen[val] = true
		vals = append(vals, val)
	}
	sort.Strings(vals)
	return vals
}
