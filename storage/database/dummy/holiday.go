package dummydb

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/trezcool/timeoff/core"
	"github.com/trezcool/timeoff/core/holiday"
)

type holidayRepository struct {
	db *holidayTable
}

var _ holiday.Repository = (*holidayRepository)(nil) // interface compliance check

func NewHolidayRepository(db *DB) holiday.Repository {
	return &holidayRepository{db: db.holiday}
}

func (repo *holidayRepository) query() []holiday.Holiday {
	hols := make([]holiday.Holiday, 0, len(repo.db.table))
	for _, hol := range repo.db.table {
		hols = append(hols, *hol)
	}
	sort.Slice(hols, func(i, j int) bool { return hols[i].Date.Before(hols[j].Date) })
	return hols
}

func (repo *holidayRepository) CheckUniqueness(ctx context.Context, name string, date time.Time, excluded []holiday.Holiday) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excludedIDs := make(map[string]bool, len(excluded))
	for _, hol := range excluded {
		excludedIDs[hol.ID] = true
	}
	for _, hol := range repo.query() {
		if excludedIDs[hol.ID] {
			continue
		}
		if strings.EqualFold(hol.Name, name) && hol.Date.Equal(date) {
			return holiday.ErrExists
		}
	}
	return nil
}

func (repo *holidayRepository) CreateHoliday(ctx context.Context, hol holiday.Holiday) (holiday.Holiday, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	hol.ID = uuid.New().String()
	repo.db.table[hol.ID] = &hol
	return hol, nil
}

func (repo *holidayRepository) QueryHolidays(ctx context.Context, filter *holiday.QueryFilter, ordering []core.DBOrdering) ([]holiday.Holiday, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	hols := repo.query()
	if filter == nil || filter.IsEmpty() {
		return hols, nil
	}

	filtered := make([]holiday.Holiday, 0, len(hols))
	for _, hol := range hols {
		if filter.Year != 0 && !hol.Recurring && hol.Date.Year() != filter.Year {
			continue
		}
		if !matchesRange(hol, filter.From, filter.To) {
			continue
		}
		filtered = append(filtered, hol)
	}
	return filtered, nil
}

func matchesRange(hol holiday.Holiday, from, to time.Time) bool {
	if from.IsZero() && to.IsZero() {
		return true
	}
	if !hol.Recurring {
		if !from.IsZero() && hol.Date.Before(from) {
			return false
		}
		if !to.IsZero() && hol.Date.After(to) {
			return false
		}
		return true
	}
	if from.IsZero() {
		from = to.AddDate(-1, 0, 1)
	}
	if to.IsZero() {
		to = from.AddDate(1, 0, -1)
	}
	if !to.Before(from.AddDate(1, 0, -1)) {
		return true
	}
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		if hol.Matches(day) {
			return true
		}
	}
	return false
}

func (repo *holidayRepository) GetHolidayByID(ctx context.Context, id string) (holiday.Holiday, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if hol, ok := repo.db.table[id]; ok {
		return *hol, nil
	}
	return holiday.Holiday{}, holiday.ErrNotFound
}

func (repo *holidayRepository) UpdateHoliday(ctx context.Context, hol holiday.Holiday) (holiday.Holiday, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.table[hol.ID]; !ok {
		return holiday.Holiday{}, holiday.ErrNotFound
	}
	repo.db.table[hol.ID] = &hol
	return hol, nil
}

func (repo *holidayRepository) DeleteHolidaysByID(ctx context.Context, ids []string) (int, error) {
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
