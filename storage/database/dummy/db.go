// Package dummydb provides in-memory repositories for tests.
package dummydb

import (
	"sync"

	"github.com/trezcool/timeoff/core/assignment"
	"github.com/trezcool/timeoff/core/employee"
	"github.com/trezcool/timeoff/core/holiday"
	"github.com/trezcool/timeoff/core/leave"
	"github.com/trezcool/timeoff/core/project"
)

type (
	DB struct {
		employee   *employeeTable
		holiday    *holidayTable
		project    *projectTable
		assignment *assignmentTable
		leave      *leaveTable
	}

	employeeTable struct {
		sync.RWMutex
		table map[string]*employee.Employee
	}

	holidayTable struct {
		sync.RWMutex
		table map[string]*holiday.Holiday
	}

	projectTable struct {
		sync.RWMutex
		table map[string]*project.Project
	}

	assignmentTable struct {
		sync.RWMutex
		table map[string]*assignment.Assignment
	}

	leaveTable struct {
		sync.RWMutex
		table map[string]*leave.Request
	}
)

func Open() (*DB, error) {
	db := &DB{
		employee:   &employeeTable{table: make(map[string]*employee.Employee)},
		holiday:    &holidayTable{table: make(map[string]*holiday.Holiday)},
		project:    &projectTable{table: make(map[string]*project.Project)},
		assignment: &assignmentTable{table: make(map[string]*assignment.Assignment)},
		leave:      &leaveTable{table: make(map[string]*leave.Request)},
	}
	return db, nil
}
