package tests

import (
	"os"
	"testing"

	echoapi "github.com/trezcool/timeoff/apps/api/echo"
	"github.com/trezcool/timeoff/core"
	"github.com/trezcool/timeoff/core/analytics"
	"github.com/trezcool/timeoff/core/assignment"
	"github.com/trezcool/timeoff/core/employee"
	"github.com/trezcool/timeoff/core/holiday"
	"github.com/trezcool/timeoff/core/leave"
	"github.com/trezcool/timeoff/core/project"
	emailsvc "github.com/trezcool/timeoff/services/email"
	dummydb "github.com/trezcool/timeoff/storage/database/dummy"
)

var (
	conf *core.Config

	empRepo   employee.Repository
	holRepo   holiday.Repository
	prjRepo   project.Repository
	asgRepo   assignment.Repository
	leaveRepo leave.Repository

	empSvc   employee.Service
	leaveSvc leave.Service

	errMissingToken = httpErr{Error: "missing or malformed jwt"}
	errForbidden    = httpErr{Error: "permission denied"}
	errNotFound     = httpErr{Error: "not found"}
)

func TestMain(m *testing.M) {
	conf = core.NewConfig()
	conf.Debug = false
	conf.TestMode = true

	core.InitValidators()
	employee.InitValidators()

	os.Exit(m.Run())
}

// setup builds a fresh in-memory server for each test.
func setup(t *testing.T) echoapi.Server {
	db, err := dummydb.Open()
	if err != nil {
		t.Fatalf("dummydb.Open(): %v", err)
	}

	// set up repos
	empRepo = dummydb.NewEmployeeRepository(db)
	holRepo = dummydb.NewHolidayRepository(db)
	prjRepo = dummydb.NewProjectRepository(db)
	asgRepo = dummydb.NewAssignmentRepository(db)
	leaveRepo = dummydb.NewLeaveRepository(db)

	// set up services
	mailSvc := emailsvc.NewConsoleServiceMock(conf)
	empSvc = employee.NewServiceMock(empRepo, mailSvc, conf)
	holSvc := holiday.NewService(holRepo)
	prjSvc := project.NewService(prjRepo)
	asgSvc := assignment.NewService(asgRepo, empSvc, prjSvc)
	leaveSvc = leave.NewService(leaveRepo, empSvc, holSvc, mailSvc, conf)
	statsSvc := analytics.NewService(asgSvc, prjSvc, empSvc, leaveSvc, holSvc)

	// set up server
	return echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:           conf,
			Logger:         testLogger{},
			DisableReqLogs: true,

			EmployeeSvc:   empSvc,
			HolidaySvc:    holSvc,
			ProjectSvc:    prjSvc,
			AssignmentSvc: asgSvc,
			LeaveSvc:      leaveSvc,
			AnalyticsSvc:  statsSvc,
		},
	)
}
