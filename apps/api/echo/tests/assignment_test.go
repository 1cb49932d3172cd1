package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/timeoff/core/assignment"
	"github.com/trezcool/timeoff/core/employee"
	testutil "github.com/trezcool/timeoff/tests"
)

func Test_assignmentApi_create(t *testing.T) {
	app := setup(t)

	member := testutil.CreateEmployee(t, empRepo, "Hero", "hero", "hero@test.cd", "", []string{employee.RoleMember}, true)
	manager := testutil.CreateEmployee(t, empRepo, "Boss", "boss", "boss@test.cd", "", []string{employee.RoleManager}, true)
	managerToken := getToken(t, manager)

	website := testutil.CreateProject(t, prjRepo, "Website", "Acme", "development", true)
	branding := testutil.CreateProject(t, prjRepo, "Branding", "Globex", "design", false)

	monday := testutil.Date(2021, time.June, 7)
	friday := testutil.Date(2021, time.June, 25)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Manager required", token: getToken(t, member), wantCode: http.StatusForbidden,
			body:     marchallObj(t, assignment.NewAssignment{EmployeeID: member.ID, ProjectID: website.ID, HoursPerWeek: 20, StartDate: monday, EndDate: friday}),
			wantData: marchallObj(t, errForbidden),
		},
		{
			name: "required fields", token: managerToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"employee_id":    "this field is required",
				"project_id":     "this field is required",
				"hours_per_week": "this field is required",
				"start_date":     "this field is required",
				"end_date":       "this field is required",
			}),
		},
		{
			name: "unknown employee", token: managerToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, assignment.NewAssignment{EmployeeID: "lol", ProjectID: website.ID, HoursPerWeek: 20, StartDate: monday, EndDate: friday}),
			wantData: marchallObj(t, map[string]string{"employee_id": "employee does not exist"}),
		},
		{
			name: "unknown project", token: managerToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, assignment.NewAssignment{EmployeeID: member.ID, ProjectID: "lol", HoursPerWeek: 20, StartDate: monday, EndDate: friday}),
			wantData: marchallObj(t, map[string]string{"project_id": "project does not exist"}),
		},
		{
			name: "created", token: managerToken, wantCode: http.StatusCreated,
			body: marchallObj(t, assignment.NewAssignment{EmployeeID: member.ID, ProjectID: website.ID, HoursPerWeek: 30, StartDate: monday, EndDate: friday}),
		},
		{
			name: "over allocation rejected", token: managerToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, assignment.NewAssignment{EmployeeID: member.ID, ProjectID: branding.ID, HoursPerWeek: 20, StartDate: monday, EndDate: friday}),
			wantData: marchallObj(t, map[string]string{"hours_per_week": "total assigned hours exceed the employee's weekly hours"}),
		},
		{
			name: "non overlapping range ok", token: managerToken, wantCode: http.StatusCreated,
			body: marchallObj(t, assignment.NewAssignment{EmployeeID: member.ID, ProjectID: branding.ID, HoursPerWeek: 20, StartDate: testutil.Date(2021, time.June, 28), EndDate: testutil.Date(2021, time.July, 9)}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/assignments"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_assignmentApi_query(t *testing.T) {
	app := setup(t)

	member := testutil.CreateEmployee(t, empRepo, "Hero", "hero", "hero@test.cd", "", []string{employee.RoleMember}, true)
	other := testutil.CreateEmployee(t, empRepo, "N Dog", "ndog", "ndog@test.cd", "", []string{employee.RoleMember}, true)

	website := testutil.CreateProject(t, prjRepo, "Website", "Acme", "development", true)
	branding := testutil.CreateProject(t, prjRepo, "Branding", "Globex", "design", false)

	asg1 := testutil.CreateAssignment(t, asgRepo, member.ID, website.ID, 20,
		testutil.Date(2021, time.June, 7), testutil.Date(2021, time.June, 18))
	asg2 := testutil.CreateAssignment(t, asgRepo, other.ID, website.ID, 40,
		testutil.Date(2021, time.June, 14), testutil.Date(2021, time.June, 25))
	asg3 := testutil.CreateAssignment(t, asgRepo, other.ID, branding.ID, 10,
		testutil.Date(2021, time.July, 5), testutil.Date(2021, time.July, 16))

	memberToken := getToken(t, member)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/assignments", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "get all", path: "/v1/assignments", token: memberToken, wantData: marchallList(t, asg1, asg2, asg3)},
		{name: "employee filter", path: "/v1/assignments?employee_id=" + other.ID, token: memberToken, wantData: marchallList(t, asg2, asg3)},
		{name: "project filter", path: "/v1/assignments?project_id=" + website.ID, token: memberToken, wantData: marchallList(t, asg1, asg2)},
		{
			name: "range filter", path: "/v1/assignments?from=2021-06-21T00:00:00Z&to=2021-07-09T00:00:00Z", token: memberToken,
			wantData: marchallList(t, asg2, asg3),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_assignmentApi_update(t *testing.T) {
	app := setup(t)

	member := testutil.CreateEmployee(t, empRepo, "Hero", "hero", "hero@test.cd", "", []string{employee.RoleMember}, true)
	manager := testutil.CreateEmployee(t, empRepo, "Boss", "boss", "boss@test.cd", "", []string{employee.RoleManager}, true)
	managerToken := getToken(t, manager)

	website := testutil.CreateProject(t, prjRepo, "Website", "Acme", "development", true)
	asg := testutil.CreateAssignment(t, asgRepo, member.ID, website.ID, 20,
		testutil.Date(2021, time.June, 7), testutil.Date(2021, time.June, 18))

	tests := []httpTest{
		{
			name: "Manager required", path: "/v1/assignments/" + asg.ID, token: getToken(t, member),
			body:     marchallObj(t, assignment.UpdateAssignment{HoursPerWeek: 30}),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Not found", path: "/v1/assignments/lol", token: managerToken,
			body:     marchallObj(t, assignment.UpdateAssignment{HoursPerWeek: 30}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "end before start", path: "/v1/assignments/" + asg.ID, token: managerToken,
			body:     marchallObj(t, assignment.UpdateAssignment{EndDate: testutil.Date(2021, time.June, 4)}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"end_date": "must not be before the start date"}),
		},
		{
			name: "over allocation rejected", path: "/v1/assignments/" + asg.ID, token: managerToken,
			body:     marchallObj(t, assignment.UpdateAssignment{HoursPerWeek: 50}),
			wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"hours_per_week": "total assigned hours exceed the employee's weekly hours"}),
		},
		{
			name: "updated", path: "/v1/assignments/" + asg.ID, token: managerToken,
			body: marchallObj(t, assignment.UpdateAssignment{HoursPerWeek: 30}), wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var respData assignment.Assignment
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				if respData.HoursPerWeek != 30 {
					t.Errorf("failed! HoursPerWeek = %v; want 30", respData.HoursPerWeek)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_assignmentApi_destroy(t *testing.T) {
	app := setup(t)

	member := testutil.CreateEmployee(t, empRepo, "Hero", "hero", "hero@test.cd", "", []string{employee.RoleMember}, true)
	manager := testutil.CreateEmployee(t, empRepo, "Boss", "boss", "boss@test.cd", "", []string{employee.RoleManager}, true)

	website := testutil.CreateProject(t, prjRepo, "Website", "Acme", "development", true)
	asg := testutil.CreateAssignment(t, asgRepo, member.ID, website.ID, 20,
		testutil.Date(2021, time.June, 7), testutil.Date(2021, time.June, 18))

	tests := []httpTest{
		{
			name: "Manager required", path: "/v1/assignments/" + asg.ID, token: getToken(t, member),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{name: "deleted", path: "/v1/assignments/" + asg.ID, token: getToken(t, manager), wantCode: http.StatusNoContent},
	}
	for _, tt := range tests {
		tt.method = http.MethodDelete

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusNoContent {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}
