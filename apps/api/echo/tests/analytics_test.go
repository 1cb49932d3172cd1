package tests

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/timeoff/core/analytics"
	"github.com/trezcool/timeoff/core/employee"
	"github.com/trezcool/timeoff/core/leave"
	testutil "github.com/trezcool/timeoff/tests"
)

func Test_analyticsApi_report(t *testing.T) {
	app := setup(t)

	alice := testutil.CreateEmployee(t, empRepo, "Alice", "alice", "alice@test.cd", "", []string{employee.RoleMember}, true)
	bob := testutil.CreateEmployee(t, empRepo, "Bob", "bob", "bob@test.cd", "", []string{employee.RoleMember}, true)
	memberToken := getToken(t, alice)

	website := testutil.CreateProject(t, prjRepo, "Website", "Acme", "development", true)
	branding := testutil.CreateProject(t, prjRepo, "Branding", "Globex", "design", false)

	// two full weeks, 2021-06-07 to 2021-06-18
	testutil.CreateAssignment(t, asgRepo, alice.ID, website.ID, 20,
		testutil.Date(2021, time.June, 7), testutil.Date(2021, time.June, 18)) // 40h
	testutil.CreateAssignment(t, asgRepo, bob.ID, website.ID, 10,
		testutil.Date(2021, time.June, 7), testutil.Date(2021, time.June, 11)) // 10h
	testutil.CreateAssignment(t, asgRepo, bob.ID, branding.ID, 40,
		testutil.Date(2021, time.June, 7), testutil.Date(2021, time.June, 18)) // 80h

	base := "/v1/analytics/report?from=2021-06-07T00:00:00Z&to=2021-06-18T00:00:00Z"

	type extraTest struct {
		wantTotal float64
	}
	tests := []httpTest{
		{name: "Auth required", path: base, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "range required", path: "/v1/analytics/report", token: memberToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"from": "this field is required",
				"to":   "this field is required",
			}),
		},
		{
			name: "end before start", path: "/v1/analytics/report?from=2021-06-18T00:00:00Z&to=2021-06-07T00:00:00Z",
			token: memberToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"to": "must not be before the start date"}),
		},
		{name: "no filters", path: base, token: memberToken, extra: extraTest{wantTotal: 130}},
		{name: "project filter", path: base + "&project_id=" + website.ID, token: memberToken, extra: extraTest{wantTotal: 50}},
		{name: "client filter", path: base + "&client=Globex", token: memberToken, extra: extraTest{wantTotal: 80}},
		{name: "category filter", path: base + "&category=development", token: memberToken, extra: extraTest{wantTotal: 50}},
		{name: "employee filter", path: base + "&employee_id=" + bob.ID, token: memberToken, extra: extraTest{wantTotal: 90}},
		{name: "filters combine with AND", path: base + "&employee_id=" + bob.ID + "&project_id=" + website.ID, token: memberToken, extra: extraTest{wantTotal: 10}},
		{name: "no match", path: base + "&client=lol", token: memberToken, extra: extraTest{wantTotal: 0}},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet
		if tt.wantCode == 0 {
			tt.wantCode = http.StatusOK
		}

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, tt.wantCode, rec.Body.String())
				}
				var report analytics.Report
				if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
					t.Fatalf("json.Unmarshal() failed! err %v", err)
				}
				extra := tt.extra.(extraTest)
				if report.TotalHours != extra.wantTotal {
					t.Errorf("failed! TotalHours = %v; want %v", report.TotalHours, extra.wantTotal)
				}
				for facet, buckets := range map[string][]analytics.Bucket{
					"by_project":  report.ByProject,
					"by_client":   report.ByClient,
					"by_category": report.ByCategory,
					"by_employee": report.ByEmployee,
				} {
					var sum float64
					for _, b := range buckets {
						sum += b.Hours
					}
					if sum != extra.wantTotal {
						t.Errorf("failed! %s sums to %v; want %v", facet, sum, extra.wantTotal)
					}
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_analyticsApi_report_deductsLeave(t *testing.T) {
	app := setup(t)

	alice := testutil.CreateEmployee(t, empRepo, "Alice", "alice", "alice@test.cd", "", []string{employee.RoleMember}, true)
	website := testutil.CreateProject(t, prjRepo, "Website", "Acme", "development", true)

	testutil.CreateAssignment(t, asgRepo, alice.ID, website.ID, 20,
		testutil.Date(2021, time.June, 7), testutil.Date(2021, time.June, 18)) // 40h
	// one approved day off: 20h/week over 5 workdays = 4h deducted
	testutil.CreateLeave(t, leaveRepo, alice.ID, leave.TypeVacation, leave.StatusApproved,
		testutil.Date(2021, time.June, 9), testutil.Date(2021, time.June, 9))

	base := "/v1/analytics/report?from=2021-06-07T00:00:00Z&to=2021-06-18T00:00:00Z"
	token := getToken(t, alice)

	for _, tt := range []struct {
		name      string
		path      string
		wantTotal float64
	}{
		{"leave ignored by default", base, 40},
		{"approved leave deducted", base + "&deduct_leave=true", 36},
	} {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, token)
			app.ServeHTTP(rec, req)

			if rec.Code != http.StatusOK {
				t.Fatalf("failed! code = %v; wantCode %v; body %s", rec.Code, http.StatusOK, rec.Body.String())
			}
			var report analytics.Report
			if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
				t.Fatalf("json.Unmarshal() failed! err %v", err)
			}
			if report.TotalHours != tt.wantTotal {
				t.Errorf("failed! TotalHours = %v; want %v", report.TotalHours, tt.wantTotal)
			}
		})
	}
}

func Test_analyticsApi_calendar(t *testing.T) {
	app := setup(t)

	alice := testutil.CreateEmployee(t, empRepo, "Alice", "alice", "alice@test.cd", "", []string{employee.RoleMember}, true)
	memberToken := getToken(t, alice)

	indep := testutil.CreateHoliday(t, holRepo, "Independence Day", testutil.Date(2021, time.June, 30), true)
	vacation := testutil.CreateLeave(t, leaveRepo, alice.ID, leave.TypeVacation, leave.StatusApproved,
		testutil.Date(2021, time.June, 14), testutil.Date(2021, time.June, 18))
	// rejected requests stay off the calendar
	testutil.CreateLeave(t, leaveRepo, alice.ID, leave.TypeSick, leave.StatusRejected,
		testutil.Date(2021, time.June, 21), testutil.Date(2021, time.June, 25))

	wantEntries := []analytics.CalendarEntry{
		{
			Kind:         analytics.EntryLeave,
			Name:         "Alice - vacation",
			EmployeeID:   alice.ID,
			EmployeeName: "Alice",
			LeaveType:    vacation.Type,
			LeaveStatus:  vacation.Status,
			StartDate:    vacation.StartDate,
			EndDate:      vacation.EndDate,
		},
		{
			Kind:      analytics.EntryHoliday,
			Name:      indep.Name,
			StartDate: testutil.Date(2021, time.June, 30),
			EndDate:   testutil.Date(2021, time.June, 30),
		},
	}

	tests := []httpTest{
		{name: "Auth required", path: "/v1/calendar?from=2021-06-01T00:00:00Z&to=2021-06-30T00:00:00Z", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "range required", path: "/v1/calendar", token: memberToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{
				"from": "this field is required",
				"to":   "this field is required",
			}),
		},
		{
			name: "merged entries", path: "/v1/calendar?from=2021-06-01T00:00:00Z&to=2021-06-30T00:00:00Z", token: memberToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, wantEntries),
		},
		{
			name: "range excludes all", path: "/v1/calendar?from=2021-08-01T00:00:00Z&to=2021-08-31T00:00:00Z", token: memberToken,
			wantCode: http.StatusOK, wantData: marchallObj(t, []analytics.CalendarEntry{}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodGet

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}
