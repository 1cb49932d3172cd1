package tests

import (
	"net/http"
	"testing"
	"time"

	"github.com/trezcool/timeoff/core/employee"
	"github.com/trezcool/timeoff/core/holiday"
	testutil "github.com/trezcool/timeoff/tests"
)

func Test_holidayApi_query(t *testing.T) {
	app := setup(t)

	member := testutil.CreateEmployee(t, empRepo, "Hero", "hero", "hero@test.cd", "", []string{employee.RoleMember}, true)
	memberToken := getToken(t, member)

	xmas := testutil.CreateHoliday(t, holRepo, "Christmas", testutil.Date(2021, time.December, 25), true)
	independence := testutil.CreateHoliday(t, holRepo, "Independence Day", testutil.Date(2021, time.June, 30), true)
	oneOff := testutil.CreateHoliday(t, holRepo, "Company Day", testutil.Date(2021, time.September, 17), false)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/holidays", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Get all", path: "/v1/holidays", token: memberToken, wantData: marchallList(t, independence, oneOff, xmas)},
		{name: "year filter keeps recurring", path: "/v1/holidays?year=2022", token: memberToken, wantData: marchallList(t, independence, xmas)},
		{
			name: "range filter", path: "/v1/holidays?from=2021-06-01T00:00:00Z&to=2021-09-30T00:00:00Z",
			token: memberToken, wantData: marchallList(t, independence, oneOff),
		},
		{
			name: "recurring matches next year's range", path: "/v1/holidays?from=2022-12-01T00:00:00Z&to=2022-12-31T00:00:00Z",
			token: memberToken, wantData: marchallList(t, xmas),
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

func Test_holidayApi_create(t *testing.T) {
	app := setup(t)

	member := testutil.CreateEmployee(t, empRepo, "Hero", "hero", "hero@test.cd", "", []string{employee.RoleMember}, true)
	admin := testutil.CreateEmployee(t, empRepo, "Admin", "admin", "admin@test.cd", "", []string{employee.RoleAdmin}, true)
	adminToken := getToken(t, admin)

	existing := testutil.CreateHoliday(t, holRepo, "Christmas", testutil.Date(2021, time.December, 25), true)

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{
			name: "Admin required", token: getToken(t, member), wantCode: http.StatusForbidden,
			body:     marchallObj(t, holiday.NewHoliday{Name: "Easter", Date: testutil.Date(2021, time.April, 4)}),
			wantData: marchallObj(t, errForbidden),
		},
		{
			name: "required fields", token: adminToken, wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, map[string]string{"name": "this field is required", "date": "this field is required"}),
		},
		{
			name: "duplicate name and date rejected", token: adminToken, wantCode: http.StatusBadRequest,
			body:     marchallObj(t, holiday.NewHoliday{Name: existing.Name, Date: existing.Date, Recurring: true}),
			wantData: marchallObj(t, map[string]string{"name": "a holiday with this name and date already exists"}),
		},
		{
			name: "created", token: adminToken, wantCode: http.StatusCreated,
			body: marchallObj(t, holiday.NewHoliday{Name: "Easter", Date: testutil.Date(2021, time.April, 4)}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/holidays"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusCreated {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_holidayApi_update(t *testing.T) {
	app := setup(t)

	member := testutil.CreateEmployee(t, empRepo, "Hero", "hero", "hero@test.cd", "", []string{employee.RoleMember}, true)
	admin := testutil.CreateEmployee(t, empRepo, "Admin", "admin", "admin@test.cd", "", []string{employee.RoleAdmin}, true)
	adminToken := getToken(t, admin)

	hol := testutil.CreateHoliday(t, holRepo, "Christmas", testutil.Date(2021, time.December, 25), true)

	tests := []httpTest{
		{
			name: "Admin required", path: "/v1/holidays/" + hol.ID, token: getToken(t, member),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{
			name: "Not found", path: "/v1/holidays/lol", token: adminToken,
			body:     marchallObj(t, holiday.UpdateHoliday{Name: "Xmas"}),
			wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound),
		},
		{
			name: "updated", path: "/v1/holidays/" + hol.ID, token: adminToken,
			body: marchallObj(t, holiday.UpdateHoliday{Name: "Xmas"}), wantCode: http.StatusOK,
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPut

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				refreshed, err := holRepo.GetHolidayByID(req.Context(), hol.ID)
				if err != nil {
					t.Fatalf("GetHolidayByID() failed: %v", err)
				}
				if refreshed.Name != "Xmas" {
					t.Errorf("failed! Name = %s; want Xmas", refreshed.Name)
				}
				if !refreshed.Date.Equal(hol.Date) {
					t.Errorf("failed! Date changed to %v", refreshed.Date)
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_holidayApi_destroy(t *testing.T) {
	app := setup(t)

	member := testutil.CreateEmployee(t, empRepo, "Hero", "hero", "hero@test.cd", "", []string{employee.RoleMember}, true)
	admin := testutil.CreateEmployee(t, empRepo, "Admin", "admin", "admin@test.cd", "", []string{employee.RoleAdmin}, true)
	adminToken := getToken(t, admin)

	hol := testutil.CreateHoliday(t, holRepo, "Christmas", testutil.Date(2021, time.December, 25), true)

	tests := []httpTest{
		{
			name: "Admin required", path: "/v1/holidays/" + hol.ID, token: getToken(t, member),
			wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden),
		},
		{name: "Deleted", path: "/v1/holidays/" + hol.ID, token: adminToken, wantCode: http.StatusNoContent},
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
