package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/mail"
	"net/url"
	"regexp"
	"testing"
	"time"

	"github.com/dgrijalva/jwt-go"

	echoapi "github.com/trezcool/timeoff/apps/api/echo"
	"github.com/trezcool/timeoff/core"
	"github.com/trezcool/timeoff/core/employee"
	emailsvc "github.com/trezcool/timeoff/services/email"
	testutil "github.com/trezcool/timeoff/tests"
)

func Test_employeeApi_login(t *testing.T) {
	app := setup(t)

	member := testutil.CreateEmployee(t, empRepo, "Hero", "hero", "hero@test.cd", "LolC@t123", []string{employee.RoleMember}, true)
	naughty := testutil.CreateEmployee(t, empRepo, "N Dog", "ndog", "ndog@test.cd", "LolC@t123", []string{employee.RoleMember}, false)
	_ = naughty

	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, echoapi.LoginRequest{Username: reqMsg, Password: reqMsg}),
		},
		{
			name: "unknown employee", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Username: "lol", Password: "lol"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "wrong password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, echoapi.LoginRequest{Username: member.Username, Password: "lol"}),
			wantData: marchallObj(t, httpErr{Error: "authentication failed"}),
		},
		{
			name: "deactivated account", wantCode: http.StatusForbidden,
			body:     marchallObj(t, echoapi.LoginRequest{Username: naughty.Username, Password: "LolC@t123"}),
			wantData: marchallObj(t, httpErr{Error: "account deactivated"}),
		},
		{
			name: "login with username", wantCode: http.StatusOK,
			body: marchallObj(t, echoapi.LoginRequest{Username: member.Username, Password: "LolC@t123"}),
		},
		{
			name: "login with email", wantCode: http.StatusOK,
			body: marchallObj(t, echoapi.LoginRequest{Username: member.Email, Password: "LolC@t123"}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/employees/login"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)

			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Fatalf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_employeeApi_query(t *testing.T) {
	app := setup(t)

	now := time.Now()
	t1 := now.Add(1 * time.Hour)
	t2 := now.Add(2 * time.Hour)

	member := testutil.CreateEmployee(t, empRepo, "Hero", "hero", "hero@test.cd", "", []string{employee.RoleMember}, true)
	manager := testutil.CreateEmployee(t, empRepo, "Boss", "boss", "boss@test.cd", "", []string{employee.RoleManager}, true, t1)
	admin := testutil.CreateEmployee(t, empRepo, "Admin", "admin", "admin@test.cd", "", []string{employee.RoleAdmin}, true, t2)
	owner := testutil.CreateEmployee(t, empRepo, "Owner", "owner", "owner@test.cd", "", []string{employee.RoleAdminOwner}, true, t2)
	naughty := testutil.CreateEmployee(t, empRepo, "N Dog", "ndog", "ndog@test.cd", "", []string{employee.RoleMember}, false)

	adminToken := getToken(t, admin)
	empty := marchallList(t)

	path := func(params url.Values) string { return "/v1/employees?" + params.Encode() }

	tests := []httpTest{
		{name: "Auth required", path: "/v1/employees", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", path: "/v1/employees", token: getToken(t, member), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Managers are not admins", path: "/v1/employees", token: getToken(t, manager), wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Get all", path: "/v1/employees", token: adminToken, wantData: marchallList(t, admin, manager, member, naughty, owner)},
		{name: "search (unknown)", path: path(url.Values{"search": {"lol"}}), token: adminToken, wantData: empty},
		{name: "search", path: path(url.Values{"search": {"her"}}), token: adminToken, wantData: marchallList(t, member)},
		{name: "role", path: path(url.Values{"role": {employee.RoleManager}}), token: adminToken, wantData: marchallList(t, manager)},
		{name: "role matches sub-roles", path: path(url.Values{"role": {employee.RoleAdmin}}), token: adminToken, wantData: marchallList(t, admin, owner)},
		{name: "is_active=false", path: path(url.Values{"is_active": {"false"}}), token: adminToken, wantData: marchallList(t, naughty)},
		{
			name: "created_from", path: path(url.Values{"created_from": {t1.UTC().Format(time.RFC3339)}}),
			token: adminToken, wantData: marchallList(t, admin, manager, owner),
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

func Test_employeeApi_refreshToken(t *testing.T) {
	app := setup(t)

	member := testutil.CreateEmployee(t, empRepo, "Hero", "hero", "hero@test.cd", "", []string{employee.RoleMember}, true)
	naughty := testutil.CreateEmployee(t, empRepo, "N Dog", "ndog", "ndog@test.cd", "", []string{employee.RoleMember}, false)

	now := time.Now()
	unrefreshableClaims := &echoapi.Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   member.ID,
			Audience:  "TimeOff",
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  now.Unix(),
		},
		OrigIssuedAt: now.Add(-2 * core.Conf.Server.JWTRefreshExpirationDelta).Unix(), // older than threshold
		Username:     member.Username,
		Email:        member.Email,
		Roles:        member.Roles,
	}
	unrefreshableToken, err := echoapi.GenerateToken(unrefreshableClaims)
	if err != nil {
		t.Fatalf("GenerateToken(): %v", err)
	}

	tests := []httpTest{
		{name: "Auth required", wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Inactive employee not allowed", token: getToken(t, naughty), wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "account deactivated"})},
		{name: "Refresh period expired", token: unrefreshableToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, httpErr{Error: "refresh has expired"})},
		{name: "Token refreshed", token: getToken(t, member), wantCode: http.StatusOK},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/employees/token-refresh"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(tt.method, tt.path, tt.token, tt.body)
			app.ServeHTTP(rec, req)

			// cannot guess new token.. just check that it's not empty
			if tt.wantCode == http.StatusOK {
				if rec.Code != tt.wantCode {
					t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
				}
				var respData echoapi.LoginResponse
				if err := json.Unmarshal(rec.Body.Bytes(), &respData); err != nil {
					t.Errorf("json.Unmarshal() failed! err %v", err)
				}
				if respData.Token == "" {
					t.Error("failed! empty token")
				}
				return
			}
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_employeeApi_resetPassword(t *testing.T) {
	app := setup(t)

	member := testutil.CreateEmployee(t, empRepo, "Hero", "hero", "hero@test.cd", "lol", []string{employee.RoleMember}, true)
	successData := marchallObj(t, echoapi.SuccessResponse{Success: "If the email address supplied is associated with an active account on this system, " +
		"an email will arrive in your inbox shortly with instructions to reset your password."})

	pathRegex := regexp.MustCompile(`/password-reset/[^/\s]+/[^/\s]+`)

	type extraTest struct {
		emailSent bool
		to        mail.Address
	}
	tests := []httpTest{
		{name: "required fields", wantCode: http.StatusBadRequest, wantData: marchallObj(t, echoapi.PasswordResetRequest{Email: "this field is required"})},
		{
			name: "invalid email", wantCode: http.StatusBadRequest, body: marchallObj(t, echoapi.PasswordResetRequest{Email: "lol"}),
			wantData: marchallObj(t, echoapi.PasswordResetRequest{Email: "email must be a valid email address"}),
		},
		{
			name: "unknown email", wantCode: http.StatusOK, body: marchallObj(t, echoapi.PasswordResetRequest{Email: "lol@test.com"}),
			wantData: successData, extra: extraTest{emailSent: false},
		},
		{
			name: "known email", wantCode: http.StatusOK, body: marchallObj(t, echoapi.PasswordResetRequest{Email: member.Email}),
			wantData: successData, extra: extraTest{emailSent: true, to: mail.Address{Name: member.Name, Address: member.Email}},
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/employees/password-reset"

		t.Run(tt.name, func(t *testing.T) {
			emailsvc.SentMessages = nil // reset

			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if extra, ok := tt.extra.(extraTest); ok {
				if extra.emailSent {
					if len(emailsvc.SentMessages) != 1 {
						t.Fatalf("failed! len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
					}
					msg := emailsvc.SentMessages[0]
					if msg.To[0] != extra.to {
						t.Errorf("failed! To = %v; want %v", msg.To[0], extra.to)
					}
					if !pathRegex.MatchString(msg.TextContent) {
						t.Errorf("failed! text content does not match pathRegex %v", pathRegex)
					}
					if !pathRegex.MatchString(msg.HTMLContent) {
						t.Errorf("failed! HTML content does not match pathRegex %v", pathRegex)
					}
				} else {
					if len(emailsvc.SentMessages) > 0 {
						t.Errorf("failed! len(SentMessages) = %d; want 0", len(emailsvc.SentMessages))
					}
				}
			}
		})
	}
}

func Test_employeeApi_confirmPasswordReset(t *testing.T) {
	app := setup(t)

	member := testutil.CreateEmployee(t, empRepo, "Hero", "hero", "hero@test.cd", "lol", []string{employee.RoleMember}, true)

	// request a reset and pull the UID & token out of the sent mail
	emailsvc.SentMessages = nil
	req, rec := newRequest(http.MethodPost, "/v1/employees/password-reset", marchallObj(t, echoapi.PasswordResetRequest{Email: member.Email}))
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("password-reset failed! code = %v", rec.Code)
	}
	if len(emailsvc.SentMessages) != 1 {
		t.Fatalf("failed! len(SentMessages) = %d; want 1", len(emailsvc.SentMessages))
	}
	linkRegex := regexp.MustCompile(`/password-reset/([^/\s]+)/([^/\s]+)`)
	matches := linkRegex.FindStringSubmatch(emailsvc.SentMessages[0].TextContent)
	if len(matches) != 3 {
		t.Fatalf("failed to extract reset link from email: %q", emailsvc.SentMessages[0].TextContent)
	}
	validUID, validToken := matches[1], matches[2]

	reqMsg := "this field is required"
	tests := []httpTest{
		{
			name: "required fields", wantCode: http.StatusBadRequest,
			wantData: marchallObj(t, employee.ResetEmployeePassword{Token: reqMsg, UID: reqMsg, Password: "password must contain at least 8 characters", PasswordConfirm: reqMsg}),
		},
		{
			name: "invalid pwd: min len", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, employee.ResetEmployeePassword{Token: "lol", UID: "lol", Password: "lol", PasswordConfirm: "lol"}),
			wantData: marchallObj(t, employee.ResetEmployeePassword{Password: "password must contain at least 8 characters"}),
		},
		{
			name: "PasswordConfirm must = Password", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, employee.ResetEmployeePassword{Token: "lol", UID: "lol", Password: "LolC@t123", PasswordConfirm: "lol"}),
			wantData: marchallObj(t, employee.ResetEmployeePassword{PasswordConfirm: "password_confirm must be equal to Password"}),
		},
		{
			name: "invalid uid", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, employee.ResetEmployeePassword{Token: "lol", UID: "####", Password: "LolC@t123", PasswordConfirm: "LolC@t123"}),
			wantData: marchallObj(t, httpErr{Error: "invalid token"}),
		},
		{
			name: "invalid token", wantCode: http.StatusBadRequest,
			body:     marchallObj(t, employee.ResetEmployeePassword{Token: "HE4TS-sigsig-sig", UID: validUID, Password: "LolC@t123", PasswordConfirm: "LolC@t123"}),
			wantData: marchallObj(t, httpErr{Error: "invalid token"}),
		},
		{
			name: "valid token", wantCode: http.StatusOK,
			body:     marchallObj(t, employee.ResetEmployeePassword{Token: validToken, UID: validUID, Password: "LolC@t123", PasswordConfirm: "LolC@t123"}),
			wantData: marchallObj(t, echoapi.SuccessResponse{Success: "Password has been reset with the new password."}),
		},
	}
	for _, tt := range tests {
		tt.method = http.MethodPost
		tt.path = "/v1/employees/password-reset-confirm"

		t.Run(tt.name, func(t *testing.T) {
			req, rec := newRequest(tt.method, tt.path, tt.body)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)

			if tt.wantCode == http.StatusOK {
				refreshed, err := empRepo.GetEmployee(context.Background(), employee.GetFilter{ID: member.ID})
				if err != nil {
					t.Fatalf("GetEmployee() failed, %v", err)
				}
				if bytes.Equal(refreshed.PasswordHash, member.PasswordHash) {
					t.Fatalf("failed to update new password")
				}
			}
		})
	}
}

func Test_employeeApi_destroy(t *testing.T) {
	app := setup(t)

	member := testutil.CreateEmployee(t, empRepo, "Hero", "hero", "hero@test.cd", "", []string{employee.RoleMember}, true)
	admin := testutil.CreateEmployee(t, empRepo, "Admin", "admin", "admin@test.cd", "", []string{employee.RoleAdmin}, true)
	adminToken := getToken(t, admin)

	tests := []httpTest{
		{name: "Auth required", path: "/v1/employees/" + member.ID, wantCode: http.StatusUnauthorized, wantData: marchallObj(t, errMissingToken)},
		{name: "Admin required", path: "/v1/employees/" + admin.ID, token: getToken(t, member), wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
		{name: "Cannot delete self", path: "/v1/employees/" + admin.ID, token: adminToken, wantCode: http.StatusForbidden, wantData: marchallObj(t, errForbidden)},
		{name: "Deleted", path: "/v1/employees/" + member.ID, token: adminToken, wantCode: http.StatusNoContent},
		{name: "Gone", path: "/v1/employees/" + member.ID, token: adminToken, wantCode: http.StatusNotFound, wantData: marchallObj(t, errNotFound)},
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
