package echoapi

import (
	"context"
	"sort"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/pkg/errors"

	"github.com/trezcool/timeoff/core"
	"github.com/trezcool/timeoff/core/employee"
)

var (
	// appJWTConfig is the default JWT auth middleware config.
	// The SigningKey is set by NewServer.
	appJWTConfig = middleware.JWTConfig{
		SigningMethod: middleware.AlgorithmHS256,
		ContextKey:    "employeeToken",
		Claims:        new(Claims),
	}
	contextEmployeeKey = "employee"
)

// Claims represents the authorization claims transmitted via a JWT.
type Claims struct {
	jwt.StandardClaims
	OrigIssuedAt int64    `json:"oriat,omitempty"`
	Username     string   `json:"username,omitempty"`
	Email        string   `json:"email,omitempty"`
	IsAdmin      bool     `json:"is_admin,omitempty"`
	IsManager    bool     `json:"is_manager,omitempty"`
	Roles        []string `json:"roles,omitempty"`
}

func GetEmployeeClaims(emp employee.Employee, origIat ...int64) *Claims {
	now := time.Now()
	nownix := now.Unix()

	var oriat int64
	if len(origIat) > 0 {
		oriat = origIat[0]
	} else {
		oriat = nownix
	}

	claims := &Claims{
		StandardClaims: jwt.StandardClaims{
			Issuer:    core.Conf.AppName,
			Subject:   emp.ID,
			Audience:  "TimeOff",
			ExpiresAt: now.Add(core.Conf.Server.JWTExpirationDelta).Unix(),
			IssuedAt:  nownix,
		},
		OrigIssuedAt: oriat,
		Username:     emp.Username,
		Email:        emp.Email,
		IsAdmin:      emp.IsAdmin(),
		IsManager:    emp.IsManager(),
		Roles:        emp.Roles,
	}
	return claims
}

func authenticate(ctx context.Context, uname, pwd string, svc employee.Service) (*Claims, error) {
	emp, err := svc.GetByUsernameOrEmail(ctx, uname)
	if err != nil {
		if errors.Cause(err) == employee.ErrNotFound {
			return nil, errAuthenticationFailed
		}
		return nil, errors.Wrap(err, "finding employee by username or email")
	}
	if err = emp.CheckPassword(pwd); err != nil {
		return nil, errAuthenticationFailed
	}
	if !emp.Active() {
		return nil, errAccountDeactivated
	}
	emp, err = svc.SetLastLogin(ctx, emp)
	if err != nil {
		return nil, errors.Wrap(err, "setting lastLogin")
	}
	return GetEmployeeClaims(emp), nil
}

// GenerateToken generates a signed JWT token string representing the employee Claims.
func GenerateToken(claims *Claims) (string, error) {
	method := jwt.GetSigningMethod(appJWTConfig.SigningMethod)
	token := jwt.NewWithClaims(method, claims)

	ss, err := token.SignedString(appJWTConfig.SigningKey)
	if err != nil {
		return "", errors.New("signing token")
	}
	return ss, nil
}

func getContextClaims(ctx echo.Context) (Claims, error) {
	if token, ok := ctx.Get(appJWTConfig.ContextKey).(*jwt.Token); ok {
		if claims, ok := token.Claims.(*Claims); ok {
			return *claims, nil
		}
	}
	return Claims{}, errUnauthorized
}

func getContextEmployee(ctx echo.Context, svc employee.Service, clms ...Claims) (employee.Employee, error) {
	if emp, ok := ctx.Get(contextEmployeeKey).(employee.Employee); ok {
		return emp, nil
	}

	var claims Claims
	var err error
	if len(clms) > 0 {
		claims = clms[0]
	} else {
		claims, err = getContextClaims(ctx)
		if err != nil {
			return employee.Employee{}, errors.Wrap(err, "getting context claims")
		}
	}

	emp, err := svc.GetByID(ctx.Request().Context(), claims.Subject)
	if err != nil {
		return employee.Employee{}, errors.Wrap(err, "finding employee by ID")
	}
	ctx.Set(contextEmployeeKey, emp)
	return emp, nil
}

func contextHasAnyRole(ctx echo.Context, roles []string) bool {
	if len(roles) == 0 {
		return true
	}
	if claims, err := getContextClaims(ctx); err == nil {
		sort.Strings(claims.Roles)
		for _, role := range roles {
			if i := sort.SearchStrings(claims.Roles, role); i < len(claims.Roles) {
				if match := claims.Roles[i]; role == match {
					return true
				}
			}
		}
	}
	return false
}

func refreshToken(ctx echo.Context, svc employee.Service) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}

	emp, err := getContextEmployee(ctx, svc, claims)
	if err != nil {
		return "", errors.Wrap(err, "getting context employee")
	}

	// check if employee is still active
	if !emp.Active() {
		return "", errAccountDeactivated
	}

	// check if refresh has not expired
	expTime := time.Unix(claims.OrigIssuedAt, 0).Add(core.Conf.Server.JWTRefreshExpirationDelta)
	if time.Now().After(expTime) {
		return "", errRefreshExpired
	}

	newClaims := GetEmployeeClaims(emp, claims.OrigIssuedAt)
	token, err := GenerateToken(newClaims)
	return token, errors.Wrap(err, "generating token")
}
