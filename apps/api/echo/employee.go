package echoapi

import (
	"net/http"
	"sort"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/timeoff/core"
	"github.com/trezcool/timeoff/core/employee"
)

var (
	errEmpNotFoundInCtx  = errors.New("employee object not found in echo.Context")
	errNoPermsToSetRoles = "not enough rights to set these roles"
)

type employeeApi struct {
	svc employee.Service
}

func registerEmployeeAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc employee.Service) {
	api := employeeApi{svc: svc}

	eg := g.Group("/employees")

	// un-authed endpoints
	// TODO: rate limit `/password-reset` & `/password-reset-confirm`
	eg.POST("/login", api.login)
	eg.POST("/password-reset", api.resetPassword)
	eg.POST("/password-reset-confirm", api.confirmPasswordReset)

	// authed endpoints
	ag := eg.Group("", jwt)
	ag.POST("/token-refresh", api.refreshToken)
	ag.POST("/register", api.create, adminMiddleware())
	ag.GET("", api.query, adminMiddleware())
	ag.DELETE("", api.destroyMultiple, adminMiddleware())
	ag.GET("/roles", api.queryRoles, adminMiddleware())

	// detail endpoints
	dg := ag.Group("/:id", ctxEmployeeOrAdminMiddleware(api.svc))
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy, adminMiddleware())
}

// Handlers

func (api *employeeApi) create(ctx echo.Context) error {
	var data employee.NewEmployee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewEmployee")
	}
	if err := data.Validate(ctx.Request().Context(), api.svc); err != nil {
		return err
	}

	// ctxEmployee cannot set a role > their own max role
	ctxEmp, err := getContextEmployee(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context employee")
	}
	if employee.MaxRolePriority(data.Roles) > employee.MaxRolePriority(ctxEmp.Roles) {
		return core.NewValidationError(nil, core.FieldError{Field: "roles", Error: errNoPermsToSetRoles})
	}

	emp, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating employee")
	}

	return ctx.JSON(http.StatusCreated, emp)
}

func (api *employeeApi) login(ctx echo.Context) error {
	var data LoginRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LoginRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	claims, err := authenticate(ctx.Request().Context(), data.Username, data.Password, api.svc)
	if err != nil {
		return errors.Wrap(err, "authenticating")
	}
	token, err := GenerateToken(claims)
	if err != nil {
		return errors.Wrap(err, "generating token")
	}

	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func (api *employeeApi) resetPassword(ctx echo.Context) error {
	var data PasswordResetRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to PasswordResetRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.RequestPasswordReset(ctx.Request().Context(), data.Email); !(err == nil || errors.Cause(err) == employee.ErrNotFound) {
		// do not return errors to attackers
		ctx.Logger().Errorf("%+v", errors.Wrap(err, "requesting password reset"))
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{
		Success: "If the email address supplied is associated with an active account on this system, " +
			"an email will arrive in your inbox shortly with instructions to reset your password.",
	})
}

func (api *employeeApi) confirmPasswordReset(ctx echo.Context) error {
	var data employee.ResetEmployeePassword
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ResetEmployeePassword")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := api.svc.ResetPassword(ctx.Request().Context(), data); err != nil {
		return errors.Wrap(err, "resetting password")
	}
	return ctx.JSON(http.StatusOK, SuccessResponse{Success: "Password has been reset with the new password."})
}

func (api *employeeApi) query(ctx echo.Context) error {
	filter := new(employee.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []employee.Employee{})
	}
	filter.Clean()
	ordering := new(Ordering)
	ordering.Bind(ctx)

	emps, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying employees")
	}
	if emps == nil {
		emps = []employee.Employee{}
	}
	return ctx.JSON(http.StatusOK, emps)
}

func (api *employeeApi) retrieve(ctx echo.Context) error {
	emp, ok := ctx.Get("object").(employee.Employee)
	if !ok {
		return errors.Wrap(errEmpNotFoundInCtx, "retrieving object from context")
	}
	return ctx.JSON(http.StatusOK, emp)
}

func (api *employeeApi) update(ctx echo.Context) error {
	emp, ok := ctx.Get("object").(employee.Employee)
	if !ok {
		return errors.Wrap(errEmpNotFoundInCtx, "retrieving object from context")
	}

	var data employee.UpdateEmployee
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateEmployee")
	}

	ctxEmp, err := getContextEmployee(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context employee")
	}
	if !ctxEmp.IsAdmin() {
		// `IsActive` and `Roles` can only be changed by admin
		// `Username` and `Email` can only be changed by admin for now
		if data.IsActive != nil || data.Roles != nil || data.Username != "" || data.Email != "" {
			return errHttpForbidden
		}
	}

	if err := data.Validate(ctx.Request().Context(), emp, api.svc); err != nil {
		return err
	}

	// ctxEmployee cannot set a role > their own max role
	if employee.MaxRolePriority(data.Roles) > employee.MaxRolePriority(ctxEmp.Roles) {
		return core.NewValidationError(nil, core.FieldError{Field: "roles", Error: errNoPermsToSetRoles})
	}

	emp, err = api.svc.Update(ctx.Request().Context(), emp.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating employee")
	}

	return ctx.JSON(http.StatusOK, emp)
}

func (api *employeeApi) destroy(ctx echo.Context) error {
	emp, ok := ctx.Get("object").(employee.Employee)
	if !ok {
		return errors.Wrap(errEmpNotFoundInCtx, "retrieving object from context")
	}

	// ctxEmployee cannot delete themselves
	ctxEmp, err := getContextEmployee(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context employee")
	}
	if emp.ID == ctxEmp.ID {
		return errHttpForbidden
	}

	if err := api.svc.Delete(ctx.Request().Context(), emp.ID); err != nil {
		return errors.Wrap(err, "deleting employee")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *employeeApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}

	// ctxEmployee cannot delete themselves
	ctxEmp, err := getContextEmployee(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "getting context employee")
	}
	sort.Strings(query.IDs)
	if i := sort.SearchStrings(query.IDs, ctxEmp.ID); i < len(query.IDs) {
		if match := query.IDs[i]; ctxEmp.ID == match {
			return errHttpForbidden
		}
	}

	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting employees")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *employeeApi) queryRoles(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, employee.Roles)
}

func (api *employeeApi) refreshToken(ctx echo.Context) error {
	token, err := refreshToken(ctx, api.svc)
	if err != nil {
		return errors.Wrap(err, "refreshing token")
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token})
}

func ctxEmployeeOrAdminMiddleware(svc employee.Service) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			ctxEmp, err := getContextEmployee(ctx, svc)
			if err != nil {
				return errors.Wrap(err, "getting context employee")
			}

			if ctx.Param("id") == ctxEmp.ID || ctxEmp.IsAdmin() {
				if emp, err := svc.GetByID(ctx.Request().Context(), ctx.Param("id")); err == nil {
					ctx.Set("object", emp)
					return next(ctx)
				} else if errors.Cause(err) != employee.ErrNotFound {
					return errors.Wrap(err, "finding employee by ID")
				}
			}
			return errHttpNotFound
		}
	}
}

type (
	LoginRequest struct {
		Username string `json:"username" validate:"required"`
		Password string `json:"password" validate:"required"`
	}

	LoginResponse struct {
		Token string `json:"token"`
	}

	PasswordResetRequest struct {
		Email string `json:"email" validate:"required,email"`
	}

	SuccessResponse struct {
		Success string `json:"success"`
	}

	DestroyMultipleRequest struct {
		IDs []string `query:"id"`
	}
)

func (lr *LoginRequest) Validate() error {
	lr.Username = core.CleanString(lr.Username, true /* lower */)
	return core.Validate.Struct(lr)
}

func (pr *PasswordResetRequest) Validate() error {
	pr.Email = core.CleanString(pr.Email, true /* lower */)
	return core.Validate.Struct(pr)
}
