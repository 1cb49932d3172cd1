package echoapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/timeoff/core/employee"
	"github.com/trezcool/timeoff/core/leave"
)

type leaveApi struct {
	svc    leave.Service
	empSvc employee.Service
}

func registerLeaveAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc leave.Service, empSvc employee.Service) {
	api := leaveApi{svc: svc, empSvc: empSvc}

	lg := g.Group("/leave-requests", jwt)
	lg.GET("", api.query)
	lg.POST("", api.create)
	lg.GET("/balance", api.balance)

	dg := lg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.PUT("/review", api.review, managerMiddleware())
	dg.POST("/cancel", api.cancel)
	dg.DELETE("", api.destroy, adminMiddleware())
}

func (api *leaveApi) create(ctx echo.Context) error {
	var data leave.NewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewRequest")
	}

	ctxEmp, err := getContextEmployee(ctx, api.empSvc)
	if err != nil {
		return errors.Wrap(err, "getting context employee")
	}
	if data.EmployeeID == "" {
		data.EmployeeID = ctxEmp.ID
	}
	// only managers may file requests on behalf of others
	if data.EmployeeID != ctxEmp.ID && !(ctxEmp.IsManager() || ctxEmp.IsAdmin()) {
		return errHttpForbidden
	}
	if err := data.Validate(); err != nil {
		return err
	}

	req, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating leave request")
	}
	return ctx.JSON(http.StatusCreated, req)
}

func (api *leaveApi) query(ctx echo.Context) error {
	filter := new(leave.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []leave.Request{})
	}

	ctxEmp, err := getContextEmployee(ctx, api.empSvc)
	if err != nil {
		return errors.Wrap(err, "getting context employee")
	}
	// members only see their own requests
	if !(ctxEmp.IsManager() || ctxEmp.IsAdmin()) {
		filter.EmployeeID = ctxEmp.ID
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	reqs, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying leave requests")
	}
	if reqs == nil {
		reqs = []leave.Request{}
	}
	return ctx.JSON(http.StatusOK, reqs)
}

func (api *leaveApi) balance(ctx echo.Context) error {
	ctxEmp, err := getContextEmployee(ctx, api.empSvc)
	if err != nil {
		return errors.Wrap(err, "getting context employee")
	}

	empID := ctx.QueryParam("employee_id")
	if empID == "" {
		empID = ctxEmp.ID
	}
	if empID != ctxEmp.ID && !(ctxEmp.IsManager() || ctxEmp.IsAdmin()) {
		return errHttpForbidden
	}

	year := time.Now().UTC().Year()
	if y := ctx.QueryParam("year"); y != "" {
		if year, err = strconv.Atoi(y); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "invalid year")
		}
	}

	bal, err := api.svc.Balance(ctx.Request().Context(), empID, year)
	if err != nil {
		if errors.Cause(err) == employee.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "computing leave balance")
	}
	return ctx.JSON(http.StatusOK, bal)
}

func (api *leaveApi) retrieve(ctx echo.Context) error {
	req, err := api.getVisibleRequest(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *leaveApi) update(ctx echo.Context) error {
	req, err := api.getVisibleRequest(ctx)
	if err != nil {
		return err
	}

	var data leave.UpdateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	req, err = api.svc.Update(ctx.Request().Context(), req.ID, data)
	if err != nil {
		if errors.Cause(err) == leave.ErrNotPending {
			return echo.NewHTTPError(http.StatusBadRequest, leave.ErrNotPending.Error())
		}
		return errors.Wrap(err, "updating leave request")
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *leaveApi) review(ctx echo.Context) error {
	var data leave.ReviewRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReviewRequest")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	ctxEmp, err := getContextEmployee(ctx, api.empSvc)
	if err != nil {
		return errors.Wrap(err, "getting context employee")
	}

	req, err := api.svc.Review(ctx.Request().Context(), ctx.Param("id"), ctxEmp, data)
	if err != nil {
		switch errors.Cause(err) {
		case leave.ErrNotFound:
			return errHttpNotFound
		case leave.ErrSelfReview:
			return errHttpForbidden
		case leave.ErrNotPending:
			return echo.NewHTTPError(http.StatusBadRequest, leave.ErrNotPending.Error())
		}
		return errors.Wrap(err, "reviewing leave request")
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *leaveApi) cancel(ctx echo.Context) error {
	req, err := api.getVisibleRequest(ctx)
	if err != nil {
		return err
	}

	req, err = api.svc.Cancel(ctx.Request().Context(), req.ID)
	if err != nil {
		if errors.Cause(err) == leave.ErrNotOpen {
			return echo.NewHTTPError(http.StatusBadRequest, leave.ErrNotOpen.Error())
		}
		return errors.Wrap(err, "cancelling leave request")
	}
	return ctx.JSON(http.StatusOK, req)
}

func (api *leaveApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == leave.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting leave request")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// getVisibleRequest fetches the request and hides other employees'
// requests from members.
func (api *leaveApi) getVisibleRequest(ctx echo.Context) (leave.Request, error) {
	req, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == leave.ErrNotFound {
			return leave.Request{}, errHttpNotFound
		}
		return leave.Request{}, errors.Wrap(err, "finding leave request by ID")
	}

	ctxEmp, err := getContextEmployee(ctx, api.empSvc)
	if err != nil {
		return leave.Request{}, errors.Wrap(err, "getting context employee")
	}
	if req.EmployeeID != ctxEmp.ID && !(ctxEmp.IsManager() || ctxEmp.IsAdmin()) {
		return leave.Request{}, errHttpNotFound
	}
	return req, nil
}
