package echoapi

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/timeoff/core"
	"github.com/trezcool/timeoff/core/analytics"
)

type analyticsApi struct {
	svc analytics.Service
}

func registerAnalyticsAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc analytics.Service) {
	api := analyticsApi{svc: svc}

	g.GET("/analytics/report", api.report, jwt)
	g.GET("/calendar", api.calendar, jwt)
}

func (api *analyticsApi) report(ctx echo.Context) error {
	var filter analytics.Filter
	if err := ctx.Bind(&filter); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid report filter")
	}
	if err := filter.Validate(); err != nil {
		return err
	}

	report, err := api.svc.Report(ctx.Request().Context(), filter)
	if err != nil {
		return errors.Wrap(err, "building analytics report")
	}
	return ctx.JSON(http.StatusOK, report)
}

func (api *analyticsApi) calendar(ctx echo.Context) error {
	var query CalendarRequest
	if err := ctx.Bind(&query); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid calendar range")
	}
	if err := query.Validate(); err != nil {
		return err
	}

	entries, err := api.svc.Calendar(ctx.Request().Context(), query.From, query.To)
	if err != nil {
		return errors.Wrap(err, "building calendar")
	}
	if entries == nil {
		entries = []analytics.CalendarEntry{}
	}
	return ctx.JSON(http.StatusOK, entries)
}

type CalendarRequest struct {
	From time.Time `query:"from" json:"from" validate:"required"`
	To   time.Time `query:"to" json:"to" validate:"required,dateafter=From"`
}

func (cr *CalendarRequest) Validate() error {
	return core.Validate.Struct(cr)
}
