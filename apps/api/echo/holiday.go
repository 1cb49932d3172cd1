package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/timeoff/core/holiday"
)

type holidayApi struct {
	svc holiday.Service
}

func registerHolidayAPI(g *echo.Group, jwt echo.MiddlewareFunc, svc holiday.Service) {
	api := holidayApi{svc: svc}

	hg := g.Group("/holidays", jwt)
	hg.GET("", api.query)
	hg.POST("", api.create, adminMiddleware())
	hg.DELETE("", api.destroyMultiple, adminMiddleware())

	dg := hg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update, adminMiddleware())
	dg.DELETE("", api.destroy, adminMiddleware())
}

func (api *holidayApi) create(ctx echo.Context) error {
	var data holiday.NewHoliday
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewHoliday")
	}
	if err := data.Validate(); err != nil {
		return err
	}

	hol, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating holiday")
	}
	return ctx.JSON(http.StatusCreated, hol)
}

func (api *holidayApi) query(ctx echo.Context) error {
	filter := new(holiday.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []holiday.Holiday{})
	}
	ordering := new(Ordering)
	ordering.Bind(ctx)

	hols, err := api.svc.Query(ctx.Request().Context(), filter, ordering.Orderings)
	if err != nil {
		return errors.Wrap(err, "querying holidays")
	}
	if hols == nil {
		hols = []holiday.Holiday{}
	}
	return ctx.JSON(http.StatusOK, hols)
}

func (api *holidayApi) retrieve(ctx echo.Context) error {
	hol, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == holiday.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding holiday by ID")
	}
	return ctx.JSON(http.StatusOK, hol)
}

func (api *holidayApi) update(ctx echo.Context) error {
	orig, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == holiday.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding holiday by ID")
	}

	var data holiday.UpdateHoliday
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateHoliday")
	}
	if err := data.Validate(orig); err != nil {
		return err
	}

	hol, err := api.svc.Update(ctx.Request().Context(), orig.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating holiday")
	}
	return ctx.JSON(http.StatusOK, hol)
}

func (api *holidayApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == holiday.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting holiday")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *holidayApi) destroyMultiple(ctx echo.Context) error {
	var query DestroyMultipleRequest
	if err := ctx.Bind(&query); err != nil {
		return errors.Wrap(err, "binding to DestroyMultipleRequest")
	}
	if query.IDs == nil {
		return ctx.NoContent(http.StatusNoContent)
	}
	if err := api.svc.Delete(ctx.Request().Context(), query.IDs...); err != nil {
		return errors.Wrap(err, "deleting holidays")
	}
	return ctx.NoContent(http.StatusNoContent)
}
