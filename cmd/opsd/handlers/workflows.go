package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	bindwf "github.com/opre/ops/pkg/api-types-binding/workflows"
	apierr "github.com/opre/ops/pkg/api/types/errors"
	apiwf "github.com/opre/ops/pkg/api/types/workflows"
	kwf "github.com/opre/ops/pkg/domain/workflow/db"
)

func GetWorkflowHandler(dbwf kwf.Interface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := intParam(c, param)
		if err != nil {
			return err
		}
		w, err := dbwf.Get(c.Request().Context(), id)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, bindwf.Compose(w))
	}
}

// ResubmitWorkflowHandler puts a workflow sent back for changes into review again.
//
// The request body is optional.
func ResubmitWorkflowHandler(dbwf kwf.Interface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		id, err := intParam(c, param)
		if err != nil {
			return err
		}
		req := apiwf.ResubmitRequest{}
		if c.Request().ContentLength != 0 {
			if err := readJSON(c, &req); err != nil {
				return err
			}
		}

		w, err := dbwf.Resubmit(c.Request().Context(), actor, id, req.Notes)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, bindwf.Compose(w))
	}
}
