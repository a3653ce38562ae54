package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	bindcans "github.com/opre/ops/pkg/api-types-binding/cans"
	apicans "github.com/opre/ops/pkg/api/types/cans"
	apierr "github.com/opre/ops/pkg/api/types/errors"
	"github.com/opre/ops/pkg/domain"
	kcan "github.com/opre/ops/pkg/domain/can/db"
	khistory "github.com/opre/ops/pkg/domain/history/db"
	"github.com/opre/ops/pkg/utils"
)

func GetCANHandler(dbcan kcan.Interface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := intParam(c, param)
		if err != nil {
			return err
		}
		fy, err := intQuery(c, "fiscal_year")
		if err != nil {
			return err
		}

		detail, err := dbcan.Get(c.Request().Context(), id, fy)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, bindcans.ComposeDetail(detail))
	}
}

func CreateCANHandler(dbcan kcan.Interface) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		req := apicans.CreateRequest{}
		if err := readJSON(c, &req); err != nil {
			return err
		}

		created, err := dbcan.Create(c.Request().Context(), actor, bindcans.AsCAN(req))
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusCreated, bindcans.ComposeCAN(created))
	}
}

func PatchCANHandler(dbcan kcan.Interface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		id, err := intParam(c, param)
		if err != nil {
			return err
		}
		patch := domain.CANPatch{}
		if err := readJSON(c, &patch); err != nil {
			return err
		}

		updated, err := dbcan.Update(c.Request().Context(), actor, id, patch)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, bindcans.ComposeCAN(updated))
	}
}

func CreateFundingBudgetHandler(dbcan kcan.Interface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		canId, err := intParam(c, param)
		if err != nil {
			return err
		}
		req := apicans.FundingBudgetRequest{}
		if err := readJSON(c, &req); err != nil {
			return err
		}

		created, err := dbcan.CreateFundingBudget(
			c.Request().Context(), actor,
			domain.CANFundingBudget{
				CanId: canId, FiscalYear: req.FiscalYear, Budget: req.Budget, Notes: req.Notes,
			},
		)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusCreated, bindcans.ComposeFundingBudget(created))
	}
}

func PatchFundingBudgetHandler(dbcan kcan.Interface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		id, err := intParam(c, param)
		if err != nil {
			return err
		}
		patch := domain.CANFundingBudgetPatch{}
		if err := readJSON(c, &patch); err != nil {
			return err
		}

		updated, err := dbcan.UpdateFundingBudget(c.Request().Context(), actor, id, patch)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, bindcans.ComposeFundingBudget(updated))
	}
}

func CreateFundingReceivedHandler(dbcan kcan.Interface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		canId, err := intParam(c, param)
		if err != nil {
			return err
		}
		req := apicans.FundingReceivedRequest{}
		if err := readJSON(c, &req); err != nil {
			return err
		}

		created, err := dbcan.CreateFundingReceived(
			c.Request().Context(), actor,
			domain.CANFundingReceived{
				CanId: canId, FiscalYear: req.FiscalYear, Funding: req.Funding, Notes: req.Notes,
			},
		)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusCreated, bindcans.ComposeFundingReceived(created))
	}
}

func GetCANHistoryHandler(dbhistory khistory.Interface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		canId, err := intParam(c, param)
		if err != nil {
			return err
		}
		fy, err := intQuery(c, "fiscal_year")
		if err != nil {
			return err
		}
		page, err := pageOf(c)
		if err != nil {
			return err
		}

		items, err := dbhistory.CANHistory(c.Request().Context(), canId, fy, page)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, utils.Map(items, bindcans.ComposeHistoryItem))
	}
}

func pageOf(c echo.Context) (khistory.Page, error) {
	limit, err := intQuery(c, "limit")
	if err != nil {
		return khistory.Page{}, err
	}
	offset, err := intQuery(c, "offset")
	if err != nil {
		return khistory.Page{}, err
	}
	return khistory.Page{Limit: limit, Offset: offset}.Normalized(), nil
}
