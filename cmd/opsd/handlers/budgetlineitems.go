package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	bindbli "github.com/opre/ops/pkg/api-types-binding/budgetlineitems"
	apierr "github.com/opre/ops/pkg/api/types/errors"
	"github.com/opre/ops/pkg/domain"
	kbli "github.com/opre/ops/pkg/domain/budgetlineitem/db"
	"github.com/opre/ops/pkg/metrics"
)

func GetBudgetLineItemHandler(dbbli kbli.Interface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := intParam(c, param)
		if err != nil {
			return err
		}
		b, err := dbbli.Get(c.Request().Context(), id)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, bindbli.ComposeDetail(b))
	}
}

// CreateBudgetLineItemHandler creates a DRAFT budget line item in the agreement named by "agreement_id".
func CreateBudgetLineItemHandler(dbbli kbli.Interface) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		patch := domain.BudgetLineItemPatch{}
		owner := struct {
			AgreementId int `json:"agreement_id"`
		}{}
		if err := readJSON(c, &patch, &owner); err != nil {
			return err
		}
		if owner.AgreementId <= 0 {
			return apierr.BadRequest("agreement_id is required", nil)
		}

		created, err := dbbli.Create(c.Request().Context(), actor, owner.AgreementId, patch)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusCreated, bindbli.Compose(created))
	}
}

// PatchBudgetLineItemHandler edits a budget line item.
//
// It responds 202 Accepted when some of the changes wait for approval, and 200 OK otherwise.
func PatchBudgetLineItemHandler(
	dbbli kbli.Interface, collector *metrics.Collector, param string,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		id, err := intParam(c, param)
		if err != nil {
			return err
		}
		patch := domain.BudgetLineItemPatch{}
		notes := requestorNotes{}
		if err := readJSON(c, &patch, &notes); err != nil {
			return err
		}

		updated, err := dbbli.Update(c.Request().Context(), actor, id, patch, notes.Notes)
		if err != nil {
			return apierr.FromDomain(err)
		}
		collector.ChangeRequestsOpened(updated.ChangeRequests...)

		status := http.StatusOK
		if updated.Accepted() {
			status = http.StatusAccepted
		}
		return c.JSON(status, bindbli.ComposeUpdate(updated))
	}
}

func DeleteBudgetLineItemHandler(dbbli kbli.Interface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		id, err := intParam(c, param)
		if err != nil {
			return err
		}
		if err := dbbli.Delete(c.Request().Context(), actor, id); err != nil {
			return apierr.FromDomain(err)
		}
		return c.NoContent(http.StatusNoContent)
	}
}
