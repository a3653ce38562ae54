package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	bindagreements "github.com/opre/ops/pkg/api-types-binding/agreements"
	bindcr "github.com/opre/ops/pkg/api-types-binding/changerequests"
	apiagreements "github.com/opre/ops/pkg/api/types/agreements"
	apierr "github.com/opre/ops/pkg/api/types/errors"
	"github.com/opre/ops/pkg/domain"
	kagreement "github.com/opre/ops/pkg/domain/agreement/db"
	"github.com/opre/ops/pkg/metrics"
	"github.com/opre/ops/pkg/utils"
)

func GetAgreementHandler(dbagreement kagreement.Interface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := intParam(c, param)
		if err != nil {
			return err
		}
		detail, err := dbagreement.Get(c.Request().Context(), id)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, bindagreements.ComposeDetail(detail))
	}
}

// PatchAgreementHandler edits an agreement.
//
// It responds 202 Accepted when some of the changes wait for approval, and 200 OK otherwise.
func PatchAgreementHandler(
	dbagreement kagreement.Interface, collector *metrics.Collector, param string,
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
		patch := domain.AgreementPatch{}
		notes := requestorNotes{}
		if err := readJSON(c, &patch, &notes); err != nil {
			return err
		}

		updated, err := dbagreement.Update(c.Request().Context(), actor, id, patch, notes.Notes)
		if err != nil {
			return apierr.FromDomain(err)
		}
		collector.ChangeRequestsOpened(updated.ChangeRequests...)

		status := http.StatusOK
		if updated.Accepted() {
			status = http.StatusAccepted
		}
		return c.JSON(status, bindagreements.ComposeUpdate(updated))
	}
}

func SubmitStatusChangeHandler(
	dbagreement kagreement.Interface, collector *metrics.Collector, param string,
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
		req := apiagreements.StatusChangeRequest{}
		if err := readJSON(c, &req); err != nil {
			return err
		}
		target, err := domain.AsBudgetLineItemStatus(req.Status)
		if err != nil {
			return apierr.BadRequest("status should be one of PLANNED, IN_EXECUTION or OBLIGATED", err)
		}

		crs, err := dbagreement.SubmitStatusChange(
			c.Request().Context(), actor, id, req.BudgetLineItemIds, target, req.RequestorNotes,
		)
		if err != nil {
			return apierr.FromDomain(err)
		}
		collector.ChangeRequestsOpened(crs...)
		return c.JSON(http.StatusAccepted, utils.Map(crs, bindcr.Compose))
	}
}
