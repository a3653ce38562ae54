package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	bindcr "github.com/opre/ops/pkg/api-types-binding/changerequests"
	apicr "github.com/opre/ops/pkg/api/types/changerequests"
	apierr "github.com/opre/ops/pkg/api/types/errors"
	"github.com/opre/ops/pkg/domain"
	kcr "github.com/opre/ops/pkg/domain/changerequest/db"
	"github.com/opre/ops/pkg/metrics"
	"github.com/opre/ops/pkg/utils"
)

func GetChangeRequestHandler(dbcr kcr.Interface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, err := intParam(c, param)
		if err != nil {
			return err
		}
		cr, err := dbcr.Get(c.Request().Context(), id)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, bindcr.Compose(cr))
	}
}

// FindChangeRequestHandler lists change requests.
//
// Queries are reviewer_id, agreement_id, budget_line_item_id and status. Each of them narrows the result.
func FindChangeRequestHandler(dbcr kcr.Interface) echo.HandlerFunc {
	return func(c echo.Context) error {
		q := kcr.Query{}
		var err error
		if q.ReviewerId, err = intQuery(c, "reviewer_id"); err != nil {
			return err
		}
		if q.AgreementId, err = intQuery(c, "agreement_id"); err != nil {
			return err
		}
		if q.BudgetLineItemId, err = intQuery(c, "budget_line_item_id"); err != nil {
			return err
		}
		if s := c.QueryParam("status"); s != "" {
			if q.Status, err = domain.AsChangeRequestStatus(s); err != nil {
				return apierr.BadRequest("status should be one of IN_REVIEW, APPROVED or REJECTED", err)
			}
		}

		crs, err := dbcr.Find(c.Request().Context(), q)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, utils.Map(crs, bindcr.Compose))
	}
}

func ReviewChangeRequestHandler(
	dbcr kcr.Interface, collector *metrics.Collector, param string,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		reviewer, err := actorOf(c)
		if err != nil {
			return err
		}
		id, err := intParam(c, param)
		if err != nil {
			return err
		}
		req := apicr.ReviewRequest{}
		if err := readJSON(c, &req); err != nil {
			return err
		}
		decision, err := domain.AsReviewDecision(req.Action)
		if err != nil {
			return apierr.BadRequest("action should be one of APPROVE, REJECT or REQUEST_CHANGES", err)
		}

		review, err := dbcr.Review(c.Request().Context(), reviewer, id, decision, req.ReviewerNotes)
		if err != nil {
			return apierr.FromDomain(err)
		}
		collector.Reviewed(decision, review)
		return c.JSON(http.StatusOK, bindcr.ComposeReview(review))
	}
}

// BulkReviewHandler reviews change requests one by one.
//
// Failures of some reviews do not affect the others; the response lists the result of each.
func BulkReviewHandler(dbcr kcr.Interface, collector *metrics.Collector) echo.HandlerFunc {
	return func(c echo.Context) error {
		reviewer, err := actorOf(c)
		if err != nil {
			return err
		}
		req := apicr.BulkReviewRequest{}
		if err := readJSON(c, &req); err != nil {
			return err
		}
		if len(req.Ids) == 0 {
			return apierr.BadRequest("change_request_ids should not be empty", nil)
		}
		decision, err := domain.AsReviewDecision(req.Action)
		if err != nil {
			return apierr.BadRequest("action should be one of APPROVE, REJECT or REQUEST_CHANGES", err)
		}

		results := dbcr.ReviewAll(c.Request().Context(), reviewer, req.Ids, decision, req.ReviewerNotes)
		for _, r := range results {
			if r.Review != nil {
				collector.Reviewed(decision, *r.Review)
			}
		}
		return c.JSON(http.StatusOK, bindcr.ComposeResults(results))
	}
}
