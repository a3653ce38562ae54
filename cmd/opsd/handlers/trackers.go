package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	bindtrackers "github.com/opre/ops/pkg/api-types-binding/trackers"
	apierr "github.com/opre/ops/pkg/api/types/errors"
	apitrackers "github.com/opre/ops/pkg/api/types/trackers"
	"github.com/opre/ops/pkg/domain"
	ktracker "github.com/opre/ops/pkg/domain/tracker/db"
	"github.com/opre/ops/pkg/metrics"
)

func GetTrackerHandler(dbtracker ktracker.Interface, agreementParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		agreementId, err := intParam(c, agreementParam)
		if err != nil {
			return err
		}
		t, err := dbtracker.GetByAgreement(c.Request().Context(), agreementId)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, bindtrackers.Compose(t))
	}
}

// CompleteStepHandler completes the active step of a tracker.
//
// When the step is AWARD, the response carries the procurement action and obligated budget line items.
func CompleteStepHandler(
	dbtracker ktracker.Interface, collector *metrics.Collector, trackerParam string, stepParam string,
) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		trackerId, err := intParam(c, trackerParam)
		if err != nil {
			return err
		}
		step, err := intParam(c, stepParam)
		if err != nil {
			return err
		}
		req := apitrackers.CompleteRequest{}
		if err := readJSON(c, &req); err != nil {
			return err
		}

		completed, err := dbtracker.CompleteStep(
			c.Request().Context(), actor, trackerId, step, bindtrackers.AsCompletion(req),
		)
		if err != nil {
			return apierr.FromDomain(err)
		}
		if s, ok := completed.Tracker.Step(step); ok {
			collector.StepCompleted(s.Type)
		}
		return c.JSON(http.StatusOK, bindtrackers.ComposeStepCompleted(completed))
	}
}

func PatchStepHandler(dbtracker ktracker.Interface, trackerParam string, stepParam string) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		trackerId, err := intParam(c, trackerParam)
		if err != nil {
			return err
		}
		step, err := intParam(c, stepParam)
		if err != nil {
			return err
		}
		patch := domain.StepPatch{}
		if err := readJSON(c, &patch); err != nil {
			return err
		}

		t, err := dbtracker.UpdateStep(c.Request().Context(), actor, trackerId, step, patch)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, bindtrackers.Compose(t))
	}
}

// SetTrackerActiveHandler activates (PUT) or deactivates (DELETE) a tracker.
func SetTrackerActiveHandler(dbtracker ktracker.Interface, active bool, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		trackerId, err := intParam(c, param)
		if err != nil {
			return err
		}
		t, err := dbtracker.SetActive(c.Request().Context(), actor, trackerId, active)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, bindtrackers.Compose(t))
	}
}
