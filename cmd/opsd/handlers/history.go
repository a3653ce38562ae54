package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	bindhistory "github.com/opre/ops/pkg/api-types-binding/history"
	apierr "github.com/opre/ops/pkg/api/types/errors"
	"github.com/opre/ops/pkg/domain"
	khistory "github.com/opre/ops/pkg/domain/history/db"
	"github.com/opre/ops/pkg/utils"
)

// FindDBHistoryHandler lists row changes of an entity, newest first.
//
// Queries class_name and row_key are required.
func FindDBHistoryHandler(dbhistory khistory.Interface) echo.HandlerFunc {
	return func(c echo.Context) error {
		className := c.QueryParam("class_name")
		rowKey := c.QueryParam("row_key")
		if className == "" || rowKey == "" {
			return apierr.BadRequest("query class_name and row_key are required", nil)
		}
		page, err := pageOf(c)
		if err != nil {
			return err
		}

		items, err := dbhistory.DBHistory(c.Request().Context(), className, rowKey, page)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, utils.Map(items, bindhistory.ComposeDBHistory))
	}
}

// FindEventsHandler lists events, newest first. Query event_type narrows them.
func FindEventsHandler(dbhistory khistory.Interface) echo.HandlerFunc {
	return func(c echo.Context) error {
		var eventType domain.OpsEventType
		if t := c.QueryParam("event_type"); t != "" {
			et, err := domain.AsOpsEventType(t)
			if err != nil {
				return apierr.BadRequest("unknown event_type", err)
			}
			eventType = et
		}
		limit, err := intQuery(c, "limit")
		if err != nil {
			return err
		}

		events, err := dbhistory.Events(
			c.Request().Context(), eventType, khistory.Page{Limit: limit}.Normalized().Limit,
		)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, utils.Map(events, bindhistory.ComposeEvent))
	}
}
