package handlers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	bindnotifications "github.com/opre/ops/pkg/api-types-binding/notifications"
	apierr "github.com/opre/ops/pkg/api/types/errors"
	knotification "github.com/opre/ops/pkg/domain/notification/db"
	"github.com/opre/ops/pkg/utils"
)

// FindNotificationHandler lists notifications to a user. Query unread=true drops read ones.
//
// Only the recipient can list them.
func FindNotificationHandler(dbnotification knotification.Interface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		recipient, err := intParam(c, param)
		if err != nil {
			return err
		}
		if actor != recipient {
			return apierr.Forbidden(apierr.WithAdvice("notifications can be read only by their recipient"))
		}
		unread, err := boolQuery(c, "unread")
		if err != nil {
			return err
		}
		ns, err := dbnotification.Find(c.Request().Context(), recipient, unread)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, utils.Map(ns, bindnotifications.Compose))
	}
}

func AcknowledgeNotificationHandler(dbnotification knotification.Interface, param string) echo.HandlerFunc {
	return func(c echo.Context) error {
		actor, err := actorOf(c)
		if err != nil {
			return err
		}
		id, err := intParam(c, param)
		if err != nil {
			return err
		}
		n, err := dbnotification.Acknowledge(c.Request().Context(), actor, id)
		if err != nil {
			return apierr.FromDomain(err)
		}
		return c.JSON(http.StatusOK, bindnotifications.Compose(n))
	}
}
