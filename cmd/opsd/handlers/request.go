package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	apierr "github.com/opre/ops/pkg/api/types/errors"
)

// ActorHeader carries the id of the user acting on the request.
const ActorHeader = "X-Ops-User-Id"

// actorOf returns the acting user of the request.
//
// It fails with 401 when the header is missing or not a positive integer.
func actorOf(c echo.Context) (int, error) {
	v := c.Request().Header.Get(ActorHeader)
	if v == "" {
		return 0, apierr.Unauthorized(fmt.Sprintf("set header %s", ActorHeader))
	}
	id, err := strconv.Atoi(v)
	if err != nil || id <= 0 {
		return 0, apierr.Unauthorized(fmt.Sprintf("header %s should be a user id", ActorHeader))
	}
	return id, nil
}

// RequireActor rejects requests without an acting user with 401.
func RequireActor(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := actorOf(c); err != nil {
			return err
		}
		return next(c)
	}
}

func intParam(c echo.Context, name string) (int, error) {
	v, err := strconv.Atoi(c.Param(name))
	if err != nil {
		return 0, apierr.NotFound()
	}
	return v, nil
}

// intQuery reads an optional integer query parameter. It returns 0 when absent.
func intQuery(c echo.Context, name string) (int, error) {
	v := c.QueryParam(name)
	if v == "" {
		return 0, nil
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return 0, apierr.BadRequest(fmt.Sprintf("query %s should be an integer", name), err)
	}
	return i, nil
}

func boolQuery(c echo.Context, name string) (bool, error) {
	v := c.QueryParam(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, apierr.BadRequest(fmt.Sprintf("query %s should be true or false", name), err)
	}
	return b, nil
}

// readJSON decodes the request body into each of dest.
//
// A request body can be read as more than one shape, for example a patch and its notes.
func readJSON(c echo.Context, dest ...any) error {
	req := c.Request()
	ctyp := strings.ToLower(req.Header.Get("Content-Type"))
	if !strings.HasPrefix(ctyp, "application/json") {
		return apierr.BadRequest("unexpected content type. it should be application/json", nil)
	}

	body, err := io.ReadAll(req.Body)
	if err != nil {
		return apierr.BadRequest("can not read the request body", err)
	}
	for _, d := range dest {
		if err := json.Unmarshal(body, d); err != nil {
			return apierr.BadRequest("can not understand the requested json", err)
		}
	}
	return nil
}

type requestorNotes struct {
	Notes string `json:"requestor_notes"`
}
