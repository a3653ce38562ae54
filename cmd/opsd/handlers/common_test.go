package handlers_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/opre/ops/cmd/opsd/handlers"
	httptestutil "github.com/opre/ops/internal/testutils/http"
	domerr "github.com/opre/ops/pkg/domain/errors"
)

func asActor(id string) httptestutil.RequestOption {
	return httptestutil.WithHeader(handlers.ActorHeader, id)
}

var asJSON = httptestutil.ContentType("application/json")

func expectHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var echoErr *echo.HTTPError
	if !errors.As(err, &echoErr) {
		t.Fatalf("error is not echo.HTTPError. actual = %#v", err)
	}
	if echoErr.Code != code {
		t.Errorf("unmatch error code: %d, expected: %d (%v)", echoErr.Code, code, echoErr)
	}
}

// sameJSON compares values by their JSON forms. Patches are compared this way.
func sameJSON(t *testing.T, actual any, expected any) {
	t.Helper()
	a, err := json.Marshal(actual)
	if err != nil {
		t.Fatal(err)
	}
	e, err := json.Marshal(expected)
	if err != nil {
		t.Fatal(err)
	}
	if string(a) != string(e) {
		t.Errorf("unmatch: actual = %s, expected = %s", a, e)
	}
}

func invalid(field string, problem string) error {
	verr := domerr.NewValidationError()
	verr.Add(field, problem)
	return verr.OrNil()
}
