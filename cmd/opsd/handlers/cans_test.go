package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/labstack/echo/v4"
	"github.com/opre/ops/cmd/opsd/handlers"
	httptestutil "github.com/opre/ops/internal/testutils/http"
	apicans "github.com/opre/ops/pkg/api/types/cans"
	"github.com/opre/ops/pkg/domain"
	mockcan "github.com/opre/ops/pkg/domain/can/db/mock"
	domerr "github.com/opre/ops/pkg/domain/errors"
	khistory "github.com/opre/ops/pkg/domain/history/db"
	mockhistory "github.com/opre/ops/pkg/domain/history/db/mock"
)

func TestGetCANHandler(t *testing.T) {
	type when struct {
		target string
		id     string
		detail domain.CANDetail
		err    error
	}
	type then struct {
		get  []mockcan.GetArgs
		code int
		body apicans.Detail
	}

	detail := domain.CANDetail{
		CAN:       domain.CAN{Id: 3, Number: "G99XXX1", Nickname: "can", PortfolioId: 1, ActivePeriod: 1},
		Portfolio: domain.Portfolio{Id: 1, Name: "portfolio", DivisionId: 2},
		FundingBudgets: []domain.CANFundingBudget{
			{Id: 5, CanId: 3, FiscalYear: 2024, Budget: domain.Dollars(1000, 0)},
		},
		FundingReceived: []domain.CANFundingReceived{},
		Summary: domain.CANFundingSummary{
			CanId: 3, FiscalYear: 2024,
			Budget:  domain.Dollars(1000, 0),
			Planned: domain.Dollars(300, 0),
		},
	}

	for name, testcase := range map[string]struct {
		when
		then
	}{
		"it returns the CAN in the queried fiscal year": {
			when{target: "/api/v1/cans/3/?fiscal_year=2024", id: "3", detail: detail},
			then{
				get:  []mockcan.GetArgs{{Id: 3, FiscalYear: 2024}},
				code: http.StatusOK,
			},
		},
		"it passes fiscal year 0 when it is not queried": {
			when{target: "/api/v1/cans/3/", id: "3", detail: detail},
			then{
				get:  []mockcan.GetArgs{{Id: 3, FiscalYear: 0}},
				code: http.StatusOK,
			},
		},
		"it returns 404 when the CAN is missing": {
			when{
				target: "/api/v1/cans/3/", id: "3",
				err: fmt.Errorf("%w: can", domerr.ErrMissing),
			},
			then{
				get:  []mockcan.GetArgs{{Id: 3}},
				code: http.StatusNotFound,
			},
		},
		"it returns 404 when the id is not a number": {
			when{target: "/api/v1/cans/x/", id: "x"},
			then{code: http.StatusNotFound},
		},
		"it returns 400 when fiscal year is not a number": {
			when{target: "/api/v1/cans/3/?fiscal_year=fy24", id: "3"},
			then{code: http.StatusBadRequest},
		},
	} {
		t.Run(name, func(t *testing.T) {
			mock := mockcan.NewCANInterface()
			mock.Impl.Get = func(ctx context.Context, id int, fiscalYear int) (domain.CANDetail, error) {
				return testcase.when.detail, testcase.when.err
			}

			e := echo.New()
			c, respRec := httptestutil.Get(e, testcase.when.target)
			c.SetParamNames("id")
			c.SetParamValues(testcase.when.id)

			err := handlers.GetCANHandler(mock, "id")(c)

			if diff := cmp.Diff(testcase.then.get, []mockcan.GetArgs(mock.Calls.Get)); diff != "" {
				t.Errorf("calls (-expected, +actual):\n%s", diff)
			}
			if testcase.then.code != http.StatusOK {
				expectHTTPError(t, err, testcase.then.code)
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if respRec.Code != http.StatusOK {
				t.Errorf("status code: %d", respRec.Code)
			}

			actual := apicans.Detail{}
			if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
				t.Fatal(err)
			}
			if actual.Id != 3 || actual.Portfolio.Name != "portfolio" {
				t.Errorf("unexpected CAN: %+v", actual)
			}
			if actual.FundingSummary.Available != domain.Dollars(700, 0) {
				t.Errorf("available funding: %s", actual.FundingSummary.Available)
			}
			if len(actual.FundingBudgets) != 1 || actual.FundingBudgets[0].Budget != domain.Dollars(1000, 0) {
				t.Errorf("funding budgets: %+v", actual.FundingBudgets)
			}
		})
	}
}

func TestPatchCANHandler(t *testing.T) {
	t.Run("it updates the CAN as the acting user", func(t *testing.T) {
		mock := mockcan.NewCANInterface()
		mock.Impl.Update = func(ctx context.Context, actor int, id int, patch domain.CANPatch) (domain.CAN, error) {
			return domain.CAN{Id: id, Nickname: "renamed", PortfolioId: 1}, nil
		}

		e := echo.New()
		c, respRec := httptestutil.Patch(
			e, "/api/v1/cans/3/",
			strings.NewReader(`{"nickname": "renamed", "description": null}`),
			asJSON, asActor("21"),
		)
		c.SetParamNames("id")
		c.SetParamValues("3")

		if err := handlers.PatchCANHandler(mock, "id")(c); err != nil {
			t.Fatal(err)
		}
		if respRec.Code != http.StatusOK {
			t.Errorf("status code: %d", respRec.Code)
		}

		calls := mock.Calls.Update
		if calls.Times() != 1 {
			t.Fatalf("Update is called %d times", calls.Times())
		}
		if calls[0].Actor != 21 || calls[0].Id != 3 {
			t.Errorf("unexpected call: %+v", calls[0])
		}
		sameJSON(t, calls[0].Patch, domain.CANPatch{
			Nickname:    domain.Set("renamed"),
			Description: domain.Null[string](),
		})
	})

	for name, testcase := range map[string]struct {
		opts []httptestutil.RequestOption
		body string
		err  error
		code int
	}{
		"without the actor header, it returns 401": {
			opts: []httptestutil.RequestOption{asJSON},
			body: `{}`,
			code: http.StatusUnauthorized,
		},
		"with a malformed actor header, it returns 401": {
			opts: []httptestutil.RequestOption{asJSON, asActor("someone")},
			body: `{}`,
			code: http.StatusUnauthorized,
		},
		"when the body is not json, it returns 400": {
			opts: []httptestutil.RequestOption{asActor("1")},
			body: `nickname=x`,
			code: http.StatusBadRequest,
		},
		"when the patch is invalid, it returns 400": {
			opts: []httptestutil.RequestOption{asJSON, asActor("1")},
			body: `{"portfolio_id": null}`,
			err:  invalid("portfolio_id", "required"),
			code: http.StatusBadRequest,
		},
		"when the user does not manage the CAN, it returns 403": {
			opts: []httptestutil.RequestOption{asJSON, asActor("1")},
			body: `{"nickname": "x"}`,
			err:  fmt.Errorf("%w: not a manager", domerr.ErrForbidden),
			code: http.StatusForbidden,
		},
		"when the database fails, it returns 500": {
			opts: []httptestutil.RequestOption{asJSON, asActor("1")},
			body: `{"nickname": "x"}`,
			err:  errors.New("fake error"),
			code: http.StatusInternalServerError,
		},
	} {
		t.Run(name, func(t *testing.T) {
			mock := mockcan.NewCANInterface()
			mock.Impl.Update = func(ctx context.Context, actor int, id int, patch domain.CANPatch) (domain.CAN, error) {
				return domain.CAN{}, testcase.err
			}

			e := echo.New()
			c, _ := httptestutil.Patch(e, "/api/v1/cans/3/", strings.NewReader(testcase.body), testcase.opts...)
			c.SetParamNames("id")
			c.SetParamValues("3")

			err := handlers.PatchCANHandler(mock, "id")(c)
			expectHTTPError(t, err, testcase.code)
		})
	}
}

func TestCreateFundingBudgetHandler(t *testing.T) {
	mock := mockcan.NewCANInterface()
	mock.Impl.CreateFundingBudget = func(ctx context.Context, actor int, b domain.CANFundingBudget) (domain.CANFundingBudget, error) {
		b.Id = 8
		return b, nil
	}

	e := echo.New()
	c, respRec := httptestutil.Post(
		e, "/api/v1/cans/3/funding-budgets/",
		strings.NewReader(`{"fiscal_year": 2025, "budget": "1500.25", "notes": "initial"}`),
		asJSON, asActor("4"),
	)
	c.SetParamNames("id")
	c.SetParamValues("3")

	if err := handlers.CreateFundingBudgetHandler(mock, "id")(c); err != nil {
		t.Fatal(err)
	}
	if respRec.Code != http.StatusCreated {
		t.Errorf("status code: %d", respRec.Code)
	}

	expected := []mockcan.CreateFundingBudgetArgs{{
		Actor: 4,
		Budget: domain.CANFundingBudget{
			CanId: 3, FiscalYear: 2025, Budget: domain.Dollars(1500, 25), Notes: "initial",
		},
	}}
	if diff := cmp.Diff(expected, []mockcan.CreateFundingBudgetArgs(mock.Calls.CreateFundingBudget)); diff != "" {
		t.Errorf("calls (-expected, +actual):\n%s", diff)
	}

	actual := apicans.FundingBudget{}
	if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
		t.Fatal(err)
	}
	if actual.Id != 8 || actual.Budget != domain.Dollars(1500, 25) {
		t.Errorf("unexpected response: %+v", actual)
	}
}

func TestCreateFundingReceivedHandler(t *testing.T) {
	t.Run("when the CAN is missing, it returns 404", func(t *testing.T) {
		mock := mockcan.NewCANInterface()
		mock.Impl.CreateFundingReceived = func(ctx context.Context, actor int, r domain.CANFundingReceived) (domain.CANFundingReceived, error) {
			return domain.CANFundingReceived{}, fmt.Errorf("%w: can", domerr.ErrMissing)
		}

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/v1/cans/3/funding-received/",
			strings.NewReader(`{"fiscal_year": 2025, "funding": "10.00"}`),
			asJSON, asActor("4"),
		)
		c.SetParamNames("id")
		c.SetParamValues("3")

		err := handlers.CreateFundingReceivedHandler(mock, "id")(c)
		expectHTTPError(t, err, http.StatusNotFound)
	})
}

func TestGetCANHistoryHandler(t *testing.T) {
	timestamp := time.Date(2024, 10, 2, 3, 4, 5, 0, time.UTC)

	mock := mockhistory.NewHistoryInterface()
	mock.Impl.CANHistory = func(ctx context.Context, canId int, fiscalYear int, page khistory.Page) ([]domain.CANHistory, error) {
		return []domain.CANHistory{
			{
				Id: 1, CanId: canId, OpsEventId: 10,
				HistoryTitle:   "Nickname Edited",
				HistoryMessage: "Jane Doe edited the nickname from old to new",
				Timestamp:      timestamp,
				HistoryType:    domain.CANNicknameEdited,
				FiscalYear:     2025,
			},
		}, nil
	}

	e := echo.New()
	c, respRec := httptestutil.Get(e, "/api/v1/cans/3/history/?fiscal_year=2025&limit=1000&offset=5")
	c.SetParamNames("id")
	c.SetParamValues("3")

	if err := handlers.GetCANHistoryHandler(mock, "id")(c); err != nil {
		t.Fatal(err)
	}

	expectedCalls := []mockhistory.CANHistoryArgs{{
		CanId: 3, FiscalYear: 2025, Page: khistory.Page{Limit: khistory.MaxLimit, Offset: 5},
	}}
	if diff := cmp.Diff(expectedCalls, []mockhistory.CANHistoryArgs(mock.Calls.CANHistory)); diff != "" {
		t.Errorf("calls (-expected, +actual):\n%s", diff)
	}

	actual := []apicans.HistoryItem{}
	if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
		t.Fatal(err)
	}
	if len(actual) != 1 || actual[0].HistoryType != string(domain.CANNicknameEdited) {
		t.Errorf("unexpected response: %+v", actual)
	}
}
