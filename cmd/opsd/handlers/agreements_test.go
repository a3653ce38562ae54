package handlers_test

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/labstack/echo/v4"
	"github.com/opre/ops/cmd/opsd/handlers"
	httptestutil "github.com/opre/ops/internal/testutils/http"
	apiagreements "github.com/opre/ops/pkg/api/types/agreements"
	apicr "github.com/opre/ops/pkg/api/types/changerequests"
	"github.com/opre/ops/pkg/domain"
	mockagreement "github.com/opre/ops/pkg/domain/agreement/db/mock"
	domerr "github.com/opre/ops/pkg/domain/errors"
	"github.com/opre/ops/pkg/metrics"
	"github.com/opre/ops/pkg/utils/pointer"
)

func TestGetAgreementHandler(t *testing.T) {
	amount := domain.Dollars(100, 0)
	mock := mockagreement.NewAgreementInterface()
	mock.Impl.Get = func(ctx context.Context, id int) (domain.AgreementDetail, error) {
		items := []domain.BudgetLineItem{
			{Id: 1, AgreementId: id, Amount: &amount, Status: domain.Planned},
		}
		return domain.AgreementDetail{
			Agreement: domain.Agreement{Id: id, Type: domain.Contract, Name: "agreement"},
			Items:     domain.Priced(items, domain.NoFee{}),
			Totals:    domain.SummarizeAgreement(items, domain.NoFee{}),
		}, nil
	}

	e := echo.New()
	c, respRec := httptestutil.Get(e, "/api/v1/agreements/2/")
	c.SetParamNames("id")
	c.SetParamValues("2")

	if err := handlers.GetAgreementHandler(mock, "id")(c); err != nil {
		t.Fatal(err)
	}

	actual := apiagreements.Detail{}
	if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
		t.Fatal(err)
	}
	if actual.Id != 2 || actual.Type != "CONTRACT" {
		t.Errorf("unexpected agreement: %+v", actual.Agreement)
	}
	if len(actual.BudgetLineItems) != 1 || actual.BudgetLineItems[0].Status != "PLANNED" {
		t.Errorf("unexpected budget line items: %+v", actual.BudgetLineItems)
	}
	if actual.Totals.ByStatus["PLANNED"] != amount {
		t.Errorf("unexpected totals: %+v", actual.Totals)
	}
}

func TestPatchAgreementHandler(t *testing.T) {
	type when struct {
		body   string
		update domain.AgreementUpdate
		err    error
	}
	type then struct {
		code  int
		patch domain.AgreementPatch
		notes string
		crs   int
	}

	for name, testcase := range map[string]struct {
		when
		then
	}{
		"direct edits are answered with 200": {
			when{
				body: `{"name": "renamed"}`,
				update: domain.AgreementUpdate{
					Agreement: domain.Agreement{Id: 2, Name: "renamed"},
				},
			},
			then{
				code:  http.StatusOK,
				patch: domain.AgreementPatch{Name: domain.Set("renamed")},
			},
		},
		"edits waiting for approval are answered with 202": {
			when{
				body: `{"procurement_shop_id": 4, "requestor_notes": "cheaper shop"}`,
				update: domain.AgreementUpdate{
					Agreement: domain.Agreement{Id: 2, ProcurementShopId: pointer.Ref(1)},
					ChangeRequests: []domain.ChangeRequest{
						{
							Id: 9, Type: domain.AgreementChangeRequest, Status: domain.ChangeInReview,
							AgreementId: 2, HasProcurementShopChange: true,
						},
					},
				},
			},
			then{
				code:  http.StatusAccepted,
				patch: domain.AgreementPatch{ProcurementShopId: domain.Set(4)},
				notes: "cheaper shop",
				crs:   1,
			},
		},
	} {
		t.Run(name, func(t *testing.T) {
			mock := mockagreement.NewAgreementInterface()
			mock.Impl.Update = func(ctx context.Context, actor int, id int, patch domain.AgreementPatch, notes string) (domain.AgreementUpdate, error) {
				return testcase.when.update, testcase.when.err
			}
			collector := metrics.NewMetricsCollector()

			e := echo.New()
			c, respRec := httptestutil.Patch(
				e, "/api/v1/agreements/2/", strings.NewReader(testcase.when.body), asJSON, asActor("5"),
			)
			c.SetParamNames("id")
			c.SetParamValues("2")

			if err := handlers.PatchAgreementHandler(mock, collector, "id")(c); err != nil {
				t.Fatal(err)
			}
			if respRec.Code != testcase.then.code {
				t.Errorf("status code: %d, expected %d", respRec.Code, testcase.then.code)
			}

			calls := mock.Calls.Update
			if calls.Times() != 1 {
				t.Fatalf("Update is called %d times", calls.Times())
			}
			if calls[0].Actor != 5 || calls[0].Id != 2 || calls[0].Notes != testcase.then.notes {
				t.Errorf("unexpected call: %+v", calls[0])
			}
			sameJSON(t, calls[0].Patch, testcase.then.patch)

			actual := apiagreements.UpdateResponse{}
			if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
				t.Fatal(err)
			}
			if len(actual.ChangeRequests) != testcase.then.crs {
				t.Errorf("change requests: %+v", actual.ChangeRequests)
			}
		})
	}

	t.Run("when another change request is in review, it returns 409", func(t *testing.T) {
		mock := mockagreement.NewAgreementInterface()
		mock.Impl.Update = func(ctx context.Context, actor int, id int, patch domain.AgreementPatch, notes string) (domain.AgreementUpdate, error) {
			return domain.AgreementUpdate{}, domerr.Conflict("agreement 2 has a change request in review")
		}

		e := echo.New()
		c, _ := httptestutil.Patch(
			e, "/api/v1/agreements/2/", strings.NewReader(`{"procurement_shop_id": 4}`), asJSON, asActor("5"),
		)
		c.SetParamNames("id")
		c.SetParamValues("2")

		err := handlers.PatchAgreementHandler(mock, nil, "id")(c)
		expectHTTPError(t, err, http.StatusConflict)
	})
}

func TestSubmitStatusChangeHandler(t *testing.T) {
	t.Run("it opens change requests for the budget line items", func(t *testing.T) {
		mock := mockagreement.NewAgreementInterface()
		mock.Impl.SubmitStatusChange = func(
			ctx context.Context, actor int, agreementId int, bliIds []int,
			target domain.BudgetLineItemStatus, notes string,
		) ([]domain.ChangeRequest, error) {
			crs := []domain.ChangeRequest{}
			for _, id := range bliIds {
				crs = append(crs, domain.ChangeRequest{
					Id: 100 + id, Type: domain.BudgetLineItemChangeRequest, Status: domain.ChangeInReview,
					AgreementId: agreementId, BudgetLineItemId: pointer.Ref(id), HasStatusChange: true,
				})
			}
			return crs, nil
		}

		e := echo.New()
		c, respRec := httptestutil.Post(
			e, "/api/v1/agreements/2/status-changes/",
			strings.NewReader(`{"budget_line_item_ids": [1, 2], "status": "PLANNED", "requestor_notes": "ready"}`),
			asJSON, asActor("5"),
		)
		c.SetParamNames("id")
		c.SetParamValues("2")

		if err := handlers.SubmitStatusChangeHandler(mock, nil, "id")(c); err != nil {
			t.Fatal(err)
		}
		if respRec.Code != http.StatusAccepted {
			t.Errorf("status code: %d", respRec.Code)
		}

		expected := []mockagreement.SubmitStatusChangeArgs{{
			Actor: 5, AgreementId: 2, BliIds: []int{1, 2}, Target: domain.Planned, Notes: "ready",
		}}
		if diff := cmp.Diff(expected, []mockagreement.SubmitStatusChangeArgs(mock.Calls.SubmitStatusChange)); diff != "" {
			t.Errorf("calls (-expected, +actual):\n%s", diff)
		}

		actual := []apicr.ChangeRequest{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
			t.Fatal(err)
		}
		if len(actual) != 2 || actual[0].Id != 101 || actual[1].Id != 102 {
			t.Errorf("unexpected response: %+v", actual)
		}
	})

	for name, testcase := range map[string]struct {
		body string
		err  error
		code int
	}{
		"unknown status is a bad request": {
			body: `{"budget_line_item_ids": [1], "status": "DONE"}`,
			code: http.StatusBadRequest,
		},
		"a status change which is not allowed is a conflict": {
			body: `{"budget_line_item_ids": [1], "status": "OBLIGATED"}`,
			err: domerr.InvalidStateChange(
				"budget line item 1", domain.Draft, domain.Obligated,
			),
			code: http.StatusConflict,
		},
		"missing budget line item is not found": {
			body: `{"budget_line_item_ids": [1], "status": "PLANNED"}`,
			err:  fmt.Errorf("%w: budget line item 1", domerr.ErrMissing),
			code: http.StatusNotFound,
		},
	} {
		t.Run(name, func(t *testing.T) {
			mock := mockagreement.NewAgreementInterface()
			mock.Impl.SubmitStatusChange = func(
				ctx context.Context, actor int, agreementId int, bliIds []int,
				target domain.BudgetLineItemStatus, notes string,
			) ([]domain.ChangeRequest, error) {
				return nil, testcase.err
			}

			e := echo.New()
			c, _ := httptestutil.Post(
				e, "/api/v1/agreements/2/status-changes/",
				strings.NewReader(testcase.body), asJSON, asActor("5"),
			)
			c.SetParamNames("id")
			c.SetParamValues("2")

			err := handlers.SubmitStatusChangeHandler(mock, nil, "id")(c)
			expectHTTPError(t, err, testcase.code)
		})
	}
}
