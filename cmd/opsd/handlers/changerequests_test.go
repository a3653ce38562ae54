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
	apicr "github.com/opre/ops/pkg/api/types/changerequests"
	"github.com/opre/ops/pkg/domain"
	kcr "github.com/opre/ops/pkg/domain/changerequest/db"
	mockcr "github.com/opre/ops/pkg/domain/changerequest/db/mock"
	domerr "github.com/opre/ops/pkg/domain/errors"
	"github.com/opre/ops/pkg/metrics"
)

func TestFindChangeRequestHandler(t *testing.T) {
	for name, testcase := range map[string]struct {
		target string
		query  []kcr.Query
		code   int
	}{
		"it lists change requests to be reviewed by the user": {
			target: "/api/v1/change-requests/?reviewer_id=4",
			query:  []kcr.Query{{ReviewerId: 4}},
			code:   http.StatusOK,
		},
		"it lists change requests of an agreement in a status": {
			target: "/api/v1/change-requests/?agreement_id=2&status=APPROVED",
			query:  []kcr.Query{{AgreementId: 2, Status: domain.ChangeApproved}},
			code:   http.StatusOK,
		},
		"it lists change requests of a budget line item": {
			target: "/api/v1/change-requests/?budget_line_item_id=7",
			query:  []kcr.Query{{BudgetLineItemId: 7}},
			code:   http.StatusOK,
		},
		"unknown status is a bad request": {
			target: "/api/v1/change-requests/?status=DONE",
			code:   http.StatusBadRequest,
		},
		"malformed id is a bad request": {
			target: "/api/v1/change-requests/?agreement_id=two",
			code:   http.StatusBadRequest,
		},
	} {
		t.Run(name, func(t *testing.T) {
			mock := mockcr.NewChangeRequestInterface()
			mock.Impl.Find = func(ctx context.Context, q kcr.Query) ([]domain.ChangeRequest, error) {
				return []domain.ChangeRequest{}, nil
			}

			e := echo.New()
			c, respRec := httptestutil.Get(e, testcase.target)

			err := handlers.FindChangeRequestHandler(mock)(c)

			if diff := cmp.Diff(testcase.query, []kcr.Query(mock.Calls.Find)); diff != "" {
				t.Errorf("calls (-expected, +actual):\n%s", diff)
			}
			if testcase.code != http.StatusOK {
				expectHTTPError(t, err, testcase.code)
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if body := strings.TrimSpace(respRec.Body.String()); body != "[]" {
				t.Errorf("unexpected body: %s", body)
			}
		})
	}
}

func TestReviewChangeRequestHandler(t *testing.T) {
	t.Run("it approves the change request", func(t *testing.T) {
		mock := mockcr.NewChangeRequestInterface()
		mock.Impl.Review = func(ctx context.Context, reviewer int, id int, decision domain.ReviewDecision, notes string) (domain.Review, error) {
			return domain.Review{
				ChangeRequest: domain.ChangeRequest{Id: id, Status: domain.ChangeApproved, ReviewerNotes: notes},
				Workflow:      domain.WorkflowInstance{Id: 3, Status: domain.WorkflowApproved},
			}, nil
		}
		collector := metrics.NewMetricsCollector()

		e := echo.New()
		c, respRec := httptestutil.Post(
			e, "/api/v1/change-requests/9/review/",
			strings.NewReader(`{"action": "APPROVE", "reviewer_notes": "ok"}`),
			asJSON, asActor("4"),
		)
		c.SetParamNames("id")
		c.SetParamValues("9")

		if err := handlers.ReviewChangeRequestHandler(mock, collector, "id")(c); err != nil {
			t.Fatal(err)
		}

		expected := []mockcr.ReviewArgs{{Reviewer: 4, Id: 9, Decision: domain.Approve, Notes: "ok"}}
		if diff := cmp.Diff(expected, []mockcr.ReviewArgs(mock.Calls.Review)); diff != "" {
			t.Errorf("calls (-expected, +actual):\n%s", diff)
		}

		actual := apicr.Review{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
			t.Fatal(err)
		}
		if actual.ChangeRequest.Status != "APPROVED" || actual.Workflow.Status != "APPROVED" {
			t.Errorf("unexpected response: %+v", actual)
		}
	})

	for name, testcase := range map[string]struct {
		body string
		err  error
		code int
	}{
		"unknown action is a bad request": {
			body: `{"action": "MAYBE"}`,
			code: http.StatusBadRequest,
		},
		"a user who is not an approver is forbidden": {
			body: `{"action": "REJECT"}`,
			err:  fmt.Errorf("%w: user 4 is not an approver", domerr.ErrForbidden),
			code: http.StatusForbidden,
		},
		"a change request already decided is a conflict": {
			body: `{"action": "APPROVE"}`,
			err:  domerr.InvalidStateChange("change request 9", domain.ChangeApproved, domain.ChangeApproved),
			code: http.StatusConflict,
		},
	} {
		t.Run(name, func(t *testing.T) {
			mock := mockcr.NewChangeRequestInterface()
			mock.Impl.Review = func(ctx context.Context, reviewer int, id int, decision domain.ReviewDecision, notes string) (domain.Review, error) {
				return domain.Review{}, testcase.err
			}

			e := echo.New()
			c, _ := httptestutil.Post(
				e, "/api/v1/change-requests/9/review/",
				strings.NewReader(testcase.body), asJSON, asActor("4"),
			)
			c.SetParamNames("id")
			c.SetParamValues("9")

			err := handlers.ReviewChangeRequestHandler(mock, nil, "id")(c)
			expectHTTPError(t, err, testcase.code)
		})
	}
}

func TestBulkReviewHandler(t *testing.T) {
	t.Run("it reports each result", func(t *testing.T) {
		mock := mockcr.NewChangeRequestInterface()
		mock.Impl.ReviewAll = func(ctx context.Context, reviewer int, ids []int, decision domain.ReviewDecision, notes string) []domain.ReviewResult {
			return []domain.ReviewResult{
				{
					Id: ids[0],
					Review: &domain.Review{
						ChangeRequest: domain.ChangeRequest{Id: ids[0], Status: domain.ChangeRejected},
						Workflow:      domain.WorkflowInstance{Id: 1, Status: domain.WorkflowRejected},
					},
				},
				{Id: ids[1], Err: fmt.Errorf("%w: change request %d", domerr.ErrMissing, ids[1])},
			}
		}

		e := echo.New()
		c, respRec := httptestutil.Post(
			e, "/api/v1/change-requests/review/",
			strings.NewReader(`{"change_request_ids": [1, 2], "action": "REJECT", "reviewer_notes": "no"}`),
			asJSON, asActor("4"),
		)

		if err := handlers.BulkReviewHandler(mock, nil)(c); err != nil {
			t.Fatal(err)
		}
		if respRec.Code != http.StatusOK {
			t.Errorf("status code: %d", respRec.Code)
		}

		expected := []mockcr.ReviewAllArgs{{Reviewer: 4, Ids: []int{1, 2}, Decision: domain.Reject, Notes: "no"}}
		if diff := cmp.Diff(expected, []mockcr.ReviewAllArgs(mock.Calls.ReviewAll)); diff != "" {
			t.Errorf("calls (-expected, +actual):\n%s", diff)
		}

		actual := []apicr.ReviewResult{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
			t.Fatal(err)
		}
		if len(actual) != 2 {
			t.Fatalf("unexpected response: %+v", actual)
		}
		if actual[0].Review == nil || actual[0].Review.ChangeRequest.Status != "REJECTED" || actual[0].Error != nil {
			t.Errorf("unexpected 1st result: %+v", actual[0])
		}
		if actual[1].Review != nil || actual[1].Error == nil || actual[1].Error.Reason != "not found" {
			t.Errorf("unexpected 2nd result: %+v", actual[1])
		}
	})

	t.Run("empty ids are a bad request", func(t *testing.T) {
		mock := mockcr.NewChangeRequestInterface()

		e := echo.New()
		c, _ := httptestutil.Post(
			e, "/api/v1/change-requests/review/",
			strings.NewReader(`{"change_request_ids": [], "action": "REJECT"}`),
			asJSON, asActor("4"),
		)

		err := handlers.BulkReviewHandler(mock, nil)(c)
		expectHTTPError(t, err, http.StatusBadRequest)
	})
}
