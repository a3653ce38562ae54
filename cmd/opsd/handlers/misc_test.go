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
	apihistory "github.com/opre/ops/pkg/api/types/history"
	apinotifications "github.com/opre/ops/pkg/api/types/notifications"
	apiwf "github.com/opre/ops/pkg/api/types/workflows"
	"github.com/opre/ops/pkg/domain"
	domerr "github.com/opre/ops/pkg/domain/errors"
	khistory "github.com/opre/ops/pkg/domain/history/db"
	mockhistory "github.com/opre/ops/pkg/domain/history/db/mock"
	mocknotification "github.com/opre/ops/pkg/domain/notification/db/mock"
	mockwf "github.com/opre/ops/pkg/domain/workflow/db/mock"
)

func TestResubmitWorkflowHandler(t *testing.T) {
	for name, testcase := range map[string]struct {
		body  string
		notes string
	}{
		"with notes":   {body: `{"notes": "fixed"}`, notes: "fixed"},
		"without body": {body: "", notes: ""},
	} {
		t.Run(name, func(t *testing.T) {
			mock := mockwf.NewWorkflowInterface()
			mock.Impl.Resubmit = func(ctx context.Context, actor int, id int, notes string) (domain.WorkflowInstance, error) {
				return domain.WorkflowInstance{Id: id, Status: domain.WorkflowReview}, nil
			}

			e := echo.New()
			c, respRec := httptestutil.Post(
				e, "/api/v1/workflow-instances/3/resubmit/",
				strings.NewReader(testcase.body), asJSON, asActor("8"),
			)
			c.SetParamNames("id")
			c.SetParamValues("3")

			if err := handlers.ResubmitWorkflowHandler(mock, "id")(c); err != nil {
				t.Fatal(err)
			}

			expected := []mockwf.ResubmitArgs{{Actor: 8, Id: 3, Notes: testcase.notes}}
			if diff := cmp.Diff(expected, []mockwf.ResubmitArgs(mock.Calls.Resubmit)); diff != "" {
				t.Errorf("calls (-expected, +actual):\n%s", diff)
			}

			actual := apiwf.Instance{}
			if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
				t.Fatal(err)
			}
			if actual.Status != "REVIEW" {
				t.Errorf("unexpected status: %s", actual.Status)
			}
		})
	}
}

func TestFindDBHistoryHandler(t *testing.T) {
	t.Run("it passes class name, row key and page", func(t *testing.T) {
		mock := mockhistory.NewHistoryInterface()
		mock.Impl.DBHistory = func(ctx context.Context, className string, rowKey string, page khistory.Page) ([]domain.OpsDBHistory, error) {
			return []domain.OpsDBHistory{
				{
					Id: 1, EventType: domain.HistoryUpdated, ClassName: className, RowKey: rowKey,
					Changes: domain.Changes{"nickname": {Old: "a", New: "b"}},
				},
			}, nil
		}

		e := echo.New()
		c, respRec := httptestutil.Get(e, "/api/v1/history/?class_name=CAN&row_key=3&offset=20")

		if err := handlers.FindDBHistoryHandler(mock)(c); err != nil {
			t.Fatal(err)
		}

		expected := []mockhistory.DBHistoryArgs{{
			ClassName: "CAN", RowKey: "3", Page: khistory.Page{Limit: khistory.DefaultLimit, Offset: 20},
		}}
		if diff := cmp.Diff(expected, []mockhistory.DBHistoryArgs(mock.Calls.DBHistory)); diff != "" {
			t.Errorf("calls (-expected, +actual):\n%s", diff)
		}

		actual := []apihistory.DBHistory{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
			t.Fatal(err)
		}
		if len(actual) != 1 || actual[0].EventType != "UPDATED" {
			t.Errorf("unexpected response: %+v", actual)
		}
	})

	t.Run("without row key, it returns 400", func(t *testing.T) {
		mock := mockhistory.NewHistoryInterface()

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/v1/history/?class_name=CAN")

		err := handlers.FindDBHistoryHandler(mock)(c)
		expectHTTPError(t, err, http.StatusBadRequest)
	})
}

func TestFindEventsHandler(t *testing.T) {
	mock := mockhistory.NewHistoryInterface()
	mock.Impl.Events = func(ctx context.Context, eventType domain.OpsEventType, limit int) ([]domain.OpsEvent, error) {
		return []domain.OpsEvent{
			{Id: 5, EventType: eventType, EventStatus: domain.EventSuccess},
		}, nil
	}

	e := echo.New()
	c, respRec := httptestutil.Get(e, "/api/v1/ops-events/?event_type=UPDATE_CAN&limit=5")

	if err := handlers.FindEventsHandler(mock)(c); err != nil {
		t.Fatal(err)
	}

	expected := []mockhistory.EventsArgs{{EventType: domain.UpdateCAN, Limit: 5}}
	if diff := cmp.Diff(expected, []mockhistory.EventsArgs(mock.Calls.Events)); diff != "" {
		t.Errorf("calls (-expected, +actual):\n%s", diff)
	}

	actual := []apihistory.Event{}
	if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
		t.Fatal(err)
	}
	if len(actual) != 1 || actual[0].EventType != "UPDATE_CAN" || actual[0].EventStatus != "SUCCESS" {
		t.Errorf("unexpected response: %+v", actual)
	}
}

func TestNotificationHandlers(t *testing.T) {
	t.Run("it lists unread notifications", func(t *testing.T) {
		mock := mocknotification.NewNotificationInterface()
		mock.Impl.Find = func(ctx context.Context, recipientId int, unreadOnly bool) ([]domain.Notification, error) {
			return []domain.Notification{{Id: 1, RecipientId: recipientId, Title: "review"}}, nil
		}

		e := echo.New()
		c, respRec := httptestutil.Get(e, "/api/v1/users/4/notifications/?unread=true", asActor("4"))
		c.SetParamNames("id")
		c.SetParamValues("4")

		if err := handlers.FindNotificationHandler(mock, "id")(c); err != nil {
			t.Fatal(err)
		}

		expected := []mocknotification.FindArgs{{RecipientId: 4, UnreadOnly: true}}
		if diff := cmp.Diff(expected, []mocknotification.FindArgs(mock.Calls.Find)); diff != "" {
			t.Errorf("calls (-expected, +actual):\n%s", diff)
		}

		actual := []apinotifications.Notification{}
		if err := json.Unmarshal(respRec.Body.Bytes(), &actual); err != nil {
			t.Fatal(err)
		}
		if len(actual) != 1 || actual[0].Title != "review" {
			t.Errorf("unexpected response: %+v", actual)
		}
	})

	t.Run("listing notifications of another user is forbidden", func(t *testing.T) {
		mock := mocknotification.NewNotificationInterface()

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/v1/users/4/notifications/", asActor("9"))
		c.SetParamNames("id")
		c.SetParamValues("4")

		err := handlers.FindNotificationHandler(mock, "id")(c)
		expectHTTPError(t, err, http.StatusForbidden)
		if mock.Calls.Find.Times() != 0 {
			t.Errorf("Find is called")
		}
	})

	t.Run("listing notifications without an acting user is unauthorized", func(t *testing.T) {
		mock := mocknotification.NewNotificationInterface()

		e := echo.New()
		c, _ := httptestutil.Get(e, "/api/v1/users/4/notifications/")
		c.SetParamNames("id")
		c.SetParamValues("4")

		err := handlers.FindNotificationHandler(mock, "id")(c)
		expectHTTPError(t, err, http.StatusUnauthorized)
	})

	t.Run("acknowledging a notification of another user is forbidden", func(t *testing.T) {
		mock := mocknotification.NewNotificationInterface()
		mock.Impl.Acknowledge = func(ctx context.Context, actor int, id int) (domain.Notification, error) {
			return domain.Notification{}, fmt.Errorf("%w: notification %d is not for user %d", domerr.ErrForbidden, id, actor)
		}

		e := echo.New()
		c, _ := httptestutil.Put(e, "/api/v1/notifications/1/ack/", nil, asActor("9"))
		c.SetParamNames("id")
		c.SetParamValues("1")

		err := handlers.AcknowledgeNotificationHandler(mock, "id")(c)
		expectHTTPError(t, err, http.StatusForbidden)
	})
}
