package projection_test

import (
	"bytes"
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/labstack/gommon/log"
	"github.com/opre/ops/cmd/ops_loops/tasks/projection"
	"github.com/opre/ops/pkg/domain"
	mockhistory "github.com/opre/ops/pkg/domain/history/db/mock"
	"github.com/opre/ops/pkg/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func testLogger() *log.Logger {
	l := log.New("test")
	l.SetOutput(new(bytes.Buffer))
	l.SetLevel(log.DEBUG)
	return l
}

func TestTask(t *testing.T) {
	type when struct {
		consumed bool
		items    []domain.CANHistory
		err      error

		// commitErr fails ProjectNext after the callback has seen the items.
		commitErr error
	}
	type then struct {
		consumed bool
		err      error
		events   int
		items    int
	}

	ev := domain.OpsEvent{
		Id:          42,
		EventType:   domain.UpdateCAN,
		EventStatus: domain.EventSuccess,
		CreatedBy:   3,
		CreatedOn:   time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC),
	}

	for name, testcase := range map[string]struct {
		when when
		then then
	}{
		"when an event is projected, it reports the task did something": {
			when: when{
				consumed: true,
				items: []domain.CANHistory{
					{CanId: 1, OpsEventId: 42, HistoryType: domain.CANNicknameEdited, FiscalYear: 2025},
					{CanId: 1, OpsEventId: 42, HistoryType: domain.CANDescriptionEdited, FiscalYear: 2025},
				},
			},
			then: then{consumed: true, events: 1, items: 2},
		},
		"when an event derives no history, it is still consumed": {
			when: when{consumed: true, items: []domain.CANHistory{}},
			then: then{consumed: true, events: 1, items: 0},
		},
		"when there are no events, it reports nothing done": {
			when: when{consumed: false},
			then: then{consumed: false},
		},
		"when commit fails after projecting, nothing is counted": {
			when: when{
				consumed: true,
				items: []domain.CANHistory{
					{CanId: 1, OpsEventId: 42, HistoryType: domain.CANNicknameEdited, FiscalYear: 2025},
				},
				commitErr: errors.New("commit failed"),
			},
			then: then{consumed: false, err: errors.New("commit failed")},
		},
		"when projection fails, it passes the error": {
			when: when{err: errors.New("fake error")},
			then: then{consumed: false, err: errors.New("fake error")},
		},
	} {
		t.Run(name, func(t *testing.T) {
			dbhistory := mockhistory.NewHistoryInterface()
			dbhistory.Impl.ProjectNext = func(
				ctx context.Context, f func(domain.OpsEvent, []domain.CANHistory) error,
			) (bool, error) {
				if testcase.when.err != nil {
					return false, testcase.when.err
				}
				if !testcase.when.consumed {
					return false, nil
				}
				if err := f(ev, testcase.when.items); err != nil {
					return false, err
				}
				if testcase.when.commitErr != nil {
					return false, testcase.when.commitErr
				}
				return true, nil
			}
			collector := metrics.NewMetricsCollector()

			testee := projection.Task(testLogger(), dbhistory, collector)
			value, consumed, err := testee(context.Background(), projection.Seed())

			if value != projection.Seed() {
				t.Errorf("value: %v", value)
			}
			if consumed != testcase.then.consumed {
				t.Errorf("consumed: actual=%v, expected=%v", consumed, testcase.then.consumed)
			}
			if testcase.then.err == nil {
				if err != nil {
					t.Errorf("unexpected error: %+v", err)
				}
			} else if err == nil || err.Error() != testcase.then.err.Error() {
				t.Errorf("error: actual=%v, expected=%v", err, testcase.then.err)
			}
			if dbhistory.Calls.ProjectNext.Times() != 1 {
				t.Errorf("ProjectNext is called %d times", dbhistory.Calls.ProjectNext.Times())
			}

			expected := `
# HELP ops_can_history_projected_total The number of CAN history items projected from events.
# TYPE ops_can_history_projected_total counter
ops_can_history_projected_total ` + strconv.Itoa(testcase.then.items) + `
# HELP ops_events_projected_total The number of events consumed by the CAN history projection.
# TYPE ops_events_projected_total counter
ops_events_projected_total ` + strconv.Itoa(testcase.then.events) + `
`
			if err := testutil.CollectAndCompare(
				collector, strings.NewReader(expected),
				"ops_can_history_projected_total", "ops_events_projected_total",
			); err != nil {
				t.Error(err)
			}
		})
	}

	t.Run("it works without metrics", func(t *testing.T) {
		dbhistory := mockhistory.NewHistoryInterface()
		dbhistory.Impl.ProjectNext = func(
			ctx context.Context, f func(domain.OpsEvent, []domain.CANHistory) error,
		) (bool, error) {
			return true, f(ev, []domain.CANHistory{{CanId: 1, OpsEventId: 42}})
		}

		testee := projection.Task(testLogger(), dbhistory, nil)
		_, consumed, err := testee(context.Background(), projection.Seed())
		if err != nil {
			t.Fatal(err)
		}
		if !consumed {
			t.Error("not consumed")
		}
	})
}
