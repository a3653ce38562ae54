package matcher

import (
	"fmt"
	"time"

	"github.com/opre/ops/pkg/domain"
	"github.com/opre/ops/pkg/domain/internal/db/postgres/tables"
)

type History struct {
	EventType Matcher[domain.DBHistoryType]
	ClassName Matcher[string]
	RowKey    Matcher[string]
	CreatedBy Matcher[int]
	CreatedOn Matcher[time.Time]
}

func (h History) Match(actual domain.OpsDBHistory) bool {
	return h.EventType.Match(actual.EventType) &&
		h.ClassName.Match(actual.ClassName) &&
		h.RowKey.Match(actual.RowKey) &&
		h.CreatedBy.Match(actual.CreatedBy) &&
		h.CreatedOn.Match(actual.CreatedOn)
}

func (h History) String() string {
	return fmt.Sprintf(
		"{EventType:%s ClassName:%s RowKey:%s CreatedBy:%s CreatedOn:%s}",
		h.EventType, h.ClassName, h.RowKey, h.CreatedBy, h.CreatedOn,
	)
}

func (h History) Format(s fmt.State, _ rune) {
	fmt.Fprint(s, h.String())
}

type Event struct {
	EventType Matcher[domain.OpsEventType]
	Status    Matcher[domain.OpsEventStatus]
	CreatedBy Matcher[int]
	CreatedOn Matcher[time.Time]
}

func (e Event) Match(actual tables.Event) bool {
	return e.EventType.Match(actual.EventType) &&
		e.Status.Match(actual.Status) &&
		e.CreatedBy.Match(actual.CreatedBy) &&
		e.CreatedOn.Match(actual.CreatedOn)
}

func (e Event) String() string {
	return fmt.Sprintf(
		"{EventType:%s Status:%s CreatedBy:%s CreatedOn:%s}",
		e.EventType, e.Status, e.CreatedBy, e.CreatedOn,
	)
}

func (e Event) Format(s fmt.State, _ rune) {
	fmt.Fprint(s, e.String())
}

// MatchAll tells whether actuals match matchers one by one, in order.
func MatchAll[M interface{ Match(T) bool }, T any](matchers []M, actuals []T) bool {
	if len(matchers) != len(actuals) {
		return false
	}
	for i := range matchers {
		if !matchers[i].Match(actuals[i]) {
			return false
		}
	}
	return true
}
