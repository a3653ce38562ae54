package history

import (
	apihistory "github.com/opre/ops/pkg/api/types/history"
	"github.com/opre/ops/pkg/domain"
)

func ComposeDBHistory(h domain.OpsDBHistory) apihistory.DBHistory {
	changes := h.Changes
	if changes == nil {
		changes = domain.Changes{}
	}
	return apihistory.DBHistory{
		Id:         h.Id,
		EventType:  string(h.EventType),
		ClassName:  h.ClassName,
		RowKey:     h.RowKey,
		Changes:    changes,
		CreatedBy:  h.CreatedBy,
		CreatedOn:  h.CreatedOn,
		OpsEventId: h.OpsEventId,
	}
}

func ComposeEvent(e domain.OpsEvent) apihistory.Event {
	return apihistory.Event{
		Id:          e.Id,
		EventType:   e.EventType.String(),
		EventStatus: string(e.EventStatus),
		Details:     e.Details,
		CreatedBy:   e.CreatedBy,
		CreatedOn:   e.CreatedOn,
	}
}
