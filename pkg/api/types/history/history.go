package history

import (
	"time"

	"github.com/opre/ops/pkg/domain"
)

type DBHistory struct {
	Id         int            `json:"id"`
	EventType  string         `json:"event_type"`
	ClassName  string         `json:"class_name"`
	RowKey     string         `json:"row_key"`
	Changes    domain.Changes `json:"changes"`
	CreatedBy  int            `json:"created_by"`
	CreatedOn  time.Time      `json:"created_on"`
	OpsEventId *int           `json:"ops_event_id"`
}

type Event struct {
	Id          int                 `json:"id"`
	EventType   string              `json:"event_type"`
	EventStatus string              `json:"event_status"`
	Details     domain.EventDetails `json:"event_details"`
	CreatedBy   int                 `json:"created_by"`
	CreatedOn   time.Time           `json:"created_on"`
}
