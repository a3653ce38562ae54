package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

type OpsEventType string

const (
	CreateBLI                OpsEventType = "CREATE_BLI"
	UpdateBLI                OpsEventType = "UPDATE_BLI"
	DeleteBLI                OpsEventType = "DELETE_BLI"
	UpdateAgreement          OpsEventType = "UPDATE_AGREEMENT"
	CreateChangeRequest      OpsEventType = "CREATE_CHANGE_REQUEST"
	UpdateChangeRequest      OpsEventType = "UPDATE_CHANGE_REQUEST"
	CreateNewCAN             OpsEventType = "CREATE_NEW_CAN"
	UpdateCAN                OpsEventType = "UPDATE_CAN"
	CreateCANFundingBudget   OpsEventType = "CREATE_CAN_FUNDING_BUDGET"
	UpdateCANFundingBudget   OpsEventType = "UPDATE_CAN_FUNDING_BUDGET"
	CreateCANFundingReceived OpsEventType = "CREATE_CAN_FUNDING_RECEIVED"
	UpdateProcurementTracker OpsEventType = "UPDATE_PROCUREMENT_TRACKER"
	AcknowledgeNotification  OpsEventType = "ACKNOWLEDGE_NOTIFICATION"
)

func (t OpsEventType) String() string {
	return string(t)
}

func AsOpsEventType(s string) (OpsEventType, error) {
	switch t := OpsEventType(s); t {
	case CreateBLI, UpdateBLI, DeleteBLI, UpdateAgreement,
		CreateChangeRequest, UpdateChangeRequest,
		CreateNewCAN, UpdateCAN, CreateCANFundingBudget, UpdateCANFundingBudget, CreateCANFundingReceived,
		UpdateProcurementTracker, AcknowledgeNotification:
		return t, nil
	}
	return "", fmt.Errorf("'%s' is not OpsEventType", s)
}

type OpsEventStatus string

const (
	EventSuccess OpsEventStatus = "SUCCESS"
	EventFailed  OpsEventStatus = "FAILED"
	EventUnknown OpsEventStatus = "UNKNOWN"
)

func AsOpsEventStatus(s string) (OpsEventStatus, error) {
	switch st := OpsEventStatus(s); st {
	case EventSuccess, EventFailed, EventUnknown:
		return st, nil
	}
	return "", fmt.Errorf("'%s' is not OpsEventStatus", s)
}

// OpsEvent is a record of an operation done by a user.
type OpsEvent struct {
	Id          int
	EventType   OpsEventType
	EventStatus OpsEventStatus
	Details     EventDetails
	CreatedBy   int
	CreatedOn   time.Time
}

// EventDetails summarizes an operation. Sections irrelevant to the event are nil.
type EventDetails struct {
	RequestId string `json:"request_id,omitempty"`

	// Error is the message of the error failing the operation.
	Error string `json:"error,omitempty"`

	CAN            *CANEventDetails     `json:"can,omitempty"`
	Funding        *FundingEventDetails `json:"funding,omitempty"`
	BudgetLineItem *RowEventDetails     `json:"budget_line_item,omitempty"`
	Agreement      *RowEventDetails     `json:"agreement,omitempty"`
	Tracker        *RowEventDetails     `json:"procurement_tracker,omitempty"`

	ChangeRequestIds []int `json:"change_request_ids,omitempty"`
	NotificationId   *int  `json:"notification_id,omitempty"`
}

// RowEventDetails carries the id and the changes of a row.
type RowEventDetails struct {
	Id      int     `json:"id"`
	Changes Changes `json:"changes,omitempty"`
}

type CANEventDetails struct {
	CanId   int     `json:"can_id"`
	Changes Changes `json:"changes,omitempty"`

	// names of portfolios, when the CAN moves between them.
	OldPortfolio string `json:"old_portfolio,omitempty"`
	NewPortfolio string `json:"new_portfolio,omitempty"`
}

// FundingEventDetails is for funding budgets and funding received.
type FundingEventDetails struct {
	Id         int     `json:"id"`
	CanId      int     `json:"can_id"`
	FiscalYear int     `json:"fiscal_year"`
	Amount     Amount  `json:"amount"`
	Changes    Changes `json:"changes,omitempty"`
}

func (d EventDetails) Marshal() ([]byte, error) {
	return json.Marshal(d)
}

func UnmarshalEventDetails(b []byte) (EventDetails, error) {
	d := EventDetails{}
	if len(b) == 0 {
		return d, nil
	}
	if err := json.Unmarshal(b, &d); err != nil {
		return EventDetails{}, err
	}
	return d, nil
}

type DBHistoryType string

const (
	HistoryNew     DBHistoryType = "NEW"
	HistoryUpdated DBHistoryType = "UPDATED"
	HistoryDeleted DBHistoryType = "DELETED"
	HistoryError   DBHistoryType = "ERROR"
)

func AsDBHistoryType(s string) (DBHistoryType, error) {
	switch t := DBHistoryType(s); t {
	case HistoryNew, HistoryUpdated, HistoryDeleted, HistoryError:
		return t, nil
	}
	return "", fmt.Errorf("'%s' is not DBHistoryType", s)
}

// OpsDBHistory is a change of a row.
type OpsDBHistory struct {
	Id         int
	EventType  DBHistoryType
	ClassName  string
	RowKey     string
	Changes    Changes
	CreatedBy  int
	CreatedOn  time.Time
	OpsEventId *int
}

// Snapshotter is an entity which can be recorded in OpsDBHistory.
type Snapshotter interface {
	Snapshot() Record
}

// NewRowHistory records a created row.
func NewRowHistory(className string, rowKey int, row Snapshotter) OpsDBHistory {
	return OpsDBHistory{
		EventType: HistoryNew,
		ClassName: className,
		RowKey:    fmt.Sprint(rowKey),
		Changes:   Created(row.Snapshot()),
	}
}

// UpdatedRowHistory records an updated row. It returns false when nothing has changed.
func UpdatedRowHistory(className string, rowKey int, old, new Snapshotter) (OpsDBHistory, bool) {
	ch := Diff(old.Snapshot(), new.Snapshot())
	if len(ch) == 0 {
		return OpsDBHistory{}, false
	}
	return OpsDBHistory{
		EventType: HistoryUpdated,
		ClassName: className,
		RowKey:    fmt.Sprint(rowKey),
		Changes:   ch,
	}, true
}

// DeletedRowHistory records a deleted row.
func DeletedRowHistory(className string, rowKey int, row Snapshotter) OpsDBHistory {
	return OpsDBHistory{
		EventType: HistoryDeleted,
		ClassName: className,
		RowKey:    fmt.Sprint(rowKey),
		Changes:   Deleted(row.Snapshot()),
	}
}

// class names of rows in OpsDBHistory.
const (
	ClassCAN                = "CAN"
	ClassCANFundingBudget   = "CANFundingBudget"
	ClassCANFundingReceived = "CANFundingReceived"
	ClassAgreement          = "Agreement"
	ClassBudgetLineItem     = "BudgetLineItem"
	ClassChangeRequest      = "ChangeRequest"
	ClassProcurementTracker = "ProcurementTracker"
	ClassProcurementStep    = "ProcurementTrackerStep"
	ClassProcurementAction  = "ProcurementAction"
	ClassNotification       = "Notification"
)
