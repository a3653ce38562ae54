package db

import (
	kagreement "github.com/opre/ops/pkg/domain/agreement/db"
	kbli "github.com/opre/ops/pkg/domain/budgetlineitem/db"
	kcan "github.com/opre/ops/pkg/domain/can/db"
	kcr "github.com/opre/ops/pkg/domain/changerequest/db"
	khistory "github.com/opre/ops/pkg/domain/history/db"
	knotification "github.com/opre/ops/pkg/domain/notification/db"
	kschema "github.com/opre/ops/pkg/domain/schema/db"
	ktracker "github.com/opre/ops/pkg/domain/tracker/db"
	kworkflow "github.com/opre/ops/pkg/domain/workflow/db"
)

type OpsDatabase interface {
	CAN() kcan.Interface
	Agreement() kagreement.Interface
	BudgetLineItem() kbli.Interface
	ChangeRequest() kcr.Interface
	Workflow() kworkflow.Interface
	Tracker() ktracker.Interface
	Notification() knotification.Interface
	History() khistory.Interface
	Schema() kschema.Interface
	Close() error
}
