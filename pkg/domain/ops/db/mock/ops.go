package mocks

import (
	kagreement "github.com/opre/ops/pkg/domain/agreement/db"
	agreementmock "github.com/opre/ops/pkg/domain/agreement/db/mock"
	kbli "github.com/opre/ops/pkg/domain/budgetlineitem/db"
	blimock "github.com/opre/ops/pkg/domain/budgetlineitem/db/mock"
	kcan "github.com/opre/ops/pkg/domain/can/db"
	canmock "github.com/opre/ops/pkg/domain/can/db/mock"
	kcr "github.com/opre/ops/pkg/domain/changerequest/db"
	crmock "github.com/opre/ops/pkg/domain/changerequest/db/mock"
	khistory "github.com/opre/ops/pkg/domain/history/db"
	historymock "github.com/opre/ops/pkg/domain/history/db/mock"
	knotification "github.com/opre/ops/pkg/domain/notification/db"
	notificationmock "github.com/opre/ops/pkg/domain/notification/db/mock"
	kdb "github.com/opre/ops/pkg/domain/ops/db"
	kschema "github.com/opre/ops/pkg/domain/schema/db"
	schemamock "github.com/opre/ops/pkg/domain/schema/db/mock"
	ktracker "github.com/opre/ops/pkg/domain/tracker/db"
	trackermock "github.com/opre/ops/pkg/domain/tracker/db/mock"
	kworkflow "github.com/opre/ops/pkg/domain/workflow/db"
	workflowmock "github.com/opre/ops/pkg/domain/workflow/db/mock"
)

// OpsDatabase is a set of mocks. Closed counts calls of Close.
type OpsDatabase struct {
	MockCAN            *canmock.CANInterface
	MockAgreement      *agreementmock.AgreementInterface
	MockBudgetLineItem *blimock.BudgetLineItemInterface
	MockChangeRequest  *crmock.ChangeRequestInterface
	MockWorkflow       *workflowmock.WorkflowInterface
	MockTracker        *trackermock.TrackerInterface
	MockNotification   *notificationmock.NotificationInterface
	MockHistory        *historymock.HistoryInterface
	MockSchema         *schemamock.SchemaInterface

	Closed int
}

var _ kdb.OpsDatabase = &OpsDatabase{}

func NewOpsDatabase() *OpsDatabase {
	return &OpsDatabase{
		MockCAN:            canmock.NewCANInterface(),
		MockAgreement:      agreementmock.NewAgreementInterface(),
		MockBudgetLineItem: blimock.NewBudgetLineItemInterface(),
		MockChangeRequest:  crmock.NewChangeRequestInterface(),
		MockWorkflow:       workflowmock.NewWorkflowInterface(),
		MockTracker:        trackermock.NewTrackerInterface(),
		MockNotification:   notificationmock.NewNotificationInterface(),
		MockHistory:        historymock.NewHistoryInterface(),
		MockSchema:         schemamock.NewSchemaInterface(),
	}
}

func (m *OpsDatabase) CAN() kcan.Interface                   { return m.MockCAN }
func (m *OpsDatabase) Agreement() kagreement.Interface       { return m.MockAgreement }
func (m *OpsDatabase) BudgetLineItem() kbli.Interface        { return m.MockBudgetLineItem }
func (m *OpsDatabase) ChangeRequest() kcr.Interface          { return m.MockChangeRequest }
func (m *OpsDatabase) Workflow() kworkflow.Interface         { return m.MockWorkflow }
func (m *OpsDatabase) Tracker() ktracker.Interface           { return m.MockTracker }
func (m *OpsDatabase) Notification() knotification.Interface { return m.MockNotification }
func (m *OpsDatabase) History() khistory.Interface           { return m.MockHistory }
func (m *OpsDatabase) Schema() kschema.Interface             { return m.MockSchema }

func (m *OpsDatabase) Close() error {
	m.Closed += 1
	return nil
}
