package ops_test

import (
	"testing"

	"github.com/opre/ops/pkg/domain/ops"
	dbmock "github.com/opre/ops/pkg/domain/ops/db/mock"
)

func TestWrap(t *testing.T) {
	database := dbmock.NewOpsDatabase()
	testee := ops.Wrap(database)

	if testee.CAN().Database() != database.MockCAN {
		t.Error("CAN is not wired")
	}
	if testee.Agreement().Database() != database.MockAgreement {
		t.Error("Agreement is not wired")
	}
	if testee.BudgetLineItem().Database() != database.MockBudgetLineItem {
		t.Error("BudgetLineItem is not wired")
	}
	if testee.ChangeRequest().Database() != database.MockChangeRequest {
		t.Error("ChangeRequest is not wired")
	}
	if testee.Workflow().Database() != database.MockWorkflow {
		t.Error("Workflow is not wired")
	}
	if testee.Tracker().Database() != database.MockTracker {
		t.Error("Tracker is not wired")
	}
	if testee.Notification().Database() != database.MockNotification {
		t.Error("Notification is not wired")
	}
	if testee.History().Database() != database.MockHistory {
		t.Error("History is not wired")
	}
	if testee.Schema().Database() != database.MockSchema {
		t.Error("Schema is not wired")
	}

	if err := testee.Close(); err != nil {
		t.Fatal(err)
	}
	if database.Closed != 1 {
		t.Errorf("Close: called %d times", database.Closed)
	}
}
