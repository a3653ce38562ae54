package domain_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/opre/ops/pkg/domain"
)

func TestProjectCANHistory(t *testing.T) {
	// 2024-10-15 is in FY 2025
	at := time.Date(2024, time.October, 15, 12, 0, 0, 0, time.UTC)
	actor := domain.User{Id: 7, FullName: "Amy Madigan", Email: "amy@example.com"}

	type then []domain.CANHistory

	theory := func(when domain.OpsEvent, then then) func(*testing.T) {
		return func(t *testing.T) {
			actual := domain.ProjectCANHistory(when, actor)
			if diff := cmp.Diff([]domain.CANHistory(then), actual); diff != "" {
				t.Errorf("unexpected history (-expected +actual):\n%s", diff)
			}
		}
	}

	t.Run("new CAN is a data import", theory(
		domain.OpsEvent{
			Id: 1, EventType: domain.CreateNewCAN, EventStatus: domain.EventSuccess, CreatedOn: at,
			Details: domain.EventDetails{CAN: &domain.CANEventDetails{CanId: 500}},
		},
		then{{
			CanId: 500, OpsEventId: 1, Timestamp: at, FiscalYear: 2025,
			HistoryType:    domain.CANDataImport,
			HistoryTitle:   "FY 2025 Data Import",
			HistoryMessage: "FY 2025 CAN Funding Information imported by Amy Madigan",
		}},
	))

	t.Run("CAN edit yields an item per changed attribute", theory(
		domain.OpsEvent{
			Id: 2, EventType: domain.UpdateCAN, EventStatus: domain.EventSuccess, CreatedOn: at,
			Details: domain.EventDetails{CAN: &domain.CANEventDetails{
				CanId: 500,
				Changes: domain.Changes{
					"nickname":     {Old: "Old", New: "New"},
					"description":  {Old: "a", New: "b"},
					"portfolio_id": {Old: 1, New: 2},
				},
				OldPortfolio: "Child Care",
				NewPortfolio: "Head Start",
			}},
		},
		then{
			{
				CanId: 500, OpsEventId: 2, Timestamp: at, FiscalYear: 2025,
				HistoryType:    domain.CANDescriptionEdited,
				HistoryTitle:   "Description Edited",
				HistoryMessage: "Amy Madigan edited the description",
			},
			{
				CanId: 500, OpsEventId: 2, Timestamp: at, FiscalYear: 2025,
				HistoryType:    domain.CANNicknameEdited,
				HistoryTitle:   "Nickname Edited",
				HistoryMessage: "Amy Madigan edited the nickname from Old to New",
			},
			{
				CanId: 500, OpsEventId: 2, Timestamp: at, FiscalYear: 2025,
				HistoryType:    domain.CANPortfolioEdited,
				HistoryTitle:   "CAN Portfolio Edited",
				HistoryMessage: "Amy Madigan changed the portfolio from Child Care to Head Start",
			},
		},
	))

	t.Run("funding budget uses its own fiscal year", theory(
		domain.OpsEvent{
			Id: 3, EventType: domain.CreateCANFundingBudget, EventStatus: domain.EventSuccess, CreatedOn: at,
			Details: domain.EventDetails{Funding: &domain.FundingEventDetails{
				Id: 9, CanId: 500, FiscalYear: 2026, Amount: domain.Dollars(1234567, 0),
			}},
		},
		then{{
			CanId: 500, OpsEventId: 3, Timestamp: at, FiscalYear: 2026,
			HistoryType:    domain.CANFundingCreated,
			HistoryTitle:   "FY 2026 Budget Entered",
			HistoryMessage: "Amy Madigan entered a FY 2026 budget of $1,234,567.00",
		}},
	))

	t.Run("funding budget edit names the old and new budgets", func(t *testing.T) {
		// changes are read back from JSON, so take them through Diff.
		old := domain.CANFundingBudget{Id: 9, CanId: 500, FiscalYear: 2025, Budget: domain.Dollars(100, 0)}
		new := old
		new.Budget = domain.Dollars(250, 50)

		theory(
			domain.OpsEvent{
				Id: 4, EventType: domain.UpdateCANFundingBudget, EventStatus: domain.EventSuccess, CreatedOn: at,
				Details: domain.EventDetails{Funding: &domain.FundingEventDetails{
					Id: 9, CanId: 500, FiscalYear: 2025, Amount: new.Budget,
					Changes: domain.Diff(old.Snapshot(), new.Snapshot()),
				}},
			},
			then{{
				CanId: 500, OpsEventId: 4, Timestamp: at, FiscalYear: 2025,
				HistoryType:    domain.CANFundingEdited,
				HistoryTitle:   "FY 2025 Budget Edited",
				HistoryMessage: "Amy Madigan edited the FY 2025 budget from $100.00 to $250.50",
			}},
		)(t)
	})

	t.Run("funding received", theory(
		domain.OpsEvent{
			Id: 5, EventType: domain.CreateCANFundingReceived, EventStatus: domain.EventSuccess, CreatedOn: at,
			Details: domain.EventDetails{Funding: &domain.FundingEventDetails{
				Id: 12, CanId: 500, FiscalYear: 2025, Amount: domain.Dollars(800, 0),
			}},
		},
		then{{
			CanId: 500, OpsEventId: 5, Timestamp: at, FiscalYear: 2025,
			HistoryType:    domain.CANReceivedCreated,
			HistoryTitle:   "Funding Received Added",
			HistoryMessage: "Amy Madigan added funding received to funding ID 12 in the amount of $800.00",
		}},
	))

	t.Run("failed events derive nothing", theory(
		domain.OpsEvent{
			Id: 6, EventType: domain.CreateNewCAN, EventStatus: domain.EventFailed, CreatedOn: at,
			Details: domain.EventDetails{CAN: &domain.CANEventDetails{CanId: 500}},
		},
		nil,
	))

	t.Run("events on other entities derive nothing", theory(
		domain.OpsEvent{
			Id: 7, EventType: domain.UpdateBLI, EventStatus: domain.EventSuccess, CreatedOn: at,
		},
		nil,
	))
}

func TestRowHistory(t *testing.T) {
	old := domain.CAN{Id: 1, Number: "G99", Nickname: "a"}

	if _, ok := domain.UpdatedRowHistory(domain.ClassCAN, 1, old, old); ok {
		t.Errorf("history of no change is recorded")
	}

	new := old
	new.Nickname = "b"
	h, ok := domain.UpdatedRowHistory(domain.ClassCAN, 1, old, new)
	if !ok {
		t.Fatal("history is not recorded")
	}
	if h.EventType != domain.HistoryUpdated || h.RowKey != "1" || h.ClassName != "CAN" {
		t.Errorf("unexpected history: %+v", h)
	}
	if diff := cmp.Diff(domain.Changes{"nickname": {Old: "a", New: "b"}}, h.Changes); diff != "" {
		t.Errorf("unexpected changes:\n%s", diff)
	}

	created := domain.NewRowHistory(domain.ClassCAN, 1, old)
	if ch := created.Changes["number"]; !ch.OldAbsent || ch.NewAbsent || ch.New != "G99" {
		t.Errorf("unexpected changes: %+v", created.Changes)
	}
	deleted := domain.DeletedRowHistory(domain.ClassCAN, 1, old)
	if ch := deleted.Changes["number"]; ch.OldAbsent || !ch.NewAbsent || ch.Old != "G99" {
		t.Errorf("unexpected changes: %+v", deleted.Changes)
	}
}

func TestFieldChange_JSON(t *testing.T) {
	for name, testcase := range map[string]struct {
		when domain.FieldChange
		then string
	}{
		"update writes both sides": {
			when: domain.FieldChange{Old: "a", New: "b"},
			then: `{"new":"b","old":"a"}`,
		},
		"update to null keeps the null side": {
			when: domain.FieldChange{Old: "a", New: nil},
			then: `{"new":null,"old":"a"}`,
		},
		"created row has no old side": {
			when: domain.FieldChange{New: "b", OldAbsent: true},
			then: `{"new":"b"}`,
		},
		"deleted row has no new side": {
			when: domain.FieldChange{Old: "a", NewAbsent: true},
			then: `{"old":"a"}`,
		},
	} {
		t.Run(name, func(t *testing.T) {
			b, err := json.Marshal(testcase.when)
			if err != nil {
				t.Fatal(err)
			}
			if string(b) != testcase.then {
				t.Errorf("encoded: %s, want %s", b, testcase.then)
			}

			var decoded domain.FieldChange
			if err := json.Unmarshal(b, &decoded); err != nil {
				t.Fatal(err)
			}
			if diff := cmp.Diff(testcase.when, decoded); diff != "" {
				t.Errorf("decoded (-expected +actual):\n%s", diff)
			}
		})
	}
}

func TestUser_DisplayName(t *testing.T) {
	for name, testcase := range map[string]struct {
		when domain.User
		then string
	}{
		"full name is preferred": {
			when: domain.User{Id: 7, FullName: "Amy Madigan", Email: "amy@example.com"},
			then: "Amy Madigan",
		},
		"email stands in for a missing name": {
			when: domain.User{Id: 7, Email: "amy@example.com"},
			then: "amy@example.com",
		},
		"unknown users are named by id": {
			when: domain.User{Id: 7},
			then: "user #7",
		},
	} {
		t.Run(name, func(t *testing.T) {
			if actual := testcase.when.DisplayName(); actual != testcase.then {
				t.Errorf("DisplayName() = %q, want %q", actual, testcase.then)
			}
		})
	}
}
