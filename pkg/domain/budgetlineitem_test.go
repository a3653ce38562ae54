package domain_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/opre/ops/pkg/domain"
	domerr "github.com/opre/ops/pkg/domain/errors"
	"github.com/opre/ops/pkg/utils/pointer"
)

func readyAgreement() domain.Agreement {
	reason := domain.NewRequirement
	return domain.Agreement{
		Id:                10,
		Type:              domain.Contract,
		Name:              "Research on evidence",
		ProjectOfficerId:  pointer.Ref(3),
		ProcurementShopId: pointer.Ref(2),
		AgreementReason:   &reason,
	}
}

func draftItem() domain.BudgetLineItem {
	amount := domain.Dollars(1000, 0)
	needed := domain.NewDate(2044, time.March, 1)
	return domain.BudgetLineItem{
		Id:              100,
		AgreementId:     10,
		CanId:           pointer.Ref(500),
		Amount:          &amount,
		Status:          domain.Draft,
		DateNeeded:      &needed,
		LineDescription: "line 1",
	}
}

func TestStatusTransition(t *testing.T) {
	type when struct {
		from domain.BudgetLineItemStatus
		to   domain.BudgetLineItemStatus
	}
	type then struct {
		action domain.WorkflowAction
		err    error
	}

	for name, testcase := range map[string]struct {
		when when
		then then
	}{
		"DRAFT -> PLANNED needs DRAFT_TO_PLANNED": {
			when: when{from: domain.Draft, to: domain.Planned},
			then: then{action: domain.DraftToPlanned},
		},
		"PLANNED -> IN_EXECUTION needs PLANNED_TO_EXECUTING": {
			when: when{from: domain.Planned, to: domain.InExecution},
			then: then{action: domain.PlannedToExecuting},
		},
		"PLANNED -> DRAFT needs GENERIC": {
			when: when{from: domain.Planned, to: domain.Draft},
			then: then{action: domain.Generic},
		},
		"IN_EXECUTION -> OBLIGATED is not requestable": {
			when: when{from: domain.InExecution, to: domain.Obligated},
			then: then{err: domerr.ErrInvalidStateChange},
		},
		"DRAFT -> IN_EXECUTION skips a status": {
			when: when{from: domain.Draft, to: domain.InExecution},
			then: then{err: domerr.ErrInvalidStateChange},
		},
		"OBLIGATED -> PLANNED goes back": {
			when: when{from: domain.Obligated, to: domain.Planned},
			then: then{err: domerr.ErrInvalidStateChange},
		},
	} {
		t.Run(name, func(t *testing.T) {
			actual, err := domain.StatusTransition(testcase.when.from, testcase.when.to)
			if !errors.Is(err, testcase.then.err) {
				t.Fatalf("unexpected error: %v (expected: %v)", err, testcase.then.err)
			}
			if actual != testcase.then.action {
				t.Errorf("action: actual = %s, expected = %s", actual, testcase.then.action)
			}
		})
	}
}

func TestCheckReadiness(t *testing.T) {
	today := domain.NewDate(2024, time.June, 1)

	t.Run("a complete item of a complete agreement is ready", func(t *testing.T) {
		if err := domain.CheckReadiness(draftItem(), readyAgreement(), today); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("it reports every missing item at once", func(t *testing.T) {
		zero := domain.Amount(0)
		bli := draftItem()
		bli.CanId = nil
		bli.Amount = &zero
		bli.DateNeeded = &today
		bli.LineDescription = ""

		agr := readyAgreement()
		agr.ProjectOfficerId = nil
		agr.AgreementReason = nil

		err := domain.CheckReadiness(bli, agr, today)
		if !errors.Is(err, domerr.ErrValidation) {
			t.Fatalf("unexpected error: %v", err)
		}
		verr := new(domerr.ValidationError)
		if !errors.As(err, &verr) {
			t.Fatalf("not ValidationError: %v", err)
		}
		for _, field := range []string{
			"can_id", "amount", "date_needed", "line_description",
			"agreement.project_officer_id", "agreement.agreement_reason",
		} {
			if _, ok := verr.Fields[field]; !ok {
				t.Errorf("field %s is not reported: %v", field, verr.Fields)
			}
		}
		if len(verr.Fields) != 6 {
			t.Errorf("unexpected fields are reported: %v", verr.Fields)
		}
	})
}

func TestPlanBudgetLineItemUpdate(t *testing.T) {
	today := domain.NewDate(2024, time.June, 1)

	t.Run("DRAFT item takes budget changes directly", func(t *testing.T) {
		bli := draftItem()
		patch := domain.BudgetLineItemPatch{
			Amount:   domain.Set(domain.Dollars(2000, 0)),
			Comments: domain.Set("more"),
		}
		plan, err := domain.PlanBudgetLineItemUpdate(bli, readyAgreement(), patch, "", today)
		if err != nil {
			t.Fatal(err)
		}
		if plan.Accepted() {
			t.Errorf("unexpected requests: %+v", plan.Requests)
		}
		if v := plan.Direct.Amount.Value(); v == nil || *v != domain.Dollars(2000, 0) {
			t.Errorf("amount: %v", v)
		}
		if v := plan.Direct.Comments.Value(); v == nil || *v != "more" {
			t.Errorf("comments: %v", v)
		}
	})

	t.Run("PLANNED item opens a change request per budget field", func(t *testing.T) {
		bli := draftItem()
		bli.Status = domain.Planned
		patch := domain.BudgetLineItemPatch{
			Amount:          domain.Set(domain.Dollars(2000, 0)),
			CanId:           domain.Set(501),
			DateNeeded:      domain.Set(domain.NewDate(2044, time.April, 1)),
			LineDescription: domain.Set("renamed"),
		}
		plan, err := domain.PlanBudgetLineItemUpdate(bli, readyAgreement(), patch, "please", today)
		if err != nil {
			t.Fatal(err)
		}

		if plan.Direct.HasBudgetChange() {
			t.Errorf("budget change is applied directly: %+v", plan.Direct)
		}
		if v := plan.Direct.LineDescription.Value(); v == nil || *v != "renamed" {
			t.Errorf("line description: %v", v)
		}

		if len(plan.Requests) != 3 {
			t.Fatalf("requests: %d", len(plan.Requests))
		}
		changedFields := map[string]bool{}
		for _, r := range plan.Requests {
			if r.Type != domain.BudgetLineItemChangeRequest {
				t.Errorf("type: %s", r.Type)
			}
			if !r.HasBudgetChange || r.HasStatusChange {
				t.Errorf("flags: %+v", r)
			}
			if r.BudgetLineItemId == nil || *r.BudgetLineItemId != bli.Id {
				t.Errorf("budget line item id: %v", r.BudgetLineItemId)
			}
			if r.ManagingCanId == nil || *r.ManagingCanId != 500 {
				t.Errorf("managing can should be the current can: %v", r.ManagingCanId)
			}
			if r.RequestorNotes != "please" {
				t.Errorf("notes: %s", r.RequestorNotes)
			}
			if len(r.Diff) != 1 {
				t.Errorf("a request should change one field: %v", r.Diff)
			}
			for k := range r.Diff {
				changedFields[k] = true
			}
		}
		for _, f := range []string{"amount", "can_id", "date_needed"} {
			if !changedFields[f] {
				t.Errorf("%s is not requested", f)
			}
		}
	})

	t.Run("status change of a ready item opens a status change request", func(t *testing.T) {
		bli := draftItem()
		patch := domain.BudgetLineItemPatch{Status: domain.Set(domain.Planned)}
		plan, err := domain.PlanBudgetLineItemUpdate(bli, readyAgreement(), patch, "", today)
		if err != nil {
			t.Fatal(err)
		}
		if len(plan.Requests) != 1 {
			t.Fatalf("requests: %+v", plan.Requests)
		}
		r := plan.Requests[0]
		if !r.HasStatusChange || r.HasBudgetChange || r.Action != domain.DraftToPlanned {
			t.Errorf("unexpected request: %+v", r)
		}
		if plan.Direct.Status.IsSet() {
			t.Errorf("status is applied directly")
		}
	})

	t.Run("status change of an item not ready fails", func(t *testing.T) {
		bli := draftItem()
		bli.CanId = nil
		patch := domain.BudgetLineItemPatch{Status: domain.Set(domain.Planned)}
		_, err := domain.PlanBudgetLineItemUpdate(bli, readyAgreement(), patch, "", today)
		if !errors.Is(err, domerr.ErrValidation) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("direct changes in the same patch make the item ready", func(t *testing.T) {
		bli := draftItem()
		bli.CanId = nil
		patch := domain.BudgetLineItemPatch{
			CanId:  domain.Set(500),
			Status: domain.Set(domain.Planned),
		}
		plan, err := domain.PlanBudgetLineItemUpdate(bli, readyAgreement(), patch, "", today)
		if err != nil {
			t.Fatal(err)
		}
		if len(plan.Requests) != 1 || !plan.Direct.CanId.IsSet() {
			t.Fatalf("unexpected plan: %+v", plan)
		}
		r := plan.Requests[0]
		if r.ManagingCanId == nil || *r.ManagingCanId != 500 {
			t.Errorf("managing can should be the can set in the same patch: %v", r.ManagingCanId)
		}
		if diff := cmp.Diff(
			domain.Changes{"status": {Old: "DRAFT", New: "PLANNED"}}, r.Diff,
		); diff != "" {
			t.Errorf("diff (-expected +actual):\n%s", diff)
		}
	})

	for name, patch := range map[string]domain.BudgetLineItemPatch{
		"clearing can":         {CanId: domain.Null[int]()},
		"clearing amount":      {Amount: domain.Null[domain.Amount]()},
		"clearing date needed": {DateNeeded: domain.Null[domain.Date]()},
	} {
		for _, status := range []domain.BudgetLineItemStatus{domain.Planned, domain.InExecution} {
			t.Run(name+" of "+string(status)+" item fails", func(t *testing.T) {
				bli := draftItem()
				bli.Status = status
				_, err := domain.PlanBudgetLineItemUpdate(bli, readyAgreement(), patch, "", today)
				if !errors.Is(err, domerr.ErrValidation) {
					t.Errorf("unexpected error: %v", err)
				}
			})
		}
	}

	t.Run("DRAFT item may clear budget fields", func(t *testing.T) {
		bli := draftItem()
		patch := domain.BudgetLineItemPatch{CanId: domain.Null[int]()}
		plan, err := domain.PlanBudgetLineItemUpdate(bli, readyAgreement(), patch, "", today)
		if err != nil {
			t.Fatal(err)
		}
		if !plan.Direct.CanId.IsSet() || plan.Direct.CanId.Value() != nil {
			t.Errorf("unexpected plan: %+v", plan.Direct)
		}
	})

	t.Run("invalid transition fails the whole update", func(t *testing.T) {
		bli := draftItem()
		patch := domain.BudgetLineItemPatch{
			Comments: domain.Set("x"),
			Status:   domain.Set(domain.Obligated),
		}
		_, err := domain.PlanBudgetLineItemUpdate(bli, readyAgreement(), patch, "", today)
		if !errors.Is(err, domerr.ErrInvalidStateChange) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("OBLIGATED item is locked", func(t *testing.T) {
		bli := draftItem()
		bli.Status = domain.Obligated
		patch := domain.BudgetLineItemPatch{Comments: domain.Set("x")}
		_, err := domain.PlanBudgetLineItemUpdate(bli, readyAgreement(), patch, "", today)
		if !errors.Is(err, domerr.ErrInvalidStateChange) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("item in review conflicts", func(t *testing.T) {
		bli := draftItem()
		bli.InReview = true
		patch := domain.BudgetLineItemPatch{Comments: domain.Set("x")}
		_, err := domain.PlanBudgetLineItemUpdate(bli, readyAgreement(), patch, "", today)
		if !errors.Is(err, domerr.ErrConflict) {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("values equal to the current ones are ignored", func(t *testing.T) {
		bli := draftItem()
		bli.Status = domain.Planned
		patch := domain.BudgetLineItemPatch{
			Amount:          domain.SetPtr(bli.Amount),
			DateNeeded:      domain.SetPtr(bli.DateNeeded),
			LineDescription: domain.Set(bli.LineDescription),
			Status:          domain.Set(domain.Planned),
		}
		plan, err := domain.PlanBudgetLineItemUpdate(bli, readyAgreement(), patch, "", today)
		if err != nil {
			t.Fatal(err)
		}
		if plan.Accepted() || !plan.Direct.IsEmpty() {
			t.Errorf("unexpected plan: %+v", plan)
		}
	})
}

func TestPlanStatusChanges(t *testing.T) {
	today := domain.NewDate(2024, time.June, 1)

	t.Run("every item gets a request", func(t *testing.T) {
		a, b := draftItem(), draftItem()
		b.Id = 101
		drafts, err := domain.PlanStatusChanges(
			readyAgreement(), []domain.BudgetLineItem{a, b}, domain.Planned, "go", today,
		)
		if err != nil {
			t.Fatal(err)
		}
		if len(drafts) != 2 {
			t.Fatalf("drafts: %+v", drafts)
		}
		for i, d := range drafts {
			if *d.BudgetLineItemId != []int{100, 101}[i] || d.Action != domain.DraftToPlanned {
				t.Errorf("unexpected draft: %+v", d)
			}
		}
	})

	for name, mutate := range map[string]struct {
		mutate func(*domain.BudgetLineItem)
		err    error
	}{
		"an item of another agreement fails all": {
			mutate: func(b *domain.BudgetLineItem) { b.AgreementId = 11 },
			err:    domerr.ErrValidation,
		},
		"an item in review fails all": {
			mutate: func(b *domain.BudgetLineItem) { b.InReview = true },
			err:    domerr.ErrConflict,
		},
		"an item not ready fails all": {
			mutate: func(b *domain.BudgetLineItem) { b.LineDescription = "" },
			err:    domerr.ErrValidation,
		},
		"an item which can not move fails all": {
			mutate: func(b *domain.BudgetLineItem) { b.Status = domain.InExecution },
			err:    domerr.ErrInvalidStateChange,
		},
	} {
		t.Run(name, func(t *testing.T) {
			a, b := draftItem(), draftItem()
			b.Id = 101
			mutate.mutate(&b)
			drafts, err := domain.PlanStatusChanges(
				readyAgreement(), []domain.BudgetLineItem{a, b}, domain.Planned, "", today,
			)
			if !errors.Is(err, mutate.err) {
				t.Errorf("unexpected error: %v (expected %v)", err, mutate.err)
			}
			if drafts != nil {
				t.Errorf("drafts are planned: %+v", drafts)
			}
		})
	}
}

func TestBudgetLineItem_Fee(t *testing.T) {
	shop := domain.ProcurementShop{
		Id: 2,
		Fees: []domain.ProcurementShopFee{
			{Fee: 450, StartDate: domain.NewDate(2023, time.October, 1), EndDate: domain.NewDate(2024, time.September, 30)},
			{Fee: 50},
		},
	}

	for name, testcase := range map[string]struct {
		when func(*domain.BudgetLineItem)
		then domain.Amount
	}{
		"fee effective on the date": {
			when: func(b *domain.BudgetLineItem) {
				d := domain.NewDate(2024, time.March, 1)
				b.DateNeeded = &d
			},
			then: domain.Dollars(45, 0),
		},
		"open ended fee when no fee is effective": {
			when: func(b *domain.BudgetLineItem) {},
			then: domain.Dollars(5, 0),
		},
		"own fee percentage wins": {
			when: func(b *domain.BudgetLineItem) {
				r := domain.Rate(100)
				b.ProcShopFeePercentage = &r
			},
			then: domain.Dollars(10, 0),
		},
		"it rounds half up": {
			when: func(b *domain.BudgetLineItem) {
				a := domain.Amount(1)
				b.Amount = &a
				r := domain.Rate(50_00)
				b.ProcShopFeePercentage = &r
			},
			then: domain.Amount(1),
		},
		"no amount, no fee": {
			when: func(b *domain.BudgetLineItem) { b.Amount = nil },
			then: 0,
		},
	} {
		t.Run(name, func(t *testing.T) {
			bli := draftItem()
			testcase.when(&bli)
			if actual := bli.Fee(domain.SingleShop(shop)); actual != testcase.then {
				t.Errorf("fee: actual = %s, expected = %s", actual, testcase.then)
			}
		})
	}
}

func TestBudgetLineItem_CheckDeletable(t *testing.T) {
	bli := draftItem()
	if err := bli.CheckDeletable(); err != nil {
		t.Errorf("draft item should be deletable: %v", err)
	}

	planned := draftItem()
	planned.Status = domain.Planned
	if err := planned.CheckDeletable(); !errors.Is(err, domerr.ErrInvalidStateChange) {
		t.Errorf("unexpected error: %v", err)
	}

	inReview := draftItem()
	inReview.InReview = true
	if err := inReview.CheckDeletable(); !errors.Is(err, domerr.ErrConflict) {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestNewBudgetLineItem(t *testing.T) {
	now := time.Date(2024, time.June, 1, 10, 0, 0, 0, time.UTC)

	t.Run("it creates a DRAFT item", func(t *testing.T) {
		bli, err := domain.NewBudgetLineItem(10, domain.BudgetLineItemPatch{
			Amount:          domain.Set(domain.Dollars(10, 0)),
			LineDescription: domain.Set("new"),
		}, 7, now)
		if err != nil {
			t.Fatal(err)
		}
		if bli.Status != domain.Draft || bli.AgreementId != 10 || bli.CreatedBy != 7 {
			t.Errorf("unexpected item: %+v", bli)
		}
		if *bli.Amount != domain.Dollars(10, 0) || bli.LineDescription != "new" {
			t.Errorf("unexpected item: %+v", bli)
		}
	})

	t.Run("it rejects other statuses", func(t *testing.T) {
		_, err := domain.NewBudgetLineItem(10, domain.BudgetLineItemPatch{
			Status: domain.Set(domain.Planned),
		}, 7, now)
		if !errors.Is(err, domerr.ErrInvalidStateChange) {
			t.Errorf("unexpected error: %v", err)
		}
	})
}
