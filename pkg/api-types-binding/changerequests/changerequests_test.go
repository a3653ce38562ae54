package changerequests_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	bind "github.com/opre/ops/pkg/api-types-binding/changerequests"
	apicr "github.com/opre/ops/pkg/api/types/changerequests"
	apierr "github.com/opre/ops/pkg/api/types/errors"
	apiwf "github.com/opre/ops/pkg/api/types/workflows"
	"github.com/opre/ops/pkg/domain"
	domerr "github.com/opre/ops/pkg/domain/errors"
	"github.com/opre/ops/pkg/utils/pointer"
)

func TestCompose(t *testing.T) {
	createdOn := time.Date(2024, 10, 1, 12, 0, 0, 0, time.UTC)

	t.Run("nil diff is composed as empty object", func(t *testing.T) {
		actual := bind.Compose(domain.ChangeRequest{
			Id:                 3,
			Type:               domain.BudgetLineItemChangeRequest,
			Status:             domain.ChangeInReview,
			AgreementId:        1,
			BudgetLineItemId:   pointer.Ref(2),
			HasBudgetChange:    true,
			WorkflowInstanceId: 5,
			CreatedBy:          7,
			CreatedOn:          createdOn,
		})

		expected := apicr.ChangeRequest{
			Id:                 3,
			Type:               string(domain.BudgetLineItemChangeRequest),
			Status:             "IN_REVIEW",
			AgreementId:        1,
			BudgetLineItemId:   pointer.Ref(2),
			Diff:               domain.Changes{},
			HasBudgetChange:    true,
			WorkflowInstanceId: 5,
			CreatedBy:          7,
			CreatedOn:          createdOn,
		}
		if diff := cmp.Diff(expected, actual); diff != "" {
			t.Errorf("(-expected, +actual):\n%s", diff)
		}
	})
}

func TestComposeResults(t *testing.T) {
	review := domain.Review{
		ChangeRequest: domain.ChangeRequest{Id: 1, Status: domain.ChangeApproved, Diff: domain.Changes{}},
		Workflow: domain.WorkflowInstance{
			Id: 9, Status: domain.WorkflowApproved, Action: domain.Generic,
			TriggerType: domain.TriggerAgreement, TriggerId: 4,
		},
	}

	actual := bind.ComposeResults([]domain.ReviewResult{
		{Id: 1, Review: &review},
		{Id: 2, Err: domerr.Conflict("change request 2 is already reviewed")},
		{Id: 3, Err: errors.New("connection reset")},
	})

	expected := []apicr.ReviewResult{
		{
			Id: 1,
			Review: &apicr.Review{
				ChangeRequest: apicr.ChangeRequest{
					Id: 1, Status: "APPROVED", Diff: domain.Changes{},
				},
				Workflow: apiwf.Instance{
					Id: 9, Status: "APPROVED", Action: "GENERIC",
					TriggerType: "AGREEMENT", TriggerId: 4,
					Steps: []apiwf.Step{},
				},
			},
		},
		{
			Id: 2,
			Error: &apierr.ErrorMessage{
				Reason: "conflict",
				Advice: "conflict: change request 2 is already reviewed",
			},
		},
		{
			Id:    3,
			Error: &apierr.ErrorMessage{Reason: "unexpected error"},
		},
	}

	if diff := cmp.Diff(
		expected, actual,
		cmpopts.IgnoreFields(apierr.ErrorMessage{}, "Cause"),
	); diff != "" {
		t.Errorf("(-expected, +actual):\n%s", diff)
	}
}
