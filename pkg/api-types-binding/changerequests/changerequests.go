package changerequests

import (
	"net/http"

	bindwf "github.com/opre/ops/pkg/api-types-binding/workflows"
	apicr "github.com/opre/ops/pkg/api/types/changerequests"
	apierr "github.com/opre/ops/pkg/api/types/errors"
	"github.com/opre/ops/pkg/domain"
	"github.com/opre/ops/pkg/utils"
)

func Compose(cr domain.ChangeRequest) apicr.ChangeRequest {
	diff := cr.Diff
	if diff == nil {
		diff = domain.Changes{}
	}
	return apicr.ChangeRequest{
		Id:                       cr.Id,
		Type:                     string(cr.Type),
		Status:                   cr.Status.String(),
		AgreementId:              cr.AgreementId,
		BudgetLineItemId:         cr.BudgetLineItemId,
		ManagingDivisionId:       cr.ManagingDivisionId,
		RequestedChange:          cr.RequestedChange,
		Diff:                     diff,
		HasBudgetChange:          cr.HasBudgetChange,
		HasStatusChange:          cr.HasStatusChange,
		HasProcurementShopChange: cr.HasProcurementShopChange,
		RequestorNotes:           cr.RequestorNotes,
		ReviewerNotes:            cr.ReviewerNotes,
		WorkflowInstanceId:       cr.WorkflowInstanceId,
		CreatedBy:                cr.CreatedBy,
		CreatedOn:                cr.CreatedOn,
		ReviewedBy:               cr.ReviewedBy,
		ReviewedOn:               cr.ReviewedOn,
	}
}

func ComposeReview(r domain.Review) apicr.Review {
	return apicr.Review{
		ChangeRequest: Compose(r.ChangeRequest),
		Workflow:      bindwf.Compose(r.Workflow),
	}
}

// ComposeResults converts results of a bulk review.
// Errors are described as the error response for the same failure on a single review.
func ComposeResults(results []domain.ReviewResult) []apicr.ReviewResult {
	return utils.Map(results, func(r domain.ReviewResult) apicr.ReviewResult {
		out := apicr.ReviewResult{Id: r.Id}
		if r.Err != nil {
			herr := apierr.FromDomain(r.Err)
			msg := apierr.ErrorMessage{Reason: "unexpected error"}
			if resp, ok := herr.Message.(apierr.ErrorResponse); ok {
				msg = resp.Message
			}
			if herr.Code < http.StatusInternalServerError {
				msg.Advice = r.Err.Error()
			}
			out.Error = &msg
			return out
		}
		if r.Review != nil {
			rv := ComposeReview(*r.Review)
			out.Review = &rv
		}
		return out
	})
}
