package changerequests

import (
	"time"

	apierr "github.com/opre/ops/pkg/api/types/errors"
	"github.com/opre/ops/pkg/api/types/workflows"
	"github.com/opre/ops/pkg/domain"
)

type ChangeRequest struct {
	Id                       int                    `json:"id"`
	Type                     string                 `json:"change_request_type"`
	Status                   string                 `json:"status"`
	AgreementId              int                    `json:"agreement_id"`
	BudgetLineItemId         *int                   `json:"budget_line_item_id"`
	ManagingDivisionId       *int                   `json:"managing_division_id"`
	RequestedChange          domain.RequestedChange `json:"requested_change_data"`
	Diff                     domain.Changes         `json:"requested_change_diff"`
	HasBudgetChange          bool                   `json:"has_budget_change"`
	HasStatusChange          bool                   `json:"has_status_change"`
	HasProcurementShopChange bool                   `json:"has_proc_shop_change"`
	RequestorNotes           string                 `json:"requestor_notes"`
	ReviewerNotes            string                 `json:"reviewer_notes"`
	WorkflowInstanceId       int                    `json:"workflow_instance_id"`
	CreatedBy                int                    `json:"created_by"`
	CreatedOn                time.Time              `json:"created_on"`
	ReviewedBy               *int                   `json:"reviewed_by"`
	ReviewedOn               *time.Time             `json:"reviewed_on"`
}

type ReviewRequest struct {
	// APPROVE, REJECT or REQUEST_CHANGES
	Action        string `json:"action"`
	ReviewerNotes string `json:"reviewer_notes"`
}

type BulkReviewRequest struct {
	Ids           []int  `json:"change_request_ids"`
	Action        string `json:"action"`
	ReviewerNotes string `json:"reviewer_notes"`
}

type Review struct {
	ChangeRequest ChangeRequest      `json:"change_request"`
	Workflow      workflows.Instance `json:"workflow_instance"`
}

// ReviewResult is a result of a review in bulk. Either Review or Error is set.
type ReviewResult struct {
	Id     int                  `json:"id"`
	Review *Review              `json:"review,omitempty"`
	Error  *apierr.ErrorMessage `json:"error,omitempty"`
}
