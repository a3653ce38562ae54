package agreements

import (
	"time"

	"github.com/opre/ops/pkg/api/types/budgetlineitems"
	"github.com/opre/ops/pkg/api/types/changerequests"
	"github.com/opre/ops/pkg/domain"
)

type Agreement struct {
	Id                int       `json:"id"`
	Type              string    `json:"agreement_type"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	ProjectOfficerId  *int      `json:"project_officer_id"`
	ProcurementShopId *int      `json:"procurement_shop_id"`
	AgreementReason   *string   `json:"agreement_reason"`
	Notes             string    `json:"notes"`
	CreatedBy         int       `json:"created_by"`
	CreatedOn         time.Time `json:"created_on"`
	UpdatedOn         time.Time `json:"updated_on"`
}

type Totals struct {
	Subtotal domain.Amount `json:"subtotal"`
	Fees     domain.Amount `json:"fees"`
	Total    domain.Amount `json:"total"`

	// keyed by budget line item status.
	ByStatus map[string]domain.Amount `json:"by_status"`
}

type Detail struct {
	Agreement
	BudgetLineItems []budgetlineitems.Detail `json:"budget_line_items"`
	Totals          Totals                   `json:"totals"`
}

// UpdateResponse is the agreement after direct changes, with change requests opened.
type UpdateResponse struct {
	Agreement      Agreement                      `json:"agreement"`
	ChangeRequests []changerequests.ChangeRequest `json:"change_requests"`
}

type StatusChangeRequest struct {
	BudgetLineItemIds []int  `json:"budget_line_item_ids"`
	Status            string `json:"status"`
	RequestorNotes    string `json:"requestor_notes"`
}
