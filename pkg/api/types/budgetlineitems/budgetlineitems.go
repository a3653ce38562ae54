package budgetlineitems

import (
	"time"

	"github.com/opre/ops/pkg/api/types/changerequests"
	"github.com/opre/ops/pkg/domain"
)

type BudgetLineItem struct {
	Id                    int            `json:"id"`
	AgreementId           int            `json:"agreement_id"`
	CanId                 *int           `json:"can_id"`
	Amount                *domain.Amount `json:"amount"`
	Status                string         `json:"status"`
	DateNeeded            *domain.Date   `json:"date_needed"`
	LineDescription       string         `json:"line_description"`
	Comments              string         `json:"comments"`
	ProcShopFeePercentage *domain.Rate   `json:"proc_shop_fee_percentage"`
	InReview              bool           `json:"in_review"`
	CreatedBy             int            `json:"created_by"`
	CreatedOn             time.Time      `json:"created_on"`
	UpdatedOn             time.Time      `json:"updated_on"`
}

// Detail is a budget line item with money charged by the procurement shop.
type Detail struct {
	BudgetLineItem
	Fees  domain.Amount `json:"fees"`
	Total domain.Amount `json:"total"`
}

// UpdateResponse is the item after direct changes, with change requests opened.
type UpdateResponse struct {
	BudgetLineItem BudgetLineItem                 `json:"budget_line_item"`
	ChangeRequests []changerequests.ChangeRequest `json:"change_requests"`
}
