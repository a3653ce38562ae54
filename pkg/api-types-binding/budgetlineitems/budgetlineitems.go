package budgetlineitems

import (
	bindcr "github.com/opre/ops/pkg/api-types-binding/changerequests"
	apibli "github.com/opre/ops/pkg/api/types/budgetlineitems"
	"github.com/opre/ops/pkg/domain"
	"github.com/opre/ops/pkg/utils"
)

func Compose(b domain.BudgetLineItem) apibli.BudgetLineItem {
	return apibli.BudgetLineItem{
		Id:                    b.Id,
		AgreementId:           b.AgreementId,
		CanId:                 b.CanId,
		Amount:                b.Amount,
		Status:                b.Status.String(),
		DateNeeded:            b.DateNeeded,
		LineDescription:       b.LineDescription,
		Comments:              b.Comments,
		ProcShopFeePercentage: b.ProcShopFeePercentage,
		InReview:              b.InReview,
		CreatedBy:             b.CreatedBy,
		CreatedOn:             b.CreatedOn,
		UpdatedOn:             b.UpdatedOn,
	}
}

func ComposeDetail(b domain.PricedBudgetLineItem) apibli.Detail {
	return apibli.Detail{
		BudgetLineItem: Compose(b.BudgetLineItem),
		Fees:           b.Fee,
		Total:          b.Total,
	}
}

func ComposeUpdate(u domain.BudgetLineItemUpdate) apibli.UpdateResponse {
	return apibli.UpdateResponse{
		BudgetLineItem: Compose(u.BudgetLineItem),
		ChangeRequests: utils.Map(u.ChangeRequests, bindcr.Compose),
	}
}
