package agreements

import (
	bindbli "github.com/opre/ops/pkg/api-types-binding/budgetlineitems"
	bindcr "github.com/opre/ops/pkg/api-types-binding/changerequests"
	apiagreements "github.com/opre/ops/pkg/api/types/agreements"
	"github.com/opre/ops/pkg/domain"
	"github.com/opre/ops/pkg/utils"
)

func Compose(a domain.Agreement) apiagreements.Agreement {
	var reason *string
	if a.AgreementReason != nil {
		r := string(*a.AgreementReason)
		reason = &r
	}
	return apiagreements.Agreement{
		Id:                a.Id,
		Type:              string(a.Type),
		Name:              a.Name,
		Description:       a.Description,
		ProjectOfficerId:  a.ProjectOfficerId,
		ProcurementShopId: a.ProcurementShopId,
		AgreementReason:   reason,
		Notes:             a.Notes,
		CreatedBy:         a.CreatedBy,
		CreatedOn:         a.CreatedOn,
		UpdatedOn:         a.UpdatedOn,
	}
}

func ComposeTotals(t domain.AgreementTotals) apiagreements.Totals {
	byStatus := map[string]domain.Amount{}
	for status, amount := range t.ByStatus {
		byStatus[status.String()] = amount
	}
	return apiagreements.Totals{
		Subtotal: t.Subtotal,
		Fees:     t.Fees,
		Total:    t.Total,
		ByStatus: byStatus,
	}
}

func ComposeDetail(d domain.AgreementDetail) apiagreements.Detail {
	return apiagreements.Detail{
		Agreement:       Compose(d.Agreement),
		BudgetLineItems: utils.Map(d.Items, bindbli.ComposeDetail),
		Totals:          ComposeTotals(d.Totals),
	}
}

func ComposeUpdate(u domain.AgreementUpdate) apiagreements.UpdateResponse {
	return apiagreements.UpdateResponse{
		Agreement:      Compose(u.Agreement),
		ChangeRequests: utils.Map(u.ChangeRequests, bindcr.Compose),
	}
}
