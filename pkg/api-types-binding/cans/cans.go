package cans

import (
	apicans "github.com/opre/ops/pkg/api/types/cans"
	"github.com/opre/ops/pkg/domain"
	"github.com/opre/ops/pkg/utils"
)

func ComposeCAN(c domain.CAN) apicans.CAN {
	return apicans.CAN{
		Id:           c.Id,
		Number:       c.Number,
		Nickname:     c.Nickname,
		Description:  c.Description,
		PortfolioId:  c.PortfolioId,
		ActivePeriod: c.ActivePeriod,
	}
}

func ComposeFundingBudget(b domain.CANFundingBudget) apicans.FundingBudget {
	return apicans.FundingBudget{
		Id: b.Id, CanId: b.CanId, FiscalYear: b.FiscalYear, Budget: b.Budget, Notes: b.Notes,
	}
}

func ComposeFundingReceived(r domain.CANFundingReceived) apicans.FundingReceived {
	return apicans.FundingReceived{
		Id: r.Id, CanId: r.CanId, FiscalYear: r.FiscalYear, Funding: r.Funding, Notes: r.Notes,
	}
}

func ComposeDetail(d domain.CANDetail) apicans.Detail {
	return apicans.Detail{
		CAN: ComposeCAN(d.CAN),
		Portfolio: apicans.Portfolio{
			Id:           d.Portfolio.Id,
			Name:         d.Portfolio.Name,
			Abbreviation: d.Portfolio.Abbreviation,
			DivisionId:   d.Portfolio.DivisionId,
		},
		FundingBudgets:  utils.Map(d.FundingBudgets, ComposeFundingBudget),
		FundingReceived: utils.Map(d.FundingReceived, ComposeFundingReceived),
		FundingSummary: apicans.FundingSummary{
			FiscalYear:  d.Summary.FiscalYear,
			Budget:      d.Summary.Budget,
			Received:    d.Summary.Received,
			Planned:     d.Summary.Planned,
			InExecution: d.Summary.InExecution,
			Obligated:   d.Summary.Obligated,
			Available:   d.Summary.Available(),
		},
	}
}

func ComposeHistoryItem(h domain.CANHistory) apicans.HistoryItem {
	return apicans.HistoryItem{
		Id:             h.Id,
		CanId:          h.CanId,
		OpsEventId:     h.OpsEventId,
		HistoryTitle:   h.HistoryTitle,
		HistoryMessage: h.HistoryMessage,
		Timestamp:      h.Timestamp,
		HistoryType:    string(h.HistoryType),
		FiscalYear:     h.FiscalYear,
	}
}

// AsCAN converts a creation request.
func AsCAN(req apicans.CreateRequest) domain.CAN {
	return domain.CAN{
		Number:       req.Number,
		Nickname:     req.Nickname,
		Description:  req.Description,
		PortfolioId:  req.PortfolioId,
		ActivePeriod: req.ActivePeriod,
	}
}
