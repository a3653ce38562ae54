package db

import (
	"context"

	"github.com/opre/ops/pkg/domain"
)

type Interface interface {
	// Get returns the CAN with its funding in the fiscal year.
	//
	// Args
	//
	// - context.Context
	//
	// - int: CAN id
	//
	// - int: fiscal year of the funding summary.
	//
	// Returns
	//
	// - domain.CANDetail
	//
	// - error: ErrMissing when the CAN is not found.
	Get(ctx context.Context, id int, fiscalYear int) (domain.CANDetail, error)

	// Create registers a new CAN.
	//
	// Records CREATE_NEW_CAN event.
	//
	// Returns
	//
	// - domain.CAN: created CAN with its id
	//
	// - error: ErrValidation when the CAN is malformed. ErrMissing when the portfolio is not found.
	// ErrConflict when the number is taken.
	Create(ctx context.Context, actor int, c domain.CAN) (domain.CAN, error)

	// Update edits nickname, description or portfolio of the CAN.
	//
	// Records UPDATE_CAN event.
	//
	// Returns
	//
	// - domain.CAN: updated CAN
	//
	// - error: ErrMissing when the CAN or the new portfolio is not found.
	Update(ctx context.Context, actor int, id int, patch domain.CANPatch) (domain.CAN, error)

	// CreateFundingBudget records a budget of the CAN for a fiscal year.
	//
	// Records CREATE_CAN_FUNDING_BUDGET event.
	//
	// Returns
	//
	// - error: ErrValidation when the budget is negative or the fiscal year is not positive.
	// ErrMissing when the CAN is not found.
	CreateFundingBudget(ctx context.Context, actor int, b domain.CANFundingBudget) (domain.CANFundingBudget, error)

	// UpdateFundingBudget edits a funding budget.
	//
	// Records UPDATE_CAN_FUNDING_BUDGET event.
	UpdateFundingBudget(ctx context.Context, actor int, id int, patch domain.CANFundingBudgetPatch) (domain.CANFundingBudget, error)

	// CreateFundingReceived records funding received by the CAN.
	//
	// Records CREATE_CAN_FUNDING_RECEIVED event.
	CreateFundingReceived(ctx context.Context, actor int, r domain.CANFundingReceived) (domain.CANFundingReceived, error)
}
