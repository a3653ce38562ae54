package db

import (
	"context"

	"github.com/opre/ops/pkg/domain"
)

type Interface interface {
	// GetByAgreement returns the procurement tracker of the agreement.
	//
	// Returns
	//
	// - error: ErrMissing when the agreement has no tracker.
	GetByAgreement(ctx context.Context, agreementId int) (domain.ProcurementTracker, error)

	// CompleteStep completes the active step of the tracker.
	//
	// Completing the AWARD step records a procurement action and obligates every
	// IN_EXECUTION budget line item of the agreement.
	//
	// Records UPDATE_PROCUREMENT_TRACKER event.
	//
	// Args
	//
	// - context.Context
	//
	// - int: acting user id
	//
	// - int: tracker id
	//
	// - int: step number, 1 to 6.
	//
	// - domain.StepCompletion
	//
	// Returns
	//
	// - domain.StepCompleted
	//
	// - error: ErrMissing, ErrValidation or ErrInvalidStateChange (not the active step, or
	// the tracker is not ACTIVE).
	CompleteStep(
		ctx context.Context, actor int, trackerId int, stepNumber int, completion domain.StepCompletion,
	) (domain.StepCompleted, error)

	// UpdateStep edits a step not completed yet.
	//
	// Records UPDATE_PROCUREMENT_TRACKER event.
	UpdateStep(
		ctx context.Context, actor int, trackerId int, stepNumber int, patch domain.StepPatch,
	) (domain.ProcurementTracker, error)

	// SetActive activates or deactivates the tracker.
	//
	// Records UPDATE_PROCUREMENT_TRACKER event.
	//
	// Returns
	//
	// - error: ErrMissing, or ErrInvalidStateChange when the tracker is COMPLETED.
	SetActive(ctx context.Context, actor int, trackerId int, active bool) (domain.ProcurementTracker, error)
}
