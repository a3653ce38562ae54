package db

import (
	"context"

	"github.com/opre/ops/pkg/domain"
)

type Interface interface {
	// Get returns the agreement with its budget line items priced and totaled.
	//
	// Args
	//
	// - context.Context
	//
	// - int: agreement id
	//
	// Returns
	//
	// - domain.AgreementDetail
	//
	// - error: ErrMissing when the agreement is not found.
	Get(ctx context.Context, id int) (domain.AgreementDetail, error)

	// Update edits the agreement.
	//
	// Changing the procurement shop of an agreement with committed budget line items
	// opens an agreement change request instead of being applied.
	// Other fields are applied directly.
	//
	// Records UPDATE_AGREEMENT event.
	//
	// Args
	//
	// - context.Context
	//
	// - int: acting user id
	//
	// - int: agreement id
	//
	// - domain.AgreementPatch: requested change
	//
	// - string: notes to reviewers, used when a change request is opened.
	//
	// Returns
	//
	// - domain.AgreementUpdate: the agreement after direct changes, and opened change requests.
	//
	// - error: ErrMissing, ErrValidation, or ErrConflict when an agreement change request
	// is already in review or the procurement shop is cleared while committed.
	Update(ctx context.Context, actor int, id int, patch domain.AgreementPatch, notes string) (domain.AgreementUpdate, error)

	// SubmitStatusChange opens one status change request per budget line item.
	//
	// Either every item is requested, or nothing.
	//
	// Records CREATE_CHANGE_REQUEST event.
	//
	// Args
	//
	// - context.Context
	//
	// - int: acting user id
	//
	// - int: agreement id
	//
	// - []int: budget line item ids, in the agreement.
	//
	// - domain.BudgetLineItemStatus: status to be moved to
	//
	// - string: notes to reviewers
	//
	// Returns
	//
	// - []domain.ChangeRequest: opened change requests
	//
	// - error: ErrMissing, ErrValidation, ErrConflict or ErrInvalidStateChange.
	SubmitStatusChange(
		ctx context.Context, actor int, agreementId int, bliIds []int,
		target domain.BudgetLineItemStatus, notes string,
	) ([]domain.ChangeRequest, error)
}
