package db

import (
	"context"

	"github.com/opre/ops/pkg/domain"
)

type Interface interface {
	// Get returns a budget line item with its fee.
	//
	// Returns
	//
	// - error: ErrMissing when not found.
	Get(ctx context.Context, id int) (domain.PricedBudgetLineItem, error)

	// Create creates a DRAFT budget line item in the agreement.
	//
	// Records CREATE_BLI event.
	//
	// Args
	//
	// - context.Context
	//
	// - int: acting user id
	//
	// - int: agreement id
	//
	// - domain.BudgetLineItemPatch: initial values. Status, when set, must be DRAFT.
	//
	// Returns
	//
	// - domain.BudgetLineItem: created item
	//
	// - error: ErrMissing when the agreement or the CAN is not found.
	// ErrValidation or ErrInvalidStateChange when the values are not acceptable.
	Create(ctx context.Context, actor int, agreementId int, patch domain.BudgetLineItemPatch) (domain.BudgetLineItem, error)

	// Update edits a budget line item.
	//
	// Changes needing approval are not applied; change requests are opened for them.
	//
	// Records UPDATE_BLI event.
	//
	// Args
	//
	// - context.Context
	//
	// - int: acting user id
	//
	// - int: budget line item id
	//
	// - domain.BudgetLineItemPatch: requested change
	//
	// - string: notes to reviewers, used when change requests are opened.
	//
	// Returns
	//
	// - domain.BudgetLineItemUpdate: the item after direct changes, and opened change requests.
	//
	// - error: ErrMissing, ErrValidation, ErrConflict (in review) or ErrInvalidStateChange.
	Update(ctx context.Context, actor int, id int, patch domain.BudgetLineItemPatch, notes string) (domain.BudgetLineItemUpdate, error)

	// Delete deletes a DRAFT budget line item not in review.
	//
	// Records DELETE_BLI event.
	//
	// Returns
	//
	// - error: ErrMissing, ErrConflict (in review) or ErrInvalidStateChange (not DRAFT).
	Delete(ctx context.Context, actor int, id int) error
}
