package db

import (
	"context"

	"github.com/opre/ops/pkg/domain"
)

// Query selects change requests. Zero fields do not filter.
type Query struct {
	AgreementId      int
	BudgetLineItemId int
	Status           domain.ChangeRequestStatus

	// ReviewerId selects requests in review whose current step the user may decide.
	ReviewerId int
}

type Interface interface {
	// Get returns a change request.
	//
	// Returns
	//
	// - error: ErrMissing when not found.
	Get(ctx context.Context, id int) (domain.ChangeRequest, error)

	// Find returns change requests matching the query, oldest first.
	//
	// Returns
	//
	// - error: ErrMissing when the reviewer is not found.
	Find(ctx context.Context, q Query) ([]domain.ChangeRequest, error)

	// Review decides the current step of the workflow of the change request.
	//
	// When the workflow is approved, the requested change is applied.
	// The requestor is notified of final decisions and of requested changes.
	// Approvers of the next step are notified when the workflow moves forward.
	//
	// Records UPDATE_CHANGE_REQUEST event.
	//
	// Args
	//
	// - context.Context
	//
	// - int: reviewer user id
	//
	// - int: change request id
	//
	// - domain.ReviewDecision
	//
	// - string: notes of the reviewer
	//
	// Returns
	//
	// - domain.Review: the change request and its workflow after the review.
	//
	// - error: ErrMissing, ErrForbidden (not an approver), ErrInvalidStateChange (not in review),
	// or errors of applying the change.
	Review(ctx context.Context, reviewer int, id int, decision domain.ReviewDecision, notes string) (domain.Review, error)

	// ReviewAll reviews each change request independently.
	//
	// Returns
	//
	// - []domain.ReviewResult: results in the order of ids.
	ReviewAll(ctx context.Context, reviewer int, ids []int, decision domain.ReviewDecision, notes string) []domain.ReviewResult
}
