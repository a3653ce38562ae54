package db

import (
	"context"

	"github.com/opre/ops/pkg/domain"
)

type Interface interface {
	// Get returns a workflow instance with its steps.
	//
	// Returns
	//
	// - error: ErrMissing when not found.
	Get(ctx context.Context, id int) (domain.WorkflowInstance, error)

	// Resubmit sends a workflow instance the reviewer asked changes for back to review.
	//
	// Approvers of the current step are notified again.
	//
	// Records UPDATE_CHANGE_REQUEST event.
	//
	// Args
	//
	// - context.Context
	//
	// - int: acting user id. It should be the creator of the instance.
	//
	// - int: workflow instance id
	//
	// - string: notes for reviewers
	//
	// Returns
	//
	// - domain.WorkflowInstance: updated instance
	//
	// - error: ErrMissing, ErrForbidden (not the creator) or ErrInvalidStateChange (not in CHANGES).
	Resubmit(ctx context.Context, actor int, id int, notes string) (domain.WorkflowInstance, error)
}
