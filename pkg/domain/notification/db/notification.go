package db

import (
	"context"

	"github.com/opre/ops/pkg/domain"
)

type Interface interface {
	// Find returns notifications for the user, newest first.
	//
	// Args
	//
	// - context.Context
	//
	// - int: recipient user id
	//
	// - bool: when true, read notifications are excluded.
	//
	// Returns
	//
	// - error: ErrMissing when the user is not found.
	Find(ctx context.Context, recipientId int, unreadOnly bool) ([]domain.Notification, error)

	// Acknowledge marks the notification as read.
	//
	// Records ACKNOWLEDGE_NOTIFICATION event.
	//
	// Returns
	//
	// - error: ErrMissing, or ErrForbidden when the actor is not the recipient.
	Acknowledge(ctx context.Context, actor int, id int) (domain.Notification, error)
}
