package mocks

import (
	"context"
	"errors"

	"github.com/opre/ops/pkg/domain"
	kdbmock "github.com/opre/ops/pkg/domain/internal/db/mock"
	kdb "github.com/opre/ops/pkg/domain/notification/db"
)

type FindArgs struct {
	RecipientId int
	UnreadOnly  bool
}

type AcknowledgeArgs struct {
	Actor int
	Id    int
}

type NotificationInterface struct {
	Impl struct {
		Find        func(ctx context.Context, recipientId int, unreadOnly bool) ([]domain.Notification, error)
		Acknowledge func(ctx context.Context, actor int, id int) (domain.Notification, error)
	}
	Calls struct {
		Find        kdbmock.CallLog[FindArgs]
		Acknowledge kdbmock.CallLog[AcknowledgeArgs]
	}
}

var _ kdb.Interface = &NotificationInterface{}

func NewNotificationInterface() *NotificationInterface {
	return &NotificationInterface{}
}

func (m *NotificationInterface) Find(ctx context.Context, recipientId int, unreadOnly bool) ([]domain.Notification, error) {
	m.Calls.Find = append(m.Calls.Find, FindArgs{RecipientId: recipientId, UnreadOnly: unreadOnly})
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, recipientId, unreadOnly)
	}
	panic(errors.New("should not be called"))
}

func (m *NotificationInterface) Acknowledge(ctx context.Context, actor int, id int) (domain.Notification, error) {
	m.Calls.Acknowledge = append(m.Calls.Acknowledge, AcknowledgeArgs{Actor: actor, Id: id})
	if m.Impl.Acknowledge != nil {
		return m.Impl.Acknowledge(ctx, actor, id)
	}
	panic(errors.New("should not be called"))
}
