package postgres

import (
	"context"

	kpool "github.com/opre/ops/pkg/conn/db/postgres/pool"
	"github.com/opre/ops/pkg/domain"
	ipg "github.com/opre/ops/pkg/domain/internal/db/postgres"
	knotification "github.com/opre/ops/pkg/domain/notification/db"
)

type pgNotification struct {
	pool kpool.Pool
}

func New(pool kpool.Pool) knotification.Interface {
	return &pgNotification{pool: pool}
}

func (n *pgNotification) Find(ctx context.Context, recipientId int, unreadOnly bool) ([]domain.Notification, error) {
	if _, err := ipg.GetUser(ctx, n.pool, recipientId); err != nil {
		return nil, err
	}
	return ipg.FindNotifications(ctx, n.pool, recipientId, unreadOnly)
}

func (n *pgNotification) Acknowledge(ctx context.Context, actor int, id int) (domain.Notification, error) {
	var acked domain.Notification
	_, err := ipg.Run(
		ctx, n.pool,
		ipg.Op{Actor: actor, EventType: domain.AcknowledgeNotification, RequestId: domain.RequestIdOf(ctx)},
		func(ctx context.Context, rec *ipg.Recorder) (domain.EventDetails, error) {
			tx := rec.Tx()
			current, err := ipg.GetNotification(ctx, tx, id, true)
			if err != nil {
				return domain.EventDetails{}, err
			}
			next, err := current.Acknowledge(actor)
			if err != nil {
				return domain.EventDetails{}, err
			}
			if err := ipg.UpdateNotification(ctx, tx, next); err != nil {
				return domain.EventDetails{}, err
			}
			if _, err := rec.Updated(ctx, domain.ClassNotification, id, current, next); err != nil {
				return domain.EventDetails{}, err
			}
			acked = next
			nid := id
			return domain.EventDetails{NotificationId: &nid}, nil
		},
	)
	if err != nil {
		return domain.Notification{}, err
	}
	return acked, nil
}
