package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	kpool "github.com/opre/ops/pkg/conn/db/postgres/pool"
	"github.com/opre/ops/pkg/domain"
	xepg "github.com/opre/ops/pkg/domain/errors/dberrors/postgres"
	xe "github.com/opre/ops/pkg/errors"
)

// Notify creates notifications and records them.
func Notify(ctx context.Context, rec *Recorder, ns ...domain.Notification) ([]domain.Notification, error) {
	created := make([]domain.Notification, 0, len(ns))
	for _, n := range ns {
		if err := rec.Tx().QueryRow(
			ctx,
			`
			insert into "notification"
				("title", "message", "recipient_id", "is_read", "change_request_id", "created_on")
			values ($1, $2, $3, $4, $5, $6)
			returning "id"
			`,
			n.Title, n.Message, n.RecipientId, n.IsRead, n.ChangeRequestId, n.CreatedOn,
		).Scan(&n.Id); err != nil {
			return nil, xe.Wrap(xepg.Translate(err))
		}
		if err := rec.New(ctx, domain.ClassNotification, n.Id, n); err != nil {
			return nil, err
		}
		created = append(created, n)
	}
	return created, nil
}

const notificationColumns = `"id", "title", "message", "recipient_id", "is_read", "change_request_id", "created_on"`

func scanNotification(row pgx.Row) (domain.Notification, error) {
	n := domain.Notification{}
	if err := row.Scan(
		&n.Id, &n.Title, &n.Message, &n.RecipientId, &n.IsRead, &n.ChangeRequestId, &n.CreatedOn,
	); err != nil {
		return domain.Notification{}, err
	}
	return n, nil
}

// GetNotification returns a notification, or Missing.
func GetNotification(ctx context.Context, conn kpool.Queryer, id int, lock bool) (domain.Notification, error) {
	n, err := scanNotification(conn.QueryRow(
		ctx,
		`select `+notificationColumns+` from "notification" where "id" = $1`+forUpdate(lock),
		id,
	))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Notification{}, xe.Wrap(xepg.Missing{Table: "notification", Identity: fmt.Sprintf("id = %d", id)})
	}
	if err != nil {
		return domain.Notification{}, xe.Wrap(err)
	}
	return n, nil
}

// FindNotifications returns notifications for the recipient, newest first.
func FindNotifications(ctx context.Context, conn kpool.Queryer, recipientId int, unreadOnly bool) ([]domain.Notification, error) {
	rows, err := conn.Query(
		ctx,
		`
		select `+notificationColumns+` from "notification"
		where "recipient_id" = $1 and (not $2 or not "is_read")
		order by "created_on" desc, "id" desc
		`,
		recipientId, unreadOnly,
	)
	if err != nil {
		return nil, xe.Wrap(err)
	}
	defer rows.Close()

	ns := []domain.Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, xe.Wrap(err)
		}
		ns = append(ns, n)
	}
	return ns, xe.Wrap(rows.Err())
}

func UpdateNotification(ctx context.Context, conn kpool.Queryer, n domain.Notification) error {
	_, err := conn.Exec(ctx, `update "notification" set "is_read" = $2 where "id" = $1`, n.Id, n.IsRead)
	return xe.Wrap(err)
}
