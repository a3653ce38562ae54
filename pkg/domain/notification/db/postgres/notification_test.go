package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	testutilctx "github.com/opre/ops/internal/testutils/context"
	"github.com/opre/ops/pkg/conn/db/postgres/pool/testenv"
	"github.com/opre/ops/pkg/domain"
	kpgagreement "github.com/opre/ops/pkg/domain/agreement/db/postgres"
	domerr "github.com/opre/ops/pkg/domain/errors"
	"github.com/opre/ops/pkg/domain/internal/db/postgres/tables"
	kpgnotification "github.com/opre/ops/pkg/domain/notification/db/postgres"
	"github.com/opre/ops/pkg/utils/try"
)

func TestNotification(t *testing.T) {
	ctx, cancel := testutilctx.WithTest(context.Background(), t)
	defer cancel()
	pool := testenv.NewPoolBroaker(ctx, t).GetPool(ctx, t)
	if err := tables.Basic(time.Now()).Apply(ctx, pool); err != nil {
		t.Fatal(err)
	}
	try.To(kpgagreement.New(pool).SubmitStatusChange(
		ctx, tables.Requestor, tables.AgreementId,
		[]int{tables.DraftItem}, domain.Planned, "",
	)).OrFatal(t)

	testee := kpgnotification.New(pool)

	ns := try.To(testee.Find(ctx, tables.Director, true)).OrFatal(t)
	if len(ns) != 1 || ns[0].IsRead || ns[0].ChangeRequestId == nil {
		t.Fatalf("notifications: %+v", ns)
	}

	if _, err := testee.Acknowledge(ctx, tables.Deputy, ns[0].Id); !errors.Is(err, domerr.ErrForbidden) {
		t.Errorf("acknowledging by others: expected forbidden, but %v", err)
	}

	acked := try.To(testee.Acknowledge(ctx, tables.Director, ns[0].Id)).OrFatal(t)
	if !acked.IsRead {
		t.Errorf("acknowledged: %+v", acked)
	}

	if unread := try.To(testee.Find(ctx, tables.Director, true)).OrFatal(t); len(unread) != 0 {
		t.Errorf("unread: %+v", unread)
	}
	if all := try.To(testee.Find(ctx, tables.Director, false)).OrFatal(t); len(all) != 1 {
		t.Errorf("all: %+v", all)
	}

	t.Run("for a missing user", func(t *testing.T) {
		if _, err := testee.Find(ctx, 999, false); !errors.Is(err, domerr.ErrMissing) {
			t.Errorf("expected missing, but %v", err)
		}
	})
	t.Run("a missing notification", func(t *testing.T) {
		if _, err := testee.Acknowledge(ctx, tables.Director, 999); !errors.Is(err, domerr.ErrMissing) {
			t.Errorf("expected missing, but %v", err)
		}
	})
}
