package postgres_test

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	testutilctx "github.com/opre/ops/internal/testutils/context"
	"github.com/opre/ops/pkg/conn/db/postgres/pool/testenv"
	"github.com/opre/ops/pkg/domain"
	kpgcan "github.com/opre/ops/pkg/domain/can/db/postgres"
	khistory "github.com/opre/ops/pkg/domain/history/db"
	kpghistory "github.com/opre/ops/pkg/domain/history/db/postgres"
	"github.com/opre/ops/pkg/domain/internal/db/postgres/tables"
	"github.com/opre/ops/pkg/utils/try"
)

func TestHistory_ProjectNext(t *testing.T) {
	ctx, cancel := testutilctx.WithTest(context.Background(), t)
	defer cancel()
	pool := testenv.NewPoolBroaker(ctx, t).GetPool(ctx, t)
	if err := tables.Basic(time.Now()).Apply(ctx, pool); err != nil {
		t.Fatal(err)
	}

	cans := kpgcan.New(pool)
	created := try.To(cans.Create(ctx, tables.Director, domain.CAN{
		Number: "G99XXX8", Nickname: "before", PortfolioId: tables.PortfolioId, ActivePeriod: 5,
	})).OrFatal(t)
	try.To(cans.Update(ctx, tables.Director, created.Id, domain.CANPatch{
		Nickname:    domain.Set("after"),
		PortfolioId: domain.Set(tables.OtherPortfolioId),
	})).OrFatal(t)
	// fails, and is never projected.
	if _, err := cans.Update(ctx, tables.Director, 999, domain.CANPatch{Nickname: domain.Set("x")}); err == nil {
		t.Fatal("updating a missing CAN should fail")
	}

	testee := kpghistory.New(pool)

	type projected struct {
		EventType domain.OpsEventType
		Status    domain.OpsEventStatus
		Types     []domain.CANHistoryType
	}
	got := []projected{}
	for {
		consumed := try.To(testee.ProjectNext(ctx, func(ev domain.OpsEvent, items []domain.CANHistory) error {
			p := projected{EventType: ev.EventType, Status: ev.EventStatus, Types: []domain.CANHistoryType{}}
			for _, i := range items {
				p.Types = append(p.Types, i.HistoryType)
			}
			got = append(got, p)
			return nil
		})).OrFatal(t)
		if !consumed {
			break
		}
	}

	want := []projected{
		{EventType: domain.CreateNewCAN, Status: domain.EventSuccess, Types: []domain.CANHistoryType{domain.CANDataImport}},
		{
			EventType: domain.UpdateCAN, Status: domain.EventSuccess,
			Types: []domain.CANHistoryType{domain.CANNicknameEdited, domain.CANPortfolioEdited},
		},
		{EventType: domain.UpdateCAN, Status: domain.EventFailed, Types: []domain.CANHistoryType{}},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("projected events (-want +got):\n%s", diff)
	}

	items := try.To(testee.CANHistory(ctx, created.Id, 0, khistory.Page{})).OrFatal(t)
	if len(items) != 3 {
		t.Fatalf("can history: %+v", items)
	}
	// newest first.
	for _, i := range items[:2] {
		if i.HistoryType == domain.CANDataImport {
			t.Errorf("data import should be the oldest: %+v", items)
		}
	}
	if last := items[2]; last.HistoryType != domain.CANDataImport {
		t.Errorf("oldest item: %+v", last)
	}
	for _, i := range items {
		if i.HistoryType != domain.CANPortfolioEdited {
			continue
		}
		if want := "Dana Director changed the portfolio from Child Welfare Research to Healthy Marriage"; i.HistoryMessage != want {
			t.Errorf("message: %q, want %q", i.HistoryMessage, want)
		}
	}

	t.Run("projection does not run twice", func(t *testing.T) {
		consumed := try.To(testee.ProjectNext(ctx, nil)).OrFatal(t)
		if consumed {
			t.Error("nothing should be left")
		}
		again := try.To(testee.CANHistory(ctx, created.Id, 0, khistory.Page{})).OrFatal(t)
		if len(again) != len(items) {
			t.Errorf("can history grows: %+v", again)
		}
	})

	t.Run("row history is listed newest first", func(t *testing.T) {
		hs := try.To(testee.DBHistory(ctx, domain.ClassCAN, strconv.Itoa(created.Id), khistory.Page{})).OrFatal(t)
		types := []domain.DBHistoryType{}
		for _, h := range hs {
			types = append(types, h.EventType)
		}
		if diff := cmp.Diff([]domain.DBHistoryType{domain.HistoryUpdated, domain.HistoryNew}, types); diff != "" {
			t.Errorf("history (-want +got):\n%s", diff)
		}
	})

	t.Run("events are listed by type", func(t *testing.T) {
		evs := try.To(testee.Events(ctx, domain.UpdateCAN, 0)).OrFatal(t)
		if len(evs) != 2 {
			t.Errorf("events: %+v", evs)
		}
	})
}
