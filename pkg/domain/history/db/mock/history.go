package mocks

import (
	"context"
	"errors"

	"github.com/opre/ops/pkg/domain"
	kdb "github.com/opre/ops/pkg/domain/history/db"
	kdbmock "github.com/opre/ops/pkg/domain/internal/db/mock"
)

type DBHistoryArgs struct {
	ClassName string
	RowKey    string
	Page      kdb.Page
}

type EventsArgs struct {
	EventType domain.OpsEventType
	Limit     int
}

type CANHistoryArgs struct {
	CanId      int
	FiscalYear int
	Page       kdb.Page
}

type HistoryInterface struct {
	Impl struct {
		DBHistory   func(ctx context.Context, className string, rowKey string, page kdb.Page) ([]domain.OpsDBHistory, error)
		Events      func(ctx context.Context, eventType domain.OpsEventType, limit int) ([]domain.OpsEvent, error)
		CANHistory  func(ctx context.Context, canId int, fiscalYear int, page kdb.Page) ([]domain.CANHistory, error)
		ProjectNext func(ctx context.Context, f func(domain.OpsEvent, []domain.CANHistory) error) (bool, error)
	}
	Calls struct {
		DBHistory   kdbmock.CallLog[DBHistoryArgs]
		Events      kdbmock.CallLog[EventsArgs]
		CANHistory  kdbmock.CallLog[CANHistoryArgs]
		ProjectNext kdbmock.CallLog[struct{}]
	}
}

var _ kdb.Interface = &HistoryInterface{}

func NewHistoryInterface() *HistoryInterface {
	return &HistoryInterface{}
}

func (m *HistoryInterface) DBHistory(ctx context.Context, className string, rowKey string, page kdb.Page) ([]domain.OpsDBHistory, error) {
	m.Calls.DBHistory = append(m.Calls.DBHistory, DBHistoryArgs{ClassName: className, RowKey: rowKey, Page: page})
	if m.Impl.DBHistory != nil {
		return m.Impl.DBHistory(ctx, className, rowKey, page)
	}
	panic(errors.New("should not be called"))
}

func (m *HistoryInterface) Events(ctx context.Context, eventType domain.OpsEventType, limit int) ([]domain.OpsEvent, error) {
	m.Calls.Events = append(m.Calls.Events, EventsArgs{EventType: eventType, Limit: limit})
	if m.Impl.Events != nil {
		return m.Impl.Events(ctx, eventType, limit)
	}
	panic(errors.New("should not be called"))
}

func (m *HistoryInterface) CANHistory(ctx context.Context, canId int, fiscalYear int, page kdb.Page) ([]domain.CANHistory, error) {
	m.Calls.CANHistory = append(m.Calls.CANHistory, CANHistoryArgs{CanId: canId, FiscalYear: fiscalYear, Page: page})
	if m.Impl.CANHistory != nil {
		return m.Impl.CANHistory(ctx, canId, fiscalYear, page)
	}
	panic(errors.New("should not be called"))
}

func (m *HistoryInterface) ProjectNext(ctx context.Context, f func(domain.OpsEvent, []domain.CANHistory) error) (bool, error) {
	m.Calls.ProjectNext = append(m.Calls.ProjectNext, struct{}{})
	if m.Impl.ProjectNext != nil {
		return m.Impl.ProjectNext(ctx, f)
	}
	panic(errors.New("should not be called"))
}
