package mocks

import (
	"context"
	"errors"

	"github.com/opre/ops/pkg/domain"
	kdb "github.com/opre/ops/pkg/domain/can/db"
	kdbmock "github.com/opre/ops/pkg/domain/internal/db/mock"
)

type GetArgs struct {
	Id         int
	FiscalYear int
}

type CreateArgs struct {
	Actor int
	CAN   domain.CAN
}

type UpdateArgs struct {
	Actor int
	Id    int
	Patch domain.CANPatch
}

type CreateFundingBudgetArgs struct {
	Actor  int
	Budget domain.CANFundingBudget
}

type UpdateFundingBudgetArgs struct {
	Actor int
	Id    int
	Patch domain.CANFundingBudgetPatch
}

type CreateFundingReceivedArgs struct {
	Actor    int
	Received domain.CANFundingReceived
}

type CANInterface struct {
	Impl struct {
		Get                   func(ctx context.Context, id int, fiscalYear int) (domain.CANDetail, error)
		Create                func(ctx context.Context, actor int, c domain.CAN) (domain.CAN, error)
		Update                func(ctx context.Context, actor int, id int, patch domain.CANPatch) (domain.CAN, error)
		CreateFundingBudget   func(ctx context.Context, actor int, b domain.CANFundingBudget) (domain.CANFundingBudget, error)
		UpdateFundingBudget   func(ctx context.Context, actor int, id int, patch domain.CANFundingBudgetPatch) (domain.CANFundingBudget, error)
		CreateFundingReceived func(ctx context.Context, actor int, r domain.CANFundingReceived) (domain.CANFundingReceived, error)
	}
	Calls struct {
		Get                   kdbmock.CallLog[GetArgs]
		Create                kdbmock.CallLog[CreateArgs]
		Update                kdbmock.CallLog[UpdateArgs]
		CreateFundingBudget   kdbmock.CallLog[CreateFundingBudgetArgs]
		UpdateFundingBudget   kdbmock.CallLog[UpdateFundingBudgetArgs]
		CreateFundingReceived kdbmock.CallLog[CreateFundingReceivedArgs]
	}
}

var _ kdb.Interface = &CANInterface{}

func NewCANInterface() *CANInterface {
	return &CANInterface{}
}

func (m *CANInterface) Get(ctx context.Context, id int, fiscalYear int) (domain.CANDetail, error) {
	m.Calls.Get = append(m.Calls.Get, GetArgs{Id: id, FiscalYear: fiscalYear})
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, id, fiscalYear)
	}
	panic(errors.New("should not be called"))
}

func (m *CANInterface) Create(ctx context.Context, actor int, c domain.CAN) (domain.CAN, error) {
	m.Calls.Create = append(m.Calls.Create, CreateArgs{Actor: actor, CAN: c})
	if m.Impl.Create != nil {
		return m.Impl.Create(ctx, actor, c)
	}
	panic(errors.New("should not be called"))
}

func (m *CANInterface) Update(ctx context.Context, actor int, id int, patch domain.CANPatch) (domain.CAN, error) {
	m.Calls.Update = append(m.Calls.Update, UpdateArgs{Actor: actor, Id: id, Patch: patch})
	if m.Impl.Update != nil {
		return m.Impl.Update(ctx, actor, id, patch)
	}
	panic(errors.New("should not be called"))
}

func (m *CANInterface) CreateFundingBudget(ctx context.Context, actor int, b domain.CANFundingBudget) (domain.CANFundingBudget, error) {
	m.Calls.CreateFundingBudget = append(m.Calls.CreateFundingBudget, CreateFundingBudgetArgs{Actor: actor, Budget: b})
	if m.Impl.CreateFundingBudget != nil {
		return m.Impl.CreateFundingBudget(ctx, actor, b)
	}
	panic(errors.New("should not be called"))
}

func (m *CANInterface) UpdateFundingBudget(ctx context.Context, actor int, id int, patch domain.CANFundingBudgetPatch) (domain.CANFundingBudget, error) {
	m.Calls.UpdateFundingBudget = append(m.Calls.UpdateFundingBudget, UpdateFundingBudgetArgs{Actor: actor, Id: id, Patch: patch})
	if m.Impl.UpdateFundingBudget != nil {
		return m.Impl.UpdateFundingBudget(ctx, actor, id, patch)
	}
	panic(errors.New("should not be called"))
}

func (m *CANInterface) CreateFundingReceived(ctx context.Context, actor int, r domain.CANFundingReceived) (domain.CANFundingReceived, error) {
	m.Calls.CreateFundingReceived = append(m.Calls.CreateFundingReceived, CreateFundingReceivedArgs{Actor: actor, Received: r})
	if m.Impl.CreateFundingReceived != nil {
		return m.Impl.CreateFundingReceived(ctx, actor, r)
	}
	panic(errors.New("should not be called"))
}
