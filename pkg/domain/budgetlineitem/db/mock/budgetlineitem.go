package mocks

import (
	"context"
	"errors"

	"github.com/opre/ops/pkg/domain"
	kdb "github.com/opre/ops/pkg/domain/budgetlineitem/db"
	kdbmock "github.com/opre/ops/pkg/domain/internal/db/mock"
)

type CreateArgs struct {
	Actor       int
	AgreementId int
	Patch       domain.BudgetLineItemPatch
}

type UpdateArgs struct {
	Actor int
	Id    int
	Patch domain.BudgetLineItemPatch
	Notes string
}

type DeleteArgs struct {
	Actor int
	Id    int
}

type BudgetLineItemInterface struct {
	Impl struct {
		Get    func(ctx context.Context, id int) (domain.PricedBudgetLineItem, error)
		Create func(ctx context.Context, actor int, agreementId int, patch domain.BudgetLineItemPatch) (domain.BudgetLineItem, error)
		Update func(ctx context.Context, actor int, id int, patch domain.BudgetLineItemPatch, notes string) (domain.BudgetLineItemUpdate, error)
		Delete func(ctx context.Context, actor int, id int) error
	}
	Calls struct {
		Get    kdbmock.CallLog[int]
		Create kdbmock.CallLog[CreateArgs]
		Update kdbmock.CallLog[UpdateArgs]
		Delete kdbmock.CallLog[DeleteArgs]
	}
}

var _ kdb.Interface = &BudgetLineItemInterface{}

func NewBudgetLineItemInterface() *BudgetLineItemInterface {
	return &BudgetLineItemInterface{}
}

func (m *BudgetLineItemInterface) Get(ctx context.Context, id int) (domain.PricedBudgetLineItem, error) {
	m.Calls.Get = append(m.Calls.Get, id)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, id)
	}
	panic(errors.New("should not be called"))
}

func (m *BudgetLineItemInterface) Create(ctx context.Context, actor int, agreementId int, patch domain.BudgetLineItemPatch) (domain.BudgetLineItem, error) {
	m.Calls.Create = append(m.Calls.Create, CreateArgs{Actor: actor, AgreementId: agreementId, Patch: patch})
	if m.Impl.Create != nil {
		return m.Impl.Create(ctx, actor, agreementId, patch)
	}
	panic(errors.New("should not be called"))
}

func (m *BudgetLineItemInterface) Update(ctx context.Context, actor int, id int, patch domain.BudgetLineItemPatch, notes string) (domain.BudgetLineItemUpdate, error) {
	m.Calls.Update = append(m.Calls.Update, UpdateArgs{Actor: actor, Id: id, Patch: patch, Notes: notes})
	if m.Impl.Update != nil {
		return m.Impl.Update(ctx, actor, id, patch, notes)
	}
	panic(errors.New("should not be called"))
}

func (m *BudgetLineItemInterface) Delete(ctx context.Context, actor int, id int) error {
	m.Calls.Delete = append(m.Calls.Delete, DeleteArgs{Actor: actor, Id: id})
	if m.Impl.Delete != nil {
		return m.Impl.Delete(ctx, actor, id)
	}
	panic(errors.New("should not be called"))
}
