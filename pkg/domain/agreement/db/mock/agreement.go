package mocks

import (
	"context"
	"errors"

	"github.com/opre/ops/pkg/domain"
	kdb "github.com/opre/ops/pkg/domain/agreement/db"
	kdbmock "github.com/opre/ops/pkg/domain/internal/db/mock"
)

type UpdateArgs struct {
	Actor int
	Id    int
	Patch domain.AgreementPatch
	Notes string
}

type SubmitStatusChangeArgs struct {
	Actor       int
	AgreementId int
	BliIds      []int
	Target      domain.BudgetLineItemStatus
	Notes       string
}

type AgreementInterface struct {
	Impl struct {
		Get                func(ctx context.Context, id int) (domain.AgreementDetail, error)
		Update             func(ctx context.Context, actor int, id int, patch domain.AgreementPatch, notes string) (domain.AgreementUpdate, error)
		SubmitStatusChange func(ctx context.Context, actor int, agreementId int, bliIds []int, target domain.BudgetLineItemStatus, notes string) ([]domain.ChangeRequest, error)
	}
	Calls struct {
		Get                kdbmock.CallLog[int]
		Update             kdbmock.CallLog[UpdateArgs]
		SubmitStatusChange kdbmock.CallLog[SubmitStatusChangeArgs]
	}
}

var _ kdb.Interface = &AgreementInterface{}

func NewAgreementInterface() *AgreementInterface {
	return &AgreementInterface{}
}

func (m *AgreementInterface) Get(ctx context.Context, id int) (domain.AgreementDetail, error) {
	m.Calls.Get = append(m.Calls.Get, id)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, id)
	}
	panic(errors.New("should not be called"))
}

func (m *AgreementInterface) Update(ctx context.Context, actor int, id int, patch domain.AgreementPatch, notes string) (domain.AgreementUpdate, error) {
	m.Calls.Update = append(m.Calls.Update, UpdateArgs{Actor: actor, Id: id, Patch: patch, Notes: notes})
	if m.Impl.Update != nil {
		return m.Impl.Update(ctx, actor, id, patch, notes)
	}
	panic(errors.New("should not be called"))
}

func (m *AgreementInterface) SubmitStatusChange(
	ctx context.Context, actor int, agreementId int, bliIds []int,
	target domain.BudgetLineItemStatus, notes string,
) ([]domain.ChangeRequest, error) {
	m.Calls.SubmitStatusChange = append(m.Calls.SubmitStatusChange, SubmitStatusChangeArgs{
		Actor: actor, AgreementId: agreementId, BliIds: bliIds, Target: target, Notes: notes,
	})
	if m.Impl.SubmitStatusChange != nil {
		return m.Impl.SubmitStatusChange(ctx, actor, agreementId, bliIds, target, notes)
	}
	panic(errors.New("should not be called"))
}
