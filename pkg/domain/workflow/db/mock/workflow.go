package mocks

import (
	"context"
	"errors"

	"github.com/opre/ops/pkg/domain"
	kdbmock "github.com/opre/ops/pkg/domain/internal/db/mock"
	kdb "github.com/opre/ops/pkg/domain/workflow/db"
)

type ResubmitArgs struct {
	Actor int
	Id    int
	Notes string
}

type WorkflowInterface struct {
	Impl struct {
		Get      func(ctx context.Context, id int) (domain.WorkflowInstance, error)
		Resubmit func(ctx context.Context, actor int, id int, notes string) (domain.WorkflowInstance, error)
	}
	Calls struct {
		Get      kdbmock.CallLog[int]
		Resubmit kdbmock.CallLog[ResubmitArgs]
	}
}

var _ kdb.Interface = &WorkflowInterface{}

func NewWorkflowInterface() *WorkflowInterface {
	return &WorkflowInterface{}
}

func (m *WorkflowInterface) Get(ctx context.Context, id int) (domain.WorkflowInstance, error) {
	m.Calls.Get = append(m.Calls.Get, id)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, id)
	}
	panic(errors.New("should not be called"))
}

func (m *WorkflowInterface) Resubmit(ctx context.Context, actor int, id int, notes string) (domain.WorkflowInstance, error) {
	m.Calls.Resubmit = append(m.Calls.Resubmit, ResubmitArgs{Actor: actor, Id: id, Notes: notes})
	if m.Impl.Resubmit != nil {
		return m.Impl.Resubmit(ctx, actor, id, notes)
	}
	panic(errors.New("should not be called"))
}
