package mocks

import (
	"context"
	"errors"

	"github.com/opre/ops/pkg/domain"
	kdb "github.com/opre/ops/pkg/domain/changerequest/db"
	kdbmock "github.com/opre/ops/pkg/domain/internal/db/mock"
)

type ReviewArgs struct {
	Reviewer int
	Id       int
	Decision domain.ReviewDecision
	Notes    string
}

type ReviewAllArgs struct {
	Reviewer int
	Ids      []int
	Decision domain.ReviewDecision
	Notes    string
}

type ChangeRequestInterface struct {
	Impl struct {
		Get       func(ctx context.Context, id int) (domain.ChangeRequest, error)
		Find      func(ctx context.Context, q kdb.Query) ([]domain.ChangeRequest, error)
		Review    func(ctx context.Context, reviewer int, id int, decision domain.ReviewDecision, notes string) (domain.Review, error)
		ReviewAll func(ctx context.Context, reviewer int, ids []int, decision domain.ReviewDecision, notes string) []domain.ReviewResult
	}
	Calls struct {
		Get       kdbmock.CallLog[int]
		Find      kdbmock.CallLog[kdb.Query]
		Review    kdbmock.CallLog[ReviewArgs]
		ReviewAll kdbmock.CallLog[ReviewAllArgs]
	}
}

var _ kdb.Interface = &ChangeRequestInterface{}

func NewChangeRequestInterface() *ChangeRequestInterface {
	return &ChangeRequestInterface{}
}

func (m *ChangeRequestInterface) Get(ctx context.Context, id int) (domain.ChangeRequest, error) {
	m.Calls.Get = append(m.Calls.Get, id)
	if m.Impl.Get != nil {
		return m.Impl.Get(ctx, id)
	}
	panic(errors.New("should not be called"))
}

func (m *ChangeRequestInterface) Find(ctx context.Context, q kdb.Query) ([]domain.ChangeRequest, error) {
	m.Calls.Find = append(m.Calls.Find, q)
	if m.Impl.Find != nil {
		return m.Impl.Find(ctx, q)
	}
	panic(errors.New("should not be called"))
}

func (m *ChangeRequestInterface) Review(ctx context.Context, reviewer int, id int, decision domain.ReviewDecision, notes string) (domain.Review, error) {
	m.Calls.Review = append(m.Calls.Review, ReviewArgs{Reviewer: reviewer, Id: id, Decision: decision, Notes: notes})
	if m.Impl.Review != nil {
		return m.Impl.Review(ctx, reviewer, id, decision, notes)
	}
	panic(errors.New("should not be called"))
}

func (m *ChangeRequestInterface) ReviewAll(ctx context.Context, reviewer int, ids []int, decision domain.ReviewDecision, notes string) []domain.ReviewResult {
	m.Calls.ReviewAll = append(m.Calls.ReviewAll, ReviewAllArgs{Reviewer: reviewer, Ids: ids, Decision: decision, Notes: notes})
	if m.Impl.ReviewAll != nil {
		return m.Impl.ReviewAll(ctx, reviewer, ids, decision, notes)
	}
	panic(errors.New("should not be called"))
}
