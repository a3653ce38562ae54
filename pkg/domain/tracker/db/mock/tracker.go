package mocks

import (
	"context"
	"errors"

	"github.com/opre/ops/pkg/domain"
	kdbmock "github.com/opre/ops/pkg/domain/internal/db/mock"
	kdb "github.com/opre/ops/pkg/domain/tracker/db"
)

type CompleteStepArgs struct {
	Actor      int
	TrackerId  int
	StepNumber int
	Completion domain.StepCompletion
}

type UpdateStepArgs struct {
	Actor      int
	TrackerId  int
	StepNumber int
	Patch      domain.StepPatch
}

type SetActiveArgs struct {
	Actor     int
	TrackerId int
	Active    bool
}

type TrackerInterface struct {
	Impl struct {
		GetByAgreement func(ctx context.Context, agreementId int) (domain.ProcurementTracker, error)
		CompleteStep   func(ctx context.Context, actor int, trackerId int, stepNumber int, completion domain.StepCompletion) (domain.StepCompleted, error)
		UpdateStep     func(ctx context.Context, actor int, trackerId int, stepNumber int, patch domain.StepPatch) (domain.ProcurementTracker, error)
		SetActive      func(ctx context.Context, actor int, trackerId int, active bool) (domain.ProcurementTracker, error)
	}
	Calls struct {
		GetByAgreement kdbmock.CallLog[int]
		CompleteStep   kdbmock.CallLog[CompleteStepArgs]
		UpdateStep     kdbmock.CallLog[UpdateStepArgs]
		SetActive      kdbmock.CallLog[SetActiveArgs]
	}
}

var _ kdb.Interface = &TrackerInterface{}

func NewTrackerInterface() *TrackerInterface {
	return &TrackerInterface{}
}

func (m *TrackerInterface) GetByAgreement(ctx context.Context, agreementId int) (domain.ProcurementTracker, error) {
	m.Calls.GetByAgreement = append(m.Calls.GetByAgreement, agreementId)
	if m.Impl.GetByAgreement != nil {
		return m.Impl.GetByAgreement(ctx, agreementId)
	}
	panic(errors.New("should not be called"))
}

func (m *TrackerInterface) CompleteStep(ctx context.Context, actor int, trackerId int, stepNumber int, completion domain.StepCompletion) (domain.StepCompleted, error) {
	m.Calls.CompleteStep = append(m.Calls.CompleteStep, CompleteStepArgs{
		Actor: actor, TrackerId: trackerId, StepNumber: stepNumber, Completion: completion,
	})
	if m.Impl.CompleteStep != nil {
		return m.Impl.CompleteStep(ctx, actor, trackerId, stepNumber, completion)
	}
	panic(errors.New("should not be called"))
}

func (m *TrackerInterface) UpdateStep(ctx context.Context, actor int, trackerId int, stepNumber int, patch domain.StepPatch) (domain.ProcurementTracker, error) {
	m.Calls.UpdateStep = append(m.Calls.UpdateStep, UpdateStepArgs{
		Actor: actor, TrackerId: trackerId, StepNumber: stepNumber, Patch: patch,
	})
	if m.Impl.UpdateStep != nil {
		return m.Impl.UpdateStep(ctx, actor, trackerId, stepNumber, patch)
	}
	panic(errors.New("should not be called"))
}

func (m *TrackerInterface) SetActive(ctx context.Context, actor int, trackerId int, active bool) (domain.ProcurementTracker, error) {
	m.Calls.SetActive = append(m.Calls.SetActive, SetActiveArgs{Actor: actor, TrackerId: trackerId, Active: active})
	if m.Impl.SetActive != nil {
		return m.Impl.SetActive(ctx, actor, trackerId, active)
	}
	panic(errors.New("should not be called"))
}
