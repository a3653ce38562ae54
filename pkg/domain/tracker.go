package domain

import (
	"fmt"
	"slices"
	"time"

	domerr "github.com/opre/ops/pkg/domain/errors"
)

// ProcurementStepType names steps of a procurement, in the order they happen.
type ProcurementStepType string

const (
	AcquisitionPlanning ProcurementStepType = "ACQUISITION_PLANNING"
	PreSolicitation     ProcurementStepType = "PRE_SOLICITATION"
	Solicitation        ProcurementStepType = "SOLICITATION"
	Evaluation          ProcurementStepType = "EVALUATION"
	PreAward            ProcurementStepType = "PRE_AWARD"
	Award               ProcurementStepType = "AWARD"
)

// ProcurementSteps in order. Step numbers start at 1.
var ProcurementSteps = []ProcurementStepType{
	AcquisitionPlanning, PreSolicitation, Solicitation, Evaluation, PreAward, Award,
}

func AsProcurementStepType(s string) (ProcurementStepType, error) {
	t := ProcurementStepType(s)
	if slices.Contains(ProcurementSteps, t) {
		return t, nil
	}
	return "", fmt.Errorf("'%s' is not ProcurementStepType", s)
}

type ProcurementStepStatus string

const (
	TrackerStepPending   ProcurementStepStatus = "PENDING"
	TrackerStepActive    ProcurementStepStatus = "ACTIVE"
	TrackerStepCompleted ProcurementStepStatus = "COMPLETED"
)

func (s ProcurementStepStatus) String() string {
	return string(s)
}

func AsProcurementStepStatus(s string) (ProcurementStepStatus, error) {
	switch st := ProcurementStepStatus(s); st {
	case TrackerStepPending, TrackerStepActive, TrackerStepCompleted:
		return st, nil
	}
	return "", fmt.Errorf("'%s' is not ProcurementStepStatus", s)
}

type ProcurementTrackerStatus string

const (
	TrackerActive    ProcurementTrackerStatus = "ACTIVE"
	TrackerInactive  ProcurementTrackerStatus = "INACTIVE"
	TrackerCompleted ProcurementTrackerStatus = "COMPLETED"
)

func (s ProcurementTrackerStatus) String() string {
	return string(s)
}

func AsProcurementTrackerStatus(s string) (ProcurementTrackerStatus, error) {
	switch st := ProcurementTrackerStatus(s); st {
	case TrackerActive, TrackerInactive, TrackerCompleted:
		return st, nil
	}
	return "", fmt.Errorf("'%s' is not ProcurementTrackerStatus", s)
}

type ProcurementTrackerStep struct {
	Id                   int
	TrackerId            int
	Number               int
	Type                 ProcurementStepType
	Status               ProcurementStepStatus
	TargetCompletionDate Date
	DateCompleted        Date
	CompletedBy          *int
	Notes                string

	// only for SOLICITATION.
	SolicitationStart Date
	SolicitationEnd   Date

	// only for AWARD.
	AwardDate Date
}

func (s ProcurementTrackerStep) Snapshot() Record {
	return Record{
		"step_number":            s.Number,
		"step_type":              s.Type,
		"status":                 s.Status,
		"target_completion_date": s.TargetCompletionDate,
		"date_completed":         s.DateCompleted,
		"completed_by":           s.CompletedBy,
		"notes":                  s.Notes,
		"solicitation_start":     s.SolicitationStart,
		"solicitation_end":       s.SolicitationEnd,
		"award_date":             s.AwardDate,
	}
}

// ProcurementTracker follows the procurement of an agreement.
type ProcurementTracker struct {
	Id          int
	AgreementId int
	Status      ProcurementTrackerStatus

	// ActiveStep is the number of the ACTIVE step. 0 when no step is active.
	ActiveStep int
	Steps      []ProcurementTrackerStep
	CreatedBy  int
	CreatedOn  time.Time
	UpdatedOn  time.Time
}

func (t ProcurementTracker) Snapshot() Record {
	return Record{
		"agreement_id": t.AgreementId,
		"status":       t.Status,
		"active_step":  t.ActiveStep,
	}
}

// Step returns the step of the number.
func (t ProcurementTracker) Step(number int) (ProcurementTrackerStep, bool) {
	for _, s := range t.Steps {
		if s.Number == number {
			return s, true
		}
	}
	return ProcurementTrackerStep{}, false
}

func (t ProcurementTracker) clone() ProcurementTracker {
	t.Steps = slices.Clone(t.Steps)
	return t
}

func (t ProcurementTracker) indexOf(number int) int {
	return slices.IndexFunc(t.Steps, func(s ProcurementTrackerStep) bool { return s.Number == number })
}

// NewProcurementTracker builds a tracker whose first step is active.
func NewProcurementTracker(agreementId int, actor int, now time.Time) ProcurementTracker {
	steps := make([]ProcurementTrackerStep, 0, len(ProcurementSteps))
	for i, st := range ProcurementSteps {
		status := TrackerStepPending
		if i == 0 {
			status = TrackerStepActive
		}
		steps = append(steps, ProcurementTrackerStep{Number: i + 1, Type: st, Status: status})
	}
	return ProcurementTracker{
		AgreementId: agreementId,
		Status:      TrackerActive,
		ActiveStep:  1,
		Steps:       steps,
		CreatedBy:   actor,
		CreatedOn:   now,
		UpdatedOn:   now,
	}
}

// StepCompletion is what completing a step records.
type StepCompletion struct {
	CompletedBy       *int
	DateCompleted     Date
	Notes             string
	SolicitationStart Date
	SolicitationEnd   Date
	AwardDate         Date
}

// CompleteStep completes the active step and activates the next one.
//
// It returns true as the 2nd value when the AWARD step is completed. Then the tracker
// is COMPLETED.
//
// Errors:
//
// - ErrMissing: the tracker has no such step.
//
// - ErrInvalidStateChange: the tracker is not ACTIVE, or the step is not the active one.
//
// - ErrValidation: the completion lacks something the step requires.
func CompleteStep(
	t ProcurementTracker, number int, c StepCompletion, today Date, now time.Time,
) (ProcurementTracker, bool, error) {
	idx := t.indexOf(number)
	if idx < 0 {
		return t, false, fmt.Errorf(
			"%w: procurement tracker %d has no step %d", domerr.ErrMissing, t.Id, number,
		)
	}
	if t.Status != TrackerActive {
		return t, false, fmt.Errorf(
			"%w: procurement tracker %d is %s", domerr.ErrInvalidStateChange, t.Id, t.Status,
		)
	}
	step := t.Steps[idx]
	if step.Status != TrackerStepActive {
		return t, false, domerr.InvalidStateChange(
			fmt.Sprintf("procurement tracker %d step %d", t.Id, number),
			step.Status, TrackerStepCompleted,
		)
	}

	verr := domerr.NewValidationError()
	if c.CompletedBy == nil {
		verr.Add("completed_by", "must be set")
	}
	if c.DateCompleted.IsZero() {
		verr.Add("date_completed", "must be set")
	} else if c.DateCompleted.After(today) {
		verr.Add("date_completed", "must not be in the future")
	}
	switch step.Type {
	case Solicitation:
		start, end := c.SolicitationStart, c.SolicitationEnd
		if start.IsZero() {
			start = step.SolicitationStart
		}
		if end.IsZero() {
			end = step.SolicitationEnd
		}
		if start.IsZero() || end.IsZero() {
			verr.Add("solicitation_period", "must be set")
		} else if end.Before(start) {
			verr.Add("solicitation_period", "must not end before it starts")
		}
		step.SolicitationStart, step.SolicitationEnd = start, end
	case Award:
		if c.AwardDate.IsZero() {
			verr.Add("award_date", "must be set")
		}
		step.AwardDate = c.AwardDate
	}
	if err := verr.OrNil(); err != nil {
		return t, false, err
	}

	by := *c.CompletedBy
	step.CompletedBy = &by
	step.DateCompleted = c.DateCompleted
	if c.Notes != "" {
		step.Notes = c.Notes
	}
	step.Status = TrackerStepCompleted

	next := t.clone()
	next.Steps[idx] = step
	next.UpdatedOn = now

	if step.Type == Award || idx+1 == len(next.Steps) {
		next.Status = TrackerCompleted
		next.ActiveStep = 0
		return next, step.Type == Award, nil
	}
	next.Steps[idx+1].Status = TrackerStepActive
	next.ActiveStep = next.Steps[idx+1].Number
	return next, false, nil
}

// StepPatch is a partial update of a step not completed yet.
type StepPatch struct {
	TargetCompletionDate Field[Date]   `json:"target_completion_date"`
	Notes                Field[string] `json:"notes"`
	SolicitationStart    Field[Date]   `json:"solicitation_start"`
	SolicitationEnd      Field[Date]   `json:"solicitation_end"`
}

// UpdateStep edits a PENDING or ACTIVE step. Completed steps are locked.
func UpdateStep(t ProcurementTracker, number int, p StepPatch, now time.Time) (ProcurementTracker, error) {
	idx := t.indexOf(number)
	if idx < 0 {
		return t, fmt.Errorf(
			"%w: procurement tracker %d has no step %d", domerr.ErrMissing, t.Id, number,
		)
	}
	step := t.Steps[idx]
	if step.Status == TrackerStepCompleted {
		return t, fmt.Errorf(
			"%w: procurement tracker %d step %d is %s",
			domerr.ErrInvalidStateChange, t.Id, number, step.Status,
		)
	}

	if p.SolicitationStart.IsSet() || p.SolicitationEnd.IsSet() {
		if step.Type != Solicitation {
			verr := domerr.NewValidationError()
			verr.Add("solicitation_period", fmt.Sprintf("only %s step has it", Solicitation))
			return t, verr
		}
	}

	if p.TargetCompletionDate.IsSet() {
		step.TargetCompletionDate = deref(p.TargetCompletionDate.Value())
	}
	if p.Notes.IsSet() {
		step.Notes = deref(p.Notes.Value())
	}
	if p.SolicitationStart.IsSet() {
		step.SolicitationStart = deref(p.SolicitationStart.Value())
	}
	if p.SolicitationEnd.IsSet() {
		step.SolicitationEnd = deref(p.SolicitationEnd.Value())
	}
	if !step.SolicitationStart.IsZero() && !step.SolicitationEnd.IsZero() &&
		step.SolicitationEnd.Before(step.SolicitationStart) {
		verr := domerr.NewValidationError()
		verr.Add("solicitation_period", "must not end before it starts")
		return t, verr
	}

	next := t.clone()
	next.Steps[idx] = step
	next.UpdatedOn = now
	return next, nil
}

// SetActive switches a tracker between ACTIVE and INACTIVE. COMPLETED trackers do not change.
func SetActive(t ProcurementTracker, active bool, now time.Time) (ProcurementTracker, error) {
	to := TrackerInactive
	if active {
		to = TrackerActive
	}
	if t.Status == TrackerCompleted {
		return t, domerr.InvalidStateChange(
			fmt.Sprintf("procurement tracker %d", t.Id), t.Status, to,
		)
	}
	if t.Status == to {
		return t, nil
	}
	t = t.clone()
	t.Status = to
	t.UpdatedOn = now
	return t, nil
}

// Award is the procurement action recorded when the AWARD step completes.
func (t ProcurementTracker) Award(procurementShopId *int, actor int, now time.Time) (ProcurementAction, error) {
	step, ok := t.Step(len(ProcurementSteps))
	if !ok || step.Type != Award || step.Status != TrackerStepCompleted {
		return ProcurementAction{}, fmt.Errorf(
			"%w: procurement tracker %d is not awarded", domerr.ErrInvalidStateChange, t.Id,
		)
	}
	return ProcurementAction{
		AgreementId:       t.AgreementId,
		AwardType:         NewAward,
		Status:            ActionAwarded,
		AwardDate:         step.AwardDate,
		ProcurementShopId: procurementShopId,
		CreatedBy:         actor,
		CreatedOn:         now,
	}, nil
}
