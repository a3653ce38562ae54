package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgtype"
	"github.com/jackc/pgx/v4"
	kpool "github.com/opre/ops/pkg/conn/db/postgres/pool"
	"github.com/opre/ops/pkg/domain"
	domerr "github.com/opre/ops/pkg/domain/errors"
	xepg "github.com/opre/ops/pkg/domain/errors/dberrors/postgres"
	xe "github.com/opre/ops/pkg/errors"
)

// TrackerKey selects a tracker by its id or by its agreement. Exactly one should be set.
type TrackerKey struct {
	Id          int
	AgreementId int
}

func (k TrackerKey) String() string {
	if k.Id != 0 {
		return fmt.Sprintf("id = %d", k.Id)
	}
	return fmt.Sprintf("agreement_id = %d", k.AgreementId)
}

// GetTracker returns a procurement tracker with its steps, or Missing.
// When lock is true, the tracker is locked for update.
func GetTracker(ctx context.Context, conn kpool.Queryer, key TrackerKey, lock bool) (domain.ProcurementTracker, error) {
	t := domain.ProcurementTracker{}
	var status string
	err := conn.QueryRow(
		ctx,
		`
		select "id", "agreement_id", "status", "active_step", "created_by", "created_on", "updated_on"
		from "procurement_tracker"
		where ($1 <> 0 and "id" = $1) or ($2 <> 0 and "agreement_id" = $2)
		`+forUpdate(lock),
		key.Id, key.AgreementId,
	).Scan(&t.Id, &t.AgreementId, &status, &t.ActiveStep, &t.CreatedBy, &t.CreatedOn, &t.UpdatedOn)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ProcurementTracker{}, xe.Wrap(xepg.Missing{Table: "procurement_tracker", Identity: key.String()})
	}
	if err != nil {
		return domain.ProcurementTracker{}, xe.Wrap(err)
	}
	if t.Status, err = domain.AsProcurementTrackerStatus(status); err != nil {
		return domain.ProcurementTracker{}, xe.Wrap(err)
	}

	rows, err := conn.Query(
		ctx,
		`
		select
			"id", "procurement_tracker_id", "step_number", "step_type", "status",
			"target_completion_date", "date_completed", "completed_by", "notes",
			"solicitation_start", "solicitation_end", "award_date"
		from "procurement_tracker_step"
		where "procurement_tracker_id" = $1
		order by "step_number"
		`,
		t.Id,
	)
	if err != nil {
		return domain.ProcurementTracker{}, xe.Wrap(err)
	}
	defer rows.Close()

	for rows.Next() {
		s := domain.ProcurementTrackerStep{}
		var stepType, stepStatus string
		var target, completed, solStart, solEnd, award pgtype.Date
		if err := rows.Scan(
			&s.Id, &s.TrackerId, &s.Number, &stepType, &stepStatus,
			&target, &completed, &s.CompletedBy, &s.Notes,
			&solStart, &solEnd, &award,
		); err != nil {
			return domain.ProcurementTracker{}, xe.Wrap(err)
		}
		if s.Type, err = domain.AsProcurementStepType(stepType); err != nil {
			return domain.ProcurementTracker{}, xe.Wrap(err)
		}
		if s.Status, err = domain.AsProcurementStepStatus(stepStatus); err != nil {
			return domain.ProcurementTracker{}, xe.Wrap(err)
		}
		s.TargetCompletionDate = AsDate(target)
		s.DateCompleted = AsDate(completed)
		s.SolicitationStart = AsDate(solStart)
		s.SolicitationEnd = AsDate(solEnd)
		s.AwardDate = AsDate(award)
		t.Steps = append(t.Steps, s)
	}
	return t, xe.Wrap(rows.Err())
}

// InsertTracker creates a tracker with its steps, and returns it with ids.
func InsertTracker(ctx context.Context, conn kpool.Queryer, t domain.ProcurementTracker) (domain.ProcurementTracker, error) {
	if err := conn.QueryRow(
		ctx,
		`
		insert into "procurement_tracker"
			("agreement_id", "status", "active_step", "created_by", "created_on", "updated_on")
		values ($1, $2, $3, $4, $5, $6)
		returning "id"
		`,
		t.AgreementId, string(t.Status), t.ActiveStep, t.CreatedBy, t.CreatedOn, t.UpdatedOn,
	).Scan(&t.Id); err != nil {
		return domain.ProcurementTracker{}, xe.Wrap(xepg.Translate(err))
	}

	steps := make([]domain.ProcurementTrackerStep, 0, len(t.Steps))
	for _, s := range t.Steps {
		s.TrackerId = t.Id
		if err := conn.QueryRow(
			ctx,
			`
			insert into "procurement_tracker_step" (
				"procurement_tracker_id", "step_number", "step_type", "status",
				"target_completion_date", "date_completed", "completed_by", "notes",
				"solicitation_start", "solicitation_end", "award_date"
			)
			values ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
			returning "id"
			`,
			s.TrackerId, s.Number, string(s.Type), string(s.Status),
			Date(s.TargetCompletionDate), Date(s.DateCompleted), s.CompletedBy, s.Notes,
			Date(s.SolicitationStart), Date(s.SolicitationEnd), Date(s.AwardDate),
		).Scan(&s.Id); err != nil {
			return domain.ProcurementTracker{}, xe.Wrap(xepg.Translate(err))
		}
		steps = append(steps, s)
	}
	t.Steps = steps
	return t, nil
}

// UpdateTracker writes the tracker and its steps.
func UpdateTracker(ctx context.Context, conn kpool.Queryer, t domain.ProcurementTracker) error {
	if _, err := conn.Exec(
		ctx,
		`
		update "procurement_tracker"
		set "status" = $2, "active_step" = $3, "updated_on" = $4
		where "id" = $1
		`,
		t.Id, string(t.Status), t.ActiveStep, t.UpdatedOn,
	); err != nil {
		return xe.Wrap(err)
	}
	for _, s := range t.Steps {
		if _, err := conn.Exec(
			ctx,
			`
			update "procurement_tracker_step"
			set
				"status" = $2, "target_completion_date" = $3, "date_completed" = $4,
				"completed_by" = $5, "notes" = $6,
				"solicitation_start" = $7, "solicitation_end" = $8, "award_date" = $9
			where "id" = $1
			`,
			s.Id, string(s.Status), Date(s.TargetCompletionDate), Date(s.DateCompleted),
			s.CompletedBy, s.Notes,
			Date(s.SolicitationStart), Date(s.SolicitationEnd), Date(s.AwardDate),
		); err != nil {
			return xe.Wrap(xepg.Translate(err))
		}
	}
	return nil
}

// EnsureTracker returns the tracker of the agreement, creating an ACTIVE one when missing.
//
// An INACTIVE tracker is activated. The second value is true when the tracker was created
// or changed.
//
// A COMPLETED tracker has nothing left to obligate new items, so it is ErrConflict.
func EnsureTracker(ctx context.Context, rec *Recorder, agreementId int) (domain.ProcurementTracker, bool, error) {
	tx := rec.Tx()
	t, err := GetTracker(ctx, tx, TrackerKey{AgreementId: agreementId}, true)
	if err == nil {
		switch t.Status {
		case domain.TrackerCompleted:
			return t, false, domerr.Conflict(
				"procurement of agreement %d is completed; no more items can go into execution", agreementId,
			)
		case domain.TrackerActive:
			return t, false, nil
		}
		next, err := domain.SetActive(t, true, rec.Now())
		if err != nil {
			return t, false, err
		}
		if err := UpdateTracker(ctx, tx, next); err != nil {
			return t, false, err
		}
		if _, err := rec.Updated(ctx, domain.ClassProcurementTracker, next.Id, t, next); err != nil {
			return t, false, err
		}
		return next, true, nil
	}
	if !errors.Is(err, domerr.ErrMissing) {
		return domain.ProcurementTracker{}, false, err
	}

	t, err = InsertTracker(ctx, tx, domain.NewProcurementTracker(agreementId, rec.Actor(), rec.Now()))
	if err != nil {
		return domain.ProcurementTracker{}, false, err
	}
	if err := rec.New(ctx, domain.ClassProcurementTracker, t.Id, t); err != nil {
		return domain.ProcurementTracker{}, false, err
	}
	return t, true, nil
}
