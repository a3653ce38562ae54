package trackers

import (
	bindbli "github.com/opre/ops/pkg/api-types-binding/budgetlineitems"
	apitrackers "github.com/opre/ops/pkg/api/types/trackers"
	"github.com/opre/ops/pkg/domain"
	"github.com/opre/ops/pkg/utils"
)

func ComposeStep(s domain.ProcurementTrackerStep) apitrackers.Step {
	return apitrackers.Step{
		Id:                   s.Id,
		Number:               s.Number,
		Type:                 string(s.Type),
		Status:               s.Status.String(),
		TargetCompletionDate: s.TargetCompletionDate,
		DateCompleted:        s.DateCompleted,
		CompletedBy:          s.CompletedBy,
		Notes:                s.Notes,
		SolicitationStart:    s.SolicitationStart,
		SolicitationEnd:      s.SolicitationEnd,
		AwardDate:            s.AwardDate,
	}
}

func Compose(t domain.ProcurementTracker) apitrackers.Tracker {
	return apitrackers.Tracker{
		Id:          t.Id,
		AgreementId: t.AgreementId,
		Status:      t.Status.String(),
		ActiveStep:  t.ActiveStep,
		Steps:       utils.Map(t.Steps, ComposeStep),
		CreatedBy:   t.CreatedBy,
		CreatedOn:   t.CreatedOn,
		UpdatedOn:   t.UpdatedOn,
	}
}

func ComposeAction(a domain.ProcurementAction) apitrackers.ProcurementAction {
	return apitrackers.ProcurementAction{
		Id:                a.Id,
		AgreementId:       a.AgreementId,
		AwardType:         string(a.AwardType),
		Status:            string(a.Status),
		AwardDate:         a.AwardDate,
		ProcurementShopId: a.ProcurementShopId,
		CreatedBy:         a.CreatedBy,
		CreatedOn:         a.CreatedOn,
	}
}

func ComposeStepCompleted(sc domain.StepCompleted) apitrackers.StepCompleted {
	out := apitrackers.StepCompleted{
		Tracker:   Compose(sc.Tracker),
		Obligated: utils.Map(sc.Obligated, bindbli.Compose),
	}
	if sc.Award != nil {
		a := ComposeAction(*sc.Award)
		out.ProcurementAction = &a
	}
	return out
}

// AsCompletion converts a completion request.
func AsCompletion(req apitrackers.CompleteRequest) domain.StepCompletion {
	return domain.StepCompletion{
		CompletedBy:       req.CompletedBy,
		DateCompleted:     req.DateCompleted,
		Notes:             req.Notes,
		SolicitationStart: req.SolicitationStart,
		SolicitationEnd:   req.SolicitationEnd,
		AwardDate:         req.AwardDate,
	}
}
