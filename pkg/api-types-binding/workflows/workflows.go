package workflows

import (
	apiwf "github.com/opre/ops/pkg/api/types/workflows"
	"github.com/opre/ops/pkg/domain"
	"github.com/opre/ops/pkg/utils"
)

func ComposeStep(s domain.WorkflowStepInstance) apiwf.Step {
	userIds := s.ApproverUserIds
	if userIds == nil {
		userIds = []int{}
	}
	return apiwf.Step{
		Id:     s.Id,
		Index:  s.Index,
		Name:   s.Name,
		Type:   string(s.Type),
		Status: s.Status.String(),
		Approvers: apiwf.Approvers{
			UserIds: userIds,
			Roles:   utils.Map(s.ApproverRoles, domain.Role.String),
		},
		DecidedBy: s.DecidedBy,
		DecidedOn: s.DecidedOn,
		Notes:     s.Notes,
	}
}

func Compose(w domain.WorkflowInstance) apiwf.Instance {
	return apiwf.Instance{
		Id:          w.Id,
		TemplateId:  w.TemplateId,
		Action:      w.Action.String(),
		TriggerType: string(w.TriggerType),
		TriggerId:   w.TriggerId,
		Status:      w.Status.String(),
		CurrentStep: w.CurrentStep,
		Steps:       utils.Map(w.Steps, ComposeStep),
		CreatedBy:   w.CreatedBy,
		CreatedOn:   w.CreatedOn,
		UpdatedOn:   w.UpdatedOn,
	}
}
