package workflows

import "time"

type Approvers struct {
	UserIds []int    `json:"users"`
	Roles   []string `json:"roles"`
}

type Step struct {
	Id        int        `json:"id"`
	Index     int        `json:"index"`
	Name      string     `json:"name"`
	Type      string     `json:"workflow_step_type"`
	Status    string     `json:"status"`
	Approvers Approvers  `json:"approvers"`
	DecidedBy *int       `json:"decided_by"`
	DecidedOn *time.Time `json:"decided_on"`
	Notes     string     `json:"notes"`
}

type Instance struct {
	Id          int       `json:"id"`
	TemplateId  int       `json:"workflow_template_id"`
	Action      string    `json:"workflow_action"`
	TriggerType string    `json:"workflow_trigger_type"`
	TriggerId   int       `json:"associated_id"`
	Status      string    `json:"workflow_status"`
	CurrentStep int       `json:"current_step"`
	Steps       []Step    `json:"steps"`
	CreatedBy   int       `json:"created_by"`
	CreatedOn   time.Time `json:"created_on"`
	UpdatedOn   time.Time `json:"updated_on"`
}

type ResubmitRequest struct {
	Notes string `json:"notes"`
}
