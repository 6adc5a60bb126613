package wfdto

import (
	wfmodels "cornerstone_crm/internal/api/workflow/models"
)

// WorkflowCreateInput đầu vào tạo workflow. Workflow mới luôn ở trạng thái draft.
type WorkflowCreateInput struct {
	Name        string                    `json:"name" validate:"required,no_xss"`
	Description string                    `json:"description" validate:"omitempty,no_xss"`
	Trigger     wfmodels.Trigger          `json:"trigger" validate:"required"`
	Steps       []wfmodels.WorkflowStep   `json:"steps" validate:"omitempty"`
	Settings    wfmodels.WorkflowSettings `json:"settings" validate:"omitempty"`
}

// WorkflowUpdateInput đầu vào cập nhật workflow (partial).
type WorkflowUpdateInput struct {
	Name        string                     `json:"name" validate:"omitempty,no_xss"`
	Description *string                    `json:"description,omitempty" validate:"omitempty,no_xss"`
	Trigger     *wfmodels.Trigger          `json:"trigger,omitempty" validate:"omitempty"`
	Steps       []wfmodels.WorkflowStep    `json:"steps,omitempty" validate:"omitempty"`
	Settings    *wfmodels.WorkflowSettings `json:"settings,omitempty" validate:"omitempty"`
}

// WorkflowEnrollInput đầu vào enroll thủ công một contact.
type WorkflowEnrollInput struct {
	ContactID string `json:"contactId" validate:"required"`
}

// EnrollmentExitInput đầu vào exit một enrollment.
type EnrollmentExitInput struct {
	Reason string `json:"reason" validate:"omitempty,no_xss"`
}
