package wfsvc

import (
	"testing"

	wfmodels "cornerstone_crm/internal/api/workflow/models"
)

// ValidateDefinition là hàm thuần trên struct, không chạm DB nên test được
// với service zero value.
func validatorService() *WorkflowService {
	return &WorkflowService{}
}

func validDefinition() *wfmodels.Workflow {
	return &wfmodels.Workflow{
		Name: "Welcome",
		Trigger: wfmodels.Trigger{
			Type: wfmodels.TriggerContactCreated,
		},
		Steps: []wfmodels.WorkflowStep{
			{
				StepID: "mail",
				Type:   wfmodels.StepSendEmail,
				Email:  &wfmodels.EmailStepConfig{Subject: "Chào mừng", Body: "Xin chào {{first_name}}"},
			},
			{StepID: "het", Type: wfmodels.StepEnd},
		},
	}
}

func TestValidateDefinition_Valid(t *testing.T) {
	if err := validatorService().ValidateDefinition(validDefinition()); err != nil {
		t.Fatalf("định nghĩa hợp lệ không được trả lỗi: %v", err)
	}
}

func TestValidateDefinition_InvalidTriggerType(t *testing.T) {
	wf := validDefinition()
	wf.Trigger.Type = "moon_phase_changed"
	if err := validatorService().ValidateDefinition(wf); err == nil {
		t.Fatal("trigger type lạ phải bị từ chối")
	}
}

func TestValidateDefinition_DuplicateStepID(t *testing.T) {
	wf := validDefinition()
	wf.Steps[1].StepID = "mail"
	if err := validatorService().ValidateDefinition(wf); err == nil {
		t.Fatal("step id trùng phải bị từ chối")
	}
}

func TestValidateDefinition_DanglingNextStepID(t *testing.T) {
	wf := validDefinition()
	wf.Steps[0].NextStepID = "khong_ton_tai"
	if err := validatorService().ValidateDefinition(wf); err == nil {
		t.Fatal("next_step_id trỏ tới step không tồn tại phải bị từ chối")
	}
}

func TestValidateDefinition_DanglingBranchTarget(t *testing.T) {
	wf := validDefinition()
	wf.Steps[0].Branches = map[string]string{"yes": "khong_ton_tai"}
	if err := validatorService().ValidateDefinition(wf); err == nil {
		t.Fatal("branch trỏ tới step không tồn tại phải bị từ chối")
	}
}

func TestValidateDefinition_DanglingGoToTarget(t *testing.T) {
	wf := validDefinition()
	wf.Steps = append(wf.Steps, wfmodels.WorkflowStep{
		StepID: "nhay",
		Type:   wfmodels.StepGoTo,
		GoTo:   &wfmodels.GoToStepConfig{TargetStepID: "khong_ton_tai"},
	})
	if err := validatorService().ValidateDefinition(wf); err == nil {
		t.Fatal("go_to trỏ tới step không tồn tại phải bị từ chối")
	}
}

func TestValidateDefinition_MissingEmailConfig(t *testing.T) {
	wf := validDefinition()
	wf.Steps[0].Email = &wfmodels.EmailStepConfig{Subject: "Chào mừng"}
	if err := validatorService().ValidateDefinition(wf); err == nil {
		t.Fatal("step send_email thiếu body phải bị từ chối")
	}
}

func TestValidateDefinition_InvalidConditionOperator(t *testing.T) {
	wf := validDefinition()
	wf.Steps = append(wf.Steps, wfmodels.WorkflowStep{
		StepID: "check",
		Type:   wfmodels.StepCondition,
		Condition: &wfmodels.ConditionStepConfig{
			Conditions: []wfmodels.Condition{
				{Field: "email", Operator: "matches_regex", Value: ".*"},
			},
		},
	})
	if err := validatorService().ValidateDefinition(wf); err == nil {
		t.Fatal("operator lạ trong condition step phải bị từ chối")
	}
}

func TestValidateDefinition_SplitPercentageSum(t *testing.T) {
	wf := validDefinition()
	wf.Steps = append(wf.Steps, wfmodels.WorkflowStep{
		StepID: "chia",
		Type:   wfmodels.StepSplit,
		Split: &wfmodels.SplitStepConfig{
			SplitType: "percentage",
			Variants: []wfmodels.SplitVariant{
				{VariantID: "a", Percentage: 60},
				{VariantID: "b", Percentage: 30},
			},
		},
	})
	if err := validatorService().ValidateDefinition(wf); err == nil {
		t.Fatal("tổng trọng số variant khác 100 phải bị từ chối")
	}

	// Tổng đúng 100 thì hợp lệ
	wf.Steps[len(wf.Steps)-1].Split.Variants[1].Percentage = 40
	if err := validatorService().ValidateDefinition(wf); err != nil {
		t.Fatalf("tổng trọng số bằng 100 phải hợp lệ: %v", err)
	}
}

func TestValidateDefinition_TriggerConditions(t *testing.T) {
	wf := validDefinition()
	wf.Trigger.Config.Conditions = []wfmodels.Condition{
		{Field: "", Operator: wfmodels.OperatorEquals, Value: "x"},
	}
	if err := validatorService().ValidateDefinition(wf); err == nil {
		t.Fatal("condition trigger thiếu field phải bị từ chối")
	}
}
