package wfsvc

import (
	"context"
	"fmt"
	"math/rand"

	crmmodels "cornerstone_crm/internal/api/crm/models"
	wfmodels "cornerstone_crm/internal/api/workflow/models"
	"cornerstone_crm/internal/utility"
)

// ExecuteStep điều phối một step tới action handler tương ứng theo type.
// condition / split được đánh giá tại chỗ và trả về BranchTaken thay vì ủy quyền.
// wait / go_to / end là no-op (ngữ nghĩa của chúng nằm ở scheduler).
// Step type không nằm trong tập đóng là lỗi cứng thoát khỏi executor,
// ProcessStep chuyển lỗi đó thành transition failed.
func (e *Engine) ExecuteStep(ctx context.Context, workflow *wfmodels.Workflow, step *wfmodels.WorkflowStep, contact *crmmodels.Contact) (*ActionResult, error) {
	switch step.Type {
	case wfmodels.StepSendEmail:
		return e.sendEmail(ctx, step.Email, contact), nil
	case wfmodels.StepSendSms:
		return e.sendSms(ctx, step.Sms, contact), nil
	case wfmodels.StepAddTag:
		return e.applyTags(ctx, step.Tag, contact, false), nil
	case wfmodels.StepRemoveTag:
		return e.applyTags(ctx, step.Tag, contact, true), nil
	case wfmodels.StepUpdateField:
		return e.updateField(ctx, step.Field, contact), nil
	case wfmodels.StepCreateTask:
		return e.createTask(ctx, step.Task, workflow, contact), nil
	case wfmodels.StepCreateDeal:
		return e.createDeal(ctx, step.Deal, workflow, contact), nil
	case wfmodels.StepSendNotification:
		return e.sendNotification(ctx, step.Notify, workflow, contact), nil
	case wfmodels.StepCondition:
		return e.evaluateConditionStep(step.Condition, contact), nil
	case wfmodels.StepSplit:
		return e.evaluateSplitStep(step.Split), nil
	case wfmodels.StepWait, wfmodels.StepGoTo, wfmodels.StepEnd:
		return &ActionResult{Success: true}, nil
	}
	return nil, fmt.Errorf("step type không được hỗ trợ: %q", step.Type)
}

// evaluateConditionStep đánh giá condition trên contact, trả về branch "yes"/"no".
func (e *Engine) evaluateConditionStep(cfg *wfmodels.ConditionStepConfig, contact *crmmodels.Contact) *ActionResult {
	if cfg == nil {
		return actionFailure("Condition step is missing its configuration")
	}

	record, err := utility.ToMap(contact)
	if err != nil {
		return actionFailure(fmt.Sprintf("Condition evaluation failed: %v", err))
	}

	branch := "no"
	if EvaluateConditions(cfg.Logic, cfg.Conditions, record) {
		branch = "yes"
	}
	return &ActionResult{
		Success:     true,
		BranchTaken: branch,
		Data:        map[string]interface{}{"matched": branch == "yes"},
	}
}

// evaluateSplitStep chọn một variant.
// splitType "percentage": một lần rút thăm trong [0,100), duyệt variant cộng
// dồn trọng số, chọn variant đầu tiên có tổng tích lũy >= giá trị rút thăm;
// sai số làm tròn khiến không variant nào khớp thì rơi về variant cuối.
// Loại khác: random đều theo index.
func (e *Engine) evaluateSplitStep(cfg *wfmodels.SplitStepConfig) *ActionResult {
	if cfg == nil || len(cfg.Variants) == 0 {
		return actionFailure("No split variants configured")
	}

	var chosen wfmodels.SplitVariant
	if cfg.SplitType == "percentage" {
		draw := rand.Float64() * 100
		cumulative := 0.0
		chosen = cfg.Variants[len(cfg.Variants)-1]
		for _, variant := range cfg.Variants {
			cumulative += variant.Percentage
			if cumulative >= draw {
				chosen = variant
				break
			}
		}
	} else {
		chosen = cfg.Variants[rand.Intn(len(cfg.Variants))]
	}

	return &ActionResult{
		Success:     true,
		BranchTaken: chosen.VariantID,
		Data:        map[string]interface{}{"variantId": chosen.VariantID},
	}
}
