package wfsvc

import (
	"time"

	wfmodels "cornerstone_crm/internal/api/workflow/models"
)

// ResolveNextStep xác định step kế tiếp sau khi một step đã thực thi xong.
// Thứ tự phân giải:
//  1. go_to: nhảy vô điều kiện tới target, bỏ qua branch và next_step_id.
//  2. end: kết thúc workflow.
//  3. Branch tag khớp với một branch có tên trên step.
//  4. next_step_id tường minh trên step.
//  5. Step kế tiếp theo vị trí trong mảng steps.
//  6. Không còn gì: kết thúc (nil, -1).
func ResolveNextStep(workflow *wfmodels.Workflow, step *wfmodels.WorkflowStep, stepIndex int, branchTaken string) (*wfmodels.WorkflowStep, int) {
	if step.Type == wfmodels.StepGoTo {
		if step.GoTo == nil {
			return nil, -1
		}
		return workflow.FindStep(step.GoTo.TargetStepID)
	}

	if step.Type == wfmodels.StepEnd {
		return nil, -1
	}

	if branchTaken != "" {
		if targetID, ok := step.Branches[branchTaken]; ok && targetID != "" {
			return workflow.FindStep(targetID)
		}
	}

	if step.NextStepID != "" {
		return workflow.FindStep(step.NextStepID)
	}

	if stepIndex >= 0 && stepIndex+1 < len(workflow.Steps) {
		return &workflow.Steps[stepIndex+1], stepIndex + 1
	}

	return nil, -1
}

// ComputeDueTime tính thời điểm sớm nhất step được phép chạy (Unix ms).
// Step wait tiêu thụ delay ngay lúc lên lịch: due = now + duration theo unit
// (unit mặc định days, duration mặc định 1). Step khác due = now + 1s để giữ
// thứ tự tăng dần chặt chẽ giữa các lần advance.
func ComputeDueTime(step *wfmodels.WorkflowStep, now time.Time) int64 {
	if step == nil {
		return now.UnixMilli()
	}
	if step.Type != wfmodels.StepWait {
		return now.Add(time.Second).UnixMilli()
	}

	duration := 1
	unit := "days"
	if step.Wait != nil {
		if step.Wait.Duration > 0 {
			duration = step.Wait.Duration
		}
		if step.Wait.Unit != "" {
			unit = step.Wait.Unit
		}
	}

	var delta time.Duration
	switch unit {
	case "minutes":
		delta = time.Duration(duration) * time.Minute
	case "hours":
		delta = time.Duration(duration) * time.Hour
	case "weeks":
		delta = time.Duration(duration) * 7 * 24 * time.Hour
	default: // days
		delta = time.Duration(duration) * 24 * time.Hour
	}
	return now.Add(delta).UnixMilli()
}
