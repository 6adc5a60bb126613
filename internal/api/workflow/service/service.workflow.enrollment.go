package wfsvc

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	wfmodels "cornerstone_crm/internal/api/workflow/models"
	"cornerstone_crm/internal/common"
	"cornerstone_crm/internal/delivery/channels"
	"cornerstone_crm/internal/logger"
)

// Engine là enrollment lifecycle manager: tạo enrollment, advance từng step,
// complete / fail / exit. Orchestrator cấp cao nhất của workflow engine.
type Engine struct {
	store     EngineStore
	mailer    channels.Mailer
	smsSender channels.SmsSender
}

// NewEngine tạo engine với persistence port và các delivery channel.
func NewEngine(store EngineStore, mailer channels.Mailer, smsSender channels.SmsSender) *Engine {
	return &Engine{
		store:     store,
		mailer:    mailer,
		smsSender: smsSender,
	}
}

// Enroll tạo enrollment mới cho contact trong workflow.
// Fail closed khi: workflow không active, đã chạm enrollment limit, hoặc
// contact còn enrollment chưa kết thúc mà workflow không cho re-enroll.
// Enroll thành công tăng enrolledCount bằng $inc atomic.
func (e *Engine) Enroll(ctx context.Context, workflowID, contactID primitive.ObjectID, triggerData map[string]interface{}) (*wfmodels.WorkflowEnrollment, error) {
	workflow, err := e.store.GetWorkflow(ctx, workflowID)
	if err != nil {
		return nil, err
	}

	if workflow.Status != wfmodels.WorkflowStatusActive {
		return nil, common.NewError(common.ErrCodeBusinessState,
			"Workflow không ở trạng thái active", common.StatusConflict, nil)
	}
	if workflow.Settings.EnrollmentLimit > 0 && workflow.EnrolledCount >= workflow.Settings.EnrollmentLimit {
		return nil, common.NewError(common.ErrCodeBusinessState,
			"Workflow đã chạm giới hạn enrollment", common.StatusConflict, nil)
	}
	if len(workflow.Steps) == 0 {
		return nil, common.NewError(common.ErrCodeBusinessState,
			"Workflow không có step nào", common.StatusConflict, nil)
	}
	if !workflow.Settings.AllowReEnrollment {
		open, err := e.store.HasOpenEnrollment(ctx, workflowID, contactID)
		if err != nil {
			return nil, err
		}
		if open {
			return nil, common.NewError(common.ErrCodeBusinessState,
				"Contact đã có enrollment chưa kết thúc trong workflow này", common.StatusConflict, nil)
		}
	}

	now := time.Now()
	firstStep := &workflow.Steps[0]
	enrollment := wfmodels.WorkflowEnrollment{
		WorkflowID:          workflowID,
		ContactID:           contactID,
		Status:              wfmodels.EnrollmentStatusActive,
		CurrentStepID:       firstStep.StepID,
		CurrentStepIndex:    0,
		EnrolledAt:          now.UnixMilli(),
		NextStepAt:          ComputeDueTime(firstStep, now),
		TriggerData:         triggerData,
		StepHistory:         []wfmodels.StepExecution{},
		OwnerOrganizationID: workflow.OwnerOrganizationID,
	}

	created, err := e.store.InsertEnrollment(ctx, enrollment)
	if err != nil {
		return nil, err
	}

	if err := e.store.IncWorkflowCounter(ctx, workflowID, "enrolledCount", 1); err != nil {
		logger.LogWorkflow("enrolled_count_inc_failed", workflowID.Hex(), created.ID.Hex(),
			map[string]interface{}{"error": err.Error()})
	}

	logger.LogWorkflow("enrolled", workflowID.Hex(), created.ID.Hex(), map[string]interface{}{
		"contact_id": contactID.Hex(),
		"first_step": firstStep.StepID,
	})
	return created, nil
}

// ProcessStep là entry point advance mỗi tick, được worker gọi cho từng
// enrollment đã đến hạn. Trả về true nếu enrollment thực sự được advance.
//
// Enrollment không active là no-op. Contact hoặc step hiện tại không tồn tại
// là lỗi fatal chuyển enrollment sang failed. Mọi panic trong quá trình xử lý
// được recover và chuyển thành transition failed, engine không bao giờ để
// enrollment kẹt ở trạng thái không nhất quán vì một lỗi không bắt được.
//
// An toàn at-least-once: mọi write đều guard theo status=active và
// currentStepId; hai lời gọi song song cho cùng enrollment thì lời gọi thua
// guard trở thành no-op.
func (e *Engine) ProcessStep(ctx context.Context, enrollmentID primitive.ObjectID) (advanced bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			reason := fmt.Sprintf("panic khi xử lý step: %v", r)
			e.failEnrollment(ctx, enrollmentID, "", nil, reason)
			logger.LogWorkflow("process_panic", "", enrollmentID.Hex(),
				map[string]interface{}{"panic": fmt.Sprintf("%v", r)})
			advanced = false
			err = nil
		}
	}()

	enrollment, err := e.store.GetEnrollment(ctx, enrollmentID)
	if err != nil {
		return false, err
	}
	if enrollment.Status != wfmodels.EnrollmentStatusActive {
		return false, nil
	}

	workflow, err := e.store.GetWorkflow(ctx, enrollment.WorkflowID)
	if err != nil {
		e.failEnrollment(ctx, enrollmentID, "", nil, "Workflow không tồn tại")
		return false, nil
	}
	if workflow.Status != wfmodels.WorkflowStatusActive {
		// Workflow pause thì enrollment đứng yên, đến hạn lại ở tick sau
		return false, nil
	}

	contact, err := e.store.GetContact(ctx, enrollment.ContactID)
	if err != nil {
		e.failEnrollment(ctx, enrollmentID, "", nil, "Contact không tồn tại")
		return false, nil
	}

	step, stepIndex := workflow.FindStep(enrollment.CurrentStepID)
	if step == nil {
		e.failEnrollment(ctx, enrollmentID, "", nil,
			fmt.Sprintf("Step không tồn tại trong workflow: %s", enrollment.CurrentStepID))
		return false, nil
	}

	now := time.Now()

	// Step wait đã được phục vụ bởi chính nextStepAt vừa trôi qua: ghi nhận
	// skipped, nhảy qua nó trong cùng tick. Wait nối tiếp wait thì chỉ lên
	// lịch wait kế, không thực thi gì thêm.
	if step.Type == wfmodels.StepWait {
		waitExec := &wfmodels.StepExecution{
			StepID:      step.StepID,
			StepType:    step.Type,
			StartedAt:   now.UnixMilli(),
			CompletedAt: now.UnixMilli(),
			Status:      wfmodels.StepExecStatusSkipped,
		}

		next, nextIndex := ResolveNextStep(workflow, step, stepIndex, "")
		if next == nil {
			return e.completeEnrollment(ctx, enrollment, step.StepID, waitExec, now)
		}
		if next.Type == wfmodels.StepWait {
			ok, err := e.store.AdvanceEnrollment(ctx, enrollmentID, step.StepID, waitExec, map[string]interface{}{
				"currentStepId":    next.StepID,
				"currentStepIndex": nextIndex,
				"nextStepAt":       ComputeDueTime(next, now),
			}, nil)
			return ok, err
		}

		ok, err := e.store.AdvanceEnrollment(ctx, enrollmentID, step.StepID, waitExec, map[string]interface{}{
			"currentStepId":    next.StepID,
			"currentStepIndex": nextIndex,
			"nextStepAt":       now.UnixMilli(),
		}, nil)
		if err != nil || !ok {
			return false, err
		}
		step, stepIndex = next, nextIndex
	}

	startedAt := time.Now()
	result, execErr := e.ExecuteStep(ctx, workflow, step, contact)
	if execErr != nil {
		// Step type lạ hoặc lỗi cứng thoát khỏi executor: transition failed
		failedExec := &wfmodels.StepExecution{
			StepID:      step.StepID,
			StepType:    step.Type,
			StartedAt:   startedAt.UnixMilli(),
			CompletedAt: time.Now().UnixMilli(),
			Status:      wfmodels.StepExecStatusFailed,
			Error:       execErr.Error(),
		}
		e.failEnrollment(ctx, enrollmentID, step.StepID, failedExec, execErr.Error())
		return false, nil
	}

	execStatus := wfmodels.StepExecStatusCompleted
	if !result.Success {
		execStatus = wfmodels.StepExecStatusFailed
	}
	exec := &wfmodels.StepExecution{
		StepID:      step.StepID,
		StepType:    step.Type,
		StartedAt:   startedAt.UnixMilli(),
		CompletedAt: time.Now().UnixMilli(),
		Status:      execStatus,
		Result:      result.Data,
		Error:       result.Error,
		BranchTaken: result.BranchTaken,
	}

	// Best-effort: action thất bại vẫn advance sang step kế tiếp.
	// Chỉ lỗi thoát khỏi executor mới dừng workflow (xem failEnrollment ở trên).
	next, nextIndex := ResolveNextStep(workflow, step, stepIndex, result.BranchTaken)
	if next == nil {
		return e.completeEnrollment(ctx, enrollment, step.StepID, exec, time.Now())
	}

	ok, err := e.store.AdvanceEnrollment(ctx, enrollmentID, step.StepID, exec, map[string]interface{}{
		"currentStepId":    next.StepID,
		"currentStepIndex": nextIndex,
		"nextStepAt":       ComputeDueTime(next, time.Now()),
	}, nil)
	if err != nil {
		return false, err
	}
	if ok {
		logger.LogWorkflow("advanced", workflow.ID.Hex(), enrollmentID.Hex(), map[string]interface{}{
			"executed_step": step.StepID,
			"next_step":     next.StepID,
			"exec_status":   execStatus,
		})
	}
	return ok, nil
}

// completeEnrollment kết thúc enrollment thành công và tăng completedCount.
func (e *Engine) completeEnrollment(ctx context.Context, enrollment *wfmodels.WorkflowEnrollment, guardStepID string, exec *wfmodels.StepExecution, now time.Time) (bool, error) {
	ok, err := e.store.AdvanceEnrollment(ctx, enrollment.ID, guardStepID, exec, map[string]interface{}{
		"status":      wfmodels.EnrollmentStatusCompleted,
		"completedAt": now.UnixMilli(),
	}, []string{"nextStepAt"})
	if err != nil || !ok {
		return false, err
	}

	if err := e.store.IncWorkflowCounter(ctx, enrollment.WorkflowID, "completedCount", 1); err != nil {
		logger.LogWorkflow("completed_count_inc_failed", enrollment.WorkflowID.Hex(), enrollment.ID.Hex(),
			map[string]interface{}{"error": err.Error()})
	}

	logger.LogWorkflow("completed", enrollment.WorkflowID.Hex(), enrollment.ID.Hex(), nil)
	return true, nil
}

// failEnrollment chuyển enrollment sang failed với thông điệp lỗi.
// Guard theo status=active: enrollment đã terminal thì đây là no-op.
func (e *Engine) failEnrollment(ctx context.Context, enrollmentID primitive.ObjectID, guardStepID string, exec *wfmodels.StepExecution, reason string) {
	ok, err := e.store.AdvanceEnrollment(ctx, enrollmentID, guardStepID, exec, map[string]interface{}{
		"status":        wfmodels.EnrollmentStatusFailed,
		"failureReason": reason,
	}, []string{"nextStepAt"})
	if err != nil {
		logger.LogWorkflow("fail_transition_error", "", enrollmentID.Hex(),
			map[string]interface{}{"error": err.Error(), "reason": reason})
		return
	}
	if ok {
		logger.LogWorkflow("failed", "", enrollmentID.Hex(),
			map[string]interface{}{"reason": reason})
	}
}

// Exit kết thúc hành chính một enrollment đang active.
// Conditional update: thua race với một ProcessStep đang complete/fail
// cùng enrollment thì trở thành no-op (trả về false).
func (e *Engine) Exit(ctx context.Context, enrollmentID primitive.ObjectID, reason string) (bool, error) {
	ok, err := e.store.ExitEnrollmentIfActive(ctx, enrollmentID, reason, time.Now().UnixMilli())
	if err != nil {
		return false, err
	}
	if ok {
		logger.LogWorkflow("exited", "", enrollmentID.Hex(),
			map[string]interface{}{"reason": reason})
	}
	return ok, nil
}

// ProcessDue xử lý một batch enrollment đã đến hạn. Trả về số enrollment
// được advance. Lỗi từng enrollment được log và bỏ qua, không chặn batch.
func (e *Engine) ProcessDue(ctx context.Context, batchSize int64) (int, error) {
	due, err := e.store.ListDueEnrollments(ctx, time.Now().UnixMilli(), batchSize)
	if err != nil {
		return 0, err
	}

	processed := 0
	for i := range due {
		ok, err := e.ProcessStep(ctx, due[i].ID)
		if err != nil {
			logger.LogWorkflow("process_error", due[i].WorkflowID.Hex(), due[i].ID.Hex(),
				map[string]interface{}{"error": err.Error()})
			continue
		}
		if ok {
			processed++
		}
	}
	return processed, nil
}
