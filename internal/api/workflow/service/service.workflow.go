package wfsvc

import (
	"context"
	"fmt"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	basesvc "cornerstone_crm/internal/api/base/service"
	wfmodels "cornerstone_crm/internal/api/workflow/models"
	"cornerstone_crm/internal/common"
	"cornerstone_crm/internal/global"
)

// WorkflowService xử lý logic định nghĩa workflow (wf_workflows):
// validate cấu trúc steps, chuyển trạng thái draft / active / paused / archived.
type WorkflowService struct {
	*basesvc.BaseServiceMongoImpl[wfmodels.Workflow]
	enrollmentService *basesvc.BaseServiceMongoImpl[wfmodels.WorkflowEnrollment]
}

// NewWorkflowService tạo WorkflowService mới.
func NewWorkflowService() (*WorkflowService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Workflows)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Workflows, common.ErrNotFound)
	}
	enrollColl, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Enrollments)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Enrollments, common.ErrNotFound)
	}
	return &WorkflowService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[wfmodels.Workflow](coll),
		enrollmentService:    basesvc.NewBaseServiceMongo[wfmodels.WorkflowEnrollment](enrollColl),
	}, nil
}

var validTriggerTypes = map[string]bool{
	wfmodels.TriggerContactCreated:   true,
	wfmodels.TriggerTagAdded:         true,
	wfmodels.TriggerTagRemoved:       true,
	wfmodels.TriggerDealCreated:      true,
	wfmodels.TriggerDealStageChanged: true,
	wfmodels.TriggerFormSubmitted:    true,
}

var validStepTypes = map[string]bool{
	wfmodels.StepSendEmail:        true,
	wfmodels.StepSendSms:          true,
	wfmodels.StepAddTag:           true,
	wfmodels.StepRemoveTag:        true,
	wfmodels.StepUpdateField:      true,
	wfmodels.StepCreateTask:       true,
	wfmodels.StepCreateDeal:       true,
	wfmodels.StepSendNotification: true,
	wfmodels.StepWait:             true,
	wfmodels.StepCondition:        true,
	wfmodels.StepSplit:            true,
	wfmodels.StepGoTo:             true,
	wfmodels.StepEnd:              true,
}

var validOperators = map[string]bool{
	wfmodels.OperatorEquals: true, wfmodels.OperatorNotEquals: true,
	wfmodels.OperatorContains: true, wfmodels.OperatorNotContains: true,
	wfmodels.OperatorStartsWith: true, wfmodels.OperatorEndsWith: true,
	wfmodels.OperatorGreaterThan: true, wfmodels.OperatorLessThan: true,
	wfmodels.OperatorIsEmpty: true, wfmodels.OperatorIsNotEmpty: true,
	wfmodels.OperatorIn: true, wfmodels.OperatorNotIn: true,
}

func validationError(message string) error {
	return common.NewError(common.ErrCodeValidationFormat, message, common.StatusBadRequest, nil)
}

// ValidateDefinition kiểm tra tính hợp lệ cấu trúc của workflow:
// trigger type và operator nằm trong tập đóng, step id duy nhất,
// mọi tham chiếu branch / next_step_id / go_to trỏ tới step tồn tại,
// config bắt buộc theo từng step type.
func (s *WorkflowService) ValidateDefinition(workflow *wfmodels.Workflow) error {
	if !validTriggerTypes[workflow.Trigger.Type] {
		return validationError(fmt.Sprintf("Trigger type không hợp lệ: %q", workflow.Trigger.Type))
	}
	if err := validateConditions(workflow.Trigger.Config.Conditions); err != nil {
		return err
	}

	stepIDs := map[string]bool{}
	for i := range workflow.Steps {
		step := &workflow.Steps[i]
		if step.StepID == "" {
			return validationError(fmt.Sprintf("Step thứ %d thiếu step_id", i+1))
		}
		if stepIDs[step.StepID] {
			return validationError(fmt.Sprintf("Step id bị trùng: %q", step.StepID))
		}
		stepIDs[step.StepID] = true
		if !validStepTypes[step.Type] {
			return validationError(fmt.Sprintf("Step %q có type không hợp lệ: %q", step.StepID, step.Type))
		}
	}

	for i := range workflow.Steps {
		step := &workflow.Steps[i]
		if step.NextStepID != "" && !stepIDs[step.NextStepID] {
			return validationError(fmt.Sprintf("Step %q trỏ next_step_id tới step không tồn tại: %q", step.StepID, step.NextStepID))
		}
		for branch, target := range step.Branches {
			if target != "" && !stepIDs[target] {
				return validationError(fmt.Sprintf("Step %q branch %q trỏ tới step không tồn tại: %q", step.StepID, branch, target))
			}
		}
		if err := validateStepConfig(step, stepIDs); err != nil {
			return err
		}
	}
	return nil
}

func validateStepConfig(step *wfmodels.WorkflowStep, stepIDs map[string]bool) error {
	switch step.Type {
	case wfmodels.StepSendEmail:
		if step.Email == nil || step.Email.Subject == "" || step.Email.Body == "" {
			return validationError(fmt.Sprintf("Step %q thiếu subject hoặc body email", step.StepID))
		}
	case wfmodels.StepSendSms:
		if step.Sms == nil || step.Sms.Body == "" {
			return validationError(fmt.Sprintf("Step %q thiếu nội dung sms", step.StepID))
		}
	case wfmodels.StepAddTag, wfmodels.StepRemoveTag:
		if step.Tag == nil || len(step.Tag.TagIDs) == 0 {
			return validationError(fmt.Sprintf("Step %q thiếu danh sách tag", step.StepID))
		}
	case wfmodels.StepUpdateField:
		if step.Field == nil || step.Field.Field == "" {
			return validationError(fmt.Sprintf("Step %q thiếu tên field cần cập nhật", step.StepID))
		}
	case wfmodels.StepCreateTask:
		if step.Task == nil || step.Task.Title == "" {
			return validationError(fmt.Sprintf("Step %q thiếu tiêu đề task", step.StepID))
		}
	case wfmodels.StepCreateDeal:
		if step.Deal == nil || step.Deal.PipelineID == "" || step.Deal.StageID == "" || step.Deal.Title == "" {
			return validationError(fmt.Sprintf("Step %q thiếu pipeline, stage hoặc tiêu đề deal", step.StepID))
		}
	case wfmodels.StepSendNotification:
		if step.Notify == nil || len(step.Notify.Recipients) == 0 {
			return validationError(fmt.Sprintf("Step %q thiếu danh sách người nhận", step.StepID))
		}
	case wfmodels.StepCondition:
		if step.Condition == nil || len(step.Condition.Conditions) == 0 {
			return validationError(fmt.Sprintf("Step %q thiếu điều kiện", step.StepID))
		}
		if err := validateConditions(step.Condition.Conditions); err != nil {
			return err
		}
	case wfmodels.StepSplit:
		if step.Split == nil || len(step.Split.Variants) == 0 {
			return validationError(fmt.Sprintf("Step %q thiếu danh sách variant", step.StepID))
		}
		if step.Split.SplitType == "percentage" {
			total := 0.0
			for _, variant := range step.Split.Variants {
				total += variant.Percentage
			}
			if math.Abs(total-100) > 0.01 {
				return validationError(fmt.Sprintf("Step %q có tổng trọng số variant là %.2f, phải bằng 100", step.StepID, total))
			}
		}
	case wfmodels.StepGoTo:
		if step.GoTo == nil || step.GoTo.TargetStepID == "" {
			return validationError(fmt.Sprintf("Step %q thiếu target_step_id", step.StepID))
		}
		if !stepIDs[step.GoTo.TargetStepID] {
			return validationError(fmt.Sprintf("Step %q trỏ go_to tới step không tồn tại: %q", step.StepID, step.GoTo.TargetStepID))
		}
	}
	return nil
}

func validateConditions(conditions []wfmodels.Condition) error {
	for _, condition := range conditions {
		if condition.Field == "" {
			return validationError("Condition thiếu field")
		}
		if !validOperators[condition.Operator] {
			return validationError(fmt.Sprintf("Operator không hợp lệ: %q", condition.Operator))
		}
	}
	return nil
}

// Create tạo workflow mới ở trạng thái draft với counter về 0.
func (s *WorkflowService) Create(ctx context.Context, workflow wfmodels.Workflow) (*wfmodels.Workflow, error) {
	if err := s.ValidateDefinition(&workflow); err != nil {
		return nil, err
	}
	workflow.Status = wfmodels.WorkflowStatusDraft
	workflow.EnrolledCount = 0
	workflow.CompletedCount = 0

	created, err := s.InsertOne(ctx, workflow)
	if err != nil {
		return nil, err
	}
	return &created, nil
}

// transition đổi trạng thái workflow trong phạm vi organization,
// chỉ khi trạng thái hiện tại nằm trong tập cho phép.
func (s *WorkflowService) transition(ctx context.Context, id, orgID primitive.ObjectID, from []string, to string) (*wfmodels.Workflow, error) {
	workflow, err := s.FindOne(ctx, bson.M{"_id": id, "ownerOrganizationId": orgID}, nil)
	if err != nil {
		return nil, err
	}
	allowed := false
	for _, status := range from {
		if workflow.Status == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, common.NewError(common.ErrCodeBusinessState,
			fmt.Sprintf("Không thể chuyển workflow từ %q sang %q", workflow.Status, to), common.StatusConflict, nil)
	}

	updated, err := s.UpdateOne(ctx, bson.M{"_id": id, "ownerOrganizationId": orgID},
		&basesvc.UpdateData{Set: bson.M{"status": to}}, nil)
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// Activate kích hoạt workflow từ draft hoặc paused. Workflow phải có ít
// nhất một step và định nghĩa phải qua validation đầy đủ.
func (s *WorkflowService) Activate(ctx context.Context, id, orgID primitive.ObjectID) (*wfmodels.Workflow, error) {
	workflow, err := s.FindOne(ctx, bson.M{"_id": id, "ownerOrganizationId": orgID}, nil)
	if err != nil {
		return nil, err
	}
	if len(workflow.Steps) == 0 {
		return nil, validationError("Workflow phải có ít nhất một step trước khi kích hoạt")
	}
	if err := s.ValidateDefinition(&workflow); err != nil {
		return nil, err
	}
	return s.transition(ctx, id, orgID,
		[]string{wfmodels.WorkflowStatusDraft, wfmodels.WorkflowStatusPaused}, wfmodels.WorkflowStatusActive)
}

// Pause tạm dừng workflow đang active. Enrollment đang chạy đứng yên tại
// chỗ cho đến khi workflow active trở lại.
func (s *WorkflowService) Pause(ctx context.Context, id, orgID primitive.ObjectID) (*wfmodels.Workflow, error) {
	return s.transition(ctx, id, orgID,
		[]string{wfmodels.WorkflowStatusActive}, wfmodels.WorkflowStatusPaused)
}

// Archive lưu trữ workflow từ bất kỳ trạng thái nào chưa archived và exit
// toàn bộ enrollment còn active của nó.
func (s *WorkflowService) Archive(ctx context.Context, id, orgID primitive.ObjectID) (*wfmodels.Workflow, error) {
	archived, err := s.transition(ctx, id, orgID,
		[]string{wfmodels.WorkflowStatusDraft, wfmodels.WorkflowStatusActive, wfmodels.WorkflowStatusPaused},
		wfmodels.WorkflowStatusArchived)
	if err != nil {
		return nil, err
	}

	_, err = s.enrollmentService.UpdateMany(ctx,
		bson.M{"workflowId": id, "status": wfmodels.EnrollmentStatusActive},
		&basesvc.UpdateData{
			Set: bson.M{
				"status":     wfmodels.EnrollmentStatusExited,
				"exitReason": "workflow_archived",
				"exitedAt":   time.Now().UnixMilli(),
			},
			Unset: bson.M{"nextStepAt": ""},
		}, nil)
	if err != nil {
		return nil, err
	}
	return archived, nil
}

// EnrollmentService đọc dữ liệu enrollment (wf_enrollments) cho API.
// Ghi enrollment là việc riêng của Engine.
type EnrollmentService struct {
	*basesvc.BaseServiceMongoImpl[wfmodels.WorkflowEnrollment]
}

// NewEnrollmentService tạo EnrollmentService mới.
func NewEnrollmentService() (*EnrollmentService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Enrollments)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Enrollments, common.ErrNotFound)
	}
	return &EnrollmentService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[wfmodels.WorkflowEnrollment](coll),
	}, nil
}
