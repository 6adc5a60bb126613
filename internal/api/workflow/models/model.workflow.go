// Package wfmodels định nghĩa model cho workflow automation engine.
package wfmodels

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái lifecycle của workflow. Chỉ workflow active mới nhận enrollment mới.
const (
	WorkflowStatusDraft    = "draft"
	WorkflowStatusActive   = "active"
	WorkflowStatusPaused   = "paused"
	WorkflowStatusArchived = "archived"
)

// Các loại trigger engine hỗ trợ.
const (
	TriggerContactCreated   = "contact_created"
	TriggerTagAdded         = "tag_added"
	TriggerTagRemoved       = "tag_removed"
	TriggerDealCreated      = "deal_created"
	TriggerDealStageChanged = "deal_stage_changed"
	TriggerFormSubmitted    = "form_submitted"
)

// Các loại step. Tập đóng: executor switch exhaustive trên danh sách này,
// step type lạ là lỗi cứng chứ không phải no-op.
const (
	StepSendEmail        = "send_email"
	StepSendSms          = "send_sms"
	StepAddTag           = "add_tag"
	StepRemoveTag        = "remove_tag"
	StepUpdateField      = "update_field"
	StepCreateTask       = "create_task"
	StepCreateDeal       = "create_deal"
	StepSendNotification = "send_notification"
	StepWait             = "wait"
	StepCondition        = "condition"
	StepSplit            = "split"
	StepGoTo             = "go_to"
	StepEnd              = "end"
)

// Logic kết hợp điều kiện.
const (
	ConditionLogicAnd = "and"
	ConditionLogicOr  = "or"
)

// Tập đóng các operator của condition evaluator.
const (
	OperatorEquals      = "equals"
	OperatorNotEquals   = "not_equals"
	OperatorContains    = "contains"
	OperatorNotContains = "not_contains"
	OperatorStartsWith  = "starts_with"
	OperatorEndsWith    = "ends_with"
	OperatorGreaterThan = "greater_than"
	OperatorLessThan    = "less_than"
	OperatorIsEmpty     = "is_empty"
	OperatorIsNotEmpty  = "is_not_empty"
	OperatorIn          = "in"
	OperatorNotIn       = "not_in"
)

// Condition một predicate trên field của contact.
// Field hỗ trợ path chấm một cấp (vd: customFields.budget_min).
type Condition struct {
	Field    string      `json:"field" bson:"field"`
	Operator string      `json:"operator" bson:"operator"`
	Value    interface{} `json:"value,omitempty" bson:"value,omitempty"`
}

// TriggerConfig cấu hình matching theo từng loại trigger.
// Field nào không liên quan tới loại trigger thì để rỗng.
type TriggerConfig struct {
	TagID       string      `json:"tagId,omitempty" bson:"tagId,omitempty"`             // tag_added / tag_removed
	PipelineID  string      `json:"pipelineId,omitempty" bson:"pipelineId,omitempty"`   // deal_created / deal_stage_changed
	FromStageID string      `json:"fromStageId,omitempty" bson:"fromStageId,omitempty"` // deal_stage_changed (optional)
	ToStageID   string      `json:"toStageId,omitempty" bson:"toStageId,omitempty"`     // deal_stage_changed
	FormID      string      `json:"formId,omitempty" bson:"formId,omitempty"`           // form_submitted
	Logic       string      `json:"logic,omitempty" bson:"logic,omitempty"`             // and / or, mặc định and
	Conditions  []Condition `json:"conditions,omitempty" bson:"conditions,omitempty"`   // filter bổ sung trên contact
}

// Trigger mô tả điều kiện kích hoạt workflow.
type Trigger struct {
	Type   string        `json:"type" bson:"type"`
	Config TriggerConfig `json:"config" bson:"config"`
}

// EmailStepConfig cấu hình step send_email.
type EmailStepConfig struct {
	Subject string `json:"subject" bson:"subject"`
	Body    string `json:"body" bson:"body"`
}

// SmsStepConfig cấu hình step send_sms.
type SmsStepConfig struct {
	Body string `json:"body" bson:"body"`
}

// TagStepConfig cấu hình step add_tag / remove_tag.
type TagStepConfig struct {
	TagIDs []string `json:"tagIds" bson:"tagIds"`
}

// FieldStepConfig cấu hình step update_field.
type FieldStepConfig struct {
	Field string      `json:"field" bson:"field"`
	Value interface{} `json:"value" bson:"value"`
}

// TaskStepConfig cấu hình step create_task.
// AssignedTo: user id hex, "owner" (người phụ trách contact) hoặc rỗng.
type TaskStepConfig struct {
	Title       string `json:"title" bson:"title"`
	Description string `json:"description,omitempty" bson:"description,omitempty"`
	Priority    string `json:"priority,omitempty" bson:"priority,omitempty"`
	DueInDays   int    `json:"dueInDays,omitempty" bson:"dueInDays,omitempty"`
	AssignedTo  string `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
}

// DealStepConfig cấu hình step create_deal.
type DealStepConfig struct {
	PipelineID string  `json:"pipelineId" bson:"pipelineId"`
	StageID    string  `json:"stageId" bson:"stageId"`
	Title      string  `json:"title" bson:"title"`
	Value      float64 `json:"value,omitempty" bson:"value,omitempty"`
	AssignedTo string  `json:"assignedTo,omitempty" bson:"assignedTo,omitempty"`
}

// NotifyStepConfig cấu hình step send_notification.
// Recipients: danh sách user id hex hoặc "owner".
type NotifyStepConfig struct {
	Recipients []string `json:"recipients" bson:"recipients"`
	NotifyType string   `json:"notifyType,omitempty" bson:"notifyType,omitempty"` // in_app / email / slack
	Title      string   `json:"title,omitempty" bson:"title,omitempty"`
	Message    string   `json:"message" bson:"message"`
}

// WaitStepConfig cấu hình step wait.
// Duration mặc định 1, Unit mặc định days.
type WaitStepConfig struct {
	Duration int    `json:"duration,omitempty" bson:"duration,omitempty"`
	Unit     string `json:"unit,omitempty" bson:"unit,omitempty"` // minutes / hours / days / weeks
}

// ConditionStepConfig cấu hình step condition. Kết quả là branch "yes"/"no".
type ConditionStepConfig struct {
	Logic      string      `json:"logic,omitempty" bson:"logic,omitempty"`
	Conditions []Condition `json:"conditions" bson:"conditions"`
}

// SplitVariant một nhánh của step split.
type SplitVariant struct {
	VariantID  string  `json:"variantId" bson:"variantId"`
	Percentage float64 `json:"percentage,omitempty" bson:"percentage,omitempty"`
}

// SplitStepConfig cấu hình step split.
// SplitType "percentage": chọn theo trọng số cộng dồn. Khác: random đều.
type SplitStepConfig struct {
	SplitType string         `json:"splitType,omitempty" bson:"splitType,omitempty"`
	Variants  []SplitVariant `json:"variants" bson:"variants"`
}

// GoToStepConfig cấu hình step go_to.
type GoToStepConfig struct {
	TargetStepID string `json:"targetStepId" bson:"targetStepId"`
}

// WorkflowStep một node trong danh sách step của workflow.
// Đúng một config con khớp với Type được set, các config khác để nil.
type WorkflowStep struct {
	StepID     string               `json:"stepId" bson:"stepId"`
	Type       string               `json:"type" bson:"type"`
	Email      *EmailStepConfig     `json:"email,omitempty" bson:"email,omitempty"`
	Sms        *SmsStepConfig       `json:"sms,omitempty" bson:"sms,omitempty"`
	Tag        *TagStepConfig       `json:"tag,omitempty" bson:"tag,omitempty"`
	Field      *FieldStepConfig     `json:"field,omitempty" bson:"field,omitempty"`
	Task       *TaskStepConfig      `json:"task,omitempty" bson:"task,omitempty"`
	Deal       *DealStepConfig      `json:"deal,omitempty" bson:"deal,omitempty"`
	Notify     *NotifyStepConfig    `json:"notify,omitempty" bson:"notify,omitempty"`
	Wait       *WaitStepConfig      `json:"wait,omitempty" bson:"wait,omitempty"`
	Condition  *ConditionStepConfig `json:"condition,omitempty" bson:"condition,omitempty"`
	Split      *SplitStepConfig     `json:"split,omitempty" bson:"split,omitempty"`
	GoTo       *GoToStepConfig      `json:"goTo,omitempty" bson:"goTo,omitempty"`
	NextStepID string               `json:"nextStepId,omitempty" bson:"nextStepId,omitempty"`
	Branches   map[string]string    `json:"branches,omitempty" bson:"branches,omitempty"` // branch tag -> step id
}

// WorkflowSettings cấu hình chung của workflow.
// EnrollmentLimit 0 nghĩa là không giới hạn.
type WorkflowSettings struct {
	EnrollmentLimit   int64 `json:"enrollmentLimit,omitempty" bson:"enrollmentLimit,omitempty"`
	AllowReEnrollment bool  `json:"allowReEnrollment,omitempty" bson:"allowReEnrollment,omitempty"`
}

// Workflow định nghĩa một automation của tenant.
type Workflow struct {
	ID                  primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	Name                string             `json:"name" bson:"name" index:"single:1"`
	Description         string             `json:"description,omitempty" bson:"description,omitempty"`
	Status              string             `json:"status" bson:"status" index:"single:1"`
	Trigger             Trigger            `json:"trigger" bson:"trigger"`
	Steps               []WorkflowStep     `json:"steps" bson:"steps"`
	Settings            WorkflowSettings   `json:"settings" bson:"settings"`
	EnrolledCount       int64              `json:"enrolledCount" bson:"enrolledCount"`
	CompletedCount      int64              `json:"completedCount" bson:"completedCount"`
	CreatedBy           primitive.ObjectID `json:"createdBy" bson:"createdBy,omitempty"`
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId,omitempty" index:"single:1"`
	CreatedAt           int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt           int64              `json:"updatedAt" bson:"updatedAt"`
}

// FindStep tìm step theo id trong danh sách step.
// Trả về con trỏ tới step và index của nó, hoặc (nil, -1) nếu không có.
func (w *Workflow) FindStep(stepID string) (*WorkflowStep, int) {
	for i := range w.Steps {
		if w.Steps[i].StepID == stepID {
			return &w.Steps[i], i
		}
	}
	return nil, -1
}
