package wfmodels

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Trạng thái enrollment. completed / exited / failed là terminal:
// không bao giờ quay lại active, re-enrollment luôn tạo bản ghi mới.
const (
	EnrollmentStatusActive    = "active"
	EnrollmentStatusCompleted = "completed"
	EnrollmentStatusExited    = "exited"
	EnrollmentStatusPaused    = "paused"
	EnrollmentStatusFailed    = "failed"
)

// Trạng thái của một lượt thực thi step.
const (
	StepExecStatusPending   = "pending"
	StepExecStatusCompleted = "completed"
	StepExecStatusFailed    = "failed"
	StepExecStatusSkipped   = "skipped"
)

// StepExecution bản ghi lịch sử bất biến, append một lần mỗi lượt thực thi step.
type StepExecution struct {
	StepID      string                 `json:"stepId" bson:"stepId"`
	StepType    string                 `json:"stepType" bson:"stepType"`
	StartedAt   int64                  `json:"startedAt" bson:"startedAt"`
	CompletedAt int64                  `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	Status      string                 `json:"status" bson:"status"`
	Result      map[string]interface{} `json:"result,omitempty" bson:"result,omitempty"`
	Error       string                 `json:"error,omitempty" bson:"error,omitempty"`
	BranchTaken string                 `json:"branchTaken,omitempty" bson:"branchTaken,omitempty"`
}

// WorkflowEnrollment một contact đang đi qua một workflow.
// NextStepAt = 0 nghĩa là null; khác 0 khi và chỉ khi status = active.
type WorkflowEnrollment struct {
	ID                  primitive.ObjectID `json:"id" bson:"_id,omitempty"`
	WorkflowID          primitive.ObjectID `json:"workflowId" bson:"workflowId" index:"single:1"`
	ContactID           primitive.ObjectID `json:"contactId" bson:"contactId" index:"single:1"`
	Status              string             `json:"status" bson:"status" index:"single:1"`
	CurrentStepID       string             `json:"currentStepId,omitempty" bson:"currentStepId,omitempty"`
	CurrentStepIndex    int                `json:"currentStepIndex" bson:"currentStepIndex"`
	EnrolledAt          int64              `json:"enrolledAt" bson:"enrolledAt"`
	CompletedAt         int64              `json:"completedAt,omitempty" bson:"completedAt,omitempty"`
	ExitedAt            int64              `json:"exitedAt,omitempty" bson:"exitedAt,omitempty"`
	ExitReason          string             `json:"exitReason,omitempty" bson:"exitReason,omitempty"`
	FailureReason       string             `json:"failureReason,omitempty" bson:"failureReason,omitempty"`
	NextStepAt          int64              `json:"nextStepAt,omitempty" bson:"nextStepAt,omitempty"`
	TriggerData         map[string]interface{} `json:"triggerData,omitempty" bson:"triggerData,omitempty"`
	StepHistory         []StepExecution    `json:"stepHistory" bson:"stepHistory"`
	OwnerOrganizationID primitive.ObjectID `json:"ownerOrganizationId" bson:"ownerOrganizationId,omitempty" index:"single:1"`
	CreatedAt           int64              `json:"createdAt" bson:"createdAt"`
	UpdatedAt           int64              `json:"updatedAt" bson:"updatedAt"`
}

// IsTerminal cho biết enrollment đã kết thúc hẳn hay chưa.
func (e *WorkflowEnrollment) IsTerminal() bool {
	switch e.Status {
	case EnrollmentStatusCompleted, EnrollmentStatusExited, EnrollmentStatusFailed:
		return true
	}
	return false
}
