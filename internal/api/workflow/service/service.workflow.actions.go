package wfsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	crmmodels "cornerstone_crm/internal/api/crm/models"
	wfmodels "cornerstone_crm/internal/api/workflow/models"
	"cornerstone_crm/internal/delivery/channels"
	"cornerstone_crm/internal/utility"
)

// ActionResult là kết quả thống nhất của mọi action handler.
// Handler không bao giờ panic qua boundary của mình: lỗi persistence được bắt
// và chuyển thành Success=false + Error.
type ActionResult struct {
	Success     bool                   `json:"success"`
	Data        map[string]interface{} `json:"data,omitempty"`
	Error       string                 `json:"error,omitempty"`
	BranchTaken string                 `json:"branchTaken,omitempty"`
}

func actionFailure(message string) *ActionResult {
	return &ActionResult{Success: false, Error: message}
}

func actionSuccess(data map[string]interface{}) *ActionResult {
	return &ActionResult{Success: true, Data: data}
}

// sendEmail cá nhân hóa subject/body rồi bàn giao cho mailer.
// Contact không có email thì fail ngay, không thử gửi.
func (e *Engine) sendEmail(ctx context.Context, cfg *wfmodels.EmailStepConfig, contact *crmmodels.Contact) *ActionResult {
	if cfg == nil {
		return actionFailure("Email step is missing its configuration")
	}
	if contact.Email == "" {
		return actionFailure("Contact does not have an email address")
	}

	data := PersonalizationData(contact)
	subject := Personalize(cfg.Subject, data)
	body := Personalize(cfg.Body, data)

	if err := e.mailer.Send(ctx, &channels.EmailMessage{
		To:      contact.Email,
		Subject: subject,
		Body:    body,
	}); err != nil {
		return actionFailure(fmt.Sprintf("Email hand-off failed: %v", err))
	}

	return actionSuccess(map[string]interface{}{
		"recipient": contact.Email,
		"subject":   subject,
		"body":      body,
	})
}

// sendSms cá nhân hóa nội dung rồi bàn giao cho sms provider.
func (e *Engine) sendSms(ctx context.Context, cfg *wfmodels.SmsStepConfig, contact *crmmodels.Contact) *ActionResult {
	if cfg == nil {
		return actionFailure("SMS step is missing its configuration")
	}
	if contact.Phone == "" {
		return actionFailure("Contact does not have a phone number")
	}

	body := Personalize(cfg.Body, PersonalizationData(contact))
	if err := e.smsSender.Send(ctx, &channels.SmsMessage{
		To:   contact.Phone,
		Body: body,
	}); err != nil {
		return actionFailure(fmt.Sprintf("SMS hand-off failed: %v", err))
	}

	return actionSuccess(map[string]interface{}{
		"recipient": contact.Phone,
		"body":      body,
	})
}

// applyTags thực hiện add_tag / remove_tag theo phép hợp / hiệu tập hợp.
// Idempotent: tag đã có (hoặc đã vắng) là no-op, không phải lỗi.
func (e *Engine) applyTags(ctx context.Context, cfg *wfmodels.TagStepConfig, contact *crmmodels.Contact, remove bool) *ActionResult {
	if cfg == nil || len(cfg.TagIDs) == 0 {
		return actionFailure("No tag ids configured")
	}

	tagIDs := make([]primitive.ObjectID, 0, len(cfg.TagIDs))
	for _, hex := range cfg.TagIDs {
		if id := utility.String2ObjectID(hex); !id.IsZero() {
			tagIDs = append(tagIDs, id)
		}
	}
	if len(tagIDs) == 0 {
		return actionFailure("No valid tag ids configured")
	}

	var updated *crmmodels.Contact
	var changed []primitive.ObjectID
	var err error
	if remove {
		updated, changed, err = e.store.RemoveContactTags(ctx, contact.ID, tagIDs)
	} else {
		updated, changed, err = e.store.AddContactTags(ctx, contact.ID, tagIDs)
	}
	if err != nil {
		return actionFailure(fmt.Sprintf("Tag update failed: %v", err))
	}

	changedHex := make([]string, 0, len(changed))
	for _, id := range changed {
		changedHex = append(changedHex, id.Hex())
	}
	key := "addedTags"
	if remove {
		key = "removedTags"
	}
	return actionSuccess(map[string]interface{}{
		key:         changedHex,
		"totalTags": len(updated.TagIDs),
	})
}

// updateField ghi một field lên contact: cột chuẩn ghi trực tiếp,
// còn lại merge vào customFields.
func (e *Engine) updateField(ctx context.Context, cfg *wfmodels.FieldStepConfig, contact *crmmodels.Contact) *ActionResult {
	if cfg == nil || cfg.Field == "" {
		return actionFailure("No field configured to update")
	}

	oldValue, isCustom, err := e.store.SetContactField(ctx, contact.ID, cfg.Field, cfg.Value)
	if err != nil {
		return actionFailure(fmt.Sprintf("Field update failed: %v", err))
	}
	return actionSuccess(map[string]interface{}{
		"field":    cfg.Field,
		"oldValue": oldValue,
		"newValue": cfg.Value,
		"isCustom": isCustom,
	})
}

// createTask tạo task gắn với contact. Hạn = now + dueInDays nếu được cấu hình.
func (e *Engine) createTask(ctx context.Context, cfg *wfmodels.TaskStepConfig, workflow *wfmodels.Workflow, contact *crmmodels.Contact) *ActionResult {
	if cfg == nil || cfg.Title == "" {
		return actionFailure("Task title is required")
	}

	var dueAt int64
	if cfg.DueInDays > 0 {
		dueAt = utility.CurrentTimeInMilli() + int64(cfg.DueInDays)*24*60*60*1000
	}
	priority := cfg.Priority
	if priority == "" {
		priority = crmmodels.TaskPriorityMedium
	}

	task, err := e.store.InsertTask(ctx, crmmodels.Task{
		Title:               cfg.Title,
		Description:         cfg.Description,
		Status:              crmmodels.TaskStatusPending,
		Priority:            priority,
		DueAt:               dueAt,
		ContactID:           contact.ID,
		AssignedTo:          e.resolveAssignee(cfg.AssignedTo, workflow, contact),
		OwnerOrganizationID: workflow.OwnerOrganizationID,
	})
	if err != nil {
		return actionFailure(fmt.Sprintf("Task creation failed: %v", err))
	}
	return actionSuccess(map[string]interface{}{
		"taskId": task.ID.Hex(),
		"dueAt":  dueAt,
	})
}

// createDeal tạo deal ở cuối stage đích kèm một bản ghi activity log liên kết.
func (e *Engine) createDeal(ctx context.Context, cfg *wfmodels.DealStepConfig, workflow *wfmodels.Workflow, contact *crmmodels.Contact) *ActionResult {
	if cfg == nil || cfg.PipelineID == "" || cfg.StageID == "" || cfg.Title == "" {
		return actionFailure("Deal pipeline, stage and title are required")
	}

	pipelineID := utility.String2ObjectID(cfg.PipelineID)
	if pipelineID.IsZero() {
		return actionFailure("Deal pipeline id is not valid")
	}

	deal, err := e.store.InsertDeal(ctx, crmmodels.Deal{
		Title:               cfg.Title,
		Value:               cfg.Value,
		PipelineID:          pipelineID,
		StageID:             cfg.StageID,
		Status:              crmmodels.DealStatusOpen,
		ContactID:           contact.ID,
		AssignedTo:          e.resolveAssignee(cfg.AssignedTo, workflow, contact),
		OwnerOrganizationID: workflow.OwnerOrganizationID,
	})
	if err != nil {
		return actionFailure(fmt.Sprintf("Deal creation failed: %v", err))
	}

	if err := e.store.InsertActivity(ctx, crmmodels.ActivityLog{
		ContactID:           contact.ID,
		ActivityType:        crmmodels.ActivityTypeWorkflowAction,
		Description:         fmt.Sprintf("Deal \"%s\" được tạo bởi workflow \"%s\"", deal.Title, workflow.Name),
		DealID:              deal.ID,
		OwnerOrganizationID: workflow.OwnerOrganizationID,
	}); err != nil {
		return actionFailure(fmt.Sprintf("Deal activity log failed: %v", err))
	}

	return actionSuccess(map[string]interface{}{
		"dealId":   deal.ID.Hex(),
		"position": deal.Position,
	})
}

// sendNotification tạo notification in-app cho từng recipient hợp lệ.
// "owner" phân giải về người phụ trách contact, fallback người tạo workflow.
// Loại slack là no-op bàn giao (chưa có provider).
func (e *Engine) sendNotification(ctx context.Context, cfg *wfmodels.NotifyStepConfig, workflow *wfmodels.Workflow, contact *crmmodels.Contact) *ActionResult {
	if cfg == nil || len(cfg.Recipients) == 0 {
		return actionFailure("No notification recipients configured")
	}

	seen := map[primitive.ObjectID]bool{}
	recipients := make([]primitive.ObjectID, 0, len(cfg.Recipients))
	for _, raw := range cfg.Recipients {
		userID := e.resolveAssignee(raw, workflow, contact)
		if userID.IsZero() || seen[userID] {
			continue
		}
		seen[userID] = true
		recipients = append(recipients, userID)
	}
	if len(recipients) == 0 {
		return actionFailure("No valid notification recipients resolved")
	}

	notifyType := cfg.NotifyType
	if notifyType == "" {
		notifyType = crmmodels.NotificationTypeInApp
	}

	message := Personalize(cfg.Message, PersonalizationData(contact))
	created := 0
	recipientHex := make([]string, 0, len(recipients))
	for _, userID := range recipients {
		recipientHex = append(recipientHex, userID.Hex())
		if notifyType == "slack" {
			// Bàn giao slack là placeholder, chưa ghi gì
			continue
		}
		if _, err := e.store.InsertNotification(ctx, crmmodels.Notification{
			UserID:              userID,
			Type:                notifyType,
			Title:               cfg.Title,
			Message:             message,
			ContactID:           contact.ID,
			OwnerOrganizationID: workflow.OwnerOrganizationID,
		}); err != nil {
			return actionFailure(fmt.Sprintf("Notification creation failed: %v", err))
		}
		created++
	}

	return actionSuccess(map[string]interface{}{
		"recipients":   recipientHex,
		"createdCount": created,
	})
}

// resolveAssignee phân giải người được gán theo fallback ba bậc:
// user id tường minh trong config; "owner" = người phụ trách contact
// (nếu có); cuối cùng là người tạo workflow.
func (e *Engine) resolveAssignee(configured string, workflow *wfmodels.Workflow, contact *crmmodels.Contact) primitive.ObjectID {
	if configured != "" && configured != "owner" {
		if id := utility.String2ObjectID(configured); !id.IsZero() {
			return id
		}
	}
	if configured == "owner" && !contact.AssignedTo.IsZero() {
		return contact.AssignedTo
	}
	return workflow.CreatedBy
}
