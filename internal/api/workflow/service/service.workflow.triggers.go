package wfsvc

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	crmmodels "cornerstone_crm/internal/api/crm/models"
	wfmodels "cornerstone_crm/internal/api/workflow/models"
	"cornerstone_crm/internal/logger"
	"cornerstone_crm/internal/utility"
)

// Trigger matcher của engine: mỗi handler nhận một sự kiện CRM, tìm các
// workflow active cùng organization có trigger type khớp, lọc tiếp theo
// trigger config + conditions rồi enroll contact.
//
// Handler không bao giờ trả lỗi về phía nguồn sự kiện: enroll thất bại
// (duplicate, limit, workflow vừa pause) chỉ được log rồi bỏ qua.

// HandleContactCreated enroll contact mới vào các workflow contact_created.
func (e *Engine) HandleContactCreated(ctx context.Context, contact *crmmodels.Contact) {
	workflows, err := e.store.ListActiveWorkflowsByTrigger(ctx, contact.OwnerOrganizationID, wfmodels.TriggerContactCreated)
	if err != nil {
		logger.LogWorkflow("trigger_lookup_failed", "", "", map[string]interface{}{
			"trigger": wfmodels.TriggerContactCreated, "error": err.Error(),
		})
		return
	}

	for i := range workflows {
		e.matchAndEnroll(ctx, &workflows[i], contact, map[string]interface{}{
			"trigger":   wfmodels.TriggerContactCreated,
			"contactId": contact.ID.Hex(),
		})
	}
}

// HandleTagsChanged xử lý cả tag_added lẫn tag_removed sau một lần cập nhật
// tag trên contact. added/removed là các tag thực sự thay đổi (diff tập hợp).
func (e *Engine) HandleTagsChanged(ctx context.Context, contact *crmmodels.Contact, added, removed []primitive.ObjectID) {
	if len(added) > 0 {
		e.handleTagEvent(ctx, contact, wfmodels.TriggerTagAdded, added)
	}
	if len(removed) > 0 {
		e.handleTagEvent(ctx, contact, wfmodels.TriggerTagRemoved, removed)
	}
}

func (e *Engine) handleTagEvent(ctx context.Context, contact *crmmodels.Contact, triggerType string, changed []primitive.ObjectID) {
	workflows, err := e.store.ListActiveWorkflowsByTrigger(ctx, contact.OwnerOrganizationID, triggerType)
	if err != nil {
		logger.LogWorkflow("trigger_lookup_failed", "", "", map[string]interface{}{
			"trigger": triggerType, "error": err.Error(),
		})
		return
	}

	changedHex := make([]string, 0, len(changed))
	for _, id := range changed {
		changedHex = append(changedHex, id.Hex())
	}

	for i := range workflows {
		workflow := &workflows[i]
		// TagID rỗng khớp mọi tag, ngược lại phải nằm trong diff
		if tagID := workflow.Trigger.Config.TagID; tagID != "" && !utility.Contains(changedHex, tagID) {
			continue
		}
		e.matchAndEnroll(ctx, workflow, contact, map[string]interface{}{
			"trigger":   triggerType,
			"contactId": contact.ID.Hex(),
			"tagIds":    changedHex,
		})
	}
}

// HandleDealCreated enroll contact gắn với deal mới vào các workflow deal_created.
// Deal không gắn contact thì không có gì để enroll.
func (e *Engine) HandleDealCreated(ctx context.Context, deal *crmmodels.Deal) {
	contact := e.contactOfDeal(ctx, deal)
	if contact == nil {
		return
	}

	workflows, err := e.store.ListActiveWorkflowsByTrigger(ctx, deal.OwnerOrganizationID, wfmodels.TriggerDealCreated)
	if err != nil {
		logger.LogWorkflow("trigger_lookup_failed", "", "", map[string]interface{}{
			"trigger": wfmodels.TriggerDealCreated, "error": err.Error(),
		})
		return
	}

	for i := range workflows {
		workflow := &workflows[i]
		if pipelineID := workflow.Trigger.Config.PipelineID; pipelineID != "" && pipelineID != deal.PipelineID.Hex() {
			continue
		}
		e.matchAndEnroll(ctx, workflow, contact, map[string]interface{}{
			"trigger":   wfmodels.TriggerDealCreated,
			"contactId": contact.ID.Hex(),
			"dealId":    deal.ID.Hex(),
		})
	}
}

// HandleDealStageChanged enroll contact của deal khi deal đổi stage.
// Config khớp theo to_stage_id (rỗng = mọi stage đích), from_stage_id và
// pipeline_id là bộ lọc tùy chọn.
func (e *Engine) HandleDealStageChanged(ctx context.Context, deal *crmmodels.Deal, fromStageID, toStageID string) {
	contact := e.contactOfDeal(ctx, deal)
	if contact == nil {
		return
	}

	workflows, err := e.store.ListActiveWorkflowsByTrigger(ctx, deal.OwnerOrganizationID, wfmodels.TriggerDealStageChanged)
	if err != nil {
		logger.LogWorkflow("trigger_lookup_failed", "", "", map[string]interface{}{
			"trigger": wfmodels.TriggerDealStageChanged, "error": err.Error(),
		})
		return
	}

	for i := range workflows {
		workflow := &workflows[i]
		cfg := workflow.Trigger.Config
		if cfg.PipelineID != "" && cfg.PipelineID != deal.PipelineID.Hex() {
			continue
		}
		if cfg.FromStageID != "" && cfg.FromStageID != fromStageID {
			continue
		}
		if cfg.ToStageID != "" && cfg.ToStageID != toStageID {
			continue
		}
		e.matchAndEnroll(ctx, workflow, contact, map[string]interface{}{
			"trigger":     wfmodels.TriggerDealStageChanged,
			"contactId":   contact.ID.Hex(),
			"dealId":      deal.ID.Hex(),
			"fromStageId": fromStageID,
			"toStageId":   toStageID,
		})
	}
}

// HandleFormSubmitted enroll contact gắn với submission vào các workflow
// form_submitted. Config khớp theo form_id (rỗng = mọi form).
func (e *Engine) HandleFormSubmitted(ctx context.Context, submission *crmmodels.FormSubmission) {
	if submission.ContactID.IsZero() {
		return
	}
	contact, err := e.store.GetContact(ctx, submission.ContactID)
	if err != nil {
		logger.LogWorkflow("trigger_contact_missing", "", "", map[string]interface{}{
			"trigger": wfmodels.TriggerFormSubmitted, "contact_id": submission.ContactID.Hex(),
		})
		return
	}

	workflows, err := e.store.ListActiveWorkflowsByTrigger(ctx, submission.OwnerOrganizationID, wfmodels.TriggerFormSubmitted)
	if err != nil {
		logger.LogWorkflow("trigger_lookup_failed", "", "", map[string]interface{}{
			"trigger": wfmodels.TriggerFormSubmitted, "error": err.Error(),
		})
		return
	}

	for i := range workflows {
		workflow := &workflows[i]
		if formID := workflow.Trigger.Config.FormID; formID != "" && formID != submission.FormID.Hex() {
			continue
		}
		e.matchAndEnroll(ctx, workflow, contact, map[string]interface{}{
			"trigger":      wfmodels.TriggerFormSubmitted,
			"contactId":    contact.ID.Hex(),
			"formId":       submission.FormID.Hex(),
			"submissionId": submission.ID.Hex(),
		})
	}
}

// matchAndEnroll đánh giá conditions của trigger trên contact rồi enroll.
func (e *Engine) matchAndEnroll(ctx context.Context, workflow *wfmodels.Workflow, contact *crmmodels.Contact, triggerData map[string]interface{}) {
	cfg := workflow.Trigger.Config
	if len(cfg.Conditions) > 0 {
		record, err := utility.ToMap(contact)
		if err != nil {
			logger.LogWorkflow("trigger_condition_error", workflow.ID.Hex(), "", map[string]interface{}{
				"contact_id": contact.ID.Hex(), "error": err.Error(),
			})
			return
		}
		if !EvaluateConditions(cfg.Logic, cfg.Conditions, record) {
			return
		}
	}

	if _, err := e.Enroll(ctx, workflow.ID, contact.ID, triggerData); err != nil {
		// Duplicate / limit / workflow vừa đổi trạng thái: bỏ qua
		logger.LogWorkflow("enroll_skipped", workflow.ID.Hex(), "", map[string]interface{}{
			"contact_id": contact.ID.Hex(), "reason": err.Error(),
		})
	}
}

func (e *Engine) contactOfDeal(ctx context.Context, deal *crmmodels.Deal) *crmmodels.Contact {
	if deal.ContactID.IsZero() {
		return nil
	}
	contact, err := e.store.GetContact(ctx, deal.ContactID)
	if err != nil {
		logger.LogWorkflow("trigger_contact_missing", "", "", map[string]interface{}{
			"deal_id": deal.ID.Hex(), "contact_id": deal.ContactID.Hex(),
		})
		return nil
	}
	return contact
}
