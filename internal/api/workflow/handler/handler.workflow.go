package wfhdl

import (
	"context"
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basehdl "cornerstone_crm/internal/api/base/handler"
	basesvc "cornerstone_crm/internal/api/base/service"
	crmsvc "cornerstone_crm/internal/api/crm/service"
	"cornerstone_crm/internal/api/middleware"
	wfdto "cornerstone_crm/internal/api/workflow/dto"
	wfmodels "cornerstone_crm/internal/api/workflow/models"
	wfsvc "cornerstone_crm/internal/api/workflow/service"
	"cornerstone_crm/internal/common"
	"cornerstone_crm/internal/utility"
)

// WorkflowHandler xử lý các request workflow và enrollment
type WorkflowHandler struct {
	workflowService   *wfsvc.WorkflowService
	enrollmentService *wfsvc.EnrollmentService
	contactService    *crmsvc.ContactService
	engine            *wfsvc.Engine
}

// NewWorkflowHandler tạo instance mới của WorkflowHandler
func NewWorkflowHandler(engine *wfsvc.Engine) (*WorkflowHandler, error) {
	workflowService, err := wfsvc.NewWorkflowService()
	if err != nil {
		return nil, fmt.Errorf("failed to create workflow service: %v", err)
	}
	enrollmentService, err := wfsvc.NewEnrollmentService()
	if err != nil {
		return nil, fmt.Errorf("failed to create enrollment service: %v", err)
	}
	contactService, err := crmsvc.NewContactService()
	if err != nil {
		return nil, fmt.Errorf("failed to create contact service: %v", err)
	}
	return &WorkflowHandler{
		workflowService:   workflowService,
		enrollmentService: enrollmentService,
		contactService:    contactService,
		engine:            engine,
	}, nil
}

func currentUserID(c fiber.Ctx) primitive.ObjectID {
	userIDStr, _ := c.Locals("user_id").(string)
	return utility.String2ObjectID(userIDStr)
}

// HandleCreate tạo workflow mới ở trạng thái draft
func (h *WorkflowHandler) HandleCreate(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	var input wfdto.WorkflowCreateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	workflow, err := h.workflowService.Create(c.Context(), wfmodels.Workflow{
		Name:                input.Name,
		Description:         input.Description,
		Trigger:             input.Trigger,
		Steps:               input.Steps,
		Settings:            input.Settings,
		CreatedBy:           currentUserID(c),
		OwnerOrganizationID: orgID,
	})
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	basehdl.HandleCreatedResponse(c, workflow)
	return nil
}

// HandleFindWithPagination liệt kê workflow của tổ chức, có phân trang
func (h *WorkflowHandler) HandleFindWithPagination(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	page, limit := basehdl.ParsePagination(c)

	filter := bson.M{"ownerOrganizationId": orgID}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	if triggerType := c.Query("triggerType"); triggerType != "" {
		filter["trigger.type"] = triggerType
	}

	result, err := h.workflowService.FindWithPagination(c.Context(), filter, page, limit, nil)
	basehdl.HandleResponse(c, result, err)
	return nil
}

// HandleGetById lấy chi tiết workflow
func (h *WorkflowHandler) HandleGetById(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	workflowID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	workflow, err := h.workflowService.FindOne(c.Context(), bson.M{"_id": workflowID, "ownerOrganizationId": orgID}, nil)
	basehdl.HandleResponse(c, workflow, err)
	return nil
}

// HandleUpdate cập nhật định nghĩa workflow. Workflow archived là bất biến.
// Đổi trigger hoặc steps phải qua validation trên bản định nghĩa đã merge.
func (h *WorkflowHandler) HandleUpdate(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	workflowID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	var input wfdto.WorkflowUpdateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}

	workflow, err := h.workflowService.FindOne(c.Context(), bson.M{"_id": workflowID, "ownerOrganizationId": orgID}, nil)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	if workflow.Status == wfmodels.WorkflowStatusArchived {
		basehdl.HandleResponse(c, nil, common.ErrInvalidState)
		return nil
	}

	set := map[string]interface{}{}
	if input.Name != "" {
		workflow.Name = input.Name
		set["name"] = input.Name
	}
	if input.Description != nil {
		set["description"] = *input.Description
	}
	if input.Trigger != nil {
		workflow.Trigger = *input.Trigger
		set["trigger"] = *input.Trigger
	}
	if input.Steps != nil {
		workflow.Steps = input.Steps
		set["steps"] = input.Steps
	}
	if input.Settings != nil {
		set["settings"] = *input.Settings
	}
	if len(set) == 0 {
		basehdl.HandleResponse(c, nil, common.ErrInvalidInput)
		return nil
	}
	if input.Trigger != nil || input.Steps != nil {
		if err := h.workflowService.ValidateDefinition(&workflow); err != nil {
			basehdl.HandleResponse(c, nil, err)
			return nil
		}
	}

	updated, err := h.workflowService.UpdateOne(c.Context(),
		bson.M{"_id": workflowID, "ownerOrganizationId": orgID},
		&basesvc.UpdateData{Set: set}, nil)
	basehdl.HandleResponse(c, updated, err)
	return nil
}

// HandleActivate kích hoạt workflow
func (h *WorkflowHandler) HandleActivate(c fiber.Ctx) error {
	return h.handleTransition(c, h.workflowService.Activate)
}

// HandlePause tạm dừng workflow
func (h *WorkflowHandler) HandlePause(c fiber.Ctx) error {
	return h.handleTransition(c, h.workflowService.Pause)
}

// HandleArchive lưu trữ workflow và exit các enrollment còn chạy
func (h *WorkflowHandler) HandleArchive(c fiber.Ctx) error {
	return h.handleTransition(c, h.workflowService.Archive)
}

func (h *WorkflowHandler) handleTransition(c fiber.Ctx, transition func(ctx context.Context, id, orgID primitive.ObjectID) (*wfmodels.Workflow, error)) error {
	orgID := middleware.GetActiveOrganizationID(c)
	workflowID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	workflow, err := transition(c.Context(), workflowID, orgID)
	basehdl.HandleResponse(c, workflow, err)
	return nil
}

// HandleDelete xóa workflow. Chỉ cho xóa workflow draft hoặc archived,
// workflow đang chạy phải archive trước.
func (h *WorkflowHandler) HandleDelete(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	workflowID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	workflow, err := h.workflowService.FindOne(c.Context(), bson.M{"_id": workflowID, "ownerOrganizationId": orgID}, nil)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	if workflow.Status != wfmodels.WorkflowStatusDraft && workflow.Status != wfmodels.WorkflowStatusArchived {
		basehdl.HandleResponse(c, nil, common.ErrInvalidState)
		return nil
	}
	err = h.workflowService.DeleteOne(c.Context(), bson.M{"_id": workflowID, "ownerOrganizationId": orgID})
	basehdl.HandleResponse(c, nil, err)
	return nil
}

// HandleListEnrollments liệt kê enrollment của một workflow, có phân trang
func (h *WorkflowHandler) HandleListEnrollments(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	workflowID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	page, limit := basehdl.ParsePagination(c)

	filter := bson.M{"workflowId": workflowID, "ownerOrganizationId": orgID}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}

	result, err := h.enrollmentService.FindWithPagination(c.Context(), filter, page, limit,
		options.Find().SetSort(bson.D{{Key: "enrolledAt", Value: -1}}))
	basehdl.HandleResponse(c, result, err)
	return nil
}

// HandleEnroll enroll thủ công một contact vào workflow.
// Workflow và contact đều phải thuộc tổ chức đang hoạt động.
func (h *WorkflowHandler) HandleEnroll(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	workflowID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	var input wfdto.WorkflowEnrollInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	contactID := utility.String2ObjectID(input.ContactID)
	if contactID.IsZero() {
		basehdl.HandleResponse(c, nil, common.ErrInvalidInput)
		return nil
	}

	if _, err := h.workflowService.FindOne(c.Context(), bson.M{"_id": workflowID, "ownerOrganizationId": orgID}, nil); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	if _, err := h.contactService.FindOne(c.Context(), bson.M{"_id": contactID, "ownerOrganizationId": orgID}, nil); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}

	enrollment, err := h.engine.Enroll(c.Context(), workflowID, contactID, map[string]interface{}{
		"trigger":    "manual",
		"enrolledBy": currentUserID(c).Hex(),
	})
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	basehdl.HandleCreatedResponse(c, enrollment)
	return nil
}

// HandleGetEnrollment lấy chi tiết enrollment kèm step history
func (h *WorkflowHandler) HandleGetEnrollment(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	enrollmentID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	enrollment, err := h.enrollmentService.FindOne(c.Context(), bson.M{"_id": enrollmentID, "ownerOrganizationId": orgID}, nil)
	basehdl.HandleResponse(c, enrollment, err)
	return nil
}

// HandleExitEnrollment exit một enrollment đang active
func (h *WorkflowHandler) HandleExitEnrollment(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	enrollmentID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	var input wfdto.EnrollmentExitInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	reason := input.Reason
	if reason == "" {
		reason = "manual"
	}

	if _, err := h.enrollmentService.FindOne(c.Context(), bson.M{"_id": enrollmentID, "ownerOrganizationId": orgID}, nil); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}

	exited, err := h.engine.Exit(c.Context(), enrollmentID, reason)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	if !exited {
		basehdl.HandleResponse(c, nil, common.ErrInvalidState)
		return nil
	}
	basehdl.HandleResponse(c, map[string]interface{}{"exited": true}, nil)
	return nil
}

// HandleProcessDue kích xử lý thủ công các enrollment đã đến hạn.
// Worker nền vẫn chạy định kỳ, endpoint này dành cho vận hành / debug.
func (h *WorkflowHandler) HandleProcessDue(c fiber.Ctx) error {
	processed, err := h.engine.ProcessDue(c.Context(), 100)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	basehdl.HandleResponse(c, map[string]interface{}{"processed": processed}, nil)
	return nil
}
