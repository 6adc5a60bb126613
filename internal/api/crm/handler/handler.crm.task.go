package crmhdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"

	basehdl "cornerstone_crm/internal/api/base/handler"
	basesvc "cornerstone_crm/internal/api/base/service"
	crmdto "cornerstone_crm/internal/api/crm/dto"
	crmmodels "cornerstone_crm/internal/api/crm/models"
	crmsvc "cornerstone_crm/internal/api/crm/service"
	"cornerstone_crm/internal/api/middleware"
	"cornerstone_crm/internal/common"
	"cornerstone_crm/internal/utility"
)

// TaskHandler xử lý các request task
type TaskHandler struct {
	taskService *crmsvc.TaskService
}

// NewTaskHandler tạo instance mới của TaskHandler
func NewTaskHandler() (*TaskHandler, error) {
	taskService, err := crmsvc.NewTaskService()
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %v", err)
	}
	return &TaskHandler{taskService: taskService}, nil
}

// HandleCreate tạo task mới
func (h *TaskHandler) HandleCreate(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	var input crmdto.TaskCreateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}

	priority := input.Priority
	if priority == "" {
		priority = crmmodels.TaskPriorityMedium
	}
	task, err := h.taskService.InsertOne(c.Context(), crmmodels.Task{
		Title:               input.Title,
		Description:         input.Description,
		Status:              crmmodels.TaskStatusPending,
		Priority:            priority,
		DueAt:               input.DueAt,
		ContactID:           utility.String2ObjectID(input.ContactID),
		AssignedTo:          utility.String2ObjectID(input.AssignedTo),
		OwnerOrganizationID: orgID,
	})
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	basehdl.HandleCreatedResponse(c, task)
	return nil
}

// HandleFindWithPagination liệt kê task của tổ chức
func (h *TaskHandler) HandleFindWithPagination(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	page, limit := basehdl.ParsePagination(c)

	filter := bson.M{"ownerOrganizationId": orgID}
	if status := c.Query("status"); status != "" {
		filter["status"] = status
	}
	if assignedTo := c.Query("assignedTo"); assignedTo != "" {
		filter["assignedTo"] = utility.String2ObjectID(assignedTo)
	}
	if contactID := c.Query("contactId"); contactID != "" {
		filter["contactId"] = utility.String2ObjectID(contactID)
	}

	result, err := h.taskService.FindWithPagination(c.Context(), filter, page, limit, nil)
	basehdl.HandleResponse(c, result, err)
	return nil
}

// HandleUpdate cập nhật task
func (h *TaskHandler) HandleUpdate(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	taskID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	var input crmdto.TaskUpdateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	set := map[string]interface{}{}
	if input.Title != "" {
		set["title"] = input.Title
	}
	if input.Description != "" {
		set["description"] = input.Description
	}
	if input.Status != "" {
		set["status"] = input.Status
	}
	if input.Priority != "" {
		set["priority"] = input.Priority
	}
	if input.DueAt != nil {
		set["dueAt"] = *input.DueAt
	}
	if input.AssignedTo != "" {
		set["assignedTo"] = utility.String2ObjectID(input.AssignedTo)
	}
	if len(set) == 0 {
		basehdl.HandleResponse(c, nil, common.ErrInvalidInput)
		return nil
	}
	updated, err := h.taskService.UpdateOne(c.Context(),
		bson.M{"_id": taskID, "ownerOrganizationId": orgID},
		&basesvc.UpdateData{Set: set}, nil)
	basehdl.HandleResponse(c, updated, err)
	return nil
}

// HandleDelete xóa task
func (h *TaskHandler) HandleDelete(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	taskID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	err = h.taskService.DeleteOne(c.Context(), bson.M{"_id": taskID, "ownerOrganizationId": orgID})
	basehdl.HandleResponse(c, nil, err)
	return nil
}
