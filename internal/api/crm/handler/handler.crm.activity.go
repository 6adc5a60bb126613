package crmhdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	basehdl "cornerstone_crm/internal/api/base/handler"
	crmsvc "cornerstone_crm/internal/api/crm/service"
	"cornerstone_crm/internal/api/middleware"
	"cornerstone_crm/internal/utility"
)

// ActivityLogHandler xử lý các request activity log
type ActivityLogHandler struct {
	activityLogService *crmsvc.ActivityLogService
}

// NewActivityLogHandler tạo instance mới của ActivityLogHandler
func NewActivityLogHandler() (*ActivityLogHandler, error) {
	activityLogService, err := crmsvc.NewActivityLogService()
	if err != nil {
		return nil, fmt.Errorf("failed to create activity log service: %v", err)
	}
	return &ActivityLogHandler{activityLogService: activityLogService}, nil
}

// HandleFindWithPagination liệt kê activity log của tổ chức, filter theo contact/type
func (h *ActivityLogHandler) HandleFindWithPagination(c fiber.Ctx) error {
	orgID := middleware.GetActiveOrganizationID(c)
	page, limit := basehdl.ParsePagination(c)

	filter := bson.M{"ownerOrganizationId": orgID}
	if contactID := c.Query("contactId"); contactID != "" {
		filter["contactId"] = utility.String2ObjectID(contactID)
	}
	if activityType := c.Query("activityType"); activityType != "" {
		filter["activityType"] = activityType
	}

	result, err := h.activityLogService.FindWithPagination(c.Context(), filter, page, limit,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	basehdl.HandleResponse(c, result, err)
	return nil
}
