package crmhdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	basehdl "cornerstone_crm/internal/api/base/handler"
	crmsvc "cornerstone_crm/internal/api/crm/service"
	"cornerstone_crm/internal/common"
)

// NotificationHandler xử lý các request notification in-app
type NotificationHandler struct {
	notificationService *crmsvc.NotificationService
}

// NewNotificationHandler tạo instance mới của NotificationHandler
func NewNotificationHandler() (*NotificationHandler, error) {
	notificationService, err := crmsvc.NewNotificationService()
	if err != nil {
		return nil, fmt.Errorf("failed to create notification service: %v", err)
	}
	return &NotificationHandler{notificationService: notificationService}, nil
}

func currentUserID(c fiber.Ctx) (primitive.ObjectID, error) {
	userIDStr, ok := c.Locals("user_id").(string)
	if !ok || userIDStr == "" {
		return primitive.NilObjectID, common.NewError(common.ErrCodeAuth, "User not authenticated", common.StatusUnauthorized, nil)
	}
	return primitive.ObjectIDFromHex(userIDStr)
}

// HandleList liệt kê notification của user đang đăng nhập
func (h *NotificationHandler) HandleList(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	page, limit := basehdl.ParsePagination(c)

	filter := bson.M{"userId": userID}
	if c.Query("unread") == "true" {
		filter["isRead"] = false
	}
	result, err := h.notificationService.FindWithPagination(c.Context(), filter, page, limit,
		options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	basehdl.HandleResponse(c, result, err)
	return nil
}

// HandleMarkRead đánh dấu một notification đã đọc
func (h *NotificationHandler) HandleMarkRead(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	notificationID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	err = h.notificationService.MarkRead(c.Context(), notificationID, userID)
	basehdl.HandleResponse(c, nil, err)
	return nil
}

// HandleMarkAllRead đánh dấu tất cả notification của user đã đọc
func (h *NotificationHandler) HandleMarkAllRead(c fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	count, err := h.notificationService.MarkAllRead(c.Context(), userID)
	basehdl.HandleResponse(c, fiber.Map{"markedCount": count}, err)
	return nil
}
