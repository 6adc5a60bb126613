// Package router đăng ký các route thuộc domain CRM: contacts, tags, pipelines,
// deals, tasks, activities, forms, notifications.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	crmhdl "cornerstone_crm/internal/api/crm/handler"
	"cornerstone_crm/internal/api/middleware"
	apirouter "cornerstone_crm/internal/api/router"
)

// Register đăng ký tất cả route CRM lên v1.
// Mọi route CRM đều yêu cầu đăng nhập và tổ chức đang hoạt động.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	contactHandler, err := crmhdl.NewContactHandler()
	if err != nil {
		return fmt.Errorf("tạo ContactHandler: %w", err)
	}
	tagHandler, err := crmhdl.NewTagHandler()
	if err != nil {
		return fmt.Errorf("tạo TagHandler: %w", err)
	}
	pipelineHandler, err := crmhdl.NewPipelineHandler()
	if err != nil {
		return fmt.Errorf("tạo PipelineHandler: %w", err)
	}
	dealHandler, err := crmhdl.NewDealHandler()
	if err != nil {
		return fmt.Errorf("tạo DealHandler: %w", err)
	}
	taskHandler, err := crmhdl.NewTaskHandler()
	if err != nil {
		return fmt.Errorf("tạo TaskHandler: %w", err)
	}
	activityLogHandler, err := crmhdl.NewActivityLogHandler()
	if err != nil {
		return fmt.Errorf("tạo ActivityLogHandler: %w", err)
	}
	formHandler, err := crmhdl.NewFormHandler()
	if err != nil {
		return fmt.Errorf("tạo FormHandler: %w", err)
	}
	notificationHandler, err := crmhdl.NewNotificationHandler()
	if err != nil {
		return fmt.Errorf("tạo NotificationHandler: %w", err)
	}

	authMiddleware := middleware.AuthMiddleware()
	orgContextMiddleware := middleware.OrganizationContextMiddleware()
	mws := []fiber.Handler{authMiddleware, orgContextMiddleware}

	apirouter.RegisterRouteWithMiddleware(v1, "/contacts", "POST", "/", mws, contactHandler.HandleCreate)
	apirouter.RegisterRouteWithMiddleware(v1, "/contacts", "GET", "/", mws, contactHandler.HandleFindWithPagination)
	apirouter.RegisterRouteWithMiddleware(v1, "/contacts", "GET", "/:id", mws, contactHandler.HandleGetById)
	apirouter.RegisterRouteWithMiddleware(v1, "/contacts", "PUT", "/:id", mws, contactHandler.HandleUpdate)
	apirouter.RegisterRouteWithMiddleware(v1, "/contacts", "DELETE", "/:id", mws, contactHandler.HandleDelete)
	apirouter.RegisterRouteWithMiddleware(v1, "/contacts", "POST", "/:id/tags", mws, contactHandler.HandleAddTags)
	apirouter.RegisterRouteWithMiddleware(v1, "/contacts", "DELETE", "/:id/tags", mws, contactHandler.HandleRemoveTags)

	apirouter.RegisterRouteWithMiddleware(v1, "/tags", "POST", "/", mws, tagHandler.HandleCreate)
	apirouter.RegisterRouteWithMiddleware(v1, "/tags", "GET", "/", mws, tagHandler.HandleList)
	apirouter.RegisterRouteWithMiddleware(v1, "/tags", "PUT", "/:id", mws, tagHandler.HandleUpdate)
	apirouter.RegisterRouteWithMiddleware(v1, "/tags", "DELETE", "/:id", mws, tagHandler.HandleDelete)

	apirouter.RegisterRouteWithMiddleware(v1, "/pipelines", "POST", "/", mws, pipelineHandler.HandleCreate)
	apirouter.RegisterRouteWithMiddleware(v1, "/pipelines", "GET", "/", mws, pipelineHandler.HandleList)
	apirouter.RegisterRouteWithMiddleware(v1, "/pipelines", "GET", "/:id", mws, pipelineHandler.HandleGetById)
	apirouter.RegisterRouteWithMiddleware(v1, "/pipelines", "PUT", "/:id", mws, pipelineHandler.HandleUpdate)
	apirouter.RegisterRouteWithMiddleware(v1, "/pipelines", "DELETE", "/:id", mws, pipelineHandler.HandleDelete)

	apirouter.RegisterRouteWithMiddleware(v1, "/deals", "POST", "/", mws, dealHandler.HandleCreate)
	apirouter.RegisterRouteWithMiddleware(v1, "/deals", "GET", "/", mws, dealHandler.HandleFindWithPagination)
	apirouter.RegisterRouteWithMiddleware(v1, "/deals", "GET", "/:id", mws, dealHandler.HandleGetById)
	apirouter.RegisterRouteWithMiddleware(v1, "/deals", "PUT", "/:id", mws, dealHandler.HandleUpdate)
	apirouter.RegisterRouteWithMiddleware(v1, "/deals", "POST", "/:id/move-stage", mws, dealHandler.HandleMoveStage)
	apirouter.RegisterRouteWithMiddleware(v1, "/deals", "DELETE", "/:id", mws, dealHandler.HandleDelete)

	apirouter.RegisterRouteWithMiddleware(v1, "/tasks", "POST", "/", mws, taskHandler.HandleCreate)
	apirouter.RegisterRouteWithMiddleware(v1, "/tasks", "GET", "/", mws, taskHandler.HandleFindWithPagination)
	apirouter.RegisterRouteWithMiddleware(v1, "/tasks", "PUT", "/:id", mws, taskHandler.HandleUpdate)
	apirouter.RegisterRouteWithMiddleware(v1, "/tasks", "DELETE", "/:id", mws, taskHandler.HandleDelete)

	apirouter.RegisterRouteWithMiddleware(v1, "/activities", "GET", "/", mws, activityLogHandler.HandleFindWithPagination)

	apirouter.RegisterRouteWithMiddleware(v1, "/forms", "POST", "/", mws, formHandler.HandleCreate)
	apirouter.RegisterRouteWithMiddleware(v1, "/forms", "GET", "/", mws, formHandler.HandleList)
	apirouter.RegisterRouteWithMiddleware(v1, "/forms", "PUT", "/:id", mws, formHandler.HandleUpdate)
	apirouter.RegisterRouteWithMiddleware(v1, "/forms", "DELETE", "/:id", mws, formHandler.HandleDelete)
	apirouter.RegisterRouteWithMiddleware(v1, "/forms", "POST", "/:id/submit", mws, formHandler.HandleSubmit)
	apirouter.RegisterRouteWithMiddleware(v1, "/forms", "GET", "/:id/submissions", mws, formHandler.HandleListSubmissions)

	apirouter.RegisterRouteWithMiddleware(v1, "/notifications", "GET", "/", mws, notificationHandler.HandleList)
	apirouter.RegisterRouteWithMiddleware(v1, "/notifications", "POST", "/:id/read", mws, notificationHandler.HandleMarkRead)
	apirouter.RegisterRouteWithMiddleware(v1, "/notifications", "POST", "/read-all", mws, notificationHandler.HandleMarkAllRead)

	return nil
}
