// Package router đăng ký các route thuộc domain workflow automation:
// định nghĩa workflow, vòng đời enrollment.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	"cornerstone_crm/internal/api/middleware"
	apirouter "cornerstone_crm/internal/api/router"
	wfhdl "cornerstone_crm/internal/api/workflow/handler"
	wfsvc "cornerstone_crm/internal/api/workflow/service"
)

// Register đăng ký tất cả route workflow lên v1.
// Mọi route đều yêu cầu đăng nhập và tổ chức đang hoạt động.
func Register(v1 fiber.Router, r *apirouter.Router, engine *wfsvc.Engine) error {
	workflowHandler, err := wfhdl.NewWorkflowHandler(engine)
	if err != nil {
		return fmt.Errorf("tạo WorkflowHandler: %w", err)
	}

	authMiddleware := middleware.AuthMiddleware()
	orgContextMiddleware := middleware.OrganizationContextMiddleware()
	mws := []fiber.Handler{authMiddleware, orgContextMiddleware}

	apirouter.RegisterRouteWithMiddleware(v1, "/workflows", "POST", "/", mws, workflowHandler.HandleCreate)
	apirouter.RegisterRouteWithMiddleware(v1, "/workflows", "GET", "/", mws, workflowHandler.HandleFindWithPagination)
	apirouter.RegisterRouteWithMiddleware(v1, "/workflows", "GET", "/:id", mws, workflowHandler.HandleGetById)
	apirouter.RegisterRouteWithMiddleware(v1, "/workflows", "PUT", "/:id", mws, workflowHandler.HandleUpdate)
	apirouter.RegisterRouteWithMiddleware(v1, "/workflows", "DELETE", "/:id", mws, workflowHandler.HandleDelete)
	apirouter.RegisterRouteWithMiddleware(v1, "/workflows", "POST", "/:id/activate", mws, workflowHandler.HandleActivate)
	apirouter.RegisterRouteWithMiddleware(v1, "/workflows", "POST", "/:id/pause", mws, workflowHandler.HandlePause)
	apirouter.RegisterRouteWithMiddleware(v1, "/workflows", "POST", "/:id/archive", mws, workflowHandler.HandleArchive)
	apirouter.RegisterRouteWithMiddleware(v1, "/workflows", "GET", "/:id/enrollments", mws, workflowHandler.HandleListEnrollments)
	apirouter.RegisterRouteWithMiddleware(v1, "/workflows", "POST", "/:id/enroll", mws, workflowHandler.HandleEnroll)

	apirouter.RegisterRouteWithMiddleware(v1, "/enrollments", "GET", "/:id", mws, workflowHandler.HandleGetEnrollment)
	apirouter.RegisterRouteWithMiddleware(v1, "/enrollments", "POST", "/:id/exit", mws, workflowHandler.HandleExitEnrollment)
	apirouter.RegisterRouteWithMiddleware(v1, "/enrollments", "POST", "/process", mws, workflowHandler.HandleProcessDue)

	return nil
}
