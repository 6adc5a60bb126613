// Package router đăng ký các route thuộc domain auth: System, Auth, Organization.
package router

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	authhdl "cornerstone_crm/internal/api/auth/handler"
	basehdl "cornerstone_crm/internal/api/base/handler"
	"cornerstone_crm/internal/api/middleware"
	apirouter "cornerstone_crm/internal/api/router"
)

// Register đăng ký tất cả route auth (system, auth, organization) lên v1.
func Register(v1 fiber.Router, r *apirouter.Router) error {
	if err := registerSystemRoutes(v1); err != nil {
		return err
	}
	if err := registerAuthRoutes(v1); err != nil {
		return err
	}
	if err := registerOrganizationRoutes(v1); err != nil {
		return err
	}
	return nil
}

func registerSystemRoutes(router fiber.Router) error {
	systemHandler := basehdl.NewSystemHandler()
	router.Get("/system/health", systemHandler.HandleHealth)
	return nil
}

func registerAuthRoutes(router fiber.Router) error {
	userHandler, err := authhdl.NewUserHandler()
	if err != nil {
		return fmt.Errorf("failed to create user handler: %w", err)
	}

	router.Post("/auth/register", userHandler.HandleRegister)
	router.Post("/auth/login", userHandler.HandleLogin)

	authMiddleware := middleware.AuthMiddleware()
	apirouter.RegisterRouteWithMiddleware(router, "/auth", "POST", "/logout", []fiber.Handler{authMiddleware}, userHandler.HandleLogout)
	apirouter.RegisterRouteWithMiddleware(router, "/auth", "GET", "/profile", []fiber.Handler{authMiddleware}, userHandler.HandleGetProfile)
	apirouter.RegisterRouteWithMiddleware(router, "/auth", "PUT", "/profile", []fiber.Handler{authMiddleware}, userHandler.HandleUpdateProfile)
	apirouter.RegisterRouteWithMiddleware(router, "/auth", "POST", "/change-password", []fiber.Handler{authMiddleware}, userHandler.HandleChangePassword)
	apirouter.RegisterRouteWithMiddleware(router, "/admin/user", "POST", "/block", []fiber.Handler{authMiddleware}, userHandler.HandleBlockUser)
	apirouter.RegisterRouteWithMiddleware(router, "/admin/user", "POST", "/unblock", []fiber.Handler{authMiddleware}, userHandler.HandleUnBlockUser)
	return nil
}

func registerOrganizationRoutes(router fiber.Router) error {
	organizationHandler, err := authhdl.NewOrganizationHandler()
	if err != nil {
		return fmt.Errorf("failed to create organization handler: %w", err)
	}

	authMiddleware := middleware.AuthMiddleware()
	mws := []fiber.Handler{authMiddleware}
	apirouter.RegisterRouteWithMiddleware(router, "/organization", "POST", "/", mws, organizationHandler.HandleCreate)
	apirouter.RegisterRouteWithMiddleware(router, "/organization", "GET", "/", mws, organizationHandler.HandleList)
	apirouter.RegisterRouteWithMiddleware(router, "/organization", "GET", "/:id", mws, organizationHandler.HandleGetById)
	apirouter.RegisterRouteWithMiddleware(router, "/organization", "PUT", "/:id", mws, organizationHandler.HandleUpdate)
	apirouter.RegisterRouteWithMiddleware(router, "/organization", "POST", "/:id/members", mws, organizationHandler.HandleAddMember)
	apirouter.RegisterRouteWithMiddleware(router, "/organization", "DELETE", "/:id/members", mws, organizationHandler.HandleRemoveMember)
	return nil
}
