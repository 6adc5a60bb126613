package authhdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"

	authdto "cornerstone_crm/internal/api/auth/dto"
	models "cornerstone_crm/internal/api/auth/models"
	authsvc "cornerstone_crm/internal/api/auth/service"
	basehdl "cornerstone_crm/internal/api/base/handler"
	basesvc "cornerstone_crm/internal/api/base/service"
	"cornerstone_crm/internal/common"
	"cornerstone_crm/internal/logger"
	"cornerstone_crm/internal/utility"
)

// OrganizationHandler xử lý các request quản lý tổ chức
type OrganizationHandler struct {
	organizationService *authsvc.OrganizationService
}

// NewOrganizationHandler tạo instance mới của OrganizationHandler
func NewOrganizationHandler() (*OrganizationHandler, error) {
	organizationService, err := authsvc.NewOrganizationService()
	if err != nil {
		return nil, fmt.Errorf("failed to create organization service: %v", err)
	}
	return &OrganizationHandler{organizationService: organizationService}, nil
}

// getCurrentUser lấy user từ Locals (đã được AuthMiddleware set)
func getCurrentUser(c fiber.Ctx) (*models.User, error) {
	user, ok := c.Locals("user").(models.User)
	if !ok {
		return nil, common.NewError(common.ErrCodeAuth, "User not authenticated", common.StatusUnauthorized, nil)
	}
	return &user, nil
}

// HandleCreate tạo tổ chức mới, người tạo là owner
func (h *OrganizationHandler) HandleCreate(c fiber.Ctx) error {
	user, err := getCurrentUser(c)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	var input authdto.OrganizationCreateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	org, err := h.organizationService.Create(c.Context(), user.ID, &input)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	logger.LogCRUD("create", "organization", org.ID.Hex(), c, nil)
	basehdl.HandleCreatedResponse(c, org)
	return nil
}

// HandleList liệt kê các tổ chức user là thành viên
func (h *OrganizationHandler) HandleList(c fiber.Ctx) error {
	user, err := getCurrentUser(c)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	orgs, err := h.organizationService.ListForUser(c.Context(), user)
	basehdl.HandleResponse(c, orgs, err)
	return nil
}

// HandleGetById lấy chi tiết tổ chức, yêu cầu là thành viên
func (h *OrganizationHandler) HandleGetById(c fiber.Ctx) error {
	user, err := getCurrentUser(c)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	orgID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	if !utility.Contains(user.OrganizationIDs, orgID) {
		basehdl.HandleResponse(c, nil, common.NewError(common.ErrCodeAuthOrganization, "Bạn không phải thành viên của tổ chức này", common.StatusForbidden, nil))
		return nil
	}
	org, err := h.organizationService.BaseServiceMongoImpl.FindOneById(c.Context(), orgID)
	basehdl.HandleResponse(c, org, err)
	return nil
}

// HandleUpdate cập nhật tổ chức, chỉ owner được phép
func (h *OrganizationHandler) HandleUpdate(c fiber.Ctx) error {
	user, err := getCurrentUser(c)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	orgID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	var input authdto.OrganizationUpdateInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	org, err := h.organizationService.BaseServiceMongoImpl.FindOneById(c.Context(), orgID)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	if org.OwnerID != user.ID {
		basehdl.HandleResponse(c, nil, common.NewError(common.ErrCodeAuthOrganization, "Chỉ owner mới được cập nhật tổ chức", common.StatusForbidden, nil))
		return nil
	}

	set := map[string]interface{}{}
	if input.Name != "" {
		set["name"] = input.Name
	}
	if input.IsActive != nil {
		set["isActive"] = *input.IsActive
	}
	if len(set) == 0 {
		basehdl.HandleResponse(c, org, nil)
		return nil
	}
	updated, err := h.organizationService.BaseServiceMongoImpl.UpdateById(c.Context(), orgID, &basesvc.UpdateData{Set: set})
	if err == nil {
		logger.LogCRUD("update", "organization", orgID.Hex(), c, nil)
	}
	basehdl.HandleResponse(c, updated, err)
	return nil
}

// HandleAddMember thêm thành viên theo email, chỉ owner được phép
func (h *OrganizationHandler) HandleAddMember(c fiber.Ctx) error {
	user, err := getCurrentUser(c)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	orgID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	var input authdto.OrganizationMemberInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	org, err := h.organizationService.BaseServiceMongoImpl.FindOneById(c.Context(), orgID)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	if org.OwnerID != user.ID {
		basehdl.HandleResponse(c, nil, common.NewError(common.ErrCodeAuthOrganization, "Chỉ owner mới được quản lý thành viên", common.StatusForbidden, nil))
		return nil
	}
	member, err := h.organizationService.AddMember(c.Context(), orgID, input.Email)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	logger.LogCRUD("add_member", "organization", orgID.Hex(), c, map[string]interface{}{"member_email": input.Email})
	basehdl.HandleResponse(c, sanitizeUser(member), nil)
	return nil
}

// HandleRemoveMember gỡ thành viên theo email, chỉ owner được phép
func (h *OrganizationHandler) HandleRemoveMember(c fiber.Ctx) error {
	user, err := getCurrentUser(c)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	orgID, err := basehdl.GetObjectIDFromParams(c, "id")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	var input authdto.OrganizationMemberInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	org, err := h.organizationService.BaseServiceMongoImpl.FindOneById(c.Context(), orgID)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	if org.OwnerID != user.ID {
		basehdl.HandleResponse(c, nil, common.NewError(common.ErrCodeAuthOrganization, "Chỉ owner mới được quản lý thành viên", common.StatusForbidden, nil))
		return nil
	}
	err = h.organizationService.RemoveMember(c.Context(), orgID, input.Email)
	if err == nil {
		logger.LogCRUD("remove_member", "organization", orgID.Hex(), c, map[string]interface{}{"member_email": input.Email})
	}
	basehdl.HandleResponse(c, nil, err)
	return nil
}
