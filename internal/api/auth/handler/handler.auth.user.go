// Package authhdl xử lý request HTTP cho domain auth.
package authhdl

import (
	"fmt"

	"github.com/gofiber/fiber/v3"
	"go.mongodb.org/mongo-driver/bson/primitive"

	authdto "cornerstone_crm/internal/api/auth/dto"
	models "cornerstone_crm/internal/api/auth/models"
	authsvc "cornerstone_crm/internal/api/auth/service"
	basehdl "cornerstone_crm/internal/api/base/handler"
	basesvc "cornerstone_crm/internal/api/base/service"
	"cornerstone_crm/internal/common"
	"cornerstone_crm/internal/logger"
)

// UserHandler xử lý các request xác thực và quản lý người dùng
type UserHandler struct {
	userService *authsvc.UserService
}

// NewUserHandler tạo instance mới của UserHandler
func NewUserHandler() (*UserHandler, error) {
	userService, err := authsvc.NewUserService()
	if err != nil {
		return nil, fmt.Errorf("failed to create user service: %v", err)
	}
	return &UserHandler{userService: userService}, nil
}

// sanitizeUser xóa các trường nhạy cảm trước khi trả về client
func sanitizeUser(user *models.User) *models.User {
	user.Password = ""
	user.Tokens = nil
	return user
}

// HandleRegister đăng ký tài khoản mới
func (h *UserHandler) HandleRegister(c fiber.Ctx) error {
	var input authdto.UserRegisterInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	user, err := h.userService.Register(c.Context(), &input)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	logger.LogAuth("register", c, map[string]interface{}{"user_id": user.ID.Hex(), "email": user.Email})
	basehdl.HandleCreatedResponse(c, sanitizeUser(user))
	return nil
}

// HandleLogin đăng nhập bằng email và mật khẩu
func (h *UserHandler) HandleLogin(c fiber.Ctx) error {
	var input authdto.UserLoginInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	user, err := h.userService.Login(c.Context(), &input)
	if err != nil {
		logger.LogAuth("login_failed", c, map[string]interface{}{"email": input.Email, "error": err.Error()})
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	logger.LogAuth("login", c, map[string]interface{}{"user_id": user.ID.Hex()})
	basehdl.HandleResponse(c, sanitizeUser(user), nil)
	return nil
}

// HandleLogout xử lý đăng xuất người dùng
func (h *UserHandler) HandleLogout(c fiber.Ctx) error {
	userID := c.Locals("user_id")
	if userID == nil {
		basehdl.HandleResponse(c, nil, common.NewError(common.ErrCodeAuth, "User not authenticated", common.StatusUnauthorized, nil))
		return nil
	}
	var input authdto.UserLogoutInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	objID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		basehdl.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "Invalid user ID", common.StatusBadRequest, err))
		return nil
	}
	err = h.userService.Logout(c.Context(), objID, &input)
	if err == nil {
		logger.LogAuth("logout", c, map[string]interface{}{"user_id": objID.Hex()})
	}
	basehdl.HandleResponse(c, nil, err)
	return nil
}

// HandleGetProfile lấy thông tin profile của người dùng
func (h *UserHandler) HandleGetProfile(c fiber.Ctx) error {
	userID := c.Locals("user_id")
	if userID == nil {
		basehdl.HandleResponse(c, nil, common.NewError(common.ErrCodeAuth, "User not authenticated", common.StatusUnauthorized, nil))
		return nil
	}
	objID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		basehdl.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "Invalid user ID", common.StatusBadRequest, err))
		return nil
	}
	user, err := h.userService.BaseServiceMongoImpl.FindOneById(c.Context(), objID)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	basehdl.HandleResponse(c, sanitizeUser(&user), nil)
	return nil
}

// HandleUpdateProfile cập nhật thông tin profile
func (h *UserHandler) HandleUpdateProfile(c fiber.Ctx) error {
	userID := c.Locals("user_id")
	if userID == nil {
		basehdl.HandleResponse(c, nil, common.NewError(common.ErrCodeAuth, "User not authenticated", common.StatusUnauthorized, nil))
		return nil
	}
	var input authdto.UserChangeInfoInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	objID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		basehdl.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "Invalid user ID", common.StatusBadRequest, err))
		return nil
	}
	update := &basesvc.UpdateData{Set: map[string]interface{}{"name": input.Name}}
	updatedUser, err := h.userService.BaseServiceMongoImpl.UpdateById(c.Context(), objID, update)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	basehdl.HandleResponse(c, sanitizeUser(&updatedUser), nil)
	return nil
}

// HandleChangePassword đổi mật khẩu của người dùng đang đăng nhập
func (h *UserHandler) HandleChangePassword(c fiber.Ctx) error {
	userID := c.Locals("user_id")
	if userID == nil {
		basehdl.HandleResponse(c, nil, common.NewError(common.ErrCodeAuth, "User not authenticated", common.StatusUnauthorized, nil))
		return nil
	}
	var input authdto.UserChangePasswordInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	objID, err := primitive.ObjectIDFromHex(userID.(string))
	if err != nil {
		basehdl.HandleResponse(c, nil, common.NewError(common.ErrCodeValidationFormat, "Invalid user ID", common.StatusBadRequest, err))
		return nil
	}
	err = h.userService.ChangePassword(c.Context(), objID, &input)
	if err == nil {
		logger.LogAuth("change_password", c, map[string]interface{}{"user_id": objID.Hex()})
	}
	basehdl.HandleResponse(c, nil, err)
	return nil
}

// HandleBlockUser khóa tài khoản theo email
func (h *UserHandler) HandleBlockUser(c fiber.Ctx) error {
	var input authdto.BlockUserInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	user, err := h.userService.SetBlock(c.Context(), input.Email, true, input.Note)
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	basehdl.HandleResponse(c, sanitizeUser(user), nil)
	return nil
}

// HandleUnBlockUser mở khóa tài khoản theo email
func (h *UserHandler) HandleUnBlockUser(c fiber.Ctx) error {
	var input authdto.UnBlockUserInput
	if err := basehdl.ParseRequestBody(c, &input); err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	user, err := h.userService.SetBlock(c.Context(), input.Email, false, "")
	if err != nil {
		basehdl.HandleResponse(c, nil, err)
		return nil
	}
	basehdl.HandleResponse(c, sanitizeUser(user), nil)
	return nil
}
