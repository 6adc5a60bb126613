package middleware

import (
	"context"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"

	authsvc "cornerstone_crm/internal/api/auth/service"
	"cornerstone_crm/internal/common"
	"cornerstone_crm/internal/global"
	"cornerstone_crm/internal/logger"
	"cornerstone_crm/internal/utility"
)

// AuthMiddleware middleware xác thực JWT cho Fiber.
// Token hợp lệ khi: chữ ký đúng với JwtSecret, chưa hết hạn,
// và trùng với token đang lưu trên user document (logout làm mất hiệu lực token cũ).
func AuthMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":   c.Path(),
				"method": c.Method(),
			}).Warn("❌ [AUTH] Missing Authorization header")
			HandleErrorResponse(c, common.ErrTokenMissing)
			return nil
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		tokenString := parts[1]

		// Parse và validate JWT
		token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, common.ErrTokenInvalid
			}
			return []byte(global.ServerConfig.JwtSecret), nil
		})
		if err != nil {
			ve, ok := err.(*jwt.ValidationError)
			if ok && ve.Errors&jwt.ValidationErrorExpired != 0 {
				HandleErrorResponse(c, common.ErrTokenExpired)
				return nil
			}
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok || !token.Valid {
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		userIDStr, ok := claims["userId"].(string)
		if !ok || userIDStr == "" {
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		userService, err := authsvc.NewUserService()
		if err != nil {
			HandleErrorResponse(c, err)
			return nil
		}

		user, err := userService.FindOneById(context.Background(), utility.String2ObjectID(userIDStr))
		if err != nil {
			logger.GetAppLogger().WithFields(logrus.Fields{
				"path":    c.Path(),
				"user_id": userIDStr,
			}).Warn("❌ [AUTH] User in token not found")
			HandleErrorResponse(c, common.ErrTokenInvalid)
			return nil
		}

		// Token không trùng token đang lưu nghĩa là đã logout hoặc login nơi khác
		if user.Token != tokenString {
			HandleErrorResponse(c, common.ErrTokenExpired)
			return nil
		}

		if user.IsBlock {
			HandleErrorResponse(c, common.NewError(
				common.ErrCodeAuthCredentials,
				"Tài khoản đã bị khóa: "+user.BlockNote,
				common.StatusForbidden,
				nil,
			))
			return nil
		}

		// Lưu thông tin user vào context
		c.Locals("user_id", user.ID.Hex())
		c.Locals("userID", user.ID.Hex())
		c.Locals("user", user)

		return c.Next()
	}
}
