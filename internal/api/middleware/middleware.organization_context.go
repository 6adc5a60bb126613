package middleware

import (
	"github.com/gofiber/fiber/v3"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"

	authmodels "cornerstone_crm/internal/api/auth/models"
	"cornerstone_crm/internal/common"
	"cornerstone_crm/internal/logger"
	"cornerstone_crm/internal/utility"
)

// OrganizationContextMiddleware xác định tổ chức đang hoạt động của request.
// Phải chạy SAU AuthMiddleware vì cần user trong Locals.
//
// Thứ tự xác định:
//  1. Header X-Active-Organization-ID (phải là thành viên của tổ chức đó)
//  2. Tổ chức mặc định của user
//
// Kết quả được lưu vào Locals("active_organization_id") dạng primitive.ObjectID.
func OrganizationContextMiddleware() fiber.Handler {
	return func(c fiber.Ctx) error {
		user, ok := c.Locals("user").(authmodels.User)
		if !ok {
			logger.GetAppLogger().WithField("path", c.Path()).
				Warn("❌ [ORG] OrganizationContextMiddleware chạy trước AuthMiddleware")
			HandleErrorResponse(c, common.ErrTokenMissing)
			return nil
		}

		var activeOrgID primitive.ObjectID

		headerOrgID := c.Get("X-Active-Organization-ID")
		if headerOrgID != "" {
			orgID := utility.String2ObjectID(headerOrgID)
			if orgID.IsZero() || !utility.Contains(user.OrganizationIDs, orgID) {
				logger.GetAppLogger().WithFields(logrus.Fields{
					"user_id":         user.ID.Hex(),
					"organization_id": headerOrgID,
				}).Warn("❌ [ORG] User không thuộc tổ chức trong header")
				HandleErrorResponse(c, common.NewError(
					common.ErrCodeAuthOrganization,
					"Bạn không phải thành viên của tổ chức này",
					common.StatusForbidden,
					nil,
				))
				return nil
			}
			activeOrgID = orgID
		} else {
			activeOrgID = user.DefaultOrganizationID
		}

		if activeOrgID.IsZero() {
			HandleErrorResponse(c, common.NewError(
				common.ErrCodeAuthOrganization,
				"Không xác định được tổ chức đang hoạt động",
				common.StatusForbidden,
				nil,
			))
			return nil
		}

		c.Locals("active_organization_id", activeOrgID)
		return c.Next()
	}
}

// GetActiveOrganizationID lấy tổ chức đang hoạt động từ context.
// Trả về NilObjectID nếu middleware chưa chạy.
func GetActiveOrganizationID(c fiber.Ctx) primitive.ObjectID {
	if orgID, ok := c.Locals("active_organization_id").(primitive.ObjectID); ok {
		return orgID
	}
	return primitive.NilObjectID
}
