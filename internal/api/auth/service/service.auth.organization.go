// Package authsvc - service tổ chức (Organization).
package authsvc

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	authdto "cornerstone_crm/internal/api/auth/dto"
	models "cornerstone_crm/internal/api/auth/models"
	basesvc "cornerstone_crm/internal/api/base/service"
	"cornerstone_crm/internal/common"
	"cornerstone_crm/internal/global"
	"cornerstone_crm/internal/utility"
)

// OrganizationService là cấu trúc chứa các phương thức liên quan đến tổ chức
type OrganizationService struct {
	*basesvc.BaseServiceMongoImpl[models.Organization]
	userService *basesvc.BaseServiceMongoImpl[models.User]
}

// NewOrganizationService tạo mới OrganizationService
func NewOrganizationService() (*OrganizationService, error) {
	organizationCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Organizations)
	if !exist {
		return nil, fmt.Errorf("failed to get organizations collection: %v", common.ErrNotFound)
	}
	userCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("failed to get users collection: %v", common.ErrNotFound)
	}

	return &OrganizationService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.Organization](organizationCollection),
		userService:          basesvc.NewBaseServiceMongo[models.User](userCollection),
	}, nil
}

// Create tạo tổ chức mới, người tạo trở thành owner và thành viên.
func (s *OrganizationService) Create(ctx context.Context, ownerID primitive.ObjectID, input *authdto.OrganizationCreateInput) (*models.Organization, error) {
	org, err := s.BaseServiceMongoImpl.InsertOne(ctx, models.Organization{
		Name:     input.Name,
		Code:     input.Code,
		OwnerID:  ownerID,
		IsActive: true,
	})
	if err != nil {
		if errors.Is(err, common.ErrMongoDuplicate) {
			return nil, common.NewError(common.ErrCodeBusinessOperation, "Mã tổ chức đã tồn tại", common.StatusConflict, nil)
		}
		return nil, err
	}

	// Thêm owner làm thành viên của tổ chức
	if err := s.addMemberByID(ctx, ownerID, org.ID); err != nil {
		return nil, err
	}

	return &org, nil
}

// AddMember thêm user (theo email) làm thành viên của tổ chức
func (s *OrganizationService) AddMember(ctx context.Context, orgID primitive.ObjectID, email string) (*models.User, error) {
	user, err := s.userService.FindOne(ctx, bson.M{"email": email}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrUserNotFound
		}
		return nil, err
	}

	if utility.Contains(user.OrganizationIDs, orgID) {
		return &user, nil
	}

	if err := s.addMemberByID(ctx, user.ID, orgID); err != nil {
		return nil, err
	}
	user.OrganizationIDs = append(user.OrganizationIDs, orgID)
	return &user, nil
}

// RemoveMember gỡ user khỏi tổ chức. Không cho gỡ owner.
func (s *OrganizationService) RemoveMember(ctx context.Context, orgID primitive.ObjectID, email string) error {
	org, err := s.BaseServiceMongoImpl.FindOneById(ctx, orgID)
	if err != nil {
		return err
	}

	user, err := s.userService.FindOne(ctx, bson.M{"email": email}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.ErrUserNotFound
		}
		return err
	}

	if org.OwnerID == user.ID {
		return common.NewError(common.ErrCodeBusinessOperation, "Không thể gỡ owner khỏi tổ chức", common.StatusConflict, nil)
	}

	newOrgIDs := utility.Remove(user.OrganizationIDs, orgID)
	set := map[string]interface{}{"organizationIds": newOrgIDs}
	if user.DefaultOrganizationID == orgID {
		if len(newOrgIDs) > 0 {
			set["defaultOrganizationId"] = newOrgIDs[0]
		} else {
			set["defaultOrganizationId"] = primitive.NilObjectID
		}
	}
	_, err = s.userService.UpdateById(ctx, user.ID, &basesvc.UpdateData{Set: set})
	return err
}

// addMemberByID push orgID vào organizationIds của user ($addToSet chống trùng)
func (s *OrganizationService) addMemberByID(ctx context.Context, userID primitive.ObjectID, orgID primitive.ObjectID) error {
	updateData := &basesvc.UpdateData{
		AddToSet: map[string]interface{}{
			"organizationIds": orgID,
		},
	}
	_, err := s.userService.UpdateById(ctx, userID, updateData)
	return err
}

// ListForUser trả về các tổ chức user là thành viên
func (s *OrganizationService) ListForUser(ctx context.Context, user *models.User) ([]models.Organization, error) {
	if len(user.OrganizationIDs) == 0 {
		return []models.Organization{}, nil
	}
	return s.BaseServiceMongoImpl.FindManyByIds(ctx, user.OrganizationIDs)
}
