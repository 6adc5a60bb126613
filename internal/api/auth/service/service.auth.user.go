// Package authsvc - service người dùng (User).
package authsvc

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"time"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	authdto "cornerstone_crm/internal/api/auth/dto"
	models "cornerstone_crm/internal/api/auth/models"
	basesvc "cornerstone_crm/internal/api/base/service"
	"cornerstone_crm/internal/common"
	"cornerstone_crm/internal/global"
	"cornerstone_crm/internal/utility"
)

// UserService là cấu trúc chứa các phương thức liên quan đến người dùng
type UserService struct {
	*basesvc.BaseServiceMongoImpl[models.User]
	organizationService *basesvc.BaseServiceMongoImpl[models.Organization]
}

// NewUserService tạo mới UserService
func NewUserService() (*UserService, error) {
	userCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Users)
	if !exist {
		return nil, fmt.Errorf("failed to get users collection: %v", common.ErrNotFound)
	}
	organizationCollection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Organizations)
	if !exist {
		return nil, fmt.Errorf("failed to get organizations collection: %v", common.ErrNotFound)
	}

	return &UserService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[models.User](userCollection),
		organizationService:  basesvc.NewBaseServiceMongo[models.Organization](organizationCollection),
	}, nil
}

// Register đăng ký tài khoản mới.
// Mỗi user mới được tạo kèm một tổ chức cá nhân và trở thành thành viên mặc định của tổ chức đó.
func (s *UserService) Register(ctx context.Context, input *authdto.UserRegisterInput) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, common.NewError(common.ErrCodeInternalServer, "Không thể mã hóa mật khẩu", common.StatusInternalServerError, err)
	}

	user, err := s.BaseServiceMongoImpl.InsertOne(ctx, models.User{
		Name:     input.Name,
		Email:    input.Email,
		Password: string(hashed),
		Tokens:   []models.Token{},
	})
	if err != nil {
		if errors.Is(err, common.ErrMongoDuplicate) {
			return nil, common.NewError(common.ErrCodeAuthCredentials, "Email đã được sử dụng", common.StatusConflict, nil)
		}
		return nil, err
	}

	// Tạo tổ chức cá nhân cho user mới
	org, err := s.organizationService.InsertOne(ctx, models.Organization{
		Name:     input.Name,
		Code:     "ORG" + user.ID.Hex(),
		OwnerID:  user.ID,
		IsActive: true,
	})
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": user.ID.Hex(), "error": err.Error()}).Error("Register: Lỗi khi tạo tổ chức cá nhân")
		return nil, err
	}

	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"organizationIds":       []primitive.ObjectID{org.ID},
			"defaultOrganizationId": org.ID,
		},
	}
	updatedUser, err := s.BaseServiceMongoImpl.UpdateById(ctx, user.ID, updateData)
	if err != nil {
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"user_id": updatedUser.ID.Hex(), "email": updatedUser.Email}).Info("Register: Đăng ký thành công")
	return &updatedUser, nil
}

// Login đăng nhập bằng email và mật khẩu, trả về user kèm token mới.
func (s *UserService) Login(ctx context.Context, input *authdto.UserLoginInput) (*models.User, error) {
	user, err := s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"email": input.Email}, nil)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.Password)); err != nil {
		return nil, common.ErrInvalidCredentials
	}

	if user.IsBlock {
		return nil, common.NewError(common.ErrCodeAuth, "Tài khoản đã bị khóa: "+user.BlockNote, common.StatusForbidden, nil)
	}

	rdNumber := rand.Intn(100)
	currentTime := time.Now().Unix()
	tokenMap, err := utility.CreateToken(global.ServerConfig.JwtSecret, user.ID.Hex(), strconv.FormatInt(currentTime, 16), strconv.Itoa(rdNumber))
	if err != nil {
		return nil, err
	}

	user.Token = tokenMap["token"]
	idTokenExist := -1
	for i, t := range user.Tokens {
		if t.Hwid == input.Hwid {
			idTokenExist = i
			break
		}
	}
	if idTokenExist == -1 {
		user.Tokens = append(user.Tokens, models.Token{Hwid: input.Hwid, JwtToken: tokenMap["token"]})
	} else {
		user.Tokens[idTokenExist].JwtToken = tokenMap["token"]
	}

	tokenUpdateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"token":  user.Token,
			"tokens": user.Tokens,
		},
	}
	updatedUser, err := s.BaseServiceMongoImpl.UpdateById(ctx, user.ID, tokenUpdateData)
	if err != nil {
		logrus.WithFields(logrus.Fields{"user_id": user.ID.Hex(), "error": err.Error()}).Error("Login: Lỗi khi cập nhật token vào user")
		return nil, err
	}

	logrus.WithFields(logrus.Fields{"user_id": updatedUser.ID.Hex(), "email": updatedUser.Email}).Info("Login: Đăng nhập thành công")
	return &updatedUser, nil
}

// Logout đăng xuất người dùng (xóa token theo hwid)
func (s *UserService) Logout(ctx context.Context, userID primitive.ObjectID, input *authdto.UserLogoutInput) error {
	user, err := s.BaseServiceMongoImpl.FindOneById(ctx, userID)
	if err != nil {
		return err
	}
	newTokens := make([]models.Token, 0)
	for _, t := range user.Tokens {
		if t.Hwid != input.Hwid {
			newTokens = append(newTokens, t)
		}
	}
	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"tokens": newTokens,
			"token":  "",
		},
	}
	_, err = s.BaseServiceMongoImpl.UpdateById(ctx, userID, updateData)
	return err
}

// ChangePassword đổi mật khẩu, yêu cầu mật khẩu cũ đúng.
// Đổi mật khẩu xong sẽ thu hồi toàn bộ token hiện có.
func (s *UserService) ChangePassword(ctx context.Context, userID primitive.ObjectID, input *authdto.UserChangePasswordInput) error {
	user, err := s.BaseServiceMongoImpl.FindOneById(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(input.OldPassword)); err != nil {
		return common.NewError(common.ErrCodeAuthCredentials, "Mật khẩu cũ không đúng", common.StatusUnauthorized, nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		return common.NewError(common.ErrCodeInternalServer, "Không thể mã hóa mật khẩu", common.StatusInternalServerError, err)
	}

	updateData := &basesvc.UpdateData{
		Set: map[string]interface{}{
			"password": string(hashed),
			"token":    "",
			"tokens":   []models.Token{},
		},
	}
	_, err = s.BaseServiceMongoImpl.UpdateById(ctx, userID, updateData)
	return err
}

// SetBlock khóa hoặc mở khóa tài khoản theo email.
// Khi khóa sẽ thu hồi toàn bộ token để buộc đăng xuất ngay.
func (s *UserService) SetBlock(ctx context.Context, email string, isBlock bool, note string) (*models.User, error) {
	user, err := s.BaseServiceMongoImpl.FindOne(ctx, bson.M{"email": email}, nil)
	if err != nil {
		return nil, err
	}

	set := map[string]interface{}{
		"isBlock":   isBlock,
		"blockNote": note,
	}
	if isBlock {
		set["token"] = ""
		set["tokens"] = []models.Token{}
	}

	updatedUser, err := s.BaseServiceMongoImpl.UpdateById(ctx, user.ID, &basesvc.UpdateData{Set: set})
	if err != nil {
		return nil, err
	}
	return &updatedUser, nil
}
