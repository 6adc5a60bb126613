package crmsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	crmmodels "cornerstone_crm/internal/api/crm/models"
	basesvc "cornerstone_crm/internal/api/base/service"
	"cornerstone_crm/internal/common"
	"cornerstone_crm/internal/global"
)

// NotificationService xử lý logic notification in-app (crm_notifications).
type NotificationService struct {
	*basesvc.BaseServiceMongoImpl[crmmodels.Notification]
}

// NewNotificationService tạo NotificationService mới.
func NewNotificationService() (*NotificationService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Notifications)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Notifications, common.ErrNotFound)
	}
	return &NotificationService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[crmmodels.Notification](coll),
	}, nil
}

// MarkRead đánh dấu một notification đã đọc, chỉ owner của notification mới được phép.
func (s *NotificationService) MarkRead(ctx context.Context, notificationID primitive.ObjectID, userID primitive.ObjectID) error {
	_, err := s.UpdateOne(ctx, bson.M{"_id": notificationID, "userId": userID}, &basesvc.UpdateData{
		Set: map[string]interface{}{"isRead": true},
	}, nil)
	return err
}

// MarkAllRead đánh dấu tất cả notification của user đã đọc.
func (s *NotificationService) MarkAllRead(ctx context.Context, userID primitive.ObjectID) (int64, error) {
	return s.UpdateMany(ctx, bson.M{"userId": userID, "isRead": false}, &basesvc.UpdateData{
		Set: map[string]interface{}{"isRead": true},
	}, nil)
}
