// Package crmsvc - các service thuộc domain CRM.
package crmsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	crmmodels "cornerstone_crm/internal/api/crm/models"
	basesvc "cornerstone_crm/internal/api/base/service"
	"cornerstone_crm/internal/common"
	"cornerstone_crm/internal/global"
	"cornerstone_crm/internal/utility"
)

// OnContactTagsChanged được workflow engine gán lúc khởi động để bắt trigger
// tag_added / tag_removed. Gọi sau khi tag của contact đã được persist.
// Để nil thì bỏ qua (không có automation nào quan tâm).
var OnContactTagsChanged func(ctx context.Context, contact *crmmodels.Contact, added []primitive.ObjectID, removed []primitive.ObjectID)

// ContactService xử lý logic contact (crm_contacts).
type ContactService struct {
	*basesvc.BaseServiceMongoImpl[crmmodels.Contact]
}

// NewContactService tạo ContactService mới.
func NewContactService() (*ContactService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Contacts)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Contacts, common.ErrNotFound)
	}
	return &ContactService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[crmmodels.Contact](coll),
	}, nil
}

// AddTags gắn tag lên contact theo phép hợp tập hợp.
// Idempotent: tag đã có sẽ không được thêm lại. Trả về contact sau cập nhật
// và danh sách tag thực sự được thêm mới.
func (s *ContactService) AddTags(ctx context.Context, contactID primitive.ObjectID, tagIDs []primitive.ObjectID) (*crmmodels.Contact, []primitive.ObjectID, error) {
	contact, err := s.FindOneById(ctx, contactID)
	if err != nil {
		return nil, nil, err
	}

	added := make([]primitive.ObjectID, 0, len(tagIDs))
	newTags := contact.TagIDs
	for _, tagID := range tagIDs {
		if !utility.Contains(newTags, tagID) {
			newTags = append(newTags, tagID)
			added = append(added, tagID)
		}
	}

	if len(added) == 0 {
		return &contact, added, nil
	}

	updated, err := s.UpdateById(ctx, contactID, &basesvc.UpdateData{
		Set: map[string]interface{}{"tagIds": newTags},
	})
	if err != nil {
		return nil, nil, err
	}

	if OnContactTagsChanged != nil {
		OnContactTagsChanged(ctx, &updated, added, nil)
	}
	return &updated, added, nil
}

// RemoveTags gỡ tag khỏi contact theo phép hiệu tập hợp.
// Gỡ tag không tồn tại là no-op. Trả về contact sau cập nhật và danh sách tag thực sự bị gỡ.
func (s *ContactService) RemoveTags(ctx context.Context, contactID primitive.ObjectID, tagIDs []primitive.ObjectID) (*crmmodels.Contact, []primitive.ObjectID, error) {
	contact, err := s.FindOneById(ctx, contactID)
	if err != nil {
		return nil, nil, err
	}

	removed := make([]primitive.ObjectID, 0, len(tagIDs))
	newTags := contact.TagIDs
	for _, tagID := range tagIDs {
		if utility.Contains(newTags, tagID) {
			newTags = utility.Remove(newTags, tagID)
			removed = append(removed, tagID)
		}
	}

	if len(removed) == 0 {
		return &contact, removed, nil
	}

	updated, err := s.UpdateById(ctx, contactID, &basesvc.UpdateData{
		Set: map[string]interface{}{"tagIds": newTags},
	})
	if err != nil {
		return nil, nil, err
	}

	if OnContactTagsChanged != nil {
		OnContactTagsChanged(ctx, &updated, nil, removed)
	}
	return &updated, removed, nil
}

// SetField ghi một field lên contact theo allow-list cột chuẩn.
// Field ngoài allow-list được merge vào customFields. Trả về giá trị cũ và cờ isCustom.
func (s *ContactService) SetField(ctx context.Context, contactID primitive.ObjectID, field string, value interface{}) (oldValue interface{}, isCustom bool, err error) {
	contact, err := s.FindOneById(ctx, contactID)
	if err != nil {
		return nil, false, err
	}

	if crmmodels.ContactStandardFields[field] {
		contactMap, mapErr := utility.ToMap(contact)
		if mapErr == nil {
			oldValue = contactMap[field]
		}
		_, err = s.UpdateById(ctx, contactID, &basesvc.UpdateData{
			Set: map[string]interface{}{field: value},
		})
		return oldValue, false, err
	}

	if contact.CustomFields != nil {
		oldValue = contact.CustomFields[field]
	}
	_, err = s.UpdateById(ctx, contactID, &basesvc.UpdateData{
		Set: map[string]interface{}{"customFields." + field: value},
	})
	return oldValue, true, err
}
