package crmsvc

import (
	"fmt"

	crmmodels "cornerstone_crm/internal/api/crm/models"
	basesvc "cornerstone_crm/internal/api/base/service"
	"cornerstone_crm/internal/common"
	"cornerstone_crm/internal/global"
)

// TagService xử lý logic tag (crm_tags).
type TagService struct {
	*basesvc.BaseServiceMongoImpl[crmmodels.Tag]
}

// NewTagService tạo TagService mới.
func NewTagService() (*TagService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Tags)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Tags, common.ErrNotFound)
	}
	return &TagService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[crmmodels.Tag](coll),
	}, nil
}
