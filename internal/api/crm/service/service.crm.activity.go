// Package crmsvc - Service activity log (crm_activity_logs).
package crmsvc

import (
	"fmt"

	crmmodels "cornerstone_crm/internal/api/crm/models"
	basesvc "cornerstone_crm/internal/api/base/service"
	"cornerstone_crm/internal/common"
	"cornerstone_crm/internal/global"
)

// ActivityLogService xử lý logic activity log (crm_activity_logs).
type ActivityLogService struct {
	*basesvc.BaseServiceMongoImpl[crmmodels.ActivityLog]
}

// NewActivityLogService tạo ActivityLogService mới.
func NewActivityLogService() (*ActivityLogService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ActivityLogs)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.ActivityLogs, common.ErrNotFound)
	}
	return &ActivityLogService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[crmmodels.ActivityLog](coll),
	}, nil
}
