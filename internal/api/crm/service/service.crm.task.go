package crmsvc

import (
	"fmt"

	crmmodels "cornerstone_crm/internal/api/crm/models"
	basesvc "cornerstone_crm/internal/api/base/service"
	"cornerstone_crm/internal/common"
	"cornerstone_crm/internal/global"
)

// TaskService xử lý logic task (crm_tasks).
type TaskService struct {
	*basesvc.BaseServiceMongoImpl[crmmodels.Task]
}

// NewTaskService tạo TaskService mới.
func NewTaskService() (*TaskService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Tasks)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Tasks, common.ErrNotFound)
	}
	return &TaskService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[crmmodels.Task](coll),
	}, nil
}
