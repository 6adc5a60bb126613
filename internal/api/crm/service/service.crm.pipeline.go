package crmsvc

import (
	"fmt"

	crmmodels "cornerstone_crm/internal/api/crm/models"
	basesvc "cornerstone_crm/internal/api/base/service"
	"cornerstone_crm/internal/common"
	"cornerstone_crm/internal/global"
)

// PipelineService xử lý logic pipeline (crm_pipelines).
type PipelineService struct {
	*basesvc.BaseServiceMongoImpl[crmmodels.Pipeline]
}

// NewPipelineService tạo PipelineService mới.
func NewPipelineService() (*PipelineService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Pipelines)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Pipelines, common.ErrNotFound)
	}
	return &PipelineService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[crmmodels.Pipeline](coll),
	}, nil
}
