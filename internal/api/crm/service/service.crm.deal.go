package crmsvc

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	crmmodels "cornerstone_crm/internal/api/crm/models"
	basesvc "cornerstone_crm/internal/api/base/service"
	"cornerstone_crm/internal/common"
	"cornerstone_crm/internal/global"
)

// OnDealStageChanged được workflow engine gán lúc khởi động để bắt trigger
// deal_stage_changed. Gọi sau khi deal đã chuyển stage thành công.
var OnDealStageChanged func(ctx context.Context, deal *crmmodels.Deal, fromStage string, toStage string)

// DealService xử lý logic deal (crm_deals).
type DealService struct {
	*basesvc.BaseServiceMongoImpl[crmmodels.Deal]
}

// NewDealService tạo DealService mới.
func NewDealService() (*DealService, error) {
	coll, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Deals)
	if !exist {
		return nil, fmt.Errorf("không tìm thấy collection %s: %w", global.MongoDB_ColNames.Deals, common.ErrNotFound)
	}
	return &DealService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[crmmodels.Deal](coll),
	}, nil
}

// NextPositionInStage trả về position kế tiếp trong stage (max hiện tại + 1).
// Deal mới luôn được chèn vào cuối stage, không đánh lại số các deal cũ.
func (s *DealService) NextPositionInStage(ctx context.Context, pipelineID primitive.ObjectID, stageID string) (int, error) {
	filter := bson.M{
		"pipelineId": pipelineID,
		"stageId":    stageID,
	}
	opts := options.FindOne().SetSort(bson.D{{Key: "position", Value: -1}})
	last, err := s.FindOne(ctx, filter, opts)
	if err != nil {
		if err == common.ErrNotFound {
			return 1, nil
		}
		return 0, err
	}
	return last.Position + 1, nil
}

// CreateInStage tạo deal ở cuối stage đích
func (s *DealService) CreateInStage(ctx context.Context, deal crmmodels.Deal) (crmmodels.Deal, error) {
	position, err := s.NextPositionInStage(ctx, deal.PipelineID, deal.StageID)
	if err != nil {
		return deal, err
	}
	deal.Position = position
	if deal.Status == "" {
		deal.Status = crmmodels.DealStatusOpen
	}
	return s.InsertOne(ctx, deal)
}

// MoveStage chuyển deal sang stage khác, chèn vào cuối stage đích.
// Chuyển sang chính stage hiện tại là no-op.
func (s *DealService) MoveStage(ctx context.Context, dealID primitive.ObjectID, toStageID string) (*crmmodels.Deal, error) {
	deal, err := s.FindOneById(ctx, dealID)
	if err != nil {
		return nil, err
	}

	fromStage := deal.StageID
	if fromStage == toStageID {
		return &deal, nil
	}

	position, err := s.NextPositionInStage(ctx, deal.PipelineID, toStageID)
	if err != nil {
		return nil, err
	}

	updated, err := s.UpdateById(ctx, dealID, &basesvc.UpdateData{
		Set: map[string]interface{}{
			"stageId":  toStageID,
			"position": position,
		},
	})
	if err != nil {
		return nil, err
	}

	if OnDealStageChanged != nil {
		OnDealStageChanged(ctx, &updated, fromStage, toStageID)
	}
	return &updated, nil
}
