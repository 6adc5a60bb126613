package wfsvc

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	crmmodels "cornerstone_crm/internal/api/crm/models"
	crmsvc "cornerstone_crm/internal/api/crm/service"
	"cornerstone_crm/internal/api/events"
	"cornerstone_crm/internal/global"
)

// RegisterTriggerHooks nối engine vào các nguồn sự kiện CRM. Gọi một lần
// lúc khởi động server, sau khi registry collection đã sẵn sàng.
//
// Hai loại nguồn:
//   - Hook tường minh từ crm service cho các thay đổi không phải insert
//     (tag thêm/bớt, deal đổi stage) vì event bus chỉ thấy document sau
//     cập nhật, không thấy diff.
//   - Event bus cho các trigger hình insert (contact mới, deal mới,
//     form submission mới).
func RegisterTriggerHooks(engine *Engine) {
	crmsvc.OnContactTagsChanged = func(ctx context.Context, contact *crmmodels.Contact, added, removed []primitive.ObjectID) {
		engine.HandleTagsChanged(ctx, contact, added, removed)
	}

	crmsvc.OnDealStageChanged = func(ctx context.Context, deal *crmmodels.Deal, fromStage, toStage string) {
		engine.HandleDealStageChanged(ctx, deal, fromStage, toStage)
	}

	events.OnDataChanged(func(ctx context.Context, ev events.DataChangeEvent) {
		if ev.Operation != events.OpInsert {
			return
		}
		switch ev.CollectionName {
		case global.MongoDB_ColNames.Contacts:
			if contact, ok := ev.Document.(crmmodels.Contact); ok {
				engine.HandleContactCreated(ctx, &contact)
			}
		case global.MongoDB_ColNames.Deals:
			if deal, ok := ev.Document.(crmmodels.Deal); ok {
				engine.HandleDealCreated(ctx, &deal)
			}
		case global.MongoDB_ColNames.FormSubmissions:
			if submission, ok := ev.Document.(crmmodels.FormSubmission); ok {
				engine.HandleFormSubmitted(ctx, &submission)
			}
		}
	})
}
