package contentsvc

import (
	"context"
	"fmt"

	basesvc "content_forge/internal/api/base/service"
	contentmodels "content_forge/internal/api/content/models"
	"content_forge/internal/common"
	"content_forge/internal/global"

	"go.mongodb.org/mongo-driver/bson/primitive"
	mongoopts "go.mongodb.org/mongo-driver/mongo/options"
)

// ContentAssetService là service quản lý content assets.
// Đây cũng là tầng persistence cho subsystem schedule: mọi thao tác
// ghi scheduledAt đi qua các method *Schedule* bên dưới.
type ContentAssetService struct {
	*basesvc.BaseServiceMongoImpl[contentmodels.ContentAsset]
}

// NewContentAssetService tạo mới ContentAssetService
func NewContentAssetService() (*ContentAssetService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ContentAssets)
	if !exist {
		return nil, fmt.Errorf("failed to get content_assets collection: %v", common.ErrNotFound)
	}
	return &ContentAssetService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[contentmodels.ContentAsset](collection),
	}, nil
}

// SetApproved bật/tắt trạng thái duyệt của một asset.
func (s *ContentAssetService) SetApproved(ctx context.Context, assetID primitive.ObjectID, approved bool) (contentmodels.ContentAsset, error) {
	return s.UpdateById(ctx, assetID, &basesvc.UpdateData{
		Set: map[string]interface{}{"approved": approved},
	})
}

// AssetsByContent lấy toàn bộ asset của một content item, thứ tự tạo.
func (s *ContentAssetService) AssetsByContent(ctx context.Context, contentID primitive.ObjectID) ([]contentmodels.ContentAsset, error) {
	filter := map[string]interface{}{"contentId": contentID}
	opts := mongoopts.Find().SetSort(map[string]interface{}{"createdAt": 1})
	return s.Find(ctx, filter, opts)
}

// BusinessWindow lấy các asset đã lên lịch của một business trong khoảng
// [startUTC, endUTC) (unix millis), loại trừ asset của excludeContentID nếu có.
// Dùng cho hiển thị foreign asset trên calendar.
func (s *ContentAssetService) BusinessWindow(ctx context.Context, businessID primitive.ObjectID, startUTC, endUTC int64, excludeContentID *primitive.ObjectID) ([]contentmodels.ContentAsset, error) {
	filter := map[string]interface{}{
		"businessId":  businessID,
		"scheduledAt": map[string]interface{}{"$gte": startUTC, "$lt": endUTC},
	}
	if excludeContentID != nil {
		filter["contentId"] = map[string]interface{}{"$ne": *excludeContentID}
	}
	opts := mongoopts.Find().SetSort(map[string]interface{}{"scheduledAt": 1})
	return s.Find(ctx, filter, opts)
}

// UpdateSchedule ghi scheduledAt mới cho một asset. scheduledAt nil nghĩa là
// gỡ lịch (unset field để giữ semantics "chưa lên lịch" với sparse index).
func (s *ContentAssetService) UpdateSchedule(ctx context.Context, assetID primitive.ObjectID, scheduledAt *int64) (contentmodels.ContentAsset, error) {
	update := &basesvc.UpdateData{}
	if scheduledAt != nil {
		update.Set = map[string]interface{}{"scheduledAt": *scheduledAt}
	} else {
		update.Unset = map[string]interface{}{"scheduledAt": ""}
	}
	return s.UpdateById(ctx, assetID, update)
}

// ClearSchedules gỡ scheduledAt của toàn bộ asset thuộc một content item.
// Trả về số asset bị ảnh hưởng.
func (s *ContentAssetService) ClearSchedules(ctx context.Context, contentID primitive.ObjectID) (int64, error) {
	filter := map[string]interface{}{"contentId": contentID}
	update := &basesvc.UpdateData{
		Unset: map[string]interface{}{"scheduledAt": ""},
	}
	return s.UpdateMany(ctx, filter, update, nil)
}
