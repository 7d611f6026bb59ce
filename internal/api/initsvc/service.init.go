// Package initsvc chứa InitService dùng để khởi tạo dữ liệu mẫu khi chạy
// INITMODE (business demo + content item + bộ asset đầy đủ). Tách ra package
// riêng để cmd/server không phải import trực tiếp từng domain service.
package initsvc

import (
	"context"
	"fmt"

	businessmodels "content_forge/internal/api/business/models"
	businesssvc "content_forge/internal/api/business/service"
	contentmodels "content_forge/internal/api/content/models"
	contentsvc "content_forge/internal/api/content/service"
	"content_forge/internal/logger"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// InitService khởi tạo dữ liệu mẫu cho môi trường development.
type InitService struct {
	businessService     *businesssvc.BusinessService
	contentItemService  *contentsvc.ContentItemService
	contentAssetService *contentsvc.ContentAssetService
}

// NewInitService tạo mới InitService
func NewInitService() (*InitService, error) {
	businessService, err := businesssvc.NewBusinessService()
	if err != nil {
		return nil, fmt.Errorf("failed to create business service: %v", err)
	}
	contentItemService, err := contentsvc.NewContentItemService()
	if err != nil {
		return nil, fmt.Errorf("failed to create content item service: %v", err)
	}
	contentAssetService, err := contentsvc.NewContentAssetService()
	if err != nil {
		return nil, fmt.Errorf("failed to create content asset service: %v", err)
	}
	return &InitService{
		businessService:     businessService,
		contentItemService:  contentItemService,
		contentAssetService: contentAssetService,
	}, nil
}

// InitSampleData tạo một business demo với một content item và đủ tám loại
// asset, tất cả chưa duyệt và chưa lên lịch. Idempotent: business demo đã tồn
// tại thì bỏ qua toàn bộ.
func (s *InitService) InitSampleData(ctx context.Context) error {
	log := logger.GetAppLogger()

	existing, err := s.businessService.FindOne(ctx, bson.M{"ownerEmail": "demo@contentforge.local"}, options.FindOne())
	if err == nil && !existing.ID.IsZero() {
		log.Info("Sample business đã tồn tại, bỏ qua seed dữ liệu mẫu")
		return nil
	}

	business, err := s.businessService.InsertOne(ctx, businessmodels.Business{
		Name:               "Demo Coaching Studio",
		OwnerEmail:         "demo@contentforge.local",
		Timezone:           "Australia/Brisbane",
		Active:             true,
		DefaultPublishHour: 9,
	})
	if err != nil {
		return fmt.Errorf("failed to seed sample business: %w", err)
	}
	log.Infof("Seeded sample business %s", business.ID.Hex())

	item, err := s.contentItemService.InsertOne(ctx, contentmodels.ContentItem{
		BusinessID: business.ID,
		Title:      "Vì sao khách hàng rời bỏ bạn sau buổi tư vấn đầu tiên",
		Status:     contentmodels.ContentItemStatusReviewing,
	})
	if err != nil {
		return fmt.Errorf("failed to seed sample content item: %w", err)
	}

	for _, assetType := range contentmodels.AssetTypes() {
		_, err := s.contentAssetService.InsertOne(ctx, contentmodels.ContentAsset{
			ContentID:   item.ID,
			BusinessID:  business.ID,
			ContentType: assetType,
			Headline:    fmt.Sprintf("[demo] %s", assetType),
		})
		if err != nil {
			return fmt.Errorf("failed to seed sample asset %s: %w", assetType, err)
		}
	}
	log.Infof("Seeded sample content item %s với %d assets", item.ID.Hex(), len(contentmodels.AssetTypes()))

	return nil
}
