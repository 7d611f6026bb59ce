package businesssvc

import (
	"context"
	"fmt"

	businessmodels "content_forge/internal/api/business/models"
	basesvc "content_forge/internal/api/base/service"
	"content_forge/internal/common"
	"content_forge/internal/global"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// BusinessService là service quản lý businesses
type BusinessService struct {
	*basesvc.BaseServiceMongoImpl[businessmodels.Business]
}

// NewBusinessService tạo mới BusinessService
func NewBusinessService() (*BusinessService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.Businesses)
	if !exist {
		return nil, fmt.Errorf("failed to get businesses collection: %v", common.ErrNotFound)
	}
	return &BusinessService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[businessmodels.Business](collection),
	}, nil
}

// GetTimezone lấy IANA timezone của business. Trả về "UTC" nếu business chưa cấu hình timezone.
func (s *BusinessService) GetTimezone(ctx context.Context, businessID primitive.ObjectID) (string, error) {
	business, err := s.FindOneById(ctx, businessID)
	if err != nil {
		return "", err
	}
	if business.Timezone == "" {
		return "UTC", nil
	}
	return business.Timezone, nil
}

// GetPublishHour lấy giờ đăng bài mặc định (business-local) của business.
func (s *BusinessService) GetPublishHour(ctx context.Context, businessID primitive.ObjectID) (int, error) {
	business, err := s.FindOneById(ctx, businessID)
	if err != nil {
		return 0, err
	}
	return business.DefaultPublishHour, nil
}
