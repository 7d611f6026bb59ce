package contentsvc

import (
	"context"
	"fmt"

	basesvc "content_forge/internal/api/base/service"
	contentmodels "content_forge/internal/api/content/models"
	"content_forge/internal/common"
	"content_forge/internal/global"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentItemService là service quản lý content items
type ContentItemService struct {
	*basesvc.BaseServiceMongoImpl[contentmodels.ContentItem]
}

// NewContentItemService tạo mới ContentItemService
func NewContentItemService() (*ContentItemService, error) {
	collection, exist := global.RegistryCollections.Get(global.MongoDB_ColNames.ContentItems)
	if !exist {
		return nil, fmt.Errorf("failed to get content_items collection: %v", common.ErrNotFound)
	}
	return &ContentItemService{
		BaseServiceMongoImpl: basesvc.NewBaseServiceMongo[contentmodels.ContentItem](collection),
	}, nil
}

// TitlesByIds trả về map id → title cho danh sách content item.
// Dùng khi gắn tiêu đề content cha vào foreign asset trên calendar.
func (s *ContentItemService) TitlesByIds(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]string, error) {
	titles := make(map[primitive.ObjectID]string, len(ids))
	if len(ids) == 0 {
		return titles, nil
	}
	items, err := s.FindManyByIds(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, item := range items {
		titles[item.ID] = item.Title
	}
	return titles, nil
}

// MarkStatus chuyển trạng thái của content item (processing/reviewing/scheduled/published).
func (s *ContentItemService) MarkStatus(ctx context.Context, id primitive.ObjectID, status string) (contentmodels.ContentItem, error) {
	return s.UpdateById(ctx, id, &basesvc.UpdateData{
		Set: map[string]interface{}{"status": status},
	})
}
