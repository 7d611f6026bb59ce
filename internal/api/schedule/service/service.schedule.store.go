package schedulesvc

import (
	"context"

	contentmodels "content_forge/internal/api/content/models"
	contentsvc "content_forge/internal/api/content/service"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleChange một cặp asset → lịch mới gửi xuống store.
// ScheduledAt nil nghĩa là gỡ lịch.
type ScheduleChange struct {
	AssetID     primitive.ObjectID
	ScheduledAt *int64
}

// BatchOutcome kết quả per-item của một batch commit.
type BatchOutcome struct {
	Succeeded []primitive.ObjectID
	Failed    map[primitive.ObjectID]error
}

// AllSucceeded batch không có item nào fail.
func (o BatchOutcome) AllSucceeded() bool {
	return len(o.Failed) == 0
}

// AllFailed batch không có item nào thành công.
func (o BatchOutcome) AllFailed() bool {
	return len(o.Succeeded) == 0 && len(o.Failed) > 0
}

// SucceededChanges lọc ra các change đã ghi thành công, kèm giá trị đã ghi.
// Dùng để gỡ entry ledger có điều kiện sau khi batch hoàn tất.
func (o BatchOutcome) SucceededChanges(changes []ScheduleChange) []ScheduleChange {
	succeeded := make(map[primitive.ObjectID]bool, len(o.Succeeded))
	for _, assetID := range o.Succeeded {
		succeeded[assetID] = true
	}
	committed := make([]ScheduleChange, 0, len(o.Succeeded))
	for _, change := range changes {
		if succeeded[change.AssetID] {
			committed = append(committed, change)
		}
	}
	return committed
}

// ScheduleStore là tầng persistence của subsystem schedule. Mongo
// implementation bọc ContentAssetService; test dùng fake.
type ScheduleStore interface {
	// AssetsByContent lấy danh sách asset authoritative của content item.
	AssetsByContent(ctx context.Context, contentID primitive.ObjectID) ([]contentmodels.ContentAsset, error)
	// UpdateSchedule ghi lịch mới cho một asset.
	UpdateSchedule(ctx context.Context, assetID primitive.ObjectID, scheduledAt *int64) (contentmodels.ContentAsset, error)
	// SaveBatch ghi nhiều thay đổi lịch, trả về kết quả từng item.
	// error chỉ non-nil khi lỗi transport (không item nào được thử).
	SaveBatch(ctx context.Context, changes []ScheduleChange) (BatchOutcome, error)
	// ClearSchedules gỡ lịch toàn bộ asset của content item.
	ClearSchedules(ctx context.Context, contentID primitive.ObjectID) (int64, error)
}

// mongoScheduleStore là ScheduleStore chạy trên content_assets qua
// ContentAssetService.
type mongoScheduleStore struct {
	assets *contentsvc.ContentAssetService
}

// NewMongoScheduleStore tạo store mongo-backed.
func NewMongoScheduleStore(assets *contentsvc.ContentAssetService) ScheduleStore {
	return &mongoScheduleStore{assets: assets}
}

func (s *mongoScheduleStore) AssetsByContent(ctx context.Context, contentID primitive.ObjectID) ([]contentmodels.ContentAsset, error) {
	return s.assets.AssetsByContent(ctx, contentID)
}

func (s *mongoScheduleStore) UpdateSchedule(ctx context.Context, assetID primitive.ObjectID, scheduledAt *int64) (contentmodels.ContentAsset, error) {
	return s.assets.UpdateSchedule(ctx, assetID, scheduledAt)
}

func (s *mongoScheduleStore) SaveBatch(ctx context.Context, changes []ScheduleChange) (BatchOutcome, error) {
	outcome := BatchOutcome{Failed: make(map[primitive.ObjectID]error)}
	for _, change := range changes {
		if err := ctx.Err(); err != nil {
			// Transport/context hỏng giữa chừng: các item chưa thử tính là fail
			outcome.Failed[change.AssetID] = err
			continue
		}
		if _, err := s.assets.UpdateSchedule(ctx, change.AssetID, change.ScheduledAt); err != nil {
			outcome.Failed[change.AssetID] = err
			continue
		}
		outcome.Succeeded = append(outcome.Succeeded, change.AssetID)
	}
	return outcome, nil
}

func (s *mongoScheduleStore) ClearSchedules(ctx context.Context, contentID primitive.ObjectID) (int64, error) {
	return s.assets.ClearSchedules(ctx, contentID)
}
