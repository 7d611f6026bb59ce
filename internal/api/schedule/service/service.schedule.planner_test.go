// Package schedulesvc - Test bảng trình tự đăng và thuật toán auto-schedule.
package schedulesvc

import (
	"testing"
	"time"

	contentmodels "content_forge/internal/api/content/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func makeAsset(contentType string, approved bool, scheduledAt *int64) contentmodels.ContentAsset {
	return contentmodels.ContentAsset{
		ID:          primitive.NewObjectID(),
		ContentID:   primitive.NewObjectID(),
		BusinessID:  primitive.NewObjectID(),
		ContentType: contentType,
		Approved:    approved,
		ScheduledAt: scheduledAt,
	}
}

func fullApprovedSet() []contentmodels.ContentAsset {
	assets := make([]contentmodels.ContentAsset, 0, len(contentmodels.AssetTypes()))
	for _, assetType := range contentmodels.AssetTypes() {
		assets = append(assets, makeAsset(assetType, true, nil))
	}
	return assets
}

func findByType(assets []contentmodels.ContentAsset, contentType string) contentmodels.ContentAsset {
	for _, asset := range assets {
		if asset.ContentType == contentType {
			return asset
		}
	}
	return contentmodels.ContentAsset{}
}

func TestSequenceRules_CoverAllAssetTypes(t *testing.T) {
	seen := map[string]bool{}
	for _, rule := range SequenceRules() {
		for _, contentType := range rule.ContentTypes {
			assert.False(t, seen[contentType], "loại %s xuất hiện hai lần trong bảng trình tự", contentType)
			seen[contentType] = true
		}
	}
	for _, assetType := range contentmodels.AssetTypes() {
		assert.True(t, seen[assetType], "loại %s không có trong bảng trình tự", assetType)
	}
}

func TestPlanSchedule_BrisbaneSequence(t *testing.T) {
	assets := fullApprovedSet()
	loc, _ := time.LoadLocation("Australia/Brisbane")
	startDate := time.Date(2024, 1, 1, 0, 0, 0, 0, loc)

	plan, err := PlanSchedule(assets, startDate, "Australia/Brisbane", 9)
	require.NoError(t, err)
	require.Len(t, plan, len(assets))

	// Ngày 0: youtube_video 2024-01-01 09:00 Brisbane = 2023-12-31 23:00 UTC
	youtube := findByType(assets, contentmodels.AssetTypeYoutubeVideo)
	assert.Equal(t, time.Date(2023, 12, 31, 23, 0, 0, 0, time.UTC), plan[youtube.ID])

	// Ngày 2: email 2024-01-03 09:00 Brisbane = 2024-01-02 23:00 UTC
	email := findByType(assets, contentmodels.AssetTypeEmail)
	assert.Equal(t, time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC), plan[email.ID])

	// Ngày 3: social_rant_post 2024-01-04 09:00 Brisbane
	rant := findByType(assets, contentmodels.AssetTypeSocialRantPost)
	assert.Equal(t, time.Date(2024, 1, 3, 23, 0, 0, 0, time.UTC), plan[rant.ID])

	// Ngày 4: social_short_video 2024-01-05 09:00 Brisbane
	short := findByType(assets, contentmodels.AssetTypeSocialShortVideo)
	assert.Equal(t, time.Date(2024, 1, 4, 23, 0, 0, 0, time.UTC), plan[short.ID])
}

func TestPlanSchedule_Deterministic(t *testing.T) {
	assets := fullApprovedSet()
	loc, _ := time.LoadLocation("Australia/Brisbane")
	startDate := time.Date(2024, 1, 1, 0, 0, 0, 0, loc)

	first, err := PlanSchedule(assets, startDate, "Australia/Brisbane", 9)
	require.NoError(t, err)
	second, err := PlanSchedule(assets, startDate, "Australia/Brisbane", 9)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestPlanSchedule_SkipsIneligibleWithoutShifting(t *testing.T) {
	existing := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC).UnixMilli()
	assets := []contentmodels.ContentAsset{
		makeAsset(contentmodels.AssetTypeYoutubeVideo, false, nil),      // Chưa duyệt
		makeAsset(contentmodels.AssetTypeBlogPost, true, &existing),     // Đã có lịch
		makeAsset(contentmodels.AssetTypeEmail, true, nil),              // Đủ điều kiện
		makeAsset(contentmodels.AssetTypeSocialShortVideo, true, nil),   // Đủ điều kiện
	}
	loc, _ := time.LoadLocation("Australia/Brisbane")
	startDate := time.Date(2024, 1, 1, 0, 0, 0, 0, loc)

	plan, err := PlanSchedule(assets, startDate, "Australia/Brisbane", 9)
	require.NoError(t, err)

	// Asset không đủ điều kiện không có trong plan
	assert.NotContains(t, plan, assets[0].ID)
	assert.NotContains(t, plan, assets[1].ID)

	// Slot trống không dồn ngày: email vẫn ở day 2, short video vẫn ở day 4
	assert.Equal(t, time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC), plan[assets[2].ID])
	assert.Equal(t, time.Date(2024, 1, 4, 23, 0, 0, 0, time.UTC), plan[assets[3].ID])
}

func TestPlanSchedule_OneAssetPerType(t *testing.T) {
	first := makeAsset(contentmodels.AssetTypeEmail, true, nil)
	second := makeAsset(contentmodels.AssetTypeEmail, true, nil)
	loc, _ := time.LoadLocation("Australia/Brisbane")
	startDate := time.Date(2024, 1, 1, 0, 0, 0, 0, loc)

	plan, err := PlanSchedule([]contentmodels.ContentAsset{first, second}, startDate, "Australia/Brisbane", 9)
	require.NoError(t, err)

	// Mỗi loại một slot: asset đầu tiên theo thứ tự slice thắng
	assert.Contains(t, plan, first.ID)
	assert.NotContains(t, plan, second.ID)
}

func TestPlanSchedule_DSTPerDayOffset(t *testing.T) {
	// New York spring-forward 2024-03-10: day 0 còn EST (UTC-5), day 4 đã EDT (UTC-4)
	assets := fullApprovedSet()
	loc, _ := time.LoadLocation("America/New_York")
	startDate := time.Date(2024, 3, 8, 0, 0, 0, 0, loc)

	plan, err := PlanSchedule(assets, startDate, "America/New_York", 9)
	require.NoError(t, err)

	youtube := findByType(assets, contentmodels.AssetTypeYoutubeVideo)
	short := findByType(assets, contentmodels.AssetTypeSocialShortVideo)

	// 2024-03-08 09:00 EST = 14:00 UTC
	assert.Equal(t, time.Date(2024, 3, 8, 14, 0, 0, 0, time.UTC), plan[youtube.ID])
	// 2024-03-12 09:00 EDT = 13:00 UTC
	assert.Equal(t, time.Date(2024, 3, 12, 13, 0, 0, 0, time.UTC), plan[short.ID])
}

func TestPlanSchedule_InvalidTimezone(t *testing.T) {
	_, err := PlanSchedule(fullApprovedSet(), time.Now(), "Not/A_Zone", 9)
	require.Error(t, err)
}
