// Package schedulesvc - Test calendar projection.
package schedulesvc

import (
	"testing"
	"time"

	contentdto "content_forge/internal/api/content/dto"
	contentmodels "content_forge/internal/api/content/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProject_SelfEntries(t *testing.T) {
	ledger := NewPendingLedger()

	scheduled := makeAsset(contentmodels.AssetTypeEmail, true, millis(time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC)))
	scheduled.Headline = "Email tuần 1"
	unscheduled := makeAsset(contentmodels.AssetTypeBlogPost, true, nil)
	unapproved := makeAsset(contentmodels.AssetTypeSocialRantPost, false, millis(time.Date(2024, 1, 3, 23, 0, 0, 0, time.UTC)))

	entries, err := Project(
		[]contentmodels.ContentAsset{scheduled, unscheduled, unapproved},
		nil, ledger, "Australia/Brisbane", false,
	)
	require.NoError(t, err)
	require.Len(t, entries, 2, "asset chưa lên lịch không có mặt trên calendar")

	t.Run("🗓 Entry đã lưu", func(t *testing.T) {
		entry := entries[0]
		assert.Equal(t, scheduled.ID.Hex(), entry.ID)
		assert.Equal(t, "Email tuần 1", entry.Title)
		assert.Equal(t, OwnershipSelf, entry.Ownership)
		assert.False(t, entry.Pending)
		assert.True(t, entry.Editable)
		assert.Equal(t, "scheduled", entry.StylingHint)
		// EditSeed là giờ business-local: 23:00Z = 09:00 Brisbane hôm sau
		assert.Equal(t, "2024-01-03T09:00:00+10:00", entry.EditSeed)
	})

	t.Run("🔒 Asset chưa duyệt không editable", func(t *testing.T) {
		assert.False(t, entries[1].Editable)
		// Headline trống thì fallback về content type
		assert.Equal(t, contentmodels.AssetTypeSocialRantPost, entries[1].Title)
	})
}

func TestProject_PendingHint(t *testing.T) {
	ledger := NewPendingLedger()
	asset := makeAsset(contentmodels.AssetTypeEmail, true, millis(time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC)))

	staged := asset
	staged.ScheduledAt = millis(time.Date(2024, 1, 9, 23, 0, 0, 0, time.UTC))
	ledger.Stage(asset.ID, staged)

	effective := ledger.EffectiveAssets([]contentmodels.ContentAsset{asset})
	entries, err := Project(effective, nil, ledger, "UTC", true)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	assert.True(t, entries[0].Pending)
	assert.Equal(t, "pending", entries[0].StylingHint)
	// Entry hiển thị ở vị trí đã stage, không phải vị trí đã lưu
	assert.Equal(t, *staged.ScheduledAt, entries[0].Start)
}

func TestProject_ForeignEntries(t *testing.T) {
	ledger := NewPendingLedger()
	foreign := contentdto.ForeignAsset{
		ID:           "fa-1",
		ContentID:    "content-xyz",
		ContentTitle: "Series khác",
		ContentType:  contentmodels.AssetTypeYoutubeVideo,
		ScheduledAt:  time.Date(2024, 1, 5, 23, 0, 0, 0, time.UTC).UnixMilli(),
	}

	entries, err := Project(nil, []contentdto.ForeignAsset{foreign}, ledger, "UTC", true)
	require.NoError(t, err)
	require.Len(t, entries, 1)

	entry := entries[0]
	assert.Equal(t, OwnershipOther, entry.Ownership)
	assert.False(t, entry.Editable)
	assert.Equal(t, "foreign", entry.StylingHint)
	assert.Equal(t, "Series khác", entry.Title)
	assert.Equal(t, "content-xyz", entry.ContentID)
	assert.Equal(t, "content-xyz", entry.NavigationTarget)
	assert.True(t, entry.ConfirmDiscard, "session dirty thì navigate phải xác nhận bỏ thay đổi")
	assert.Empty(t, entry.EditSeed)
}

func TestProject_ForeignConfirmDiscardFollowsDirty(t *testing.T) {
	foreign := []contentdto.ForeignAsset{{ID: "fa-1", ContentID: "c", ScheduledAt: 1000}}

	entries, err := Project(nil, foreign, NewPendingLedger(), "UTC", false)
	require.NoError(t, err)
	assert.False(t, entries[0].ConfirmDiscard)
}

func TestProject_SortedByStartThenID(t *testing.T) {
	ledger := NewPendingLedger()
	late := makeAsset(contentmodels.AssetTypeEmail, true, millis(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC)))
	early := makeAsset(contentmodels.AssetTypeBlogPost, true, millis(time.Date(2024, 1, 2, 9, 0, 0, 0, time.UTC)))

	// Foreign trùng giờ với "late": tie-break theo ID
	foreign := contentdto.ForeignAsset{
		ID:          "00000000-tie",
		ContentID:   "c",
		ScheduledAt: time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC).UnixMilli(),
	}

	entries, err := Project(
		[]contentmodels.ContentAsset{late, early},
		[]contentdto.ForeignAsset{foreign},
		ledger, "UTC", false,
	)
	require.NoError(t, err)
	require.Len(t, entries, 3)

	assert.Equal(t, early.ID.Hex(), entries[0].ID)
	assert.Equal(t, "00000000-tie", entries[1].ID, "trùng start thì ID nhỏ đứng trước")
	assert.Equal(t, late.ID.Hex(), entries[2].ID)
}

func TestProject_InvalidTimezone(t *testing.T) {
	_, err := Project(nil, nil, NewPendingLedger(), "Mars/Olympus", false)
	assert.Error(t, err)
}
