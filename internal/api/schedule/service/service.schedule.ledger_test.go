// Package schedulesvc - Test sổ thay đổi chưa lưu (pending ledger).
package schedulesvc

import (
	"testing"
	"time"

	contentmodels "content_forge/internal/api/content/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func millis(t time.Time) *int64 {
	m := t.UnixMilli()
	return &m
}

func TestPendingLedger_StageAndDirty(t *testing.T) {
	ledger := NewPendingLedger()
	assert.False(t, ledger.Dirty())
	assert.Equal(t, 0, ledger.Len())

	asset := makeAsset(contentmodels.AssetTypeEmail, true, nil)
	ledger.Stage(asset.ID, asset)

	assert.True(t, ledger.Dirty())
	assert.Equal(t, 1, ledger.Len())
	assert.True(t, ledger.Has(asset.ID))

	got, ok := ledger.Get(asset.ID)
	require.True(t, ok)
	assert.Equal(t, asset.ID, got.ID)
}

func TestPendingLedger_StageOverwritesLastWins(t *testing.T) {
	ledger := NewPendingLedger()
	asset := makeAsset(contentmodels.AssetTypeEmail, true, nil)

	first := asset
	first.ScheduledAt = millis(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
	ledger.Stage(asset.ID, first)

	second := asset
	second.ScheduledAt = millis(time.Date(2024, 1, 20, 9, 0, 0, 0, time.UTC))
	ledger.Stage(asset.ID, second)

	assert.Equal(t, 1, ledger.Len())
	got, _ := ledger.Get(asset.ID)
	assert.Equal(t, *second.ScheduledAt, *got.ScheduledAt)
}

func TestPendingLedger_RemoveClearsDirtyWhenEmpty(t *testing.T) {
	ledger := NewPendingLedger()
	a := makeAsset(contentmodels.AssetTypeEmail, true, nil)
	b := makeAsset(contentmodels.AssetTypeBlogPost, true, nil)
	ledger.Stage(a.ID, a)
	ledger.Stage(b.ID, b)

	ledger.Remove(a.ID)
	assert.True(t, ledger.Dirty(), "còn entry thì vẫn dirty")

	ledger.Remove(b.ID)
	assert.False(t, ledger.Dirty(), "rỗng thì hết dirty")
}

func TestPendingLedger_RemoveCommitted(t *testing.T) {
	t.Run("✅ Giá trị khớp thì entry rời ledger", func(t *testing.T) {
		ledger := NewPendingLedger()
		staged := millis(time.Date(2024, 6, 25, 4, 30, 0, 0, time.UTC))
		asset := makeAsset(contentmodels.AssetTypeEmail, true, staged)
		ledger.Stage(asset.ID, asset)

		ledger.RemoveCommitted(asset.ID, staged)
		assert.False(t, ledger.Has(asset.ID))
		assert.False(t, ledger.Dirty())
	})

	t.Run("✅ Entry đã bị stage đè giá trị khác thì giữ lại", func(t *testing.T) {
		ledger := NewPendingLedger()
		committed := millis(time.Date(2024, 6, 25, 4, 30, 0, 0, time.UTC))
		asset := makeAsset(contentmodels.AssetTypeEmail, true, committed)
		ledger.Stage(asset.ID, asset)

		restaged := asset
		restaged.ScheduledAt = millis(time.Date(2024, 6, 26, 4, 30, 0, 0, time.UTC))
		ledger.Stage(asset.ID, restaged)

		ledger.RemoveCommitted(asset.ID, committed)
		entry, ok := ledger.Get(asset.ID)
		require.True(t, ok, "bản stage mới hơn không bị xoá")
		assert.Equal(t, *restaged.ScheduledAt, *entry.ScheduledAt)
		assert.True(t, ledger.Dirty())
	})

	t.Run("✅ Asset không có trong ledger thì no-op", func(t *testing.T) {
		ledger := NewPendingLedger()
		asset := makeAsset(contentmodels.AssetTypeEmail, true, nil)
		ledger.RemoveCommitted(asset.ID, millis(time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC)))
		assert.False(t, ledger.Dirty())
	})
}

func TestPendingLedger_Reset(t *testing.T) {
	ledger := NewPendingLedger()
	asset := makeAsset(contentmodels.AssetTypeEmail, true, nil)
	ledger.Stage(asset.ID, asset)

	ledger.Reset()
	assert.False(t, ledger.Dirty())
	assert.Equal(t, 0, ledger.Len())
	assert.False(t, ledger.Has(asset.ID))
}

func TestPendingLedger_SnapshotIsolated(t *testing.T) {
	ledger := NewPendingLedger()
	a := makeAsset(contentmodels.AssetTypeEmail, true, nil)
	ledger.Stage(a.ID, a)

	snapshot := ledger.Snapshot()

	// Stage thêm sau khi chụp snapshot: snapshot không đổi
	b := makeAsset(contentmodels.AssetTypeBlogPost, true, nil)
	ledger.Stage(b.ID, b)

	assert.Len(t, snapshot, 1)
	assert.Contains(t, snapshot, a.ID)
	assert.NotContains(t, snapshot, b.ID)
}

func TestPendingLedger_RestoreKeepsNewerEntries(t *testing.T) {
	ledger := NewPendingLedger()
	a := makeAsset(contentmodels.AssetTypeEmail, true, nil)
	a.ScheduledAt = millis(time.Date(2024, 1, 10, 9, 0, 0, 0, time.UTC))
	ledger.Stage(a.ID, a)

	snapshot := ledger.Snapshot()
	ledger.Reset()

	// User stage lại CÙNG asset với giá trị mới trước khi rollback chạy
	newer := a
	newer.ScheduledAt = millis(time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC))
	ledger.Stage(a.ID, newer)

	ledger.Restore(snapshot)

	// Giá trị mới (staged sau snapshot) thắng, không bị snapshot cũ đè
	got, ok := ledger.Get(a.ID)
	require.True(t, ok)
	assert.Equal(t, *newer.ScheduledAt, *got.ScheduledAt)
	assert.True(t, ledger.Dirty())
}

func TestPendingLedger_RestoreReaddsMissingEntries(t *testing.T) {
	ledger := NewPendingLedger()
	a := makeAsset(contentmodels.AssetTypeEmail, true, nil)
	ledger.Stage(a.ID, a)

	snapshot := ledger.Snapshot()
	ledger.Reset()
	ledger.Restore(snapshot)

	assert.True(t, ledger.Has(a.ID))
	assert.True(t, ledger.Dirty())
}

func TestPendingLedger_EffectiveAssets(t *testing.T) {
	ledger := NewPendingLedger()
	a := makeAsset(contentmodels.AssetTypeEmail, true, nil)
	b := makeAsset(contentmodels.AssetTypeBlogPost, true, nil)
	c := makeAsset(contentmodels.AssetTypeSocialQuoteCard, true, nil)
	original := []contentmodels.ContentAsset{a, b, c}

	staged := b
	staged.ScheduledAt = millis(time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC))
	ledger.Stage(b.ID, staged)

	effective := ledger.EffectiveAssets(original)
	require.Len(t, effective, 3)

	// Thứ tự gốc được giữ nguyên
	assert.Equal(t, a.ID, effective[0].ID)
	assert.Equal(t, b.ID, effective[1].ID)
	assert.Equal(t, c.ID, effective[2].ID)

	// Entry ledger đè lên bản gốc
	require.NotNil(t, effective[1].ScheduledAt)
	assert.Equal(t, *staged.ScheduledAt, *effective[1].ScheduledAt)
	assert.Nil(t, effective[0].ScheduledAt)
}
