// Package schedulesvc - Test scheduling session và commit coordinator,
// chạy trên fake store (không cần MongoDB).
package schedulesvc

import (
	"context"
	"errors"
	"testing"
	"time"

	contentmodels "content_forge/internal/api/content/models"
	"content_forge/internal/common"
	"content_forge/internal/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// fakeScheduleStore là ScheduleStore in-memory cho unit test.
type fakeScheduleStore struct {
	assets   map[primitive.ObjectID][]contentmodels.ContentAsset
	failIDs  map[primitive.ObjectID]bool // item fail trong SaveBatch / UpdateSchedule
	saveErr  error                       // lỗi transport của SaveBatch
	clearErr error
	onSave   func() // hook chạy trong SaveBatch, mô phỏng stage-during-commit

	saved        map[primitive.ObjectID]*int64
	clearedCount int64
}

func newFakeStore() *fakeScheduleStore {
	return &fakeScheduleStore{
		assets:  map[primitive.ObjectID][]contentmodels.ContentAsset{},
		failIDs: map[primitive.ObjectID]bool{},
		saved:   map[primitive.ObjectID]*int64{},
	}
}

func (f *fakeScheduleStore) AssetsByContent(_ context.Context, contentID primitive.ObjectID) ([]contentmodels.ContentAsset, error) {
	assets := f.assets[contentID]
	out := make([]contentmodels.ContentAsset, len(assets))
	copy(out, assets)
	return out, nil
}

func (f *fakeScheduleStore) UpdateSchedule(_ context.Context, assetID primitive.ObjectID, scheduledAt *int64) (contentmodels.ContentAsset, error) {
	if f.failIDs[assetID] {
		return contentmodels.ContentAsset{}, errors.New("write failed")
	}
	f.saved[assetID] = scheduledAt
	for contentID, assets := range f.assets {
		for i := range assets {
			if assets[i].ID == assetID {
				assets[i].ScheduledAt = scheduledAt
				f.assets[contentID] = assets
				return assets[i], nil
			}
		}
	}
	return contentmodels.ContentAsset{ID: assetID, ScheduledAt: scheduledAt}, nil
}

func (f *fakeScheduleStore) SaveBatch(ctx context.Context, changes []ScheduleChange) (BatchOutcome, error) {
	if f.onSave != nil {
		f.onSave()
	}
	if f.saveErr != nil {
		return BatchOutcome{}, f.saveErr
	}
	outcome := BatchOutcome{Failed: map[primitive.ObjectID]error{}}
	for _, change := range changes {
		if f.failIDs[change.AssetID] {
			outcome.Failed[change.AssetID] = errors.New("write failed")
			continue
		}
		if _, err := f.UpdateSchedule(ctx, change.AssetID, change.ScheduledAt); err != nil {
			outcome.Failed[change.AssetID] = err
			continue
		}
		outcome.Succeeded = append(outcome.Succeeded, change.AssetID)
	}
	return outcome, nil
}

func (f *fakeScheduleStore) ClearSchedules(_ context.Context, contentID primitive.ObjectID) (int64, error) {
	if f.clearErr != nil {
		return 0, f.clearErr
	}
	assets := f.assets[contentID]
	var count int64
	for i := range assets {
		if assets[i].ScheduledAt != nil {
			assets[i].ScheduledAt = nil
			count++
		}
	}
	f.assets[contentID] = assets
	f.clearedCount = count
	return count, nil
}

// sessionFixture dựng service + session trên assets cùng một content item.
func sessionFixture(t *testing.T, assets []contentmodels.ContentAsset) (*ScheduleSessionService, *ScheduleSession, *fakeScheduleStore) {
	t.Helper()

	contentID := primitive.NewObjectID()
	businessID := primitive.NewObjectID()
	for i := range assets {
		assets[i].ContentID = contentID
		assets[i].BusinessID = businessID
	}

	store := newFakeStore()
	stored := make([]contentmodels.ContentAsset, len(assets))
	copy(stored, assets)
	store.assets[contentID] = stored

	svc := &ScheduleSessionService{
		sessions: registry.NewRegistry[*ScheduleSession](),
		store:    store,
	}
	session := &ScheduleSession{
		ID:          "test-session",
		ContentID:   contentID,
		BusinessID:  businessID,
		Timezone:    "Australia/Brisbane",
		PublishHour: 9,
		Ledger:      NewPendingLedger(),
		assets:      assets,
		lastTouched: time.Now(),
	}
	_, err := svc.sessions.Register(session.ID, session)
	require.NoError(t, err)
	return svc, session, store
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	var customErr *common.Error
	require.True(t, errors.As(err, &customErr), "phải là common.Error, nhận: %v", err)
	return customErr.Code.Code
}

func TestStageDrop_ValidationOrder(t *testing.T) {
	now := time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC)
	unapproved := makeAsset(contentmodels.AssetTypeEmail, false, nil)
	svc, session, _ := sessionFixture(t, []contentmodels.ContentAsset{unapproved})

	t.Run("❌ Asset của content khác", func(t *testing.T) {
		_, err := svc.StageDrop(session, primitive.NewObjectID(), time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC), now)
		assert.Equal(t, common.ErrCodeScheduleOwnership.Code, errCode(t, err))
		assert.True(t, errors.Is(err, common.ErrForeignAssetImmutable))
	})

	t.Run("❌ Ngày quá khứ check trước approval", func(t *testing.T) {
		_, err := svc.StageDrop(session, unapproved.ID, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), now)
		assert.Equal(t, common.ErrCodeSchedulePastDate.Code, errCode(t, err))
		assert.True(t, errors.Is(err, common.ErrSchedulePastDate))
	})

	t.Run("❌ Asset chưa duyệt", func(t *testing.T) {
		_, err := svc.StageDrop(session, unapproved.ID, time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC), now)
		assert.Equal(t, common.ErrCodeScheduleApproval.Code, errCode(t, err))
		assert.True(t, errors.Is(err, common.ErrAssetNotApproved))
	})

	assert.False(t, session.Ledger.Dirty(), "fail thì ledger không được đổi")
}

func TestStageDrop_PreservesTimeOfDay(t *testing.T) {
	now := time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC)
	// Đang lên lịch 14:30 Brisbane ngày 2024-06-18
	current := time.Date(2024, 6, 18, 4, 30, 0, 0, time.UTC) // = 14:30 +10
	asset := makeAsset(contentmodels.AssetTypeEmail, true, millis(current))
	svc, session, _ := sessionFixture(t, []contentmodels.ContentAsset{asset})

	staged, err := svc.StageDrop(session, asset.ID, time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)

	// Kéo sang 25/06: vẫn 14:30 Brisbane = 04:30Z
	want := time.Date(2024, 6, 25, 4, 30, 0, 0, time.UTC).UnixMilli()
	require.NotNil(t, staged.ScheduledAt)
	assert.Equal(t, want, *staged.ScheduledAt)
	assert.True(t, session.Ledger.Dirty())
	assert.True(t, session.Ledger.Has(asset.ID))
}

func TestStageDrop_UnscheduledUsesPublishHour(t *testing.T) {
	now := time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC)
	asset := makeAsset(contentmodels.AssetTypeEmail, true, nil)
	svc, session, _ := sessionFixture(t, []contentmodels.ContentAsset{asset})

	staged, err := svc.StageDrop(session, asset.ID, time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)

	// Chưa có lịch: dùng giờ đăng mặc định 09:00 Brisbane = 23:00Z hôm trước
	want := time.Date(2024, 6, 24, 23, 0, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, want, *staged.ScheduledAt)
}

func TestStageDrop_StagedEntryIsBaseline(t *testing.T) {
	now := time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC)
	current := time.Date(2024, 6, 18, 4, 30, 0, 0, time.UTC)
	asset := makeAsset(contentmodels.AssetTypeEmail, true, millis(current))
	svc, session, _ := sessionFixture(t, []contentmodels.ContentAsset{asset})

	// Kéo lần 1 sang 25/06, lần 2 sang 28/06: lần 2 giữ time-of-day của entry
	// đã stage (vẫn 14:30), không phải của bản đã lưu
	_, err := svc.StageDrop(session, asset.ID, time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)
	staged, err := svc.StageDrop(session, asset.ID, time.Date(2024, 6, 28, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)

	want := time.Date(2024, 6, 28, 4, 30, 0, 0, time.UTC).UnixMilli()
	assert.Equal(t, want, *staged.ScheduledAt)
	assert.Equal(t, 1, session.Ledger.Len(), "cùng asset thì chỉ một entry")
}

func TestCommitBatch_AllSucceed(t *testing.T) {
	now := time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC)
	a := makeAsset(contentmodels.AssetTypeEmail, true, nil)
	b := makeAsset(contentmodels.AssetTypeBlogPost, true, nil)
	svc, session, store := sessionFixture(t, []contentmodels.ContentAsset{a, b})

	_, err := svc.StageDrop(session, a.ID, time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)
	_, err = svc.StageDrop(session, b.ID, time.Date(2024, 6, 26, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)

	result, err := svc.CommitBatch(context.Background(), session)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Scheduled)
	assert.Empty(t, result.Warning)
	assert.Empty(t, result.FailedIDs)
	assert.False(t, session.Ledger.Dirty())
	assert.Contains(t, store.saved, a.ID)
	assert.Contains(t, store.saved, b.ID)
}

func TestCommitBatch_PartialFailureKeepsFailedPending(t *testing.T) {
	now := time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC)
	ok := makeAsset(contentmodels.AssetTypeEmail, true, nil)
	bad := makeAsset(contentmodels.AssetTypeBlogPost, true, nil)
	svc, session, store := sessionFixture(t, []contentmodels.ContentAsset{ok, bad})
	store.failIDs[bad.ID] = true

	_, err := svc.StageDrop(session, ok.ID, time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)
	_, err = svc.StageDrop(session, bad.ID, time.Date(2024, 6, 26, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)

	result, err := svc.CommitBatch(context.Background(), session)
	require.NoError(t, err, "partial success là warning, không phải error")

	assert.Equal(t, 1, result.Scheduled)
	assert.NotEmpty(t, result.Warning)
	assert.Equal(t, []string{bad.ID.Hex()}, result.FailedIDs)

	// Entry fail Ở LẠI ledger để retry, entry thành công đã rời
	assert.True(t, session.Ledger.Has(bad.ID))
	assert.False(t, session.Ledger.Has(ok.ID))
	assert.True(t, session.Ledger.Dirty())
}

func TestCommitBatch_AllFailedLedgerUntouched(t *testing.T) {
	now := time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC)
	asset := makeAsset(contentmodels.AssetTypeEmail, true, nil)
	svc, session, store := sessionFixture(t, []contentmodels.ContentAsset{asset})
	store.failIDs[asset.ID] = true

	_, err := svc.StageDrop(session, asset.ID, time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)

	_, err = svc.CommitBatch(context.Background(), session)
	require.Error(t, err)
	assert.Equal(t, common.ErrCodeSchedule.Code, errCode(t, err))
	assert.True(t, session.Ledger.Has(asset.ID), "fail toàn bộ thì ledger nguyên vẹn")
}

func TestCommitBatch_TransportErrorLedgerUntouched(t *testing.T) {
	now := time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC)
	asset := makeAsset(contentmodels.AssetTypeEmail, true, nil)
	svc, session, store := sessionFixture(t, []contentmodels.ContentAsset{asset})
	store.saveErr = errors.New("connection reset")

	_, err := svc.StageDrop(session, asset.ID, time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)

	_, err = svc.CommitBatch(context.Background(), session)
	require.Error(t, err)
	assert.True(t, session.Ledger.Has(asset.ID))
	assert.Equal(t, 1, session.Ledger.Len())
}

func TestCommitBatch_StageDuringCommitSurvives(t *testing.T) {
	now := time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC)
	committed := makeAsset(contentmodels.AssetTypeEmail, true, nil)
	lateStaged := makeAsset(contentmodels.AssetTypeBlogPost, true, nil)
	svc, session, store := sessionFixture(t, []contentmodels.ContentAsset{committed, lateStaged})

	_, err := svc.StageDrop(session, committed.ID, time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)

	// Trong lúc commit đang bay, user kéo thêm một asset khác
	store.onSave = func() {
		_, stageErr := svc.StageDrop(session, lateStaged.ID, time.Date(2024, 6, 26, 0, 0, 0, 0, time.UTC), now)
		require.NoError(t, stageErr)
	}

	result, err := svc.CommitBatch(context.Background(), session)
	require.NoError(t, err)

	// Batch chỉ chứa snapshot lúc bắt đầu; entry stage muộn sống sót
	assert.Equal(t, 1, result.Scheduled)
	assert.NotContains(t, store.saved, lateStaged.ID)
	assert.True(t, session.Ledger.Has(lateStaged.ID))
	assert.True(t, session.Ledger.Dirty())
}

func TestCommitBatch_RestageSameAssetDuringCommit(t *testing.T) {
	now := time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC)
	asset := makeAsset(contentmodels.AssetTypeEmail, true, nil)
	svc, session, store := sessionFixture(t, []contentmodels.ContentAsset{asset})

	_, err := svc.StageDrop(session, asset.ID, time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)
	firstStaged, ok := session.Ledger.Get(asset.ID)
	require.True(t, ok)

	// Trong lúc commit đang bay, user kéo CÙNG asset đó sang ngày khác
	store.onSave = func() {
		_, stageErr := svc.StageDrop(session, asset.ID, time.Date(2024, 6, 26, 0, 0, 0, 0, time.UTC), now)
		require.NoError(t, stageErr)
	}

	result, err := svc.CommitBatch(context.Background(), session)
	require.NoError(t, err)

	// Store nhận snapshot lúc bắt đầu commit
	assert.Equal(t, 1, result.Scheduled)
	require.Contains(t, store.saved, asset.ID)
	assert.Equal(t, *firstStaged.ScheduledAt, *store.saved[asset.ID])

	// Bản stage mới hơn không bị cleanup của commit nuốt mất
	entry, ok := session.Ledger.Get(asset.ID)
	require.True(t, ok, "bản stage mới hơn phải sống sót sau commit")
	assert.NotEqual(t, *firstStaged.ScheduledAt, *entry.ScheduledAt)
	assert.True(t, session.Ledger.Dirty())
}

func TestResetSchedule_ClearsAssetsAndLedger(t *testing.T) {
	now := time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC)
	scheduled := makeAsset(contentmodels.AssetTypeEmail, true, millis(time.Date(2024, 6, 18, 4, 30, 0, 0, time.UTC)))
	staged := makeAsset(contentmodels.AssetTypeBlogPost, true, nil)
	svc, session, store := sessionFixture(t, []contentmodels.ContentAsset{scheduled, staged})

	_, err := svc.StageDrop(session, staged.ID, time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)

	count, err := svc.ResetSchedule(context.Background(), session.ContentID, session)
	require.NoError(t, err)

	assert.Equal(t, int64(1), count, "chỉ asset đang có lịch được đếm")
	assert.False(t, session.Ledger.Dirty())
	for _, asset := range session.Assets() {
		assert.Nil(t, asset.ScheduledAt)
	}
	assert.Equal(t, int64(1), store.clearedCount)
}

func TestResetSchedule_StoreFailureReverts(t *testing.T) {
	now := time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC)
	scheduled := makeAsset(contentmodels.AssetTypeEmail, true, millis(time.Date(2024, 6, 18, 4, 30, 0, 0, time.UTC)))
	staged := makeAsset(contentmodels.AssetTypeBlogPost, true, nil)
	svc, session, store := sessionFixture(t, []contentmodels.ContentAsset{scheduled, staged})
	store.clearErr = errors.New("write failed")

	_, err := svc.StageDrop(session, staged.ID, time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)

	_, err = svc.ResetSchedule(context.Background(), session.ContentID, session)
	require.Error(t, err)

	// View và ledger được khôi phục như trước reset
	assets := session.Assets()
	got := findByType(assets, contentmodels.AssetTypeEmail)
	require.NotNil(t, got.ScheduledAt)
	assert.True(t, session.Ledger.Has(staged.ID))
	assert.True(t, session.Ledger.Dirty())
}

func TestUpdateOne_StoreFailureRevertsSessionView(t *testing.T) {
	current := time.Date(2024, 6, 18, 4, 30, 0, 0, time.UTC)
	asset := makeAsset(contentmodels.AssetTypeEmail, true, millis(current))
	svc, session, store := sessionFixture(t, []contentmodels.ContentAsset{asset})
	store.failIDs[asset.ID] = true

	_, err := svc.UpdateOne(context.Background(), asset.ID, time.Date(2024, 6, 25, 4, 30, 0, 0, time.UTC))
	require.Error(t, err)

	got := findByType(session.Assets(), contentmodels.AssetTypeEmail)
	require.NotNil(t, got.ScheduledAt)
	assert.Equal(t, current.UnixMilli(), *got.ScheduledAt, "store fail thì view session về giá trị cũ")
}

func TestUpdateOne_UpdatesOpenSessionView(t *testing.T) {
	asset := makeAsset(contentmodels.AssetTypeEmail, true, nil)
	svc, session, _ := sessionFixture(t, []contentmodels.ContentAsset{asset})

	newUTC := time.Date(2024, 6, 25, 4, 30, 0, 0, time.UTC)
	updated, err := svc.UpdateOne(context.Background(), asset.ID, newUTC)
	require.NoError(t, err)
	require.NotNil(t, updated.ScheduledAt)
	assert.Equal(t, newUTC.UnixMilli(), *updated.ScheduledAt)

	got := findByType(session.Assets(), contentmodels.AssetTypeEmail)
	require.NotNil(t, got.ScheduledAt)
	assert.Equal(t, newUTC.UnixMilli(), *got.ScheduledAt)
}

func TestGetSession(t *testing.T) {
	asset := makeAsset(contentmodels.AssetTypeEmail, true, nil)
	svc, session, _ := sessionFixture(t, []contentmodels.ContentAsset{asset})

	t.Run("✅ Session tồn tại và được Touch", func(t *testing.T) {
		before := session.LastTouched()
		time.Sleep(time.Millisecond)
		got, err := svc.Get(session.ID)
		require.NoError(t, err)
		assert.Equal(t, session.ID, got.ID)
		assert.True(t, got.LastTouched().After(before))
	})

	t.Run("❌ Session không tồn tại trả về Gone", func(t *testing.T) {
		_, err := svc.Get("khong-ton-tai")
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrScheduleSessionGone))
		var customErr *common.Error
		require.True(t, errors.As(err, &customErr))
		assert.Equal(t, common.StatusGone, customErr.StatusCode)
	})
}

func TestCloseSession_DirtyGuard(t *testing.T) {
	now := time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC)
	asset := makeAsset(contentmodels.AssetTypeEmail, true, nil)
	svc, session, _ := sessionFixture(t, []contentmodels.ContentAsset{asset})

	_, err := svc.StageDrop(session, asset.ID, time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)

	t.Run("❌ Dirty không force", func(t *testing.T) {
		err := svc.Close(session.ID, false)
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrScheduleSessionDirty))
		var customErr *common.Error
		require.True(t, errors.As(err, &customErr))
		assert.Equal(t, common.StatusPreconditionFailed, customErr.StatusCode)
		assert.Equal(t, 1, svc.LiveSessions())
	})

	t.Run("✅ Force đóng được", func(t *testing.T) {
		require.NoError(t, svc.Close(session.ID, true))
		assert.Equal(t, 0, svc.LiveSessions())
	})
}

func TestRefreshIfStale(t *testing.T) {
	now := time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC)
	asset := makeAsset(contentmodels.AssetTypeEmail, true, nil)
	svc, session, store := sessionFixture(t, []contentmodels.ContentAsset{asset})

	// Pipeline ghi asset mới vào content này
	extra := makeAsset(contentmodels.AssetTypeSocialQuoteCard, true, nil)
	extra.ContentID = session.ContentID
	extra.BusinessID = session.BusinessID
	store.assets[session.ContentID] = append(store.assets[session.ContentID], extra)

	t.Run("⏳ Chưa có refresh pending thì không reload", func(t *testing.T) {
		require.NoError(t, svc.RefreshIfStale(context.Background(), session))
		assert.Len(t, session.Assets(), 1)
	})

	t.Run("🚫 Session dirty thì refresh bị hoãn", func(t *testing.T) {
		session.markRefreshPending()
		_, err := svc.StageDrop(session, asset.ID, time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC), now)
		require.NoError(t, err)

		require.NoError(t, svc.RefreshIfStale(context.Background(), session))
		assert.Len(t, session.Assets(), 1, "dirty thì view giữ nguyên")
	})

	t.Run("✅ Hết dirty thì refresh chạy", func(t *testing.T) {
		session.Ledger.Reset()
		require.NoError(t, svc.RefreshIfStale(context.Background(), session))
		assert.Len(t, session.Assets(), 2)
		assert.False(t, session.needsRefresh())
	})
}

func TestReapStale(t *testing.T) {
	now := time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC)
	ttl := 30 * time.Minute

	t.Run("✅ Session sạch quá hạn bị đóng ngay", func(t *testing.T) {
		asset := makeAsset(contentmodels.AssetTypeEmail, true, nil)
		svc, session, _ := sessionFixture(t, []contentmodels.ContentAsset{asset})
		session.mu.Lock()
		session.lastTouched = time.Now().Add(-time.Hour)
		session.mu.Unlock()

		assert.Equal(t, 1, svc.ReapStale(ttl))
		assert.Equal(t, 0, svc.LiveSessions())
	})

	t.Run("⏳ Session dirty được một nhịp grace", func(t *testing.T) {
		asset := makeAsset(contentmodels.AssetTypeEmail, true, nil)
		svc, session, _ := sessionFixture(t, []contentmodels.ContentAsset{asset})
		_, err := svc.StageDrop(session, asset.ID, time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC), now)
		require.NoError(t, err)
		session.mu.Lock()
		session.lastTouched = time.Now().Add(-time.Hour)
		session.mu.Unlock()

		// Nhịp 1: chỉ cảnh báo
		assert.Equal(t, 0, svc.ReapStale(ttl))
		assert.Equal(t, 1, svc.LiveSessions())

		// Nhịp 2: đóng thật
		assert.Equal(t, 1, svc.ReapStale(ttl))
		assert.Equal(t, 0, svc.LiveSessions())
	})

	t.Run("🔄 Touch sau cảnh báo thì thoát án", func(t *testing.T) {
		asset := makeAsset(contentmodels.AssetTypeEmail, true, nil)
		svc, session, _ := sessionFixture(t, []contentmodels.ContentAsset{asset})
		_, err := svc.StageDrop(session, asset.ID, time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC), now)
		require.NoError(t, err)
		session.mu.Lock()
		session.lastTouched = time.Now().Add(-time.Hour)
		session.mu.Unlock()

		assert.Equal(t, 0, svc.ReapStale(ttl))
		session.Touch()
		assert.Equal(t, 0, svc.ReapStale(ttl))
		assert.Equal(t, 1, svc.LiveSessions())
	})
}

func TestRefreshSessionsAfterWrite_RemovesCommittedEntries(t *testing.T) {
	now := time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC)
	a := makeAsset(contentmodels.AssetTypeEmail, true, nil)
	b := makeAsset(contentmodels.AssetTypeBlogPost, true, nil)
	svc, session, _ := sessionFixture(t, []contentmodels.ContentAsset{a, b})

	_, err := svc.StageDrop(session, a.ID, time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)
	_, err = svc.StageDrop(session, b.ID, time.Date(2024, 6, 26, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)

	stagedA, ok := session.Ledger.Get(a.ID)
	require.True(t, ok)

	// Một writer khác (auto-schedule chẳng hạn) vừa ghi asset a đúng giá trị đang stage
	svc.refreshSessionsAfterWrite(context.Background(), session.ContentID, []ScheduleChange{
		{AssetID: a.ID, ScheduledAt: stagedA.ScheduledAt},
	})

	assert.False(t, session.Ledger.Has(a.ID), "entry đã được ghi thì rời ledger")
	assert.True(t, session.Ledger.Has(b.ID), "entry chưa ghi vẫn chờ")
}

func TestRefreshSessionsAfterWrite_KeepsRestagedEntry(t *testing.T) {
	now := time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC)
	a := makeAsset(contentmodels.AssetTypeEmail, true, nil)
	svc, session, _ := sessionFixture(t, []contentmodels.ContentAsset{a})

	_, err := svc.StageDrop(session, a.ID, time.Date(2024, 6, 25, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)
	oldStaged, ok := session.Ledger.Get(a.ID)
	require.True(t, ok)

	// User kéo tiếp sang ngày khác trước khi bản ghi cũ được persist xong
	_, err = svc.StageDrop(session, a.ID, time.Date(2024, 6, 26, 0, 0, 0, 0, time.UTC), now)
	require.NoError(t, err)

	svc.refreshSessionsAfterWrite(context.Background(), session.ContentID, []ScheduleChange{
		{AssetID: a.ID, ScheduledAt: oldStaged.ScheduledAt},
	})

	entry, ok := session.Ledger.Get(a.ID)
	require.True(t, ok, "bản stage mới hơn phải sống sót")
	assert.NotEqual(t, *oldStaged.ScheduledAt, *entry.ScheduledAt)
	assert.True(t, session.Ledger.Dirty())
}
