package schedulesvc

import (
	"context"
	"fmt"
	"sync"
	"time"

	businesssvc "content_forge/internal/api/business/service"
	contentmodels "content_forge/internal/api/content/models"
	contentsvc "content_forge/internal/api/content/service"
	"content_forge/internal/api/events"
	"content_forge/internal/common"
	"content_forge/internal/global"
	"content_forge/internal/registry"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ScheduleSession là một phiên chỉnh lịch của một content item: giữ ledger
// thay đổi chưa lưu và view authoritative của assets. Một session tương ứng
// một client đang mở màn hình schedule.
type ScheduleSession struct {
	ID          string
	ContentID   primitive.ObjectID
	BusinessID  primitive.ObjectID
	Timezone    string
	PublishHour int
	Ledger      *PendingLedger

	mu             sync.Mutex
	assets         []contentmodels.ContentAsset
	lastTouched    time.Time
	refreshPending bool // Có data-change event đến trong lúc dirty, refresh bị hoãn
	staleWarned    bool // Reaper đã cảnh báo một lần (grace cho session dirty)
}

// Touch đánh dấu session vừa được dùng (reaper dựa vào đây).
func (s *ScheduleSession) Touch() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastTouched = time.Now()
	s.staleWarned = false
}

// LastTouched thời điểm session được dùng lần cuối.
func (s *ScheduleSession) LastTouched() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastTouched
}

// Assets trả về copy của view authoritative.
func (s *ScheduleSession) Assets() []contentmodels.ContentAsset {
	s.mu.Lock()
	defer s.mu.Unlock()
	assets := make([]contentmodels.ContentAsset, len(s.assets))
	copy(assets, s.assets)
	return assets
}

// EffectiveAssets view authoritative đã áp ledger đè lên.
func (s *ScheduleSession) EffectiveAssets() []contentmodels.ContentAsset {
	return s.Ledger.EffectiveAssets(s.Assets())
}

// effectiveAsset tìm một asset theo id trong view effective.
func (s *ScheduleSession) effectiveAsset(assetID primitive.ObjectID) (contentmodels.ContentAsset, bool) {
	if entry, ok := s.Ledger.Get(assetID); ok {
		return entry, true
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, asset := range s.assets {
		if asset.ID == assetID {
			return asset, true
		}
	}
	return contentmodels.ContentAsset{}, false
}

func (s *ScheduleSession) setAssets(assets []contentmodels.ContentAsset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.assets = assets
	s.refreshPending = false
}

func (s *ScheduleSession) markRefreshPending() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshPending = true
}

func (s *ScheduleSession) needsRefresh() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshPending
}

// CommitResult kết quả của một batch commit.
type CommitResult struct {
	Scheduled int      `json:"scheduled"`
	Warning   string   `json:"warning,omitempty"`
	FailedIDs []string `json:"failedIds,omitempty"`
}

// ScheduleSessionService quản lý các scheduling session đang sống và là
// commit coordinator: mọi thao tác ghi lịch đi qua đây.
type ScheduleSessionService struct {
	sessions *registry.Registry[*ScheduleSession]
	store    ScheduleStore
	business *businesssvc.BusinessService
	items    *contentsvc.ContentItemService
}

var (
	defaultSessionService *ScheduleSessionService
	defaultSessionOnce    sync.Once
	defaultSessionErr     error
)

// GetScheduleSessionService trả về instance dùng chung cho toàn process.
// Session registry nằm trong memory nên handler và reaper worker phải nhìn
// cùng một instance.
func GetScheduleSessionService() (*ScheduleSessionService, error) {
	defaultSessionOnce.Do(func() {
		defaultSessionService, defaultSessionErr = NewScheduleSessionService()
	})
	return defaultSessionService, defaultSessionErr
}

// NewScheduleSessionService tạo service với store mongo-backed và đăng ký
// listener hoãn-refresh cho data-change event (session dirty không bao giờ
// bị ghi đè thay đổi chưa lưu).
func NewScheduleSessionService() (*ScheduleSessionService, error) {
	assetService, err := contentsvc.NewContentAssetService()
	if err != nil {
		return nil, fmt.Errorf("failed to create content asset service: %v", err)
	}
	businessService, err := businesssvc.NewBusinessService()
	if err != nil {
		return nil, fmt.Errorf("failed to create business service: %v", err)
	}
	itemService, err := contentsvc.NewContentItemService()
	if err != nil {
		return nil, fmt.Errorf("failed to create content item service: %v", err)
	}

	svc := NewScheduleSessionServiceWithStore(NewMongoScheduleStore(assetService), businessService, itemService)
	svc.subscribeDataChanges()
	return svc, nil
}

// NewScheduleSessionServiceWithStore tạo service với store tùy ý (test dùng fake).
func NewScheduleSessionServiceWithStore(store ScheduleStore, business *businesssvc.BusinessService, items *contentsvc.ContentItemService) *ScheduleSessionService {
	return &ScheduleSessionService{
		sessions: registry.NewRegistry[*ScheduleSession](),
		store:    store,
		business: business,
		items:    items,
	}
}

// subscribeDataChanges hoãn refresh cho session dirty khi content_assets đổi
// từ bên ngoài session (pipeline ghi asset mới, commit từ client khác).
func (s *ScheduleSessionService) subscribeDataChanges() {
	events.OnDataChanged(func(ctx context.Context, e events.DataChangeEvent) {
		if e.CollectionName != global.MongoDB_ColNames.ContentAssets {
			return
		}
		businessID := events.GetBusinessIDFromDocument(e.Document)
		if businessID.IsZero() {
			return
		}
		for _, key := range s.sessions.Keys() {
			session, ok := s.sessions.Get(key)
			if !ok || session.BusinessID != businessID {
				continue
			}
			session.markRefreshPending()
		}
	})
}

// Open mở một scheduling session cho content item: load business timezone,
// giờ đăng mặc định và danh sách asset authoritative.
func (s *ScheduleSessionService) Open(ctx context.Context, contentID primitive.ObjectID) (*ScheduleSession, error) {
	item, err := s.items.FindOneById(ctx, contentID)
	if err != nil {
		return nil, err
	}
	business, err := s.business.FindOneById(ctx, item.BusinessID)
	if err != nil {
		return nil, err
	}
	tz := business.Timezone
	if tz == "" {
		tz = "UTC"
	}
	if _, err := LoadBusinessLocation(tz); err != nil {
		return nil, err
	}
	publishHour := business.DefaultPublishHour
	if publishHour == 0 {
		publishHour = global.MongoDB_ServerConfig.DefaultPublishHour
	}

	assets, err := s.store.AssetsByContent(ctx, contentID)
	if err != nil {
		return nil, err
	}

	session := &ScheduleSession{
		ID:          uuid.NewString(),
		ContentID:   contentID,
		BusinessID:  item.BusinessID,
		Timezone:    tz,
		PublishHour: publishHour,
		Ledger:      NewPendingLedger(),
		assets:      assets,
		lastTouched: time.Now(),
	}
	if _, err := s.sessions.Register(session.ID, session); err != nil {
		return nil, common.NewError(common.ErrCodeScheduleSession, "Không thể đăng ký scheduling session", common.StatusInternalServerError, err)
	}

	logrus.WithFields(logrus.Fields{
		"session_id": session.ID,
		"content_id": contentID.Hex(),
		"timezone":   tz,
	}).Info("Mở scheduling session")
	return session, nil
}

// Get lấy session theo id, đồng thời Touch.
func (s *ScheduleSessionService) Get(sessionID string) (*ScheduleSession, error) {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, common.WithDetails(common.ErrScheduleSessionGone, map[string]interface{}{
			"sessionId": sessionID,
		})
	}
	session.Touch()
	return session, nil
}

// Close đóng session. Session dirty chỉ đóng được khi force=true (navigation
// guard: không lặng lẽ vứt thay đổi chưa lưu).
func (s *ScheduleSessionService) Close(sessionID string, force bool) error {
	session, ok := s.sessions.Get(sessionID)
	if !ok {
		return common.WithDetails(common.ErrScheduleSessionGone, map[string]interface{}{
			"sessionId": sessionID,
		})
	}
	if session.Ledger.Dirty() && !force {
		return common.WithDetails(common.ErrScheduleSessionDirty, map[string]interface{}{
			"pending":    session.Ledger.Len(),
			"suggestion": "Commit, reset hoặc đóng với force=true",
		})
	}
	_, err := s.sessions.Clear(sessionID, nil)
	return err
}

// RefreshIfStale reload view authoritative khi có refresh bị hoãn và session
// không dirty. Session dirty giữ nguyên view cho đến khi commit/reset.
func (s *ScheduleSessionService) RefreshIfStale(ctx context.Context, session *ScheduleSession) error {
	if !session.needsRefresh() || session.Ledger.Dirty() {
		return nil
	}
	assets, err := s.store.AssetsByContent(ctx, session.ContentID)
	if err != nil {
		return err
	}
	session.setAssets(assets)
	return nil
}

// ScheduleAll auto-schedule toàn bộ asset đã duyệt + chưa lên lịch của một
// content item theo bảng trình tự, KHÔNG đi qua ledger. startDateISO rỗng
// nghĩa là ngày mai theo giờ business; tzOverride chỉ áp dụng cho lần này.
func (s *ScheduleSessionService) ScheduleAll(ctx context.Context, contentID primitive.ObjectID, startDateISO string, tzOverride string, now time.Time) (CommitResult, error) {
	var result CommitResult

	item, err := s.items.FindOneById(ctx, contentID)
	if err != nil {
		return result, err
	}
	business, err := s.business.FindOneById(ctx, item.BusinessID)
	if err != nil {
		return result, err
	}
	tz := business.Timezone
	if tzOverride != "" {
		tz = tzOverride
	}
	if tz == "" {
		tz = "UTC"
	}
	loc, err := LoadBusinessLocation(tz)
	if err != nil {
		return result, err
	}
	publishHour := business.DefaultPublishHour
	if publishHour == 0 {
		publishHour = global.MongoDB_ServerConfig.DefaultPublishHour
	}

	var startDate time.Time
	if startDateISO == "" {
		// Mặc định: ngày mai theo giờ business
		startDate = now.In(loc).AddDate(0, 0, 1)
	} else {
		startDate, err = time.ParseInLocation("2006-01-02", startDateISO, loc)
		if err != nil {
			return result, common.NewError(
				common.ErrCodeValidationFormat,
				fmt.Sprintf("startDate '%s' không đúng định dạng YYYY-MM-DD", startDateISO),
				common.StatusBadRequest,
				err,
			)
		}
	}
	past, err := IsPastBusinessDate(startDate, tz, now)
	if err != nil {
		return result, err
	}
	if past {
		return result, common.WithDetails(common.ErrSchedulePastDate, map[string]interface{}{
			"startDate": startDate.In(loc).Format("2006-01-02"),
		})
	}

	assets, err := s.store.AssetsByContent(ctx, contentID)
	if err != nil {
		return result, err
	}

	plan, err := PlanSchedule(assets, startDate, tz, publishHour)
	if err != nil {
		return result, err
	}
	if len(plan) == 0 {
		return result, nil
	}

	changes := make([]ScheduleChange, 0, len(plan))
	for assetID, instant := range plan {
		millis := instant.UnixMilli()
		changes = append(changes, ScheduleChange{AssetID: assetID, ScheduledAt: &millis})
	}

	outcome, err := s.store.SaveBatch(ctx, changes)
	if err != nil {
		return result, err
	}
	result = s.buildCommitResult(outcome)

	// Refresh mọi session đang mở trên content này, gỡ entry ledger của các
	// asset vừa được ghi (entry đã bị đè bằng giá trị khác thì giữ nguyên)
	s.refreshSessionsAfterWrite(ctx, contentID, outcome.SucceededChanges(changes))

	if outcome.AllFailed() {
		return result, common.NewError(
			common.ErrCodeSchedule,
			"Không lưu được lịch cho asset nào",
			common.StatusInternalServerError,
			nil,
		)
	}
	return result, nil
}

// UpdateOne ghi lịch mới cho một asset, optimistic: session nào đang mở
// content đó thì view được cập nhật ngay, store fail thì revert.
func (s *ScheduleSessionService) UpdateOne(ctx context.Context, assetID primitive.ObjectID, newUTC time.Time) (contentmodels.ContentAsset, error) {
	millis := newUTC.UnixMilli()

	// Optimistic apply vào view của các session liên quan, nhớ giá trị cũ
	type revertEntry struct {
		session *ScheduleSession
		old     *int64
		found   bool
	}
	var reverts []revertEntry
	for _, key := range s.sessions.Keys() {
		session, ok := s.sessions.Get(key)
		if !ok {
			continue
		}
		session.mu.Lock()
		for i := range session.assets {
			if session.assets[i].ID == assetID {
				reverts = append(reverts, revertEntry{session: session, old: session.assets[i].ScheduledAt, found: true})
				session.assets[i].ScheduledAt = &millis
				break
			}
		}
		session.mu.Unlock()
	}

	updated, err := s.store.UpdateSchedule(ctx, assetID, &millis)
	if err != nil {
		// Revert về giá trị trước chỉnh sửa
		for _, r := range reverts {
			r.session.mu.Lock()
			for i := range r.session.assets {
				if r.session.assets[i].ID == assetID {
					r.session.assets[i].ScheduledAt = r.old
					break
				}
			}
			r.session.mu.Unlock()
		}
		return contentmodels.ContentAsset{}, err
	}
	return updated, nil
}

// CommitBatch lưu toàn bộ ledger của session trong một lần gọi store.
// - Tất cả thành công: ledger sạch, trả {scheduled:n}.
// - Một phần: entry thành công rời ledger, entry fail Ở LẠI để retry,
//   trả warning (không phải error).
// - Fail toàn bộ / lỗi transport: ledger nguyên vẹn, trả error.
// Thay đổi stage trong lúc commit đang bay không thuộc batch này (snapshot
// cô lập) và sống sót cho lần commit sau.
func (s *ScheduleSessionService) CommitBatch(ctx context.Context, session *ScheduleSession) (CommitResult, error) {
	var result CommitResult

	snapshot := session.Ledger.Snapshot()
	if len(snapshot) == 0 {
		return result, nil
	}

	changes := make([]ScheduleChange, 0, len(snapshot))
	for assetID, entry := range snapshot {
		changes = append(changes, ScheduleChange{AssetID: assetID, ScheduledAt: entry.ScheduledAt})
	}

	outcome, err := s.store.SaveBatch(ctx, changes)
	if err != nil {
		// Lỗi transport: không item nào được ghi, ledger giữ nguyên
		return result, err
	}

	if outcome.AllFailed() {
		return result, common.NewError(
			common.ErrCodeSchedule,
			"Không lưu được thay đổi nào, toàn bộ thay đổi vẫn đang chờ",
			common.StatusInternalServerError,
			nil,
		)
	}

	// Entry thành công rời ledger, TRỪ entry đã bị Stage đè bằng giá trị mới
	// trong lúc commit đang bay; entry fail ở lại cho retry
	committed := outcome.SucceededChanges(changes)
	for _, change := range committed {
		session.Ledger.RemoveCommitted(change.AssetID, change.ScheduledAt)
	}

	result = s.buildCommitResult(outcome)
	s.refreshSessionsAfterWrite(ctx, session.ContentID, committed)
	session.Touch()

	logrus.WithFields(logrus.Fields{
		"session_id": session.ID,
		"content_id": session.ContentID.Hex(),
		"scheduled":  result.Scheduled,
		"failed":     len(result.FailedIDs),
	}).Info("Commit batch schedule")
	return result, nil
}

// ResetSchedule gỡ lịch toàn bộ asset của content item và xóa ledger.
// Optimistic: áp local trước, store fail thì khôi phục ledger và view.
func (s *ScheduleSessionService) ResetSchedule(ctx context.Context, contentID primitive.ObjectID, session *ScheduleSession) (int64, error) {
	var ledgerBackup map[primitive.ObjectID]contentmodels.ContentAsset
	var assetsBackup []contentmodels.ContentAsset

	if session != nil {
		ledgerBackup = session.Ledger.Snapshot()
		assetsBackup = session.Assets()

		session.Ledger.Reset()
		cleared := make([]contentmodels.ContentAsset, len(assetsBackup))
		copy(cleared, assetsBackup)
		for i := range cleared {
			cleared[i].ScheduledAt = nil
		}
		session.setAssets(cleared)
	}

	count, err := s.store.ClearSchedules(ctx, contentID)
	if err != nil {
		// Best-effort revert
		if session != nil {
			session.setAssets(assetsBackup)
			session.Ledger.Restore(ledgerBackup)
		}
		return 0, err
	}

	if session != nil {
		session.Touch()
	}
	return count, nil
}

// buildCommitResult dựng payload trả về từ outcome per-item.
func (s *ScheduleSessionService) buildCommitResult(outcome BatchOutcome) CommitResult {
	result := CommitResult{Scheduled: len(outcome.Succeeded)}
	if len(outcome.Failed) > 0 {
		result.Warning = fmt.Sprintf("%d thay đổi không lưu được, vẫn đang chờ để thử lại", len(outcome.Failed))
		for assetID := range outcome.Failed {
			result.FailedIDs = append(result.FailedIDs, assetID.Hex())
		}
	}
	return result
}

// refreshSessionsAfterWrite reload view cho các session đang mở content vừa
// được ghi và gỡ các entry ledger đã commit — có điều kiện: entry trỏ giá trị
// khác giá trị vừa ghi là thay đổi chưa lưu của user, phải ở lại. Session
// dirty (còn entry khác) vẫn được refresh vì entry ledger luôn đè lên view mới.
func (s *ScheduleSessionService) refreshSessionsAfterWrite(ctx context.Context, contentID primitive.ObjectID, committed []ScheduleChange) {
	for _, key := range s.sessions.Keys() {
		session, ok := s.sessions.Get(key)
		if !ok || session.ContentID != contentID {
			continue
		}
		for _, change := range committed {
			session.Ledger.RemoveCommitted(change.AssetID, change.ScheduledAt)
		}
		assets, err := s.store.AssetsByContent(ctx, session.ContentID)
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"session_id": session.ID,
				"error":      err,
			}).Warn("Không refresh được session sau khi ghi lịch")
			continue
		}
		session.setAssets(assets)
	}
}

// ReapStale đóng các session không được dùng quá TTL. Session dirty được một
// nhịp grace kèm warning log trước khi bị đóng.
func (s *ScheduleSessionService) ReapStale(ttl time.Duration) int {
	closed := 0
	cutoff := time.Now().Add(-ttl)
	for _, key := range s.sessions.Keys() {
		session, ok := s.sessions.Get(key)
		if !ok {
			continue
		}
		if session.LastTouched().After(cutoff) {
			continue
		}
		if session.Ledger.Dirty() {
			session.mu.Lock()
			warned := session.staleWarned
			session.staleWarned = true
			session.mu.Unlock()
			if !warned {
				logrus.WithFields(logrus.Fields{
					"session_id": session.ID,
					"content_id": session.ContentID.Hex(),
					"pending":    session.Ledger.Len(),
				}).Warn("Session quá hạn còn thay đổi chưa lưu, sẽ bị đóng ở nhịp reap sau")
				continue
			}
		}
		if deleted, _ := s.sessions.Clear(key, nil); deleted {
			closed++
		}
	}
	return closed
}

// LiveSessions số session đang sống (dùng cho log của reaper).
func (s *ScheduleSessionService) LiveSessions() int {
	return s.sessions.Len()
}
