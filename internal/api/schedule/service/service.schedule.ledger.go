package schedulesvc

import (
	"sync"

	contentmodels "content_forge/internal/api/content/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// PendingLedger là sổ thay đổi chưa lưu của một scheduling session.
// Mỗi entry là snapshot ĐẦY ĐỦ của asset sau thay đổi (không phải diff),
// key theo asset id. Entry trong ledger override asset trong DB ở mọi
// projection cho đến khi commit hoặc reset.
//
// Mutex-guarded: session phía server có thể bị nhiều request đụng chồng.
type PendingLedger struct {
	mu      sync.Mutex
	entries map[primitive.ObjectID]contentmodels.ContentAsset
	dirty   bool
}

// NewPendingLedger tạo ledger rỗng.
func NewPendingLedger() *PendingLedger {
	return &PendingLedger{
		entries: make(map[primitive.ObjectID]contentmodels.ContentAsset),
	}
}

// Stage ghi đè (upsert) snapshot cho asset. Ghi sau thắng ghi trước.
func (l *PendingLedger) Stage(assetID primitive.ObjectID, snapshot contentmodels.ContentAsset) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries[assetID] = snapshot
	l.dirty = true
}

// Reset xóa sạch ledger, dirty=false. Không đụng tới store.
func (l *PendingLedger) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = make(map[primitive.ObjectID]contentmodels.ContentAsset)
	l.dirty = false
}

// Remove gỡ một entry (sau khi entry đó đã được commit thành công).
// dirty chỉ tắt khi ledger rỗng.
func (l *PendingLedger) Remove(assetID primitive.ObjectID) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.entries, assetID)
	if len(l.entries) == 0 {
		l.dirty = false
	}
}

// RemoveCommitted gỡ entry của asset sau khi giá trị committedAt đã được ghi
// xuống store, nhưng CHỈ khi entry hiện tại vẫn trỏ đúng giá trị đó. Entry đã
// bị Stage đè bằng giá trị mới hơn trong lúc commit đang bay thì ở lại ledger
// chờ lần commit sau. dirty chỉ tắt khi ledger rỗng.
func (l *PendingLedger) RemoveCommitted(assetID primitive.ObjectID, committedAt *int64) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[assetID]
	if !ok {
		return
	}
	if !sameSchedule(entry.ScheduledAt, committedAt) {
		return
	}
	delete(l.entries, assetID)
	if len(l.entries) == 0 {
		l.dirty = false
	}
}

// sameSchedule so sánh hai giá trị scheduledAt (nil = chưa lên lịch).
func sameSchedule(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// Has kiểm tra asset có entry trong ledger không.
func (l *PendingLedger) Has(assetID primitive.ObjectID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.entries[assetID]
	return ok
}

// Get lấy snapshot của asset trong ledger (nếu có).
func (l *PendingLedger) Get(assetID primitive.ObjectID) (contentmodels.ContentAsset, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	entry, ok := l.entries[assetID]
	return entry, ok
}

// Dirty cho biết ledger có thay đổi chưa lưu không.
func (l *PendingLedger) Dirty() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.dirty
}

// Len số entry đang chờ.
func (l *PendingLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Snapshot copy toàn bộ ledger. Commit làm việc trên snapshot để các Stage
// trong lúc commit đang bay không lọt vào batch và không bị mất.
func (l *PendingLedger) Snapshot() map[primitive.ObjectID]contentmodels.ContentAsset {
	l.mu.Lock()
	defer l.mu.Unlock()
	snapshot := make(map[primitive.ObjectID]contentmodels.ContentAsset, len(l.entries))
	for id, entry := range l.entries {
		snapshot[id] = entry
	}
	return snapshot
}

// Restore ghi lại nguyên vẹn một snapshot (rollback khi commit/reset thất bại
// toàn phần). Entry staged SAU khi snapshot được chụp vẫn giữ nguyên.
func (l *PendingLedger) Restore(snapshot map[primitive.ObjectID]contentmodels.ContentAsset) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, entry := range snapshot {
		if _, exists := l.entries[id]; !exists {
			l.entries[id] = entry
		}
	}
	if len(l.entries) > 0 {
		l.dirty = true
	}
}

// EffectiveAssets trả về danh sách asset theo thứ tự gốc, entry trong ledger
// thay thế asset trùng id. Mọi projection đi qua đây.
func (l *PendingLedger) EffectiveAssets(original []contentmodels.ContentAsset) []contentmodels.ContentAsset {
	l.mu.Lock()
	defer l.mu.Unlock()
	effective := make([]contentmodels.ContentAsset, len(original))
	for i, asset := range original {
		if entry, ok := l.entries[asset.ID]; ok {
			effective[i] = entry
		} else {
			effective[i] = asset
		}
	}
	return effective
}
