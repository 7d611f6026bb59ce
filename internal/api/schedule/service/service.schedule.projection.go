package schedulesvc

import (
	"sort"
	"time"

	contentdto "content_forge/internal/api/content/dto"
	contentmodels "content_forge/internal/api/content/models"
	"content_forge/internal/common"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Ownership của một calendar entry
const (
	OwnershipSelf  = "self"  // Asset thuộc content item đang mở, kéo thả được
	OwnershipOther = "other" // Asset của content item khác, chỉ hiển thị
)

// CalendarEntry một ô trên calendar, đã trộn ledger và foreign asset.
type CalendarEntry struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	ContentType string `json:"contentType"`
	Start       int64  `json:"start"` // UTC millis
	Ownership   string `json:"ownership"`
	Pending     bool   `json:"pending"`  // Đang nằm trong ledger, chưa lưu
	Editable    bool   `json:"editable"` // self + approved
	StylingHint string `json:"stylingHint"`

	// Self entries: seed cho dialog edit (giờ business-local của lịch effective)
	EditSeed string `json:"editSeed,omitempty"`

	// Other entries: điều hướng sang content cha + cảnh báo mất thay đổi
	ContentID        string `json:"contentId,omitempty"`
	ContentTitle     string `json:"contentTitle,omitempty"`
	NavigationTarget string `json:"navigationTarget,omitempty"`
	ConfirmDiscard   bool   `json:"confirmDiscard,omitempty"`
}

// Project dựng danh sách calendar entry từ asset của session (đã qua ledger)
// và foreign asset trong window. Thứ tự: theo start rồi theo id, để render
// deterministic.
func Project(effective []contentmodels.ContentAsset, foreign []contentdto.ForeignAsset, ledger *PendingLedger, tz string, sessionDirty bool) ([]CalendarEntry, error) {
	loc, err := LoadBusinessLocation(tz)
	if err != nil {
		return nil, err
	}

	entries := make([]CalendarEntry, 0, len(effective)+len(foreign))

	for _, asset := range effective {
		if asset.ScheduledAt == nil {
			continue // Chưa lên lịch thì không có mặt trên calendar
		}
		pending := ledger.Has(asset.ID)
		hint := "scheduled"
		if pending {
			hint = "pending"
		}
		entries = append(entries, CalendarEntry{
			ID:          asset.ID.Hex(),
			Title:       assetTitle(asset),
			ContentType: asset.ContentType,
			Start:       *asset.ScheduledAt,
			Ownership:   OwnershipSelf,
			Pending:     pending,
			Editable:    asset.Approved,
			StylingHint: hint,
			EditSeed:    time.UnixMilli(*asset.ScheduledAt).In(loc).Format(time.RFC3339),
		})
	}

	for _, fa := range foreign {
		entries = append(entries, CalendarEntry{
			ID:               fa.ID,
			Title:            fa.ContentTitle,
			ContentType:      fa.ContentType,
			Start:            fa.ScheduledAt,
			Ownership:        OwnershipOther,
			Editable:         false,
			StylingHint:      "foreign",
			ContentID:        fa.ContentID,
			ContentTitle:     fa.ContentTitle,
			NavigationTarget: fa.ContentID,
			ConfirmDiscard:   sessionDirty,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Start != entries[j].Start {
			return entries[i].Start < entries[j].Start
		}
		return entries[i].ID < entries[j].ID
	})

	return entries, nil
}

// assetTitle nhãn hiển thị của asset trên calendar.
func assetTitle(asset contentmodels.ContentAsset) string {
	if asset.Headline != "" {
		return asset.Headline
	}
	return asset.ContentType
}

// StageDrop validate và stage một thao tác kéo-thả: chuyển asset sang ngày
// mới, giữ nguyên time-of-day effective. Thứ tự validate cố định:
// ownership → quá khứ → chưa duyệt. Fail ở bước nào thì ledger không đổi.
func (s *ScheduleSessionService) StageDrop(session *ScheduleSession, assetID primitive.ObjectID, newDate time.Time, now time.Time) (contentmodels.ContentAsset, error) {
	var zero contentmodels.ContentAsset

	// 1. Ownership: asset phải thuộc content item của session
	asset, ok := session.effectiveAsset(assetID)
	if !ok {
		return zero, common.ErrForeignAssetImmutable
	}

	// 2. Ngày quá khứ theo giờ business (cùng ngày thì hợp lệ)
	past, err := IsPastBusinessDate(newDate, session.Timezone, now)
	if err != nil {
		return zero, err
	}
	if past {
		return zero, common.WithDetails(common.ErrSchedulePastDate, map[string]interface{}{
			"newDate": newDate.Format("2006-01-02"),
		})
	}

	// 3. Chưa duyệt thì chưa được lên lịch
	if !asset.Approved {
		return zero, common.ErrAssetNotApproved
	}

	// Time-of-day effective: giữ từ lịch hiện tại, chưa có lịch thì dùng
	// giờ đăng mặc định của business
	loc, err := LoadBusinessLocation(session.Timezone)
	if err != nil {
		return zero, err
	}
	var timeOfDay time.Time
	if asset.ScheduledAt != nil {
		timeOfDay = time.UnixMilli(*asset.ScheduledAt).In(loc)
	} else {
		y, m, d := newDate.In(loc).Date()
		timeOfDay = time.Date(y, m, d, session.PublishHour, 0, 0, 0, loc)
	}

	newInstant, err := CombineDateAndTime(newDate, timeOfDay, session.Timezone)
	if err != nil {
		return zero, err
	}

	millis := newInstant.UnixMilli()
	snapshot := asset
	snapshot.ScheduledAt = &millis
	session.Ledger.Stage(assetID, snapshot)
	session.Touch()
	return snapshot, nil
}
