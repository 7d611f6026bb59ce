package scheduledto

// ContentIDParams nhận contentId từ URI.
type ContentIDParams struct {
	ContentID string `uri:"contentId" json:"contentId" validate:"required"`
}

// AssetIDParams nhận assetId từ URI.
type AssetIDParams struct {
	ID string `uri:"id" json:"id" validate:"required"`
}

// SessionIDParams nhận session id từ URI.
type SessionIDParams struct {
	ID string `uri:"id" json:"id" validate:"required"`
}

// AutoScheduleInput dữ liệu đầu vào khi auto-schedule một content item.
// StartDateISO rỗng nghĩa là ngày mai theo giờ business. Timezone override
// chỉ áp dụng cho lần auto-schedule này, không lưu vào business.
type AutoScheduleInput struct {
	StartDateISO string `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Timezone     string `json:"timezone,omitempty" validate:"omitempty,iana_timezone"`
}

// UpdateScheduleInput dữ liệu đầu vào khi đổi lịch một asset trực tiếp
// (không qua session). Thời điểm dạng RFC3339, được chuyển về UTC khi lưu.
type UpdateScheduleInput struct {
	NewDateTimeISO string `json:"newDateTime" validate:"required"`
}

// SessionOpenInput dữ liệu đầu vào khi mở một scheduling session.
type SessionOpenInput struct {
	ContentID string `json:"contentId" validate:"required"`
}

// StageInput dữ liệu đầu vào khi stage một thay đổi lịch vào ledger của
// session. NewDateISO là ngày đích (YYYY-MM-DD) theo giờ business, giờ trong
// ngày giữ nguyên từ lịch hiện tại của asset.
type StageInput struct {
	AssetID    string `json:"assetId" validate:"required"`
	NewDateISO string `json:"newDate" validate:"required,datetime=2006-01-02"`
}

// CalendarQuery khoảng calendar đang hiển thị, dùng để lấy các asset của
// content khác trong cùng business. Bỏ trống thì calendar chỉ chứa asset của
// content đang mở.
type CalendarQuery struct {
	StartDateISO string `query:"startDate" json:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDateISO   string `query:"endDate" json:"endDate" validate:"omitempty,datetime=2006-01-02"`
}

// CloseQuery tham số khi đóng session. Force=true bỏ qua navigation guard
// với session còn thay đổi chưa lưu.
type CloseQuery struct {
	Force bool `query:"force" json:"force"`
}

// SessionResponse payload trả về khi mở hoặc xem một session.
type SessionResponse struct {
	ID          string `json:"id"`
	ContentID   string `json:"contentId"`
	BusinessID  string `json:"businessId"`
	Timezone    string `json:"timezone"`
	PublishHour int    `json:"publishHour"`
	Dirty       bool   `json:"dirty"`
	Pending     int    `json:"pending"`
}
