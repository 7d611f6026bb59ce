package contentdto

// ContentAssetCreateInput dữ liệu đầu vào khi tạo content asset.
// Pipeline sinh asset ở trạng thái chưa duyệt, chưa lên lịch.
type ContentAssetCreateInput struct {
	ContentID   string `json:"contentId" validate:"required" transform:"str_objectid"`
	BusinessID  string `json:"businessId" validate:"required" transform:"str_objectid"`
	ContentType string `json:"contentType" validate:"required,content_type"`
	Headline    string `json:"headline,omitempty" validate:"omitempty,no_xss" maxLength:"300"`
	Body        string `json:"body,omitempty"`
	MediaURL    string `json:"mediaUrl,omitempty"`
}

// ContentAssetUpdateInput dữ liệu đầu vào khi cập nhật nội dung asset.
// approved và scheduledAt không nhận qua update thường: approved đi qua
// endpoint approve/unapprove, scheduledAt đi qua subsystem schedule.
type ContentAssetUpdateInput struct {
	Headline string `json:"headline,omitempty" validate:"omitempty,no_xss" maxLength:"300"`
	Body     string `json:"body,omitempty"`
	MediaURL string `json:"mediaUrl,omitempty"`
}

// ContentAssetIDParams params từ URL cho các thao tác theo asset id
type ContentAssetIDParams struct {
	ID string `uri:"id" validate:"required"`
}

// BusinessWindowQuery params cho query asset của business trong một khoảng lịch.
// Dùng để hiển thị asset "ngoại lai" (thuộc content item khác) trên calendar.
type BusinessWindowQuery struct {
	BusinessID       string `query:"businessId" validate:"required"`
	StartDateISO     string `query:"startDate" validate:"required"`
	EndDateISO       string `query:"endDate" validate:"required"`
	ExcludeContentID string `query:"excludeContentId,omitempty"`
}

// ForeignAsset là projection read-only của asset thuộc content item khác,
// kèm thông tin content cha để hiển thị trên calendar.
type ForeignAsset struct {
	ID           string `json:"id"`
	ContentID    string `json:"contentId"`
	ContentTitle string `json:"contentTitle"`
	ContentType  string `json:"contentType"`
	ScheduledAt  int64  `json:"scheduledAt"`
}
