package contentdto

// ContentItemCreateInput dữ liệu đầu vào khi tạo content item
type ContentItemCreateInput struct {
	BusinessID     string `json:"businessId" validate:"required" transform:"str_objectid"`
	Title          string `json:"title" validate:"required,no_xss" maxLength:"300"`
	Status         string `json:"status,omitempty" validate:"omitempty,oneof=processing reviewing scheduled published"`
	SourceAudioURL string `json:"sourceAudioUrl,omitempty"`
}

// ContentItemUpdateInput dữ liệu đầu vào khi cập nhật content item
type ContentItemUpdateInput struct {
	Title          string `json:"title,omitempty" validate:"omitempty,no_xss" maxLength:"300"`
	Status         string `json:"status,omitempty" validate:"omitempty,oneof=processing reviewing scheduled published"`
	SourceAudioURL string `json:"sourceAudioUrl,omitempty"`
}
