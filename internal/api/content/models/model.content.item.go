package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ContentItemStatus định nghĩa trạng thái của content item
const (
	ContentItemStatusProcessing = "processing" // Pipeline đang sinh assets
	ContentItemStatusReviewing  = "reviewing"  // Assets đã sinh xong, chờ duyệt
	ContentItemStatusScheduled  = "scheduled"  // Đã lên lịch đăng
	ContentItemStatusPublished  = "published"  // Đã đăng
)

// ContentItem đại diện cho một phiên sản xuất content: một nguồn audio
// được pipeline tách thành nhiều content asset theo từng kênh.
type ContentItem struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của content item

	BusinessID primitive.ObjectID `json:"businessId" bson:"businessId" index:"single:1"` // Business sở hữu
	Title      string             `json:"title" bson:"title" index:"text"`               // Tiêu đề phiên sản xuất

	// Trạng thái: processing, reviewing, scheduled, published
	Status string `json:"status" bson:"status" default:"processing" index:"single:1"`

	// URL audio nguồn do pipeline bên ngoài cung cấp (opaque với scheduler)
	SourceAudioURL string `json:"sourceAudioUrl,omitempty" bson:"sourceAudioUrl,omitempty"`

	_Relationships struct{} `relationship:"collection:content_assets,field:contentId,message:Không thể xóa content item vì có %d content asset trực thuộc. Vui lòng xóa các asset trước."`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}
