package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Business đại diện cho một business (khách hàng SaaS) sở hữu content.
// Timezone của business quyết định mọi phép chuyển đổi lịch đăng bài:
// scheduledAt lưu UTC, hiển thị và validate theo giờ địa phương của business.
type Business struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của business

	Name       string `json:"name" bson:"name" index:"text"`                      // Tên business
	OwnerEmail string `json:"ownerEmail,omitempty" bson:"ownerEmail,omitempty"`   // Email chủ sở hữu
	Timezone   string `json:"timezone" bson:"timezone" default:"UTC"`             // IANA timezone (vd: Australia/Brisbane)
	Active     bool   `json:"active" bson:"active" default:"true" index:"single:1"` // Business còn hoạt động không

	// Giờ địa phương mặc định khi auto-schedule (09:00 theo giờ business)
	DefaultPublishHour int `json:"defaultPublishHour" bson:"defaultPublishHour" default:"9"`

	_Relationships struct{} `relationship:"collection:content_items,field:businessId,message:Không thể xóa business vì có %d content item trực thuộc. Vui lòng xóa các content item trước.|collection:content_assets,field:businessId,message:Không thể xóa business vì có %d content asset trực thuộc. Vui lòng xóa các content asset trước."`

	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}
