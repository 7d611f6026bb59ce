package models

import (
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AssetType định nghĩa các loại content asset sinh ra từ một content item.
// Mỗi content item có tối đa một asset mỗi loại.
const (
	AssetTypeYoutubeVideo     = "youtube_video"
	AssetTypeBlogPost         = "blog_post"
	AssetTypeEmail            = "email"
	AssetTypeSocialRantPost   = "social_rant_post"
	AssetTypeSocialBlogPost   = "social_blog_post"
	AssetTypeSocialLongVideo  = "social_long_video"
	AssetTypeSocialShortVideo = "social_short_video"
	AssetTypeSocialQuoteCard  = "social_quote_card"
)

// AssetTypes trả về danh sách đầy đủ các loại asset.
func AssetTypes() []string {
	return []string{
		AssetTypeYoutubeVideo,
		AssetTypeBlogPost,
		AssetTypeEmail,
		AssetTypeSocialRantPost,
		AssetTypeSocialBlogPost,
		AssetTypeSocialLongVideo,
		AssetTypeSocialShortVideo,
		AssetTypeSocialQuoteCard,
	}
}

// ContentAsset đại diện cho một asset theo kênh (video, blog, email...)
// được sinh ra từ một content item. Scheduler chỉ đụng vào approved và
// scheduledAt; các field nội dung là opaque với nó.
type ContentAsset struct {
	ID primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"` // ID của asset

	ContentID  primitive.ObjectID `json:"contentId" bson:"contentId" index:"single:1"`   // Content item cha
	BusinessID primitive.ObjectID `json:"businessId" bson:"businessId" index:"single:1"` // Business sở hữu (denormalize cho query theo business)

	// Loại asset: youtube_video, blog_post, email, social_rant_post,
	// social_blog_post, social_long_video, social_short_video, social_quote_card
	ContentType string `json:"contentType" bson:"contentType" index:"single:1"`

	Approved bool `json:"approved" bson:"approved" index:"single:1"` // Đã duyệt nội dung chưa

	// Thời điểm đăng theo UTC (unix millis). nil = chưa lên lịch.
	ScheduledAt *int64 `json:"scheduledAt,omitempty" bson:"scheduledAt,omitempty" index:"single:1"`

	// ===== NỘI DUNG (opaque với scheduler) =====
	Headline string `json:"headline,omitempty" bson:"headline,omitempty" index:"text"` // Tiêu đề asset
	Body     string `json:"body,omitempty" bson:"body,omitempty"`                      // Nội dung chính
	MediaURL string `json:"mediaUrl,omitempty" bson:"mediaUrl,omitempty"`              // URL media (video/ảnh)

	CreatedAt int64 `json:"createdAt" bson:"createdAt"` // Thời gian tạo
	UpdatedAt int64 `json:"updatedAt" bson:"updatedAt"` // Thời gian cập nhật
}
