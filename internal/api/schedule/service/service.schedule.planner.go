package schedulesvc

import (
	"time"

	contentmodels "content_forge/internal/api/content/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// SequenceRule một dòng trong bảng trình tự đăng: ngày offset và các loại
// asset đăng trong ngày đó (thứ tự cố định).
type SequenceRule struct {
	DayOffset    int
	ContentTypes []string
}

// SequenceRules bảng trình tự đăng chuẩn, cố định theo nghiệp vụ:
// video/bài dài đi trước, nội dung phụ trợ rải các ngày sau.
func SequenceRules() []SequenceRule {
	return []SequenceRule{
		{DayOffset: 0, ContentTypes: []string{
			contentmodels.AssetTypeYoutubeVideo,
			contentmodels.AssetTypeBlogPost,
			contentmodels.AssetTypeSocialLongVideo,
		}},
		{DayOffset: 1, ContentTypes: []string{
			contentmodels.AssetTypeSocialQuoteCard,
		}},
		{DayOffset: 2, ContentTypes: []string{
			contentmodels.AssetTypeEmail,
			contentmodels.AssetTypeSocialBlogPost,
		}},
		{DayOffset: 3, ContentTypes: []string{
			contentmodels.AssetTypeSocialRantPost,
		}},
		{DayOffset: 4, ContentTypes: []string{
			contentmodels.AssetTypeSocialShortVideo,
		}},
	}
}

// PlanSchedule dựng lịch tự động cho các asset đã duyệt và CHƯA có lịch.
// Deterministic: duyệt bảng trình tự theo thứ tự dòng, trong dòng theo thứ tự
// loại; mỗi loại nhận asset khớp đầu tiên (theo thứ tự slice gốc) chưa được
// gán. Loại không có asset thì bỏ qua slot, không dồn ngày.
//
// startDate được hiểu theo ngày lịch trong tz; giờ đăng là publishHour:00:00
// giờ business, convert sang UTC từng ngày một (DST từng ngày có thể khác offset).
// Caller chịu trách nhiệm validate startDate không phải quá khứ.
func PlanSchedule(assets []contentmodels.ContentAsset, startDate time.Time, tz string, publishHour int) (map[primitive.ObjectID]time.Time, error) {
	loc, err := LoadBusinessLocation(tz)
	if err != nil {
		return nil, err
	}

	plan := make(map[primitive.ObjectID]time.Time)
	assigned := make(map[primitive.ObjectID]bool)
	y, m, d := startDate.In(loc).Date()

	for _, rule := range SequenceRules() {
		slotLocal := time.Date(y, m, d+rule.DayOffset, publishHour, 0, 0, 0, loc)
		for _, contentType := range rule.ContentTypes {
			for _, asset := range assets {
				if asset.ContentType != contentType {
					continue
				}
				if assigned[asset.ID] {
					continue
				}
				if !asset.Approved || asset.ScheduledAt != nil {
					// Chưa duyệt hoặc đã có lịch: không tham gia auto-schedule
					assigned[asset.ID] = true
					continue
				}
				plan[asset.ID] = slotLocal.UTC()
				assigned[asset.ID] = true
				break
			}
		}
	}

	return plan, nil
}
