package schedulesvc

import (
	"time"
	_ "time/tzdata"

	"content_forge/internal/common"
	"content_forge/internal/utility"
)

// locationCache cache *time.Location theo tên IANA. LoadLocation đọc tzdata
// mỗi lần gọi, mà mỗi projection/validation đều cần location của business.
var locationCache = utility.NewCache(12*time.Hour, 24*time.Hour)

// LoadBusinessLocation resolve tên IANA timezone thành *time.Location (có cache).
func LoadBusinessLocation(tz string) (*time.Location, error) {
	if tz == "" {
		tz = "UTC"
	}
	if cached, ok := locationCache.Get(tz); ok {
		return cached.(*time.Location), nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, common.WithDetails(common.ErrInvalidTimezone, map[string]interface{}{
			"timezone": tz,
		})
	}
	locationCache.Set(tz, loc)
	return loc, nil
}

// ToBusinessLocal chuyển một instant UTC sang giờ địa phương của business.
func ToBusinessLocal(utc time.Time, tz string) (time.Time, error) {
	loc, err := LoadBusinessLocation(tz)
	if err != nil {
		return time.Time{}, err
	}
	return utc.In(loc), nil
}

// ToUTC hiểu lại wall-clock của local trong timezone business rồi trả về UTC.
// DST do tzdata xử lý, không dùng offset cố định.
func ToUTC(local time.Time, tz string) (time.Time, error) {
	loc, err := LoadBusinessLocation(tz)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := local.Date()
	h, min, sec := local.Clock()
	return time.Date(y, m, d, h, min, sec, local.Nanosecond(), loc).UTC(), nil
}

// IsPastBusinessDate kiểm tra candidate có rơi vào ngày lịch TRƯỚC hôm nay
// theo giờ business không. So sánh theo ngày lịch (year/month/day), không theo
// instant: cùng ngày không bao giờ là quá khứ. now được inject để test được.
func IsPastBusinessDate(candidate time.Time, tz string, now time.Time) (bool, error) {
	loc, err := LoadBusinessLocation(tz)
	if err != nil {
		return false, err
	}
	cy, cm, cd := candidate.In(loc).Date()
	ny, nm, nd := now.In(loc).Date()
	candidateDate := time.Date(cy, cm, cd, 0, 0, 0, 0, time.UTC)
	nowDate := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return candidateDate.Before(nowDate), nil
}

// CombineDateAndTime ghép ngày của date với giờ/phút/giây/ms của timeOfDay
// theo timezone business, trả về instant UTC. Đây là contract của drag-drop:
// kéo asset sang ngày khác giữ nguyên time-of-day hiện có.
func CombineDateAndTime(date time.Time, timeOfDay time.Time, tz string) (time.Time, error) {
	loc, err := LoadBusinessLocation(tz)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := date.In(loc).Date()
	h, min, sec := timeOfDay.In(loc).Clock()
	return time.Date(y, m, d, h, min, sec, timeOfDay.In(loc).Nanosecond(), loc).UTC(), nil
}
