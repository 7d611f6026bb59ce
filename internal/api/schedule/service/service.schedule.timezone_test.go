// Package schedulesvc - Test chuyển đổi múi giờ theo IANA timezone của business.
package schedulesvc

import (
	"errors"
	"testing"
	"time"

	"content_forge/internal/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadBusinessLocation(t *testing.T) {
	t.Run("✅ Timezone IANA hợp lệ", func(t *testing.T) {
		loc, err := LoadBusinessLocation("Australia/Brisbane")
		require.NoError(t, err)
		assert.Equal(t, "Australia/Brisbane", loc.String())
	})

	t.Run("✅ Chuỗi rỗng fallback về UTC", func(t *testing.T) {
		loc, err := LoadBusinessLocation("")
		require.NoError(t, err)
		assert.Equal(t, time.UTC, loc)
	})

	t.Run("❌ Timezone không hợp lệ trả về lỗi SCHED timezone", func(t *testing.T) {
		_, err := LoadBusinessLocation("Mars/Olympus_Mons")
		require.Error(t, err)
		assert.True(t, errors.Is(err, common.ErrInvalidTimezone))
		var customErr *common.Error
		require.True(t, errors.As(err, &customErr))
		assert.Equal(t, common.ErrCodeScheduleTimezone.Code, customErr.Code.Code)
	})
}

func TestToUTCAndBack(t *testing.T) {
	// 09:00 sáng giờ Brisbane (UTC+10, không có DST) = 23:00 UTC hôm trước
	local := time.Date(2024, 1, 3, 9, 0, 0, 0, time.UTC) // wall-clock 09:00
	utc, err := ToUTC(local, "Australia/Brisbane")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 1, 2, 23, 0, 0, 0, time.UTC), utc)

	back, err := ToBusinessLocal(utc, "Australia/Brisbane")
	require.NoError(t, err)
	assert.Equal(t, 9, back.Hour())
	assert.Equal(t, 3, back.Day())
}

func TestIsPastBusinessDate(t *testing.T) {
	// now = 2024-06-15 01:00 UTC = 2024-06-15 11:00 Brisbane
	now := time.Date(2024, 6, 15, 1, 0, 0, 0, time.UTC)

	t.Run("✅ Cùng ngày theo giờ business không bị coi là quá khứ", func(t *testing.T) {
		candidate := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
		past, err := IsPastBusinessDate(candidate, "Australia/Brisbane", now)
		require.NoError(t, err)
		assert.False(t, past)
	})

	t.Run("✅ Ngày hôm qua theo giờ business là quá khứ", func(t *testing.T) {
		candidate := time.Date(2024, 6, 14, 12, 0, 0, 0, time.UTC)
		past, err := IsPastBusinessDate(candidate, "Australia/Brisbane", now)
		require.NoError(t, err)
		assert.True(t, past)
	})

	t.Run("✅ Ranh giới ngày phụ thuộc múi giờ, không phụ thuộc UTC", func(t *testing.T) {
		// 2024-06-14 20:00 UTC = 2024-06-15 06:00 Brisbane → cùng ngày, không quá khứ
		candidate := time.Date(2024, 6, 14, 20, 0, 0, 0, time.UTC)
		past, err := IsPastBusinessDate(candidate, "Australia/Brisbane", now)
		require.NoError(t, err)
		assert.False(t, past)
	})
}

func TestCombineDateAndTime(t *testing.T) {
	t.Run("✅ Giữ nguyên time-of-day khi chuyển ngày", func(t *testing.T) {
		loc, _ := time.LoadLocation("Australia/Brisbane")
		date := time.Date(2024, 3, 20, 0, 0, 0, 0, loc)
		timeOfDay := time.Date(2024, 1, 5, 14, 30, 0, 0, loc)

		combined, err := CombineDateAndTime(date, timeOfDay, "Australia/Brisbane")
		require.NoError(t, err)

		local := combined.In(loc)
		assert.Equal(t, 2024, local.Year())
		assert.Equal(t, time.March, local.Month())
		assert.Equal(t, 20, local.Day())
		assert.Equal(t, 14, local.Hour())
		assert.Equal(t, 30, local.Minute())
	})

	t.Run("✅ Kết quả là UTC instant đúng offset", func(t *testing.T) {
		loc, _ := time.LoadLocation("Australia/Brisbane")
		date := time.Date(2024, 3, 20, 0, 0, 0, 0, loc)
		timeOfDay := time.Date(2024, 1, 5, 9, 0, 0, 0, loc)

		combined, err := CombineDateAndTime(date, timeOfDay, "Australia/Brisbane")
		require.NoError(t, err)
		// 09:00 Brisbane = 23:00 UTC hôm trước
		assert.Equal(t, time.Date(2024, 3, 19, 23, 0, 0, 0, time.UTC), combined.UTC())
	})

	t.Run("✅ Múi giờ có DST dùng offset của ngày đích", func(t *testing.T) {
		loc, _ := time.LoadLocation("America/New_York")
		// 2024-03-10 là ngày spring-forward ở New York
		dateBefore := time.Date(2024, 3, 9, 0, 0, 0, 0, loc)
		dateAfter := time.Date(2024, 3, 11, 0, 0, 0, 0, loc)
		timeOfDay := time.Date(2024, 1, 1, 9, 0, 0, 0, loc)

		before, err := CombineDateAndTime(dateBefore, timeOfDay, "America/New_York")
		require.NoError(t, err)
		after, err := CombineDateAndTime(dateAfter, timeOfDay, "America/New_York")
		require.NoError(t, err)

		// EST: 09:00 = 14:00 UTC; EDT: 09:00 = 13:00 UTC
		assert.Equal(t, 14, before.UTC().Hour())
		assert.Equal(t, 13, after.UTC().Hour())
	})
}
