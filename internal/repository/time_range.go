package repository

import (
	"fmt"
	"time"

	"github.com/yuqie6/dsatrack/internal/pkg/dayutil"
)

// DayRange 将 YYYY-MM-DD 解析为本地日区间 [start, end)。
func DayRange(date string) (start time.Time, end time.Time, err error) {
	t, err := dayutil.ParseDay(date)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("解析日期失败: %w", err)
	}
	return t, t.AddDate(0, 0, 1), nil
}
