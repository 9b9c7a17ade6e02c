package dayutil

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Layout 日历日期格式（无时间部分）
const Layout = "2006-01-02"

// FormatDay 格式化为本地日历日期
func FormatDay(t time.Time) string {
	return t.In(time.Local).Format(Layout)
}

// ParseDay 将 YYYY-MM-DD 解析为本地时区当天零点
func ParseDay(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("日期为空")
	}
	t, err := time.ParseInLocation(Layout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("解析日期失败: %w", err)
	}
	return t, nil
}

// StartOfDay 返回本地时区当天零点
func StartOfDay(t time.Time) time.Time {
	t = t.In(time.Local)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.Local)
}

// PreviousDay 返回前一个日历日（按日历而非 24h 计算，跨夏令时也安全）
func PreviousDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, -1)
}

// IsPreviousDay last 是否恰好是 today 的前一天
func IsPreviousDay(last, today time.Time) bool {
	return FormatDay(last) == FormatDay(PreviousDay(today))
}

// FormatShort 展示用短日期，如 "Jun 3"
func FormatShort(day string) string {
	t, err := ParseDay(day)
	if err != nil {
		return ""
	}
	return t.Format("Jan 2")
}

// NormalizeTimestamp 统一解析持久化层读出的时间字段。
// 数值一律按 Unix 毫秒解释；无法识别的值回退到 fallback（调用方通常传入"现在"），并记录告警。
func NormalizeTimestamp(field string, raw any, fallback time.Time) time.Time {
	switch v := raw.(type) {
	case time.Time:
		if !v.IsZero() {
			return v
		}
	case *time.Time:
		if v != nil && !v.IsZero() {
			return *v
		}
	case primitive.DateTime:
		return v.Time()
	case primitive.Timestamp:
		return time.Unix(int64(v.T), 0)
	case int64:
		if v > 0 {
			return time.UnixMilli(v)
		}
	case int32:
		if v > 0 {
			return time.UnixMilli(int64(v))
		}
	case int:
		if v > 0 {
			return time.UnixMilli(int64(v))
		}
	case float64:
		if v > 0 {
			return time.UnixMilli(int64(v))
		}
	case string:
		s := strings.TrimSpace(v)
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			return t
		}
		if t, err := ParseDay(s); err == nil {
			return t
		}
	}

	slog.Warn("时间字段无法解析，使用回退值", "field", field, "value", fmt.Sprintf("%v", raw))
	return fallback
}

// MalformedDay 存储中的活跃日期不是字符串时的占位值，ParseDay 必然失败
const MalformedDay = "malformed"

// NormalizeActivityDay 解析文档中的活跃日期字段。
// 缺失或 null 视为从未活跃（""）；字符串原样返回（去空白）；其他类型记录告警并返回 MalformedDay。
func NormalizeActivityDay(field string, raw any) string {
	switch v := raw.(type) {
	case nil:
		return ""
	case primitive.Null, primitive.Undefined:
		return ""
	case string:
		return strings.TrimSpace(v)
	}
	slog.Warn("活跃日期字段类型异常", "field", field, "type", fmt.Sprintf("%T", raw), "value", fmt.Sprintf("%v", raw))
	return MalformedDay
}
