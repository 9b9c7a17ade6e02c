package mongostore

import (
	"time"

	"github.com/yuqie6/dsatrack/internal/pkg/dayutil"
)

// normalizeTime 文档中的时间可能是 Date、毫秒数或字符串，统一转换
func normalizeTime(field string, raw any, fallback time.Time) time.Time {
	if raw == nil {
		return fallback
	}
	return dayutil.NormalizeTimestamp(field, raw, fallback)
}

// normalizeDay 日期字段统一为 YYYY-MM-DD
func normalizeDay(field string, raw any, fallback time.Time) string {
	if s, ok := raw.(string); ok {
		if _, err := dayutil.ParseDay(s); err == nil {
			return s
		}
	}
	return dayutil.FormatDay(normalizeTime(field, raw, fallback))
}
