package service

import (
	"github.com/yuqie6/dsatrack/internal/pkg/dayutil"
	"github.com/yuqie6/dsatrack/internal/schema"
)

// FormatLastActive 最近活跃日期的展示文案，如 "Jun 3"；从未活跃或日期损坏时为空
func FormatLastActive(rec *schema.StreakRecord) string {
	if rec == nil || rec.CurrentStreak == 0 || rec.LastActivityDate == "" {
		return ""
	}
	return dayutil.FormatShort(rec.LastActivityDate)
}

// FormatContestWindow 比赛时段，如 "09:35-11:35"
func FormatContestWindow(c *schema.Contest) string {
	if c == nil || c.StartTime == "" || c.EndTime == "" {
		return ""
	}
	return c.StartTime + "-" + c.EndTime
}
