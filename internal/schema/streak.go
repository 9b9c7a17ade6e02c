package schema

import "time"

// StreakRecord 用户连续打卡记录，每个用户一行，以用户 ID 为主键
// 数据量级：用户数
type StreakRecord struct {
	UserID           string    `gorm:"primaryKey;size:128" json:"user_id"`
	CurrentStreak    int       `gorm:"not null;default:0" json:"current_streak"`
	MaxStreak        int       `gorm:"not null;default:0" json:"max_streak"`
	LastActivityDate string    `gorm:"size:32;index" json:"last_activity_date"` // YYYY-MM-DD，从未活跃时为空
	UpdatedAt        time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// TableName 指定表名
func (StreakRecord) TableName() string {
	return "streaks"
}

// ZeroStreak 从未活跃用户的记录
func ZeroStreak(userID string) *StreakRecord {
	return &StreakRecord{UserID: userID}
}

// Clone 返回副本，避免缓存中的对象被调用方修改
func (s *StreakRecord) Clone() *StreakRecord {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}
