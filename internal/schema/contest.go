package schema

import "time"

// Contest 比赛日程
type Contest struct {
	ID        string    `gorm:"primaryKey;size:36" json:"id"`
	UserID    string    `gorm:"size:128;index;not null" json:"user_id"`
	Title     string    `gorm:"size:200;not null" json:"title"`
	Platform  string    `gorm:"size:32" json:"platform"`
	Date      string    `gorm:"size:10;index" json:"date"` // YYYY-MM-DD
	StartTime string    `gorm:"size:5" json:"start_time"`  // HH:MM
	EndTime   string    `gorm:"size:5" json:"end_time"`    // HH:MM
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Contest) TableName() string {
	return "contests"
}
