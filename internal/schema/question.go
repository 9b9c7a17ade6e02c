package schema

import "time"

// Question 已解决的题目
// 数据量级：千级/用户
type Question struct {
	ID          string    `gorm:"primaryKey;size:36" json:"id"`
	UserID      string    `gorm:"size:128;index;not null" json:"user_id"`
	Title       string    `gorm:"size:200;not null" json:"title"`
	Link        string    `gorm:"size:2048" json:"link"`
	Description string    `gorm:"type:text" json:"description"`
	Difficulty  string    `gorm:"size:16;index" json:"difficulty"` // Easy/Medium/Hard
	Platform    string    `gorm:"size:32;index" json:"platform"`
	TopicName   string    `gorm:"size:100;index" json:"topic_name"`
	Comments    string    `gorm:"type:text" json:"comments"`
	Completed   bool      `gorm:"-" json:"completed"` // 由 completions 表合并得出，不落库
	CreatedAt   time.Time `gorm:"index" json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Question) TableName() string {
	return "questions"
}
