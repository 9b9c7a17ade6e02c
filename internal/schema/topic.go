package schema

import (
	"strings"
	"time"
)

// Topic 题目分类
type Topic struct {
	ID            string    `gorm:"primaryKey;size:36" json:"id"`
	UserID        string    `gorm:"size:128;not null;uniqueIndex:uniq_user_topic,priority:1" json:"user_id"`
	NameKey       string    `gorm:"size:100;not null;uniqueIndex:uniq_user_topic,priority:2" json:"-"` // 小写名，用于同用户去重
	Name          string    `gorm:"size:100;not null" json:"name"`
	QuestionCount int       `gorm:"-" json:"question_count"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// TableName 指定表名
func (Topic) TableName() string {
	return "topics"
}

// TopicNameKey 归一化分类名
func TopicNameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
