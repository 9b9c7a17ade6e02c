package schema

import "time"

// Completion 题目完成标记（用户与题目的关联表）
// 主键为 userID_questionID，重复标记天然幂等。
type Completion struct {
	ID          string    `gorm:"primaryKey;size:200" json:"id"`
	UserID      string    `gorm:"size:128;index;not null" json:"user_id"`
	QuestionID  string    `gorm:"size:36;index;not null" json:"question_id"`
	CompletedAt time.Time `gorm:"index" json:"completed_at"`
}

// TableName 指定表名
func (Completion) TableName() string {
	return "completions"
}

// CompletionID 关联记录主键
func CompletionID(userID, questionID string) string {
	return userID + "_" + questionID
}
