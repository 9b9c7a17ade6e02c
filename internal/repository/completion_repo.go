package repository

import (
	"context"
	"fmt"

	"github.com/yuqie6/dsatrack/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CompletionRepository 完成标记仓储
type CompletionRepository struct {
	db *gorm.DB
}

// NewCompletionRepository 创建仓储
func NewCompletionRepository(db *gorm.DB) *CompletionRepository {
	return &CompletionRepository{db: db}
}

// Upsert 标记完成（重复标记覆盖完成时间）
func (r *CompletionRepository) Upsert(ctx context.Context, c *schema.Completion) error {
	if c.ID == "" {
		c.ID = schema.CompletionID(c.UserID, c.QuestionID)
	}
	if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(c).Error; err != nil {
		return fmt.Errorf("写入完成标记失败: %w", err)
	}
	return nil
}

// Delete 取消完成标记，不存在时视为成功
func (r *CompletionRepository) Delete(ctx context.Context, userID, questionID string) error {
	if err := r.db.WithContext(ctx).
		Where("id = ?", schema.CompletionID(userID, questionID)).
		Delete(&schema.Completion{}).Error; err != nil {
		return fmt.Errorf("删除完成标记失败: %w", err)
	}
	return nil
}

// CompletedQuestionIDs 用户已完成的题目 ID 集合
func (r *CompletionRepository) CompletedQuestionIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	var ids []string
	if err := r.db.WithContext(ctx).
		Model(&schema.Completion{}).
		Where("user_id = ?", userID).
		Pluck("question_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("查询完成标记失败: %w", err)
	}
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out, nil
}
