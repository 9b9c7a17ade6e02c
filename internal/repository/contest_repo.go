package repository

import (
	"context"
	"fmt"

	"github.com/yuqie6/dsatrack/internal/schema"
	"gorm.io/gorm"
)

// ContestRepository 比赛仓储
type ContestRepository struct {
	db *gorm.DB
}

// NewContestRepository 创建仓储
func NewContestRepository(db *gorm.DB) *ContestRepository {
	return &ContestRepository{db: db}
}

// Create 新增比赛
func (r *ContestRepository) Create(ctx context.Context, c *schema.Contest) error {
	if err := r.db.WithContext(ctx).Create(c).Error; err != nil {
		return fmt.Errorf("写入比赛失败: %w", err)
	}
	return nil
}

// List 按比赛日期倒序
func (r *ContestRepository) List(ctx context.Context, userID string) ([]schema.Contest, error) {
	var out []schema.Contest
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, start_time DESC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("查询比赛失败: %w", err)
	}
	return out, nil
}

// CountFrom 统计日期 >= fromDate 的比赛（YYYY-MM-DD 可直接按字符串比较）
func (r *ContestRepository) CountFrom(ctx context.Context, userID, fromDate string) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).
		Model(&schema.Contest{}).
		Where("user_id = ? AND date >= ?", userID, fromDate).
		Count(&n).Error; err != nil {
		return 0, fmt.Errorf("统计比赛失败: %w", err)
	}
	return n, nil
}
