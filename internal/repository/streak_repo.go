package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yuqie6/dsatrack/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StreakRepository 连续打卡仓储
type StreakRepository struct {
	db *gorm.DB
}

// NewStreakRepository 创建仓储
func NewStreakRepository(db *gorm.DB) *StreakRepository {
	return &StreakRepository{db: db}
}

// Get 按用户读取，不存在返回 nil
func (r *StreakRepository) Get(ctx context.Context, userID string) (*schema.StreakRecord, error) {
	var rec schema.StreakRecord
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&rec).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询连续打卡失败: %w", err)
	}
	return &rec, nil
}

// CompareAndSwap 乐观并发写入：prev 为 nil 时仅在记录不存在时插入，
// 否则仅当库中 last_activity_date 仍等于 prev 的值时覆盖。返回是否写入成功。
func (r *StreakRepository) CompareAndSwap(ctx context.Context, prev, next *schema.StreakRecord) (bool, error) {
	db := r.db.WithContext(ctx)

	if prev == nil {
		res := db.Clauses(clause.OnConflict{DoNothing: true}).Create(next)
		if res.Error != nil {
			return false, fmt.Errorf("写入连续打卡失败: %w", res.Error)
		}
		return res.RowsAffected == 1, nil
	}

	res := db.Model(&schema.StreakRecord{}).
		Where("user_id = ? AND last_activity_date = ?", next.UserID, prev.LastActivityDate).
		Updates(map[string]any{
			"current_streak":     next.CurrentStreak,
			"max_streak":         next.MaxStreak,
			"last_activity_date": next.LastActivityDate,
			"updated_at":         time.Now(),
		})
	if res.Error != nil {
		return false, fmt.Errorf("更新连续打卡失败: %w", res.Error)
	}
	return res.RowsAffected == 1, nil
}
