package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/dsatrack/internal/schema"
	"gorm.io/gorm"
)

// QuestionFilter 题目列表筛选条件，空值或 "All" 表示不过滤
type QuestionFilter struct {
	Difficulty string
	Platform   string
	TopicName  string
	Date       string // YYYY-MM-DD，按创建日筛选
}

func isAll(v string) bool {
	return v == "" || v == schema.FilterAll
}

// QuestionRepository 题目仓储
type QuestionRepository struct {
	db *gorm.DB
}

// NewQuestionRepository 创建仓储
func NewQuestionRepository(db *gorm.DB) *QuestionRepository {
	return &QuestionRepository{db: db}
}

// Create 新增题目
func (r *QuestionRepository) Create(ctx context.Context, q *schema.Question) error {
	if err := r.db.WithContext(ctx).Create(q).Error; err != nil {
		return fmt.Errorf("写入题目失败: %w", err)
	}
	return nil
}

// GetByID 获取用户自己的题目，不存在或不属于该用户时返回 nil
func (r *QuestionRepository) GetByID(ctx context.Context, userID, id string) (*schema.Question, error) {
	var q schema.Question
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&q).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询题目失败: %w", err)
	}
	return &q, nil
}

// List 按创建时间倒序列出用户题目
func (r *QuestionRepository) List(ctx context.Context, userID string, filter QuestionFilter) ([]schema.Question, error) {
	q := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if !isAll(filter.Difficulty) {
		q = q.Where("difficulty = ?", filter.Difficulty)
	}
	if !isAll(filter.Platform) {
		q = q.Where("platform = ?", filter.Platform)
	}
	if filter.TopicName != "" {
		q = q.Where("topic_name = ?", filter.TopicName)
	}
	if filter.Date != "" {
		start, end, err := DayRange(filter.Date)
		if err != nil {
			return nil, err
		}
		q = q.Where("created_at >= ? AND created_at < ?", start, end)
	}

	var out []schema.Question
	if err := q.Order("created_at DESC").Find(&out).Error; err != nil {
		return nil, fmt.Errorf("查询题目失败: %w", err)
	}
	return out, nil
}
