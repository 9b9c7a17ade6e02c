package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/yuqie6/dsatrack/internal/schema"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// TopicRepository 分类仓储
type TopicRepository struct {
	db *gorm.DB
}

// NewTopicRepository 创建仓储
func NewTopicRepository(db *gorm.DB) *TopicRepository {
	return &TopicRepository{db: db}
}

// Create 新增分类，同用户同名（忽略大小写）返回 ErrDuplicate
func (r *TopicRepository) Create(ctx context.Context, t *schema.Topic) error {
	t.NameKey = schema.TopicNameKey(t.Name)
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(t)
	if res.Error != nil {
		return fmt.Errorf("写入分类失败: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrDuplicate
	}
	return nil
}

// GetByID 获取用户自己的分类，不存在返回 nil
func (r *TopicRepository) GetByID(ctx context.Context, userID, id string) (*schema.Topic, error) {
	var t schema.Topic
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询分类失败: %w", err)
	}
	return &t, nil
}

// GetByName 按名称（忽略大小写）获取
func (r *TopicRepository) GetByName(ctx context.Context, userID, name string) (*schema.Topic, error) {
	var t schema.Topic
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND name_key = ?", userID, schema.TopicNameKey(name)).
		First(&t).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询分类失败: %w", err)
	}
	return &t, nil
}

// List 按名称升序列出
func (r *TopicRepository) List(ctx context.Context, userID string) ([]schema.Topic, error) {
	var out []schema.Topic
	if err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("name ASC").
		Find(&out).Error; err != nil {
		return nil, fmt.Errorf("查询分类失败: %w", err)
	}
	return out, nil
}
