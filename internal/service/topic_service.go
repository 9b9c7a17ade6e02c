package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuqie6/dsatrack/internal/eventbus"
	"github.com/yuqie6/dsatrack/internal/repository"
	"github.com/yuqie6/dsatrack/internal/schema"
)

// TopicService 分类服务
type TopicService struct {
	topics    TopicRepository
	questions QuestionRepository
	events    EventPublisher
	now       func() time.Time
}

// NewTopicService 创建分类服务
func NewTopicService(topics TopicRepository, questions QuestionRepository, events EventPublisher) *TopicService {
	return &TopicService{topics: topics, questions: questions, events: events, now: time.Now}
}

// Add 新增分类，同名（忽略大小写）返回 ErrConflict
func (s *TopicService) Add(ctx context.Context, userID string, in TopicInput) (*schema.Topic, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	existing, err := s.topics.GetByName(ctx, userID, in.Name)
	if err != nil {
		return nil, storageErr("查询分类", err)
	}
	if existing != nil {
		return nil, ErrConflict
	}

	now := s.now()
	t := &schema.Topic{
		ID:        uuid.NewString(),
		UserID:    userID,
		Name:      in.Name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.topics.Create(ctx, t); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrConflict
		}
		return nil, storageErr("新增分类", err)
	}

	if s.events != nil {
		s.events.Publish(eventbus.Event{
			Type:   eventbus.TypeTopicAdded,
			UserID: userID,
			Data:   map[string]any{"id": t.ID, "name": t.Name},
		})
	}
	return t, nil
}

// List 按名称升序，附带题目数
func (s *TopicService) List(ctx context.Context, userID string) ([]schema.Topic, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	items, err := s.topics.List(ctx, userID)
	if err != nil {
		return nil, storageErr("查询分类", err)
	}
	counts, err := s.questionCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	for i := range items {
		items[i].QuestionCount = counts[schema.TopicNameKey(items[i].Name)]
	}
	return items, nil
}

// Get 获取单个分类，不存在或不属于该用户返回 ErrNotFound
func (s *TopicService) Get(ctx context.Context, userID, id string) (*schema.Topic, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	t, err := s.topics.GetByID(ctx, userID, strings.TrimSpace(id))
	if err != nil {
		return nil, storageErr("查询分类", err)
	}
	if t == nil {
		return nil, ErrNotFound
	}
	counts, err := s.questionCounts(ctx, userID)
	if err != nil {
		return nil, err
	}
	t.QuestionCount = counts[schema.TopicNameKey(t.Name)]
	return t, nil
}

func (s *TopicService) questionCounts(ctx context.Context, userID string) (map[string]int, error) {
	qs, err := s.questions.List(ctx, userID, repository.QuestionFilter{})
	if err != nil {
		return nil, storageErr("查询题目", err)
	}
	out := make(map[string]int)
	for _, q := range qs {
		out[schema.TopicNameKey(q.TopicName)]++
	}
	return out, nil
}
