package service

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
	"github.com/yuqie6/dsatrack/internal/eventbus"
	"github.com/yuqie6/dsatrack/internal/repository"
	"github.com/yuqie6/dsatrack/internal/schema"
)

const (
	defaultSearchLimit  = 20
	defaultRelatedLimit = 5
)

// QuestionOptions 题目服务可选依赖
type QuestionOptions struct {
	Activity ActivityRecorder
	Events   EventPublisher
	Related  *RelatedIndex // nil 表示关闭相似题目
	Now      func() time.Time
}

// QuestionService 题目服务
type QuestionService struct {
	questions   QuestionRepository
	completions CompletionRepository
	activity    ActivityRecorder
	events      EventPublisher
	related     *RelatedIndex
	now         func() time.Time
}

// NewQuestionService 创建题目服务
func NewQuestionService(questions QuestionRepository, completions CompletionRepository, opts QuestionOptions) *QuestionService {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &QuestionService{
		questions:   questions,
		completions: completions,
		activity:    opts.Activity,
		events:      opts.Events,
		related:     opts.Related,
		now:         opts.Now,
	}
}

// Add 新增题目；写入成功后记录打卡，打卡失败只记日志
func (s *QuestionService) Add(ctx context.Context, userID string, in QuestionInput) (*schema.Question, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	in.normalize()
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	now := s.now()
	q := &schema.Question{
		ID:          uuid.NewString(),
		UserID:      userID,
		Title:       in.Title,
		Link:        in.Link,
		Description: in.Description,
		Difficulty:  in.Difficulty,
		Platform:    in.Platform,
		TopicName:   in.TopicName,
		Comments:    in.Comments,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.questions.Create(ctx, q); err != nil {
		return nil, storageErr("新增题目", err)
	}

	if s.related != nil {
		if err := s.related.Add(ctx, q); err != nil {
			slog.Warn("题目索引失败", "question_id", q.ID, "error", err)
		}
	}
	s.publish(eventbus.TypeQuestionAdded, userID, map[string]any{
		"id":         q.ID,
		"title":      q.Title,
		"difficulty": q.Difficulty,
	})
	s.recordActivity(ctx, userID)
	return q, nil
}

// List 列出题目（新的在前），合并完成状态
func (s *QuestionService) List(ctx context.Context, userID string, filter repository.QuestionFilter) ([]schema.Question, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	if !isFilterValue(filter.Difficulty, schema.IsDifficulty) || !isFilterValue(filter.Platform, schema.IsPlatform) {
		return nil, invalidArg("筛选条件无效: difficulty=%q platform=%q", filter.Difficulty, filter.Platform)
	}
	items, err := s.questions.List(ctx, userID, filter)
	if err != nil {
		return nil, storageErr("查询题目", err)
	}
	if err := s.mergeCompleted(ctx, userID, items); err != nil {
		return nil, err
	}
	return items, nil
}

// ListByTopic 某分类下的题目
func (s *QuestionService) ListByTopic(ctx context.Context, userID, topicName string) ([]schema.Question, error) {
	topicName = strings.TrimSpace(topicName)
	if topicName == "" {
		return nil, invalidArg("分类名不能为空")
	}
	return s.List(ctx, userID, repository.QuestionFilter{TopicName: topicName})
}

// ToggleCompletion 标记/取消完成，重复调用幂等
func (s *QuestionService) ToggleCompletion(ctx context.Context, userID, questionID string, completed bool) (*schema.Question, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	questionID = strings.TrimSpace(questionID)
	if questionID == "" {
		return nil, invalidArg("题目 ID 不能为空")
	}

	q, err := s.questions.GetByID(ctx, userID, questionID)
	if err != nil {
		return nil, storageErr("查询题目", err)
	}
	if q == nil {
		return nil, ErrNotFound
	}

	if completed {
		c := &schema.Completion{UserID: userID, QuestionID: questionID, CompletedAt: s.now()}
		if err := s.completions.Upsert(ctx, c); err != nil {
			return nil, storageErr("标记完成", err)
		}
	} else {
		if err := s.completions.Delete(ctx, userID, questionID); err != nil {
			return nil, storageErr("取消完成", err)
		}
	}
	q.Completed = completed

	s.publish(eventbus.TypeCompletionToggled, userID, map[string]any{
		"id":        q.ID,
		"completed": completed,
	})
	if completed {
		s.recordActivity(ctx, userID)
	}
	return q, nil
}

type questionTitles []schema.Question

func (t questionTitles) String(i int) string { return t[i].Title }
func (t questionTitles) Len() int            { return len(t) }

// Search 按标题模糊搜索，按匹配度排序
func (s *QuestionService) Search(ctx context.Context, userID, query string, limit int) ([]schema.Question, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, invalidArg("搜索词不能为空")
	}
	if limit <= 0 {
		limit = defaultSearchLimit
	}
	items, err := s.List(ctx, userID, repository.QuestionFilter{})
	if err != nil {
		return nil, err
	}

	matches := fuzzy.FindFrom(query, questionTitles(items))
	out := make([]schema.Question, 0, min(limit, len(matches)))
	for _, m := range matches {
		out = append(out, items[m.Index])
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// Related 相似题目；索引关闭时返回空列表
func (s *QuestionService) Related(ctx context.Context, userID, questionID string, limit int) ([]RelatedQuestion, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = defaultRelatedLimit
	}
	q, err := s.questions.GetByID(ctx, userID, strings.TrimSpace(questionID))
	if err != nil {
		return nil, storageErr("查询题目", err)
	}
	if q == nil {
		return nil, ErrNotFound
	}
	if s.related == nil {
		return []RelatedQuestion{}, nil
	}
	return s.related.Query(ctx, s.questions, q, limit)
}

func (s *QuestionService) mergeCompleted(ctx context.Context, userID string, items []schema.Question) error {
	if len(items) == 0 {
		return nil
	}
	done, err := s.completions.CompletedQuestionIDs(ctx, userID)
	if err != nil {
		return storageErr("查询完成标记", err)
	}
	for i := range items {
		_, items[i].Completed = done[items[i].ID]
	}
	return nil
}

func (s *QuestionService) recordActivity(ctx context.Context, userID string) {
	if s.activity == nil {
		return
	}
	if _, err := s.activity.RecordActivityNow(ctx, userID); err != nil {
		slog.Warn("更新连续打卡失败，已忽略", "user_id", userID, "error", err)
	}
}

func (s *QuestionService) publish(typ, userID string, data map[string]any) {
	if s.events == nil {
		return
	}
	s.events.Publish(eventbus.Event{Type: typ, UserID: userID, Data: data})
}

func isFilterValue(v string, valid func(string) bool) bool {
	return v == "" || v == schema.FilterAll || valid(v)
}
