package service

import (
	"context"

	"github.com/yuqie6/dsatrack/internal/eventbus"
	"github.com/yuqie6/dsatrack/internal/repository"
	"github.com/yuqie6/dsatrack/internal/schema"
)

// 仓储/外部依赖的最小接口集合（ISP）
// SQLite（repository）与 Mongo（mongostore）两套实现均满足这些接口。

type StreakRepository interface {
	Get(ctx context.Context, userID string) (*schema.StreakRecord, error)
	// CompareAndSwap prev 为 nil 表示仅在记录不存在时插入；
	// 否则仅当库中 LastActivityDate 仍等于 prev 时写入。返回是否写入成功。
	CompareAndSwap(ctx context.Context, prev, next *schema.StreakRecord) (bool, error)
}

type QuestionRepository interface {
	Create(ctx context.Context, q *schema.Question) error
	GetByID(ctx context.Context, userID, id string) (*schema.Question, error)
	List(ctx context.Context, userID string, filter repository.QuestionFilter) ([]schema.Question, error)
}

type CompletionRepository interface {
	Upsert(ctx context.Context, c *schema.Completion) error
	Delete(ctx context.Context, userID, questionID string) error
	CompletedQuestionIDs(ctx context.Context, userID string) (map[string]struct{}, error)
}

type TopicRepository interface {
	Create(ctx context.Context, t *schema.Topic) error
	GetByID(ctx context.Context, userID, id string) (*schema.Topic, error)
	GetByName(ctx context.Context, userID, name string) (*schema.Topic, error)
	List(ctx context.Context, userID string) ([]schema.Topic, error)
}

type ContestRepository interface {
	Create(ctx context.Context, c *schema.Contest) error
	List(ctx context.Context, userID string) ([]schema.Contest, error)
	CountFrom(ctx context.Context, userID, fromDate string) (int64, error)
}

type EventPublisher interface {
	Publish(evt eventbus.Event)
}

// ActivityRecorder 题目新增/完成后记录打卡
type ActivityRecorder interface {
	RecordActivityNow(ctx context.Context, userID string) (*schema.StreakRecord, error)
}

// StreakReader 只读访问连续打卡（统计面板使用）
type StreakReader interface {
	GetStreak(ctx context.Context, userID string) (*schema.StreakRecord, error)
}
