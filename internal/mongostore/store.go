// Package mongostore 托管文档库后端，实现与 SQLite 仓储相同的接口。
package mongostore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collStreaks     = "streaks"
	collQuestions   = "questions"
	collTopics      = "topics"
	collContests    = "contests"
	collCompletions = "userQuestionCompletions"
)

// Options 连接参数
type Options struct {
	URI      string
	Database string
	Timeout  time.Duration
}

// Store 持有 Mongo 连接与各集合
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	now    func() time.Time
}

// Connect 建立连接、探活并确保索引
func Connect(ctx context.Context, opts Options) (*Store, error) {
	if opts.URI == "" {
		return nil, fmt.Errorf("mongo uri 为空")
	}
	if opts.Database == "" {
		opts.Database = "dsatrack"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 10 * time.Second
	}

	cctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	client, err := mongo.Connect(cctx, options.Client().
		ApplyURI(opts.URI).
		SetServerSelectionTimeout(opts.Timeout))
	if err != nil {
		return nil, fmt.Errorf("连接 mongo 失败: %w", err)
	}
	if err := client.Ping(cctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo 探活失败: %w", err)
	}

	s := New(client.Database(opts.Database))
	s.client = client
	if err := s.EnsureIndexes(cctx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, err
	}
	slog.Info("mongo 已连接", "database", opts.Database)
	return s, nil
}

// New 基于已有 Database 构造（测试使用 mock 部署）
func New(db *mongo.Database) *Store {
	return &Store{db: db, now: time.Now}
}

// EnsureIndexes 创建查询与唯一约束所需索引
func (s *Store) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		collQuestions: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "createdAt", Value: -1}}},
		},
		collTopics: {
			{
				Keys:    bson.D{{Key: "userId", Value: 1}, {Key: "nameKey", Value: 1}},
				Options: options.Index().SetUnique(true),
			},
		},
		collContests: {
			{Keys: bson.D{{Key: "userId", Value: 1}, {Key: "date", Value: -1}}},
		},
		collCompletions: {
			{Keys: bson.D{{Key: "userId", Value: 1}}},
		},
	}
	for coll, models := range indexes {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("创建 %s 索引失败: %w", coll, err)
		}
	}
	return nil
}

// Close 断开连接
func (s *Store) Close(ctx context.Context) error {
	if s == nil || s.client == nil {
		return nil
	}
	return s.client.Disconnect(ctx)
}

func (s *Store) Streaks() *StreakStore {
	return &StreakStore{coll: s.db.Collection(collStreaks), now: s.now}
}

func (s *Store) Questions() *QuestionStore {
	return &QuestionStore{coll: s.db.Collection(collQuestions), now: s.now}
}

func (s *Store) Topics() *TopicStore {
	return &TopicStore{coll: s.db.Collection(collTopics), now: s.now}
}

func (s *Store) Contests() *ContestStore {
	return &ContestStore{coll: s.db.Collection(collContests), now: s.now}
}

func (s *Store) Completions() *CompletionStore {
	return &CompletionStore{coll: s.db.Collection(collCompletions), now: s.now}
}
