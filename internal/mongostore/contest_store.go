package mongostore

import (
	"context"
	"fmt"
	"time"

	"github.com/yuqie6/dsatrack/internal/schema"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type contestDoc struct {
	ID        string `bson:"_id"`
	UserID    string `bson:"userId"`
	Title     string `bson:"title"`
	Platform  string `bson:"platform"`
	Date      any    `bson:"date"`
	StartTime string `bson:"startTime"`
	EndTime   string `bson:"endTime"`
	CreatedAt any    `bson:"createdAt"`
	UpdatedAt any    `bson:"updatedAt"`
}

// ContestStore 比赛文档，date 以 YYYY-MM-DD 字符串存储
type ContestStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func (s *ContestStore) Create(ctx context.Context, c *schema.Contest) error {
	_, err := s.coll.InsertOne(ctx, contestDoc{
		ID:        c.ID,
		UserID:    c.UserID,
		Title:     c.Title,
		Platform:  c.Platform,
		Date:      c.Date,
		StartTime: c.StartTime,
		EndTime:   c.EndTime,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("写入比赛失败: %w", err)
	}
	return nil
}

// List 按日期、开始时间倒序
func (s *ContestStore) List(ctx context.Context, userID string) ([]schema.Contest, error) {
	cur, err := s.coll.Find(ctx, bson.D{{Key: "userId", Value: userID}},
		options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "startTime", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("查询比赛失败: %w", err)
	}
	var docs []contestDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("解码比赛失败: %w", err)
	}

	now := s.now()
	out := make([]schema.Contest, 0, len(docs))
	for _, d := range docs {
		out = append(out, schema.Contest{
			ID:        d.ID,
			UserID:    d.UserID,
			Title:     d.Title,
			Platform:  d.Platform,
			Date:      normalizeDay("date", d.Date, now),
			StartTime: d.StartTime,
			EndTime:   d.EndTime,
			CreatedAt: normalizeTime("createdAt", d.CreatedAt, now),
			UpdatedAt: normalizeTime("updatedAt", d.UpdatedAt, now),
		})
	}
	return out, nil
}

// CountFrom date >= fromDate 的比赛数
func (s *ContestStore) CountFrom(ctx context.Context, userID, fromDate string) (int64, error) {
	n, err := s.coll.CountDocuments(ctx, bson.D{
		{Key: "userId", Value: userID},
		{Key: "date", Value: bson.D{{Key: "$gte", Value: fromDate}}},
	})
	if err != nil {
		return 0, fmt.Errorf("统计比赛失败: %w", err)
	}
	return n, nil
}
