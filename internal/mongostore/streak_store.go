package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yuqie6/dsatrack/internal/pkg/dayutil"
	"github.com/yuqie6/dsatrack/internal/schema"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// 每个用户一个文档，_id 为用户 ID
type streakDoc struct {
	UserID           string `bson:"_id"`
	CurrentStreak    int    `bson:"currentStreak"`
	MaxStreak        int    `bson:"maxStreak"`
	LastActivityDate any    `bson:"lastActivityDate"` // 正常为 YYYY-MM-DD 字符串，历史数据可能缺失或为其他类型
	UpdatedAt        any    `bson:"updatedAt,omitempty"`
}

// StreakStore 连续打卡文档
type StreakStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

// Get 不存在返回 nil
func (s *StreakStore) Get(ctx context.Context, userID string) (*schema.StreakRecord, error) {
	var d streakDoc
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: userID}}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询连续打卡失败: %w", err)
	}
	return &schema.StreakRecord{
		UserID:           d.UserID,
		CurrentStreak:    d.CurrentStreak,
		MaxStreak:        d.MaxStreak,
		LastActivityDate: dayutil.NormalizeActivityDay("lastActivityDate", d.LastActivityDate),
		UpdatedAt:        normalizeTime("updatedAt", d.UpdatedAt, s.now()),
	}, nil
}

// CompareAndSwap prev 为 nil 时仅插入新文档；否则按 lastActivityDate 条件更新
func (s *StreakStore) CompareAndSwap(ctx context.Context, prev, next *schema.StreakRecord) (bool, error) {
	now := s.now()
	if prev == nil {
		_, err := s.coll.InsertOne(ctx, streakDoc{
			UserID:           next.UserID,
			CurrentStreak:    next.CurrentStreak,
			MaxStreak:        next.MaxStreak,
			LastActivityDate: next.LastActivityDate,
			UpdatedAt:        now,
		})
		if err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return false, nil
			}
			return false, fmt.Errorf("写入连续打卡失败: %w", err)
		}
		return true, nil
	}

	res, err := s.coll.UpdateOne(ctx, casFilter(next.UserID, prev.LastActivityDate),
		bson.D{{Key: "$set", Value: bson.D{
			{Key: "currentStreak", Value: next.CurrentStreak},
			{Key: "maxStreak", Value: next.MaxStreak},
			{Key: "lastActivityDate", Value: next.LastActivityDate},
			{Key: "updatedAt", Value: now},
		}}},
	)
	if err != nil {
		return false, fmt.Errorf("更新连续打卡失败: %w", err)
	}
	return res.MatchedCount == 1, nil
}

// casFilter 按读到的 lastActivityDate 做条件更新。
// 读到 "" 或 MalformedDay 时库中值可能缺失、为 null 或非字符串，需一并匹配。
func casFilter(userID, prevDay string) bson.D {
	if prevDay != "" && prevDay != dayutil.MalformedDay {
		return bson.D{
			{Key: "_id", Value: userID},
			{Key: "lastActivityDate", Value: prevDay},
		}
	}
	return bson.D{
		{Key: "_id", Value: userID},
		{Key: "$or", Value: bson.A{
			bson.D{{Key: "lastActivityDate", Value: ""}},
			bson.D{{Key: "lastActivityDate", Value: bson.D{{Key: "$not", Value: bson.D{{Key: "$type", Value: "string"}}}}}},
		}},
	}
}
