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

type completionDoc struct {
	ID          string `bson:"_id"`
	UserID      string `bson:"userId"`
	QuestionID  string `bson:"questionId"`
	CompletedAt any    `bson:"completedAt"`
}

// CompletionStore 完成标记，_id = userId_questionId
type CompletionStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func (s *CompletionStore) Upsert(ctx context.Context, c *schema.Completion) error {
	if c.ID == "" {
		c.ID = schema.CompletionID(c.UserID, c.QuestionID)
	}
	_, err := s.coll.ReplaceOne(ctx,
		bson.D{{Key: "_id", Value: c.ID}},
		completionDoc{ID: c.ID, UserID: c.UserID, QuestionID: c.QuestionID, CompletedAt: c.CompletedAt},
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("写入完成标记失败: %w", err)
	}
	return nil
}

func (s *CompletionStore) Delete(ctx context.Context, userID, questionID string) error {
	if _, err := s.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: schema.CompletionID(userID, questionID)}}); err != nil {
		return fmt.Errorf("删除完成标记失败: %w", err)
	}
	return nil
}

func (s *CompletionStore) CompletedQuestionIDs(ctx context.Context, userID string) (map[string]struct{}, error) {
	cur, err := s.coll.Find(ctx, bson.D{{Key: "userId", Value: userID}},
		options.Find().SetProjection(bson.D{{Key: "questionId", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("查询完成标记失败: %w", err)
	}
	var docs []struct {
		QuestionID string `bson:"questionId"`
	}
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("解码完成标记失败: %w", err)
	}
	out := make(map[string]struct{}, len(docs))
	for _, d := range docs {
		out[d.QuestionID] = struct{}{}
	}
	return out, nil
}
