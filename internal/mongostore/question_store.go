package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yuqie6/dsatrack/internal/repository"
	"github.com/yuqie6/dsatrack/internal/schema"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type questionDoc struct {
	ID          string `bson:"_id"`
	UserID      string `bson:"userId"`
	Title       string `bson:"title"`
	Link        string `bson:"link,omitempty"`
	Description string `bson:"description,omitempty"`
	Difficulty  string `bson:"difficulty"`
	Platform    string `bson:"platform"`
	TopicName   string `bson:"topicName"`
	Comments    string `bson:"comments,omitempty"`
	CreatedAt   any    `bson:"createdAt"`
	UpdatedAt   any    `bson:"updatedAt"`
}

func (d *questionDoc) toSchema(now time.Time) schema.Question {
	return schema.Question{
		ID:          d.ID,
		UserID:      d.UserID,
		Title:       d.Title,
		Link:        d.Link,
		Description: d.Description,
		Difficulty:  d.Difficulty,
		Platform:    d.Platform,
		TopicName:   d.TopicName,
		Comments:    d.Comments,
		CreatedAt:   normalizeTime("createdAt", d.CreatedAt, now),
		UpdatedAt:   normalizeTime("updatedAt", d.UpdatedAt, now),
	}
}

// QuestionStore 题目文档
type QuestionStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func (s *QuestionStore) Create(ctx context.Context, q *schema.Question) error {
	_, err := s.coll.InsertOne(ctx, questionDoc{
		ID:          q.ID,
		UserID:      q.UserID,
		Title:       q.Title,
		Link:        q.Link,
		Description: q.Description,
		Difficulty:  q.Difficulty,
		Platform:    q.Platform,
		TopicName:   q.TopicName,
		Comments:    q.Comments,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	})
	if err != nil {
		return fmt.Errorf("写入题目失败: %w", err)
	}
	return nil
}

// GetByID 仅返回属于该用户的题目，否则 nil
func (s *QuestionStore) GetByID(ctx context.Context, userID, id string) (*schema.Question, error) {
	var d questionDoc
	err := s.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}, {Key: "userId", Value: userID}}).Decode(&d)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询题目失败: %w", err)
	}
	q := d.toSchema(s.now())
	return &q, nil
}

// List 按创建时间倒序
func (s *QuestionStore) List(ctx context.Context, userID string, filter repository.QuestionFilter) ([]schema.Question, error) {
	f := bson.D{{Key: "userId", Value: userID}}
	if filter.Difficulty != "" && filter.Difficulty != schema.FilterAll {
		f = append(f, bson.E{Key: "difficulty", Value: filter.Difficulty})
	}
	if filter.Platform != "" && filter.Platform != schema.FilterAll {
		f = append(f, bson.E{Key: "platform", Value: filter.Platform})
	}
	if filter.TopicName != "" {
		f = append(f, bson.E{Key: "topicName", Value: filter.TopicName})
	}
	if filter.Date != "" {
		start, end, err := repository.DayRange(filter.Date)
		if err != nil {
			return nil, err
		}
		f = append(f, bson.E{Key: "createdAt", Value: bson.D{{Key: "$gte", Value: start}, {Key: "$lt", Value: end}}})
	}

	cur, err := s.coll.Find(ctx, f, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, fmt.Errorf("查询题目失败: %w", err)
	}
	var docs []questionDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("解码题目失败: %w", err)
	}

	now := s.now()
	out := make([]schema.Question, 0, len(docs))
	for i := range docs {
		out = append(out, docs[i].toSchema(now))
	}
	return out, nil
}
