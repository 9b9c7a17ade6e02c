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

type topicDoc struct {
	ID        string `bson:"_id"`
	UserID    string `bson:"userId"`
	Name      string `bson:"name"`
	NameKey   string `bson:"nameKey"`
	CreatedAt any    `bson:"createdAt"`
	UpdatedAt any    `bson:"updatedAt"`
}

func (d *topicDoc) toSchema(now time.Time) *schema.Topic {
	return &schema.Topic{
		ID:        d.ID,
		UserID:    d.UserID,
		Name:      d.Name,
		NameKey:   d.NameKey,
		CreatedAt: normalizeTime("createdAt", d.CreatedAt, now),
		UpdatedAt: normalizeTime("updatedAt", d.UpdatedAt, now),
	}
}

// TopicStore 分类文档，(userId, nameKey) 唯一
type TopicStore struct {
	coll *mongo.Collection
	now  func() time.Time
}

func (s *TopicStore) Create(ctx context.Context, t *schema.Topic) error {
	t.NameKey = schema.TopicNameKey(t.Name)
	_, err := s.coll.InsertOne(ctx, topicDoc{
		ID:        t.ID,
		UserID:    t.UserID,
		Name:      t.Name,
		NameKey:   t.NameKey,
		CreatedAt: t.CreatedAt,
		UpdatedAt: t.UpdatedAt,
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("写入分类失败: %w", err)
	}
	return nil
}

func (s *TopicStore) GetByID(ctx context.Context, userID, id string) (*schema.Topic, error) {
	return s.findOne(ctx, bson.D{{Key: "_id", Value: id}, {Key: "userId", Value: userID}})
}

func (s *TopicStore) GetByName(ctx context.Context, userID, name string) (*schema.Topic, error) {
	return s.findOne(ctx, bson.D{{Key: "userId", Value: userID}, {Key: "nameKey", Value: schema.TopicNameKey(name)}})
}

func (s *TopicStore) findOne(ctx context.Context, filter bson.D) (*schema.Topic, error) {
	var d topicDoc
	if err := s.coll.FindOne(ctx, filter).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("查询分类失败: %w", err)
	}
	return d.toSchema(s.now()), nil
}

// List 按名称升序
func (s *TopicStore) List(ctx context.Context, userID string) ([]schema.Topic, error) {
	cur, err := s.coll.Find(ctx, bson.D{{Key: "userId", Value: userID}},
		options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("查询分类失败: %w", err)
	}
	var docs []topicDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("解码分类失败: %w", err)
	}
	now := s.now()
	out := make([]schema.Topic, 0, len(docs))
	for i := range docs {
		out = append(out, *docs[i].toSchema(now))
	}
	return out, nil
}
