package service

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"strings"
	"sync"

	chromem "github.com/philippgille/chromem-go"
	"github.com/yuqie6/dsatrack/internal/repository"
	"github.com/yuqie6/dsatrack/internal/schema"
)

const relatedEmbeddingDim = 256

// RelatedIndex 相似题目索引，每个用户一个内存 collection。
// 向量由标题/分类/平台的词袋哈希得到，无需外部 embedding 服务。
type RelatedIndex struct {
	db     *chromem.DB
	mu     sync.Mutex
	loaded map[string]bool
}

// RelatedQuestion 相似题目
type RelatedQuestion struct {
	ID         string  `json:"id"`
	Title      string  `json:"title"`
	TopicName  string  `json:"topic_name"`
	Similarity float32 `json:"similarity"`
}

// NewRelatedIndex 创建内存索引
func NewRelatedIndex() *RelatedIndex {
	return &RelatedIndex{db: chromem.NewDB(), loaded: make(map[string]bool)}
}

func (x *RelatedIndex) collection(userID string) (*chromem.Collection, error) {
	c, err := x.db.GetOrCreateCollection("questions_"+userID, nil, hashEmbedding)
	if err != nil {
		return nil, fmt.Errorf("创建 collection 失败: %w", err)
	}
	return c, nil
}

// ensureLoaded 首次访问某用户时从存储全量建索引
func (x *RelatedIndex) ensureLoaded(ctx context.Context, userID string, repo QuestionRepository) (*chromem.Collection, error) {
	x.mu.Lock()
	defer x.mu.Unlock()

	c, err := x.collection(userID)
	if err != nil {
		return nil, err
	}
	if x.loaded[userID] {
		return c, nil
	}
	items, err := repo.List(ctx, userID, repository.QuestionFilter{})
	if err != nil {
		return nil, storageErr("加载题目索引", err)
	}
	if len(items) > 0 {
		docs := make([]chromem.Document, 0, len(items))
		for i := range items {
			docs = append(docs, questionDocument(&items[i]))
		}
		if err := c.AddDocuments(ctx, docs, 1); err != nil {
			return nil, fmt.Errorf("写入题目索引失败: %w", err)
		}
	}
	x.loaded[userID] = true
	return c, nil
}

// Add 增量索引；用户尚未加载时跳过，等首次查询统一加载
func (x *RelatedIndex) Add(ctx context.Context, q *schema.Question) error {
	x.mu.Lock()
	defer x.mu.Unlock()
	if !x.loaded[q.UserID] {
		return nil
	}
	c, err := x.collection(q.UserID)
	if err != nil {
		return err
	}
	if err := c.AddDocument(ctx, questionDocument(q)); err != nil {
		return fmt.Errorf("写入题目索引失败: %w", err)
	}
	return nil
}

// Query 查找与 q 最接近的题目，不包含 q 本身
func (x *RelatedIndex) Query(ctx context.Context, repo QuestionRepository, q *schema.Question, limit int) ([]RelatedQuestion, error) {
	c, err := x.ensureLoaded(ctx, q.UserID, repo)
	if err != nil {
		return nil, err
	}
	// nResults 不能超过 collection 大小
	n := limit + 1
	if count := c.Count(); n > count {
		n = count
	}
	if n == 0 {
		return []RelatedQuestion{}, nil
	}
	results, err := c.Query(ctx, questionContent(q), n, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("查询相似题目失败: %w", err)
	}
	out := make([]RelatedQuestion, 0, len(results))
	for _, r := range results {
		if r.ID == q.ID {
			continue
		}
		out = append(out, RelatedQuestion{
			ID:         r.ID,
			Title:      r.Metadata["title"],
			TopicName:  r.Metadata["topic"],
			Similarity: r.Similarity,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func questionDocument(q *schema.Question) chromem.Document {
	return chromem.Document{
		ID:      q.ID,
		Content: questionContent(q),
		Metadata: map[string]string{
			"title":      q.Title,
			"topic":      q.TopicName,
			"difficulty": q.Difficulty,
		},
	}
}

func questionContent(q *schema.Question) string {
	return strings.Join([]string{q.Title, q.TopicName, q.TopicName, q.Platform, truncateRunes(q.Description, 200)}, " ")
}

// hashEmbedding 词袋特征哈希，输出单位向量
func hashEmbedding(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, relatedEmbeddingDim)
	for _, tok := range tokenize(text) {
		h := fnv.New32a()
		_, _ = h.Write([]byte(tok))
		sum := h.Sum32()
		sign := float32(1)
		if sum&(1<<31) != 0 {
			sign = -1
		}
		vec[sum%relatedEmbeddingDim] += sign
	}

	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm == 0 {
		vec[0] = 1
		return vec, nil
	}
	inv := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= inv
	}
	return vec, nil
}
