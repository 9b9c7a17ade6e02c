package service

import (
	"context"
	"sort"
	"time"

	"github.com/yuqie6/dsatrack/internal/pkg/dayutil"
	"github.com/yuqie6/dsatrack/internal/repository"
	"github.com/yuqie6/dsatrack/internal/schema"
	"golang.org/x/sync/errgroup"
)

// 图表配色
var (
	chartColors = []string{
		"hsl(var(--chart-1))",
		"hsl(var(--chart-2))",
		"hsl(var(--chart-3))",
		"hsl(var(--chart-4))",
		"hsl(var(--chart-5))",
	}
	difficultyColors = map[string]string{
		schema.DifficultyEasy:   "hsl(var(--chart-2))",
		schema.DifficultyMedium: "hsl(var(--chart-4))",
		schema.DifficultyHard:   "hsl(var(--chart-1))",
	}
)

const heatmapMaxLevel = 4

// ChartItem 图表数据项
type ChartItem struct {
	Name  string `json:"name"`
	Value int    `json:"value"`
	Fill  string `json:"fill"`
}

// Aggregates 题目聚合统计
type Aggregates struct {
	TotalSolved  int         `json:"total_solved"`
	ByDifficulty []ChartItem `json:"by_difficulty"`
	ByPlatform   []ChartItem `json:"by_platform"`
	ByTopic      []ChartItem `json:"by_topic"`
}

// HeatmapCell 热力图单日
type HeatmapCell struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
	Level int    `json:"level"`
}

// Dashboard 首页面板
type Dashboard struct {
	Aggregates
	UpcomingContests int64                `json:"upcoming_contests"`
	Streak           *schema.StreakRecord `json:"streak"`
	LastActive       string               `json:"last_active"`
}

// StatsService 统计服务
type StatsService struct {
	questions QuestionRepository
	contests  ContestRepository
	streaks   StreakReader
}

// NewStatsService 创建统计服务
func NewStatsService(questions QuestionRepository, contests ContestRepository, streaks StreakReader) *StatsService {
	return &StatsService{questions: questions, contests: contests, streaks: streaks}
}

// Aggregates 按难度/平台/分类统计
func (s *StatsService) Aggregates(ctx context.Context, userID string) (*Aggregates, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	qs, err := s.questions.List(ctx, userID, repository.QuestionFilter{})
	if err != nil {
		return nil, storageErr("查询题目", err)
	}
	return buildAggregates(qs), nil
}

func buildAggregates(qs []schema.Question) *Aggregates {
	byDifficulty := make(map[string]int)
	byPlatform := make(map[string]int)
	byTopic := make(map[string]int)
	for _, q := range qs {
		byDifficulty[q.Difficulty]++
		byPlatform[q.Platform]++
		if q.TopicName != "" {
			byTopic[q.TopicName]++
		}
	}

	out := &Aggregates{TotalSolved: len(qs)}
	for _, d := range schema.Difficulties {
		out.ByDifficulty = append(out.ByDifficulty, ChartItem{Name: d, Value: byDifficulty[d], Fill: difficultyColors[d]})
	}
	for i, p := range schema.Platforms {
		out.ByPlatform = append(out.ByPlatform, ChartItem{Name: p, Value: byPlatform[p], Fill: chartColors[i%len(chartColors)]})
	}

	topics := make([]ChartItem, 0, len(byTopic))
	for name, n := range byTopic {
		topics = append(topics, ChartItem{Name: name, Value: n})
	}
	sort.Slice(topics, func(i, j int) bool {
		if topics[i].Value != topics[j].Value {
			return topics[i].Value > topics[j].Value
		}
		return topics[i].Name < topics[j].Name
	})
	for i := range topics {
		topics[i].Fill = chartColors[i%len(chartColors)]
	}
	out.ByTopic = topics
	return out
}

// Heatmap 截至 today 一年内每日新增题目数，只返回有记录的日期（升序）
func (s *StatsService) Heatmap(ctx context.Context, userID string, today time.Time) ([]HeatmapCell, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	qs, err := s.questions.List(ctx, userID, repository.QuestionFilter{})
	if err != nil {
		return nil, storageErr("查询题目", err)
	}
	return buildHeatmap(qs, today), nil
}

func buildHeatmap(qs []schema.Question, today time.Time) []HeatmapCell {
	end := dayutil.StartOfDay(today).AddDate(0, 0, 1)
	start := end.AddDate(-1, 0, 0)

	counts := make(map[string]int)
	for _, q := range qs {
		if q.CreatedAt.Before(start) || !q.CreatedAt.Before(end) {
			continue
		}
		counts[dayutil.FormatDay(q.CreatedAt)]++
	}

	out := make([]HeatmapCell, 0, len(counts))
	for d, n := range counts {
		out = append(out, HeatmapCell{Date: d, Count: n, Level: min(n, heatmapMaxLevel)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out
}

// Dashboard 并发拉取统计、比赛数与连续打卡
func (s *StatsService) Dashboard(ctx context.Context, userID string, now time.Time) (*Dashboard, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}

	var (
		agg      *Aggregates
		upcoming int64
		streak   *schema.StreakRecord
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		agg, err = s.Aggregates(gctx, userID)
		return err
	})
	g.Go(func() error {
		n, err := s.contests.CountFrom(gctx, userID, dayutil.FormatDay(now))
		if err != nil {
			return storageErr("统计比赛", err)
		}
		upcoming = n
		return nil
	})
	g.Go(func() error {
		var err error
		streak, err = s.streaks.GetStreak(gctx, userID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &Dashboard{
		Aggregates:       *agg,
		UpcomingContests: upcoming,
		Streak:           streak,
		LastActive:       FormatLastActive(streak),
	}, nil
}
