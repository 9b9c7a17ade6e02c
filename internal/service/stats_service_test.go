package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yuqie6/dsatrack/internal/repository"
	"github.com/yuqie6/dsatrack/internal/schema"
)

type fakeQuestionRepo struct {
	items []schema.Question
	err   error
}

func (r *fakeQuestionRepo) Create(ctx context.Context, q *schema.Question) error {
	r.items = append(r.items, *q)
	return nil
}
func (r *fakeQuestionRepo) GetByID(ctx context.Context, userID, id string) (*schema.Question, error) {
	return nil, nil
}
func (r *fakeQuestionRepo) List(ctx context.Context, userID string, filter repository.QuestionFilter) ([]schema.Question, error) {
	if r.err != nil {
		return nil, r.err
	}
	return append([]schema.Question(nil), r.items...), nil
}

type fakeContestRepo struct {
	n   int64
	err error
}

func (r fakeContestRepo) Create(ctx context.Context, c *schema.Contest) error { return nil }
func (r fakeContestRepo) List(ctx context.Context, userID string) ([]schema.Contest, error) {
	return nil, nil
}
func (r fakeContestRepo) CountFrom(ctx context.Context, userID, fromDate string) (int64, error) {
	return r.n, r.err
}

type fakeStreakReader struct {
	rec *schema.StreakRecord
}

func (r fakeStreakReader) GetStreak(ctx context.Context, userID string) (*schema.StreakRecord, error) {
	return r.rec, nil
}

func TestAggregates(t *testing.T) {
	repo := &fakeQuestionRepo{items: []schema.Question{
		{Difficulty: "Easy", Platform: "LeetCode", TopicName: "Arrays"},
		{Difficulty: "Medium", Platform: "LeetCode", TopicName: "DP"},
		{Difficulty: "Medium", Platform: "CSES", TopicName: "DP"},
		{Difficulty: "Hard", Platform: "Codeforces", TopicName: "Graphs"},
	}}
	svc := NewStatsService(repo, fakeContestRepo{}, fakeStreakReader{})

	agg, err := svc.Aggregates(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Aggregates: %v", err)
	}
	if agg.TotalSolved != 4 {
		t.Fatalf("total=%d", agg.TotalSolved)
	}
	if len(agg.ByDifficulty) != 3 || agg.ByDifficulty[1].Name != "Medium" || agg.ByDifficulty[1].Value != 2 {
		t.Fatalf("by difficulty=%+v", agg.ByDifficulty)
	}
	if len(agg.ByPlatform) != 5 || agg.ByPlatform[2].Name != "CodeChef" || agg.ByPlatform[2].Value != 0 {
		t.Fatalf("by platform=%+v", agg.ByPlatform)
	}
	if agg.ByTopic[0].Name != "DP" || agg.ByTopic[1].Name != "Arrays" || agg.ByTopic[2].Name != "Graphs" {
		t.Fatalf("by topic=%+v, want DP then name order", agg.ByTopic)
	}
	if agg.ByTopic[0].Fill != chartColors[0] || agg.ByTopic[1].Fill != chartColors[1] {
		t.Fatalf("topic colors=%+v", agg.ByTopic)
	}
}

func TestHeatmapWindowAndLevels(t *testing.T) {
	today := time.Date(2024, 6, 30, 20, 0, 0, 0, time.Local)
	var items []schema.Question
	for i := 0; i < 6; i++ {
		items = append(items, schema.Question{CreatedAt: today.Add(-time.Duration(i) * time.Minute)})
	}
	items = append(items,
		schema.Question{CreatedAt: time.Date(2024, 6, 1, 9, 0, 0, 0, time.Local)},
		schema.Question{CreatedAt: time.Date(2023, 7, 1, 0, 0, 0, 0, time.Local)},
		schema.Question{CreatedAt: time.Date(2023, 6, 30, 23, 0, 0, 0, time.Local)},
	)
	svc := NewStatsService(&fakeQuestionRepo{items: items}, fakeContestRepo{}, fakeStreakReader{})

	cells, err := svc.Heatmap(context.Background(), "u1", today)
	if err != nil {
		t.Fatalf("Heatmap: %v", err)
	}
	if len(cells) != 3 {
		t.Fatalf("cells=%+v, want 3 days in window", cells)
	}
	if cells[0].Date != "2023-07-01" || cells[2].Date != "2024-06-30" {
		t.Fatalf("cells=%+v, want ascending", cells)
	}
	if cells[2].Count != 6 || cells[2].Level != 4 || cells[1].Level != 1 {
		t.Fatalf("levels=%+v", cells)
	}
}

func TestDashboard(t *testing.T) {
	streak := &schema.StreakRecord{UserID: "u1", CurrentStreak: 3, MaxStreak: 5, LastActivityDate: "2024-06-03"}
	svc := NewStatsService(
		&fakeQuestionRepo{items: []schema.Question{{Difficulty: "Easy", Platform: "LeetCode", TopicName: "Arrays"}}},
		fakeContestRepo{n: 2},
		fakeStreakReader{rec: streak},
	)

	d, err := svc.Dashboard(context.Background(), "u1", time.Now())
	if err != nil {
		t.Fatalf("Dashboard: %v", err)
	}
	if d.TotalSolved != 1 || d.UpcomingContests != 2 || d.Streak.MaxStreak != 5 || d.LastActive != "Jun 3" {
		t.Fatalf("dashboard=%+v", d)
	}

	failing := NewStatsService(&fakeQuestionRepo{}, fakeContestRepo{err: errors.New("down")}, fakeStreakReader{rec: streak})
	if _, err := failing.Dashboard(context.Background(), "u1", time.Now()); !errors.Is(err, ErrStorage) {
		t.Fatalf("err=%v, want ErrStorage", err)
	}
}

func TestFormatLastActive(t *testing.T) {
	if got := FormatLastActive(schema.ZeroStreak("u1")); got != "" {
		t.Fatalf("never active=%q", got)
	}
	if got := FormatLastActive(&schema.StreakRecord{CurrentStreak: 1, MaxStreak: 1, LastActivityDate: "2024-12-25"}); got != "Dec 25" {
		t.Fatalf("got=%q", got)
	}
}
