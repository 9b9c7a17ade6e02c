package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yuqie6/dsatrack/internal/repository"
	"github.com/yuqie6/dsatrack/internal/schema"
	"github.com/yuqie6/dsatrack/internal/testutil"
)

func TestTopicAddListGet(t *testing.T) {
	db := testutil.OpenTestDB(t)
	questions := repository.NewQuestionRepository(db)
	pub := &recordingPublisher{}
	topics := NewTopicService(repository.NewTopicRepository(db), questions, pub)
	qsvc := NewQuestionService(questions, repository.NewCompletionRepository(db), QuestionOptions{})
	ctx := context.Background()

	dp, err := topics.Add(ctx, "u1", TopicInput{Name: " DP "})
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if dp.Name != "DP" {
		t.Fatalf("name=%q, want trimmed", dp.Name)
	}
	if _, err := topics.Add(ctx, "u1", TopicInput{Name: "dp"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("duplicate err=%v, want ErrConflict", err)
	}
	if _, err := topics.Add(ctx, "u1", TopicInput{Name: ""}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("empty name err=%v", err)
	}
	_, _ = topics.Add(ctx, "u1", TopicInput{Name: "Arrays"})

	_, _ = qsvc.Add(ctx, "u1", questionInput("Coin Change", "Medium", "LeetCode", "DP"))
	_, _ = qsvc.Add(ctx, "u1", questionInput("House Robber", "Medium", "LeetCode", "dp"))

	list, err := topics.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 2 || list[0].Name != "Arrays" || list[1].QuestionCount != 2 {
		t.Fatalf("list=%+v", list)
	}

	got, err := topics.Get(ctx, "u1", dp.ID)
	if err != nil || got.QuestionCount != 2 {
		t.Fatalf("Get got=%+v err=%v", got, err)
	}
	if _, err := topics.Get(ctx, "u2", dp.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("foreign Get err=%v", err)
	}
	if len(pub.events) != 2 {
		t.Fatalf("events=%d, want 2", len(pub.events))
	}
}

func TestContestAddListUpcoming(t *testing.T) {
	db := testutil.OpenTestDB(t)
	svc := NewContestService(repository.NewContestRepository(db), nil)
	ctx := context.Background()

	for _, d := range []string{"2024-05-01", "2024-06-10", "2024-06-20"} {
		in := ContestInput{Title: "Weekly Contest", Platform: "LeetCode", Date: d, StartTime: "08:00", EndTime: "09:30"}
		if _, err := svc.Add(ctx, "u1", in); err != nil {
			t.Fatalf("Add %s: %v", d, err)
		}
	}
	if _, err := svc.Add(ctx, "u1", ContestInput{Title: "x", Platform: "LeetCode", Date: "2024-06-10", StartTime: "08:00", EndTime: "09:00"}); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("short title err=%v", err)
	}

	list, err := svc.List(ctx, "u1")
	if err != nil || len(list) != 3 || list[0].Date != "2024-06-20" {
		t.Fatalf("list=%v err=%v", list, err)
	}

	now := time.Date(2024, 6, 10, 23, 0, 0, 0, time.Local)
	n, err := svc.UpcomingCount(ctx, "u1", now)
	if err != nil || n != 2 {
		t.Fatalf("upcoming=%d err=%v, want 2 (today counts)", n, err)
	}
	if FormatContestWindow(&list[0]) != "08:00-09:30" {
		t.Fatalf("window=%q", FormatContestWindow(&list[0]))
	}
}

type fakeTopicRepo struct {
	byName    map[string]*schema.Topic
	createErr error
	creates   int
}

func (r *fakeTopicRepo) Create(ctx context.Context, t *schema.Topic) error {
	r.creates++
	return r.createErr
}

func (r *fakeTopicRepo) GetByID(ctx context.Context, userID, id string) (*schema.Topic, error) {
	return nil, nil
}

func (r *fakeTopicRepo) GetByName(ctx context.Context, userID, name string) (*schema.Topic, error) {
	return r.byName[schema.TopicNameKey(name)], nil
}

func (r *fakeTopicRepo) List(ctx context.Context, userID string) ([]schema.Topic, error) {
	return nil, nil
}

func TestTopicAddChecksNameBeforeCreate(t *testing.T) {
	repo := &fakeTopicRepo{byName: map[string]*schema.Topic{
		"graphs": {ID: "t1", UserID: "u1", Name: "Graphs"},
	}}
	pub := &recordingPublisher{}
	topics := NewTopicService(repo, nil, pub)

	if _, err := topics.Add(context.Background(), "u1", TopicInput{Name: "GRAPHS"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("err=%v, want ErrConflict", err)
	}
	if repo.creates != 0 {
		t.Fatalf("creates=%d, want 0 when name already exists", repo.creates)
	}
	if len(pub.events) != 0 {
		t.Fatalf("events=%d, want none on conflict", len(pub.events))
	}
}

func TestTopicAddDuplicateRaceMapsToConflict(t *testing.T) {
	repo := &fakeTopicRepo{createErr: repository.ErrDuplicate}
	topics := NewTopicService(repo, nil, nil)

	if _, err := topics.Add(context.Background(), "u1", TopicInput{Name: "Trees"}); !errors.Is(err, ErrConflict) {
		t.Fatalf("err=%v, want ErrConflict", err)
	}
	if repo.creates != 1 {
		t.Fatalf("creates=%d, want 1", repo.creates)
	}
}
