package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/yuqie6/dsatrack/internal/schema"
	"github.com/yuqie6/dsatrack/internal/testutil"
)

func TestTopicRepositoryCreateDuplicate(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewTopicRepository(db)
	ctx := context.Background()

	if err := repo.Create(ctx, &schema.Topic{ID: "t1", UserID: "u1", Name: "Graphs"}); err != nil {
		t.Fatalf("Create error: %v", err)
	}
	err := repo.Create(ctx, &schema.Topic{ID: "t2", UserID: "u1", Name: " graphs "})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("err=%v, want ErrDuplicate", err)
	}
	// 其他用户可以同名
	if err := repo.Create(ctx, &schema.Topic{ID: "t3", UserID: "u2", Name: "Graphs"}); err != nil {
		t.Fatalf("other user Create error: %v", err)
	}

	got, err := repo.GetByName(ctx, "u1", "GRAPHS")
	if err != nil || got == nil || got.ID != "t1" {
		t.Fatalf("GetByName got=%v err=%v", got, err)
	}
}

func TestTopicRepositoryListOrdered(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewTopicRepository(db)
	ctx := context.Background()

	for i, name := range []string{"Trees", "Arrays", "DP"} {
		id := string(rune('a' + i))
		if err := repo.Create(ctx, &schema.Topic{ID: id, UserID: "u1", Name: name}); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}
	list, err := repo.List(ctx, "u1")
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(list) != 3 || list[0].Name != "Arrays" || list[2].Name != "Trees" {
		t.Fatalf("list=%v, want name asc", list)
	}

	got, _ := repo.GetByID(ctx, "u2", list[0].ID)
	if got != nil {
		t.Fatalf("foreign GetByID should be nil")
	}
}

func TestContestRepositoryCountFrom(t *testing.T) {
	db := testutil.OpenTestDB(t)
	repo := NewContestRepository(db)
	ctx := context.Background()

	for i, d := range []string{"2024-01-01", "2024-02-01", "2024-03-01"} {
		c := &schema.Contest{ID: string(rune('a' + i)), UserID: "u1", Title: "Round", Platform: "Codeforces", Date: d, StartTime: "10:00", EndTime: "12:00"}
		if err := repo.Create(ctx, c); err != nil {
			t.Fatalf("Create error: %v", err)
		}
	}

	n, err := repo.CountFrom(ctx, "u1", "2024-02-01")
	if err != nil || n != 2 {
		t.Fatalf("CountFrom n=%d err=%v, want 2", n, err)
	}
	list, _ := repo.List(ctx, "u1")
	if len(list) != 3 || list[0].Date != "2024-03-01" {
		t.Fatalf("list=%v, want date desc", list)
	}
}
