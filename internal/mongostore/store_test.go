package mongostore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yuqie6/dsatrack/internal/repository"
	"github.com/yuqie6/dsatrack/internal/schema"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func newMockTest(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestStreakStore(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("get missing", func(mt *mtest.T) {
		store := New(mt.DB).Streaks()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "dsatrack.streaks", mtest.FirstBatch))

		got, err := store.Get(context.Background(), "u1")
		if err != nil || got != nil {
			mt.Fatalf("got=%v err=%v, want nil,nil", got, err)
		}
	})

	mt.Run("get decodes", func(mt *mtest.T) {
		store := New(mt.DB).Streaks()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "dsatrack.streaks", mtest.FirstBatch, bson.D{
			{Key: "_id", Value: "u1"},
			{Key: "currentStreak", Value: int32(3)},
			{Key: "maxStreak", Value: int64(7)},
			{Key: "lastActivityDate", Value: "2024-01-02"},
			{Key: "updatedAt", Value: primitive.NewDateTimeFromTime(time.Date(2024, 1, 2, 8, 0, 0, 0, time.UTC))},
		}))

		got, err := store.Get(context.Background(), "u1")
		if err != nil {
			mt.Fatalf("Get: %v", err)
		}
		if got.CurrentStreak != 3 || got.MaxStreak != 7 || got.LastActivityDate != "2024-01-02" {
			mt.Fatalf("got=%+v", got)
		}
		if got.UpdatedAt.UTC().Hour() != 8 {
			mt.Fatalf("updatedAt=%v", got.UpdatedAt)
		}
	})

	mt.Run("insert first record", func(mt *mtest.T) {
		store := New(mt.DB).Streaks()
		mt.AddMockResponses(mtest.CreateSuccessResponse())

		ok, err := store.CompareAndSwap(context.Background(), nil, &schema.StreakRecord{UserID: "u1", CurrentStreak: 1, MaxStreak: 1, LastActivityDate: "2024-01-01"})
		if err != nil || !ok {
			mt.Fatalf("ok=%v err=%v", ok, err)
		}
	})

	mt.Run("insert duplicate is conflict", func(mt *mtest.T) {
		store := New(mt.DB).Streaks()
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		ok, err := store.CompareAndSwap(context.Background(), nil, &schema.StreakRecord{UserID: "u1", CurrentStreak: 1, MaxStreak: 1, LastActivityDate: "2024-01-01"})
		if err != nil || ok {
			mt.Fatalf("ok=%v err=%v, want false,nil", ok, err)
		}
	})

	mt.Run("conditional update", func(mt *mtest.T) {
		store := New(mt.DB).Streaks()
		prev := &schema.StreakRecord{UserID: "u1", CurrentStreak: 1, MaxStreak: 1, LastActivityDate: "2024-01-01"}
		next := &schema.StreakRecord{UserID: "u1", CurrentStreak: 2, MaxStreak: 2, LastActivityDate: "2024-01-02"}

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))
		ok, err := store.CompareAndSwap(context.Background(), prev, next)
		if err != nil || !ok {
			mt.Fatalf("ok=%v err=%v", ok, err)
		}

		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}))
		ok, err = store.CompareAndSwap(context.Background(), prev, next)
		if err != nil || ok {
			mt.Fatalf("stale ok=%v err=%v, want false", ok, err)
		}
	})

	mt.Run("command error", func(mt *mtest.T) {
		store := New(mt.DB).Streaks()
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 13, Name: "Unauthorized", Message: "not authorized"}))

		if _, err := store.Get(context.Background(), "u1"); err == nil {
			mt.Fatalf("expected error")
		}
	})
}

func TestQuestionStoreListNormalizesTimestamps(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("list", func(mt *mtest.T) {
		store := New(mt.DB).Questions()
		created := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "dsatrack.questions", mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "q1"},
				{Key: "userId", Value: "u1"},
				{Key: "title", Value: "Two Sum"},
				{Key: "difficulty", Value: "Easy"},
				{Key: "platform", Value: "LeetCode"},
				{Key: "topicName", Value: "Arrays"},
				{Key: "createdAt", Value: primitive.NewDateTimeFromTime(created)},
			},
			bson.D{
				{Key: "_id", Value: "q2"},
				{Key: "userId", Value: "u1"},
				{Key: "title", Value: "Coin Change"},
				{Key: "difficulty", Value: "Medium"},
				{Key: "platform", Value: "LeetCode"},
				{Key: "topicName", Value: "DP"},
				{Key: "createdAt", Value: created.UnixMilli()},
			},
		))

		items, err := store.List(context.Background(), "u1", repository.QuestionFilter{Difficulty: schema.FilterAll})
		if err != nil {
			mt.Fatalf("List: %v", err)
		}
		if len(items) != 2 {
			mt.Fatalf("items=%d", len(items))
		}
		for _, q := range items {
			if !q.CreatedAt.Equal(created) {
				mt.Fatalf("%s createdAt=%v, want %v", q.ID, q.CreatedAt, created)
			}
		}
	})

	mt.Run("get foreign", func(mt *mtest.T) {
		store := New(mt.DB).Questions()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "dsatrack.questions", mtest.FirstBatch))
		got, err := store.GetByID(context.Background(), "u2", "q1")
		if err != nil || got != nil {
			mt.Fatalf("got=%v err=%v", got, err)
		}
	})
}

func TestTopicStoreDuplicate(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("duplicate", func(mt *mtest.T) {
		store := New(mt.DB).Topics()
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{Index: 0, Code: 11000, Message: "duplicate key"}))

		err := store.Create(context.Background(), &schema.Topic{ID: "t1", UserID: "u1", Name: "DP"})
		if !errors.Is(err, repository.ErrDuplicate) {
			mt.Fatalf("err=%v, want ErrDuplicate", err)
		}
	})
}

func TestContestStore(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("count from", func(mt *mtest.T) {
		store := New(mt.DB).Contests()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "dsatrack.contests", mtest.FirstBatch, bson.D{{Key: "n", Value: int32(2)}}))

		n, err := store.CountFrom(context.Background(), "u1", "2024-06-01")
		if err != nil || n != 2 {
			mt.Fatalf("n=%d err=%v", n, err)
		}
	})

	mt.Run("list normalizes legacy date", func(mt *mtest.T) {
		store := New(mt.DB).Contests()
		legacy := time.Date(2024, 6, 15, 12, 0, 0, 0, time.Local)
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "dsatrack.contests", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "c1"}, {Key: "userId", Value: "u1"}, {Key: "title", Value: "Round"}, {Key: "date", Value: "2024-07-01"}},
			bson.D{{Key: "_id", Value: "c2"}, {Key: "userId", Value: "u1"}, {Key: "title", Value: "Legacy"}, {Key: "date", Value: primitive.NewDateTimeFromTime(legacy)}},
		))

		items, err := store.List(context.Background(), "u1")
		if err != nil {
			mt.Fatalf("List: %v", err)
		}
		if items[0].Date != "2024-07-01" || items[1].Date != "2024-06-15" {
			mt.Fatalf("dates=%q,%q", items[0].Date, items[1].Date)
		}
	})
}

func TestCompletionStore(t *testing.T) {
	mt := newMockTest(t)

	mt.Run("upsert and list", func(mt *mtest.T) {
		store := New(mt.DB).Completions()
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 0}))
		c := &schema.Completion{UserID: "u1", QuestionID: "q1", CompletedAt: time.Now()}
		if err := store.Upsert(context.Background(), c); err != nil {
			mt.Fatalf("Upsert: %v", err)
		}
		if c.ID != "u1_q1" {
			mt.Fatalf("id=%q", c.ID)
		}

		mt.AddMockResponses(mtest.CreateCursorResponse(0, "dsatrack.userQuestionCompletions", mtest.FirstBatch,
			bson.D{{Key: "_id", Value: "u1_q1"}, {Key: "questionId", Value: "q1"}},
		))
		ids, err := store.CompletedQuestionIDs(context.Background(), "u1")
		if err != nil {
			mt.Fatalf("CompletedQuestionIDs: %v", err)
		}
		if _, ok := ids["q1"]; !ok || len(ids) != 1 {
			mt.Fatalf("ids=%v", ids)
		}
	})
}
