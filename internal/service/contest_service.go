package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/yuqie6/dsatrack/internal/eventbus"
	"github.com/yuqie6/dsatrack/internal/pkg/dayutil"
	"github.com/yuqie6/dsatrack/internal/schema"
)

// ContestService 比赛日程服务
type ContestService struct {
	contests ContestRepository
	events   EventPublisher
	now      func() time.Time
}

// NewContestService 创建比赛服务
func NewContestService(contests ContestRepository, events EventPublisher) *ContestService {
	return &ContestService{contests: contests, events: events, now: time.Now}
}

// Add 新增比赛
func (s *ContestService) Add(ctx context.Context, userID string, in ContestInput) (*schema.Contest, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	in.Title = strings.TrimSpace(in.Title)
	if err := validateInput(&in); err != nil {
		return nil, err
	}

	now := s.now()
	c := &schema.Contest{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     in.Title,
		Platform:  in.Platform,
		Date:      in.Date,
		StartTime: in.StartTime,
		EndTime:   in.EndTime,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.contests.Create(ctx, c); err != nil {
		return nil, storageErr("新增比赛", err)
	}

	if s.events != nil {
		s.events.Publish(eventbus.Event{
			Type:   eventbus.TypeContestAdded,
			UserID: userID,
			Data:   map[string]any{"id": c.ID, "title": c.Title, "date": c.Date, "window": FormatContestWindow(c)},
		})
	}
	return c, nil
}

// List 按日期倒序
func (s *ContestService) List(ctx context.Context, userID string) ([]schema.Contest, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return nil, err
	}
	items, err := s.contests.List(ctx, userID)
	if err != nil {
		return nil, storageErr("查询比赛", err)
	}
	return items, nil
}

// UpcomingCount 今天及以后的比赛数
func (s *ContestService) UpcomingCount(ctx context.Context, userID string, now time.Time) (int64, error) {
	userID, err := requireUser(userID)
	if err != nil {
		return 0, err
	}
	n, err := s.contests.CountFrom(ctx, userID, dayutil.FormatDay(now))
	if err != nil {
		return 0, storageErr("统计比赛", err)
	}
	return n, nil
}
