package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/yuqie6/dsatrack/internal/eventbus"
	"github.com/yuqie6/dsatrack/internal/observability"
	"github.com/yuqie6/dsatrack/internal/pkg/dayutil"
	"github.com/yuqie6/dsatrack/internal/schema"
)

const (
	defaultStreakCacheSize  = 1024
	defaultStreakMaxRetries = 3
)

const (
	outcomeIncremented = "incremented"
	outcomeReset       = "reset"
	outcomeUnchanged   = "unchanged"
)

// StreakOptions 连续打卡服务配置
type StreakOptions struct {
	CacheSize  int
	MaxRetries int
	Now        func() time.Time
	Events     EventPublisher
}

// StreakService 连续打卡服务
type StreakService struct {
	repo       StreakRepository
	cache      *lru.Cache
	locks      *userLocks
	maxRetries int
	now        func() time.Time
	events     EventPublisher
}

// NewStreakService 创建连续打卡服务
func NewStreakService(repo StreakRepository, opts StreakOptions) (*StreakService, error) {
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultStreakCacheSize
	}
	if opts.MaxRetries <= 0 {
		opts.MaxRetries = defaultStreakMaxRetries
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	cache, err := lru.New(opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("创建连续打卡缓存失败: %w", err)
	}
	return &StreakService{
		repo:       repo,
		cache:      cache,
		locks:      newUserLocks(),
		maxRetries: opts.MaxRetries,
		now:        opts.Now,
		events:     opts.Events,
	}, nil
}

// RecordActivityNow 以当前时钟记录一次活跃
func (s *StreakService) RecordActivityNow(ctx context.Context, userID string) (*schema.StreakRecord, error) {
	return s.RecordActivity(ctx, userID, s.now())
}

// RecordActivity 记录用户在 today 这一天的活跃并返回更新后的记录。
// 同一天重复调用不写库；库中日期损坏时按断签处理。
func (s *StreakService) RecordActivity(ctx context.Context, userID string, today time.Time) (*schema.StreakRecord, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, invalidArg("用户 ID 不能为空")
	}

	unlock := s.locks.lock(userID)
	defer unlock()

	for attempt := 0; attempt <= s.maxRetries; attempt++ {
		stored, err := s.repo.Get(ctx, userID)
		if err != nil {
			return nil, storageErr("读取连续打卡", err)
		}
		prev := stored
		if prev == nil {
			prev = schema.ZeroStreak(userID)
		}

		next, outcome := nextStreak(prev, stored != nil, today)
		if outcome == outcomeUnchanged {
			observability.StreakUpdates.WithLabelValues(outcome).Inc()
			s.cache.Add(userID, next.Clone())
			return next, nil
		}

		ok, err := s.repo.CompareAndSwap(ctx, stored, next)
		if err != nil {
			return nil, storageErr("写入连续打卡", err)
		}
		if !ok {
			observability.StreakCASConflicts.Inc()
			slog.Debug("连续打卡写入冲突，重试", "user_id", userID, "attempt", attempt+1)
			continue
		}

		s.cache.Remove(userID)
		observability.StreakUpdates.WithLabelValues(outcome).Inc()
		s.publish(next)
		return next, nil
	}

	return nil, fmt.Errorf("%w: 连续打卡并发冲突，重试 %d 次后放弃", ErrStorage, s.maxRetries)
}

// GetStreak 读取用户记录；空用户或无记录返回零值
func (s *StreakService) GetStreak(ctx context.Context, userID string) (*schema.StreakRecord, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return schema.ZeroStreak(""), nil
	}

	if v, ok := s.cache.Get(userID); ok {
		observability.StreakCache.WithLabelValues("hit").Inc()
		return v.(*schema.StreakRecord).Clone(), nil
	}
	observability.StreakCache.WithLabelValues("miss").Inc()

	rec, err := s.repo.Get(ctx, userID)
	if err != nil {
		return nil, storageErr("读取连续打卡", err)
	}
	if rec == nil {
		rec = schema.ZeroStreak(userID)
	}
	s.cache.Add(userID, rec.Clone())
	return rec, nil
}

func (s *StreakService) publish(rec *schema.StreakRecord) {
	if s.events == nil {
		return
	}
	s.events.Publish(eventbus.Event{
		Type:   eventbus.TypeStreakUpdated,
		UserID: rec.UserID,
		Data: map[string]any{
			"current_streak":     rec.CurrentStreak,
			"max_streak":         rec.MaxStreak,
			"last_activity_date": rec.LastActivityDate,
		},
	})
}

// nextStreak 纯函数：根据上一次记录与今天计算新记录。
// stored 表示记录确实来自存储；已存储却没有日期、或日期无法解析，都按损坏处理并重置。
func nextStreak(prev *schema.StreakRecord, stored bool, today time.Time) (*schema.StreakRecord, string) {
	todayKey := dayutil.FormatDay(today)
	if prev.LastActivityDate == todayKey {
		return prev.Clone(), outcomeUnchanged
	}

	next := prev.Clone()
	next.CurrentStreak = 1
	outcome := outcomeReset
	switch {
	case prev.LastActivityDate == "":
		if stored && (prev.CurrentStreak != 0 || prev.MaxStreak != 0) {
			warnMalformed(prev, errors.New("计数非零但缺少日期"))
		}
	default:
		last, err := dayutil.ParseDay(prev.LastActivityDate)
		if err != nil {
			warnMalformed(prev, err)
		} else if dayutil.IsPreviousDay(last, today) {
			next.CurrentStreak = prev.CurrentStreak + 1
			outcome = outcomeIncremented
		}
	}

	if next.CurrentStreak > next.MaxStreak {
		next.MaxStreak = next.CurrentStreak
	}
	next.LastActivityDate = todayKey
	return next, outcome
}

func warnMalformed(prev *schema.StreakRecord, cause error) {
	slog.Warn("连续打卡记录损坏，按断签重置",
		"user_id", prev.UserID,
		"last_activity_date", prev.LastActivityDate,
		"current_streak", prev.CurrentStreak,
		"error", fmt.Errorf("%w: %v", ErrMalformedState, cause))
}
