package bootstrap

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/yuqie6/dsatrack/internal/auth"
	"github.com/yuqie6/dsatrack/internal/eventbus"
	"github.com/yuqie6/dsatrack/internal/mongostore"
	"github.com/yuqie6/dsatrack/internal/pkg/config"
	"github.com/yuqie6/dsatrack/internal/repository"
	"github.com/yuqie6/dsatrack/internal/service"
	"gorm.io/gorm"
)

// Repos 仓储集合，SQLite 与 Mongo 两套后端都填充到这里
type Repos struct {
	Streaks     service.StreakRepository
	Questions   service.QuestionRepository
	Completions service.CompletionRepository
	Topics      service.TopicRepository
	Contests    service.ContestRepository
}

// Services 业务服务集合
type Services struct {
	Streaks   *service.StreakService
	Questions *service.QuestionService
	Topics    *service.TopicService
	Contests  *service.ContestService
	Stats     *service.StatsService
}

// Core 持有跨二进制共享的核心依赖
type Core struct {
	Cfg       *config.Config
	DB        *repository.Database // sqlite 后端
	Mongo     *mongostore.Store    // mongo 后端
	LogCloser io.Closer
	Hub       *eventbus.Hub
	Tokens    *auth.Issuer

	Repos    Repos
	Services Services
}

// NewCore 加载配置、初始化日志并构建核心依赖
func NewCore(ctx context.Context, cfgPath string) (*Core, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	logCloser, _ := config.SetupLogger(config.LoggerOptions{
		Level:     cfg.App.LogLevel,
		Path:      cfg.App.LogPath,
		Component: filepath.Base(os.Args[0]),
	})

	c, err := NewCoreWithConfig(ctx, cfg)
	if err != nil {
		if logCloser != nil {
			_ = logCloser.Close()
		}
		return nil, err
	}
	c.LogCloser = logCloser
	return c, nil
}

// NewCoreWithConfig 按已加载配置选择存储后端并装配服务（不初始化日志）
func NewCoreWithConfig(ctx context.Context, cfg *config.Config) (*Core, error) {
	if cfg == nil {
		return nil, fmt.Errorf("cfg 不能为空")
	}
	c := &Core{Cfg: cfg}

	switch cfg.Storage.Driver {
	case config.DriverMongo:
		store, err := mongostore.Connect(ctx, mongostore.Options{
			URI:      cfg.Storage.Mongo.URI,
			Database: cfg.Storage.Mongo.Database,
			Timeout:  cfg.Storage.Mongo.Timeout(),
		})
		if err != nil {
			return nil, err
		}
		c.Mongo = store
		c.Repos = MongoRepos(store)
	default:
		db, err := repository.NewDatabase(cfg.Storage.DBPath)
		if err != nil {
			return nil, err
		}
		c.DB = db
		c.Repos = SQLiteRepos(db.DB)
	}

	c.Hub = eventbus.NewHub()
	svcs, err := NewServices(cfg, c.Repos, c.Hub)
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	c.Services = *svcs
	c.Tokens = auth.NewIssuer(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL())
	return c, nil
}

// SQLiteRepos 基于 gorm 的仓储
func SQLiteRepos(db *gorm.DB) Repos {
	return Repos{
		Streaks:     repository.NewStreakRepository(db),
		Questions:   repository.NewQuestionRepository(db),
		Completions: repository.NewCompletionRepository(db),
		Topics:      repository.NewTopicRepository(db),
		Contests:    repository.NewContestRepository(db),
	}
}

// MongoRepos 基于文档库的仓储
func MongoRepos(s *mongostore.Store) Repos {
	return Repos{
		Streaks:     s.Streaks(),
		Questions:   s.Questions(),
		Completions: s.Completions(),
		Topics:      s.Topics(),
		Contests:    s.Contests(),
	}
}

// NewServices 装配业务服务；hub 可为 nil
func NewServices(cfg *config.Config, repos Repos, hub *eventbus.Hub) (*Services, error) {
	streaks, err := service.NewStreakService(repos.Streaks, service.StreakOptions{
		CacheSize:  cfg.Streak.CacheSize,
		MaxRetries: cfg.Streak.MaxRetries,
		Events:     hub,
	})
	if err != nil {
		return nil, err
	}

	var related *service.RelatedIndex
	if cfg.Search.RelatedEnabled {
		related = service.NewRelatedIndex()
	}

	return &Services{
		Streaks: streaks,
		Questions: service.NewQuestionService(repos.Questions, repos.Completions, service.QuestionOptions{
			Activity: streaks,
			Events:   hub,
			Related:  related,
		}),
		Topics:   service.NewTopicService(repos.Topics, repos.Questions, hub),
		Contests: service.NewContestService(repos.Contests, hub),
		Stats:    service.NewStatsService(repos.Questions, repos.Contests, streaks),
	}, nil
}

// StorageDriver 实际使用的存储后端
func (c *Core) StorageDriver() string {
	if c.Mongo != nil {
		return config.DriverMongo
	}
	return config.DriverSQLite
}

// Close 关闭核心依赖资源
func (c *Core) Close() error {
	if c == nil {
		return nil
	}
	var err error
	if c.DB != nil {
		err = c.DB.Close()
	}
	if c.Mongo != nil {
		if mErr := c.Mongo.Close(context.Background()); mErr != nil && err == nil {
			err = mErr
		}
	}
	if c.LogCloser != nil {
		_ = c.LogCloser.Close()
	}
	return err
}
