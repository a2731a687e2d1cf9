package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"slide2pdf/internal/app"
	"slide2pdf/internal/config"
	"slide2pdf/internal/convert"
	"slide2pdf/internal/model"
	mysqlClient "slide2pdf/internal/platform/mysql"
	rabbitmqClient "slide2pdf/internal/platform/rabbitmq"
	redisClient "slide2pdf/internal/platform/redis"
	"slide2pdf/internal/registry"
	"slide2pdf/internal/repository"
	"slide2pdf/internal/worker"
)

type App struct {
	Config    *config.Config
	Soffice   *convert.Soffice
	Converter convert.Converter
	Registry  registry.Registry
	Publisher *rabbitmqClient.RecordPublisher

	Redis  *redis.Client
	MySQL  *gorm.DB
	MQConn *amqp.Connection

	pool         *convert.Pool
	recordWorker *worker.RecordPersistWorker
	sweeper      *worker.ArtifactSweeper

	StartedAt time.Time
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config failed: %w", err)
	}

	if err := os.MkdirAll(cfg.Artifacts.Dir, 0o755); err != nil {
		return nil, fmt.Errorf("create artifacts dir failed: %w", err)
	}
	if cfg.Artifacts.ScratchDir != "" {
		if err := os.MkdirAll(cfg.Artifacts.ScratchDir, 0o755); err != nil {
			return nil, fmt.Errorf("create scratch dir failed: %w", err)
		}
	}

	soffice := convert.NewSoffice(cfg.Convert.SofficePath, cfg.ConvertTimeout())
	pool := convert.NewPool(soffice, cfg.Convert.PoolWorkers)

	a := &App{
		Config:    cfg,
		Soffice:   soffice,
		Converter: pool,
		pool:      pool,
		StartedAt: time.Now(),
	}

	if err := a.initRegistry(ctx); err != nil {
		a.closeQuietly()
		return nil, err
	}

	if cfg.History.Enabled {
		if err := a.initHistory(ctx); err != nil {
			a.closeQuietly()
			return nil, err
		}
	}

	a.sweeper = worker.NewArtifactSweeper(cfg.Artifacts.Dir, cfg.ArtifactTTL(), cfg.SweepInterval())
	a.sweeper.Start(ctx)

	return a, nil
}

func (a *App) initRegistry(ctx context.Context) error {
	switch a.Config.Registry.Backend {
	case "redis":
		redisCli, err := redisClient.New(ctx, a.Config.Redis.Addr, a.Config.Redis.Password, a.Config.Redis.DB)
		if err != nil {
			return err
		}
		a.Redis = redisCli
		a.Registry = registry.NewRedisRegistry(redisCli, a.Config.ArtifactTTL())
	case "", "memory":
		a.Registry = registry.NewMemoryRegistry(a.Config.ArtifactTTL())
	default:
		return fmt.Errorf("unknown registry backend %q", a.Config.Registry.Backend)
	}
	return nil
}

func (a *App) initHistory(ctx context.Context) error {
	mysqlDB, err := mysqlClient.New(ctx, a.Config.MySQLDSN())
	if err != nil {
		return err
	}
	a.MySQL = mysqlDB
	if err := mysqlDB.AutoMigrate(&model.ConversionRecord{}, &model.User{}); err != nil {
		return fmt.Errorf("auto migrate tables failed: %w", err)
	}

	mqConn, err := rabbitmqClient.New(a.Config.RabbitMQ.URL)
	if err != nil {
		return err
	}
	a.MQConn = mqConn
	a.Publisher = rabbitmqClient.NewRecordPublisher(mqConn, a.Config.RabbitMQ.RecordPersistQueue)

	recordRepo := repository.NewRecordRepository(mysqlDB)
	a.recordWorker = worker.NewRecordPersistWorker(mqConn, recordRepo, a.Config.RabbitMQ.RecordPersistQueue)
	if err := a.recordWorker.Start(ctx); err != nil {
		return fmt.Errorf("start record worker failed: %w", err)
	}

	userRepo := repository.NewUserRepository(mysqlDB)
	authService := app.NewAuthService(
		userRepo,
		a.Config.Auth.JWTSecret,
		time.Duration(a.Config.Auth.JWTExpireMinute)*time.Minute,
	)
	if err := authService.EnsureAdmin(a.Config.Auth.AdminUsername, a.Config.Auth.AdminPassword); err != nil {
		return fmt.Errorf("seed admin account failed: %w", err)
	}

	return nil
}

func (a *App) Close() error {
	var closeErr error
	if a.recordWorker != nil {
		a.recordWorker.Close()
	}
	if a.sweeper != nil {
		a.sweeper.Close()
	}
	if a.pool != nil {
		a.pool.Stop()
	}
	if a.Registry != nil {
		a.Registry.Close()
	}
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MQConn != nil {
		if err := a.MQConn.Close(); err != nil {
			closeErr = err
		}
	}
	if a.MySQL != nil {
		sqlDB, err := a.MySQL.DB()
		if err == nil {
			if err := sqlDB.Close(); err != nil {
				closeErr = err
			}
		}
	}
	return closeErr
}

func (a *App) closeQuietly() {
	_ = a.Close()
}
