package di

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"dynamo-user-service/cmd/api/infrastructure"
	"dynamo-user-service/internal/adapter/db/dynamo"
	"dynamo-user-service/internal/adapter/db/postgres"
	ginhandler "dynamo-user-service/internal/adapter/gin/handler"
	"dynamo-user-service/internal/adapter/gin/middleware"
	"dynamo-user-service/internal/config"
	"dynamo-user-service/internal/usecase/user"
	redisclient "dynamo-user-service/pkg/redis"
)

// store is a user repository that can provision its own table.
type store interface {
	user.Repository
	EnsureSchema(ctx context.Context) error
}

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	Dynamo      *dynamodb.Client
	RedisClient *redisclient.Client
	UserUC      user.UserUsecase
	RateLimiter *middleware.RateLimiter
	GinHandler  *ginhandler.UserHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(ctx context.Context, cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	c := &Container{Config: cfg, Logger: l}

	repo, err := c.newStore(ctx)
	if err != nil {
		_ = c.Close()
		return nil, err
	}

	if cfg.Store.AutoCreate {
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to prepare user table: %w", err)
		}
	}

	c.UserUC = user.New(repo, l)
	c.GinHandler = ginhandler.NewUserHandler(c.UserUC, l)

	limiterCfg := middleware.RateLimiterConfig{
		Enabled:           cfg.RateLimit.Enabled,
		RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
		BurstCapacity:     cfg.RateLimit.BurstCapacity,
	}
	if cfg.RateLimit.Enabled {
		rdb, err := infrastructure.NewRedisClient(ctx, cfg.Redis, l)
		if err != nil {
			_ = c.Close()
			return nil, fmt.Errorf("failed to initialize Redis: %w", err)
		}
		c.RedisClient = rdb
		c.RateLimiter = middleware.NewRateLimiter(rdb.Client, limiterCfg, l)
	} else {
		c.RateLimiter = middleware.NewRateLimiter(nil, limiterCfg, l)
	}

	return c, nil
}

func (c *Container) newStore(ctx context.Context) (store, error) {
	switch c.Config.Store.Driver {
	case config.DriverDynamoDB:
		client, err := infrastructure.NewDynamoClient(ctx, c.Config.Dynamo, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize DynamoDB: %w", err)
		}
		c.Dynamo = client
		return dynamo.NewUserRepoDynamo(client, c.Config.Dynamo.Table, c.Logger), nil
	case config.DriverPostgres, config.DriverSQLite:
		db, err := infrastructure.NewDatabase(c.Config, c.Logger)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		c.DB = db
		return postgres.NewUserRepoPG(db, c.Logger), nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", c.Config.Store.Driver)
	}
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	return errors.Join(errs...)
}
