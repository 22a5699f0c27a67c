package di

import (
	"context"
	"net"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"dynamo-user-service/internal/config"
	"dynamo-user-service/internal/usecase/user"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)
	cfg.Store.Driver = config.DriverSQLite
	cfg.DB.SQLitePath = filepath.Join(t.TempDir(), "users.db")
	cfg.Logger.Level = "silent"
	return cfg
}

func TestNewContainer_SQLite(t *testing.T) {
	ctx := context.Background()
	c, err := NewContainer(ctx, sqliteConfig(t), zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, c.Close()) })

	assert.NotNil(t, c.DB)
	assert.Nil(t, c.Dynamo)
	assert.Nil(t, c.RedisClient)
	assert.NotNil(t, c.GinHandler)

	created, err := c.UserUC.CreateUser(ctx, user.CreateUserRequest{Name: "A", EmailAddress: "a@x.com"})
	require.NoError(t, err)

	got, err := c.UserUC.GetUser(ctx, user.GetUserRequest{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, created, got)
}

func TestNewContainer_RateLimiterUsesRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	host, port, err := net.SplitHostPort(mr.Addr())
	require.NoError(t, err)

	cfg := sqliteConfig(t)
	cfg.RateLimit.Enabled = true
	cfg.Redis.Host = host
	cfg.Redis.Port = port

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, c.Close()) })

	assert.NotNil(t, c.RedisClient)
	assert.NotNil(t, c.RateLimiter)
}

func TestNewContainer_InvalidConfig(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Store.Driver = "cassandra"

	_, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	assert.ErrorContains(t, err, "config validation failed")
}

func TestNewContainer_DynamoWithoutAutoCreate(t *testing.T) {
	cfg, err := config.LoadConfig(t.TempDir())
	require.NoError(t, err)
	cfg.Store.AutoCreate = false

	c, err := NewContainer(context.Background(), cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.NotNil(t, c.Dynamo)
	assert.Nil(t, c.DB)
	assert.NoError(t, c.Close())
}
