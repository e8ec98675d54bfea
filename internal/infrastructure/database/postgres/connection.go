// Package postgres manages the PostgreSQL connection pool and schema
// migrations for the notice store.
package postgres

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/taxletterhelp/notice-intelligence/internal/config"
	"github.com/taxletterhelp/notice-intelligence/pkg/errors"
)

// Connection manages the PostgreSQL connection pool.
type Connection struct {
	pool   *pgxpool.Pool
	cfg    config.DatabaseConfig
	logger *zap.Logger
}

// BuildDSN constructs the PostgreSQL connection string for pgx.
func BuildDSN(cfg config.DatabaseConfig) string {
	return buildURL("postgres", cfg)
}

// MigrateDSN constructs the connection string for golang-migrate's pgx/v5
// database driver, which registers the "pgx5" URL scheme.
func MigrateDSN(cfg config.DatabaseConfig) string {
	return buildURL("pgx5", cfg)
}

func buildURL(scheme string, cfg config.DatabaseConfig) string {
	u := url.URL{
		Scheme: scheme,
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Path:   cfg.DBName,
	}

	q := u.Query()
	if cfg.SSLMode != "" {
		q.Set("sslmode", cfg.SSLMode)
	} else {
		q.Set("sslmode", "disable")
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// NewConnection establishes a connection pool to the PostgreSQL database and
// verifies it with a ping.
func NewConnection(ctx context.Context, cfg config.DatabaseConfig, logger *zap.Logger) (*Connection, error) {
	poolCfg, err := pgxpool.ParseConfig(BuildDSN(cfg))
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to parse database config")
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		poolCfg.MaxConnLifetime = cfg.ConnMaxLifetime
	}
	if cfg.ConnMaxIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.ConnMaxIdleTime
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "failed to create connection pool")
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, errors.Wrap(err, errors.ErrCodeDatabaseError, "database connection failed")
	}

	logger.Info("connected to PostgreSQL database",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.DBName),
	)

	return &Connection{pool: pool, cfg: cfg, logger: logger}, nil
}

// NewConnectionWithPool creates a Connection around an existing pool (for tests).
func NewConnectionWithPool(pool *pgxpool.Pool, logger *zap.Logger) *Connection {
	return &Connection{pool: pool, logger: logger}
}

// Pool returns the underlying pgx pool.
func (c *Connection) Pool() *pgxpool.Pool {
	return c.pool
}

// HealthCheck verifies the database connection status.
func (c *Connection) HealthCheck(ctx context.Context) error {
	if err := c.pool.Ping(ctx); err != nil {
		return errors.Wrap(err, errors.ErrCodeDatabaseError, "database health check failed")
	}

	stat := c.pool.Stat()
	if stat.TotalConns() > 0 {
		usage := float64(stat.AcquiredConns()) / float64(stat.TotalConns())
		if usage > 0.8 {
			c.logger.Warn("high database connection pool usage",
				zap.Int32("acquired", stat.AcquiredConns()),
				zap.Int32("total", stat.TotalConns()),
				zap.Float64("usage", usage),
			)
		}
	}

	return nil
}

// Stat returns connection pool statistics.
func (c *Connection) Stat() *pgxpool.Stat {
	return c.pool.Stat()
}

// Close shuts down the connection pool.
func (c *Connection) Close() {
	c.pool.Close()
	c.logger.Info("closed PostgreSQL connection pool")
}
