package database

import (
	"context"
	"fmt"
	stdlog "log"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Tomlord1122/tick/internal/config"
	"github.com/Tomlord1122/tick/internal/logger"
)

// Service is the shared store handle. It is created once in main and passed
// to the repository; there is no package-level instance.
type Service interface {
	Health() map[string]string
	Close() error
	GetDB() *gorm.DB
}

type service struct {
	db   *gorm.DB
	name string
}

// New opens the configured store and sizes its connection pool.
func New(cfg config.DBConfig, logCfg config.LogConfig) (Service, error) {
	dialector, name, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	level := gormlogger.Warn
	if logCfg.SQL {
		level = gormlogger.Info
	}
	sqlLogger := gormlogger.New(
		stdlog.New(logger.Named("gorm"), "", 0),
		gormlogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{Logger: sqlLogger})
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", name, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}
	if cfg.Driver == config.DriverSQLite {
		// sqlite serializes writers; a single connection also keeps a
		// shared in-memory database alive for the lifetime of the pool.
		sqlDB.SetMaxOpenConns(1)
		sqlDB.SetMaxIdleConns(1)
		sqlDB.SetConnMaxLifetime(0)
	} else {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	logger.Named("database").Info().Str("driver", cfg.Driver).Str("database", name).Msg("store connected")
	return &service{db: db, name: name}, nil
}

func dialectorFor(cfg config.DBConfig) (gorm.Dialector, string, error) {
	switch cfg.Driver {
	case config.DriverPostgres:
		dsn := cfg.URL
		if dsn == "" {
			dsn = cfg.DSN()
		}
		pgCfg, err := pgx.ParseConfig(dsn)
		if err != nil {
			return nil, "", fmt.Errorf("parse postgres dsn: %w", err)
		}
		return postgres.New(postgres.Config{Conn: stdlib.OpenDB(*pgCfg)}), pgCfg.Database, nil
	case config.DriverSQLite:
		return sqlite.Open(cfg.Path), cfg.Path, nil
	default:
		return nil, "", fmt.Errorf("unsupported store driver %q", cfg.Driver)
	}
}

func (s *service) GetDB() *gorm.DB {
	return s.db
}

// Health pings the store and reports pool statistics.
func (s *service) Health() map[string]string {
	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
	defer cancel()

	stats := make(map[string]string)
	sqlDB, err := s.db.DB()
	if err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("failed to get underlying DB for health check: %v", err)
		return stats
	}

	if err := sqlDB.PingContext(ctx); err != nil {
		stats["status"] = "down"
		stats["error"] = fmt.Sprintf("db down: %v", err)
		logger.Named("database").Warn().Err(err).Msg("health check failed")
		return stats
	}

	stats["status"] = "up"
	stats["message"] = "It's healthy"

	dbStats := sqlDB.Stats()
	stats["open_connections"] = strconv.Itoa(dbStats.OpenConnections)
	stats["in_use"] = strconv.Itoa(dbStats.InUse)
	stats["idle"] = strconv.Itoa(dbStats.Idle)
	stats["wait_count"] = strconv.FormatInt(dbStats.WaitCount, 10)
	stats["wait_duration"] = dbStats.WaitDuration.String()
	stats["max_idle_closed"] = strconv.FormatInt(dbStats.MaxIdleClosed, 10)
	stats["max_lifetime_closed"] = strconv.FormatInt(dbStats.MaxLifetimeClosed, 10)

	if dbStats.OpenConnections > 80 {
		stats["message"] = "The database is experiencing heavy load."
	}
	if dbStats.WaitCount > 1000 {
		stats["message"] = "The database has a high number of wait events, indicating potential bottlenecks."
	}

	return stats
}

func (s *service) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	logger.Named("database").Info().Str("database", s.name).Msg("closing connection pool")
	return sqlDB.Close()
}
