package db

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"itam/pkg/config"
)

// Connect opens the pgx pool, verifies it with a ping and applies the schema
// when the config asks for it.
func Connect(ctx context.Context, cfg config.DatabaseConfig, log *logrus.Logger) (*pgxpool.Pool, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("database url is not set")
	}

	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database config: %w", err)
	}

	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}
	if cfg.MaxConnIdleTime > 0 {
		poolCfg.MaxConnIdleTime = cfg.MaxConnIdleTime
	}

	connectCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(connectCtx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(connectCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("database ping failed: %w", err)
	}

	log.Info("Connected to PostgreSQL")

	if cfg.ApplySchema {
		schemaCtx, cancelSchema := context.WithTimeout(ctx, 30*time.Second)
		defer cancelSchema()
		if err := ApplySchema(schemaCtx, pool, cfg.SchemaPath); err != nil {
			pool.Close()
			return nil, fmt.Errorf("apply schema: %w", err)
		}
		log.WithField("path", cfg.SchemaPath).Info("Schema applied")
	}

	return pool, nil
}

// ApplySchema reads the SQL schema file and executes it against the pool.
// The schema is written to be re-runnable (CREATE TABLE IF NOT EXISTS,
// ON CONFLICT DO NOTHING seeds).
func ApplySchema(ctx context.Context, pool *pgxpool.Pool, schemaPath string) error {
	if schemaPath == "" {
		schemaPath = "pkg/db/schema.sql"
	}

	bytes, err := os.ReadFile(schemaPath)
	if err != nil {
		return fmt.Errorf("read schema file: %w", err)
	}

	sql := strings.TrimSpace(string(bytes))
	if sql == "" {
		return fmt.Errorf("schema file is empty: %s", schemaPath)
	}

	if _, err := pool.Exec(ctx, sql); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}

	return nil
}
