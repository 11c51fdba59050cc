package rdb

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/ternarybob/arbor"
	_ "modernc.org/sqlite"

	"github.com/ternarybob/stockmcp/internal/common"
)

const sourceName = "metric store"

// DB manages the connection to the stock metrics database
type DB struct {
	db      *sqlx.DB
	dialect dialect
	logger  arbor.ILogger
	config  *common.DatabaseConfig
}

// Open connects to the configured database and verifies the connection.
// modernc.org/sqlite registers the "sqlite" driver name (not "sqlite3").
func Open(ctx context.Context, logger arbor.ILogger, config *common.DatabaseConfig) (*DB, error) {
	d, ok := dialects[config.Driver]
	if !ok {
		return nil, fmt.Errorf("unsupported database driver: %s", config.Driver)
	}

	if d.name == "sqlite" {
		if err := ensureSQLiteDir(config.DSN); err != nil {
			return nil, err
		}
	}

	db, err := sqlx.Open(d.driverName, config.DSN)
	if err != nil {
		return nil, common.NewSourceError(sourceName, "open", err)
	}

	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}
	if config.MaxIdleConns > 0 {
		db.SetMaxIdleConns(config.MaxIdleConns)
	}
	if config.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(config.ConnMaxLifetime)
	}

	s := &DB{
		db:      db,
		dialect: d,
		logger:  logger,
		config:  config,
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, common.NewSourceError(sourceName, "ping", err)
	}

	if d.name == "sqlite" {
		if err := s.configureSQLite(ctx); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to configure database: %w", err)
		}
	}

	if config.ApplySchema {
		if err := s.ApplySchema(ctx); err != nil {
			db.Close()
			return nil, err
		}
	}

	logger.Info().Str("driver", d.name).Msg("Metric store connected")
	return s, nil
}

// ensureSQLiteDir creates the parent directory of a file-backed database.
func ensureSQLiteDir(dsn string) error {
	path := dsn
	if strings.HasPrefix(path, "file:") {
		path = strings.TrimPrefix(path, "file:")
		if i := strings.IndexByte(path, '?'); i >= 0 {
			path = path[:i]
		}
	}
	if path == "" || path == ":memory:" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create database directory: %w", err)
	}
	return nil
}

// configureSQLite sets pragmas for a read-mostly workload
func (s *DB) configureSQLite(ctx context.Context) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}
	for _, pragma := range pragmas {
		if _, err := s.db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %s: %w", pragma, err)
		}
	}
	return nil
}

// Driver returns the dialect name: sqlite, postgres or mysql.
func (s *DB) Driver() string {
	return s.dialect.name
}

// SQL returns the underlying connection pool
func (s *DB) SQL() *sqlx.DB {
	return s.db
}

// Close closes the database connection
func (s *DB) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping verifies the database connection
func (s *DB) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return common.NewSourceError(sourceName, "ping", err)
	}
	return nil
}

// get scans a single row into dest by its db tags; no row is sql.ErrNoRows.
func (s *DB) get(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return s.db.GetContext(ctx, dest, s.dialect.rebind(query), args...)
}

// selectAll scans every row into the slice dest by its db tags.
func (s *DB) selectAll(ctx context.Context, dest interface{}, query string, args ...interface{}) error {
	return s.db.SelectContext(ctx, dest, s.dialect.rebind(query), args...)
}
