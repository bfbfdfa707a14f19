package storage

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	migrate "github.com/rubenv/sql-migrate"
	"go.opentelemetry.io/otel"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var tracer = otel.Tracer("github.com/agentcookbook/gemini-agents/storage")

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DefaultDSN is the sqlite file used when no DATABASE_URL is configured.
const DefaultDSN = "workspace/gemini_agents.db"

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("storage: not found")

// DB is a migrated gorm database holding sessions, runs, memories,
// knowledge contents, workflow runs and local vectors.
type DB struct {
	db      *gorm.DB
	dialect string
}

// Open connects to dsn and applies pending migrations. DSNs starting with
// postgres:// or postgresql://, or containing host=, use postgres. Anything
// else is a sqlite path; ":memory:" gives a private in-memory database.
func Open(ctx context.Context, dsn string) (*DB, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}

	gormCfg := &gorm.Config{
		Logger: logger.NewSlogLogger(slog.Default().With("component", "gorm"), logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
		}),
	}

	var (
		dialector gorm.Dialector
		dialect   string
	)
	if isPostgres(dsn) {
		dialector, dialect = postgres.Open(dsn), "postgres"
	} else {
		path := strings.TrimPrefix(dsn, "sqlite://")
		if path != ":memory:" && !strings.HasPrefix(path, "file:") {
			if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
				return nil, fmt.Errorf("create database directory: %w", err)
			}
		}
		dialector, dialect = sqlite.Open(path), "sqlite3"
	}

	db, err := gorm.Open(dialector, gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get underlying sql.DB: %w", err)
	}
	if dialect == "sqlite3" {
		// sqlite serializes writers, and every ":memory:" connection is a
		// separate database.
		sqlDB.SetMaxOpenConns(1)
	} else {
		sqlDB.SetMaxOpenConns(20)
		sqlDB.SetMaxIdleConns(5)
		sqlDB.SetConnMaxLifetime(30 * time.Minute)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	d := &DB{db: db, dialect: dialect}
	if _, err := d.Migrate(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}
	return d, nil
}

func isPostgres(dsn string) bool {
	return strings.HasPrefix(dsn, "postgres://") ||
		strings.HasPrefix(dsn, "postgresql://") ||
		strings.Contains(dsn, "host=")
}

// Migrate applies pending migrations and returns how many ran.
func (d *DB) Migrate(ctx context.Context) (int, error) {
	_, span := tracer.Start(ctx, "storage.Migrate")
	defer span.End()

	sqlDB, err := d.db.DB()
	if err != nil {
		return 0, err
	}
	src := &migrate.EmbedFileSystemMigrationSource{FileSystem: migrationsFS, Root: "migrations"}
	n, err := migrate.Exec(sqlDB, d.dialect, src, migrate.Up)
	if err != nil {
		span.RecordError(err)
		return n, fmt.Errorf("apply migrations: %w", err)
	}
	if n > 0 {
		slog.DebugContext(ctx, "database migrated", "dialect", d.dialect, "applied", n)
	}
	return n, nil
}

// Gorm returns the underlying gorm handle bound to ctx.
func (d *DB) Gorm(ctx context.Context) *gorm.DB {
	return d.db.WithContext(ctx)
}

// Dialect returns "sqlite3" or "postgres".
func (d *DB) Dialect() string { return d.dialect }

// Ping checks the connection.
func (d *DB) Ping(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "storage.Ping")
	defer span.End()

	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

// Close closes the connection pool.
func (d *DB) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
