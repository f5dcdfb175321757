package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/msomdec/user-registry/internal/domain"
	"github.com/msomdec/user-registry/internal/repository/sqlite/migrations"
	_ "modernc.org/sqlite"
)

const (
	DefaultMaxConns       = 5
	DefaultAcquireTimeout = 5 * time.Second
)

// Options configures the connection pool.
type Options struct {
	MaxConns       int
	AcquireTimeout time.Duration
}

// DB owns the SQLite connection pool. It is created once at startup and
// closed on shutdown.
type DB struct {
	SqlDB          *sql.DB
	acquireTimeout time.Duration
	users          *UserRepository
}

// New opens a SQLite database at the given path. Every pooled connection runs
// in WAL mode with foreign keys and a busy timeout.
func New(dbPath string, opts Options) (*DB, error) {
	if opts.MaxConns <= 0 {
		opts.MaxConns = DefaultMaxConns
	}
	if opts.AcquireTimeout <= 0 {
		opts.AcquireTimeout = DefaultAcquireTimeout
	}

	q := url.Values{}
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "foreign_keys(1)")
	q.Add("_pragma", "busy_timeout(5000)")
	dsn := "file:" + dbPath + "?" + q.Encode()

	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB.SetMaxOpenConns(opts.MaxConns)
	sqlDB.SetMaxIdleConns(opts.MaxConns)

	if err := sqlDB.PingContext(context.Background()); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	d := &DB{SqlDB: sqlDB, acquireTimeout: opts.AcquireTimeout}
	d.users = &UserRepository{db: d}
	return d, nil
}

// WithConn checks a connection out of the pool, runs fn on it and returns the
// connection on every exit path. Checkout waits at most the acquire timeout
// and then fails with domain.ErrPoolExhausted.
func (d *DB) WithConn(ctx context.Context, fn func(conn *sql.Conn) error) error {
	acquireCtx, cancel := context.WithTimeout(ctx, d.acquireTimeout)
	defer cancel()

	conn, err := d.SqlDB.Conn(acquireCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) && ctx.Err() == nil {
			slog.Warn("connection checkout timed out", "timeout", d.acquireTimeout)
			return domain.ErrPoolExhausted
		}
		return dbError("acquire connection", err)
	}
	defer conn.Close()

	return fn(conn)
}

// Migrate applies pending schema migrations.
func (d *DB) Migrate(ctx context.Context) error {
	if _, err := migrations.Run(ctx, d.SqlDB); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

func (d *DB) Ping(ctx context.Context) error {
	return d.WithConn(ctx, func(conn *sql.Conn) error {
		return conn.PingContext(ctx)
	})
}

// Stats reports pool usage.
func (d *DB) Stats() sql.DBStats {
	return d.SqlDB.Stats()
}

func (d *DB) Users() *UserRepository {
	return d.users
}

func (d *DB) Close() error {
	return d.SqlDB.Close()
}

// dbError logs a driver failure and replaces it with a domain.DatabaseError so
// callers never see driver text in the error message.
func dbError(op string, err error) error {
	slog.Error("database operation failed", "op", op, "error", err)
	return &domain.DatabaseError{Op: op, Err: err}
}
