// Package sqlite is a kv.KV persisted in a SQLite database.
package sqlite

import (
	"context"
	"fmt"
	"iter"
	"log/slog"
	"runtime"

	"github.com/ipvm-wg/go-ucan-agent/core/clock"
	"github.com/ipvm-wg/go-ucan-agent/kv"
	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"
)

const schema = `
CREATE TABLE IF NOT EXISTS kv (
	key        TEXT PRIMARY KEY,
	value      BLOB NOT NULL,
	expiration INTEGER
);
CREATE INDEX IF NOT EXISTS kv_expiration ON kv (expiration) WHERE expiration IS NOT NULL;
`

type Option func(cfg *config)

type config struct {
	poolSize int
	logger   *slog.Logger
	clock    clock.Clock
}

// WithPoolSize sets the number of pooled connections. Use 1 for ":memory:"
// databases, every in-memory connection is a separate database.
func WithPoolSize(n int) Option {
	return func(cfg *config) {
		cfg.poolSize = n
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = l
	}
}

func WithClock(c clock.Clock) Option {
	return func(cfg *config) {
		cfg.clock = c
	}
}

// Store is safe for concurrent use. Each operation takes its own connection
// from the pool.
type Store struct {
	pool   *sqlitex.Pool
	logger *slog.Logger
	clock  clock.Clock
	path   string
}

var _ kv.KV = (*Store)(nil)

// Open the database at path, creating it and the kv table if needed.
func Open(path string, options ...Option) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("sqlite: path is required")
	}
	cfg := config{}
	for _, opt := range options {
		opt(&cfg)
	}
	if cfg.logger == nil {
		cfg.logger = slog.New(slog.DiscardHandler)
	}
	if cfg.clock == nil {
		cfg.clock = clock.Real()
	}
	if cfg.poolSize <= 0 {
		cfg.poolSize = max(runtime.NumCPU(), 4)
	}

	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize:    cfg.poolSize,
		PrepareConn: prepareConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("sqlite: opening %s: %w", path, err)
	}
	cfg.logger.Info("kv store opened", "path", path, "pool_size", cfg.poolSize)

	return &Store{pool: pool, logger: cfg.logger, clock: cfg.clock, path: path}, nil
}

func prepareConnection(conn *sqlite.Conn) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA temp_store=MEMORY",
	}
	for _, pragma := range pragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("sqlite: %s: %w", pragma, err)
		}
	}
	if err := sqlitex.ExecuteScript(conn, schema, nil); err != nil {
		return fmt.Errorf("sqlite: creating schema: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, key kv.Key) ([]byte, bool, error) {
	if err := key.Validate(); err != nil {
		return nil, false, err
	}
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: take: %w", err)
	}
	defer s.pool.Put(conn)

	var (
		value   []byte
		found   bool
		expired bool
	)
	now := s.clock.Now().Unix()
	err = sqlitex.Execute(conn, "SELECT value, expiration FROM kv WHERE key = ?", &sqlitex.ExecOptions{
		Args: []any{key.String()},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			if stmt.ColumnType(1) != sqlite.TypeNull && stmt.ColumnInt64(1) <= now {
				expired = true
				return nil
			}
			value = readBlob(stmt, 0)
			found = true
			return nil
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("sqlite: get %s: %w", key, err)
	}
	if expired {
		s.evict(conn, now)
	}
	return value, found, nil
}

func (s *Store) Set(ctx context.Context, key kv.Key, value []byte, options ...kv.SetOption) error {
	if err := key.Validate(); err != nil {
		return err
	}
	cfg := kv.NewSetConfig(options...)
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("sqlite: take: %w", err)
	}
	defer s.pool.Put(conn)

	var exp any
	if cfg.Expiration != nil {
		exp = *cfg.Expiration
	}
	if value == nil {
		value = []byte{}
	}
	err = sqlitex.Execute(conn,
		"INSERT INTO kv (key, value, expiration) VALUES (?, ?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value, expiration = excluded.expiration",
		&sqlitex.ExecOptions{Args: []any{key.String(), value, exp}},
	)
	if err != nil {
		return fmt.Errorf("sqlite: set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key kv.Key) error {
	if err := key.Validate(); err != nil {
		return err
	}
	conn, err := s.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("sqlite: take: %w", err)
	}
	defer s.pool.Put(conn)

	if err := sqlitex.Execute(conn, "DELETE FROM kv WHERE key = ?", &sqlitex.ExecOptions{
		Args: []any{key.String()},
	}); err != nil {
		return fmt.Errorf("sqlite: delete %s: %w", key, err)
	}
	return nil
}

// List scans keys equal to prefix or below it. Keys below "a/b" sort
// between "a/b/" and "a/b0" since '0' follows '/'.
func (s *Store) List(ctx context.Context, prefix kv.Key) iter.Seq2[kv.Entry, error] {
	return func(yield func(kv.Entry, error) bool) {
		conn, err := s.pool.Take(ctx)
		if err != nil {
			yield(kv.Entry{}, fmt.Errorf("sqlite: take: %w", err))
			return
		}
		defer s.pool.Put(conn)

		now := s.clock.Now().Unix()
		s.evict(conn, now)

		query := "SELECT key, value, expiration FROM kv ORDER BY key"
		var args []any
		if len(prefix) > 0 {
			p := prefix.String()
			query = "SELECT key, value, expiration FROM kv WHERE key = ? OR (key >= ? AND key < ?) ORDER BY key"
			args = []any{p, p + "/", p + "0"}
		}

		var entries []kv.Entry
		err = sqlitex.Execute(conn, query, &sqlitex.ExecOptions{
			Args: args,
			ResultFunc: func(stmt *sqlite.Stmt) error {
				e := kv.Entry{
					Key:   kv.ParseKey(stmt.ColumnText(0)),
					Value: readBlob(stmt, 1),
				}
				if stmt.ColumnType(2) != sqlite.TypeNull {
					exp := stmt.ColumnInt64(2)
					e.Expiration = &exp
				}
				entries = append(entries, e)
				return nil
			},
		})
		if err != nil {
			yield(kv.Entry{}, fmt.Errorf("sqlite: list %s: %w", prefix, err))
			return
		}
		for _, e := range entries {
			if !yield(e, nil) {
				return
			}
		}
	}
}

// evict deletes every expired entry. Failures are logged, the next read
// tries again.
func (s *Store) evict(conn *sqlite.Conn, now int64) {
	err := sqlitex.Execute(conn, "DELETE FROM kv WHERE expiration IS NOT NULL AND expiration <= ?", &sqlitex.ExecOptions{
		Args: []any{now},
	})
	if err != nil {
		s.logger.Warn("evicting expired entries", "path", s.path, "error", err)
		return
	}
	if n := conn.Changes(); n > 0 {
		s.logger.Debug("evicted expired entries", "path", s.path, "count", n)
	}
}

func (s *Store) Close() error {
	if err := s.pool.Close(); err != nil {
		s.logger.Error("kv store close error", "path", s.path, "error", err)
		return fmt.Errorf("sqlite: closing %s: %w", s.path, err)
	}
	s.logger.Info("kv store closed", "path", s.path)
	return nil
}

func readBlob(stmt *sqlite.Stmt, column int) []byte {
	b := make([]byte, stmt.ColumnLen(column))
	stmt.ColumnBytes(column, b)
	return b
}
