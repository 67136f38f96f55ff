// Package store is the local record store of the cache: a SQLite database
// holding planets, characters and transformations, written through
// transactional scopes and observed through live queries.
//
// All writes go through Update. Writers are serialized by a process-wide
// mutex, and observers of the tables a transaction touched are notified once
// it has committed. A rolled back transaction notifies nobody.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/dbcache/internal/client/livequery"
	"github.com/dmitrijs2005/dbcache/internal/client/migrations"
	"github.com/dmitrijs2005/dbcache/internal/common"
	"github.com/dmitrijs2005/dbcache/internal/dbx"
	"github.com/dmitrijs2005/dbcache/internal/filex"
	"github.com/dmitrijs2005/dbcache/internal/logging"
	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // pure-Go SQLite driver
)

// Table names, used as live query dependency keys.
const (
	TablePlanets         = "planets"
	TableCharacters      = "characters"
	TableTransformations = "transformations"
	TableMetadata        = "metadata"
)

const defaultBusyTimeout = 5 * time.Second

// Options configures Open.
type Options struct {
	// Path is the database file. It is created when missing.
	Path string

	// BusyTimeout bounds how long a connection waits on a locked database.
	BusyTimeout time.Duration

	Logger logging.Logger
}

// Store owns the database handle and the live query registry.
type Store struct {
	db  *sql.DB
	reg *livequery.Registry
	log logging.Logger

	writeMu sync.Mutex
	closed  atomic.Bool
}

// Open opens (or creates) the database at opts.Path, applies the connection
// pragmas and brings the schema up to date.
func Open(ctx context.Context, opts Options) (*Store, error) {
	if opts.Path == "" {
		return nil, errors.New("database path is required")
	}
	if opts.BusyTimeout <= 0 {
		opts.BusyTimeout = defaultBusyTimeout
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	path, err := filex.EnsureParentDir(opts.Path)
	if err != nil {
		return nil, fmt.Errorf("prepare database path: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(path, opts.BusyTimeout))
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	opts.Logger.Debug(ctx, "record store opened", "path", opts.Path)
	return New(db, opts.Logger), nil
}

// New wraps an already migrated database.
func New(db *sql.DB, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{db: db, reg: livequery.NewRegistry(), log: log}
}

// dsn builds a modernc DSN whose pragmas are applied to every pooled
// connection. Foreign keys stay off: relations are declared for the joins,
// and dangling references are tolerated by the reads.
func dsn(path string, busy time.Duration) string {
	q := url.Values{}
	q.Add("_pragma", fmt.Sprintf("busy_timeout(%d)", busy.Milliseconds()))
	q.Add("_pragma", "journal_mode(WAL)")
	q.Add("_pragma", "synchronous(NORMAL)")
	q.Add("_pragma", "foreign_keys(0)")
	return path + "?" + q.Encode()
}

// RunMigrations applies every pending migration. Schema changes are
// destructive: a migration may drop a table and the cache refills it on the
// next sync.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	p, err := goose.NewProvider(goose.DialectSQLite3, db, migrations.Migrations)
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}
	if _, err := p.Up(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// DB exposes the underlying handle for maintenance and tests.
func (s *Store) DB() *sql.DB { return s.db }

// Registry returns the live query registry notified after each commit.
func (s *Store) Registry() *livequery.Registry { return s.reg }

// Close ends every live subscription and closes the database.
func (s *Store) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}
	s.reg.Close()
	return s.db.Close()
}

// Update runs fn inside one write transaction. The transaction commits when
// fn returns nil and rolls back when it returns an error or panics; a panic
// is re-raised after the rollback.
func (s *Store) Update(ctx context.Context, fn func(tx *Tx) error) error {
	if s.closed.Load() {
		return common.ErrorStoreClosed
	}

	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	var touched []string
	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, q dbx.DBTX) error {
		tx := newTx(q)
		if err := fn(tx); err != nil {
			return err
		}
		touched = tx.Touched()
		return nil
	})
	if err != nil {
		return err
	}

	if len(touched) > 0 {
		s.log.Debug(ctx, "commit", "tables", touched)
		s.reg.Notify(touched...)
	}
	return nil
}

// View runs fn inside a read-only transaction, so every read in fn sees the
// same committed state. The transaction is always rolled back.
func (s *Store) View(ctx context.Context, fn func(tx *Tx) error) error {
	if s.closed.Load() {
		return common.ErrorStoreClosed
	}
	return dbx.WithReadTx(ctx, s.db, func(ctx context.Context, q dbx.DBTX) error {
		return fn(newTx(q))
	})
}
