package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // "sqlite3" driver (cgo)
	_ "modernc.org/sqlite"          // "sqlite" driver (pure Go)
)

// Supported database/sql driver names.
const (
	DriverModernc = "sqlite"
	DriverMattn   = "sqlite3"
)

// SQLiteStoreConfig configures the SQLite cold tier.
type SQLiteStoreConfig struct {
	// Driver is "sqlite" (modernc.org/sqlite) or "sqlite3" (mattn/go-sqlite3).
	// Default: "sqlite"
	Driver string

	// Path is the database file. Parent directories are created.
	Path string

	// MaxOpenConns bounds the connection pool. WAL mode allows concurrent
	// readers alongside the single writer.
	// Default: 10
	MaxOpenConns int

	// BusyTimeout is how long to wait for locks before failing.
	// Default: 5 seconds
	BusyTimeout time.Duration

	// CheckpointInterval is how often to checkpoint the WAL.
	// Default: 5 minutes
	CheckpointInterval time.Duration
}

// SQLiteStore implements ColdStore as a blob table in SQLite. Each row holds
// the serialized entry, its metadata as JSON and an indexed expiry used by
// Prune.
type SQLiteStore struct {
	db     *sql.DB
	driver string
	path   string

	getStmt    *sql.Stmt
	putStmt    *sql.Stmt
	deleteStmt *sql.Stmt
	pruneStmt  *sql.Stmt

	checkpointInterval time.Duration
	done               chan struct{}
	closeOnce          sync.Once
}

// NewSQLiteStore opens (creating if needed) the cold tier database.
func NewSQLiteStore(cfg SQLiteStoreConfig) (*SQLiteStore, error) {
	if cfg.Path == "" {
		return nil, fmt.Errorf("db path cannot be empty")
	}
	if cfg.Driver == "" {
		cfg.Driver = DriverModernc
	}
	if cfg.MaxOpenConns <= 0 {
		cfg.MaxOpenConns = 10
	}
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}
	if cfg.CheckpointInterval <= 0 {
		cfg.CheckpointInterval = 5 * time.Minute
	}

	dsn, err := buildDSN(cfg)
	if err != nil {
		return nil, err
	}

	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxOpenConns)
	db.SetConnMaxLifetime(0)

	s := &SQLiteStore{
		db:                 db,
		driver:             cfg.Driver,
		path:               cfg.Path,
		checkpointInterval: cfg.CheckpointInterval,
		done:               make(chan struct{}),
	}

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	if err := s.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to prepare statements: %w", err)
	}

	go s.checkpointLoop()

	return s, nil
}

// buildDSN enables WAL and the busy timeout using each driver's own syntax.
func buildDSN(cfg SQLiteStoreConfig) (string, error) {
	ms := cfg.BusyTimeout.Milliseconds()

	switch cfg.Driver {
	case DriverModernc:
		return fmt.Sprintf("file:%s?_pragma=busy_timeout(%d)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)",
			cfg.Path, ms), nil
	case DriverMattn:
		return fmt.Sprintf("file:%s?_busy_timeout=%d&_journal_mode=WAL&_synchronous=NORMAL",
			cfg.Path, ms), nil
	default:
		return "", fmt.Errorf("unsupported sqlite driver %q (valid: %s, %s)", cfg.Driver, DriverModernc, DriverMattn)
	}
}

func (s *SQLiteStore) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS cache_blobs (
		key TEXT PRIMARY KEY,
		data BLOB NOT NULL,
		metadata TEXT NOT NULL DEFAULT '{}',
		expires_at INTEGER NOT NULL DEFAULT 0,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_cache_blobs_expires_at ON cache_blobs(expires_at) WHERE expires_at > 0;
	`

	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) prepareStatements() error {
	var err error

	s.getStmt, err = s.db.Prepare(`SELECT data, metadata FROM cache_blobs WHERE key = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare get statement: %w", err)
	}

	s.putStmt, err = s.db.Prepare(`
		INSERT INTO cache_blobs (key, data, metadata, expires_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (key) DO UPDATE SET
			data = excluded.data,
			metadata = excluded.metadata,
			expires_at = excluded.expires_at,
			updated_at = excluded.updated_at
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare put statement: %w", err)
	}

	s.deleteStmt, err = s.db.Prepare(`DELETE FROM cache_blobs WHERE key = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete statement: %w", err)
	}

	s.pruneStmt, err = s.db.Prepare(`DELETE FROM cache_blobs WHERE expires_at > 0 AND expires_at <= ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare prune statement: %w", err)
	}

	return nil
}

// Get loads the blob stored under key.
func (s *SQLiteStore) Get(ctx context.Context, key string) (*Blob, bool, error) {
	if s.isClosed() {
		return nil, false, ErrClosed
	}

	var (
		data     []byte
		metadata string
	)
	err := s.getStmt.QueryRowContext(ctx, key).Scan(&data, &metadata)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to load blob: %w", err)
	}

	blob := &Blob{Data: data}
	if err := json.Unmarshal([]byte(metadata), &blob.Metadata); err != nil {
		return nil, false, fmt.Errorf("failed to decode blob metadata: %w", err)
	}

	return blob, true, nil
}

// Put upserts the blob stored under key.
func (s *SQLiteStore) Put(ctx context.Context, key string, data []byte, metadata map[string]string) error {
	if key == "" {
		return fmt.Errorf("key cannot be empty")
	}
	if s.isClosed() {
		return ErrClosed
	}

	if metadata == nil {
		metadata = map[string]string{}
	}
	metaJSON, err := json.Marshal(metadata)
	if err != nil {
		return fmt.Errorf("failed to encode blob metadata: %w", err)
	}

	var expiresAt int64
	if t, ok := (&Blob{Metadata: metadata}).ExpiresAt(); ok {
		expiresAt = t.UnixMilli()
	}

	_, err = s.putStmt.ExecContext(ctx, key, data, string(metaJSON), expiresAt, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to save blob: %w", err)
	}

	return nil
}

// Delete removes the blob stored under key.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	if s.isClosed() {
		return ErrClosed
	}

	if _, err := s.deleteStmt.ExecContext(ctx, key); err != nil {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}

// Prune deletes blobs that expired at or before now.
func (s *SQLiteStore) Prune(ctx context.Context, now time.Time) (int, error) {
	if s.isClosed() {
		return 0, ErrClosed
	}

	res, err := s.pruneStmt.ExecContext(ctx, now.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune blobs: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned blobs: %w", err)
	}
	return int(n), nil
}

// Count returns the number of stored blobs.
func (s *SQLiteStore) Count(ctx context.Context) (int, error) {
	if s.isClosed() {
		return 0, ErrClosed
	}

	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM cache_blobs`).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count blobs: %w", err)
	}
	return n, nil
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	if s.isClosed() {
		return ErrClosed
	}
	return s.db.PingContext(ctx)
}

// Driver returns the database/sql driver name in use.
func (s *SQLiteStore) Driver() string {
	return s.driver
}

// Close checkpoints the WAL and closes the database. Safe to call more than once.
func (s *SQLiteStore) Close() error {
	var closeErr error

	s.closeOnce.Do(func() {
		close(s.done)

		for _, stmt := range []*sql.Stmt{s.getStmt, s.putStmt, s.deleteStmt, s.pruneStmt} {
			if stmt != nil {
				stmt.Close()
			}
		}

		_, _ = s.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)")
		closeErr = s.db.Close()
	})

	return closeErr
}

func (s *SQLiteStore) isClosed() bool {
	select {
	case <-s.done:
		return true
	default:
		return false
	}
}

func (s *SQLiteStore) checkpointLoop() {
	ticker := time.NewTicker(s.checkpointInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_, _ = s.db.Exec("PRAGMA wal_checkpoint(PASSIVE)")
		case <-s.done:
			return
		}
	}
}
