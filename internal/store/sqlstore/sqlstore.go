// Package sqlstore implements store.Store on database/sql for MySQL and SQLite.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/maloquacious/datacycle/internal/store"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

// DefaultPoolSize matches the connection limit of the usual MySQL client pools.
const DefaultPoolSize = 10

// DialectFor returns the dialect for a driver name.
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case MySQL.Name:
		return MySQL, nil
	case SQLite.Name:
		return SQLite, nil
	}
	return Dialect{}, fmt.Errorf("unsupported driver %q", driver)
}

// Options configures a Store.
type Options struct {
	Dialect        Dialect
	DSN            string
	PoolSize       int
	ExpectedSchema string
}

// Store implements store.Store over a pooled *sql.DB.
// Each operation checks out one connection for one statement.
type Store struct {
	opts Options
	db   *sql.DB
}

var _ store.Store = (*Store)(nil)

// New creates a new Store. Call Open before use.
func New(opts Options) *Store {
	if opts.PoolSize <= 0 {
		opts.PoolSize = DefaultPoolSize
	}
	if opts.ExpectedSchema == "" {
		opts.ExpectedSchema = CurrentSchemaVersion
	}
	return &Store{opts: opts}
}

// Open creates the connection pool. It does not require the backend to be
// reachable: MySQL connections are dialed lazily on first use.
func (s *Store) Open() error {
	db, err := sql.Open(s.opts.Dialect.Name, s.opts.DSN)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	poolSize := s.opts.PoolSize
	if s.opts.Dialect.singleConn {
		// SQLite only supports one writer at a time
		poolSize = 1
	}
	db.SetMaxOpenConns(poolSize)
	db.SetMaxIdleConns(poolSize)

	for _, pragma := range s.opts.Dialect.pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return fmt.Errorf("failed to set pragma %q: %w", pragma, err)
		}
	}

	s.db = db
	return nil
}

// Close closes the connection pool.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Ping checks out a connection and verifies the backend answers.
func (s *Store) Ping(ctx context.Context) error {
	if s.db == nil {
		return store.ErrNotOpened
	}
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	return nil
}

// Bootstrap creates tbl_test and schema_migrations if they are absent and
// records the schema version. Running it again is a no-op.
func (s *Store) Bootstrap(ctx context.Context) error {
	if s.db == nil {
		return store.ErrNotOpened
	}

	d := s.opts.Dialect
	if _, err := s.db.ExecContext(ctx, d.createRecords); err != nil {
		return fmt.Errorf("failed to create %s: %w", recordsTable, err)
	}
	if _, err := s.db.ExecContext(ctx, d.createMigrations); err != nil {
		return fmt.Errorf("failed to create %s: %w", migrationsTable, err)
	}
	if _, err := s.db.ExecContext(ctx, d.insertVersion, CurrentSchemaVersion, time.Now().Unix()); err != nil {
		return fmt.Errorf("failed to insert schema version: %w", err)
	}
	return nil
}

// CheckState returns the current state of the datastore.
func (s *Store) CheckState(ctx context.Context) (store.StoreState, error) {
	if s.db == nil {
		return store.StateMissing, store.ErrNotOpened
	}

	for _, table := range []string{migrationsTable, recordsTable} {
		ok, err := s.tableExists(ctx, table)
		if err != nil {
			return store.StateUninitialized, err
		}
		if !ok {
			return store.StateUninitialized, nil
		}
	}

	version, err := s.GetSchemaVersion(ctx)
	if err != nil {
		return store.StateUninitialized, fmt.Errorf("failed to get schema version: %w", err)
	}
	if version != s.opts.ExpectedSchema {
		return store.StateVersionMismatch, nil
	}
	return store.StateReady, nil
}

func (s *Store) tableExists(ctx context.Context, table string) (bool, error) {
	var count int
	if err := s.db.QueryRowContext(ctx, s.opts.Dialect.tableExists, table).Scan(&count); err != nil {
		return false, fmt.Errorf("failed to check %s table: %w", table, err)
	}
	return count > 0, nil
}

// GetSchemaVersion returns the most recently applied schema version,
// or "" if none has been recorded.
func (s *Store) GetSchemaVersion(ctx context.Context) (string, error) {
	if s.db == nil {
		return "", store.ErrNotOpened
	}

	var version string
	err := s.db.QueryRowContext(ctx, selectVersion).Scan(&version)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query schema version: %w", err)
	}
	return version, nil
}

// ListRecords returns all rows of tbl_test ordered by id.
// An empty table yields an empty, non-nil slice.
func (s *Store) ListRecords(ctx context.Context) ([]store.Record, error) {
	if s.db == nil {
		return nil, store.ErrNotOpened
	}

	rows, err := s.db.QueryContext(ctx, selectRecords)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer rows.Close()

	records := make([]store.Record, 0)
	for rows.Next() {
		var (
			r    store.Record
			data sql.NullString
		)
		if err := rows.Scan(&r.ID, &data); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		r.Data = data.String
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read records: %w", err)
	}
	return records, nil
}

// InsertRecord stores data and returns the record with its assigned id.
// Used only for out-of-band seeding.
func (s *Store) InsertRecord(ctx context.Context, data string) (store.Record, error) {
	if s.db == nil {
		return store.Record{}, store.ErrNotOpened
	}
	if err := store.ValidateData(data); err != nil {
		return store.Record{}, err
	}

	res, err := s.db.ExecContext(ctx, insertRecord, data)
	if err != nil {
		return store.Record{}, fmt.Errorf("failed to insert record: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return store.Record{}, fmt.Errorf("failed to read inserted id: %w", err)
	}
	return store.Record{ID: id, Data: data}, nil
}
