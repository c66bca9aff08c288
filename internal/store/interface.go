package store

import "context"

// StoreState represents the initialization state of the datastore.
type StoreState int

const (
	StateMissing         StoreState = iota // File or database doesn't exist
	StateUninitialized                     // Reachable but no schema
	StateVersionMismatch                   // Schema exists but wrong version
	StateReady                             // Initialized and correct version
)

func (s StoreState) String() string {
	switch s {
	case StateMissing:
		return "missing"
	case StateUninitialized:
		return "uninitialized"
	case StateVersionMismatch:
		return "version-mismatch"
	case StateReady:
		return "ready"
	}
	return "unknown"
}

// Store defines the record datastore contract.
// Implementations must be safe for concurrent use.
type Store interface {
	// Ping verifies that a pooled connection can reach the backend
	Ping(ctx context.Context) error

	// Close releases the connection pool
	Close() error

	// Bootstrap creates tbl_test and schema_migrations if absent
	Bootstrap(ctx context.Context) error

	// CheckState returns the current state of the datastore
	CheckState(ctx context.Context) (StoreState, error)

	// GetSchemaVersion returns the current schema version from the database
	GetSchemaVersion(ctx context.Context) (string, error)

	// ListRecords returns every row of tbl_test
	ListRecords(ctx context.Context) ([]Record, error)

	// InsertRecord adds a row and returns it with its storage-assigned id
	InsertRecord(ctx context.Context, data string) (Record, error)
}
