package sqlstore

// CurrentSchemaVersion is recorded in schema_migrations by Bootstrap.
const CurrentSchemaVersion = "1"

const (
	recordsTable    = "tbl_test"
	migrationsTable = "schema_migrations"
)

const (
	selectRecords = `SELECT id, data FROM tbl_test ORDER BY id`
	insertRecord  = `INSERT INTO tbl_test (data) VALUES (?)`
	selectVersion = `SELECT version FROM schema_migrations ORDER BY applied_at DESC, version DESC LIMIT 1`
)

// Dialect holds the statements that differ between backends.
type Dialect struct {
	// Name is the database/sql driver name.
	Name string

	createRecords    string
	createMigrations string
	insertVersion    string
	tableExists      string
	pragmas          []string

	// singleConn forces a pool of one connection.
	singleConn bool
}

var MySQL = Dialect{
	Name: "mysql",
	createRecords: `CREATE TABLE IF NOT EXISTS tbl_test (
    id INT AUTO_INCREMENT PRIMARY KEY,
    data VARCHAR(255)
)`,
	createMigrations: `CREATE TABLE IF NOT EXISTS schema_migrations (
    version VARCHAR(32) PRIMARY KEY,
    applied_at BIGINT NOT NULL
)`,
	insertVersion: `INSERT IGNORE INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
	tableExists:   `SELECT COUNT(*) FROM information_schema.tables WHERE table_schema = DATABASE() AND table_name = ?`,
}

// SQLite uses AUTOINCREMENT so deleted ids are never handed out again.
var SQLite = Dialect{
	Name: "sqlite",
	createRecords: `CREATE TABLE IF NOT EXISTS tbl_test (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    data VARCHAR(255)
)`,
	createMigrations: `CREATE TABLE IF NOT EXISTS schema_migrations (
    version TEXT PRIMARY KEY,
    applied_at INTEGER NOT NULL
)`,
	insertVersion: `INSERT OR IGNORE INTO schema_migrations (version, applied_at) VALUES (?, ?)`,
	tableExists:   `SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`,
	pragmas: []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	},
	singleConn: true,
}
