package store

import (
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"sync"

	// Both sqlite drivers register themselves at init; Options.Driver
	// selects which one Open uses.
	_ "github.com/mattn/go-sqlite3"
	_ "modernc.org/sqlite"

	"github.com/roach88/tabard/internal/sqlbuild"
)

// Driver names accepted by Open. DriverCGO is mattn/go-sqlite3, the
// default; DriverPure is the CGO-free modernc build for environments
// where cgo is unavailable.
const (
	DriverCGO  = "sqlite3"
	DriverPure = "sqlite"
)

// Options configures Open.
type Options struct {
	// Driver is the registered sql driver name. Empty means DriverCGO.
	Driver string

	// Path is the database file path, or a driver DSN when the operator
	// needs extra connection parameters.
	Path string

	// Database is the schema qualifier statements use. Empty or "main"
	// targets the primary schema directly; any other name is attached
	// as an alias for the same file, so statements read
	// <Database>.<table>.
	Database string

	// User and Token authenticate against databases created with the
	// driver's user-auth build. Both empty means no auth parameters are
	// added to the DSN.
	User  string
	Token string
}

// Gateway is the primary store: one connection, opened once, reused for
// every request.
type Gateway struct {
	db       *sql.DB
	database string

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Open establishes the single database connection and verifies it.
// Failures here are configuration failures: the caller is expected to
// treat them as startup-fatal, not retry.
//
// The connection is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//   - Foreign key enforcement
func Open(opts Options) (*Gateway, error) {
	driver := opts.Driver
	if driver == "" {
		driver = DriverCGO
	}
	if driver != DriverCGO && driver != DriverPure {
		return nil, fmt.Errorf("unknown database driver %q", driver)
	}
	if opts.Path == "" {
		return nil, fmt.Errorf("database path is required")
	}
	if opts.Token != "" && driver != DriverCGO {
		return nil, fmt.Errorf("database auth requires the %s driver", DriverCGO)
	}

	database := opts.Database
	if database == "" {
		database = "main"
	}
	if !sqlbuild.IsIdentifier(database) {
		return nil, fmt.Errorf("invalid database name %q", database)
	}

	db, err := sql.Open(driver, dsn(opts))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Verify the connection (and auth, for user-auth builds) up front.
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite supports one writer at a time; a single connection avoids
	// SQLITE_BUSY and keeps transactions serialized.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if database != "main" {
		if _, err := db.Exec("ATTACH DATABASE ? AS "+database, opts.Path); err != nil {
			db.Close()
			return nil, fmt.Errorf("attach database as %s: %w", database, err)
		}
	}

	return &Gateway{
		db:       db,
		database: database,
		locks:    make(map[string]*sync.Mutex),
	}, nil
}

// dsn assembles the driver DSN, appending user-auth parameters when a
// token is configured.
func dsn(opts Options) string {
	if opts.Token == "" {
		return opts.Path
	}
	sep := "?"
	if strings.Contains(opts.Path, "?") {
		sep = "&"
	}
	return opts.Path + sep +
		"_auth_user=" + url.QueryEscape(opts.User) +
		"&_auth_pass=" + url.QueryEscape(opts.Token)
}

// Database returns the schema qualifier statements should use.
func (g *Gateway) Database() string {
	return g.database
}

// Close closes the database connection.
func (g *Gateway) Close() error {
	if g.db == nil {
		return nil
	}
	return g.db.Close()
}

// DB returns the underlying sql.DB for direct queries. Use with caution;
// prefer Gateway methods when available.
func (g *Gateway) DB() *sql.DB {
	return g.db
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}
