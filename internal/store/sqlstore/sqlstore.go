// Package sqlstore implements store.Store over database/sql with two
// dialects: an embedded sqlite file for local books and postgres for server
// deployments. A single code path serves both; queries are written with ?
// placeholders and rebound to $N for postgres. Timestamps are stored as
// RFC3339 text so both dialects scan identically.
package sqlstore

import (
	"database/sql"
	"embed"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"

	"github.com/gotchoices/sereus-bonum/internal/store"
)

// Dialect selects the SQL flavor and driver.
type Dialect string

const (
	Postgres Dialect = "postgres"
	SQLite   Dialect = "sqlite"
)

// SchemaFS holds the embedded migrations and seeds applied by the migrate
// manager before the store is handed out.
//
//go:embed migrations/*.sql seeds/*.sql
var SchemaFS embed.FS

// Store is the SQL-backed implementation of store.Store.
type Store struct {
	db      *sql.DB
	dialect Dialect
}

var _ store.Store = (*Store)(nil)

// Open connects with pool settings appropriate for the dialect. The sqlite
// file tolerates one writer, so its pool is a single connection.
func Open(dialect Dialect, dsn string) (*Store, error) {
	var driver string
	switch dialect {
	case Postgres:
		driver = "pgx"
	case SQLite:
		driver = "sqlite3"
	default:
		return nil, fmt.Errorf("sqlstore: unknown dialect %q", dialect)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, err
	}
	if dialect == SQLite {
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(50)
		db.SetMaxIdleConns(25)
		db.SetConnMaxLifetime(15 * time.Minute)
		db.SetConnMaxIdleTime(5 * time.Minute)
	}
	return &Store{db: db, dialect: dialect}, nil
}

// NewWithDB wraps an existing handle. Tests use it with sqlmock.
func NewWithDB(db *sql.DB, dialect Dialect) *Store {
	return &Store{db: db, dialect: dialect}
}

func (s *Store) Close() error { return s.db.Close() }

// DB exposes the handle for the readiness probe and the migrate manager.
func (s *Store) DB() *sql.DB { return s.db }

// Rebind rewrites ? placeholders to $1..$N for postgres; sqlite takes the
// query as written.
func Rebind(dialect Dialect, query string) string {
	if dialect != Postgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

func (s *Store) q(query string) string { return Rebind(s.dialect, query) }

// RebindFunc returns the rewrite for this dialect, for the migrate manager.
func RebindFunc(dialect Dialect) func(string) string {
	return func(q string) string { return Rebind(dialect, q) }
}

const timeLayout = time.RFC3339Nano

func fmtTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

// nullable maps "" to NULL for optional foreign keys.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}

func fromNull(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}
