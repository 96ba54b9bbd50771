package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"
)

// Dialect identifies the SQL backend a connection talks to.
type Dialect string

const (
	DialectPostgres Dialect = "postgres"
	DialectSQLite   Dialect = "sqlite"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// Open connects to postgres when databaseURL is set, otherwise to the
// sqlite file at sqlitePath. The connection is pinged before returning.
func Open(ctx context.Context, databaseURL, sqlitePath string) (*sql.DB, Dialect, error) {
	var (
		conn    *sql.DB
		dialect Dialect
		err     error
	)
	if databaseURL != "" {
		conn, err = sql.Open("pgx", databaseURL)
		dialect = DialectPostgres
	} else {
		dsn := "file:" + filepath.Clean(sqlitePath) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
		conn, err = sql.Open("sqlite", dsn)
		dialect = DialectSQLite
	}
	if err != nil {
		return nil, "", fmt.Errorf("open %s: %w", dialect, err)
	}

	if dialect == DialectPostgres {
		conn.SetMaxOpenConns(10)
		conn.SetConnMaxLifetime(30 * time.Minute)
		conn.SetConnMaxIdleTime(5 * time.Minute)
	} else {
		// modernc sqlite serializes writers; a single connection avoids
		// SQLITE_BUSY under concurrent handlers.
		conn.SetMaxOpenConns(1)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := conn.PingContext(pingCtx); err != nil {
		_ = conn.Close()
		return nil, "", fmt.Errorf("ping %s: %w", dialect, err)
	}
	return conn, dialect, nil
}

// Migrate creates the schema by running the embedded goose migrations
// for the given dialect.
func Migrate(conn *sql.DB, dialect Dialect) error {
	sub, err := fs.Sub(migrationsFS, "migrations/"+string(dialect))
	if err != nil {
		return fmt.Errorf("migrations fs: %w", err)
	}
	goose.SetBaseFS(sub)
	defer goose.SetBaseFS(nil)

	gooseDialect := "postgres"
	if dialect == DialectSQLite {
		gooseDialect = "sqlite3"
	}
	if err := goose.SetDialect(gooseDialect); err != nil {
		return err
	}
	if err := goose.Up(conn, "."); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}
	return nil
}

// Reset drops all application tables (plus goose bookkeeping) and
// recreates them. Destroys existing data; only the initdb command
// calls it.
func Reset(ctx context.Context, conn *sql.DB, dialect Dialect) error {
	tables := []string{
		"delivery_coefficients",
		"contact_submissions",
		"delivery_calculations",
		"goose_db_version",
	}
	for _, t := range tables {
		if _, err := conn.ExecContext(ctx, "DROP TABLE IF EXISTS "+t); err != nil {
			return fmt.Errorf("drop %s: %w", t, err)
		}
	}
	return Migrate(conn, dialect)
}
