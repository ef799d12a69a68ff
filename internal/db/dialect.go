package db

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Dialect captures the per-engine differences the stores care about.
type Dialect struct {
	Driver      string
	Placeholder squirrel.PlaceholderFormat
	migrations  string
}

var (
	SQLite   = Dialect{Driver: "sqlite3", Placeholder: squirrel.Question, migrations: "migrations/sqlite"}
	Postgres = Dialect{Driver: "postgres", Placeholder: squirrel.Dollar, migrations: "migrations/postgres"}
)

// DialectFor returns the dialect for a database/sql driver name.
func DialectFor(driver string) (Dialect, error) {
	switch strings.ToLower(driver) {
	case "sqlite3", "sqlite", "":
		return SQLite, nil
	case "postgres", "postgresql":
		return Postgres, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver: %q", driver)
	}
}

// DSN adds the connection parameters the dialect relies on.
func (d Dialect) DSN(dsn string) string {
	if d.Driver != SQLite.Driver {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "_busy_timeout=5000&_foreign_keys=on&_journal_mode=WAL&_synchronous=NORMAL"
}

func (d Dialect) configure(db *sql.DB) {
	if d.Driver == SQLite.Driver {
		// Single writer; also keeps :memory: databases on one connection.
		db.SetMaxOpenConns(1)
		return
	}
	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(time.Minute)
}
