package db

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

var remoteSchemes = map[string]bool{
	"libsql": true,
	"http":   true,
	"https":  true,
	"ws":     true,
	"wss":    true,
}

// Driver picks the database/sql driver for a connection string, remote
// libsql urls go to libsql and everything else is treated as a sqlite file.
func Driver(connection string) string {
	u, err := url.Parse(connection)
	if err == nil && remoteSchemes[strings.ToLower(u.Scheme)] {
		return "libsql"
	}
	return "sqlite"
}

func isMemory(connection string) bool {
	return connection == ":memory:" || strings.Contains(connection, "mode=memory")
}

// OpenDB opens the history database and makes sure the schema exists.
func OpenDB(ctx context.Context, connection string) (*sql.DB, error) {
	if connection == "" {
		return nil, fmt.Errorf("a connection string was not specified")
	}

	driver := Driver(connection)
	db, err := sql.Open(driver, connection)
	if err != nil {
		return nil, err
	}

	if driver == "sqlite" {
		// see this stackoverflow post for information on why the following
		// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
		// it also keeps a `:memory:` database on a single connection.
		db.SetMaxOpenConns(1)
		if !isMemory(connection) {
			_, err = db.ExecContext(ctx, "PRAGMA journal_mode=WAL")
			if err != nil {
				db.Close()
				return nil, err
			}
		}
	}

	err = EnsureSchema(ctx, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}
