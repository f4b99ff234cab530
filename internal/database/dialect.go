package database

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ErrorKind classifies a driver error independently of the backend.
type ErrorKind int

const (
	KindOther ErrorKind = iota
	KindUnique
	KindForeignKey
	KindNotNull
	KindCheck
	KindConnection
)

func (k ErrorKind) String() string {
	switch k {
	case KindUnique:
		return "unique"
	case KindForeignKey:
		return "foreign_key"
	case KindNotNull:
		return "not_null"
	case KindCheck:
		return "check"
	case KindConnection:
		return "connection"
	}
	return "other"
}

// Dialect hides the differences between the SQL backends.
type Dialect interface {
	Name() string
	// Rebind rewrites "?" placeholders into the backend's syntax.
	Rebind(query string) string
	// Classify maps a driver error to an ErrorKind.
	Classify(err error) ErrorKind
}

var (
	SQLite   Dialect = sqliteDialect{}
	Postgres Dialect = postgresDialect{}
)

type sqliteDialect struct{}

func (sqliteDialect) Name() string { return "sqlite" }

func (sqliteDialect) Rebind(query string) string { return query }

// Classify inspects the extended result code of a modernc sqlite error.
// The message check covers drivers that report only the primary
// SQLITE_CONSTRAINT code.
func (sqliteDialect) Classify(err error) ErrorKind {
	if err == nil {
		return KindOther
	}
	if isConnectionError(err) {
		return KindConnection
	}

	var se *sqlite.Error
	if !errors.As(err, &se) {
		return KindOther
	}

	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return KindUnique
	case sqlite3.SQLITE_CONSTRAINT_FOREIGNKEY:
		return KindForeignKey
	case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
		return KindNotNull
	case sqlite3.SQLITE_CONSTRAINT_CHECK:
		return KindCheck
	}

	if se.Code()&0xff == sqlite3.SQLITE_CONSTRAINT {
		msg := se.Error()
		switch {
		case strings.Contains(msg, "UNIQUE constraint failed"):
			return KindUnique
		case strings.Contains(msg, "FOREIGN KEY constraint failed"):
			return KindForeignKey
		case strings.Contains(msg, "NOT NULL constraint failed"):
			return KindNotNull
		case strings.Contains(msg, "CHECK constraint failed"):
			return KindCheck
		}
	}
	return KindOther
}

type postgresDialect struct{}

func (postgresDialect) Name() string { return "postgres" }

// Rebind replaces each "?" with $1, $2, ... in order. Queries in this
// repository never contain a literal question mark.
func (postgresDialect) Rebind(query string) string {
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

// Classify maps SQLSTATE codes of a *pgconn.PgError.
// https://www.postgresql.org/docs/current/errcodes-appendix.html
func (postgresDialect) Classify(err error) ErrorKind {
	if err == nil {
		return KindOther
	}
	if isConnectionError(err) {
		return KindConnection
	}

	var connErr *pgconn.ConnectError
	if errors.As(err, &connErr) {
		return KindConnection
	}

	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return KindOther
	}

	switch pgErr.Code {
	case "23505":
		return KindUnique
	case "23503":
		return KindForeignKey
	case "23502":
		return KindNotNull
	case "23514":
		return KindCheck
	}
	if strings.HasPrefix(pgErr.Code, "08") {
		return KindConnection
	}
	return KindOther
}

func isConnectionError(err error) bool {
	return errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone)
}
