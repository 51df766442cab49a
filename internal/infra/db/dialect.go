package db

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect selects the SQL flavour and driver for a relational repository.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect maps a configured backend name onto a Dialect.
func ParseDialect(name string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(name))); d {
	case DialectSQLite, DialectPostgres:
		return d, nil
	default:
		return "", fmt.Errorf("unsupported dialect %q", name)
	}
}

// DriverName returns the database/sql driver registered for the dialect.
func (d Dialect) DriverName() string {
	switch d {
	case DialectPostgres:
		return "pgx"
	default:
		return "sqlite"
	}
}

// Rebind rewrites '?' placeholders into the dialect's form.
// Queries must not contain literal question marks.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres {
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

// Placeholders returns n comma separated '?' placeholders for an IN list.
func Placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}
