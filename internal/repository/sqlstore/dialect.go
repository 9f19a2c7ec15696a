package sqlstore

import (
	"fmt"
	"strconv"
	"strings"
)

// Dialect captures the SQL differences between supported databases
type Dialect struct {
	Name     string
	schema   string
	numbered bool
}

var (
	// Postgres uses $n placeholders and SERIAL ids
	Postgres = Dialect{
		Name:     "postgres",
		numbered: true,
		schema: `
	CREATE TABLE IF NOT EXISTS clients (
		id SERIAL PRIMARY KEY,
		surname TEXT NOT NULL,
		firstname TEXT NOT NULL,
		fathers_name TEXT,
		birth_date DATE,
		phone_number TEXT,
		pasport TEXT,
		email TEXT,
		balance NUMERIC(12, 2)
	)`,
	}

	// SQLite uses ? placeholders and AUTOINCREMENT ids
	SQLite = Dialect{
		Name: "sqlite",
		schema: `
	CREATE TABLE IF NOT EXISTS clients (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		surname TEXT NOT NULL,
		firstname TEXT NOT NULL,
		fathers_name TEXT,
		birth_date DATE,
		phone_number TEXT,
		pasport TEXT,
		email TEXT,
		balance REAL
	)`,
	}
)

// DialectFor maps a database/sql driver name to its dialect
func DialectFor(driver string) (Dialect, error) {
	switch driver {
	case "pgx", "postgres", "postgresql":
		return Postgres, nil
	case "sqlite", "sqlite3":
		return SQLite, nil
	default:
		return Dialect{}, fmt.Errorf("unsupported database driver: %s", driver)
	}
}

// rebind rewrites ? placeholders into the dialect's form
func (d Dialect) rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
