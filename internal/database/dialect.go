package database

import (
	"database/sql"
	"regexp"
	"strconv"
	"strings"
)

// Dialect defines the interface for database-specific operations
type Dialect interface {
	// DriverName returns the driver name for sql.Open
	DriverName() string

	// DSN returns the data source name for the connection
	DSN(config DialectConfig) string

	// RewriteQuery converts placeholder syntax if needed (e.g., ? to $1 for postgres)
	RewriteQuery(query string) string

	// SupportsLastInsertId returns true if the driver supports LastInsertId()
	SupportsLastInsertId() bool

	// ConfigureConnection applies any database-specific connection settings
	ConfigureConnection(db *sql.DB) error

	// MigrationsSubdir returns the subdirectory name for migrations (e.g., "sqlite", "postgres")
	MigrationsSubdir() string

	// CreateMigrationsTableQuery returns the SQL to create the migrations tracking table
	CreateMigrationsTableQuery() string

	// UpsertQuery returns an INSERT that overwrites the non-key columns when a
	// row with the same key columns already exists.
	UpsertQuery(table string, columns, keyColumns []string) string

	// InsertIgnoreQuery returns an INSERT that silently does nothing when the
	// row already exists.
	InsertIgnoreQuery(table string, columns []string) string

	// GuardedUpsertQuery is UpsertQuery restricted by guard: an existing row
	// is only updated when the incoming guard column is not older than the
	// stored one. A skipped update reports zero rows affected.
	GuardedUpsertQuery(table string, columns, keyColumns []string, guard UpsertGuard) string
}

// UpsertGuard configures GuardedUpsertQuery
type UpsertGuard struct {
	// Column holds a monotonic value such as an event timestamp
	Column string
	// Sticky lists boolean columns that stay true once stored as true
	Sticky []string
}

func (g UpsertGuard) isSticky(column string) bool {
	for _, c := range g.Sticky {
		if c == column {
			return true
		}
	}
	return false
}

// DialectConfig holds configuration for database connection
type DialectConfig struct {
	// For SQLite
	Path string

	// For PostgreSQL/MySQL
	URL string
}

// placeholderRegexp matches ? placeholders
var placeholderRegexp = regexp.MustCompile(`\?`)

// rewritePlaceholdersToNumbered converts ? placeholders to $1, $2, etc.
func rewritePlaceholdersToNumbered(query string) string {
	counter := 0
	return placeholderRegexp.ReplaceAllStringFunc(query, func(match string) string {
		counter++
		return "$" + strconv.Itoa(counter)
	})
}

func insertPrefix(verb, table string, columns []string) string {
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(columns)), ", ")
	return verb + " " + table + " (" + strings.Join(columns, ", ") + ") VALUES (" + placeholders + ")"
}

// nonKeyColumns returns columns minus keyColumns, preserving order
func nonKeyColumns(columns, keyColumns []string) []string {
	keys := make(map[string]bool, len(keyColumns))
	for _, k := range keyColumns {
		keys[k] = true
	}
	var rest []string
	for _, c := range columns {
		if !keys[c] {
			rest = append(rest, c)
		}
	}
	return rest
}

// onConflictUpsert builds the ON CONFLICT form shared by SQLite and PostgreSQL
func onConflictUpsert(table string, columns, keyColumns []string) string {
	var sets []string
	for _, c := range nonKeyColumns(columns, keyColumns) {
		sets = append(sets, c+" = excluded."+c)
	}
	query := insertPrefix("INSERT INTO", table, columns) +
		" ON CONFLICT (" + strings.Join(keyColumns, ", ") + ")"
	if len(sets) == 0 {
		return query + " DO NOTHING"
	}
	return query + " DO UPDATE SET " + strings.Join(sets, ", ")
}

// onConflictGuardedUpsert builds the guarded ON CONFLICT form shared by
// SQLite and PostgreSQL
func onConflictGuardedUpsert(table string, columns, keyColumns []string, guard UpsertGuard) string {
	var sets []string
	for _, c := range nonKeyColumns(columns, keyColumns) {
		if guard.isSticky(c) {
			sets = append(sets, c+" = "+table+"."+c+" OR excluded."+c)
			continue
		}
		sets = append(sets, c+" = excluded."+c)
	}
	return insertPrefix("INSERT INTO", table, columns) +
		" ON CONFLICT (" + strings.Join(keyColumns, ", ") + ")" +
		" DO UPDATE SET " + strings.Join(sets, ", ") +
		" WHERE " + table + "." + guard.Column + " <= excluded." + guard.Column
}
