package dialect

import (
	"fmt"
	"strings"
)

type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string { return "sqlite" }

func (d *SQLiteDialect) SelectIDsQuery(table, key string) string {
	return selectIDs(table, key)
}

func (d *SQLiteDialect) CountQuery(table string) string {
	return count(table)
}

func (d *SQLiteDialect) FetchByIDsQuery(table string, cols []string, key string, n int) string {
	return fetchByIDs(table, cols, key, n, d.Placeholder)
}

func (d *SQLiteDialect) InsertIgnoreQuery(table string, cols []string, key string, rows int) string {
	vals := GenerateRowPlaceholders(rows, len(cols), d.Placeholder)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s ON CONFLICT (%s) DO NOTHING",
		table, strings.Join(cols, ", "), vals, key)
}

func (d *SQLiteDialect) Placeholder(index int) string {
	return "?"
}

// MaxParams is SQLITE_MAX_VARIABLE_NUMBER for SQLite >= 3.32.
func (d *SQLiteDialect) MaxParams() int {
	return 32766
}

func (d *SQLiteDialect) ReadOnlyDSN(dsn string) (string, error) {
	return appendParam(dsn, "_pragma", "query_only(1)", "&"), nil
}

func (d *SQLiteDialect) ReadOnlySession() string {
	return "PRAGMA query_only = ON"
}

func (d *SQLiteDialect) VersionQuery() string {
	return "SELECT sqlite_version()"
}

func (d *SQLiteDialect) ColumnsQuery() string {
	return `SELECT name FROM pragma_table_info(?)`
}
