package dialect

import (
	"fmt"
	"net/url"
	"strings"
)

type PostgresDialect struct{}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) SelectIDsQuery(table, key string) string {
	return selectIDs(table, key)
}

func (d *PostgresDialect) CountQuery(table string) string {
	return count(table)
}

func (d *PostgresDialect) FetchByIDsQuery(table string, cols []string, key string, n int) string {
	return fetchByIDs(table, cols, key, n, d.Placeholder)
}

func (d *PostgresDialect) InsertIgnoreQuery(table string, cols []string, key string, rows int) string {
	// Only a primary-key collision is swallowed; any other constraint still fails the statement.
	vals := GenerateRowPlaceholders(rows, len(cols), d.Placeholder)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s ON CONFLICT (%s) DO NOTHING",
		table, strings.Join(cols, ", "), vals, key)
}

func (d *PostgresDialect) Placeholder(index int) string {
	return fmt.Sprintf("$%d", index+1)
}

func (d *PostgresDialect) MaxParams() int {
	return 65535
}

// ReadOnlyDSN sets default_transaction_read_only as a startup parameter.
// lib/pq forwards unknown keys to the server, for both URL and keyword DSNs.
func (d *PostgresDialect) ReadOnlyDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "postgres://") || strings.HasPrefix(dsn, "postgresql://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("invalid postgres url: %w", err)
		}
		q := u.Query()
		q.Set("default_transaction_read_only", "on")
		u.RawQuery = q.Encode()
		return u.String(), nil
	}
	return appendParam(dsn, "default_transaction_read_only", "on", " "), nil
}

func (d *PostgresDialect) ReadOnlySession() string {
	return "SET SESSION CHARACTERISTICS AS TRANSACTION READ ONLY"
}

func (d *PostgresDialect) VersionQuery() string {
	return "SELECT version()"
}

func (d *PostgresDialect) ColumnsQuery() string {
	return `SELECT column_name FROM information_schema.columns WHERE table_schema = current_schema() AND table_name = $1 ORDER BY ordinal_position`
}
