package dialect

import (
	"fmt"
	"net/url"
	"strings"
)

type MSSQLDialect struct{}

// MSSQL Driver (go-mssqldb) prefers @p1, @p2 named parameters over ?

func (d *MSSQLDialect) Name() string { return "sqlserver" }

func (d *MSSQLDialect) SelectIDsQuery(table, key string) string {
	return selectIDs(table, key)
}

func (d *MSSQLDialect) CountQuery(table string) string {
	return count(table)
}

func (d *MSSQLDialect) FetchByIDsQuery(table string, cols []string, key string, n int) string {
	return fetchByIDs(table, cols, key, n, d.Placeholder)
}

// InsertIgnoreQuery has no ON CONFLICT clause to lean on, so rows whose key
// already exists are filtered with NOT EXISTS against a VALUES derived table.
func (d *MSSQLDialect) InsertIgnoreQuery(table string, cols []string, key string, rows int) string {
	colList := strings.Join(cols, ", ")
	vals := GenerateRowPlaceholders(rows, len(cols), d.Placeholder)
	return fmt.Sprintf("INSERT INTO %s (%s) SELECT %s FROM (VALUES %s) AS v (%s) WHERE NOT EXISTS (SELECT 1 FROM %s t WHERE t.%s = v.%s)",
		table, colList, colList, vals, colList, table, key, key)
}

func (d *MSSQLDialect) Placeholder(index int) string {
	return fmt.Sprintf("@p%d", index+1)
}

// MaxParams stays under the 2100 parameter limit of an RPC request.
func (d *MSSQLDialect) MaxParams() int {
	return 2000
}

func (d *MSSQLDialect) ReadOnlyDSN(dsn string) (string, error) {
	if strings.HasPrefix(dsn, "sqlserver://") {
		u, err := url.Parse(dsn)
		if err != nil {
			return "", fmt.Errorf("invalid sqlserver url: %w", err)
		}
		q := u.Query()
		q.Set("ApplicationIntent", "ReadOnly")
		u.RawQuery = q.Encode()
		return u.String(), nil
	}
	return appendParam(dsn, "ApplicationIntent", "ReadOnly", ";"), nil
}

func (d *MSSQLDialect) ReadOnlySession() string {
	return ""
}

func (d *MSSQLDialect) VersionQuery() string {
	return "SELECT @@VERSION"
}

func (d *MSSQLDialect) ColumnsQuery() string {
	return `SELECT COLUMN_NAME FROM INFORMATION_SCHEMA.COLUMNS WHERE TABLE_NAME = @p1 ORDER BY ORDINAL_POSITION`
}
