package dialect

import (
	"fmt"
	"strings"
)

type OracleDialect struct{}

func (d *OracleDialect) Name() string { return "oracle" }

func (d *OracleDialect) SelectIDsQuery(table, key string) string {
	return selectIDs(table, key)
}

func (d *OracleDialect) CountQuery(table string) string {
	return count(table)
}

func (d *OracleDialect) FetchByIDsQuery(table string, cols []string, key string, n int) string {
	return fetchByIDs(table, cols, key, n, d.Placeholder)
}

// InsertIgnoreQuery merges a UNION ALL of bound rows and only inserts the unmatched keys.
func (d *OracleDialect) InsertIgnoreQuery(table string, cols []string, key string, rows int) string {
	selects := make([]string, rows)
	for r := 0; r < rows; r++ {
		fields := make([]string, len(cols))
		for i, c := range cols {
			fields[i] = fmt.Sprintf("%s %s", d.Placeholder(r*len(cols)+i), c)
		}
		selects[r] = "SELECT " + strings.Join(fields, ", ") + " FROM dual"
	}

	srcCols := make([]string, len(cols))
	for i, c := range cols {
		srcCols[i] = "s." + c
	}

	return fmt.Sprintf("MERGE INTO %s d USING (%s) s ON (d.%s = s.%s) WHEN NOT MATCHED THEN INSERT (%s) VALUES (%s)",
		table,
		strings.Join(selects, " UNION ALL "),
		key, key,
		strings.Join(cols, ", "),
		strings.Join(srcCols, ", "))
}

func (d *OracleDialect) Placeholder(index int) string {
	// Oracle uses :1, :2, etc. (1-based index)
	return fmt.Sprintf(":%d", index+1)
}

// MaxParams is bounded by the 1000 element limit of an IN list.
func (d *OracleDialect) MaxParams() int {
	return 1000
}

func (d *OracleDialect) ReadOnlyDSN(dsn string) (string, error) {
	return dsn, nil
}

// ReadOnlySession opens a read-only transaction that lasts for the whole session,
// since the source connection never commits.
func (d *OracleDialect) ReadOnlySession() string {
	return "SET TRANSACTION READ ONLY"
}

func (d *OracleDialect) VersionQuery() string {
	return "SELECT BANNER FROM V$VERSION WHERE ROWNUM = 1"
}

func (d *OracleDialect) ColumnsQuery() string {
	return `SELECT COLUMN_NAME FROM USER_TAB_COLUMNS WHERE TABLE_NAME = UPPER(:1) ORDER BY COLUMN_ID`
}
