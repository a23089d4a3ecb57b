package dialect

import (
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"
)

type MysqlDialect struct{}

func (d *MysqlDialect) Name() string { return "mysql" }

func (d *MysqlDialect) SelectIDsQuery(table, key string) string {
	return selectIDs(table, key)
}

func (d *MysqlDialect) CountQuery(table string) string {
	return count(table)
}

func (d *MysqlDialect) FetchByIDsQuery(table string, cols []string, key string, n int) string {
	return fetchByIDs(table, cols, key, n, d.Placeholder)
}

// InsertIgnoreQuery uses a self-assignment on duplicate key instead of INSERT IGNORE,
// which would also downgrade unrelated errors (truncation, bad values) to warnings.
// A no-op update reports zero affected rows.
func (d *MysqlDialect) InsertIgnoreQuery(table string, cols []string, key string, rows int) string {
	vals := GenerateRowPlaceholders(rows, len(cols), d.Placeholder)
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s ON DUPLICATE KEY UPDATE %s = %s",
		table, strings.Join(cols, ", "), vals, key, key)
}

func (d *MysqlDialect) Placeholder(index int) string {
	return "?"
}

func (d *MysqlDialect) MaxParams() int {
	return 65535
}

// ReadOnlyDSN adds transaction_read_only, which the driver applies with SET on every new connection.
func (d *MysqlDialect) ReadOnlyDSN(dsn string) (string, error) {
	cfg, err := mysql.ParseDSN(dsn)
	if err != nil {
		return "", fmt.Errorf("invalid mysql dsn: %w", err)
	}
	if cfg.Params == nil {
		cfg.Params = map[string]string{}
	}
	cfg.Params["transaction_read_only"] = "1"
	return cfg.FormatDSN(), nil
}

func (d *MysqlDialect) ReadOnlySession() string {
	return "SET SESSION TRANSACTION READ ONLY"
}

func (d *MysqlDialect) VersionQuery() string {
	return "SELECT VERSION()"
}

func (d *MysqlDialect) ColumnsQuery() string {
	return `SELECT COLUMN_NAME FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = DATABASE() AND TABLE_NAME = ? ORDER BY ORDINAL_POSITION`
}
