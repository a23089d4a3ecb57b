package dialect

import "fmt"

// GetDialect returns the Dialect implementation for a database/sql driver name.
func GetDialect(driver string) (Dialect, error) {
	switch driver {
	case "postgres":
		return &PostgresDialect{}, nil
	case "sqlserver", "mssql":
		return &MSSQLDialect{}, nil
	case "oracle":
		return &OracleDialect{}, nil
	case "mysql":
		return &MysqlDialect{}, nil
	case "sqlite":
		return &SQLiteDialect{}, nil
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
}

// WithParamLimit caps the number of bind parameters d uses per statement.
// A limit <= 0 or above the dialect's own maximum returns d unchanged.
func WithParamLimit(d Dialect, limit int) Dialect {
	if limit <= 0 || limit >= d.MaxParams() {
		return d
	}
	return &limited{Dialect: d, limit: limit}
}

type limited struct {
	Dialect
	limit int
}

func (l *limited) MaxParams() int { return l.limit }

// Ensure interface implementation
var _ Dialect = (*MysqlDialect)(nil)
var _ Dialect = (*PostgresDialect)(nil)
var _ Dialect = (*MSSQLDialect)(nil)
var _ Dialect = (*OracleDialect)(nil)
var _ Dialect = (*SQLiteDialect)(nil)
