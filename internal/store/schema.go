package store

import (
	"context"
	"database/sql"
	"strings"
)

// Version returns the server version banner.
func (h *handle) Version(ctx context.Context) (string, error) {
	var v sql.NullString
	if err := h.conn.QueryRowContext(ctx, h.d.VersionQuery()).Scan(&v); err != nil {
		return "", h.queryError("version", "", err)
	}
	return v.String, nil
}

// Columns lists the column names of table in ordinal order.
// A table that does not exist yields an empty list.
func (h *handle) Columns(ctx context.Context, table string) ([]string, error) {
	rows, err := h.conn.QueryContext(ctx, h.d.ColumnsQuery(), table)
	if err != nil {
		return nil, h.queryError("columns", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name sql.NullString
		if err := rows.Scan(&name); err != nil {
			return nil, h.queryError("columns", table, err)
		}
		if name.Valid {
			cols = append(cols, name.String)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, h.queryError("columns", table, err)
	}
	return cols, nil
}

// MissingColumns returns the entries of want that table does not have.
// Names are compared case-insensitively (Oracle stores them upper case).
func (h *handle) MissingColumns(ctx context.Context, table string, want []string) ([]string, error) {
	have, err := h.Columns(ctx, table)
	if err != nil {
		return nil, err
	}

	present := make(map[string]bool, len(have))
	for _, c := range have {
		present[strings.ToUpper(c)] = true
	}

	var missing []string
	for _, c := range want {
		if !present[strings.ToUpper(c)] {
			missing = append(missing, c)
		}
	}
	return missing, nil
}
