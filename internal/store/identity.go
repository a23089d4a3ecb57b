package store

import (
	"context"
	"database/sql"

	"trade-sync/internal/dialect"
	"trade-sync/internal/reconcile"
)

// Querier is the read side of *sql.DB, *sql.Conn and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// ResolveIdentitySet returns every primary-key value of table, read by a single
// statement. Errors are returned verbatim; there is no retry.
func ResolveIdentitySet(ctx context.Context, q Querier, d dialect.Dialect, table, key string) (reconcile.IdentitySet, error) {
	rows, err := q.QueryContext(ctx, d.SelectIDsQuery(table, key))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := reconcile.NewIdentitySet()
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids.Add(id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return ids, nil
}
