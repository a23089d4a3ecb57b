package store

import (
	"context"
	"database/sql"
	"fmt"

	"trade-sync/internal/dialect"
	"trade-sync/internal/entity"
	"trade-sync/internal/reconcile"
)

// Target is a read-write session on the target store.
type Target struct {
	*handle
}

var _ reconcile.TargetStore = (*Target)(nil)

// Begin starts the write transaction for one entity type.
func (t *Target) Begin(ctx context.Context) (reconcile.TargetTx, error) {
	tx, err := t.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, t.queryError("begin", "", err)
	}
	return &Tx{tx: tx, h: t.handle}, nil
}

// Tx is a target write transaction.
type Tx struct {
	tx *sql.Tx
	h  *handle
}

// InsertIgnore writes rows with the dialect's ignore-on-key-conflict insert.
// Rows are packed into multi-row statements bounded by the parameter limit.
func (x *Tx) InsertIgnore(ctx context.Context, spec entity.Spec, rows []reconcile.Row) (int, error) {
	cols := spec.TargetColumns()
	per := dialect.RowsPerStatement(x.h.d, len(cols))
	inserted := 0

	for start := 0; start < len(rows); start += per {
		end := min(start+per, len(rows))
		part := rows[start:end]

		args := make([]any, 0, len(part)*len(cols))
		for _, r := range part {
			if len(r) != len(cols) {
				return inserted, x.h.queryError("insert", spec.TargetTable,
					fmt.Errorf("row has %d values, want %d", len(r), len(cols)))
			}
			args = append(args, r...)
		}

		query := x.h.d.InsertIgnoreQuery(spec.TargetTable, cols, spec.TargetKey, len(part))
		res, err := x.tx.ExecContext(ctx, query, args...)
		if err != nil {
			return inserted, x.h.queryError("insert", spec.TargetTable, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return inserted, x.h.queryError("insert", spec.TargetTable, err)
		}
		inserted += int(n)
	}
	return inserted, nil
}

func (x *Tx) Commit() error {
	if err := x.tx.Commit(); err != nil {
		return x.h.queryError("commit", "", err)
	}
	return nil
}

func (x *Tx) Rollback() error {
	return x.tx.Rollback()
}
