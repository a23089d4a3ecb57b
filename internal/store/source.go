package store

import (
	"context"
	"database/sql"
	"sort"

	"trade-sync/internal/entity"
	"trade-sync/internal/reconcile"
)

// Source is a read-only session on the source store. It only ever issues SELECTs.
type Source struct {
	*handle
}

var _ reconcile.SourceStore = (*Source)(nil)

// FetchRows returns the source rows for ids ordered by primary key. The id
// list is split so no statement exceeds the dialect's parameter limit; chunks
// run in ascending key order, so the concatenated result is ordered too.
func (s *Source) FetchRows(ctx context.Context, spec entity.Spec, ids []int64) ([]reconcile.Row, error) {
	sorted := make([]int64, len(ids))
	copy(sorted, ids)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	cols := spec.SourceColumns()
	chunk := s.d.MaxParams()
	out := make([]reconcile.Row, 0, len(sorted))

	for start := 0; start < len(sorted); start += chunk {
		end := min(start+chunk, len(sorted))
		part := sorted[start:end]

		args := make([]any, len(part))
		for i, id := range part {
			args[i] = id
		}

		query := s.d.FetchByIDsQuery(spec.SourceTable, cols, spec.SourceKey, len(part))
		rows, err := s.conn.QueryContext(ctx, query, args...)
		if err != nil {
			return nil, s.queryError("fetch rows", spec.SourceTable, err)
		}
		got, err := scanRows(rows, len(cols))
		if err != nil {
			return nil, s.queryError("fetch rows", spec.SourceTable, err)
		}
		out = append(out, got...)
	}
	return out, nil
}

func scanRows(rows *sql.Rows, width int) ([]reconcile.Row, error) {
	defer rows.Close()

	var out []reconcile.Row
	for rows.Next() {
		vals := make([]any, width)
		ptrs := make([]any, width)
		for i := range vals {
			ptrs[i] = &vals[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		for i, v := range vals {
			vals[i] = normalizeValue(v)
		}
		out = append(out, reconcile.Row(vals))
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// normalizeValue turns driver byte slices into strings. SQL Server decimals and
// MySQL text arrive as []byte, which lib/pq would otherwise encode as bytea.
func normalizeValue(v any) any {
	if b, ok := v.([]byte); ok {
		return string(b)
	}
	return v
}
