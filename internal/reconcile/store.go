package reconcile

import (
	"context"

	"trade-sync/internal/entity"
)

// SourceStore is read-only access to the authoritative store.
// It has no write path: nothing the engine holds can mutate the source.
type SourceStore interface {
	// IDs returns every primary-key value currently in table.
	IDs(ctx context.Context, table, key string) (IdentitySet, error)
	// FetchRows returns the full rows for ids, ordered by primary key ascending.
	// Ids that no longer exist are silently absent from the result.
	FetchRows(ctx context.Context, spec entity.Spec, ids []int64) ([]Row, error)
	Close() error
}

// TargetStore is read-write access to the store receiving rows.
type TargetStore interface {
	IDs(ctx context.Context, table, key string) (IdentitySet, error)
	Count(ctx context.Context, table string) (int, error)
	Begin(ctx context.Context) (TargetTx, error)
	Close() error
}

// TargetTx is the single write transaction used for one entity type.
type TargetTx interface {
	// InsertIgnore writes rows, treating a primary-key collision as a no-op.
	// It returns the number of rows actually inserted.
	InsertIgnore(ctx context.Context, spec entity.Spec, rows []Row) (int, error)
	Commit() error
	Rollback() error
}

// Connector opens a fresh pair of store sessions for each entity type.
type Connector interface {
	OpenSource(ctx context.Context) (SourceStore, error)
	OpenTarget(ctx context.Context) (TargetStore, error)
}
