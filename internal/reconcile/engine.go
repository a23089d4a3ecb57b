// Package reconcile implements the one-way, insert-only reconciliation of
// entity tables from a read-only source store into a target store.
//
// For each entity type the engine resolves the primary keys present on both
// sides, fetches the source rows whose keys are missing from the target,
// inserts them in batches inside one target transaction (a key collision is a
// no-op), commits, and re-counts the target table to check convergence.
package reconcile

import (
	"context"
	"fmt"
	"time"

	"trade-sync/internal/entity"

	"github.com/rs/zerolog"
)

// DefaultBatchSize is the number of rows inserted per batch when none is configured.
const DefaultBatchSize = 1000

// Options tunes an Engine.
type Options struct {
	BatchSize int
	// DryRun stops after the missing set is computed; nothing is fetched or written.
	DryRun bool
	// OnBatch, if set, is called after each inserted batch with rows written so far and rows to write.
	OnBatch func(spec entity.Spec, done, total int)
}

// Engine reconciles entity types one at a time.
type Engine struct {
	connector Connector
	opts      Options
	log       zerolog.Logger
}

// NewEngine returns an Engine using c to open store sessions.
func NewEngine(c Connector, opts Options, log zerolog.Logger) *Engine {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	return &Engine{connector: c, opts: opts, log: log}
}

// Run syncs specs sequentially. A failing entity type is recorded and does not
// stop the ones after it.
func (e *Engine) Run(ctx context.Context, specs []entity.Spec) Report {
	report := Report{Started: time.Now()}
	for _, spec := range specs {
		report.Results = append(report.Results, e.Sync(ctx, spec))
	}
	report.Finished = time.Now()
	return report
}

// Sync reconciles one entity type end to end. Errors are reported in the
// result, never returned.
func (e *Engine) Sync(ctx context.Context, spec entity.Spec) Result {
	start := time.Now()
	res := Result{Entity: spec.Tag, State: StateStart}
	log := e.log.With().
		Str("entity", spec.Tag).
		Str("source_table", spec.SourceTable).
		Str("target_table", spec.TargetTable).
		Logger()

	log.Info().Msg("syncing entity")

	if err := e.sync(ctx, spec, &res, log); err != nil {
		res.Status = StatusFailed
		res.Err = err
		log.Error().
			Err(err).
			Str("state", string(res.State)).
			Int("source_count", res.SourceCount).
			Int("target_count", res.TargetCountBefore).
			Int("missing", res.MissingCount).
			Int("fetched", res.FetchedCount).
			Msg("entity sync failed")
	}

	res.Elapsed = time.Since(start)
	return res
}

func (e *Engine) sync(ctx context.Context, spec entity.Spec, res *Result, log zerolog.Logger) error {
	if err := spec.Validate(); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	src, err := e.connector.OpenSource(ctx)
	if err != nil {
		return err
	}
	defer closeStore(src, SideSource, log)

	tgt, err := e.connector.OpenTarget(ctx)
	if err != nil {
		return err
	}
	defer closeStore(tgt, SideTarget, log)

	// 1. Identity sets
	sourceIDs, err := src.IDs(ctx, spec.SourceTable, spec.SourceKey)
	if err != nil {
		return err
	}
	res.SourceCount = sourceIDs.Len()

	targetIDs, err := tgt.IDs(ctx, spec.TargetTable, spec.TargetKey)
	if err != nil {
		return err
	}
	res.TargetCountBefore = targetIDs.Len()
	res.State = StateIDsResolved
	log.Info().Int("source_count", res.SourceCount).Int("target_count", res.TargetCountBefore).Msg("identity sets resolved")

	// 2. Difference
	missing := sourceIDs.Difference(targetIDs)
	res.MissingCount = len(missing)
	res.State = StateDiffComputed
	log.Info().Int("missing", res.MissingCount).Msg("missing in target")

	if e.opts.DryRun {
		res.Status = StatusDryRun
		return nil
	}

	// 3. Fetch & load
	if len(missing) > 0 {
		rows, err := src.FetchRows(ctx, spec, missing)
		if err != nil {
			return err
		}
		res.FetchedCount = len(rows)
		res.State = StateFetched
		if len(rows) < len(missing) {
			log.Warn().Int("requested", len(missing)).Int("fetched", len(rows)).Msg("source rows vanished before fetch")
		}

		if err := e.load(ctx, tgt, spec, rows, res, log); err != nil {
			return err
		}
		log.Info().Int("inserted", res.InsertedCount).Msg("inserted missing rows")
	}
	res.State = StateCommitted

	// 4. Verification
	after, err := tgt.Count(ctx, spec.TargetTable)
	if err != nil {
		return err
	}
	res.TargetCountAfter = after
	res.State = StateVerified

	// Raw counts are compared, not key sets: stale extra target rows show up as a mismatch.
	if after == res.SourceCount {
		res.Status = StatusConverged
		log.Info().Int("target_count", after).Msg("exact match, all records synced")
	} else {
		res.Status = StatusMismatch
		log.Warn().Int("expected", res.SourceCount).Int("target_count", after).Msg("count mismatch after sync")
	}
	return nil
}

// load inserts rows in batches inside one transaction. Any batch failure rolls
// the whole transaction back.
func (e *Engine) load(ctx context.Context, tgt TargetStore, spec entity.Spec, rows []Row, res *Result, log zerolog.Logger) (err error) {
	tx, err := tgt.Begin(ctx)
	if err != nil {
		return err
	}

	done := false
	defer func() {
		if done {
			return
		}
		if rbErr := tx.Rollback(); rbErr != nil {
			log.Warn().Err(rbErr).Msg("rollback failed")
		}
	}()

	inserted := 0
	for start := 0; start < len(rows); start += e.opts.BatchSize {
		end := min(start+e.opts.BatchSize, len(rows))
		n, err := tx.InsertIgnore(ctx, spec, rows[start:end])
		if err != nil {
			return fmt.Errorf("batch rows %d-%d: %w", start+1, end, err)
		}
		inserted += n
		log.Debug().Int("batch_end", end).Int("total", len(rows)).Int("inserted", n).Msg("batch written")
		if e.opts.OnBatch != nil {
			e.opts.OnBatch(spec, end, len(rows))
		}
	}
	res.State = StateInserted

	if err := tx.Commit(); err != nil {
		done = true // a failed commit has already ended the transaction
		return err
	}
	done = true
	res.InsertedCount = inserted
	return nil
}

func closeStore(c interface{ Close() error }, side Side, log zerolog.Logger) {
	if err := c.Close(); err != nil {
		log.Warn().Err(err).Str("side", string(side)).Msg("failed to close connection")
	}
}
