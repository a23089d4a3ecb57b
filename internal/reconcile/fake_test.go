package reconcile_test

import (
	"context"
	"errors"
	"sort"

	"trade-sync/internal/entity"
	"trade-sync/internal/reconcile"
)

var widgets = entity.Spec{
	Tag:         "widget",
	SourceTable: "tblWidget",
	TargetTable: "widget",
	SourceKey:   "WidgetId",
	TargetKey:   "widget_id",
	Fields: []entity.Field{
		{Source: "WidgetId", Target: "widget_id"},
		{Source: "Name", Target: "name"},
	},
}

var gadgets = entity.Spec{
	Tag:         "gadget",
	SourceTable: "tblGadget",
	TargetTable: "gadget",
	SourceKey:   "GadgetId",
	TargetKey:   "gadget_id",
	Fields: []entity.Field{
		{Source: "GadgetId", Target: "gadget_id"},
		{Source: "Label", Target: "label"},
	},
}

type table map[int64]reconcile.Row

func rowsFor(ids ...int64) table {
	t := table{}
	for _, id := range ids {
		t[id] = reconcile.Row{id, "row"}
	}
	return t
}

func (t table) ids() []int64 {
	var ids []int64
	for id := range t {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// fakeConnector serves in-memory tables keyed by table name.
type fakeConnector struct {
	source map[string]table
	target map[string]table

	sourceOpenErrs []error // consumed one per OpenSource call
	targetOpenErr  error
	sourceIDsErr   error

	vanish       []int64            // deleted from the source between resolve and fetch
	beforeInsert func(target table) // runs before every InsertIgnore, outside the tx
	failBatch    int                // 1-based InsertIgnore call that fails
	onInsert     func(rows int)     // observes batch sizes

	sourceCalls   []string
	fetched       [][]int64
	begins        int
	commits       int
	rollbacks     int
	openSources   int
	closedSources int
	openTargets   int
	closedTargets int
}

func newFakeConnector() *fakeConnector {
	return &fakeConnector{source: map[string]table{}, target: map[string]table{}}
}

func (c *fakeConnector) OpenSource(ctx context.Context) (reconcile.SourceStore, error) {
	if len(c.sourceOpenErrs) > 0 {
		err := c.sourceOpenErrs[0]
		c.sourceOpenErrs = c.sourceOpenErrs[1:]
		if err != nil {
			return nil, &reconcile.ConnectionError{Side: reconcile.SideSource, Err: err}
		}
	}
	c.openSources++
	return &fakeSource{c: c}, nil
}

func (c *fakeConnector) OpenTarget(ctx context.Context) (reconcile.TargetStore, error) {
	if c.targetOpenErr != nil {
		return nil, &reconcile.ConnectionError{Side: reconcile.SideTarget, Err: c.targetOpenErr}
	}
	c.openTargets++
	return &fakeTarget{c: c}, nil
}

type fakeSource struct{ c *fakeConnector }

func (s *fakeSource) IDs(ctx context.Context, tbl, key string) (reconcile.IdentitySet, error) {
	s.c.sourceCalls = append(s.c.sourceCalls, "ids")
	if s.c.sourceIDsErr != nil {
		return nil, &reconcile.QueryError{Side: reconcile.SideSource, Op: "select ids", Table: tbl, Err: s.c.sourceIDsErr}
	}
	return reconcile.NewIdentitySet(s.c.source[tbl].ids()...), nil
}

func (s *fakeSource) FetchRows(ctx context.Context, spec entity.Spec, ids []int64) ([]reconcile.Row, error) {
	s.c.sourceCalls = append(s.c.sourceCalls, "fetch")
	s.c.fetched = append(s.c.fetched, append([]int64(nil), ids...))

	for _, id := range s.c.vanish {
		delete(s.c.source[spec.SourceTable], id)
	}

	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var out []reconcile.Row
	for _, id := range sorted {
		if r, ok := s.c.source[spec.SourceTable][id]; ok {
			out = append(out, append(reconcile.Row(nil), r...))
		}
	}
	return out, nil
}

func (s *fakeSource) Close() error {
	s.c.closedSources++
	return nil
}

type fakeTarget struct{ c *fakeConnector }

func (t *fakeTarget) IDs(ctx context.Context, tbl, key string) (reconcile.IdentitySet, error) {
	return reconcile.NewIdentitySet(t.c.target[tbl].ids()...), nil
}

func (t *fakeTarget) Count(ctx context.Context, tbl string) (int, error) {
	return len(t.c.target[tbl]), nil
}

func (t *fakeTarget) Begin(ctx context.Context) (reconcile.TargetTx, error) {
	t.c.begins++
	return &fakeTx{c: t.c, staged: table{}}, nil
}

func (t *fakeTarget) Close() error {
	t.c.closedTargets++
	return nil
}

// fakeTx stages inserts and applies them on commit.
type fakeTx struct {
	c      *fakeConnector
	staged table
	table  string
	calls  int
}

var errInjected = errors.New("injected failure")

func (x *fakeTx) InsertIgnore(ctx context.Context, spec entity.Spec, rows []reconcile.Row) (int, error) {
	x.calls++
	x.table = spec.TargetTable
	if x.c.target[spec.TargetTable] == nil {
		x.c.target[spec.TargetTable] = table{}
	}
	if x.c.beforeInsert != nil {
		x.c.beforeInsert(x.c.target[spec.TargetTable])
	}
	if x.c.onInsert != nil {
		x.c.onInsert(len(rows))
	}
	if x.c.failBatch == x.calls {
		return 0, &reconcile.QueryError{Side: reconcile.SideTarget, Op: "insert", Table: spec.TargetTable, Err: errInjected}
	}

	n := 0
	for _, r := range rows {
		id := r[0].(int64)
		if _, ok := x.c.target[spec.TargetTable][id]; ok {
			continue
		}
		if _, ok := x.staged[id]; ok {
			continue
		}
		x.staged[id] = r
		n++
	}
	return n, nil
}

func (x *fakeTx) Commit() error {
	x.c.commits++
	for id, r := range x.staged {
		x.c.target[x.table][id] = r
	}
	return nil
}

func (x *fakeTx) Rollback() error {
	x.c.rollbacks++
	x.staged = table{}
	return nil
}
