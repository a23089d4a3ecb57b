package reconcile_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"trade-sync/internal/entity"
	"trade-sync/internal/reconcile"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newEngine(c reconcile.Connector, opts reconcile.Options) *reconcile.Engine {
	return reconcile.NewEngine(c, opts, zerolog.Nop())
}

func TestSync_InsertsMissingRows(t *testing.T) {
	c := newFakeConnector()
	c.source["tblWidget"] = rowsFor(1, 2, 3, 4, 5)
	c.target["widget"] = rowsFor(1, 3)

	res := newEngine(c, reconcile.Options{}).Sync(context.Background(), widgets)

	require.NoError(t, res.Err)
	assert.Equal(t, reconcile.StatusConverged, res.Status)
	assert.Equal(t, reconcile.StateVerified, res.State)
	assert.Equal(t, 5, res.SourceCount)
	assert.Equal(t, 2, res.TargetCountBefore)
	assert.Equal(t, 3, res.MissingCount)
	assert.Equal(t, 3, res.FetchedCount)
	assert.Equal(t, 3, res.InsertedCount)
	assert.Equal(t, 5, res.TargetCountAfter)

	assert.Equal(t, [][]int64{{2, 4, 5}}, c.fetched)
	assert.Equal(t, []int64{1, 2, 3, 4, 5}, c.target["widget"].ids())
	assert.Equal(t, 1, c.commits)
}

func TestSync_StaleTargetRowIsMismatch(t *testing.T) {
	// Counts are compared, not key sets: an extra target row is a mismatch
	// even though nothing needed to be inserted.
	c := newFakeConnector()
	c.source["tblWidget"] = rowsFor(1, 2)
	c.target["widget"] = rowsFor(1, 2, 3)

	res := newEngine(c, reconcile.Options{}).Sync(context.Background(), widgets)

	require.NoError(t, res.Err)
	assert.Equal(t, 0, res.MissingCount)
	assert.Equal(t, 0, res.InsertedCount)
	assert.Equal(t, 3, res.TargetCountAfter)
	assert.Equal(t, reconcile.StatusMismatch, res.Status)
	assert.Equal(t, reconcile.StateVerified, res.State)

	assert.Empty(t, c.fetched)
	assert.Equal(t, 0, c.begins)
}

func TestSync_Idempotent(t *testing.T) {
	c := newFakeConnector()
	c.source["tblWidget"] = rowsFor(testSeq(1, 40)...)
	c.target["widget"] = rowsFor(7, 8, 9)
	e := newEngine(c, reconcile.Options{BatchSize: 10})

	first := e.Sync(context.Background(), widgets)
	second := e.Sync(context.Background(), widgets)

	assert.Equal(t, reconcile.StatusConverged, first.Status)
	assert.Equal(t, 37, first.InsertedCount)
	assert.Equal(t, reconcile.StatusConverged, second.Status)
	assert.Equal(t, 0, second.MissingCount)
	assert.Equal(t, 0, second.InsertedCount)
	assert.Len(t, c.fetched, 1, "second run must not fetch")
}

func TestSync_ConvergesForAnySubset(t *testing.T) {
	tests := []struct {
		name   string
		source []int64
		target []int64
	}{
		{"empty both", nil, nil},
		{"empty target", testSeq(1, 10), nil},
		{"equal", testSeq(1, 10), testSeq(1, 10)},
		{"sparse", []int64{3, 17, 250, 1 << 40}, []int64{17}},
		{"gaps", testSeq(1, 100), []int64{2, 50, 99}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newFakeConnector()
			c.source["tblWidget"] = rowsFor(tt.source...)
			c.target["widget"] = rowsFor(tt.target...)

			res := newEngine(c, reconcile.Options{BatchSize: 7}).Sync(context.Background(), widgets)

			require.NoError(t, res.Err)
			assert.Equal(t, reconcile.StatusConverged, res.Status)
			assert.Equal(t, c.source["tblWidget"].ids(), c.target["widget"].ids())
		})
	}
}

func TestSync_BatchBoundariesAreInvisible(t *testing.T) {
	for _, batch := range []int{1, 3, 7, 1000} {
		for _, missing := range []int{0, 1, batch - 1, batch, batch + 1} {
			t.Run(fmt.Sprintf("batch=%d/missing=%d", batch, missing), func(t *testing.T) {
				c := newFakeConnector()
				c.source["tblWidget"] = rowsFor(testSeq(1, int64(missing)+5)...)
				c.target["widget"] = rowsFor(testSeq(1, 5)...)

				var sizes []int
				c.onInsert = func(n int) { sizes = append(sizes, n) }

				res := newEngine(c, reconcile.Options{BatchSize: batch}).Sync(context.Background(), widgets)

				require.NoError(t, res.Err)
				assert.Equal(t, reconcile.StatusConverged, res.Status)
				assert.Equal(t, missing, res.InsertedCount)
				assert.Equal(t, testSeq(1, int64(missing)+5), c.target["widget"].ids())

				total := 0
				for _, n := range sizes {
					assert.LessOrEqual(t, n, batch)
					total += n
				}
				assert.Equal(t, missing, total)
			})
		}
	}
}

func TestSync_KeyCollisionIsNoop(t *testing.T) {
	c := newFakeConnector()
	c.source["tblWidget"] = rowsFor(1, 2, 3, 4, 5)
	c.target["widget"] = rowsFor(1, 3)
	// A concurrent writer lands key 4 between resolution and insertion.
	c.beforeInsert = func(target table) {
		if _, ok := target[4]; !ok {
			target[4] = reconcile.Row{int64(4), "concurrent"}
		}
	}

	res := newEngine(c, reconcile.Options{}).Sync(context.Background(), widgets)

	require.NoError(t, res.Err)
	assert.Equal(t, 3, res.FetchedCount)
	assert.Equal(t, 2, res.InsertedCount)
	assert.Equal(t, 5, res.TargetCountAfter)
	assert.Equal(t, reconcile.StatusConverged, res.Status)
	assert.Equal(t, "concurrent", c.target["widget"][4][1], "existing row must not be overwritten")
}

func TestSync_VanishedSourceRowIsMismatchNotError(t *testing.T) {
	c := newFakeConnector()
	c.source["tblWidget"] = rowsFor(1, 2, 3, 4, 5)
	c.target["widget"] = rowsFor(1, 3)
	c.vanish = []int64{4}

	res := newEngine(c, reconcile.Options{}).Sync(context.Background(), widgets)

	require.NoError(t, res.Err)
	assert.Equal(t, 3, res.MissingCount)
	assert.Equal(t, 2, res.FetchedCount)
	assert.Equal(t, 2, res.InsertedCount)
	assert.Equal(t, 4, res.TargetCountAfter)
	assert.Equal(t, reconcile.StatusMismatch, res.Status)
}

func TestSync_FailedBatchRollsBackEverything(t *testing.T) {
	c := newFakeConnector()
	c.source["tblWidget"] = rowsFor(testSeq(1, 10)...)
	c.target["widget"] = rowsFor(1)
	c.failBatch = 3

	res := newEngine(c, reconcile.Options{BatchSize: 2}).Sync(context.Background(), widgets)

	assert.Equal(t, reconcile.StatusFailed, res.Status)
	assert.Equal(t, reconcile.StateFetched, res.State)
	assert.ErrorIs(t, res.Err, reconcile.ErrQuery)
	assert.ErrorIs(t, res.Err, errInjected)

	var qe *reconcile.QueryError
	require.ErrorAs(t, res.Err, &qe)
	assert.Equal(t, reconcile.SideTarget, qe.Side)

	assert.Equal(t, 0, c.commits)
	assert.Equal(t, 1, c.rollbacks)
	assert.Equal(t, 0, res.InsertedCount)
	assert.Equal(t, []int64{1}, c.target["widget"].ids(), "no batch may be committed")
	assert.Equal(t, 1, c.closedSources)
	assert.Equal(t, 1, c.closedTargets)
}

func TestSync_SourceIsOnlyRead(t *testing.T) {
	c := newFakeConnector()
	c.source["tblWidget"] = rowsFor(1, 2, 3)

	res := newEngine(c, reconcile.Options{}).Sync(context.Background(), widgets)

	require.NoError(t, res.Err)
	assert.Equal(t, []string{"ids", "fetch"}, c.sourceCalls)
	assert.Equal(t, rowsFor(1, 2, 3), c.source["tblWidget"])
}

func TestSync_ConnectionFailures(t *testing.T) {
	t.Run("source", func(t *testing.T) {
		c := newFakeConnector()
		c.sourceOpenErrs = []error{errors.New("login failed")}

		res := newEngine(c, reconcile.Options{}).Sync(context.Background(), widgets)

		assert.Equal(t, reconcile.StatusFailed, res.Status)
		assert.Equal(t, reconcile.StateStart, res.State)
		assert.ErrorIs(t, res.Err, reconcile.ErrConnection)
		assert.Equal(t, 0, c.openTargets)
	})

	t.Run("target closes source", func(t *testing.T) {
		c := newFakeConnector()
		c.targetOpenErr = errors.New("no route to host")

		res := newEngine(c, reconcile.Options{}).Sync(context.Background(), widgets)

		var ce *reconcile.ConnectionError
		require.ErrorAs(t, res.Err, &ce)
		assert.Equal(t, reconcile.SideTarget, ce.Side)
		assert.Equal(t, 1, c.openSources)
		assert.Equal(t, 1, c.closedSources)
	})
}

func TestSync_QueryFailureKeepsCounts(t *testing.T) {
	c := newFakeConnector()
	c.sourceIDsErr = errors.New("permission denied")

	res := newEngine(c, reconcile.Options{}).Sync(context.Background(), widgets)

	assert.Equal(t, reconcile.StatusFailed, res.Status)
	assert.ErrorIs(t, res.Err, reconcile.ErrQuery)
	assert.Contains(t, res.Err.Error(), "tblWidget")
	assert.Equal(t, 1, c.closedSources)
	assert.Equal(t, 1, c.closedTargets)
}

func TestSync_InvalidSpec(t *testing.T) {
	bad := widgets
	bad.Fields = []entity.Field{{Source: "Name", Target: "name"}}

	c := newFakeConnector()
	res := newEngine(c, reconcile.Options{}).Sync(context.Background(), bad)

	assert.Equal(t, reconcile.StatusFailed, res.Status)
	assert.Equal(t, 0, c.openSources)
}

func TestSync_DryRun(t *testing.T) {
	c := newFakeConnector()
	c.source["tblWidget"] = rowsFor(1, 2, 3)
	c.target["widget"] = rowsFor(1)

	res := newEngine(c, reconcile.Options{DryRun: true}).Sync(context.Background(), widgets)

	assert.Equal(t, reconcile.StatusDryRun, res.Status)
	assert.Equal(t, 2, res.MissingCount)
	assert.True(t, res.OK())
	assert.Empty(t, c.fetched)
	assert.Equal(t, 0, c.begins)
	assert.Equal(t, []int64{1}, c.target["widget"].ids())
}

func TestSync_ReportsBatchProgress(t *testing.T) {
	c := newFakeConnector()
	c.source["tblWidget"] = rowsFor(testSeq(1, 5)...)

	var progress []int
	opts := reconcile.Options{
		BatchSize: 2,
		OnBatch: func(spec entity.Spec, done, total int) {
			assert.Equal(t, "widget", spec.Tag)
			assert.Equal(t, 5, total)
			progress = append(progress, done)
		},
	}

	res := newEngine(c, opts).Sync(context.Background(), widgets)

	require.NoError(t, res.Err)
	assert.Equal(t, []int{2, 4, 5}, progress)
}

func TestRun_IsolatesEntityFailures(t *testing.T) {
	c := newFakeConnector()
	c.sourceOpenErrs = []error{errors.New("timeout"), nil}
	c.source["tblGadget"] = rowsFor(1, 2)

	report := newEngine(c, reconcile.Options{}).Run(context.Background(), []entity.Spec{widgets, gadgets})

	require.Len(t, report.Results, 2)
	assert.Equal(t, "widget", report.Results[0].Entity)
	assert.Equal(t, reconcile.StatusFailed, report.Results[0].Status)
	assert.Equal(t, "gadget", report.Results[1].Entity)
	assert.Equal(t, reconcile.StatusConverged, report.Results[1].Status)
	assert.False(t, report.Succeeded())
	assert.False(t, report.Finished.Before(report.Started))
}

func TestRun_CanceledContext(t *testing.T) {
	c := newFakeConnector()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report := newEngine(c, reconcile.Options{}).Run(ctx, []entity.Spec{widgets})

	require.Len(t, report.Results, 1)
	assert.ErrorIs(t, report.Results[0].Err, context.Canceled)
	assert.Equal(t, 0, c.openSources)
}

func TestReport_Succeeded(t *testing.T) {
	ok := reconcile.Report{Results: []reconcile.Result{
		{Status: reconcile.StatusConverged},
		{Status: reconcile.StatusDryRun},
	}}
	assert.True(t, ok.Succeeded())

	mismatch := reconcile.Report{Results: []reconcile.Result{
		{Status: reconcile.StatusConverged},
		{Status: reconcile.StatusMismatch},
	}}
	assert.False(t, mismatch.Succeeded())
}

func testSeq(from, to int64) []int64 {
	var ids []int64
	for i := from; i <= to; i++ {
		ids = append(ids, i)
	}
	return ids
}
