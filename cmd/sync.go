package cmd

import (
	"time"

	"trade-sync/internal/entity"
	"trade-sync/internal/reconcile"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
)

func runSync(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	specs, err := entity.Select(cfg.Entities, cfg.IncludeOptional)
	if err != nil {
		return err
	}

	connector, err := newConnector(cfg)
	if err != nil {
		return err
	}

	out, err := openOutput(cfg)
	if err != nil {
		return err
	}
	defer out.Close()

	log := out.Logger
	log.Info().
		Str("source", describe(cfg.Source)).
		Str("target", describe(cfg.Target)).
		Int("batch_size", cfg.BatchSize).
		Bool("dry_run", cfg.DryRun).
		Strs("entities", tagsOf(specs)).
		Msg("🔁 Trade sync started")

	opts := reconcile.Options{BatchSize: cfg.BatchSize, DryRun: cfg.DryRun}

	var bars *progressBars
	if progress && !cfg.DryRun {
		bars = newProgressBars()
		opts.OnBatch = bars.onBatch
		uiprogress.Start()
	}

	report := reconcile.NewEngine(connector, opts, log).Run(cmd.Context(), specs)

	if bars != nil {
		uiprogress.Stop()
	}

	printSummary(out.Writer, report)

	log.Info().
		Time("started", report.Started).
		Time("finished", report.Finished).
		Str("elapsed", report.Finished.Sub(report.Started).Round(time.Millisecond).String()).
		Bool("success", report.Succeeded()).
		Msg("🏁 Trade sync finished")

	if !report.Succeeded() {
		return errDegraded
	}
	return nil
}

func tagsOf(specs []entity.Spec) []string {
	tags := make([]string, len(specs))
	for i, s := range specs {
		tags[i] = s.Tag
	}
	return tags
}

// progressBars keeps one bar per entity type, created on its first batch.
type progressBars struct {
	bars map[string]*uiprogress.Bar
}

func newProgressBars() *progressBars {
	return &progressBars{bars: make(map[string]*uiprogress.Bar)}
}

func (p *progressBars) onBatch(spec entity.Spec, done, total int) {
	bar, ok := p.bars[spec.Tag]
	if !ok {
		tag := spec.Tag
		bar = uiprogress.AddBar(total).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return tag + ": "
		})
		p.bars[tag] = bar
	}
	bar.Set(done)
}
