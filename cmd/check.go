package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"trade-sync/internal/entity"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Test both connections and inspect the entity tables",
	Long: `Connects to the source (read-only) and the target, prints each server
version, counts every selected entity table and reports mapped columns
missing on either side. Nothing is written.`,
	RunE: runCheck,
}

func init() {
	RootCmd.AddCommand(checkCmd)
}

// inspector is what check needs from an open store session.
type inspector interface {
	Version(ctx context.Context) (string, error)
	Count(ctx context.Context, table string) (int, error)
	MissingColumns(ctx context.Context, table string, want []string) ([]string, error)
	Close() error
}

// checkTable is one table to inspect on one side.
type checkTable struct {
	entity  string
	table   string
	columns []string
}

func runCheck(cmd *cobra.Command, args []string) error {
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

	ctx := cmd.Context()
	var srcTables, tgtTables []checkTable
	for _, s := range specs {
		srcTables = append(srcTables, checkTable{s.Tag, s.SourceTable, s.SourceColumns()})
		tgtTables = append(tgtTables, checkTable{s.Tag, s.TargetTable, s.TargetColumns()})
	}

	srcOK := checkSide(ctx, out.Writer, out.Logger, "Source", describe(cfg.Source), func() (inspector, error) {
		return connector.ConnectSource(ctx)
	}, srcTables)
	tgtOK := checkSide(ctx, out.Writer, out.Logger, "Target", describe(cfg.Target), func() (inspector, error) {
		return connector.ConnectTarget(ctx)
	}, tgtTables)

	if !srcOK || !tgtOK {
		return errDegraded
	}
	fmt.Fprintln(out.Writer, "\n✅ All checks passed")
	return nil
}

// checkSide connects, then inspects every table. It reports whether everything passed.
func checkSide(ctx context.Context, w io.Writer, log zerolog.Logger, side, endpoint string, connect func() (inspector, error), tables []checkTable) bool {
	fmt.Fprintf(w, "\n🔌 %s: %s\n", side, endpoint)

	in, err := connect()
	if err != nil {
		fmt.Fprintf(w, "[!] connection failed: %s\n", err)
		log.Error().Err(err).Str("side", strings.ToLower(side)).Msg("connection check failed")
		return false
	}
	defer in.Close()

	ok := true
	version, err := in.Version(ctx)
	if err != nil {
		fmt.Fprintf(w, "[!] version query failed: %s\n", err)
		ok = false
	} else {
		fmt.Fprintf(w, "[✓] connected: %s\n", truncate(version, 50))
	}

	for _, t := range tables {
		n, err := in.Count(ctx, t.table)
		if err != nil {
			fmt.Fprintf(w, "[!] %-18s %s: %s\n", t.entity, t.table, err)
			ok = false
			continue
		}

		missing, err := in.MissingColumns(ctx, t.table, t.columns)
		switch {
		case err != nil:
			fmt.Fprintf(w, "[!] %-18s %s: %d rows, column check failed: %s\n", t.entity, t.table, n, err)
			ok = false
		case len(missing) > 0:
			fmt.Fprintf(w, "[!] %-18s %s: %d rows, missing columns: %s\n", t.entity, t.table, n, strings.Join(missing, ", "))
			ok = false
		default:
			fmt.Fprintf(w, "[✓] %-18s %s: %d rows\n", t.entity, t.table, n)
		}
	}
	return ok
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
