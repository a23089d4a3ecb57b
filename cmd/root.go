package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"trade-sync/internal/config"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// errDegraded marks a run that finished but left at least one entity type unconverged.
// The report already says which, so Execute only sets the exit status.
var errDegraded = errors.New("one or more entity types did not converge")

var (
	cfgFile  string
	progress bool
)

var RootCmd = &cobra.Command{
	Use:   "trade-sync",
	Short: "Reconcile trade tables from SQL Server into PostgreSQL",
	Long: `
  _____ ____      _    ____  _____      ______   ___   _  ____ 
 |_   _|  _ \    / \  |  _ \| ____|    / ___\ \ / / \ | |/ ___|
   | | | |_) |  / _ \ | | | |  _| _____\___ \ V /|  \| | |    
   | | |  _ <  / ___ \| |_| | |__|_____|___) || | | |\  | |___ 
   |_| |_| \_\/_/   \_\____/|_____|    |____/ |_| |_| \_|\____|

TRADE SYNC 🔁 - One-way, insert-only reconciliation of trade tables.

Rows whose primary key is missing from the target are copied from the
read-only source. Existing target rows are never updated or deleted.
`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSync,
}

// Execute runs the root command and exits non-zero when the run failed or degraded.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := RootCmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, errDegraded) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		stop()
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	flags := RootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default is ./trade-sync.yaml)")
	flags.Int("batch-size", 1000, "Rows per insert batch")
	flags.StringSliceP("entities", "e", nil, "Entity types to sync (comma-separated, default all)")
	flags.Bool("include-cash", false, "Also sync cash transactions")
	flags.String("log-file", "sync.log", "Log file path (empty disables the file)")
	flags.String("log-level", "info", "Log level (debug, info, warn, error)")
	flags.Duration("connect-timeout", 30*time.Second, "Connection establishment timeout")

	RootCmd.Flags().Bool("dry-run", false, "Report missing rows without writing to the target")
	RootCmd.Flags().BoolVar(&progress, "progress", false, "Show per-entity insert progress bars")

	bind := map[string]string{
		config.KeyBatchSize:       "batch-size",
		config.KeyEntities:        "entities",
		config.KeyIncludeOptional: "include-cash",
		config.KeyLogFile:         "log-file",
		config.KeyLogLevel:        "log-level",
		config.KeyConnectTimeout:  "connect-timeout",
	}
	for key, name := range bind {
		viper.BindPFlag(key, flags.Lookup(name))
	}
	viper.BindPFlag(config.KeyDryRun, RootCmd.Flags().Lookup("dry-run"))

	if err := config.Bind(viper.GetViper()); err != nil {
		panic(err)
	}
}

// initConfig reads in a .env file, the config file and ENV variables if set.
func initConfig() {
	// A missing .env is fine; real environment variables win over it.
	_ = godotenv.Load()

	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// 1. Executable Directory (Priority 1)
		ex, err := os.Executable()
		if err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}

		// 2. Current Directory (Priority 2)
		viper.AddConfigPath(".")

		viper.SetConfigName("trade-sync")
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	} else if cfgFile != "" {
		fmt.Fprintln(os.Stderr, "Error reading config file:", err)
		os.Exit(1)
	}
}
