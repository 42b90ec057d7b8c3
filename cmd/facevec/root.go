package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/viant/facevec/config"
	"github.com/viant/facevec/engine"
	"github.com/viant/facevec/facestore"
	"github.com/viant/facevec/logging"
	"github.com/viant/facevec/postgres"
	"github.com/viant/facevec/vector"
)

// app carries state shared by all subcommands of one invocation.
type app struct {
	configPath string
	jsonOut    bool

	cfg    *config.Config
	logger *logging.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "facevec",
		Short: "Store face descriptors and match new ones against them",
		Long: `facevec keeps an append-only table of face descriptors (fixed-length
float64 vectors) and answers nearest-match queries against it.

Descriptors are passed as JSON arrays, either as an argument, with --file,
or on stdin. Settings come from --config, FACEVEC_* environment variables
(a .env file is loaded when present) and the flags below, in that order.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "Path to YAML config file")
	pf.BoolVar(&a.jsonOut, "json", false, "Output as JSON")
	pf.String("backend", "", "Storage backend: memory, sqlite or postgres")
	pf.String("dsn", "", "SQLite file path or PostgreSQL connection URL")
	pf.Float64("threshold", facestore.DefaultThreshold, "Maximum Euclidean distance for a match")
	pf.Int("dimension", 0, "Pin the descriptor length (0 = set by the first add)")
	pf.String("log-level", "", "Log level: debug, info, warn, error")
	pf.String("log-format", "", "Log format: text or json")

	root.AddCommand(
		newAddCmd(a),
		newCompareCmd(a),
		newListCmd(a),
		newMatchCmd(a),
		newExportCmd(a),
		newImportCmd(a),
		newStatsCmd(a),
	)
	return root
}

func (a *app) init(cmd *cobra.Command) error {
	// .env file is optional, don't fail if not found
	_ = godotenv.Load()

	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("backend") {
		cfg.Backend.Driver = mustGetString(cmd, "backend")
	}
	if flags.Changed("dsn") {
		cfg.Backend.DSN = mustGetString(cmd, "dsn")
	}
	if flags.Changed("threshold") {
		cfg.Threshold = mustGetFloat64(cmd, "threshold")
	}
	if flags.Changed("dimension") {
		cfg.Dimension = mustGetInt(cmd, "dimension")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level = mustGetString(cmd, "log-level")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format = mustGetString(cmd, "log-format")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	a.cfg = cfg
	a.logger = logger.WithBackend(cfg.Backend.Driver)
	return nil
}

// openTable opens the configured backend. It returns a nil Table for the
// memory driver.
func (a *app) openTable(ctx context.Context) (vector.Table, error) {
	switch a.cfg.Backend.Driver {
	case config.DriverMemory:
		return nil, nil
	case config.DriverSQLite:
		table, err := a.openSQLiteTable()
		if err != nil {
			return nil, err
		}
		return table, nil
	case config.DriverPostgres:
		table, err := postgres.Open(ctx, a.cfg.Backend)
		if err != nil {
			return nil, err
		}
		return table, nil
	default:
		return nil, fmt.Errorf("unknown backend driver %q", a.cfg.Backend.Driver)
	}
}

func (a *app) openSQLiteTable() (*vector.SQLiteTable, error) {
	db, err := engine.Open(a.cfg.Backend.DSN)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite %s: %w", a.cfg.Backend.DSN, err)
	}
	table, err := vector.NewNamedSQLiteTable(db, a.cfg.Backend.Table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return table, nil
}

func (a *app) openStore(ctx context.Context) (*facestore.Store, error) {
	table, err := a.openTable(ctx)
	if err != nil {
		return nil, err
	}
	s, err := facestore.Open(ctx, table,
		facestore.WithThreshold(a.cfg.Threshold),
		facestore.WithDimension(a.cfg.Dimension),
		facestore.WithLogger(a.logger),
	)
	if err != nil {
		if table != nil {
			table.Close()
		}
		return nil, err
	}
	return s, nil
}

// withStore opens the store, runs fn and closes the store, keeping the
// first error.
func (a *app) withStore(cmd *cobra.Command, fn func(ctx context.Context, s *facestore.Store) error) (err error) {
	ctx := commandContext(cmd)
	s, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := s.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing store: %w", cerr)
		}
	}()
	return fn(ctx, s)
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
