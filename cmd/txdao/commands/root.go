package commands

import (
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/vbonduro/txdao/internal/config"
	"github.com/vbonduro/txdao/internal/db"
	"github.com/vbonduro/txdao/internal/logging"
	"github.com/vbonduro/txdao/internal/metrics"
	"github.com/vbonduro/txdao/internal/unitofwork"
)

// app carries what the commands of one invocation share.
type app struct {
	v          *viper.Viper
	configPath string
	metrics    bool

	cfg      *config.Config
	logger   *slog.Logger
	db       *sql.DB
	exec     *unitofwork.Executor
	registry *prometheus.Registry
	cleanup  func()
}

// NewRootCmd builds the txdao command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.NewViper()}

	root := &cobra.Command{
		Use:   "txdao",
		Short: "Transactional data access for accounts, companies and photos",
		Long: `txdao stores accounts, companies with their products, and photos with
their comments. Every command runs each store operation in its own
transaction.

Configuration is read from the environment (DB_DRIVER, DB_PATH, DB_URL,
DB_MAX_OPEN_CONNS, DB_READ_ONLY_HINTS, LOG_LEVEL, LOG_FILE, LOG_FORMAT),
an optional config file and the flags below, flags taking precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "Config file (yaml, toml or json)")
	flags.String("db-driver", "", "Database driver: sqlite or pgx")
	flags.String("db-path", "", "SQLite database file")
	flags.String("db-url", "", "PostgreSQL connection URL")
	flags.String("log-level", "", "Log level: debug, info, warn or error")
	flags.BoolVar(&a.metrics, "metrics", false, "Print unit-of-work metrics on exit")

	for key, flag := range map[string]string{
		config.KeyDBDriver: "db-driver",
		config.KeyDBPath:   "db-path",
		config.KeyDBURL:    "db-url",
		config.KeyLogLevel: "log-level",
	} {
		if err := a.v.BindPFlag(key, flags.Lookup(flag)); err != nil {
			panic(fmt.Sprintf("bind flag --%s: %v", flag, err))
		}
	}

	root.AddCommand(
		newMigrateCmd(a),
		newAccountCmd(a),
		newCompanyCmd(a),
		newProductCmd(a),
		newPhotoCmd(a),
	)
	return root
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads the configuration and builds the logger.
func (a *app) setup() error {
	cfg, err := config.Read(a.v, a.configPath)
	if err != nil {
		return err
	}
	logger, cleanup, err := logging.New(cfg.LogLevel, cfg.LogFile, cfg.LogFormat)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	a.cfg = cfg
	a.logger = logger
	a.cleanup = cleanup
	return nil
}

// open connects to the configured store and builds the executor the stores
// run on. Migrations are not applied.
func (a *app) open() error {
	if err := a.setup(); err != nil {
		return err
	}

	database, dialect, err := db.Open(a.cfg.DBDriver, a.cfg.DSN(), a.cfg.DBOptions())
	if err != nil {
		return err
	}
	a.db = database

	a.registry = prometheus.NewRegistry()
	collector, err := metrics.NewCollector(a.registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	a.exec = unitofwork.New(database, dialect,
		unitofwork.WithLogger(a.logger),
		unitofwork.WithObserver(collector),
		unitofwork.WithReadOnlyHints(a.cfg.DBReadOnlyHints),
	)
	return nil
}

func (a *app) close(out io.Writer) {
	if a.metrics && a.registry != nil {
		if err := writeMetrics(out, a.registry); err != nil {
			a.logger.Error("failed to write metrics", "error", err)
		}
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			a.logger.Error("failed to close database", "error", err)
		}
	}
	if a.cleanup != nil {
		a.cleanup()
	}
}

// withStores wraps a command body so it runs against an open executor.
func (a *app) withStores(run func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		if err := a.open(); err != nil {
			a.close(cmd.OutOrStdout())
			return err
		}
		defer a.close(cmd.OutOrStdout())
		return run(cmd, args)
	}
}

func writeMetrics(out io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return err
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
			return err
		}
	}
	return nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}
