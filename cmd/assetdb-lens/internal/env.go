package common

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rebelforge/assetdb/cmd/internal/config"
	loggerconfig "github.com/rebelforge/assetdb/cmd/internal/config/logger"
	storageconfig "github.com/rebelforge/assetdb/cmd/internal/config/storage"
	"github.com/rebelforge/assetdb/cmd/internal/configvalidator"
	"github.com/rebelforge/assetdb/misc"
	"github.com/rebelforge/assetdb/pkg/asset_storage/database"
	"github.com/rebelforge/assetdb/pkg/metrics"
	"github.com/rebelforge/assetdb/pkg/util/logger"
	"github.com/rebelforge/assetdb/pkg/util/pathutil"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Global flags of the application.
const (
	ConfigFlag = "config"
	DebugFlag  = "debug"
	StatsFlag  = "stats"
)

var (
	appCfg   *config.Config
	log      = zap.NewNop()
	registry = prometheus.NewRegistry()
	stats    *metrics.AssetMetrics
)

// Setup reads configuration file set by ConfigFlag and initializes logger
// and metrics used by the subcommands. It is intended to be root's
// PersistentPreRunE.
func Setup(cmd *cobra.Command, _ []string) error {
	var opts []config.Option

	if p, _ := cmd.Flags().GetString(ConfigFlag); p != "" {
		p, err := ExpandPath(p)
		if err != nil {
			return err
		}

		opts = append(opts, config.WithConfigFile(p))
	}

	c, err := config.New(opts...)
	if err != nil {
		return err
	}

	if err := configvalidator.CheckForUnknownFields(c.Settings(), appConfig{}); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	var prm logger.Prm

	lvl := loggerconfig.Level(c)
	if debug, _ := cmd.Flags().GetBool(DebugFlag); debug {
		lvl = "debug"
	}

	if err := prm.SetLevelString(lvl); err != nil {
		return fmt.Errorf("logger level: %w", err)
	}

	if err := prm.SetEncoding(loggerconfig.Encoding(c)); err != nil {
		return fmt.Errorf("logger encoding: %w", err)
	}

	l, err := logger.NewLogger(&prm)
	if err != nil {
		return fmt.Errorf("could not create logger: %w", err)
	}

	appCfg = c
	log = l
	zap.ReplaceGlobals(l)

	registry = prometheus.NewRegistry()
	stats = metrics.NewAssetMetrics(registry, misc.Version)

	return nil
}

// Teardown prints collected statistics if StatsFlag is set. It is intended
// to be root's PersistentPostRunE.
func Teardown(cmd *cobra.Command, _ []string) error {
	_ = log.Sync()

	if s, _ := cmd.Flags().GetBool(StatsFlag); !s {
		return nil
	}

	return PrintStats(cmd.ErrOrStderr(), registry)
}

// Config returns application configuration. Empty configuration is
// returned if Setup has not been called.
func Config() *config.Config {
	if appCfg == nil {
		appCfg, _ = config.New()
	}

	return appCfg
}

// Logger returns application logger.
func Logger() *zap.Logger {
	return log
}

// Metrics returns statistics consumer registered in the application
// registry.
func Metrics() database.Metrics {
	if stats == nil {
		return nil
	}

	return stats
}

// NewManager creates database manager over the OS file system configured
// from the "storage" section.
func NewManager() (*database.Manager, error) {
	var (
		c    = Config()
		fsys = afero.NewOsFs()
		opts = []database.Option{
			database.WithFS(fsys),
			database.WithLogger(log),
			database.WithMaxDepth(storageconfig.MaxDepth(c)),
			database.WithResolver(pathutil.NewResolver(fsys,
				pathutil.WithCacheSize(storageconfig.PathCacheSize(c)),
			)),
		}
	)

	if m := Metrics(); m != nil {
		opts = append(opts, database.WithMetrics(m))
	}

	m, err := database.NewManager(opts...)
	if err != nil {
		return nil, fmt.Errorf("could not create database manager: %w", err)
	}

	return m, nil
}
