package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/compresr/pool-watcher/internal/alerts"
	"github.com/compresr/pool-watcher/internal/config"
	"github.com/compresr/pool-watcher/internal/monitoring"
	"github.com/compresr/pool-watcher/internal/notify"
	"github.com/compresr/pool-watcher/internal/tail"
	"github.com/compresr/pool-watcher/internal/watcher"
)

// commonFlags are accepted by every command that loads configuration.
type commonFlags struct {
	configPath string
	debug      bool
}

func newFlagSet(name string, out io.Writer) (*flag.FlagSet, *commonFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(out)
	common := &commonFlags{}
	fs.StringVar(&common.configPath, "config", "", "path to config file")
	fs.BoolVar(&common.debug, "debug", false, "enable debug logging")
	return fs, common
}

// parseInterspersed parses flags that may appear before or after positional
// arguments and returns the positional ones.
func parseInterspersed(fs *flag.FlagSet, args []string) ([]string, error) {
	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return nil, err
		}
		if fs.NArg() == 0 {
			return positional, nil
		}
		positional = append(positional, fs.Arg(0))
		args = fs.Args()[1:]
	}
}

// flagExitCode maps a flag parse error to an exit code. -h is not an error.
func flagExitCode(err error) int {
	if errors.Is(err, flag.ErrHelp) {
		return 0
	}
	return 2
}

// resolveConfig resolves the config to load.
// Checks: user flag -> filesystem locations -> embedded config.
// Returns raw bytes and source description.
func resolveConfig(userConfig string) ([]byte, string, error) {
	if userConfig != "" {
		data, err := os.ReadFile(userConfig)
		if err != nil {
			return nil, "", fmt.Errorf("config file not found: %s: %w", userConfig, err)
		}
		return data, userConfig, nil
	}

	homeDir, _ := os.UserHomeDir()

	// Search filesystem in order of preference
	var searchPaths []string
	if homeDir != "" {
		searchPaths = append(searchPaths, filepath.Join(homeDir, ".config", "pool-watcher", "watcher.yaml"))
	}
	searchPaths = append(searchPaths, "/etc/pool-watcher/watcher.yaml")

	for _, path := range searchPaths {
		if data, err := os.ReadFile(path); err == nil {
			return data, path, nil
		}
	}

	data, err := getEmbeddedConfig(defaultConfigName)
	if err != nil {
		return nil, "", fmt.Errorf("read embedded config: %w", err)
	}
	return data, "(embedded) " + defaultConfigName + ".yaml", nil
}

func loadConfig(userConfig string) (*config.Config, string, error) {
	data, source, err := resolveConfig(userConfig)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.LoadFromBytes(data)
	if err != nil {
		return nil, source, err
	}
	return cfg, source, nil
}

// setupLogging installs the global zerolog logger.
func setupLogging(cfg *config.Config, debug bool) *monitoring.Logger {
	lc := cfg.Monitoring.LoggerConfig
	if debug {
		lc.Level = "debug"
	}
	return monitoring.Global(lc)
}

// =============================================================================
// COMMANDS
// =============================================================================

// runWatch tails the configured access log until SIGINT/SIGTERM.
func runWatch(args []string) int {
	loadEnvFiles()

	fs, common := newFlagSet("watch", os.Stderr)
	if err := fs.Parse(args); err != nil {
		return flagExitCode(err)
	}

	cfg, source, err := loadConfig(common.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pool-watcher: %v\n", err)
		return 1
	}
	logger := setupLogging(cfg, common.debug)

	follower := tail.NewFollower(cfg.Source)
	defer func() { _ = follower.Close() }()

	return runPipeline(cfg, source, follower, logger, false)
}

// runReplay runs the rules over an existing file from its first line and
// exits at end of file.
func runReplay(args []string) int {
	loadEnvFiles()

	fs, common := newFlagSet("replay", os.Stderr)
	dryRun := fs.Bool("dry-run", false, "log alerts instead of sending them")
	positional, err := parseInterspersed(fs, args)
	if err != nil {
		return flagExitCode(err)
	}
	if len(positional) != 1 {
		fmt.Fprintln(os.Stderr, "usage: pool-watcher replay FILE [--dry-run] [--config FILE] [--debug]")
		return 2
	}

	cfg, source, err := loadConfig(common.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pool-watcher: %v\n", err)
		return 1
	}
	cfg.Source.LogPath = positional[0]
	logger := setupLogging(cfg, common.debug)

	follower := tail.NewFollower(cfg.Source, tail.FromStart(), tail.NoFollow())
	defer func() { _ = follower.Close() }()

	return runPipeline(cfg, source, follower, logger, *dryRun)
}

// runCheckConfig validates the effective configuration and prints it.
func runCheckConfig(args []string, out io.Writer) int {
	fs, common := newFlagSet("check-config", os.Stderr)
	printDefault := fs.Bool("print-default", false, "print the built-in config and exit")
	if err := fs.Parse(args); err != nil {
		return flagExitCode(err)
	}

	if *printDefault {
		data, err := getEmbeddedConfig(defaultConfigName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "pool-watcher: %v\n", err)
			return 1
		}
		_, _ = out.Write(data)
		return 0
	}

	loadEnvFiles()
	cfg, source, err := loadConfig(common.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "pool-watcher: %v\n", err)
		return 1
	}

	data, err := cfg.Redacted().YAML()
	if err != nil {
		fmt.Fprintf(os.Stderr, "pool-watcher: %v\n", err)
		return 1
	}

	fmt.Fprintf(out, "# config: %s\n", source)
	for _, w := range cfg.Warnings() {
		fmt.Fprintf(out, "# warning: %s\n", w)
	}
	_, _ = out.Write(data)
	return 0
}

// =============================================================================
// PIPELINE
// =============================================================================

func runPipeline(cfg *config.Config, source string, src tail.Source, logger *monitoring.Logger, dryRun bool) int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info().
		Str("version", Version).
		Str("config", source).
		Str("log_path", cfg.Source.LogPath).
		Str("active_pool", cfg.Alerts.ActivePool).
		Float64("error_rate_threshold", cfg.Alerts.ErrorRateThreshold).
		Int("window_size", cfg.Alerts.WindowSize).
		Int("cooldown_sec", cfg.Alerts.CooldownSec).
		Bool("maintenance_mode", cfg.Alerts.MaintenanceMode).
		Bool("notify_enabled", cfg.Notify.Enabled() && !dryRun).
		Msg("pool watcher starting")
	for _, w := range cfg.Warnings() {
		log.Warn().Msg(w)
	}

	flagger := monitoring.NewFlagger(logger, monitoring.NewMetricsCollector())
	notifier, closeNotifier, err := buildNotifier(ctx, cfg.Notify, dryRun, flagger)
	if err != nil {
		log.Error().Err(err).Msg("failed to set up notifier")
		return 1
	}
	defer closeNotifier()

	var journal *monitoring.Journal
	if path := cfg.Monitoring.AlertLogPath; path != "" {
		journal, err = monitoring.NewJournal(path)
		if err != nil {
			log.Error().Err(err).Str("path", path).Msg("failed to open alert journal")
			return 1
		}
		defer func() { _ = journal.Close() }()
	}
	notifier = notify.WithJournal(notifier, journal)

	state := alerts.NewState(cfg.Alerts, alerts.WithNotifier(notifier))
	w := watcher.New(src, state,
		watcher.WithLogger(logger),
		watcher.WithFlagger(flagger),
		watcher.WithStatsInterval(cfg.Monitoring.StatsInterval),
	)

	if err := w.Run(ctx); err != nil {
		log.Error().Err(err).Msg("watcher failed")
		return 1
	}
	return 0
}

// buildNotifier returns the notifier for fired alerts and a function that
// flushes it on shutdown.
func buildNotifier(ctx context.Context, cfg config.NotifyConfig, dryRun bool, flagger *monitoring.Flagger) (alerts.Notifier, func(), error) {
	noop := func() {}
	if dryRun {
		return notify.LogOnly{}, noop, nil
	}
	if !cfg.Enabled() {
		return notify.Nop{}, noop, nil
	}

	opts := []notify.WebhookOption{notify.WithFlagger(flagger)}
	if cfg.SigV4.Enabled {
		signer, err := notify.NewSigner(ctx, cfg.SigV4)
		if err != nil {
			return nil, nil, fmt.Errorf("webhook signer: %w", err)
		}
		opts = append(opts, notify.WithSigner(signer))
	}

	d := notify.NewDispatcher(notify.NewWebhook(cfg, opts...), cfg.QueueSize, flagger)
	d.Start()
	return d, d.Stop, nil
}
