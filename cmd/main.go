// Package main is the entry point for the pool watcher.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// loadEnvFiles loads .env from standard locations
func loadEnvFiles() {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		_ = godotenv.Load()
		return
	}

	// Try loading from ~/.config/pool-watcher/.env first
	configEnv := filepath.Join(homeDir, ".config", "pool-watcher", ".env")
	if _, err := os.Stat(configEnv); err == nil {
		_ = godotenv.Load(configEnv)
	}

	// Also load local .env (godotenv never overrides variables already set)
	_ = godotenv.Load()
}

func main() {
	os.Exit(run(os.Args[1:]))
}

// run dispatches a subcommand and returns the process exit code.
func run(args []string) int {
	if len(args) > 0 {
		switch args[0] {
		case "watch":
			return runWatch(args[1:])
		case "replay":
			return runReplay(args[1:])
		case "check-config":
			return runCheckConfig(args[1:], os.Stdout)
		case "version", "-v", "--version":
			printVersion(os.Stdout)
			return 0
		case "help", "-h", "--help":
			printHelp(os.Stdout)
			return 0
		}
	}

	// Default: watch, flags passed through
	return runWatch(args)
}

// printHelp prints usage information
func printHelp(w io.Writer) {
	fmt.Fprintln(w, "pool-watcher - alerts on blue/green failover and upstream error rate")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  pool-watcher [options]")
	fmt.Fprintln(w, "  pool-watcher [command] [options]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  watch          Tail the access log and send alerts (default)")
	fmt.Fprintln(w, "  replay FILE    Run the rules over an existing log from the start and exit")
	fmt.Fprintln(w, "  check-config   Validate and print the effective configuration")
	fmt.Fprintln(w, "  version        Print version information")
	fmt.Fprintln(w, "  help           Show this help message")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  --config FILE      YAML config (default: search, then built-in)")
	fmt.Fprintln(w, "  --debug            Enable debug logging")
	fmt.Fprintln(w, "  --dry-run          replay only: log alerts instead of sending them")
	fmt.Fprintln(w, "  --print-default    check-config only: print the built-in config")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  NGINX_LOG_FILE, SLACK_WEBHOOK_URL, SLACK_PREFIX, ACTIVE_POOL,")
	fmt.Fprintln(w, "  ERROR_RATE_THRESHOLD, WINDOW_SIZE, ALERT_COOLDOWN_SEC, MAINTENANCE_MODE,")
	fmt.Fprintln(w, "  LOG_LEVEL, LOG_FORMAT")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintln(w, "  pool-watcher                                 Watch with defaults and env")
	fmt.Fprintln(w, "  pool-watcher replay access.json --dry-run    Preview alerts for a log")
	fmt.Fprintln(w, "  pool-watcher check-config --config prod.yaml")
}
