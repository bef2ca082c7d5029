package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/vmunix/leccap/internal/config"
)

var version = "dev"

var (
	configPath  string
	logLevel    string
	quietOutput bool
)

var rootCmd = &cobra.Command{
	Use:   "leccap",
	Short: "Collect lecture recording links from a lecture capture portal",
	Long: `leccap - collect lecture recording links from a lecture capture portal

Resolves every recording of a course to its media URL, writes the
results to links.txt and can then download them in parallel.

The portal session is taken from a browser cookie: set LECCAP_SESSION
or pass --cookie.`,
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "leccap %s\n", version)
	},
}

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default: discovered)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (default: from config)")
	rootCmd.PersistentFlags().BoolVarP(&quietOutput, "quiet", "q", false, "Suppress progress output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = version
	rootCmd.SetVersionTemplate("leccap {{.Version}}\n")
}

// loadConfig loads the --config file, or the discovered one, without
// validating it: commands apply their flags first and then call checkConfig.
// Without any config file the defaults are used, with the session cookie
// taken from LECCAP_SESSION. The returned path is "" in that case.
func loadConfig() (*config.Config, string, error) {
	path := configPath
	if path == "" {
		discovered, err := config.Discover()
		if err != nil {
			if config.IsNotFound(err) && os.Getenv("LECCAP_CONFIG") == "" {
				cfg := config.Default()
				cfg.Portal.SessionCookie = os.Getenv("LECCAP_SESSION")
				return cfg, "", nil
			}
			return nil, "", err
		}
		path = discovered
	}

	cfg, err := config.LoadWithoutValidation(path)
	if err != nil {
		return nil, "", fmt.Errorf("config: %w", err)
	}
	return cfg, path, nil
}

// checkConfig validates cfg after flag overrides. Unresolved ${VAR}
// references are errors unless their key is in unused, i.e. the command
// never reads that setting.
func checkConfig(cfg *config.Config, path string, unused ...string) error {
	cfgErr := &config.Error{Path: path, Errors: cfg.Validate()}
	for _, ref := range cfg.Unresolved() {
		if slices.Contains(unused, ref.Key) {
			continue
		}
		cfgErr.Missing = append(cfgErr.Missing, ref.Key+" = "+ref.Value)
	}
	if !cfgErr.HasErrors() {
		return nil
	}
	if path == "" {
		return cfgErr
	}
	return fmt.Errorf("config %s:\n%w", path, cfgErr)
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// newLogger logs to stderr so stdout stays clean for --stdout output.
// --log-level wins over the config level; --quiet raises the floor to warn.
func newLogger(cfg *config.Config) *slog.Logger {
	level := parseLogLevel(cfg.Log.Level)
	if logLevel != "" {
		level = parseLogLevel(logLevel)
	}
	if quietOutput && level < slog.LevelWarn {
		level = slog.LevelWarn
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
