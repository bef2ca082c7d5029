package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vmunix/leccap/internal/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management",
}

var configInitCmd = &cobra.Command{
	Use:   "init [path]",
	Short: "Write an example configuration file",
	Long:  "Writes the example config to path (default: $XDG_CONFIG_HOME/leccap/config.toml).",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigInit,
}

var configTestCmd = &cobra.Command{
	Use:   "test [path]",
	Short: "Validate configuration file",
	Long:  "Validates config.toml syntax, values and environment variable substitution.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runConfigTest,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file that would be used",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.Discover()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configInitCmd.Flags().BoolP("force", "f", false, "Overwrite an existing file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configTestCmd)
	configCmd.AddCommand(configPathCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path := config.DefaultPath()
	if len(args) > 0 {
		path = args[0]
	}
	force, _ := cmd.Flags().GetBool("force")

	if err := initConfig(path, force); err != nil {
		return err
	}
	if !quietOutput {
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\nSet LECCAP_SESSION to your portal session cookie, then run 'leccap config test %s'.\n", path, path)
	}
	return nil
}

func initConfig(path string, force bool) error {
	if err := config.WriteDefault(path, force); err != nil {
		if errors.Is(err, os.ErrExist) {
			return fmt.Errorf("%s already exists, use --force to overwrite", path)
		}
		return err
	}
	return nil
}

func runConfigTest(cmd *cobra.Command, args []string) error {
	path := "config.toml"
	if len(args) > 0 {
		path = args[0]
	}
	return testConfig(path, cmd.OutOrStdout())
}

func testConfig(path string, out io.Writer) error {
	fmt.Fprintf(out, "Validating %s...\n\n", path)

	cfg, err := config.Load(path)
	if err != nil {
		var configErr *config.Error
		if errors.As(err, &configErr) {
			printConfigErrors(out, configErr)
			return fmt.Errorf("configuration invalid")
		}
		return fmt.Errorf("failed to load config: %w", err)
	}

	printConfigSummary(out, cfg)
	fmt.Fprintln(out, "\nConfiguration valid!")
	return nil
}

func printConfigErrors(out io.Writer, e *config.Error) {
	if len(e.Missing) > 0 {
		fmt.Fprintln(out, "Missing environment variables:")
		for _, m := range e.Missing {
			fmt.Fprintf(out, "  - %s\n", m)
		}
		fmt.Fprintln(out)
	}

	if len(e.Errors) > 0 {
		fmt.Fprintln(out, "Validation errors:")
		for _, err := range e.Errors {
			fmt.Fprintf(out, "  - %s\n", err)
		}
		fmt.Fprintln(out)
	}
}

func printConfigSummary(out io.Writer, cfg *config.Config) {
	session := "not set"
	if cfg.Portal.SessionCookie != "" {
		session = "set"
	}
	concurrency := "unlimited"
	if cfg.Collect.Concurrency > 0 {
		concurrency = fmt.Sprint(cfg.Collect.Concurrency)
	}

	fmt.Fprintln(out, "Configuration Summary:")
	fmt.Fprintf(out, "  Portal:     %s (session %s, timeout %s)\n", cfg.Portal.BaseURL, session, cfg.Portal.Timeout)
	fmt.Fprintf(out, "  Collect:    naming %s, concurrency %s, output %s\n", cfg.Collect.Naming, concurrency, cfg.Collect.OutputDir)
	fmt.Fprintf(out, "  Filters:    %d titles, %d sections, %d times\n", len(cfg.Filters.Titles), len(cfg.Filters.Sections), len(cfg.Filters.Times))
	fmt.Fprintf(out, "  Download:   %d parallel into %s\n", cfg.Download.Concurrency, cfg.Download.Dir)
	fmt.Fprintf(out, "  Log level:  %s\n", cfg.Log.Level)
}
