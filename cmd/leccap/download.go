package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/vmunix/leccap/internal/config"
	"github.com/vmunix/leccap/internal/download"
	"github.com/vmunix/leccap/internal/linkfile"
)

var downloadCmd = &cobra.Command{
	Use:   "download",
	Short: "Download the videos listed in links.txt",
	Long: `Download every video listed in a links file, several at a time.

A failed download does not stop the others; failures are reported at the end.

Examples:
  leccap download                                # ./links.txt into download.dir
  leccap download --links eecs281/links.txt --dir eecs281
  leccap download --concurrency 8`,
	Args: cobra.NoArgs,
	RunE: runDownloadCmd,
}

func init() {
	rootCmd.AddCommand(downloadCmd)
	downloadCmd.Flags().StringP("links", "l", "", "Links file (default: <collect.output_dir>/links.txt)")
	downloadCmd.Flags().StringP("dir", "d", "", "Directory to save videos in (default: download.dir)")
	downloadCmd.Flags().IntP("concurrency", "j", 0, "Parallel downloads (default: download.concurrency)")
}

func runDownloadCmd(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	linksPath := filepath.Join(cfg.Collect.OutputDir, linkfile.FileName)
	if flags.Changed("links") {
		linksPath, _ = flags.GetString("links")
	}
	if flags.Changed("dir") {
		cfg.Download.Dir, _ = flags.GetString("dir")
	}
	if flags.Changed("concurrency") {
		cfg.Download.Concurrency, _ = flags.GetInt("concurrency")
	}
	// Downloads go straight to the media host, so no portal session is needed.
	if err := checkConfig(cfg, path, "portal.session_cookie"); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if quietOutput {
		out = io.Discard
	}
	return runDownload(cmd.Context(), cfg, linksPath, out, newLogger(cfg))
}

func runDownload(ctx context.Context, cfg *config.Config, linksPath string, out io.Writer, log *slog.Logger) error {
	f, err := os.Open(linksPath)
	if err != nil {
		return fmt.Errorf("open links: %w", err)
	}
	links, err := linkfile.Parse(f)
	f.Close()
	if err != nil {
		return fmt.Errorf("%s: %w", linksPath, err)
	}

	d := download.New(
		download.WithConcurrency(cfg.Download.Concurrency),
		download.WithLogger(log),
	)
	results, err := d.Run(ctx, cfg.Download.Dir, links)

	var ok int
	var total int64
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(out, "  FAILED  %s: %v\n", r.Link.Name, r.Err)
			continue
		}
		ok++
		total += r.Bytes
	}
	fmt.Fprintf(out, "Downloaded %d/%d files (%s) to %s\n", ok, len(links), formatSize(total), cfg.Download.Dir)

	if err != nil {
		return fmt.Errorf("%d of %d downloads failed", len(links)-ok, len(links))
	}
	return nil
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
