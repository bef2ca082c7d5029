package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/vmunix/leccap/internal/collect"
	"github.com/vmunix/leccap/internal/config"
	"github.com/vmunix/leccap/internal/export"
	"github.com/vmunix/leccap/internal/leccap"
	"github.com/vmunix/leccap/internal/linkfile"
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Resolve recordings and write links.txt",
	Long: `Resolve every recording of a course to its media URL and write links.txt.

Recordings come from a course page (--course) or from a JSON array of
recordings as held by the course page's "recordings" variable (--records).

Examples:
  leccap collect --course /leccap/site/abc123          # Fetch the course page
  leccap collect --records recordings.json --out eecs281
  leccap collect --records - --stdout < recordings.json
  leccap collect --course /leccap/site/abc123 --naming title --title review`,
	Args: cobra.NoArgs,
	RunE: runCollectCmd,
}

func init() {
	rootCmd.AddCommand(collectCmd)
	collectCmd.Flags().StringP("records", "r", "", "JSON file of recordings (- for stdin)")
	collectCmd.Flags().StringP("course", "c", "", "Course page URL or portal path")
	collectCmd.Flags().StringP("out", "o", "", "Output directory for links.txt (default: collect.output_dir)")
	collectCmd.Flags().Bool("stdout", false, "Write the links to stdout instead of links.txt")
	collectCmd.Flags().Int("concurrency", 0, "Maximum lookups in flight, 0 for no limit (default: collect.concurrency)")
	collectCmd.Flags().String("naming", "", "File naming: sortkey or title (default: collect.naming)")
	collectCmd.Flags().String("cookie", "", "Portal session Cookie header (default: portal.session_cookie)")
	collectCmd.Flags().StringSlice("title", nil, "Keep recordings whose title contains this text (repeatable)")
	collectCmd.Flags().StringSlice("section", nil, "Keep recordings whose section contains this text (repeatable)")
	collectCmd.Flags().StringSlice("time", nil, `Keep recordings starting near this time, e.g. "10:30 AM" (repeatable)`)
}

// recordSource says where recordings are read from.
type recordSource struct {
	records string
	course  string
}

func runCollectCmd(cmd *cobra.Command, args []string) error {
	cfg, path, err := loadConfig()
	if err != nil {
		return err
	}
	applyCollectFlags(cmd, cfg)
	if err := checkConfig(cfg, path); err != nil {
		return err
	}

	var src recordSource
	src.records, _ = cmd.Flags().GetString("records")
	src.course, _ = cmd.Flags().GetString("course")
	toStdout, _ := cmd.Flags().GetBool("stdout")

	log := newLogger(cfg)
	file, err := runCollect(cmd.Context(), cfg, src, toStdout, cmd.InOrStdin(), cmd.OutOrStdout(), log)
	if err != nil {
		return err
	}

	if !toStdout && !quietOutput {
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved %d links to %s\n", file.Len(), export.NewFileSink(cfg.Collect.OutputDir, log).Path())
	}
	return nil
}

func applyCollectFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("out") {
		cfg.Collect.OutputDir, _ = flags.GetString("out")
	}
	if flags.Changed("concurrency") {
		cfg.Collect.Concurrency, _ = flags.GetInt("concurrency")
	}
	if flags.Changed("naming") {
		cfg.Collect.Naming, _ = flags.GetString("naming")
	}
	if flags.Changed("cookie") {
		cfg.Portal.SessionCookie, _ = flags.GetString("cookie")
	}
	if flags.Changed("title") {
		cfg.Filters.Titles, _ = flags.GetStringSlice("title")
	}
	if flags.Changed("section") {
		cfg.Filters.Sections, _ = flags.GetStringSlice("section")
	}
	if flags.Changed("time") {
		cfg.Filters.Times, _ = flags.GetStringSlice("time")
	}
}

// runCollect reads recordings, resolves them and exports the links. Nothing
// is written when any lookup fails.
func runCollect(ctx context.Context, cfg *config.Config, src recordSource, toStdout bool, in io.Reader, out io.Writer, log *slog.Logger) (*linkfile.File, error) {
	client := leccap.New(
		leccap.WithBaseURL(cfg.Portal.BaseURL),
		leccap.WithSessionCookie(cfg.Portal.SessionCookie),
		leccap.WithHTTPClient(&http.Client{Timeout: cfg.Portal.Timeout}),
		leccap.WithLogger(log),
	)

	recs, err := readRecordings(ctx, client, src, in)
	if err != nil {
		return nil, err
	}

	naming, err := collect.ParseNaming(cfg.Collect.Naming)
	if err != nil {
		return nil, err
	}

	collector := collect.New(client, collect.Options{
		Concurrency: cfg.Collect.Concurrency,
		Naming:      naming,
		Filter: collect.Filter{
			Titles:   cfg.Filters.Titles,
			Sections: cfg.Filters.Sections,
			Times:    cfg.Filters.Times,
		},
	}, log.With("component", "collect"))

	file, err := collector.Collect(ctx, recs)
	if err != nil {
		return nil, fmt.Errorf("collect failed: %w", err)
	}

	var sink export.Sink = export.NewFileSink(cfg.Collect.OutputDir, log)
	if toStdout {
		sink = export.WriterSink{W: out}
	}
	if err := sink.Export(ctx, file); err != nil {
		return nil, fmt.Errorf("export failed: %w", err)
	}
	return file, nil
}

func readRecordings(ctx context.Context, client *leccap.Client, src recordSource, in io.Reader) ([]leccap.Recording, error) {
	switch {
	case src.records != "" && src.course != "":
		return nil, errors.New("use either --records or --course, not both")
	case src.course != "":
		return client.CourseRecordings(ctx, src.course)
	case src.records == "-":
		return leccap.DecodeRecordings(in)
	case src.records != "":
		f, err := os.Open(src.records)
		if err != nil {
			return nil, fmt.Errorf("open records: %w", err)
		}
		defer f.Close()
		return leccap.DecodeRecordings(f)
	default:
		return nil, errors.New("one of --records or --course is required")
	}
}
