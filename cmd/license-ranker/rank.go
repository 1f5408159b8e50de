package main

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/license-ranker/internal/convert"
	"github.com/pdiddy/license-ranker/internal/history"
	"github.com/pdiddy/license-ranker/internal/pipeline"
	"github.com/pdiddy/license-ranker/internal/rank"
	"github.com/pdiddy/license-ranker/internal/report"
	"github.com/pdiddy/license-ranker/internal/score"
	"github.com/pdiddy/license-ranker/internal/source"
	"github.com/pdiddy/license-ranker/pkg/types"
)

var rankCmd = &cobra.Command{
	Use:   "rank [locator]",
	Short: "Extract marked names from a document and print the top-rated ones",
	Long: `Rank fetches the document at locator (an http(s) URL, file:// URL, or local
path), keeps the lines that contain the credential marker, takes the text
before the first comma on each as the name, scores every name, and prints
the best N as "name - Review Score: score".

With no locator the Riverside County counseling resource list is used.
Download and decode failures are reported on one line and are not treated
as command failures; neither is a document without matching lines.`,
	Args:         cobra.MaximumNArgs(1),
	SilenceUsage: true,
	RunE:         runRank,
}

func init() {
	f := rankCmd.Flags()
	f.StringP("marker", "m", defaultMarker, "credential marker that flags a record line")
	f.IntP("top", "n", rank.DefaultTopN, "number of ranked names to print")
	f.Bool("dedupe", true, "score each repeated name only once")
	f.String("format", string(report.FormatText), "output format: text, yaml, or json")
	f.Bool("save", false, "record the run in the history database")
	f.String("decoder", string(types.DecoderAuto), "document decoder: auto, native, pdftotext, or text")
	f.String("provider", string(types.ProviderRandom), "score provider: random or http")
	f.Uint64("seed", 0, "seed for the random score provider (0 picks one)")
	f.String("score-url", "", "review service endpoint for the http provider")
	f.Int("concurrency", score.DefaultConcurrency, "parallel score lookups")
	f.Duration("call-timeout", score.DefaultCallTimeout, "per-name score lookup timeout")
	f.Duration("timeout", defaultTimeout, "document download timeout")
	f.String("cache-dir", "", "keep downloaded documents here and reuse them")
	f.String("history-dir", history.DefaultDir, "directory for the history database")

	for key, name := range map[string]string{
		"rank.marker":        "marker",
		"rank.top_n":         "top",
		"rank.dedupe":        "dedupe",
		"decode.backend":     "decoder",
		"score.provider":     "provider",
		"score.seed":         "seed",
		"score.base_url":     "score-url",
		"score.concurrency":  "concurrency",
		"score.call_timeout": "call-timeout",
		"source.timeout":     "timeout",
		"source.cache_dir":   "cache-dir",
		"history.dir":        "history-dir",
	} {
		viper.BindPFlag(key, f.Lookup(name))
	}

	rootCmd.AddCommand(rankCmd)
}

func runRank(cmd *cobra.Command, args []string) error {
	locator := defaultLocator
	if len(args) == 1 {
		locator = args[0]
	}
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := report.ParseFormat(formatFlag)
	if err != nil {
		return err
	}
	save, _ := cmd.Flags().GetBool("save")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return rankDocument(cmd.Context(), cfg, locator, format, save, cmd.OutOrStdout(), cmd.ErrOrStderr())
}

// rankDocument runs the pipeline and prints the outcome. Fetch and decode
// failures print a diagnostic to errOut and return nil.
func rankDocument(ctx context.Context, cfg types.Config, locator string, format report.Format, save bool, out, errOut io.Writer) error {
	p, err := newPipeline(ctx, cfg, locator)
	if err != nil {
		if errors.Is(err, source.ErrFetch) {
			fmt.Fprintf(errOut, "Error fetching document: %v\n", err)
			return nil
		}
		return err
	}
	p.Log = errOut

	res, err := p.Run(ctx, locator, cfg.Rank.Marker, cfg.Rank.TopN)
	switch {
	case errors.Is(err, source.ErrFetch):
		fmt.Fprintf(errOut, "Error fetching document: %v\n", err)
		return nil
	case errors.Is(err, convert.ErrDecode):
		fmt.Fprintf(errOut, "Error reading document: %v\n", err)
		return nil
	case err != nil:
		return err
	}

	if save {
		if err := saveRun(ctx, cfg.History, res); err != nil {
			log.Warn().Err(err).Msg("run not saved")
		}
	}

	notice := out
	if format != report.FormatText {
		notice = errOut
	}
	switch {
	case res.Empty():
		report.Empty(notice, cfg.Rank.Marker)
	case len(res.Ranked) == 0 && len(res.Skipped) == res.Candidates:
		report.AllSkipped(notice, cfg.Rank.Marker, res.Candidates)
	}
	if format == report.FormatText && len(res.Ranked) == 0 {
		return nil
	}
	return report.RankedAs(out, format, res.Ranked)
}

func saveRun(ctx context.Context, cfg types.HistoryConfig, res pipeline.Result) error {
	store, err := history.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	id, err := store.SaveRun(ctx, types.Run{
		Locator:    res.Locator,
		Marker:     res.Marker,
		TopN:       res.TopN,
		Candidates: res.Candidates,
		Skipped:    len(res.Skipped),
		StartedAt:  res.StartedAt,
		Records:    res.Ranked,
	})
	if err != nil {
		return err
	}
	log.Info().Int64("id", id).Str("db", store.Path()).Msg("run saved")
	return nil
}
