package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/pdiddy/license-ranker/internal/history"
	"github.com/pdiddy/license-ranker/internal/report"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List runs saved with rank --save",
	Long: `History lists ranking runs recorded in the local history database, newest
first. Use "history show <id>" to print one run with its ranked names,
"history delete <id>" to remove one, "history find <name>" to see where a
name placed across runs, and "history export" to dump every run as YAML or
JSON.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, store, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		runs, err := store.ListRuns(cmd.Context(), limit)
		if err != nil {
			return err
		}
		return report.Runs(cmd.OutOrStdout(), format, runs)
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Print one saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}
		format, store, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		run, err := store.GetRun(cmd.Context(), id)
		if err != nil {
			return err
		}
		return report.Run(cmd.OutOrStdout(), format, run)
	},
}

var historyDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Remove a saved run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid run id %q", args[0])
		}
		_, store, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.DeleteRun(cmd.Context(), id); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted run %d\n", id)
		return nil
	},
}

var historyFindCmd = &cobra.Command{
	Use:   "find <name>",
	Short: "Show every saved placement of a name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		format, store, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		apps, err := store.FindName(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if format != report.FormatText {
			if apps == nil {
				apps = []history.Appearance{}
			}
			return report.Encode(out, format, apps)
		}
		if len(apps) == 0 {
			fmt.Fprintf(out, "%s does not appear in any saved run\n", args[0])
			return nil
		}
		for _, a := range apps {
			fmt.Fprintf(out, "run %d: #%d - Review Score: %s (%s)\n",
				a.RunID, a.Position+1, report.FormatScore(a.Score), a.Locator)
		}
		return nil
	},
}

var historyExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write every saved run as YAML or JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, store, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer store.Close()

		if format == report.FormatText {
			format = report.FormatYAML
		}
		return store.Export(cmd.Context(), cmd.OutOrStdout(), format)
	},
}

func init() {
	historyCmd.PersistentFlags().String("format", string(report.FormatText), "output format: text, yaml, or json")
	historyCmd.PersistentFlags().String("history-dir", "", "directory for the history database (default from config)")
	historyCmd.Flags().Int("limit", history.DefaultListLimit, "maximum number of runs to list")

	historyCmd.AddCommand(historyShowCmd, historyDeleteCmd, historyFindCmd, historyExportCmd)
	rootCmd.AddCommand(historyCmd)
}

// openHistory parses --format and opens the store. --history-dir wins over
// the configured directory.
func openHistory(cmd *cobra.Command) (report.Format, *history.Store, error) {
	formatFlag, _ := cmd.Flags().GetString("format")
	format, err := report.ParseFormat(formatFlag)
	if err != nil {
		return "", nil, err
	}

	cfg, err := loadConfig()
	if err != nil {
		return "", nil, err
	}
	if dir, _ := cmd.Flags().GetString("history-dir"); dir != "" {
		cfg.History.Dir = dir
	}

	store, err := history.NewStore(cfg.History)
	if err != nil {
		return "", nil, err
	}
	return format, store, nil
}
