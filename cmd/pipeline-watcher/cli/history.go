package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/davarch/pipeline-watcher/internal/infrastructure/config"
	"github.com/davarch/pipeline-watcher/internal/infrastructure/history_sqlite"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	historyLimit int
	historyJSON  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show recent failure and recovery notifications",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		store, err := history_sqlite.Open(cfg.History.Path)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		evs, err := store.Recent(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if historyJSON {
			return printJSON(evs)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "WHEN\tKIND\tTARGET\tMESSAGE")
		for _, ev := range evs {
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s/%s\t%s\n", humanize.Time(ev.At), ev.Kind, ev.Workspace, ev.RepoSlug, ev.Message)
		}
		return w.Flush()
	},
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "number of events to show")
	historyCmd.Flags().BoolVar(&historyJSON, "json", false, "print JSON")

	rootCmd.AddCommand(historyCmd)
}
