package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/davarch/pipeline-watcher/internal/domain"
	"github.com/davarch/pipeline-watcher/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

var (
	listWorkspace string
	listJSON      bool
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List monitored pipelines from config.yaml",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		items := make([]domain.MonitoredPipeline, 0, len(cfg.MonitoredPipelines))
		for _, p := range cfg.MonitoredPipelines {
			if listWorkspace != "" && p.Workspace != listWorkspace {
				continue
			}
			items = append(items, p)
		}

		if listJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "TARGET\tNAME\tPROJECT\tBRANCH")
		for _, p := range items {
			project := p.ProjectName
			if project == "" {
				project = "-"
			}
			branch := p.Branch
			if branch == "" {
				branch = "(any)"
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", formatTarget(p), p.DisplayName(), project, branch)
		}
		_ = w.Flush()
		_, _ = fmt.Fprintf(os.Stdout, "\npolling every %ds\n", cfg.PollingInterval)
		return nil
	},
}

func init() {
	listCmd.Flags().StringVar(&listWorkspace, "workspace", "", "show only pipelines in this workspace")
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print JSON")

	rootCmd.AddCommand(listCmd)
}
