package cli

import (
	"fmt"
	"os"

	"github.com/davarch/pipeline-watcher/internal/application"
	"github.com/davarch/pipeline-watcher/internal/domain"
	"github.com/davarch/pipeline-watcher/internal/infrastructure/bitbucket_http"
	"github.com/davarch/pipeline-watcher/internal/infrastructure/config"
	"github.com/davarch/pipeline-watcher/internal/infrastructure/control_http"
	"github.com/davarch/pipeline-watcher/internal/infrastructure/display_term"
	"github.com/davarch/pipeline-watcher/internal/infrastructure/logging"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

var (
	statusRemote bool
	statusJSON   bool
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check all monitored pipelines once and print the result",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}

		var (
			st      *domain.OverallStatus
			tooltip string
		)

		if statusRemote {
			st, err = control_http.Status(cmd.Context(), cfg.Server.Addr)
			if err != nil {
				return err
			}
			tooltip = application.TooltipLoading
		} else {
			log := logging.New()
			defer func() { _ = log.Sync() }()

			state := application.NewState(cfg.Credentials(), cfg.MonitoredPipelines, cfg.Interval())
			disp := display_term.New(nil)
			uc := application.NewPollUseCase(log, state, bitbucket_http.Factory(cfg.Bitbucket.BaseURL, cfg.Bitbucket.Timeout), disp, nil)

			st = uc.CheckOnce(cmd.Context())
			tooltip = disp.Tooltip()
		}

		if statusJSON {
			return printJSON(st)
		}
		printStatus(st, tooltip)
		return nil
	},
}

func printStatus(st *domain.OverallStatus, tooltip string) {
	out := os.Stdout
	_, _ = fmt.Fprintln(out, display_term.RenderTray(application.TrayStateFor(st)))

	if st == nil {
		_, _ = fmt.Fprintln(out, tooltip)
		return
	}

	_, _ = fmt.Fprintln(out, application.Tooltip(*st))
	_, _ = fmt.Fprintln(out)

	menu, _ := application.BuildMenu(st)
	_, _ = fmt.Fprintln(out, display_term.RenderMenu(menu))

	for _, f := range st.FailedPipelines {
		_, _ = fmt.Fprintf(out, "  %s/%s #%d: %s\n", f.Workspace, f.RepoSlug, f.BuildNumber, f.FailureReason)
	}
	for _, p := range st.PipelineStatuses {
		if p.Classification == domain.Unknown && p.FailureReason != "" {
			_, _ = fmt.Fprintf(out, "  %s/%s: %s\n", p.Workspace, p.RepoSlug, p.FailureReason)
		}
	}
	if !st.CheckedAt.IsZero() {
		_, _ = fmt.Fprintf(out, "checked %s\n", humanize.Time(st.CheckedAt))
	}
}

func init() {
	statusCmd.Flags().BoolVar(&statusRemote, "remote", false, "ask the running watcher instead of checking now")
	statusCmd.Flags().BoolVar(&statusJSON, "json", false, "print JSON")

	rootCmd.AddCommand(statusCmd)
}
