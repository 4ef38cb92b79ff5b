package cli

import (
	"fmt"

	"github.com/davarch/pipeline-watcher/internal/infrastructure/config"
	"github.com/davarch/pipeline-watcher/internal/infrastructure/control_http"
	"github.com/spf13/cobra"
)

var refreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Ask the running watcher to check now",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		if err := control_http.Refresh(cmd.Context(), cfg.Server.Addr); err != nil {
			return err
		}
		fmt.Println("refresh requested")
		return nil
	},
}

var openCmd = &cobra.Command{
	Use:   "open <menu-item-id>",
	Short: "Open the pipeline page behind a menu item (e.g. pipeline_0)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return err
		}
		return control_http.OpenItem(cmd.Context(), cfg.Server.Addr, args[0])
	},
}

func init() {
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(openCmd)
}
