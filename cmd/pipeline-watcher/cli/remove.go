package cli

import (
	"fmt"

	"github.com/davarch/pipeline-watcher/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <workspace/repo[@branch]>",
	Short: "Stop monitoring a pipeline",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		target, err := parseTarget(args[0])
		if err != nil {
			return err
		}

		cfg, err := config.LoadFile(cfgPath)
		if err != nil {
			return err
		}

		if !cfg.RemovePipeline(target) {
			fmt.Printf("no change (%s not monitored)\n", formatTarget(target))
			return nil
		}

		if err := config.Save(cfgPath, cfg); err != nil {
			return err
		}

		fmt.Printf("removed: %s\n", formatTarget(target))
		return nil
	},
}

func init() {
	removeCmd.ValidArgsFunction = func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		cfg, err := config.Load(cfgPath)
		if err != nil {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}

		return matchTargets(cfg.MonitoredPipelines, toComplete), cobra.ShellCompDirectiveNoFileComp
	}

	rootCmd.AddCommand(removeCmd)
}
