package cli

import (
	"fmt"
	"strconv"

	"github.com/davarch/pipeline-watcher/internal/infrastructure/config"
	"github.com/spf13/cobra"
)

var intervalCmd = &cobra.Command{
	Use:   "interval [seconds]",
	Short: "Show or set the polling interval",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) == 0 {
			eff, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			fmt.Printf("%ds\n", eff.PollingInterval)
			return nil
		}

		sec, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid interval %q: %w", args[0], err)
		}
		cfg, err := config.LoadFile(cfgPath)
		if err != nil {
			return err
		}
		if err := cfg.SetPollingInterval(sec); err != nil {
			return err
		}
		if err := config.Save(cfgPath, cfg); err != nil {
			return err
		}

		fmt.Printf("polling every %ds\n", sec)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(intervalCmd)
}
