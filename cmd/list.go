package cmd

import (
	"fmt"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List locally installed pipelines",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		assets, err := injectStore()
		if err != nil {
			return err
		}

		names := assets.List()
		if len(names) == 0 {
			logger.Infof("No pipelines installed under %s", assets.Root())
			return nil
		}
		for _, name := range names {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)
}
