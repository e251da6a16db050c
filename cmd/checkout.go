package cmd

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var checkoutCmd = &cobra.Command{
	Use:   "checkout <pipeline> [revision]",
	Short: "Switch an installed pipeline to a revision",
	Long: `Switches the cached checkout to the given branch, tag, or commit. With no
revision the pipeline must already sit on its default branch. The working
tree must be clean; uncommitted changes are never discarded. A revision that
only exists on the remote is fetched and tracked automatically.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := buildManager(args[0])
		if err != nil {
			return err
		}
		defer manager.Close()

		var rev string
		if len(args) > 1 {
			rev = args[1]
		}

		if err := manager.Revisions().Checkout(cmd.Context(), rev); err != nil {
			return err
		}
		if err := manager.Revisions().UpdateSubmodules(cmd.Context()); err != nil {
			logger.Warnf("Submodule update for %s failed: %v", manager.Project(), err)
		}
		logger.Infof("%s is now at %s", manager.Project(), manager.Revisions().CurrentRevision())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(checkoutCmd)
}
