package cmd

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var pullCmd = &cobra.Command{
	Use:   "pull <pipeline>...",
	Short: "Download or update one or more pipelines in the local cache",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, name := range args {
			manager, err := buildManager(name)
			if err != nil {
				return err
			}

			outcome, err := manager.Download(cmd.Context(), revision)
			if err != nil {
				manager.Close()
				return err
			}
			logger.Infof("%s: %s", manager.Project(), outcome)

			if subErr := manager.Revisions().UpdateSubmodules(cmd.Context()); subErr != nil {
				logger.Warnf("Submodule update for %s failed: %v", manager.Project(), subErr)
			}
			manager.Close()
		}
		return nil
	},
}

func init() {
	pullCmd.Flags().StringVarP(&revision, "revision", "r", "", "Revision (branch, tag, or commit) to check out")
	pullCmd.Flags().StringVar(&authUser, "user", "", "Username for the hosting provider")
	pullCmd.Flags().StringVar(&authPass, "password", "", "Password or token for the hosting provider")
	rootCmd.AddCommand(pullCmd)
}
