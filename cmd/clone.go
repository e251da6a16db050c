package cmd

import (
	"strings"

	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var cloneCmd = &cobra.Command{
	Use:   "clone <pipeline> [directory]",
	Short: "Clone a pipeline into an arbitrary directory",
	Long: `Clones the resolved remote project into a directory outside the managed
cache. When the pipeline is already installed, the clone comes from the local
cache instead of the network.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := buildManager(args[0])
		if err != nil {
			return err
		}
		defer manager.Close()

		dir := manager.Project().Repository
		if len(args) > 1 {
			dir = args[1]
		}

		if err := manager.CloneTo(cmd.Context(), dir, revision); err != nil {
			return err
		}
		logger.Infof("Cloned %s into %s", manager.Project(), strings.TrimSuffix(dir, "/"))
		return nil
	},
}

func init() {
	cloneCmd.Flags().StringVarP(&revision, "revision", "r", "", "Branch to start the clone at")
	cloneCmd.Flags().StringVar(&authUser, "user", "", "Username for the hosting provider")
	cloneCmd.Flags().StringVar(&authPass, "password", "", "Password or token for the hosting provider")
	rootCmd.AddCommand(cloneCmd)
}
