package cmd

import (
	logger "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/rios0rios0/pipeforge/domain"
)

var dropForce bool

var dropCmd = &cobra.Command{
	Use:   "drop <pipeline>",
	Short: "Delete a pipeline from the local cache",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		manager, err := buildManager(args[0])
		if err != nil {
			return err
		}
		defer manager.Close()

		if !manager.IsLocal() {
			return &domain.MissingLocalAssetError{Name: manager.Project().String()}
		}
		if !dropForce {
			if dirty, dirtyErr := manager.IsDirty(); dirtyErr == nil && dirty {
				return &domain.DirtyWorkingTreeError{Project: manager.Project().String()}
			}
		}

		if err := manager.Drop(); err != nil {
			return err
		}
		logger.Infof("Removed %s from the local cache", manager.Project())
		return nil
	},
}

func init() {
	dropCmd.Flags().BoolVarP(&dropForce, "force", "f", false, "Delete even with uncommitted changes")
	rootCmd.AddCommand(dropCmd)
}
