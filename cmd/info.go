package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var infoDetail int

var infoCmd = &cobra.Command{
	Use:   "info <pipeline>",
	Short: "Show pipeline metadata and revisions",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		manager, err := buildManager(args[0])
		if err != nil {
			return err
		}
		defer manager.Close()

		out := cmd.OutOrStdout()
		m := manager.Manifest(cmd.Context())
		fmt.Fprintf(out, " project   : %s\n", manager.Project())
		fmt.Fprintf(out, " home page : %s\n", manager.Provider().HomePage(manager.Project()))
		fmt.Fprintf(out, " script    : %s\n", m.MainScriptOrDefault())
		if m.Description != "" {
			fmt.Fprintf(out, " about     : %s\n", m.Description)
		}
		fmt.Fprintf(out, " installed : %v\n", manager.IsLocal())

		if !manager.IsLocal() {
			return nil
		}
		lines, err := manager.Revisions().ListRevisions(cmd.Context(), infoDetail)
		if err != nil {
			return err
		}
		fmt.Fprintln(out, " revisions :")
		for _, line := range lines {
			fmt.Fprintf(out, "  %s\n", line)
		}
		return nil
	},
}

func init() {
	infoCmd.Flags().IntVarP(&infoDetail, "detail", "d", 0, "Revision detail level: 1 short ids, 2 full ids")
	rootCmd.AddCommand(infoCmd)
}
