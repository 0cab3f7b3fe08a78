package main

import (
	"github.com/spf13/cobra"
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Print the cache and catalog health report as JSON",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer client.Close()

		return writeJSON(cmd.OutOrStdout(), client.Health(cmd.Context()))
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
}
