package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var narrateCmd = &cobra.Command{
	Use:   "narrate <breed>",
	Short: "Generate a Markdown description of a breed",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer client.Close()

		res, err := client.Narrate(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, res)
		}
		fmt.Fprintln(out, res.Markdown)
		if res.ImageURL != "" {
			fmt.Fprintf(out, "\nImage: %s\n", res.ImageURL)
		}
		return nil
	},
}

func init() {
	narrateCmd.Flags().Bool("json", false, "output the result as JSON")

	rootCmd.AddCommand(narrateCmd)
}
