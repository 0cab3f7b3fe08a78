package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <query>",
	Short: "Look up a breed in the catalog or the encyclopedia",
	Long: `Lookup answers a free-text breed query. Latin queries are matched against the
cached catalog first and then the English encyclopedia. Cyrillic queries go to
the Ukrainian encyclopedia when they contain Ukrainian-only letters, otherwise
to the Russian one with a Ukrainian fallback.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer client.Close()

		res, err := client.Lookup(cmd.Context(), strings.Join(args, " "))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, res)
		}
		fmt.Fprintf(out, "%s (%s", res.Title, res.Source)
		if res.Locale != "" {
			fmt.Fprintf(out, ", %s", res.Locale)
		}
		fmt.Fprintln(out, ")")
		fmt.Fprintln(out, res.Text)
		for _, field := range []struct{ label, value string }{
			{"Temperament", res.Temperament},
			{"Life span", res.LifeSpan},
			{"Image", res.Image},
			{"URL", res.URL},
		} {
			if field.value != "" {
				fmt.Fprintf(out, "%s: %s\n", field.label, field.value)
			}
		}
		return nil
	},
}

func init() {
	lookupCmd.Flags().Bool("json", false, "output the result as JSON")

	rootCmd.AddCommand(lookupCmd)
}
