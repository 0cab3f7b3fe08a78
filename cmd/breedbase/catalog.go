package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Print the breed catalog",
	Long: `Catalog prints the cached breed catalog, refreshing it from the breed-data API
when it is older than the catalog TTL. With --refresh the breed list is fetched
regardless of age and persisted when its digest changed, which is how the cache
file is generated ahead of deployment.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		refresh, _ := cmd.Flags().GetBool("refresh")
		asJSON, _ := cmd.Flags().GetBool("json")

		client, _, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer client.Close()

		get := client.GetCatalog
		if refresh {
			get = client.Refresh
		}
		breeds, err := get(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if asJSON {
			return writeJSON(out, breeds)
		}

		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tORIGIN\tLIFE SPAN\tGROUP")
		for _, b := range breeds {
			fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", b.ID, b.Name, b.Origin, b.LifeSpan, b.BreedGroup)
		}
		if err := tw.Flush(); err != nil {
			return err
		}

		info := client.Health(cmd.Context()).Catalog
		fmt.Fprintf(out, "\n%d breeds, catalog %s, hash %.12s\n", len(breeds), info.State, info.DataHash)
		return nil
	},
}

func init() {
	catalogCmd.Flags().Bool("refresh", false, "fetch the breed list even when the cache is fresh")
	catalogCmd.Flags().Bool("json", false, "output the catalog as JSON")

	rootCmd.AddCommand(catalogCmd)
}
