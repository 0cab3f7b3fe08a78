package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/LavishGent/breedbase/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the HTTP API",
	Long: `Serve exposes the catalog, lookup, narrative and image-info operations over
HTTP until interrupted:

  GET  /api/breeds
  POST /api/search      {"query": "..."}
  POST /api/narrate     {"breed": "..."}
  GET  /api/image-info?file=...
  GET  /health`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		client, logger, err := newClient(cmd)
		if err != nil {
			return err
		}
		defer client.Close()

		cfg := client.Config().Server
		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			cfg.Address = addr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		router := api.NewRouter(client, cfg, client.Publisher(), logger)
		return api.NewServer(router, cfg, logger).Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8080)")

	rootCmd.AddCommand(serveCmd)
}
