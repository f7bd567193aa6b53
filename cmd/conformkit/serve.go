package main

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/sensiblebit/conformkit/internal"
	"github.com/sensiblebit/conformkit/internal/server"
	"github.com/spf13/cobra"
)

var serveListen string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog as a JSON API",
	Long:  "Serve products, trust-list certificates and trust-store exports over HTTP. Registry documents are fetched on first use and kept in memory.",
	Example: `  conformkit serve
  conformkit serve --listen :9000 --products-source ./products.json`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveListen, "listen", "", "Listen address (overrides serve.listen in config)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	addr := cfg.Serve.Listen
	override(cmd.Flags(), "listen", &addr, serveListen)

	passwords, err := internal.ProcessPasswords(splitPasswords(passwordList), passwordFile)
	if err != nil {
		return err
	}
	fetcher, cache, err := internal.NewFetcher(cfg.Fetch)
	if err != nil {
		return err
	}
	defer cache.Close()

	if logLevel != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}
	catalog := internal.NewCatalog(fetcher, cfg.Sources, passwords)
	srv := server.New(catalog, fetcher, slog.Default())
	return srv.Run(cmd.Context(), addr)
}
