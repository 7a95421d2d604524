package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ministryofjustice/cica-review-case-documents-sub001/config"
	srv "github.com/ministryofjustice/cica-review-case-documents-sub001/internal/server"
)

func main() {
	var root = &cobra.Command{Use: "cica-docs"}

	var serveAddr string
	var cfgPath string
	var serve = &cobra.Command{
		Use:   "serve",
		Short: "Run the case-document portal API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if serveAddr == "" {
				serveAddr = os.Getenv("CICA_HTTP_ADDR")
			}
			cfg, err := config.LoadConfig(cfgPath)
			if err != nil {
				return err
			}
			return srv.Run(cfg, serveAddr)
		},
	}
	serve.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serve.Flags().StringVarP(&cfgPath, "config", "c", "", "config file (default ./config/config.json)")

	root.AddCommand(serve)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}
