package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/dheerajdev/folio"
)

var (
	serveAddr  string
	serveWatch bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the site and the engagement API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
	serveCmd.Flags().BoolVar(&serveWatch, "watch", false, "reload documents when content files change")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg := siteConfig
	if serveAddr != "" {
		cfg.Addr = serveAddr
	}
	if serveWatch {
		cfg.Watch = true
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := folio.New(cfg, folio.WithLogger(cliLogger(cmd, log.INFO)))
	defer app.Close()

	app.Logger().Infof("Serving %s on %s", cfg.ContentDir, cfg.Addr)
	return app.Start(ctx)
}
