package main

import (
	"fmt"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/dheerajdev/folio"
)

var checkContent string

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate every document without writing output",
	Args:  cobra.NoArgs,
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkContent, "content", "", "content directory (overrides config)")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg := siteConfig
	if checkContent != "" {
		cfg.ContentDir = checkContent
	}
	app := folio.New(cfg, folio.WithLogger(cliLogger(cmd, log.OFF)))
	if err := app.Library.Reload(); err != nil {
		return err
	}
	failures, err := app.Library.Errors()
	if err != nil {
		return err
	}
	docs, err := app.Library.All()
	if err != nil {
		return err
	}
	for _, f := range failures {
		cmd.PrintErrf("✗ %v\n", f)
	}
	cmd.Printf("%d document(s) ok, %d failed\n", len(docs), len(failures))
	if len(failures) > 0 {
		return fmt.Errorf("%d document(s) failed", len(failures))
	}
	return nil
}
