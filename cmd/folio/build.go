package main

import (
	"fmt"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/dheerajdev/folio"
)

var (
	buildOut     string
	buildContent string
)

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Compile every document and write the static site",
	Long: `Build runs every document through the content pipeline and writes the
rendered pages, the index and the RSS feed to the output directory.
Documents that fail validation are reported and not written; the command
then exits with a non-zero status.`,
	Args: cobra.NoArgs,
	RunE: runBuild,
}

func init() {
	buildCmd.Flags().StringVarP(&buildOut, "out", "o", "dist", "output directory")
	buildCmd.Flags().StringVar(&buildContent, "content", "", "content directory (overrides config)")
	rootCmd.AddCommand(buildCmd)
}

func runBuild(cmd *cobra.Command, _ []string) error {
	cfg := siteConfig
	if buildContent != "" {
		cfg.ContentDir = buildContent
	}
	cfg.EngagementEnabled = false

	app := folio.New(cfg, folio.WithLogger(cliLogger(cmd, log.OFF)))
	report, err := app.Build(cmd.Context(), buildOut)
	if err != nil {
		return fmt.Errorf("build failed: %w", err)
	}
	for _, f := range report.Failures {
		cmd.PrintErrf("✗ %v\n", f)
	}
	cmd.Printf("Wrote %d files to %s\n", len(report.Written), buildOut)
	if n := len(report.Failures); n > 0 {
		return fmt.Errorf("%d document(s) failed", n)
	}
	return nil
}
