package main

import (
	"os"

	"github.com/labstack/gommon/log"
	"github.com/spf13/cobra"

	"github.com/dheerajdev/folio"
)

// version is set at build time via ldflags.
var version = "dev"

var (
	cfgFile    string
	verbose    bool
	siteConfig folio.SiteConfig
)

var rootCmd = &cobra.Command{
	Use:   "folio",
	Short: "folio - a personal site built from markdown documents",
	Long: `folio compiles a directory of markdown documents with YAML front matter
into a site. Documents are validated against the schema of their layout,
headings are limited to levels 2 and 3, and every page gets a table of
contents. The server also hosts the engagement API for views, shares and
reactions.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := folio.LoadConfig(cfgFile)
		if err != nil {
			return err
		}
		siteConfig = cfg
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config.yaml", "site config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log debug output")
}

// cliLogger logs to the command's stderr at level, or at DEBUG with --verbose.
func cliLogger(cmd *cobra.Command, level log.Lvl) *log.Logger {
	l := log.New("folio")
	l.SetOutput(cmd.ErrOrStderr())
	l.SetHeader("${level} ${prefix}:")
	if verbose {
		level = log.DEBUG
	}
	l.SetLevel(level)
	return l
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
