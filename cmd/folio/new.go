package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/dheerajdev/folio/scaffold"
)

var newCmd = &cobra.Command{
	Use:   "new <dir>",
	Short: "Create a new site with a sample post and project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := args[0]
		cmd.Printf("Creating new folio site: %s\n\n", dir)
		if err := scaffold.Generate(dir, scaffold.NewData(dir, time.Now()), cmd.OutOrStdout()); err != nil {
			return err
		}
		cmd.Println()
		cmd.Println("Done! Next steps:")
		cmd.Println()
		cmd.Printf("  cd %s\n", dir)
		cmd.Println("  FOLIO_SESSION_SECRET=change-me folio serve --watch")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(newCmd)
}
