package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dheerajdev/folio/content"
)

var schemaLayout string

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the JSON Schema of a layout's front matter",
	Args:  cobra.NoArgs,
	RunE:  runSchema,
}

func init() {
	schemaCmd.Flags().StringVarP(&schemaLayout, "layout", "l", content.LayoutPost, "layout name (Post or Project)")
	rootCmd.AddCommand(schemaCmd)
}

func runSchema(cmd *cobra.Command, _ []string) error {
	switch schemaLayout {
	case content.LayoutPost, content.LayoutProject:
	default:
		return fmt.Errorf("unknown layout %q: want %s or %s", schemaLayout, content.LayoutPost, content.LayoutProject)
	}
	data, err := json.MarshalIndent(content.Schema(schemaLayout), "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %w", err)
	}
	cmd.Println(string(data))
	return nil
}
