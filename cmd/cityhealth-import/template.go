package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/cityhealth/directory/internal/importer"
)

var templateCmd = &cobra.Command{
	Use:   "template <out.xlsx>",
	Short: "Write an empty provider spreadsheet with the expected columns",
	Args:  cobra.ExactArgs(1),
	RunE:  runTemplate,
}

func init() {
	rootCmd.AddCommand(templateCmd)
}

func runTemplate(cmd *cobra.Command, args []string) error {
	path := filepath.Clean(args[0])
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := importer.WriteTemplate(f); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	cmd.Printf("Template written to %s\n", path)
	return nil
}
