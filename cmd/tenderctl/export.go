package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/extract/export"
	"github.com/spf13/cobra"
)

var exportOut string

var exportCmd = &cobra.Command{
	Use:   "export [record.json|-]",
	Short: "Convert a saved JSON record into an XLSX workbook",
	Long: `Render a merged record previously written by "tenderctl extract" (or the
record field of a /status response) as a spreadsheet.

Examples:
  tenderctl extract ihale.pdf > ihale.json
  tenderctl export --out ihale.xlsx ihale.json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "workbook path (required)")
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	var src io.Reader = cmd.InOrStdin()
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", args[0], err)
		}
		defer f.Close()
		src = f
	}

	var record extractionModel.MergedRecord
	if err := json.NewDecoder(src).Decode(&record); err != nil {
		return fmt.Errorf("not a merged record: %w", err)
	}
	if record.DocumentID == "" {
		return fmt.Errorf("not a merged record: document_id is missing")
	}
	body, err := export.RecordXLSX(cmd.Context(), record)
	if err != nil {
		return err
	}
	return os.WriteFile(exportOut, body, 0o644)
}
