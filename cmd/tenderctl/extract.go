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

const (
	formatJSON = "json"
	formatXLSX = "xlsx"
)

var (
	extractFormat string
	extractOut    string
	extractID     string
	extractName   string
)

var extractCmd = &cobra.Command{
	Use:   "extract [file|-]",
	Short: "Extract the merged record of one tender document",
	Long: `Run the full pipeline on a PDF, DOCX or text file, or on text from stdin,
and print the merged record.

Examples:
  # JSON to stdout
  tenderctl extract teknik_sartname.pdf

  # Spreadsheet for review
  tenderctl extract --format xlsx --out ihale.xlsx idari_sartname.docx

  # From a pipe
  pdftotext ihale.pdf - | tenderctl extract -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().StringVarP(&extractFormat, "format", "f", formatJSON, "output format: json or xlsx")
	extractCmd.Flags().StringVarP(&extractOut, "out", "o", "", "write to this file instead of stdout")
	extractCmd.Flags().StringVar(&extractID, "id", "", "document id, defaults to the file name")
	extractCmd.Flags().StringVar(&extractName, "name", "", "document display name")
}

func runExtract(cmd *cobra.Command, args []string) error {
	if extractFormat != formatJSON && extractFormat != formatXLSX {
		return fmt.Errorf("unknown format %q, want json or xlsx", extractFormat)
	}
	doc, err := readInput(cmd, args, extractID, extractName)
	if err != nil {
		return err
	}
	svc, err := newService(cmd.Context(), settings)
	if err != nil {
		return err
	}
	record, err := svc.ExtractDocument(cmd.Context(), doc)
	if err != nil {
		return err
	}
	body, err := render(cmd, record)
	if err != nil {
		return err
	}
	return writeOutput(cmd.OutOrStdout(), body)
}

func render(cmd *cobra.Command, record extractionModel.MergedRecord) ([]byte, error) {
	if extractFormat == formatXLSX {
		return export.RecordXLSX(cmd.Context(), record)
	}
	body, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(body, '\n'), nil
}

func writeOutput(stdout io.Writer, body []byte) error {
	if extractOut == "" {
		_, err := stdout.Write(body)
		return err
	}
	if err := os.WriteFile(extractOut, body, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", extractOut, err)
	}
	return nil
}
