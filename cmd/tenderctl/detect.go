package main

import (
	"encoding/json"

	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/extract/detector"
	"github.com/spf13/cobra"
)

var detectCmd = &cobra.Command{
	Use:   "detect [file|-]",
	Short: "Report whether a document contains tables",
	Long: `Run the table presence heuristic and print its verdict as JSON. No
model is called, so no API keys are needed.

Examples:
  tenderctl detect teknik_sartname.pdf`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDetect,
}

func runDetect(cmd *cobra.Command, args []string) error {
	doc, err := readInput(cmd, args, "", "")
	if err != nil {
		return err
	}
	tuning, err := config.LoadTuning(settings.TuningFile)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(detector.New(tuning.Detection.Threshold).Detect(doc.Text))
}
