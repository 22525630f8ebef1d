// Package main implements tenderctl, a command-line front end to the
// extraction pipeline that needs no server.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/akolanti/TenderExtract/internal/app"
	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/domain/commonModels"
	"github.com/akolanti/TenderExtract/internal/extract"
	"github.com/akolanti/TenderExtract/internal/extract/docsource"
	"github.com/akolanti/TenderExtract/pkg/logger_i"
	"github.com/spf13/cobra"
)

var (
	envFile  string
	settings config.Settings
	version  = "dev"

	// newService is replaced in tests
	newService = func(ctx context.Context, s config.Settings) (extract.Service, error) {
		return app.NewExtractService(ctx, s, nil)
	}
	loadDocument = docsource.Load
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tenderctl",
	Short: "Extract structured data from public tender documents",
	Long: `tenderctl runs the tender extraction pipeline locally.

Backends, models and API keys come from the environment or a .env file,
the same settings the API server reads. Logs go to stderr.`,
	Version:       version,
	SilenceUsage:  true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		var err error
		settings, err = config.LoadSettings(envFile)
		logger_i.Init(settings, cmd.ErrOrStderr())
		return err
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env", ".env", "optional dotenv file")
	rootCmd.AddCommand(extractCmd)
	rootCmd.AddCommand(detectCmd)
	rootCmd.AddCommand(mcpCmd)
}

// readInput turns a path argument or stdin ("-" or no argument) into a
// document. Files go through the format aware loader.
func readInput(cmd *cobra.Command, args []string, id, name string) (commonModels.Document, error) {
	if len(args) == 0 || args[0] == "-" {
		raw, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return commonModels.Document{}, fmt.Errorf("failed to read from stdin: %w", err)
		}
		if strings.TrimSpace(string(raw)) == "" {
			return commonModels.Document{}, fmt.Errorf("no content on stdin")
		}
		if id == "" {
			id = "stdin"
		}
		return commonModels.Document{Id: id, Name: name, Text: string(raw), ContentType: commonModels.TXT}, nil
	}
	if id == "" {
		id = strings.TrimSuffix(filepath.Base(args[0]), filepath.Ext(args[0]))
	}
	doc, err := loadDocument(cmd.Context(), args[0], id, name)
	if err != nil {
		return commonModels.Document{}, fmt.Errorf("failed to read %s: %w", args[0], err)
	}
	return doc, nil
}
