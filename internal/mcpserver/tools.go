package mcpserver

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/akolanti/TenderExtract/internal/domain/commonModels"
	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/extract"
	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// MetadataExtractDocument describes the extract_document tool.
var MetadataExtractDocument = &mcp.Tool{
	Name: "extract_document",
	Description: "Extract the structured record of a public tender document: institution, head count, " +
		"meals per day, contract days, estimated budget, special requirements and any tables, each " +
		"with a confidence score. Pass either the document text or a path to a PDF, DOCX or text file " +
		"readable by the server.",
	InputSchema: map[string]any{
		"type": "object",
		"properties": map[string]any{
			"text": map[string]any{
				"type":        "string",
				"description": "Full text of the tender document",
			},
			"path": map[string]any{
				"type":        "string",
				"description": "Path of a PDF, DOCX or TXT file on the server. Ignored when text is set.",
			},
			"document_id": map[string]any{
				"type":        "string",
				"description": "Optional identifier echoed back in the record",
			},
			"document_name": map[string]any{
				"type":        "string",
				"description": "Optional display name used in prompts and citations",
			},
		},
	},
	OutputSchema: map[string]any{
		"type":     "object",
		"required": []string{"record"},
		"properties": map[string]any{
			"record": map[string]any{"type": "object"},
		},
	},
}

// MetadataDetectTables describes the detect_tables tool.
var MetadataDetectTables = &mcp.Tool{
	Name:        "detect_tables",
	Description: "Report whether a tender text contains tables worth a dedicated extraction pass. Local heuristic, no model call.",
	InputSchema: map[string]any{
		"type":     "object",
		"required": []string{"text"},
		"properties": map[string]any{
			"text": map[string]any{
				"type":        "string",
				"description": "Text to inspect",
			},
		},
	},
}

type InputExtractDocument struct {
	Text         string `json:"text"`
	Path         string `json:"path"`
	DocumentID   string `json:"document_id"`
	DocumentName string `json:"document_name"`
}

type OutputExtractDocument struct {
	Record extractionModel.MergedRecord `json:"record"`
}

type InputDetectTables struct {
	Text string `json:"text"`
}

type OutputDetectTables struct {
	HasTables      bool     `json:"has_tables"`
	EstimatedCount int      `json:"estimated_count"`
	Confidence     float64  `json:"confidence"`
	Indicators     []string `json:"indicators,omitempty"`
}

// LoadFunc reads a document from disk, normally docsource.Load.
type LoadFunc func(ctx context.Context, path, id, name string) (commonModels.Document, error)

type tools struct {
	svc  extract.Service
	load LoadFunc
}

func (t *tools) ExtractDocument(ctx context.Context, _ *mcp.CallToolRequest, input InputExtractDocument) (*mcp.CallToolResult, OutputExtractDocument, error) {
	doc, err := t.document(ctx, input)
	if err != nil {
		return nil, OutputExtractDocument{}, err
	}
	record, err := t.svc.ExtractDocument(ctx, doc)
	if err != nil {
		var failed *extract.AllBackendsFailedError
		if errors.As(err, &failed) {
			return nil, OutputExtractDocument{}, fmt.Errorf("no backend produced data after %d attempts, retry later", len(failed.Attempts))
		}
		return nil, OutputExtractDocument{}, err
	}
	return nil, OutputExtractDocument{Record: record}, nil
}

func (t *tools) document(ctx context.Context, input InputExtractDocument) (commonModels.Document, error) {
	id := input.DocumentID
	if id == "" {
		id = uuid.NewString()
	}
	if strings.TrimSpace(input.Text) != "" {
		return commonModels.Document{Id: id, Name: input.DocumentName, Text: input.Text, ContentType: commonModels.TXT}, nil
	}
	if input.Path == "" {
		return commonModels.Document{}, errors.New("either text or path is required")
	}
	if t.load == nil {
		return commonModels.Document{}, errors.New("reading files is disabled on this server")
	}
	return t.load(ctx, input.Path, id, input.DocumentName)
}

func (t *tools) DetectTables(_ context.Context, _ *mcp.CallToolRequest, input InputDetectTables) (*mcp.CallToolResult, OutputDetectTables, error) {
	if input.Text == "" {
		return nil, OutputDetectTables{}, errors.New("text is required")
	}
	d := t.svc.DetectTables(input.Text)
	return nil, OutputDetectTables{
		HasTables:      d.HasTables,
		EstimatedCount: d.EstimatedCount,
		Confidence:     d.Confidence,
		Indicators:     d.Indicators,
	}, nil
}
