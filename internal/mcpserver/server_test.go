package mcpserver

import (
	"context"
	"errors"
	"testing"

	"github.com/akolanti/TenderExtract/internal/domain/commonModels"
	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/domain/jobModel"
	"github.com/akolanti/TenderExtract/internal/extract"
	"github.com/akolanti/TenderExtract/internal/extract/detector"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	OnExtract func(doc commonModels.Document) (extractionModel.MergedRecord, error)
}

func (f *fakeService) ExtractDocument(_ context.Context, doc commonModels.Document) (extractionModel.MergedRecord, error) {
	return f.OnExtract(doc)
}

func (f *fakeService) DetectTables(text string) detector.Detection {
	return detector.New(0.5).Detect(text)
}

func (f *fakeService) ProcessJob(_ context.Context, j jobModel.Job) (jobModel.Job, *extractionModel.MergedRecord) {
	return j, nil
}

func connect(t *testing.T, svc extract.Service, load LoadFunc) *mcp.ClientSession {
	t.Helper()
	ctx := context.Background()
	clientTransport, serverTransport := mcp.NewInMemoryTransports()

	ss, err := New(svc, load).Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ss.Close() })

	cs, err := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "v0.0.1"}, nil).Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cs.Close() })
	return cs
}

func textOf(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	tc, ok := res.Content[0].(*mcp.TextContent)
	require.True(t, ok)
	return tc.Text
}

func TestListTools(t *testing.T) {
	cs := connect(t, &fakeService{}, nil)
	res, err := cs.ListTools(context.Background(), nil)
	require.NoError(t, err)

	names := make([]string, 0, len(res.Tools))
	for _, tool := range res.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"extract_document", "detect_tables"}, names)
}

func TestExtractDocumentTool(t *testing.T) {
	var got commonModels.Document
	svc := &fakeService{OnExtract: func(doc commonModels.Document) (extractionModel.MergedRecord, error) {
		got = doc
		r := extractionModel.NewMergedRecord(doc.Id)
		r.Fields["kisi_sayisi"] = extractionModel.FieldValue{Value: 250.0, Confidence: 0.9}
		r.Confidence = 0.9
		return r, nil
	}}
	cs := connect(t, svc, nil)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "extract_document",
		Arguments: map[string]any{"text": "Günlük 250 kişi", "document_id": "ihale-5"},
	})

	require.NoError(t, err)
	require.False(t, res.IsError, textOf(t, res))
	assert.Equal(t, "ihale-5", got.Id)
	structured, ok := res.StructuredContent.(map[string]any)
	require.True(t, ok)
	record := structured["record"].(map[string]any)
	assert.Equal(t, "ihale-5", record["document_id"])
	assert.Equal(t, 0.9, record["confidence"])
}

func TestExtractDocumentToolFromPath(t *testing.T) {
	svc := &fakeService{OnExtract: func(doc commonModels.Document) (extractionModel.MergedRecord, error) {
		return extractionModel.NewMergedRecord(doc.Id), nil
	}}
	var loadedPath string
	cs := connect(t, svc, func(_ context.Context, path, id, name string) (commonModels.Document, error) {
		loadedPath = path
		return commonModels.Document{Id: id, Name: name, Text: "metin"}, nil
	})

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "extract_document",
		Arguments: map[string]any{"path": "/data/sartname.pdf"},
	})

	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, "/data/sartname.pdf", loadedPath)
}

func TestExtractDocumentToolErrors(t *testing.T) {
	svc := &fakeService{OnExtract: func(doc commonModels.Document) (extractionModel.MergedRecord, error) {
		return extractionModel.MergedRecord{}, &extract.AllBackendsFailedError{DocumentID: doc.Id, Attempts: make([]extractionModel.ExtractionAttempt, 6)}
	}}
	cs := connect(t, svc, nil)
	ctx := context.Background()

	res, err := cs.CallTool(ctx, &mcp.CallToolParams{Name: "extract_document", Arguments: map[string]any{"text": "x"}})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "6 attempts")

	res, err = cs.CallTool(ctx, &mcp.CallToolParams{Name: "extract_document", Arguments: map[string]any{}})
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, textOf(t, res), "either text or path")

	res, err = cs.CallTool(ctx, &mcp.CallToolParams{Name: "extract_document", Arguments: map[string]any{"path": "/etc/passwd"}})
	require.NoError(t, err)
	assert.True(t, res.IsError, "paths are refused without a loader")
}

func TestDetectTablesTool(t *testing.T) {
	cs := connect(t, &fakeService{OnExtract: func(commonModels.Document) (extractionModel.MergedRecord, error) {
		return extractionModel.MergedRecord{}, errors.New("unused")
	}}, nil)

	res, err := cs.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "detect_tables",
		Arguments: map[string]any{"text": "Bu ihale temizlik hizmeti alımını kapsar."},
	})

	require.NoError(t, err)
	require.False(t, res.IsError)
	structured := res.StructuredContent.(map[string]any)
	assert.Equal(t, false, structured["has_tables"])
}
