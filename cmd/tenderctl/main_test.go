package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/domain/commonModels"
	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/domain/jobModel"
	"github.com/akolanti/TenderExtract/internal/extract"
	"github.com/akolanti/TenderExtract/internal/extract/detector"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeService struct {
	got commonModels.Document
}

func (f *fakeService) ExtractDocument(_ context.Context, doc commonModels.Document) (extractionModel.MergedRecord, error) {
	f.got = doc
	r := extractionModel.NewMergedRecord(doc.Id)
	r.Fields["kisi_sayisi"] = extractionModel.FieldValue{Value: 250.0, Confidence: 0.8}
	r.Confidence = 0.8
	return r, nil
}

func (f *fakeService) DetectTables(text string) detector.Detection { return detector.Detection{} }

func (f *fakeService) ProcessJob(_ context.Context, j jobModel.Job) (jobModel.Job, *extractionModel.MergedRecord) {
	return j, nil
}

func run(t *testing.T, stdin string, args ...string) (*fakeService, string) {
	t.Helper()
	fake := &fakeService{}
	prev := newService
	newService = func(context.Context, config.Settings) (extract.Service, error) { return fake, nil }
	t.Cleanup(func() {
		newService = prev
		extractFormat, extractOut, extractID, extractName = formatJSON, "", "", ""
	})

	var out, errOut bytes.Buffer
	rootCmd.SetArgs(append([]string{"--env", filepath.Join(t.TempDir(), "missing.env")}, args...))
	rootCmd.SetIn(strings.NewReader(stdin))
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	require.NoError(t, rootCmd.Execute(), errOut.String())
	return fake, out.String()
}

func TestExtractFromStdinPrintsJSON(t *testing.T) {
	fake, out := run(t, "Günlük 250 kişiye yemek", "extract", "--id", "ihale-3", "-")

	assert.Equal(t, "ihale-3", fake.got.Id)
	assert.Equal(t, "Günlük 250 kişiye yemek", fake.got.Text)

	var record extractionModel.MergedRecord
	require.NoError(t, json.Unmarshal([]byte(out), &record))
	assert.Equal(t, "ihale-3", record.DocumentID)
	assert.Equal(t, 250.0, record.Fields["kisi_sayisi"].Value)
}

func TestExtractFileToXLSX(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "teknik_sartname.txt")
	require.NoError(t, os.WriteFile(src, []byte("Günlük 250 kişi"), 0o600))
	dst := filepath.Join(dir, "out.xlsx")

	fake, out := run(t, "", "extract", "--format", "xlsx", "--out", dst, src)

	assert.Empty(t, out)
	assert.Equal(t, "teknik_sartname", fake.got.Id, "id defaults to the file name")
	f, err := excelize.OpenFile(dst)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"document_id", "teknik_sartname"}, rows[1])
}

func TestExtractRejectsUnknownFormat(t *testing.T) {
	t.Cleanup(func() { extractFormat = formatJSON })
	rootCmd.SetArgs([]string{"--env", filepath.Join(t.TempDir(), "missing.env"), "extract", "--format", "csv", "-"})
	rootCmd.SetIn(strings.NewReader("x"))
	rootCmd.SetOut(&bytes.Buffer{})
	rootCmd.SetErr(&bytes.Buffer{})
	assert.Error(t, rootCmd.Execute())
}

func TestDetectPrintsVerdict(t *testing.T) {
	table := "TABLO 1: Öğün Dağılımı\n" +
		"Kuruluş\tKahvaltı\tÖğle\tAkşam\tToplam\n" +
		"Huzurevi\t120\t130\t125\t375\n" +
		"Yurt\t80\t95\t90\t265\n" +
		"Hastane\t200\t210\t205\t615\n" +
		"Kreş\t40\t45\t0\t85\n" +
		"Rehabilitasyon\t60\t60\t60\t180\n" +
		"Genel\t500\t540\t480\t1520\n"
	_, out := run(t, table, "detect")

	var d detector.Detection
	require.NoError(t, json.Unmarshal([]byte(out), &d))
	assert.True(t, d.HasTables)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"extract", "detect", "export", "mcp"} {
		assert.True(t, names[want], want)
	}
}

func TestExportJSONRecordToXLSX(t *testing.T) {
	dir := t.TempDir()
	dst := filepath.Join(dir, "record.xlsx")
	t.Cleanup(func() { exportOut = "" })

	_, out := run(t, `{"document_id":"ihale-9","confidence":0.7,"fields":{"kurum":{"value":"Belediye","confidence":0.7}}}`,
		"export", "--out", dst, "-")

	assert.Empty(t, out)
	f, err := excelize.OpenFile(dst)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows("Summary")
	require.NoError(t, err)
	assert.Equal(t, []string{"document_id", "ihale-9"}, rows[1])
	assert.Equal(t, "Belediye", rows[4][1])
}
