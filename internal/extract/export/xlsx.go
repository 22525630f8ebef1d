// Package export renders merged records for people who live in spreadsheets.
package export

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/pkg/logger_i"
	"github.com/xuri/excelize/v2"
)

const (
	SheetSummary  = "Summary"
	SheetLists    = "Lists"
	SheetTables   = "Tables"
	SheetWarnings = "Warnings"

	// ham_metin can be a whole chunk; cells hold at most 32767 characters
	maxCellChars = 32000
)

// RecordXLSX returns an XLSX workbook (as bytes) with one sheet each for
// the scalar fields, the list fields, the tables and the warnings.
func RecordXLSX(ctx context.Context, record extractionModel.MergedRecord) ([]byte, error) {
	start := time.Now()
	log := logger_i.NewLogger("Export :").WithTrace(ctx)

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName("Sheet1", SheetSummary); err != nil {
		return nil, err
	}
	for _, name := range []string{SheetLists, SheetTables, SheetWarnings} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}

	w := &sheetWriter{f: f, bold: bold}
	w.summary(record)
	w.lists(record)
	w.tables(record)
	w.warnings(record)
	if w.err != nil {
		return nil, fmt.Errorf("xlsx fill: %w", w.err)
	}

	_ = f.SetColWidth(SheetSummary, "A", "A", 24)
	_ = f.SetColWidth(SheetSummary, "B", "B", 48)
	_ = f.SetColWidth(SheetSummary, "C", "C", 12)
	_ = f.SetColWidth(SheetSummary, "D", "D", 60)
	_ = f.SetColWidth(SheetLists, "A", "A", 28)
	_ = f.SetColWidth(SheetLists, "B", "B", 60)
	_ = f.SetColWidth(SheetWarnings, "C", "C", 80)

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	log.Info("export.xlsx.ok",
		"document_id", record.DocumentID,
		"fields", len(record.Fields),
		"tables", len(record.Tables),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// sheetWriter keeps the first error so the fill code stays linear.
type sheetWriter struct {
	f    *excelize.File
	bold int
	err  error
}

func (w *sheetWriter) row(sheet string, row int, values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}

func (w *sheetWriter) header(sheet string, row int, values ...any) {
	w.row(sheet, row, values...)
	if w.err != nil || len(values) == 0 {
		return
	}
	first, _ := excelize.CoordinatesToCellName(1, row)
	last, _ := excelize.CoordinatesToCellName(len(values), row)
	w.err = w.f.SetCellStyle(sheet, first, last, w.bold)
}

func (w *sheetWriter) summary(record extractionModel.MergedRecord) {
	w.header(SheetSummary, 1, "Field", "Value", "Confidence", "Source")
	r := 2
	w.row(SheetSummary, r, "document_id", record.DocumentID)
	r++
	w.row(SheetSummary, r, "confidence", record.Confidence)
	r++
	w.row(SheetSummary, r, "method", record.Metadata.Method)
	r++
	for _, name := range sortedKeys(record.Fields) {
		fv := record.Fields[name]
		w.row(SheetSummary, r, name, truncate(cellValue(fv.Value), maxCellChars), fv.Confidence, source(record, name, fv))
		r++
	}
}

func (w *sheetWriter) lists(record extractionModel.MergedRecord) {
	w.header(SheetLists, 1, "Field", "Item")
	r := 2
	for _, name := range sortedKeys(record.Lists) {
		for _, item := range record.Lists[name] {
			w.row(SheetLists, r, name, item)
			r++
		}
	}
}

// tables stacks every table on one sheet: a title line, the header row,
// the data rows and a blank separator.
func (w *sheetWriter) tables(record extractionModel.MergedRecord) {
	r := 1
	for i, t := range record.Tables {
		title := t.Title
		if title == "" {
			title = fmt.Sprintf("Table %d", i+1)
		}
		w.header(SheetTables, r, title, string(t.Category), t.Confidence)
		r++
		w.header(SheetTables, r, toAny(t.Headers)...)
		r++
		for _, cells := range t.Rows {
			w.row(SheetTables, r, toAny(cells)...)
			r++
		}
		r++
	}
}

func (w *sheetWriter) warnings(record extractionModel.MergedRecord) {
	w.header(SheetWarnings, 1, "Field", "Severity", "Message", "Value")
	for i, warn := range record.Warnings {
		w.row(SheetWarnings, i+2, warn.Field, warn.Severity, warn.Message, cellValue(warn.Value))
	}
}

func source(record extractionModel.MergedRecord, field string, fv extractionModel.FieldValue) string {
	if c, ok := record.Citations[field]; ok && c.Proof != "" {
		if c.Source != "" {
			return truncate(c.Source+": "+c.Proof, 500)
		}
		return truncate(c.Proof, 500)
	}
	parts := make([]string, 0, len(fv.SourceRefs))
	for _, ref := range fv.SourceRefs {
		parts = append(parts, fmt.Sprintf("%s#%d", ref.Backend, ref.ChunkIndex))
	}
	return strings.Join(parts, ", ")
}

func cellValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	}
	return fmt.Sprint(v)
}

func toAny(cells []string) []any {
	out := make([]any, len(cells))
	for i, c := range cells {
		out[i] = c
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

func truncate(s string, n int) string {
	r := []rune(s)
	if n <= 0 || len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
