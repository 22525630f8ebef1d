package backend

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/extract/tables"
)

// promoteNarrative turns a parsed narrative payload into a partial result.
// Unset scalars are left out so they never shadow another chunk's value.
func promoteNarrative(payload map[string]any, chunkIndex int, defaultConfidence float64) (extractionModel.PartialResult, error) {
	keys := append(append([]string{"veri_havuzu", "guven_skoru"}, narrativeScalars...), narrativeLists...)
	if err := validatePayload(narrativeSchema, payload, keys...); err != nil {
		return extractionModel.PartialResult{}, err
	}

	result := extractionModel.PartialResult{
		ChunkIndex: chunkIndex,
		Backend:    extractionModel.Narrative,
		Fields:     map[string]any{},
		Lists:      map[string][]string{},
		Citations:  map[string]extractionModel.Citation{},
		Confidence: confidenceOr(payload["guven_skoru"], defaultConfidence),
	}

	for _, f := range narrativeScalars {
		if v, ok := payload[f]; ok && !extractionModel.IsUnset(v) {
			result.Fields[f] = v
		}
	}
	for _, f := range narrativeLists {
		if items := stringItems(payload[f]); len(items) > 0 {
			result.Lists[f] = items
		}
	}

	if pool, ok := payload["veri_havuzu"].(map[string]any); ok {
		if text, ok := pool["ham_metin"].(string); ok && !extractionModel.IsUnset(text) {
			result.Fields["ham_metin"] = text
		}
		if sources, ok := pool["kaynaklar"].(map[string]any); ok {
			for field, raw := range sources {
				if c, ok := citation(raw); ok {
					result.Citations[field] = c
				}
			}
		}
	}
	// a confidence without anything behind it would outrank real data
	if !result.HasData() {
		result.Confidence = 0
	}
	return result, nil
}

// promoteTables turns a parsed table payload into a partial result. Tables
// sent in the legacy ASCII "icerik" form are converted; entries with
// neither form are dropped.
func promoteTables(payload map[string]any, chunkIndex int, defaultConfidence, asciiConfidence float64) (extractionModel.PartialResult, error) {
	if err := validatePayload(tableSchema, payload, "tablolar"); err != nil {
		return extractionModel.PartialResult{}, err
	}

	result := extractionModel.PartialResult{
		ChunkIndex: chunkIndex,
		Backend:    extractionModel.Tabular,
		Confidence: defaultConfidence,
	}
	entries, _ := payload["tablolar"].([]any)
	total := 0.0
	for _, e := range entries {
		entry, ok := e.(map[string]any)
		if !ok {
			continue
		}
		title, _ := entry["baslik"].(string)
		var table extractionModel.Table

		headers := stringItems(entry["headers"])
		rows := rowItems(entry["rows"])
		switch {
		case len(headers) > 0 && entry["rows"] != nil:
			table = extractionModel.Table{
				Title:      tables.FixEncoding(strings.TrimSpace(title)),
				Headers:    fixAll(headers),
				Rows:       rows,
				RowCount:   len(rows),
				Confidence: confidenceOr(entry["guven"], defaultConfidence),
			}
			if n, ok := extractionModel.AsNumber(entry["satir_sayisi"]); ok && n > 0 {
				table.RowCount = int(n)
			}
		case entry["icerik"] != nil:
			content, _ := entry["icerik"].(string)
			converted, ok := tables.TableFromASCII(strings.TrimSpace(title), content, confidenceOr(entry["guven"], asciiConfidence))
			if !ok {
				continue
			}
			table = converted
		default:
			continue
		}
		result.Tables = append(result.Tables, table)
		total += table.Confidence
	}
	if len(result.Tables) == 0 {
		// "no tables here" is an empty answer, not a confident one
		result.Confidence = 0
		return result, nil
	}
	result.Confidence = total / float64(len(result.Tables))
	return result, nil
}

// confidenceOr reads a model-reported confidence. Percentages (0-100) are
// scaled down; anything missing falls back to def.
func confidenceOr(v any, def float64) float64 {
	c, ok := extractionModel.AsNumber(v)
	if !ok {
		return extractionModel.ClampConfidence(def)
	}
	if c > 1 && c <= 100 {
		c /= 100
	}
	return extractionModel.ClampConfidence(c)
}

func citation(raw any) (extractionModel.Citation, bool) {
	switch t := raw.(type) {
	case string:
		if extractionModel.IsUnset(t) {
			return extractionModel.Citation{}, false
		}
		return extractionModel.Citation{Proof: t}, true
	case map[string]any:
		c := extractionModel.Citation{
			Value:  cellText(t["deger"]),
			Proof:  cellText(t["kaynak"]),
			Source: cellText(t["dosya"]),
		}
		if c.Value == "" && c.Proof == "" {
			return c, false
		}
		return c, true
	}
	return extractionModel.Citation{}, false
}

func stringItems(v any) []string {
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		if s := cellText(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// rowItems keeps empty cells so columns stay aligned.
func rowItems(v any) [][]string {
	rows, ok := v.([]any)
	if !ok {
		return [][]string{}
	}
	out := make([][]string, 0, len(rows))
	for _, r := range rows {
		cells, ok := r.([]any)
		if !ok {
			continue
		}
		row := make([]string, len(cells))
		for i, c := range cells {
			row[i] = tables.FixEncoding(cellText(c))
		}
		out = append(out, row)
	}
	return out
}

func cellText(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return strings.TrimSpace(fmt.Sprint(v))
}

func fixAll(in []string) []string {
	for i := range in {
		in[i] = tables.FixEncoding(in[i])
	}
	return in
}
