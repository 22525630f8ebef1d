package tables

import (
	"strings"

	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
)

const (
	boxVertical  = "│"
	boxSeparator = "├┼┌┐└┘─┬┴┤╋═║╔╗╚╝╠╣╦╩╬+-=|: "
)

// ParseASCIITable turns a text-rendered table into headers and rows.
// Box-drawing (│), pipe (|) and tab separated layouts are understood. The
// first non-separator line becomes the header row. ok is false when the
// text holds no header plus at least one data row.
func ParseASCIITable(content string) (headers []string, rows [][]string, ok bool) {
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")
	sep := detectSeparator(lines)
	if sep == "" {
		return nil, nil, false
	}

	for _, line := range lines {
		if strings.TrimSpace(line) == "" || isRule(line) {
			continue
		}
		if !strings.Contains(line, sep) {
			continue
		}
		cells := splitCells(line, sep)
		if len(cells) == 0 {
			continue
		}
		if headers == nil {
			headers = cells
			continue
		}
		rows = append(rows, cells)
	}
	if len(headers) == 0 || len(rows) == 0 {
		return nil, nil, false
	}
	return headers, rows, true
}

// TableFromASCII wraps ParseASCIITable into a Table carrying the given
// title and confidence. Cell text has mojibake repaired.
func TableFromASCII(title, content string, confidence float64) (extractionModel.Table, bool) {
	headers, rows, ok := ParseASCIITable(content)
	if !ok {
		return extractionModel.Table{}, false
	}
	for i := range headers {
		headers[i] = FixEncoding(headers[i])
	}
	for _, row := range rows {
		for j := range row {
			row[j] = FixEncoding(row[j])
		}
	}
	return extractionModel.Table{
		Title:      FixEncoding(title),
		Headers:    headers,
		Rows:       rows,
		RowCount:   len(rows),
		Confidence: confidence,
	}, true
}

func detectSeparator(lines []string) string {
	for _, candidate := range []string{boxVertical, "|", "\t"} {
		hits := 0
		for _, line := range lines {
			if strings.Contains(line, candidate) {
				hits++
			}
		}
		if hits >= 2 {
			return candidate
		}
	}
	return ""
}

// isRule reports a line made only of border characters.
func isRule(line string) bool {
	return strings.Trim(line, boxSeparator) == ""
}

func splitCells(line, sep string) []string {
	parts := strings.Split(line, sep)
	cells := make([]string, 0, len(parts))
	for _, p := range parts {
		if c := strings.TrimSpace(p); c != "" {
			cells = append(cells, c)
		}
	}
	return cells
}

// UTF-8 Turkish text decoded as Latin-1 or Windows-1254 somewhere upstream.
var mojibake = strings.NewReplacer(
	"Ã§", "ç", "Ã‡", "Ç",
	"Ã¶", "ö", "Ã–", "Ö",
	"Ã¼", "ü", "Ãœ", "Ü",
	"ÄŸ", "ğ", "Äž", "Ğ",
	"Ä±", "ı", "Ä°", "İ",
	"ÅŸ", "ş", "Åž", "Ş",
)

// FixEncoding repairs the common double-encoded Turkish letters.
func FixEncoding(s string) string {
	if !strings.ContainsAny(s, "ÃÄÅ") {
		return s
	}
	return mojibake.Replace(s)
}
