package detector

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/akolanti/TenderExtract/internal/extract/textnorm"
)

const (
	strongLineScore = 0.7
	contextBefore   = 2 //title lines above a table
	contextAfter    = 3 //totals below a table
	maxGap          = 2
)

var (
	wideSpace    = regexp.MustCompile(`\s{4,}`)
	listNumbered = regexp.MustCompile(`^\d{1,2}-\p{Lu}`)
	sentenceMark = regexp.MustCompile(`[.,;:!?]`)
)

// LineScore rates a single line as a table row, 0..1.
func LineScore(line string) float64 {
	trimmed := strings.TrimSpace(line)
	if utf8.RuneCountInString(trimmed) < 10 {
		return 0
	}
	score := 0.0

	if strings.ContainsAny(line, boxDrawing) {
		score += 0.7
	}

	switch tabs := strings.Count(line, "\t"); {
	case tabs >= 3:
		score += 0.5
	case tabs >= 2:
		score += 0.3
	}

	switch n := len(lineNumber.FindAllStringIndex(line, -1)); {
	case n >= 4:
		score += 0.4
	case n == 3:
		score += 0.2
	}

	switch n := len(wideSpace.FindAllStringIndex(line, -1)); {
	case n >= 3:
		score += 0.3
	case n >= 2:
		score += 0.15
	}

	hasKeyword := false
	for _, w := range textnorm.Words(line) {
		switch w {
		case "kahvalti", "ogle", "aksam":
			hasKeyword = true
			score += 0.15
		case "toplam":
			hasKeyword = true
			score += 0.2
		case "kurulus", "birim", "miktar", "fiyat", "tutar":
			hasKeyword = true
			score += 0.1
		}
	}

	// prose and numbered clauses ("17-Yüklenici") are not rows
	if len(line) > 50 && sentenceMark.MatchString(line) && !hasKeyword {
		score -= 0.3
	}
	if listNumbered.MatchString(trimmed) {
		score -= 0.4
	}

	return max(0, min(score, 1))
}

// Sections returns the line windows of text that carry strong table
// evidence, with a little context around each so titles and totals survive.
func Sections(text string) []string {
	lines := strings.Split(text, "\n")
	var hits []int
	for i, line := range lines {
		if LineScore(line) >= strongLineScore {
			hits = append(hits, i)
		}
	}
	if len(hits) == 0 {
		return nil
	}

	var sections []string
	flush := func(from, to int) {
		end := min(len(lines)-1, to+contextAfter)
		if end-from+1 >= 2 {
			sections = append(sections, strings.Join(lines[from:end+1], "\n"))
		}
	}

	from := max(0, hits[0]-contextBefore)
	last := hits[0]
	for _, idx := range hits[1:] {
		if idx-last <= maxGap {
			last = idx
			continue
		}
		flush(from, last)
		from = max(0, idx-contextBefore)
		last = idx
	}
	flush(from, last)
	return sections
}
