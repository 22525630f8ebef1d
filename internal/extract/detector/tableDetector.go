package detector

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/akolanti/TenderExtract/internal/extract/textnorm"
)

const DefaultThreshold = 0.3

// Detection is the outcome of the table presence heuristic.
type Detection struct {
	HasTables      bool     `json:"has_tables"`
	EstimatedCount int      `json:"estimated_count"`
	Confidence     float64  `json:"confidence"`
	Score          int      `json:"score"`
	Indicators     []string `json:"indicators,omitempty"`
}

// header vocabulary of meal/catering tender tables, in folded form
var headerKeywords = []string{
	"toplam", "kahvalti", "ogle", "aksam", "kurulus", "birim", "miktar", "fiyat", "tutar",
}

var headerBigrams = [][2]string{
	{"kisi", "sayisi"},
}

var (
	numberSequence = regexp.MustCompile(`(\d+[\s\t]+){3,}`)
	multiSpace     = regexp.MustCompile(`\s{3,}`)
	lineNumber     = regexp.MustCompile(`\b\d+\b`)
	numberedTable  = regexp.MustCompile(`tablo\s*\d+`)
)

const boxDrawing = "─│┌┐└┘├┤┬┴┼═║╔╗╚╝╠╣╦╩╬"

type Detector struct {
	threshold float64
}

func New(threshold float64) *Detector {
	if threshold <= 0 || threshold >= 1 {
		threshold = DefaultThreshold
	}
	return &Detector{threshold: threshold}
}

// Detect scores text for tabular content. It has no side effects, so the
// same text always gives the same Detection.
func (d *Detector) Detect(text string) Detection {
	var indicators []string
	score := 0

	folded := textnorm.Fold(text)

	words := textnorm.Words(text)
	counts := make(map[string]int, len(headerKeywords))
	for i, w := range words {
		counts[w]++
		for _, bg := range headerBigrams {
			if w == bg[0] && i+1 < len(words) && words[i+1] == bg[1] {
				counts[bg[0]+" "+bg[1]]++
			}
		}
	}
	keywords := append([]string{}, headerKeywords...)
	for _, bg := range headerBigrams {
		keywords = append(keywords, bg[0]+" "+bg[1])
	}
	for _, kw := range keywords {
		if n := counts[kw]; n > 0 {
			score += n * 2
			indicators = append(indicators, fmt.Sprintf("header keyword %q x%d", kw, n))
		}
	}

	if seqs := numberSequence.FindAllStringIndex(text, -1); len(seqs) > 0 {
		score += len(seqs) * 5
		indicators = append(indicators, fmt.Sprintf("%d number sequences", len(seqs)))
	}

	borders := 0
	for _, r := range text {
		if strings.ContainsRune(boxDrawing, r) {
			borders++
		}
	}
	if borders > 10 {
		score += 20
		indicators = append(indicators, "box drawing borders")
	}

	if tabs := strings.Count(text, "\t"); tabs > 10 {
		score += min(tabs, 30)
		indicators = append(indicators, fmt.Sprintf("%d tab characters", tabs))
	}

	if runs := multiSpace.FindAllStringIndex(text, -1); len(runs) > 20 {
		score += 10
		indicators = append(indicators, "aligned whitespace columns")
	}

	numericLines := 0
	for _, line := range strings.Split(text, "\n") {
		if len(lineNumber.FindAllStringIndex(line, 3)) >= 3 {
			numericLines++
		}
	}
	if numericLines > 5 {
		score += numericLines
		indicators = append(indicators, fmt.Sprintf("%d lines with 3+ numbers", numericLines))
	}

	if strings.Contains(folded, "tablo") {
		score += 15
		indicators = append(indicators, `the word "tablo"`)
	}

	confidence := math.Min(float64(score)/100, 1)
	hasTables := confidence > d.threshold

	count := 0
	if hasTables {
		count = max(score/30, len(numberedTable.FindAllStringIndex(folded, -1)), 1)
	}

	return Detection{
		HasTables:      hasTables,
		EstimatedCount: count,
		Confidence:     confidence,
		Score:          score,
		Indicators:     indicators,
	}
}
