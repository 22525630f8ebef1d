package tables

import (
	"strings"
	"unicode/utf8"

	"github.com/agext/levenshtein"
	"github.com/akolanti/TenderExtract/internal/extract/textnorm"
)

// Similarity is the normalized edit-distance ratio of a and b in [0,1].
// Equal strings score 1 and a comparison against an empty string scores 0.
// Callers normalize their inputs first.
func Similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}
	longest := max(utf8.RuneCountInString(a), utf8.RuneCountInString(b))
	distance := levenshtein.Distance(a, b, nil)
	return 1 - float64(distance)/float64(longest)
}

// Jaccard is |A∩B| / |A∪B| over normalized header sets. Two empty sets
// are identical; one empty set shares nothing.
func Jaccard(a, b []string) float64 {
	setA := headerSet(a)
	setB := headerSet(b)
	if len(setA) == 0 && len(setB) == 0 {
		return 1
	}
	if len(setA) == 0 || len(setB) == 0 {
		return 0
	}
	intersection := 0
	for h := range setA {
		if _, ok := setB[h]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	return float64(intersection) / float64(union)
}

// RowSimilarity averages Similarity over the first sample rows both tables
// have. A row is compared as its cells joined with a space.
func RowSimilarity(a, b [][]string, sample int) float64 {
	rowsA := a[:min(sample, len(a))]
	rowsB := b[:min(sample, len(b))]
	if len(rowsA) == 0 && len(rowsB) == 0 {
		return 1
	}
	if len(rowsA) == 0 || len(rowsB) == 0 {
		return 0
	}
	n := min(len(rowsA), len(rowsB))
	total := 0.0
	for i := 0; i < n; i++ {
		total += Similarity(rowKey(rowsA[i]), rowKey(rowsB[i]))
	}
	return total / float64(n)
}

func headerSet(headers []string) map[string]struct{} {
	set := make(map[string]struct{}, len(headers))
	for _, h := range headers {
		if n := textnorm.Comparable(h); n != "" {
			set[n] = struct{}{}
		}
	}
	return set
}

func rowKey(cells []string) string {
	return textnorm.CollapseSpace(textnorm.Lower(strings.Join(cells, " ")))
}
