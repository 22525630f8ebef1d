package tables

import (
	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/extract/textnorm"
)

// Thresholds for the three-factor duplicate test. Every factor must be
// strictly above its threshold.
type Thresholds struct {
	Title      float64
	Header     float64
	Row        float64
	SampleRows int
}

func DefaultThresholds() Thresholds {
	return Thresholds{Title: 0.8, Header: 0.7, Row: 0.6, SampleRows: 3}
}

// Scores are the three similarity factors between two tables.
type Scores struct {
	Title  float64
	Header float64
	Row    float64
}

func Compare(a, b extractionModel.Table, sampleRows int) Scores {
	return Scores{
		Title:  Similarity(textnorm.Comparable(a.Title), textnorm.Comparable(b.Title)),
		Header: Jaccard(a.Headers, b.Headers),
		Row:    RowSimilarity(a.Rows, b.Rows, sampleRows),
	}
}

func (t Thresholds) IsDuplicate(a, b extractionModel.Table) bool {
	s := Compare(a, b, t.SampleRows)
	return s.Title > t.Title && s.Header > t.Header && s.Row > t.Row
}

// Dedupe drops every table that duplicates an earlier kept one and
// returns the survivors in first-seen order, with the number dropped.
func Dedupe(in []extractionModel.Table, t Thresholds) ([]extractionModel.Table, int) {
	if t.SampleRows < 1 {
		t.SampleRows = DefaultThresholds().SampleRows
	}
	kept := make([]extractionModel.Table, 0, len(in))
	dropped := 0
	for _, candidate := range in {
		duplicate := false
		for _, existing := range kept {
			if t.IsDuplicate(existing, candidate) {
				duplicate = true
				break
			}
		}
		if duplicate {
			dropped++
			continue
		}
		kept = append(kept, candidate)
	}
	return kept, dropped
}
