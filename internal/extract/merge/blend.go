package merge

import (
	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
)

// Weights share the blended confidence between the two extraction backends.
type Weights struct {
	Narrative float64
	Tabular   float64
}

// BlendedConfidence mixes the best narrative and best tabular confidence
// by weight. With only one backend reporting, its confidence is returned
// unchanged. The record's own confidence is not affected.
func BlendedConfidence(results []extractionModel.PartialResult, w Weights) float64 {
	var narrative, tabular float64
	var hasNarrative, hasTabular bool
	for _, r := range results {
		if r.IsEmpty() {
			continue
		}
		c := extractionModel.ClampConfidence(r.Confidence)
		switch r.Backend {
		case extractionModel.Narrative:
			hasNarrative = true
			narrative = max(narrative, c)
		case extractionModel.Tabular:
			hasTabular = true
			tabular = max(tabular, c)
		}
	}

	switch {
	case hasNarrative && hasTabular:
		total := w.Narrative + w.Tabular
		if total <= 0 {
			return max(narrative, tabular)
		}
		return extractionModel.ClampConfidence((narrative*w.Narrative + tabular*w.Tabular) / total)
	case hasNarrative:
		return narrative
	case hasTabular:
		return tabular
	}
	return 0
}
