package merge

import (
	"math/rand"
	"testing"

	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/extract/textnorm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func narrative(chunk int, conf float64, fields map[string]any) extractionModel.PartialResult {
	return extractionModel.PartialResult{ChunkIndex: chunk, Backend: extractionModel.Narrative, Confidence: conf, Fields: fields}
}

func TestMergeScenarioA(t *testing.T) {
	results := []extractionModel.PartialResult{
		narrative(0, 0.9, map[string]any{"kurum": "X İl Müdürlüğü"}),
		narrative(1, 0.6, map[string]any{"kurum": nil, "tahmini_butce": 1500000.0}),
	}

	record := Merge("doc-1", results)

	assert.Equal(t, "X İl Müdürlüğü", record.Fields["kurum"].Value)
	assert.Equal(t, 0.9, record.Fields["kurum"].Confidence)
	assert.Equal(t, 1500000.0, record.Fields["tahmini_butce"].Value)
	assert.Equal(t, 0.6, record.Fields["tahmini_butce"].Confidence)
	require.Len(t, record.Fields["tahmini_butce"].SourceRefs, 1)
	assert.Equal(t, 1, record.Fields["tahmini_butce"].SourceRefs[0].ChunkIndex)
	assert.Equal(t, 0.9, record.Confidence)
	assert.Equal(t, "doc-1", record.DocumentID)
}

func TestMergeHigherConfidenceIsNeverOverwritten(t *testing.T) {
	record := Merge("d", []extractionModel.PartialResult{
		narrative(0, 0.3, map[string]any{"kisi_sayisi": 400.0}),
		narrative(1, 0.8, map[string]any{"kisi_sayisi": 250.0}),
	})
	assert.Equal(t, 250.0, record.Fields["kisi_sayisi"].Value)
}

func TestMergeSingleResultIsIdentity(t *testing.T) {
	r := narrative(0, 0.75, map[string]any{"kurum": "A", "gun_sayisi": 365.0, "teslim_suresi": "  "})
	record := Merge("d", []extractionModel.PartialResult{r})

	require.Len(t, record.Fields, 2, "blank values are unset")
	assert.Equal(t, "A", record.Fields["kurum"].Value)
	assert.Equal(t, 365.0, record.Fields["gun_sayisi"].Value)
	for _, fv := range record.Fields {
		assert.Equal(t, 0.75, fv.Confidence)
	}
	assert.Equal(t, 0.75, record.Confidence)
}

func TestMergeConfidenceIsMaximum(t *testing.T) {
	results := []extractionModel.PartialResult{
		narrative(0, 0.4, map[string]any{"a": "1"}),
		narrative(1, 0.95, map[string]any{"b": "2"}),
		{ChunkIndex: 0, Backend: extractionModel.Tabular, Confidence: 0.7, Tables: []extractionModel.Table{{Title: "T"}}},
		extractionModel.EmptyResult(2, extractionModel.Narrative),
	}
	assert.Equal(t, 0.95, Merge("d", results).Confidence)
}

func TestMergeListsAreTrueSets(t *testing.T) {
	empty := extractionModel.EmptyResult(2, extractionModel.Narrative)
	empty.Lists = map[string][]string{"riskler": {"Gecikme  cezası"}}

	results := []extractionModel.PartialResult{
		{ChunkIndex: 0, Backend: extractionModel.Narrative, Confidence: 0.9, Lists: map[string][]string{
			"ozel_sartlar": {"ISO 22000", "HACCP", "iso 22000"},
			"riskler":      {"Gecikme cezası"},
		}},
		{ChunkIndex: 1, Backend: extractionModel.Narrative, Confidence: 0.2, Lists: map[string][]string{
			"ozel_sartlar": {"  HACCP ", "İSO 22000", "Hijyen belgesi"},
		}},
		empty,
	}

	record := Merge("d", results)

	assert.Equal(t, []string{"ISO 22000", "HACCP", "Hijyen belgesi"}, record.Lists["ozel_sartlar"])
	assert.Equal(t, []string{"Gecikme cezası"}, record.Lists["riskler"])
	for field, items := range record.Lists {
		keys := map[string]bool{}
		for _, item := range items {
			k := textnorm.Key(item)
			assert.False(t, keys[k], "duplicate %q in %s", item, field)
			keys[k] = true
		}
	}
}

func TestMergeCitationsFirstRankedWins(t *testing.T) {
	results := []extractionModel.PartialResult{
		{ChunkIndex: 0, Backend: extractionModel.Narrative, Confidence: 0.5,
			Fields:    map[string]any{"kisi_sayisi": 100.0},
			Citations: map[string]extractionModel.Citation{"kisi_sayisi": {Value: "100", Proof: "low"}, "gun_sayisi": {Value: "365"}}},
		{ChunkIndex: 1, Backend: extractionModel.Narrative, Confidence: 0.9,
			Fields:    map[string]any{"kisi_sayisi": 250.0},
			Citations: map[string]extractionModel.Citation{"kisi_sayisi": {Value: "250", Proof: "high"}}},
	}

	record := Merge("d", results)

	assert.Equal(t, "high", record.Citations["kisi_sayisi"].Proof)
	assert.Equal(t, "365", record.Citations["gun_sayisi"].Value)
	ref := record.Fields["kisi_sayisi"].SourceRefs[0]
	require.NotNil(t, ref.Citation)
	assert.Equal(t, "250", ref.Citation.Value)
}

func TestMergeAgreeingSourcesAreAllReferenced(t *testing.T) {
	record := Merge("d", []extractionModel.PartialResult{
		narrative(0, 0.9, map[string]any{"kisi_sayisi": 250.0}),
		narrative(1, 0.5, map[string]any{"kisi_sayisi": "250"}),
	})
	assert.Len(t, record.Fields["kisi_sayisi"].SourceRefs, 2)
}

func TestMergeDataLessResultDoesNotSeed(t *testing.T) {
	record := Merge("d", []extractionModel.PartialResult{
		{ChunkIndex: 0, Backend: extractionModel.Tabular, Confidence: 0.8},
		narrative(0, 0.6, map[string]any{"kurum": "X"}),
	})
	assert.Equal(t, 0.6, record.Confidence)

	record = Merge("d", []extractionModel.PartialResult{
		{ChunkIndex: 0, Backend: extractionModel.Tabular, Confidence: 0.8},
	})
	assert.Zero(t, record.Confidence)
	assert.True(t, record.LowTrust())
}

func TestMergeAllEmpty(t *testing.T) {
	record := Merge("d", []extractionModel.PartialResult{
		extractionModel.EmptyResult(0, extractionModel.Narrative),
		extractionModel.EmptyResult(0, extractionModel.Tabular),
	})

	assert.NotNil(t, record.Fields)
	assert.Empty(t, record.Fields)
	assert.NotNil(t, record.Tables)
	assert.Zero(t, record.Confidence)
	assert.True(t, record.LowTrust())
	assert.Equal(t, 2, record.Metadata.EmptyResults)

	assert.NotNil(t, Merge("d", nil).Lists)
}

func TestMergeIsOrderIndependent(t *testing.T) {
	results := []extractionModel.PartialResult{
		narrative(0, 0.7, map[string]any{"kurum": "A", "gun_sayisi": 365.0}),
		narrative(1, 0.7, map[string]any{"kurum": "B", "kisi_sayisi": 100.0}),
		narrative(2, 0.9, map[string]any{"ihale_turu": "açık"}),
		{ChunkIndex: 0, Backend: extractionModel.Tabular, Confidence: 0.7,
			Fields: map[string]any{"kurum": "C"},
			Tables: []extractionModel.Table{{Title: "T1"}, {Title: "T2"}}},
		{ChunkIndex: 1, Backend: extractionModel.Tabular, Confidence: 0.8,
			Tables: []extractionModel.Table{{Title: "T3"}},
			Lists:  map[string][]string{"riskler": {"r1", "R1", "r2"}}},
	}
	want := Merge("d", results)
	assert.Equal(t, "A", want.Fields["kurum"].Value, "ties go to narrative, then lower chunk")
	assert.Equal(t, []string{"T1", "T2", "T3"}, []string{want.Tables[0].Title, want.Tables[1].Title, want.Tables[2].Title})

	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		shuffled := append([]extractionModel.PartialResult(nil), results...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		assert.Equal(t, want, Merge("d", shuffled))
	}
}

func TestBlendedConfidence(t *testing.T) {
	w := Weights{Narrative: 0.4, Tabular: 0.6}
	both := []extractionModel.PartialResult{
		narrative(0, 0.7, map[string]any{"a": "1"}),
		narrative(1, 0.5, map[string]any{"a": "1"}),
		{Backend: extractionModel.Tabular, Confidence: 0.8, Tables: []extractionModel.Table{{Title: "T"}}},
	}
	assert.InDelta(t, 0.7*0.4+0.8*0.6, BlendedConfidence(both, w), 1e-9)
	assert.Equal(t, 0.7, BlendedConfidence(both[:2], w))
	assert.Zero(t, BlendedConfidence(nil, w))
}
