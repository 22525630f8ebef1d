// Package merge folds per-chunk partial results into one record.
package merge

import (
	"cmp"
	"fmt"
	"slices"

	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/extract/textnorm"
)

// Merge reduces results into a MergedRecord. The output depends only on
// the set of results, never on their arrival order:
//   - scalars come from the best-ranked result that has them set
//     (confidence desc, then backend, then chunk) and are never overwritten
//   - list fields are the union of every result, empty ones included,
//     de-duplicated on normalized text
//   - citations are shallow-merged, the best-ranked result wins a conflict
//   - confidence is the seed's, the best-ranked result carrying data;
//     0 when nothing positive was reported
//
// An all-empty input yields a well-formed record with no values.
func Merge(documentID string, results []extractionModel.PartialResult) extractionModel.MergedRecord {
	record := extractionModel.NewMergedRecord(documentID)
	record.Metadata.Results = len(results)

	ordered := slices.Clone(results)
	slices.SortStableFunc(ordered, byRank)

	var ranked []extractionModel.PartialResult
	for _, r := range ordered {
		if r.IsEmpty() {
			record.Metadata.EmptyResults++
			continue
		}
		ranked = append(ranked, r)
	}

	for _, r := range ranked {
		conf := extractionModel.ClampConfidence(r.Confidence)
		for _, field := range sortedKeys(r.Fields) {
			value := r.Fields[field]
			if extractionModel.IsUnset(value) {
				continue
			}
			ref := sourceRef(r, field)
			existing, ok := record.Fields[field]
			if !ok {
				record.Fields[field] = extractionModel.FieldValue{
					Value:      value,
					Confidence: conf,
					SourceRefs: []extractionModel.SourceRef{ref},
				}
				continue
			}
			if sameValue(existing.Value, value) {
				existing.SourceRefs = append(existing.SourceRefs, ref)
				record.Fields[field] = existing
			}
		}
	}

	// lists and citations consider every result, empty ones included
	seen := map[string]map[string]struct{}{}
	for _, r := range ordered {
		for _, field := range sortedKeys(r.Lists) {
			if seen[field] == nil {
				seen[field] = map[string]struct{}{}
			}
			for _, item := range r.Lists[field] {
				display := textnorm.CollapseSpace(item)
				key := textnorm.Key(item)
				if key == "" {
					continue
				}
				if _, dup := seen[field][key]; dup {
					continue
				}
				seen[field][key] = struct{}{}
				record.Lists[field] = append(record.Lists[field], display)
			}
		}
		for field, c := range r.Citations {
			if _, taken := record.Citations[field]; !taken {
				record.Citations[field] = c
			}
		}
	}

	record.Tables = collectTables(results)
	if seed, ok := seedResult(ranked); ok && seed.Confidence > 0 {
		record.Confidence = extractionModel.ClampConfidence(seed.Confidence)
	}
	return record
}

// seedResult is the best-ranked result that contributed data.
func seedResult(ranked []extractionModel.PartialResult) (extractionModel.PartialResult, bool) {
	for _, r := range ranked {
		if r.HasData() {
			return r, true
		}
	}
	return extractionModel.PartialResult{}, false
}

// byRank orders results best first. Ties on confidence fall back to the
// backend order and then the chunk index so the ranking is total.
func byRank(a, b extractionModel.PartialResult) int {
	if c := cmp.Compare(b.Confidence, a.Confidence); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Backend.Rank(), b.Backend.Rank()); c != 0 {
		return c
	}
	return cmp.Compare(a.ChunkIndex, b.ChunkIndex)
}

// collectTables keeps document order: backend, chunk, then position.
func collectTables(results []extractionModel.PartialResult) []extractionModel.Table {
	ordered := slices.Clone(results)
	slices.SortStableFunc(ordered, func(a, b extractionModel.PartialResult) int {
		if c := cmp.Compare(a.Backend.Rank(), b.Backend.Rank()); c != 0 {
			return c
		}
		return cmp.Compare(a.ChunkIndex, b.ChunkIndex)
	})
	out := []extractionModel.Table{}
	for _, r := range ordered {
		out = append(out, r.Tables...)
	}
	return out
}

func sourceRef(r extractionModel.PartialResult, field string) extractionModel.SourceRef {
	ref := extractionModel.SourceRef{ChunkIndex: r.ChunkIndex, Backend: r.Backend}
	if c, ok := r.Citations[field]; ok {
		ref.Citation = &c
	}
	return ref
}

// sameValue compares scalars across backends, where 250 and "250" agree.
func sameValue(a, b any) bool {
	if x, ok := extractionModel.AsNumber(a); ok {
		if y, ok := extractionModel.AsNumber(b); ok {
			return x == y
		}
	}
	return textnorm.Key(fmt.Sprint(a)) == textnorm.Key(fmt.Sprint(b))
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
