package chunker

import (
	"strings"

	"github.com/akolanti/TenderExtract/internal/domain/commonModels"
)

// PageMarker separates pages in text produced by the document source.
const PageMarker = "\f"

const defaultLookbackRatio = 0.5

// Boundaries ordered from "best" to "worst" for semantic meaning.
// Every separator is ASCII, so a cut never lands inside a multi-byte rune.
var boundaryTiers = [][]string{
	{PageMarker},
	{"\n\n"},
	{". ", "! ", "? ", ".\n", "!\n", "?\n", ".\t"},
	{"\n"},
}

type options struct {
	lookbackRatio float64
}

type Option func(*options)

// WithLookback sets how far back from the window end (as a fraction of
// maxChunkChars) a page, paragraph or sentence boundary is searched for
// before falling back to plain whitespace.
func WithLookback(ratio float64) Option {
	return func(o *options) {
		if ratio > 0 && ratio <= 1 {
			o.lookbackRatio = ratio
		}
	}
}

// Split cuts text into contiguous chunks of at most maxChunkChars bytes.
// Chunks never overlap and never come back empty, so concatenating their
// Text reproduces the input. A chunk is longer than the limit only when it
// holds a single token with no whitespace in it.
func Split(text string, maxChunkChars int, opts ...Option) []commonModels.Chunk {
	if text == "" {
		return nil
	}
	o := options{lookbackRatio: defaultLookbackRatio}
	for _, opt := range opts {
		opt(&o)
	}

	if maxChunkChars <= 0 || len(text) <= maxChunkChars {
		return build(text, []commonModels.ByteRange{{Start: 0, End: len(text)}})
	}

	lookback := int(float64(maxChunkChars) * o.lookbackRatio)
	if lookback < 1 {
		lookback = 1
	}

	var ranges []commonModels.ByteRange
	start := 0
	for start < len(text) {
		if len(text)-start <= maxChunkChars {
			ranges = append(ranges, commonModels.ByteRange{Start: start, End: len(text)})
			break
		}
		end := cutPoint(text, start, maxChunkChars, lookback)
		ranges = append(ranges, commonModels.ByteRange{Start: start, End: end})
		start = end
	}
	return build(text, ranges)
}

// cutPoint returns the exclusive end of the chunk starting at start.
func cutPoint(text string, start, maxChunkChars, lookback int) int {
	limit := start + maxChunkChars
	window := text[start:limit]
	floor := maxChunkChars - lookback

	for _, tier := range boundaryTiers {
		best := -1
		for _, sep := range tier {
			if i := strings.LastIndex(window, sep); i >= 0 && i+len(sep) > best {
				best = i + len(sep)
			}
		}
		if best > 0 && best >= floor {
			return start + best
		}
	}

	if i := lastSpace(window); i >= 0 {
		return start + i + 1
	}

	// the whole window is one token, keep it whole
	if j := firstSpace(text[limit:]); j >= 0 {
		return limit + j + 1
	}
	return len(text)
}

func build(text string, ranges []commonModels.ByteRange) []commonModels.Chunk {
	chunks := make([]commonModels.Chunk, 0, len(ranges))
	for i, r := range ranges {
		chunks = append(chunks, commonModels.Chunk{
			Index:       i,
			TotalChunks: len(ranges),
			Text:        text[r.Start:r.End],
			ByteRange:   r,
		})
	}
	return chunks
}

func isSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\r', '\f', '\v':
		return true
	}
	return false
}

func lastSpace(s string) int {
	for i := len(s) - 1; i >= 0; i-- {
		if isSpace(s[i]) {
			return i
		}
	}
	return -1
}

func firstSpace(s string) int {
	for i := 0; i < len(s); i++ {
		if isSpace(s[i]) {
			return i
		}
	}
	return -1
}
