package scheduler

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/akolanti/TenderExtract/internal/domain/commonModels"
	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/extract/backend"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	kind      extractionModel.BackendKind
	batchSize int
	cooldown  time.Duration

	inFlight atomic.Int32
	peak     atomic.Int32

	mu        sync.Mutex
	waits     []time.Duration
	OnAttempt func(chunk commonModels.Chunk) extractionModel.PartialResult
}

func (f *fakeRunner) Kind() extractionModel.BackendKind { return f.kind }
func (f *fakeRunner) BatchSize() int                    { return f.batchSize }
func (f *fakeRunner) Cooldown() time.Duration           { return f.cooldown }

func (f *fakeRunner) Wait(ctx context.Context, d time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waits = append(f.waits, d)
	return ctx.Err()
}

func (f *fakeRunner) Attempt(_ context.Context, chunk commonModels.Chunk) backend.Outcome {
	now := f.inFlight.Add(1)
	for {
		p := f.peak.Load()
		if now <= p || f.peak.CompareAndSwap(p, now) {
			break
		}
	}
	time.Sleep(5 * time.Millisecond)
	f.inFlight.Add(-1)

	result := extractionModel.PartialResult{ChunkIndex: chunk.Index, Backend: f.kind, Confidence: 0.5}
	if f.OnAttempt != nil {
		result = f.OnAttempt(chunk)
	}
	return backend.Outcome{
		Result:   result,
		Attempts: []extractionModel.ExtractionAttempt{{ChunkIndex: chunk.Index, Backend: f.kind, AttemptNumber: 1}},
	}
}

func chunks(n int) []commonModels.Chunk {
	out := make([]commonModels.Chunk, n)
	for i := range out {
		out[i] = commonModels.Chunk{Index: i, TotalChunks: n, Text: "x"}
	}
	return out
}

func TestRunAllBatchesWithBoundedConcurrency(t *testing.T) {
	r := &fakeRunner{kind: extractionModel.Narrative, batchSize: 3, cooldown: 2 * time.Second}

	report := New().RunAll(context.Background(), Pipeline{Runner: r, Chunks: chunks(7)})

	require.Len(t, report.Results, 7)
	assert.LessOrEqual(t, r.peak.Load(), int32(3))
	assert.Equal(t, 3, report.Batches)
	assert.Equal(t, []time.Duration{2 * time.Second, 2 * time.Second}, r.waits, "no cooldown after the last batch")
	for i, res := range report.Results {
		assert.Equal(t, i, res.ChunkIndex)
	}
	assert.Len(t, report.Attempts, 7)
}

func TestRunAllSingleBatchHasNoCooldown(t *testing.T) {
	r := &fakeRunner{kind: extractionModel.Tabular, batchSize: 5, cooldown: time.Second}
	report := New().RunAll(context.Background(), Pipeline{Runner: r, Chunks: chunks(5)})

	assert.Equal(t, 1, report.Batches)
	assert.Empty(t, r.waits)
}

func TestRunAllFailureIsIsolated(t *testing.T) {
	r := &fakeRunner{kind: extractionModel.Narrative, batchSize: 3, OnAttempt: func(c commonModels.Chunk) extractionModel.PartialResult {
		if c.Index == 1 {
			return extractionModel.EmptyResult(c.Index, extractionModel.Narrative)
		}
		return extractionModel.PartialResult{ChunkIndex: c.Index, Backend: extractionModel.Narrative, Confidence: 0.9}
	}}

	report := New().RunAll(context.Background(), Pipeline{Runner: r, Chunks: chunks(3)})

	require.Len(t, report.Results, 3)
	assert.True(t, report.Results[1].IsEmpty())
	assert.Equal(t, 0.9, report.Results[0].Confidence)
	assert.Equal(t, 0.9, report.Results[2].Confidence)
}

func TestRunAllOrdersByBackendThenChunk(t *testing.T) {
	tab := &fakeRunner{kind: extractionModel.Tabular, batchSize: 2}
	nar := &fakeRunner{kind: extractionModel.Narrative, batchSize: 1}

	report := New().RunAll(context.Background(),
		Pipeline{Runner: tab, Chunks: chunks(2)},
		Pipeline{Runner: nar, Chunks: chunks(3)},
	)

	require.Len(t, report.Results, 5)
	want := []struct {
		kind  extractionModel.BackendKind
		index int
	}{
		{extractionModel.Narrative, 0}, {extractionModel.Narrative, 1}, {extractionModel.Narrative, 2},
		{extractionModel.Tabular, 0}, {extractionModel.Tabular, 1},
	}
	for i, w := range want {
		assert.Equal(t, w.kind, report.Results[i].Backend, "position %d", i)
		assert.Equal(t, w.index, report.Results[i].ChunkIndex, "position %d", i)
	}
}

func TestRunAllCancelledCooldownFillsEmptyResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r := &fakeRunner{kind: extractionModel.Narrative, batchSize: 2, cooldown: time.Second}
	r.OnAttempt = func(c commonModels.Chunk) extractionModel.PartialResult {
		cancel()
		return extractionModel.PartialResult{ChunkIndex: c.Index, Backend: extractionModel.Narrative, Confidence: 0.5}
	}

	report := New().RunAll(ctx, Pipeline{Runner: r, Chunks: chunks(4)})

	require.Len(t, report.Results, 4)
	assert.False(t, report.Results[0].IsEmpty())
	assert.True(t, report.Results[2].IsEmpty())
	assert.True(t, report.Results[3].IsEmpty())
	assert.Equal(t, 3, report.Results[3].ChunkIndex)
	assert.Equal(t, 1, report.Batches)
}

func TestRunAllNoChunks(t *testing.T) {
	r := &fakeRunner{kind: extractionModel.Narrative, batchSize: 3}
	report := New().RunAll(context.Background(), Pipeline{Runner: r})
	assert.Empty(t, report.Results)
	assert.Zero(t, report.Batches)
}
