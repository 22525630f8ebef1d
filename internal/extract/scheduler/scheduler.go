package scheduler

import (
	"context"
	"slices"
	"time"

	"github.com/akolanti/TenderExtract/internal/domain/commonModels"
	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/extract/backend"
	"github.com/akolanti/TenderExtract/internal/metrics"
	"github.com/akolanti/TenderExtract/pkg/logger_i"
	"golang.org/x/sync/errgroup"
)

// Runner is one backend as the scheduler sees it. *backend.Adapter
// implements it.
type Runner interface {
	Kind() extractionModel.BackendKind
	BatchSize() int
	Cooldown() time.Duration
	Wait(ctx context.Context, d time.Duration) error
	Attempt(ctx context.Context, chunk commonModels.Chunk) backend.Outcome
}

// Pipeline pairs a backend with the chunks it should process.
type Pipeline struct {
	Runner Runner
	Chunks []commonModels.Chunk
}

type Report struct {
	Results  []extractionModel.PartialResult
	Attempts []extractionModel.ExtractionAttempt
	Batches  int
}

type Scheduler struct {
	logger *logger_i.Logger
}

func New() *Scheduler {
	return &Scheduler{logger: logger_i.NewLogger("Batch Scheduler :")}
}

// RunAll drives every pipeline concurrently. Within a pipeline chunks run
// in batches: all attempts of a batch run at once, the next batch starts
// after the previous one drained and a cooldown passed. One chunk's
// failure never cancels another. Results come back ordered by backend,
// then chunk index, one per chunk.
func (s *Scheduler) RunAll(ctx context.Context, pipelines ...Pipeline) Report {
	reports := make([]Report, len(pipelines))
	var g errgroup.Group
	for i, p := range pipelines {
		g.Go(func() error {
			reports[i] = s.run(ctx, p)
			return nil
		})
	}
	_ = g.Wait()

	order := make([]int, len(pipelines))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		return pipelines[a].Runner.Kind().Rank() - pipelines[b].Runner.Kind().Rank()
	})

	var all Report
	for _, i := range order {
		all.Results = append(all.Results, reports[i].Results...)
		all.Attempts = append(all.Attempts, reports[i].Attempts...)
		all.Batches += reports[i].Batches
	}
	return all
}

func (s *Scheduler) run(ctx context.Context, p Pipeline) Report {
	kind := p.Runner.Kind()
	log := s.logger.WithTrace(ctx).With("backend", string(kind))
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("scheduler_"+string(kind), time.Since(start)) }()

	n := len(p.Chunks)
	size := max(p.Runner.BatchSize(), 1)
	outcomes := make([]backend.Outcome, n)
	done := make([]bool, n)
	batches := 0

	for lo := 0; lo < n; lo += size {
		hi := min(lo+size, n)
		var g errgroup.Group
		for i := lo; i < hi; i++ {
			g.Go(func() error {
				outcomes[i] = p.Runner.Attempt(ctx, p.Chunks[i])
				done[i] = true
				return nil
			})
		}
		_ = g.Wait()
		batches++
		metrics.CountBatch(string(kind))
		log.Debug("scheduler.batch.done", "batch", batches, "chunks", hi-lo)

		if hi < n && p.Runner.Cooldown() > 0 {
			if err := p.Runner.Wait(ctx, p.Runner.Cooldown()); err != nil {
				log.Warn("scheduler.cooldown.interrupted", "remaining", n-hi, "error", err)
				break
			}
		}
	}

	report := Report{Results: make([]extractionModel.PartialResult, n), Batches: batches}
	for i, o := range outcomes {
		if !done[i] {
			report.Results[i] = extractionModel.EmptyResult(p.Chunks[i].Index, kind)
			continue
		}
		report.Results[i] = o.Result
		report.Attempts = append(report.Attempts, o.Attempts...)
	}
	slices.SortStableFunc(report.Results, func(a, b extractionModel.PartialResult) int {
		return a.ChunkIndex - b.ChunkIndex
	})
	log.Info("scheduler.pipeline.done", "chunks", n, "batches", batches, "duration", time.Since(start))
	return report
}
