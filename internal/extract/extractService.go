// Package extract runs the tender extraction pipeline end to end.
package extract

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/domain/commonModels"
	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/domain/jobModel"
	"github.com/akolanti/TenderExtract/internal/extract/backend"
	"github.com/akolanti/TenderExtract/internal/extract/chunker"
	"github.com/akolanti/TenderExtract/internal/extract/detector"
	"github.com/akolanti/TenderExtract/internal/extract/llm"
	"github.com/akolanti/TenderExtract/internal/extract/merge"
	"github.com/akolanti/TenderExtract/internal/extract/retry"
	"github.com/akolanti/TenderExtract/internal/extract/scheduler"
	"github.com/akolanti/TenderExtract/internal/extract/tables"
	"github.com/akolanti/TenderExtract/internal/extract/validate"
	"github.com/akolanti/TenderExtract/internal/metrics"
	"github.com/akolanti/TenderExtract/pkg/logger_i"
	"golang.org/x/time/rate"
)

const (
	MethodDualBackend = "dual-backend"
	MethodTextOnly    = "text-only"
)

// Service is what the worker pool, the CLI and the MCP server call. The
// backends behind it are injected through Deps.
type Service interface {
	ExtractDocument(ctx context.Context, doc commonModels.Document) (extractionModel.MergedRecord, error)
	DetectTables(text string) detector.Detection
	ProcessJob(ctx context.Context, job jobModel.Job) (jobModel.Job, *extractionModel.MergedRecord)
}

// Deps are the collaborators of the pipeline. Narrative is required; a nil
// Table provider makes every document text-only and a nil Classifier falls
// back to keyword matching.
type Deps struct {
	Narrative  llm.Provider
	Table      llm.Provider
	Classifier tables.Classifier
	Tuning     config.Tuning
	// Wait replaces time-based sleeping for backoff and cooldowns.
	Wait retry.WaitFunc
	// Load turns an uploaded file into a document for file jobs.
	Load func(ctx context.Context, path, id, name string) (commonModels.Document, error)
}

type service struct {
	narrative   llm.Provider
	table       llm.Provider
	categorizer *tables.Categorizer
	detector    *detector.Detector
	scheduler   *scheduler.Scheduler
	tuning      config.Tuning
	wait        retry.WaitFunc
	load        func(ctx context.Context, path, id, name string) (commonModels.Document, error)

	// limiters are shared by every document so rate limits hold across jobs
	narrativeLimiter *rate.Limiter
	tableLimiter     *rate.Limiter

	logger *logger_i.Logger
}

func NewService(d Deps) (Service, error) {
	if d.Narrative == nil {
		return nil, errors.New("a narrative provider is required")
	}
	if err := d.Tuning.Validate(); err != nil {
		return nil, err
	}
	wait := d.Wait
	if wait == nil {
		wait = retry.Sleep
	}
	classifier := d.Classifier
	if classifier == nil {
		classifier = tables.KeywordClassifier{}
	}

	policy := retry.FromTuning(d.Tuning.Retry)
	policy.Wait = wait

	return &service{
		narrative:        d.Narrative,
		table:            d.Table,
		categorizer:      tables.NewCategorizer(classifier, d.Tuning.Categorizer, policy, backend.Classify),
		detector:         detector.New(d.Tuning.Detection.Threshold),
		scheduler:        scheduler.New(),
		tuning:           d.Tuning,
		wait:             wait,
		load:             d.Load,
		narrativeLimiter: limiter(d.Tuning.Narrative),
		tableLimiter:     limiter(d.Tuning.Table),
		logger:           logger_i.NewLogger("Extract Service :"),
	}, nil
}

func limiter(t config.BackendTuning) *rate.Limiter {
	limit := rate.Inf
	if t.RatePerSecond > 0 {
		limit = rate.Limit(t.RatePerSecond)
	}
	return rate.NewLimiter(limit, max(t.Burst, 1))
}

func (s *service) DetectTables(text string) detector.Detection {
	return s.detector.Detect(text)
}

// ExtractDocument returns either a complete MergedRecord or an error,
// never a partial record. Individual chunk failures only lower the
// record's completeness; AllBackendsFailedError is returned when nothing
// at all could be extracted.
func (s *service) ExtractDocument(ctx context.Context, doc commonModels.Document) (extractionModel.MergedRecord, error) {
	start := time.Now()
	log := s.logger.WithTrace(ctx).With("documentId", doc.Id)
	defer func() { metrics.CaptureExecutionMetrics("extract_document", time.Since(start)) }()

	if strings.TrimSpace(doc.Text) == "" {
		return extractionModel.MergedRecord{}, ErrEmptyDocument
	}

	detection := s.detector.Detect(doc.Text)
	log.Info("extract.detect", "hasTables", detection.HasTables, "estimated", detection.EstimatedCount, "confidence", detection.Confidence)

	pipelines := []scheduler.Pipeline{s.narrativePipeline(doc)}
	method := MethodTextOnly
	if s.table != nil && detection.HasTables && len(doc.Text) > s.tuning.Detection.MinTextLength {
		pipelines = append(pipelines, s.tablePipeline(doc))
		method = MethodDualBackend
	}
	chunkCount := 0
	for _, p := range pipelines {
		chunkCount += len(p.Chunks)
	}
	log.Info("extract.start", "method", method, "chunks", chunkCount, "bytes", len(doc.Text))

	report := s.scheduler.RunAll(ctx, pipelines...)
	if err := ctx.Err(); err != nil {
		return extractionModel.MergedRecord{}, err
	}
	if allEmpty(report.Results) {
		log.Error("extract.failed", "results", len(report.Results), "attempts", len(report.Attempts))
		return extractionModel.MergedRecord{}, &AllBackendsFailedError{DocumentID: doc.Id, Attempts: report.Attempts}
	}

	record := merge.Merge(doc.Id, report.Results)

	deduped, dropped := tables.Dedupe(record.Tables, tables.Thresholds{
		Title:      s.tuning.Dedup.TitleThreshold,
		Header:     s.tuning.Dedup.HeaderThreshold,
		Row:        s.tuning.Dedup.RowThreshold,
		SampleRows: s.tuning.Dedup.SampleRows,
	})
	metrics.CountDuplicateTables(dropped)
	if len(deduped) > 0 {
		deduped = s.categorizer.Categorize(ctx, deduped)
	}
	record.Tables = deduped

	record.Warnings = validate.Check(record)

	record.Metadata.Method = method
	record.Metadata.TablesDetected = detection.HasTables
	record.Metadata.EstimatedTables = detection.EstimatedCount
	record.Metadata.TableConfidence = detection.Confidence
	record.Metadata.ChunkCount = chunkCount
	record.Metadata.Attempts = len(report.Attempts)
	record.Metadata.DuplicateTables = dropped
	record.Metadata.BlendedConfidence = merge.BlendedConfidence(report.Results, merge.Weights{
		Narrative: s.tuning.Narrative.Weight,
		Tabular:   s.tuning.Table.Weight,
	})
	record.Metadata.Duration = time.Since(start)

	log.Info("extract.done",
		"confidence", record.Confidence,
		"fields", len(record.Fields),
		"tables", len(record.Tables),
		"duplicates", dropped,
		"empty", record.Metadata.EmptyResults,
		"warnings", len(record.Warnings),
		"duration", record.Metadata.Duration)
	return record, nil
}

func (s *service) narrativePipeline(doc commonModels.Document) scheduler.Pipeline {
	extractor := backend.NewNarrativeExtractor(s.narrative, s.tuning.Narrative).ForDocument(doc.Name)
	return scheduler.Pipeline{
		Runner: backend.NewAdapter(extractor, s.tuning.Narrative, s.tuning.Retry,
			backend.WithWait(s.wait), backend.WithLimiter(s.narrativeLimiter)),
		Chunks: chunker.Split(doc.Text, s.tuning.Chunking.NarrativeMaxChars, chunker.WithLookback(s.tuning.Chunking.LookbackRatio)),
	}
}

func (s *service) tablePipeline(doc commonModels.Document) scheduler.Pipeline {
	extractor := backend.NewTableExtractor(s.table, s.tuning.Table, s.tuning.Categorizer.ASCIITableConfidence)
	return scheduler.Pipeline{
		Runner: backend.NewAdapter(extractor, s.tuning.Table, s.tuning.Retry,
			backend.WithWait(s.wait), backend.WithLimiter(s.tableLimiter)),
		Chunks: chunker.Split(doc.Text, s.tuning.Chunking.TableMaxChars, chunker.WithLookback(s.tuning.Chunking.LookbackRatio)),
	}
}

func allEmpty(results []extractionModel.PartialResult) bool {
	for _, r := range results {
		if !r.IsEmpty() {
			return false
		}
	}
	return true
}
