package tables

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/akolanti/TenderExtract/internal/config"
	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
	"github.com/akolanti/TenderExtract/internal/extract/retry"
	"github.com/akolanti/TenderExtract/internal/metrics"
	"github.com/akolanti/TenderExtract/pkg/logger_i"
)

// Classifier assigns one category per table, in input order. It may
// return fewer labels than tables or labels outside the taxonomy.
type Classifier interface {
	Classify(ctx context.Context, tables []extractionModel.Table) ([]extractionModel.TableCategory, error)
}

type Categorizer struct {
	classifier Classifier
	policy     retry.Policy
	classify   retry.Classifier
	batchSize  int
	cooldown   time.Duration
	taxonomy   map[extractionModel.TableCategory]struct{}
	fallback   extractionModel.TableCategory
	logger     *logger_i.Logger
}

func NewCategorizer(c Classifier, t config.CategorizerTuning, policy retry.Policy, classify retry.Classifier) *Categorizer {
	taxonomy := make(map[extractionModel.TableCategory]struct{}, len(t.Categories))
	for _, name := range t.Categories {
		taxonomy[extractionModel.TableCategory(name)] = struct{}{}
	}
	fallback := extractionModel.TableCategory(t.Fallback)
	if fallback == "" {
		fallback = extractionModel.CategoryOther
	}
	taxonomy[fallback] = struct{}{}
	if policy.Wait == nil {
		policy.Wait = retry.Sleep
	}
	if classify == nil {
		classify = func(error) retry.Class { return retry.Retryable }
	}
	return &Categorizer{
		classifier: c,
		policy:     policy,
		classify:   classify,
		batchSize:  max(t.BatchSize, 1),
		cooldown:   t.Cooldown,
		taxonomy:   taxonomy,
		fallback:   fallback,
		logger:     logger_i.NewLogger("Table Categorizer :"),
	}
}

// Categorize returns a copy of tables with Category set on every entry.
// Order and length always match the input; a failed batch falls back to
// the fallback category instead of failing the document.
func (c *Categorizer) Categorize(ctx context.Context, tables []extractionModel.Table) []extractionModel.Table {
	out := make([]extractionModel.Table, len(tables))
	copy(out, tables)
	if len(out) == 0 {
		return out
	}
	log := c.logger.WithTrace(ctx)
	start := time.Now()
	defer func() { metrics.CaptureExecutionMetrics("table_categorization", time.Since(start)) }()

	batches := (len(out) + c.batchSize - 1) / c.batchSize
	for b := 0; b < batches; b++ {
		lo := b * c.batchSize
		hi := min(lo+c.batchSize, len(out))
		labels := c.classifyBatch(ctx, out[lo:hi], b+1, batches, log)
		for i := lo; i < hi; i++ {
			out[i].Category = labels[i-lo]
			metrics.CountTableCategory(string(labels[i-lo]))
		}

		if b < batches-1 && c.cooldown > 0 {
			if err := c.policy.Wait(ctx, c.cooldown); err != nil {
				log.Warn("categorize.cooldown.interrupted", "error", err)
				c.fill(out[hi:])
				return out
			}
		}
	}
	log.Info("categorize.done", "tables", len(out), "batches", batches, "distribution", Distribution(out))
	return out
}

func (c *Categorizer) classifyBatch(ctx context.Context, batch []extractionModel.Table, n, total int, log *logger_i.Logger) []extractionModel.TableCategory {
	labels := make([]extractionModel.TableCategory, len(batch))
	if c.classifier == nil {
		for i := range labels {
			labels[i] = c.fallback
		}
		return labels
	}

	got, attempts, err := retry.Do(ctx, c.policy, c.classify, func(ctx context.Context, _ int) ([]extractionModel.TableCategory, error) {
		return c.classifier.Classify(ctx, batch)
	})
	for _, a := range attempts {
		outcome := string(extractionModel.OutcomeSuccess)
		if a.Err != nil {
			outcome = a.Class.String()
		}
		metrics.CountAttempt(string(extractionModel.Classification), outcome)
	}
	if err != nil {
		if errors.Is(err, retry.ErrExhausted) {
			metrics.CountAttempt(string(extractionModel.Classification), string(extractionModel.OutcomeExhausted))
		}
		log.Warn("categorize.batch.failed", "batch", n, "of", total, "tables", len(batch), "error", err)
		got = nil
	}
	if len(got) != len(batch) && err == nil {
		log.Warn("categorize.batch.count_mismatch", "batch", n, "expected", len(batch), "got", len(got))
	}

	for i := range labels {
		labels[i] = c.fallback
		if i < len(got) {
			labels[i] = c.normalize(got[i])
		}
	}
	return labels
}

func (c *Categorizer) normalize(label extractionModel.TableCategory) extractionModel.TableCategory {
	label = extractionModel.TableCategory(strings.ToLower(strings.TrimSpace(string(label))))
	if _, ok := c.taxonomy[label]; ok {
		return label
	}
	return c.fallback
}

func (c *Categorizer) fill(rest []extractionModel.Table) {
	for i := range rest {
		rest[i].Category = c.fallback
	}
}

// Distribution counts tables per category. Uncategorized tables count as other.
func Distribution(tables []extractionModel.Table) map[extractionModel.TableCategory]int {
	dist := make(map[extractionModel.TableCategory]int)
	for _, t := range tables {
		cat := t.Category
		if cat == "" {
			cat = extractionModel.CategoryOther
		}
		dist[cat]++
	}
	return dist
}
