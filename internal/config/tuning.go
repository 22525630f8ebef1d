package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/goccy/go-yaml"
)

// Tuning groups the empirically chosen knobs of the extraction pipeline.
// DefaultTuning holds the values the pipeline was tuned with; a YAML file
// can override any subset of them.
type Tuning struct {
	Chunking    ChunkingTuning    `yaml:"chunking"`
	Retry       RetryTuning       `yaml:"retry"`
	Narrative   BackendTuning     `yaml:"narrative"`
	Table       BackendTuning     `yaml:"table"`
	Classifier  BackendTuning     `yaml:"classifier"`
	Detection   DetectionTuning   `yaml:"detection"`
	Dedup       DedupTuning       `yaml:"dedup"`
	Categorizer CategorizerTuning `yaml:"categorizer"`
}

type ChunkingTuning struct {
	NarrativeMaxChars int     `yaml:"narrative_max_chars"`
	TableMaxChars     int     `yaml:"table_max_chars"`
	LookbackRatio     float64 `yaml:"lookback_ratio"`
}

type RetryTuning struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	InitialBackoff time.Duration `yaml:"initial_backoff"`
	Multiplier     float64       `yaml:"multiplier"`
	MaxBackoff     time.Duration `yaml:"max_backoff"`
	CallTimeout    time.Duration `yaml:"call_timeout"`
}

type BackendTuning struct {
	BatchSize         int           `yaml:"batch_size"`
	Cooldown          time.Duration `yaml:"cooldown"`
	RatePerSecond     float64       `yaml:"rate_per_second"`
	Burst             int           `yaml:"burst"`
	DefaultConfidence float64       `yaml:"default_confidence"`
	Weight            float64       `yaml:"weight"`
}

type DetectionTuning struct {
	Threshold     float64 `yaml:"threshold"`
	MinTextLength int     `yaml:"min_text_length"`
}

type DedupTuning struct {
	TitleThreshold  float64 `yaml:"title_threshold"`
	HeaderThreshold float64 `yaml:"header_threshold"`
	RowThreshold    float64 `yaml:"row_threshold"`
	SampleRows      int     `yaml:"sample_rows"`
}

type CategorizerTuning struct {
	BatchSize            int           `yaml:"batch_size"`
	Cooldown             time.Duration `yaml:"cooldown"`
	Categories           []string      `yaml:"categories"`
	Fallback             string        `yaml:"fallback"`
	ASCIITableConfidence float64       `yaml:"ascii_table_confidence"`
}

func DefaultTuning() Tuning {
	return Tuning{
		Chunking: ChunkingTuning{
			NarrativeMaxChars: 120000,
			TableMaxChars:     100000,
			LookbackRatio:     0.5,
		},
		Retry: RetryTuning{
			MaxAttempts:    3,
			InitialBackoff: 1 * time.Second,
			Multiplier:     2,
			MaxBackoff:     8 * time.Second,
			CallTimeout:    90 * time.Second,
		},
		Narrative: BackendTuning{
			BatchSize:         3,
			Cooldown:          2 * time.Second,
			RatePerSecond:     1,
			Burst:             3,
			DefaultConfidence: 0.7,
			Weight:            0.4,
		},
		Table: BackendTuning{
			BatchSize:         5,
			Cooldown:          2 * time.Second,
			RatePerSecond:     2,
			Burst:             5,
			DefaultConfidence: 0.8,
			Weight:            0.6,
		},
		Classifier: BackendTuning{
			BatchSize:     1,
			RatePerSecond: 1,
			Burst:         1,
		},
		Detection: DetectionTuning{
			Threshold:     0.3,
			MinTextLength: 50,
		},
		Dedup: DedupTuning{
			TitleThreshold:  0.8,
			HeaderThreshold: 0.7,
			RowThreshold:    0.6,
			SampleRows:      3,
		},
		Categorizer: CategorizerTuning{
			BatchSize: 20,
			Cooldown:  1 * time.Second,
			Categories: []string{
				"organization", "meals", "quantities", "materials", "personnel",
				"financial", "schedule", "equipment", "summary", "technical", "other",
			},
			Fallback:             "other",
			ASCIITableConfidence: 0.7,
		},
	}
}

// LoadTuning overlays the YAML file at path on DefaultTuning. An empty path
// returns the defaults.
func LoadTuning(path string) (Tuning, error) {
	t := DefaultTuning()
	if path == "" {
		return t, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, fmt.Errorf("read tuning file: %w", err)
	}
	return ParseTuning(raw)
}

func ParseTuning(raw []byte) (Tuning, error) {
	t := DefaultTuning()
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("parse tuning: %w", err)
	}
	if err := t.Validate(); err != nil {
		return t, err
	}
	return t, nil
}

func (t Tuning) Validate() error {
	var errs []error
	if t.Chunking.NarrativeMaxChars <= 0 || t.Chunking.TableMaxChars <= 0 {
		errs = append(errs, errors.New("chunking: max chars must be positive"))
	}
	if t.Chunking.LookbackRatio <= 0 || t.Chunking.LookbackRatio > 1 {
		errs = append(errs, errors.New("chunking: lookback_ratio must be in (0,1]"))
	}
	if t.Retry.MaxAttempts < 1 {
		errs = append(errs, errors.New("retry: max_attempts must be at least 1"))
	}
	if t.Retry.Multiplier < 1 {
		errs = append(errs, errors.New("retry: multiplier must be >= 1 so backoff never shrinks"))
	}
	if t.Retry.MaxBackoff < t.Retry.InitialBackoff {
		errs = append(errs, errors.New("retry: max_backoff below initial_backoff"))
	}
	if t.Retry.CallTimeout <= 0 {
		errs = append(errs, errors.New("retry: call_timeout must be positive"))
	}
	for name, b := range map[string]BackendTuning{"narrative": t.Narrative, "table": t.Table, "classifier": t.Classifier} {
		if b.BatchSize < 1 {
			errs = append(errs, fmt.Errorf("%s: batch_size must be at least 1", name))
		}
		if b.Cooldown < 0 {
			errs = append(errs, fmt.Errorf("%s: cooldown must not be negative", name))
		}
		if !unit(b.DefaultConfidence) || !unit(b.Weight) {
			errs = append(errs, fmt.Errorf("%s: confidences and weights must be in [0,1]", name))
		}
	}
	if !unit(t.Detection.Threshold) {
		errs = append(errs, errors.New("detection: threshold must be in [0,1]"))
	}
	if !unit(t.Dedup.TitleThreshold) || !unit(t.Dedup.HeaderThreshold) || !unit(t.Dedup.RowThreshold) {
		errs = append(errs, errors.New("dedup: thresholds must be in [0,1]"))
	}
	if t.Dedup.SampleRows < 1 {
		errs = append(errs, errors.New("dedup: sample_rows must be at least 1"))
	}
	if t.Categorizer.BatchSize < 1 {
		errs = append(errs, errors.New("categorizer: batch_size must be at least 1"))
	}
	if !slices.Contains(t.Categorizer.Categories, t.Categorizer.Fallback) {
		errs = append(errs, fmt.Errorf("categorizer: fallback %q is not a category", t.Categorizer.Fallback))
	}
	return errors.Join(errs...)
}

func unit(v float64) bool {
	return v >= 0 && v <= 1
}
