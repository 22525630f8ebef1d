package extractionModel

import (
	"time"
)

type BackendKind string

const (
	Narrative      BackendKind = "narrative"
	Tabular        BackendKind = "tabular"
	Classification BackendKind = "classification"
)

// Rank orders backends when results tie on confidence.
func (k BackendKind) Rank() int {
	switch k {
	case Narrative:
		return 0
	case Tabular:
		return 1
	case Classification:
		return 2
	}
	return 3
}

type TableCategory string

const (
	CategoryOrganization TableCategory = "organization"
	CategoryMeals        TableCategory = "meals"
	CategoryQuantities   TableCategory = "quantities"
	CategoryMaterials    TableCategory = "materials"
	CategoryPersonnel    TableCategory = "personnel"
	CategoryFinancial    TableCategory = "financial"
	CategorySchedule     TableCategory = "schedule"
	CategoryEquipment    TableCategory = "equipment"
	CategorySummary      TableCategory = "summary"
	CategoryTechnical    TableCategory = "technical"
	CategoryOther        TableCategory = "other"
)

// Citation points back at the document fragment a value was read from.
type Citation struct {
	Value  string `json:"value,omitempty"`
	Proof  string `json:"proof,omitempty"`
	Source string `json:"source,omitempty"`
}

// Table category is empty until the categorizer has run.
type Table struct {
	Title      string        `json:"title"`
	Headers    []string      `json:"headers"`
	Rows       [][]string    `json:"rows"`
	RowCount   int           `json:"row_count"`
	Confidence float64       `json:"confidence"`
	Category   TableCategory `json:"category,omitempty"`
}

// PartialResult is one backend's output for one chunk.
type PartialResult struct {
	ChunkIndex int                 `json:"chunk_index"`
	Backend    BackendKind         `json:"backend"`
	Fields     map[string]any      `json:"fields,omitempty"`
	Lists      map[string][]string `json:"lists,omitempty"`
	Citations  map[string]Citation `json:"citations,omitempty"`
	Tables     []Table             `json:"tables,omitempty"`
	Confidence float64             `json:"confidence"`
}

func EmptyResult(chunkIndex int, kind BackendKind) PartialResult {
	return PartialResult{ChunkIndex: chunkIndex, Backend: kind}
}

// IsEmpty reports a zero-confidence result carrying no data at all.
func (p PartialResult) IsEmpty() bool {
	return p.Confidence <= 0 && !p.HasData()
}

func (p PartialResult) HasData() bool {
	for _, v := range p.Fields {
		if !IsUnset(v) {
			return true
		}
	}
	for _, l := range p.Lists {
		if len(l) > 0 {
			return true
		}
	}
	return len(p.Citations) > 0 || len(p.Tables) > 0
}

type AttemptOutcome string

const (
	OutcomeSuccess   AttemptOutcome = "success"
	OutcomeRetryable AttemptOutcome = "retryable"
	OutcomeTerminal  AttemptOutcome = "terminal"
	OutcomeExhausted AttemptOutcome = "exhausted"
)

type ExtractionAttempt struct {
	ChunkIndex    int            `json:"chunk_index"`
	Backend       BackendKind    `json:"backend"`
	AttemptNumber int            `json:"attempt"`
	StartedAt     time.Time      `json:"started_at"`
	Duration      time.Duration  `json:"duration"`
	Outcome       AttemptOutcome `json:"outcome"`
	Error         string         `json:"error,omitempty"`
}

type SourceRef struct {
	ChunkIndex int         `json:"chunk_index"`
	Backend    BackendKind `json:"backend"`
	Citation   *Citation   `json:"citation,omitempty"`
}

type FieldValue struct {
	Value      any         `json:"value"`
	Confidence float64     `json:"confidence"`
	SourceRefs []SourceRef `json:"source_refs,omitempty"`
}

type Warning struct {
	Field    string `json:"field"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Value    any    `json:"value,omitempty"`
}

type ExtractionMetadata struct {
	Method            string        `json:"method"`
	TablesDetected    bool          `json:"tables_detected"`
	EstimatedTables   int           `json:"estimated_tables"`
	TableConfidence   float64       `json:"table_confidence"`
	ChunkCount        int           `json:"chunk_count"`
	Results           int           `json:"results"`
	EmptyResults      int           `json:"empty_results"`
	Attempts          int           `json:"attempts"`
	DuplicateTables   int           `json:"duplicate_tables"`
	BlendedConfidence float64       `json:"blended_confidence"`
	Duration          time.Duration `json:"duration"`
}

// MergedRecord is the reconciled output for a whole document.
type MergedRecord struct {
	DocumentID string                `json:"document_id"`
	Fields     map[string]FieldValue `json:"fields"`
	Lists      map[string][]string   `json:"lists"`
	Citations  map[string]Citation   `json:"citations"`
	Tables     []Table               `json:"tables"`
	Confidence float64               `json:"confidence"`
	Warnings   []Warning             `json:"warnings,omitempty"`
	Metadata   ExtractionMetadata    `json:"metadata"`
}

func NewMergedRecord(documentID string) MergedRecord {
	return MergedRecord{
		DocumentID: documentID,
		Fields:     map[string]FieldValue{},
		Lists:      map[string][]string{},
		Citations:  map[string]Citation{},
		Tables:     []Table{},
	}
}

// LowTrust is true when no backend reported positive confidence.
func (m MergedRecord) LowTrust() bool {
	return m.Confidence <= 0
}

// Number returns a field as float64 when it holds a numeric value.
func (m MergedRecord) Number(field string) (float64, bool) {
	fv, ok := m.Fields[field]
	if !ok {
		return 0, false
	}
	return AsNumber(fv.Value)
}
