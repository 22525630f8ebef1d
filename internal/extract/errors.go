package extract

import (
	"errors"
	"fmt"

	"github.com/akolanti/TenderExtract/internal/domain/extractionModel"
)

var (
	ErrEmptyDocument     = errors.New("document text is empty")
	ErrAllBackendsFailed = errors.New("all backends failed")
)

// AllBackendsFailedError is returned when every chunk on every backend
// produced an empty result. It matches ErrAllBackendsFailed with errors.Is.
type AllBackendsFailedError struct {
	DocumentID string
	Attempts   []extractionModel.ExtractionAttempt
}

func (e *AllBackendsFailedError) Error() string {
	last := ""
	if n := len(e.Attempts); n > 0 {
		last = e.Attempts[n-1].Error
	}
	if last == "" {
		return fmt.Sprintf("document %s: %s after %d attempts", e.DocumentID, ErrAllBackendsFailed, len(e.Attempts))
	}
	return fmt.Sprintf("document %s: %s after %d attempts, last error: %s", e.DocumentID, ErrAllBackendsFailed, len(e.Attempts), last)
}

func (e *AllBackendsFailedError) Is(target error) bool {
	return target == ErrAllBackendsFailed
}
