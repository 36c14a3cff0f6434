package archive

import (
	"errors"
	"fmt"
)

// Sentinel errors for extraction.
var (
	// ErrExtraction is matched by every ExtractionError.
	ErrExtraction = errors.New("archive extraction failed")

	// ErrUnsupported reports a file that is not a supported archive.
	ErrUnsupported = errors.New("unsupported archive format")

	// ErrSizeBudget reports that the extracted bytes exceeded the configured budget.
	ErrSizeBudget = errors.New("extracted size exceeds budget")
)

// ExtractionError names the archive that could not be extracted.
type ExtractionError struct {
	Archive string
	Err     error
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("extract %s: %v", e.Archive, e.Err)
}

func (e *ExtractionError) Unwrap() error {
	return e.Err
}

// Is makes errors.Is(err, ErrExtraction) hold.
func (e *ExtractionError) Is(target error) bool {
	return target == ErrExtraction
}
