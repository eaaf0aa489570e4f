package core

import (
	"errors"
	"fmt"
)

// Error kinds. Use errors.Is against these to classify a failure.
var (
	// ErrValidation marks malformed or missing input. Fatal for the document.
	ErrValidation = errors.New("validation error")
	// ErrStructure marks an empty or degenerate document structure. Fatal for the document.
	ErrStructure = errors.New("structure error")
	// ErrExtraction marks a single failed enrichment call. Recovered locally.
	ErrExtraction = errors.New("extraction failure")
	// ErrUpstream marks a failed backend call (analysis, storage, index, completion).
	ErrUpstream = errors.New("upstream service error")
)

func Validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func Structuref(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrStructure, fmt.Sprintf(format, args...))
}

// Extraction wraps err as a recovered failure of the named enrichment operation.
func Extraction(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", ErrExtraction, op, err)
}

// Upstream wraps err as a failure of the named backend operation. A nil err stays nil.
func Upstream(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %s: %w", ErrUpstream, op, err)
}
