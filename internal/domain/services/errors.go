package services

import (
	"errors"
	"fmt"
	"strings"
)

// GenerationFailureMessage is shown to the user when no variant produced an image.
const GenerationFailureMessage = "We could not isolate your identity. Try sharper photos of your face and of the garment."

// TransportError is the failure of a single variant request. It never
// escapes the orchestrator on its own.
type TransportError struct {
	Variant string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("variant %s failed: %v", e.Variant, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// GenerationFailure means the fan-out finished with zero usable images.
type GenerationFailure struct {
	Message string
	Causes  []error
}

func (e *GenerationFailure) Error() string {
	return e.Message
}

func (e *GenerationFailure) Unwrap() []error {
	return e.Causes
}

// QuotaExhausted reports whether every variant failed on a quota limit.
func (e *GenerationFailure) QuotaExhausted() bool {
	if len(e.Causes) == 0 {
		return false
	}
	for _, cause := range e.Causes {
		if !isQuotaError(cause) {
			return false
		}
	}
	return true
}

// IsGenerationFailure unwraps err into a *GenerationFailure.
func IsGenerationFailure(err error) (*GenerationFailure, bool) {
	var failure *GenerationFailure
	if errors.As(err, &failure) {
		return failure, true
	}
	return nil, false
}

func isQuotaError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "quota exceeded") ||
		strings.Contains(errStr, "resourceexhausted") ||
		strings.Contains(errStr, "resource_exhausted") ||
		strings.Contains(errStr, "error 429")
}
