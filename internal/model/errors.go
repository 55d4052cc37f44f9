package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// ValidationError represents a malformed or inconsistent request.
// It is always detected before any document construction starts.
type ValidationError struct {
	Field   string
	Value   interface{}
	Rule    string
	Message string
	Cause   error
}

func (e *ValidationError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("validation failed on %s: %s (value=%v, rule=%s)", e.Field, e.Message, e.Value, e.Rule)
	}
	return fmt.Sprintf("validation failed on %s: %s (rule=%s)", e.Field, e.Message, e.Rule)
}

func (e *ValidationError) Unwrap() error {
	return e.Cause
}

// NewValidationError creates a new validation error
func NewValidationError(field string, value interface{}, rule, message string) *ValidationError {
	return &ValidationError{
		Field:   field,
		Value:   value,
		Rule:    rule,
		Message: message,
	}
}

// TaxMismatchError reports a declared tax amount that deviates from the
// recomputed expectation by more than the configured tolerance.
type TaxMismatchError struct {
	Expected decimal.Decimal
	Actual   decimal.Decimal
}

func (e *TaxMismatchError) Error() string {
	return fmt.Sprintf("tax amount mismatch: expected %s, actual %s",
		e.Expected.StringFixed(2), e.Actual.StringFixed(2))
}

// NewTaxMismatchError creates a new tax mismatch error
func NewTaxMismatchError(expected, actual decimal.Decimal) *TaxMismatchError {
	return &TaxMismatchError{Expected: expected, Actual: actual}
}

// InvalidCharacterError reports text content carrying a control character
// that must not reach element content of the generated document.
type InvalidCharacterError struct {
	Path     string
	Rune     rune
	Position int
}

func (e *InvalidCharacterError) Error() string {
	return fmt.Sprintf("invalid character U+%04X at offset %d in %s", e.Rune, e.Position, e.Path)
}

// MissingResourceError reports an unreadable packaging resource, most
// prominently the ICC color profile. This is environment misconfiguration,
// not a request error.
type MissingResourceError struct {
	Resource string
	Path     string
	Cause    error
}

func (e *MissingResourceError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("missing resource %s at %s: %v", e.Resource, e.Path, e.Cause)
	}
	return fmt.Sprintf("missing resource %s: %v", e.Resource, e.Cause)
}

func (e *MissingResourceError) Unwrap() error {
	return e.Cause
}

// NewMissingResourceError creates a new missing resource error
func NewMissingResourceError(resource, path string, cause error) *MissingResourceError {
	return &MissingResourceError{Resource: resource, Path: path, Cause: cause}
}

// Packaging error codes
const (
	PackCodeAttachment = "ATTACHMENT"
	PackCodeMetadata   = "METADATA"
	PackCodeBody       = "BODY"
)

// PackError represents a failed packaging step. Packaging failures are
// reported verbatim, never downgraded to success.
type PackError struct {
	Code    string
	Message string
	Cause   error
}

func (e *PackError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("[%s] packaging failed: %s (%v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("[%s] packaging failed: %s", e.Code, e.Message)
}

func (e *PackError) Unwrap() error {
	return e.Cause
}

// NewPackError creates a new packaging error
func NewPackError(code, message string, cause error) *PackError {
	return &PackError{Code: code, Message: message, Cause: cause}
}

// ErrAttachment returns a packaging error for a rejected attachment step
func ErrAttachment(message string, cause error) *PackError {
	return NewPackError(PackCodeAttachment, message, cause)
}

// ErrMetadata returns a packaging error for conflicting metadata fields
func ErrMetadata(message string) *PackError {
	return NewPackError(PackCodeMetadata, message, nil)
}

// ComplianceError reports an external validator rejecting the XML or the
// packed container. It indicates a builder defect, not bad input, and is
// never retried: conformance failures are deterministic for equal input.
type ComplianceError struct {
	Stage       string // "schema" or "container"
	Diagnostics []string
}

func (e *ComplianceError) Error() string {
	if len(e.Diagnostics) > 0 {
		return fmt.Sprintf("compliance check failed [%s]: %s", e.Stage, e.Diagnostics[0])
	}
	return fmt.Sprintf("compliance check failed [%s]", e.Stage)
}

// NewComplianceError creates a new compliance error
func NewComplianceError(stage string, diagnostics []string) *ComplianceError {
	return &ComplianceError{Stage: stage, Diagnostics: diagnostics}
}

// TimeoutError reports an external call (renderer, validator) exceeding
// its deadline. Surfaced as upstream unavailability, never as pass.
type TimeoutError struct {
	Operation string
	Limit     time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("%s timed out after %s", e.Operation, e.Limit)
}

// NewTimeoutError creates a new timeout error
func NewTimeoutError(operation string, limit time.Duration) *TimeoutError {
	return &TimeoutError{Operation: operation, Limit: limit}
}
