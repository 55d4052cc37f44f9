// Package compliance consumes external conformance checks. The core
// never implements schema or PDF/A validation itself; it calls these
// capabilities after packaging succeeds and surfaces any failure as a
// distinct, diagnostics-carrying error. Failures are never retried:
// conformance is deterministic for equal input.
package compliance

import "context"

// Report is the outcome of an external check.
type Report struct {
	Passed      bool     `json:"passed"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// SchemaValidator checks the serialized invoice XML against the schema.
type SchemaValidator interface {
	ValidateSchema(ctx context.Context, xmlBytes []byte) (*Report, error)
}

// ContainerValidator checks the packed container bytes for conformance.
type ContainerValidator interface {
	ValidateContainer(ctx context.Context, containerBytes []byte) (*Report, error)
}

func failed(diagnostics ...string) *Report {
	return &Report{Passed: false, Diagnostics: diagnostics}
}

func passed() *Report {
	return &Report{Passed: true}
}
