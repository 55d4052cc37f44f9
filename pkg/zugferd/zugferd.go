// Package zugferd provides the public API for generating hybrid
// e-invoices: a validated invoice record serialized into
// Cross-Industry-Invoice XML and packed as a typed attachment inside a
// PDF/A-3 container.
//
// Example usage:
//
//	gen, err := zugferd.NewGenerator(zugferd.Options{ICCProfilePath: "sRGB.icc"})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	artifact, err := gen.Generate(ctx, req)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(artifact.Filename, artifact.Container, 0o644)
package zugferd

import (
	"context"
	"fmt"

	"github.com/jonaboe98/zugferd-api/internal/compliance"
	money "github.com/jonaboe98/zugferd-api/internal/decimal"
	"github.com/jonaboe98/zugferd-api/internal/model"
	"github.com/jonaboe98/zugferd-api/internal/pdfa"
	"github.com/jonaboe98/zugferd-api/internal/processor"
)

// Re-export core types for the public API
type (
	Invoice         = model.Invoice
	InvoiceRequest  = model.InvoiceRequest
	InvoiceHeader   = model.InvoiceHeader
	Party           = model.Party
	PartyRequest    = model.PartyRequest
	LineItem        = model.LineItem
	LineItemRequest = model.LineItemRequest
	TaxSummary      = model.TaxSummary
	Profile         = model.Profile
	Artifact        = processor.Artifact
)

// Re-export conformance profiles
const (
	ProfileBasic    = model.ProfileBasic
	ProfileComfort  = model.ProfileComfort
	ProfileExtended = model.ProfileExtended
)

// Re-export the attachment contract
const (
	AttachmentName = pdfa.AttachmentName
	AttachmentMIME = pdfa.AttachmentMIME
)

// Re-export error types
type (
	ValidationError       = model.ValidationError
	TaxMismatchError      = model.TaxMismatchError
	InvalidCharacterError = model.InvalidCharacterError
	MissingResourceError  = model.MissingResourceError
	PackError             = model.PackError
	ComplianceError       = model.ComplianceError
	TimeoutError          = model.TimeoutError
)

// Options configures a Generator.
type Options struct {
	// ICCProfilePath names the color profile embedded into every
	// container. Required; resolved once when the Generator is built.
	ICCProfilePath string

	// TaxRatePercent is the default rate for the tax-consistency check.
	// Zero selects the built-in default of 19.
	TaxRatePercent float64

	// SkipTaxCheck accepts declared tax amounts without checking.
	SkipTaxCheck bool

	// DisableCompression turns off stream compression in the container.
	DisableCompression bool

	// SchemaPath enables the external schema check after packaging.
	SchemaPath  string
	CheckSchema bool

	// CheckContainer enables the container conformance check.
	CheckContainer bool
}

// Generator produces packed invoice containers.
type Generator struct {
	pipeline *processor.Pipeline
}

// NewGenerator creates a generator with the given options.
func NewGenerator(opts Options) (*Generator, error) {
	if opts.ICCProfilePath == "" {
		return nil, fmt.Errorf("zugferd: an ICC color profile path is required")
	}
	profile, err := pdfa.LoadColorProfile(opts.ICCProfilePath)
	if err != nil {
		return nil, err
	}

	valOpts := model.DefaultValidateOptions()
	if opts.TaxRatePercent > 0 {
		valOpts.DefaultTaxRate = money.FromFloat(opts.TaxRatePercent)
	}
	valOpts.EnforceTaxCheck = !opts.SkipTaxCheck

	pipelineOpts := []processor.Option{
		processor.WithValidateOptions(valOpts),
		processor.WithCompression(!opts.DisableCompression),
	}
	if opts.CheckSchema {
		pipelineOpts = append(pipelineOpts, processor.WithSchemaValidator(compliance.NewXMLLintValidator(opts.SchemaPath)))
	}
	if opts.CheckContainer {
		pipelineOpts = append(pipelineOpts, processor.WithContainerValidator(compliance.NewPDFValidator()))
	}

	return &Generator{pipeline: processor.NewPipeline(profile, pipelineOpts...)}, nil
}

// Generate validates the request and returns the packed container
// together with the serialized XML.
func (g *Generator) Generate(ctx context.Context, req *InvoiceRequest) (*Artifact, error) {
	return g.pipeline.Generate(ctx, req)
}

// GenerateXML validates the request and returns the invoice XML only.
func (g *Generator) GenerateXML(ctx context.Context, req *InvoiceRequest) ([]byte, error) {
	_, xmlBytes, err := g.pipeline.BuildXML(ctx, req)
	return xmlBytes, err
}
