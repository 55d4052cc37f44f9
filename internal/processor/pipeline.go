// Package processor wires the generation pipeline: validate the raw
// request, build and serialize the document tree, render the page body,
// pack the container and optionally run external compliance checks.
// The pipeline is a pure per-request transformation: every invocation
// allocates its own buffers and shares no mutable state, so concurrent
// requests need no locking.
package processor

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/jonaboe98/zugferd-api/internal/cii"
	"github.com/jonaboe98/zugferd-api/internal/compliance"
	"github.com/jonaboe98/zugferd-api/internal/model"
	"github.com/jonaboe98/zugferd-api/internal/pdfa"
	"github.com/jonaboe98/zugferd-api/internal/render"
)

// Artifact is the successful pipeline outcome.
type Artifact struct {
	Invoice   *model.Invoice
	XML       []byte
	Container []byte
	// Filename is the download name derived from the invoice number.
	Filename string
}

// Pipeline generates packed invoice containers.
type Pipeline struct {
	builder            *cii.Builder
	renderer           render.BodyRenderer
	packer             *pdfa.Packer
	profile            *pdfa.ColorProfile
	valOpts            model.ValidateOptions
	schemaValidator    compliance.SchemaValidator
	containerValidator compliance.ContainerValidator
	renderTimeout      time.Duration
	validateTimeout    time.Duration
	log                *zap.Logger
}

// Option configures a pipeline
type Option func(*Pipeline)

// WithRenderer sets the body renderer
func WithRenderer(r render.BodyRenderer) Option {
	return func(p *Pipeline) { p.renderer = r }
}

// WithValidateOptions sets the request validator configuration
func WithValidateOptions(opts model.ValidateOptions) Option {
	return func(p *Pipeline) { p.valOpts = opts }
}

// WithSchemaValidator enables the external schema check after packaging
func WithSchemaValidator(v compliance.SchemaValidator) Option {
	return func(p *Pipeline) { p.schemaValidator = v }
}

// WithContainerValidator enables the external container check after packaging
func WithContainerValidator(v compliance.ContainerValidator) Option {
	return func(p *Pipeline) { p.containerValidator = v }
}

// WithCompression toggles stream compression in the packer
func WithCompression(enabled bool) Option {
	return func(p *Pipeline) { p.packer = pdfa.NewPacker(pdfa.Config{Compress: enabled}) }
}

// WithLogger sets the structured logger
func WithLogger(log *zap.Logger) Option {
	return func(p *Pipeline) { p.log = log }
}

// WithRenderTimeout bounds the external renderer call
func WithRenderTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.renderTimeout = d }
}

// WithValidateTimeout bounds each external compliance check
func WithValidateTimeout(d time.Duration) Option {
	return func(p *Pipeline) { p.validateTimeout = d }
}

// NewPipeline creates a pipeline around the injected color profile.
// The profile handle is resolved once at process start; the pipeline
// never re-reads it per request.
func NewPipeline(profile *pdfa.ColorProfile, opts ...Option) *Pipeline {
	p := &Pipeline{
		builder:         cii.NewBuilder(),
		renderer:        render.NewTextRenderer(),
		packer:          pdfa.NewPacker(pdfa.Config{Compress: true}),
		profile:         profile,
		valOpts:         model.DefaultValidateOptions(),
		renderTimeout:   30 * time.Second,
		validateTimeout: 30 * time.Second,
		log:             zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// BuildXML validates the request and returns the serialized invoice XML.
func (p *Pipeline) BuildXML(_ context.Context, req *model.InvoiceRequest) (*model.Invoice, []byte, error) {
	inv, err := model.Validate(req, p.valOpts)
	if err != nil {
		return nil, nil, err
	}
	xmlBytes, err := cii.Serialize(p.builder.Build(inv))
	if err != nil {
		return nil, nil, err
	}
	return inv, xmlBytes, nil
}

// Generate runs the full pipeline for one request. Validation failures
// are reported before any rendering or packaging work is attempted.
func (p *Pipeline) Generate(ctx context.Context, req *model.InvoiceRequest) (*Artifact, error) {
	inv, xmlBytes, err := p.BuildXML(ctx, req)
	if err != nil {
		return nil, err
	}

	body, err := p.renderBody(ctx, inv)
	if err != nil {
		return nil, err
	}

	container, err := p.packer.Pack(body, xmlBytes, p.profile, metadataFor(inv))
	if err != nil {
		return nil, err
	}

	if err := p.runComplianceChecks(ctx, xmlBytes, container); err != nil {
		return nil, err
	}

	p.log.Debug("invoice generated",
		zap.String("number", inv.Header.Number),
		zap.String("profile", string(inv.Profile)),
		zap.Int("xml_bytes", len(xmlBytes)),
		zap.Int("container_bytes", len(container)))

	return &Artifact{
		Invoice:   inv,
		XML:       xmlBytes,
		Container: container,
		Filename:  Filename(inv.Header.Number),
	}, nil
}

func (p *Pipeline) renderBody(ctx context.Context, inv *model.Invoice) ([]byte, error) {
	rctx, cancel := context.WithTimeout(ctx, p.renderTimeout)
	defer cancel()

	body, err := p.renderer.Render(rctx, inv)
	if rctx.Err() == context.DeadlineExceeded {
		return nil, model.NewTimeoutError("body rendering", p.renderTimeout)
	}
	if err != nil {
		return nil, model.NewPackError(model.PackCodeBody, "body renderer failed", err)
	}
	return body, nil
}

// runComplianceChecks calls the configured external validators. Their
// failures carry diagnostics and are surfaced verbatim; they indicate a
// builder defect, not bad input, so nothing is retried.
func (p *Pipeline) runComplianceChecks(ctx context.Context, xmlBytes, container []byte) error {
	if p.schemaValidator != nil {
		report, err := p.check(ctx, "schema validation", func(vctx context.Context) (*compliance.Report, error) {
			return p.schemaValidator.ValidateSchema(vctx, xmlBytes)
		})
		if err != nil {
			return err
		}
		if !report.Passed {
			return model.NewComplianceError("schema", report.Diagnostics)
		}
	}

	if p.containerValidator != nil {
		report, err := p.check(ctx, "container validation", func(vctx context.Context) (*compliance.Report, error) {
			return p.containerValidator.ValidateContainer(vctx, container)
		})
		if err != nil {
			return err
		}
		if !report.Passed {
			return model.NewComplianceError("container", report.Diagnostics)
		}
	}

	return nil
}

func (p *Pipeline) check(ctx context.Context, op string, fn func(context.Context) (*compliance.Report, error)) (*compliance.Report, error) {
	vctx, cancel := context.WithTimeout(ctx, p.validateTimeout)
	defer cancel()

	report, err := fn(vctx)
	if vctx.Err() == context.DeadlineExceeded {
		return nil, model.NewTimeoutError(op, p.validateTimeout)
	}
	if err != nil {
		return nil, fmt.Errorf("%s unavailable: %w", op, err)
	}
	return report, nil
}

func metadataFor(inv *model.Invoice) pdfa.Metadata {
	return pdfa.Metadata{
		Title:   inv.Header.Name + " " + inv.Header.Number,
		Author:  inv.Seller.Name,
		Subject: fmt.Sprintf("%s %s for %s", inv.Header.Name, inv.Header.Number, inv.Buyer.Name),
		Created: inv.Header.IssueDate,
		Profile: inv.Profile,
	}
}

// Filename derives the suggested download name from an invoice number.
func Filename(number string) string {
	var b strings.Builder
	for _, r := range number {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			b.WriteRune(r)
		default:
			b.WriteRune('-')
		}
	}
	name := strings.Trim(b.String(), "-.")
	if name == "" {
		name = "invoice"
	}
	return name + ".pdf"
}
