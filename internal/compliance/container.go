package compliance

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	pdfmodel "github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/jonaboe98/zugferd-api/internal/pdfa"
)

// PDFValidator checks packed containers with pdfcpu: the file must parse
// and validate as a single consistent revision, and the fixed invoice
// attachment must be present.
type PDFValidator struct {
	conf *pdfmodel.Configuration
}

// NewPDFValidator creates a container validator
func NewPDFValidator() *PDFValidator {
	conf := pdfmodel.NewDefaultConfiguration()
	conf.ValidationMode = pdfmodel.ValidationRelaxed
	return &PDFValidator{conf: conf}
}

// ValidateContainer reports whether the container parses, validates and
// carries the invoice attachment.
func (v *PDFValidator) ValidateContainer(ctx context.Context, containerBytes []byte) (*Report, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	pctx, err := api.ReadContext(bytes.NewReader(containerBytes), v.conf)
	if err != nil {
		return failed(fmt.Sprintf("container does not parse: %v", err)), nil
	}
	if err := api.ValidateContext(pctx); err != nil {
		return failed(fmt.Sprintf("container validation failed: %v", err)), nil
	}

	attachments, err := api.Attachments(bytes.NewReader(containerBytes), v.conf)
	if err != nil {
		return failed(fmt.Sprintf("cannot list attachments: %v", err)), nil
	}
	for _, a := range attachments {
		if a.FileName == pdfa.AttachmentName {
			return passed(), nil
		}
	}
	return failed(fmt.Sprintf("attachment %q not found in container", pdfa.AttachmentName)), nil
}

// ExtractAttachment pulls the embedded invoice XML back out of a packed
// container.
func (v *PDFValidator) ExtractAttachment(containerBytes []byte, name string) ([]byte, error) {
	attachments, err := api.ExtractAttachmentsRaw(bytes.NewReader(containerBytes), "", []string{name}, v.conf)
	if err != nil {
		return nil, fmt.Errorf("failed to extract attachment %q: %w", name, err)
	}
	for _, a := range attachments {
		if a.FileName != name {
			continue
		}
		data, err := io.ReadAll(a)
		if err != nil {
			return nil, fmt.Errorf("failed to read attachment %q: %w", name, err)
		}
		return data, nil
	}
	return nil, fmt.Errorf("attachment %q not found", name)
}

// ListAttachments returns the names of all embedded files.
func (v *PDFValidator) ListAttachments(containerBytes []byte) ([]string, error) {
	attachments, err := api.Attachments(bytes.NewReader(containerBytes), v.conf)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(attachments))
	for _, a := range attachments {
		names = append(names, a.FileName)
	}
	return names, nil
}
