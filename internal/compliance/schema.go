package compliance

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/jonaboe98/zugferd-api/internal/model"
)

// XMLLintValidator validates invoice XML with the external xmllint tool.
// Without a schema path it checks well-formedness only.
type XMLLintValidator struct {
	binPath    string
	schemaPath string
	available  bool
	timeout    time.Duration
}

// NewXMLLintValidator creates a schema validator. schemaPath may be empty.
func NewXMLLintValidator(schemaPath string) *XMLLintValidator {
	path, err := exec.LookPath("xmllint")
	return &XMLLintValidator{
		binPath:    path,
		schemaPath: schemaPath,
		available:  err == nil,
		timeout:    30 * time.Second,
	}
}

// IsAvailable returns whether the xmllint tool was found
func (v *XMLLintValidator) IsAvailable() bool {
	return v.available
}

// ValidateSchema runs xmllint against the XML bytes. A timeout surfaces
// as *model.TimeoutError, never as pass.
func (v *XMLLintValidator) ValidateSchema(ctx context.Context, xmlBytes []byte) (*Report, error) {
	if !v.available {
		return nil, errors.New("external tool not available: xmllint")
	}

	// xmllint wants a file path.
	tmpFile, err := os.CreateTemp("", "invoice-*.xml")
	if err != nil {
		return nil, fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmpFile.Name())
	defer tmpFile.Close()

	if _, err := tmpFile.Write(xmlBytes); err != nil {
		return nil, fmt.Errorf("failed to write temp file: %w", err)
	}
	tmpFile.Close()

	ctx, cancel := context.WithTimeout(ctx, v.timeout)
	defer cancel()

	args := []string{"--noout"}
	if v.schemaPath != "" {
		args = append(args, "--schema", v.schemaPath)
	}
	args = append(args, tmpFile.Name())

	cmd := exec.CommandContext(ctx, v.binPath, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	err = cmd.Run()
	if ctx.Err() == context.DeadlineExceeded {
		return nil, model.NewTimeoutError("schema validation", v.timeout)
	}
	if err != nil {
		return failed(splitDiagnostics(stderr.String())...), nil
	}
	return passed(), nil
}

func splitDiagnostics(s string) []string {
	var out []string
	for _, line := range strings.Split(s, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	if len(out) == 0 {
		out = []string{"schema validation failed"}
	}
	return out
}
