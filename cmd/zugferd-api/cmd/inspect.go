package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonaboe98/zugferd-api/internal/compliance"
	"github.com/jonaboe98/zugferd-api/internal/pdfa"
)

var extractTo string

var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Inspect a generated invoice container",
	Long: `Inspect a PDF container: run the conformance check, list embedded
attachments and optionally extract the invoice XML.

Examples:
  zugferd-api inspect INV-0001.pdf
  zugferd-api inspect INV-0001.pdf --extract-xml invoice.xml`,
	Args: cobra.ExactArgs(1),
	RunE: runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().StringVar(&extractTo, "extract-xml", "", "Extract the embedded invoice XML to this path")
}

// InspectResult is the outcome of inspecting one container
type InspectResult struct {
	File        string   `json:"file"`
	Size        int      `json:"size"`
	Passed      bool     `json:"passed"`
	Attachments []string `json:"attachments,omitempty"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read container: %w", err)
	}

	validator := compliance.NewPDFValidator()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	report, err := validator.ValidateContainer(ctx, data)
	if err != nil {
		return err
	}

	result := &InspectResult{
		File:        args[0],
		Size:        len(data),
		Passed:      report.Passed,
		Diagnostics: report.Diagnostics,
	}
	if names, err := validator.ListAttachments(data); err == nil {
		result.Attachments = names
	}

	if extractTo != "" {
		xmlBytes, err := validator.ExtractAttachment(data, pdfa.AttachmentName)
		if err != nil {
			return err
		}
		if err := os.WriteFile(extractTo, xmlBytes, 0o644); err != nil {
			return fmt.Errorf("failed to write extracted XML: %w", err)
		}
		printVerbose("extracted %s (%d bytes)\n", extractTo, len(xmlBytes))
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		return encoder.Encode(result)
	}

	if result.Passed {
		fmt.Printf("✓ %s: conformant (%d bytes)\n", result.File, result.Size)
	} else {
		fmt.Printf("✗ %s: NOT conformant\n", result.File)
		for _, d := range result.Diagnostics {
			fmt.Printf("  - %s\n", d)
		}
	}
	for _, name := range result.Attachments {
		fmt.Printf("  attachment: %s\n", name)
	}

	if !result.Passed {
		return fmt.Errorf("container failed conformance check")
	}
	return nil
}
