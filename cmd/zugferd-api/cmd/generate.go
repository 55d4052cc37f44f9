package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonaboe98/zugferd-api/internal/compliance"
	money "github.com/jonaboe98/zugferd-api/internal/decimal"
	"github.com/jonaboe98/zugferd-api/internal/model"
	"github.com/jonaboe98/zugferd-api/internal/pdfa"
	"github.com/jonaboe98/zugferd-api/internal/processor"
)

var (
	outputDir      string
	writeXML       bool
	checkSchema    bool
	checkContainer bool
	genTimeout     time.Duration
)

var generateCmd = &cobra.Command{
	Use:   "generate [files...]",
	Short: "Generate invoice containers from request files",
	Long: `Generate one PDF/A-3 invoice container per JSON request file.

Each container embeds the serialized CII XML as a typed attachment and
is written next to the request file or into --output. The ICC color
profile is required; it is loaded once before any request is processed.

Examples:
  zugferd-api generate invoice.json --icc-profile sRGB.icc
  zugferd-api generate *.json -o out/ --xml
  zugferd-api generate invoice.json --check-container`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringVarP(&outputDir, "output", "o", "", "Output directory (default: alongside input)")
	generateCmd.Flags().BoolVar(&writeXML, "xml", false, "Also write the invoice XML next to the container")
	generateCmd.Flags().BoolVar(&checkSchema, "check-schema", false, "Run the external schema validator after packaging")
	generateCmd.Flags().BoolVar(&checkContainer, "check-container", false, "Run the container conformance check after packaging")
	generateCmd.Flags().DurationVar(&genTimeout, "timeout", 2*time.Minute, "Processing timeout per file")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args, ".json")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no request files found to process")
	}

	pipeline, err := newPipeline()
	if err != nil {
		return err
	}

	if outputDir != "" {
		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	for _, file := range files {
		if err := generateFile(pipeline, file); err != nil {
			return fmt.Errorf("%s: %w", file, err)
		}
	}
	return nil
}

func generateFile(pipeline *processor.Pipeline, file string) error {
	req, err := readRequest(file)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), genTimeout)
	defer cancel()

	artifact, err := pipeline.Generate(ctx, req)
	if err != nil {
		return err
	}

	dir := outputDir
	if dir == "" {
		dir = filepath.Dir(file)
	}

	pdfPath := filepath.Join(dir, artifact.Filename)
	if err := os.WriteFile(pdfPath, artifact.Container, 0o644); err != nil {
		return fmt.Errorf("failed to write container: %w", err)
	}
	printVerbose("wrote %s (%d bytes)\n", pdfPath, len(artifact.Container))

	if writeXML {
		xmlPath := pdfPath[:len(pdfPath)-len(".pdf")] + ".xml"
		if err := os.WriteFile(xmlPath, artifact.XML, 0o644); err != nil {
			return fmt.Errorf("failed to write XML: %w", err)
		}
		printVerbose("wrote %s (%d bytes)\n", xmlPath, len(artifact.XML))
	}

	fmt.Printf("%s -> %s\n", file, pdfPath)
	return nil
}

// newPipeline builds a pipeline from the global flags. The color profile
// is resolved here, once, before any request is processed.
func newPipeline() (*processor.Pipeline, error) {
	if iccProfile == "" {
		return nil, fmt.Errorf("an ICC color profile is required (--icc-profile or ICC_PROFILE)")
	}
	profile, err := pdfa.LoadColorProfile(iccProfile)
	if err != nil {
		return nil, err
	}

	opts := []processor.Option{
		processor.WithValidateOptions(buildValidateOptions()),
		processor.WithCompression(!noCompress),
	}
	if checkSchema {
		opts = append(opts, processor.WithSchemaValidator(compliance.NewXMLLintValidator(schemaPath)))
	}
	if checkContainer {
		opts = append(opts, processor.WithContainerValidator(compliance.NewPDFValidator()))
	}

	return processor.NewPipeline(profile, opts...), nil
}

func buildValidateOptions() model.ValidateOptions {
	opts := model.DefaultValidateOptions()
	if taxRate > 0 {
		opts.DefaultTaxRate = money.FromFloat(taxRate)
	}
	opts.EnforceTaxCheck = !noTaxCheck
	return opts
}

func readRequest(file string) (*model.InvoiceRequest, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read request file: %w", err)
	}
	var req model.InvoiceRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return nil, fmt.Errorf("failed to parse request file: %w", err)
	}
	return &req, nil
}

// collectFiles expands directories into files with the given extension.
func collectFiles(args []string, ext string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot read directory %s: %w", arg, err)
		}
		for _, entry := range entries {
			if !entry.IsDir() && filepath.Ext(entry.Name()) == ext {
				files = append(files, filepath.Join(arg, entry.Name()))
			}
		}
	}
	return files, nil
}
