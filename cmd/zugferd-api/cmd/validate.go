package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonaboe98/zugferd-api/internal/model"
)

var validateCmd = &cobra.Command{
	Use:   "validate [files...]",
	Short: "Validate invoice request files",
	Long: `Validate one or more JSON request files without generating anything.

Checks performed:
  - Required fields present (number, dates, seller, buyer, items)
  - Line item prices non-negative, quantities positive
  - Date validity and due date >= issue date
  - Tax consistency against the configured rate (default 19%)
  - Profile requirements (VAT identifier from comfort upwards)

Examples:
  zugferd-api validate invoice.json
  zugferd-api validate requests/ -f json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

// ValidationResult holds the result of validating a single file
type ValidationResult struct {
	File    string `json:"file"`
	Valid   bool   `json:"valid"`
	Profile string `json:"profile,omitempty"`
	Error   string `json:"error,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args, ".json")
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no request files found to validate")
	}

	opts := buildValidateOptions()
	results := make([]*ValidationResult, 0, len(files))
	allValid := true

	for _, file := range files {
		result := &ValidationResult{File: file, Valid: true}
		results = append(results, result)

		req, err := readRequest(file)
		if err != nil {
			result.Valid = false
			result.Error = err.Error()
			allValid = false
			continue
		}

		inv, err := model.Validate(req, opts)
		if err != nil {
			result.Valid = false
			result.Error = err.Error()
			allValid = false

			var mismatch *model.TaxMismatchError
			if errors.As(err, &mismatch) {
				printVerbose("%s: expected tax %s, declared %s\n",
					file, mismatch.Expected.StringFixed(2), mismatch.Actual.StringFixed(2))
			}
			continue
		}
		result.Profile = string(inv.Profile)
	}

	if outputFormat == "json" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				fmt.Printf("✓ %s: VALID (%s)\n", r.File, r.Profile)
			} else {
				fmt.Printf("✗ %s: INVALID\n  - %s\n", r.File, r.Error)
			}
		}
	}

	if !allValid {
		return fmt.Errorf("validation failed for some files")
	}
	return nil
}
