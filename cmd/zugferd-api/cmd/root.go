package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	version = "1.0.0"

	// Global flags
	verbose      bool
	outputFormat string
	iccProfile   string
	schemaPath   string
	taxRate      float64
	noTaxCheck   bool
	noCompress   bool
)

var rootCmd = &cobra.Command{
	Use:   "zugferd-api",
	Short: "Generate hybrid e-invoices (CII XML embedded in PDF/A-3)",
	Long: `zugferd-api builds electronic invoices: a validated invoice record is
serialized into Cross-Industry-Invoice XML and packed as a typed
attachment inside a PDF/A-3 container.

Conformance profiles: basic, comfort, extended.

Examples:
  # Generate a container from a request file
  zugferd-api generate invoice.json -o out/

  # Validate request files without generating anything
  zugferd-api validate *.json

  # Inspect a generated container
  zugferd-api inspect out/INV-0001.pdf

  # Start the HTTP API
  zugferd-api serve --address :8080 --icc-profile sRGB.icc`,
	Version: version,
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "format", "f", "table", "Output format (json, table)")
	rootCmd.PersistentFlags().StringVar(&iccProfile, "icc-profile", "", "Path to the ICC color profile (env: ICC_PROFILE)")
	rootCmd.PersistentFlags().StringVar(&schemaPath, "schema", "", "Path to the CII XSD for external validation (env: INVOICE_SCHEMA)")
	rootCmd.PersistentFlags().Float64Var(&taxRate, "tax-rate", 0, "Default tax rate percent (env: TAX_RATE, default 19)")
	rootCmd.PersistentFlags().BoolVar(&noTaxCheck, "no-tax-check", false, "Accept declared tax amounts without consistency checking")
	rootCmd.PersistentFlags().BoolVar(&noCompress, "no-compress", false, "Disable stream compression in the container")

	cobra.OnInitialize(initConfig)
}

func initConfig() {
	// .env is optional; flags win over environment.
	_ = godotenv.Load()

	if iccProfile == "" {
		iccProfile = os.Getenv("ICC_PROFILE")
	}
	if schemaPath == "" {
		schemaPath = os.Getenv("INVOICE_SCHEMA")
	}
	if taxRate == 0 {
		if v := os.Getenv("TAX_RATE"); v != "" {
			if parsed, err := strconv.ParseFloat(v, 64); err == nil {
				taxRate = parsed
			}
		}
	}
}

func printVerbose(format string, args ...interface{}) {
	if verbose {
		fmt.Fprintf(os.Stderr, format, args...)
	}
}
