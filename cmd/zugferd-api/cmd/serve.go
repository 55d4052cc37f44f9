package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonaboe98/zugferd-api/internal/server"
)

var (
	serverAddr       string
	serverDebug      bool
	readTimeout      time.Duration
	writeTimeout     time.Duration
	serveCheckSchema bool
	serveCheckPDF    bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	Long: `Start an HTTP API server for generating invoices.

The API provides:
  - POST /api/v1/invoices/pdf  - Generate a PDF/A-3 invoice container
  - POST /api/v1/invoices/xml  - Generate the CII invoice XML only
  - POST /api/v1/validate      - Validate an invoice request
  - GET  /health               - Health check

The ICC color profile is loaded once at startup; a missing profile is a
startup failure, never a per-request one.

Examples:
  zugferd-api serve --icc-profile sRGB.icc
  zugferd-api serve --address :9000 --check-container --debug`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serverAddr, "address", ":8080", "Server listen address")
	serveCmd.Flags().BoolVar(&serverDebug, "debug", false, "Enable debug mode")
	serveCmd.Flags().DurationVar(&readTimeout, "read-timeout", 30*time.Second, "HTTP read timeout")
	serveCmd.Flags().DurationVar(&writeTimeout, "write-timeout", 2*time.Minute, "HTTP write timeout")
	serveCmd.Flags().BoolVar(&serveCheckSchema, "check-schema", false, "Validate generated XML with the external schema validator")
	serveCmd.Flags().BoolVar(&serveCheckPDF, "check-container", false, "Validate generated containers before returning them")
}

func runServe(cmd *cobra.Command, args []string) error {
	if iccProfile == "" {
		return fmt.Errorf("an ICC color profile is required (--icc-profile or ICC_PROFILE)")
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	config := &server.Config{
		Address:        serverAddr,
		ReadTimeout:    readTimeout,
		WriteTimeout:   writeTimeout,
		Debug:          serverDebug,
		ICCProfilePath: iccProfile,
		TaxRate:        taxRate,
		EnforceTax:     !noTaxCheck,
		Compress:       !noCompress,
		SchemaPath:     schemaPath,
		CheckSchema:    serveCheckSchema,
		CheckContainer: serveCheckPDF,
		Logger:         logger,
	}

	srv, err := server.NewServer(config)
	if err != nil {
		return err
	}

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down server")
		os.Exit(0)
	}()

	logger.Info("starting server",
		zap.String("address", serverAddr),
		zap.String("icc_profile", iccProfile),
		zap.Bool("check_schema", serveCheckSchema),
		zap.Bool("check_container", serveCheckPDF))

	return srv.Run()
}

func newLogger() (*zap.Logger, error) {
	if serverDebug || verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
