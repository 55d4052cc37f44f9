package server

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jonaboe98/zugferd-api/internal/compliance"
	money "github.com/jonaboe98/zugferd-api/internal/decimal"
	"github.com/jonaboe98/zugferd-api/internal/model"
	"github.com/jonaboe98/zugferd-api/internal/pdfa"
	"github.com/jonaboe98/zugferd-api/internal/processor"
)

// Config holds server configuration
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool

	// ICCProfilePath names the color profile resource. Its absence is a
	// configuration error detected at startup, not a request error.
	ICCProfilePath string
	TaxRate        float64
	EnforceTax     bool
	Compress       bool

	// SchemaPath enables the external schema check after packaging.
	SchemaPath     string
	CheckSchema    bool
	CheckContainer bool
	Logger         *zap.Logger
}

// Server represents the HTTP API server
type Server struct {
	config   *Config
	router   *gin.Engine
	pipeline *processor.Pipeline
	log      *zap.Logger
}

// NewServer creates a new API server. The color profile is resolved once
// here and injected into the pipeline.
func NewServer(config *Config) (*Server, error) {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	log := config.Logger
	if log == nil {
		log = zap.NewNop()
	}

	profile, err := pdfa.LoadColorProfile(config.ICCProfilePath)
	if err != nil {
		return nil, err
	}

	valOpts := model.DefaultValidateOptions()
	if config.TaxRate > 0 {
		valOpts.DefaultTaxRate = money.FromFloat(config.TaxRate)
	}
	valOpts.EnforceTaxCheck = config.EnforceTax

	opts := []processor.Option{
		processor.WithValidateOptions(valOpts),
		processor.WithCompression(config.Compress),
		processor.WithLogger(log),
	}
	if config.CheckSchema {
		opts = append(opts, processor.WithSchemaValidator(compliance.NewXMLLintValidator(config.SchemaPath)))
	}
	if config.CheckContainer {
		opts = append(opts, processor.WithContainerValidator(compliance.NewPDFValidator()))
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(cors.Default())
	router.Use(requestID())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config:   config,
		router:   router,
		pipeline: processor.NewPipeline(profile, opts...),
		log:      log,
	}

	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/invoices/pdf", s.handleGeneratePDF)
		v1.POST("/invoices/xml", s.handleGenerateXML)
		v1.POST("/validate", s.handleValidate)
	}
}

// Run starts the HTTP server
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers
func (s *Server) Handler() http.Handler {
	return s.router
}

// requestID tags every request for log correlation.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"time":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleGeneratePDF(c *gin.Context) {
	req, ok := s.bindRequest(c)
	if !ok {
		return
	}

	artifact, err := s.pipeline.Generate(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename))
	c.Data(http.StatusOK, "application/pdf", artifact.Container)
}

func (s *Server) handleGenerateXML(c *gin.Context) {
	req, ok := s.bindRequest(c)
	if !ok {
		return
	}

	_, xmlBytes, err := s.pipeline.BuildXML(c.Request.Context(), req)
	if err != nil {
		s.respondError(c, err)
		return
	}

	c.Data(http.StatusOK, pdfa.AttachmentMIME, xmlBytes)
}

func (s *Server) handleValidate(c *gin.Context) {
	req, ok := s.bindRequest(c)
	if !ok {
		return
	}

	inv, err := model.Validate(req, model.DefaultValidateOptions())
	if err != nil {
		c.JSON(http.StatusUnprocessableEntity, ValidationResponse{
			Valid: false,
			Error: errorBody(err),
		})
		return
	}

	c.JSON(http.StatusOK, ValidationResponse{
		Valid:   true,
		Profile: string(inv.Profile),
		Number:  inv.Header.Number,
	})
}

func (s *Server) bindRequest(c *gin.Context) (*model.InvoiceRequest, bool) {
	var req model.InvoiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Kind:  KindValidation,
			Error: "malformed request body: " + err.Error(),
		})
		return nil, false
	}
	return &req, true
}

// respondError maps the error taxonomy onto HTTP statuses. Client errors
// are 4xx; environment and builder defects are 5xx and are never hidden.
func (s *Server) respondError(c *gin.Context, err error) {
	body := errorBody(err)

	var status int
	switch body.Kind {
	case KindValidation, KindInvalidCharacter:
		status = http.StatusUnprocessableEntity
	case KindTimeout:
		status = http.StatusGatewayTimeout
	default:
		status = http.StatusInternalServerError
		s.log.Error("invoice generation failed", zap.String("kind", body.Kind), zap.Error(err))
	}

	c.JSON(status, body)
}

func errorBody(err error) *ErrorResponse {
	var (
		validationErr *model.ValidationError
		charErr       *model.InvalidCharacterError
		mismatchErr   *model.TaxMismatchError
		resourceErr   *model.MissingResourceError
		packErr       *model.PackError
		complianceErr *model.ComplianceError
		timeoutErr    *model.TimeoutError
	)

	switch {
	case errors.As(err, &validationErr):
		body := &ErrorResponse{Kind: KindValidation, Error: validationErr.Error(), Field: validationErr.Field}
		if errors.As(err, &mismatchErr) {
			body.Expected = money.Format(mismatchErr.Expected)
			body.Actual = money.Format(mismatchErr.Actual)
		}
		return body
	case errors.As(err, &charErr):
		return &ErrorResponse{Kind: KindInvalidCharacter, Error: charErr.Error(), Field: charErr.Path}
	case errors.As(err, &resourceErr):
		return &ErrorResponse{Kind: KindConfiguration, Error: resourceErr.Error()}
	case errors.As(err, &packErr):
		return &ErrorResponse{Kind: KindPackaging, Error: packErr.Error()}
	case errors.As(err, &complianceErr):
		return &ErrorResponse{Kind: KindComplianceFailure, Error: complianceErr.Error(), Diagnostics: complianceErr.Diagnostics}
	case errors.As(err, &timeoutErr):
		return &ErrorResponse{Kind: KindTimeout, Error: timeoutErr.Error()}
	}
	return &ErrorResponse{Kind: KindInternal, Error: err.Error()}
}
