package server

// ErrorResponse is the standard structured error body. Kind names the
// error taxonomy entry; Expected/Actual carry mismatch details where
// applicable.
type ErrorResponse struct {
	Kind        string   `json:"kind"`
	Error       string   `json:"error"`
	Field       string   `json:"field,omitempty"`
	Expected    string   `json:"expected,omitempty"`
	Actual      string   `json:"actual,omitempty"`
	Diagnostics []string `json:"diagnostics,omitempty"`
}

// Error kinds exposed on the wire
const (
	KindValidation        = "validation_error"
	KindInvalidCharacter  = "invalid_character"
	KindConfiguration     = "configuration_error"
	KindPackaging         = "packaging_error"
	KindComplianceFailure = "compliance_failure"
	KindTimeout           = "upstream_unavailable"
	KindInternal          = "internal_error"
)

// ValidationResponse is the response of the validate endpoint.
type ValidationResponse struct {
	Valid   bool           `json:"valid"`
	Profile string         `json:"profile,omitempty"`
	Number  string         `json:"invoice_number,omitempty"`
	Error   *ErrorResponse `json:"error,omitempty"`
}
