package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Profile selects which optional element groups the document builder emits.
type Profile string

const (
	ProfileBasic    Profile = "basic"
	ProfileComfort  Profile = "comfort"
	ProfileExtended Profile = "extended"
)

// ParseProfile maps a request token to a Profile. Empty input selects Basic.
func ParseProfile(s string) (Profile, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", string(ProfileBasic):
		return ProfileBasic, nil
	case string(ProfileComfort):
		return ProfileComfort, nil
	case string(ProfileExtended):
		return ProfileExtended, nil
	}
	return "", fmt.Errorf("unknown conformance profile: %q", s)
}

// RequiresVATID reports whether the profile mandates party VAT identifiers.
func (p Profile) RequiresVATID() bool {
	return p == ProfileComfort || p == ProfileExtended
}

// TypeCodeCommercialInvoice is the UNCL 1001 code for a commercial invoice.
const TypeCodeCommercialInvoice = "380"

// InvoiceHeader holds the document-level fields. Constructed once per
// request by Validate, immutable thereafter.
type InvoiceHeader struct {
	Number    string
	Name      string
	TypeCode  string
	IssueDate time.Time
	DueDate   time.Time
}

// Party is a seller or buyer.
type Party struct {
	Name         string
	LegalForm    string
	AddressLines []string
	CountryCode  string
	VATID        string
}

// LineItem is a single invoice position. Its 1-based line identifier is
// never stored here; the document builder derives it from slice order.
type LineItem struct {
	Description string
	UnitPrice   decimal.Decimal
	Quantity    decimal.Decimal
}

// TaxSummary carries the settlement tax figures.
// Invariant: CalculatedAmount == round2(BasisAmount * Rate / 100)
// within the configured tolerance, and BasisAmount == gross - tax.
type TaxSummary struct {
	BasisAmount      decimal.Decimal
	CalculatedAmount decimal.Decimal
	Rate             decimal.Decimal
	CategoryCode     string
	TypeCode         string
}

// PaymentTerms holds the due date and optional free text.
type PaymentTerms struct {
	DueDate     time.Time
	Description string
}

// Invoice is the validated, normalized in-memory invoice. Instances are
// produced by Validate, never mutated afterwards, and discarded once the
// response is written.
type Invoice struct {
	Header   InvoiceHeader
	Profile  Profile
	Seller   Party
	Buyer    Party
	Items    []LineItem
	Currency string
	Total    decimal.Decimal
	Tax      TaxSummary
	Terms    PaymentTerms
}

// InvoiceRequest is the raw wire-level invoice record before validation.
// Monetary fields are pointers so a missing value is distinguishable
// from an explicit zero.
type InvoiceRequest struct {
	Number      string             `json:"invoice_number"`
	Name        string             `json:"document_name,omitempty"`
	IssueDate   string             `json:"issue_date"`
	DueDate     string             `json:"due_date"`
	Currency    string             `json:"currency,omitempty"`
	Profile     string             `json:"profile,omitempty"`
	Seller      PartyRequest       `json:"seller"`
	Buyer       PartyRequest       `json:"buyer"`
	Items       []LineItemRequest  `json:"items"`
	TotalAmount *float64           `json:"total_amount,omitempty"`
	TaxAmount   *float64           `json:"tax_amount,omitempty"`
	TaxRate     *float64           `json:"tax_rate,omitempty"`
	Terms       *PaymentTermsInput `json:"payment_terms,omitempty"`
}

// PartyRequest is the raw seller/buyer record.
type PartyRequest struct {
	Name         string   `json:"name"`
	LegalForm    string   `json:"legal_form,omitempty"`
	AddressLines []string `json:"address_lines,omitempty"`
	CountryCode  string   `json:"country_code"`
	VATID        string   `json:"vat_id,omitempty"`
}

// LineItemRequest is a raw invoice position. Quantity defaults to 1.
type LineItemRequest struct {
	Description string  `json:"description"`
	UnitPrice   float64 `json:"price"`
	Quantity    float64 `json:"quantity,omitempty"`
}

// PaymentTermsInput carries optional free-text payment terms.
type PaymentTermsInput struct {
	Description string `json:"description,omitempty"`
}
