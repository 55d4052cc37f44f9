package model

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	money "github.com/jonaboe98/zugferd-api/internal/decimal"
)

// DateLayout is the wire format for request dates.
const DateLayout = "2006-01-02"

// DefaultCurrency is used when the request does not name one.
const DefaultCurrency = "EUR"

// ValidateOptions configures the request validator. The tax-consistency
// behavior is deliberately configuration, not a guess: the default rate
// is 19% and a mismatch beyond the tolerance rejects the request.
type ValidateOptions struct {
	DefaultTaxRate  decimal.Decimal
	TaxTolerance    decimal.Decimal
	EnforceTaxCheck bool
	TaxCategoryCode string
}

// DefaultValidateOptions returns the standard validator configuration.
func DefaultValidateOptions() ValidateOptions {
	return ValidateOptions{
		DefaultTaxRate:  money.FromInt(19),
		TaxTolerance:    money.MustFromString("0.01"),
		EnforceTaxCheck: true,
		TaxCategoryCode: "S",
	}
}

// Validate checks and normalizes a raw invoice request. It is a pure
// function: on success it returns a fresh Invoice, on failure a
// *ValidationError (wrapping a *TaxMismatchError for tax deviations).
// It runs before any document construction or rendering so a rejected
// request never pays for building.
func Validate(req *InvoiceRequest, opts ValidateOptions) (*Invoice, error) {
	if req == nil {
		return nil, NewValidationError("request", nil, "required", "missing request body")
	}

	// Required string fields first, cheapest checks up front.
	if strings.TrimSpace(req.Number) == "" {
		return nil, NewValidationError("invoice_number", nil, "required", "invoice number must not be empty")
	}
	if strings.TrimSpace(req.Seller.Name) == "" {
		return nil, NewValidationError("seller.name", nil, "required", "seller name must not be empty")
	}
	if strings.TrimSpace(req.Buyer.Name) == "" {
		return nil, NewValidationError("buyer.name", nil, "required", "buyer name must not be empty")
	}
	if !isCountryCode(req.Seller.CountryCode) {
		return nil, NewValidationError("seller.country_code", req.Seller.CountryCode, "iso3166", "country code must be ISO 3166 alpha-2")
	}
	if !isCountryCode(req.Buyer.CountryCode) {
		return nil, NewValidationError("buyer.country_code", req.Buyer.CountryCode, "iso3166", "country code must be ISO 3166 alpha-2")
	}

	profile, err := ParseProfile(req.Profile)
	if err != nil {
		return nil, NewValidationError("profile", req.Profile, "enum", err.Error())
	}
	if profile.RequiresVATID() && strings.TrimSpace(req.Seller.VATID) == "" {
		return nil, NewValidationError("seller.vat_id", nil, "required",
			"seller VAT identifier is required for profile "+string(profile))
	}

	if len(req.Items) == 0 {
		return nil, NewValidationError("items", nil, "min=1", "at least one line item is required")
	}

	items := make([]LineItem, 0, len(req.Items))
	for i, raw := range req.Items {
		item, err := validateItem(i, raw)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	issueDate, err := parseDate("issue_date", req.IssueDate)
	if err != nil {
		return nil, err
	}
	dueDate, err := parseDate("due_date", req.DueDate)
	if err != nil {
		return nil, err
	}
	if dueDate.Before(issueDate) {
		return nil, NewValidationError("due_date", req.DueDate, "gte=issue_date", "due date must not precede issue date")
	}

	// Tax consistency. The expectation is recomputed from the net line
	// total; the declared gross total and tax amount yield the basis.
	rate := opts.DefaultTaxRate
	if req.TaxRate != nil {
		rate = money.FromFloat(*req.TaxRate)
		if !money.IsNonNegative(rate) {
			return nil, NewValidationError("tax_rate", *req.TaxRate, "gte=0", "tax rate must not be negative")
		}
	}

	lineTotals := make([]decimal.Decimal, len(items))
	for i, item := range items {
		lineTotals[i] = money.Mul(item.UnitPrice, item.Quantity)
	}
	netTotal := money.Sum(lineTotals)
	expectedTax := money.Percent(netTotal, rate)

	taxAmount := expectedTax
	if req.TaxAmount != nil {
		taxAmount = money.FromFloat(*req.TaxAmount)
		if opts.EnforceTaxCheck && !money.WithinTolerance(expectedTax, taxAmount, opts.TaxTolerance) {
			return nil, &ValidationError{
				Field:   "tax_amount",
				Value:   *req.TaxAmount,
				Rule:    "tax_consistency",
				Message: "declared tax amount deviates from computed tax",
				Cause:   NewTaxMismatchError(expectedTax, taxAmount),
			}
		}
	}

	total := netTotal.Add(taxAmount)
	if req.TotalAmount != nil {
		total = money.FromFloat(*req.TotalAmount)
	}
	basis := total.Sub(taxAmount)

	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if currency == "" {
		currency = DefaultCurrency
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		name = "Invoice"
	}

	inv := &Invoice{
		Header: InvoiceHeader{
			Number:    strings.TrimSpace(req.Number),
			Name:      name,
			TypeCode:  TypeCodeCommercialInvoice,
			IssueDate: issueDate,
			DueDate:   dueDate,
		},
		Profile:  profile,
		Seller:   normalizeParty(req.Seller),
		Buyer:    normalizeParty(req.Buyer),
		Items:    items,
		Currency: currency,
		Total:    total,
		Tax: TaxSummary{
			BasisAmount:      basis,
			CalculatedAmount: taxAmount,
			Rate:             rate,
			CategoryCode:     opts.TaxCategoryCode,
			TypeCode:         "VAT",
		},
		Terms: PaymentTerms{DueDate: dueDate},
	}
	if req.Terms != nil {
		inv.Terms.Description = strings.TrimSpace(req.Terms.Description)
	}

	return inv, nil
}

func validateItem(index int, raw LineItemRequest) (LineItem, error) {
	if strings.TrimSpace(raw.Description) == "" {
		return LineItem{}, NewValidationError(itemField(index, "description"), nil, "required", "line item description must not be empty")
	}

	price := money.FromFloat(raw.UnitPrice)
	if !money.IsNonNegative(price) {
		return LineItem{}, NewValidationError(itemField(index, "price"), raw.UnitPrice, "gte=0", "unit price must not be negative")
	}

	qty := decimal.NewFromFloat(raw.Quantity)
	if qty.IsZero() {
		qty = decimal.NewFromInt(1)
	}
	if !money.IsPositive(qty) {
		return LineItem{}, NewValidationError(itemField(index, "quantity"), raw.Quantity, "gt=0", "quantity must be positive")
	}

	return LineItem{
		Description: strings.TrimSpace(raw.Description),
		UnitPrice:   price,
		Quantity:    qty,
	}, nil
}

func normalizeParty(raw PartyRequest) Party {
	lines := make([]string, 0, len(raw.AddressLines))
	for _, l := range raw.AddressLines {
		if s := strings.TrimSpace(l); s != "" {
			lines = append(lines, s)
		}
	}
	return Party{
		Name:         strings.TrimSpace(raw.Name),
		LegalForm:    strings.TrimSpace(raw.LegalForm),
		AddressLines: lines,
		CountryCode:  strings.ToUpper(strings.TrimSpace(raw.CountryCode)),
		VATID:        strings.TrimSpace(raw.VATID),
	}
}

func parseDate(field, value string) (time.Time, error) {
	if strings.TrimSpace(value) == "" {
		return time.Time{}, NewValidationError(field, nil, "required", "date must not be empty")
	}
	t, err := time.Parse(DateLayout, value)
	if err != nil {
		return time.Time{}, &ValidationError{
			Field:   field,
			Value:   value,
			Rule:    "date",
			Message: "date must be a valid calendar date in YYYY-MM-DD form",
			Cause:   err,
		}
	}
	return t, nil
}

func isCountryCode(s string) bool {
	s = strings.TrimSpace(s)
	if len(s) != 2 {
		return false
	}
	for _, c := range s {
		if (c < 'A' || c > 'Z') && (c < 'a' || c > 'z') {
			return false
		}
	}
	return true
}

func itemField(index int, name string) string {
	return "items[" + strconv.Itoa(index) + "]." + name
}
