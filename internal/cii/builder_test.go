package cii_test

import (
	"testing"

	"github.com/beevik/etree"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonaboe98/zugferd-api/internal/cii"
	"github.com/jonaboe98/zugferd-api/internal/model"
)

func buildInvoice(t *testing.T, mutate func(*model.InvoiceRequest)) *model.Invoice {
	t.Helper()

	total := 119.00
	tax := 19.00
	req := &model.InvoiceRequest{
		Number:    "INV-0001",
		IssueDate: "2026-01-15",
		DueDate:   "2026-02-15",
		Seller: model.PartyRequest{
			Name:         "ABC GmbH",
			LegalForm:    "GmbH",
			AddressLines: []string{"Musterweg 5", "80331 Muenchen"},
			CountryCode:  "DE",
			VATID:        "DE123456789",
		},
		Buyer: model.PartyRequest{
			Name:         "XYZ Corp",
			CountryCode:  "DE",
			AddressLines: []string{"Hauptstr. 1", "10115 Berlin"},
		},
		Items: []model.LineItemRequest{
			{Description: "Consulting", UnitPrice: 100.00, Quantity: 1},
		},
		TotalAmount: &total,
		TaxAmount:   &tax,
	}
	if mutate != nil {
		mutate(req)
	}

	inv, err := model.Validate(req, model.DefaultValidateOptions())
	require.NoError(t, err)
	return inv
}

func childTags(e *etree.Element) []string {
	var tags []string
	for _, c := range e.ChildElements() {
		tags = append(tags, c.Space+":"+c.Tag)
	}
	return tags
}

func TestBuild_RootAndNamespaces(t *testing.T) {
	doc := cii.NewBuilder().Build(buildInvoice(t, nil))

	root := doc.Root()
	require.NotNil(t, root)
	assert.Equal(t, "rsm", root.Space)
	assert.Equal(t, "CrossIndustryInvoice", root.Tag)

	assert.Equal(t, cii.NamespaceDocument, root.SelectAttrValue("xmlns:rsm", ""))
	assert.Equal(t, cii.NamespaceEntity, root.SelectAttrValue("xmlns:ram", ""))
	assert.Equal(t, cii.NamespaceDataType, root.SelectAttrValue("xmlns:udt", ""))
}

func TestBuild_BlockOrder(t *testing.T) {
	doc := cii.NewBuilder().Build(buildInvoice(t, func(r *model.InvoiceRequest) {
		r.TotalAmount = nil
		r.TaxAmount = nil
		r.Items = []model.LineItemRequest{
			{Description: "Consulting", UnitPrice: 100.00},
			{Description: "Hosting", UnitPrice: 25.00, Quantity: 2},
		}
	}))

	root := doc.Root()
	assert.Equal(t, []string{
		"rsm:ExchangedDocumentContext",
		"rsm:ExchangedDocument",
		"rsm:SupplyChainTradeTransaction",
	}, childTags(root))

	txn := root.FindElement("rsm:SupplyChainTradeTransaction")
	require.NotNil(t, txn)
	assert.Equal(t, []string{
		"ram:ApplicableHeaderTradeAgreement",
		"ram:IncludedSupplyChainTradeLineItem",
		"ram:IncludedSupplyChainTradeLineItem",
		"ram:ApplicableHeaderTradeSettlement",
	}, childTags(txn))
}

func TestBuild_GuidelinePerProfile(t *testing.T) {
	for profile, want := range map[string]string{
		"basic":    "urn:ferd:CrossIndustryDocument:invoice:1p0:basic",
		"comfort":  "urn:ferd:CrossIndustryDocument:invoice:1p0:comfort",
		"extended": "urn:ferd:CrossIndustryDocument:invoice:1p0:extended",
	} {
		t.Run(profile, func(t *testing.T) {
			doc := cii.NewBuilder().Build(buildInvoice(t, func(r *model.InvoiceRequest) {
				r.Profile = profile
			}))

			id := doc.FindElement("//ram:GuidelineSpecifiedDocumentContextParameter/ram:ID")
			require.NotNil(t, id)
			assert.Equal(t, want, id.Text())
		})
	}
}

func TestBuild_Header(t *testing.T) {
	doc := cii.NewBuilder().Build(buildInvoice(t, nil))

	header := doc.FindElement("//rsm:ExchangedDocument")
	require.NotNil(t, header)
	assert.Equal(t, "INV-0001", header.FindElement("ram:ID").Text())
	assert.Equal(t, "380", header.FindElement("ram:TypeCode").Text())
	assert.Equal(t, "Invoice", header.FindElement("ram:Name").Text())

	date := header.FindElement("ram:IssueDateTime/udt:DateTimeString")
	require.NotNil(t, date)
	assert.Equal(t, "20260115", date.Text())
	assert.Equal(t, "102", date.SelectAttrValue("format", ""))
}

func TestBuild_SellerBeforeBuyer(t *testing.T) {
	doc := cii.NewBuilder().Build(buildInvoice(t, nil))

	agreement := doc.FindElement("//ram:ApplicableHeaderTradeAgreement")
	require.NotNil(t, agreement)
	assert.Equal(t, []string{"ram:SellerTradeParty", "ram:BuyerTradeParty"}, childTags(agreement))

	buyer := agreement.FindElement("ram:BuyerTradeParty")
	addr := buyer.FindElement("ram:PostalTradeAddress")
	require.NotNil(t, addr)
	assert.Equal(t, "Hauptstr. 1", addr.FindElement("ram:LineOne").Text())
	assert.Equal(t, "10115 Berlin", addr.FindElement("ram:LineTwo").Text())
	assert.Equal(t, "DE", addr.FindElement("ram:CountryID").Text())
}

func TestBuild_ProfileVariants(t *testing.T) {
	t.Run("basic omits optional seller blocks", func(t *testing.T) {
		doc := cii.NewBuilder().Build(buildInvoice(t, nil))

		seller := doc.FindElement("//ram:SellerTradeParty")
		assert.Nil(t, seller.FindElement("ram:SpecifiedLegalOrganization"))
		assert.Nil(t, seller.FindElement("ram:SpecifiedTaxRegistration"))
		assert.Nil(t, seller.FindElement("ram:PostalTradeAddress"))
	})

	t.Run("comfort adds legal organization and tax registration", func(t *testing.T) {
		doc := cii.NewBuilder().Build(buildInvoice(t, func(r *model.InvoiceRequest) {
			r.Profile = "comfort"
		}))

		seller := doc.FindElement("//ram:SellerTradeParty")
		legal := seller.FindElement("ram:SpecifiedLegalOrganization/ram:TradingBusinessName")
		require.NotNil(t, legal)
		assert.Equal(t, "GmbH", legal.Text())

		reg := seller.FindElement("ram:SpecifiedTaxRegistration/ram:ID")
		require.NotNil(t, reg)
		assert.Equal(t, "DE123456789", reg.Text())

		assert.Nil(t, seller.FindElement("ram:PostalTradeAddress"))
	})

	t.Run("extended adds the seller address", func(t *testing.T) {
		doc := cii.NewBuilder().Build(buildInvoice(t, func(r *model.InvoiceRequest) {
			r.Profile = "extended"
		}))

		seller := doc.FindElement("//ram:SellerTradeParty")
		addr := seller.FindElement("ram:PostalTradeAddress")
		require.NotNil(t, addr)
		assert.Equal(t, "Musterweg 5", addr.FindElement("ram:LineOne").Text())
	})
}

func TestBuild_LineItems(t *testing.T) {
	doc := cii.NewBuilder().Build(buildInvoice(t, func(r *model.InvoiceRequest) {
		r.TotalAmount = nil
		r.TaxAmount = nil
		r.Items = []model.LineItemRequest{
			{Description: "Consulting", UnitPrice: 100.00},
			{Description: "Hosting", UnitPrice: 25.5, Quantity: 2},
			{Description: "Support", UnitPrice: 0},
		}
	}))

	lines := doc.FindElements("//ram:IncludedSupplyChainTradeLineItem")
	require.Len(t, lines, 3)

	// line identifiers are 1-based positions in input order
	for i, line := range lines {
		id := line.FindElement("ram:AssociatedDocumentLineDocument/ram:LineID")
		require.NotNil(t, id)
		assert.Equal(t, []string{"1", "2", "3"}[i], id.Text())
	}

	assert.Equal(t, "Hosting", lines[1].FindElement("ram:SpecifiedTradeProduct/ram:Name").Text())

	price := lines[1].FindElement("ram:SpecifiedLineTradeAgreement/ram:NetPriceProductTradePrice/ram:ChargeAmount")
	require.NotNil(t, price)
	assert.Equal(t, "25.50", price.Text())

	// zero amounts still carry two fraction digits
	zero := lines[2].FindElement("ram:SpecifiedLineTradeAgreement/ram:NetPriceProductTradePrice/ram:ChargeAmount")
	assert.Equal(t, "0.00", zero.Text())
}

func TestBuild_Settlement(t *testing.T) {
	doc := cii.NewBuilder().Build(buildInvoice(t, func(r *model.InvoiceRequest) {
		r.Terms = &model.PaymentTermsInput{Description: "Payable within 30 days"}
	}))

	settlement := doc.FindElement("//ram:ApplicableHeaderTradeSettlement")
	require.NotNil(t, settlement)
	assert.Equal(t, "EUR", settlement.FindElement("ram:InvoiceCurrencyCode").Text())

	tax := settlement.FindElement("ram:ApplicableTradeTax")
	require.NotNil(t, tax)
	assert.Equal(t, []string{
		"ram:CalculatedAmount",
		"ram:TypeCode",
		"ram:BasisAmount",
		"ram:CategoryCode",
		"ram:RateApplicablePercent",
	}, childTags(tax))
	assert.Equal(t, "19.00", tax.FindElement("ram:CalculatedAmount").Text())
	assert.Equal(t, "VAT", tax.FindElement("ram:TypeCode").Text())
	assert.Equal(t, "100.00", tax.FindElement("ram:BasisAmount").Text())
	assert.Equal(t, "S", tax.FindElement("ram:CategoryCode").Text())
	assert.Equal(t, "19.00", tax.FindElement("ram:RateApplicablePercent").Text())

	terms := settlement.FindElement("ram:SpecifiedTradePaymentTerms")
	require.NotNil(t, terms)
	assert.Equal(t, "Payable within 30 days", terms.FindElement("ram:Description").Text())

	due := terms.FindElement("ram:DueDateDateTime/udt:DateTimeString")
	require.NotNil(t, due)
	assert.Equal(t, "20260215", due.Text())
	assert.Equal(t, "102", due.SelectAttrValue("format", ""))
}

func TestBuild_NilInvoicePanics(t *testing.T) {
	assert.Panics(t, func() {
		cii.NewBuilder().Build(nil)
	})
}
