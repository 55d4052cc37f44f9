package cii

import (
	"strconv"
	"time"

	"github.com/beevik/etree"
	"github.com/shopspring/decimal"

	money "github.com/jonaboe98/zugferd-api/internal/decimal"
	"github.com/jonaboe98/zugferd-api/internal/model"
)

// Builder maps a validated invoice onto the ordered, namespaced element
// tree of the target schema profile. Block order is fixed by the schema;
// profile variants only add or remove whole optional blocks, they never
// reorder the mandatory ones.
type Builder struct{}

// NewBuilder creates a new document tree builder
func NewBuilder() *Builder {
	return &Builder{}
}

// Build produces the document tree for an already-validated invoice.
// Receiving an unvalidated invoice is a programming-contract violation,
// not a recoverable condition, so a nil invoice panics.
func (b *Builder) Build(inv *model.Invoice) *etree.Document {
	if inv == nil {
		panic("cii: Build requires a validated invoice")
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	root := doc.CreateElement(PrefixDocument + ":CrossIndustryInvoice")
	root.CreateAttr("xmlns:"+PrefixDocument, NamespaceDocument)
	root.CreateAttr("xmlns:"+PrefixEntity, NamespaceEntity)
	root.CreateAttr("xmlns:"+PrefixDataType, NamespaceDataType)

	b.buildContext(root, inv)
	b.buildHeader(root, inv)

	txn := createEntity(root, PrefixDocument, "SupplyChainTradeTransaction")
	b.buildAgreement(txn, inv)
	for i, item := range inv.Items {
		b.buildLineItem(txn, i+1, item)
	}
	b.buildSettlement(txn, inv)

	return doc
}

// Document context block: the guideline identifier naming schema and
// profile.
func (b *Builder) buildContext(root *etree.Element, inv *model.Invoice) {
	ctx := createEntity(root, PrefixDocument, "ExchangedDocumentContext")
	param := createEntity(ctx, PrefixEntity, "GuidelineSpecifiedDocumentContextParameter")
	setText(param, PrefixEntity, "ID", GuidelineID(inv.Profile))
}

// Document header block: number, fixed type code, name, issue date.
func (b *Builder) buildHeader(root *etree.Element, inv *model.Invoice) {
	doc := createEntity(root, PrefixDocument, "ExchangedDocument")
	setText(doc, PrefixEntity, "ID", inv.Header.Number)
	setText(doc, PrefixEntity, "TypeCode", inv.Header.TypeCode)
	setText(doc, PrefixEntity, "Name", inv.Header.Name)

	issue := createEntity(doc, PrefixEntity, "IssueDateTime")
	setDate(issue, inv.Header.IssueDate)
}

// Trade-agreement block: seller always precedes buyer.
func (b *Builder) buildAgreement(txn *etree.Element, inv *model.Invoice) {
	agreement := createEntity(txn, PrefixEntity, "ApplicableHeaderTradeAgreement")

	seller := createEntity(agreement, PrefixEntity, "SellerTradeParty")
	setText(seller, PrefixEntity, "Name", inv.Seller.Name)
	if inv.Profile != model.ProfileBasic && inv.Seller.LegalForm != "" {
		legal := createEntity(seller, PrefixEntity, "SpecifiedLegalOrganization")
		setText(legal, PrefixEntity, "TradingBusinessName", inv.Seller.LegalForm)
	}
	if inv.Profile == model.ProfileExtended && len(inv.Seller.AddressLines) > 0 {
		b.buildAddress(seller, inv.Seller)
	}
	if inv.Profile.RequiresVATID() {
		reg := createEntity(seller, PrefixEntity, "SpecifiedTaxRegistration")
		setText(reg, PrefixEntity, "ID", inv.Seller.VATID)
	}

	buyer := createEntity(agreement, PrefixEntity, "BuyerTradeParty")
	setText(buyer, PrefixEntity, "Name", inv.Buyer.Name)
	b.buildAddress(buyer, inv.Buyer)
	if inv.Profile.RequiresVATID() && inv.Buyer.VATID != "" {
		reg := createEntity(buyer, PrefixEntity, "SpecifiedTaxRegistration")
		setText(reg, PrefixEntity, "ID", inv.Buyer.VATID)
	}
}

func (b *Builder) buildAddress(party *etree.Element, p model.Party) {
	addr := createEntity(party, PrefixEntity, "PostalTradeAddress")
	if len(p.AddressLines) > 0 {
		setText(addr, PrefixEntity, "LineOne", p.AddressLines[0])
	}
	if len(p.AddressLines) > 1 {
		setText(addr, PrefixEntity, "LineTwo", p.AddressLines[1])
	}
	setText(addr, PrefixEntity, "CountryID", p.CountryCode)
}

// Line-item block: the line identifier is the 1-based position derived
// from input order, never caller-supplied.
func (b *Builder) buildLineItem(txn *etree.Element, position int, item model.LineItem) {
	line := createEntity(txn, PrefixEntity, "IncludedSupplyChainTradeLineItem")

	lineDoc := createEntity(line, PrefixEntity, "AssociatedDocumentLineDocument")
	setText(lineDoc, PrefixEntity, "LineID", strconv.Itoa(position))

	product := createEntity(line, PrefixEntity, "SpecifiedTradeProduct")
	setText(product, PrefixEntity, "Name", item.Description)

	lineAgreement := createEntity(line, PrefixEntity, "SpecifiedLineTradeAgreement")
	price := createEntity(lineAgreement, PrefixEntity, "NetPriceProductTradePrice")
	setAmount(price, PrefixEntity, "ChargeAmount", item.UnitPrice)
}

// Settlement block: currency, one tax sub-block, then payment terms.
func (b *Builder) buildSettlement(txn *etree.Element, inv *model.Invoice) {
	settlement := createEntity(txn, PrefixEntity, "ApplicableHeaderTradeSettlement")
	setText(settlement, PrefixEntity, "InvoiceCurrencyCode", inv.Currency)

	tax := createEntity(settlement, PrefixEntity, "ApplicableTradeTax")
	setAmount(tax, PrefixEntity, "CalculatedAmount", inv.Tax.CalculatedAmount)
	setText(tax, PrefixEntity, "TypeCode", inv.Tax.TypeCode)
	setAmount(tax, PrefixEntity, "BasisAmount", inv.Tax.BasisAmount)
	setText(tax, PrefixEntity, "CategoryCode", inv.Tax.CategoryCode)
	setAmount(tax, PrefixEntity, "RateApplicablePercent", inv.Tax.Rate)

	terms := createEntity(settlement, PrefixEntity, "SpecifiedTradePaymentTerms")
	if inv.Terms.Description != "" {
		setText(terms, PrefixEntity, "Description", inv.Terms.Description)
	}
	due := createEntity(terms, PrefixEntity, "DueDateDateTime")
	setDate(due, inv.Terms.DueDate)
}

func createEntity(parent *etree.Element, prefix, name string) *etree.Element {
	return parent.CreateElement(prefix + ":" + name)
}

func setText(parent *etree.Element, prefix, name, text string) *etree.Element {
	e := createEntity(parent, prefix, name)
	e.SetText(text)
	return e
}

func setAmount(parent *etree.Element, prefix, name string, d decimal.Decimal) *etree.Element {
	return setText(parent, prefix, name, money.Format(d))
}

func setDate(parent *etree.Element, t time.Time) {
	e := setText(parent, PrefixDataType, "DateTimeString", t.Format(DateFormatCompact))
	e.CreateAttr("format", DateFormatCode)
}
