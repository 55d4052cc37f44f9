// Package cii builds and serializes the Cross-Industry-Invoice XML
// document embedded into the packed container. Element order, namespace
// prefixes and numeric formatting are schema-mandated and fixed; the
// constants below are the single place they live.
package cii

import "github.com/jonaboe98/zugferd-api/internal/model"

// Namespace URIs with their fixed prefixes. The same prefix always binds
// the same URI in every generated document so downstream consumers can
// pattern-match without resolving namespaces dynamically.
const (
	PrefixDocument = "rsm"
	PrefixEntity   = "ram"
	PrefixDataType = "udt"

	NamespaceDocument = "urn:un:unece:uncefact:data:standard:CrossIndustryInvoice:100"
	NamespaceEntity   = "urn:un:unece:uncefact:data:standard:ReusableAggregateBusinessInformationEntity:100"
	NamespaceDataType = "urn:un:unece:uncefact:data:standard:UnqualifiedDataType:100"
)

// DateFormatCompact is the digits-only YYYYMMDD date layout, tagged in
// the document with DateFormatCode (UNCL 2379 code 102).
const (
	DateFormatCompact = "20060102"
	DateFormatCode    = "102"
)

const guidelinePrefix = "urn:ferd:CrossIndustryDocument:invoice:1p0:"

// GuidelineID returns the guideline identifier URN for a profile, with
// the lower-cased profile token as its final segment.
func GuidelineID(p model.Profile) string {
	return guidelinePrefix + string(p)
}
