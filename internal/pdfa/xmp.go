package pdfa

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/jonaboe98/zugferd-api/internal/model"
)

// PDF/A conformance claim declared in the XMP packet. Part 3 level B is
// what permits arbitrary embedded files.
const (
	ConformancePart  = "3"
	ConformanceLevel = "B"
)

const invoiceExtensionNS = "urn:ferd:pdfa:CrossIndustryDocument:invoice:1p0#"

// conformanceToken maps the profile onto the machine-readable descriptor
// written next to the attachment declaration. It must agree with the
// guideline URN inside the attached XML.
func conformanceToken(p model.Profile) (string, bool) {
	switch p {
	case model.ProfileBasic, model.ProfileComfort, model.ProfileExtended:
		return strings.ToUpper(string(p)), true
	}
	return "", false
}

// buildXMP renders the metadata packet. The packet is stored uncompressed
// as conformance checkers read it without decoding the surrounding PDF.
func buildXMP(meta Metadata, token string) []byte {
	var buf bytes.Buffer

	buf.WriteString("<?xpacket begin=\"\uFEFF\" id=\"W5M0MpCehiHzreSzNTczkc9d\"?>\n")
	buf.WriteString("<x:xmpmeta xmlns:x=\"adobe:ns:meta/\">\n")
	buf.WriteString(" <rdf:RDF xmlns:rdf=\"http://www.w3.org/1999/02/22-rdf-syntax-ns#\">\n")

	buf.WriteString("  <rdf:Description rdf:about=\"\" xmlns:pdfaid=\"http://www.aiim.org/pdfa/ns/id/\">\n")
	fmt.Fprintf(&buf, "   <pdfaid:part>%s</pdfaid:part>\n", ConformancePart)
	fmt.Fprintf(&buf, "   <pdfaid:conformance>%s</pdfaid:conformance>\n", ConformanceLevel)
	buf.WriteString("  </rdf:Description>\n")

	buf.WriteString("  <rdf:Description rdf:about=\"\" xmlns:dc=\"http://purl.org/dc/elements/1.1/\">\n")
	fmt.Fprintf(&buf, "   <dc:title><rdf:Alt><rdf:li xml:lang=\"x-default\">%s</rdf:li></rdf:Alt></dc:title>\n", xmpEscape(meta.Title))
	fmt.Fprintf(&buf, "   <dc:creator><rdf:Seq><rdf:li>%s</rdf:li></rdf:Seq></dc:creator>\n", xmpEscape(meta.Author))
	fmt.Fprintf(&buf, "   <dc:description><rdf:Alt><rdf:li xml:lang=\"x-default\">%s</rdf:li></rdf:Alt></dc:description>\n", xmpEscape(meta.Subject))
	buf.WriteString("  </rdf:Description>\n")

	// Declaration of the embedded invoice: file name, syntax version and
	// profile token, matching the attachment actually present.
	fmt.Fprintf(&buf, "  <rdf:Description rdf:about=\"\" xmlns:zf=\"%s\">\n", invoiceExtensionNS)
	buf.WriteString("   <zf:DocumentType>INVOICE</zf:DocumentType>\n")
	fmt.Fprintf(&buf, "   <zf:DocumentFileName>%s</zf:DocumentFileName>\n", AttachmentName)
	buf.WriteString("   <zf:Version>1.0</zf:Version>\n")
	fmt.Fprintf(&buf, "   <zf:ConformanceLevel>%s</zf:ConformanceLevel>\n", token)
	buf.WriteString("  </rdf:Description>\n")

	writeExtensionSchema(&buf)

	buf.WriteString(" </rdf:RDF>\n")
	buf.WriteString("</x:xmpmeta>\n")
	buf.WriteString(`<?xpacket end="w"?>`)

	return buf.Bytes()
}

// writeExtensionSchema declares the invoice extension properties so that
// PDF/A validators accept the zf namespace as a known schema.
func writeExtensionSchema(buf *bytes.Buffer) {
	buf.WriteString(`  <rdf:Description rdf:about=""
    xmlns:pdfaExtension="http://www.aiim.org/pdfa/ns/extension/"
    xmlns:pdfaSchema="http://www.aiim.org/pdfa/ns/schema#"
    xmlns:pdfaProperty="http://www.aiim.org/pdfa/ns/property#">
   <pdfaExtension:schemas>
    <rdf:Bag>
     <rdf:li rdf:parseType="Resource">
      <pdfaSchema:schema>Invoice PDFA Extension Schema</pdfaSchema:schema>
      <pdfaSchema:namespaceURI>` + invoiceExtensionNS + `</pdfaSchema:namespaceURI>
      <pdfaSchema:prefix>zf</pdfaSchema:prefix>
      <pdfaSchema:property>
       <rdf:Seq>
`)
	for _, p := range [][2]string{
		{"DocumentFileName", "name of the embedded invoice file"},
		{"DocumentType", "INVOICE"},
		{"Version", "version of the embedded invoice schema"},
		{"ConformanceLevel", "conformance profile of the embedded invoice"},
	} {
		fmt.Fprintf(buf, `        <rdf:li rdf:parseType="Resource">
         <pdfaProperty:name>%s</pdfaProperty:name>
         <pdfaProperty:valueType>Text</pdfaProperty:valueType>
         <pdfaProperty:category>external</pdfaProperty:category>
         <pdfaProperty:description>%s</pdfaProperty:description>
        </rdf:li>
`, p[0], p[1])
	}
	buf.WriteString(`       </rdf:Seq>
      </pdfaSchema:property>
     </rdf:li>
    </rdf:Bag>
   </pdfaExtension:schemas>
  </rdf:Description>
`)
}

func xmpEscape(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s)) //nolint:errcheck // bytes.Buffer does not fail
	return buf.String()
}
