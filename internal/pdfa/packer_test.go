package pdfa_test

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonaboe98/zugferd-api/internal/model"
	"github.com/jonaboe98/zugferd-api/internal/pdfa"
)

var testProfile = &pdfa.ColorProfile{
	Name: pdfa.DefaultProfileName,
	Data: bytes.Repeat([]byte{0x42}, 128),
}

func testMetadata() pdfa.Metadata {
	return pdfa.Metadata{
		Title:   "Invoice INV-0001",
		Author:  "ABC GmbH",
		Subject: "Invoice INV-0001 for XYZ Corp",
		Created: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Profile: model.ProfileBasic,
	}
}

func testBody() []byte {
	return []byte("BT /F1 12 Tf 100 800 Td (Invoice INV-0001) Tj ET\n")
}

func testXML() []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?><rsm:CrossIndustryInvoice/>`)
}

func TestPack_ContainerStructure(t *testing.T) {
	out, err := pdfa.NewPacker(pdfa.Config{}).Pack(testBody(), testXML(), testProfile, testMetadata())
	require.NoError(t, err)

	content := string(out)
	assert.True(t, strings.HasPrefix(content, "%PDF-1.7\n"))
	assert.True(t, strings.HasSuffix(content, "%%EOF\n"))

	// single revision: one cross-reference table, one trailer
	assert.Equal(t, 1, strings.Count(content, "\nxref\n"))
	assert.Equal(t, 1, strings.Count(content, "trailer"))
	assert.Equal(t, 1, strings.Count(content, "%%EOF"))

	assert.Contains(t, content, "/Type /Catalog")
	assert.Contains(t, content, "/EmbeddedFiles")
	assert.Contains(t, content, "/AF [8 0 R]")
	assert.Contains(t, content, "/OutputIntents")
	assert.Contains(t, content, "/S /GTS_PDFA1")
	assert.Contains(t, content, "/MediaBox [0 0 595 842]")
	assert.Contains(t, content, "/BaseFont /Helvetica")
	assert.Contains(t, content, "/BaseFont /Helvetica-Bold")
}

func TestPack_AttachmentDeclaration(t *testing.T) {
	out, err := pdfa.NewPacker(pdfa.Config{}).Pack(testBody(), testXML(), testProfile, testMetadata())
	require.NoError(t, err)

	content := string(out)
	assert.Contains(t, content, "(factur-x.xml)")
	assert.Contains(t, content, "/AFRelationship /Data")
	assert.Contains(t, content, "/Subtype /text#2Fxml")
	assert.Contains(t, content, "/Type /Filespec")

	// uncompressed container carries the XML verbatim
	assert.Contains(t, content, "<rsm:CrossIndustryInvoice/>")
}

func TestPack_XMPConformance(t *testing.T) {
	// compressed container: everything but the XMP packet may be encoded
	out, err := pdfa.NewPacker(pdfa.Config{Compress: true}).Pack(testBody(), testXML(), testProfile, testMetadata())
	require.NoError(t, err)

	content := string(out)
	assert.Contains(t, content, "<pdfaid:part>3</pdfaid:part>")
	assert.Contains(t, content, "<pdfaid:conformance>B</pdfaid:conformance>")
	assert.Contains(t, content, "<zf:DocumentType>INVOICE</zf:DocumentType>")
	assert.Contains(t, content, "<zf:DocumentFileName>factur-x.xml</zf:DocumentFileName>")
	assert.Contains(t, content, "<zf:ConformanceLevel>BASIC</zf:ConformanceLevel>")
	assert.Contains(t, content, "pdfaExtension:schemas")

	// compression actually happened: the raw XML no longer appears
	assert.NotContains(t, content, "<rsm:CrossIndustryInvoice/>")
	assert.Contains(t, content, "/Filter /FlateDecode")
}

func TestPack_ProfileToken(t *testing.T) {
	meta := testMetadata()
	meta.Profile = model.ProfileExtended

	out, err := pdfa.NewPacker(pdfa.Config{}).Pack(testBody(), testXML(), testProfile, meta)
	require.NoError(t, err)
	assert.Contains(t, string(out), "<zf:ConformanceLevel>EXTENDED</zf:ConformanceLevel>")
}

func TestPack_Metadata(t *testing.T) {
	out, err := pdfa.NewPacker(pdfa.Config{}).Pack(testBody(), testXML(), testProfile, testMetadata())
	require.NoError(t, err)

	content := string(out)
	assert.Contains(t, content, "/Title (Invoice INV-0001)")
	assert.Contains(t, content, "/Author (ABC GmbH)")
	assert.Contains(t, content, "/CreationDate (D:20260115000000+00'00')")
	assert.Contains(t, content, "/ModDate (D:20260115000000+00'00')")
}

func TestPack_Deterministic(t *testing.T) {
	packer := pdfa.NewPacker(pdfa.Config{Compress: true})

	first, err := packer.Pack(testBody(), testXML(), testProfile, testMetadata())
	require.NoError(t, err)
	second, err := packer.Pack(testBody(), testXML(), testProfile, testMetadata())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestPack_Guards(t *testing.T) {
	packer := pdfa.NewPacker(pdfa.Config{})

	t.Run("nil color profile", func(t *testing.T) {
		_, err := packer.Pack(testBody(), testXML(), nil, testMetadata())
		var merr *model.MissingResourceError
		require.ErrorAs(t, err, &merr)
	})

	t.Run("empty body", func(t *testing.T) {
		_, err := packer.Pack(nil, testXML(), testProfile, testMetadata())
		var perr *model.PackError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, model.PackCodeBody, perr.Code)
	})

	t.Run("empty attachment", func(t *testing.T) {
		_, err := packer.Pack(testBody(), nil, testProfile, testMetadata())
		var perr *model.PackError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, model.PackCodeAttachment, perr.Code)
	})

	t.Run("missing title", func(t *testing.T) {
		meta := testMetadata()
		meta.Title = "  "
		_, err := packer.Pack(testBody(), testXML(), testProfile, meta)
		var perr *model.PackError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, model.PackCodeMetadata, perr.Code)
	})

	t.Run("unknown profile", func(t *testing.T) {
		meta := testMetadata()
		meta.Profile = model.Profile("platinum")
		_, err := packer.Pack(testBody(), testXML(), testProfile, meta)
		var perr *model.PackError
		require.ErrorAs(t, err, &perr)
		assert.Equal(t, model.PackCodeMetadata, perr.Code)
	})
}

func TestPack_XrefOffsets(t *testing.T) {
	out, err := pdfa.NewPacker(pdfa.Config{}).Pack(testBody(), testXML(), testProfile, testMetadata())
	require.NoError(t, err)

	// every xref entry must point at the matching "N 0 obj" header
	content := string(out)
	idx := strings.Index(content, "\nxref\n")
	require.Greater(t, idx, 0)

	lines := strings.Split(content[idx+len("\nxref\n"):], "\n")
	require.Equal(t, "0 13", lines[0])
	require.Equal(t, "0000000000 65535 f ", lines[1])

	for i := 1; i <= 12; i++ {
		entry := lines[1+i]
		require.Len(t, entry, 19)

		offset, err := strconv.Atoi(entry[:10])
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(content[offset:], fmt.Sprintf("%d 0 obj", i)),
			"object %d offset mismatch", i)
	}

	// startxref points at the xref keyword itself
	startIdx := strings.Index(content, "startxref\n")
	require.Greater(t, startIdx, 0)
	start, err := strconv.Atoi(strings.SplitN(content[startIdx+len("startxref\n"):], "\n", 2)[0])
	require.NoError(t, err)
	assert.Equal(t, idx+1, start)
}
