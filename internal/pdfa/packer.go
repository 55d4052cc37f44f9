package pdfa

import (
	"crypto/md5"
	"fmt"
	"strings"
	"time"

	"github.com/jonaboe98/zugferd-api/internal/model"
	"github.com/jonaboe98/zugferd-api/internal/render"
)

// Attachment contract. Automated invoice readers match on these exact
// values, so they are constants, never derived from the request.
const (
	AttachmentName = "factur-x.xml"
	AttachmentMIME = "text/xml"
	AttachmentDesc = "Invoice data in Cross Industry Invoice format"
)

// Metadata carries the document-level descriptive metadata. All fields
// derive from the invoice header; the packer refuses renderer defaults.
type Metadata struct {
	Title   string
	Author  string
	Subject string
	// Created stamps CreationDate and ModDate. It derives from the
	// invoice issue date so packing is reproducible for equal input.
	Created time.Time
	Profile model.Profile
}

// Config holds packer configuration.
type Config struct {
	// Compress applies FlateDecode to the content, attachment and ICC
	// streams. A size optimization only; XMP always stays uncompressed.
	Compress bool
}

// Packer assembles the conformant container.
type Packer struct {
	cfg Config
}

// NewPacker creates a container packer
func NewPacker(cfg Config) *Packer {
	return &Packer{cfg: cfg}
}

// Fixed object numbers of the single revision.
const (
	objCatalog      = 1
	objPages        = 2
	objPage         = 3
	objContent      = 4
	objFontRegular  = 5
	objFontBold     = 6
	objEmbeddedFile = 7
	objFilespec     = 8
	objXMP          = 9
	objICC          = 10
	objOutputIntent = 11
	objInfo         = 12
	objectCount     = 12
)

// Pack embeds xmlBytes as the typed invoice attachment inside a fresh
// container built around the rendered page body, with the XMP
// conformance block, descriptive metadata and ICC output intent a
// validator checks. Any failure is reported, never downgraded: a
// container missing a named invariant is not returned as success.
func (p *Packer) Pack(body, xmlBytes []byte, profile *ColorProfile, meta Metadata) ([]byte, error) {
	if profile == nil || len(profile.Data) == 0 {
		return nil, model.NewMissingResourceError("icc color profile", "", fmt.Errorf("no profile data supplied"))
	}
	if len(body) == 0 {
		return nil, model.NewPackError(model.PackCodeBody, "rendered page body is empty", nil)
	}
	if len(xmlBytes) == 0 {
		return nil, model.ErrAttachment("invoice XML is empty", nil)
	}
	if strings.TrimSpace(meta.Title) == "" || strings.TrimSpace(meta.Author) == "" {
		return nil, model.ErrMetadata("document title and author must derive from the invoice header")
	}
	token, ok := conformanceToken(meta.Profile)
	if !ok {
		return nil, model.ErrMetadata(fmt.Sprintf("no conformance descriptor for profile %q", meta.Profile))
	}

	w := newObjectWriter(objectCount)

	w.writeObject(objCatalog, fmt.Sprintf(
		"<< /Type /Catalog /Pages %d 0 R /Metadata %d 0 R "+
			"/Names << /EmbeddedFiles << /Names [%s %d 0 R] >> >> "+
			"/AF [%d 0 R] /OutputIntents [%d 0 R] >>",
		objPages, objXMP, pdfString(AttachmentName), objFilespec, objFilespec, objOutputIntent))

	w.writeObject(objPages, fmt.Sprintf("<< /Type /Pages /Kids [%d 0 R] /Count 1 >>", objPage))

	w.writeObject(objPage, fmt.Sprintf(
		"<< /Type /Page /Parent %d 0 R /MediaBox [0 0 595 842] /Contents %d 0 R "+
			"/Resources << /Font << /%s %d 0 R /%s %d 0 R >> >> >>",
		objPages, objContent,
		render.FontRegular, objFontRegular, render.FontBold, objFontBold))

	if err := p.writeMaybeCompressed(w, objContent, "", body); err != nil {
		return nil, model.NewPackError(model.PackCodeBody, "failed to compress page content", err)
	}

	w.writeObject(objFontRegular, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica /Encoding /WinAnsiEncoding >>")
	w.writeObject(objFontBold, "<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica-Bold /Encoding /WinAnsiEncoding >>")

	// The embedded file subtype carries the MIME type; /AFRelationship
	// /Data on the filespec classifies the file as invoice data rather
	// than a mere source reference.
	embedDict := fmt.Sprintf("/Type /EmbeddedFile /Subtype /%s /Params << /Size %d >> ",
		escapeName(AttachmentMIME), len(xmlBytes))
	if err := p.writeMaybeCompressed(w, objEmbeddedFile, embedDict, xmlBytes); err != nil {
		return nil, model.ErrAttachment("failed to compress invoice XML", err)
	}

	w.writeObject(objFilespec, fmt.Sprintf(
		"<< /Type /Filespec /F %s /UF %s /Desc %s /AFRelationship /Data "+
			"/EF << /F %d 0 R /UF %d 0 R >> >>",
		pdfString(AttachmentName), pdfString(AttachmentName), pdfString(AttachmentDesc),
		objEmbeddedFile, objEmbeddedFile))

	w.writeStream(objXMP, "/Type /Metadata /Subtype /XML ", buildXMP(meta, token))

	if err := p.writeMaybeCompressed(w, objICC, "/N 3 ", profile.Data); err != nil {
		return nil, model.NewPackError(model.PackCodeBody, "failed to compress icc profile", err)
	}

	w.writeObject(objOutputIntent, fmt.Sprintf(
		"<< /Type /OutputIntent /S /GTS_PDFA1 /OutputConditionIdentifier %s /Info %s /DestOutputProfile %d 0 R >>",
		pdfString(profile.Name), pdfString(profile.Name), objICC))

	created := formatPDFDate(meta.Created)
	w.writeObject(objInfo, fmt.Sprintf(
		"<< /Title %s /Author %s /Subject %s /Creator (zugferd-api) /Producer (zugferd-api) "+
			"/CreationDate %s /ModDate %s >>",
		pdfString(meta.Title), pdfString(meta.Author), pdfString(meta.Subject), created, created))

	return w.finish(objCatalog, objInfo, fileID(xmlBytes, body, meta.Title)), nil
}

func (p *Packer) writeMaybeCompressed(w *objectWriter, num int, extraDict string, data []byte) error {
	if !p.cfg.Compress {
		w.writeStream(num, extraDict, data)
		return nil
	}
	compressed, err := deflate(data)
	if err != nil {
		return err
	}
	w.writeStream(num, extraDict+"/Filter /FlateDecode ", compressed)
	return nil
}

// fileID derives the trailer ID from the packed content so identical
// input yields identical bytes.
func fileID(xmlBytes, body []byte, title string) string {
	h := md5.New()
	h.Write(xmlBytes)
	h.Write(body)
	h.Write([]byte(title))
	return fmt.Sprintf("%X", h.Sum(nil))
}

func formatPDFDate(t time.Time) string {
	return t.UTC().Format("(D:20060102150405+00'00')")
}

// escapeName escapes a string for use as a PDF name object.
func escapeName(s string) string {
	var out strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c <= 0x20 || c >= 0x7F || strings.IndexByte("/%()<>[]{}#", c) >= 0 {
			fmt.Fprintf(&out, "#%02X", c)
		} else {
			out.WriteByte(c)
		}
	}
	return out.String()
}
