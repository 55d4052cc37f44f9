package pdfa

import (
	"bytes"
	"compress/zlib"
	"fmt"
)

// objectWriter emits a PDF body as one self-consistent revision: a
// header, numbered objects in ascending order, a single xref table and
// trailer. There is no incremental-update path; the final bytes are
// always a complete rewrite.
type objectWriter struct {
	buf     bytes.Buffer
	offsets []int64
}

func newObjectWriter(objectCount int) *objectWriter {
	w := &objectWriter{offsets: make([]int64, objectCount+1)}
	// Binary comment line marks the file as 8-bit data.
	w.buf.WriteString("%PDF-1.7\n%\xe2\xe3\xcf\xd3\n")
	return w
}

// writeObject emits a numbered object with the given body.
func (w *objectWriter) writeObject(num int, body string) {
	w.offsets[num] = int64(w.buf.Len())
	fmt.Fprintf(&w.buf, "%d 0 obj\n%s\nendobj\n", num, body)
}

// writeStream emits a numbered stream object. extraDict is inserted into
// the stream dictionary before /Length.
func (w *objectWriter) writeStream(num int, extraDict string, data []byte) {
	w.offsets[num] = int64(w.buf.Len())
	fmt.Fprintf(&w.buf, "%d 0 obj\n<< %s/Length %d >>\nstream\n", num, extraDict, len(data))
	w.buf.Write(data)
	w.buf.WriteString("\nendstream\nendobj\n")
}

// finish appends the xref table and trailer and returns the final bytes.
func (w *objectWriter) finish(root, info int, fileID string) []byte {
	start := w.buf.Len()
	fmt.Fprintf(&w.buf, "xref\n0 %d\n", len(w.offsets))
	w.buf.WriteString("0000000000 65535 f \n")
	for _, off := range w.offsets[1:] {
		fmt.Fprintf(&w.buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&w.buf, "trailer\n<< /Size %d /Root %d 0 R /Info %d 0 R /ID [<%s> <%s>] >>\n",
		len(w.offsets), root, info, fileID, fileID)
	fmt.Fprintf(&w.buf, "startxref\n%d\n%%%%EOF\n", start)
	return w.buf.Bytes()
}

// deflate applies lossless FlateDecode compression.
func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// pdfString renders s as a PDF string object. ASCII text becomes an
// escaped literal; anything else becomes a UTF-16BE hex string with BOM.
func pdfString(s string) string {
	ascii := true
	for _, r := range s {
		if r < 0x20 || r > 0x7E {
			ascii = false
			break
		}
	}
	if ascii {
		var out bytes.Buffer
		out.WriteByte('(')
		for i := 0; i < len(s); i++ {
			c := s[i]
			if c == '(' || c == ')' || c == '\\' {
				out.WriteByte('\\')
			}
			out.WriteByte(c)
		}
		out.WriteByte(')')
		return out.String()
	}

	var out bytes.Buffer
	out.WriteString("<FEFF")
	for _, r := range s {
		if r > 0xFFFF {
			r1, r2 := utf16Surrogates(r)
			fmt.Fprintf(&out, "%04X%04X", r1, r2)
		} else {
			fmt.Fprintf(&out, "%04X", r)
		}
	}
	out.WriteByte('>')
	return out.String()
}

func utf16Surrogates(r rune) (rune, rune) {
	r -= 0x10000
	return 0xD800 + (r >> 10), 0xDC00 + (r & 0x3FF)
}
