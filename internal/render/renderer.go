// Package render produces the human-readable invoice face as raw PDF
// page content bytes. The packer owns document assembly; a renderer only
// emits the content stream for the base page, which keeps the compliance
// logic independent of whichever drawing facility implements it.
package render

import (
	"bytes"
	"context"
	"fmt"

	money "github.com/jonaboe98/zugferd-api/internal/decimal"
	"github.com/jonaboe98/zugferd-api/internal/model"
)

// Font resource names every renderer may reference. The packer installs
// both fonts into the page resources under these names.
const (
	FontRegular = "F1"
	FontBold    = "F2"
)

// BodyRenderer renders the base document body for an invoice. Implementations
// must honor ctx cancellation when rendering can block.
type BodyRenderer interface {
	Render(ctx context.Context, inv *model.Invoice) ([]byte, error)
}

// TextRenderer is the default body renderer. It draws a plain text face:
// bold title, party block, one line per item, totals at the bottom.
type TextRenderer struct{}

// NewTextRenderer creates the default renderer
func NewTextRenderer() *TextRenderer {
	return &TextRenderer{}
}

// Render emits the page content stream for the invoice face.
func (r *TextRenderer) Render(_ context.Context, inv *model.Invoice) ([]byte, error) {
	var buf bytes.Buffer

	text(&buf, FontBold, 20, 100, 800, "Invoice "+inv.Header.Number)

	y := 770
	text(&buf, FontRegular, 12, 100, y, fmt.Sprintf("Issue date: %s    Due date: %s",
		inv.Header.IssueDate.Format(model.DateLayout), inv.Header.DueDate.Format(model.DateLayout)))
	y -= 20
	text(&buf, FontRegular, 12, 100, y, "Seller: "+inv.Seller.Name)
	y -= 20
	text(&buf, FontRegular, 12, 100, y, "Customer: "+inv.Buyer.Name)
	for _, line := range inv.Buyer.AddressLines {
		y -= 16
		text(&buf, FontRegular, 12, 130, y, line)
	}
	y -= 30

	for _, item := range inv.Items {
		text(&buf, FontRegular, 12, 100, y, fmt.Sprintf("%s  x %s  %s %s",
			item.Description, item.Quantity.String(), money.Format(item.UnitPrice), inv.Currency))
		y -= 20
	}

	y -= 10
	text(&buf, FontRegular, 12, 100, y, fmt.Sprintf("Net: %s %s", money.Format(inv.Tax.BasisAmount), inv.Currency))
	y -= 20
	text(&buf, FontRegular, 12, 100, y, fmt.Sprintf("VAT %s%%: %s %s",
		money.Format(inv.Tax.Rate), money.Format(inv.Tax.CalculatedAmount), inv.Currency))
	y -= 20
	text(&buf, FontBold, 12, 100, y, fmt.Sprintf("Total: %s %s", money.Format(inv.Total), inv.Currency))

	return buf.Bytes(), nil
}

func text(buf *bytes.Buffer, font string, size, x, y int, s string) {
	fmt.Fprintf(buf, "BT /%s %d Tf %d %d Td (%s) Tj ET\n", font, size, x, y, escapeText(s))
}

// escapeText makes a string safe for a PDF literal string. Characters
// outside Latin-1 are replaced since the base fonts cannot encode them.
func escapeText(s string) string {
	var out bytes.Buffer
	for _, r := range s {
		switch r {
		case '(', ')', '\\':
			out.WriteByte('\\')
			out.WriteByte(byte(r))
		case '\n', '\r', '\t':
			out.WriteByte(' ')
		default:
			if r > 0xFF {
				out.WriteByte('?')
			} else if r < 0x20 {
				out.WriteByte(' ')
			} else {
				out.WriteByte(byte(r))
			}
		}
	}
	return out.String()
}
