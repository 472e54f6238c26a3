package quote

import (
	"fmt"
	"html"
	"strings"
)

// renderQuoteText builds the plain-text body for an outbound quote email.
func renderQuoteText(doc *Quote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Quote %s dated %s\n\n", doc.Number, doc.Date.Format("2006-01-02"))

	for _, line := range doc.Lines {
		fmt.Fprintf(&b, "%d. %s  qty %s  @ %s  = %s %s\n",
			line.LineNo,
			line.Description,
			line.Quantity.String(),
			line.UnitPrice.String(),
			line.Amount.String(),
			doc.Currency)
	}

	fmt.Fprintf(&b, "\nTotal: %s %s\n", doc.TotalAmount.String(), doc.Currency)
	if doc.ValidUntil != nil {
		fmt.Fprintf(&b, "Valid until: %s\n", doc.ValidUntil.Format("2006-01-02"))
	}
	return b.String()
}

// renderQuoteHTML builds the HTML body for an outbound quote email.
func renderQuoteHTML(doc *Quote) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Quote %s</h2>", html.EscapeString(doc.Number))
	fmt.Fprintf(&b, "<p>Date: %s</p>", doc.Date.Format("2006-01-02"))

	b.WriteString("<table border=\"1\" cellpadding=\"4\" cellspacing=\"0\">")
	b.WriteString("<tr><th>#</th><th>Description</th><th>Qty</th><th>Unit price</th><th>Amount</th></tr>")
	for _, line := range doc.Lines {
		fmt.Fprintf(&b, "<tr><td>%d</td><td>%s</td><td>%s</td><td>%s</td><td>%s</td></tr>",
			line.LineNo,
			html.EscapeString(line.Description),
			line.Quantity.String(),
			line.UnitPrice.String(),
			line.Amount.String())
	}
	b.WriteString("</table>")

	fmt.Fprintf(&b, "<p><b>Total: %s %s</b></p>", doc.TotalAmount.String(), html.EscapeString(doc.Currency))
	if doc.ValidUntil != nil {
		fmt.Fprintf(&b, "<p>Valid until: %s</p>", doc.ValidUntil.Format("2006-01-02"))
	}
	return b.String()
}
