package layout

import (
	"math"

	statement "municipal-statements/internal/statement/domain"
)

// Section names in document order.
const (
	SectionHeader     = "header"
	SectionCustomer   = "customer"
	SectionMeters     = "meter-readings"
	SectionAccount    = "account-details"
	SectionAging      = "aging"
	SectionRemittance = "remittance"
	SectionLogos      = "payment-logos"
	SectionDisclaimer = "disclaimer"
)

type headerSection struct {
	model statement.StatementModel
	opts  *Options
}

func (h headerSection) Name() string    { return SectionHeader }
func (h headerSection) Height() float64 { return 28 }

func (h headerSection) Draw(s Surface, box Box) {
	logoBox := Box{X: box.X, Y: box.Y, W: 28, H: 20}
	drawLogo(s, h.opts, h.opts.HeaderLogo, logoBox, "")

	textX := box.X + logoBox.W + 4
	textW := box.W/2 - logoBox.W
	s.SetFont(FontBold, 11)
	s.Text(Box{X: textX, Y: box.Y, W: textW, H: 6}, Clip(s, h.opts.Municipality.Name, textW), AlignLeft)
	s.SetFont(FontRegular, 7)
	y := box.Y + 6
	for i, line := range h.opts.Municipality.Lines {
		if i == 3 {
			break
		}
		s.Text(Box{X: textX, Y: y, W: textW, H: 4}, Clip(s, line, textW), AlignLeft)
		y += 4
	}

	rightX := box.X + box.W/2
	rightW := box.W / 2
	s.SetFont(FontBold, 13)
	s.Text(Box{X: rightX, Y: box.Y, W: rightW, H: 7}, h.opts.Title, AlignRight)
	s.SetFont(FontRegular, 8)
	s.Text(Box{X: rightX, Y: box.Y + 9, W: rightW, H: 5}, "Tax Invoice No: "+h.model.TaxInvoiceNumber, AlignRight)
	s.Text(Box{X: rightX, Y: box.Y + 14, W: rightW, H: 5}, "Statement Date: "+h.model.GeneratedAt.Format("2006-01-02"), AlignRight)
	s.Text(Box{X: rightX, Y: box.Y + 19, W: rightW, H: 5}, "Period: "+h.model.Period.Label(), AlignRight)

	s.Line(box.X, box.Y+box.H, box.X+box.W, box.Y+box.H)
}

type pair struct {
	label string
	value string
}

type column struct {
	title string
	rows  []pair
}

// dualColumn is a fixed two-column label/value block.
type dualColumn struct {
	name       string
	left       column
	right      column
	rows       int
	titleH     float64
	rowH       float64
	labelWidth float64
}

func newDualColumn(name string, left, right column) dualColumn {
	rows := len(left.rows)
	if len(right.rows) > rows {
		rows = len(right.rows)
	}
	return dualColumn{name: name, left: left, right: right, rows: rows, titleH: 6, rowH: 5, labelWidth: 34}
}

func (d dualColumn) Name() string { return d.name }

func (d dualColumn) Height() float64 {
	return d.titleH + float64(d.rows)*d.rowH + 2
}

func (d dualColumn) Draw(s Surface, box Box) {
	const gutter = 4
	half := (box.W - gutter) / 2
	d.drawColumn(s, d.left, Box{X: box.X, Y: box.Y, W: half, H: box.H})
	d.drawColumn(s, d.right, Box{X: box.X + half + gutter, Y: box.Y, W: half, H: box.H})
}

func (d dualColumn) drawColumn(s Surface, col column, box Box) {
	s.Rect(box, false)
	s.Rect(Box{X: box.X, Y: box.Y, W: box.W, H: d.titleH}, true)
	s.SetFont(FontBold, 8)
	s.Text(Box{X: box.X + 1.5, Y: box.Y, W: box.W - 3, H: d.titleH}, col.title, AlignLeft)

	y := box.Y + d.titleH + 1
	valueW := box.W - d.labelWidth - 3
	for _, row := range col.rows {
		s.SetFont(FontBold, 7.5)
		s.Text(Box{X: box.X + 1.5, Y: y, W: d.labelWidth, H: d.rowH}, Clip(s, row.label, d.labelWidth), AlignLeft)
		s.SetFont(FontRegular, 7.5)
		s.Text(Box{X: box.X + 1.5 + d.labelWidth, Y: y, W: valueW, H: d.rowH}, Clip(s, row.value, valueW), AlignLeft)
		y += d.rowH
	}
}

type logoStrip struct {
	model   statement.StatementModel
	opts    *Options
	width   float64
	titleH  float64
	logoW   float64
	logoH   float64
	labelH  float64
	spacing float64
}

func newLogoStrip(model statement.StatementModel, opts *Options, width float64) logoStrip {
	return logoStrip{model: model, opts: opts, width: width, titleH: 6, logoW: 32, logoH: 14, labelH: 4, spacing: 4}
}

func (l logoStrip) Name() string { return SectionLogos }

func (l logoStrip) logos() []Logo {
	return append([]Logo{l.opts.PaymentLogo}, l.opts.BankLogos...)
}

func (l logoStrip) perRow() int {
	n := int(math.Floor((l.width + l.spacing) / (l.logoW + l.spacing)))
	if n < 1 {
		return 1
	}
	return n
}

func (l logoStrip) Height() float64 {
	rows := (len(l.logos()) + l.perRow() - 1) / l.perRow()
	return l.titleH + float64(rows)*(l.logoH+l.labelH+l.spacing)
}

func (l logoStrip) Draw(s Surface, box Box) {
	s.SetFont(FontBold, 9)
	s.Text(Box{X: box.X, Y: box.Y, W: box.W, H: l.titleH}, "PAY YOUR ACCOUNT", AlignLeft)

	perRow := l.perRow()
	for i, logo := range l.logos() {
		row, col := i/perRow, i%perRow
		logoBox := Box{
			X: box.X + float64(col)*(l.logoW+l.spacing),
			Y: box.Y + l.titleH + float64(row)*(l.logoH+l.labelH+l.spacing),
			W: l.logoW,
			H: l.logoH,
		}
		link := logo.URL
		if i == 0 {
			link = l.paymentLink()
		}
		drawLogo(s, l.opts, logo, logoBox, link)
		s.SetFont(FontRegular, 6.5)
		s.Text(Box{X: logoBox.X, Y: logoBox.Y + l.logoH, W: l.logoW, H: l.labelH}, Clip(s, logo.Label, l.logoW), AlignCenter)
	}
}

func (l logoStrip) paymentLink() string {
	if l.opts.PaymentLink == nil {
		return ""
	}
	link, err := l.opts.PaymentLink(l.model)
	if err != nil {
		l.opts.fallback("payment-link", err)
		return ""
	}
	return link
}

type disclaimerSection struct {
	lines []string
	lineH float64
}

func (d disclaimerSection) Name() string { return SectionDisclaimer }

func (d disclaimerSection) Height() float64 {
	return 2 + float64(len(d.lines))*d.lineH
}

func (d disclaimerSection) Draw(s Surface, box Box) {
	s.Line(box.X, box.Y, box.X+box.W, box.Y)
	s.SetFont(FontItalic, 6.5)
	y := box.Y + 2
	for _, line := range d.lines {
		s.Text(Box{X: box.X, Y: y, W: box.W, H: d.lineH}, Clip(s, line, box.W), AlignLeft)
		y += d.lineH
	}
}

// drawLogo draws logo in box and binds link over it. A missing or
// undecodable image is replaced by a bordered placeholder with its label.
func drawLogo(s Surface, opts *Options, logo Logo, box Box, link string) {
	err := s.Image(logo.Name, logo.Data, box)
	if err != nil {
		opts.fallback(logo.Name, err)
		s.Rect(box, false)
		s.SetFont(FontBold, 7)
		label := logo.Label
		if label == "" {
			label = logo.Name
		}
		s.Text(box, Clip(s, label, box.W-2), AlignCenter)
	}
	if link != "" {
		s.Link(box, link)
	}
}
