package layout

import "math"

const ellipsis = "..."

// Column is a fixed-width table column.
type Column struct {
	Header string
	Width  float64
	Align  Align
}

// Table is a grid section: optional title, bold header row and normal body
// rows. Cell text is truncated to the column width, never wrapped.
type Table struct {
	name         string
	Title        string
	Columns      []Column
	Rows         [][]string
	TitleHeight  float64
	HeaderHeight float64
	RowHeight    float64
	FontSize     float64
	Padding      float64
}

// NewTable builds a table section with the default grid metrics.
func NewTable(name, title string, columns []Column, rows [][]string) *Table {
	return &Table{
		name:         name,
		Title:        title,
		Columns:      columns,
		Rows:         rows,
		TitleHeight:  6,
		HeaderHeight: 6,
		RowHeight:    5.5,
		FontSize:     8,
		Padding:      1.2,
	}
}

func (t *Table) Name() string { return t.name }

func (t *Table) Height() float64 {
	return t.chromeHeight() + float64(len(t.Rows))*t.RowHeight
}

// Split keeps as many whole rows as fit and repeats title and header on the
// continuation.
func (t *Table) Split(available float64) (Section, Section) {
	n := int(math.Floor((available - t.chromeHeight()) / t.RowHeight))
	if n < 1 {
		return nil, t
	}
	if n >= len(t.Rows) {
		return t, nil
	}
	head := *t
	head.Rows = t.Rows[:n]
	tail := *t
	tail.Rows = t.Rows[n:]
	if t.Title != "" {
		tail.Title = continuedTitle(t.Title)
	}
	return &head, &tail
}

func (t *Table) Draw(s Surface, box Box) {
	y := box.Y
	if t.Title != "" {
		s.SetFont(FontBold, t.FontSize+1)
		s.Text(Box{X: box.X, Y: y, W: box.W, H: t.TitleHeight}, t.Title, AlignLeft)
		y += t.TitleHeight
	}

	s.SetFont(FontBold, t.FontSize)
	x := box.X
	for _, col := range t.Columns {
		cell := Box{X: x, Y: y, W: col.Width, H: t.HeaderHeight}
		s.Rect(cell, true)
		t.drawCell(s, cell, col.Header, col.Align)
		x += col.Width
	}
	y += t.HeaderHeight

	s.SetFont(FontRegular, t.FontSize)
	for _, row := range t.Rows {
		x = box.X
		for i, col := range t.Columns {
			cell := Box{X: x, Y: y, W: col.Width, H: t.RowHeight}
			s.Rect(cell, false)
			value := ""
			if i < len(row) {
				value = row[i]
			}
			t.drawCell(s, cell, value, col.Align)
			x += col.Width
		}
		y += t.RowHeight
	}
}

func (t *Table) drawCell(s Surface, cell Box, text string, align Align) {
	inner := Box{X: cell.X + t.Padding, Y: cell.Y, W: cell.W - 2*t.Padding, H: cell.H}
	s.Text(inner, Clip(s, text, inner.W), align)
}

func (t *Table) chromeHeight() float64 {
	h := t.HeaderHeight
	if t.Title != "" {
		h += t.TitleHeight
	}
	return h
}

func continuedTitle(title string) string {
	const suffix = " (continued)"
	if len(title) > len(suffix) && title[len(title)-len(suffix):] == suffix {
		return title
	}
	return title + suffix
}

// Clip truncates text with an ellipsis so it fits width under the current
// font of s.
func Clip(s Surface, text string, width float64) string {
	if text == "" || s.TextWidth(text) <= width {
		return text
	}
	runes := []rune(text)
	for n := len(runes) - 1; n > 0; n-- {
		candidate := string(runes[:n]) + ellipsis
		if s.TextWidth(candidate) <= width {
			return candidate
		}
	}
	if s.TextWidth(ellipsis) <= width {
		return ellipsis
	}
	return ""
}
