package layout

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

// Op is one primitive captured by Recorder.
type Op struct {
	Page  int
	Kind  string
	Box   Box
	Text  string
	URL   string
	Style FontStyle
	Size  float64
}

// Recorder is an in-memory Surface that captures primitives instead of
// drawing them. Text width is approximated from the font size.
type Recorder struct {
	Ops   []Op
	pages int
	page  int
	style FontStyle
	size  float64
}

// NewRecorder returns an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{size: 10}
}

func (r *Recorder) AddPage() {
	r.pages++
	r.page = r.pages
	r.Ops = append(r.Ops, Op{Page: r.page, Kind: "page"})
}

func (r *Recorder) SetPage(page int) {
	if page >= 1 && page <= r.pages {
		r.page = page
	}
}

func (r *Recorder) PageCount() int { return r.pages }

func (r *Recorder) SetFont(style FontStyle, size float64) {
	r.style = style
	r.size = size
}

// TextWidth approximates glyph advance as half the point size, in mm.
func (r *Recorder) TextWidth(text string) float64 {
	const ptToMM = 0.3528
	return float64(utf8.RuneCountInString(text)) * r.size * 0.5 * ptToMM
}

func (r *Recorder) Text(box Box, text string, _ Align) {
	r.Ops = append(r.Ops, Op{Page: r.page, Kind: "text", Box: box, Text: text, Style: r.style, Size: r.size})
}

func (r *Recorder) Line(x1, y1, x2, y2 float64) {
	r.Ops = append(r.Ops, Op{Page: r.page, Kind: "line", Box: Box{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}})
}

func (r *Recorder) Rect(box Box, fill bool) {
	kind := "rect"
	if fill {
		kind = "fill"
	}
	r.Ops = append(r.Ops, Op{Page: r.page, Kind: kind, Box: box})
}

func (r *Recorder) Image(name string, data []byte, box Box) error {
	if _, err := DetectImageType(data); err != nil {
		return err
	}
	r.Ops = append(r.Ops, Op{Page: r.page, Kind: "image", Box: box, Text: name})
	return nil
}

func (r *Recorder) Link(box Box, url string) {
	r.Ops = append(r.Ops, Op{Page: r.page, Kind: "link", Box: box, URL: url})
}

// Output writes a line-per-op transcript.
func (r *Recorder) Output(w io.Writer) error {
	if w == nil {
		return errors.New("recorder: nil writer")
	}
	for _, op := range r.Ops {
		if _, err := fmt.Fprintf(w, "%d %s %.2f,%.2f,%.2f,%.2f %s %s %q\n",
			op.Page, op.Kind, op.Box.X, op.Box.Y, op.Box.W, op.Box.H, op.Style, op.URL, op.Text); err != nil {
			return err
		}
	}
	return nil
}

// Find returns ops of the given kind.
func (r *Recorder) Find(kind string) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == kind {
			out = append(out, op)
		}
	}
	return out
}

// Texts returns the text of every text op containing substr.
func (r *Recorder) Texts(substr string) []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == "text" && strings.Contains(op.Text, substr) {
			out = append(out, op)
		}
	}
	return out
}
