package pdf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"municipal-statements/internal/statement/layout"
)

const fontFamily = "Arial"

// Surface draws layout primitives with gofpdf. A Surface holds one document
// and must not be shared between requests.
type Surface struct {
	pdf       *gofpdf.Fpdf
	translate func(string) string
	images    map[string]bool
}

// Option configures a Surface.
type Option func(*Surface)

// WithCreationDate pins the document creation date so output is reproducible.
func WithCreationDate(tm time.Time) Option {
	return func(s *Surface) {
		if !tm.IsZero() {
			s.pdf.SetCreationDate(tm.UTC())
		}
	}
}

// WithMetadata sets the document title, subject and author.
func WithMetadata(title, subject, author string) Option {
	return func(s *Surface) {
		s.pdf.SetTitle(title, true)
		s.pdf.SetSubject(subject, true)
		s.pdf.SetAuthor(author, true)
	}
}

// NewSurface creates an A4 portrait surface in millimetres with automatic
// page breaking disabled; pagination belongs to the layout engine.
func NewSurface(opts ...Option) *Surface {
	doc := gofpdf.New("P", "mm", "A4", "")
	doc.SetMargins(0, 0, 0)
	doc.SetAutoPageBreak(false, 0)
	doc.SetCatalogSort(true)
	doc.SetCreator("municipal-statements", true)
	doc.SetDrawColor(60, 60, 60)
	doc.SetFillColor(230, 230, 230)
	doc.SetLineWidth(0.2)
	doc.SetFont(fontFamily, "", 10)
	s := &Surface{
		pdf:       doc,
		translate: doc.UnicodeTranslatorFromDescriptor(""),
		images:    make(map[string]bool),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Surface) AddPage() {
	s.pdf.AddPage()
}

func (s *Surface) SetPage(page int) {
	if page >= 1 && page <= s.pdf.PageCount() {
		s.pdf.SetPage(page)
	}
}

func (s *Surface) PageCount() int {
	return s.pdf.PageCount()
}

func (s *Surface) SetFont(style layout.FontStyle, size float64) {
	s.pdf.SetFont(fontFamily, string(style), size)
}

func (s *Surface) TextWidth(text string) float64 {
	return s.pdf.GetStringWidth(s.translate(text))
}

func (s *Surface) Text(box layout.Box, text string, align layout.Align) {
	s.pdf.SetXY(box.X, box.Y)
	s.pdf.CellFormat(box.W, box.H, s.translate(text), "", 0, string(align)+"M", false, 0, "")
}

func (s *Surface) Line(x1, y1, x2, y2 float64) {
	s.pdf.Line(x1, y1, x2, y2)
}

func (s *Surface) Rect(box layout.Box, fill bool) {
	style := "D"
	if fill {
		style = "FD"
	}
	s.pdf.Rect(box.X, box.Y, box.W, box.H, style)
}

// Image registers data under name and draws it scaled into box. Undecodable
// data returns an error and leaves the document usable.
func (s *Surface) Image(name string, data []byte, box layout.Box) error {
	if name == "" {
		return errors.New("pdf surface: empty image name")
	}
	imageType, err := layout.DetectImageType(data)
	if err != nil {
		return err
	}
	if !s.images[name] {
		s.pdf.RegisterImageOptionsReader(name, gofpdf.ImageOptions{ImageType: imageType}, bytes.NewReader(data))
		if err := s.pdf.Error(); err != nil {
			s.pdf.ClearError()
			return fmt.Errorf("pdf surface: register image %s: %w", name, err)
		}
		s.images[name] = true
	}
	s.pdf.ImageOptions(name, box.X, box.Y, box.W, box.H, false, gofpdf.ImageOptions{ImageType: imageType}, 0, "")
	if err := s.pdf.Error(); err != nil {
		s.pdf.ClearError()
		return fmt.Errorf("pdf surface: draw image %s: %w", name, err)
	}
	return nil
}

func (s *Surface) Link(box layout.Box, url string) {
	if url == "" {
		return
	}
	s.pdf.LinkString(box.X, box.Y, box.W, box.H, url)
}

// Output closes the document and writes it to w.
func (s *Surface) Output(w io.Writer) error {
	if w == nil {
		return errors.New("pdf surface: nil writer")
	}
	return s.pdf.Output(w)
}
