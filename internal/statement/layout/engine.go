package layout

import (
	"errors"
	"fmt"
)

// Geometry is the fixed page geometry in millimetres.
type Geometry struct {
	PageWidth    float64
	PageHeight   float64
	MarginTop    float64
	MarginBottom float64
	MarginLeft   float64
	MarginRight  float64
	SectionGap   float64
	FrameInset   float64
}

// A4 is the statement page geometry.
func A4() Geometry {
	return Geometry{
		PageWidth:    210,
		PageHeight:   297,
		MarginTop:    12,
		MarginBottom: 15,
		MarginLeft:   10,
		MarginRight:  10,
		SectionGap:   4,
		FrameInset:   5,
	}
}

// ContentWidth is the drawable width between the side margins.
func (g Geometry) ContentWidth() float64 {
	return g.PageWidth - g.MarginLeft - g.MarginRight
}

// Bottom is the lowest Y a section may reach.
func (g Geometry) Bottom() float64 {
	return g.PageHeight - g.MarginBottom
}

// Validate rejects geometries with no drawable area.
func (g Geometry) Validate() error {
	if g.PageWidth <= 0 || g.PageHeight <= 0 {
		return errors.New("layout: page size must be positive")
	}
	if g.ContentWidth() <= 0 {
		return errors.New("layout: margins leave no content width")
	}
	if g.Bottom() <= g.MarginTop {
		return errors.New("layout: margins leave no content height")
	}
	return nil
}

// Section is one fixed-width block of the document. Height must depend on the
// section content only so that plans can be computed without a surface.
type Section interface {
	Name() string
	Height() float64
	Draw(s Surface, box Box)
}

// Splitter is implemented by sections that can continue on the next page.
// Split returns the part that fits within available and the remainder; head
// is nil when nothing fits.
type Splitter interface {
	Split(available float64) (head, tail Section)
}

// Placement positions a section on a page.
type Placement struct {
	Section Section
	Page    int
	Y       float64
	Height  float64
}

// Plan is the result of a layout pass.
type Plan struct {
	Pages      int
	Placements []Placement
}

// Engine is a single-use cursor layout pass. Build one per document.
type Engine struct {
	geo         Geometry
	currentY    float64
	currentPage int
}

// NewEngine constructs an engine for geo.
func NewEngine(geo Geometry) (*Engine, error) {
	if err := geo.Validate(); err != nil {
		return nil, err
	}
	return &Engine{geo: geo, currentY: geo.MarginTop, currentPage: 1}, nil
}

// Geometry returns the engine page geometry.
func (e *Engine) Geometry() Geometry { return e.geo }

// CurrentY returns the cursor offset on the current page.
func (e *Engine) CurrentY() float64 { return e.currentY }

// CurrentPage returns the one-based page the cursor is on.
func (e *Engine) CurrentPage() int { return e.currentPage }

// Plan positions sections in order, breaking pages when the next section
// would cross the bottom margin. Splittable sections are divided at the
// page boundary instead of moving whole.
func (e *Engine) Plan(sections []Section) Plan {
	e.currentY = e.geo.MarginTop
	e.currentPage = 1

	var plan Plan
	for _, section := range sections {
		for section != nil {
			height := section.Height()
			if e.fits(height) {
				plan.Placements = append(plan.Placements, e.place(section, height))
				section = nil
				continue
			}
			if splitter, ok := section.(Splitter); ok {
				head, tail := splitter.Split(e.geo.Bottom() - e.currentY)
				if head != nil {
					plan.Placements = append(plan.Placements, e.place(head, head.Height()))
					e.breakPage()
					section = tail
					continue
				}
			}
			if e.atTop() {
				// Taller than a whole page and not splittable.
				plan.Placements = append(plan.Placements, e.place(section, height))
				section = nil
				continue
			}
			e.breakPage()
		}
	}
	plan.Pages = e.currentPage
	return plan
}

// Emit draws a plan onto s, adding pages and their border frames as the
// placements advance.
func (e *Engine) Emit(s Surface, plan Plan) {
	page := 0
	for _, placement := range plan.Placements {
		for page < placement.Page {
			s.AddPage()
			page++
			e.drawFrame(s)
		}
		placement.Section.Draw(s, Box{
			X: e.geo.MarginLeft,
			Y: placement.Y,
			W: e.geo.ContentWidth(),
			H: placement.Height,
		})
	}
	for page < plan.Pages {
		s.AddPage()
		page++
		e.drawFrame(s)
	}
}

// WriteFooters revisits every emitted page and writes "Page N of total".
func (e *Engine) WriteFooters(s Surface) {
	total := s.PageCount()
	for page := 1; page <= total; page++ {
		s.SetPage(page)
		s.SetFont(FontRegular, 7)
		s.Text(Box{
			X: e.geo.MarginLeft,
			Y: e.geo.Bottom() + 3,
			W: e.geo.ContentWidth(),
			H: 5,
		}, fmt.Sprintf("Page %d of %d", page, total), AlignRight)
	}
}

func (e *Engine) fits(height float64) bool {
	return e.currentY+height <= e.geo.Bottom()
}

func (e *Engine) atTop() bool {
	return e.currentY <= e.geo.MarginTop
}

func (e *Engine) place(section Section, height float64) Placement {
	placement := Placement{Section: section, Page: e.currentPage, Y: e.currentY, Height: height}
	e.currentY += height + e.geo.SectionGap
	return placement
}

func (e *Engine) breakPage() {
	e.currentPage++
	e.currentY = e.geo.MarginTop
}

func (e *Engine) drawFrame(s Surface) {
	inset := e.geo.FrameInset
	s.Rect(Box{
		X: inset,
		Y: inset,
		W: e.geo.PageWidth - 2*inset,
		H: e.geo.PageHeight - 2*inset,
	}, false)
}
