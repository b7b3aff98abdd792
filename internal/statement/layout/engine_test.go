package layout

import (
	"fmt"
	"testing"
)

type fixedSection struct {
	name   string
	height float64
}

func (f fixedSection) Name() string    { return f.name }
func (f fixedSection) Height() float64 { return f.height }
func (f fixedSection) Draw(s Surface, box Box) {
	s.Text(box, f.name, AlignLeft)
}

func TestEnginePlan_BreaksPageWhenSectionDoesNotFit(t *testing.T) {
	engine, err := NewEngine(A4())
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	plan := engine.Plan([]Section{
		fixedSection{"a", 100},
		fixedSection{"b", 100},
		fixedSection{"c", 100},
	})
	if plan.Pages != 2 {
		t.Fatalf("expected 2 pages, got %d", plan.Pages)
	}
	want := []struct {
		page int
		y    float64
	}{{1, 12}, {1, 116}, {2, 12}}
	for i, w := range want {
		p := plan.Placements[i]
		if p.Page != w.page || p.Y != w.y {
			t.Fatalf("placement %d: got page %d y %.1f, want page %d y %.1f", i, p.Page, p.Y, w.page, w.y)
		}
	}
	if engine.CurrentPage() != 2 || engine.CurrentY() != 116 {
		t.Fatalf("cursor state mismatch: page %d y %.1f", engine.CurrentPage(), engine.CurrentY())
	}
}

func TestEnginePlan_ExactFitStaysOnPage(t *testing.T) {
	geo := A4()
	engine, _ := NewEngine(geo)
	available := geo.Bottom() - geo.MarginTop
	plan := engine.Plan([]Section{fixedSection{"full", available}})
	if plan.Pages != 1 || plan.Placements[0].Page != 1 {
		t.Fatalf("section of exactly the available height must fit, got %+v", plan)
	}
}

func TestEnginePlan_OversizedSectionPlacedAtTop(t *testing.T) {
	engine, _ := NewEngine(A4())
	plan := engine.Plan([]Section{
		fixedSection{"small", 20},
		fixedSection{"huge", 400},
		fixedSection{"after", 10},
	})
	if len(plan.Placements) != 3 {
		t.Fatalf("expected 3 placements, got %d", len(plan.Placements))
	}
	huge := plan.Placements[1]
	if huge.Page != 2 || huge.Y != 12 {
		t.Fatalf("oversized section should start a fresh page, got page %d y %.1f", huge.Page, huge.Y)
	}
	if plan.Placements[2].Page != 3 {
		t.Fatalf("next section should follow on a new page, got %d", plan.Placements[2].Page)
	}
}

func TestEnginePlan_SplitsTables(t *testing.T) {
	rows := make([][]string, 60)
	for i := range rows {
		rows[i] = []string{fmt.Sprintf("row-%02d", i)}
	}
	table := NewTable("levies", "ACCOUNT DETAILS", []Column{{Header: "Item", Width: 190}}, rows)

	engine, _ := NewEngine(A4())
	plan := engine.Plan([]Section{fixedSection{"header", 200}, table})
	if plan.Pages < 2 {
		t.Fatalf("expected table to continue on another page, got %d pages", plan.Pages)
	}

	seen := 0
	geo := A4()
	for _, p := range plan.Placements[1:] {
		part, ok := p.Section.(*Table)
		if !ok {
			t.Fatalf("expected table part, got %T", p.Section)
		}
		if p.Y+p.Height > geo.Bottom() {
			t.Fatalf("table part overflows page %d: y %.1f h %.1f", p.Page, p.Y, p.Height)
		}
		for _, row := range part.Rows {
			if row[0] != fmt.Sprintf("row-%02d", seen) {
				t.Fatalf("row order broken at %d: %s", seen, row[0])
			}
			seen++
		}
		if p.Page > 1 && part.Title != "ACCOUNT DETAILS (continued)" {
			t.Fatalf("continuation title mismatch: %q", part.Title)
		}
	}
	if seen != len(rows) {
		t.Fatalf("expected %d rows placed, got %d", len(rows), seen)
	}
}

func TestEngineEmit_FramesAndFooters(t *testing.T) {
	engine, _ := NewEngine(A4())
	plan := engine.Plan([]Section{fixedSection{"a", 200}, fixedSection{"b", 200}})
	rec := NewRecorder()
	engine.Emit(rec, plan)
	engine.WriteFooters(rec)

	if rec.PageCount() != 2 {
		t.Fatalf("expected 2 pages, got %d", rec.PageCount())
	}
	frames := rec.Find("rect")
	if len(frames) != 2 {
		t.Fatalf("expected one frame per page, got %d", len(frames))
	}
	for i, frame := range frames {
		if frame.Page != i+1 || frame.Box != (Box{X: 5, Y: 5, W: 200, H: 287}) {
			t.Fatalf("unexpected frame %+v", frame)
		}
	}
	for page := 1; page <= 2; page++ {
		footers := rec.Texts(fmt.Sprintf("Page %d of 2", page))
		if len(footers) != 1 || footers[0].Page != page {
			t.Fatalf("missing footer for page %d: %+v", page, footers)
		}
	}
	if b := rec.Texts("b"); len(b) == 0 || b[0].Page != 2 {
		t.Fatalf("section b should be drawn on page 2")
	}
}

func TestNewEngine_RejectsBadGeometry(t *testing.T) {
	geo := A4()
	geo.MarginLeft = 150
	geo.MarginRight = 100
	if _, err := NewEngine(geo); err == nil {
		t.Fatalf("expected geometry error")
	}
}
