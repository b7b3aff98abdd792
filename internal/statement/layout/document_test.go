package layout

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	statement "municipal-statements/internal/statement/domain"
)

func testPNG(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 4, 2))
	for x := 0; x < 4; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
		img.Set(x, 1, color.RGBA{B: 200, A: 255})
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func testModel(t *testing.T, levies int) statement.StatementModel {
	t.Helper()
	lines := make([]any, 0, levies)
	for i := 0; i < levies; i++ {
		lines = append(lines, map[string]any{
			"date":        "2024-10-05",
			"code":        fmt.Sprintf("L%02d", i),
			"description": "Property rates",
			"units":       1,
			"tariff":      "100",
			"value":       "100",
		})
	}
	model, err := statement.Aggregate(statement.AggregateInput{
		AccountNumber: "1002345",
		Period:        statement.Period{Year: "2024", Month: "10"},
		Sources: statement.Sources{
			Master: statement.Record{
				"accountHolderName":       "N. Dlamini",
				"postalAddress1":          "12 Church Street",
				"postalCode":              "1200",
				"outstandingBalance":      "175.00",
				"outstandingTotalBalance": "175.00",
			},
			AgedAnalysis: statement.Record{"current": 100, "days120": 50, "days150": 25},
			LevyLines:    statement.Record{"lines": lines},
		},
		Banking:     statement.BankingDetails{BankName: "ABSA", AccountNumber: "4098765432", BranchCode: "632005", AccountType: "Cheque"},
		GeneratedAt: time.Date(2024, time.November, 3, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	return model
}

func testOptions(logo []byte) Options {
	return Options{
		Municipality: Municipality{Name: "City of Mbombela", Lines: []string{"Civic Centre", "Nel Street"}},
		HeaderLogo:   Logo{Name: "municipality", Label: "Mbombela", Data: logo},
		PaymentLogo:  Logo{Name: "yebopay", Label: "YeboPay", Data: logo},
		BankLogos: []Logo{
			{Name: "absa", Label: "ABSA", Data: logo, URL: "https://www.absa.co.za"},
			{Name: "fnb", Label: "FNB", Data: logo, URL: "https://www.fnb.co.za"},
		},
		Disclaimer: []string{"E&OE. Payments may take three working days to reflect."},
		PaymentLink: func(m statement.StatementModel) (string, error) {
			return "https://portal.example/yebopay-payment/" + m.AccountNumber, nil
		},
	}
}

func sectionNames(plan Plan) []string {
	var names []string
	for _, p := range plan.Placements {
		if len(names) > 0 && names[len(names)-1] == p.Section.Name() {
			continue
		}
		names = append(names, p.Section.Name())
	}
	return names
}

func TestRender_SectionOrderAndFooter(t *testing.T) {
	rec := NewRecorder()
	result, err := Render(testModel(t, 2), rec, testOptions(testPNG(t)))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	want := []string{SectionHeader, SectionCustomer, SectionMeters, SectionAccount, SectionAging, SectionRemittance, SectionLogos, SectionDisclaimer}
	if got := sectionNames(result.Plan); strings.Join(got, ",") != strings.Join(want, ",") {
		t.Fatalf("section order mismatch:\n got %v\nwant %v", got, want)
	}
	if result.Pages != 1 || rec.PageCount() != 1 {
		t.Fatalf("expected a single page, got %d", result.Pages)
	}
	if len(rec.Texts("Page 1 of 1")) != 1 {
		t.Fatalf("missing page footer")
	}
	if len(rec.Texts("Tax Invoice No: 2024/10/1002345")) != 1 {
		t.Fatalf("missing invoice number")
	}
	if len(rec.Texts("Account Type")) != 1 || len(rec.Texts("Cheque")) != 1 {
		t.Fatalf("missing banking account type row")
	}
}

func TestRender_LinkRegions(t *testing.T) {
	rec := NewRecorder()
	if _, err := Render(testModel(t, 0), rec, testOptions(testPNG(t))); err != nil {
		t.Fatalf("render: %v", err)
	}
	links := rec.Find("link")
	if len(links) != 3 {
		t.Fatalf("expected payment + 2 bank links, got %d", len(links))
	}
	if links[0].URL != "https://portal.example/yebopay-payment/1002345" {
		t.Fatalf("payment link mismatch: %s", links[0].URL)
	}
	if links[1].URL != "https://www.absa.co.za" || links[2].URL != "https://www.fnb.co.za" {
		t.Fatalf("bank links mismatch: %+v", links[1:])
	}
	images := rec.Find("image")
	if len(images) != 4 {
		t.Fatalf("expected 4 logos drawn, got %d", len(images))
	}
	if links[0].Box != images[1].Box {
		t.Fatalf("payment link must cover the payment logo")
	}
}

func TestRender_MissingAssetsUsePlaceholders(t *testing.T) {
	var fallbacks []string
	opts := testOptions(nil)
	opts.BankLogos[1].Data = []byte("not an image")
	opts.OnAssetFallback = func(asset string, _ error) {
		fallbacks = append(fallbacks, asset)
	}
	rec := NewRecorder()
	if _, err := Render(testModel(t, 0), rec, opts); err != nil {
		t.Fatalf("render must not fail on missing assets: %v", err)
	}
	if len(rec.Find("image")) != 0 {
		t.Fatalf("no image should be drawn")
	}
	if strings.Join(fallbacks, ",") != "municipality,yebopay,absa,fnb" {
		t.Fatalf("unexpected fallbacks: %v", fallbacks)
	}
	for _, label := range []string{"YeboPay", "ABSA", "FNB"} {
		if len(rec.Texts(label)) < 2 {
			t.Fatalf("expected placeholder label and caption for %s", label)
		}
	}
	if len(rec.Find("link")) != 3 {
		t.Fatalf("links must still be bound over placeholders")
	}
}

func TestRender_PaymentLinkFailureDegrades(t *testing.T) {
	var fallbacks []string
	opts := testOptions(testPNG(t))
	opts.PaymentLink = func(statement.StatementModel) (string, error) {
		return "", errors.New("no origin")
	}
	opts.OnAssetFallback = func(asset string, _ error) { fallbacks = append(fallbacks, asset) }
	rec := NewRecorder()
	if _, err := Render(testModel(t, 0), rec, opts); err != nil {
		t.Fatalf("render: %v", err)
	}
	if len(rec.Find("link")) != 2 {
		t.Fatalf("only static bank links expected")
	}
	if len(fallbacks) != 1 || fallbacks[0] != "payment-link" {
		t.Fatalf("unexpected fallbacks: %v", fallbacks)
	}
}

func TestRender_EmptySourcesEdgeCases(t *testing.T) {
	model := testModel(t, 0)
	rec := NewRecorder()
	result, err := Render(model, rec, testOptions(nil))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	for _, p := range result.Plan.Placements {
		table, ok := p.Section.(*Table)
		if !ok {
			continue
		}
		switch table.Name() {
		case SectionMeters:
			if len(table.Rows) != 1 || table.Rows[0][0] != "-" || table.Rows[0][4] != "0" {
				t.Fatalf("expected one zero placeholder meter row, got %v", table.Rows)
			}
		case SectionAccount:
			if len(table.Rows) != 1 || table.Rows[0][2] != statement.OpeningBalanceLabel {
				t.Fatalf("expected only the opening balance row, got %v", table.Rows)
			}
			if table.Rows[0][5] != "175.00" {
				t.Fatalf("opening balance value mismatch: %v", table.Rows[0])
			}
		case SectionAging:
			if table.Rows[0][4] != "75.00" || table.Rows[0][5] != "175.00" {
				t.Fatalf("aging row mismatch: %v", table.Rows[0])
			}
		}
	}
}

func TestRender_PaginatesLongStatements(t *testing.T) {
	rec := NewRecorder()
	result, err := Render(testModel(t, 90), rec, testOptions(testPNG(t)))
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if result.Pages < 2 {
		t.Fatalf("expected multiple pages, got %d", result.Pages)
	}
	for page := 1; page <= result.Pages; page++ {
		if len(rec.Texts(fmt.Sprintf("Page %d of %d", page, result.Pages))) != 1 {
			t.Fatalf("missing footer for page %d", page)
		}
	}
	if len(rec.Texts("ACCOUNT DETAILS (continued)")) == 0 {
		t.Fatalf("expected continued account table")
	}
	frames := 0
	for _, op := range rec.Find("rect") {
		if op.Box == (Box{X: 5, Y: 5, W: 200, H: 287}) {
			frames++
		}
	}
	if frames != result.Pages {
		t.Fatalf("expected a border frame per page, got %d for %d pages", frames, result.Pages)
	}
}

func TestRender_Deterministic(t *testing.T) {
	model := testModel(t, 40)
	logo := testPNG(t)
	var outputs [2]bytes.Buffer
	for i := range outputs {
		rec := NewRecorder()
		if _, err := Render(model, rec, testOptions(logo)); err != nil {
			t.Fatalf("render: %v", err)
		}
		if err := rec.Output(&outputs[i]); err != nil {
			t.Fatalf("output: %v", err)
		}
	}
	if !bytes.Equal(outputs[0].Bytes(), outputs[1].Bytes()) {
		t.Fatalf("rendering is not deterministic")
	}
}

func TestRender_RejectsNilSurface(t *testing.T) {
	model := statement.StatementModel{OutstandingTotalBalance: decimal.Zero}
	if _, err := Render(model, nil, Options{}); err == nil {
		t.Fatalf("expected error")
	}
}
