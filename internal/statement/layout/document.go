package layout

import (
	"errors"

	statement "municipal-statements/internal/statement/domain"
)

// DefaultTitle is the document heading.
const DefaultTitle = "TAX INVOICE / STATEMENT"

// Logo is an image asset with an optional static link.
type Logo struct {
	Name  string
	Label string
	Data  []byte
	URL   string
}

// Municipality is the issuer block of the header.
type Municipality struct {
	Name  string
	Lines []string
}

// Options carries everything the renderer needs besides the model. All
// assets must already be loaded; rendering performs no I/O.
type Options struct {
	Geometry     Geometry
	Title        string
	Municipality Municipality
	HeaderLogo   Logo
	PaymentLogo  Logo
	BankLogos    []Logo
	Disclaimer   []string

	// PaymentLink resolves the per-customer URL bound over PaymentLogo.
	PaymentLink func(statement.StatementModel) (string, error)
	// OnAssetFallback is called when an asset is replaced by a placeholder
	// or the payment link cannot be resolved.
	OnAssetFallback func(asset string, err error)
}

func (o *Options) fallback(asset string, err error) {
	if o != nil && o.OnAssetFallback != nil {
		o.OnAssetFallback(asset, err)
	}
}

// Result describes a rendered document.
type Result struct {
	Pages int
	Plan  Plan
}

// Sections builds the statement sections in their fixed order.
func Sections(model statement.StatementModel, opts *Options, width float64) []Section {
	return []Section{
		headerSection{model: model, opts: opts},
		customerSection(model),
		meterTable(model, width),
		accountTable(model, width),
		agingTable(model, width),
		remittanceSection(model),
		newLogoStrip(model, opts, width),
		disclaimerSection{lines: opts.Disclaimer, lineH: 3.5},
	}
}

// Render lays the model out and draws it onto s, including page footers.
// The caller owns s and writes its output.
func Render(model statement.StatementModel, s Surface, opts Options) (Result, error) {
	if s == nil {
		return Result{}, errors.New("layout: nil surface")
	}
	if opts.Geometry == (Geometry{}) {
		opts.Geometry = A4()
	}
	if opts.Title == "" {
		opts.Title = DefaultTitle
	}
	engine, err := NewEngine(opts.Geometry)
	if err != nil {
		return Result{}, err
	}
	plan := engine.Plan(Sections(model, &opts, opts.Geometry.ContentWidth()))
	engine.Emit(s, plan)
	engine.WriteFooters(s)
	return Result{Pages: plan.Pages, Plan: plan}, nil
}

func customerSection(model statement.StatementModel) Section {
	return newDualColumn(SectionCustomer,
		column{title: "CUSTOMER DETAILS", rows: []pair{
			{"Account Holder", model.AccountHolderName},
			{"Postal Address", model.FormattedAddress},
			{"Account Number", model.AccountNumber},
			{"ERF Number", model.ErfNumber},
			{"Property Valuation", FormatMoney(model.PropertyValuation)},
		}},
		column{title: "INVOICE DETAILS", rows: []pair{
			{"Tax Invoice No", model.TaxInvoiceNumber},
			{"Statement Period", model.Period.Label()},
			{"Statement Date", model.GeneratedAt.Format("2006-01-02")},
			{"VAT Reg No", model.VATRegNumber},
			{"Amount Due", FormatMoney(model.OutstandingTotalBalance)},
		}},
	)
}

func meterTable(model statement.StatementModel, width float64) Section {
	columns := scaleColumns(width, []Column{
		{Header: "Meter No", Width: 0.17, Align: AlignLeft},
		{Header: "Type", Width: 0.15, Align: AlignLeft},
		{Header: "Previous", Width: 0.16, Align: AlignRight},
		{Header: "Current", Width: 0.16, Align: AlignRight},
		{Header: "Consumption", Width: 0.16, Align: AlignRight},
		{Header: "Total Levied", Width: 0.20, Align: AlignRight},
	})
	rows := make([][]string, 0, len(model.Meters))
	for _, m := range model.Meters {
		number, kind := m.MeterNumber, m.MeterType
		if m.Placeholder {
			number, kind = "-", "-"
		}
		rows = append(rows, []string{
			number,
			kind,
			FormatQuantity(m.PrevRead),
			FormatQuantity(m.CurrRead),
			FormatQuantity(m.Consumption),
			FormatMoney(m.TotalLevied),
		})
	}
	return NewTable(SectionMeters, "METER READINGS", columns, rows)
}

func accountTable(model statement.StatementModel, width float64) Section {
	columns := scaleColumns(width, []Column{
		{Header: "Date", Width: 0.13, Align: AlignLeft},
		{Header: "Code", Width: 0.09, Align: AlignLeft},
		{Header: "Description", Width: 0.38, Align: AlignLeft},
		{Header: "Units", Width: 0.11, Align: AlignRight},
		{Header: "Tariff", Width: 0.12, Align: AlignRight},
		{Header: "Value", Width: 0.17, Align: AlignRight},
	})
	rows := make([][]string, 0, len(model.Levies))
	for i, item := range model.Levies {
		units, tariff := FormatQuantity(item.Units), FormatMoney(item.Tariff)
		if i == 0 && item.Description == statement.OpeningBalanceLabel {
			units, tariff = "", ""
		}
		rows = append(rows, []string{item.Date, item.Code, item.Description, units, tariff, FormatMoney(item.Value)})
	}
	return NewTable(SectionAccount, "ACCOUNT DETAILS", columns, rows)
}

func agingTable(model statement.StatementModel, width float64) Section {
	columns := scaleColumns(width, []Column{
		{Header: "Current", Width: 1.0 / 6, Align: AlignRight},
		{Header: "30 Days", Width: 1.0 / 6, Align: AlignRight},
		{Header: "60 Days", Width: 1.0 / 6, Align: AlignRight},
		{Header: "90 Days", Width: 1.0 / 6, Align: AlignRight},
		{Header: "120+ Days", Width: 1.0 / 6, Align: AlignRight},
		{Header: "Closing Balance", Width: 1.0 / 6, Align: AlignRight},
	})
	a := model.Aging
	rows := [][]string{{
		FormatMoney(a.Current),
		FormatMoney(a.Days30),
		FormatMoney(a.Days60),
		FormatMoney(a.Days90),
		FormatMoney(a.Days120Plus),
		FormatMoney(model.ClosingBalance),
	}}
	return NewTable(SectionAging, "AGE ANALYSIS", columns, rows)
}

func remittanceSection(model statement.StatementModel) Section {
	b := model.Banking
	return newDualColumn(SectionRemittance,
		column{title: "REMITTANCE ADVICE", rows: []pair{
			{"Account Number", model.AccountNumber},
			{"Account Holder", model.AccountHolderName},
			{"Amount Due", FormatMoney(model.OutstandingTotalBalance)},
			{"Payment Reference", b.Reference},
			{"Statement Period", model.Period.Label()},
		}},
		column{title: "BANKING DETAILS", rows: []pair{
			{"Bank", b.BankName},
			{"Account Name", b.AccountName},
			{"Account Number", b.AccountNumber},
			{"Branch Code", b.BranchCode},
			{"Account Type", b.AccountType},
			{"Reference", b.Reference},
		}},
	)
}

// scaleColumns converts fractional widths to absolute widths of total.
func scaleColumns(total float64, columns []Column) []Column {
	out := make([]Column, len(columns))
	for i, col := range columns {
		col.Width *= total
		out[i] = col
	}
	return out
}
