package interfaces

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	statement "municipal-statements/internal/statement/domain"
)

// XLSXContentType is the media type of spreadsheet exports.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// XLSXFilename mirrors the PDF filename with an .xlsx extension.
func XLSXFilename(model statement.StatementModel) string {
	return fmt.Sprintf("Statement_%s_%s.xlsx", model.AccountNumber, model.GeneratedAt.Format("20060102"))
}

// BuildStatementXLSX renders the statement model as a workbook with one
// sheet per statement section.
func BuildStatementXLSX(model statement.StatementModel) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	summarySheet := "summary"
	metersSheet := "meters"
	leviesSheet := "levies"
	agingSheet := "aging"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	for _, name := range []string{metersSheet, leviesSheet, agingSheet} {
		if _, err := f.NewSheet(name); err != nil {
			return nil, err
		}
	}

	summary := [][]any{
		{"Tax Invoice / Statement"},
		{},
		{"Account Number", model.AccountNumber},
		{"Account Holder", model.AccountHolderName},
		{"Postal Address", model.FormattedAddress},
		{"ERF Number", model.ErfNumber},
		{"VAT Reg No", model.VATRegNumber},
		{"Tax Invoice No", model.TaxInvoiceNumber},
		{"Statement Period", model.Period.Label()},
		{"Statement Date", model.GeneratedAt.Format("2006-01-02")},
		{"Property Valuation", amount(model.PropertyValuation)},
		{"Outstanding Balance", amount(model.OutstandingBalance)},
		{"Amount Due", amount(model.OutstandingTotalBalance)},
		{"Closing Balance", amount(model.ClosingBalance)},
		{"Bank", model.Banking.BankName},
		{"Bank Account", model.Banking.AccountNumber},
		{"Branch Code", model.Banking.BranchCode},
		{"Account Type", model.Banking.AccountType},
		{"Payment Reference", model.Banking.Reference},
	}
	if len(model.Warnings) > 0 {
		summary = append(summary, []any{}, []any{"Data Quality", strings.Join(model.Warnings, "; ")})
	}
	if err := writeRows(f, summarySheet, summary); err != nil {
		return nil, err
	}

	meters := [][]any{{"Meter No", "Type", "Previous", "Current", "Consumption", "Total Levied"}}
	for _, m := range model.Meters {
		meters = append(meters, []any{m.MeterNumber, m.MeterType, amount(m.PrevRead), amount(m.CurrRead), amount(m.Consumption), amount(m.TotalLevied)})
	}
	if err := writeRows(f, metersSheet, meters); err != nil {
		return nil, err
	}

	levies := [][]any{{"Date", "Code", "Description", "Units", "Tariff", "Value"}}
	for _, item := range model.Levies {
		levies = append(levies, []any{item.Date, item.Code, item.Description, amount(item.Units), amount(item.Tariff), amount(item.Value)})
	}
	if err := writeRows(f, leviesSheet, levies); err != nil {
		return nil, err
	}

	a := model.Aging
	aging := [][]any{
		{"Current", "30 Days", "60 Days", "90 Days", "120+ Days", "Closing Balance"},
		{amount(a.Current), amount(a.Days30), amount(a.Days60), amount(a.Days90), amount(a.Days120Plus), amount(model.ClosingBalance)},
	}
	if err := writeRows(f, agingSheet, aging); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		if len(row) == 0 {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	return nil
}

// amount converts to float64 for numeric spreadsheet cells.
func amount(d decimal.Decimal) float64 {
	v, _ := d.Round(3).Float64()
	return v
}
