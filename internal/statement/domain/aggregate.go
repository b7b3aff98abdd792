package statement

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Sources carries the raw documents read for one account and period. Only
// Master is mandatory; nil optional records aggregate to zero values.
type Sources struct {
	Master        Record
	AgedAnalysis  Record
	MeterReadings Record
	LevyLines     Record
}

// AggregateInput is the input of Aggregate.
type AggregateInput struct {
	AccountNumber string
	Period        Period
	Sources       Sources
	Banking       BankingDetails
	GeneratedAt   time.Time
}

// Aggregate reconciles the raw sources into a StatementModel. It fails only
// when the account master record is missing.
func Aggregate(in AggregateInput) (StatementModel, error) {
	accountNumber := strings.TrimSpace(in.AccountNumber)
	if accountNumber == "" {
		return StatementModel{}, ErrEmptyAccountNumber
	}
	if err := in.Period.Validate(); err != nil {
		return StatementModel{}, err
	}
	master := in.Sources.Master
	if len(master) == 0 {
		return StatementModel{}, &CustomerNotFoundError{AccountNumber: accountNumber}
	}

	model := StatementModel{
		AccountNumber:     accountNumber,
		AccountHolderName: master.String("accountHolderName", "account_holder_name", "accountHolder", "name"),
		ErfNumber:         master.String("erfNumber", "erf_number", "erf"),
		VATRegNumber:      master.String("vatRegNumber", "vat_reg_number", "vatNumber"),
		PostalAddress: [3]string{
			master.String("postalAddress1", "postal_address_1", "address1"),
			master.String("postalAddress2", "postal_address_2", "address2"),
			master.String("postalAddress3", "postal_address_3", "address3"),
		},
		PostalCode:              master.String("postalCode", "postal_code"),
		PropertyValuation:       master.Decimal("propertyValuation", "property_valuation", "valuation"),
		OutstandingBalance:      master.Decimal("outstandingBalance", "outstanding_balance"),
		OutstandingTotalBalance: master.Decimal("outstandingTotalBalance", "outstanding_total_balance", "totalBalance"),
		Period:                  in.Period,
		TaxInvoiceNumber:        TaxInvoiceNumber(in.Period, accountNumber),
		GeneratedAt:             in.GeneratedAt,
	}
	model.FormattedAddress = ComposeAddress(model.PostalAddress, model.PostalCode)

	aging := CalculateAging(in.Sources.AgedAnalysis)
	model.Aging = aging.Buckets
	model.ClosingBalance = aging.ClosingBalance
	model.Warnings = append(model.Warnings, aging.Warnings...)

	model.Meters = buildMeterLines(in.Sources.MeterReadings)
	model.Levies = buildLevyLines(in.Sources.LevyLines, model.OutstandingBalance, in.Period)

	banking := in.Banking
	banking.Reference = accountNumber
	model.Banking = banking
	return model, nil
}

// TaxInvoiceNumber derives the invoice number "{year}/{month}/{account}".
func TaxInvoiceNumber(period Period, accountNumber string) string {
	return period.Year + "/" + period.Month + "/" + accountNumber
}

// ComposeAddress joins the address lines and postal code, skipping blanks.
func ComposeAddress(lines [3]string, postalCode string) string {
	parts := make([]string, 0, 4)
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			parts = append(parts, line)
		}
	}
	if code := strings.TrimSpace(postalCode); code != "" {
		parts = append(parts, code)
	}
	return strings.Join(parts, ", ")
}

func buildMeterLines(doc Record) []MeterReadingLine {
	readings := doc.Records("readings", "meters")
	if len(readings) == 0 && doc.String("meterNumber", "meter_number") != "" {
		readings = []Record{doc}
	}
	lines := make([]MeterReadingLine, 0, len(readings))
	for _, reading := range readings {
		line := MeterReadingLine{
			MeterNumber: reading.String("meterNumber", "meter_number", "meterNo"),
			MeterType:   reading.String("meterType", "meter_type", "type"),
			PrevRead:    reading.Decimal("prevRead", "prev_read", "previousReading"),
			CurrRead:    reading.Decimal("currRead", "curr_read", "currentReading"),
			Consumption: reading.Decimal("consumption"),
			TotalLevied: reading.Decimal("totalLevied", "total_levied"),
		}
		hasPrev := reading.HasNumber("prevRead", "prev_read", "previousReading")
		hasCurr := reading.HasNumber("currRead", "curr_read", "currentReading")
		if hasPrev && hasCurr {
			line.Consumption = line.CurrRead.Sub(line.PrevRead)
		}
		lines = append(lines, line)
	}
	if len(lines) == 0 {
		lines = append(lines, MeterReadingLine{Placeholder: true})
	}
	return lines
}

func buildLevyLines(doc Record, opening decimal.Decimal, period Period) []LeviedLineItem {
	items := doc.Records("lines", "items", "levies")
	lines := make([]LeviedLineItem, 0, len(items)+1)
	lines = append(lines, LeviedLineItem{
		Date:        period.Start().Format("2006-01-02"),
		Description: OpeningBalanceLabel,
		Value:       opening,
	})
	for _, item := range items {
		lines = append(lines, LeviedLineItem{
			Date:        item.String("date", "transactionDate"),
			Code:        item.String("code", "levyCode", "serviceCode"),
			Description: item.String("description", "desc"),
			Units:       item.Decimal("units", "quantity"),
			Tariff:      item.Decimal("tariff", "rate"),
			Value:       item.Decimal("value", "amount"),
		})
	}
	return lines
}
