package statement

import (
	"time"

	"github.com/shopspring/decimal"
)

// OpeningBalanceLabel is the description of the synthetic first levy row.
const OpeningBalanceLabel = "OPENING BALANCE"

// StatementModel is the reconciled view of one account for one period. It is
// assembled per request and must be treated as read-only once built.
type StatementModel struct {
	AccountNumber     string
	AccountHolderName string
	ErfNumber         string
	VATRegNumber      string
	PostalAddress     [3]string
	PostalCode        string
	FormattedAddress  string
	PropertyValuation decimal.Decimal

	OutstandingBalance      decimal.Decimal
	OutstandingTotalBalance decimal.Decimal
	ClosingBalance          decimal.Decimal

	Aging   AgingBuckets
	Meters  []MeterReadingLine
	Levies  []LeviedLineItem
	Banking BankingDetails

	Period           Period
	TaxInvoiceNumber string
	GeneratedAt      time.Time

	// Warnings collects data-quality notes raised while aggregating.
	Warnings []string
}

// AgingBuckets holds arrears by days outstanding.
type AgingBuckets struct {
	Current     decimal.Decimal
	Days30      decimal.Decimal
	Days60      decimal.Decimal
	Days90      decimal.Decimal
	Days120Plus decimal.Decimal
}

// Total returns the sum of all buckets.
func (b AgingBuckets) Total() decimal.Decimal {
	return b.Current.Add(b.Days30).Add(b.Days60).Add(b.Days90).Add(b.Days120Plus)
}

// MeterReadingLine is one meter row of the statement.
type MeterReadingLine struct {
	MeterNumber string
	MeterType   string
	PrevRead    decimal.Decimal
	CurrRead    decimal.Decimal
	Consumption decimal.Decimal
	TotalLevied decimal.Decimal
	Placeholder bool
}

// LeviedLineItem is one itemised billing charge.
type LeviedLineItem struct {
	Date        string
	Code        string
	Description string
	Units       decimal.Decimal
	Tariff      decimal.Decimal
	Value       decimal.Decimal
}

// BankingDetails is the static remittance reference data. Reference is the
// only per-customer field.
type BankingDetails struct {
	BankName      string
	AccountName   string
	AccountNumber string
	BranchCode    string
	AccountType   string
	Reference     string
}
