package statement

import (
	"fmt"
	"strconv"
	"time"
)

// MinYear is the earliest statement year supported.
const MinYear = 2024

// Period identifies a billing month. Year is four digits, Month two.
type Period struct {
	Year  string
	Month string
}

// NewPeriod validates year and month and returns the period.
func NewPeriod(year, month string) (Period, error) {
	p := Period{Year: year, Month: month}
	if err := p.Validate(); err != nil {
		return Period{}, err
	}
	return p, nil
}

// Validate checks the period format and range.
func (p Period) Validate() error {
	if len(p.Year) != 4 || !allDigits(p.Year) {
		return fmt.Errorf("%w: year must be YYYY, got %q", ErrInvalidPeriod, p.Year)
	}
	if len(p.Month) != 2 || !allDigits(p.Month) {
		return fmt.Errorf("%w: month must be MM, got %q", ErrInvalidPeriod, p.Month)
	}
	year, _ := strconv.Atoi(p.Year)
	if year < MinYear {
		return fmt.Errorf("%w: year %s is before %d", ErrInvalidPeriod, p.Year, MinYear)
	}
	month, _ := strconv.Atoi(p.Month)
	if month < 1 || month > 12 {
		return fmt.Errorf("%w: month %s out of range", ErrInvalidPeriod, p.Month)
	}
	return nil
}

// Key returns the compact YYYYMM form used in document keys.
func (p Period) Key() string {
	return p.Year + p.Month
}

// Start returns the first instant of the period in UTC.
func (p Period) Start() time.Time {
	year, _ := strconv.Atoi(p.Year)
	month, _ := strconv.Atoi(p.Month)
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
}

// Label renders the period as e.g. "October 2024".
func (p Period) Label() string {
	return p.Start().Format("January 2006")
}

func (p Period) String() string {
	return p.Year + "-" + p.Month
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
