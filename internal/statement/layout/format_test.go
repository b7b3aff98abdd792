package layout

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":           "0.00",
		"5":           "5.00",
		"175":         "175.00",
		"1234.5":      "1,234.50",
		"1234567.891": "1,234,567.89",
		"-2500":       "-2,500.00",
		"-0.001":      "0.00",
	}
	for in, want := range cases {
		if got := FormatMoney(decimal.RequireFromString(in)); got != want {
			t.Fatalf("%s: got %s want %s", in, got, want)
		}
	}
}

func TestFormatQuantity(t *testing.T) {
	if got := FormatQuantity(decimal.RequireFromString("34.000")); got != "34" {
		t.Fatalf("got %s", got)
	}
}
