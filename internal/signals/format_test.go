package signals

import "testing"

func TestFormatMoney(t *testing.T) {
	tests := []struct {
		cents int64
		want  string
	}{
		{680000, "$6,800.00"},
		{1000000, "$10,000.00"},
		{13028, "$130.28"},
		{5, "$0.05"},
		{0, "$0.00"},
		{-150050, "-$1,500.50"},
		{123456789, "$1,234,567.89"},
	}

	for _, tt := range tests {
		if got := FormatMoney(tt.cents); got != tt.want {
			t.Errorf("FormatMoney(%d) = %v, want %v", tt.cents, got, tt.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	if got := FormatPercent(0.68); got != "68%" {
		t.Errorf("FormatPercent(0.68) = %v, want 68%%", got)
	}
	if got := FormatPercentPrecise(0.015); got != "1.5%" {
		t.Errorf("FormatPercentPrecise(0.015) = %v, want 1.5%%", got)
	}
}

func TestFormatMonthsAndDays(t *testing.T) {
	if got := FormatMonths(2.345); got != "2.3 months" {
		t.Errorf("FormatMonths(2.345) = %v, want 2.3 months", got)
	}
	if got := FormatDays(14); got != "14 days" {
		t.Errorf("FormatDays(14) = %v, want 14 days", got)
	}
	if got := FormatDays(14.5); got != "14.5 days" {
		t.Errorf("FormatDays(14.5) = %v, want 14.5 days", got)
	}
}

func TestFormatFundMonths(t *testing.T) {
	if got := FormatFundMonths(EmergencyFundSentinel); got != "no recent expenses" {
		t.Errorf("FormatFundMonths(sentinel) = %v, want no recent expenses", got)
	}
	if got := FormatFundMonths(4); got != "4.0 months" {
		t.Errorf("FormatFundMonths(4) = %v, want 4.0 months", got)
	}
}
