package signals

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatMoney renders minor units as dollars with thousands separators, e.g. $6,800.00
func FormatMoney(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	dollars := strconv.FormatInt(cents/100, 10)
	var b strings.Builder
	for i, r := range dollars {
		if i > 0 && (len(dollars)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%s$%s.%02d", sign, b.String(), cents%100)
}

// FormatPercent renders a fraction as a whole-number percentage, e.g. 0.68 -> 68%
func FormatPercent(fraction float64) string {
	return fmt.Sprintf("%d%%", int64(math.Round(fraction*100)))
}

// FormatPercentPrecise renders a fraction as a percentage with one decimal, e.g. 0.015 -> 1.5%
func FormatPercentPrecise(fraction float64) string {
	return strconv.FormatFloat(round(fraction*100, 1), 'f', 1, 64) + "%"
}

// FormatMonths renders a month count with one decimal
func FormatMonths(months float64) string {
	return strconv.FormatFloat(round(months, 1), 'f', 1, 64) + " months"
}

// FormatDays renders a day count, dropping the decimal when it is whole
func FormatDays(days float64) string {
	if days == math.Trunc(days) {
		return strconv.FormatFloat(days, 'f', 0, 64) + " days"
	}
	return strconv.FormatFloat(round(days, 1), 'f', 1, 64) + " days"
}

// FormatCount renders an integer count
func FormatCount(n int) string {
	return strconv.Itoa(n)
}

// FormatFundMonths renders expense coverage in months, or "no recent expenses" for the sentinel
func FormatFundMonths(months float64) string {
	if months >= EmergencyFundSentinel {
		return "no recent expenses"
	}
	return FormatMonths(months)
}
