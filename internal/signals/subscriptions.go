package signals

import (
	"sort"
	"time"

	"github.com/ternarybob/spendsense/internal/models"
)

// CadenceBand is an average-gap tolerance band and the number of months one cycle spans
type CadenceBand struct {
	Cadence Cadence
	MinGap  float64
	MaxGap  float64
	Months  float64
}

// SubscriptionConfig holds the recurrence detection parameters
type SubscriptionConfig struct {
	MinOccurrences int
	Bands          []CadenceBand
}

// DefaultSubscriptionConfig returns the standard cadence bands, longest first
func DefaultSubscriptionConfig() SubscriptionConfig {
	return SubscriptionConfig{
		MinOccurrences: 3,
		Bands: []CadenceBand{
			{Cadence: CadenceAnnual, MinGap: 345, MaxGap: 380, Months: 12},
			{Cadence: CadenceSemiAnnual, MinGap: 170, MaxGap: 190, Months: 6},
			{Cadence: CadenceQuarterly, MinGap: 85, MaxGap: 95, Months: 3},
			{Cadence: CadenceBimonthly, MinGap: 55, MaxGap: 65, Months: 2},
			{Cadence: CadenceMonthly, MinGap: 28, MaxGap: 35, Months: 1},
			{Cadence: CadenceWeekly, MinGap: 6, MaxGap: 8, Months: 12.0 / 52.0},
		},
	}
}

// SubscriptionDetector finds merchants charging on a regular cadence
type SubscriptionDetector struct {
	config SubscriptionConfig
}

// NewSubscriptionDetector creates a new subscription detector
func NewSubscriptionDetector(config SubscriptionConfig) *SubscriptionDetector {
	return &SubscriptionDetector{config: config}
}

type merchantHistory struct {
	name    string
	dates   []time.Time
	amounts []int64
}

// Detect computes subscription signals for the window
func (d *SubscriptionDetector) Detect(transactions []models.Transaction, windowDays int) SubscriptionSignals {
	var totalSpend int64
	histories := make(map[string]*merchantHistory)

	for _, txn := range transactions {
		if !txn.IsOutflow() || txn.IsIncome() {
			continue
		}
		totalSpend += txn.Amount

		key := txn.MerchantKey()
		if key == "" {
			continue
		}
		h, ok := histories[key]
		if !ok {
			h = &merchantHistory{name: txn.MerchantName}
			histories[key] = h
		}
		h.dates = append(h.dates, txn.Date)
		h.amounts = append(h.amounts, txn.Amount)
	}

	keys := make([]string, 0, len(histories))
	for key := range histories {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	merchants := []RecurringMerchant{}
	monthlyTotal := 0.0
	for _, key := range keys {
		h := histories[key]
		if len(h.dates) < d.config.MinOccurrences {
			continue
		}

		dates := sortedDates(h.dates)
		averageGap := avg(gaps(dates))
		band, ok := d.classify(averageGap)
		if !ok {
			continue
		}

		amounts := make([]float64, len(h.amounts))
		for i, a := range h.amounts {
			amounts[i] = float64(a)
		}
		averageAmount := avg(amounts)
		monthly := averageAmount / band.Months
		monthlyTotal += monthly

		merchants = append(merchants, RecurringMerchant{
			MerchantKey:   key,
			MerchantName:  h.name,
			Cadence:       band.Cadence,
			Count:         len(h.dates),
			AverageAmount: roundCents(averageAmount),
			AverageGap:    round(averageGap, 1),
			MonthlyAmount: roundCents(monthly),
		})
	}

	// Scale the monthly figure back to the window before comparing against window spend
	percentage := 0.0
	if totalSpend > 0 && windowDays > 0 {
		windowRecurring := monthlyTotal * float64(windowDays) / 30
		percentage = finite(windowRecurring / float64(totalSpend))
	}

	return SubscriptionSignals{
		RecurringMerchants:    merchants,
		Count:                 len(merchants),
		MonthlyRecurringSpend: roundCents(monthlyTotal),
		TotalSpend:            totalSpend,
		PercentageOfSpend:     round(percentage, 6),
		Description:           DescriptionSubscriptions,
	}
}

// classify maps an average gap onto the first matching cadence band
func (d *SubscriptionDetector) classify(averageGap float64) (CadenceBand, bool) {
	for _, band := range d.config.Bands {
		if inRange(averageGap, band.MinGap, band.MaxGap) {
			return band, true
		}
	}
	return CadenceBand{}, false
}

func sortedDates(dates []time.Time) []time.Time {
	out := make([]time.Time, len(dates))
	copy(out, dates)
	sort.Slice(out, func(i, j int) bool { return out[i].Before(out[j]) })
	return out
}
