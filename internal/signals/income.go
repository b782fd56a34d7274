package signals

import (
	"time"

	"github.com/ternarybob/spendsense/internal/models"
)

// IncomeConfig holds the income cadence and stability parameters
type IncomeConfig struct {
	MinPayments     int
	StableCVCeiling float64
}

// DefaultIncomeConfig returns the standard income parameters
func DefaultIncomeConfig() IncomeConfig {
	return IncomeConfig{
		MinPayments:     2,
		StableCVCeiling: 0.15,
	}
}

// IncomeAnalyzer computes income frequency, variability and cash-flow buffer
type IncomeAnalyzer struct {
	config IncomeConfig
}

// NewIncomeAnalyzer creates a new income analyzer
func NewIncomeAnalyzer(config IncomeConfig) *IncomeAnalyzer {
	return &IncomeAnalyzer{config: config}
}

// Analyze computes income signals for the window
func (a *IncomeAnalyzer) Analyze(transactions []models.Transaction, windowDays int) IncomeSignals {
	var income []models.Transaction
	for _, txn := range transactions {
		if txn.IsIncome() {
			income = append(income, txn)
		}
	}

	monthlyExpenses := toMonthly(windowExpenses(transactions), windowDays)

	if len(income) < a.config.MinPayments {
		return IncomeSignals{
			PaymentCount:    len(income),
			Frequency:       FrequencyUnknown,
			Stability:       StabilityUnknown,
			MonthlyExpenses: monthlyExpenses,
			Description:     DescriptionIncome,
		}
	}

	ordered := make([]models.Transaction, len(income))
	copy(ordered, income)
	sortTransactionsByDate(ordered)

	paydays := make([]time.Time, 0, len(ordered))
	amounts := make([]float64, 0, len(ordered))
	var total int64
	for _, txn := range ordered {
		paydays = append(paydays, txn.Date)
		amounts = append(amounts, float64(-txn.Amount))
		total -= txn.Amount
	}

	medianGap := median(gaps(paydays))
	mean := avg(amounts)
	cv := 0.0
	if mean != 0 {
		cv = finite(populationStddev(amounts) / mean)
	}

	stability := StabilityVariable
	if cv < a.config.StableCVCeiling {
		stability = StabilityStable
	}

	monthlyIncome := toMonthly(total, windowDays)

	return IncomeSignals{
		PaymentCount:           len(income),
		Frequency:              classifyFrequency(medianGap),
		Stability:              stability,
		AverageAmount:          roundCents(mean),
		CoefficientOfVariation: round(cv, 4),
		MedianGapDays:          round(medianGap, 1),
		MonthlyIncome:          monthlyIncome,
		MonthlyExpenses:        monthlyExpenses,
		BufferMonths:           bufferMonths(monthlyIncome, monthlyExpenses),
		Description:            DescriptionIncome,
	}
}

// classifyFrequency buckets the median gap between paychecks
func classifyFrequency(medianGap float64) Frequency {
	switch {
	case inRange(medianGap, 6, 8):
		return FrequencyWeekly
	case inRange(medianGap, 13, 16):
		return FrequencyBiweekly
	case inRange(medianGap, 28, 32):
		return FrequencyMonthly
	default:
		return FrequencyVariable
	}
}

// bufferMonths returns (income - expenses) / expenses, capped when there are no expenses
func bufferMonths(monthlyIncome, monthlyExpenses int64) float64 {
	if monthlyExpenses <= 0 {
		if monthlyIncome > 0 {
			return EmergencyFundSentinel
		}
		return 0
	}
	return round(finite(float64(monthlyIncome-monthlyExpenses)/float64(monthlyExpenses)), 2)
}
