package signals

import (
	"github.com/ternarybob/spendsense/internal/models"
)

// SavingsConfig holds the savings analysis parameters
type SavingsConfig struct {
	SavingsSubtypes []string
}

// DefaultSavingsConfig returns the account subtypes treated as savings
func DefaultSavingsConfig() SavingsConfig {
	return SavingsConfig{
		SavingsSubtypes: []string{
			models.SubtypeSavings,
			models.SubtypeMoneyMarket,
			models.SubtypeCD,
			models.SubtypeHSA,
		},
	}
}

// SavingsAnalyzer computes savings balance, inflow and emergency-fund coverage
type SavingsAnalyzer struct {
	subtypes map[string]bool
}

// NewSavingsAnalyzer creates a new savings analyzer
func NewSavingsAnalyzer(config SavingsConfig) *SavingsAnalyzer {
	subtypes := make(map[string]bool, len(config.SavingsSubtypes))
	for _, s := range config.SavingsSubtypes {
		subtypes[s] = true
	}
	return &SavingsAnalyzer{subtypes: subtypes}
}

// IsSavingsAccount reports whether the account counts toward savings
func (a *SavingsAnalyzer) IsSavingsAccount(account models.Account) bool {
	return a.subtypes[account.Subtype]
}

// Analyze computes savings signals for the window
func (a *SavingsAnalyzer) Analyze(accounts []models.Account, transactions []models.Transaction, windowDays int) SavingsSignals {
	savingsIDs := make(map[string]bool)
	var totalBalance int64
	for _, account := range accounts {
		if !a.IsSavingsAccount(account) {
			continue
		}
		savingsIDs[account.ID] = true
		totalBalance += account.Balance
	}

	// Credits are negative, so negating the sum yields a positive inflow
	var netInflow int64
	for _, txn := range transactions {
		if savingsIDs[txn.AccountID] {
			netInflow -= txn.Amount
		}
	}

	monthlyExpenses := toMonthly(windowExpenses(transactions), windowDays)

	emergencyMonths := 0.0
	switch {
	case monthlyExpenses > 0:
		emergencyMonths = round(finite(float64(totalBalance)/float64(monthlyExpenses)), 2)
	case totalBalance > 0:
		emergencyMonths = EmergencyFundSentinel
	}

	growthRate := 0.0
	if totalBalance > 0 {
		growthRate = round(finite(float64(netInflow)/float64(totalBalance)), 6)
	}

	return SavingsSignals{
		AccountCount:        len(savingsIDs),
		TotalBalance:        totalBalance,
		NetInflow:           netInflow,
		MonthlyInflow:       toMonthly(netInflow, windowDays),
		MonthlyExpenses:     monthlyExpenses,
		GrowthRate:          growthRate,
		EmergencyFundMonths: emergencyMonths,
		Description:         DescriptionSavings,
	}
}

// windowExpenses sums outflows outside the income category
func windowExpenses(transactions []models.Transaction) int64 {
	var total int64
	for _, txn := range transactions {
		if txn.IsOutflow() && !txn.IsIncome() {
			total += txn.Amount
		}
	}
	return total
}
