package signals

import (
	"github.com/ternarybob/spendsense/internal/models"
)

// CreditConfig holds the utilization band thresholds
type CreditConfig struct {
	HighThreshold           float64 // high_utilization_80
	ElevatedThreshold       float64 // high_utilization_50
	ModerateThreshold       float64 // moderate_utilization_30
	MinimumPaymentTolerance int64   // Percent of the minimum payment still counted as minimum-only
}

// DefaultCreditConfig returns the standard utilization bands
func DefaultCreditConfig() CreditConfig {
	return CreditConfig{
		HighThreshold:           0.80,
		ElevatedThreshold:       0.50,
		ModerateThreshold:       0.30,
		MinimumPaymentTolerance: 110,
	}
}

// CreditAnalyzer computes utilization, interest and payment behavior for credit accounts
type CreditAnalyzer struct {
	config CreditConfig
}

// NewCreditAnalyzer creates a new credit analyzer
func NewCreditAnalyzer(config CreditConfig) *CreditAnalyzer {
	return &CreditAnalyzer{config: config}
}

// Analyze computes credit signals across all credit accounts
func (a *CreditAnalyzer) Analyze(accounts []models.Account) CreditSignals {
	var totalBalance, totalLimit int64
	monthlyInterest := 0.0
	overdue := false
	minimumOnly := false
	cards := []CardUtilization{}

	for _, account := range accounts {
		if !account.IsCredit() {
			continue
		}

		limit := account.Limit()
		totalBalance += account.Balance
		totalLimit += limit

		utilization := 0.0
		if limit > 0 {
			utilization = finite(float64(account.Balance) / float64(limit))
		}
		paysMinimum := a.paysMinimumOnly(account)
		cards = append(cards, CardUtilization{
			AccountID:   account.ID,
			Mask:        account.DisplayMask(),
			Utilization: utilization,
			Balance:     account.Balance,
			Limit:       limit,
			APR:         account.APR,
			Overdue:     account.IsOverdue,
			MinimumOnly: paysMinimum,
		})

		if account.Balance > 0 && account.APR != nil {
			monthlyInterest += float64(account.Balance) * (*account.APR / 100) / 12
		}
		if account.IsOverdue {
			overdue = true
		}
		if paysMinimum {
			minimumOnly = true
		}
	}

	overall := 0.0
	if totalLimit > 0 {
		overall = finite(float64(totalBalance) / float64(totalLimit))
	}

	interest := roundCents(monthlyInterest)

	flags := []string{}
	if band := a.utilizationBand(overall); band != "" {
		flags = append(flags, band)
	}
	if overdue {
		flags = append(flags, FlagOverdue)
	}
	if interest > 0 {
		flags = append(flags, FlagInterestCharges)
	}
	if minimumOnly {
		flags = append(flags, FlagMinimumPaymentOnly)
	}

	return CreditSignals{
		AccountCount:       len(cards),
		OverallUtilization: overall,
		TotalBalance:       totalBalance,
		TotalLimit:         totalLimit,
		MonthlyInterest:    interest,
		Flags:              flags,
		Cards:              cards,
		MinimumPaymentOnly: minimumOnly,
		Description:        DescriptionCredit,
	}
}

// utilizationBand returns the single highest band reached, or "" below the moderate threshold
func (a *CreditAnalyzer) utilizationBand(utilization float64) string {
	switch {
	case utilization >= a.config.HighThreshold:
		return FlagHighUtilization80
	case utilization >= a.config.ElevatedThreshold:
		return FlagHighUtilization50
	case utilization >= a.config.ModerateThreshold:
		return FlagModerateUtilization
	default:
		return ""
	}
}

// paysMinimumOnly reports whether the last payment was within tolerance of the minimum due
func (a *CreditAnalyzer) paysMinimumOnly(account models.Account) bool {
	if account.MinimumPayment == nil || account.LastPayment == nil {
		return false
	}
	minimum := *account.MinimumPayment
	last := *account.LastPayment
	if minimum <= 0 || last <= 0 {
		return false
	}
	return last*100 <= minimum*a.config.MinimumPaymentTolerance
}
