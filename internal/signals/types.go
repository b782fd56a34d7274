// Package signals computes behavioral spending signals from account and transaction history.
// Every computation is pure: the same accounts, transactions and window always produce the same groups.
package signals

import (
	"encoding/gob"
	"errors"
)

func init() {
	// Register types for gob encoding (required for BadgerHold storage of nested signal groups)
	gob.Register(Groups{})
	gob.Register(SubscriptionSignals{})
	gob.Register(SavingsSignals{})
	gob.Register(CreditSignals{})
	gob.Register(IncomeSignals{})
	gob.Register(DataPoint{})
}

var (
	// ErrInvalidWindow is returned when the window is not a positive number of days
	ErrInvalidWindow = errors.New("window days must be positive")
	// ErrInvalidInput is returned when an account or transaction record is malformed
	ErrInvalidInput = errors.New("invalid signal input")
)

// EmergencyFundSentinel is reported instead of an unbounded ratio when there are savings but no expenses
const EmergencyFundSentinel = 999.0

// Groups contains the four independent signal groups computed for one window
type Groups struct {
	WindowDays    int                 `json:"window_days"`
	Subscriptions SubscriptionSignals `json:"subscriptions"`
	Savings       SavingsSignals      `json:"savings"`
	Credit        CreditSignals       `json:"credit"`
	Income        IncomeSignals       `json:"income"`
}

// Cadence classifies the recurrence interval of a merchant
type Cadence string

const (
	CadenceAnnual     Cadence = "annual"
	CadenceSemiAnnual Cadence = "semi_annual"
	CadenceQuarterly  Cadence = "quarterly"
	CadenceBimonthly  Cadence = "bimonthly"
	CadenceMonthly    Cadence = "monthly"
	CadenceWeekly     Cadence = "weekly"
)

// RecurringMerchant is one merchant detected as a recurring charge
type RecurringMerchant struct {
	MerchantKey   string  `json:"merchant_key"`
	MerchantName  string  `json:"merchant_name"`
	Cadence       Cadence `json:"cadence"`
	Count         int     `json:"count"`
	AverageAmount int64   `json:"average_amount"` // Cents per occurrence
	AverageGap    float64 `json:"average_gap"`    // Days between occurrences
	MonthlyAmount int64   `json:"monthly_amount"` // Cents, amortized to one month
}

// SubscriptionSignals summarizes recurring spend
type SubscriptionSignals struct {
	RecurringMerchants    []RecurringMerchant `json:"recurring_merchants"`
	Count                 int                 `json:"count"`
	MonthlyRecurringSpend int64               `json:"monthly_recurring_spend"` // Cents
	TotalSpend            int64               `json:"total_spend"`             // Window outflow, cents
	PercentageOfSpend     float64             `json:"percentage_of_spend"`     // Fraction of window spend, window-normalized
	Description           string              `json:"description"`
}

// SavingsSignals summarizes savings balances and emergency-fund coverage
type SavingsSignals struct {
	AccountCount        int     `json:"account_count"`
	TotalBalance        int64   `json:"total_balance"`    // Cents
	NetInflow           int64   `json:"net_inflow"`       // Cents over the window
	MonthlyInflow       int64   `json:"monthly_inflow"`   // Cents per 30 days
	MonthlyExpenses     int64   `json:"monthly_expenses"` // Cents per 30 days
	GrowthRate          float64 `json:"growth_rate"`      // Fraction of balance
	EmergencyFundMonths float64 `json:"emergency_fund_months"`
	Description         string  `json:"description"`
}

// Credit flags, in reporting order
const (
	FlagHighUtilization80   = "high_utilization_80"
	FlagHighUtilization50   = "high_utilization_50"
	FlagModerateUtilization = "moderate_utilization_30"
	FlagOverdue             = "overdue"
	FlagInterestCharges     = "interest_charges"
	FlagMinimumPaymentOnly  = "minimum_payment_only"
)

// CardUtilization is the per-card breakdown of credit usage
type CardUtilization struct {
	AccountID   string   `json:"account_id"`
	Mask        string   `json:"mask"`
	Utilization float64  `json:"utilization"`
	Balance     int64    `json:"balance"`
	Limit       int64    `json:"limit"`
	APR         *float64 `json:"apr,omitempty"`
	Overdue     bool     `json:"overdue"`
	MinimumOnly bool     `json:"minimum_only"`
}

// CreditSignals summarizes credit utilization and cost
type CreditSignals struct {
	AccountCount       int               `json:"account_count"`
	OverallUtilization float64           `json:"overall_utilization"` // Fraction, 0.68 = 68%
	TotalBalance       int64             `json:"total_balance"`
	TotalLimit         int64             `json:"total_limit"`
	MonthlyInterest    int64             `json:"monthly_interest"`    // Estimated cents per month
	Flags              []string          `json:"flags"`
	Cards              []CardUtilization `json:"cards"`
	MinimumPaymentOnly bool              `json:"minimum_payment_only"`
	Description        string            `json:"description"`
}

// HasFlag reports whether the flag was raised
func (c CreditSignals) HasFlag(flag string) bool {
	for _, f := range c.Flags {
		if f == flag {
			return true
		}
	}
	return false
}

// MaxCardUtilization returns the highest per-card utilization
func (c CreditSignals) MaxCardUtilization() (CardUtilization, bool) {
	var best CardUtilization
	found := false
	for _, card := range c.Cards {
		if !found || card.Utilization > best.Utilization {
			best = card
			found = true
		}
	}
	return best, found
}

// Frequency classifies how often income arrives
type Frequency string

const (
	FrequencyUnknown  Frequency = "unknown"
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
	FrequencyVariable Frequency = "variable"
)

// Stability classifies how much income amounts vary
type Stability string

const (
	StabilityUnknown  Stability = "unknown"
	StabilityStable   Stability = "stable"
	StabilityVariable Stability = "variable"
)

// IncomeSignals summarizes income cadence and variability
type IncomeSignals struct {
	PaymentCount           int       `json:"payment_count"`
	Frequency              Frequency `json:"frequency"`
	Stability              Stability `json:"stability"`
	AverageAmount          int64     `json:"average_amount"`   // Cents per payment
	CoefficientOfVariation float64   `json:"coefficient_of_variation"`
	MedianGapDays          float64   `json:"median_gap_days"`
	MonthlyIncome          int64     `json:"monthly_income"`   // Cents per 30 days
	MonthlyExpenses        int64     `json:"monthly_expenses"` // Cents per 30 days
	BufferMonths           float64   `json:"buffer_months"`    // May be negative
	Description            string    `json:"description"`
}

// DataPoint is one piece of numeric evidence cited by a rationale
type DataPoint struct {
	Signal  string `json:"signal"`
	Value   string `json:"value"`
	Account string `json:"account,omitempty"`
}
