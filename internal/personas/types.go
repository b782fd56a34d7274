// Package personas assigns exactly one financial persona from computed signal groups.
package personas

import "encoding/gob"

func init() {
	gob.Register(Result{})
}

// PersonaType identifies a persona
type PersonaType string

const (
	HighUtilization   PersonaType = "high_utilization"
	VariableIncome    PersonaType = "variable_income"
	SubscriptionHeavy PersonaType = "subscription_heavy"
	SavingsBuilder    PersonaType = "savings_builder"
	Balanced          PersonaType = "balanced"
)

// All returns every persona in priority order
func All() []PersonaType {
	return []PersonaType{HighUtilization, VariableIncome, SubscriptionHeavy, SavingsBuilder, Balanced}
}

// Persona display names
const (
	TitleHighUtilization   = "Credit Utilization Focus"
	TitleVariableIncome    = "Variable Income Budgeter"
	TitleSubscriptionHeavy = "Subscription Optimizer"
	TitleSavingsBuilder    = "Savings Builder"
	TitleBalanced          = "Balanced Finances"
)

// Title returns the display name of the persona
func (p PersonaType) Title() string {
	switch p {
	case HighUtilization:
		return TitleHighUtilization
	case VariableIncome:
		return TitleVariableIncome
	case SubscriptionHeavy:
		return TitleSubscriptionHeavy
	case SavingsBuilder:
		return TitleSavingsBuilder
	case Balanced:
		return TitleBalanced
	default:
		return string(p)
	}
}

// Valid reports whether p is one of the known personas
func (p PersonaType) Valid() bool {
	for _, known := range All() {
		if p == known {
			return true
		}
	}
	return false
}

// Result is the persona assigned to a signal snapshot.
// Signals lists the criteria that satisfied the persona's rule.
type Result struct {
	Type       PersonaType `json:"persona_type"`
	Confidence float64     `json:"confidence"`
	Signals    []string    `json:"signals"`
}

// Thresholds holds the fixed persona rule cutoffs
type Thresholds struct {
	Utilization           float64 // Overall or per-card utilization fraction
	VariableGapDays       float64 // Median gap between paychecks
	CashBufferMonths      float64
	SubscriptionCount     int
	SubscriptionSpend     int64   // Cents per month
	SubscriptionShare     float64
	SavingsGrowthRate     float64
	SavingsMonthlyInflow  int64   // Cents per month
	SavingsMaxUtilization float64
}
